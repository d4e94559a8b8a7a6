package jobs

import (
	"context"
	"log"
	"time"

	"github.com/delitruck/delitruck-backend/internal/storage"
)

// Retention policy for chat messages: photos age out after a day, all
// messages after two weeks. Expired sessions are pruned hourly; their
// cutoff is the expiry stamp on the row itself.
const (
	ImageRetention   = 24 * time.Hour
	MessageRetention = 14 * 24 * time.Hour

	imageSweepInterval   = time.Hour
	messageSweepInterval = 24 * time.Hour
	sessionSweepInterval = time.Hour
)

const sweeperCount = 3

// RetentionJob purges old chat messages and stale sessions on fixed
// wall-clock intervals. Owned by the process lifecycle: started on
// boot, cancelled on shutdown.
type RetentionJob struct {
	store  storage.Store
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRetentionJob creates a new retention sweeper
func NewRetentionJob(store storage.Store) *RetentionJob {
	return &RetentionJob{store: store}
}

// Start launches the sweep goroutines. Each cadence runs once
// immediately, then on its ticker.
func (j *RetentionJob) Start(ctx context.Context) {
	if j.cancel != nil {
		log.Println("Retention job already running")
		return
	}

	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{}, sweeperCount)
	log.Println("Starting retention job...")

	go j.run(ctx, imageSweepInterval, j.sweepImages)
	go j.run(ctx, messageSweepInterval, j.sweepMessages)
	go j.run(ctx, sessionSweepInterval, j.sweepSessions)
}

// Stop cancels the sweep goroutines and waits for them to exit.
func (j *RetentionJob) Stop() {
	if j.cancel == nil {
		return
	}
	j.cancel()
	for i := 0; i < sweeperCount; i++ {
		<-j.done
	}
	j.cancel = nil
	log.Println("Retention job stopped")
}

func (j *RetentionJob) run(ctx context.Context, interval time.Duration, sweep func()) {
	defer func() { j.done <- struct{}{} }()

	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

func (j *RetentionJob) sweepImages() {
	deleted, err := j.store.DeleteImageMessagesBefore(time.Now().Add(-ImageRetention))
	if err != nil {
		log.Printf("Error cleaning up old photos: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Deleted %d old photo messages", deleted)
	}
}

func (j *RetentionJob) sweepMessages() {
	deleted, err := j.store.DeleteMessagesBefore(time.Now().Add(-MessageRetention))
	if err != nil {
		log.Printf("Error cleaning up old messages: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Deleted %d messages older than 2 weeks", deleted)
	}
}

func (j *RetentionJob) sweepSessions() {
	if err := j.store.DeleteExpiredSessions(); err != nil {
		log.Printf("Error cleaning up expired sessions: %v", err)
	}
}
