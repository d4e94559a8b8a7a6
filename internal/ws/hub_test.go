package ws

import (
	"errors"
	"sync"
	"testing"
)

// fakeTransport records frames written to one connection.
type fakeTransport struct {
	mu     sync.Mutex
	frames [][]byte
	failed bool
	closed bool
}

func (f *fakeTransport) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("write on dead connection")
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.frames))
	copy(out, f.frames)
	return out
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	a, b := &fakeTransport{}, &fakeTransport{}
	hub.Register("user-a", a)
	hub.Register("user-b", b)

	hub.Broadcast([]byte("one"))
	hub.Broadcast([]byte("two"))

	for name, tr := range map[string]*fakeTransport{"a": a, "b": b} {
		frames := tr.received()
		if len(frames) != 2 {
			t.Fatalf("client %s got %d frames, want 2", name, len(frames))
		}
		if string(frames[0]) != "one" || string(frames[1]) != "two" {
			t.Errorf("client %s frames out of order: %q, %q", name, frames[0], frames[1])
		}
	}
}

func TestRegisterReplacesOlderConnection(t *testing.T) {
	hub := NewHub()
	old, fresh := &fakeTransport{}, &fakeTransport{}
	hub.Register("user-a", old)
	hub.Register("user-a", fresh)

	if hub.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", hub.Count())
	}

	hub.Broadcast([]byte("hello"))
	if len(fresh.received()) != 1 {
		t.Error("newest connection missed the broadcast")
	}
}

func TestUnregisterOnlyEvictsOwnEntry(t *testing.T) {
	hub := NewHub()
	old, fresh := &fakeTransport{}, &fakeTransport{}
	stale := hub.Register("user-a", old)
	hub.Register("user-a", fresh)

	// The replaced connection's teardown runs after the replacement; it
	// must not knock the new connection out of the registry.
	hub.Unregister(stale)
	if hub.Count() != 1 {
		t.Fatalf("Count() after stale unregister = %d, want 1", hub.Count())
	}

	hub.Broadcast([]byte("still here"))
	if len(fresh.received()) != 1 {
		t.Error("live connection missed broadcast after stale unregister")
	}
}

func TestUnregisterRemovesClient(t *testing.T) {
	hub := NewHub()
	tr := &fakeTransport{}
	client := hub.Register("user-a", tr)

	hub.Unregister(client)
	if hub.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", hub.Count())
	}

	hub.Broadcast([]byte("gone"))
	if len(tr.received()) != 0 {
		t.Error("unregistered connection still received a broadcast")
	}
}

func TestBroadcastSkipsFailedConnections(t *testing.T) {
	hub := NewHub()
	dead, live := &fakeTransport{failed: true}, &fakeTransport{}
	hub.Register("user-a", dead)
	hub.Register("user-b", live)

	hub.Broadcast([]byte("first"))
	hub.Broadcast([]byte("second"))

	frames := live.received()
	if len(frames) != 2 {
		t.Fatalf("live client got %d frames, want 2", len(frames))
	}
	if len(dead.received()) != 0 {
		t.Error("dead connection recorded frames")
	}
	// A failed peer must never block or drop delivery to the rest.
	if string(frames[1]) != "second" {
		t.Errorf("second frame = %q", frames[1])
	}
}

func TestSendAfterCloseIsNoop(t *testing.T) {
	hub := NewHub()
	tr := &fakeTransport{}
	client := hub.Register("user-a", tr)
	hub.Unregister(client)

	if err := client.Send([]byte("late")); err != nil {
		t.Errorf("Send() on closed client error = %v, want nil", err)
	}
	if len(tr.received()) != 0 {
		t.Error("closed client still wrote a frame")
	}
}

func TestConcurrentBroadcastsStayOrderedPerClient(t *testing.T) {
	hub := NewHub()
	tr := &fakeTransport{}
	hub.Register("user-a", tr)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Broadcast([]byte("frame"))
		}()
	}
	wg.Wait()

	if got := len(tr.received()); got != 50 {
		t.Errorf("frames delivered = %d, want 50", got)
	}
}

func TestCloseAllClosesTransports(t *testing.T) {
	hub := NewHub()
	a, b := &fakeTransport{}, &fakeTransport{}
	hub.Register("user-a", a)
	hub.Register("user-b", b)

	hub.CloseAll()
	if hub.Count() != 0 {
		t.Errorf("Count() after CloseAll = %d, want 0", hub.Count())
	}
	if !a.closed || !b.closed {
		t.Error("CloseAll left a transport open")
	}
}
