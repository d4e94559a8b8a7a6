package services

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// fakeHub records broadcast payloads for assertions.
type fakeHub struct {
	payloads [][]byte
}

func (f *fakeHub) Broadcast(payload []byte) {
	f.payloads = append(f.payloads, payload)
}

func seedOngoingTrip(t *testing.T, store *storage.MemoryStore) (*models.Trip, *models.User) {
	t.Helper()
	driver, truck, route := seedFleet(t, store)
	svc := NewTripService(store)
	trip, err := svc.Schedule(ScheduleRequest{DriverID: driver.ID, TruckID: truck.ID, RouteID: route.ID})
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	trip, err = svc.Advance(trip.ID, models.TripOngoing)
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	return trip, driver
}

func TestHandlePersistsAndBroadcasts(t *testing.T) {
	store := storage.NewMemoryStore()
	trip, driver := seedOngoingTrip(t, store)
	hub := &fakeHub{}
	svc := NewLocationService(store, hub)

	upd := LocationUpdate{
		TripID:    trip.ID,
		Latitude:  12.9716,
		Longitude: 77.5946,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	got, err := svc.Handle(driver.ID, upd)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	loc, ok := got.Location()
	if !ok {
		t.Fatal("trip has no current location after Handle()")
	}
	if loc.Latitude != upd.Latitude || loc.Longitude != upd.Longitude {
		t.Errorf("stored location = %+v, want %+v", loc, upd)
	}

	stored, _ := store.GetTrip(trip.ID)
	if stored.CurrentLocation == "" {
		t.Error("location not persisted to store")
	}

	if len(hub.payloads) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(hub.payloads))
	}
	var frame struct {
		Type   string  `json:"type"`
		TripID string  `json:"tripId"`
		Lat    float64 `json:"latitude"`
	}
	if err := json.Unmarshal(hub.payloads[0], &frame); err != nil {
		t.Fatalf("broadcast payload is not JSON: %v", err)
	}
	if frame.Type != "location_update" {
		t.Errorf("broadcast type = %q, want location_update", frame.Type)
	}
	if frame.TripID != trip.ID {
		t.Errorf("broadcast tripId = %q, want %q", frame.TripID, trip.ID)
	}
}

func TestHandleRejectsWrongDriver(t *testing.T) {
	store := storage.NewMemoryStore()
	trip, _ := seedOngoingTrip(t, store)
	hub := &fakeHub{}
	svc := NewLocationService(store, hub)

	_, err := svc.Handle("someone-else", LocationUpdate{
		TripID:    trip.ID,
		Latitude:  12.9716,
		Longitude: 77.5946,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if !errors.Is(err, ErrNotTripDriver) {
		t.Fatalf("Handle() error = %v, want ErrNotTripDriver", err)
	}

	// Rejection must not leak: nothing stored, nothing broadcast.
	stored, _ := store.GetTrip(trip.ID)
	if stored.CurrentLocation != "" {
		t.Error("rejected update still persisted a location")
	}
	if len(hub.payloads) != 0 {
		t.Errorf("rejected update broadcast %d payloads, want 0", len(hub.payloads))
	}
}

func TestHandleUnknownTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	hub := &fakeHub{}
	svc := NewLocationService(store, hub)

	_, err := svc.Handle("driver-1", LocationUpdate{
		TripID:    "nope",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Handle() error = %v, want ErrNotFound", err)
	}
	if len(hub.payloads) != 0 {
		t.Errorf("broadcasts = %d, want 0", len(hub.payloads))
	}
}

func TestHandleIncompleteUpdate(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewLocationService(store, &fakeHub{})

	tests := []struct {
		name string
		upd  LocationUpdate
	}{
		{"missing trip id", LocationUpdate{Timestamp: "2026-08-20T10:00:00Z"}},
		{"missing timestamp", LocationUpdate{TripID: "t1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Handle("driver-1", tt.upd); !errors.Is(err, ErrInvalidLocation) {
				t.Errorf("Handle() error = %v, want ErrInvalidLocation", err)
			}
		})
	}
}

func TestHandleAccumulatesDistanceAndSpeed(t *testing.T) {
	store := storage.NewMemoryStore()
	trip, driver := seedOngoingTrip(t, store)
	svc := NewLocationService(store, &fakeHub{})

	// Pin the start an hour back so the speed denominator is known.
	start := time.Now().Add(-time.Hour).UTC()
	trip.StartTime = &start
	if err := store.UpdateTrip(trip); err != nil {
		t.Fatalf("UpdateTrip() error = %v", err)
	}

	// Majestic, then roughly a degree of longitude east.
	first := LocationUpdate{
		TripID:    trip.ID,
		Latitude:  12.9716,
		Longitude: 77.5946,
		Timestamp: start.Format(time.RFC3339),
	}
	if _, err := svc.Handle(driver.ID, first); err != nil {
		t.Fatalf("first Handle() error = %v", err)
	}
	got, err := svc.Handle(driver.ID, LocationUpdate{
		TripID:    trip.ID,
		Latitude:  12.9716,
		Longitude: 78.5946,
		Timestamp: start.Add(time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("second Handle() error = %v", err)
	}

	// One degree of longitude at 12.97N is about 108 km.
	if got.DistanceTravelled < 105 || got.DistanceTravelled > 112 {
		t.Errorf("distance = %.1f km, want roughly 108", got.DistanceTravelled)
	}
	// One hour elapsed, so speed tracks distance.
	if math.Abs(got.AvgSpeed-got.DistanceTravelled) > 1 {
		t.Errorf("avg speed = %.1f km/h over one hour of %.1f km", got.AvgSpeed, got.DistanceTravelled)
	}
}

func TestHandleFirstSampleAddsNoDistance(t *testing.T) {
	store := storage.NewMemoryStore()
	trip, driver := seedOngoingTrip(t, store)
	svc := NewLocationService(store, &fakeHub{})

	got, err := svc.Handle(driver.ID, LocationUpdate{
		TripID:    trip.ID,
		Latitude:  12.9716,
		Longitude: 77.5946,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got.DistanceTravelled != 0 {
		t.Errorf("distance after first sample = %.3f, want 0", got.DistanceTravelled)
	}
}
