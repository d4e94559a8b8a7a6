package services

import (
	"encoding/json"
	"time"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
	"github.com/delitruck/delitruck-backend/internal/utils"
)

// Broadcaster fans a payload out to every live connection. Satisfied by
// the websocket hub; faked in tests.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// LocationUpdate is one GPS sample tied to a trip.
type LocationUpdate struct {
	TripID    string  `json:"tripId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}

// LocationService authorizes, persists and republishes location
// samples arriving from driver connections.
type LocationService struct {
	store storage.Store
	hub   Broadcaster
}

// NewLocationService creates a new location pipeline
func NewLocationService(store storage.Store, hub Broadcaster) *LocationService {
	return &LocationService{store: store, hub: hub}
}

// Handle processes one sample from senderID. On success the sample is
// stored on the trip and broadcast to all connections; on any error
// nothing is mutated or broadcast and the caller replies to the sender
// only.
func (s *LocationService) Handle(senderID string, upd LocationUpdate) (*models.Trip, error) {
	if upd.TripID == "" || upd.Timestamp == "" {
		return nil, ErrInvalidLocation
	}

	trip, err := s.store.GetTrip(upd.TripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID != senderID {
		return nil, ErrNotTripDriver
	}

	prev, hadPrev := trip.Location()
	if err := trip.SetLocation(models.TripLocation{
		Latitude:  upd.Latitude,
		Longitude: upd.Longitude,
		Timestamp: upd.Timestamp,
	}); err != nil {
		return nil, err
	}
	if hadPrev {
		s.accumulateMetrics(trip, prev, upd)
	}

	if err := s.store.UpdateTrip(trip); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(struct {
		Type string `json:"type"`
		LocationUpdate
	}{Type: "location_update", LocationUpdate: upd})
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(payload)

	return trip, nil
}

// accumulateMetrics adds the great-circle distance from the previous
// sample and refreshes the running average speed over the trip.
func (s *LocationService) accumulateMetrics(trip *models.Trip, prev models.TripLocation, upd LocationUpdate) {
	trip.DistanceTravelled += utils.Haversine(prev.Latitude, prev.Longitude, upd.Latitude, upd.Longitude)

	if trip.StartTime == nil {
		return
	}
	sampleTime, err := time.Parse(time.RFC3339, upd.Timestamp)
	if err != nil {
		return
	}
	hours := sampleTime.Sub(*trip.StartTime).Hours()
	if hours > 0 {
		trip.AvgSpeed = trip.DistanceTravelled / hours
	}
}
