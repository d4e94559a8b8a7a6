package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// TripService is the trip lifecycle machine. It is the only writer of
// the driver/truck trip lock: a driver or truck is on_trip exactly
// while a non-completed trip holds it.
type TripService struct {
	store storage.Store
}

// NewTripService creates a new trip lifecycle service
func NewTripService(store storage.Store) *TripService {
	return &TripService{store: store}
}

// ScheduleRequest carries the fields needed to create a trip.
type ScheduleRequest struct {
	DriverID string  `json:"driverId"`
	TruckID  string  `json:"truckId"`
	RouteID  string  `json:"routeId"`
	Salary   float64 `json:"salary"`
}

// Schedule creates a trip after verifying that the driver and truck are
// both eligible, then takes the trip lock on each.
func (s *TripService) Schedule(req ScheduleRequest) (*models.Trip, error) {
	driver, err := s.store.GetUser(req.DriverID)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	truck, err := s.store.GetTruck(req.TruckID)
	if err != nil {
		return nil, fmt.Errorf("truck: %w", err)
	}
	if _, err := s.store.GetRoute(req.RouteID); err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}

	if !driver.IsDriver() {
		return nil, &ResourceUnavailableError{Resource: "driver", Reason: "not a driver account"}
	}
	switch driver.Status {
	case models.UserStatusOnLeave:
		return nil, &ResourceUnavailableError{Resource: "driver", Reason: "on leave and cannot be assigned"}
	case models.UserStatusOnTrip:
		return nil, &ResourceUnavailableError{Resource: "driver", Reason: "already assigned to another trip"}
	case models.UserStatusAvailable:
	default:
		return nil, &ResourceUnavailableError{Resource: "driver", Reason: "not available"}
	}
	switch truck.Status {
	case models.TruckStatusOnMaintenance:
		return nil, &ResourceUnavailableError{Resource: "truck", Reason: "under maintenance and cannot be assigned"}
	case models.TruckStatusOnTrip:
		return nil, &ResourceUnavailableError{Resource: "truck", Reason: "already assigned to another trip"}
	case models.TruckStatusAvailable:
	default:
		return nil, &ResourceUnavailableError{Resource: "truck", Reason: "not available"}
	}

	trip, err := s.store.CreateTrip(&models.Trip{
		DriverID: req.DriverID,
		TruckID:  req.TruckID,
		RouteID:  req.RouteID,
		Salary:   req.Salary,
		Status:   models.TripScheduled,
	})
	if err != nil {
		return nil, err
	}

	// Scheduling takes the exclusive hold on both resources; it is
	// released on completion or deletion.
	if err := s.store.UpdateTruckStatus(trip.TruckID, models.TruckStatusOnTrip); err != nil {
		return nil, err
	}
	if err := s.store.UpdateUserStatus(trip.DriverID, models.UserStatusOnTrip); err != nil {
		return nil, err
	}
	return trip, nil
}

// Advance moves a trip to targetStatus. Only forward moves in the
// transition table are allowed; entry to ongoing and completed flips
// the driver and truck status as a side effect.
func (s *TripService) Advance(tripID string, targetStatus models.TripStatus) (*models.Trip, error) {
	trip, err := s.store.GetTrip(tripID)
	if err != nil {
		return nil, err
	}

	if !trip.Status.CanTransitionTo(targetStatus) {
		return nil, &InvalidTransitionError{From: trip.Status, To: targetStatus}
	}

	now := time.Now()
	trip.Status = targetStatus
	switch targetStatus {
	case models.TripOngoing:
		trip.StartTime = &now
	case models.TripCompleted:
		trip.EndTime = &now
	}

	if err := s.store.UpdateTrip(trip); err != nil {
		return nil, err
	}

	switch targetStatus {
	case models.TripOngoing:
		if err := s.store.UpdateTruckStatus(trip.TruckID, models.TruckStatusOnTrip); err != nil {
			return nil, err
		}
		if err := s.store.UpdateUserStatus(trip.DriverID, models.UserStatusOnTrip); err != nil {
			return nil, err
		}
	case models.TripCompleted:
		if err := s.releaseResources(trip); err != nil {
			return nil, err
		}
	}

	return trip, nil
}

// Delete removes a trip. A non-completed trip releases its driver and
// truck first so neither stays permanently locked.
func (s *TripService) Delete(tripID string) error {
	trip, err := s.store.GetTrip(tripID)
	if err != nil {
		return err
	}

	if trip.Status != models.TripCompleted {
		if err := s.releaseResources(trip); err != nil {
			return err
		}
	}
	return s.store.DeleteTrip(tripID)
}

// releaseResources puts the trip's driver and truck back to available.
// A resource that was deleted out from under the trip is not an error.
func (s *TripService) releaseResources(trip *models.Trip) error {
	if err := s.store.UpdateTruckStatus(trip.TruckID, models.TruckStatusAvailable); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err := s.store.UpdateUserStatus(trip.DriverID, models.UserStatusAvailable); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}
