package services

import (
	"errors"
	"fmt"

	"github.com/delitruck/delitruck-backend/internal/models"
)

// ErrNotTripDriver is returned when a location update arrives from an
// authenticated user who is not the trip's assigned driver. This is a
// security boundary: any logged-in user could otherwise spoof another
// driver's position.
var ErrNotTripDriver = errors.New("not the assigned driver for this trip")

// ErrInvalidLocation is returned for location updates missing required
// fields.
var ErrInvalidLocation = errors.New("invalid location update")

// ResourceUnavailableError reports which resource blocked a trip
// assignment and why.
type ResourceUnavailableError struct {
	Resource string // "driver" or "truck"
	Reason   string
}

func (e *ResourceUnavailableError) Error() string {
	return fmt.Sprintf("%s is %s", e.Resource, e.Reason)
}

// InvalidTransitionError reports a rejected trip status transition.
// Backward and repeated moves land here; the caller decides whether to
// report or ignore.
type InvalidTransitionError struct {
	From models.TripStatus
	To   models.TripStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid trip transition from %q to %q", e.From, e.To)
}
