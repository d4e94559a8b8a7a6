package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TripStatus is the closed set of trip lifecycle states.
type TripStatus string

const (
	TripScheduled TripStatus = "scheduled"
	TripOngoing   TripStatus = "ongoing"
	TripCompleted TripStatus = "completed"
)

// tripTransitions is the forward-only transition table. Anything not
// listed here is rejected, including no-op and backward moves.
var tripTransitions = map[TripStatus][]TripStatus{
	TripScheduled: {TripOngoing},
	TripOngoing:   {TripCompleted},
	TripCompleted: {},
}

// Valid reports whether s is a known trip status.
func (s TripStatus) Valid() bool {
	_, ok := tripTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is a legal
// forward transition.
func (s TripStatus) CanTransitionTo(target TripStatus) bool {
	for _, next := range tripTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Trip is a single dispatch assignment of one driver and one truck
// along one route.
type Trip struct {
	ID       string     `json:"id" gorm:"primaryKey"`
	TruckID  string     `json:"truckId" gorm:"index"`
	DriverID string     `json:"driverId" gorm:"index"`
	RouteID  string     `json:"routeId" gorm:"index"`
	Salary   float64    `json:"salary"`
	Status   TripStatus `json:"status" gorm:"default:scheduled"`

	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`

	DistanceTravelled float64 `json:"distanceTravelled"` // km, accumulated from location samples
	AvgSpeed          float64 `json:"avgSpeed"`          // km/h over the trip so far
	CurrentLocation   string  `json:"currentLocation"`   // serialized TripLocation, empty until first sample

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TripScheduled
	}
	return nil
}

// TripLocation is the serialized shape stored in Trip.CurrentLocation.
type TripLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}

// Location deserializes the trip's current location. Returns false when
// no location sample has been recorded yet or the field is corrupt.
func (t *Trip) Location() (TripLocation, bool) {
	if t.CurrentLocation == "" {
		return TripLocation{}, false
	}
	var loc TripLocation
	if err := json.Unmarshal([]byte(t.CurrentLocation), &loc); err != nil {
		return TripLocation{}, false
	}
	return loc, true
}

// SetLocation serializes loc into the trip's CurrentLocation field.
func (t *Trip) SetLocation(loc TripLocation) error {
	b, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	t.CurrentLocation = string(b)
	return nil
}
