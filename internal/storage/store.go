package storage

import (
	"errors"
	"time"

	"github.com/delitruck/delitruck-backend/internal/models"
)

// ErrNotFound is returned by get/update/delete operations when the
// referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetAllUsers() ([]*models.User, error)
	GetDrivers() ([]*models.User, error)
	UpdateUser(user *models.User) error
	UpdateUserStatus(id string, status string) error
	DeleteUser(id string) error

	// Truck operations
	CreateTruck(truck *models.Truck) (*models.Truck, error)
	GetTruck(id string) (*models.Truck, error)
	GetAllTrucks() ([]*models.Truck, error)
	GetAvailableTrucks() ([]*models.Truck, error)
	UpdateTruck(truck *models.Truck) error
	UpdateTruckStatus(id string, status string) error
	DeleteTruck(id string) error

	// Route operations
	CreateRoute(route *models.Route) (*models.Route, error)
	GetRoute(id string) (*models.Route, error)
	GetAllRoutes() ([]*models.Route, error)
	UpdateRoute(route *models.Route) error
	DeleteRoute(id string) error

	// Trip operations
	CreateTrip(trip *models.Trip) (*models.Trip, error)
	GetTrip(id string) (*models.Trip, error)
	GetAllTrips() ([]*models.Trip, error)
	GetTripsByDriver(driverID string) ([]*models.Trip, error)
	GetOngoingTrips() ([]*models.Trip, error)
	UpdateTrip(trip *models.Trip) error
	DeleteTrip(id string) error

	// Message operations
	CreateMessage(msg *models.Message) (*models.Message, error)
	GetAllMessages() ([]*models.MessageWithSender, error)
	DeleteMessage(id string) error
	DeleteImageMessagesBefore(cutoff time.Time) (int64, error)
	DeleteMessagesBefore(cutoff time.Time) (int64, error)

	// Session operations
	CreateSession(session *models.Session) (*models.Session, error)
	GetSession(id string) (*models.Session, error)
	DeleteSession(id string) error
	DeleteExpiredSessions() error

	// Crate ledger operations
	GetDailyBalance(routeID string, date time.Time) (*models.CrateDailyBalance, error)
	SaveDailyBalance(balance *models.CrateDailyBalance) error
	GetDailyBalancesByDateRange(routeIDs []string, start, end time.Time) ([]*models.CrateDailyBalance, error)
	CreateCrateAdjustment(adj *models.CrateAdjustment) (*models.CrateAdjustment, error)
	GetAdjustmentsByBalance(balanceID string) ([]*models.CrateAdjustment, error)
}
