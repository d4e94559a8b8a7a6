package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/delitruck/delitruck-backend/internal/models"
)

// DatabaseStore implements Store backed by PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// User operations

func (d *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := d.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (d *DatabaseStore) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (d *DatabaseStore) GetAllUsers() ([]*models.User, error) {
	var users []*models.User
	if err := d.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (d *DatabaseStore) GetDrivers() ([]*models.User, error) {
	var drivers []*models.User
	if err := d.db.Where("role = ?", models.RoleDriver).Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (d *DatabaseStore) UpdateUser(user *models.User) error {
	result := d.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) UpdateUserStatus(id string, status string) error {
	result := d.db.Model(&models.User{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) DeleteUser(id string) error {
	result := d.db.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Truck operations

func (d *DatabaseStore) CreateTruck(truck *models.Truck) (*models.Truck, error) {
	if err := d.db.Create(truck).Error; err != nil {
		return nil, err
	}
	return truck, nil
}

func (d *DatabaseStore) GetTruck(id string) (*models.Truck, error) {
	var truck models.Truck
	if err := d.db.First(&truck, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &truck, nil
}

func (d *DatabaseStore) GetAllTrucks() ([]*models.Truck, error) {
	var trucks []*models.Truck
	if err := d.db.Find(&trucks).Error; err != nil {
		return nil, err
	}
	return trucks, nil
}

func (d *DatabaseStore) GetAvailableTrucks() ([]*models.Truck, error) {
	var trucks []*models.Truck
	if err := d.db.Where("status = ?", models.TruckStatusAvailable).Find(&trucks).Error; err != nil {
		return nil, err
	}
	return trucks, nil
}

func (d *DatabaseStore) UpdateTruck(truck *models.Truck) error {
	result := d.db.Model(&models.Truck{}).Where("id = ?", truck.ID).Updates(truck)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) UpdateTruckStatus(id string, status string) error {
	result := d.db.Model(&models.Truck{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) DeleteTruck(id string) error {
	result := d.db.Delete(&models.Truck{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Route operations

func (d *DatabaseStore) CreateRoute(route *models.Route) (*models.Route, error) {
	if err := d.db.Create(route).Error; err != nil {
		return nil, err
	}
	return route, nil
}

func (d *DatabaseStore) GetRoute(id string) (*models.Route, error) {
	var route models.Route
	if err := d.db.First(&route, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &route, nil
}

func (d *DatabaseStore) GetAllRoutes() ([]*models.Route, error) {
	var routes []*models.Route
	if err := d.db.Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (d *DatabaseStore) UpdateRoute(route *models.Route) error {
	result := d.db.Model(&models.Route{}).Where("id = ?", route.ID).Updates(route)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) DeleteRoute(id string) error {
	result := d.db.Delete(&models.Route{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Trip operations

func (d *DatabaseStore) CreateTrip(trip *models.Trip) (*models.Trip, error) {
	if err := d.db.Create(trip).Error; err != nil {
		return nil, err
	}
	return trip, nil
}

func (d *DatabaseStore) GetTrip(id string) (*models.Trip, error) {
	var trip models.Trip
	if err := d.db.First(&trip, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &trip, nil
}

func (d *DatabaseStore) GetAllTrips() ([]*models.Trip, error) {
	var trips []*models.Trip
	if err := d.db.Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (d *DatabaseStore) GetTripsByDriver(driverID string) ([]*models.Trip, error) {
	var trips []*models.Trip
	if err := d.db.Where("driver_id = ?", driverID).Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (d *DatabaseStore) GetOngoingTrips() ([]*models.Trip, error) {
	var trips []*models.Trip
	if err := d.db.Where("status = ?", models.TripOngoing).Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (d *DatabaseStore) UpdateTrip(trip *models.Trip) error {
	// Select("*") so zeroed fields like a cleared EndTime still persist
	result := d.db.Model(&models.Trip{}).Where("id = ?", trip.ID).Select("*").Omit("id", "created_at").Updates(trip)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) DeleteTrip(id string) error {
	result := d.db.Delete(&models.Trip{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Message operations

func (d *DatabaseStore) CreateMessage(msg *models.Message) (*models.Message, error) {
	if err := d.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (d *DatabaseStore) GetAllMessages() ([]*models.MessageWithSender, error) {
	var result []*models.MessageWithSender
	err := d.db.Model(&models.Message{}).
		Select("messages.*, COALESCE(users.name, 'Unknown') AS sender_name").
		Joins("LEFT JOIN users ON users.id = messages.sender_id").
		Order("messages.created_at ASC").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *DatabaseStore) DeleteMessage(id string) error {
	result := d.db.Delete(&models.Message{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) DeleteImageMessagesBefore(cutoff time.Time) (int64, error) {
	result := d.db.Where("type = ? AND created_at < ?", models.MessageTypeImage, cutoff).
		Delete(&models.Message{})
	return result.RowsAffected, result.Error
}

func (d *DatabaseStore) DeleteMessagesBefore(cutoff time.Time) (int64, error) {
	result := d.db.Where("created_at < ?", cutoff).Delete(&models.Message{})
	return result.RowsAffected, result.Error
}

// Session operations

func (d *DatabaseStore) CreateSession(session *models.Session) (*models.Session, error) {
	if err := d.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (d *DatabaseStore) GetSession(id string) (*models.Session, error) {
	var session models.Session
	if err := d.db.First(&session, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &session, nil
}

func (d *DatabaseStore) DeleteSession(id string) error {
	result := d.db.Delete(&models.Session{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) DeleteExpiredSessions() error {
	return d.db.Where("expires_at < ?", time.Now()).Delete(&models.Session{}).Error
}

// Crate ledger operations

func (d *DatabaseStore) GetDailyBalance(routeID string, date time.Time) (*models.CrateDailyBalance, error) {
	var balance models.CrateDailyBalance
	err := d.db.First(&balance, "route_id = ? AND date = ?", routeID, date).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &balance, nil
}

func (d *DatabaseStore) SaveDailyBalance(balance *models.CrateDailyBalance) error {
	if balance.ID == "" {
		return d.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "route_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"closing_count", "updated_at"}),
		}).Create(balance).Error
	}
	result := d.db.Model(&models.CrateDailyBalance{}).
		Where("id = ?", balance.ID).
		Update("closing_count", balance.ClosingCount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) GetDailyBalancesByDateRange(routeIDs []string, start, end time.Time) ([]*models.CrateDailyBalance, error) {
	var balances []*models.CrateDailyBalance
	err := d.db.Where("route_id IN ? AND date BETWEEN ? AND ?", routeIDs, start, end).
		Order("route_id, date").
		Find(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}

func (d *DatabaseStore) CreateCrateAdjustment(adj *models.CrateAdjustment) (*models.CrateAdjustment, error) {
	if err := d.db.Create(adj).Error; err != nil {
		return nil, err
	}
	return adj, nil
}

func (d *DatabaseStore) GetAdjustmentsByBalance(balanceID string) ([]*models.CrateAdjustment, error) {
	var adjustments []*models.CrateAdjustment
	if err := d.db.Where("balance_id = ?", balanceID).Order("created_at ASC").Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}
