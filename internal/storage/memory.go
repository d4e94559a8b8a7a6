package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/delitruck/delitruck-backend/internal/models"
)

// MemoryStore holds all data in memory for tests and local development
type MemoryStore struct {
	users       map[string]*models.User
	trucks      map[string]*models.Truck
	routes      map[string]*models.Route
	trips       map[string]*models.Trip
	messages    map[string]*models.Message
	sessions    map[string]*models.Session
	balances    map[string]*models.CrateDailyBalance // keyed by routeID|yyyy-mm-dd
	adjustments []*models.CrateAdjustment

	// Mutexes for thread safety
	userMu    sync.RWMutex
	truckMu   sync.RWMutex
	routeMu   sync.RWMutex
	tripMu    sync.RWMutex
	messageMu sync.RWMutex
	sessionMu sync.RWMutex
	crateMu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*models.User),
		trucks:   make(map[string]*models.Truck),
		routes:   make(map[string]*models.Route),
		trips:    make(map[string]*models.Trip),
		messages: make(map[string]*models.Message),
		sessions: make(map[string]*models.Session),
		balances: make(map[string]*models.CrateDailyBalance),
	}
}

func balanceKey(routeID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", routeID, date.UTC().Format("2006-01-02"))
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleDriver
	}
	if user.Status == "" {
		user.Status = models.UserStatusAvailable
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryStore) GetUser(id string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetAllUsers() ([]*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	users := make([]*models.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *MemoryStore) GetDrivers() ([]*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	var drivers []*models.User
	for _, user := range m.users {
		if user.Role == models.RoleDriver {
			drivers = append(drivers, user)
		}
	}
	return drivers, nil
}

func (m *MemoryStore) UpdateUser(user *models.User) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if _, exists := m.users[user.ID]; !exists {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) UpdateUserStatus(id string, status string) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	user, exists := m.users[id]
	if !exists {
		return ErrNotFound
	}
	user.Status = status
	user.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) DeleteUser(id string) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if _, exists := m.users[id]; !exists {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// Truck operations

func (m *MemoryStore) CreateTruck(truck *models.Truck) (*models.Truck, error) {
	m.truckMu.Lock()
	defer m.truckMu.Unlock()

	if truck.ID == "" {
		truck.ID = uuid.NewString()
	}
	if truck.Status == "" {
		truck.Status = models.TruckStatusAvailable
	}
	truck.CreatedAt = time.Now()
	truck.UpdatedAt = truck.CreatedAt

	m.trucks[truck.ID] = truck
	return truck, nil
}

func (m *MemoryStore) GetTruck(id string) (*models.Truck, error) {
	m.truckMu.RLock()
	defer m.truckMu.RUnlock()

	truck, exists := m.trucks[id]
	if !exists {
		return nil, ErrNotFound
	}
	return truck, nil
}

func (m *MemoryStore) GetAllTrucks() ([]*models.Truck, error) {
	m.truckMu.RLock()
	defer m.truckMu.RUnlock()

	trucks := make([]*models.Truck, 0, len(m.trucks))
	for _, truck := range m.trucks {
		trucks = append(trucks, truck)
	}
	return trucks, nil
}

func (m *MemoryStore) GetAvailableTrucks() ([]*models.Truck, error) {
	m.truckMu.RLock()
	defer m.truckMu.RUnlock()

	var trucks []*models.Truck
	for _, truck := range m.trucks {
		if truck.Status == models.TruckStatusAvailable {
			trucks = append(trucks, truck)
		}
	}
	return trucks, nil
}

func (m *MemoryStore) UpdateTruck(truck *models.Truck) error {
	m.truckMu.Lock()
	defer m.truckMu.Unlock()

	if _, exists := m.trucks[truck.ID]; !exists {
		return ErrNotFound
	}
	truck.UpdatedAt = time.Now()
	m.trucks[truck.ID] = truck
	return nil
}

func (m *MemoryStore) UpdateTruckStatus(id string, status string) error {
	m.truckMu.Lock()
	defer m.truckMu.Unlock()

	truck, exists := m.trucks[id]
	if !exists {
		return ErrNotFound
	}
	truck.Status = status
	truck.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) DeleteTruck(id string) error {
	m.truckMu.Lock()
	defer m.truckMu.Unlock()

	if _, exists := m.trucks[id]; !exists {
		return ErrNotFound
	}
	delete(m.trucks, id)
	return nil
}

// Route operations

func (m *MemoryStore) CreateRoute(route *models.Route) (*models.Route, error) {
	m.routeMu.Lock()
	defer m.routeMu.Unlock()

	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	if route.CrateCount == 0 {
		route.CrateCount = models.DefaultCrateCount
	}
	route.CreatedAt = time.Now()
	route.UpdatedAt = route.CreatedAt

	m.routes[route.ID] = route
	return route, nil
}

func (m *MemoryStore) GetRoute(id string) (*models.Route, error) {
	m.routeMu.RLock()
	defer m.routeMu.RUnlock()

	route, exists := m.routes[id]
	if !exists {
		return nil, ErrNotFound
	}
	return route, nil
}

func (m *MemoryStore) GetAllRoutes() ([]*models.Route, error) {
	m.routeMu.RLock()
	defer m.routeMu.RUnlock()

	routes := make([]*models.Route, 0, len(m.routes))
	for _, route := range m.routes {
		routes = append(routes, route)
	}
	return routes, nil
}

func (m *MemoryStore) UpdateRoute(route *models.Route) error {
	m.routeMu.Lock()
	defer m.routeMu.Unlock()

	if _, exists := m.routes[route.ID]; !exists {
		return ErrNotFound
	}
	route.UpdatedAt = time.Now()
	m.routes[route.ID] = route
	return nil
}

func (m *MemoryStore) DeleteRoute(id string) error {
	m.routeMu.Lock()
	defer m.routeMu.Unlock()

	if _, exists := m.routes[id]; !exists {
		return ErrNotFound
	}
	delete(m.routes, id)
	return nil
}

// Trip operations

func (m *MemoryStore) CreateTrip(trip *models.Trip) (*models.Trip, error) {
	m.tripMu.Lock()
	defer m.tripMu.Unlock()

	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if trip.Status == "" {
		trip.Status = models.TripScheduled
	}
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt

	m.trips[trip.ID] = trip
	return trip, nil
}

func (m *MemoryStore) GetTrip(id string) (*models.Trip, error) {
	m.tripMu.RLock()
	defer m.tripMu.RUnlock()

	trip, exists := m.trips[id]
	if !exists {
		return nil, ErrNotFound
	}
	return trip, nil
}

func (m *MemoryStore) GetAllTrips() ([]*models.Trip, error) {
	m.tripMu.RLock()
	defer m.tripMu.RUnlock()

	trips := make([]*models.Trip, 0, len(m.trips))
	for _, trip := range m.trips {
		trips = append(trips, trip)
	}
	return trips, nil
}

func (m *MemoryStore) GetTripsByDriver(driverID string) ([]*models.Trip, error) {
	m.tripMu.RLock()
	defer m.tripMu.RUnlock()

	var trips []*models.Trip
	for _, trip := range m.trips {
		if trip.DriverID == driverID {
			trips = append(trips, trip)
		}
	}
	return trips, nil
}

func (m *MemoryStore) GetOngoingTrips() ([]*models.Trip, error) {
	m.tripMu.RLock()
	defer m.tripMu.RUnlock()

	var trips []*models.Trip
	for _, trip := range m.trips {
		if trip.Status == models.TripOngoing {
			trips = append(trips, trip)
		}
	}
	return trips, nil
}

func (m *MemoryStore) UpdateTrip(trip *models.Trip) error {
	m.tripMu.Lock()
	defer m.tripMu.Unlock()

	if _, exists := m.trips[trip.ID]; !exists {
		return ErrNotFound
	}
	trip.UpdatedAt = time.Now()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MemoryStore) DeleteTrip(id string) error {
	m.tripMu.Lock()
	defer m.tripMu.Unlock()

	if _, exists := m.trips[id]; !exists {
		return ErrNotFound
	}
	delete(m.trips, id)
	return nil
}

// Message operations

func (m *MemoryStore) CreateMessage(msg *models.Message) (*models.Message, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	m.messages[msg.ID] = msg
	return msg, nil
}

func (m *MemoryStore) GetAllMessages() ([]*models.MessageWithSender, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	result := make([]*models.MessageWithSender, 0, len(m.messages))
	for _, msg := range m.messages {
		senderName := "Unknown"
		if sender, err := m.GetUser(msg.SenderID); err == nil {
			senderName = sender.Name
		}
		result = append(result, &models.MessageWithSender{
			Message:    *msg,
			SenderName: senderName,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MemoryStore) DeleteMessage(id string) error {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	if _, exists := m.messages[id]; !exists {
		return ErrNotFound
	}
	delete(m.messages, id)
	return nil
}

func (m *MemoryStore) DeleteImageMessagesBefore(cutoff time.Time) (int64, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	var deleted int64
	for id, msg := range m.messages {
		if msg.Type == models.MessageTypeImage && msg.CreatedAt.Before(cutoff) {
			delete(m.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryStore) DeleteMessagesBefore(cutoff time.Time) (int64, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	var deleted int64
	for id, msg := range m.messages {
		if msg.CreatedAt.Before(cutoff) {
			delete(m.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

// Session operations

func (m *MemoryStore) CreateSession(session *models.Session) (*models.Session, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = time.Now().Add(models.SessionTTL)
	}
	session.CreatedAt = time.Now()

	m.sessions[session.ID] = session
	return session, nil
}

func (m *MemoryStore) GetSession(id string) (*models.Session, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}
	return session, nil
}

func (m *MemoryStore) DeleteSession(id string) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) DeleteExpiredSessions() error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	now := time.Now()
	for id, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Crate ledger operations

func (m *MemoryStore) GetDailyBalance(routeID string, date time.Time) (*models.CrateDailyBalance, error) {
	m.crateMu.RLock()
	defer m.crateMu.RUnlock()

	balance, exists := m.balances[balanceKey(routeID, date)]
	if !exists {
		return nil, ErrNotFound
	}
	return balance, nil
}

func (m *MemoryStore) SaveDailyBalance(balance *models.CrateDailyBalance) error {
	m.crateMu.Lock()
	defer m.crateMu.Unlock()

	key := balanceKey(balance.RouteID, balance.Date)
	if existing, exists := m.balances[key]; exists {
		balance.ID = existing.ID
		balance.CreatedAt = existing.CreatedAt
	} else {
		if balance.ID == "" {
			balance.ID = uuid.NewString()
		}
		balance.CreatedAt = time.Now()
	}
	balance.UpdatedAt = time.Now()
	m.balances[key] = balance
	return nil
}

func (m *MemoryStore) GetDailyBalancesByDateRange(routeIDs []string, start, end time.Time) ([]*models.CrateDailyBalance, error) {
	m.crateMu.RLock()
	defer m.crateMu.RUnlock()

	wanted := make(map[string]bool, len(routeIDs))
	for _, id := range routeIDs {
		wanted[id] = true
	}

	var result []*models.CrateDailyBalance
	for _, balance := range m.balances {
		if !wanted[balance.RouteID] {
			continue
		}
		if balance.Date.Before(start) || balance.Date.After(end) {
			continue
		}
		result = append(result, balance)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RouteID != result[j].RouteID {
			return result[i].RouteID < result[j].RouteID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (m *MemoryStore) CreateCrateAdjustment(adj *models.CrateAdjustment) (*models.CrateAdjustment, error) {
	m.crateMu.Lock()
	defer m.crateMu.Unlock()

	if adj.ID == "" {
		adj.ID = uuid.NewString()
	}
	adj.CreatedAt = time.Now()
	m.adjustments = append(m.adjustments, adj)
	return adj, nil
}

func (m *MemoryStore) GetAdjustmentsByBalance(balanceID string) ([]*models.CrateAdjustment, error) {
	m.crateMu.RLock()
	defer m.crateMu.RUnlock()

	var result []*models.CrateAdjustment
	for _, adj := range m.adjustments {
		if adj.BalanceID == balanceID {
			result = append(result, adj)
		}
	}
	return result, nil
}
