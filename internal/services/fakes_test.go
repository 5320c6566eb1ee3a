package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/database"
	"github.com/Project-mardianto/algoplus-app/internal/models"
)

// memoryStore mimics the conditional writes of database.Database.
type memoryStore struct {
	mu         sync.Mutex
	nextID     int64
	orders     map[int64]*database.OrderDB
	history    map[int64][]database.StatusHistoryDB
	products   map[string]models.Product
	addresses  map[string][]models.Address
	profiles   map[string]*database.ProfileDB
	users      map[string]*database.UserDB
	references map[string]struct{}
	cards      []models.SavedCard

	// beforeWrite runs inside conditional writes, before the condition is
	// checked, to simulate a concurrent writer.
	beforeWrite func(order *database.OrderDB)
	createErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders:     make(map[int64]*database.OrderDB),
		history:    make(map[int64][]database.StatusHistoryDB),
		products:   make(map[string]models.Product),
		addresses:  make(map[string][]models.Address),
		profiles:   make(map[string]*database.ProfileDB),
		users:      make(map[string]*database.UserDB),
		references: make(map[string]struct{}),
	}
}

func (s *memoryStore) addOrder(userID string, status models.OrderStatus, driverID *string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Now()
	s.orders[s.nextID] = &database.OrderDB{
		ID:              s.nextID,
		UserID:          userID,
		DriverID:        driverID,
		Status:          database.OrderStatusDB{OrderStatus: status},
		TotalAmount:     30000,
		ShippingAddress: "Jl. Kenanga 1",
		PaymentMethod:   string(models.PaymentCash),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return s.nextID
}

func (s *memoryStore) order(id int64) database.OrderDB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.orders[id]
}

func (s *memoryStore) FindOrder(_ context.Context, orderID int64) (*database.OrderDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (s *memoryStore) filter(match func(o *database.OrderDB) bool) []database.OrderDB {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []database.OrderDB
	for _, o := range s.orders {
		if match(o) {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *memoryStore) FindOrdersByUser(_ context.Context, userID string) ([]database.OrderDB, error) {
	return s.filter(func(o *database.OrderDB) bool { return o.UserID == userID }), nil
}

func (s *memoryStore) FindOrdersByStatus(_ context.Context, statuses ...models.OrderStatus) ([]database.OrderDB, error) {
	return s.filter(func(o *database.OrderDB) bool {
		for _, status := range statuses {
			if o.Status.OrderStatus == status {
				return true
			}
		}
		return false
	}), nil
}

func (s *memoryStore) FindDriverOrders(_ context.Context, driverID string) ([]database.OrderDB, error) {
	return s.filter(func(o *database.OrderDB) bool {
		if o.Status.OrderStatus == models.StatusReadyForPickup {
			return true
		}
		return o.DriverID != nil && *o.DriverID == driverID &&
			(o.Status.OrderStatus == models.StatusOutForDelivery || o.Status.OrderStatus == models.StatusArrived)
	}), nil
}

func (s *memoryStore) AdvanceOrderStatus(_ context.Context, change database.StatusChange) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.orders[change.OrderID]
	if s.beforeWrite != nil {
		s.beforeWrite(order)
	}

	if order == nil || order.Status.OrderStatus != change.From {
		return time.Time{}, database.ErrStatusConflict
	}
	if change.DriverID != nil && (order.DriverID == nil || *order.DriverID != *change.DriverID) {
		return time.Time{}, database.ErrStatusConflict
	}

	order.Status = database.OrderStatusDB{OrderStatus: change.To}
	order.UpdatedAt = time.Now()
	s.history[order.ID] = append(s.history[order.ID], database.StatusHistoryDB{
		From: string(change.From), To: string(change.To), ActorID: change.ActorID, ChangedAt: order.UpdatedAt,
	})
	return order.UpdatedAt, nil
}

func (s *memoryStore) ClaimOrder(_ context.Context, orderID int64, driverID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.orders[orderID]
	if s.beforeWrite != nil {
		s.beforeWrite(order)
	}

	if order == nil || order.Status.OrderStatus != models.StatusReadyForPickup || order.DriverID != nil {
		return time.Time{}, database.ErrClaimConflict
	}

	order.DriverID = &driverID
	order.Status = database.OrderStatusDB{OrderStatus: models.StatusOutForDelivery}
	order.UpdatedAt = time.Now()
	s.history[order.ID] = append(s.history[order.ID], database.StatusHistoryDB{
		From: string(models.StatusReadyForPickup), To: string(models.StatusOutForDelivery), ActorID: driverID, ChangedAt: order.UpdatedAt,
	})
	return order.UpdatedAt, nil
}

func (s *memoryStore) FindStatusHistory(_ context.Context, orderID int64) ([]database.StatusHistoryDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.StatusHistoryDB(nil), s.history[orderID]...), nil
}

func (s *memoryStore) FindProductsByID(_ context.Context, ids []string) (map[string]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]models.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (s *memoryStore) FindAddresses(_ context.Context, userID string) ([]models.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Address(nil), s.addresses[userID]...), nil
}

func (s *memoryStore) FindProfile(_ context.Context, userID string) (*database.ProfileDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[userID], nil
}

func (s *memoryStore) FindUserByID(_ context.Context, id string) (*database.UserDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *memoryStore) CreateSavedCard(_ context.Context, card *models.SavedCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card.ID = int64(len(s.cards) + 1)
	s.cards = append(s.cards, *card)
	return nil
}

func (s *memoryStore) CreateOrder(_ context.Context, order *database.OrderDB) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	if order.PaymentReference != nil {
		if _, ok := s.references[*order.PaymentReference]; ok {
			return database.ErrDuplicateOrder
		}
		s.references[*order.PaymentReference] = struct{}{}
	}

	s.nextID++
	order.ID = s.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	copied := *order
	s.orders[order.ID] = &copied
	s.history[order.ID] = []database.StatusHistoryDB{{To: string(order.Status.OrderStatus), ActorID: order.UserID}}
	return nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	updates []models.OrderUpdate
}

func (p *recordingPublisher) Publish(_ context.Context, u models.OrderUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
	return nil
}

func (p *recordingPublisher) all() []models.OrderUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.OrderUpdate(nil), p.updates...)
}

type recordingDispatcher struct {
	mu            sync.Mutex
	notifications []models.Notification
	emails        []Email
}

func (d *recordingDispatcher) Notify(n models.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications = append(d.notifications, n)
}

func (d *recordingDispatcher) SendEmail(email Email) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emails = append(d.emails, email)
}

// memorySessions is an in-memory stand-in for RedisCheckoutStore.
type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]models.CheckoutSession
	err      error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]models.CheckoutSession)}
}

func (m *memorySessions) Save(_ context.Context, session models.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessions[session.Reference] = session
	return nil
}

func (m *memorySessions) Take(_ context.Context, reference string) (*models.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[reference]
	if !ok {
		return nil, nil
	}
	delete(m.sessions, reference)
	return &session, nil
}

func (m *memorySessions) Drop(_ context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, reference)
	return nil
}

func (m *memorySessions) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func strPtr(s string) *string {
	return &s
}
