package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
)

type memOrders struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order
	failInsert error
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[string]*domain.Order)}
}

func (m *memOrders) Insert(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert != nil {
		return m.failInsert
	}
	cp := *o
	m.orders[o.OrderID] = &cp
	return nil
}

func (m *memOrders) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) AssignIf(ctx context.Context, orderID, vendorID string, at time.Time) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != domain.StatusPending {
		return nil, nil
	}
	o.Status = domain.StatusAssigned
	o.VendorID = vendorID
	o.AssignedAt = &at
	cp := *o
	return &cp, nil
}

func (m *memOrders) ListPending(ctx context.Context) ([]domain.Order, error) {
	return m.ListByStatus(ctx, domain.StatusPending)
}

func (m *memOrders) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memVendors struct {
	mu     sync.Mutex
	linked map[string][]string // phone -> assigned order ids, add-once
}

func newMemVendors() *memVendors {
	return &memVendors{linked: make(map[string][]string)}
}

func (m *memVendors) Upsert(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.linked[phone]; !ok {
		m.linked[phone] = nil
	}
	return nil
}

func (m *memVendors) LinkOrder(ctx context.Context, phone, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.linked[phone] {
		if id == orderID {
			return nil
		}
	}
	m.linked[phone] = append(m.linked[phone], orderID)
	return nil
}

func (m *memVendors) ordersOf(phone string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.linked[phone]...)
}

type memIdem struct {
	mu   sync.Mutex
	held map[string]bool
	vals map[string]string
}

func newMemIdem() *memIdem {
	return &memIdem{held: make(map[string]bool), vals: make(map[string]string)}
}

func (m *memIdem) TryLock(ctx context.Context, scope, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := scope + ":" + key
	if m.held[k] {
		return false, nil
	}
	m.held[k] = true
	return true, nil
}

func (m *memIdem) Release(ctx context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, scope+":"+key)
	return nil
}

func (m *memIdem) Remember(ctx context.Context, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[scope+":"+key] = value
	return nil
}

func (m *memIdem) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[scope+":"+key]
	return v, ok, nil
}

type recordedMsg struct{ To, Text string }

type memSender struct {
	mu   sync.Mutex
	msgs []recordedMsg
}

func (s *memSender) Send(ctx context.Context, to, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, recordedMsg{To: to, Text: text})
	return nil
}

func (s *memSender) sentTo(to string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, m := range s.msgs {
		if m.To == to {
			out = append(out, m.Text)
		}
	}
	return out
}

type memEvents struct {
	mu       sync.Mutex
	placed   []OrderPlacedMsg
	assigned []OrderAssignedMsg
}

func (e *memEvents) OrderPlaced(ctx context.Context, msg OrderPlacedMsg) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.placed = append(e.placed, msg)
	return nil
}

func (e *memEvents) OrderAssigned(ctx context.Context, msg OrderAssignedMsg) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assigned = append(e.assigned, msg)
	return nil
}

func (e *memEvents) assignedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.assigned)
}
