package dialog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
	"github.com/nethra1406/whatsappbot/internal/logging"
)

type Step string

const (
	StepCatalog    Step = "catalog"
	StepOrdering   Step = "ordering"
	StepGetName    Step = "get_name"
	StepGetAddress Step = "get_address"
	StepGetPayment Step = "get_payment"
	StepConfirm    Step = "confirm_order"
)

// Session is one customer's progress through the ordering dialog. It is
// only ever touched while its owner's slot lock is held.
type Session struct {
	UserID     string
	Step       Step
	Cart       []domain.LineItem
	Customer   domain.CustomerInfo
	LastActive time.Time

	done bool
}

// Finish marks the session for destruction once the current message has
// been handled.
func (s *Session) Finish() { s.done = true }

// Manager owns the per-user session registry. Messages for the same user
// serialize on that user's slot lock; distinct users proceed in parallel.
// Sessions idle past idleTTL are dropped, lazily on next access and
// periodically by the sweeper.
type Manager struct {
	mu      sync.Mutex
	slots   map[string]*slot
	idleTTL time.Duration
	now     func() time.Time
	log     *slog.Logger
}

type slot struct {
	mu   sync.Mutex
	sess *Session
	gone bool
}

func NewManager(idleTTL time.Duration) *Manager {
	return &Manager{
		slots:   make(map[string]*slot),
		idleTTL: idleTTL,
		now:     time.Now,
		log:     logging.New("sessions"),
	}
}

// With runs fn with the user's session under the user's lock, creating a
// fresh session when none exists or the previous one went idle. If fn calls
// Finish the session is destroyed afterwards.
func (m *Manager) With(userID string, fn func(*Session)) {
	for {
		m.mu.Lock()
		sl, ok := m.slots[userID]
		if !ok {
			sl = &slot{}
			m.slots[userID] = sl
		}
		m.mu.Unlock()

		sl.mu.Lock()
		if sl.gone {
			// Swept out from under us between map lookup and lock; retry.
			sl.mu.Unlock()
			continue
		}

		now := m.now()
		if sl.sess == nil || m.expired(sl.sess, now) {
			sl.sess = &Session{UserID: userID, Step: StepCatalog}
		}
		sl.sess.LastActive = now

		fn(sl.sess)

		if sl.sess.done {
			sl.sess = nil
		}
		sl.mu.Unlock()
		return
	}
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.idleTTL > 0 && now.Sub(s.LastActive) > m.idleTTL
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, sl := range m.slots {
		sl.mu.Lock()
		if sl.sess != nil {
			n++
		}
		sl.mu.Unlock()
	}
	return n
}

// StartSweeper evicts idle sessions on a fixed interval until ctx ends.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.sweep()
			}
		}
	}()
}

func (m *Manager) sweep() {
	now := m.now()
	evicted := 0

	m.mu.Lock()
	for id, sl := range m.slots {
		// Skip slots currently handling a message.
		if !sl.mu.TryLock() {
			continue
		}
		if sl.sess == nil || m.expired(sl.sess, now) {
			if sl.sess != nil {
				evicted++
			}
			sl.gone = true
			delete(m.slots, id)
		}
		sl.mu.Unlock()
	}
	m.mu.Unlock()

	if evicted > 0 {
		m.log.Info("evicted idle sessions", "count", evicted)
	}
}
