package usecase

import (
	"context"
	"time"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
)

type OrderRepo interface {
	Insert(ctx context.Context, o *domain.Order) error
	// GetByID returns (nil, nil) when no order has that id.
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	// AssignIf atomically moves the order from pending to assigned, setting
	// the vendor, in a single conditional update keyed on
	// (orderId, status=pending). It returns the assigned order, or
	// (nil, nil) when the condition did not match (missing or already
	// assigned). This is the one write that must never be a read-then-write.
	AssignIf(ctx context.Context, orderID, vendorID string, at time.Time) (*domain.Order, error)
	// ListPending returns pending orders, most recently created first.
	ListPending(ctx context.Context) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
}

type VendorRepo interface {
	// Upsert creates the vendor record if this id has not been seen before.
	Upsert(ctx context.Context, phone string) error
	// LinkOrder appends the order id to the vendor's assigned set (add-once).
	LinkOrder(ctx context.Context, phone, orderID string) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// Sender delivers one outbound text to a WhatsApp number. Callers treat it
// as best-effort: a failed send is logged, never rolled back into state.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// EventPublisher emits order lifecycle events for downstream consumers.
// Publishing is best-effort relative to the durable order state.
type EventPublisher interface {
	OrderPlaced(ctx context.Context, msg OrderPlacedMsg) error
	OrderAssigned(ctx context.Context, msg OrderAssignedMsg) error
}
