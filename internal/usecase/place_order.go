package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
	"github.com/nethra1406/whatsappbot/internal/logging"
)

// ErrDuplicatePlacement means a placement for this customer is already in
// flight or recently completed; the confirm event was a replay.
var ErrDuplicatePlacement = errors.New("duplicate order placement")

const placeScope = "place-order"

// PlaceOrder finalizes a confirmed dialog: it allocates the order id,
// persists the order as pending, and fans the accept prompt out to the
// vendor pool.
type PlaceOrder struct {
	orders     OrderRepo
	idem       IdempotencyStore
	events     EventPublisher
	send       Sender
	vendorPool []string
	log        *slog.Logger
	now        func() time.Time
}

func NewPlaceOrder(orders OrderRepo, idem IdempotencyStore, events EventPublisher, send Sender, vendorPool []string) *PlaceOrder {
	return &PlaceOrder{
		orders:     orders,
		idem:       idem,
		events:     events,
		send:       send,
		vendorPool: vendorPool,
		log:        logging.New("place-order"),
		now:        time.Now,
	}
}

func (uc *PlaceOrder) Execute(ctx context.Context, customerID string, cart []domain.LineItem, info domain.CustomerInfo) (*domain.Order, error) {
	// One placement per customer per guard window; webhook redeliveries of
	// the same "place order" land here twice but only the first may write.
	ok, err := uc.idem.TryLock(ctx, placeScope, customerID)
	if err != nil {
		return nil, fmt.Errorf("placement lock: %w", err)
	}
	if !ok {
		return nil, ErrDuplicatePlacement
	}

	created := uc.now()
	order := &domain.Order{
		OrderID:    domain.NewOrderID(created),
		CustomerID: customerID,
		Cart:       cart,
		Customer:   info,
		Status:     domain.StatusPending,
		CreatedAt:  created,
	}

	if err := uc.orders.Insert(ctx, order); err != nil {
		// Free the guard so the provider's redelivery can retry the write.
		_ = uc.idem.Release(ctx, placeScope, customerID)
		return nil, fmt.Errorf("insert order: %w", err)
	}
	_ = uc.idem.Remember(ctx, placeScope, customerID, order.OrderID)
	ordersPlaced.Inc()

	if err := uc.events.OrderPlaced(ctx, OrderPlacedMsg{
		OrderID:       order.OrderID,
		CustomerPhone: order.CustomerID,
		TotalRupees:   order.Total(),
		Items:         len(order.Cart),
	}); err != nil {
		uc.log.Warn("order placed event not published", "order_id", order.OrderID, "err", err)
	}

	Deliver(ctx, uc.send, uc.log, customerID,
		fmt.Sprintf("🎉 Order %s placed! Finding vendor...", order.OrderID))

	prompt := VendorOrderText(order)
	for _, vendor := range uc.vendorPool {
		Deliver(ctx, uc.send, uc.log, vendor, prompt)
	}

	uc.log.Info("order placed", "order_id", order.OrderID, "customer", customerID,
		"items", len(order.Cart), "total", order.Total())
	return order, nil
}

// RecentOrder reports the order id remembered for this customer's last
// placement, if the guard window is still open.
func (uc *PlaceOrder) RecentOrder(ctx context.Context, customerID string) (string, bool) {
	id, ok, err := uc.idem.Recall(ctx, placeScope, customerID)
	if err != nil {
		return "", false
	}
	return id, ok
}
