package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/nethra1406/whatsappbot/internal/logging"
)

// Vendors accept either the full id ("ACCEPT ORD-1712345678901") or a
// trailing-digits shorthand of at least three digits ("ACCEPT 901").
var acceptRe = regexp.MustCompile(`(?i)^accept\s+(ord-\d+|\d{3,})$`)

// MatchAcceptCommand extracts the order code from a vendor accept message.
func MatchAcceptCommand(text string) (string, bool) {
	m := acceptRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

type ClaimOutcome string

const (
	ClaimAccepted        ClaimOutcome = "accepted"
	ClaimAlreadyAssigned ClaimOutcome = "already_assigned"
	ClaimNotFound        ClaimOutcome = "not_found"
)

type ClaimResult struct {
	Outcome ClaimOutcome
	OrderID string
}

// ClaimOrder is the assignment broker: first vendor to win the conditional
// update owns the order, everyone else is told it is gone.
type ClaimOrder struct {
	orders  OrderRepo
	vendors VendorRepo
	events  EventPublisher
	send    Sender
	log     *slog.Logger
	now     func() time.Time
}

func NewClaimOrder(orders OrderRepo, vendors VendorRepo, events EventPublisher, send Sender) *ClaimOrder {
	return &ClaimOrder{
		orders:  orders,
		vendors: vendors,
		events:  events,
		send:    send,
		log:     logging.New("claim-order"),
		now:     time.Now,
	}
}

func (uc *ClaimOrder) Execute(ctx context.Context, vendorID, code string) (ClaimResult, error) {
	orderID, err := uc.resolveCode(ctx, code)
	if err != nil {
		return ClaimResult{}, err
	}
	if orderID == "" {
		claims.WithLabelValues(string(ClaimNotFound)).Inc()
		Deliver(ctx, uc.send, uc.log, vendorID,
			fmt.Sprintf("❌ No order found matching %q.", code))
		return ClaimResult{Outcome: ClaimNotFound}, nil
	}

	assigned, err := uc.orders.AssignIf(ctx, orderID, vendorID, uc.now())
	if err != nil {
		return ClaimResult{}, fmt.Errorf("assign order %s: %w", orderID, err)
	}

	if assigned == nil {
		// The conditional update missed: the order either never existed or
		// another claim won. Re-read to tell the vendor which.
		current, err := uc.orders.GetByID(ctx, orderID)
		if err != nil {
			return ClaimResult{}, fmt.Errorf("look up order %s: %w", orderID, err)
		}
		if current == nil {
			claims.WithLabelValues(string(ClaimNotFound)).Inc()
			Deliver(ctx, uc.send, uc.log, vendorID,
				fmt.Sprintf("❌ No order found matching %q.", code))
			return ClaimResult{Outcome: ClaimNotFound}, nil
		}
		if current.VendorID == vendorID {
			// Redelivered accept from the winner. Converge the vendor link
			// (add-once) and answer as accepted, without repeating the
			// customer notification or the lifecycle event.
			if err := uc.ensureVendorLink(ctx, vendorID, orderID); err != nil {
				return ClaimResult{}, err
			}
			claims.WithLabelValues(string(ClaimAccepted)).Inc()
			Deliver(ctx, uc.send, uc.log, vendorID,
				fmt.Sprintf("✅ You accepted order %s. Proceed with pickup.", orderID))
			return ClaimResult{Outcome: ClaimAccepted, OrderID: orderID}, nil
		}
		claims.WithLabelValues(string(ClaimAlreadyAssigned)).Inc()
		Deliver(ctx, uc.send, uc.log, vendorID, "🚫 This order is already assigned.")
		return ClaimResult{Outcome: ClaimAlreadyAssigned, OrderID: orderID}, nil
	}

	if err := uc.ensureVendorLink(ctx, vendorID, orderID); err != nil {
		return ClaimResult{}, err
	}

	claims.WithLabelValues(string(ClaimAccepted)).Inc()
	if err := uc.events.OrderAssigned(ctx, OrderAssignedMsg{OrderID: orderID, VendorPhone: vendorID}); err != nil {
		uc.log.Warn("order assigned event not published", "order_id", orderID, "err", err)
	}

	Deliver(ctx, uc.send, uc.log, vendorID,
		fmt.Sprintf("✅ You accepted order %s. Proceed with pickup.", orderID))
	Deliver(ctx, uc.send, uc.log, assigned.CustomerID,
		fmt.Sprintf("📦 Order %s is now being handled by 📞 %s.", orderID, vendorID))

	uc.log.Info("order claimed", "order_id", orderID, "vendor", vendorID)
	return ClaimResult{Outcome: ClaimAccepted, OrderID: orderID}, nil
}

// resolveCode maps an accept code to a concrete order id. Full ids pass
// through; a bare digit code matches the most recently created pending
// order whose id ends with those digits. Returns "" when nothing matches.
func (uc *ClaimOrder) resolveCode(ctx context.Context, code string) (string, error) {
	if strings.HasPrefix(code, "ORD-") {
		return code, nil
	}
	pending, err := uc.orders.ListPending(ctx)
	if err != nil {
		return "", fmt.Errorf("list pending orders: %w", err)
	}
	for _, o := range pending {
		if strings.HasSuffix(o.OrderID, code) {
			return o.OrderID, nil
		}
	}
	return "", nil
}

func (uc *ClaimOrder) ensureVendorLink(ctx context.Context, vendorID, orderID string) error {
	if err := uc.vendors.Upsert(ctx, vendorID); err != nil {
		return fmt.Errorf("upsert vendor %s: %w", vendorID, err)
	}
	if err := uc.vendors.LinkOrder(ctx, vendorID, orderID); err != nil {
		return fmt.Errorf("link order %s to vendor %s: %w", orderID, vendorID, err)
	}
	return nil
}
