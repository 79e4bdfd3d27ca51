package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
)

// Deliver fires one outbound text. Delivery failure never affects the state
// transition that triggered it; it is counted and logged, nothing more.
func Deliver(ctx context.Context, s Sender, log *slog.Logger, to, text string) {
	if err := s.Send(ctx, to, text); err != nil {
		sendFailures.Inc()
		log.Warn("outbound send failed", "to", to, "err", err)
	}
}

// VendorOrderText renders the full-order broadcast a vendor receives when a
// new order goes up for grabs.
func VendorOrderText(o *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📢 New Order\n")
	fmt.Fprintf(&b, "🆔 Order ID: %s\n", o.OrderID)
	fmt.Fprintf(&b, "📞 Customer: %s\n", o.CustomerID)
	fmt.Fprintf(&b, "👤 Name: %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "🏠 Address: %s\n", o.Customer.Address)
	fmt.Fprintf(&b, "💳 Payment: %s\n\n", o.Customer.Payment)
	b.WriteString("🧺 Items:\n")
	for _, li := range o.Cart {
		fmt.Fprintf(&b, "- %s x %d = ₹%d\n", li.Name, li.Quantity, li.Cost())
	}
	fmt.Fprintf(&b, "💰 Total: ₹%d\n\n", o.Total())
	fmt.Fprintf(&b, "Reply: ACCEPT %s", o.OrderID)
	return b.String()
}
