package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
	"github.com/nethra1406/whatsappbot/internal/logging"
	"github.com/nethra1406/whatsappbot/internal/usecase"
)

// Engine drives the ordering dialog. Each inbound message advances the
// user's session exactly one step; replies go out fire-and-forget.
type Engine struct {
	sessions   *Manager
	catalog    domain.Catalog
	menuHeader string
	place      *usecase.PlaceOrder
	send       usecase.Sender
	log        *slog.Logger
}

func NewEngine(sessions *Manager, catalog domain.Catalog, menuHeader string, place *usecase.PlaceOrder, send usecase.Sender) *Engine {
	if menuHeader == "" {
		menuHeader = "🧺 Menu:"
	}
	return &Engine{
		sessions:   sessions,
		catalog:    catalog,
		menuHeader: menuHeader,
		place:      place,
		send:       send,
		log:        logging.New("dialog"),
	}
}

// HandleMessage processes one inbound customer message. A non-nil error
// means the triggering webhook delivery must be failed so the provider
// redelivers (store write failures); everything user-facing is handled by
// replying, not by erroring.
func (e *Engine) HandleMessage(ctx context.Context, userID, text string) error {
	text = strings.TrimSpace(text)

	// A confirm replay can arrive after its session was already destroyed;
	// answer from the placement guard instead of restarting the dialog.
	if strings.EqualFold(text, "place order") {
		if _, ok := e.place.RecentOrder(ctx, userID); ok {
			e.reply(ctx, userID, "✅ Order already placed. Please wait.")
			return nil
		}
	}

	var err error
	e.sessions.With(userID, func(s *Session) {
		err = e.step(ctx, s, text)
	})
	return err
}

func (e *Engine) step(ctx context.Context, s *Session, text string) error {
	switch s.Step {
	case StepCatalog:
		// The opening message only triggers the menu; it is not parsed.
		e.reply(ctx, s.UserID, e.menuText())
		s.Step = StepOrdering

	case StepOrdering:
		if strings.EqualFold(text, "done") {
			if len(s.Cart) == 0 {
				e.reply(ctx, s.UserID, "🛒 Cart is empty!")
				return nil
			}
			s.Step = StepGetName
			e.reply(ctx, s.UserID, "👤 Enter your full name:")
			return nil
		}
		item, ok := ParseLineItem(text, e.catalog)
		if !ok {
			e.reply(ctx, s.UserID, `⚠ Format: "Shirt x 2"`)
			return nil
		}
		s.Cart = append(s.Cart, item)
		e.reply(ctx, s.UserID, fmt.Sprintf("✅ Added: %s x %d", item.Name, item.Quantity))
		e.reply(ctx, s.UserID, `🛒 Add more or type "done"`)

	case StepGetName:
		s.Customer.Name = text
		s.Step = StepGetAddress
		e.reply(ctx, s.UserID, "📍 Enter delivery address:")

	case StepGetAddress:
		s.Customer.Address = text
		s.Step = StepGetPayment
		e.reply(ctx, s.UserID, "💳 Payment method: Cash / UPI / Card")

	case StepGetPayment:
		s.Customer.Payment = text
		s.Step = StepConfirm
		e.reply(ctx, s.UserID, e.summaryText(s))

	case StepConfirm:
		if !strings.EqualFold(text, "place order") {
			e.reply(ctx, s.UserID, `❓ Type "Place Order" to confirm.`)
			return nil
		}
		if _, err := e.place.Execute(ctx, s.UserID, s.Cart, s.Customer); err != nil {
			if errors.Is(err, usecase.ErrDuplicatePlacement) {
				e.reply(ctx, s.UserID, "✅ Order already placed. Please wait.")
				s.Finish()
				return nil
			}
			// Store failure: keep the session so the redelivered confirm
			// can finalize once the store is back.
			return err
		}
		s.Finish()

	default:
		s.Step = StepCatalog
		e.reply(ctx, s.UserID, "🤖 Type anything to start ordering.")
	}
	return nil
}

func (e *Engine) reply(ctx context.Context, to, text string) {
	usecase.Deliver(ctx, e.send, e.log, to, text)
}

func (e *Engine) menuText() string {
	var b strings.Builder
	b.WriteString(e.menuHeader)
	b.WriteString("\n\n")
	for _, en := range e.catalog.Entries() {
		fmt.Fprintf(&b, "%s – ₹%d\n", capitalize(en.Name), en.UnitPrice)
	}
	b.WriteString("\nReply like: \"Shirt x 2\"\nType \"done\" when finished.")
	return b.String()
}

func (e *Engine) summaryText(s *Session) string {
	var b strings.Builder
	b.WriteString("🧾 Order Summary:\n")
	var total int64
	for _, li := range s.Cart {
		fmt.Fprintf(&b, "• %s x %d = ₹%d\n", li.Name, li.Quantity, li.Cost())
		total += li.Cost()
	}
	b.WriteString("————————————\n")
	fmt.Fprintf(&b, "👤 Name: %s\n", s.Customer.Name)
	fmt.Fprintf(&b, "🏠 Address: %s\n", s.Customer.Address)
	fmt.Fprintf(&b, "💳 Payment: %s\n", s.Customer.Payment)
	fmt.Fprintf(&b, "💰 Total: ₹%d\n\n", total)
	b.WriteString(`✅ Type "Place Order" to confirm.`)
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
