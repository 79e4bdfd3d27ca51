package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nethra1406/whatsappbot/internal/dialog"
	"github.com/nethra1406/whatsappbot/internal/logging"
	"github.com/nethra1406/whatsappbot/internal/usecase"
)

// WebhookHandler is the inbound entry point: it unwraps the Cloud API
// payload, applies the allowlists, and routes each message to either the
// claim broker (vendor accept commands) or the ordering dialog.
type WebhookHandler struct {
	engine      *dialog.Engine
	claim       *usecase.ClaimOrder
	send        usecase.Sender
	verifyToken string
	verified    map[string]struct{}
	vendors     map[string]struct{}
}

func NewWebhookHandler(engine *dialog.Engine, claim *usecase.ClaimOrder, send usecase.Sender, verifyToken string, customers, vendors []string) *WebhookHandler {
	h := &WebhookHandler{
		engine:      engine,
		claim:       claim,
		send:        send,
		verifyToken: verifyToken,
		verified:    make(map[string]struct{}, len(customers)+len(vendors)),
		vendors:     make(map[string]struct{}, len(vendors)),
	}
	for _, n := range customers {
		h.verified[n] = struct{}{}
	}
	for _, n := range vendors {
		// Vendors are verified senders too; a vendor can place an order.
		h.verified[n] = struct{}{}
		h.vendors[n] = struct{}{}
	}
	return h
}

// Verify answers the provider's subscription handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		logging.From(c).Info("webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}
	c.AbortWithStatus(http.StatusForbidden)
}

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

func (p *webhookPayload) firstMessage() (from, text string, ok bool) {
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return "", "", false
	}
	msgs := p.Entry[0].Changes[0].Value.Messages
	if len(msgs) == 0 {
		return "", "", false
	}
	return msgs[0].From, strings.TrimSpace(msgs[0].Text.Body), true
}

// Receive handles one webhook delivery. Deliveries carrying no text message
// (status receipts, malformed bodies) are acknowledged as no-ops. Only
// store failures produce a non-2xx status, which tells the provider to
// redeliver.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Status(http.StatusOK)
		return
	}
	from, text, ok := payload.firstMessage()
	if !ok || from == "" || text == "" {
		c.Status(http.StatusOK)
		return
	}

	ctx := c.Request.Context()
	log := logging.From(c)

	if _, verified := h.verified[from]; !verified {
		usecase.Deliver(ctx, h.send, log, from, "⚠ Access restricted to verified users.")
		c.Status(http.StatusOK)
		return
	}

	if _, isVendor := h.vendors[from]; isVendor {
		if code, matched := usecase.MatchAcceptCommand(text); matched {
			if _, err := h.claim.Execute(ctx, from, code); err != nil {
				log.Error("claim failed", "vendor", from, "code", code, "err", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.Status(http.StatusOK)
			return
		}
		// Any other vendor text falls through to the ordering dialog.
	}

	if err := h.engine.HandleMessage(ctx, from, text); err != nil {
		log.Error("message handling failed", "from", from, "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}
