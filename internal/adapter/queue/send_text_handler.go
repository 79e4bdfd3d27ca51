package queue

import (
	"context"

	"github.com/nethra1406/whatsappbot/internal/usecase"
)

// SendTextHandler drains the outbound queue and delivers each text through
// the Cloud API client. Intended for use with JSONHandler[usecase.OutboundMsg].
type SendTextHandler struct {
	client usecase.Sender
}

func NewSendTextHandler(client usecase.Sender) *SendTextHandler {
	return &SendTextHandler{client: client}
}

func (h *SendTextHandler) HandleSend(ctx context.Context, msg usecase.OutboundMsg) error {
	return h.client.Send(ctx, msg.To, msg.Text)
}
