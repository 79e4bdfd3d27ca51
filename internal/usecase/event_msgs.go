package usecase

import "context"

// Published on the order lifecycle topic.
type OrderPlacedMsg struct {
	OrderID       string `json:"orderId"`
	CustomerPhone string `json:"customerPhone"`
	TotalRupees   int64  `json:"totalRupees"`
	Items         int    `json:"items"`
}

type OrderAssignedMsg struct {
	OrderID     string `json:"orderId"`
	VendorPhone string `json:"vendorPhone"`
}

// OutboundMsg travels over the outbound send queue.
type OutboundMsg struct {
	MsgID string `json:"msgId"`
	To    string `json:"to"`
	Text  string `json:"text"`
}

// NopEvents satisfies EventPublisher when no broker is configured.
type NopEvents struct{}

func (NopEvents) OrderPlaced(ctx context.Context, msg OrderPlacedMsg) error     { return nil }
func (NopEvents) OrderAssigned(ctx context.Context, msg OrderAssignedMsg) error { return nil }
