package domain

import (
	"fmt"
	"sync/atomic"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAssigned Status = "assigned"
)

// LineItem is a priced cart entry. UnitPrice is a snapshot taken when the
// item was parsed; later catalog changes do not reprice existing carts.
type LineItem struct {
	Name      string `bson:"name" json:"name"`
	Quantity  int    `bson:"qty" json:"qty"`
	UnitPrice int64  `bson:"price" json:"price"`
}

func (li LineItem) Cost() int64 { return int64(li.Quantity) * li.UnitPrice }

type CustomerInfo struct {
	Name    string `bson:"name" json:"name"`
	Address string `bson:"address" json:"address"`
	Payment string `bson:"payment" json:"payment"`
}

type Order struct {
	OrderID    string       `bson:"orderId" json:"orderId"`
	CustomerID string       `bson:"customerPhone" json:"customerPhone"`
	Cart       []LineItem   `bson:"cart" json:"cart"`
	Customer   CustomerInfo `bson:"userInfo" json:"userInfo"`
	Status     Status       `bson:"status" json:"status"`
	VendorID   string       `bson:"vendorId,omitempty" json:"vendorId,omitempty"`
	CreatedAt  time.Time    `bson:"createdAt" json:"createdAt"`
	AssignedAt *time.Time   `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
}

func (o *Order) Total() int64 {
	var sum int64
	for _, li := range o.Cart {
		sum += li.Cost()
	}
	return sum
}

var lastOrderMillis atomic.Int64

// NewOrderID derives an order id from the creation instant. Millisecond
// resolution keeps ids sortable by creation order, and the digit tail is
// what vendors quote back when accepting. Two placements landing in the
// same millisecond must not share an id, so allocation is monotonic: a
// colliding timestamp is bumped past the last issued one.
func NewOrderID(t time.Time) string {
	ms := t.UnixMilli()
	for {
		last := lastOrderMillis.Load()
		if ms <= last {
			ms = last + 1
		}
		if lastOrderMillis.CompareAndSwap(last, ms) {
			return fmt.Sprintf("ORD-%d", ms)
		}
	}
}

// Vendor tracks which orders a vendor has claimed. AssignedOrders is a set:
// linking the same order twice must not duplicate the entry.
type Vendor struct {
	Phone          string    `bson:"phone" json:"phone"`
	AssignedOrders []string  `bson:"assignedOrders" json:"assignedOrders"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}
