package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
)

func TestMatchAcceptCommand(t *testing.T) {
	tests := []struct {
		input string
		code  string
		ok    bool
	}{
		{"ACCEPT ORD-1712345678901", "ORD-1712345678901", true},
		{"accept ord-1712345678901", "ORD-1712345678901", true},
		{"  Accept   901  ", "901", true},
		{"ACCEPT 12", "", false},   // shorthand needs at least three digits
		{"ACCEPT", "", false},
		{"accepted 901", "", false},
		{"ACCEPT ORD-", "", false},
		{"please accept 901", "", false},
		{"Shirt x 2", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, ok := MatchAcceptCommand(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}

func pendingOrder(id, customer string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		OrderID:    id,
		CustomerID: customer,
		Cart:       []domain.LineItem{{Name: "Shirt", Quantity: 2, UnitPrice: 15}},
		Status:     domain.StatusPending,
		CreatedAt:  createdAt,
	}
}

type claimFixture struct {
	uc      *ClaimOrder
	orders  *memOrders
	vendors *memVendors
	events  *memEvents
	sender  *memSender
}

func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()
	orders := newMemOrders()
	vendors := newMemVendors()
	events := &memEvents{}
	sender := &memSender{}
	return &claimFixture{
		uc:      NewClaimOrder(orders, vendors, events, sender),
		orders:  orders,
		vendors: vendors,
		events:  events,
		sender:  sender,
	}
}

func TestClaimAssignsPendingOrder(t *testing.T) {
	fx := newClaimFixture(t)
	ctx := context.Background()
	created := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, fx.orders.Insert(ctx, pendingOrder("ORD-1712000000901", "cust-1", created)))

	res, err := fx.uc.Execute(ctx, "vendor-1", "ORD-1712000000901")
	require.NoError(t, err)
	assert.Equal(t, ClaimAccepted, res.Outcome)
	assert.Equal(t, "ORD-1712000000901", res.OrderID)

	o, err := fx.orders.GetByID(ctx, "ORD-1712000000901")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, o.Status)
	assert.Equal(t, "vendor-1", o.VendorID)
	require.NotNil(t, o.AssignedAt)

	assert.Equal(t, []string{"ORD-1712000000901"}, fx.vendors.ordersOf("vendor-1"))
	assert.Equal(t, 1, fx.events.assignedCount())

	vendorMsgs := fx.sender.sentTo("vendor-1")
	require.Len(t, vendorMsgs, 1)
	assert.Contains(t, vendorMsgs[0], "You accepted order ORD-1712000000901")

	custMsgs := fx.sender.sentTo("cust-1")
	require.Len(t, custMsgs, 1)
	assert.Contains(t, custMsgs[0], "handled by 📞 vendor-1")
}

func TestConcurrentClaimsHaveExactlyOneWinner(t *testing.T) {
	fx := newClaimFixture(t)
	ctx := context.Background()
	created := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, fx.orders.Insert(ctx, pendingOrder("ORD-1712000000901", "cust-1", created)))

	const vendors = 16
	results := make([]ClaimResult, vendors)
	errs := make([]error, vendors)
	var wg sync.WaitGroup
	for i := 0; i < vendors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = fx.uc.Execute(ctx, fmt.Sprintf("vendor-%d", i), "ORD-1712000000901")
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "vendor-%d", i)
	}

	var accepted, alreadyAssigned int
	for _, r := range results {
		switch r.Outcome {
		case ClaimAccepted:
			accepted++
		case ClaimAlreadyAssigned:
			alreadyAssigned++
		default:
			t.Fatalf("unexpected outcome %q", r.Outcome)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, vendors-1, alreadyAssigned)

	o, err := fx.orders.GetByID(ctx, "ORD-1712000000901")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, o.Status)
	assert.Equal(t, []string{"ORD-1712000000901"}, fx.vendors.ordersOf(o.VendorID))
	assert.Equal(t, 1, fx.events.assignedCount())
}

func TestClaimBySuffixPicksMostRecentPending(t *testing.T) {
	fx := newClaimFixture(t)
	ctx := context.Background()
	t0 := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, fx.orders.Insert(ctx, pendingOrder("ORD-1712000000901", "cust-old", t0)))
	require.NoError(t, fx.orders.Insert(ctx, pendingOrder("ORD-1712000100901", "cust-new", t0.Add(time.Minute))))

	res, err := fx.uc.Execute(ctx, "vendor-1", "901")
	require.NoError(t, err)
	assert.Equal(t, ClaimAccepted, res.Outcome)
	assert.Equal(t, "ORD-1712000100901", res.OrderID)

	// The older order with the same suffix is untouched.
	old, err := fx.orders.GetByID(ctx, "ORD-1712000000901")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, old.Status)
}

func TestClaimUnknownCode(t *testing.T) {
	fx := newClaimFixture(t)
	ctx := context.Background()

	res, err := fx.uc.Execute(ctx, "vendor-1", "999")
	require.NoError(t, err)
	assert.Equal(t, ClaimNotFound, res.Outcome)

	msgs := fx.sender.sentTo("vendor-1")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "No order found")
}

func TestClaimFullIDForMissingOrder(t *testing.T) {
	fx := newClaimFixture(t)
	ctx := context.Background()

	res, err := fx.uc.Execute(ctx, "vendor-1", "ORD-1712000000901")
	require.NoError(t, err)
	assert.Equal(t, ClaimNotFound, res.Outcome)
}

func TestClaimReplayFromWinnerConverges(t *testing.T) {
	fx := newClaimFixture(t)
	ctx := context.Background()
	created := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, fx.orders.Insert(ctx, pendingOrder("ORD-1712000000901", "cust-1", created)))

	first, err := fx.uc.Execute(ctx, "vendor-1", "ORD-1712000000901")
	require.NoError(t, err)
	require.Equal(t, ClaimAccepted, first.Outcome)

	// The provider redelivers the same accept message.
	replay, err := fx.uc.Execute(ctx, "vendor-1", "ORD-1712000000901")
	require.NoError(t, err)
	assert.Equal(t, ClaimAccepted, replay.Outcome)

	// Add-once: the vendor link did not grow, the customer was not told
	// twice, and no second lifecycle event went out.
	assert.Equal(t, []string{"ORD-1712000000901"}, fx.vendors.ordersOf("vendor-1"))
	assert.Len(t, fx.sender.sentTo("cust-1"), 1)
	assert.Equal(t, 1, fx.events.assignedCount())
	assert.Len(t, fx.sender.sentTo("vendor-1"), 2)
}

func TestClaimAfterAssignmentTellsLoser(t *testing.T) {
	fx := newClaimFixture(t)
	ctx := context.Background()
	created := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, fx.orders.Insert(ctx, pendingOrder("ORD-1712000000901", "cust-1", created)))

	_, err := fx.uc.Execute(ctx, "vendor-1", "ORD-1712000000901")
	require.NoError(t, err)

	res, err := fx.uc.Execute(ctx, "vendor-2", "ORD-1712000000901")
	require.NoError(t, err)
	assert.Equal(t, ClaimAlreadyAssigned, res.Outcome)

	msgs := fx.sender.sentTo("vendor-2")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "already assigned")
	assert.Empty(t, fx.vendors.ordersOf("vendor-2"))
}

func TestClaimBySuffixIgnoresAssignedOrders(t *testing.T) {
	fx := newClaimFixture(t)
	ctx := context.Background()
	t0 := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, fx.orders.Insert(ctx, pendingOrder("ORD-1712000000901", "cust-1", t0)))

	_, err := fx.uc.Execute(ctx, "vendor-1", "ORD-1712000000901")
	require.NoError(t, err)

	// The shorthand only searches pending orders, so the assigned one is
	// invisible to it.
	res, err := fx.uc.Execute(ctx, "vendor-2", "901")
	require.NoError(t, err)
	assert.Equal(t, ClaimNotFound, res.Outcome)
}
