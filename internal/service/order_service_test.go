package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caixapos/internal/apierror"
	"caixapos/internal/model"
	"caixapos/internal/worker"
)

type orderFixture struct {
	svc      OrderService
	orders   *fakeOrderRepo
	loyalty  *fakeLoyaltyRepo
	settings *fakeSettingsRepo
	pub      *fakePublisher
	alerts   *fakeAlerts
	storeID  uuid.UUID
}

func newOrderFixture(orders ...*model.Order) *orderFixture {
	f := &orderFixture{
		orders:   newFakeOrderRepo(orders...),
		loyalty:  newFakeLoyaltyRepo(),
		settings: &fakeSettingsRepo{},
		pub:      &fakePublisher{},
		alerts:   &fakeAlerts{},
		storeID:  uuid.New(),
	}
	for _, o := range orders {
		o.StoreID = f.storeID
	}
	f.svc = NewOrderService(f.orders, f.loyalty, f.settings, f.pub, f.alerts)
	return f
}

func testOrder(status model.OrderStatus, method string) *model.Order {
	return &model.Order{
		ID:            uuid.New(),
		OrderNumber:   101,
		Status:        status,
		Source:        model.SourceTotem,
		PaymentMethod: method,
		Total:         decimal.NewFromInt(25),
	}
}

func TestAdvanceFollowsActiveFlow(t *testing.T) {
	order := testOrder(model.StatusPending, "pix")
	f := newOrderFixture(order)

	resp, err := f.svc.Advance(context.Background(), f.storeID, order.ID)

	require.NoError(t, err)
	assert.Equal(t, "preparing", resp.NewStatus)
	assert.Equal(t, model.StatusPreparing, f.orders.orders[order.ID].Status)
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, order.ID.String(), f.pub.events[0].OrderID)
	assert.Equal(t, "preparing", f.pub.events[0].Status)
}

func TestAdvanceSkipsDisabledStatuses(t *testing.T) {
	order := testOrder(model.StatusPending, "pix")
	f := newOrderFixture(order)
	f.settings.settings = &model.StoreSettings{
		StoreID: f.storeID, PendingActive: true, PreparingActive: false,
	}

	resp, err := f.svc.Advance(context.Background(), f.storeID, order.ID)

	require.NoError(t, err)
	assert.Equal(t, "ready", resp.NewStatus)
}

func TestAdvanceTerminalOrderIsValidation(t *testing.T) {
	order := testOrder(model.StatusDelivered, "pix")
	f := newOrderFixture(order)

	_, err := f.svc.Advance(context.Background(), f.storeID, order.ID)

	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestAdvanceLostRaceIsConflict(t *testing.T) {
	order := testOrder(model.StatusPending, "pix")
	f := newOrderFixture(order)
	// Another terminal advances the order between our read and our write.
	f.orders.failNextCAS = true

	_, err := f.svc.Advance(context.Background(), f.storeID, order.ID)

	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	assert.Empty(t, f.pub.events)
}

func TestAdvanceUnknownOrderIsNotFound(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.Advance(context.Background(), f.storeID, uuid.New())

	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestAdvanceOtherStoreOrderIsNotFound(t *testing.T) {
	order := testOrder(model.StatusPending, "pix")
	f := newOrderFixture(order)

	_, err := f.svc.Advance(context.Background(), uuid.New(), order.ID)

	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestAdvanceReservationAtReadyAsksForPayment(t *testing.T) {
	order := testOrder(model.StatusReady, "Reserva")
	f := newOrderFixture(order)
	f.settings.methods = []model.PaymentMethod{{Name: "vale-refeição", Active: true}}

	resp, err := f.svc.Advance(context.Background(), f.storeID, order.ID)

	require.NoError(t, err)
	assert.True(t, resp.PaymentResolutionRequired)
	assert.Empty(t, resp.NewStatus)
	assert.Equal(t, []string{"dinheiro", "pix", "crédito", "débito", "vale-refeição"}, resp.PaymentMethods)
	// The order must not have moved.
	assert.Equal(t, model.StatusReady, f.orders.orders[order.ID].Status)
	assert.Empty(t, f.pub.events)
}

func TestResolvePaymentDeliversAtomically(t *testing.T) {
	order := testOrder(model.StatusReady, "reserva")
	f := newOrderFixture(order)

	resp, err := f.svc.ResolvePayment(context.Background(), f.storeID, order.ID, "pix")

	require.NoError(t, err)
	assert.Equal(t, "delivered", resp.NewStatus)
	stored := f.orders.orders[order.ID]
	assert.Equal(t, "pix", stored.PaymentMethod)
	assert.Equal(t, model.StatusDelivered, stored.Status)
}

func TestResolvePaymentRejectsPlaceholderMethod(t *testing.T) {
	order := testOrder(model.StatusReady, "reserva")
	f := newOrderFixture(order)

	_, err := f.svc.ResolvePayment(context.Background(), f.storeID, order.ID, " Reserva ")

	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestResolvePaymentRejectsUnknownMethod(t *testing.T) {
	order := testOrder(model.StatusReady, "reserva")
	f := newOrderFixture(order)

	_, err := f.svc.ResolvePayment(context.Background(), f.storeID, order.ID, "cheque")

	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.Equal(t, model.StatusReady, f.orders.orders[order.ID].Status)
}

func TestResolvePaymentOnNonReservationIsValidation(t *testing.T) {
	order := testOrder(model.StatusReady, "pix")
	f := newOrderFixture(order)

	_, err := f.svc.ResolvePayment(context.Background(), f.storeID, order.ID, "dinheiro")

	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCancelWithoutLoyaltyJustCancels(t *testing.T) {
	order := testOrder(model.StatusPreparing, "pix")
	f := newOrderFixture(order)

	resp, err := f.svc.Cancel(context.Background(), f.storeID, order.ID)

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.NewStatus)
	assert.Zero(t, resp.LoyaltyRefunded)
	assert.Equal(t, model.StatusCancelled, f.orders.orders[order.ID].Status)
}

func TestCancelLoyaltyOrderRefundsPoints(t *testing.T) {
	customerID := uuid.New()
	order := testOrder(model.StatusReady, "fidelidade - 50 pontos")
	order.CustomerID = &customerID
	f := newOrderFixture(order)
	f.loyalty.customers[customerID] = &model.Customer{ID: customerID, LoyaltyPoints: 10}
	f.loyalty.transactions = append(f.loyalty.transactions, &model.LoyaltyTransaction{
		ID: uuid.New(), CustomerID: customerID, OrderID: &order.ID,
		Points: -50, TransactionType: model.LoyaltyRedeem,
	})

	resp, err := f.svc.Cancel(context.Background(), f.storeID, order.ID)

	require.NoError(t, err)
	assert.Equal(t, 50, resp.LoyaltyRefunded)
	assert.False(t, resp.RefundPending)
	assert.Equal(t, 60, f.loyalty.customers[customerID].LoyaltyPoints)
	// The reversal is on the ledger, the original redeem untouched.
	require.Len(t, f.loyalty.transactions, 2)
	assert.True(t, f.loyalty.transactions[1].IsReversal)
	assert.Equal(t, 50, f.loyalty.transactions[1].Points)
}

func TestCancelRefundsAtMostOnce(t *testing.T) {
	customerID := uuid.New()
	order := testOrder(model.StatusReady, "fidelidade - 50 pontos")
	order.CustomerID = &customerID
	f := newOrderFixture(order)
	f.loyalty.customers[customerID] = &model.Customer{ID: customerID, LoyaltyPoints: 10}
	f.loyalty.transactions = append(f.loyalty.transactions,
		&model.LoyaltyTransaction{
			ID: uuid.New(), CustomerID: customerID, OrderID: &order.ID,
			Points: -50, TransactionType: model.LoyaltyRedeem,
		},
		// A previous cancel already credited the points back.
		&model.LoyaltyTransaction{
			ID: uuid.New(), CustomerID: customerID, OrderID: &order.ID,
			Points: 50, TransactionType: model.LoyaltyEarn, IsReversal: true,
		},
	)

	resp, err := f.svc.Cancel(context.Background(), f.storeID, order.ID)

	require.NoError(t, err)
	assert.Zero(t, resp.LoyaltyRefunded)
	assert.Equal(t, 10, f.loyalty.customers[customerID].LoyaltyPoints)
	assert.Len(t, f.loyalty.transactions, 2)
}

func TestCancelRefundFailureIsPartialFailure(t *testing.T) {
	customerID := uuid.New()
	order := testOrder(model.StatusReady, "fidelidade - 50 pontos")
	order.CustomerID = &customerID
	f := newOrderFixture(order)
	f.loyalty.customers[customerID] = &model.Customer{ID: customerID, LoyaltyPoints: 10}
	f.loyalty.transactions = append(f.loyalty.transactions, &model.LoyaltyTransaction{
		ID: uuid.New(), CustomerID: customerID, OrderID: &order.ID,
		Points: -50, TransactionType: model.LoyaltyRedeem,
	})
	f.loyalty.recordErr = errors.New("ledger unavailable")

	resp, err := f.svc.Cancel(context.Background(), f.storeID, order.ID)

	require.Error(t, err)
	assert.Equal(t, apierror.KindPartialFailure, apierror.KindOf(err))
	// The cancel itself committed.
	require.NotNil(t, resp)
	assert.Equal(t, "cancelled", resp.NewStatus)
	assert.True(t, resp.RefundPending)
	assert.NotEmpty(t, resp.Warning)
	assert.Equal(t, model.StatusCancelled, f.orders.orders[order.ID].Status)
	// An operator alert was queued.
	require.Len(t, f.alerts.payloads, 1)
	assert.Equal(t, worker.AlertRefundFailed, f.alerts.payloads[0].Kind)
	assert.Equal(t, order.ID.String(), f.alerts.payloads[0].OrderID)
}

func TestCancelDeliveredOrderIsValidation(t *testing.T) {
	order := testOrder(model.StatusDelivered, "pix")
	f := newOrderFixture(order)

	_, err := f.svc.Cancel(context.Background(), f.storeID, order.ID)

	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestPaymentMethodsDeduplicatesStoreExtras(t *testing.T) {
	f := newOrderFixture()
	f.settings.methods = []model.PaymentMethod{
		{Name: "PIX", Active: true},
		{Name: "vale-refeição", Active: true},
	}

	methods, err := f.svc.PaymentMethods(context.Background(), f.storeID)

	require.NoError(t, err)
	assert.Equal(t, []string{"dinheiro", "pix", "crédito", "débito", "vale-refeição"}, methods)
}
