package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/realtime"
	"caixapos/internal/repository"
	"caixapos/internal/worker"
)

// In-memory doubles for the repository ports. They mimic the conditional
// write semantics of the real implementations so race outcomes can be
// exercised without a database.

type fakeOrderRepo struct {
	orders    map[uuid.UUID]*model.Order
	updateErr error
	// failNextCAS makes the next conditional update report zero affected
	// rows, simulating a concurrent writer that got there first.
	failNextCAS bool
}

func newFakeOrderRepo(orders ...*model.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) List(_ context.Context, storeID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.StoreID != storeID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && string(o.Status) != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, allowed []model.OrderStatus, target model.OrderStatus) (bool, error) {
	if r.updateErr != nil {
		return false, r.updateErr
	}
	if r.failNextCAS {
		r.failNextCAS = false
		return false, nil
	}
	order, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	for _, status := range allowed {
		if order.Status == status {
			order.Status = target
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) ResolveReservationPayment(_ context.Context, id uuid.UUID, method string) (bool, error) {
	order, ok := r.orders[id]
	if !ok || !order.IsReservation() || order.Status.Terminal() {
		return false, nil
	}
	order.PaymentMethod = method
	order.Status = model.StatusDelivered
	return true, nil
}

func (r *fakeOrderRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.CashRegisterID != nil && *o.CashRegisterID == sessionID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) CountUnresolvedReservations(_ context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	for _, o := range r.orders {
		if o.CashRegisterID != nil && *o.CashRegisterID == sessionID &&
			o.IsReservation() && !o.Status.Terminal() {
			count++
		}
	}
	return count, nil
}

func (r *fakeOrderRepo) AttachPendingToSession(_ context.Context, storeID, sessionID uuid.UUID) (int64, error) {
	var count int64
	for _, o := range r.orders {
		if o.StoreID == storeID && o.CashRegisterID == nil && !o.Status.Terminal() {
			id := sessionID
			o.CashRegisterID = &id
			count++
		}
	}
	return count, nil
}

func (r *fakeOrderRepo) deliverSession(sessionID uuid.UUID) int64 {
	var count int64
	for _, o := range r.orders {
		if o.CashRegisterID != nil && *o.CashRegisterID == sessionID && !o.Status.Terminal() {
			o.Status = model.StatusDelivered
			count++
		}
	}
	return count
}

type fakeLoyaltyRepo struct {
	customers    map[uuid.UUID]*model.Customer
	transactions []*model.LoyaltyTransaction
	recordErr    error
	sumErr       error
}

func newFakeLoyaltyRepo() *fakeLoyaltyRepo {
	return &fakeLoyaltyRepo{customers: map[uuid.UUID]*model.Customer{}}
}

func (r *fakeLoyaltyRepo) FindCustomer(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *customer
	return &clone, nil
}

func (r *fakeLoyaltyRepo) SumRedeemedByOrder(_ context.Context, orderID uuid.UUID) (int, error) {
	if r.sumErr != nil {
		return 0, r.sumErr
	}
	total := 0
	for _, t := range r.transactions {
		if t.OrderID != nil && *t.OrderID == orderID &&
			t.TransactionType == model.LoyaltyRedeem && !t.IsReversal {
			if t.Points < 0 {
				total -= t.Points
			} else {
				total += t.Points
			}
		}
	}
	return total, nil
}

func (r *fakeLoyaltyRepo) HasReversal(_ context.Context, orderID uuid.UUID) (bool, error) {
	for _, t := range r.transactions {
		if t.OrderID != nil && *t.OrderID == orderID && t.IsReversal {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLoyaltyRepo) RecordReversal(ctx context.Context, t *model.LoyaltyTransaction) error {
	if r.recordErr != nil {
		return r.recordErr
	}
	if exists, _ := r.HasReversal(ctx, *t.OrderID); exists {
		return repository.ErrReversalExists
	}
	t.IsReversal = true
	t.CreatedAt = time.Now()
	r.transactions = append(r.transactions, t)
	if customer, ok := r.customers[t.CustomerID]; ok {
		customer.LoyaltyPoints += t.Points
	}
	return nil
}

func (r *fakeLoyaltyRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.LoyaltyTransaction, error) {
	var out []model.LoyaltyTransaction
	for _, t := range r.transactions {
		if t.CustomerID == customerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeSettingsRepo struct {
	settings *model.StoreSettings
	methods  []model.PaymentMethod
}

func (r *fakeSettingsRepo) FindByStore(_ context.Context, _ uuid.UUID) (*model.StoreSettings, error) {
	return r.settings, nil
}

func (r *fakeSettingsRepo) Upsert(_ context.Context, settings *model.StoreSettings) error {
	r.settings = settings
	return nil
}

func (r *fakeSettingsRepo) ListPaymentMethods(_ context.Context, _ uuid.UUID) ([]model.PaymentMethod, error) {
	return r.methods, nil
}

type fakeCaixaRepo struct {
	sessions map[uuid.UUID]*model.CashRegister
	orders   *fakeOrderRepo
}

func newFakeCaixaRepo(orders *fakeOrderRepo, sessions ...*model.CashRegister) *fakeCaixaRepo {
	r := &fakeCaixaRepo{sessions: map[uuid.UUID]*model.CashRegister{}, orders: orders}
	for _, s := range sessions {
		r.sessions[s.ID] = s
	}
	return r
}

func (r *fakeCaixaRepo) OpenSession(_ context.Context, session *model.CashRegister) (bool, error) {
	for _, s := range r.sessions {
		if s.StoreID == session.StoreID && s.Open() {
			return false, nil
		}
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.OpenedAt = time.Now()
	clone := *session
	r.sessions[session.ID] = &clone
	return true, nil
}

func (r *fakeCaixaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *fakeCaixaRepo) FindOpenByStore(_ context.Context, storeID uuid.UUID) (*model.CashRegister, error) {
	for _, s := range r.sessions {
		if s.StoreID == storeID && s.Open() {
			clone := *s
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCaixaRepo) CloseSession(_ context.Context, id uuid.UUID, finalAmount decimal.Decimal) (int64, bool, error) {
	session, ok := r.sessions[id]
	if !ok || !session.Open() {
		return 0, false, nil
	}
	now := time.Now()
	session.FinalAmount = &finalAmount
	session.ClosedAt = &now
	return r.orders.deliverSession(id), true, nil
}

func (r *fakeCaixaRepo) ListClosed(_ context.Context, storeID uuid.UUID, _, _ int) ([]model.CashRegister, int64, error) {
	var out []model.CashRegister
	for _, s := range r.sessions {
		if s.StoreID == storeID && !s.Open() {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

type fakePublisher struct {
	events []realtime.OrderEvent
}

func (p *fakePublisher) PublishOrderEvent(_ context.Context, event realtime.OrderEvent) error {
	p.events = append(p.events, event)
	return nil
}

type fakeAlerts struct {
	payloads []worker.AlertJobPayload
}

func (a *fakeAlerts) EnqueueAlert(_ context.Context, payload worker.AlertJobPayload) error {
	a.payloads = append(a.payloads, payload)
	return nil
}
