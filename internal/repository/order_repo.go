package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"caixapos/internal/dto"
	"caixapos/internal/model"
)

// OrderRepository is the persistence port for orders. Status transitions go
// through conditional updates so concurrent operators cannot double-apply a
// transition: the WHERE clause carries the expected current state and the
// caller checks the affected row count.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, storeID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error)

	// UpdateStatusIf moves the order to the target status only if its current
	// status is one of the allowed set. Returns false when another writer got
	// there first (or the order does not exist).
	UpdateStatusIf(ctx context.Context, id uuid.UUID, allowed []model.OrderStatus, target model.OrderStatus) (bool, error)

	// ResolveReservationPayment atomically replaces the reservation
	// placeholder with a concrete payment method and delivers the order.
	// Returns false when the order is no longer awaiting resolution.
	ResolveReservationPayment(ctx context.Context, id uuid.UUID, method string) (bool, error)

	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Order, error)
	CountUnresolvedReservations(ctx context.Context, sessionID uuid.UUID) (int64, error)
	AttachPendingToSession(ctx context.Context, storeID, sessionID uuid.UUID) (int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, storeID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("store_id = ?", storeID)

	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		day, err := time.Parse("2006-01-02", filter.Date)
		if err == nil {
			query = query.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	offset := (filter.Page - 1) * filter.Limit
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, allowed []model.OrderStatus, target model.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, allowed).
		Updates(map[string]interface{}{
			"status":     target,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) ResolveReservationPayment(ctx context.Context, id uuid.UUID, method string) (bool, error) {
	// Single UPDATE so the method swap and the delivery land together or not
	// at all. Matching on the placeholder keeps the call idempotent under a
	// double click.
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND LOWER(TRIM(payment_method)) = ? AND status NOT IN ?",
			id, model.PaymentReservation,
			[]model.OrderStatus{model.StatusDelivered, model.StatusCancelled}).
		Updates(map[string]interface{}{
			"payment_method": method,
			"status":         model.StatusDelivered,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("cash_register_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) CountUnresolvedReservations(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("cash_register_id = ? AND LOWER(TRIM(payment_method)) = ? AND status NOT IN ?",
			sessionID, model.PaymentReservation,
			[]model.OrderStatus{model.StatusDelivered, model.StatusCancelled}).
		Count(&count).Error
	return count, err
}

func (r *orderRepo) AttachPendingToSession(ctx context.Context, storeID, sessionID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("store_id = ? AND cash_register_id IS NULL AND status NOT IN ?",
			storeID,
			[]model.OrderStatus{model.StatusDelivered, model.StatusCancelled}).
		Updates(map[string]interface{}{
			"cash_register_id": sessionID,
			"updated_at":       time.Now(),
		})
	return res.RowsAffected, res.Error
}
