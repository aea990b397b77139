package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"caixapos/internal/model"
)

// ErrReversalExists is returned by RecordReversal when a compensation entry
// for the order is already on the ledger.
var ErrReversalExists = errors.New("loyalty reversal already recorded for order")

// LoyaltyRepository persists customers and their point ledger. Balance
// changes happen through atomic in-database increments, never through a
// read-modify-write in Go.
type LoyaltyRepository interface {
	FindCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// SumRedeemedByOrder totals the points spent on an order, as a positive
	// number. Zero means nothing to refund.
	SumRedeemedByOrder(ctx context.Context, orderID uuid.UUID) (int, error)

	// HasReversal reports whether a compensation entry already exists for
	// the order.
	HasReversal(ctx context.Context, orderID uuid.UUID) (bool, error)

	// RecordReversal appends the compensation entry and credits the customer
	// balance in one transaction. The partial unique index on reversal rows
	// turns a racing double-cancel into ErrReversalExists, so the credit is
	// applied at most once per order.
	RecordReversal(ctx context.Context, t *model.LoyaltyTransaction) error

	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.LoyaltyTransaction, error)
}

type loyaltyRepo struct {
	db *gorm.DB
}

func NewLoyaltyRepository(db *gorm.DB) LoyaltyRepository {
	return &loyaltyRepo{db: db}
}

func (r *loyaltyRepo) FindCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *loyaltyRepo) SumRedeemedByOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&model.LoyaltyTransaction{}).
		Select("COALESCE(SUM(ABS(points)), 0)").
		Where("order_id = ? AND transaction_type = ? AND is_reversal = false",
			orderID, model.LoyaltyRedeem).
		Scan(&total).Error
	return total, err
}

func (r *loyaltyRepo) HasReversal(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LoyaltyTransaction{}).
		Where("order_id = ? AND is_reversal = true", orderID).
		Count(&count).Error
	return count > 0, err
}

func (r *loyaltyRepo) RecordReversal(ctx context.Context, t *model.LoyaltyTransaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.IsReversal = true

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return tx.Model(&model.Customer{}).
			Where("id = ?", t.CustomerID).
			Update("loyalty_points", gorm.Expr("loyalty_points + ?", t.Points)).Error
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrReversalExists
		}
		return err
	}
	return nil
}

func (r *loyaltyRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.LoyaltyTransaction, error) {
	var transactions []model.LoyaltyTransaction
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
