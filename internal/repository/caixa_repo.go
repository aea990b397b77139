package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"caixapos/internal/model"
)

var errAlreadyClosed = errors.New("cash register already closed")

// CaixaRepository persists cash register sessions. Opening relies on a
// conditional insert plus a partial unique index on open sessions, so at
// most one session per store can be open no matter how many operators race.
type CaixaRepository interface {
	// OpenSession inserts the session only while no open session exists for
	// the store. Returns false when another session is already open.
	OpenSession(ctx context.Context, session *model.CashRegister) (bool, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	FindOpenByStore(ctx context.Context, storeID uuid.UUID) (*model.CashRegister, error)

	// CloseSession delivers every live order attributed to the session and
	// stamps the final amount and close time, all in one transaction.
	// Returns the delivered order count; ok=false when the session was
	// already closed by a concurrent operator.
	CloseSession(ctx context.Context, id uuid.UUID, finalAmount decimal.Decimal) (delivered int64, ok bool, err error)

	ListClosed(ctx context.Context, storeID uuid.UUID, page, limit int) ([]model.CashRegister, int64, error)
}

type caixaRepo struct {
	db *gorm.DB
}

func NewCaixaRepository(db *gorm.DB) CaixaRepository {
	return &caixaRepo{db: db}
}

func (r *caixaRepo) OpenSession(ctx context.Context, session *model.CashRegister) (bool, error) {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now()
	}

	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO cash_registers (id, store_id, opened_by, initial_amount, opened_at)
		SELECT ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM cash_registers
			WHERE store_id = ? AND closed_at IS NULL
		)`,
		session.ID, session.StoreID, session.OpenedBy, session.InitialAmount, session.OpenedAt,
		session.StoreID,
	)
	if res.Error != nil {
		// Two racing inserts can both pass the NOT EXISTS check; the partial
		// unique index rejects the loser with a 23505.
		var pgErr *pgconn.PgError
		if errors.As(res.Error, &pgErr) && pgErr.Code == "23505" {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *caixaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var session model.CashRegister
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *caixaRepo) FindOpenByStore(ctx context.Context, storeID uuid.UUID) (*model.CashRegister, error) {
	var session model.CashRegister
	err := r.db.WithContext(ctx).
		First(&session, "store_id = ? AND closed_at IS NULL", storeID).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *caixaRepo) CloseSession(ctx context.Context, id uuid.UUID, finalAmount decimal.Decimal) (int64, bool, error) {
	var delivered int64
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The close must win or lose before orders are touched, otherwise a
		// racing close could deliver the same orders twice.
		res := tx.Model(&model.CashRegister{}).
			Where("id = ? AND closed_at IS NULL", id).
			Updates(map[string]interface{}{
				"final_amount": finalAmount,
				"closed_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyClosed
		}

		res = tx.Model(&model.Order{}).
			Where("cash_register_id = ? AND status NOT IN ?",
				id,
				[]model.OrderStatus{model.StatusDelivered, model.StatusCancelled}).
			Updates(map[string]interface{}{
				"status":     model.StatusDelivered,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		delivered = res.RowsAffected
		return nil
	})
	if errors.Is(err, errAlreadyClosed) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return delivered, true, nil
}

func (r *caixaRepo) ListClosed(ctx context.Context, storeID uuid.UUID, page, limit int) ([]model.CashRegister, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.CashRegister{}).
		Where("store_id = ? AND closed_at IS NOT NULL", storeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []model.CashRegister
	err := query.
		Order("closed_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}
