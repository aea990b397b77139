package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/repository"
)

type LoyaltyService interface {
	Balance(ctx context.Context, storeID, customerID uuid.UUID) (*dto.LoyaltyBalanceResponse, error)
	Statement(ctx context.Context, storeID, customerID uuid.UUID) (*dto.LoyaltyStatementResponse, error)
}

type loyaltyService struct {
	loyaltyRepo repository.LoyaltyRepository
}

func NewLoyaltyService(loyaltyRepo repository.LoyaltyRepository) LoyaltyService {
	return &loyaltyService{loyaltyRepo: loyaltyRepo}
}

func (s *loyaltyService) Balance(ctx context.Context, storeID, customerID uuid.UUID) (*dto.LoyaltyBalanceResponse, error) {
	customer, err := s.findStoreCustomer(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}
	return &dto.LoyaltyBalanceResponse{
		CustomerID: customer.ID.String(),
		Points:     customer.LoyaltyPoints,
	}, nil
}

func (s *loyaltyService) Statement(ctx context.Context, storeID, customerID uuid.UUID) (*dto.LoyaltyStatementResponse, error) {
	customer, err := s.findStoreCustomer(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.loyaltyRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apierror.Upstream("list_transactions", err)
	}

	entries := make([]dto.LoyaltyTransactionResponse, len(transactions))
	for i, t := range transactions {
		entries[i] = dto.LoyaltyTransactionResponse{
			ID:              t.ID.String(),
			Points:          t.Points,
			TransactionType: t.TransactionType,
			IsReversal:      t.IsReversal,
			Description:     t.Description,
			CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		}
		if t.OrderID != nil {
			id := t.OrderID.String()
			entries[i].OrderID = &id
		}
	}

	return &dto.LoyaltyStatementResponse{
		CustomerID:   customer.ID.String(),
		Points:       customer.LoyaltyPoints,
		Transactions: entries,
	}, nil
}

func (s *loyaltyService) findStoreCustomer(ctx context.Context, storeID, customerID uuid.UUID) (*model.Customer, error) {
	customer, err := s.loyaltyRepo.FindCustomer(ctx, customerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("Cliente não encontrado")
	}
	if err != nil {
		return nil, apierror.Upstream("load_customer", err)
	}
	if customer.StoreID != storeID {
		return nil, apierror.NotFound("Cliente não encontrado")
	}
	return customer, nil
}
