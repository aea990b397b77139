package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caixapos/internal/dto"
	"caixapos/internal/model"
)

func summarySession() *model.CashRegister {
	return &model.CashRegister{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		InitialAmount: decimal.NewFromInt(100),
	}
}

func summaryOrder(method string, total int64, status model.OrderStatus, source model.OrderSource, items ...model.OrderItem) model.Order {
	return model.Order{
		ID:            uuid.New(),
		Status:        status,
		Source:        source,
		PaymentMethod: method,
		Total:         decimal.NewFromInt(total),
		Items:         items,
	}
}

func TestComputeBucketsPaymentMethods(t *testing.T) {
	svc := NewSummaryService()
	orders := []model.Order{
		summaryOrder("Dinheiro", 30, model.StatusDelivered, model.SourcePresencial),
		summaryOrder("PIX", 20, model.StatusDelivered, model.SourceTotem),
		summaryOrder("Cartão de Crédito (Visa)", 50, model.StatusReady, model.SourceWhatsApp),
		summaryOrder("cartao de debito", 15, model.StatusDelivered, model.SourceTotem),
		summaryOrder("vale-refeição", 10, model.StatusDelivered, model.SourcePresencial),
	}

	got := svc.Compute(summarySession(), orders)

	require.Len(t, got.PaymentMethodTotals, 4)
	assert.Equal(t, []dto.MethodTotal{
		{Method: "dinheiro", Total: decimal.NewFromInt(30)},
		{Method: "pix", Total: decimal.NewFromInt(20)},
		{Method: "crédito", Total: decimal.NewFromInt(50)},
		{Method: "débito", Total: decimal.NewFromInt(15)},
	}, got.PaymentMethodTotals)
	// The vale-refeição order lands in no bucket but still sells.
	assert.True(t, decimal.NewFromInt(125).Equal(got.TotalSales))
}

func TestComputeIgnoresCancelledOrders(t *testing.T) {
	svc := NewSummaryService()
	orders := []model.Order{
		summaryOrder("dinheiro", 30, model.StatusDelivered, model.SourcePresencial),
		summaryOrder("dinheiro", 99, model.StatusCancelled, model.SourcePresencial),
	}

	got := svc.Compute(summarySession(), orders)

	assert.True(t, decimal.NewFromInt(30).Equal(got.TotalSales))
	require.Len(t, got.PaymentMethodTotals, 1)
	assert.True(t, decimal.NewFromInt(30).Equal(got.PaymentMethodTotals[0].Total))
	require.Len(t, got.OrdersBySource, 1)
	assert.Equal(t, string(model.SourcePresencial), got.OrdersBySource[0].Source)
	assert.Equal(t, 1, got.OrdersBySource[0].Count)
}

func TestComputeCountsLoyaltyOrdersApart(t *testing.T) {
	svc := NewSummaryService()
	orders := []model.Order{
		summaryOrder("fidelidade - 50 pontos", 0, model.StatusDelivered, model.SourceTotem),
		summaryOrder("pix", 25, model.StatusDelivered, model.SourceTotem),
	}

	got := svc.Compute(summarySession(), orders)

	assert.Equal(t, 1, got.LoyaltyOrdersCount)
	require.Len(t, got.PaymentMethodTotals, 1)
	assert.Equal(t, "pix", got.PaymentMethodTotals[0].Method)
}

func TestComputeProductKeysIncludeVariation(t *testing.T) {
	svc := NewSummaryService()
	variation := "Grande"
	orders := []model.Order{
		summaryOrder("dinheiro", 40, model.StatusDelivered, model.SourcePresencial,
			model.OrderItem{ProductName: "Açaí", VariationName: &variation, Quantity: 2},
			model.OrderItem{ProductName: "Açaí", Quantity: 1},
		),
		summaryOrder("pix", 20, model.StatusDelivered, model.SourceTotem,
			model.OrderItem{ProductName: "Açaí", VariationName: &variation, Quantity: 1},
		),
	}

	got := svc.Compute(summarySession(), orders)

	assert.Equal(t, []dto.ProductSold{
		{Name: "Açaí - Grande", Quantity: 3},
		{Name: "Açaí", Quantity: 1},
	}, got.ProductsSold)
}

func TestComputeIsDeterministic(t *testing.T) {
	svc := NewSummaryService()
	session := summarySession()
	orders := []model.Order{
		summaryOrder("dinheiro", 30, model.StatusDelivered, model.SourcePresencial,
			model.OrderItem{ProductName: "Coxinha", Quantity: 2}),
		summaryOrder("pix", 20, model.StatusDelivered, model.SourceTotem,
			model.OrderItem{ProductName: "Pastel", Quantity: 2}),
		summaryOrder("débito", 15, model.StatusReady, model.SourceIfood,
			model.OrderItem{ProductName: "Coxinha", Quantity: 2}),
	}

	first := svc.Compute(session, orders)
	// Same orders in a different slice order must produce an identical report.
	shuffled := []model.Order{orders[2], orders[0], orders[1]}
	second := svc.Compute(session, shuffled)

	assert.Equal(t, first, second)
}
