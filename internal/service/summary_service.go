package service

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"caixapos/internal/dto"
	"caixapos/internal/model"
)

// Payment buckets of the closing report, in presentation order. An order's
// free-text payment method is matched against the bucket keys in this order
// and the first substring hit wins, so "Cartão de Crédito (Visa)" and
// "credito" land in the same bucket.
const (
	bucketDinheiro = "dinheiro"
	bucketPix      = "pix"
	bucketCredito  = "crédito"
	bucketDebito   = "débito"
)

var bucketOrder = []string{bucketDinheiro, bucketPix, bucketCredito, bucketDebito}

var bucketKeys = map[string]string{
	bucketDinheiro: "dinheiro",
	bucketPix:      "pix",
	bucketCredito:  "credito",
	bucketDebito:   "debito",
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "ã", "a", "â", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

func normalizeMethod(method string) string {
	return accentReplacer.Replace(strings.ToLower(strings.TrimSpace(method)))
}

// SummaryService derives the sales report of a till session from its
// orders. It is pure: same session plus same orders always yields the same
// report, byte for byte, whether computed as a live preview or at close.
type SummaryService struct{}

func NewSummaryService() *SummaryService {
	return &SummaryService{}
}

// Compute builds the report. Cancelled orders are invisible to it; loyalty
// paid orders are counted apart and kept out of the payment buckets, which
// only see real money.
func (s *SummaryService) Compute(session *model.CashRegister, orders []model.Order) dto.SalesSummaryResponse {
	products := make(map[string]int)
	methodTotals := make(map[string]decimal.Decimal)
	sources := make(map[string]int)
	totalSales := decimal.Zero
	totalDiscount := decimal.Zero
	loyaltyOrders := 0

	for _, order := range orders {
		if order.Status == model.StatusCancelled {
			continue
		}

		for _, item := range order.Items {
			key := item.ProductName
			if item.VariationName != nil && *item.VariationName != "" {
				key += " - " + *item.VariationName
			}
			products[key] += item.Quantity
		}

		sources[string(order.Source)]++
		totalSales = totalSales.Add(order.Total)
		totalDiscount = totalDiscount.Add(order.DiscountAmount)

		if order.IsLoyaltyPaid() {
			loyaltyOrders++
			continue
		}
		// Orders matching none of the four buckets still count toward
		// total_sales above; they just appear in no bucket.
		if bucket, ok := classifyMethod(order.PaymentMethod); ok {
			methodTotals[bucket] = methodTotals[bucket].Add(order.Total)
		}
	}

	resp := dto.SalesSummaryResponse{
		ProductsSold:        sortedProducts(products),
		PaymentMethodTotals: sortedMethodTotals(methodTotals),
		OrdersBySource:      sortedSources(sources),
		TotalSales:          totalSales,
		TotalDiscount:       totalDiscount,
		LoyaltyOrdersCount:  loyaltyOrders,
		InitialAmount:       session.InitialAmount,
		FinalAmount:         session.FinalAmount,
	}
	return resp
}

func classifyMethod(method string) (string, bool) {
	normalized := normalizeMethod(method)
	for _, bucket := range bucketOrder {
		if strings.Contains(normalized, bucketKeys[bucket]) {
			return bucket, true
		}
	}
	return "", false
}

func sortedProducts(products map[string]int) []dto.ProductSold {
	out := make([]dto.ProductSold, 0, len(products))
	for name, qty := range products {
		out = append(out, dto.ProductSold{Name: name, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedMethodTotals(totals map[string]decimal.Decimal) []dto.MethodTotal {
	out := make([]dto.MethodTotal, 0, len(totals))
	for _, bucket := range bucketOrder {
		if total, ok := totals[bucket]; ok {
			out = append(out, dto.MethodTotal{Method: bucket, Total: total})
		}
	}
	return out
}

func sortedSources(sources map[string]int) []dto.SourceCount {
	out := make([]dto.SourceCount, 0, len(sources))
	for source, count := range sources {
		out = append(out, dto.SourceCount{Source: source, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
