package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/realtime"
	"caixapos/internal/repository"
	"caixapos/internal/worker"
)

// canonicalPaymentMethods are always offered during reservation resolution,
// before any store-defined extras.
var canonicalPaymentMethods = []string{"dinheiro", "pix", "crédito", "débito"}

// OrderService drives the order lifecycle. Every transition is a conditional
// write: the database decides who wins a race, the service only reports it.
type OrderService interface {
	// Advance moves the order one step along the store's active flow. When
	// the next step would deliver a reservation order, no transition happens
	// and the response asks the operator to resolve the payment first.
	Advance(ctx context.Context, storeID, orderID uuid.UUID) (*dto.AdvanceResponse, error)

	// ResolvePayment swaps the reservation placeholder for a concrete
	// payment method and delivers the order, atomically.
	ResolvePayment(ctx context.Context, storeID, orderID uuid.UUID, method string) (*dto.AdvanceResponse, error)

	// Cancel moves the order to cancelled and, for loyalty-paid orders,
	// credits the redeemed points back. A failed credit does not undo the
	// cancellation; it comes back as a partial failure.
	Cancel(ctx context.Context, storeID, orderID uuid.UUID) (*dto.CancelResponse, error)

	Get(ctx context.Context, storeID, orderID uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, storeID uuid.UUID, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	PaymentMethods(ctx context.Context, storeID uuid.UUID) ([]string, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	loyaltyRepo  repository.LoyaltyRepository
	settingsRepo repository.SettingsRepository
	publisher    realtime.Publisher
	alerts       worker.AlertEnqueuer
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	loyaltyRepo repository.LoyaltyRepository,
	settingsRepo repository.SettingsRepository,
	publisher realtime.Publisher,
	alerts worker.AlertEnqueuer,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		loyaltyRepo:  loyaltyRepo,
		settingsRepo: settingsRepo,
		publisher:    publisher,
		alerts:       alerts,
	}
}

func (s *orderService) Advance(ctx context.Context, storeID, orderID uuid.UUID) (*dto.AdvanceResponse, error) {
	order, err := s.findStoreOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, apierror.Validation(fmt.Sprintf("Pedido #%d já está %s", order.OrderNumber, order.Status))
	}

	settings, err := s.settingsRepo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, apierror.Upstream("load_settings", err)
	}
	next, _ := NextStatus(ResolveActiveFlow(settings), order.Status)

	if next == model.StatusDelivered && order.IsReservation() {
		methods, err := s.PaymentMethods(ctx, storeID)
		if err != nil {
			return nil, err
		}
		return &dto.AdvanceResponse{
			PaymentResolutionRequired: true,
			PaymentMethods:            methods,
		}, nil
	}

	ok, err := s.orderRepo.UpdateStatusIf(ctx, orderID, []model.OrderStatus{order.Status}, next)
	if err != nil {
		return nil, apierror.Upstream("update_status", err)
	}
	if !ok {
		return nil, apierror.Conflict("O pedido mudou de status em outro terminal, atualize o painel")
	}

	s.publish(ctx, storeID, orderID, next)
	return &dto.AdvanceResponse{NewStatus: string(next)}, nil
}

func (s *orderService) ResolvePayment(ctx context.Context, storeID, orderID uuid.UUID, method string) (*dto.AdvanceResponse, error) {
	method = strings.TrimSpace(method)
	if method == "" || strings.EqualFold(method, model.PaymentReservation) {
		return nil, apierror.Validation("Método de pagamento inválido")
	}

	order, err := s.findStoreOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, apierror.Validation(fmt.Sprintf("Pedido #%d já está %s", order.OrderNumber, order.Status))
	}
	if !order.IsReservation() {
		return nil, apierror.Validation(fmt.Sprintf("Pedido #%d não aguarda resolução de pagamento", order.OrderNumber))
	}

	offered, err := s.PaymentMethods(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !containsFold(offered, method) {
		return nil, apierror.Validation(fmt.Sprintf("Método de pagamento %q não é aceito por esta loja", method))
	}

	ok, err := s.orderRepo.ResolveReservationPayment(ctx, orderID, method)
	if err != nil {
		return nil, apierror.Upstream("resolve_payment", err)
	}
	if !ok {
		return nil, apierror.Conflict("O pedido mudou de status em outro terminal, atualize o painel")
	}

	s.publish(ctx, storeID, orderID, model.StatusDelivered)
	return &dto.AdvanceResponse{NewStatus: string(model.StatusDelivered)}, nil
}

func (s *orderService) Cancel(ctx context.Context, storeID, orderID uuid.UUID) (*dto.CancelResponse, error) {
	order, err := s.findStoreOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, apierror.Validation(fmt.Sprintf("Pedido #%d já está %s", order.OrderNumber, order.Status))
	}

	// Cancel accepts any live status, so a racing advance does not make the
	// cancel lose; only a racing deliver or cancel does.
	ok, err := s.orderRepo.UpdateStatusIf(ctx, orderID, cancellableStatuses, model.StatusCancelled)
	if err != nil {
		return nil, apierror.Upstream("cancel_order", err)
	}
	if !ok {
		return nil, apierror.Conflict("O pedido já foi finalizado em outro terminal")
	}

	s.publish(ctx, storeID, orderID, model.StatusCancelled)

	resp := &dto.CancelResponse{NewStatus: string(model.StatusCancelled)}
	if !order.IsLoyaltyPaid() || order.CustomerID == nil {
		return resp, nil
	}

	// The cancellation is already committed. Everything from here on either
	// credits the points back or surfaces as a partial failure; it never
	// reports the cancel itself as failed.
	refunded, err := s.refundLoyalty(ctx, order)
	if err != nil {
		s.enqueueRefundAlert(ctx, order)
		resp.RefundPending = true
		resp.Warning = "Pedido cancelado, mas o estorno de pontos falhou e será tratado manualmente"
		return resp, apierror.PartialFailure("loyalty_refund", resp.Warning, err)
	}
	resp.LoyaltyRefunded = refunded
	return resp, nil
}

// refundLoyalty credits the points redeemed on the order back to the
// customer. Returns 0 when there is nothing to refund or a previous cancel
// already refunded it.
func (s *orderService) refundLoyalty(ctx context.Context, order *model.Order) (int, error) {
	points, err := s.loyaltyRepo.SumRedeemedByOrder(ctx, order.ID)
	if err != nil {
		return 0, err
	}
	if points == 0 {
		return 0, nil
	}

	// Fast path for repeated cancels; the unique index on reversal rows
	// still guards the race between two first-time cancels.
	done, err := s.loyaltyRepo.HasReversal(ctx, order.ID)
	if err != nil {
		return 0, err
	}
	if done {
		return 0, nil
	}

	reversal := &model.LoyaltyTransaction{
		CustomerID:      *order.CustomerID,
		OrderID:         &order.ID,
		Points:          points,
		TransactionType: model.LoyaltyEarn,
		Description:     fmt.Sprintf("Estorno de %d pontos do pedido #%d cancelado", points, order.OrderNumber),
	}
	err = s.loyaltyRepo.RecordReversal(ctx, reversal)
	if errors.Is(err, repository.ErrReversalExists) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return points, nil
}

func (s *orderService) Get(ctx context.Context, storeID, orderID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.findStoreOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderService) List(ctx context.Context, storeID uuid.UUID, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	orders, total, err := s.orderRepo.List(ctx, storeID, filter)
	if err != nil {
		return nil, apierror.Upstream("list_orders", err)
	}

	data := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		data[i] = toOrderResponse(&orders[i])
	}
	return &dto.OrderListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *orderService) PaymentMethods(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	extras, err := s.settingsRepo.ListPaymentMethods(ctx, storeID)
	if err != nil {
		return nil, apierror.Upstream("list_payment_methods", err)
	}

	methods := make([]string, 0, len(canonicalPaymentMethods)+len(extras))
	methods = append(methods, canonicalPaymentMethods...)
	for _, extra := range extras {
		if !containsFold(methods, extra.Name) {
			methods = append(methods, extra.Name)
		}
	}
	return methods, nil
}

func (s *orderService) findStoreOrder(ctx context.Context, storeID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("Pedido não encontrado")
	}
	if err != nil {
		return nil, apierror.Upstream("load_order", err)
	}
	if order.StoreID != storeID {
		return nil, apierror.NotFound("Pedido não encontrado")
	}
	return order, nil
}

func (s *orderService) publish(ctx context.Context, storeID, orderID uuid.UUID, status model.OrderStatus) {
	err := s.publisher.PublishOrderEvent(ctx, realtime.OrderEvent{
		Type:    realtime.EventUpdate,
		StoreID: storeID.String(),
		OrderID: orderID.String(),
		Status:  string(status),
		At:      time.Now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID.String()).Msg("order event publish failed")
	}
}

func (s *orderService) enqueueRefundAlert(ctx context.Context, order *model.Order) {
	err := s.alerts.EnqueueAlert(ctx, worker.AlertJobPayload{
		Kind:    worker.AlertRefundFailed,
		StoreID: order.StoreID.String(),
		OrderID: order.ID.String(),
		Message: fmt.Sprintf("Estorno de pontos do pedido #%d precisa de atenção manual", order.OrderNumber),
	})
	if err != nil {
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("refund alert enqueue failed")
	}
}

func containsFold(list []string, candidate string) bool {
	for _, item := range list {
		if strings.EqualFold(item, candidate) {
			return true
		}
	}
	return false
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = dto.OrderItemResponse{
			ProductName:   item.ProductName,
			VariationName: item.VariationName,
			Quantity:      item.Quantity,
			ProductPrice:  item.ProductPrice,
			Subtotal:      item.Subtotal,
			LoyaltyItem:   item.IsLoyaltyRedemption(),
		}
	}

	resp := dto.OrderResponse{
		ID:             order.ID.String(),
		OrderNumber:    order.OrderNumber,
		Status:         string(order.Status),
		Source:         string(order.Source),
		PaymentMethod:  order.PaymentMethod,
		Total:          order.Total,
		DiscountAmount: order.DiscountAmount,
		DeliveryFee:    order.DeliveryFee,
		Items:          items,
		CreatedAt:      order.CreatedAt.Format(time.RFC3339),
	}
	if order.CustomerID != nil {
		id := order.CustomerID.String()
		resp.CustomerID = &id
	}
	if order.CashRegisterID != nil {
		id := order.CashRegisterID.String()
		resp.CashRegisterID = &id
	}
	return resp
}
