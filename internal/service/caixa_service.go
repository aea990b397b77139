package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/repository"
	"caixapos/internal/worker"
)

// CaixaService manages till sessions and their reconciliation. The one-open
// -session-per-store rule is enforced by the repository's conditional insert;
// this layer translates lost races into conflicts the panel can show.
type CaixaService interface {
	Abrir(ctx context.Context, storeID, userID uuid.UUID, valorInicial decimal.Decimal) (*dto.CaixaResponse, error)
	Atual(ctx context.Context, storeID uuid.UUID) (*dto.CaixaResponse, error)

	// VincularPendentes attributes every live order of the store that has no
	// session yet to the given open session.
	VincularPendentes(ctx context.Context, storeID, sessionID uuid.UUID) (*dto.VincularPendentesResponse, error)

	// Resumo computes the sales report for the session: a preview while it
	// is open, the authoritative record once closed.
	Resumo(ctx context.Context, storeID, sessionID uuid.UUID) (*dto.SalesSummaryResponse, error)

	// Fechar closes the session: delivers every live order in it, stamps the
	// final amount and returns the definitive report. Refused while any
	// reservation order in the session still awaits payment resolution.
	Fechar(ctx context.Context, storeID, sessionID uuid.UUID) (*dto.FecharCaixaResponse, error)

	Historico(ctx context.Context, storeID uuid.UUID, page, limit int) (*dto.CaixaListResponse, error)
}

type caixaService struct {
	caixaRepo    repository.CaixaRepository
	orderRepo    repository.OrderRepository
	settingsRepo repository.SettingsRepository
	summary      *SummaryService
	alerts       worker.AlertEnqueuer
}

func NewCaixaService(
	caixaRepo repository.CaixaRepository,
	orderRepo repository.OrderRepository,
	settingsRepo repository.SettingsRepository,
	summary *SummaryService,
	alerts worker.AlertEnqueuer,
) CaixaService {
	return &caixaService{
		caixaRepo:    caixaRepo,
		orderRepo:    orderRepo,
		settingsRepo: settingsRepo,
		summary:      summary,
		alerts:       alerts,
	}
}

func (s *caixaService) Abrir(ctx context.Context, storeID, userID uuid.UUID, valorInicial decimal.Decimal) (*dto.CaixaResponse, error) {
	if valorInicial.IsNegative() {
		return nil, apierror.Validation("Valor inicial não pode ser negativo")
	}

	session := &model.CashRegister{
		StoreID:       storeID,
		OpenedBy:      userID,
		InitialAmount: valorInicial,
	}
	ok, err := s.caixaRepo.OpenSession(ctx, session)
	if err != nil {
		return nil, apierror.Upstream("open_session", err)
	}
	if !ok {
		return nil, apierror.Conflict("Já existe um caixa aberto para esta loja")
	}

	log.Info().Str("store_id", storeID.String()).Str("session_id", session.ID.String()).Msg("caixa aberto")
	resp := toCaixaResponse(session)
	return &resp, nil
}

func (s *caixaService) Atual(ctx context.Context, storeID uuid.UUID) (*dto.CaixaResponse, error) {
	session, err := s.caixaRepo.FindOpenByStore(ctx, storeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("Nenhum caixa aberto para esta loja")
	}
	if err != nil {
		return nil, apierror.Upstream("load_session", err)
	}
	resp := toCaixaResponse(session)
	return &resp, nil
}

func (s *caixaService) VincularPendentes(ctx context.Context, storeID, sessionID uuid.UUID) (*dto.VincularPendentesResponse, error) {
	session, err := s.findStoreSession(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, apierror.Conflict("Caixa já fechado, não é possível vincular pedidos")
	}

	attached, err := s.orderRepo.AttachPendingToSession(ctx, storeID, sessionID)
	if err != nil {
		return nil, apierror.Upstream("attach_orders", err)
	}
	return &dto.VincularPendentesResponse{PedidosVinculados: attached}, nil
}

func (s *caixaService) Resumo(ctx context.Context, storeID, sessionID uuid.UUID) (*dto.SalesSummaryResponse, error) {
	session, err := s.findStoreSession(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apierror.Upstream("list_session_orders", err)
	}

	resp := s.summary.Compute(session, orders)
	if session.Open() {
		settings, err := s.settingsRepo.FindByStore(ctx, storeID)
		if err != nil {
			return nil, apierror.Upstream("load_settings", err)
		}
		resp.PerishableCheckAvailable = settings != nil && settings.PerishableControl
	}
	return &resp, nil
}

func (s *caixaService) Fechar(ctx context.Context, storeID, sessionID uuid.UUID) (*dto.FecharCaixaResponse, error) {
	session, err := s.findStoreSession(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, apierror.Conflict("Caixa já fechado")
	}

	blocking, err := s.orderRepo.CountUnresolvedReservations(ctx, sessionID)
	if err != nil {
		return nil, apierror.Upstream("count_reservations", err)
	}
	if blocking > 0 {
		return nil, apierror.Conflict(fmt.Sprintf(
			"Existem %d pedidos com pagamento reservado aguardando resolução", blocking))
	}

	orders, err := s.orderRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apierror.Upstream("list_session_orders", err)
	}

	// The report is computed over the pre-close snapshot. Closing only moves
	// live orders to delivered, and the report ignores status except for
	// cancelled, so preview and final record agree. The stamped amount is the
	// session's total sales across non-cancelled orders.
	report := s.summary.Compute(session, orders)
	finalAmount := report.TotalSales

	delivered, ok, err := s.caixaRepo.CloseSession(ctx, sessionID, finalAmount)
	if err != nil {
		return nil, apierror.Upstream("close_session", err)
	}
	if !ok {
		return nil, apierror.Conflict("Caixa já fechado em outro terminal")
	}

	session.FinalAmount = &finalAmount
	now := time.Now()
	session.ClosedAt = &now
	report.FinalAmount = &finalAmount

	s.enqueueClosedAlert(ctx, session, report.TotalSales)

	log.Info().
		Str("session_id", sessionID.String()).
		Int64("delivered", delivered).
		Str("final_amount", finalAmount.String()).
		Msg("caixa fechado")

	return &dto.FecharCaixaResponse{
		Caixa:            toCaixaResponse(session),
		Resumo:           report,
		PedidosEntregues: delivered,
	}, nil
}

func (s *caixaService) Historico(ctx context.Context, storeID uuid.UUID, page, limit int) (*dto.CaixaListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	sessions, total, err := s.caixaRepo.ListClosed(ctx, storeID, page, limit)
	if err != nil {
		return nil, apierror.Upstream("list_sessions", err)
	}

	data := make([]dto.CaixaResponse, len(sessions))
	for i := range sessions {
		data[i] = toCaixaResponse(&sessions[i])
	}
	return &dto.CaixaListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *caixaService) findStoreSession(ctx context.Context, storeID, sessionID uuid.UUID) (*model.CashRegister, error) {
	session, err := s.caixaRepo.FindByID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("Caixa não encontrado")
	}
	if err != nil {
		return nil, apierror.Upstream("load_session", err)
	}
	if session.StoreID != storeID {
		return nil, apierror.NotFound("Caixa não encontrado")
	}
	return session, nil
}

func (s *caixaService) enqueueClosedAlert(ctx context.Context, session *model.CashRegister, totalSales decimal.Decimal) {
	err := s.alerts.EnqueueAlert(ctx, worker.AlertJobPayload{
		Kind:      worker.AlertRegisterClosed,
		StoreID:   session.StoreID.String(),
		SessionID: session.ID.String(),
		Message:   fmt.Sprintf("Caixa fechado com vendas totais de R$ %s", totalSales.StringFixed(2)),
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("close alert enqueue failed")
	}
}

func toCaixaResponse(session *model.CashRegister) dto.CaixaResponse {
	resp := dto.CaixaResponse{
		ID:           session.ID.String(),
		StoreID:      session.StoreID.String(),
		ValorInicial: session.InitialAmount,
		ValorFinal:   session.FinalAmount,
		Aberto:       session.Open(),
		OpenedAt:     session.OpenedAt.Format(time.RFC3339),
	}
	if session.ClosedAt != nil {
		closed := session.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	return resp
}
