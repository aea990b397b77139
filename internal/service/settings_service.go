package service

import (
	"context"

	"github.com/google/uuid"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/repository"
)

type SettingsService interface {
	Get(ctx context.Context, storeID uuid.UUID) (*dto.SettingsResponse, error)
	Update(ctx context.Context, storeID uuid.UUID, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) Get(ctx context.Context, storeID uuid.UUID) (*dto.SettingsResponse, error) {
	settings, err := s.settingsRepo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, apierror.Upstream("load_settings", err)
	}
	return toSettingsResponse(storeID, settings), nil
}

func (s *settingsService) Update(ctx context.Context, storeID uuid.UUID, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	settings, err := s.settingsRepo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, apierror.Upstream("load_settings", err)
	}
	if settings == nil {
		settings = &model.StoreSettings{
			StoreID:         storeID,
			PendingActive:   true,
			PreparingActive: true,
		}
	}

	if req.PendingActive != nil {
		settings.PendingActive = *req.PendingActive
	}
	if req.PreparingActive != nil {
		settings.PreparingActive = *req.PreparingActive
	}
	if req.PerishableControl != nil {
		settings.PerishableControl = *req.PerishableControl
	}

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, apierror.Upstream("save_settings", err)
	}
	return toSettingsResponse(storeID, settings), nil
}

func toSettingsResponse(storeID uuid.UUID, settings *model.StoreSettings) *dto.SettingsResponse {
	resolved := settings
	if resolved == nil {
		resolved = &model.StoreSettings{StoreID: storeID, PendingActive: true, PreparingActive: true}
	}

	flow := ResolveActiveFlow(resolved)
	activeFlow := make([]string, len(flow))
	for i, status := range flow {
		activeFlow[i] = string(status)
	}

	return &dto.SettingsResponse{
		PendingActive:     resolved.PendingActive,
		PreparingActive:   resolved.PreparingActive,
		PerishableControl: resolved.PerishableControl,
		ActiveFlow:        activeFlow,
	}
}
