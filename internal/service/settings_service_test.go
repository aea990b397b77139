package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caixapos/internal/dto"
)

func boolPtr(v bool) *bool { return &v }

func TestSettingsGetDefaultsWhenNeverSaved(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{})

	resp, err := svc.Get(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.True(t, resp.PendingActive)
	assert.True(t, resp.PreparingActive)
	assert.False(t, resp.PerishableControl)
	assert.Equal(t, []string{"pending", "preparing", "ready"}, resp.ActiveFlow)
}

func TestSettingsUpdateAppliesOnlyProvidedFields(t *testing.T) {
	repo := &fakeSettingsRepo{}
	svc := NewSettingsService(repo)
	storeID := uuid.New()

	resp, err := svc.Update(context.Background(), storeID, dto.UpdateSettingsRequest{
		PreparingActive: boolPtr(false),
	})

	require.NoError(t, err)
	assert.True(t, resp.PendingActive)
	assert.False(t, resp.PreparingActive)
	assert.Equal(t, []string{"pending", "ready"}, resp.ActiveFlow)

	// Turning both off still leaves ready in the flow.
	resp, err = svc.Update(context.Background(), storeID, dto.UpdateSettingsRequest{
		PendingActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ready"}, resp.ActiveFlow)
}
