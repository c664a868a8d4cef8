package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	opstest "fishintel/internal/operations/testutil"
	"fishintel/internal/shared/testutil"
	"fishintel/pkg/contracts"
)

func TestHealthService_HealthAndLiveness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService(nil, logger)
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, contracts.Version, health.Version)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, contracts.ManifestVersion, version["manifest_version"])
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		dataset    func(t *testing.T) *DatasetService
		wantStatus string
	}{
		{
			name:       "no dataset service",
			dataset:    func(t *testing.T) *DatasetService { return nil },
			wantStatus: "not_ready",
		},
		{
			name: "nothing published",
			dataset: func(t *testing.T) *DatasetService {
				return newDatasetService(t, opstest.SetupPaths(t))
			},
			wantStatus: "not_ready",
		},
		{
			name: "published",
			dataset: func(t *testing.T) *DatasetService {
				return newDatasetService(t, publishDataset(t))
			},
			wantStatus: "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService(tt.dataset(t), logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)

			dataset, ok := status.Services["dataset"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, dataset.Status)
			assert.NotEmpty(t, dataset.Message)
		})
	}
}
