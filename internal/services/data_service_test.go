package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishintel/internal/config"
	apperrors "fishintel/internal/errors"
	"fishintel/internal/operations"
	opstest "fishintel/internal/operations/testutil"
	"fishintel/internal/shared/testutil"
)

// publishDataset runs the pipeline once over the standard workbooks
func publishDataset(t *testing.T) *config.Paths {
	t.Helper()

	paths := opstest.SetupPaths(t)
	opstest.StandardMarket(t, paths)
	opstest.StandardLandings(t, paths)

	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default().Pipeline
	cfg.RunReport = false
	p, err := operations.NewPipeline(cfg, paths, logger, nil)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)
	return paths
}

func newDatasetService(t *testing.T, paths *config.Paths) *DatasetService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewDatasetService(paths, logger)
}

func TestDatasetService_NotPublished(t *testing.T) {
	ds := newDatasetService(t, opstest.SetupPaths(t))
	ctx := context.Background()

	_, err := ds.Manifest(ctx)
	assert.ErrorIs(t, err, ErrDataNotPublished)

	_, err = ds.Tables(ctx)
	assert.ErrorIs(t, err, ErrDataNotPublished)

	_, err = ds.OpenTable(ctx, operations.MarketYearFish.Name)
	assert.ErrorIs(t, err, ErrDataNotPublished)

	_, ok := ds.LastPublished(ctx)
	assert.False(t, ok)
}

func TestDatasetService_CorruptManifest(t *testing.T) {
	paths := opstest.SetupPaths(t)
	require.NoError(t, os.MkdirAll(paths.ProDir, 0755))
	require.NoError(t, os.WriteFile(paths.ManifestPath(), []byte("{not json"), 0644))

	_, err := newDatasetService(t, paths).Manifest(context.Background())
	assert.ErrorIs(t, err, ErrManifestCorrupted)
}

func TestDatasetService_Manifest(t *testing.T) {
	paths := publishDataset(t)

	m, err := newDatasetService(t, paths).Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.ManifestVersion, m.Version)
	assert.Equal(t, 2024, m.LatestMarketYear)
	assert.Len(t, m.Files, len(operations.Catalog()))
}

func TestDatasetService_Tables(t *testing.T) {
	paths := publishDataset(t)
	ds := newDatasetService(t, paths)

	tables, err := ds.Tables(context.Background())
	require.NoError(t, err)

	catalog := operations.Catalog()
	require.Len(t, tables, len(catalog))
	for i, spec := range catalog {
		assert.Equal(t, spec.Name, tables[i].Name)
		assert.Equal(t, spec.File, tables[i].File)
		assert.Equal(t, spec.Header, tables[i].Columns)
		assert.Positive(t, tables[i].Size, spec.Name)
		assert.False(t, tables[i].Modified.IsZero(), spec.Name)
	}

	last, ok := ds.LastPublished(context.Background())
	assert.True(t, ok)
	assert.False(t, last.IsZero())
}

func TestDatasetService_OpenTable(t *testing.T) {
	paths := publishDataset(t)
	ds := newDatasetService(t, paths)
	ctx := context.Background()

	tests := []struct {
		name    string
		table   string
		wantErr error
	}{
		{name: "known table", table: operations.LandingsYearFish.Name},
		{name: "unknown table", table: "marketYearShark", wantErr: ErrTableNotFound},
		{name: "file name instead of key", table: "landings_year_fish.csv", wantErr: ErrInvalidTableName},
		{name: "traversal", table: "..", wantErr: ErrInvalidTableName},
		{name: "empty", table: "", wantErr: ErrInvalidTableName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ds.OpenTable(ctx, tt.table)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer table.Content.Close()
			assert.Equal(t, operations.LandingsYearFish.File, table.File)
			assert.False(t, table.ModTime.IsZero())
		})
	}
}

func TestDatasetService_OpenTable_MissingFile(t *testing.T) {
	paths := publishDataset(t)
	require.NoError(t, os.Remove(filepath.Join(paths.ProDir, operations.CorrFish.File)))

	_, err := newDatasetService(t, paths).OpenTable(context.Background(), operations.CorrFish.Name)
	assert.ErrorIs(t, err, ErrManifestCorrupted)
}

func TestDatasetService_OpenTable_ManifestPointsOutside(t *testing.T) {
	paths := opstest.SetupPaths(t)
	require.NoError(t, os.MkdirAll(paths.ProDir, 0755))
	content := `{"version":"2.4","files":{"secret":"../raw/market.xlsx"},"topN":{"origin":10,"area":10,"method":10}}`
	require.NoError(t, os.WriteFile(paths.ManifestPath(), []byte(content), 0644))

	_, err := newDatasetService(t, paths).OpenTable(context.Background(), "secret")
	assert.ErrorIs(t, err, ErrManifestCorrupted)
}

func TestDatasetService_ReadTable(t *testing.T) {
	paths := publishDataset(t)
	ds := newDatasetService(t, paths)
	ctx := context.Background()

	t.Run("all rows", func(t *testing.T) {
		preview, err := ds.ReadTable(ctx, operations.LandingsYearFish.Name, 0)
		require.NoError(t, err)
		assert.Equal(t, operations.LandingsYearFish.Header, preview.Columns)
		assert.Equal(t, 3, preview.Total)
		assert.False(t, preview.Truncated)
		assert.Equal(t, []string{"まあじ", "まあじ", "2023", "100", "53000", "530"}, preview.Rows[0])
	})

	t.Run("limited", func(t *testing.T) {
		preview, err := ds.ReadTable(ctx, operations.LandingsYearFish.Name, 1)
		require.NoError(t, err)
		assert.Len(t, preview.Rows, 1)
		assert.Equal(t, 3, preview.Total)
		assert.True(t, preview.Truncated)
	})

	t.Run("header only", func(t *testing.T) {
		preview, err := ds.ReadTable(ctx, operations.CorrFish.Name, 10)
		require.NoError(t, err)
		assert.Equal(t, operations.CorrFish.Header, preview.Columns)
		assert.Empty(t, preview.Rows)
		assert.Zero(t, preview.Total)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ds.ReadTable(ctx, "nope", 10)
		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}

func TestDatasetService_ReadTable_Malformed(t *testing.T) {
	paths := publishDataset(t)
	path := filepath.Join(paths.ProDir, operations.CorrFish.File)
	require.NoError(t, os.WriteFile(path, []byte("a,b\n\"unterminated\n"), 0644))

	_, err := newDatasetService(t, paths).ReadTable(context.Background(), operations.CorrFish.Name, 10)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}
