package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	apperrors "fishintel/internal/errors"
	"fishintel/pkg/contracts/domain"
)

// BuildManifest describes a build result. The file map covers every built
// table, so a published manifest names exactly the files written with it.
func BuildManifest(version, runID string, result *BuildResult, topN int, generatedAt time.Time) *domain.Manifest {
	files := make(map[string]string, len(result.Tables))
	for _, t := range result.Tables {
		files[t.Name] = t.File
	}
	return &domain.Manifest{
		Version:            version,
		RunID:              runID,
		GeneratedAt:        generatedAt.UTC(),
		LatestMarketYear:   result.LatestMarketYear,
		LatestLandingsYear: result.LatestLandingsYear,
		Files:              files,
		TopN: domain.TopN{
			Origin: topN,
			Area:   topN,
			Method: topN,
		},
	}
}

// LoadManifest reads a published manifest. A missing file is NOT_FOUND.
func LoadManifest(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("manifest").WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("failed to read manifest", err).WithContext("path", path)
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to decode manifest %s", path), err)
	}
	return &manifest, nil
}
