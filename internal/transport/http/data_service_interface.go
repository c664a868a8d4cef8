package http

import (
	"context"

	"fishintel/internal/services"
	"fishintel/pkg/contracts/domain"
)

// DatasetServiceInterface defines the read operations the data handler needs
type DatasetServiceInterface interface {
	Manifest(ctx context.Context) (*domain.Manifest, error)
	Tables(ctx context.Context) ([]services.TableInfo, error)
	OpenTable(ctx context.Context, name string) (*services.TableFile, error)
	ReadTable(ctx context.Context, name string, limit int) (*services.TablePreview, error)
}
