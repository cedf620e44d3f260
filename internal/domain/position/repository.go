package position

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for position summary persistence
type Repository interface {
	CreateBatch(ctx context.Context, summaries []*Summary) error
	GetByRun(ctx context.Context, runID uuid.UUID) ([]*Summary, error)
	GetBySymbol(ctx context.Context, symbol string) ([]*Summary, error)
	GetOpen(ctx context.Context) ([]*Summary, error)
	DeleteRun(ctx context.Context, runID uuid.UUID) error
}
