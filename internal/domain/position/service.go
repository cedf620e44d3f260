package position

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Robinhuo1/TradingButler/pkg/errors"
	"github.com/Robinhuo1/TradingButler/pkg/logger"
)

// Service manages position summary persistence
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs a position service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Get()}
}

// RecordRun validates and persists the summaries of one reconciliation run,
// stamping each with the run identifier
func (s *Service) RecordRun(ctx context.Context, runID uuid.UUID, summaries []*Summary) error {
	if runID == uuid.Nil {
		return errors.ErrInvalidInput
	}
	now := time.Now().UTC()
	for _, summary := range summaries {
		if summary == nil {
			return errors.ErrInvalidInput
		}
		if summary.Symbol == "" {
			return errors.NewValidationError("symbol", "must not be empty", summary.Symbol)
		}
		if !summary.Direction.Valid() {
			return errors.NewValidationError("direction", "must be Long or Short", summary.Direction)
		}
		if !summary.Quantity.IsPositive() {
			return errors.Wrapf(errors.ErrEmptyPosition, "symbol %s", summary.Symbol)
		}
		if summary.ID == uuid.Nil {
			summary.ID = uuid.New()
		}
		summary.RunID = runID
		summary.CreatedAt = now
	}

	if err := s.repo.CreateBatch(ctx, summaries); err != nil {
		return errors.Wrap(err, "record run")
	}
	s.log.Infof("recorded %d position summaries for run %s", len(summaries), runID)
	return nil
}

// GetByRun lists the summaries persisted for one run
func (s *Service) GetByRun(ctx context.Context, runID uuid.UUID) ([]*Summary, error) {
	if runID == uuid.Nil {
		return nil, errors.ErrInvalidInput
	}
	summaries, err := s.repo.GetByRun(ctx, runID)
	if err != nil {
		return nil, errors.Wrap(err, "get run summaries")
	}
	return summaries, nil
}

// GetBySymbol lists all recorded summaries for a symbol
func (s *Service) GetBySymbol(ctx context.Context, symbol string) ([]*Summary, error) {
	if symbol == "" {
		return nil, errors.ErrInvalidInput
	}
	summaries, err := s.repo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, errors.Wrap(err, "get symbol summaries")
	}
	return summaries, nil
}

// GetOpen lists recorded summaries of positions that were still open
func (s *Service) GetOpen(ctx context.Context) ([]*Summary, error) {
	summaries, err := s.repo.GetOpen(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get open summaries")
	}
	return summaries, nil
}

// DeleteRun removes every summary recorded for a run
func (s *Service) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	if runID == uuid.Nil {
		return errors.ErrInvalidInput
	}
	if err := s.repo.DeleteRun(ctx, runID); err != nil {
		return errors.Wrap(err, "delete run")
	}
	return nil
}
