package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/Robinhuo1/TradingButler/internal/domain/position"
)

// Compile-time check
var _ position.Repository = (*PositionRepository)(nil)

// PositionRepository implements position.Repository using sqlx
type PositionRepository struct {
	db DBTX
}

// NewPositionRepository creates a new position summary repository
func NewPositionRepository(db DBTX) *PositionRepository {
	return &PositionRepository{db: db}
}

// CreateBatch inserts the summaries of one reconciliation run
func (r *PositionRepository) CreateBatch(ctx context.Context, summaries []*position.Summary) error {
	query := `
		INSERT INTO position_summaries (
			id, run_id, symbol, direction,
			entry_date, exit_date,
			average_price, exit_price, quantity, risk,
			profit, profit_pct,
			days, number_legs, created_at
		) VALUES (
			:id, :run_id, :symbol, :direction,
			:entry_date, :exit_date,
			:average_price, :exit_price, :quantity, :risk,
			:profit, :profit_pct,
			:days, :number_legs, :created_at
		)`

	for _, s := range summaries {
		if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
			return err
		}
	}
	return nil
}

// GetByRun retrieves all summaries recorded for a run
func (r *PositionRepository) GetByRun(ctx context.Context, runID uuid.UUID) ([]*position.Summary, error) {
	var summaries []*position.Summary

	query := `
		SELECT * FROM position_summaries
		WHERE run_id = $1
		ORDER BY created_at, symbol, entry_date`

	err := r.db.SelectContext(ctx, &summaries, query, runID)
	if err != nil {
		return nil, err
	}

	return summaries, nil
}

// GetBySymbol retrieves all recorded summaries for a symbol
func (r *PositionRepository) GetBySymbol(ctx context.Context, symbol string) ([]*position.Summary, error) {
	var summaries []*position.Summary

	query := `
		SELECT * FROM position_summaries
		WHERE symbol = $1
		ORDER BY entry_date`

	err := r.db.SelectContext(ctx, &summaries, query, symbol)
	if err != nil {
		return nil, err
	}

	return summaries, nil
}

// GetOpen retrieves summaries of positions recorded as still open
func (r *PositionRepository) GetOpen(ctx context.Context) ([]*position.Summary, error) {
	var summaries []*position.Summary

	query := `
		SELECT * FROM position_summaries
		WHERE exit_date IS NULL
		ORDER BY symbol, entry_date`

	err := r.db.SelectContext(ctx, &summaries, query)
	if err != nil {
		return nil, err
	}

	return summaries, nil
}

// DeleteRun removes every summary recorded for a run
func (r *PositionRepository) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	query := `DELETE FROM position_summaries WHERE run_id = $1`

	_, err := r.db.ExecContext(ctx, query, runID)
	return err
}
