package reconcile

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Robinhuo1/TradingButler/internal/domain/execution"
	"github.com/Robinhuo1/TradingButler/internal/domain/position"
	"github.com/Robinhuo1/TradingButler/internal/report"
	"github.com/Robinhuo1/TradingButler/pkg/errors"
	"github.com/Robinhuo1/TradingButler/pkg/logger"
)

// Recorder persists the summaries of one run. *position.Service satisfies it.
type Recorder interface {
	RecordRun(ctx context.Context, runID uuid.UUID, summaries []*position.Summary) error
}

// Notifier delivers the plain-text digest after a run
type Notifier interface {
	SendDigest(ctx context.Context, digest string) error
}

// Service runs one reconciliation batch: import legs, match them into
// positions, summarize, then persist and deliver if those collaborators
// are wired. Recorder and Notifier may be nil for report-only runs.
type Service struct {
	importer execution.Importer
	renderer *report.Renderer
	recorder Recorder
	notifier Notifier
	log      *logger.Logger
}

// NewService constructs a reconcile service
func NewService(importer execution.Importer, renderer *report.Renderer, recorder Recorder, notifier Notifier) *Service {
	return &Service{
		importer: importer,
		renderer: renderer,
		recorder: recorder,
		notifier: notifier,
		log:      logger.Get(),
	}
}

// Result reports what one run produced
type Result struct {
	RunID     uuid.UUID
	Legs      int
	Positions int
	Open      int
	Summaries []*position.Summary
	HTML      string
	Digest    string
}

// Run processes one broker export. asOf anchors the holding period of
// open positions so runs over the same input are reproducible.
func (s *Service) Run(ctx context.Context, input io.Reader, asOf time.Time) (*Result, error) {
	legs, err := s.importer.Import(input)
	if err != nil {
		return nil, errors.Wrap(err, "import legs")
	}
	s.log.Infof("imported %d execution legs", len(legs))

	positions, err := position.NewMatcher().Match(legs)
	if err != nil {
		return nil, errors.Wrap(err, "match positions")
	}

	summaries, err := position.SummarizeAll(positions, asOf)
	if err != nil {
		return nil, errors.Wrap(err, "summarize positions")
	}

	result := &Result{
		RunID:     uuid.New(),
		Legs:      len(legs),
		Positions: len(positions),
		Summaries: summaries,
	}
	for _, p := range positions {
		if p.IsOpen() {
			result.Open++
		}
	}

	if s.recorder != nil {
		if err := s.recorder.RecordRun(ctx, result.RunID, summaries); err != nil {
			return nil, errors.Wrap(err, "persist summaries")
		}
	}

	if result.HTML, err = s.renderer.HTML(summaries, asOf); err != nil {
		return nil, err
	}
	if result.Digest, err = s.renderer.Digest(summaries, asOf); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendDigest(ctx, result.Digest); err != nil {
			// Delivery failure does not invalidate the run.
			s.log.Warnf("digest delivery failed: %v", err)
		}
	}

	s.log.Infof("run %s: %d positions (%d open) from %d legs",
		result.RunID, result.Positions, result.Open, result.Legs)
	return result, nil
}
