package position

import (
	"github.com/shopspring/decimal"

	"github.com/Robinhuo1/TradingButler/internal/domain/execution"
	"github.com/Robinhuo1/TradingButler/pkg/errors"
	"github.com/Robinhuo1/TradingButler/pkg/logger"
)

// pricePlaces is the quantization applied to weighted-average entry prices
// and lot-set risk. Profit percentages round to pctPlaces. Half-up in both
// cases; all intermediate sums are kept at full precision.
const (
	pricePlaces int32 = 4
	pctPlaces   int32 = 2
)

// Matcher reconciles a time-ordered execution leg stream into positions.
// It owns one FIFO queue of open lots per symbol for the duration of a
// single batch run and is not safe for concurrent use; legs for different
// symbols may interleave, but legs within a symbol must be chronological.
type Matcher struct {
	queues  map[string][]*OpenLot
	symbols []string // first-seen order, for the end-of-stream flush
	log     *logger.Logger
}

// NewMatcher constructs a matcher with empty state
func NewMatcher() *Matcher {
	return &Matcher{
		queues: map[string][]*OpenLot{},
		log:    logger.Get(),
	}
}

// Match consumes the full leg sequence and returns the positions it
// produced: one per closing leg, in stream order, followed by one open
// position per symbol with residual lots, in first-seen symbol order.
// Matching stops at the first data-integrity failure.
func (m *Matcher) Match(legs []execution.Leg) ([]*Position, error) {
	positions := make([]*Position, 0, len(legs))

	for _, leg := range legs {
		switch {
		case leg.Instruction.Opens():
			m.open(leg)
		case leg.Instruction.Closes():
			pos, err := m.close(leg)
			if err != nil {
				return nil, err
			}
			positions = append(positions, pos)
		default:
			return nil, errors.Wrapf(errors.ErrUnknownInstruction,
				"symbol %s order %s: %q", leg.Symbol, leg.OrderID, leg.Instruction)
		}
	}

	stillOpen, err := m.flush()
	if err != nil {
		return nil, err
	}
	positions = append(positions, stillOpen...)

	m.log.Debugf("matched %d legs into %d positions (%d still open)",
		len(legs), len(positions), len(stillOpen))
	return positions, nil
}

// open pushes a new lot onto the symbol's queue, creating it lazily
func (m *Matcher) open(leg execution.Leg) {
	if _, ok := m.queues[leg.Symbol]; !ok {
		m.symbols = append(m.symbols, leg.Symbol)
	}
	m.queues[leg.Symbol] = append(m.queues[leg.Symbol], &OpenLot{
		Symbol:      leg.Symbol,
		Instruction: leg.Instruction,
		Quantity:    leg.Quantity,
		Price:       leg.Price,
		Time:        leg.Time,
		OrderID:     leg.OrderID,
	})
}

// taken records how much quantity a close consumed from one lot
type taken struct {
	lot *OpenLot
	qty decimal.Decimal
}

// close dequeues lots FIFO until the closing leg's quantity is satisfied
// and emits exactly one position. A front lot larger than the remaining
// closing quantity is decremented in place and stays at the front.
func (m *Matcher) close(leg execution.Leg) (*Position, error) {
	queue := m.queues[leg.Symbol]
	remaining := leg.Quantity
	var takes []taken

	for remaining.IsPositive() && len(queue) > 0 {
		front := queue[0]
		if front.Quantity.LessThanOrEqual(remaining) {
			takes = append(takes, taken{lot: front, qty: front.Quantity})
			remaining = remaining.Sub(front.Quantity)
			queue = queue[1:]
		} else {
			takes = append(takes, taken{lot: front, qty: remaining})
			front.Quantity = front.Quantity.Sub(remaining)
			remaining = decimal.Zero
		}
	}
	m.queues[leg.Symbol] = queue

	if remaining.IsPositive() {
		return nil, errors.Wrapf(errors.ErrInsufficientLots,
			"symbol %s order %s: %s of %s unmatched",
			leg.Symbol, leg.OrderID, remaining, leg.Quantity)
	}

	closing := leg
	pos, err := synthesize(takes)
	if err != nil {
		return nil, err
	}
	pos.Closing = &closing
	pos.OrderIDs = appendDistinct(pos.OrderIDs, closing.OrderID)
	return pos, nil
}

// flush emits one open position per symbol with residual lots, consuming
// the queues. Symbols flush in the order they were first seen.
func (m *Matcher) flush() ([]*Position, error) {
	var positions []*Position
	for _, symbol := range m.symbols {
		queue := m.queues[symbol]
		if len(queue) == 0 {
			continue
		}
		takes := make([]taken, 0, len(queue))
		for _, lot := range queue {
			takes = append(takes, taken{lot: lot, qty: lot.Quantity})
		}
		m.queues[symbol] = nil

		pos, err := synthesize(takes)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// synthesize builds a position's opening leg and risk from the lots a
// single closing event (or end-of-stream flush) consumed. The opening
// price is the quantity-weighted average of the consumed lots' prices;
// risk is the unrounded cost sum quantized separately so per-lot rounding
// error never compounds into it.
func synthesize(takes []taken) (*Position, error) {
	quantity := decimal.Zero
	cost := decimal.Zero
	var orderIDs []string
	for _, t := range takes {
		quantity = quantity.Add(t.qty)
		cost = cost.Add(t.qty.Mul(t.lot.Price))
		orderIDs = appendDistinct(orderIDs, t.lot.OrderID)
	}
	if !quantity.IsPositive() {
		return nil, errors.ErrEmptyPosition
	}

	oldest := takes[0].lot
	return &Position{
		Opening: execution.Leg{
			Symbol:      oldest.Symbol,
			Instruction: oldest.Instruction,
			Quantity:    quantity,
			Price:       cost.Div(quantity).Round(pricePlaces),
			Time:        oldest.Time,
			OrderID:     oldest.OrderID,
		},
		Risk:     cost.Round(pricePlaces),
		OrderIDs: orderIDs,
	}, nil
}

func appendDistinct(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
