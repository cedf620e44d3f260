package position

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Robinhuo1/TradingButler/internal/domain/execution"
)

// OpenLot is an unmatched opening quantity of a symbol still held. Each
// BUY/SELL_SHORT execution creates its own lot at its own price; lots are
// never pre-averaged and are consumed strictly first-in-first-out.
type OpenLot struct {
	Symbol      string
	Instruction execution.Instruction // Buy or SellShort
	Quantity    decimal.Decimal       // remaining, always > 0
	Price       decimal.Decimal
	Time        time.Time
	OrderID     string
}

// Position is the atomic unit of matcher output: one synthesized opening
// leg (weighted-average entry over the FIFO lots it consumed) plus the
// closing leg that triggered it, or no closing leg for a position still
// open at end of stream. Positions are never mutated after creation.
type Position struct {
	Opening execution.Leg
	Closing *execution.Leg // nil while still open

	// OrderIDs holds the distinct order identifiers that contributed to
	// the opening lots and the closing leg, in first-contribution order.
	// Used only to report a leg count.
	OrderIDs []string

	// Risk is the capital committed to the consumed opening lots:
	// sum of taken quantity times lot price, from unrounded lot prices,
	// rounded to 4 decimal places half-up.
	Risk decimal.Decimal
}

// IsOpen reports whether the position is still open
func (p *Position) IsOpen() bool {
	return p.Closing == nil
}

// Direction returns Long for BUY-opened positions, Short otherwise
func (p *Position) Direction() Direction {
	if p.Opening.Instruction == execution.Buy {
		return DirectionLong
	}
	return DirectionShort
}

// Direction defines long or short
type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

// Valid checks if direction is valid
func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// String returns string representation
func (d Direction) String() string {
	return string(d)
}

// Summary is the derived, read-only projection of a Position used for
// reporting and persistence. Nullable fields are nil for open positions.
type Summary struct {
	ID    uuid.UUID `db:"id"`
	RunID uuid.UUID `db:"run_id"`

	Symbol    string    `db:"symbol"`
	Direction Direction `db:"direction"`

	EntryDate time.Time  `db:"entry_date"`
	ExitDate  *time.Time `db:"exit_date"`

	AveragePrice decimal.Decimal  `db:"average_price"`
	ExitPrice    *decimal.Decimal `db:"exit_price"`
	Quantity     decimal.Decimal  `db:"quantity"`
	Risk         decimal.Decimal  `db:"risk"`

	Profit    *decimal.Decimal `db:"profit"`
	ProfitPct *decimal.Decimal `db:"profit_pct"`

	Days       int `db:"days"`
	NumberLegs int `db:"number_legs"`

	CreatedAt time.Time `db:"created_at"`
}

// IsOpen reports whether the summarized position had no exit
func (s *Summary) IsOpen() bool {
	return s.ExitDate == nil
}
