package execution

import (
	"time"

	"github.com/shopspring/decimal"
)

// Leg represents a single fill reported by the broker: one quantity executed
// at one price at one instant. A brokerage order may produce several legs.
type Leg struct {
	Symbol      string
	Instruction Instruction
	Quantity    decimal.Decimal // always positive, integral in practice
	Price       decimal.Decimal
	Time        time.Time
	OrderID     string // provenance only, never used for matching
}

// Instruction is the broker-side action of an execution leg
type Instruction string

const (
	Buy        Instruction = "BUY"
	Sell       Instruction = "SELL"
	SellShort  Instruction = "SELL_SHORT"
	BuyToCover Instruction = "BUY_TO_COVER"
)

// Valid checks if the instruction is one of the four supported actions
func (i Instruction) Valid() bool {
	switch i {
	case Buy, Sell, SellShort, BuyToCover:
		return true
	}
	return false
}

// Opens reports whether the instruction opens exposure (creates a lot)
func (i Instruction) Opens() bool {
	return i == Buy || i == SellShort
}

// Closes reports whether the instruction closes exposure (consumes lots)
func (i Instruction) Closes() bool {
	return i == Sell || i == BuyToCover
}

// String returns string representation
func (i Instruction) String() string {
	return string(i)
}
