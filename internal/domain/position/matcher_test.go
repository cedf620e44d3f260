package position_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Robinhuo1/TradingButler/internal/domain/execution"
	"github.com/Robinhuo1/TradingButler/internal/domain/position"
	"github.com/Robinhuo1/TradingButler/pkg/errors"
)

func leg(symbol string, instruction execution.Instruction, qty, price string, day int, orderID string) execution.Leg {
	return execution.Leg{
		Symbol:      symbol,
		Instruction: instruction,
		Quantity:    decimal.RequireFromString(qty),
		Price:       decimal.RequireFromString(price),
		Time:        time.Date(2022, 9, day, 14, 30, 0, 0, time.UTC),
		OrderID:     orderID,
	}
}

func TestMatchFIFOOrder(t *testing.T) {
	// Full opens matched by full closes: position N opens at the Nth
	// opening leg's own price, never an average.
	legs := []execution.Leg{
		leg("AAPL", execution.Buy, "10", "100.00", 1, "o1"),
		leg("AAPL", execution.Buy, "10", "110.00", 2, "o2"),
		leg("AAPL", execution.Buy, "10", "120.00", 3, "o3"),
		leg("AAPL", execution.Sell, "10", "130.00", 4, "c1"),
		leg("AAPL", execution.Sell, "10", "131.00", 5, "c2"),
		leg("AAPL", execution.Sell, "10", "132.00", 6, "c3"),
	}

	positions, err := position.NewMatcher().Match(legs)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	expected := []string{"100", "110", "120"}
	for i, pos := range positions {
		assert.False(t, pos.IsOpen())
		assert.True(t, pos.Opening.Price.Equal(decimal.RequireFromString(expected[i])),
			"position %d opening price = %s", i, pos.Opening.Price)
	}
}

func TestMatchPartialClose(t *testing.T) {
	legs := []execution.Leg{
		leg("META", execution.Buy, "10", "241.34", 13, "o1"),
		leg("META", execution.Sell, "5", "250.00", 14, "c1"),
	}

	positions, err := position.NewMatcher().Match(legs)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	closed, open := positions[0], positions[1]

	require.False(t, closed.IsOpen())
	assert.True(t, closed.Opening.Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, closed.Opening.Price.Equal(decimal.RequireFromString("241.34")))
	assert.True(t, closed.Risk.Equal(decimal.RequireFromString("1206.7")))

	require.True(t, open.IsOpen())
	assert.True(t, open.Opening.Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, open.Opening.Price.Equal(decimal.RequireFromString("241.34")))
}

func TestMatchWeightedAverageAcrossOpens(t *testing.T) {
	// Three partial opens, two closes of 11. FIFO per-lot consumption:
	// the first close drains 11 of the 12-share lot, the second averages
	// the leftover share with the later lots.
	legs := []execution.Leg{
		leg("TSLA", execution.Buy, "12", "72.01", 1, "o1"),
		leg("TSLA", execution.Buy, "6", "54.21", 2, "o2"),
		leg("TSLA", execution.Buy, "4", "50.21", 3, "o3"),
		leg("TSLA", execution.Sell, "11", "80.00", 4, "c1"),
		leg("TSLA", execution.Sell, "11", "80.00", 5, "c2"),
	}

	positions, err := position.NewMatcher().Match(legs)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	first, second := positions[0], positions[1]

	assert.True(t, first.Opening.Price.Equal(decimal.RequireFromString("72.01")))
	assert.True(t, first.Risk.Equal(decimal.RequireFromString("792.11")))
	assert.Equal(t, []string{"o1", "c1"}, first.OrderIDs)

	// (1*72.01 + 6*54.21 + 4*50.21) / 11 = 598.11 / 11 = 54.3736...
	assert.True(t, second.Opening.Price.Equal(decimal.RequireFromString("54.3736")),
		"second opening price = %s", second.Opening.Price)
	assert.True(t, second.Risk.Equal(decimal.RequireFromString("598.11")))
	assert.Equal(t, []string{"o1", "o2", "o3", "c2"}, second.OrderIDs)

	// The second position's opening metadata comes from its oldest lot.
	assert.Equal(t, 1, second.Opening.Time.Day())
	assert.Equal(t, "o1", second.Opening.OrderID)
}

func TestMatchShortSymmetry(t *testing.T) {
	legs := []execution.Leg{
		leg("GME", execution.SellShort, "8", "45.00", 1, "o1"),
		leg("GME", execution.BuyToCover, "8", "30.00", 2, "c1"),
	}

	positions, err := position.NewMatcher().Match(legs)
	require.NoError(t, err)
	require.Len(t, positions, 1)

	pos := positions[0]
	assert.Equal(t, position.DirectionShort, pos.Direction())
	assert.False(t, pos.IsOpen())
	assert.Equal(t, execution.SellShort, pos.Opening.Instruction)
	assert.True(t, pos.Risk.Equal(decimal.RequireFromString("360")))
}

func TestMatchOpenFlush(t *testing.T) {
	legs := []execution.Leg{
		leg("AMZN", execution.Buy, "12", "75.25", 20, "o1"),
		leg("AMZN", execution.Buy, "8", "80.25", 21, "o2"),
	}

	positions, err := position.NewMatcher().Match(legs)
	require.NoError(t, err)
	require.Len(t, positions, 1)

	pos := positions[0]
	require.True(t, pos.IsOpen())
	assert.True(t, pos.Opening.Quantity.Equal(decimal.NewFromInt(20)))
	// (12*75.25 + 8*80.25) / 20 = 1545 / 20 = 77.25
	assert.True(t, pos.Opening.Price.Equal(decimal.RequireFromString("77.25")))
	assert.True(t, pos.Risk.Equal(decimal.RequireFromString("1545")))
	assert.Equal(t, []string{"o1", "o2"}, pos.OrderIDs)
}

func TestMatchInterleavedSymbols(t *testing.T) {
	// Closed positions follow the stream order of their closing legs;
	// open flushes come last, in first-seen symbol order.
	legs := []execution.Leg{
		leg("BBB", execution.Buy, "5", "10.00", 1, "b1"),
		leg("AAA", execution.Buy, "5", "20.00", 2, "a1"),
		leg("CCC", execution.Buy, "5", "30.00", 3, "c1"),
		leg("AAA", execution.Sell, "5", "22.00", 4, "a2"),
		leg("BBB", execution.Sell, "5", "11.00", 5, "b2"),
	}

	positions, err := position.NewMatcher().Match(legs)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	assert.Equal(t, "AAA", positions[0].Opening.Symbol)
	assert.Equal(t, "BBB", positions[1].Opening.Symbol)
	assert.Equal(t, "CCC", positions[2].Opening.Symbol)
	assert.True(t, positions[2].IsOpen())
}

func TestMatchInsufficientLots(t *testing.T) {
	legs := []execution.Leg{
		leg("AAPL", execution.Buy, "5", "100.00", 1, "o1"),
		leg("AAPL", execution.Sell, "8", "110.00", 2, "c1"),
	}

	positions, err := position.NewMatcher().Match(legs)
	require.Error(t, err)
	assert.Nil(t, positions)
	assert.True(t, errors.Is(err, errors.ErrInsufficientLots))
	assert.Contains(t, err.Error(), "AAPL")
}

func TestMatchUnknownInstruction(t *testing.T) {
	legs := []execution.Leg{
		leg("AAPL", execution.Instruction("EXCHANGE"), "5", "100.00", 1, "o1"),
	}

	_, err := position.NewMatcher().Match(legs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownInstruction))
}

func TestMatchDeterminism(t *testing.T) {
	legs := []execution.Leg{
		leg("AAPL", execution.Buy, "16", "29.34", 1, "o1"),
		leg("AAPL", execution.Sell, "16", "222.22", 10, "c1"),
		leg("TSLA", execution.Buy, "12", "72.01", 2, "o2"),
		leg("TSLA", execution.Sell, "7", "75.00", 11, "c2"),
	}

	one, err := position.NewMatcher().Match(legs)
	require.NoError(t, err)
	two, err := position.NewMatcher().Match(legs)
	require.NoError(t, err)

	assert.Equal(t, one, two)
}
