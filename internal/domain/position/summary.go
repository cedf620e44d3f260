package position

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Robinhuo1/TradingButler/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Summarize projects a position into its financial summary. It is a pure
// function: asOf supplies the "today" used for the holding period of open
// positions, so repeated runs over the same input are reproducible.
func Summarize(p *Position, asOf time.Time) (*Summary, error) {
	if p == nil {
		return nil, errors.ErrInvalidInput
	}
	if !p.Opening.Quantity.IsPositive() {
		return nil, errors.ErrEmptyPosition
	}

	entryDate := dateOf(p.Opening.Time)
	summary := &Summary{
		Symbol:       p.Opening.Symbol,
		Direction:    p.Direction(),
		EntryDate:    entryDate,
		AveragePrice: p.Opening.Price,
		Quantity:     p.Opening.Quantity,
		Risk:         p.Risk,
		NumberLegs:   len(p.OrderIDs),
	}

	if p.Closing == nil {
		summary.Days = wholeDays(entryDate, dateOf(asOf))
		return summary, nil
	}

	// size is the exit proceeds at full precision; only the derived
	// figures are quantized.
	size := p.Opening.Quantity.Mul(p.Closing.Price)

	exitPrice := p.Closing.Price.Round(pricePlaces)
	exitDate := dateOf(p.Closing.Time)

	// Profit is signed by trade outcome: a short gains when it covers
	// below its entry.
	profit := size.Sub(p.Risk)
	if summary.Direction == DirectionShort {
		profit = p.Risk.Sub(size)
	}
	profit = profit.Round(pricePlaces)

	pct := p.Closing.Price.Div(p.Opening.Price).
		Sub(decimal.NewFromInt(1)).
		Mul(oneHundred).
		Round(pctPlaces)

	summary.ExitPrice = &exitPrice
	summary.ExitDate = &exitDate
	summary.Profit = &profit
	summary.ProfitPct = &pct
	summary.Days = wholeDays(entryDate, exitDate)
	return summary, nil
}

// SummarizeAll projects every position with one shared as-of date
func SummarizeAll(positions []*Position, asOf time.Time) ([]*Summary, error) {
	summaries := make([]*Summary, 0, len(positions))
	for _, p := range positions {
		s, err := Summarize(p, asOf)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// dateOf truncates a timestamp to its calendar date in UTC
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// wholeDays returns the calendar-day difference between two dates
func wholeDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
