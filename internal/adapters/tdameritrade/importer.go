package tdameritrade

import (
	"encoding/json"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Robinhuo1/TradingButler/internal/domain/execution"
	"github.com/Robinhuo1/TradingButler/pkg/errors"
)

// FormatName is the configuration key selecting this importer
const FormatName = "tdameritrade"

func init() {
	execution.RegisterImporter(FormatName, &Importer{})
}

// order mirrors the slice of a TDA order object this importer reads.
// The export lists orders newest first.
type order struct {
	OrderID json.Number `json:"orderId"`
	Legs    []struct {
		Instruction string `json:"instruction"`
		Instrument  struct {
			Symbol string `json:"symbol"`
		} `json:"instrument"`
	} `json:"orderLegCollection"`
	Activities []struct {
		ExecutionLegs []struct {
			Quantity decimal.Decimal `json:"quantity"`
			Price    decimal.Decimal `json:"price"`
			Time     string          `json:"time"`
		} `json:"executionLegs"`
	} `json:"orderActivityCollection"`
}

// Importer reads the TDA Ameritrade trade-export JSON (an array of order
// objects with their execution fills) and normalizes it into legs.
type Importer struct{}

var _ execution.Importer = (*Importer)(nil)

// Import decodes the export and returns legs in execution-time order
func (i *Importer) Import(r io.Reader) ([]execution.Leg, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var orders []order
	if err := dec.Decode(&orders); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedExport, err.Error())
	}

	var legs []execution.Leg
	// Walk oldest order first.
	for idx := len(orders) - 1; idx >= 0; idx-- {
		o := orders[idx]

		var instruction execution.Instruction
		var symbol string
		for _, leg := range o.Legs {
			instruction = execution.Instruction(leg.Instruction)
			symbol = leg.Instrument.Symbol
		}
		if !instruction.Valid() {
			return nil, errors.Wrapf(errors.ErrUnknownInstruction,
				"order %s: %q", o.OrderID, instruction)
		}

		for _, activity := range o.Activities {
			for _, fill := range activity.ExecutionLegs {
				ts, err := parseTime(fill.Time)
				if err != nil {
					return nil, errors.Wrapf(errors.ErrMalformedExport,
						"order %s: bad execution time %q", o.OrderID, fill.Time)
				}
				legs = append(legs, execution.Leg{
					Symbol:      symbol,
					Instruction: instruction,
					Quantity:    fill.Quantity,
					Price:       fill.Price,
					Time:        ts,
					OrderID:     o.OrderID.String(),
				})
			}
		}
	}

	execution.SortLegs(legs)
	return legs, nil
}

// TDA emits RFC3339 timestamps, older exports without the colon in the
// zone offset.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
}

func parseTime(value string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}
