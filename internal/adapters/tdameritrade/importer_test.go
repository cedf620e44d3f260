package tdameritrade_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Robinhuo1/TradingButler/internal/adapters/tdameritrade"
	"github.com/Robinhuo1/TradingButler/internal/domain/execution"
	"github.com/Robinhuo1/TradingButler/pkg/errors"
)

// Orders come newest first, the way the broker exports them.
const sampleExport = `[
  {
    "orderId": 9002,
    "orderLegCollection": [
      {"instruction": "SELL", "instrument": {"symbol": "AAPL"}}
    ],
    "orderActivityCollection": [
      {"executionLegs": [
        {"quantity": 16, "price": 222.22, "time": "2022-10-10T14:30:00+0000"}
      ]}
    ]
  },
  {
    "orderId": 9001,
    "orderLegCollection": [
      {"instruction": "BUY", "instrument": {"symbol": "AAPL"}}
    ],
    "orderActivityCollection": [
      {"executionLegs": [
        {"quantity": 10, "price": 29.34, "time": "2022-09-23T14:30:00+0000"},
        {"quantity": 6, "price": 29.35, "time": "2022-09-23T14:30:02+0000"}
      ]}
    ]
  }
]`

func TestImport(t *testing.T) {
	importer := &tdameritrade.Importer{}

	legs, err := importer.Import(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, legs, 3)

	first := legs[0]
	assert.Equal(t, "AAPL", first.Symbol)
	assert.Equal(t, execution.Buy, first.Instruction)
	assert.True(t, first.Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, first.Price.Equal(decimal.RequireFromString("29.34")))
	assert.Equal(t, "9001", first.OrderID)

	// Fills within one order keep execution order; the sell comes last.
	assert.True(t, legs[1].Price.Equal(decimal.RequireFromString("29.35")))
	assert.Equal(t, execution.Sell, legs[2].Instruction)
	assert.Equal(t, "9002", legs[2].OrderID)

	for i := 1; i < len(legs); i++ {
		assert.False(t, legs[i].Time.Before(legs[i-1].Time))
	}
}

func TestImportRegistered(t *testing.T) {
	importer, err := execution.ImporterFor(tdameritrade.FormatName)
	require.NoError(t, err)
	assert.NotNil(t, importer)
}

func TestImportMalformed(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		wantErr error
	}{
		{
			name:    "not json",
			payload: "not json at all",
			wantErr: errors.ErrMalformedExport,
		},
		{
			name: "unknown instruction",
			payload: `[{
				"orderId": 1,
				"orderLegCollection": [{"instruction": "EXCHANGE", "instrument": {"symbol": "AAPL"}}],
				"orderActivityCollection": []
			}]`,
			wantErr: errors.ErrUnknownInstruction,
		},
		{
			name: "bad execution time",
			payload: `[{
				"orderId": 1,
				"orderLegCollection": [{"instruction": "BUY", "instrument": {"symbol": "AAPL"}}],
				"orderActivityCollection": [{"executionLegs": [
					{"quantity": 1, "price": 10.0, "time": "yesterday"}
				]}]
			}]`,
			wantErr: errors.ErrMalformedExport,
		},
	}

	importer := &tdameritrade.Importer{}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := importer.Import(strings.NewReader(tc.payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr))
		})
	}
}

func TestImportPriceStaysExact(t *testing.T) {
	// 29.99 has no exact binary representation; the decoder must not
	// round-trip through float64.
	payload := `[{
		"orderId": 7,
		"orderLegCollection": [{"instruction": "BUY", "instrument": {"symbol": "IWM"}}],
		"orderActivityCollection": [{"executionLegs": [
			{"quantity": 3, "price": 29.99, "time": "2022-09-23T14:30:00+0000"}
		]}]
	}]`

	importer := &tdameritrade.Importer{}
	legs, err := importer.Import(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, legs, 1)

	assert.Equal(t, "29.99", legs[0].Price.String())
}
