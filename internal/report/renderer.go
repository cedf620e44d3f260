package report

import (
	"bytes"
	"embed"
	"html/template"
	texttemplate "text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Robinhuo1/TradingButler/internal/domain/position"
	"github.com/Robinhuo1/TradingButler/pkg/errors"
)

//go:embed assets/*.tmpl
var embeddedFS embed.FS

// Row is one rendered summary line. Values are preformatted strings so
// the templates stay free of decimal handling; exit fields of positions
// that never closed render as "open".
type Row struct {
	Symbol       string
	Direction    string
	EntryDate    string
	AveragePrice string
	ExitPrice    string
	ExitDate     string
	Days         int
	Quantity     string
	Risk         string
	ProfitPct    string
	Profit       string
	NumberLegs   int
}

// Totals aggregates the run for the report footer
type Totals struct {
	Positions   int
	Closed      int
	Open        int
	Wins        int
	WinRate     string
	TotalProfit string
}

// Data is the payload both templates receive
type Data struct {
	GeneratedAt string
	Rows        []Row
	Totals      Totals
}

// Renderer formats position summaries into the HTML report and the
// plain-text digest
type Renderer struct {
	html   *template.Template
	digest *texttemplate.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	htmlTmpl, err := template.ParseFS(embeddedFS, "assets/report.html.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "parse html report template")
	}
	digestTmpl, err := texttemplate.ParseFS(embeddedFS, "assets/digest.txt.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "parse digest template")
	}
	return &Renderer{html: htmlTmpl, digest: digestTmpl}, nil
}

// HTML renders the full report document
func (r *Renderer) HTML(summaries []*position.Summary, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	if err := r.html.Execute(&buf, buildData(summaries, generatedAt)); err != nil {
		return "", errors.Wrap(err, "render html report")
	}
	return buf.String(), nil
}

// Digest renders the compact plain-text summary used for chat delivery
func (r *Renderer) Digest(summaries []*position.Summary, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	if err := r.digest.Execute(&buf, buildData(summaries, generatedAt)); err != nil {
		return "", errors.Wrap(err, "render digest")
	}
	return buf.String(), nil
}

func buildData(summaries []*position.Summary, generatedAt time.Time) Data {
	data := Data{
		GeneratedAt: generatedAt.UTC().Format("2006-01-02"),
		Rows:        make([]Row, 0, len(summaries)),
	}

	totalProfit := decimal.Zero
	for _, s := range summaries {
		row := Row{
			Symbol:       s.Symbol,
			Direction:    s.Direction.String(),
			EntryDate:    s.EntryDate.Format("2006-01-02"),
			AveragePrice: money(s.AveragePrice),
			ExitPrice:    "open",
			ExitDate:     "open",
			Days:         s.Days,
			Quantity:     s.Quantity.String(),
			Risk:         money(s.Risk),
			ProfitPct:    "",
			Profit:       "",
			NumberLegs:   s.NumberLegs,
		}

		data.Totals.Positions++
		if s.IsOpen() {
			data.Totals.Open++
		} else {
			data.Totals.Closed++
			row.ExitPrice = money(*s.ExitPrice)
			row.ExitDate = s.ExitDate.Format("2006-01-02")
			row.ProfitPct = s.ProfitPct.StringFixed(2) + "%"
			row.Profit = money(*s.Profit)
			totalProfit = totalProfit.Add(*s.Profit)
			if s.Profit.IsPositive() {
				data.Totals.Wins++
			}
		}
		data.Rows = append(data.Rows, row)
	}

	data.Totals.TotalProfit = money(totalProfit)
	if data.Totals.Closed > 0 {
		rate := decimal.NewFromInt(int64(data.Totals.Wins)).
			Div(decimal.NewFromInt(int64(data.Totals.Closed))).
			Mul(decimal.NewFromInt(100))
		data.Totals.WinRate = rate.StringFixed(1) + "%"
	} else {
		data.Totals.WinRate = "n/a"
	}
	return data
}

// money formats a decimal for display with thousand grouping. Display
// only; computed values stay exact.
func money(d decimal.Decimal) string {
	return humanize.CommafWithDigits(d.InexactFloat64(), 2)
}
