package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"cardlens/internal/models"
	"cardlens/internal/report"
	"cardlens/internal/writer"
)

// barRow is one bar in a horizontal bar chart. Width is a percent of the
// largest bar so the chart renders with plain CSS.
type barRow struct {
	Name   string
	Amount string
	Count  int
	Share  float64
	Width  int
}

// pieSlice is one legend entry for the conic-gradient pie.
type pieSlice struct {
	Name   string
	Amount string
	Share  float64
	Color  string
}

type summaryView struct {
	Count   int
	Total   string
	Average string
	Median  string
	Highest string
	From    string
	To      string
}

type insightsView struct {
	HighestMerchant    string
	HighestAmount      string
	HighestDate        string
	FrequentMerchant   string
	FrequentCount      int
	FrequentTotal      string
	Weekdays           []barRow
	UncategorizedShare float64
	UncategorizedTotal string
}

type txnRow struct {
	Date     string
	Merchant string
	Amount   string
	Category string
	Card     string
}

type dashboardView struct {
	HasData     bool
	Summary     summaryView
	Cards       []barRow
	Categories  []barRow
	Counts      []barRow
	Months      []barRow
	Merchants   []barRow
	PieGradient template.CSS
	PieLegend   []pieSlice
	Insights    insightsView
	Rows        []txnRow
}

// pieColors cycles through the legend; cards rarely exceed a handful.
var pieColors = []string{"#4e79a7", "#f28e2b", "#59a14f", "#e15759", "#76b7b2", "#edc948"}

func (s *Server) handleDashboard(c *fiber.Ctx) error {
	sessionID := s.sessionID(c)

	if view, ok := s.dashCache.Get(sessionID); ok {
		return s.render(c, "dashboard.html", view)
	}

	txns, err := s.store.Transactions(c.Context(), sessionID)
	if err != nil {
		slog.Error("loading transactions failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("loading session failed")
	}

	view := s.buildDashboard(txns)
	s.dashCache.Set(sessionID, view)
	return s.render(c, "dashboard.html", view)
}

func (s *Server) buildDashboard(txns []models.Transaction) dashboardView {
	view := dashboardView{HasData: len(txns) > 0}
	if !view.HasData {
		return view
	}

	sum := report.Summarize(txns)
	view.Summary = summaryView{
		Count:   sum.Count,
		Total:   formatINR(sum.Total),
		Average: formatINR(sum.Average),
		Median:  formatINR(sum.Median),
		Highest: formatINR(sum.Highest),
		From:    sum.From.Format("02 Jan 2006"),
		To:      sum.To.Format("02 Jan 2006"),
	}

	cards := report.ByCard(txns)
	view.Cards = breakdownBars(cards)
	view.PieGradient, view.PieLegend = pie(cards)

	categories := report.ByCategory(txns)
	view.Categories = breakdownBars(categories)
	view.Counts = countBars(categories)

	view.Months = monthBars(report.Monthly(txns))
	view.Merchants = merchantBars(report.TopMerchants(txns, s.cfg.TopMerchants))
	view.Insights = insightsData(report.BuildInsights(txns))

	for _, txn := range txns {
		view.Rows = append(view.Rows, txnRow{
			Date:     txn.Date.Format("02 Jan 2006"),
			Merchant: txn.Merchant,
			Amount:   formatINR(txn.Amount),
			Category: txn.Category,
			Card:     txn.Card,
		})
	}
	return view
}

func breakdownBars(rows []report.Breakdown) []barRow {
	var max decimal.Decimal
	for _, r := range rows {
		if r.Total.GreaterThan(max) {
			max = r.Total
		}
	}

	bars := make([]barRow, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, barRow{
			Name:   r.Name,
			Amount: formatINR(r.Total),
			Count:  r.Count,
			Share:  r.Share,
			Width:  barWidth(r.Total, max),
		})
	}
	return bars
}

func countBars(rows []report.Breakdown) []barRow {
	maxCount := 0
	for _, r := range rows {
		if r.Count > maxCount {
			maxCount = r.Count
		}
	}

	bars := make([]barRow, 0, len(rows))
	for _, r := range rows {
		width := 0
		if maxCount > 0 {
			width = clampWidth((r.Count*100 + maxCount/2) / maxCount)
		}
		bars = append(bars, barRow{Name: r.Name, Count: r.Count, Width: width})
	}
	return bars
}

func monthBars(rows []report.MonthTotal) []barRow {
	var max decimal.Decimal
	for _, r := range rows {
		if r.Total.GreaterThan(max) {
			max = r.Total
		}
	}

	bars := make([]barRow, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, barRow{
			Name:   r.Label,
			Amount: formatINR(r.Total),
			Count:  r.Count,
			Width:  barWidth(r.Total, max),
		})
	}
	return bars
}

func merchantBars(rows []report.MerchantTotal) []barRow {
	var max decimal.Decimal
	for _, r := range rows {
		if r.Total.GreaterThan(max) {
			max = r.Total
		}
	}

	bars := make([]barRow, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, barRow{
			Name:   r.Name,
			Amount: formatINR(r.Total),
			Count:  r.Count,
			Width:  barWidth(r.Total, max),
		})
	}
	return bars
}

// barWidth is a rounded percent of max, clamped so tiny bars stay visible.
func barWidth(total, max decimal.Decimal) int {
	if !max.IsPositive() || !total.IsPositive() {
		return 0
	}
	width, _ := total.Div(max).Mul(decimal.NewFromInt(100)).Round(0).Float64()
	return clampWidth(int(width))
}

func clampWidth(width int) int {
	if width > 0 && width < 2 {
		return 2
	}
	if width > 100 {
		return 100
	}
	return width
}

// pie builds a CSS conic-gradient over the per-card shares plus its legend.
func pie(rows []report.Breakdown) (template.CSS, []pieSlice) {
	if len(rows) == 0 {
		return "", nil
	}

	var stops []string
	var legend []pieSlice
	start := 0.0
	for i, r := range rows {
		end := start + r.Share
		if i == len(rows)-1 {
			end = 100 // absorb rounding drift
		}
		color := pieColors[i%len(pieColors)]
		stops = append(stops, fmt.Sprintf("%s %.1f%% %.1f%%", color, start, end))
		legend = append(legend, pieSlice{
			Name:   r.Name,
			Amount: formatINR(r.Total),
			Share:  r.Share,
			Color:  color,
		})
		start = end
	}
	return template.CSS("conic-gradient(" + strings.Join(stops, ", ") + ")"), legend
}

func insightsData(ins report.Insights) insightsView {
	view := insightsView{
		HighestMerchant:    ins.Highest.Merchant,
		HighestAmount:      formatINR(ins.Highest.Amount),
		FrequentMerchant:   ins.FrequentMerchant,
		FrequentCount:      ins.FrequentCount,
		FrequentTotal:      formatINR(ins.FrequentTotal),
		UncategorizedShare: ins.UncategorizedShare,
		UncategorizedTotal: formatINR(ins.UncategorizedTotal),
	}
	if !ins.Highest.Date.IsZero() {
		view.HighestDate = ins.Highest.Date.Format("02 Jan 2006")
	}

	var max decimal.Decimal
	for _, w := range ins.WeekdayAverages {
		if w.Average.GreaterThan(max) {
			max = w.Average
		}
	}
	for _, w := range ins.WeekdayAverages {
		view.Weekdays = append(view.Weekdays, barRow{
			Name:   w.Day.String(),
			Amount: formatINR(w.Average),
			Width:  barWidth(w.Average, max),
		})
	}
	return view
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	sessionID := s.sessionID(c)

	txns, err := s.store.Transactions(c.Context(), sessionID)
	if err != nil {
		slog.Error("loading transactions failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("loading session failed")
	}
	if len(txns) == 0 {
		return c.Status(fiber.StatusNotFound).SendString("nothing to export, upload a statement first")
	}

	var buf bytes.Buffer
	cw := &writer.CSVWriter{IncludeMeta: true}
	if err := cw.Write(&buf, txns); err != nil {
		slog.Error("CSV export failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("export failed")
	}

	name := fmt.Sprintf("transactions-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(buf.Bytes())
}

// formatINR renders an amount as rupees with thousands separators.
func formatINR(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}

	out := "₹" + b.String() + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}
