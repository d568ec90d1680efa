// Package report computes summary statistics and chart series over
// normalized transactions.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"cardlens/internal/category"
	"cardlens/internal/models"
)

// Summary holds the headline numbers for a set of transactions.
type Summary struct {
	Count   int
	Total   decimal.Decimal
	Average decimal.Decimal
	Median  decimal.Decimal
	Highest decimal.Decimal
	From    time.Time
	To      time.Time
}

// Breakdown is one row of a grouped aggregation (by card or by category).
type Breakdown struct {
	Name    string
	Total   decimal.Decimal
	Count   int
	Average decimal.Decimal
	Share   float64 // percent of the grand total
}

// MerchantTotal is one merchant's aggregate spend.
type MerchantTotal struct {
	Name  string
	Total decimal.Decimal
	Count int
}

// MonthTotal is one month's aggregate spend.
type MonthTotal struct {
	Key   string // sortable, e.g. "2025-12"
	Label string // display, e.g. "Dec 25"
	Total decimal.Decimal
	Count int
}

// WeekdayAverage is the mean transaction amount for one day of the week.
type WeekdayAverage struct {
	Day     time.Weekday
	Average decimal.Decimal
}

// Insights holds the derived observations shown under the charts.
type Insights struct {
	Highest            models.Transaction
	FrequentMerchant   string
	FrequentCount      int
	FrequentTotal      decimal.Decimal
	WeekdayAverages    []WeekdayAverage
	UncategorizedTotal decimal.Decimal
	UncategorizedShare float64
}

// Summarize computes the headline numbers. The per-card and per-category
// breakdowns each sum back to Summary.Total.
func Summarize(txns []models.Transaction) Summary {
	s := Summary{Count: len(txns)}
	if len(txns) == 0 {
		return s
	}

	amounts := make([]decimal.Decimal, len(txns))
	for i, txn := range txns {
		amounts[i] = txn.Amount
		s.Total = s.Total.Add(txn.Amount)
		if txn.Amount.GreaterThan(s.Highest) {
			s.Highest = txn.Amount
		}
		if s.From.IsZero() || txn.Date.Before(s.From) {
			s.From = txn.Date
		}
		if s.To.IsZero() || txn.Date.After(s.To) {
			s.To = txn.Date
		}
	}

	s.Average = s.Total.Div(decimal.NewFromInt(int64(len(txns)))).Round(2)
	s.Median = median(amounts)
	return s
}

func median(amounts []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(amounts))
	copy(sorted, amounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2)).Round(2)
}

// ByCard groups spend per card, largest first.
func ByCard(txns []models.Transaction) []Breakdown {
	return breakdown(txns, func(t models.Transaction) string { return t.Card })
}

// ByCategory groups spend per category, largest first.
func ByCategory(txns []models.Transaction) []Breakdown {
	return breakdown(txns, func(t models.Transaction) string { return t.Category })
}

func breakdown(txns []models.Transaction, key func(models.Transaction) string) []Breakdown {
	groups := make(map[string]*Breakdown)
	var grand decimal.Decimal
	for _, txn := range txns {
		name := key(txn)
		b, ok := groups[name]
		if !ok {
			b = &Breakdown{Name: name}
			groups[name] = b
		}
		b.Total = b.Total.Add(txn.Amount)
		b.Count++
		grand = grand.Add(txn.Amount)
	}

	rows := make([]Breakdown, 0, len(groups))
	for _, b := range groups {
		b.Average = b.Total.Div(decimal.NewFromInt(int64(b.Count))).Round(2)
		if grand.IsPositive() {
			b.Share, _ = b.Total.Div(grand).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		}
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
	return rows
}

// TopMerchants returns the n merchants with the highest total spend.
func TopMerchants(txns []models.Transaction, n int) []MerchantTotal {
	groups := make(map[string]*MerchantTotal)
	for _, txn := range txns {
		m, ok := groups[txn.Merchant]
		if !ok {
			m = &MerchantTotal{Name: txn.Merchant}
			groups[txn.Merchant] = m
		}
		m.Total = m.Total.Add(txn.Amount)
		m.Count++
	}

	rows := make([]MerchantTotal, 0, len(groups))
	for _, m := range groups {
		rows = append(rows, *m)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Monthly buckets spend per calendar month, oldest first.
func Monthly(txns []models.Transaction) []MonthTotal {
	groups := make(map[string]*MonthTotal)
	for _, txn := range txns {
		key := txn.Date.Format("2006-01")
		m, ok := groups[key]
		if !ok {
			m = &MonthTotal{Key: key, Label: txn.Date.Format("Jan 06")}
			groups[key] = m
		}
		m.Total = m.Total.Add(txn.Amount)
		m.Count++
	}

	rows := make([]MonthTotal, 0, len(groups))
	for _, m := range groups {
		rows = append(rows, *m)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// BuildInsights derives the observations shown under the charts: the single
// highest charge, the most frequent merchant, average spend per weekday, and
// how much spending stayed uncategorized.
func BuildInsights(txns []models.Transaction) Insights {
	var ins Insights
	if len(txns) == 0 {
		return ins
	}

	var grand decimal.Decimal
	merchCount := make(map[string]int)
	merchTotal := make(map[string]decimal.Decimal)
	dayTotal := make(map[time.Weekday]decimal.Decimal)
	dayCount := make(map[time.Weekday]int)

	for _, txn := range txns {
		grand = grand.Add(txn.Amount)
		if txn.Amount.GreaterThan(ins.Highest.Amount) {
			ins.Highest = txn
		}
		merchCount[txn.Merchant]++
		merchTotal[txn.Merchant] = merchTotal[txn.Merchant].Add(txn.Amount)
		day := txn.Date.Weekday()
		dayTotal[day] = dayTotal[day].Add(txn.Amount)
		dayCount[day]++
		if txn.Category == category.Other {
			ins.UncategorizedTotal = ins.UncategorizedTotal.Add(txn.Amount)
		}
	}

	for merchant, count := range merchCount {
		if count > ins.FrequentCount ||
			(count == ins.FrequentCount && merchant < ins.FrequentMerchant) {
			ins.FrequentMerchant = merchant
			ins.FrequentCount = count
		}
	}
	ins.FrequentTotal = merchTotal[ins.FrequentMerchant]

	for day, total := range dayTotal {
		ins.WeekdayAverages = append(ins.WeekdayAverages, WeekdayAverage{
			Day:     day,
			Average: total.Div(decimal.NewFromInt(int64(dayCount[day]))).Round(2),
		})
	}
	sort.Slice(ins.WeekdayAverages, func(i, j int) bool {
		return ins.WeekdayAverages[i].Average.GreaterThan(ins.WeekdayAverages[j].Average)
	})

	if grand.IsPositive() {
		ins.UncategorizedShare, _ = ins.UncategorizedTotal.Div(grand).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	}
	return ins
}
