// Package report derives the sales report shown on the reports page and
// exported as CSV. Everything here is a pure function of its inputs.
package report

import (
	"sort"
	"time"

	"github.com/diewo77/go-sales/internal/services"
	"github.com/shopspring/decimal"
)

const (
	// SeriesDays bounds the per-day series whatever the window.
	SeriesDays = 7
	// TopN bounds the product and customer rankings.
	TopN = 5
)

// Windows lists the accepted report windows, in days.
var Windows = []int{7, 30, 90, 365}

// ValidWindow reports whether days is one of Windows.
func ValidWindow(days int) bool {
	for _, w := range Windows {
		if w == days {
			return true
		}
	}
	return false
}

// Item is a line item as the report sees it: the snapshot taken at sale time.
type Item struct {
	ProductName string
	Quantity    int
	Subtotal    decimal.Decimal
}

// Sale is the input row of Build.
type Sale struct {
	SoldAt       time.Time
	Total        decimal.Decimal
	CustomerName string
	Items        []Item
}

// FromDetails converts reader output into report input. Sales whose customer
// is gone are grouped under unknown.
func FromDetails(details []services.SaleDetail, unknown string) []Sale {
	out := make([]Sale, len(details))
	for i, d := range details {
		name := d.CustomerName
		if name == "" {
			name = unknown
		}
		items := make([]Item, len(d.Items))
		for j, it := range d.Items {
			items[j] = Item{ProductName: it.ProductName, Quantity: it.Quantity, Subtotal: it.Subtotal}
		}
		out[i] = Sale{SoldAt: d.SoldAt, Total: d.Total, CustomerName: name, Items: items}
	}
	return out
}

type DayPoint struct {
	Date    string          `json:"date"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductRank struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type CustomerRank struct {
	Name  string          `json:"name"`
	Sales int             `json:"sales"`
	Total decimal.Decimal `json:"total"`
}

type Summary struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalSales    int             `json:"total_sales"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	// Growth is the revenue change against the previous window, in percent
	// with one decimal. It is 0 when the previous window had no revenue.
	Growth float64 `json:"growth"`
}

type Report struct {
	WindowDays   int            `json:"window_days"`
	Daily        []DayPoint     `json:"daily"`
	TopProducts  []ProductRank  `json:"top_products"`
	TopCustomers []CustomerRank `json:"top_customers"`
	Summary      Summary        `json:"summary"`
}

// Since returns the earliest sale time Build looks at, so callers can fetch
// just the current and previous windows.
func Since(windowDays int, now time.Time) time.Time {
	return now.AddDate(0, 0, -2*windowDays)
}

// Build aggregates sales over the windowDays before now. Days are bucketed
// in loc; a nil loc means UTC.
func Build(sales []Sale, windowDays int, now time.Time, loc *time.Location) Report {
	if loc == nil {
		loc = time.UTC
	}
	cutoff := now.AddDate(0, 0, -windowDays)
	prevStart := cutoff.AddDate(0, 0, -windowDays)

	var current []Sale
	previous := decimal.Zero
	for _, s := range sales {
		switch {
		case !s.SoldAt.Before(cutoff):
			current = append(current, s)
		case !s.SoldAt.Before(prevStart):
			previous = previous.Add(s.Total)
		}
	}

	rep := Report{
		WindowDays:   windowDays,
		Daily:        daily(current, loc),
		TopProducts:  topProducts(current),
		TopCustomers: topCustomers(current),
	}
	rep.Summary = summarize(current, previous)
	return rep
}

func daily(sales []Sale, loc *time.Location) []DayPoint {
	byDay := make(map[string]*DayPoint)
	for _, s := range sales {
		key := s.SoldAt.In(loc).Format(time.DateOnly)
		p, ok := byDay[key]
		if !ok {
			p = &DayPoint{Date: key, Revenue: decimal.Zero}
			byDay[key] = p
		}
		p.Sales++
		p.Revenue = p.Revenue.Add(s.Total)
	}
	out := make([]DayPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if len(out) > SeriesDays {
		out = out[len(out)-SeriesDays:]
	}
	return out
}

func topProducts(sales []Sale) []ProductRank {
	index := make(map[string]int)
	var out []ProductRank
	for _, s := range sales {
		for _, it := range s.Items {
			i, ok := index[it.ProductName]
			if !ok {
				i = len(out)
				index[it.ProductName] = i
				out = append(out, ProductRank{Name: it.ProductName, Revenue: decimal.Zero})
			}
			out[i].Quantity += it.Quantity
			out[i].Revenue = out[i].Revenue.Add(it.Subtotal)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}

func topCustomers(sales []Sale) []CustomerRank {
	index := make(map[string]int)
	var out []CustomerRank
	for _, s := range sales {
		i, ok := index[s.CustomerName]
		if !ok {
			i = len(out)
			index[s.CustomerName] = i
			out = append(out, CustomerRank{Name: s.CustomerName, Total: decimal.Zero})
		}
		out[i].Sales++
		out[i].Total = out[i].Total.Add(s.Total)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}

func summarize(current []Sale, previous decimal.Decimal) Summary {
	sum := Summary{TotalRevenue: decimal.Zero, AverageTicket: decimal.Zero, TotalSales: len(current)}
	for _, s := range current {
		sum.TotalRevenue = sum.TotalRevenue.Add(s.Total)
	}
	if sum.TotalSales > 0 {
		sum.AverageTicket = sum.TotalRevenue.Div(decimal.NewFromInt(int64(sum.TotalSales))).Round(2)
	}
	if previous.IsPositive() {
		g := sum.TotalRevenue.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
		sum.Growth = g.InexactFloat64()
	}
	return sum
}
