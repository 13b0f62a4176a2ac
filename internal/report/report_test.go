package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var now = time.Date(2026, 6, 30, 15, 0, 0, 0, time.UTC)

func sale(at time.Time, total, customer string, items ...Item) Sale {
	return Sale{SoldAt: at, Total: dec(total), CustomerName: customer, Items: items}
}

func TestBuildSummary(t *testing.T) {
	sales := []Sale{
		sale(now.Add(-time.Hour), "100", "Ana"),
		sale(now.Add(-2*time.Hour), "200", "Bruno"),
		sale(now.AddDate(0, 0, -40), "50", "Ana"),
	}
	rep := Build(sales, 30, now, time.UTC)
	assert.True(t, rep.Summary.TotalRevenue.Equal(dec("300")))
	assert.Equal(t, 2, rep.Summary.TotalSales)
	assert.True(t, rep.Summary.AverageTicket.Equal(dec("150")))
	// D-40 falls in the previous 30-day window
	assert.Equal(t, 500.0, rep.Summary.Growth)
}

func TestBuildEmpty(t *testing.T) {
	rep := Build(nil, 7, now, nil)
	assert.True(t, rep.Summary.TotalRevenue.IsZero())
	assert.True(t, rep.Summary.AverageTicket.IsZero())
	assert.Zero(t, rep.Summary.TotalSales)
	assert.Zero(t, rep.Summary.Growth)
	assert.Empty(t, rep.Daily)
	assert.Empty(t, rep.TopProducts)
	assert.Empty(t, rep.TopCustomers)
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		current  string
		want     float64
	}{
		{"no previous revenue", "", "300", 0},
		{"growth", "50", "300", 500},
		{"decline rounded", "300", "100", -66.7},
		{"flat", "80", "80", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sales := []Sale{sale(now, tt.current, "Ana")}
			if tt.previous != "" {
				sales = append(sales, sale(now.AddDate(0, 0, -10), tt.previous, "Ana"))
			}
			rep := Build(sales, 7, now, time.UTC)
			assert.Equal(t, tt.want, rep.Summary.Growth)
		})
	}
}

func TestSalesOlderThanTwoWindowsAreIgnored(t *testing.T) {
	sales := []Sale{
		sale(now, "100", "Ana"),
		sale(now.AddDate(0, 0, -20), "999", "Ana"),
	}
	rep := Build(sales, 7, now, time.UTC)
	assert.Zero(t, rep.Summary.Growth)
	assert.Equal(t, 1, rep.Summary.TotalSales)
}

func TestDailySeriesUsesLocalDayAndKeepsLastSeven(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	var sales []Sale
	for d := 0; d < 10; d++ {
		sales = append(sales, sale(now.AddDate(0, 0, -d), "10", "Ana"))
	}
	// 01:00 UTC on June 30 is still June 29 in loc
	sales = append(sales, sale(time.Date(2026, 6, 30, 1, 0, 0, 0, time.UTC), "5", "Ana"))

	rep := Build(sales, 30, now, loc)
	require.Len(t, rep.Daily, SeriesDays)
	assert.Equal(t, "2026-06-24", rep.Daily[0].Date)
	last := rep.Daily[SeriesDays-1]
	assert.Equal(t, "2026-06-30", last.Date)
	assert.Equal(t, 1, last.Sales)
	prev := rep.Daily[SeriesDays-2]
	assert.Equal(t, "2026-06-29", prev.Date)
	assert.Equal(t, 2, prev.Sales)
	assert.True(t, prev.Revenue.Equal(dec("15")))
	for i := 1; i < len(rep.Daily); i++ {
		assert.Less(t, rep.Daily[i-1].Date, rep.Daily[i].Date)
	}
}

func TestTopProductsRanking(t *testing.T) {
	var sales []Sale
	for i := 0; i < 7; i++ {
		name := fmt.Sprintf("P%d", i)
		sales = append(sales, sale(now, "1", "Ana", Item{ProductName: name, Quantity: 1 + i%3, Subtotal: dec("1")}))
	}
	sales = append(sales, sale(now, "1", "Ana", Item{ProductName: "P0", Quantity: 1, Subtotal: dec("2.50")}))

	rep := Build(sales, 7, now, time.UTC)
	require.Len(t, rep.TopProducts, TopN)
	names := make([]string, len(rep.TopProducts))
	for i, p := range rep.TopProducts {
		names[i] = p.Name
	}
	// quantities: P0=2 P1=2 P2=3 P3=1 P4=2 P5=3 P6=1; ties keep first-seen order
	assert.Equal(t, []string{"P2", "P5", "P0", "P1", "P4"}, names)
	assert.True(t, rep.TopProducts[2].Revenue.Equal(dec("3.5")))
}

func TestTopCustomersRanking(t *testing.T) {
	sales := []Sale{
		sale(now, "10", "Ana"),
		sale(now, "30", "Bruno"),
		sale(now, "30", "Carla"),
		sale(now, "25", "Ana"),
		sale(now, "1", "Davi"),
		sale(now, "2", "Eva"),
		sale(now, "3", "Fabio"),
	}
	rep := Build(sales, 7, now, time.UTC)
	require.Len(t, rep.TopCustomers, TopN)
	assert.Equal(t, "Ana", rep.TopCustomers[0].Name)
	assert.Equal(t, 2, rep.TopCustomers[0].Sales)
	assert.True(t, rep.TopCustomers[0].Total.Equal(dec("35")))
	assert.Equal(t, "Bruno", rep.TopCustomers[1].Name)
	assert.Equal(t, "Carla", rep.TopCustomers[2].Name)
	assert.Equal(t, "Fabio", rep.TopCustomers[3].Name)
	for i := 1; i < len(rep.TopCustomers); i++ {
		assert.False(t, rep.TopCustomers[i].Total.GreaterThan(rep.TopCustomers[i-1].Total))
	}
}

func TestValidWindow(t *testing.T) {
	for _, w := range []int{7, 30, 90, 365} {
		assert.True(t, ValidWindow(w), "window %d", w)
	}
	for _, w := range []int{0, -7, 14, 366} {
		assert.False(t, ValidWindow(w), "window %d", w)
	}
}

func TestFromDetails(t *testing.T) {
	details := []services.SaleDetail{{
		SaleSummary: services.SaleSummary{Sale: models.Sale{SoldAt: now, Total: dec("12")}},
		Items:       []models.SaleLineItem{{ProductName: "Café", Quantity: 2, Subtotal: dec("12")}},
	}}
	got := FromDetails(details, "Cliente não identificado")
	require.Len(t, got, 1)
	assert.Equal(t, "Cliente não identificado", got[0].CustomerName)
	assert.Equal(t, []Item{{ProductName: "Café", Quantity: 2, Subtotal: dec("12")}}, got[0].Items)
}

func TestWriteCSV(t *testing.T) {
	sales := []Sale{
		sale(now, "120.5", "Ana, filha", Item{ProductName: "Café", Quantity: 3, Subtotal: dec("76.5")}, Item{ProductName: "Pão", Quantity: 4, Subtotal: dec("44")}),
	}
	rep := Build(sales, 30, now, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rep, time.Date(2026, 6, 30, 12, 5, 9, 0, time.UTC)))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 17)
	assert.Equal(t, "Período do Relatório:,Últimos 30 dias", lines[0])
	assert.Equal(t, "Data de Geração:,30/06/2026 12:05:09", lines[1])
	assert.Equal(t, "RESUMO FINANCEIRO", lines[3])
	assert.Equal(t, "Receita Total:,R$ 120.50", lines[4])
	assert.Equal(t, "Total de Vendas:,1", lines[5])
	assert.Equal(t, "Ticket Médio:,R$ 120.50", lines[6])
	assert.Equal(t, "Crescimento:,0.0%", lines[7])
	assert.Equal(t, "PRODUTOS MAIS VENDIDOS", lines[9])
	assert.Equal(t, "Produto,Quantidade,Receita", lines[10])
	assert.Equal(t, "Pão,4,R$ 44.00", lines[11])
	assert.Equal(t, "Café,3,R$ 76.50", lines[12])
	assert.Equal(t, "MELHORES CLIENTES", lines[14])
	assert.Equal(t, "Cliente,Vendas,Total Gasto", lines[15])
	assert.Equal(t, `"Ana, filha",1,R$ 120.50`, lines[16])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "relatorio-2026-06-30.csv", Filename(now))
}
