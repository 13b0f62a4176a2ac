package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Filename is the download name of a report generated at t.
func Filename(t time.Time) string {
	return "relatorio-" + t.Format(time.DateOnly) + ".csv"
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// WriteCSV writes rep as the flat table offered for download: period and
// generation time, the financial summary, then the product and customer
// rankings, each block separated by a blank row.
func WriteCSV(w io.Writer, rep Report, generatedAt time.Time) error {
	rows := [][]string{
		{"Período do Relatório:", fmt.Sprintf("Últimos %d dias", rep.WindowDays)},
		{"Data de Geração:", generatedAt.Format("02/01/2006 15:04:05")},
		{""},
		{"RESUMO FINANCEIRO"},
		{"Receita Total:", money(rep.Summary.TotalRevenue)},
		{"Total de Vendas:", strconv.Itoa(rep.Summary.TotalSales)},
		{"Ticket Médio:", money(rep.Summary.AverageTicket)},
		{"Crescimento:", strconv.FormatFloat(rep.Summary.Growth, 'f', 1, 64) + "%"},
		{""},
		{"PRODUTOS MAIS VENDIDOS"},
		{"Produto", "Quantidade", "Receita"},
	}
	for _, p := range rep.TopProducts {
		rows = append(rows, []string{p.Name, strconv.Itoa(p.Quantity), money(p.Revenue)})
	}
	rows = append(rows, []string{""}, []string{"MELHORES CLIENTES"}, []string{"Cliente", "Vendas", "Total Gasto"})
	for _, c := range rep.TopCustomers {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Sales), money(c.Total)})
	}

	cw := csv.NewWriter(w)
	cw.FieldsPerRecord = -1
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write report csv: %w", err)
	}
	return nil
}
