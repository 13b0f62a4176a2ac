package services

import (
	"context"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/shopspring/decimal"
)

// DashboardStats are the counters shown on the landing page.
type DashboardStats struct {
	Sales        int64           `json:"sales"`
	Customers    int64           `json:"customers"`
	Products     int64           `json:"products"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	RecentSales  []SaleSummary   `json:"recent_sales"`
}

// DashboardService aggregates catalog and sales counters.
type DashboardService struct {
	store  store.Store
	reader *Reader
}

func NewDashboardService(s store.Store, reader *Reader) *DashboardService {
	return &DashboardService{store: s, reader: reader}
}

func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	var err error
	if stats.Customers, err = s.store.Count(ctx, store.TableCustomers, store.Query{}); err != nil {
		return stats, persistErr("count", store.TableCustomers, err)
	}
	if stats.Products, err = s.store.Count(ctx, store.TableProducts, store.Query{}); err != nil {
		return stats, persistErr("count", store.TableProducts, err)
	}

	var sales []models.Sale
	if err := s.store.Select(ctx, store.TableSales, &sales, store.Query{}); err != nil {
		return stats, persistErr("select", store.TableSales, err)
	}
	stats.Sales = int64(len(sales))
	stats.TotalRevenue = decimal.Zero
	for _, sale := range sales {
		stats.TotalRevenue = stats.TotalRevenue.Add(sale.Total)
	}

	if stats.RecentSales, err = s.reader.Recent(ctx, 5); err != nil {
		return stats, err
	}
	return stats, nil
}
