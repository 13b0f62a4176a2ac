package handlers

import (
	"time"

	"github.com/diewo77/go-sales/internal/metrics"
	"github.com/diewo77/go-sales/internal/services"
	"github.com/diewo77/go-sales/internal/store"
)

// RouterConfig holds the configured handlers of the application.
type RouterConfig struct {
	AuthHandler      *AuthHandler
	CustomerHandler  *CustomerHandler
	ProductHandler   *ProductHandler
	CategoryHandler  *CategoryHandler
	SaleHandler      *SaleHandler
	ReportHandler    *ReportHandler
	DashboardHandler *DashboardHandler
}

// NewRouterConfig wires services and handlers over s. m may be nil.
func NewRouterConfig(s store.Store, m *metrics.ServerMetrics, loc *time.Location) *RouterConfig {
	reader := services.NewReader(s)
	rsp := responder{metrics: m}

	cfg := &RouterConfig{
		AuthHandler:      NewAuthHandler(s),
		CustomerHandler:  NewCustomerHandler(services.NewCustomerService(s)),
		ProductHandler:   NewProductHandler(services.NewProductService(s)),
		CategoryHandler:  NewCategoryHandler(services.NewCategoryService(s)),
		SaleHandler:      NewSaleHandler(s, reader, services.NewPersister(s)),
		ReportHandler:    NewReportHandler(reader, loc),
		DashboardHandler: NewDashboardHandler(services.NewDashboardService(s, reader)),
	}
	cfg.AuthHandler.responder = rsp
	cfg.CustomerHandler.responder = rsp
	cfg.ProductHandler.responder = rsp
	cfg.CategoryHandler.responder = rsp
	cfg.SaleHandler.responder = rsp
	cfg.ReportHandler.responder = rsp
	cfg.DashboardHandler.responder = rsp
	return cfg
}
