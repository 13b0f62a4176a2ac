package main

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-sales/auth"
	"github.com/diewo77/go-sales/httpx"
	"github.com/diewo77/go-sales/internal/handlers"
	"github.com/diewo77/go-sales/internal/metrics"
	"github.com/diewo77/go-sales/internal/middleware"
	"github.com/diewo77/go-sales/internal/store"
)

// pinger is satisfied by *store.GormStore.
type pinger interface {
	Ping(ctx context.Context) error
}

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        pinger
	metrics   *metrics.ServerMetrics
	routerCfg *handlers.RouterConfig
}

// NewApp creates a new application with all routes configured. m may be nil.
func NewApp(st store.Store, m *metrics.ServerMetrics, loc *time.Location) *App {
	app := &App{
		mux:       http.NewServeMux(),
		metrics:   m,
		routerCfg: handlers.NewRouterConfig(st, m, loc),
	}
	if p, ok := st.(pinger); ok {
		app.db = p
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Global middleware: panic recovery, access log, session, language
	handler := middleware.Recover(middleware.Logging(auth.Middleware(middleware.Prefs(a.mux))))
	handler.ServeHTTP(w, r)
}

func (a *App) public(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, middleware.Instrument(a.metrics, pattern, h))
}

func (a *App) protected(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, middleware.Instrument(a.metrics, pattern, auth.RequireAuth(h)))
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Public routes (no auth required)
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.healthz)
	if a.metrics != nil {
		a.mux.Handle("GET /metrics", a.metrics.Handler())
	}

	ah := a.routerCfg.AuthHandler
	a.public("POST /login", ah.Login)
	a.public("POST /signup", ah.Signup)
	a.protected("POST /logout", ah.Logout)

	a.protected("GET /dashboard", a.routerCfg.DashboardHandler.Show)

	ch := a.routerCfg.CustomerHandler
	a.protected("GET /customers", ch.List)
	a.protected("POST /customers", ch.Create)
	a.protected("GET /customers/{id}", ch.Get)
	a.protected("PUT /customers/{id}", ch.Update)
	a.protected("DELETE /customers/{id}", ch.Delete)

	ph := a.routerCfg.ProductHandler
	a.protected("GET /products", ph.List)
	a.protected("POST /products", ph.Create)
	a.protected("GET /products/{id}", ph.Get)
	a.protected("PUT /products/{id}", ph.Update)
	a.protected("DELETE /products/{id}", ph.Delete)
	a.protected("GET /inventory", ph.Inventory)

	cth := a.routerCfg.CategoryHandler
	a.protected("GET /categories", cth.List)
	a.protected("POST /categories", cth.Create)
	a.protected("PUT /categories/{id}", cth.Update)
	a.protected("DELETE /categories/{id}", cth.Delete)

	sh := a.routerCfg.SaleHandler
	a.protected("GET /sales", sh.List)
	a.protected("POST /sales", sh.Create)
	a.protected("POST /sales/preview", sh.Preview)
	a.protected("GET /sales/{id}", sh.Get)
	a.protected("DELETE /sales/{id}", sh.Delete)

	rh := a.routerCfg.ReportHandler
	a.protected("GET /reports", rh.Show)
	a.protected("GET /reports/export", rh.Export)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// healthz also checks that the database answers.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.db.Ping(ctx); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "ok"})
}
