package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-sales/auth"
	"github.com/diewo77/go-sales/i18n"
	"github.com/diewo77/go-sales/internal/config"
	"github.com/diewo77/go-sales/internal/db"
	"github.com/diewo77/go-sales/internal/handlers"
	"github.com/diewo77/go-sales/internal/metrics"
	"github.com/diewo77/go-sales/internal/report"
	"github.com/diewo77/go-sales/internal/services"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	migrateOnlyFlag  = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag     = flag.Bool("seed-only", false, "Run DB seed and exit")
	exportReportFlag = flag.String("export-report", "", "Write the sales report as CSV to this path and exit")
	windowFlag       = flag.Int("window", handlers.DefaultWindow, "Report window in days (7, 30, 90 or 365)")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	loc := cfg.App.Location()

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrateOnlyFlag {
		if err := db.Setup(dbConn, migrationsOn(cfg)); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
		return
	}

	if err := db.Setup(dbConn, cfg); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn, cfg.App.AdminEmail, cfg.App.AdminPassword); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Println("Seeding completed successfully")
		return
	}

	st := store.NewGormStore(dbConn, cfg.Database.StoreTimeout)

	if *exportReportFlag != "" {
		if err := exportReport(st, *exportReportFlag, *windowFlag, loc); err != nil {
			log.Fatalf("Report export failed: %v", err)
		}
		log.Printf("Report written to %s", *exportReportFlag)
		return
	}

	if err := db.Seed(dbConn, cfg.App.AdminEmail, cfg.App.AdminPassword); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Sessions of deleted users are rejected
	auth.SetUserVerifier(handlers.UserExists(st))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appHandler := NewApp(st, metrics.New(reg), loc)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (dev=%v, db=%s, tz=%s)", cfg.Server.Port, cfg.App.Dev, cfg.Database.Driver, loc)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server stopped gracefully")
}

// migrationsOn forces schema setup for -migrate-only regardless of MIGRATIONS.
func migrationsOn(cfg *config.Config) *config.Config {
	c := *cfg
	c.App.Migrations = true
	return &c
}

// exportReport writes the CSV report of the last window days to path.
func exportReport(st store.Store, path string, window int, loc *time.Location) error {
	if !report.ValidWindow(window) {
		return fmt.Errorf("invalid window %d, allowed %v", window, report.Windows)
	}
	now := time.Now()
	details, err := services.NewReader(st).ListWithItems(context.Background(), report.Since(window, now))
	if err != nil {
		return err
	}
	rep := report.Build(report.FromDetails(details, i18n.T(i18n.DefaultLang, "unknown_customer")), window, now, loc)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteCSV(f, rep, now.In(loc)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
