/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Parse flags, load .env and the YAML configuration
  2. Open the SQLite store
  3. Build the alert dispatcher from the configured transport list
  4. Wire the coordinator and HTTP handler
  5. Serve with graceful shutdown

FLAGS:
  -config  Path to the YAML configuration (optional; defaults apply)
  -port    Override the configured HTTP port
  -db      Override the configured SQLite path (":memory:" works)

SECRETS:
  SMTP passwords are resolved from the environment via each transport's
  password_env reference; a local .env file is honored in development.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/symeon158/Equipment-Inspection/alert"
	"github.com/symeon158/Equipment-Inspection/api"
	"github.com/symeon158/Equipment-Inspection/config"
	"github.com/symeon158/Equipment-Inspection/inspection"
	"github.com/symeon158/Equipment-Inspection/lifecycle"
	"github.com/symeon158/Equipment-Inspection/logger"
	"github.com/symeon158/Equipment-Inspection/report"
	"github.com/symeon158/Equipment-Inspection/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	log := logger.Must(logger.New())
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal("failed to open database", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	defer store.Close()

	dispatcher := buildDispatcher(cfg, log)

	coordinator := lifecycle.NewCoordinator(
		store,
		lifecycle.NewResolver(),
		notifierOrNil(dispatcher),
		logger.Named(log, "coordinator"),
	)

	handler := &api.Handler{
		Coordinator:   coordinator,
		Log:           store,
		Inspections:   store.Inspections(),
		Dispatcher:    dispatcher,
		CriticalItems: inspection.NewNameSet(cfg.Inspection.CriticalItems...),
		Catalog:       cfg.Catalog.Assets,
		ServiceRule:   serviceRule(cfg),
		Logger:        logger.Named(log, "api"),
	}

	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port), zap.String("db", cfg.Database.Path))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

// buildDispatcher assembles the ordered transport list. Returns nil when
// alerting is disabled.
func buildDispatcher(cfg *config.Config, log *zap.Logger) *alert.Dispatcher {
	if !cfg.Alerts.Enabled {
		return nil
	}
	transports := make([]alert.Sender, 0, len(cfg.Alerts.Transports))
	for _, t := range cfg.Alerts.Transports {
		mode := alert.TLSStartTLS
		if t.Mode == "ssl" {
			mode = alert.TLSImplicit
		}
		transports = append(transports, alert.SMTPTransport{
			Host:     t.Host,
			Port:     t.Port,
			Username: t.Username,
			Password: t.Password,
			Mode:     mode,
		})
	}
	d := alert.NewDispatcher(
		cfg.Alerts.From,
		cfg.Alerts.Recipients,
		transports,
		inspection.NewNameSet(cfg.Alerts.CriticalCategories...),
		logger.Named(log, "alert"),
	)
	d.Force = cfg.Alerts.Force
	return d
}

// notifierOrNil avoids handing the coordinator a typed-nil interface.
func notifierOrNil(d *alert.Dispatcher) lifecycle.Notifier {
	if d == nil {
		return nil
	}
	return d
}

func serviceRule(cfg *config.Config) report.ServiceRule {
	rule := report.ServiceRule{
		DefaultThresholdHours: decimal.NewFromFloat(cfg.Service.DefaultThresholdHours),
		Overrides:             make(map[string]decimal.Decimal, len(cfg.Service.Thresholds)),
	}
	for subject, hours := range cfg.Service.Thresholds {
		rule.Overrides[subject] = decimal.NewFromFloat(hours)
	}
	return rule
}
