package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-netmap/internal/config"
	"go-netmap/internal/db"
	"go-netmap/internal/mib/catalog"
	"go-netmap/internal/oid"
	"go-netmap/internal/poller"
	"go-netmap/internal/web"
)

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg.Build()
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.EnumsPath != "" {
		if err := oid.Load(cfg.EnumsPath); err != nil {
			logger.Fatal("load enum labels", zap.String("path", cfg.EnumsPath), zap.Error(err))
		}
	}

	// Initialize database
	store, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.InventoryPath != "" {
		switches, err := config.LoadInventory(cfg.InventoryPath)
		if err != nil {
			logger.Fatal("load inventory", zap.Error(err))
		}
		for i := range switches {
			if err := store.UpsertSwitch(ctx, &switches[i]); err != nil {
				logger.Fatal("store inventory", zap.String("switch", switches[i].Name), zap.Error(err))
			}
		}
		logger.Info("inventory loaded", zap.Int("switches", len(switches)))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	p := poller.New(store, catalog.New(), poller.Config{
		Interval:         cfg.PollInterval,
		Workers:          cfg.PollWorkers,
		ProbeConcurrency: cfg.ProbeConcurrency,
		Timeout:          cfg.SNMPTimeout,
		Retries:          cfg.SNMPRetries,
	}, logger.Named("poller"), poller.WithMetrics(poller.NewMetrics(reg)))

	// Start background SNMP poller
	go p.Run(ctx)

	app := web.New(store, p, reg, logger.Named("web")).App()
	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	addr := cfg.WebHost + ":" + cfg.WebPort
	logger.Info("server running", zap.String("addr", "http://"+addr))
	if err := app.Listen(addr); err != nil {
		logger.Error("listen", zap.Error(err))
	}
}
