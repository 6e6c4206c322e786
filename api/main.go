package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cyber-dashboard/api/internal/handlers"
	"cyber-dashboard/internal/health"
	"cyber-dashboard/internal/metrics"
	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/session"
	"cyber-dashboard/internal/source"
	"cyber-dashboard/internal/utils"

	"github.com/rs/cors"
)

func main() {
	var (
		configFile = flag.String("config", utils.DefaultConfigPath, "Configuration file path (YAML)")
		port       = flag.String("port", "", "API server port (overrides config)")
	)
	flag.Parse()

	// Load configuration
	config, err := utils.LoadDashboardConfig(*configFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Printf("Config %s not found, using defaults", *configFile)
		config = utils.GetDefaultDashboardConfig()
	}
	if *port != "" {
		config.Application.Port = *port
	}

	logger := utils.NewLogger(config.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	m := metrics.New()
	if config.Application.MetricsPort != "" {
		exporter := metrics.NewExporter(config.Application.MetricsPort, m, logger)
		go func() {
			if err := exporter.Start(ctx); err != nil {
				logger.Errorf("Metrics exporter stopped: %v", err)
			}
		}()
	}

	// Dataset
	src, err := source.New(config.Dataset, logger)
	if err != nil {
		logger.Fatalf("Failed to create dataset source: %v", err)
	}

	manager := session.NewManager(src, session.Options{
		DefaultLimit: config.Filters.DefaultLimit,
		MaxLimit:     config.Filters.MaxLimit,
	}, logger)
	manager.AddObserver(func(info session.Info, st model.AttackStats, elapsed time.Duration) {
		m.RecordLoad(info.Status == session.StatusReady, elapsed.Seconds())
		if info.Status == session.StatusReady {
			m.ObserveStats(st)
		}
	})

	// gRPC health
	if config.Application.GRPCHealthPort != "" {
		hs := health.NewServer(logger)
		manager.AddObserver(hs.Observe)
		go func() {
			if err := hs.Serve(ctx, ":"+config.Application.GRPCHealthPort); err != nil {
				logger.Errorf("gRPC health server stopped: %v", err)
			}
		}()
	}

	// Initial load runs in the background; handlers answer "loading" until it settles.
	go func() {
		if err := manager.Start(ctx); err != nil {
			logger.Errorf("Initial dataset load failed: %v", err)
		}
	}()

	if config.Dataset.Watch {
		if path, ok := source.PathOf(src); ok {
			watcher := source.NewWatcher(path, source.DefaultDebounce, func(ctx context.Context) {
				if _, err := manager.ReloadFresh(ctx); err != nil {
					logger.Warnf("Reload after file change failed: %v", err)
				}
			}, logger)
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Errorf("Dataset watcher stopped: %v", err)
				}
			}()
		}
	}

	// HTTP
	h := handlers.NewHandlers(manager, config, logger, m)
	router := handlers.NewRouter(h)

	c := cors.New(cors.Options{
		AllowedOrigins:   config.Application.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           3600,
	})

	addr := fmt.Sprintf(":%s", config.Application.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(m.InstrumentHandler(router)),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
	}

	logger.Infof("%s API server starting on port %s (dataset: %s)", config.Application.Name, config.Application.Port, src.Name())

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
