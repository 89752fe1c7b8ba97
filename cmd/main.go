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

	"comanda/internal/api"
	"comanda/internal/config"
	"comanda/internal/database"
	"comanda/internal/kitchen"
	"comanda/internal/logging"
	"comanda/internal/models"
	"comanda/internal/monitoring"
	"comanda/internal/restaurant"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/rs/zerolog"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Initialize context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort > 0 {
		cfg.Metrics.Port = *metricsPort
	}

	logger := logging.New("comanda", cfg.Log.Level, cfg.Log.Pretty)
	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := initializeDB(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	location, err := time.LoadLocation(cfg.Restaurant.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Restaurant.Timezone).Msg("Unknown timezone")
	}

	// Observers
	metricsCollector := monitoring.NewMetricsCollector()
	monitor := monitoring.NewMonitor()
	var service *restaurant.Service
	hub := kitchen.NewHub(func() []models.Order {
		return service.Orders(restaurant.OrderFilter{
			States: []models.OrderState{models.OrderStateInPreparation},
		})
	}, logger)

	// Initialize restaurant service
	service, err = initializeService(ctx, cfg, db, location, logger,
		restaurant.WithObserver(metricsCollector),
		restaurant.WithObserver(monitor),
		restaurant.WithObserver(hub),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize restaurant service")
	}

	// Initialize API server
	apiServer := api.NewServer(service, api.Options{
		Hub:      hub,
		Monitor:  monitor,
		Location: location,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiServer.Router,
	}

	// Start metrics server
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = newMetricsServer(cfg.Metrics, metricsCollector)
		go func() {
			logger.Info().Int("port", cfg.Metrics.Port).Msg("Starting metrics server")
			if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("Metrics server error")
			}
		}()
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info().Msg("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("API server shutdown error")
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Metrics server shutdown error")
			}
		}

		cancel()
	}()

	// Start server
	logger.Info().Int("port", cfg.Server.Port).Msg("Starting API server")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("API server error")
	}

	<-ctx.Done()
	if err := service.Save(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Failed to save restaurant state on shutdown")
	}
	logger.Info().Msg("Shutdown complete")
}

func initializeDB(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Open(database.Options{
		Driver:  cfg.Database.Driver,
		DSN:     cfg.Database.DSN,
		LogMode: cfg.Database.LogMode,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Database.Seed {
		seeded, err := database.NewStore(db).SeedDefaults(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
		if seeded {
			logger.Info().Msg("Seeded default menu")
		}
	}

	logger.Info().Str("driver", cfg.Database.Driver).Msg("Database ready")
	return db, nil
}

// initializeService stamps orders in the configured timezone so report
// dates and creation times agree on the calendar day.
func initializeService(ctx context.Context, cfg *config.Config, db *gorm.DB, location *time.Location, logger zerolog.Logger, opts ...restaurant.Option) (*restaurant.Service, error) {
	tipRate, err := cfg.TipRate()
	if err != nil {
		return nil, err
	}

	engine := restaurant.NewEngine(restaurant.Policy{
		MaxTable: cfg.Restaurant.Tables,
		TipRate:  tipRate,
	}, func() time.Time { return time.Now().In(location) })

	opts = append(opts, restaurant.WithLogger(logger))
	return restaurant.Open(ctx, database.NewStore(db), engine, opts...)
}

func newMetricsServer(cfg config.MetricsConfig, collector *monitoring.MetricsCollector) *http.Server {
	metricsRouter := gin.New()
	metricsRouter.GET(cfg.Path, gin.WrapH(collector.Handler()))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: metricsRouter,
	}
}
