package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lovetrack-backend/internal/config"
	"lovetrack-backend/internal/handlers"
	"lovetrack-backend/internal/health"
	"lovetrack-backend/internal/metrics"
	"lovetrack-backend/internal/push"
	"lovetrack-backend/internal/reminders"
	"lovetrack-backend/internal/repository"
	"lovetrack-backend/internal/repository/memstore"
	"lovetrack-backend/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type stores struct {
	users   services.UserRepository
	couples services.CoupleRepository
	events  services.EventRepository
	pinger  health.Pinger
	close   func()
}

func Run() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage
	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open storage")
	}
	defer st.close()

	deps := map[string]health.Pinger{cfg.Database.Driver: st.pinger}

	// Optional Redis for the reminder lock
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		deps["redis"] = health.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	}

	// Metrics
	metrics.Register()
	checker := health.NewChecker(deps, prometheus.DefaultRegisterer)

	// Initialize services
	userService := services.NewUserService(st.users)
	coupleService := services.NewCoupleService(st.couples, st.users)
	eventService := services.NewEventService(st.events)
	wsHub := services.NewWSHub()
	defer wsHub.Close()

	// Initialize handlers
	router := handlers.NewRouter(handlers.Handlers{
		Users:     handlers.NewUserHandler(userService),
		Couples:   handlers.NewCoupleHandler(coupleService, wsHub),
		Events:    handlers.NewEventHandler(eventService, wsHub),
		WebSocket: handlers.NewWebSocketHandler(wsHub, userService, coupleService),
		Health:    handlers.NewHealthHandler(checker),
	})

	// Reminder dispatcher
	if cfg.Reminders.Enabled {
		dispatcher, err := newDispatcher(cfg, st, rdb)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create reminder dispatcher")
		}
		go func() {
			if err := dispatcher.Start(ctx); err != nil {
				log.Error().Err(err).Msg("Reminder dispatcher failed")
			}
		}()
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		metricsSrv = metrics.NewServer(cfg.Metrics.Addr)
		go func() {
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("Starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown
	wsHub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Metrics server forced to shutdown")
		}
	}

	log.Info().Msg("Server exited")
}

// openStores opens the configured storage backend
func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	if cfg.Driver == "memory" {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		mem := memstore.New()
		return &stores{
			users:   mem.Users(),
			couples: mem.Couples(),
			events:  mem.Events(),
			pinger:  mem,
			close:   func() {},
		}, nil
	}

	db, err := repository.NewPool(ctx, cfg.DSN(), cfg.MaxConns, cfg.MinConns)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Msg("Database connection established")

	return &stores{
		users:   repository.NewUserRepository(db),
		couples: repository.NewCoupleRepository(db),
		events:  repository.NewEventRepository(db),
		pinger:  db,
		close: func() {
			db.Close()
			log.Info().Msg("Closed database connection")
		},
	}, nil
}

func newDispatcher(cfg *config.Config, st *stores, rdb *redis.Client) (*reminders.Dispatcher, error) {
	var sender push.Sender = push.LogSender{}
	if cfg.APNs.KeyFile != "" {
		apns, err := push.NewAPNsSender(
			cfg.APNs.KeyFile,
			cfg.APNs.KeyID,
			cfg.APNs.TeamID,
			cfg.APNs.Topic,
			cfg.APNs.Production,
		)
		if err != nil {
			return nil, err
		}
		sender = apns
	}

	var locker reminders.Locker
	if rdb != nil {
		locker = reminders.NewRedisLocker(rdb)
	}

	return reminders.NewDispatcher(
		st.events, st.couples, st.users,
		sender, locker,
		cfg.Reminders.Schedule, cfg.Reminders.Window,
	)
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
