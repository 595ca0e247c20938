package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hackgods/clinic-appointment-scheduling/internal/api"
	"github.com/hackgods/clinic-appointment-scheduling/internal/appointment"
	"github.com/hackgods/clinic-appointment-scheduling/internal/auth"
	"github.com/hackgods/clinic-appointment-scheduling/internal/config"
	"github.com/hackgods/clinic-appointment-scheduling/internal/db"
	"github.com/hackgods/clinic-appointment-scheduling/internal/logging"
	redisclient "github.com/hackgods/clinic-appointment-scheduling/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init("api-server", "prod")
		log.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.Init("api-server", cfg.Env)
	logger.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("store", cfg.Store).
		Str("booking_lock", cfg.BookingLock).
		Str("timezone", cfg.Location.String()).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		redisPing api.Pinger
		locker    redisclient.Locker = redisclient.NopLocker{}
		rdb       *redis.Client
	)

	repo, pgPinger, closeStore, err := openStore(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres setup error")
	}
	defer closeStore()

	if cfg.RedisAddr != "" {
		rdb, err = redisclient.NewRedisClient(rootCtx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing redis")
			}
		}()
		logger.Info().Msg("connected to Redis")

		redisPing = api.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	if cfg.BookingLock == config.LockRedis {
		locker = redisclient.NewSlotLocker(rdb, cfg.LockTTL)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	gate := auth.NewGate(issuer, logger)
	svc := appointment.NewService(repo, locker, issuer, cfg, logger)

	router := api.NewRouter(api.RouterConfig{
		Service:    svc,
		Issuer:     issuer,
		Gate:       gate,
		LoginLimit: api.NewRateLimiter(rootCtx, cfg.LoginRateRPS, cfg.LoginRateBurst),
		Postgres:   pgPinger,
		Redis:      redisPing,
		// bookings fail without Redis once the lock lives there
		RedisRequired: cfg.BookingLock == config.LockRedis,
		Logger:        logger,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := newHTTPServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server failed")
		}
	}

	logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore returns the repository selected by cfg.Store. The pinger is nil
// for the memory store so readiness reports postgres as disabled.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (appointment.Repository, api.Pinger, func(), error) {
	if cfg.Store != config.StorePostgres {
		evt := logger.Warn()
		if cfg.IsDev() {
			evt = logger.Info()
		}
		evt.Msg("using in-memory store; data is lost on restart")
		return appointment.NewMemoryRepository(), nil, func() {}, nil
	}

	pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(pgCtx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	logger.Info().Msg("connected to Postgres")
	return appointment.NewPgRepository(pool), pool, pool.Close, nil
}

func newHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
