package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"pregnancy-planner-api/internal/config"
	"pregnancy-planner-api/internal/handler"
	"pregnancy-planner-api/internal/health"
	"pregnancy-planner-api/internal/logger"
	"pregnancy-planner-api/internal/middleware"
	"pregnancy-planner-api/internal/service"
	"pregnancy-planner-api/internal/store"
	"pregnancy-planner-api/internal/store/memstore"
)

type backend interface {
	service.AppointmentStore
	service.ProfileStore
	service.AccountStore
	health.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Options{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	h := handler.New(
		service.NewAppointments(st),
		service.NewProfiles(st),
		service.NewAccounts(st, service.AccountOptions{
			Secret:     cfg.JWTSecret,
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		}),
		log,
	)

	var rl *middleware.RateLimiter
	if cfg.AuthRateRPS > 0 {
		rl = middleware.NewRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst)
		defer rl.Close()
	}

	checker := health.New(st, 10*time.Second, log)
	go checker.Run(ctx)

	// grpc carries only the health service
	srv := grpc.NewServer()
	checker.Register(srv)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		log.Info("grpc health listening", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil {
			log.Error("grpc", zap.Error(err))
		}
	}()

	httpSrv := &http.Server{
		Addr: ":" + cfg.WebPort,
		Handler: h.Router(handler.RouterOptions{
			Secret:     cfg.JWTSecret,
			CORSOrigin: cfg.CORSOrigin,
			Limiter:    rl,
			Health:     st.Ping,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("http listening", zap.String("addr", httpSrv.Addr), zap.String("storage", cfg.StorageBackend))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		srv.Stop()
		return fmt.Errorf("http: %w", err)
	}

	log.Info("shutting down")
	checker.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	srv.GracefulStop()
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (backend, func(), error) {
	if cfg.StorageBackend == "memory" {
		log.Warn("using in-memory storage; data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	log.Info("connected to postgres")
	if err := store.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrations applied")
	return store.New(pool), pool.Close, nil
}
