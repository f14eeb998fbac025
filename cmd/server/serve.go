package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/reshop/server/internal/auth"
	"github.com/reshop/server/internal/config"
	"github.com/reshop/server/internal/logging"
	"github.com/reshop/server/internal/models"
	"github.com/reshop/server/internal/observability"
	"github.com/reshop/server/internal/payments"
	"github.com/reshop/server/internal/server"
	"github.com/reshop/server/internal/store"
)

const serviceName = "reshop"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogFormat)
	slog.SetDefault(log)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.SetupTracing(ctx, serviceName, cfg.OTELEndpoint, cfg.OTELInsecure, log)
	defer shutdownTracing(context.Background())

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDB)

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pgPool.Close()
	ledger := store.NewPaymentLedger(pgPool)
	if err := ledger.Migrate(ctx); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// ── MinIO ────────────────────────────────────────────────
	images, err := store.NewImageStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		return err
	}

	router := server.NewRouter(server.Params{
		Logger:          log,
		Codec:           auth.NewCodec(cfg.AccessTokenSecret, cfg.TokenTTL),
		Revocations:     auth.NewRevocationStore(rdb),
		Users:           store.NewMongoCollection(db, models.CollectionUsers),
		Products:        store.NewMongoCollection(db, models.CollectionProducts),
		Wishlist:        store.NewMongoCollection(db, models.CollectionWishlist),
		Reports:         store.NewMongoCollection(db, models.CollectionReports),
		Bookings:        store.NewMongoCollection(db, models.CollectionBookings),
		Payments:        payments.NewStripeProcessor(cfg.StripeSecretKey),
		Ledger:          ledger,
		PaymentCurrency: cfg.PaymentCurrency,
		Images:          images,
		Metrics:         observability.NewMetrics(),
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimit:       cfg.RateLimit,
		RequestTimeout:  cfg.RequestTimeout,
		Production:      cfg.IsProduction(),
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", srv.Addr), slog.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error("graceful shutdown", slog.Any("error", err))
		return err
	}
	return nil
}
