package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/safar/furnishop/internal/api"
	"github.com/safar/furnishop/internal/auth"
	"github.com/safar/furnishop/internal/cart"
	"github.com/safar/furnishop/internal/catalog"
	"github.com/safar/furnishop/internal/checkout"
	"github.com/safar/furnishop/internal/config"
	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/events"
	"github.com/safar/furnishop/internal/orders"
	"github.com/safar/furnishop/internal/reviews"
	"github.com/safar/furnishop/migrations"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the REST API server. Redis caching of catalog reads is enabled
when REDIS_ADDR is set, and order events are published to RabbitMQ when
AMQP_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending up migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("connected to database")

	if migrateOnStart {
		if _, err := migrations.Run(ctx, db, migrations.Up); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	var cache catalog.Cache = catalog.NoCache{}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache = catalog.NewRedisCache(client, "furnishop:catalog", cfg.Redis.CacheTTL)
		log.WithField("addr", cfg.Redis.Addr).Info("catalog cache enabled")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQP.URL != "" {
		conn, ch, err := events.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer conn.Close()
		defer ch.Close()

		publisher = events.NewAMQPPublisher(ch, cfg.AMQP.Exchange)
		log.WithField("exchange", cfg.AMQP.Exchange).Info("order events enabled")
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	accounts := auth.NewAccounts(db, tokens)
	catalogSvc := catalog.NewService(db, cache)

	handler := api.NewHandler(api.Deps{
		Accounts: accounts,
		Gate:     auth.NewGate(tokens, accounts.Lookup),
		Catalog:  catalogSvc,
		Cart:     cart.NewService(db),
		Checkout: checkout.NewService(db,
			checkout.WithPublisher(publisher),
			checkout.WithCatalogInvalidator(catalogSvc)),
		Orders:  orders.NewService(db, publisher),
		Reviews: reviews.NewService(db),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
