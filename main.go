package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cityfixer-be/config"
	"cityfixer-be/controllers"
	"cityfixer-be/middlewares"
	"cityfixer-be/models"
	"cityfixer-be/payments"
	"cityfixer-be/routes"
	"cityfixer-be/store"
	"cityfixer-be/tracking"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
	appName = "cityfixer"

	rateLimitWindow = 24 * time.Hour
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var inMemory bool

	cmd := &cobra.Command{
		Use:   appName,
		Short: "City Fixer issue-reporting server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(inMemory)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "Use in-process stores instead of MongoDB")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(inMemory)
		},
	}
	serveCmd.Flags().BoolVar(&inMemory, "in-memory", false, "Use in-process stores instead of MongoDB")
	cmd.AddCommand(serveCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes the server relies on",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ensureIndexes()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func ensureIndexes() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireMongo(); err != nil {
		return err
	}

	client, db, err := config.ConnectDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	if err := models.EnsureIndexes(db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	config.GetLogger().Info("Indexes are in place")
	return nil
}

func serve(inMemory bool) error {
	logger := config.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetLogLevel(cfg.LogLevel)

	var (
		issues   store.IssueStore
		payStore store.PaymentStore
		counters store.Sequencer
	)

	if inMemory {
		logger.Warn("Running with in-memory stores; data is lost on exit")
		issues, payStore, counters = store.NewMemoryIssues(), store.NewMemoryPayments(), store.NewMemoryCounters()
	} else {
		if err := cfg.RequireMongo(); err != nil {
			return err
		}
		client, db, err := config.ConnectDB(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				config.LogError(logger, "main", "serve", "Disconnect mongodb", nil, err)
			}
		}()

		if err := models.EnsureIndexes(db); err != nil {
			config.LogError(logger, "main", "serve", "EnsureIndexes", nil, err)
		}
		issues, payStore, counters = store.NewMongoIssues(db), store.NewMongoPayments(db), store.NewMongoCounters(db)
	}

	var limiter middlewares.IssueLimiter
	redisClient, err := config.ConnectRedis(cfg.RedisAddress, cfg.RedisPassword)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiter = middlewares.NewRedisLimiter(redisClient, cfg.RedisQueuePrefix, cfg.IssueRateLimit, rateLimitWindow)
	} else {
		logger.Info("REDIS_ADDRESS not set; rate limiting issue submissions in process")
		limiter = middlewares.NewMemoryLimiter(cfg.IssueRateLimit, rateLimitWindow)
	}

	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set; checkout sessions are disabled")
	}
	checkout := payments.NewStripeCheckout(cfg.StripeSecretKey, cfg.SiteDomain, cfg.CheckoutCurrency, cfg.CheckoutAmount)

	h := controllers.NewHandler(issues, payStore, tracking.NewAllocator(counters), checkout)

	r := gin.New()
	if err := routes.SetupRoutes(r, h, limiter, routes.Options{
		CORSOrigin:     cfg.CORSOrigin,
		TrustedProxies: cfg.TrustedProxies,
	}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("City Fixer Server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting")
	return nil
}
