package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	//	"golang.org/x/oauth2/jwt"

	"github.com/nexuspay/nexuspay/cmd/rest-api/routing"
	ioc "github.com/nexuspay/nexuspay/pkg/infra/ioc"
	workers "github.com/nexuspay/nexuspay/pkg/infra/workers"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	slog.SetDefault(logger)

	builder := ioc.NewContainerBuilder()

	c := builder.WithEnvFile().WithNexusPayConfig().With(ioc.InjectMongoDB).With(ioc.InjectNexusPay).Build()

	defer builder.Close(c)

	// Start the §5 background workers: usage writer, balance refresher,
	// receipt poller, and daily analytics roll-up.
	var usageWriter *workers.UsageWriter
	if err := c.Resolve(&usageWriter); err != nil {
		slog.ErrorContext(ctx, "Failed to resolve UsageWriter", "error", err)
		panic(err)
	}
	go usageWriter.Run(ctx)
	slog.InfoContext(ctx, "API key usage writer started")

	var balanceRefresher *workers.BalanceRefresher
	if err := c.Resolve(&balanceRefresher); err != nil {
		slog.ErrorContext(ctx, "Failed to resolve BalanceRefresher", "error", err)
		panic(err)
	}
	go balanceRefresher.Run(ctx)
	slog.InfoContext(ctx, "Paymaster balance refresher started")

	var receiptPoller *workers.ReceiptPoller
	if err := c.Resolve(&receiptPoller); err != nil {
		slog.ErrorContext(ctx, "Failed to resolve ReceiptPoller", "error", err)
		panic(err)
	}
	go receiptPoller.Run(ctx)
	slog.InfoContext(ctx, "Wallet deploy receipt poller started")

	var analyticsRollup *workers.AnalyticsRollup
	if err := c.Resolve(&analyticsRollup); err != nil {
		slog.ErrorContext(ctx, "Failed to resolve AnalyticsRollup", "error", err)
		panic(err)
	}
	go analyticsRollup.Run(ctx)
	slog.InfoContext(ctx, "Daily analytics roll-up started")

	router := routing.NewRouter(ctx, c)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.InfoContext(ctx, "Starting server on port "+port)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handler for Kubernetes SIGTERM
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-shutdownChan
		slog.InfoContext(ctx, "Received shutdown signal", "signal", sig.String())

		// Give Kubernetes time to update endpoints
		slog.InfoContext(ctx, "Waiting for Kubernetes endpoint update...")
		time.Sleep(5 * time.Second)

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		slog.InfoContext(ctx, "Shutting down server gracefully...")
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "Server shutdown error", "error", err)
		}

		// Cancel main context to stop background jobs
		cancel()
		slog.InfoContext(ctx, "Server shutdown complete")
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.ErrorContext(ctx, "Server error", "err", err)
		os.Exit(1)
	}

}
