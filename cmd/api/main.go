package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/prestamos/internal/app"
	"github.com/MrJamesThe3rd/prestamos/internal/config"
	apiHttp "github.com/MrJamesThe3rd/prestamos/internal/http"
	analyticsHandler "github.com/MrJamesThe3rd/prestamos/internal/http/analytics"
	clientHandler "github.com/MrJamesThe3rd/prestamos/internal/http/client"
	collectionsHandler "github.com/MrJamesThe3rd/prestamos/internal/http/collections"
	loanHandler "github.com/MrJamesThe3rd/prestamos/internal/http/loan"
	paymentHandler "github.com/MrJamesThe3rd/prestamos/internal/http/payment"
	ratesHandler "github.com/MrJamesThe3rd/prestamos/internal/http/rates"
	reportHandler "github.com/MrJamesThe3rd/prestamos/internal/http/report"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	router := apiHttp.New(apiHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
	}, apiHttp.Handlers{
		Clients:     clientHandler.NewHandler(svc.Clients),
		Loans:       loanHandler.NewHandler(svc.Loans),
		Payments:    paymentHandler.NewHandler(svc.Payments, svc.Importer),
		Rates:       ratesHandler.NewHandler(svc.Rates),
		Collections: collectionsHandler.NewHandler(svc.Collections),
		Analytics:   analyticsHandler.NewHandler(svc.Analytics),
		Reports:     reportHandler.NewHandler(svc.Reports, svc.Clock),
	})

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("AUTH_JWT_SECRET not set, API is unauthenticated")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")

		shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
