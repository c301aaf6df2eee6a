package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/quotedesk/internal/archive"
	"github.com/Simplici0/quotedesk/internal/backend"
	"github.com/Simplici0/quotedesk/internal/config"
	"github.com/Simplici0/quotedesk/internal/db"
	"github.com/Simplici0/quotedesk/internal/export"
	"github.com/Simplici0/quotedesk/internal/logging"
	"github.com/Simplici0/quotedesk/internal/migrations"
	"github.com/Simplici0/quotedesk/internal/pdf"
	"github.com/Simplici0/quotedesk/internal/session"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logging.Setup(logging.Options{Format: cfg.LogFormat, Level: cfg.LogLevel, Dev: cfg.IsDev()}); err != nil {
		log.Warn().Err(err).Msg("using default log level")
	}
	for _, warning := range cfg.Warnings {
		log.Warn().Msg(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}

	logo, err := pdf.LoadImage(cfg.LogoPath)
	if err != nil {
		return fmt.Errorf("load logo: %w", err)
	}
	paymentQR, err := pdf.LoadImage(cfg.PaymentQRPath)
	if err != nil {
		return fmt.Errorf("load payment qr: %w", err)
	}

	secret := cfg.SessionSecret
	if secret == "" {
		if secret, err = randomSecret(); err != nil {
			return err
		}
		log.Warn().Msg("using a random session secret; sessions end on restart")
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	store := archive.NewStore(database)
	sessions := session.NewManager(client, cfg.SessionTTL)
	exporter := export.NewExporter(client, client, &pdf.Renderer{Logo: logo, PaymentQR: paymentQR}, store)
	srv := newServer(sessions, exporter, store, newCookieSigner(secret, cfg.SessionTTL), log.Logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.Run(gctx, sweepInterval)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Str("backend", cfg.BackendURL).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
