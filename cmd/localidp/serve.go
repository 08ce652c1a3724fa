package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/local-idp/pkg/api"
	"github.com/tendant/local-idp/pkg/config"
	"github.com/tendant/local-idp/pkg/jwks"
	"github.com/tendant/local-idp/pkg/metrics"
	"github.com/tendant/local-idp/pkg/store"
	"github.com/tendant/local-idp/pkg/tokengenerator"
	"github.com/tendant/local-idp/pkg/wellknown"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 61 * time.Second
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return err
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.LogFormat, cfg.SlogLevel()))

	router, err := buildRouter(cfg, time.Now())
	if err != nil {
		return err
	}

	material, err := jwks.GenerateKeyMaterial()
	if err != nil {
		slog.Error("Failed to generate TLS certificate", "error", err)
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	httpsServer := &http.Server{
		Addr:              cfg.HTTPSAddr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{material.TLSCertificate()},
			MinVersion:   tls.VersionTLS12,
		},
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		return ignoreClosed(httpServer.ListenAndServe())
	})
	g.Go(func() error {
		slog.Info("HTTPS server listening", "addr", httpsServer.Addr)
		return ignoreClosed(httpsServer.ListenAndServeTLS("", ""))
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(httpServer.Shutdown(shutdownCtx), httpsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		return err
	}
	return nil
}

// buildRouter wires the stores, key set, issuer and handlers into one router.
// startedAt is the updated_at of the user profile when none is configured.
func buildRouter(cfg config.Config, startedAt time.Time) (http.Handler, error) {
	keys, err := jwks.NewKeySetStore(jwks.WithGenerationAttempts(cfg.KeyGenerationAttempts))
	if err != nil {
		slog.Error("Failed to generate the signing key set", "error", err)
		return nil, err
	}

	userInfo, err := cfg.UserInfoTemplate(startedAt)
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.ParseAuthorizationCodeTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid authorization code ttl: %w", err)
	}

	stores := api.Stores{
		Audiences:      store.NewAudiencesStore(cfg.Audiences),
		Authorizations: store.NewAuthorizationStore(ttl),
		UserInfo:       store.NewUserInfoStore(userInfo),
		CustomClaims:   store.NewCustomClaimsStore(cfg.AccessTokenCustomClaims()),
	}
	slog.Info("Stores initialized", "audiences", stores.Audiences.Names(), "authorization_code_ttl", ttl)

	m := metrics.NewMetrics(metrics.NewRegistry())
	issuer := tokengenerator.NewIssuer(keys, cfg.Issuer, stores.UserInfo, stores.CustomClaims)
	verifier := tokengenerator.NewVerifier(keys)

	handler := api.NewHandler(api.Config{
		Client: api.Client{
			ID:     cfg.ClientID,
			Secret: cfg.ClientSecret,
		},
	}, issuer, verifier, keys, stores, api.WithMetrics(m))

	// No app metrics or httpin: both register globally and /metrics is
	// served from the private registry.
	server := app.NewApp(
		app.WithCors(api.CORSOptions(cfg.CORSAllowedOrigins)),
		app.WithReqLogger(app.DefaultHttpLogger()),
	)
	server.R.Use(m.Middleware)

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	wellknown.NewHandler(wellknown.Config{
		Issuer:  cfg.Issuer,
		BaseURL: cfg.BaseURL,
	}, keys).RegisterRoutes(server.R)
	handler.RegisterRoutes(server.R)
	server.R.Handle("/metrics", m.Handler())

	return server.R, nil
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
