package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const healthcheckTimeout = 5 * time.Second

func runHealthcheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	urls := []string{
		fmt.Sprintf("http://localhost:%d/check", cfg.HTTPPort),
		fmt.Sprintf("https://localhost:%d/check", cfg.HTTPSPort),
	}

	client := &http.Client{
		Timeout: healthcheckTimeout,
		Transport: &http.Transport{
			// The HTTPS listener uses a certificate generated at startup
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		},
	}

	if err := checkEndpoints(cmd.Context(), client, urls); err != nil {
		slog.Error("Healthcheck failed", "error", err)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

// checkEndpoints requires every url to answer 200 with body "ok"
func checkEndpoints(ctx context.Context, client *http.Client, urls []string) error {
	var errs []error
	for _, url := range urls {
		if err := check(ctx, client, url); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
		}
	}
	return errors.Join(errs...)
}

func check(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "ok" {
		return fmt.Errorf("unexpected response %d %q", resp.StatusCode, body)
	}
	return nil
}
