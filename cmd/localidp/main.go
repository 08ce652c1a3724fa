package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "localidp",
	Short: "Local OpenID Connect provider for development and tests",
	Long: `localidp issues signed access tokens and ID tokens, publishes its JSON Web
Key Set and OpenID discovery metadata, and lets tests change permissions,
the user profile and the signing keys at runtime.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and HTTPS servers",
	RunE:  runServe,
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that both listeners answer on /check",
	RunE:  runHealthcheck,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (defaults to $LOCALIDP_CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd, healthcheckCmd)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
