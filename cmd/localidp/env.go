package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/tendant/local-idp/pkg/config"
)

// loadEnvFile loads .env from the executable's directory, or the working
// directory when there is none. Variables already set are not overridden.
func loadEnvFile() {
	execPath, err := os.Executable()
	if err != nil {
		slog.Error("Failed to get executable path", "error", err)
		return
	}
	envFile := filepath.Join(filepath.Dir(execPath), ".env")

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		cwd, err := os.Getwd()
		if err != nil {
			slog.Error("Failed to get current working directory", "error", err)
			return
		}
		envFile = filepath.Join(cwd, ".env")
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Debug("No .env file found", "path", envFile)
		return
	}

	if err := godotenv.Load(envFile); err != nil {
		slog.Error("Failed to load .env file", "error", err, "path", envFile)
		return
	}
	slog.Info("Configuration loaded from .env file", "path", envFile)
}

// loadConfig reads the configuration named by --config or LOCALIDP_CONFIG_PATH
func loadConfig() (config.Config, error) {
	loadEnvFile()

	path := configPath
	if path == "" {
		path = os.Getenv(config.PathEnv)
	}
	return config.Load(path)
}
