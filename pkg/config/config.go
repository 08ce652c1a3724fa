package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/local-idp/pkg/store"
)

// PathEnv names the environment variable holding the TOML config file path
const PathEnv = "LOCALIDP_CONFIG_PATH"

// Log formats understood by LogFormat
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
	LogFormatTint = "tint"
)

// Config is the complete server configuration. Every scalar can be set from
// the environment; audiences, the user info custom fields and the access token
// custom claims only come from the TOML file.
type Config struct {
	Issuer  string `toml:"issuer" env:"LOCALIDP_ISSUER" env-default:"https://prima.localauth0.com/"`
	BaseURL string `toml:"base_url" env:"LOCALIDP_BASE_URL"`

	Host      string `toml:"host" env:"LOCALIDP_HOST" env-default:"0.0.0.0"`
	HTTPPort  uint16 `toml:"http_port" env:"LOCALIDP_HTTP_PORT" env-default:"3000"`
	HTTPSPort uint16 `toml:"https_port" env:"LOCALIDP_HTTPS_PORT" env-default:"3001"`

	ClientID     string `toml:"client_id" env:"LOCALIDP_CLIENT_ID" env-default:"client_id"`
	ClientSecret string `toml:"client_secret" env:"LOCALIDP_CLIENT_SECRET" env-default:"client_secret"`

	// ISO 8601 ("PT10M") or Go ("10m") duration
	AuthorizationCodeTTL  string `toml:"authorization_code_ttl" env:"LOCALIDP_AUTHORIZATION_CODE_TTL" env-default:"PT10M"`
	KeyGenerationAttempts int    `toml:"key_generation_attempts" env:"LOCALIDP_KEY_GENERATION_ATTEMPTS" env-default:"3"`

	CORSAllowedOrigins []string `toml:"cors_allowed_origins" env:"LOCALIDP_CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	LogLevel  string `toml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `toml:"log_format" env:"LOG_FORMAT" env-default:"text"`

	Audiences   []store.Audience  `toml:"audience"`
	UserInfo    UserInfoConfig    `toml:"user_info"`
	AccessToken AccessTokenConfig `toml:"access_token"`
}

// Load reads the configuration. When path is empty only the environment is
// read; otherwise the TOML file at path is read first and the environment
// overrides it.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		slog.Info("Loading configuration file", "path", path)
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot coerce on its own
func (c Config) Validate() error {
	return Validate(func() ValidationErrors {
		ttl, err := c.ParseAuthorizationCodeTTL()
		var ttlErr *ValidationError
		if err != nil {
			ttlErr = &ValidationError{Field: "authorization_code_ttl", Message: err.Error()}
		} else {
			ttlErr = RequirePositiveDuration("authorization_code_ttl", ttl)
		}

		return CollectErrors(
			RequireNonEmpty("issuer", c.Issuer),
			WhenSet(c.BaseURL, func() *ValidationError { return RequireValidURL("base_url", c.BaseURL) }),
			RequireValidPort("http_port", c.HTTPPort),
			RequireValidPort("https_port", c.HTTPSPort),
			RequireNonEmpty("client_id", c.ClientID),
			RequireNonEmpty("client_secret", c.ClientSecret),
			ttlErr,
			RequirePositive("key_generation_attempts", c.KeyGenerationAttempts),
			RequireOneOf("log_format", strings.ToLower(c.LogFormat), []string{LogFormatText, LogFormatJSON, LogFormatTint}),
		)
	})
}

// ParseAuthorizationCodeTTL parses the authorization code lifetime
func (c Config) ParseAuthorizationCodeTTL() (time.Duration, error) {
	return parseDurationISO8601(c.AuthorizationCodeTTL)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// HTTPAddr is the listen address of the plain HTTP server
func (c Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// HTTPSAddr is the listen address of the TLS server
func (c Config) HTTPSAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPSPort)
}
