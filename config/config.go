// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath = pflag.String("config-path", ".", "Directory containing config.toml")
	migrate    = pflag.Bool("migrate", false, "Runs database migrations and exits")

	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
)

var ErrNoJWTSecret = errors.New("no jwt secret provided")

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// MigrateOnly reports whether the --migrate flag was passed
func MigrateOnly() bool {
	return *migrate
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	err := Load(*configPath)
	if errors.Is(err, ErrNoJWTSecret) {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return err
}

// Load reads config.toml from dir on top of the defaults and environment
// and validates the result
func Load(dir string) error {
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	v.AutomaticEnv()
	bindEnvs()
	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	return Validate()
}

func bindEnvs() {
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.cors_origins", "HOST_CORS_ORIGINS")

	v.BindEnv("host.ssl.enabled", "HOST_SSL_ENABLED")
	v.BindEnv("host.ssl.certificate_path", "HOST_SSL_CERTIFICATE_PATH")
	v.BindEnv("host.ssl.certificate_key_path", "HOST_SSL_CERTIFICATE_KEY_PATH")

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")

	v.BindEnv("jwt.secret", "JWT_SECRET")

	v.BindEnv("auth.token_ttl", "AUTH_TOKEN_TTL")
	v.BindEnv("auth.reset_token_ttl", "AUTH_RESET_TOKEN_TTL")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")
	v.BindEnv("security.body_limit", "SECURITY_BODY_LIMIT")

	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.username", "MAIL_USERNAME")
	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("mail.from", "MAIL_FROM")

	v.BindEnv("cloudflare.turnstile.enabled", "CLOUDFLARE_TURNSTILE_ENABLED")
	v.BindEnv("cloudflare.turnstile.secret_token", "CLOUDFLARE_TURNSTILE_SECRET_TOKEN")

	v.BindEnv("cleanup.schedule", "CLEANUP_SCHEDULE")
	v.BindEnv("cleanup.reset_token_retention", "CLEANUP_RESET_TOKEN_RETENTION")
}

// SetDefaults registers the default value of every key
func SetDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("auth.token_ttl", "2h")
	v.SetDefault("auth.reset_token_ttl", "2h")

	v.SetDefault("security.rate_limit", 20)
	v.SetDefault("security.body_limit", 1<<20)

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "no-reply@roleplay.com")

	v.SetDefault("cloudflare.turnstile.enabled", false)

	v.SetDefault("cleanup.schedule", "@hourly")
	v.SetDefault("cleanup.reset_token_retention", "168h")
}

// Validate checks the loaded values. ErrNoJWTSecret is returned last so
// that every other problem is reported first.
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if p := v.GetInt("host.port"); p <= 0 || p > 65535 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetDuration("auth.token_ttl") <= 0 {
		return errors.New("auth.token_ttl must be bigger than 0")
	}

	if v.GetDuration("auth.reset_token_ttl") <= 0 {
		return errors.New("auth.reset_token_ttl must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if v.GetInt64("security.body_limit") <= 0 {
		return errors.New("security.body_limit must be bigger than 0")
	}

	if v.GetString("mail.host") != "" && v.GetInt("mail.port") <= 0 {
		return errors.New("invalid mail port provided")
	}

	if v.GetString("mail.from") == "" {
		return errors.New("mail.from can't be empty")
	}

	if v.GetBool("cloudflare.turnstile.enabled") && v.GetString("cloudflare.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	if v.GetDuration("cleanup.reset_token_retention") < v.GetDuration("auth.reset_token_ttl") {
		return errors.New("cleanup.reset_token_retention can't be shorter than auth.reset_token_ttl")
	}

	if v.GetString("jwt.secret") == "" {
		return ErrNoJWTSecret
	}

	return nil
}
