package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
)

// envConfig mirrors the environment variables understood by the server.
// Unset variables keep their zero value and leave Config untouched.
type envConfig struct {
	DatabaseDSN string `env:"DATABASE_DSN"`
	DBHost      string `env:"DB_HOST"`
	DBPort      string `env:"DB_PORT"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME"`
	DBMaxConns  int    `env:"DB_MAX_CONNS"`

	Port     string `env:"PORT"`
	HTTPAddr string `env:"HTTP_ADDR"`
	GRPCAddr string `env:"GRPC_ADDR"`

	SecretKey      string        `env:"SECRET_KEY"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL"`

	RedisAddr     string   `env:"REDIS_ADDR"`
	RedisPassword string   `env:"REDIS_PASSWORD"`
	AdminEmails   []string `env:"ADMIN_EMAILS" envSeparator:","`
	TrustProxy    string   `env:"TRUST_PROXY"`

	PingMessage     string `env:"PING_MESSAGE"`
	StaticDir       string `env:"STATIC_DIR"`
	ImportSource    string `env:"IMPORT_SOURCE"`
	ImportOnStartup string `env:"IMPORT_ON_STARTUP"`

	RateLimitPerMinute  int           `env:"RATE_LIMIT_PER_MINUTE"`
	RateLimitBurst      int           `env:"RATE_LIMIT_BURST"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT"`
	HealthCheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL"`

	LogBackend string `env:"LOG_BACKEND"`
	LogLevel   string `env:"LOG_LEVEL"`

	S3RootUser     string `env:"S3_ROOT_USER"`
	S3RootPassword string `env:"S3_ROOT_PASSWORD"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
}

// loadDotEnv loads variables from path into the process environment.
// Variables already set win over the file; a missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseEnv(config *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	switch {
	case e.DatabaseDSN != "":
		config.DatabaseDSN = e.DatabaseDSN
	case e.DBHost != "" || e.DBName != "":
		config.DatabaseDSN = composeDSN(e)
	}
	setInt(&config.DBMaxConns, e.DBMaxConns)

	if e.Port != "" {
		config.EndpointAddrHTTP = ":" + e.Port
	}
	setString(&config.EndpointAddrHTTP, e.HTTPAddr)
	setString(&config.EndpointAddrGRPC, e.GRPCAddr)

	setString(&config.SecretKey, e.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, e.AccessTokenTTL)

	setString(&config.RedisAddr, e.RedisAddr)
	setString(&config.RedisPassword, e.RedisPassword)
	if len(e.AdminEmails) > 0 {
		config.AdminEmails = normalizeEmails(e.AdminEmails)
	}

	if e.TrustProxy != "" {
		v, err := strconv.ParseBool(e.TrustProxy)
		if err != nil {
			return fmt.Errorf("parse env: TRUST_PROXY: %w", err)
		}
		config.TrustProxy = v
	}

	setString(&config.PingMessage, e.PingMessage)
	setString(&config.StaticDir, e.StaticDir)
	setString(&config.ImportSource, e.ImportSource)
	if e.ImportOnStartup != "" {
		v, err := strconv.ParseBool(e.ImportOnStartup)
		if err != nil {
			return fmt.Errorf("parse env: IMPORT_ON_STARTUP: %w", err)
		}
		config.ImportOnStartup = v
	}

	setInt(&config.RateLimitPerMinute, e.RateLimitPerMinute)
	setInt(&config.RateLimitBurst, e.RateLimitBurst)
	setDuration(&config.ShutdownTimeout, e.ShutdownTimeout)
	setDuration(&config.HealthCheckInterval, e.HealthCheckInterval)

	setString(&config.LogBackend, e.LogBackend)
	setString(&config.LogLevel, e.LogLevel)

	setString(&config.S3RootUser, e.S3RootUser)
	setString(&config.S3RootPassword, e.S3RootPassword)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	return nil
}

// composeDSN builds a postgres URL from the discrete DB_* variables.
func composeDSN(e envConfig) string {
	host := valueOr(e.DBHost, "localhost")
	port := valueOr(e.DBPort, "5432")
	user := valueOr(e.DBUser, "postgres")
	name := valueOr(e.DBName, "dzakcloud")

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}
	if e.DBPassword != "" {
		u.User = url.UserPassword(user, e.DBPassword)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = common.NormalizeEmail(e)
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
