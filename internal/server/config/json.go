package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/dzakcloud/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// Only fields present in the file are applied to Config; absent fields keep
// the values from defaults and the environment.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            *string        `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	DBMaxConns                  int            `json:"db_max_conns"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RedisAddr                   string         `json:"redis_addr"`
	RedisPassword               string         `json:"redis_password"`
	AdminEmails                 []string       `json:"admin_emails"`
	TrustProxy                  *bool          `json:"trust_proxy"`
	PingMessage                 string         `json:"ping_message"`
	StaticDir                   string         `json:"static_dir"`
	ImportSource                string         `json:"import_source"`
	ImportOnStartup             *bool          `json:"import_on_startup"`
	RateLimitPerMinute          int            `json:"rate_limit_per_minute"`
	RateLimitBurst              int            `json:"rate_limit_burst"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
	HealthCheckInterval         timex.Duration `json:"health_check_interval"`
	LogBackend                  string         `json:"log_backend"`
	LogLevel                    string         `json:"log_level"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJsonFile loads configuration values from the JSON file at path into
// config. gRPC address and import_on_startup are pointers so that an explicit
// "" or false in the file can switch those features off.
func parseJsonFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	if c.EndpointAddrGRPC != nil {
		config.EndpointAddrGRPC = *c.EndpointAddrGRPC
	}
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setInt(&config.DBMaxConns, c.DBMaxConns)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if len(c.AdminEmails) > 0 {
		config.AdminEmails = normalizeEmails(c.AdminEmails)
	}
	if c.TrustProxy != nil {
		config.TrustProxy = *c.TrustProxy
	}
	setString(&config.PingMessage, c.PingMessage)
	setString(&config.StaticDir, c.StaticDir)
	setString(&config.ImportSource, c.ImportSource)
	if c.ImportOnStartup != nil {
		config.ImportOnStartup = *c.ImportOnStartup
	}
	setInt(&config.RateLimitPerMinute, c.RateLimitPerMinute)
	setInt(&config.RateLimitBurst, c.RateLimitBurst)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout.Duration)
	setDuration(&config.HealthCheckInterval, c.HealthCheckInterval.Duration)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	return nil
}
