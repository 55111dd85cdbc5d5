package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	KeycloakBaseURL      string
	KeycloakRealm        string
	KeycloakClientID     string
	KeycloakClientSecret string
	KeycloakTimeout      time.Duration

	// JWKSURL overrides the realm-derived JWKS endpoint when set. An empty
	// JWKSURL together with a non-empty JWTStaticSecret switches verification
	// to HS256, which is only acceptable outside production.
	JWKSURL             string
	JWKSRefreshInterval time.Duration
	JWTStaticSecret     string
	JWTLeeway           time.Duration

	PermissionCacheTTL          time.Duration
	PermissionCacheRedisEnabled bool

	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int

	CORSAllowedOrigins  []string
	AuthRateLimitPerMin int
	APIRateLimitPerMin  int
	RequestBodyLimit    int64

	SeedOnStartup bool

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:      env,
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		KeycloakBaseURL:      strings.TrimRight(getEnv("KEYCLOAK_BASE_URL", "http://localhost:8180"), "/"),
		KeycloakRealm:        getEnv("KEYCLOAK_REALM", "supplierchain"),
		KeycloakClientID:     getEnv("KEYCLOAK_CLIENT_ID", "supplierchain-backend"),
		KeycloakClientSecret: os.Getenv("KEYCLOAK_CLIENT_SECRET"),

		JWKSURL:         os.Getenv("JWT_JWKS_URL"),
		JWTStaticSecret: os.Getenv("JWT_STATIC_SECRET"),

		PermissionCacheRedisEnabled: getEnvBool("PERMISSION_CACHE_REDIS_ENABLED", false),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		AuthRateLimitPerMin: getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:  getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		RequestBodyLimit:    int64(getEnvInt("REQUEST_BODY_LIMIT_BYTES", 1<<20)),

		SeedOnStartup: getEnvBool("SEED_ON_STARTUP", true),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "supplierchain-backend"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	var err error
	if cfg.KeycloakTimeout, err = parseDurationEnv("KEYCLOAK_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.JWKSRefreshInterval, err = parseDurationEnv("JWT_JWKS_REFRESH_INTERVAL", "1h"); err != nil {
		return nil, err
	}
	if cfg.JWTLeeway, err = parseDurationEnv("JWT_LEEWAY", "30s"); err != nil {
		return nil, err
	}
	if cfg.PermissionCacheTTL, err = parseDurationEnv("PERMISSION_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}
	if cfg.OTELMetricsExportInterval, err = parseDurationEnv("OTEL_METRICS_EXPORT_INTERVAL", "10s"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.KeycloakBaseURL == "" {
		errs = append(errs, "KEYCLOAK_BASE_URL is required")
	}
	if c.KeycloakRealm == "" {
		errs = append(errs, "KEYCLOAK_REALM is required")
	}
	if c.KeycloakClientID == "" {
		errs = append(errs, "KEYCLOAK_CLIENT_ID is required")
	}
	if c.JWKSURL == "" && c.JWTStaticSecret == "" {
		errs = append(errs, "one of JWT_JWKS_URL or JWT_STATIC_SECRET is required")
	}
	if c.JWKSURL == "" && c.JWTStaticSecret != "" && !isLocalLikeEnv(c.Env) {
		errs = append(errs, "JWT_STATIC_SECRET is only allowed in development or test environments")
	}
	if c.JWTStaticSecret != "" && len(c.JWTStaticSecret) < 32 {
		errs = append(errs, "JWT_STATIC_SECRET must be at least 32 chars")
	}
	if c.KeycloakTimeout <= 0 {
		errs = append(errs, "KEYCLOAK_TIMEOUT must be > 0")
	}
	if c.JWTLeeway < 0 || c.JWTLeeway > 5*time.Minute {
		errs = append(errs, "JWT_LEEWAY must be between 0 and 5m")
	}
	if c.PermissionCacheTTL < time.Second || c.PermissionCacheTTL > time.Hour {
		errs = append(errs, "PERMISSION_CACHE_TTL must be between 1s and 1h")
	}
	if c.PermissionCacheRedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when PERMISSION_CACHE_REDIS_ENABLED=true")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.RequestBodyLimit <= 0 {
		errs = append(errs, "REQUEST_BODY_LIMIT_BYTES must be > 0")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// RealmJWKSURL resolves the JWKS endpoint, preferring the explicit override.
func (c *Config) RealmJWKSURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", c.KeycloakBaseURL, c.KeycloakRealm)
}

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
