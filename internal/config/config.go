package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port         string
	Environment  string
	StoreBackend string
	TablePrefix  string // applied to Postgres tables and Mongo collections
	// Mongo
	MongoURI      string
	MongoDatabase string
	// Postgres
	DatabaseURL string
	// Identity
	OIDCIssuer    string
	OIDCJWKSURL   string
	OIDCAudience  string
	DevAuthSecret string // enables the demo login outside prod
	// HTTP
	CORSOrigins   string
	PublicBaseURL string // origin that QR codes link to
	// Rate limiting
	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int
	// Logging
	LogDir      string
	LogMaxFiles int
	LogLevel    string
}

// Load reads configuration from the environment. When CONFIG_FILE names a
// YAML file of KEY: value pairs, its values fill keys the environment leaves
// unset.
func Load() (*Config, error) {
	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	env := src.get("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:               src.get("PORT", "8080"),
		Environment:        env,
		StoreBackend:       strings.ToLower(src.get("STORE_BACKEND", BackendMongo)),
		TablePrefix:        src.get("TABLE_PREFIX", getTablePrefix(env)),
		MongoURI:           src.get("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:      src.get("MONGODB_DATABASE", "asset_tracker"),
		DatabaseURL:        src.get("DATABASE_URL", ""),
		OIDCIssuer:         src.get("OIDC_ISSUER", ""),
		OIDCJWKSURL:        src.get("OIDC_JWKS_URL", ""),
		OIDCAudience:       src.get("OIDC_AUDIENCE", ""),
		DevAuthSecret:      src.get("DEV_AUTH_SECRET", ""),
		CORSOrigins:        src.get("CORS_ORIGINS", "http://localhost:3000"),
		PublicBaseURL:      src.get("PUBLIC_BASE_URL", "http://localhost:3000"),
		RedisAddr:          src.get("REDIS_ADDR", ""),
		RedisPassword:      src.get("REDIS_PASSWORD", ""),
		RateLimitPerMinute: src.getInt("RATE_LIMIT_PER_MINUTE", 120),
		LogDir:             src.get("LOG_DIR", ""),
		LogMaxFiles:        src.getInt("LOG_MAX_FILES", 10),
		LogLevel:           src.get("LOG_LEVEL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field requirements
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment, validation.In("dev", "test", "prod")),
		validation.Field(&c.StoreBackend,
			validation.In(BackendMongo, BackendPostgres, BackendMemory),
			validation.When(c.IsProduction(), validation.NotIn(BackendMemory).Error("memory store is not allowed in prod"))),
		validation.Field(&c.MongoURI, validation.When(c.StoreBackend == BackendMongo, validation.Required)),
		validation.Field(&c.DatabaseURL, validation.When(c.StoreBackend == BackendPostgres, validation.Required)),
		validation.Field(&c.OIDCIssuer, validation.When(c.IsProduction() && c.OIDCJWKSURL == "",
			validation.Required.Error("OIDC_ISSUER or OIDC_JWKS_URL is required in prod"))),
		validation.Field(&c.RateLimitPerMinute, validation.Min(0)),
		validation.Field(&c.LogMaxFiles, validation.Min(1)),
	)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// DevAuthEnabled reports whether the demo login endpoint and HS256 tokens
// are accepted.
func (c *Config) DevAuthEnabled() bool {
	return !c.IsProduction() && c.DevAuthSecret != ""
}

// OIDCEnabled reports whether provider tokens are accepted.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" || c.OIDCJWKSURL != ""
}

// AllowedOrigins splits CORS_ORIGINS on commas
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

// source resolves a key from the environment first, then the overlay file.
type source struct {
	overlay map[string]string
}

func newSource(path string) (*source, error) {
	s := &source{overlay: map[string]string{}}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	for k, v := range raw {
		if v != nil {
			s.overlay[strings.ToUpper(k)] = fmt.Sprint(v)
		}
	}
	return s, nil
}

func (s *source) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := s.overlay[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (s *source) getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(s.get(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}
