package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override, e.g. READDIT_SERVER_ADDR.
	EnvPrefix = "READDIT_"
	// ConfigPathEnvVar points at an optional YAML file.
	ConfigPathEnvVar = "READDIT_CONFIG"
	// DefaultConfigPath is used when ConfigPathEnvVar is unset.
	DefaultConfigPath = "readdit.yaml"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Community CommunityConfig `koanf:"community"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Addr           string   `koanf:"addr" validate:"required"`
	Mode           string   `koanf:"mode" validate:"oneof=debug release test"`
	TrustedProxies []string `koanf:"trusted_proxies"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type AuthConfig struct {
	JWTSecret   string        `koanf:"jwt_secret" validate:"required,min=16"`
	JWTIssuer   string        `koanf:"jwt_issuer" validate:"required"`
	JWTDuration time.Duration `koanf:"jwt_ttl" validate:"gt=0"`
}

type CatalogConfig struct {
	BaseURL          string        `koanf:"base_url" validate:"required,url"`
	CoversURL        string        `koanf:"covers_url" validate:"required,url"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	Rate             float64       `koanf:"rate" validate:"gte=0"`
	Burst            int           `koanf:"burst" validate:"gte=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gt=0"`
}

type CommunityConfig struct {
	ProxyURL         string        `koanf:"proxy_url" validate:"required,url"`
	Communities      []string      `koanf:"communities" validate:"min=1,dive,required"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	Rate             float64       `koanf:"rate" validate:"gte=0"`
	Burst            int           `koanf:"burst" validate:"gte=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gt=0"`
	MinUps           int           `koanf:"min_ups" validate:"gte=0"`
	MinComments      int           `koanf:"min_comments" validate:"gte=0"`
	MaxPosts         int           `koanf:"max_posts" validate:"gte=1,lte=100"`
}

type RecommendConfig struct {
	WorksLimit       int     `koanf:"works_limit" validate:"gte=1,lte=100"`
	FilterWant       int     `koanf:"filter_want" validate:"gte=1"`
	MaxResults       int     `koanf:"max_results" validate:"gte=1,ltefield=FilterWant"`
	ProbeBudget      int     `koanf:"probe_budget" validate:"gte=1"`
	EditionsLimit    int     `koanf:"editions_limit" validate:"gte=1,lte=100"`
	CatalogWeight    float64 `koanf:"catalog_weight" validate:"gte=0"`
	CommunityWeight  float64 `koanf:"community_weight" validate:"gte=0"`
	PreferenceWeight float64 `koanf:"preference_weight" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled off"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Database: DatabaseConfig{
			Path: "data/readdit.db",
		},
		Auth: AuthConfig{
			// dev default, override in production
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "readdit",
			JWTDuration: 30 * 24 * time.Hour,
		},
		Catalog: CatalogConfig{
			BaseURL:          "https://openlibrary.org",
			CoversURL:        "https://covers.openlibrary.org",
			Timeout:          10 * time.Second,
			Rate:             5,
			Burst:            10,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
		Community: CommunityConfig{
			ProxyURL:         "https://reddit-proxy.fbn.workers.dev",
			Communities:      []string{"books", "booksuggestions", "buecher"},
			Timeout:          8 * time.Second,
			Rate:             2,
			Burst:            3,
			FailureThreshold: 5,
			OpenTimeout:      60 * time.Second,
			MinUps:           20,
			MinComments:      5,
			MaxPosts:         5,
		},
		Recommend: RecommendConfig{
			WorksLimit:       20,
			FilterWant:       6,
			MaxResults:       3,
			ProbeBudget:      15,
			EditionsLimit:    20,
			CatalogWeight:    0.55,
			CommunityWeight:  0.25,
			PreferenceWeight: 0.20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the configuration: struct defaults, then the optional YAML
// file, then READDIT_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit YAML path; an empty path skips the
// file layer.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// envKey maps READDIT_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Slice fields arrive from the environment as comma separated strings.
var sliceKeys = []string{
	"server.trusted_proxies",
	"community.communities",
}

func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}
