package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEmbeddingsEndpoint is the production Embedefy embeddings URL.
const DefaultEmbeddingsEndpoint = "https://api.embedefy.com/v1/embeddings"

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	EmbeddingsEndpoint    string        `mapstructure:"embeddings_endpoint"`
	AccessToken           string        `mapstructure:"access_token" json:"-"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	SourcesFile          string        `mapstructure:"sources_file"`
	PublishersFile       string        `mapstructure:"publishers_file"`
	BatchIntervalSeconds int64         `mapstructure:"batch_interval"`
	BatchInterval        time.Duration `mapstructure:"-"`
	RequestsPerSecond    float64       `mapstructure:"requests_per_second"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	MemoryCacheSize        int           `mapstructure:"memory_cache_size"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from an optional YAML file, environment variables
// prefixed with EMBEDEFY_, and defaults, in that order of precedence reversed.
func Load(path string) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("embedefy")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "embedefy-bridge")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("embeddings_endpoint", DefaultEmbeddingsEndpoint)
	v.SetDefault("access_token", "")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("batch_interval", 0) // seconds, 0 runs a single pass
	v.SetDefault("requests_per_second", 0)
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/embeddings.db")
	v.SetDefault("memory_cache_size", 1024)
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
}

func (c *Config) finalize() error {
	c.EmbeddingsEndpoint = strings.TrimSpace(c.EmbeddingsEndpoint)
	if c.EmbeddingsEndpoint == "" {
		return errors.New("embeddings_endpoint must not be empty")
	}

	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be zero or positive seconds)")
	}
	c.RequestTimeout = time.Duration(c.RequestTimeoutSeconds) * time.Second

	if c.BatchIntervalSeconds < 0 {
		return fmt.Errorf("invalid batch_interval (must be zero or positive seconds)")
	}
	c.BatchInterval = time.Duration(c.BatchIntervalSeconds) * time.Second

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid requests_per_second (must be zero or positive)")
	}

	if c.MemoryCacheSize <= 0 {
		return fmt.Errorf("invalid memory_cache_size (must be positive)")
	}
	if c.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if c.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	c.StorageTTL = time.Duration(c.StorageTTLSeconds) * time.Second
	c.StorageCleanupInterval = time.Duration(c.StorageCleanupSeconds) * time.Second

	return nil
}
