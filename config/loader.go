package config

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Extract   ExtractConfig
	DuckDB    DuckDBConfig
	Warehouse WarehouseConfig
	Server    ServerConfig
	Env       string
}

type ExtractConfig struct {
	Backoff         BackoffConfig
	DataDir         string `mapstructure:"data_dir"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type BackoffConfig struct {
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	RetryMax     int           `mapstructure:"retry_max"`
}

type DuckDBConfig struct {
	Path              string   `mapstructure:"path"`
	ConnInitFnQueries []string `mapstructure:"conn_init_fn_queries"`
}

type WarehouseConfig struct {
	Backend         string        `mapstructure:"backend"`
	DatasetID       string        `mapstructure:"dataset_id"`
	Location        string        `mapstructure:"location"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	MaxQueryTimeout time.Duration `mapstructure:"max_query_timeout"`
	CredentialsFile string        `mapstructure:"credentials_file"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// NewConfig loads the configuration from the provided base config reader
// and merges it with the environment-specific configuration.
func NewConfig(baseConfigReader io.Reader, envConfigReader io.Reader, env string) (*Config, error) {
	if env == "" { // Use the provided 'env' or default to "dev"
		env = "dev"
	}

	viper.SetConfigType("yaml")

	// Read the base configuration
	if err := viper.ReadConfig(baseConfigReader); err != nil {
		return nil, fmt.Errorf("error reading base config: %w", err)
	}

	// Merge with environment-specific configuration (only if provided)
	if envConfigReader != nil {
		if err := viper.MergeConfig(envConfigReader); err != nil {
			log.Printf("Error merging environment-specific config: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Set the environment directly
	config.Env = env
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Warehouse.Backend == "" {
		c.Warehouse.Backend = "bigquery"
	}
	if c.Warehouse.DatasetID == "" {
		c.Warehouse.DatasetID = "olist_marts"
	}
	if c.Warehouse.CacheTTL == 0 {
		c.Warehouse.CacheTTL = 600 * time.Second
	}
	if c.Warehouse.MaxQueryTimeout == 0 {
		c.Warehouse.MaxQueryTimeout = 5 * time.Minute
	}
	if c.Extract.DataDir == "" {
		c.Extract.DataDir = "data"
	}
	if c.Extract.CredentialsFile == "" {
		c.Extract.CredentialsFile = "kaggle.json"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}
