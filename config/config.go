// config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type ScrapeConfig struct {
	// Cities is the required, explicit target list. There is no implicit
	// default list; an empty list is a configuration error.
	Cities []string `yaml:"cities"`
	// URLTemplate is expanded with one city slug per target,
	// e.g. "https://www.meteored.mx/%s/historico".
	URLTemplate     string `yaml:"url_template"`
	FetchTimeoutStr string `yaml:"fetch_timeout"`
	FetchTimeout    time.Duration
}

type PathsConfig struct {
	StagingDir string `yaml:"staging_dir"`
	ParquetDir string `yaml:"parquet_dir"`
	CsvDir     string `yaml:"csv_dir"`
}

type PipelineConfig struct {
	RunIntervalStr string `yaml:"run_interval"`
	RunInterval    time.Duration
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Paths    PathsConfig    `yaml:"paths"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

var AppConfig Config

// LoadConfig reads the YAML config file, applies environment overrides for
// database credentials, and validates the fields the pipeline cannot run
// without. A .env file is honored when present. AppConfig is replaced
// wholesale and only after validation succeeds, so a failed or repeated
// load can never leak fields from a previous load into the next one.
func LoadConfig(configPath string) error {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Credentials from the environment win over the file.
	if v := os.Getenv("METEO_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("METEO_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}

	if len(cfg.Scrape.Cities) == 0 {
		return fmt.Errorf("config: scrape.cities must list at least one city")
	}
	if cfg.Scrape.URLTemplate == "" {
		return fmt.Errorf("config: scrape.url_template is required")
	}
	if cfg.Paths.StagingDir == "" || cfg.Paths.ParquetDir == "" || cfg.Paths.CsvDir == "" {
		return fmt.Errorf("config: paths.staging_dir, paths.parquet_dir and paths.csv_dir are required")
	}

	if cfg.Scrape.FetchTimeoutStr != "" {
		cfg.Scrape.FetchTimeout, err = time.ParseDuration(cfg.Scrape.FetchTimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse fetch_timeout: %w", err)
		}
	} else {
		cfg.Scrape.FetchTimeout = 20 * time.Second
	}

	if cfg.Pipeline.RunIntervalStr != "" {
		cfg.Pipeline.RunInterval, err = time.ParseDuration(cfg.Pipeline.RunIntervalStr)
		if err != nil {
			return fmt.Errorf("failed to parse run_interval: %w", err)
		}
	} else {
		cfg.Pipeline.RunInterval = time.Hour
	}

	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.ParquetDir, cfg.Paths.CsvDir} {
		if err := os.MkdirAll(filepath.Clean(dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	AppConfig = cfg
	return nil
}

// TargetURLs expands the URL template for every configured city, in order.
func (c ScrapeConfig) TargetURLs() []string {
	urls := make([]string, len(c.Cities))
	for i, city := range c.Cities {
		urls[i] = fmt.Sprintf(c.URLTemplate, city)
	}
	return urls
}
