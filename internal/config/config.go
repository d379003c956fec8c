// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by FromEnv.
const (
	EnvOutDir    = "SITE_COMPILER_OUT_DIR"
	EnvUserAgent = "SITE_COMPILER_USER_AGENT"
	EnvConfig    = "SITE_COMPILER_CONFIG"
)

// Defaults applied by MergeWithDefaults.
const (
	DefaultOutDir          = "sites"
	DefaultConcurrency     = 4
	DefaultRequestDelayMS  = 400
	DefaultTimeoutSec      = 20
	DefaultMaxContentPages = 5
	DefaultUserAgent       = "Mozilla/5.0 (compatible; SiteCompiler/1.0)"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or come from CLI flags.
type Config struct {
	OutDir string `json:"out_dir,omitempty" yaml:"out_dir,omitempty"` // Root of per-site artifact directories

	// Crawl bounds
	MaxListingPages int `json:"max_listing_pages,omitempty" yaml:"max_listing_pages,omitempty" validate:"gte=0,lte=500"` // 0 = by store type
	CrawlTimeoutSec int `json:"crawl_timeout_sec,omitempty" yaml:"crawl_timeout_sec,omitempty" validate:"gte=0"`         // 0 = no wall-clock limit
	MaxContentPages int `json:"max_content_pages,omitempty" yaml:"max_content_pages,omitempty" validate:"gte=0,lte=50"`

	// Fetching
	Concurrency    int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"gte=0,lte=8"`
	RequestDelayMS int    `json:"request_delay_ms,omitempty" yaml:"request_delay_ms,omitempty" validate:"gte=0"`
	TimeoutSec     int    `json:"timeout_sec,omitempty" yaml:"timeout_sec,omitempty" validate:"gte=0,lte=300"`
	Retries        int    `json:"retries,omitempty" yaml:"retries,omitempty" validate:"gte=0,lte=5"`
	UserAgent      string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	UseBrowser     bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Render thin homepages with headless Chrome

	// Behavior
	Verbose        bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	KeepRawContent bool `json:"keep_raw_content,omitempty" yaml:"keep_raw_content,omitempty"`

	// Optional enrichment inputs
	ResearchBundle string `json:"research_bundle,omitempty" yaml:"research_bundle,omitempty"`
	ValueModel     string `json:"value_model,omitempty" yaml:"value_model,omitempty"`

	Dedupe DedupeConfig `json:"dedupe,omitempty" yaml:"dedupe,omitempty"`
}

// DedupeConfig holds per-site corrections for the variant grouper.
type DedupeConfig struct {
	// Exclude lists canonical product names that must never be merged with
	// their pack/quantity siblings.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" validate:"dive,required"`
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables only.
func FromEnv() Config {
	return Config{
		OutDir:    os.Getenv(EnvOutDir),
		UserAgent: os.Getenv(EnvUserAgent),
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for _, path := range []string{c.ResearchBundle, c.ValueModel} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: enrichment file not found: %s", path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults,
// then from the package defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.OutDir == "" {
		result.OutDir = defaults.OutDir
	}
	if result.OutDir == "" {
		result.OutDir = DefaultOutDir
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.UserAgent == "" {
		result.UserAgent = DefaultUserAgent
	}
	if result.ResearchBundle == "" {
		result.ResearchBundle = defaults.ResearchBundle
	}
	if result.ValueModel == "" {
		result.ValueModel = defaults.ValueModel
	}

	if result.MaxListingPages == 0 {
		result.MaxListingPages = defaults.MaxListingPages
	}
	if result.CrawlTimeoutSec == 0 {
		result.CrawlTimeoutSec = defaults.CrawlTimeoutSec
	}
	if result.Retries == 0 {
		result.Retries = defaults.Retries
	}
	if result.Concurrency == 0 {
		result.Concurrency = firstPositive(defaults.Concurrency, DefaultConcurrency)
	}
	if result.RequestDelayMS == 0 {
		result.RequestDelayMS = firstPositive(defaults.RequestDelayMS, DefaultRequestDelayMS)
	}
	if result.TimeoutSec == 0 {
		result.TimeoutSec = firstPositive(defaults.TimeoutSec, DefaultTimeoutSec)
	}
	if result.MaxContentPages == 0 {
		result.MaxContentPages = firstPositive(defaults.MaxContentPages, DefaultMaxContentPages)
	}
	if len(result.Dedupe.Exclude) == 0 {
		result.Dedupe.Exclude = defaults.Dedupe.Exclude
	}

	// Bool fields: cannot distinguish unset from false, so they are OR-ed
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose
	result.KeepRawContent = result.KeepRawContent || defaults.KeepRawContent

	return result
}

// RequestDelay returns the per-origin politeness delay.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CrawlTimeout returns the optional wall-clock crawl limit; zero means none.
func (c *Config) CrawlTimeout() time.Duration {
	return time.Duration(c.CrawlTimeoutSec) * time.Second
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
