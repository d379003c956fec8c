package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-compiler/internal/artifacts"
	"github.com/jonathan/site-compiler/internal/config"
	"github.com/jonathan/site-compiler/internal/crawling"
	"github.com/jonathan/site-compiler/internal/logging"
	"github.com/jonathan/site-compiler/internal/pipeline"
)

// Persistent flags shared by every stage command.
var (
	configPath      string
	outDir          string
	verbose         bool
	concurrency     int
	requestDelayMS  int
	timeoutSec      int
	retries         int
	maxListingPages int
	crawlTimeoutSec int
	maxContentPages int
	userAgent       string
	useBrowser      bool
	keepRawContent  bool
	researchBundle  string
	valueModel      string
	dedupeExclude   []string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file (.json, .yaml or .yml); overrides SITE_COMPILER_CONFIG")
	flags.StringVarP(&outDir, "out", "o", "", "Root directory for per-site artifacts (default: sites)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and detailed summaries")
	flags.IntVar(&concurrency, "concurrency", 0, "Detail page workers, 1-8 (default: 4)")
	flags.IntVar(&requestDelayMS, "delay-ms", 0, "Minimum delay between requests to one origin in milliseconds (default: 400)")
	flags.IntVar(&timeoutSec, "timeout", 0, "Per-request timeout in seconds (default: 20)")
	flags.IntVar(&retries, "retries", 0, "Extra attempts for transient fetch failures")
	flags.IntVar(&maxListingPages, "max-listing-pages", 0, "Listing page cap (default: by store type)")
	flags.IntVar(&crawlTimeoutSec, "crawl-timeout", 0, "Wall-clock crawl limit in seconds (default: none)")
	flags.IntVar(&maxContentPages, "max-content-pages", 0, "Content pages snapshotted from homepage navigation (default: 5)")
	flags.StringVar(&userAgent, "user-agent", "", "User-Agent header; overrides SITE_COMPILER_USER_AGENT")
	flags.BoolVar(&useBrowser, "browser", false, "Render thin homepages with headless Chrome")
	flags.BoolVar(&keepRawContent, "keep-raw-content", false, "Store stripped page text with each product")
	flags.StringVar(&researchBundle, "research", "", "Path to research.bundle.json (default: <site dir>/research.bundle.json)")
	flags.StringVar(&valueModel, "value-model", "", "Path to value.model.json (default: <site dir>/value.model.json)")
	flags.StringSliceVar(&dedupeExclude, "exclude", nil, "Canonical product names never merged with their pack variants")
}

// loadConfig merges flags over the config file over environment variables.
// Only flags set on the command line take part.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	env := config.FromEnv()

	path := configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	file := config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		file = *loaded
	}

	changed := cmd.Flags().Changed
	cli := config.Config{}
	if changed("out") {
		cli.OutDir = outDir
	}
	if changed("verbose") {
		cli.Verbose = verbose
	}
	if changed("concurrency") {
		cli.Concurrency = concurrency
	}
	if changed("delay-ms") {
		cli.RequestDelayMS = requestDelayMS
	}
	if changed("timeout") {
		cli.TimeoutSec = timeoutSec
	}
	if changed("retries") {
		cli.Retries = retries
	}
	if changed("max-listing-pages") {
		cli.MaxListingPages = maxListingPages
	}
	if changed("crawl-timeout") {
		cli.CrawlTimeoutSec = crawlTimeoutSec
	}
	if changed("max-content-pages") {
		cli.MaxContentPages = maxContentPages
	}
	if changed("user-agent") {
		cli.UserAgent = userAgent
	}
	if changed("browser") {
		cli.UseBrowser = useBrowser
	}
	if changed("keep-raw-content") {
		cli.KeepRawContent = keepRawContent
	}
	if changed("research") {
		cli.ResearchBundle = researchBundle
	}
	if changed("value-model") {
		cli.ValueModel = valueModel
	}
	if changed("exclude") {
		cli.Dedupe.Exclude = dedupeExclude
	}

	merged := file.MergeWithDefaults(env)
	cfg := cli.MergeWithDefaults(merged)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newRunner builds a pipeline runner from the command's effective config.
func newRunner(cmd *cobra.Command) (*pipeline.Runner, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Verbose, cmd.ErrOrStderr())
	return pipeline.New(pipeline.Options{
		Config: cfg,
		Log:    log,
		Out:    cmd.OutOrStdout(),
	}), nil
}

// siteDir resolves a site key argument. A URL or bare domain is accepted
// in place of the key.
func siteDir(r *pipeline.Runner, arg string) (*artifacts.Dir, error) {
	key := strings.TrimSpace(arg)
	if key == "" {
		return nil, fmt.Errorf("site key is empty")
	}
	if strings.Contains(key, ".") || strings.Contains(key, "://") {
		resolved, err := crawling.SiteKey(key)
		if err != nil {
			return nil, err
		}
		key = resolved
	}
	return r.OpenSite(key), nil
}
