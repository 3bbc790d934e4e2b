package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig        `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig    `yaml:"anthropic" mapstructure:"anthropic"`
	Firecrawl FirecrawlConfig    `yaml:"firecrawl" mapstructure:"firecrawl"`
	Crawl     CrawlConfig        `yaml:"crawl" mapstructure:"crawl"`
	Enrich    EnrichConfig       `yaml:"enrich" mapstructure:"enrich"`
	Server    ServerConfig       `yaml:"server" mapstructure:"server"`
	Log       LogConfig          `yaml:"log" mapstructure:"log"`
	Sites     []model.SiteConfig `yaml:"sites" mapstructure:"sites"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FirecrawlConfig holds Firecrawl API settings (fallback only). An empty
// key disables the fallback.
type FirecrawlConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	WaitForMs int    `yaml:"wait_for_ms" mapstructure:"wait_for_ms"`
}

// CrawlConfig configures fetching and the per-site fan-out.
type CrawlConfig struct {
	UserAgent           string  `yaml:"user_agent" mapstructure:"user_agent"`
	FetchTimeoutSecs    int     `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	MaxConcurrency      int     `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	MaxSitesConcurrency int     `yaml:"max_sites_concurrency" mapstructure:"max_sites_concurrency"`
	MaxBodyBytes        int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RateLimit           float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst           int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	SitesFile           string  `yaml:"sites_file" mapstructure:"sites_file"`
}

// EnrichConfig configures the AI enrichment phase.
type EnrichConfig struct {
	MaxConcurrency   int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	TimeoutSecs      int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	BreakerThreshold int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultSites returns the built-in site configuration. Selectors are
// best-effort and expected to be overridden in config.yaml.
func DefaultSites() []model.SiteConfig {
	return []model.SiteConfig{
		{RootURL: "https://news.naver.com/", LinkSelector: "a.sa_item_title"},
		{RootURL: "https://www.etnews.com/", LinkSelector: "a.list_news"},
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EIDOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "eidos.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 512)
	v.SetDefault("firecrawl.key", "")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("firecrawl.wait_for_ms", 0)
	v.SetDefault("crawl.user_agent", "Mozilla/5.0")
	v.SetDefault("crawl.fetch_timeout_secs", 10)
	v.SetDefault("crawl.max_concurrency", 16)
	v.SetDefault("crawl.max_sites_concurrency", 0)
	v.SetDefault("crawl.max_body_bytes", 4*1024*1024)
	v.SetDefault("crawl.rate_limit", 10.0)
	v.SetDefault("crawl.rate_burst", 10)
	v.SetDefault("crawl.sites_file", "")
	v.SetDefault("enrich.max_concurrency", 4)
	v.SetDefault("enrich.timeout_secs", 30)
	v.SetDefault("enrich.max_attempts", 2)
	v.SetDefault("enrich.breaker_threshold", 5)
	v.SetDefault("enrich.breaker_reset_secs", 30)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Crawl.SitesFile != "" {
		sites, err := LoadSites(cfg.Crawl.SitesFile)
		if err != nil {
			return nil, err
		}
		cfg.Sites = sites
	}
	if len(cfg.Sites) == 0 {
		cfg.Sites = DefaultSites()
	}

	return &cfg, nil
}

// sitesFile is the on-disk layout of a standalone sites file.
type sitesFile struct {
	Sites []model.SiteConfig `yaml:"sites"`
}

// LoadSites reads a YAML file holding a top-level "sites" list.
func LoadSites(path string) ([]model.SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read sites file %s", path)
	}

	var f sitesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "config: parse sites file %s", path)
	}
	if err := ValidateSites(f.Sites); err != nil {
		return nil, err
	}
	return f.Sites, nil
}

// ValidateSites checks that every site has a root URL and a link selector.
func ValidateSites(sites []model.SiteConfig) error {
	if len(sites) == 0 {
		return eris.New("config: no sites configured")
	}
	seen := make(map[string]bool, len(sites))
	for i, s := range sites {
		if s.RootURL == "" {
			return eris.Errorf("config: site %d: root_url is required", i)
		}
		if s.LinkSelector == "" {
			return eris.Errorf("config: site %s: link_selector is required", s.RootURL)
		}
		if seen[s.RootURL] {
			return eris.Errorf("config: site %s listed twice", s.RootURL)
		}
		seen[s.RootURL] = true
	}
	return nil
}

// Validate checks the configuration required by the given mode.
//
//	crawl:      site list and crawl concurrency bounds
//	enrichment: Anthropic key and enrich concurrency bounds
//	serve:      crawl checks plus a listen port
func (c *Config) Validate(mode string) error {
	switch mode {
	case "crawl":
		return c.validateCrawl()
	case "enrichment":
		if c.Anthropic.Key == "" {
			return eris.New("config: anthropic.key is required for enrichment (EIDOS_ANTHROPIC_KEY)")
		}
		if c.Enrich.MaxConcurrency < 1 || c.Enrich.MaxConcurrency > 32 {
			return eris.Errorf("config: enrich.max_concurrency must be between 1 and 32, got %d", c.Enrich.MaxConcurrency)
		}
		return nil
	case "serve":
		if c.Server.Port <= 0 {
			return eris.Errorf("config: server.port must be > 0, got %d", c.Server.Port)
		}
		return c.validateCrawl()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
}

func (c *Config) validateCrawl() error {
	if c.Crawl.MaxConcurrency < 1 || c.Crawl.MaxConcurrency > 256 {
		return eris.Errorf("config: crawl.max_concurrency must be between 1 and 256, got %d", c.Crawl.MaxConcurrency)
	}
	if c.Crawl.MaxSitesConcurrency < 0 {
		return eris.Errorf("config: crawl.max_sites_concurrency must be >= 0, got %d", c.Crawl.MaxSitesConcurrency)
	}
	return ValidateSites(c.Sites)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
