package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, drop-list feeds,
// domain probing, report output, and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// DropList contains settings for fetching upcoming release lists from the registry
	DropList struct {
		// SeURL is the feed listing upcoming .se releases
		SeURL string `env:"DROPLIST_SE_URL" env-default:"https://data.internetstiftelsen.se/bardate_domains.json" yaml:"seURL"` //nolint: lll
		// NuURL is the feed listing upcoming .nu releases
		NuURL string `env:"DROPLIST_NU_URL" env-default:"https://data.internetstiftelsen.se/bardate_domains_nu.json" yaml:"nuURL"` //nolint: lll
		// Timeout bounds a single feed request
		Timeout time.Duration `env:"DROPLIST_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"dropList"`

	// DNS contains settings for the availability probe
	DNS struct {
		// Server is the resolver address in host:port form; empty selects the system resolver
		Server string `env:"DNS_SERVER" env-default:"" yaml:"server"`
		// Timeout bounds a single DNS exchange
		Timeout time.Duration `env:"DNS_TIMEOUT" env-default:"3s" yaml:"timeout"`
	} `yaml:"dns"`

	// Index contains settings for the content index probes
	Index struct {
		// CDXURL is the Wayback Machine CDX endpoint used as the primary index source
		CDXURL string `env:"INDEX_CDX_URL" env-default:"http://web.archive.org/cdx/search/cdx" yaml:"cdxURL"`
		// CDXLimit caps the number of capture rows requested per domain
		CDXLimit int `env:"INDEX_CDX_LIMIT" env-default:"500" yaml:"cdxLimit"`
		// Timeout bounds a single probe request
		Timeout time.Duration `env:"INDEX_TIMEOUT" env-default:"20s" yaml:"timeout"`
		// ScanDelay is the pause between consecutive index probes
		ScanDelay time.Duration `env:"INDEX_SCAN_DELAY" env-default:"2500ms" yaml:"scanDelay"`
		// MinIndexedPages is the smallest page estimate a domain needs to make the report
		MinIndexedPages int `env:"INDEX_MIN_PAGES" env-default:"1" yaml:"minIndexedPages"`
		// UseSearchFallback enables the web search engines when the archive abstains
		UseSearchFallback bool `env:"INDEX_USE_SEARCH_FALLBACK" env-default:"false" yaml:"useSearchFallback"`
	} `yaml:"index"`

	// UserAgent is sent on outbound feed and probe requests
	UserAgent string `env:"USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" yaml:"userAgent"` //nolint: lll

	// Reports contains settings for report persistence
	Reports struct {
		// Dir is the directory where generated reports are written
		Dir string `env:"REPORTS_DIR" env-default:"reports" yaml:"dir"`
	} `yaml:"reports"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
