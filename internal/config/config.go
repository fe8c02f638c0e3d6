// Package config loads the run configuration from defaults, an optional YAML
// file, a .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Pinned set sources.
const (
	PinnedSourceScrape  = "scrape"
	PinnedSourceGraphQL = "graphql"
)

const (
	DefaultUsername       = "exceptioncoding"
	DefaultOutput         = "data/github-data.json"
	DefaultMinifiedOutput = "dist/data/github-data.json"
	DefaultAPIBaseURL     = "https://api.github.com/"
	DefaultWebBaseURL     = "https://github.com"
	DefaultUserAgent      = "ExceptionCoding-Portfolio/1.0"
	DefaultMaxPages       = 100
	DefaultHTTPTimeout    = 30 * time.Second
)

// Environment variable names.
const (
	EnvUsername       = "GITHUB_USERNAME"
	EnvToken          = "GITHUB_TOKEN"
	EnvAPIBaseURL     = "GITHUB_API_URL"
	EnvWebBaseURL     = "GITHUB_WEB_URL"
	EnvOutput         = "PORTFOLIO_OUTPUT"
	EnvMinifiedOutput = "PORTFOLIO_MINIFIED_OUTPUT"
	EnvPinnedSource   = "PORTFOLIO_PINNED_SOURCE"
	EnvMaxPages       = "PORTFOLIO_MAX_PAGES"
	EnvHTTPTimeout    = "PORTFOLIO_HTTP_TIMEOUT"
)

// Config holds everything a run needs.
type Config struct {
	Username       string        `yaml:"username,omitempty"`
	Token          string        `yaml:"token,omitempty"`
	Output         string        `yaml:"output,omitempty"`
	MinifiedOutput string        `yaml:"minified_output,omitempty"`
	PinnedSource   string        `yaml:"pinned_source,omitempty"`
	MaxPages       int           `yaml:"max_pages,omitempty"`
	HTTPTimeout    time.Duration `yaml:"http_timeout,omitempty"`
	APIBaseURL     string        `yaml:"api_base_url,omitempty"`
	WebBaseURL     string        `yaml:"web_base_url,omitempty"`
	UserAgent      string        `yaml:"user_agent,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Username:       DefaultUsername,
		Output:         DefaultOutput,
		MinifiedOutput: DefaultMinifiedOutput,
		PinnedSource:   PinnedSourceScrape,
		MaxPages:       DefaultMaxPages,
		HTTPTimeout:    DefaultHTTPTimeout,
		APIBaseURL:     DefaultAPIBaseURL,
		WebBaseURL:     DefaultWebBaseURL,
		UserAgent:      DefaultUserAgent,
	}
}

// Load builds a Config. path is an optional YAML file; a missing .env file is
// not an error, a missing YAML file is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.overlay(&file)
	return nil
}

// overlay copies every non-zero field of o onto c.
func (c *Config) overlay(o *Config) {
	setString(&c.Username, o.Username)
	setString(&c.Token, o.Token)
	setString(&c.Output, o.Output)
	setString(&c.MinifiedOutput, o.MinifiedOutput)
	setString(&c.PinnedSource, o.PinnedSource)
	setString(&c.APIBaseURL, o.APIBaseURL)
	setString(&c.WebBaseURL, o.WebBaseURL)
	setString(&c.UserAgent, o.UserAgent)
	if o.MaxPages != 0 {
		c.MaxPages = o.MaxPages
	}
	if o.HTTPTimeout != 0 {
		c.HTTPTimeout = o.HTTPTimeout
	}
}

func (c *Config) mergeEnv() error {
	setString(&c.Username, os.Getenv(EnvUsername))
	setString(&c.Token, os.Getenv(EnvToken))
	setString(&c.Output, os.Getenv(EnvOutput))
	setString(&c.MinifiedOutput, os.Getenv(EnvMinifiedOutput))
	setString(&c.PinnedSource, os.Getenv(EnvPinnedSource))
	setString(&c.APIBaseURL, os.Getenv(EnvAPIBaseURL))
	setString(&c.WebBaseURL, os.Getenv(EnvWebBaseURL))

	if v := os.Getenv(EnvMaxPages); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxPages, v, err)
		}
		c.MaxPages = n
	}
	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvHTTPTimeout, v, err)
		}
		c.HTTPTimeout = d
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Username == "":
		return errors.New("username must not be empty")
	case c.Output == "":
		return errors.New("output path must not be empty")
	case c.MaxPages <= 0:
		return fmt.Errorf("max pages must be positive, got %d", c.MaxPages)
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	case c.PinnedSource != PinnedSourceScrape && c.PinnedSource != PinnedSourceGraphQL:
		return fmt.Errorf("unknown pinned source %q (want %q or %q)", c.PinnedSource, PinnedSourceScrape, PinnedSourceGraphQL)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
