// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// DefaultUserAgent mimics a desktop browser. Scholar serves a reduced page
// or an interstitial to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

// Result count bounds accepted by the search endpoint.
const (
	MinResults     = 1
	MaxResults     = 10
	DefaultResults = 5
)

// HTTPConfig holds shared HTTP settings for the page fetcher.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig configures the HTTP page fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRetries is the number of extra attempts after an HTTP 429.
	// Zero disables retrying.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxBodySize caps the number of bytes read from one response.
	MaxBodySize int64 `json:"max_body_size" yaml:"max_body_size"`
}

// CrawlConfig configures citation expansion.
type CrawlConfig struct {
	// Depth is how many citation levels to expand below each result.
	Depth int `json:"depth" yaml:"depth"`

	// MaxResults caps the citers requested per citation page, clamped to [1,10].
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Concurrency bounds in-flight fetches. 1 expands strictly sequentially.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// SilentPrune drops failed branches without recording them on the parent.
	SilentPrune bool `json:"silent_prune" yaml:"silent_prune"`
}

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	OutputText     OutputFormat = "text"
	OutputJSON     OutputFormat = "json"
	OutputYAML     OutputFormat = "yaml"
	OutputMarkdown OutputFormat = "markdown"
	OutputCSL      OutputFormat = "csl"
)

// Config is the complete runtime configuration of the CLI.
type Config struct {
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Crawl  CrawlConfig  `json:"crawl" yaml:"crawl"`
	Output OutputFormat `json:"output" yaml:"output"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: DefaultUserAgent,
			},
			MaxBodySize: 5 << 20,
		},
		Crawl: CrawlConfig{
			MaxResults:  DefaultResults,
			Concurrency: 1,
		},
		Output: OutputText,
	}
}

// Validate checks the configuration and returns the first problem found.
func (c Config) Validate() error {
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Fetch.Timeout)
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRetries, c.Fetch.MaxRetries)
	}
	if c.Crawl.Depth < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, c.Crawl.Depth)
	}
	if c.Crawl.MaxResults < MinResults || c.Crawl.MaxResults > MaxResults {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidMaxResults, c.Crawl.MaxResults, MinResults, MaxResults)
	}
	if c.Crawl.Concurrency < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.Crawl.Concurrency)
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML, OutputMarkdown, OutputCSL:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output)
	}
	return nil
}
