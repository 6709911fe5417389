// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultResults, cfg.Crawl.MaxResults)
	assert.Equal(t, 1, cfg.Crawl.Concurrency)
	assert.Equal(t, 0, cfg.Fetch.MaxRetries)
	assert.False(t, cfg.Crawl.SilentPrune)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero timeout", func(c *Config) { c.Fetch.Timeout = 0 }, ErrInvalidTimeout},
		{"negative retries", func(c *Config) { c.Fetch.MaxRetries = -1 }, ErrInvalidRetries},
		{"negative depth", func(c *Config) { c.Crawl.Depth = -1 }, ErrInvalidDepth},
		{"zero results", func(c *Config) { c.Crawl.MaxResults = 0 }, ErrInvalidMaxResults},
		{"too many results", func(c *Config) { c.Crawl.MaxResults = 11 }, ErrInvalidMaxResults},
		{"zero concurrency", func(c *Config) { c.Crawl.Concurrency = 0 }, ErrInvalidConcurrency},
		{"bad output", func(c *Config) { c.Output = "xml" }, ErrInvalidOutputFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}
