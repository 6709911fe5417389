// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves result pages over HTTP.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"github.com/pdiddy/scholar-graph/internal/httputil"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// ErrNetwork is returned for transport failures and unusable responses.
var ErrNetwork = errors.New("network error")

// Fetcher retrieves the text of the page at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches pages with a browser-like User-Agent and decodes
// the body to UTF-8 using the declared or sniffed charset.
type HTTPFetcher struct {
	Client *http.Client
	Config types.FetchConfig
	Log    logrus.FieldLogger
}

// NewHTTPFetcher returns a fetcher whose client timeout comes from cfg.
func NewHTTPFetcher(cfg types.FetchConfig, log logrus.FieldLogger) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
		Log:    log,
	}
}

// Fetch issues a GET for url.
//
// Responses with status 403 or 429 are returned as text: Scholar answers
// automated traffic with a captcha page under these codes, and the caller
// classifies it. Every other non-2xx status is ErrNetwork.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrNetwork, err)
	}
	ua := f.Config.UserAgent
	if ua == "" {
		ua = types.DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	if f.Log != nil {
		f.Log.WithField("url", url).Debug("fetching")
	}

	resp, err := httputil.DoWithRetry(ctx, f.Client, req, f.Config.MaxRetries, f.Log)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusTooManyRequests:
	default:
		return "", fmt.Errorf("%w: %s returned HTTP %d", ErrNetwork, url, resp.StatusCode)
	}

	limit := f.Config.MaxBodySize
	if limit <= 0 {
		limit = types.DefaultConfig().Fetch.MaxBodySize
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}
	if int64(len(raw)) > limit {
		return "", fmt.Errorf("%w: body of %s exceeds %d bytes", ErrNetwork, url, limit)
	}

	r, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("%w: decoding body: %v", ErrNetwork, err)
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: decoding body: %v", ErrNetwork, err)
	}
	return string(text), nil
}
