// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pdiddy/scholar-graph/internal/fetch"
	"github.com/pdiddy/scholar-graph/internal/render"
	"github.com/pdiddy/scholar-graph/internal/scholar"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// newFetcher is swapped by tests to serve canned pages.
var newFetcher = func(cfg types.FetchConfig) fetch.Fetcher {
	return fetch.NewHTTPFetcher(cfg, logger)
}

func newClient(cfg types.Config) *scholar.Client {
	return scholar.NewClient(newFetcher(cfg.Fetch), cfg.Crawl, logger)
}

func writeResults(w io.Writer, cfg types.Config, papers []types.Paper) error {
	return render.Write(w, cfg.Output, papers)
}

func parseClusterID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cluster id %q: must be a non-negative integer", s)
	}
	return id, nil
}

func openHTML(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}
