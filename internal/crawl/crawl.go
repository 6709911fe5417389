// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl expands papers into citation graphs.
//
// Expanding a paper fetches its citation page and attaches the citers in
// page order, recursing until the requested depth is used up. A failure
// on the seed's own page is returned to the caller. A failure anywhere
// below the seed removes only that citer from its parent's list; the
// rest of the graph is still built.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/scholar-graph/internal/fetch"
	"github.com/pdiddy/scholar-graph/internal/query"
	"github.com/pdiddy/scholar-graph/internal/scrape"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// PruneMode controls what a parent records about a citer whose expansion failed.
type PruneMode int

const (
	// PruneMark drops the citer and records it in the parent's
	// CiterList.Failures with Truncated set.
	PruneMark PruneMode = iota

	// PruneSilent drops the citer and records nothing.
	PruneSilent
)

// String returns the mode name used in configuration.
func (m PruneMode) String() string {
	switch m {
	case PruneMark:
		return "mark"
	case PruneSilent:
		return "silent"
	default:
		return fmt.Sprintf("PruneMode(%d)", int(m))
	}
}

// Crawler builds citation graphs from a page fetcher.
type Crawler struct {
	fetcher     fetch.Fetcher
	log         logrus.FieldLogger
	prune       PruneMode
	concurrency int
	sem         *semaphore.Weighted
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithPruneMode selects how failed branches are reported.
func WithPruneMode(m PruneMode) Option {
	return func(c *Crawler) { c.prune = m }
}

// WithConcurrency bounds the number of fetches in flight. Values below 2
// expand strictly sequentially in depth-first order.
func WithConcurrency(n int) Option {
	return func(c *Crawler) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

// WithLogger sets the logger for fetch and pruning events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Crawler) { c.log = l }
}

// New returns a Crawler that reads pages through f.
func New(f fetch.Fetcher, opts ...Option) *Crawler {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Crawler{
		fetcher:     f,
		log:         discard,
		prune:       PruneMark,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sem = semaphore.NewWeighted(int64(c.concurrency))
	return c
}

// Expand returns seed with its citation graph attached to depth levels.
// Each citation page requests maxResults citers, clamped to [1,10].
//
// With depth 0 the seed is returned unchanged and nothing is fetched.
// Errors fetching or reading the seed's own citation page are returned;
// failures below the seed prune the failing citer.
func (c *Crawler) Expand(ctx context.Context, seed types.Paper, depth, maxResults int) (types.Paper, error) {
	return c.expand(ctx, seed, depth, maxResults, 0)
}

// FetchCitations fetches and reads the citation page of p.
func (c *Crawler) FetchCitations(ctx context.Context, p types.Paper, maxResults int) (scrape.CitationPage, error) {
	u, err := query.NewCitationQuery(p, maxResults).URL()
	if err != nil {
		return scrape.CitationPage{}, err
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return scrape.CitationPage{}, err
	}
	c.log.WithFields(logrus.Fields{"cluster_id": p.ClusterID, "url": u}).Debug("fetching citation page")
	text, err := c.fetcher.Fetch(ctx, u)
	c.sem.Release(1)
	if err != nil {
		if ctx.Err() != nil {
			return scrape.CitationPage{}, ctx.Err()
		}
		if !errors.Is(err, fetch.ErrNetwork) {
			err = fmt.Errorf("%w: %w", fetch.ErrNetwork, err)
		}
		return scrape.CitationPage{}, fmt.Errorf("citations of %d: %w", p.ClusterID, err)
	}

	doc, err := scrape.Load(text)
	if err != nil {
		return scrape.CitationPage{}, fmt.Errorf("citations of %d: %w", p.ClusterID, err)
	}
	page, err := scrape.ExtractCitationPage(doc)
	if err != nil {
		return scrape.CitationPage{}, fmt.Errorf("citations of %d: %w", p.ClusterID, err)
	}
	return page, nil
}

// ExpandPage attaches the citers of an already loaded citation page to
// its target. The page is the first level, so citers are expanded
// depth-1 further levels; depth below 1 is treated as 1. Every citer is
// a descendant and is pruned on failure.
func (c *Crawler) ExpandPage(ctx context.Context, page scrape.CitationPage, depth, maxResults int) (types.Paper, error) {
	if depth < 1 {
		depth = 1
	}
	citers := c.expandCiters(ctx, page.Citers, depth-1, maxResults, 1)
	if err := ctx.Err(); err != nil {
		return page.Target, err
	}
	out := page.Target
	out.Citers = citers
	return out, nil
}

func (c *Crawler) expand(ctx context.Context, p types.Paper, remaining, maxResults, level int) (types.Paper, error) {
	if remaining <= 0 {
		return p, nil
	}

	page, err := c.FetchCitations(ctx, p, maxResults)
	if err != nil {
		return p, err
	}

	citers := c.expandCiters(ctx, page.Citers, remaining-1, maxResults, level+1)
	if err := ctx.Err(); err != nil {
		return p, err
	}

	out := p
	out.Citers = citers
	return out, nil
}

// expandCiters expands each citer and assembles the survivors in page order.
func (c *Crawler) expandCiters(ctx context.Context, citers []types.Paper, remaining, maxResults, level int) *types.CiterList {
	results := make([]types.Paper, len(citers))
	errs := make([]error, len(citers))

	if c.concurrency < 2 || remaining == 0 {
		for i, citer := range citers {
			results[i], errs[i] = c.expand(ctx, citer, remaining, maxResults, level)
		}
	} else {
		var g errgroup.Group
		for i, citer := range citers {
			i, citer := i, citer
			g.Go(func() error {
				results[i], errs[i] = c.expand(ctx, citer, remaining, maxResults, level)
				return nil
			})
		}
		_ = g.Wait() // errors are kept per citer
	}

	list := &types.CiterList{Papers: make([]types.Paper, 0, len(citers))}
	for i, citer := range citers {
		if errs[i] == nil {
			list.Papers = append(list.Papers, results[i])
			continue
		}
		if ctx.Err() != nil {
			continue
		}

		c.log.WithFields(logrus.Fields{
			"cluster_id": citer.ClusterID,
			"title":      citer.Title,
			"depth":      level,
			"error":      errs[i],
		}).Warn("pruned citation branch")

		if c.prune == PruneMark {
			list.Truncated = true
			list.Failures = append(list.Failures, types.BranchFailure{
				ClusterID: citer.ClusterID,
				Title:     citer.Title,
				Reason:    errs[i].Error(),
			})
		}
	}
	return list
}
