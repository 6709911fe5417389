// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar is the entry point for searching Scholar and building
// citation graphs. A Client combines a page fetcher, the page extractors,
// and a crawler.
package scholar

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/scholar-graph/internal/crawl"
	"github.com/pdiddy/scholar-graph/internal/fetch"
	"github.com/pdiddy/scholar-graph/internal/query"
	"github.com/pdiddy/scholar-graph/internal/scrape"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// Client runs queries against Scholar through a Fetcher.
type Client struct {
	fetcher fetch.Fetcher
	crawler *crawl.Crawler
	log     logrus.FieldLogger
}

// NewClient returns a Client whose crawler follows cfg. A nil log
// discards output.
func NewClient(f fetch.Fetcher, cfg types.CrawlConfig, log logrus.FieldLogger) *Client {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	mode := crawl.PruneMark
	if cfg.SilentPrune {
		mode = crawl.PruneSilent
	}
	return &Client{
		fetcher: f,
		crawler: crawl.New(f,
			crawl.WithPruneMode(mode),
			crawl.WithConcurrency(cfg.Concurrency),
			crawl.WithLogger(log),
		),
		log: log,
	}
}

// Search runs q and returns the listing in page order.
func (c *Client) Search(ctx context.Context, q query.SearchQuery) ([]types.Paper, error) {
	doc, err := c.load(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	papers, err := scrape.ExtractPapers(doc)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return papers, nil
}

// LookupCluster returns the paper a cluster id stands for.
func (c *Client) LookupCluster(ctx context.Context, id uint64) (types.Paper, error) {
	doc, err := c.load(ctx, query.ClusterQuery{ID: id})
	if err != nil {
		return types.Paper{}, fmt.Errorf("cluster %d: %w", id, err)
	}
	p, err := scrape.ExtractCluster(doc)
	if err != nil {
		return types.Paper{}, fmt.Errorf("cluster %d: %w", id, err)
	}
	return p, nil
}

// Citations fetches one citation page of p without recursing.
func (c *Client) Citations(ctx context.Context, p types.Paper, maxResults int) (scrape.CitationPage, error) {
	return c.crawler.FetchCitations(ctx, p, maxResults)
}

// ExpandCitations returns seed with depth levels of citers attached.
func (c *Client) ExpandCitations(ctx context.Context, seed types.Paper, depth, maxResults int) (types.Paper, error) {
	return c.crawler.Expand(ctx, seed, depth, maxResults)
}

// ExpandAll expands every paper of a listing in order. Each paper is the
// seed of its own graph, so any seed failure aborts the whole call.
func (c *Client) ExpandAll(ctx context.Context, papers []types.Paper, depth, maxResults int) ([]types.Paper, error) {
	out := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		expanded, err := c.crawler.Expand(ctx, p, depth, maxResults)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

// ExpandCitationPage attaches the citers of a loaded citation page to its
// target, expanding them depth-1 further levels.
func (c *Client) ExpandCitationPage(ctx context.Context, page scrape.CitationPage, depth, maxResults int) (types.Paper, error) {
	return c.crawler.ExpandPage(ctx, page, depth, maxResults)
}

// ScrapeSearchPage reads a saved search listing.
func ScrapeSearchPage(r io.Reader) ([]types.Paper, error) {
	doc, err := readPage(r)
	if err != nil {
		return nil, err
	}
	return scrape.ExtractPapers(doc)
}

// ScrapeCitationPage reads a saved citation page.
func ScrapeCitationPage(r io.Reader) (scrape.CitationPage, error) {
	doc, err := readPage(r)
	if err != nil {
		return scrape.CitationPage{}, err
	}
	return scrape.ExtractCitationPage(doc)
}

func readPage(r io.Reader) (*goquery.Document, error) {
	doc, err := scrape.Parse(r)
	if err != nil {
		return nil, err
	}
	if scrape.IsBlocked(doc) {
		return nil, scrape.ErrBlocked
	}
	return doc, nil
}

// load builds the URL for q, fetches it, and rejects blocked pages.
func (c *Client) load(ctx context.Context, q query.Query) (*goquery.Document, error) {
	u, err := q.URL()
	if err != nil {
		return nil, err
	}
	c.log.WithField("url", u).Debug("fetching page")

	text, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, fetch.ErrNetwork) {
			err = fmt.Errorf("%w: %w", fetch.ErrNetwork, err)
		}
		return nil, err
	}
	return scrape.Load(text)
}
