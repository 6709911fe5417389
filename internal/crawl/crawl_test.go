// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-graph/internal/fetch"
	"github.com/pdiddy/scholar-graph/internal/scrape"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// fakeScholar serves citation pages keyed by cluster id and records the
// order in which they were requested.
type fakeScholar struct {
	mu       sync.Mutex
	pages    map[uint64]string
	failures map[uint64]error
	fetched  []uint64
	urls     []string
}

func newFakeScholar() *fakeScholar {
	return &fakeScholar{pages: map[uint64]string{}, failures: map[uint64]error{}}
}

func (f *fakeScholar) Fetch(_ context.Context, url string) (string, error) {
	id, ok := types.ClusterIDFromURL(url)
	if !ok {
		return "", fmt.Errorf("%w: unexpected url %s", fetch.ErrNetwork, url)
	}

	f.mu.Lock()
	f.fetched = append(f.fetched, id)
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	if err, ok := f.failures[id]; ok {
		return "", err
	}
	page, ok := f.pages[id]
	if !ok {
		return "", fmt.Errorf("%w: no page for %d", fetch.ErrNetwork, id)
	}
	return page, nil
}

func (f *fakeScholar) fetchedIDs() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.fetched...)
}

// cite registers the citation page of id listing the given citer ids.
func (f *fakeScholar) cite(id uint64, citers ...uint64) {
	f.pages[id] = citationPage(id, citers...)
}

func citationPage(id uint64, citers ...uint64) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><div id="gs_rt_hdr"><h2><a href="/scholar?cluster=%d">Paper %d</a></h2></div>`, id, id)
	b.WriteString(`<div id="gs_res_ccl_mid">`)
	for _, c := range citers {
		fmt.Fprintf(&b, `<div class="gs_ri"><h3 class="gs_rt"><a href="https://example.org/%d">Paper %d</a></h3>`, c, c)
		fmt.Fprintf(&b, `<div class="gs_a">Someone - Journal, 2001 - example.org</div>`)
		fmt.Fprintf(&b, `<div class="gs_fl"><a href="/scholar?cites=%d&amp;hl=en">Cited by %d</a></div></div>`, c, c%100)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func seed(id uint64) types.Paper {
	return types.Paper{Title: fmt.Sprintf("Paper %d", id), ClusterID: id}
}

func ids(papers []types.Paper) []uint64 {
	out := make([]uint64, len(papers))
	for i, p := range papers {
		out[i] = p.ClusterID
	}
	return out
}

func TestExpandDepthZero(t *testing.T) {
	f := newFakeScholar()
	f.cite(1, 2, 3)

	got, err := New(f).Expand(context.Background(), seed(1), 0, 5)
	require.NoError(t, err)
	assert.Equal(t, seed(1), got)
	assert.Nil(t, got.Citers)
	assert.Empty(t, f.fetchedIDs())
}

func TestExpandDepthOne(t *testing.T) {
	f := newFakeScholar()
	f.cite(1, 2, 3)

	got, err := New(f).Expand(context.Background(), seed(1), 1, 5)
	require.NoError(t, err)
	require.NotNil(t, got.Citers)
	assert.Equal(t, []uint64{2, 3}, ids(got.Citers.Papers))
	assert.False(t, got.Citers.Truncated)
	for _, c := range got.Citers.Papers {
		assert.Nil(t, c.Citers, "leaf %d must not be expanded", c.ClusterID)
	}
	assert.Equal(t, []uint64{1}, f.fetchedIDs())
	assert.Equal(t, []string{"https://scholar.google.com/scholar?cites=1&hl=en&num=5"}, f.urls)
}

func TestExpandDepthTwoOrder(t *testing.T) {
	f := newFakeScholar()
	f.cite(1, 2, 3)
	f.cite(2, 4, 5)
	f.cite(3, 6)

	got, err := New(f).Expand(context.Background(), seed(1), 2, 5)
	require.NoError(t, err)

	// Depth-first pre-order.
	assert.Equal(t, []uint64{1, 2, 3}, f.fetchedIDs())

	require.NotNil(t, got.Citers)
	assert.Equal(t, []uint64{2, 3}, ids(got.Citers.Papers))
	assert.Equal(t, []uint64{4, 5}, ids(got.Citers.Papers[0].Citers.Papers))
	assert.Equal(t, []uint64{6}, ids(got.Citers.Papers[1].Citers.Papers))
	assert.Nil(t, got.Citers.Papers[0].Citers.Papers[0].Citers)

	// Fields read from the listing survive expansion.
	c := got.Citers.Papers[0]
	assert.Equal(t, "Paper 2", c.Title)
	assert.Equal(t, "https://example.org/2", c.Link)
	assert.Equal(t, uint32(2001), *c.Year)
}

func TestExpandEmptyCiters(t *testing.T) {
	f := newFakeScholar()
	f.cite(1)

	got, err := New(f).Expand(context.Background(), seed(1), 3, 5)
	require.NoError(t, err)
	require.NotNil(t, got.Citers)
	assert.Empty(t, got.Citers.Papers)
	assert.True(t, got.Expanded())
}

func TestExpandRootFailureIsFatal(t *testing.T) {
	tests := []struct {
		name string
		page string
		err  error
		want error
	}{
		{"network", "", fmt.Errorf("%w: reset", fetch.ErrNetwork), fetch.ErrNetwork},
		{"untyped fetch error", "", errors.New("boom"), fetch.ErrNetwork},
		{"blocked", `<div id="gs_captcha_ccl"></div>`, nil, scrape.ErrBlocked},
		{"bad html", `<main>new layout</main>`, nil, scrape.ErrBadHTML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeScholar()
			if tt.err != nil {
				f.failures[1] = tt.err
			} else {
				f.pages[1] = tt.page
			}

			_, err := New(f).Expand(context.Background(), seed(1), 2, 5)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExpandPrunesFailingBranch(t *testing.T) {
	f := newFakeScholar()
	f.cite(1, 2, 3, 4)
	f.cite(2, 5)
	f.pages[3] = `<html><body><div id="gs_captcha_ccl"></div></body></html>`
	f.cite(4, 6)

	log, hook := test.NewNullLogger()
	got, err := New(f, WithLogger(log)).Expand(context.Background(), seed(1), 2, 5)
	require.NoError(t, err)

	require.NotNil(t, got.Citers)
	assert.Equal(t, []uint64{2, 4}, ids(got.Citers.Papers))
	assert.True(t, got.Citers.Truncated)
	require.Len(t, got.Citers.Failures, 1)
	assert.Equal(t, uint64(3), got.Citers.Failures[0].ClusterID)
	assert.Equal(t, "Paper 3", got.Citers.Failures[0].Title)
	assert.Contains(t, got.Citers.Failures[0].Reason, "anti-automation")

	assert.Equal(t, []uint64{5}, ids(got.Citers.Papers[0].Citers.Papers))
	assert.Equal(t, []uint64{6}, ids(got.Citers.Papers[1].Citers.Papers))

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, uint64(3), entry.Data["cluster_id"])
	assert.Equal(t, 1, entry.Data["depth"])
}

func TestExpandPruneSilent(t *testing.T) {
	f := newFakeScholar()
	f.cite(1, 2, 3)
	f.failures[2] = fmt.Errorf("%w: timeout", fetch.ErrNetwork)
	f.cite(3)

	got, err := New(f, WithPruneMode(PruneSilent)).Expand(context.Background(), seed(1), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, ids(got.Citers.Papers))
	assert.False(t, got.Citers.Truncated)
	assert.Empty(t, got.Citers.Failures)
}

func TestExpandDeepFailureStaysLocal(t *testing.T) {
	f := newFakeScholar()
	f.cite(1, 2)
	f.cite(2, 3, 4)
	f.pages[3] = `<main>broken</main>`
	f.cite(4)

	got, err := New(f).Expand(context.Background(), seed(1), 3, 5)
	require.NoError(t, err)

	assert.False(t, got.Citers.Truncated)
	child := got.Citers.Papers[0]
	assert.True(t, child.Citers.Truncated)
	assert.Equal(t, []uint64{4}, ids(child.Citers.Papers))
	assert.Equal(t, uint64(3), child.Citers.Failures[0].ClusterID)
}

func TestExpandClampsMaxResults(t *testing.T) {
	f := newFakeScholar()
	f.cite(1)

	_, err := New(f).Expand(context.Background(), seed(1), 1, 40)
	require.NoError(t, err)
	require.Len(t, f.urls, 1)
	assert.True(t, strings.HasSuffix(f.urls[0], "&num=10"), f.urls[0])
}

func TestExpandConcurrentKeepsOrder(t *testing.T) {
	f := newFakeScholar()
	f.cite(1, 10, 20, 30, 40, 50)
	for _, id := range []uint64{10, 20, 30, 40, 50} {
		f.cite(id, id+1, id+2)
	}
	f.failures[30] = fmt.Errorf("%w: reset", fetch.ErrNetwork)

	got, err := New(f, WithConcurrency(4)).Expand(context.Background(), seed(1), 2, 5)
	require.NoError(t, err)

	assert.Equal(t, []uint64{10, 20, 40, 50}, ids(got.Citers.Papers))
	for _, c := range got.Citers.Papers {
		assert.Equal(t, []uint64{c.ClusterID + 1, c.ClusterID + 2}, ids(c.Citers.Papers))
	}
	assert.ElementsMatch(t, []uint64{1, 10, 20, 30, 40, 50}, f.fetchedIDs())
}

// peakFetcher wraps a fetcher and records the most fetches seen in flight.
type peakFetcher struct {
	next     fetch.Fetcher
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (p *peakFetcher) Fetch(ctx context.Context, url string) (string, error) {
	p.mu.Lock()
	p.inFlight++
	p.peak = max(p.peak, p.inFlight)
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	time.Sleep(5 * time.Millisecond)
	return p.next.Fetch(ctx, url)
}

func TestExpandConcurrencyBoundsFetches(t *testing.T) {
	children := []uint64{10, 20, 30, 40, 50, 60, 70, 80}

	for _, n := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency=%d", n), func(t *testing.T) {
			f := newFakeScholar()
			f.cite(1, children...)
			for _, id := range children {
				f.cite(id, id+1, id+2)
				f.cite(id+1)
				f.cite(id+2)
			}
			pf := &peakFetcher{next: f}

			got, err := New(pf, WithConcurrency(n)).Expand(context.Background(), seed(1), 3, 10)
			require.NoError(t, err)
			assert.Equal(t, children, ids(got.Citers.Papers))
			assert.Len(t, f.fetchedIDs(), 1+len(children)*3)
			assert.LessOrEqual(t, pf.peak, n)
			assert.GreaterOrEqual(t, pf.peak, 1)
		})
	}
}

func TestExpandCancelledContextIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	f := newFakeScholar()
	f.cite(1, 2, 3)
	wrapped := fetch.FetcherFunc(func(c context.Context, url string) (string, error) {
		page, err := f.Fetch(c, url)
		if id, _ := types.ClusterIDFromURL(url); id == 2 {
			cancel()
		}
		if c.Err() != nil {
			return "", c.Err()
		}
		return page, err
	})

	_, err := New(wrapped).Expand(ctx, seed(1), 2, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPruneModeString(t *testing.T) {
	assert.Equal(t, "mark", PruneMark.String())
	assert.Equal(t, "silent", PruneSilent.String())
	assert.Equal(t, "PruneMode(7)", PruneMode(7).String())
}

func TestExpandPage(t *testing.T) {
	f := newFakeScholar()
	f.cite(2, 4)
	f.failures[3] = fmt.Errorf("%w: reset", fetch.ErrNetwork)

	page := scrape.CitationPage{
		Target: seed(1),
		Citers: []types.Paper{seed(2), seed(3)},
	}

	got, err := New(f).ExpandPage(context.Background(), page, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, ids(got.Citers.Papers))
	assert.Empty(t, f.fetchedIDs())

	got, err = New(f).ExpandPage(context.Background(), page, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, ids(got.Citers.Papers))
	assert.Equal(t, []uint64{4}, ids(got.Citers.Papers[0].Citers.Papers))
	assert.True(t, got.Citers.Truncated)
}
