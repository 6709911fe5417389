// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns search, cluster, and citation requests into Scholar
// URLs. Building a URL never touches the network.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

// ErrInvalidQuery is returned when a query cannot produce a URL.
var ErrInvalidQuery = errors.New("invalid query")

// Query is anything that can be rendered to a fetchable URL.
type Query interface {
	URL() (string, error)
}

// SearchQuery describes an advanced-search request.
//
// Phrase and Words share the words parameter: a non-blank Phrase replaces
// Words with the quoted phrase. The setters and appenders fold Phrase into
// Words so later terms accumulate after it. At least one of Words, Phrase, or Authors
// must be non-blank. A zero MaxResults selects the default of 5; anything
// else is clamped to [1,10].
type SearchQuery struct {
	Words      string
	Phrase     string
	Authors    string
	TitleOnly  bool
	MaxResults int
}

// SetWords replaces the free-text terms and clears any phrase.
func (q *SearchQuery) SetWords(words string) {
	q.Words, q.Phrase = words, ""
}

// SetPhrase replaces the free-text terms with an exact phrase.
func (q *SearchQuery) SetPhrase(phrase string) {
	q.Words, q.Phrase = quote(phrase), ""
}

// AppendWords adds space-separated terms to the words parameter.
func (q *SearchQuery) AppendWords(words string) {
	q.Words, q.Phrase = joinNonEmpty(q.Terms(), words), ""
}

// AppendPhrase adds an exact phrase to the words parameter in quotes.
func (q *SearchQuery) AppendPhrase(phrase string) {
	q.Words, q.Phrase = joinNonEmpty(q.Terms(), quote(phrase)), ""
}

// AppendAuthors adds another author name to the authors parameter.
func (q *SearchQuery) AppendAuthors(authors string) {
	q.Authors = joinNonEmpty(q.Authors, authors)
}

// Terms returns the effective words parameter with the phrase folded in.
func (q SearchQuery) Terms() string {
	if phrase := quote(q.Phrase); phrase != "" {
		return phrase
	}
	return strings.TrimSpace(q.Words)
}

// Count returns the clamped result count that URL will request.
func (q SearchQuery) Count() int {
	return ClampResults(q.MaxResults)
}

// URL renders the advanced-search URL. Parameters are emitted in a fixed
// order so the same query always produces the same string.
func (q SearchQuery) URL() (string, error) {
	terms := q.Terms()
	authors := strings.TrimSpace(q.Authors)
	if terms == "" && authors == "" {
		return "", fmt.Errorf("%w: search needs words, a phrase, or authors", ErrInvalidQuery)
	}

	occt := "any"
	if q.TitleOnly {
		occt = "title"
	}

	var b strings.Builder
	b.WriteString(types.ScholarBase)
	b.WriteString("?as_q=")
	b.WriteString(escape(terms))
	b.WriteString("&as_epq=&as_eq=&as_occt=")
	b.WriteString(occt)
	b.WriteString("&as_sauthors=")
	b.WriteString(escape(authors))
	b.WriteString("&as_publication=&as_ylo=&as_yhi=&as_vis=0&btnG=&hl=en&num=")
	fmt.Fprintf(&b, "%d", q.Count())
	b.WriteString("&as_sdt=0%2C5")
	return b.String(), nil
}

// ClusterQuery requests the page for a single cluster.
type ClusterQuery struct {
	ID uint64
}

// URL renders the cluster page URL. It cannot fail.
func (q ClusterQuery) URL() (string, error) {
	return types.ClusterURLForID(q.ID), nil
}

// CitationQuery requests a page of works citing the target of CitationURL.
// The locale and count are appended to the existing query string.
type CitationQuery struct {
	CitationURL string
	MaxResults  int
}

// NewCitationQuery builds the citation request for p.
func NewCitationQuery(p types.Paper, maxResults int) CitationQuery {
	return CitationQuery{CitationURL: p.CitationURL(), MaxResults: maxResults}
}

// URL renders the citation page URL. CitationURL must carry a cites= or
// cluster= parameter with a numeric id.
func (q CitationQuery) URL() (string, error) {
	base := strings.TrimSpace(q.CitationURL)
	if base == "" {
		return "", fmt.Errorf("%w: empty citation url", ErrInvalidQuery)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if _, ok := types.ClusterIDFromURL(u.RawQuery); !ok {
		return "", fmt.Errorf("%w: %q has no cites or cluster id", ErrInvalidQuery, base)
	}
	return fmt.Sprintf("%s&hl=en&num=%d", base, ClampResults(q.MaxResults)), nil
}

// ClampResults maps a requested result count into the accepted range.
// Zero selects the default.
func ClampResults(n int) int {
	switch {
	case n == 0:
		return types.DefaultResults
	case n < types.MinResults:
		return types.MinResults
	case n > types.MaxResults:
		return types.MaxResults
	}
	return n
}

// escape percent-encodes a query value, spelling spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// quote wraps a non-blank phrase in double quotes.
func quote(phrase string) string {
	if phrase = strings.TrimSpace(phrase); phrase != "" {
		return `"` + phrase + `"`
	}
	return ""
}

func joinNonEmpty(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
