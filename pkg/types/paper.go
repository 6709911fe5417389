// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the query builder,
// page extraction, the citation crawler, and the CLI.
package types

import (
	"fmt"
	"regexp"
	"strconv"
)

// ScholarBase is the search endpoint every generated URL starts from.
const ScholarBase = "https://scholar.google.com/scholar"

// clusterIDPattern matches the numeric payload of a cluster= or cites=
// query parameter inside an href.
var clusterIDPattern = regexp.MustCompile(`(cluster|cites)=(\d+)`)

// Paper is one scholarly work as it appears in a result listing.
//
// Link, Year, and CitationCount are optional: a Paper extracted from a
// citation page header carries no count, and listings without a linked
// title or a parseable byline leave Link and Year unset. Citers is nil
// until the paper has been expanded by the crawler.
type Paper struct {
	// Title is the visible title with any leading [CITATION]-style tag removed.
	Title string `json:"title" yaml:"title"`

	// ClusterID is the Scholar identifier grouping all versions of the work.
	ClusterID uint64 `json:"cluster_id" yaml:"cluster_id"`

	// Link is the outbound URL of the title anchor. Empty when unlinked.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// Year is the publication year parsed from the byline.
	Year *uint32 `json:"year,omitempty" yaml:"year,omitempty"`

	// CitationCount is the number from the "Cited by N" footer link.
	CitationCount *uint32 `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// Citers holds the expanded "cited by" list. Nil means not expanded.
	Citers *CiterList `json:"citers,omitempty" yaml:"citers,omitempty"`
}

// CitationURL returns the URL of the page listing works that cite p.
// It depends only on ClusterID.
func (p Paper) CitationURL() string {
	return CitationURLForID(p.ClusterID)
}

// Expanded reports whether the crawler attached a citer list to p.
func (p Paper) Expanded() bool {
	return p.Citers != nil
}

// CiterList is the result of expanding one paper. Papers keeps the order
// in which citers appeared on the citation page.
type CiterList struct {
	Papers []Paper `json:"papers" yaml:"papers"`

	// Truncated is set when at least one citer was dropped because its own
	// expansion failed. Failures names each dropped branch.
	Truncated bool            `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Failures  []BranchFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// BranchFailure records a citer that was pruned from the graph.
type BranchFailure struct {
	ClusterID uint64 `json:"cluster_id" yaml:"cluster_id"`
	Title     string `json:"title" yaml:"title"`
	Reason    string `json:"reason" yaml:"reason"`
}

// CitationURLForID builds the citation page URL for a cluster id.
func CitationURLForID(id uint64) string {
	return fmt.Sprintf("%s?cites=%d", ScholarBase, id)
}

// ClusterURLForID builds the cluster page URL for a cluster id.
func ClusterURLForID(id uint64) string {
	return fmt.Sprintf("%s?cluster=%d", ScholarBase, id)
}

// ClusterIDFromURL extracts the id carried by the first cluster= or cites=
// parameter in s. ok is false when no such parameter with a digit payload
// exists or the payload does not fit in 64 bits.
func ClusterIDFromURL(s string) (id uint64, ok bool) {
	m := clusterIDPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Uint32 returns a pointer to v. Used to fill optional Paper fields.
func Uint32(v uint32) *uint32 {
	return &v
}
