// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"io"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID     string   `yaml:"id"`
	Type   string   `yaml:"type"`
	Title  string   `yaml:"title"`
	URL    string   `yaml:"URL,omitempty"`
	Issued *CSLDate `yaml:"issued,omitempty"`
	Note   string   `yaml:"note,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CSL writes every paper of the graph once, in depth-first order, as a
// CSL-YAML list. Citation edges are not representable in CSL and are
// dropped; papers reached by more than one path appear once.
func CSL(w io.Writer, papers []types.Paper) error {
	var items []CSLItem
	seen := make(map[uint64]bool)
	var walk func([]types.Paper)
	walk = func(ps []types.Paper) {
		for _, p := range ps {
			if !seen[p.ClusterID] {
				seen[p.ClusterID] = true
				items = append(items, toCSLItem(p))
			}
			if p.Citers != nil {
				walk(p.Citers.Papers)
			}
		}
	}
	walk(papers)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(p types.Paper) CSLItem {
	item := CSLItem{
		ID:    "scholar-" + strconv.FormatUint(p.ClusterID, 10),
		Type:  "article",
		Title: p.Title,
		URL:   p.Link,
	}
	if p.Year != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{int(*p.Year)}}}
	}
	if p.CitationCount != nil {
		item.Note = "Cited by " + strconv.FormatUint(uint64(*p.CitationCount), 10)
	}
	return item
}
