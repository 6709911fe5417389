// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes papers and citation graphs for people and programs.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

// paperView is the serialized shape of a paper. It adds the derived
// citation URL and keeps unexpanded papers distinct from expanded ones
// with no citers.
type paperView struct {
	Title         string      `json:"title" yaml:"title"`
	ClusterID     uint64      `json:"cluster_id" yaml:"cluster_id"`
	Link          string      `json:"link,omitempty" yaml:"link,omitempty"`
	Year          *uint32     `json:"year,omitempty" yaml:"year,omitempty"`
	CitationCount *uint32     `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`
	CitationURL   string      `json:"citation_url" yaml:"citation_url"`
	Citers        *citersView `json:"citers,omitempty" yaml:"citers,omitempty"`
}

type citersView struct {
	Papers    []paperView           `json:"papers" yaml:"papers"`
	Truncated bool                  `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Failures  []types.BranchFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func newView(p types.Paper) paperView {
	v := paperView{
		Title:         p.Title,
		ClusterID:     p.ClusterID,
		Link:          p.Link,
		Year:          p.Year,
		CitationCount: p.CitationCount,
		CitationURL:   p.CitationURL(),
	}
	if p.Citers != nil {
		v.Citers = &citersView{
			Papers:    newViews(p.Citers.Papers),
			Truncated: p.Citers.Truncated,
			Failures:  p.Citers.Failures,
		}
	}
	return v
}

func newViews(papers []types.Paper) []paperView {
	out := make([]paperView, len(papers))
	for i, p := range papers {
		out[i] = newView(p)
	}
	return out
}

// Write renders papers in the given format.
func Write(w io.Writer, format types.OutputFormat, papers []types.Paper) error {
	switch format {
	case types.OutputText, "":
		return Text(w, papers)
	case types.OutputJSON:
		return JSON(w, papers)
	case types.OutputYAML:
		return YAML(w, papers)
	case types.OutputMarkdown:
		return Markdown(w, papers)
	case types.OutputCSL:
		return CSL(w, papers)
	default:
		return fmt.Errorf("%w: %q", types.ErrInvalidOutputFormat, format)
	}
}

// JSON writes papers as an indented JSON array.
func JSON(w io.Writer, papers []types.Paper) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newViews(papers))
}

// YAML writes papers as a YAML sequence.
func YAML(w io.Writer, papers []types.Paper) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newViews(papers)); err != nil {
		return err
	}
	return enc.Close()
}

// Text writes a human-readable listing. Expanded citers are indented
// under the paper they cite.
func Text(w io.Writer, papers []types.Paper) error {
	if len(papers) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	tw := &textWriter{w: w}
	for i, p := range papers {
		if i > 0 {
			tw.line(0, "")
		}
		tw.paper(0, strconv.Itoa(i+1)+".", p)
	}
	return tw.err
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) line(depth int, format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, strings.Repeat("    ", depth)+format+"\n", args...)
}

func (t *textWriter) paper(depth int, bullet string, p types.Paper) {
	heading := p.Title
	if p.Year != nil {
		heading += fmt.Sprintf(" (%d)", *p.Year)
	}
	t.line(depth, "%s %s", bullet, heading)

	meta := fmt.Sprintf("cluster %d", p.ClusterID)
	if p.CitationCount != nil {
		meta += fmt.Sprintf(", cited by %d", *p.CitationCount)
	}
	t.line(depth+1, "%s", meta)
	if p.Link != "" {
		t.line(depth+1, "%s", p.Link)
	}

	if p.Citers == nil {
		return
	}
	if len(p.Citers.Papers) == 0 && !p.Citers.Truncated {
		t.line(depth+1, "no citing works found")
	}
	for _, c := range p.Citers.Papers {
		t.paper(depth+1, "<-", c)
	}
	if p.Citers.Truncated {
		t.line(depth+1, "(%d citing work(s) omitted after errors)", len(p.Citers.Failures))
	}
}
