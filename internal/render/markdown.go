// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

// Markdown writes one section per paper with a property table and, for
// expanded papers, a flattened table of the citation graph.
func Markdown(w io.Writer, papers []types.Paper) error {
	md := markdown.NewMarkdown(w)
	md.H1("Scholar Results")
	md.PlainText("")

	if len(papers) == 0 {
		md.Note("No results.")
		return md.Build()
	}

	for _, p := range papers {
		writePaperSection(md, p)
	}
	return md.Build()
}

func writePaperSection(md *markdown.Markdown, p types.Paper) {
	md.H2(escapeCell(p.Title))
	md.PlainText("")

	rows := [][]string{
		{"Cluster", strconv.FormatUint(p.ClusterID, 10)},
		{"Year", optional(p.Year)},
		{"Cited by", optional(p.CitationCount)},
		{"Citations", p.CitationURL()},
	}
	if p.Link != "" {
		rows = append(rows, []string{"Link", p.Link})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if p.Citers == nil {
		return
	}

	md.H3("Citation graph")
	md.PlainText("")
	var graph [][]string
	var failures []string
	flatten(p.Citers, 1, &graph, &failures)
	if len(graph) == 0 {
		md.PlainText("No citing works found.")
	} else {
		md.Table(markdown.TableSet{
			Header: []string{"Depth", "Title", "Year", "Cited by", "Cluster"},
			Rows:   graph,
		})
	}
	md.PlainText("")

	if len(failures) > 0 {
		md.Warningf("%d citing work(s) were omitted because their pages could not be read.", len(failures))
		md.PlainText("")
		md.BulletList(failures...)
		md.PlainText("")
	}
}

// flatten lists the graph in depth-first order.
func flatten(list *types.CiterList, depth int, rows *[][]string, failures *[]string) {
	for _, c := range list.Papers {
		*rows = append(*rows, []string{
			strconv.Itoa(depth),
			escapeCell(c.Title),
			optional(c.Year),
			optional(c.CitationCount),
			strconv.FormatUint(c.ClusterID, 10),
		})
		if c.Citers != nil {
			flatten(c.Citers, depth+1, rows, failures)
		}
	}
	for _, f := range list.Failures {
		*failures = append(*failures, fmt.Sprintf("%s (%d): %s", escapeCell(f.Title), f.ClusterID, f.Reason))
	}
}

func optional(v *uint32) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
