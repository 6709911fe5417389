// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape extracts papers from Scholar result pages.
//
// Three page shapes are understood: a search listing, a citation page
// (a target header above a listing of citers), and a cluster page (a
// listing whose first entry is the cluster itself). Every extraction
// fails with ErrBadHTML when the page does not have the expected shape,
// so a layout change is never mistaken for an empty result.
package scrape

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

var (
	// ErrBadHTML is returned when a page lacks the structure extraction needs.
	ErrBadHTML = errors.New("unexpected page structure")

	// ErrBlocked is returned when the page is an anti-automation interstitial.
	ErrBlocked = errors.New("blocked by anti-automation check")
)

const (
	resultsSelector = "#gs_res_ccl_mid"
	resultSelector  = ".gs_ri"
	titleSelector   = ".gs_rt"
	bylineSelector  = ".gs_a"
	footerSelector  = ".gs_fl"
	headerSelector  = "#gs_rt_hdr"
)

// blockedSelector matches the captcha markers of both the Scholar
// interstitial and the generic Google "unusual traffic" page.
const blockedSelector = "#gs_captcha_ccl, #gs_captcha_f, #captcha-form, #recaptcha, .g-recaptcha"

// yearPattern finds a publication year in a byline such as
// "A Author, B Author - Journal, 2000 - publisher". Separators may use
// non-breaking spaces.
var yearPattern = regexp.MustCompile(`.*[\s\p{Z}]-[\s\p{Z}].*((?:18|19|20)\d{2})(?:[\s\p{Z}]-[\s\p{Z}].+)?`)

var (
	footerLinkPattern = regexp.MustCompile(`(cluster|cites)=`)
	digitsPattern     = regexp.MustCompile(`\d+`)
)

// CitationPage is the content of a "cited by" page.
type CitationPage struct {
	Target types.Paper
	Citers []types.Paper
}

// Parse builds a document tree from r. The HTML parser recovers from
// malformed markup, so an error here means the reader itself failed.
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing document: %v", ErrBadHTML, err)
	}
	return doc, nil
}

// Load parses a fetched page and rejects anti-automation interstitials
// before any extraction is attempted.
func Load(page string) (*goquery.Document, error) {
	doc, err := Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	if IsBlocked(doc) {
		return nil, ErrBlocked
	}
	return doc, nil
}

// IsBlocked reports whether doc is a captcha or "unusual traffic" page.
func IsBlocked(doc *goquery.Document) bool {
	return doc.Find(blockedSelector).Length() > 0
}

// ExtractPapers returns every result of a listing page in page order.
// A missing results container is ErrBadHTML; an empty one is an empty list.
func ExtractPapers(doc *goquery.Document) ([]types.Paper, error) {
	container := doc.Find(resultsSelector)
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: no results container", ErrBadHTML)
	}

	papers := []types.Paper{}
	var extractErr error
	container.Find(resultSelector).EachWithBreak(func(i int, block *goquery.Selection) bool {
		p, err := ExtractPaper(block)
		if err != nil {
			extractErr = fmt.Errorf("result %d: %w", i+1, err)
			return false
		}
		papers = append(papers, p)
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}
	return papers, nil
}

// ExtractPaper reads one result block.
func ExtractPaper(block *goquery.Selection) (types.Paper, error) {
	var p types.Paper

	title, link, err := extractTitle(block)
	if err != nil {
		return p, err
	}
	p.Title = title
	p.Link = link

	if year, ok := extractYear(block); ok {
		p.Year = types.Uint32(year)
	}

	id, count, err := extractFooter(block)
	if err != nil {
		return p, err
	}
	p.ClusterID = id
	p.CitationCount = types.Uint32(count)
	return p, nil
}

// ExtractTarget reads the paper named in the header of a citation page.
// The target has no year and no citation count.
func ExtractTarget(doc *goquery.Document) (types.Paper, error) {
	var p types.Paper

	header := doc.Find(headerSelector).First()
	if header.Length() == 0 {
		return p, fmt.Errorf("%w: no citation header", ErrBadHTML)
	}
	h2 := header.ChildrenFiltered("h2").First()
	if h2.Length() == 0 {
		return p, fmt.Errorf("%w: citation header has no heading", ErrBadHTML)
	}

	var href string
	if a := h2.ChildrenFiltered("a").First(); a.Length() > 0 {
		p.Title = strings.TrimSpace(a.Text())
		href, _ = a.Attr("href")
	} else {
		// Unlinked target: the heading is bare text and the id comes from
		// the first cluster or cites link elsewhere in the header.
		p.Title = strings.TrimSpace(h2.Text())
		header.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			v, _ := a.Attr("href")
			if footerLinkPattern.MatchString(v) {
				href = v
				return false
			}
			return true
		})
	}
	if p.Title == "" {
		return p, fmt.Errorf("%w: empty target title", ErrBadHTML)
	}

	id, ok := types.ClusterIDFromURL(href)
	if !ok {
		return p, fmt.Errorf("%w: target href %q has no cluster id", ErrBadHTML, href)
	}
	p.ClusterID = id
	return p, nil
}

// ExtractCitationPage reads the target header and the listing of citers.
func ExtractCitationPage(doc *goquery.Document) (CitationPage, error) {
	target, err := ExtractTarget(doc)
	if err != nil {
		return CitationPage{}, err
	}
	citers, err := ExtractPapers(doc)
	if err != nil {
		return CitationPage{}, err
	}
	return CitationPage{Target: target, Citers: citers}, nil
}

// ExtractCluster reads the first result of a cluster page.
func ExtractCluster(doc *goquery.Document) (types.Paper, error) {
	container := doc.Find(resultsSelector)
	if container.Length() == 0 {
		return types.Paper{}, fmt.Errorf("%w: no results container", ErrBadHTML)
	}
	block := container.Find(resultSelector).First()
	if block.Length() == 0 {
		return types.Paper{}, fmt.Errorf("%w: cluster page has no result", ErrBadHTML)
	}
	return ExtractPaper(block)
}

// extractTitle prefers a linked title. Otherwise the title is the text of
// the title region with type tags such as [CITATION] (spans) removed.
func extractTitle(block *goquery.Selection) (title, link string, err error) {
	region := block.Find(titleSelector).First()
	if region.Length() == 0 {
		return "", "", fmt.Errorf("%w: no title region", ErrBadHTML)
	}

	if a := region.ChildrenFiltered("a").First(); a.Length() > 0 {
		if t := strings.TrimSpace(a.Text()); t != "" {
			href, _ := a.Attr("href")
			return t, href, nil
		}
	}

	var b strings.Builder
	region.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "span" {
			return
		}
		b.WriteString(c.Text())
	})
	if t := strings.TrimSpace(b.String()); t != "" {
		return t, "", nil
	}
	return "", "", fmt.Errorf("%w: empty title", ErrBadHTML)
}

// extractYear scans the byline text nodes in order and returns the first
// year found.
func extractYear(block *goquery.Selection) (uint32, bool) {
	for _, s := range textNodes(block.Find(bylineSelector)) {
		if y, ok := parseYear(s); ok {
			return y, true
		}
	}
	return 0, false
}

// extractFooter selects the first footer link carrying a cluster or cites
// parameter and reads the cluster id from its href and the citation count
// from its text.
func extractFooter(block *goquery.Selection) (uint64, uint32, error) {
	footer := block.Find(footerSelector).First()
	if footer.Length() == 0 {
		return 0, 0, fmt.Errorf("%w: no footer", ErrBadHTML)
	}

	var link *goquery.Selection
	var href string
	footer.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		v, _ := a.Attr("href")
		if footerLinkPattern.MatchString(v) {
			link, href = a, v
			return false
		}
		return true
	})
	if link == nil {
		return 0, 0, fmt.Errorf("%w: footer has no cluster link", ErrBadHTML)
	}

	id, ok := types.ClusterIDFromURL(href)
	if !ok {
		return 0, 0, fmt.Errorf("%w: footer href %q has no numeric id", ErrBadHTML, href)
	}
	count, ok := parseCitationCount(link.Text())
	if !ok {
		return 0, 0, fmt.Errorf("%w: footer link %q has no count", ErrBadHTML, strings.TrimSpace(link.Text()))
	}
	return id, count, nil
}

// parseYear returns the year in a byline fragment.
func parseYear(s string) (uint32, bool) {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	y, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(y), true
}

// parseCitationCount returns the first run of digits in s. The
// surrounding wording is localized and ignored.
func parseCitationCount(s string) (uint32, bool) {
	d := digitsPattern.FindString(s)
	if d == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(d, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// textNodes returns the data of every text node below sel in document order.
func textNodes(sel *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out = append(out, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}
