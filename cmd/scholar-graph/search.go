// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-graph/internal/query"
	"github.com/pdiddy/scholar-graph/internal/scholar"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search Scholar and optionally expand citations",
	Long: `Search runs an advanced Scholar search by words, exact phrase, and
authors. With --depth each result is expanded into its citation graph.
With --search-html a saved result page is read instead of fetching.`,
	Example: `  scholar-graph search --phrase "quantum theory" --authors "albert einstein"
  scholar-graph search -w "renormalization group" --title-only -d 1 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		words, _ := cmd.Flags().GetString("words")
		phrase, _ := cmd.Flags().GetString("phrase")
		authors, _ := cmd.Flags().GetString("authors")
		titleOnly, _ := cmd.Flags().GetBool("title-only")
		count, _ := cmd.Flags().GetInt("count")
		htmlPath, _ := cmd.Flags().GetString("search-html")

		ctx := cmd.Context()
		client := newClient(cfg)

		var papers []types.Paper
		if htmlPath != "" {
			if words != "" || phrase != "" || authors != "" {
				return fmt.Errorf("--search-html cannot be combined with --words, --phrase, or --authors")
			}
			f, err := openHTML(htmlPath)
			if err != nil {
				return err
			}
			defer f.Close()
			papers, err = scholar.ScrapeSearchPage(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", htmlPath, err)
			}
		} else {
			q := query.SearchQuery{
				Words:      words,
				Phrase:     phrase,
				Authors:    authors,
				TitleOnly:  titleOnly,
				MaxResults: count,
			}
			papers, err = client.Search(ctx, q)
			if err != nil {
				return err
			}
		}

		if cfg.Crawl.Depth > 0 {
			papers, err = client.ExpandAll(ctx, papers, cfg.Crawl.Depth, cfg.Crawl.MaxResults)
			if err != nil {
				return err
			}
		}
		return writeResults(cmd.OutOrStdout(), cfg, papers)
	},
}

func init() {
	searchCmd.Flags().StringP("words", "w", "", "words that must appear")
	searchCmd.Flags().StringP("phrase", "p", "", "exact phrase that must appear")
	searchCmd.Flags().StringP("authors", "a", "", "author names")
	searchCmd.Flags().BoolP("title-only", "t", false, "match only in titles")
	searchCmd.Flags().IntP("count", "c", types.DefaultResults, "number of search results (1-10)")
	searchCmd.Flags().String("search-html", "", "read a saved search result page instead of fetching")
	searchCmd.MarkFlagsMutuallyExclusive("words", "phrase")

	rootCmd.AddCommand(searchCmd)
}
