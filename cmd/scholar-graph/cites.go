// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-graph/internal/scholar"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

var citesCmd = &cobra.Command{
	Use:   "cites [cluster-id]",
	Short: "List the works citing a paper",
	Long: `Cites lists the works citing the paper with the given cluster id. The
citation page itself is the first level, so --depth values below 1 are
treated as 1. With --cite-html a saved citation page is read instead of
fetching the first level.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		htmlPath, _ := cmd.Flags().GetString("cite-html")

		depth := max(cfg.Crawl.Depth, 1)
		ctx := cmd.Context()
		client := newClient(cfg)

		var p types.Paper
		switch {
		case htmlPath != "" && len(args) > 0:
			return fmt.Errorf("--cite-html cannot be combined with a cluster id")
		case htmlPath != "":
			f, err := openHTML(htmlPath)
			if err != nil {
				return err
			}
			defer f.Close()
			page, err := scholar.ScrapeCitationPage(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", htmlPath, err)
			}
			p, err = client.ExpandCitationPage(ctx, page, depth, cfg.Crawl.MaxResults)
			if err != nil {
				return err
			}
		case len(args) == 1:
			id, err := parseClusterID(args[0])
			if err != nil {
				return err
			}
			page, err := client.Citations(ctx, types.Paper{ClusterID: id}, cfg.Crawl.MaxResults)
			if err != nil {
				return err
			}
			p, err = client.ExpandCitationPage(ctx, page, depth, cfg.Crawl.MaxResults)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("provide a cluster id or --cite-html")
		}
		return writeResults(cmd.OutOrStdout(), cfg, []types.Paper{p})
	},
}

func init() {
	citesCmd.Flags().String("cite-html", "", "read a saved citation page instead of fetching")

	rootCmd.AddCommand(citesCmd)
}
