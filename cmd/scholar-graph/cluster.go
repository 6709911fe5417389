// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <cluster-id>",
	Short: "Look up a paper by cluster id",
	Long: `Cluster fetches the Scholar page for one cluster id and prints the paper
it stands for. With --depth the paper is expanded into its citation graph.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		id, err := parseClusterID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client := newClient(cfg)

		p, err := client.LookupCluster(ctx, id)
		if err != nil {
			return err
		}
		p, err = client.ExpandCitations(ctx, p, cfg.Crawl.Depth, cfg.Crawl.MaxResults)
		if err != nil {
			return err
		}
		return writeResults(cmd.OutOrStdout(), cfg, []types.Paper{p})
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)
}
