// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-graph CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const appName = "scholar-graph"

// logger is configured in the root PersistentPreRunE.
var logger = logrus.New()

// rootCmd is the base command for the scholar-graph CLI.
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Search Google Scholar and build citation graphs",
	Long: `scholar-graph searches Google Scholar, looks up clusters, and follows
"cited by" links to build a citation graph of configurable depth.

Results are printed as text, JSON, YAML, or Markdown. Saved result pages
can be read with --search-html and --cite-html instead of fetching.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(viper.GetBool("verbose"))
		if f := viper.ConfigFileUsed(); f != "" {
			logger.WithField("file", f).Debug("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := types.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./scholar-graph.yaml or $XDG_CONFIG_HOME/scholar-graph/scholar-graph.yaml)")
	flags.BoolP("verbose", "v", false, "log fetched URLs and pruned branches")
	flags.Duration("timeout", defaults.Fetch.Timeout, "HTTP request timeout")
	flags.String("user-agent", defaults.Fetch.UserAgent, "User-Agent header sent with requests")
	flags.Int("max-retries", defaults.Fetch.MaxRetries, "retries after an HTTP 429 response")
	flags.Int64("max-body-size", defaults.Fetch.MaxBodySize, "maximum response size in bytes")
	flags.IntP("depth", "d", defaults.Crawl.Depth, "citation levels to expand below each result")
	flags.IntP("max-results", "n", defaults.Crawl.MaxResults, "citers requested per citation page (1-10)")
	flags.Int("concurrency", defaults.Crawl.Concurrency, "citation pages fetched in parallel")
	flags.Bool("silent-prune", defaults.Crawl.SilentPrune, "drop failed citation branches without recording them")
	flags.StringP("output", "o", string(defaults.Output), "output format: text, json, yaml, markdown, csl")
	flags.Bool("json", false, "shorthand for --output json")

	for key, flag := range map[string]string{
		"verbose":       "verbose",
		"timeout":       "timeout",
		"user_agent":    "user-agent",
		"max_retries":   "max-retries",
		"max_body_size": "max-body-size",
		"depth":         "depth",
		"max_results":   "max-results",
		"concurrency":   "concurrency",
		"silent_prune":  "silent-prune",
		"output":        "output",
		"json":          "json",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
	}

	viper.SetEnvPrefix("SCHOLAR_GRAPH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintln(os.Stderr, "reading config:", err)
		}
	}
}

// setupLogger writes structured logs to stderr so stdout carries only results.
func setupLogger(verbose bool) {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
}

// loadConfig merges flags, environment, and the config file over the
// defaults and validates the result.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	cfg.Fetch.Timeout = viper.GetDuration("timeout")
	cfg.Fetch.UserAgent = viper.GetString("user_agent")
	cfg.Fetch.MaxRetries = viper.GetInt("max_retries")
	cfg.Fetch.MaxBodySize = viper.GetInt64("max_body_size")
	cfg.Crawl.Depth = viper.GetInt("depth")
	cfg.Crawl.MaxResults = viper.GetInt("max_results")
	cfg.Crawl.Concurrency = viper.GetInt("concurrency")
	cfg.Crawl.SilentPrune = viper.GetBool("silent_prune")
	cfg.Output = types.OutputFormat(viper.GetString("output"))
	if viper.GetBool("json") {
		cfg.Output = types.OutputJSON
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
