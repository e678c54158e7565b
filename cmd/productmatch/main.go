// Command productmatch is a small CLI wrapper around the
// productmatch query engine. It is not part of the core library
// (spec.md §6 "No CLI is part of the core") — just a convenient way
// to drive it from a shell.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-productmatch/productmatch"
	"github.com/go-productmatch/productmatch/config"
	"github.com/go-productmatch/productmatch/grok"
)

var (
	grokFile           string
	configFile         string
	bestOnly           bool
	strictEqualKeyOnly bool
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "productmatch",
		Short: "Resolve loose identification terms against a CPE-derived product catalog",
	}
	root.PersistentFlags().StringVar(&grokFile, "data", "", "path to a grokked CPE JSON file (required)")
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to an optional engine config YAML file")
	root.MarkPersistentFlagRequired("data")

	root.AddCommand(newQueryCmd())
	return root
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [terms...]",
		Short: "Search the catalog for the product matching the given terms",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}
	cmd.Flags().BoolVar(&bestOnly, "best-only", true, "refine the result to a single best title")
	cmd.Flags().BoolVar(&strictEqualKeyOnly, "strict-equal-key-only", false, "only return exact trie hits")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	data, err := grok.LoadGrokkedFile(grokFile)
	if err != nil {
		return err
	}

	opts := config.Default()
	if configFile != "" {
		opts, err = config.Load(configFile)
		if err != nil {
			return err
		}
	}

	engine, err := productmatch.BuildWithOptions(data, opts)
	if err != nil {
		return err
	}

	searchOpts := []productmatch.SearchOption{
		productmatch.BestOnly(bestOnly),
		productmatch.StrictEqualKeyOnly(strictEqualKeyOnly),
	}
	result := engine.Search(args, searchOpts...)

	log.Info().Int("terms", len(args)).Int("matches", len(result)).Msg("search complete")
	for _, title := range result.Slice() {
		fmt.Println(title)
	}
	return nil
}
