package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/clevrprog"
	"github.com/aretw0/clevrprog/internal/cli"
	"github.com/aretw0/clevrprog/internal/config"
	"github.com/aretw0/clevrprog/internal/logging"
	"github.com/aretw0/clevrprog/pkg/catalog"
)

var rootCmd = &cobra.Command{
	Use:   "clevrprog",
	Short: "clevrprog converts CLEVR question programs into typed s-expressions",
	Long: `clevrprog rewrites CLEVR program s-expressions for semantic parser training:
filter chains are reversed to follow the sentence's surface order, attribute
operations are optionally factored into generic ones, and every symbol is
annotated with its type from an ontology.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default "+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().String("catalog", "", "Ontology file of symbol:type entries (default: built-in CLEVR ontology)")
	rootCmd.PersistentFlags().Bool("factor-attrs", false, "Factor attribute operations (filter_color -> filter color:a)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// app holds what every command shares once flags are parsed.
var app struct {
	cfg    config.Config
	logger *slog.Logger
}

// setup loads the configuration file and applies flag overrides.
func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	optional := path == ""
	if optional {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}

	if flags.Changed("catalog") {
		cfg.Catalog, _ = flags.GetString("catalog")
	}
	if flags.Changed("factor-attrs") {
		cfg.FactorAttrs, _ = flags.GetBool("factor-attrs")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if err := applyCommandFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	app.cfg = cfg
	app.logger = logging.New(level)
	return nil
}

// applyCommandFlags copies the corpus and server flags a command defines
// onto cfg when they were set.
func applyCommandFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"format":   &cfg.OutputFormat,
		"on-error": &cfg.OnError,
	}
	for name, dst := range stringFlags {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	intFlags := map[string]*int{
		"limit":   &cfg.Limit,
		"max-len": &cfg.MaxLen,
		"workers": &cfg.Workers,
		"port":    &cfg.HTTP.Port,
	}
	for name, dst := range intFlags {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			v, err := flags.GetInt(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}
	return nil
}

// buildPipeline loads the catalog and cache and assembles the pipeline.
// The returned function releases the cache.
func buildPipeline(ctx context.Context, extra ...clevrprog.Option) (*clevrprog.Pipeline, *catalog.Catalog, func() error, error) {
	types, err := cli.LoadCatalog(app.cfg.Catalog)
	if err != nil {
		return nil, nil, nil, err
	}
	cache, closeCache, err := cli.NewCache(ctx, app.cfg.Cache, app.logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if cache != nil {
		extra = append(extra, clevrprog.WithCache(cache))
	}

	p, err := cli.NewPipeline(app.cfg, types, app.logger, extra...)
	if err != nil {
		_ = closeCache()
		return nil, nil, nil, err
	}
	app.logger.Debug("Pipeline ready",
		"catalog", catalogName(app.cfg.Catalog),
		"symbols", types.Len(),
		"factor_attrs", p.FactorsAttributes(),
		"cache", app.cfg.Cache.Backend,
	)
	return p, types, closeCache, nil
}

func catalogName(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}
