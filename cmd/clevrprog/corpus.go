package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/clevrprog/internal/cli"
	"github.com/aretw0/clevrprog/pkg/corpus"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus <in> [out]",
	Short: "Convert a text corpus of sentence/expression pairs",
	Long: `Reads a corpus where each sentence line is followed by its program
expression, records separated by blank lines. Sentences are normalized
(lower-cased, "?" dropped, ";" replaced by " SEMI") and expressions
converted. Use "-" for standard input or output.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, closeIn, err := cli.OpenInput(args[0])
		if err != nil {
			return err
		}
		defer closeIn.Close()

		return runCorpus(cmd.Context(), cmd, corpus.NewTextReader(in), nil, outputArg(args))
	},
}

var clevrCmd = &cobra.Command{
	Use:   "clevr <questions.json> [out]",
	Short: "Convert the programs of a CLEVR questions file",
	Long: `Reads a CLEVR questions JSON file, turns every question's program into an
s-expression and converts it. In json and yaml output each question keeps
its other fields, with "program" replaced by "program_sexpr".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, closeIn, err := cli.OpenInput(args[0])
		if err != nil {
			return err
		}
		defer closeIn.Close()

		r, err := corpus.NewCLEVRReader(in)
		if err != nil {
			return err
		}
		app.logger.Debug("Questions loaded", "count", r.Len())
		return runCorpus(cmd.Context(), cmd, r, r.Info(), outputArg(args))
	},
}

func outputArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return "-"
}

func runCorpus(ctx context.Context, cmd *cobra.Command, src corpus.Source, info any, outPath string) error {
	sc := cli.NewSignalContext(ctx)
	defer sc.Cancel()

	p, _, closeCache, err := buildPipeline(sc)
	if err != nil {
		return err
	}
	defer closeCache()

	format, err := corpus.ParseFormat(app.cfg.OutputFormat)
	if err != nil {
		return err
	}
	driver, err := cli.NewDriver(app.cfg, p, app.logger)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outPath != "-" {
		f, closeOut, err := cli.CreateOutput(outPath)
		if err != nil {
			return err
		}
		defer closeOut.Close()
		w = f
	}
	sink, err := corpus.NewSink(format, w, info)
	if err != nil {
		return err
	}

	stats, err := driver.Run(sc, src, sink)
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	if sig := sc.Signal(); sig != nil {
		app.logger.Warn("Interrupted", "signal", sig.String(), "emitted", stats.Emitted)
	}
	if err != nil {
		return fmt.Errorf("corpus run failed after %d records: %w", stats.Emitted, err)
	}

	app.logger.Info("Corpus converted",
		"read", stats.Read,
		"too_long", stats.TooLong,
		"failed", stats.Failed,
		"emitted", stats.Emitted,
	)
	return nil
}

func addCorpusFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "Output format: plain, json or yaml (default from config: json)")
	cmd.Flags().Int("limit", 0, "Stop after this many records; 0 means no limit (default from config: 5)")
	cmd.Flags().Int("max-len", 0, "Drop sentences with more words; 0 means no limit")
	cmd.Flags().Int("workers", 0, "Concurrent conversions (default from config: 1)")
	cmd.Flags().String("on-error", "", "On a failing record: abort or skip (default from config: abort)")
}

func init() {
	addCorpusFlags(corpusCmd)
	addCorpusFlags(clevrCmd)
	rootCmd.AddCommand(corpusCmd, clevrCmd)
}
