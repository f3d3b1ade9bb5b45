package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/clevrprog/internal/presentation/tui"
	"github.com/aretw0/clevrprog/pkg/sexpr"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <expr>",
	Short: "Show a converted expression as a table and a tree",
	Long: `Converts the expression and describes the result: node count, depth and
a table of every node with its kind and type, followed by an indented tree.
On a terminal the table is rendered as styled markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, title, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		markdown := tui.Summary(title, tree)
		profile := termenv.Ascii

		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			width, _, err := term.GetSize(int(f.Fd()))
			if err != nil {
				width = 0
			}
			render, err := tui.NewRenderer(width)
			if err != nil {
				return err
			}
			if markdown, err = render(markdown); err != nil {
				return err
			}
			profile = termenv.NewOutput(f).Profile
		}

		fmt.Fprint(out, markdown)
		fmt.Fprintln(out)
		return tui.PrintTree(out, tree, profile)
	},
}

// loadTree converts expr, or only parses it with --raw or --typed.
func loadTree(cmd *cobra.Command, expr string) (*sexpr.Node, string, error) {
	raw, _ := cmd.Flags().GetBool("raw")
	typed, _ := cmd.Flags().GetBool("typed")

	switch {
	case typed:
		tree, err := sexpr.ParseTyped(expr)
		return tree, "Typed expression", err
	case raw:
		tree, err := sexpr.Parse(expr)
		return tree, "Parsed expression", err
	}

	p, _, closeCache, err := buildPipeline(cmd.Context())
	if err != nil {
		return nil, "", err
	}
	defer closeCache()
	tree, err := p.Transform(expr)
	return tree, "Converted expression", err
}

func addTreeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("raw", false, "Only parse the expression, without converting it")
	cmd.Flags().Bool("typed", false, "Parse an already converted name:type expression")
}

func init() {
	addTreeFlags(inspectCmd)
	rootCmd.AddCommand(inspectCmd)
}
