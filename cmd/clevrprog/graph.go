package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/clevrprog/internal/presentation/graph"
	"github.com/aretw0/clevrprog/pkg/sexpr"
)

var graphCmd = &cobra.Command{
	Use:   "graph <expr>",
	Short: "Export a program tree as a Mermaid diagram",
	Long:  `Converts the expression and outputs a Mermaid diagram (graph TD) of the resulting tree.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}

		names, _ := cmd.Flags().GetStringSlice("highlight")
		var overlay *graph.Overlay
		if len(names) > 0 {
			overlay = &graph.Overlay{}
			for _, name := range names {
				k, ok := sexpr.ParseKind(name)
				if !ok {
					return fmt.Errorf("unknown node kind %q", name)
				}
				overlay.Kinds = append(overlay.Kinds, k)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(tree, overlay))
		return nil
	},
}

func init() {
	addTreeFlags(graphCmd)
	graphCmd.Flags().StringSlice("highlight", nil, "Node kinds to highlight (e.g. filter,query)")
	rootCmd.AddCommand(graphCmd)
}
