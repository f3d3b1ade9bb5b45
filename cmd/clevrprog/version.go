package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/clevrprog"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of clevrprog",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clevrprog version %s\n", strings.TrimSpace(clevrprog.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
