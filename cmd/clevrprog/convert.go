package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [expr...]",
	Short: "Convert expression lines",
	Long: `Converts each argument as one program expression. Without arguments,
every non-blank line of standard input is converted. Failing lines are
reported on stderr and make the command exit non-zero.`,
	Example: `  clevrprog convert "(count (filter_shape (filter_color scene red) cube))"
  clevrprog convert --factor-attrs < programs.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, closeCache, err := buildPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer closeCache()

		lines := args
		if len(lines) == 0 {
			sc := bufio.NewScanner(cmd.InOrStdin())
			sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
			for sc.Scan() {
				if line := strings.TrimSpace(sc.Text()); line != "" {
					lines = append(lines, line)
				}
			}
			if err := sc.Err(); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		failed := 0
		for i, line := range lines {
			res, err := p.ProcessContext(cmd.Context(), line)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %v\n", i+1, err)
				continue
			}
			fmt.Fprintln(out, res)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d lines failed", failed, len(lines))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
