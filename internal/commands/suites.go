// internal/commands/suites.go
package medbench

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/medbench/internal/suite"
)

// suitesCmd implements 'suites', which lists every registered benchmark suite.
var suitesCmd = &cobra.Command{
	Use:   "suites",
	Short: "List the available benchmark suites",
	Run: func(cmd *cobra.Command, args []string) {
		bold := color.New(color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Available suites:")
		for _, name := range suite.Names() {
			s, err := suite.Lookup(name)
			if err != nil {
				continue
			}
			gate := ""
			if s.Gated {
				gate = yellow(fmt.Sprintf("  [gated, threshold %v]", s.Threshold))
			}
			fmt.Fprintf(out, "  %-16s %s%s\n", bold(s.Name), s.Description, gate)
			fmt.Fprintf(out, "  %-16s answers: %s, temperature %v, %d questions\n", "", s.Space.String(), s.Temperature, s.Questions)
		}
	},
}

func init() {
	rootCmd.AddCommand(suitesCmd)
}
