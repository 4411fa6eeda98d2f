// internal/commands/report.go
package medbench

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/medbench/internal/report"
	"github.com/mwiater/medbench/internal/suite"
)

var reportSuite string

// reportCmd implements 'report <file>', which recomputes and prints the
// summary dashboard from a saved result log.
var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Print the summary dashboard for a saved result log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		suiteName := reportSuite
		if suiteName == "" {
			suiteName = suiteFromFilename(path)
		}
		s, err := suite.Lookup(suiteName)
		if err != nil {
			return fmt.Errorf("cannot tell which suite %q belongs to; pass --suite: %w", path, err)
		}

		items, err := report.ReadLog(path)
		if err != nil {
			return err
		}

		summary := report.Summarize(items, s.Space)
		report.Print(cmd.OutOrStdout(), s.Name, "", summary)
		return nil
	},
}

// suiteFromFilename recovers the suite name from a result log filename such
// as "pubmedqa_T06_C75.json".
func suiteFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.Index(base, "_T"); i > 0 {
		return base[:i]
	}
	return base
}

func init() {
	reportCmd.Flags().StringVar(&reportSuite, "suite", "", "suite the result log belongs to (default: inferred from the filename)")
	rootCmd.AddCommand(reportCmd)
}
