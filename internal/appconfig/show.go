// internal/appconfig/show.go
package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}
	if cfg == nil {
		return
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Host URL:        %s\n", cfg.HostURL)
	fmt.Fprintf(out, "  Model:           %s\n", cfg.Model)
	if cfg.Questions > 0 {
		fmt.Fprintf(out, "  Questions:       %d\n", cfg.Questions)
	}
	if cfg.Temperature != nil {
		fmt.Fprintf(out, "  Temperature:     %v\n", *cfg.Temperature)
	}
	if cfg.ConfidenceThreshold != nil {
		fmt.Fprintf(out, "  Confidence:      %v\n", *cfg.ConfidenceThreshold)
	}
	fmt.Fprintf(out, "  Context Window:  %d\n", cfg.ContextWindow())
	fmt.Fprintf(out, "  Workers:         %d\n", cfg.WorkerCount())
	fmt.Fprintf(out, "  Datasets:        %s\n", cfg.DatasetPath("<suite>"))
	fmt.Fprintf(out, "  Results Dir:     %s\n", cfg.ResultsDirPath())
	fmt.Fprintf(out, "  History DB:      %s\n", cfg.HistoryDBPath())
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  TUI:             %v\n", cfg.TUI)
}
