// cmd/medbench/main.go
package main

import (
	cmd "github.com/mwiater/medbench/internal/commands"
)

// Build-time variables injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the medbench CLI application by delegating to the
// cobra root command. It does not take any arguments and does not
// return a value.
func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
