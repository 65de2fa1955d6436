// Package cmd is the cobra command tree for the esgo CLI: root, run,
// parse, tokens, and version subcommands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "esgo",
	Short: "esgo ECMAScript interpreter",
	Long: `esgo is a tree-walking interpreter for a large subset of
ECMAScript (through ES2023): lexer, parser, evaluator, generators and
async/await, a RegExp facade, and an ES module loader, embeddable as a
library via pkg/esgo.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
