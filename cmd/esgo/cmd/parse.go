package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse source and print the AST without evaluating",
	Long: `Run the lexer and parser over source text and print the resulting
AST, without evaluating it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading from a file")
	parseCmd.Flags().BoolVar(&asModule, "module", false, "parse as an ES module instead of a script")
}

func runParse(_ *cobra.Command, args []string) error {
	src, _, err := readSource(parseEval, args)
	if err != nil {
		return err
	}
	prog, err := parseProgram(src, asModule)
	if err != nil {
		return err
	}
	fmt.Println(prog.String())
	return nil
}
