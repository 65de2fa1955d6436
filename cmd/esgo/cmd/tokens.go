package cmd

import (
	"fmt"
	"os"

	"github.com/esgo-lang/esgo/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	tokensShowPos bool
	tokensEval    string
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream produced by the lexer",
	Long: `Run only the lexer over source text and print its token stream,
one token per line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&tokensShowPos, "pos", false, "show each token's line:column")
	tokensCmd.Flags().StringVarP(&tokensEval, "eval", "e", "", "tokenize inline source instead of reading from a file")
}

func runTokens(_ *cobra.Command, args []string) error {
	src, _, err := readSource(tokensEval, args)
	if err != nil {
		return err
	}
	l := lexer.New(src)
	count := 0
	for {
		tok := l.NextToken()
		count++
		if tokensShowPos {
			fmt.Printf("%-14s %q @%d:%d\n", tok.Type, tok.Literal, tok.Pos.Line, tok.Pos.Column)
		} else {
			fmt.Printf("%-14s %q\n", tok.Type, tok.Literal)
		}
		if tok.Type == lexer.EOF {
			break
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "total tokens: %d\n", count)
	}
	return nil
}
