package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/esgo-lang/esgo/pkg/esgo"
	"github.com/spf13/cobra"
)

var (
	evalExpr string
	dumpAST  bool
	trace    bool
	asModule bool
	runAsync bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an esgo script or expression",
	Long: `Execute an ECMAScript program from a file or inline expression.

Examples:
  esgo run script.js
  esgo run -e "console.log('hello')"
  esgo run --dump-ast script.js
  esgo run --module app.mjs
  esgo run --async app.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline source instead of reading from a file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST instead of evaluating")
	runCmd.Flags().BoolVar(&trace, "trace", false, "print the final completion value after evaluating")
	runCmd.Flags().BoolVar(&asModule, "module", false, "evaluate as an ES module instead of a script")
	runCmd.Flags().BoolVar(&runAsync, "async", false, "drive EvalAsync and pump the microtask/macrotask queues to completion")
}

func runScript(_ *cobra.Command, args []string) error {
	src, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	if dumpAST {
		prog, perr := parseProgram(src, asModule)
		if perr != nil {
			return perr
		}
		fmt.Println(prog.String())
		return nil
	}

	var opts []esgo.Option
	if asModule {
		opts = append(opts, esgo.WithModuleResolver(fileModuleResolver(filename)), esgo.WithModuleLoader(fileModuleLoader))
	}
	engine, err := esgo.New(opts...)
	if err != nil {
		return err
	}

	var result *esgo.Result
	switch {
	case runAsync:
		result, err = engine.EvalAsync(context.Background(), src)
	case asModule:
		result, err = engine.EvalModule(src)
	default:
		result, err = engine.Eval(src)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("evaluation of %s failed", filename)
	}
	if trace || verbose {
		fmt.Printf("=> %v\n", result.Value)
	}
	return nil
}

// fileModuleResolver resolves a specifier against the directory of the
// importing module, or against the entry file's directory when there is
// no importer, the simplest resolution strategy a CLI needs (spec.md
// §4.8/§6's "resolver (specifier, importer) -> moduleId" collaborator).
// Absolute specifiers are returned unchanged.
func fileModuleResolver(entryFile string) func(specifier, importer string) (string, error) {
	entryDir := filepath.Dir(entryFile)
	return func(specifier, importer string) (string, error) {
		base := entryDir
		if importer != "" {
			base = filepath.Dir(importer)
		}
		if filepath.IsAbs(specifier) {
			return specifier, nil
		}
		return filepath.Join(base, specifier), nil
	}
}

// fileModuleLoader reads a resolved module id as a file path (spec.md
// §4.8/§6's "source loader moduleId -> source" collaborator).
func fileModuleLoader(moduleID string) (string, error) {
	content, err := os.ReadFile(moduleID)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
