// Command esgo is the CLI front-end for the esgo ECMAScript engine.
package main

import (
	"fmt"
	"os"

	"github.com/esgo-lang/esgo/cmd/esgo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
