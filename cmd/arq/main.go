// Command arq evaluates SPARQL SELECT queries over Turtle data and prints
// the solutions as a text table.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/arq/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()

	// Commands report their own failures as ExitErrors; anything else is a
	// flag or setup error cobra has not printed.
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(cli.GetExitCode(err))
}
