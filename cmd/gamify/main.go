// Command gamify tracks tasks and skill points from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/gamify/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
