// Command bulletin is a caching client for a posts and notifications board.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/bulletin/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bulletin:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
