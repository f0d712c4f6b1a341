package main

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/posthub/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "posthub: %v\n", err)
		os.Exit(cmd.GetExitCode(err))
	}
}
