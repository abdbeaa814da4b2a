package main

import (
	"fmt"
	"os"

	"github.com/roach88/logicflow/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "logicflow:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
