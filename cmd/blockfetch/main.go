package main

import (
	"os"

	"github.com/blockfetch/blockfetch/internal/cli"
	"github.com/blockfetch/blockfetch/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the result to an exit code.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
