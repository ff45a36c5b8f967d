// Command apiserver runs the general applications HTTP API. It is
// "gaengine serve" packaged as its own binary for the API image.
package main

import (
	"os"

	"github.com/turtacn/civil-general-applications/internal/interfaces/cli"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	if err := cli.ExecuteArgs(append([]string{"serve"}, os.Args[1:]...)); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
