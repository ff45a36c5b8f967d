// Command worker consumes decision and HWF events from Kafka. It is
// "gaengine worker" packaged as its own binary for the worker image.
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

	if err := cli.ExecuteArgs(append([]string{"worker"}, os.Args[1:]...)); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
