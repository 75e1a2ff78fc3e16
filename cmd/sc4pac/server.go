package main

import (
	"fmt"

	"github.com/urfave/cli"
)

// serverCommand exists for CLI surface parity with the GUI front-end's
// expectations, but the HTTP API server itself is an external collaborator
// this core does not implement: the GUI talks to sc4pac-core through this
// process's stdout/stderr and exit code, not a long-running HTTP endpoint.
var serverCommand = cli.Command{
	Name:  "server",
	Usage: "not implemented: the HTTP API server lives outside sc4pac-core",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "port", Value: 51515},
		cli.StringFlag{Name: "profiles-dir"},
	},
	Action: runServer,
}

func runServer(cctx *cli.Context) error {
	return fmt.Errorf("server mode is not implemented by sc4pac-core; drive the CLI subcommands directly or wire up a separate API process")
}
