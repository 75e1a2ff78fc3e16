// Command sc4pac is the thin CLI shell over the sc4pac-core resolve-stage-
// publish pipeline: flag parsing, interactive prompting, and progress
// rendering live here; every decision of substance is made by pkg/sc4pac.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"
)

var configPathFlag string

func defaultConfigPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, ".sc4pac", "sc4pac-plugins.json")
}

func main() {
	app := cli.NewApp()
	app.Name = "sc4pac"
	app.HelpName = "sc4pac"
	app.Usage = "a package manager for SimCity 4 plugins"
	app.UsageText = "sc4pac <command> [arguments...]"
	app.Version = "0.1.0"
	app.OnUsageError = usageErrorCallback
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "profile, p",
			Usage:       "path to the sc4pac-plugins.json profile to use",
			Value:       defaultConfigPath(),
			Destination: &configPathFlag,
		},
	}
	app.Commands = []cli.Command{
		addCommand,
		updateCommand,
		removeCommand,
		listCommand,
		infoCommand,
		searchCommand,
		variantCommand,
		channelCommand,
		serverCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sc4pac: %s\n", exitMessage(err))
		os.Exit(exitCode(err))
	}
}

func usageErrorCallback(ctx *cli.Context, err error, isSubcommand bool) error {
	fmt.Fprintf(os.Stderr, "%s: %s\n\n", ctx.App.HelpName, err.Error())
	return cli.ShowCommandHelp(ctx, ctx.Command.Name)
}
