package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/sc4pac/sc4pac-core/pkg/sc4pac"
)

var channelCommand = cli.Command{
	Name:  "channel",
	Usage: "manage the configured channel list",
	Subcommands: []cli.Command{
		{Name: "add", ArgsUsage: "<url>", Action: runChannelAdd},
		{Name: "remove", ArgsUsage: "<url>", Action: runChannelRemove},
		{Name: "list", Action: runChannelList},
		{Name: "build", Usage: "rebuild a channel's index from YAML sources (external tool)", Action: runChannelBuild},
	},
}

func runChannelAdd(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return cli.ShowCommandHelp(cctx, "add")
	}
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	url := cctx.Args().First()
	for _, existing := range sess.Config.Channels {
		if existing == url {
			fmt.Println("channel already configured.")
			return nil
		}
	}
	sess.Config.Channels = append(sess.Config.Channels, url)
	if err := sess.SaveConfig(); err != nil {
		return err
	}
	fmt.Printf("added channel %s (takes effect on next command).\n", url)
	return nil
}

func runChannelRemove(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return cli.ShowCommandHelp(cctx, "remove")
	}
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	url := cctx.Args().First()
	filtered := make([]string, 0, len(sess.Config.Channels))
	for _, existing := range sess.Config.Channels {
		if existing != url {
			filtered = append(filtered, existing)
		}
	}
	sess.Config.Channels = filtered
	return sess.SaveConfig()
}

func runChannelList(cctx *cli.Context) error {
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	for i, url := range sess.Config.Channels {
		fmt.Printf("%d. %s\n", i+1, url)
	}
	return nil
}

// runChannelBuild is a stub: the YAML-to-JSON channel build utility is an
// external collaborator (Non-goals) this core never implements.
func runChannelBuild(cctx *cli.Context) error {
	return fmt.Errorf("channel build is not part of sc4pac-core; use the separate channel-builder tool")
}
