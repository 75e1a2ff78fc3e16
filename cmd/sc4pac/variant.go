package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/sc4pac/sc4pac-core/pkg/sc4pac"
)

var variantCommand = cli.Command{
	Name:  "variant",
	Usage: "manage the configured global variant",
	Subcommands: []cli.Command{
		{
			Name:      "reset",
			Usage:     "forget the configured choice for the given variant keys (or all keys)",
			ArgsUsage: "[key...]",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "interactive, i", Usage: "re-resolve and confirm immediately"},
			},
			Action: runVariantReset,
		},
	},
}

func runVariantReset(cctx *cli.Context) error {
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	keys := cctx.Args()
	if len(keys) == 0 {
		if err := sess.ResetVariant(); err != nil {
			return err
		}
		fmt.Println("cleared the entire configured variant.")
	} else {
		v := sess.Config.Variant.Clone()
		for _, k := range keys {
			delete(v, k)
		}
		sess.Config.Variant = v
		if err := sess.SaveConfig(); err != nil {
			return err
		}
		fmt.Printf("cleared %d variant key(s).\n", len(keys))
	}

	if !cctx.Bool("interactive") {
		return nil
	}
	return runUpdateWith(ctx, sess, progress, true)
}
