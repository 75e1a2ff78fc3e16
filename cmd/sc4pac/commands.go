package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/sc4pac/sc4pac-core/pkg/logger"
	"github.com/sc4pac/sc4pac-core/pkg/sc4pac"
)

func parseModuleRef(s string) (sc4pac.BareModule, error) {
	group, name, ok := strings.Cut(s, ":")
	if !ok || group == "" || name == "" {
		return sc4pac.BareModule{}, fmt.Errorf("invalid package reference %q, expected group:name", s)
	}
	return sc4pac.BareModule{Group: group, Name: name}, nil
}

func openSession(ctx context.Context, progress *sc4pac.ProgressReporter) (*sc4pac.Session, error) {
	handlers := progress.Handlers()
	log := logger.NewStandardLogger(stdlog.New(os.Stderr, "", stdlog.LstdFlags))
	return sc4pac.OpenSession(ctx, configPathFlag, newZipExtractor(), handlers, log)
}

var addCommand = cli.Command{
	Name:      "add",
	Usage:     "add packages to the explicit install set",
	ArgsUsage: "<group:name>...",
	Action:    runAdd,
}

func runAdd(cctx *cli.Context) error {
	if cctx.NArg() == 0 {
		return cli.ShowCommandHelp(cctx, "add")
	}
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	for _, arg := range cctx.Args() {
		mod, err := parseModuleRef(arg)
		if err != nil {
			return err
		}
		if err := sess.AddExplicit(mod); err != nil {
			return err
		}
		fmt.Printf("added %s\n", mod)
	}
	return nil
}

var removeCommand = cli.Command{
	Name:      "remove",
	Usage:     "remove packages from the explicit install set",
	ArgsUsage: "<group:name>...",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "interactive, i", Usage: "confirm before uninstalling anything no longer needed"},
	},
	Action: runRemove,
}

func runRemove(cctx *cli.Context) error {
	if cctx.NArg() == 0 {
		return cli.ShowCommandHelp(cctx, "remove")
	}
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	for _, arg := range cctx.Args() {
		mod, err := parseModuleRef(arg)
		if err != nil {
			return err
		}
		if err := sess.RemoveExplicit(mod); err != nil {
			return err
		}
	}
	return runUpdateWith(ctx, sess, progress, cctx.Bool("interactive"))
}

var updateCommand = cli.Command{
	Name:  "update",
	Usage: "resolve, fetch, and publish the current explicit set",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "y", Usage: "don't ask for confirmation before applying the plan"},
	},
	Action: runUpdate,
}

func runUpdate(cctx *cli.Context) error {
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()
	return runUpdateWith(ctx, sess, progress, !cctx.Bool("y"))
}

func runUpdateWith(ctx context.Context, sess *sc4pac.Session, progress *sc4pac.ProgressReporter, interactive bool) error {
	res, err := sess.Resolve(ctx, promptVariant(!interactive))
	if err != nil {
		return err
	}
	plan, lock, lockRaw, err := sess.Plan(res)
	if err != nil {
		return err
	}
	proceed, err := confirmPlan(plan, !interactive)
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}
	newLock, err := sess.Apply(ctx, res, plan, lock, lockRaw)
	progress.Wait()
	var warn *sc4pac.PublishWarning
	if errors.As(err, &warn) {
		fmt.Printf("warning: %s\n", warn.Error())
		err = nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("%d package(s) installed.\n", len(newLock.Installed))
	return nil
}

var listCommand = cli.Command{
	Name:   "list",
	Usage:  "list installed packages",
	Action: runList,
}

func runList(cctx *cli.Context) error {
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	lock, err := sess.Installed()
	if err != nil {
		return err
	}
	if len(lock.Installed) == 0 {
		fmt.Println("no packages installed.")
		return nil
	}
	for _, entry := range lock.Installed {
		fmt.Println(entry.Dep)
	}
	return nil
}

var infoCommand = cli.Command{
	Name:      "info",
	Usage:     "show metadata for a package",
	ArgsUsage: "<group:name>",
	Action:    runInfo,
}

func runInfo(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return cli.ShowCommandHelp(cctx, "info")
	}
	mod, err := parseModuleRef(cctx.Args().First())
	if err != nil {
		return err
	}
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	for _, repo := range sess.Repos {
		version, ok := repo.LatestVersion(mod)
		if !ok {
			continue
		}
		md, err := repo.FetchPackageMetadata(ctx, mod, version)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", mod, md.Version)
		fmt.Printf("  subfolder: %s\n", md.Subfolder)
		if md.Info.Summary != "" {
			fmt.Printf("  summary: %s\n", md.Info.Summary)
		}
		if md.Info.Website != "" {
			fmt.Printf("  website: %s\n", md.Info.Website)
		}
		if md.Info.Warning != "" {
			fmt.Printf("  warning: %s\n", md.Info.Warning)
		}
		return nil
	}
	return &sc4pac.VersionNotFoundError{Module: mod}
}

var searchCommand = cli.Command{
	Name:      "search",
	Usage:     "fuzzy-search the configured channels",
	ArgsUsage: "<text>",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "threshold", Usage: "minimum match score (0-100)", Value: 0},
	},
	Action: runSearch,
}

func runSearch(cctx *cli.Context) error {
	if cctx.NArg() == 0 {
		return cli.ShowCommandHelp(cctx, "search")
	}
	ctx := context.Background()
	progress := sc4pac.NewProgressReporter(os.Stdout)
	sess, err := openSession(ctx, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	query := strings.Join(cctx.Args(), " ")
	results, err := sess.SearchIndex.Search(ctx, query, cctx.Int("threshold"), 25)
	if err != nil {
		return err
	}
	for _, r := range results {
		kind := "module"
		if r.IsAsset {
			kind = "asset"
		}
		fmt.Printf("%3d  %s  (%s)  %s\n", r.Score, r.Module, kind, r.Summary)
	}
	return nil
}
