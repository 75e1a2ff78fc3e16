package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sc4pac/sc4pac-core/pkg/sc4pac"
)

// promptVariant is the interactive Prompter sc4pac.Session.Resolve calls
// whenever the Resolver raises a *MissingVariantError: it lists the
// alternatives and reads a numeric choice from stdin. Returns
// sc4pac.ErrNotInteractive without prompting when nonInteractive is set, and
// sc4pac.ErrAbort if the user types nothing or stdin cannot be read.
func promptVariant(nonInteractive bool) func(*sc4pac.MissingVariantError) (sc4pac.Variant, error) {
	reader := bufio.NewReader(os.Stdin)
	return func(mv *sc4pac.MissingVariantError) (sc4pac.Variant, error) {
		if nonInteractive {
			return nil, sc4pac.ErrNotInteractive
		}
		fmt.Printf("Package %s requires a choice for %q:\n", mv.Package, mv.Key)
		for i, alt := range mv.Alternatives {
			fmt.Printf("  %d. %s\n", i+1, alt)
		}
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, sc4pac.ErrAbort
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil, sc4pac.ErrAbort
		}
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(mv.Alternatives) {
			return nil, fmt.Errorf("invalid choice %q", line)
		}
		return sc4pac.Variant{mv.Key: mv.Alternatives[idx-1]}, nil
	}
}

// confirmPlan prints the update plan and asks for confirmation unless
// autoYes is set.
func confirmPlan(plan *sc4pac.UpdatePlan, autoYes bool) (bool, error) {
	if plan.IsUpToDate() {
		fmt.Println("All packages are already up to date.")
		return false, nil
	}
	fmt.Println("Update plan:")
	for _, d := range plan.ToInstall {
		fmt.Printf("  + %s\n", d)
	}
	for _, d := range plan.ToRemove {
		fmt.Printf("  - %s\n", d)
	}
	if autoYes {
		return true, nil
	}
	fmt.Print("Continue? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, sc4pac.ErrAbort
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}
