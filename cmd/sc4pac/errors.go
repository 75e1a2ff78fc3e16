package main

import (
	"errors"
	"fmt"

	"github.com/sc4pac/sc4pac-core/pkg/sc4pac"
)

// isExpectedFailure reports whether err is one of the taxonomy's "expected"
// kinds: aborted prompts, network/extraction/publish failures the
// command driver already knows how to describe in one line. Anything else is
// treated as a defect.
func isExpectedFailure(err error) bool {
	switch {
	case errors.Is(err, sc4pac.ErrAbort),
		errors.Is(err, sc4pac.ErrNotInteractive),
		errors.Is(err, sc4pac.ErrChannelsNotAvailable),
		errors.Is(err, sc4pac.ErrUnsatisfiableVariantConstraints),
		errors.Is(err, sc4pac.ErrStale),
		errors.Is(err, sc4pac.ErrLocked):
		return true
	}
	switch err.(type) {
	case *sc4pac.DownloadError,
		*sc4pac.ChecksumError,
		*sc4pac.VersionNotFoundError,
		*sc4pac.AssetNotFoundError,
		*sc4pac.ExtractionFailedError,
		*sc4pac.PublishWarning,
		*sc4pac.ForbiddenError,
		*sc4pac.UnauthorizedError,
		*sc4pac.NotFoundError:
		return true
	}
	return false
}

// exitCode maps err to the process exit code: 0 is handled by main never
// calling this for a nil error, 1 for expected failures, 2 for anything
// unrecognized.
func exitCode(err error) int {
	if isExpectedFailure(err) {
		return 1
	}
	return 2
}

// exitMessage renders err the way the command driver prints it before
// exiting: expected failures get the plain "Operation aborted." framing,
// everything else is flagged as a defect.
func exitMessage(err error) string {
	if isExpectedFailure(err) {
		return fmt.Sprintf("Operation aborted. %s", err.Error())
	}
	return fmt.Sprintf("internal error (defect): %s", err.Error())
}
