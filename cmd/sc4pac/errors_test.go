package main

import (
	"errors"
	"testing"

	"github.com/sc4pac/sc4pac-core/pkg/sc4pac"
)

func TestIsExpectedFailureSentinelErrors(t *testing.T) {
	cases := []error{
		sc4pac.ErrAbort,
		sc4pac.ErrNotInteractive,
		sc4pac.ErrChannelsNotAvailable,
		sc4pac.ErrUnsatisfiableVariantConstraints,
		sc4pac.ErrStale,
		sc4pac.ErrLocked,
	}
	for _, err := range cases {
		if !isExpectedFailure(err) {
			t.Errorf("isExpectedFailure(%v) = false, want true", err)
		}
	}
}

func TestIsExpectedFailureTypedErrors(t *testing.T) {
	cases := []error{
		&sc4pac.DownloadError{URL: "x", Cause: errors.New("boom")},
		&sc4pac.ChecksumError{URL: "x"},
		&sc4pac.VersionNotFoundError{},
		&sc4pac.AssetNotFoundError{},
		&sc4pac.ExtractionFailedError{Cause: errors.New("boom")},
		&sc4pac.PublishWarning{},
		&sc4pac.ForbiddenError{},
		&sc4pac.UnauthorizedError{},
		&sc4pac.NotFoundError{},
	}
	for _, err := range cases {
		if !isExpectedFailure(err) {
			t.Errorf("isExpectedFailure(%T) = false, want true", err)
		}
	}
}

func TestIsExpectedFailureUnrecognizedErrorIsDefect(t *testing.T) {
	if isExpectedFailure(errors.New("something unrelated")) {
		t.Error("isExpectedFailure(unrelated) = true, want false")
	}
}

func TestExitCodeMapsExpectedAndUnexpected(t *testing.T) {
	if got := exitCode(sc4pac.ErrAbort); got != 1 {
		t.Errorf("exitCode(ErrAbort) = %d, want 1", got)
	}
	if got := exitCode(errors.New("unrelated")); got != 2 {
		t.Errorf("exitCode(unrelated) = %d, want 2", got)
	}
}

func TestExitMessageDistinguishesDefects(t *testing.T) {
	expected := exitMessage(sc4pac.ErrAbort)
	unexpected := exitMessage(errors.New("nil pointer somewhere"))
	if expected == unexpected {
		t.Error("expected distinct messages for expected vs. unexpected failures")
	}
}
