package sc4pac

import (
	"strings"
	"testing"
)

func TestSanitizeFilenameStripsPathSeparators(t *testing.T) {
	got := sanitizeFilename("../../etc/passwd")
	if got != "passwd" {
		t.Errorf("sanitizeFilename(..) = %q, want passwd", got)
	}
}

func TestSanitizeFilenameReplacesInvalidCharacters(t *testing.T) {
	got := sanitizeFilename(`bad:name?.zip`)
	for _, c := range []string{":", "?"} {
		if strings.Contains(got, c) {
			t.Errorf("sanitizeFilename result %q still contains %q", got, c)
		}
	}
}

func TestSanitizeFilenameDecodesURLEscapes(t *testing.T) {
	got := sanitizeFilename("road%20pack.zip")
	if got != "road pack.zip" {
		t.Errorf("sanitizeFilename(encoded) = %q, want %q", got, "road pack.zip")
	}
}

func TestSanitizeFilenameEmptyOrDotFallsBackToDownload(t *testing.T) {
	for _, in := range []string{"", ".", ".."} {
		got := sanitizeFilename(in)
		if in == "" {
			if got != "" {
				t.Errorf("sanitizeFilename(%q) = %q, want empty passthrough", in, got)
			}
			continue
		}
		if got != "download" {
			t.Errorf("sanitizeFilename(%q) = %q, want download", in, got)
		}
	}
}
