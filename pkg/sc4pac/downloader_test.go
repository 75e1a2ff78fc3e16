package sc4pac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestDownloaderFetchesFullFile(t *testing.T) {
	const body = "hello world"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out")
	d := NewDownloader(srv.Client(), DownloaderOpts{})
	sum, err := d.Download(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if sum == "" {
		t.Error("expected a non-empty checksum")
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != body {
		t.Errorf("dest content = %q, want %q", got, body)
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("expected .part file to be renamed away on success")
	}
}

func TestDownloaderNotFoundIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out")
	d := NewDownloader(srv.Client(), DownloaderOpts{})
	_, err := d.Download(context.Background(), srv.URL, dest)
	var nfe *NotFoundError
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if !asNotFound(err, &nfe) {
		t.Errorf("Download() error = %v, want it to wrap *NotFoundError", err)
	}
}

func asNotFound(err error, target **NotFoundError) bool {
	for err != nil {
		if nfe, ok := err.(*NotFoundError); ok {
			*target = nfe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func TestDownloaderForbiddenIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out")
	d := NewDownloader(srv.Client(), DownloaderOpts{})
	_, err := d.Download(context.Background(), srv.URL, dest)
	if err == nil {
		t.Fatal("expected an error for a 403 response")
	}
}

func TestDownloaderSendsSessionCookie(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out")
	d := NewDownloader(srv.Client(), DownloaderOpts{SessionCookie: "sid=abc123"})
	if _, err := d.Download(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if gotCookie != "sid=abc123" {
		t.Errorf("Cookie header = %q, want sid=abc123", gotCookie)
	}
}

func TestDownloaderResumesFromPartialFile(t *testing.T) {
	full := make([]byte, int(OverlapBytes)*3)
	for i := range full {
		full[i] = byte('a' + i%26)
	}
	alreadyDownloaded := int(OverlapBytes) * 2

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rng := r.Header.Get("Range")
		if rng == "" {
			w.Write(full)
			return
		}
		start := parseRangeStart(rng)
		w.Header().Set("Content-Range", rangeHeaderFor(start, len(full)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(full[start:])
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out")
	partPath := dest + ".part"
	if err := os.WriteFile(partPath, full[:alreadyDownloaded], DefaultFileMode); err != nil {
		t.Fatalf("seed partial: %v", err)
	}

	d := NewDownloader(srv.Client(), DownloaderOpts{})
	_, err := d.Download(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != string(full) {
		t.Errorf("dest content length = %d, want %d (content mismatch after resume)", len(got), len(full))
	}
}

func TestDownloaderRestartsWhenServerIgnoresRange(t *testing.T) {
	full := make([]byte, int(OverlapBytes)*3)
	for i := range full {
		full[i] = byte('a' + i%26)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Ignore any Range header and always return 200 with the full body,
		// simulating a server that doesn't support resume.
		w.Write(full)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out")
	partPath := dest + ".part"
	if err := os.WriteFile(partPath, full[:int(OverlapBytes)*2], DefaultFileMode); err != nil {
		t.Fatalf("seed partial: %v", err)
	}

	d := NewDownloader(srv.Client(), DownloaderOpts{})
	_, err := d.Download(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != string(full) {
		t.Error("expected a full restart to reproduce the complete content")
	}
}

func parseRangeStart(header string) int {
	s := strings.TrimPrefix(header, "bytes=")
	s, _, _ = strings.Cut(s, "-")
	n, _ := strconv.Atoi(s)
	return n
}

func rangeHeaderFor(start, total int) string {
	return "bytes " + strconv.Itoa(start) + "-" + strconv.Itoa(total-1) + "/" + strconv.Itoa(total)
}
