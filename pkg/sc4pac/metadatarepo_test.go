package sc4pac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestChannel(t *testing.T, handlers map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := handlers[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
}

func TestMetadataRepositoryLoadsIndex(t *testing.T) {
	index := `{"packages":[
		{"group":"memo","name":"roads","version":"1.0","type":""},
		{"group":"memo","name":"roads-zip","version":"1.0","type":"sc4pac-asset"}
	]}`
	srv := newTestChannel(t, map[string]string{
		"/sc4pac-channel-contents.json": index,
	})
	defer srv.Close()

	cache := NewFileCache(t.TempDir(), srv.Client(), 0)
	repo, err := NewMetadataRepository(context.Background(), srv.URL, cache)
	if err != nil {
		t.Fatalf("NewMetadataRepository() error = %v", err)
	}

	if !repo.PublishesModule(BareModule{Group: "memo", Name: "roads"}) {
		t.Error("expected channel to publish memo:roads")
	}
	if !repo.PublishesAsset("roads-zip") {
		t.Error("expected channel to publish asset roads-zip")
	}
	if repo.PublishesModule(BareModule{Group: "memo", Name: "parks"}) {
		t.Error("did not expect memo:parks to be published")
	}
}

func TestMetadataRepositoryLatestVersionPicksHighest(t *testing.T) {
	index := `{"packages":[
		{"group":"memo","name":"roads","version":"1.0"},
		{"group":"memo","name":"roads","version":"2.0"},
		{"group":"memo","name":"roads","version":"1.5"}
	]}`
	srv := newTestChannel(t, map[string]string{
		"/sc4pac-channel-contents.json": index,
	})
	defer srv.Close()

	cache := NewFileCache(t.TempDir(), srv.Client(), 0)
	repo, err := NewMetadataRepository(context.Background(), srv.URL, cache)
	if err != nil {
		t.Fatalf("NewMetadataRepository() error = %v", err)
	}

	version, ok := repo.LatestVersion(BareModule{Group: "memo", Name: "roads"})
	if !ok || version != "2.0" {
		t.Errorf("LatestVersion() = %q, %v, want 2.0, true", version, ok)
	}
}

func TestMetadataRepositoryFetchPackageMetadata(t *testing.T) {
	index := `{"packages":[{"group":"memo","name":"roads","version":"1.0"}]}`
	meta := `{"version":"1.0","subfolder":"150-mods","info":{"summary":"better roads"},"variants":[]}`
	srv := newTestChannel(t, map[string]string{
		"/sc4pac-channel-contents.json":     index,
		"/metadata/memo/roads/1.0/pkg.json": meta,
	})
	defer srv.Close()

	cache := NewFileCache(t.TempDir(), srv.Client(), 0)
	repo, err := NewMetadataRepository(context.Background(), srv.URL, cache)
	if err != nil {
		t.Fatalf("NewMetadataRepository() error = %v", err)
	}

	md, err := repo.FetchPackageMetadata(context.Background(), BareModule{Group: "memo", Name: "roads"}, "1.0")
	if err != nil {
		t.Fatalf("FetchPackageMetadata() error = %v", err)
	}
	if md.Info.Summary != "better roads" {
		t.Errorf("FetchPackageMetadata().Info.Summary = %q", md.Info.Summary)
	}
	if md.Module.Name != "roads" {
		t.Errorf("FetchPackageMetadata().Module = %v, want the requested module stamped in", md.Module)
	}
}

func TestMetadataRepositoryFetchAssetURL(t *testing.T) {
	index := `{"packages":[{"group":"memo","name":"roads-zip","version":"1.0","type":"sc4pac-asset"}]}`
	ptr := `{"url":"https://example.com/roads.zip"}`
	srv := newTestChannel(t, map[string]string{
		"/sc4pac-channel-contents.json":          index,
		"/metadata/memo/roads-zip/1.0/pkg.json":  ptr,
	})
	defer srv.Close()

	cache := NewFileCache(t.TempDir(), srv.Client(), 0)
	repo, err := NewMetadataRepository(context.Background(), srv.URL, cache)
	if err != nil {
		t.Fatalf("NewMetadataRepository() error = %v", err)
	}

	url, err := repo.FetchAssetURL(context.Background(), BareAsset{Name: "roads-zip"})
	if err != nil {
		t.Fatalf("FetchAssetURL() error = %v", err)
	}
	if url != "https://example.com/roads.zip" {
		t.Errorf("FetchAssetURL() = %q", url)
	}
}

func TestMetadataRepositoryFetchAssetURLUnknownID(t *testing.T) {
	index := `{"packages":[]}`
	srv := newTestChannel(t, map[string]string{"/sc4pac-channel-contents.json": index})
	defer srv.Close()

	cache := NewFileCache(t.TempDir(), srv.Client(), 0)
	repo, err := NewMetadataRepository(context.Background(), srv.URL, cache)
	if err != nil {
		t.Fatalf("NewMetadataRepository() error = %v", err)
	}

	_, err = repo.FetchAssetURL(context.Background(), BareAsset{Name: "unknown"})
	var anf *AssetNotFoundError
	if err == nil {
		t.Fatal("expected AssetNotFoundError")
	}
	if ae, ok := err.(*AssetNotFoundError); ok {
		anf = ae
	}
	if anf == nil {
		t.Errorf("FetchAssetURL() error = %v, want *AssetNotFoundError", err)
	}
}

func TestNewMetadataRepositoriesDropsFailingChannels(t *testing.T) {
	good := newTestChannel(t, map[string]string{
		"/sc4pac-channel-contents.json": `{"packages":[]}`,
	})
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	cache := NewFileCache(t.TempDir(), good.Client(), 0)
	repos, err := NewMetadataRepositories(context.Background(), []string{good.URL, bad.URL}, cache, 0)
	if err != nil {
		t.Fatalf("NewMetadataRepositories() error = %v", err)
	}
	if len(repos) != 1 {
		t.Fatalf("got %d repos, want 1 (the failing channel should be dropped)", len(repos))
	}
}

func TestNewMetadataRepositoriesAllFailReturnsError(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	cache := NewFileCache(t.TempDir(), bad.Client(), 0)
	_, err := NewMetadataRepositories(context.Background(), []string{bad.URL}, cache, 0)
	if err != ErrChannelsNotAvailable {
		t.Errorf("NewMetadataRepositories() error = %v, want ErrChannelsNotAvailable", err)
	}
}
