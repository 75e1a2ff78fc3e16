package sc4pac

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeExtractor struct {
	extractErr error
	calls      []string
}

func (f *fakeExtractor) Extract(archive, targetDir string, include, exclude []string) error {
	f.calls = append(f.calls, archive)
	if f.extractErr != nil {
		return f.extractErr
	}
	return os.WriteFile(filepath.Join(targetDir, "extracted.txt"), []byte("data"), DefaultFileMode)
}

func TestStagerStagesModuleIntoSubfolder(t *testing.T) {
	ex := &fakeExtractor{}
	s := NewStager(t.TempDir(), ex, &Handlers{})

	dm := &DepModule{Module: BareModule{Group: "memo", Name: "roads"}, Version: "1.0"}
	dep := Dep{Module: dm}
	md := &PackageMetadata{Subfolder: "150-mods"}
	vd := &VariantData{Assets: []AssetReference{{AssetID: "roads-zip"}}}
	assets := map[string]ResolvedAsset{
		"roads-zip": {Asset: BareAsset{Name: "roads-zip"}, LocalFile: "/cache/roads-zip"},
	}

	result, err := s.Stage(
		[]Dep{dep},
		func(*DepModule) (*PackageMetadata, error) { return md, nil },
		func(*DepModule, *PackageMetadata) (*VariantData, error) { return vd, nil },
		assets,
	)
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	defer CleanupStagingRoot(result)

	if len(result.Modules) != 1 {
		t.Fatalf("Modules = %v, want 1 entry", result.Modules)
	}
	subPath := result.Modules[0].ProducedSubPaths[0]
	if filepath.Base(filepath.Dir(subPath)) != "150-mods" {
		t.Errorf("produced subpath = %q, want it nested under the package subfolder", subPath)
	}
	extractedPath := filepath.Join(result.TempPluginsRoot, subPath, "extracted.txt")
	if _, err := os.Stat(extractedPath); err != nil {
		t.Errorf("expected extracted file at %s: %v", extractedPath, err)
	}
	if len(ex.calls) != 1 || ex.calls[0] != "/cache/roads-zip" {
		t.Errorf("Extractor calls = %v", ex.calls)
	}
}

func TestStagerUnknownAssetIDFails(t *testing.T) {
	ex := &fakeExtractor{}
	s := NewStager(t.TempDir(), ex, &Handlers{})

	dm := &DepModule{Module: BareModule{Group: "memo", Name: "roads"}, Version: "1.0"}
	md := &PackageMetadata{Subfolder: "150-mods"}
	vd := &VariantData{Assets: []AssetReference{{AssetID: "missing-asset"}}}

	result, err := s.Stage(
		[]Dep{{Module: dm}},
		func(*DepModule) (*PackageMetadata, error) { return md, nil },
		func(*DepModule, *PackageMetadata) (*VariantData, error) { return vd, nil },
		map[string]ResolvedAsset{},
	)
	if err == nil {
		t.Fatal("expected Stage() to fail for an unresolved asset id")
	}
	if result != nil {
		t.Error("expected a nil result on failure")
	}
	var anf *AssetNotFoundError
	if ae, ok := err.(*AssetNotFoundError); ok {
		anf = ae
	}
	if anf == nil {
		t.Errorf("Stage() error = %v, want *AssetNotFoundError", err)
	}
}

func TestStagerFiresPackageWarning(t *testing.T) {
	ex := &fakeExtractor{}
	var gotWarning string
	handlers := &Handlers{PackageWarning: func(pkg BareModule, warning string) { gotWarning = warning }}
	s := NewStager(t.TempDir(), ex, handlers)

	dm := &DepModule{Module: BareModule{Group: "memo", Name: "roads"}, Version: "1.0"}
	md := &PackageMetadata{Subfolder: "150-mods", Info: PackageInfo{Warning: "deprecated, use memo:roads2"}}
	vd := &VariantData{}

	result, err := s.Stage(
		[]Dep{{Module: dm}},
		func(*DepModule) (*PackageMetadata, error) { return md, nil },
		func(*DepModule, *PackageMetadata) (*VariantData, error) { return vd, nil },
		map[string]ResolvedAsset{},
	)
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	defer CleanupStagingRoot(result)

	if !result.HadWarnings {
		t.Error("expected HadWarnings to be true")
	}
	if gotWarning != "deprecated, use memo:roads2" {
		t.Errorf("PackageWarning handler got %q", gotWarning)
	}
}

func TestStagerExtractionFailureCleansUpStagingRoot(t *testing.T) {
	ex := &fakeExtractor{extractErr: errFakeExtract}
	s := NewStager(t.TempDir(), ex, &Handlers{})

	dm := &DepModule{Module: BareModule{Group: "memo", Name: "roads"}, Version: "1.0"}
	md := &PackageMetadata{Subfolder: "150-mods"}
	vd := &VariantData{Assets: []AssetReference{{AssetID: "roads-zip"}}}
	assets := map[string]ResolvedAsset{"roads-zip": {LocalFile: "/cache/roads-zip"}}

	_, err := s.Stage(
		[]Dep{{Module: dm}},
		func(*DepModule) (*PackageMetadata, error) { return md, nil },
		func(*DepModule, *PackageMetadata) (*VariantData, error) { return vd, nil },
		assets,
	)
	if err == nil {
		t.Fatal("expected Stage() to surface the extraction error")
	}
	var efe *ExtractionFailedError
	if e, ok := err.(*ExtractionFailedError); ok {
		efe = e
	}
	if efe == nil {
		t.Errorf("Stage() error = %v, want *ExtractionFailedError", err)
	}
	entries, readErr := os.ReadDir(s.TempRoot)
	if readErr != nil || len(entries) != 0 {
		t.Errorf("staging root left behind after failed Stage(): entries=%v err=%v", entries, readErr)
	}
}

var errFakeExtract = &fakeExtractError{}

type fakeExtractError struct{}

func (e *fakeExtractError) Error() string { return "fake extraction failure" }
