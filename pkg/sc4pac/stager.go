package sc4pac

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ResolvedAsset pairs a requested BareAsset with the artifact URL it
// resolved to and the local cache file holding its downloaded bytes.
type ResolvedAsset struct {
	Asset     BareAsset
	URL       string
	LocalFile string
}

// StagedModule is one module's staging result: the resolved dep plus the
// paths (relative to stagingRoot/plugins) it produced.
type StagedModule struct {
	Dep              Dep
	ProducedSubPaths []string
}

// StageResult is the Stager's output: the staged plugins root, the
// per-module manifest, and the staging root itself (which the caller must
// remove once publishing is done, successful or not).
type StageResult struct {
	TempPluginsRoot string
	Modules         []StagedModule
	StagingRoot     string
	HadWarnings     bool
}

// Stager extracts assets for each to-be-installed module into a scratch
// tree under tempRoot, ready for the Publisher to move into place.
type Stager struct {
	TempRoot  string
	Extractor Extractor
	Handlers  *Handlers
}

// NewStager constructs a Stager rooted at tempRoot, using extractor to
// unpack archives.
func NewStager(tempRoot string, extractor Extractor, handlers *Handlers) *Stager {
	return &Stager{TempRoot: tempRoot, Extractor: extractor, Handlers: handlers}
}

// Stage runs the extraction protocol over the module portion of toInstall (assets
// are not staged directly; they're consumed via assetsByID during
// extraction). metadataOf must return the PackageMetadata a DepModule was
// resolved against, so Stage can read its Subfolder and the VariantData
// that matched (variantDataOf).
//
// The returned StageResult's StagingRoot is scoped to the caller: it must
// be removed (via CleanupStagingRoot) once the Publisher has finished
// moving files out of it, on every exit path — success or failure
//.
func (s *Stager) Stage(
	toInstallModules []Dep,
	metadataOf func(dm *DepModule) (*PackageMetadata, error),
	variantDataOf func(dep *DepModule, md *PackageMetadata) (*VariantData, error),
	assetsByID map[string]ResolvedAsset,
) (result *StageResult, err error) {
	stagingRoot := filepath.Join(s.TempRoot, "staging-"+uuid.NewString())
	if err := os.MkdirAll(stagingRoot, DefaultDirMode); err != nil {
		return nil, fmt.Errorf("stager: create staging root: %w", err)
	}
	// On any error below, nothing has been published yet, so it's safe (and
	// required) to clean up here; on success, ownership of stagingRoot
	// passes to the caller until after Publish.
	defer func() {
		if err != nil {
			os.RemoveAll(stagingRoot)
		}
	}()

	tempPluginsRoot := filepath.Join(stagingRoot, "plugins")
	if err := os.MkdirAll(tempPluginsRoot, DefaultDirMode); err != nil {
		return nil, fmt.Errorf("stager: create staged plugins root: %w", err)
	}

	var modules []StagedModule
	hadWarnings := false

	for _, dep := range toInstallModules {
		if dep.Module == nil {
			continue
		}
		dm := dep.Module

		md, err := metadataOf(dm)
		if err != nil {
			return nil, err
		}
		vd, err := variantDataOf(dm, md)
		if err != nil {
			return nil, err
		}

		folderName := dm.FolderName()
		subfolder := filepath.Join(md.Subfolder, folderName)
		targetDir := filepath.Join(tempPluginsRoot, subfolder)
		if err := os.MkdirAll(targetDir, DefaultDirMode); err != nil {
			return nil, fmt.Errorf("stager: mkdir %s: %w", targetDir, err)
		}

		var producedPaths []string
		for _, ref := range vd.Assets {
			resolved, ok := assetsByID[ref.AssetID]
			if !ok {
				return nil, &AssetNotFoundError{AssetID: ref.AssetID}
			}
			if err := s.Extractor.Extract(resolved.LocalFile, targetDir, ref.Include, ref.Exclude); err != nil {
				return nil, &ExtractionFailedError{Archive: resolved.LocalFile, Cause: err}
			}
		}
		producedPaths = append(producedPaths, subfolder)

		if md.Info.Warning != "" {
			hadWarnings = true
			s.Handlers.firePackageWarning(dm.Module, md.Info.Warning)
		}

		modules = append(modules, StagedModule{Dep: dep, ProducedSubPaths: producedPaths})
	}

	return &StageResult{
		TempPluginsRoot: tempPluginsRoot,
		Modules:         modules,
		StagingRoot:     stagingRoot,
		HadWarnings:     hadWarnings,
	}, nil
}

// CleanupStagingRoot removes a StageResult's staging root. The caller must
// invoke this after Publish, on every exit path.
func CleanupStagingRoot(result *StageResult) error {
	if result == nil || result.StagingRoot == "" {
		return nil
	}
	return os.RemoveAll(result.StagingRoot)
}
