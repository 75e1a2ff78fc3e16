package sc4pac

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// assetTypeTag is the channel-index "type" value that distinguishes an
// asset entry from a module entry.
const assetTypeTag = "sc4pac-asset"

// ChannelIndexEntry is one row of a channel's contents index: the identity
// and latest-known version of a single published module or asset.
type ChannelIndexEntry struct {
	Group   string `json:"group"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Summary string `json:"summary,omitempty"`
	Type    string `json:"type,omitempty"`
}

// IsAsset reports whether this entry is tagged as an asset rather than a module.
func (e ChannelIndexEntry) IsAsset() bool { return e.Type == assetTypeTag }

// Module renders the entry's (group, name) as a BareModule, meaningful only
// for non-asset entries.
func (e ChannelIndexEntry) Module() BareModule { return BareModule{Group: e.Group, Name: e.Name} }

// ChannelIndex is the full per-channel listing fetched once per repository
// construction.
type ChannelIndex struct {
	Packages []ChannelIndexEntry `json:"packages"`
}

// assetMetadata is the per-version metadata document for an asset entry: a
// pointer to its actual artifact URL, stored at the same
// metadata/<group>/<name>/<version>/pkg.json path a module's PackageMetadata
// occupies, distinguished by the channel index's "sc4pac-asset" type tag.
type assetMetadata struct {
	URL string `json:"url"`
}

// MetadataRepository wraps one channel URL: its index (loaded eagerly) and
// on-demand per-package metadata (cached as "changing").
type MetadataRepository struct {
	channelURL string
	cache      *FileCache
	index      ChannelIndex
}

// NewMetadataRepository fetches channelURL's contents index immediately.
func NewMetadataRepository(ctx context.Context, channelURL string, cache *FileCache) (*MetadataRepository, error) {
	indexURL := strings.TrimRight(channelURL, "/") + "/sc4pac-channel-contents.json"
	path, err := cache.File(ctx, indexURL, DefaultChangingTTL, true)
	if err != nil {
		return nil, fmt.Errorf("metadatarepo: fetch index for %s: %w", channelURL, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metadatarepo: read index for %s: %w", channelURL, err)
	}
	var idx ChannelIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("metadatarepo: decode index for %s: %w", channelURL, err)
	}
	return &MetadataRepository{channelURL: channelURL, cache: cache, index: idx}, nil
}

// URL returns the channel's base URL, used for channel-priority tie-breaks.
func (r *MetadataRepository) URL() string { return r.channelURL }

// IterateChannelContents yields every index entry in declaration order,
// as a plain slice since the index is already fully resident.
func (r *MetadataRepository) IterateChannelContents() []ChannelIndexEntry {
	out := make([]ChannelIndexEntry, len(r.index.Packages))
	copy(out, r.index.Packages)
	return out
}

// SearchTuples exposes (group, name, summary, isAsset) tuples for the
// fuzzy-search index.
func (r *MetadataRepository) SearchTuples() [][4]string {
	out := make([][4]string, 0, len(r.index.Packages))
	for _, e := range r.index.Packages {
		isAsset := "0"
		if e.IsAsset() {
			isAsset = "1"
		}
		out = append(out, [4]string{e.Group, e.Name, e.Summary, isAsset})
	}
	return out
}

// PublishesModule reports whether this channel's index declares module m.
func (r *MetadataRepository) PublishesModule(m BareModule) bool {
	_, ok := r.latestModuleEntry(m)
	return ok
}

// PublishesAsset reports whether this channel's index declares asset id.
func (r *MetadataRepository) PublishesAsset(id string) bool {
	_, ok := r.latestAssetEntry(id)
	return ok
}

// latestModuleEntry returns the index entry for m with the highest declared
// version, since a channel's index may list more than one version of the
// same module across its history.
func (r *MetadataRepository) latestModuleEntry(m BareModule) (ChannelIndexEntry, bool) {
	var best ChannelIndexEntry
	found := false
	for _, e := range r.index.Packages {
		if e.IsAsset() || e.Group != m.Group || e.Name != m.Name {
			continue
		}
		if !found || compareVersions(e.Version, best.Version) > 0 {
			best = e
			found = true
		}
	}
	return best, found
}

// latestAssetEntry returns the index entry for asset id with the highest
// declared version.
func (r *MetadataRepository) latestAssetEntry(id string) (ChannelIndexEntry, bool) {
	var best ChannelIndexEntry
	found := false
	for _, e := range r.index.Packages {
		if !e.IsAsset() || e.Name != id {
			continue
		}
		if !found || compareVersions(e.Version, best.Version) > 0 {
			best = e
			found = true
		}
	}
	return best, found
}

// LatestVersion returns the highest version of m this channel declares.
func (r *MetadataRepository) LatestVersion(m BareModule) (string, bool) {
	e, ok := r.latestModuleEntry(m)
	return e.Version, ok
}

// FetchPackageMetadata fetches and decodes a module's full metadata JSON at
// its given version, cached by FileCache as "changing".
func (r *MetadataRepository) FetchPackageMetadata(ctx context.Context, m BareModule, version string) (*PackageMetadata, error) {
	metaURL := r.metadataURL(m.Group, m.Name, version)
	path, err := r.cache.File(ctx, metaURL, DefaultChangingTTL, true)
	if err != nil {
		return nil, fmt.Errorf("metadatarepo: fetch metadata for %s@%s: %w", m, version, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metadatarepo: read metadata for %s@%s: %w", m, version, err)
	}
	var md PackageMetadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, fmt.Errorf("metadatarepo: decode metadata for %s@%s: %w", m, version, err)
	}
	md.Module = m
	md.Version = version
	return &md, nil
}

// FetchAssetURL resolves a BareAsset to its artifact download URL, by
// finding the channel's latest index entry for it and fetching that
// version's metadata pointer document. It returns *AssetNotFoundError when
// this channel's index has no entry for the asset. Whether another channel
// maps the same asset id to a different URL is not checked, here or by the
// caller.
func (r *MetadataRepository) FetchAssetURL(ctx context.Context, asset BareAsset) (string, error) {
	entry, ok := r.latestAssetEntry(asset.Name)
	if !ok {
		return "", &AssetNotFoundError{AssetID: asset.Name}
	}
	ptrURL := r.metadataURL(entry.Group, entry.Name, entry.Version)
	path, err := r.cache.File(ctx, ptrURL, DefaultChangingTTL, true)
	if err != nil {
		return "", fmt.Errorf("metadatarepo: fetch asset pointer for %s: %w", asset, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var ptr assetMetadata
	if err := json.Unmarshal(raw, &ptr); err != nil {
		return "", fmt.Errorf("metadatarepo: decode asset pointer for %s: %w", asset, err)
	}
	if ptr.URL == "" {
		return "", &AssetNotFoundError{AssetID: asset.Name}
	}
	return ptr.URL, nil
}

func (r *MetadataRepository) metadataURL(group, name, version string) string {
	return fmt.Sprintf("%s/metadata/%s/%s/%s/pkg.json", strings.TrimRight(r.channelURL, "/"), group, name, version)
}

// NewMetadataRepositories constructs one MetadataRepository per channel URL,
// bounding concurrent index loads to maxParallel. A channel that
// fails to load is dropped rather than failing the whole call, unless every
// channel fails, in which case ErrChannelsNotAvailable is returned.
func NewMetadataRepositories(ctx context.Context, channelURLs []string, cache *FileCache, maxParallel int) ([]*MetadataRepository, error) {
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallelism
	}
	repos := make([]*MetadataRepository, len(channelURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, u := range channelURLs {
		i, u := i, u
		g.Go(func() error {
			repo, err := NewMetadataRepository(gctx, u, cache)
			if err != nil {
				return nil // dropped below; loading is best-effort per channel
			}
			repos[i] = repo
			return nil
		})
	}
	// Errors are swallowed per-channel above, so Wait never actually fails;
	// it only serves to block until every goroutine has finished.
	_ = g.Wait()

	var loaded []*MetadataRepository
	for _, r := range repos {
		if r != nil {
			loaded = append(loaded, r)
		}
	}
	if len(loaded) == 0 && len(channelURLs) > 0 {
		return nil, ErrChannelsNotAvailable
	}
	return loaded, nil
}
