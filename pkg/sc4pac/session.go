package sc4pac

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sc4pac/sc4pac-core/pkg/logger"
)

// Session wires together a profile's PluginsConfig, its two-tier FileCache,
// the configured channels' MetadataRepositories, and the Resolver/Stager/
// Publisher pipeline, so a thin CLI frontend only needs to call a handful of
// entry points instead of re-assembling the core on every command.
type Session struct {
	ConfigPath string
	LockPath   string

	Store  *JsonStore
	Config PluginsConfig

	ChannelCache  *FileCache
	ArtifactCache *FileCache
	Repos         []*MetadataRepository
	Resolver      *Resolver
	SearchIndex   *SearchIndex

	Extractor Extractor
	Handlers  *Handlers
	Auth      *AuthStore
	Log       logger.Logger

	configRaw []byte
}

// OpenSession loads (or initializes) the profile at configPath, constructs
// its caches and channel repositories, and builds a Resolver over them. Any
// channel that fails to load is dropped; the whole call only fails if every
// configured channel is unreachable. A nil log discards every message.
func OpenSession(ctx context.Context, configPath string, extractor Extractor, handlers *Handlers, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	store := NewJsonStore()
	var cfg PluginsConfig
	raw, err := store.ReadOrInit(configPath, &cfg, DefaultPluginsConfig(filepath.Dir(configPath)))
	if err != nil {
		return nil, fmt.Errorf("session: load config: %w", err)
	}

	for _, dir := range []string{cfg.PluginsRoot, cfg.ArtifactCacheRoot(), cfg.ChannelCacheRoot(), cfg.TempRoot} {
		if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
			return nil, fmt.Errorf("session: mkdir %s: %w", dir, err)
		}
	}

	auth := NewAuthStore()
	client := &http.Client{}

	channelCache := NewFileCache(cfg.ChannelCacheRoot(), client, DefaultMaxParallelism)
	channelCache.SetSessionCookieResolver(auth.Cookie)
	channelCache.SetLogger(log)

	artifactCache := NewFileCache(cfg.ArtifactCacheRoot(), client, DefaultMaxParallelism)
	artifactCache.SetSessionCookieResolver(auth.Cookie)
	artifactCache.SetHandlers(handlers)
	artifactCache.SetLogger(log)

	log.Info("loading %d channel(s)", len(cfg.Channels))
	repos, err := NewMetadataRepositories(ctx, cfg.Channels, channelCache, DefaultMaxParallelism)
	if err != nil {
		return nil, err
	}

	idx, err := NewSearchIndex()
	if err != nil {
		return nil, err
	}
	if err := idx.RebuildFromRepositories(ctx, repos); err != nil {
		idx.Close()
		return nil, err
	}

	return &Session{
		ConfigPath:    configPath,
		LockPath:      lockPathFor(configPath),
		Store:         store,
		Config:        cfg,
		ChannelCache:  channelCache,
		ArtifactCache: artifactCache,
		Repos:         repos,
		Resolver:      NewResolver(repos),
		SearchIndex:   idx,
		Extractor:     extractor,
		Handlers:      handlers,
		Auth:          auth,
		Log:           log,
		configRaw:     raw,
	}, nil
}

// Close releases resources the Session owns that aren't files (currently
// just the SearchIndex's SQLite connection).
func (s *Session) Close() error {
	if s.SearchIndex != nil {
		return s.SearchIndex.Close()
	}
	return nil
}

// lockPathFor derives sc4pac-plugins-lock.json's path from the config file's
// own path, as a sibling file.
func lockPathFor(configPath string) string {
	dir := filepath.Dir(configPath)
	return filepath.Join(dir, "sc4pac-plugins-lock.json")
}

// SaveConfig CAS-writes s.Config back to ConfigPath and refreshes the
// in-memory "prior" snapshot used for the next CAS write. Exported so a
// command driver can mutate exported fields of s.Config directly (e.g.
// editing Variant) and persist the result without a dedicated accessor.
func (s *Session) SaveConfig() error {
	if err := s.Store.Write(s.ConfigPath, s.Config, s.configRaw); err != nil {
		return err
	}
	raw, err := s.Store.Read(s.ConfigPath, &PluginsConfig{})
	if err != nil {
		return err
	}
	s.configRaw = raw
	return nil
}

// readLock loads the current PluginsLock and its raw bytes, for a
// subsequent CAS write by Publisher.
func (s *Session) readLock() (PluginsLock, []byte, error) {
	var lock PluginsLock
	raw, err := s.Store.ReadOrInit(s.LockPath, &lock, DefaultPluginsLock())
	if err != nil {
		return PluginsLock{}, nil, fmt.Errorf("session: load lock: %w", err)
	}
	return lock, raw, nil
}

// Resolve runs the Resolver against s.Config's explicit modules and variant,
// re-resolving automatically whenever resolveVariant answers a
// MissingVariantError by returning an updated Variant. resolveVariant is expected to mutate nothing itself; Session
// persists the accepted answer into s.Config once resolution succeeds.
func (s *Session) Resolve(ctx context.Context, resolveVariant func(err *MissingVariantError) (Variant, error)) (*Resolution, error) {
	variant := s.Config.Variant.Clone()
	for {
		res, err := s.Resolver.Resolve(ctx, s.Config.Explicit, variant)
		if err == nil {
			s.Config.Variant = variant
			s.Log.Info("resolved %d explicit module(s)", len(s.Config.Explicit))
			return res, s.SaveConfig()
		}
		mv, ok := err.(*MissingVariantError)
		if !ok {
			return nil, err
		}
		s.Handlers.fireMissingVariant(mv.Package, mv.Key, mv.Alternatives)
		answer, askErr := resolveVariant(mv)
		if askErr != nil {
			return nil, askErr
		}
		variant = variant.Clone()
		variant[mv.Key] = answer[mv.Key]
	}
}

// Installed returns the currently recorded PluginsLock, for read-only
// commands like "list" that don't need a CAS write.
func (s *Session) Installed() (PluginsLock, error) {
	lock, _, err := s.readLock()
	return lock, err
}

// Plan computes the UpdatePlan for res against the currently installed lock.
func (s *Session) Plan(res *Resolution) (*UpdatePlan, PluginsLock, []byte, error) {
	lock, raw, err := s.readLock()
	if err != nil {
		return nil, PluginsLock{}, nil, err
	}
	return UpdatePlanFromResolution(res, lock.Deps()), lock, raw, nil
}

// FetchAssets resolves and downloads every asset Dep in deps via whichever
// channel repo declares it, returning a map keyed by asset name ready for
// Stager.Stage's assetsByID parameter. Callers fetching a whole toInstall
// set should pass it through ReverseTransitiveOrder first, so a leaf's
// asset lands on disk before its dependents are attempted and partial
// progress survives interruption.
func (s *Session) FetchAssets(ctx context.Context, deps []Dep) (map[string]ResolvedAsset, error) {
	out := map[string]ResolvedAsset{}
	for _, dep := range deps {
		if dep.Asset == nil {
			continue
		}
		name := dep.Asset.Asset.Name
		var url string
		var err error
		for _, repo := range s.Repos {
			if !repo.PublishesAsset(name) {
				continue
			}
			url, err = repo.FetchAssetURL(ctx, dep.Asset.Asset)
			if err == nil {
				break
			}
		}
		if url == "" {
			if err == nil {
				err = &AssetNotFoundError{AssetID: name}
			}
			return nil, err
		}
		local, err := s.ArtifactCache.File(ctx, url, 0, false)
		if err != nil {
			return nil, fmt.Errorf("session: fetch asset %s: %w", name, err)
		}
		out[name] = ResolvedAsset{Asset: dep.Asset.Asset, URL: url, LocalFile: local}
	}
	return out, nil
}

// Apply runs the full stage+publish half of the pipeline for plan.ToInstall
// (and ToReinstall, which is a subset already folded into ToInstall by
// UpdatePlanFromResolution), cleaning up the staging root on every exit
// path.
func (s *Session) Apply(ctx context.Context, res *Resolution, plan *UpdatePlan, lock PluginsLock, lockRaw []byte) (PluginsLock, error) {
	ordered := ReverseTransitiveOrder(res, plan.ToInstall)

	assets, err := s.FetchAssets(ctx, ordered)
	if err != nil {
		return lock, err
	}

	stager := NewStager(s.Config.TempRoot, s.Extractor, s.Handlers)
	metadataOf := func(dm *DepModule) (*PackageMetadata, error) {
		for _, repo := range s.Repos {
			if repo.PublishesModule(dm.Module) {
				return repo.FetchPackageMetadata(ctx, dm.Module, dm.Version)
			}
		}
		return nil, &VersionNotFoundError{Module: dm.Module}
	}
	variantDataOf := func(dep *DepModule, md *PackageMetadata) (*VariantData, error) {
		return findVariantData(md.Variants, dep.Variant)
	}

	result, err := stager.Stage(ordered, metadataOf, variantDataOf, assets)
	if err != nil {
		return lock, err
	}
	defer CleanupStagingRoot(result)

	publisher := NewPublisher(s.Config.PluginsRoot, s.LockPath, s.Handlers, s.Log)
	return publisher.Publish(result, lockRaw, lock, plan)
}

// AddExplicit marks m explicit in s.Config and persists it.
func (s *Session) AddExplicit(m BareModule) error {
	s.Config = s.Config.WithExplicitAdded(m)
	return s.SaveConfig()
}

// RemoveExplicit unmarks m and persists it; it does not by itself uninstall
// anything — the next Resolve+Plan+Apply cycle folds the removal into
// plan.ToRemove once nothing else depends on it.
func (s *Session) RemoveExplicit(m BareModule) error {
	s.Config = s.Config.WithExplicitRemoved(m)
	return s.SaveConfig()
}

// ResetVariant clears the configured variant so the next Resolve re-asks
// every decision.
func (s *Session) ResetVariant() error {
	s.Config.Variant = Variant{}
	return s.SaveConfig()
}
