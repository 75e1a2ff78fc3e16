package sc4pac

import "path/filepath"

// PluginsConfig is the user-facing, hand-editable settings file:
// where plugins get published, where the caches live, which channels to
// consult and in what priority order, the global variant the user has
// already answered, and the set of packages the user explicitly asked for
// (as opposed to pulled in transitively).
type PluginsConfig struct {
	PluginsRoot string   `json:"pluginsRoot"`
	CacheRoot   string   `json:"cacheRoot"`
	TempRoot    string   `json:"tempRoot"`
	Channels    []string `json:"channels"`
	Variant     Variant  `json:"variant"`
	Explicit    []BareModule `json:"explicit"`
}

// DefaultPluginsConfig returns the config JsonStore.ReadOrInit falls back to
// when no config file exists yet, rooted at dir.
func DefaultPluginsConfig(dir string) PluginsConfig {
	return PluginsConfig{
		PluginsRoot: filepath.Join(dir, "plugins"),
		CacheRoot:   filepath.Join(dir, "cache"),
		TempRoot:    filepath.Join(dir, "temp"),
		Channels:    []string{},
		Variant:     Variant{},
		Explicit:    nil,
	}
}

// ArtifactCacheRoot is the content-addressed artifact cache under CacheRoot.
func (c PluginsConfig) ArtifactCacheRoot() string {
	return filepath.Join(c.CacheRoot, "artifacts")
}

// ChannelCacheRoot is the channel-index cache under CacheRoot.
func (c PluginsConfig) ChannelCacheRoot() string {
	return filepath.Join(c.CacheRoot, "channels")
}

// IsExplicit reports whether m was explicitly requested by the user, as
// opposed to pulled in only as a transitive dependency.
func (c PluginsConfig) IsExplicit(m BareModule) bool {
	for _, e := range c.Explicit {
		if e == m {
			return true
		}
	}
	return false
}

// WithExplicitAdded returns a copy of c with m appended to Explicit if not
// already present, leaving c untouched.
func (c PluginsConfig) WithExplicitAdded(m BareModule) PluginsConfig {
	if c.IsExplicit(m) {
		return c
	}
	out := c
	out.Explicit = append(append([]BareModule{}, c.Explicit...), m)
	return out
}

// WithExplicitRemoved returns a copy of c with m removed from Explicit.
func (c PluginsConfig) WithExplicitRemoved(m BareModule) PluginsConfig {
	out := c
	filtered := make([]BareModule, 0, len(c.Explicit))
	for _, e := range c.Explicit {
		if e != m {
			filtered = append(filtered, e)
		}
	}
	out.Explicit = filtered
	return out
}

// InstalledEntry is one record in the PluginsLock's installed set: the
// resolved Dep plus the plugins-root-relative paths it published.
type InstalledEntry struct {
	Dep   Dep      `json:"dep"`
	Files []string `json:"files,omitempty"`
}

// PluginsLock is the machine-written record of what's currently installed
//. It is the "installed" side every UpdatePlanFromResolution diff
// is computed against.
type PluginsLock struct {
	Installed []InstalledEntry `json:"installed"`
}

// DefaultPluginsLock is the zero-value lock a fresh profile starts from.
func DefaultPluginsLock() PluginsLock {
	return PluginsLock{Installed: []InstalledEntry{}}
}

// Deps extracts the plain Dep slice from the lock, for feeding into
// UpdatePlanFromResolution.
func (l PluginsLock) Deps() []Dep {
	out := make([]Dep, len(l.Installed))
	for i, e := range l.Installed {
		out[i] = e.Dep
	}
	return out
}

// FilesFor returns the recorded plugins-root-relative paths for dep, if installed.
func (l PluginsLock) FilesFor(dep Dep) ([]string, bool) {
	for _, e := range l.Installed {
		if e.Dep.Key() == dep.Key() {
			return e.Files, true
		}
	}
	return nil, false
}

// WithInstalled returns a copy of l with removed entries dropped and added
// entries appended, used by the Publisher to atomically recompute the lock
// content before a CAS write.
func (l PluginsLock) WithInstalled(added []InstalledEntry, removed []Dep) PluginsLock {
	removedKeys := map[string]bool{}
	for _, d := range removed {
		removedKeys[d.Key()] = true
	}
	out := make([]InstalledEntry, 0, len(l.Installed)+len(added))
	for _, e := range l.Installed {
		if !removedKeys[e.Dep.Key()] {
			out = append(out, e)
		}
	}
	out = append(out, added...)
	return PluginsLock{Installed: out}
}
