package sc4pac

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// BareModule is the identity of a package: (group, name), immutable.
type BareModule struct {
	Group string `json:"group"`
	Name  string `json:"name"`
}

// String renders the module as "group:name".
func (m BareModule) String() string {
	return m.Group + ":" + m.Name
}

// Less orders BareModules lexicographically, by group and then by name.
func (m BareModule) Less(o BareModule) bool {
	if m.Group != o.Group {
		return m.Group < o.Group
	}
	return m.Name < o.Name
}

// BareAsset is the identity of a downloadable artifact: a name.
// Assets carry no variant and are distinguished from modules in channel
// metadata by the "sc4pac-asset" type tag.
type BareAsset struct {
	Name string `json:"name"`
}

func (a BareAsset) String() string { return a.Name }

// Variant is a mapping from variant-key to variant-value; keys unique,
// order irrelevant. Example: {"driveside": "right"}.
type Variant map[string]string

// Clone returns a shallow copy, so callers can accumulate choices without
// mutating a caller-owned Variant.
func (v Variant) Clone() Variant {
	out := make(Variant, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// sortedKeys returns v's keys sorted, used for deterministic folder-name
// tokens and test assertions.
func (v Variant) sortedKeys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FolderTokens renders the variant's values, sorted by key, as tokens for
// use in a package's on-disk folder name.
func (v Variant) FolderTokens() []string {
	keys := v.sortedKeys()
	tokens := make([]string, 0, len(keys))
	for _, k := range keys {
		tokens = append(tokens, v[k])
	}
	return tokens
}

// PackageInfo holds the descriptive, non-structural fields of a package.
type PackageInfo struct {
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Warning     string   `json:"warning,omitempty"`
	Author      string   `json:"author,omitempty"`
	Website     string   `json:"website,omitempty"`
	Conflicts   []string `json:"conflicts,omitempty"`
}

// AssetReference is a reference to a downloadable asset plus an optional
// include/exclude filter applied during extraction.
type AssetReference struct {
	AssetID string   `json:"assetId"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// VariantData binds one concrete Variant value-tuple to the assets and
// module dependencies that realize it.
type VariantData struct {
	Variant      Variant          `json:"variant"`
	Assets       []AssetReference `json:"assets"`
	Dependencies []BareModule     `json:"dependencies"`
}

// PackageMetadata is the full metadata for one (BareModule, version) pair.
type PackageMetadata struct {
	Module    BareModule    `json:"-"`
	Version   string        `json:"version"`
	Subfolder string        `json:"subfolder"`
	Info      PackageInfo   `json:"info"`
	Variants  []VariantData `json:"variants"`
}

// semverOf parses a version string as semver, reporting false for strings
// that don't parse (channel metadata is not guaranteed to be strict semver;
// compareVersions falls back to a plain string comparison for those).
func semverOf(v string) (*semver.Version, bool) {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return nil, false
	}
	return sv, true
}

// compareVersions orders two version strings, preferring semver comparison
// and falling back to a plain string comparison when either side doesn't
// parse.
func compareVersions(a, b string) int {
	sa, oka := semverOf(a)
	sb, okb := semverOf(b)
	if oka && okb {
		return sa.Compare(sb)
	}
	return strings.Compare(a, b)
}

// DepModule is a resolved module dependency: concrete version and variant.
type DepModule struct {
	Module  BareModule `json:"module"`
	Version string     `json:"version"`
	Variant Variant    `json:"variant"`
}

func (d DepModule) key() string {
	return d.Module.String() + "@" + d.Version
}

// FolderName renders the on-disk extraction folder name for this module:
// "group.name[.v1-v2...].version.sc4pac".
func (d DepModule) FolderName() string {
	parts := []string{d.Module.Group, d.Module.Name}
	if tokens := d.Variant.FolderTokens(); len(tokens) > 0 {
		parts = append(parts, strings.Join(tokens, "-"))
	}
	parts = append(parts, d.Version)
	return strings.Join(parts, ".") + SC4PacSuffix
}

// DepAsset is a resolved asset dependency: concrete artifact identity.
type DepAsset struct {
	Asset BareAsset `json:"asset"`
}

func (d DepAsset) key() string { return "asset:" + d.Asset.Name }

// Dep is the sum type over resolved dependencies: either a module or an asset.
// Exactly one of Module/Asset is set.
type Dep struct {
	Module *DepModule `json:"module,omitempty"`
	Asset  *DepAsset  `json:"asset,omitempty"`
}

// Key returns a stable identity string usable as a set/map key.
func (d Dep) Key() string {
	if d.Module != nil {
		return d.Module.key()
	}
	if d.Asset != nil {
		return d.Asset.key()
	}
	return ""
}

func (d Dep) IsAsset() bool { return d.Asset != nil }

func (d Dep) String() string {
	if d.Module != nil {
		return fmt.Sprintf("%s@%s", d.Module.Module, d.Module.Version)
	}
	if d.Asset != nil {
		return "asset:" + d.Asset.Asset.Name
	}
	return "<empty dep>"
}
