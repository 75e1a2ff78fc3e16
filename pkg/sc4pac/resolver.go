package sc4pac

import "context"

// Resolver computes a Resolution for a set of explicitly requested modules
// against a global variant and a priority-ordered list of repositories.
// The first repository in Repos that publishes a module wins outright,
// regardless of whether a later repository publishes a newer version.
type Resolver struct {
	Repos []*MetadataRepository

	// metaCache memoizes FetchPackageMetadata results within a single
	// Resolve call (and across its re-resolution retries), keyed by
	// "group:name@version", so a module shared by several dependents is
	// only fetched from its channel once.
	metaCache VMap[string, *PackageMetadata]
}

// NewResolver constructs a Resolver over repos, in priority order.
func NewResolver(repos []*MetadataRepository) *Resolver {
	return &Resolver{Repos: repos, metaCache: NewVMap[string, *PackageMetadata]()}
}

func (r *Resolver) fetchMetadata(ctx context.Context, repo *MetadataRepository, m BareModule, version string) (*PackageMetadata, error) {
	key := m.Group + ":" + m.Name + "@" + version
	if md := r.metaCache.Get(key); md != nil {
		return md, nil
	}
	md, err := repo.FetchPackageMetadata(ctx, m, version)
	if err != nil {
		return nil, err
	}
	r.metaCache.Set(key, md)
	return md, nil
}

// Resolve runs the full dependency-closure algorithm over explicit and globalVariant,
// returning the transitive Resolution. On encountering a package whose
// DecisionTree needs a variant key not present in globalVariant, it returns
// a *MissingVariantError — the caller is expected to prompt, add the answer
// to globalVariant, and call Resolve again.
func (r *Resolver) Resolve(ctx context.Context, explicit []BareModule, globalVariant Variant) (*Resolution, error) {
	if len(r.Repos) == 0 {
		return nil, ErrChannelsNotAvailable
	}

	res := NewResolution()
	visited := map[string]bool{}

	var resolveModule func(m BareModule) (Dep, error)
	resolveModule = func(m BareModule) (Dep, error) {
		repo, version, err := r.latestVersion(ctx, m)
		if err != nil {
			return Dep{}, err
		}

		md, err := r.fetchMetadata(ctx, repo, m, version)
		if err != nil {
			return Dep{}, err
		}

		variants := make([]Variant, len(md.Variants))
		for i, vd := range md.Variants {
			variants[i] = vd.Variant
		}
		tree, err := BuildDecisionTree(variants)
		if err != nil {
			return Dep{}, err
		}

		chosen, err := tree.Resolve(m, globalVariant)
		if err != nil {
			return Dep{}, err
		}

		vd, err := findVariantData(md.Variants, chosen)
		if err != nil {
			return Dep{}, err
		}

		dep := Dep{Module: &DepModule{Module: m, Version: version, Variant: chosen}}

		visitKey := dep.Key()
		if visited[visitKey] {
			return dep, nil
		}
		visited[visitKey] = true
		res.Add(dep)

		for _, depMod := range vd.Dependencies {
			childDep, err := resolveModule(depMod)
			if err != nil {
				return Dep{}, err
			}
			res.AddEdge(dep, childDep)
		}

		for _, assetRef := range vd.Assets {
			assetDep, err := resolveAsset(repo, r.Repos, assetRef.AssetID)
			if err != nil {
				return Dep{}, err
			}
			if !res.Has(assetDep) {
				res.Add(assetDep)
			}
			res.AddEdge(dep, assetDep)
		}

		return dep, nil
	}

	for _, m := range explicit {
		if _, err := resolveModule(m); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// latestVersion finds the first repository in priority order that publishes
// m at all, reading its latest version directly out of that channel's
// already-resident index rather than fetching per-version metadata just to
// compare. A channel earlier in r.Repos always wins, even if a later channel
// publishes a newer version of the same module.
func (r *Resolver) latestVersion(ctx context.Context, m BareModule) (*MetadataRepository, string, error) {
	for _, repo := range r.Repos {
		version, ok := repo.LatestVersion(m)
		if !ok {
			continue
		}
		return repo, version, nil
	}
	return nil, "", &VersionNotFoundError{Module: m}
}

// resolveAsset returns a DepAsset for asset id if preferred or, failing
// that, any channel in all declares it. The artifact URL is not looked up
// here (Session.FetchAssets does that later), and other channels declaring
// the same id are not checked for a conflicting URL.
func resolveAsset(preferred *MetadataRepository, all []*MetadataRepository, id string) (Dep, error) {
	candidates := append([]*MetadataRepository{preferred}, all...)
	for _, repo := range candidates {
		if repo == nil || !repo.PublishesAsset(id) {
			continue
		}
		return Dep{Asset: &DepAsset{Asset: BareAsset{Name: id}}}, nil
	}
	return Dep{}, &AssetNotFoundError{AssetID: id}
}

// findVariantData returns the VariantData in variants whose Variant exactly
// equals chosen, as selected by the DecisionTree walk.
func findVariantData(variants []VariantData, chosen Variant) (*VariantData, error) {
	for i := range variants {
		if variantsEqual(variants[i].Variant, chosen) {
			return &variants[i], nil
		}
	}
	return nil, ErrUnsatisfiableVariantConstraints
}

func variantsEqual(a, b Variant) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
