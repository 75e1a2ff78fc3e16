package sc4pac

// UpdatePlan is the diff between a Resolution's desired closure and the
// currently installed set, computed by UpdatePlanFromResolution.
type UpdatePlan struct {
	ToInstall   []Dep
	ToReinstall []Dep
	ToRemove    []Dep
}

// IsUpToDate reports whether all three sets are empty.
func (p *UpdatePlan) IsUpToDate() bool {
	return len(p.ToInstall) == 0 && len(p.ToReinstall) == 0 && len(p.ToRemove) == 0
}

// UpdatePlanFromResolution computes the UpdatePlan for a desired Resolution
// against the currently installed set of Deps, following the formula:
//
//	missing      = wanted - installed
//	obsolete     = installed - wanted
//	toReinstall  = (wanted ∩ installed) ∩ dependentsOf(missing.assets)
//	toInstall    = missing ∪ toReinstall ∪ {assets of those}
//	toRemove     = obsolete ∪ toReinstall
func UpdatePlanFromResolution(res *Resolution, installed []Dep) *UpdatePlan {
	wanted := NewDepSet(res.TransitiveDependencies())
	have := NewDepSet(installed)

	missing := wanted.Minus(have)
	obsolete := have.Minus(wanted)

	missingAssets := filterAssets(missing)

	wantedAndInstalled := wanted.Intersect(have)
	reinstallCandidates := res.DependentsOf(missingAssets)

	reinstallSet := NewDepSet(nil)
	wiSet := NewDepSet(wantedAndInstalled)
	for _, d := range reinstallCandidates {
		if wiSet.Has(d) {
			reinstallSet.byKey[d.Key()] = d
		}
	}
	toReinstall := reinstallSet.Slice()

	// toInstall = missing ∪ toReinstall ∪ {assets of those}
	toInstallSet := NewDepSet(missing)
	for _, d := range toReinstall {
		toInstallSet.byKey[d.Key()] = d
	}
	for _, d := range append(append([]Dep{}, missing...), toReinstall...) {
		for _, a := range res.DependenciesOf(d) {
			if a.IsAsset() {
				toInstallSet.byKey[a.Key()] = a
			}
		}
	}

	// toRemove = obsolete ∪ toReinstall
	toRemoveSet := NewDepSet(obsolete)
	for _, d := range toReinstall {
		toRemoveSet.byKey[d.Key()] = d
	}

	return &UpdatePlan{
		ToInstall:   toInstallSet.Slice(),
		ToReinstall: toReinstall,
		ToRemove:    toRemoveSet.Slice(),
	}
}

func filterAssets(deps []Dep) []Dep {
	var out []Dep
	for _, d := range deps {
		if d.IsAsset() {
			out = append(out, d)
		}
	}
	return out
}

// ReverseTransitiveOrder returns deps ordered so that leaves (fewest
// dependencies) come first — used by callers fetching toInstall so partial
// progress survives interruption.
func ReverseTransitiveOrder(res *Resolution, deps []Dep) []Dep {
	// Compute a simple depth metric: number of dependencies reachable from
	// each dep (memoized), then sort ascending — leaves have depth 0.
	depth := map[string]int{}
	var depthOf func(d Dep, seen map[string]bool) int
	depthOf = func(d Dep, seen map[string]bool) int {
		k := d.Key()
		if v, ok := depth[k]; ok {
			return v
		}
		if seen[k] {
			return 0 // cycle guard; resolution shouldn't contain cycles
		}
		seen[k] = true
		max := 0
		for _, child := range res.DependenciesOf(d) {
			if v := depthOf(child, seen) + 1; v > max {
				max = v
			}
		}
		depth[k] = max
		return max
	}
	ordered := make([]Dep, len(deps))
	copy(ordered, deps)
	for _, d := range ordered {
		depthOf(d, map[string]bool{})
	}
	// stable insertion sort by depth ascending, preserving relative order
	// of equal-depth elements (deterministic output for tests).
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && depth[ordered[j].Key()] < depth[ordered[j-1].Key()]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}
