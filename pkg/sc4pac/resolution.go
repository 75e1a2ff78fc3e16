package sc4pac

// Resolution is the graph of resolved Deps produced by the Resolver.
// It stores the transitive closure in the order it was discovered plus a
// reverse-edge index so dependentsOf can answer without a graph walk.
type Resolution struct {
	// order preserves discovery order for transitiveDependencies().
	order []Dep
	// byKey indexes deps by their Key() for O(1) membership tests.
	byKey map[string]Dep
	// deps maps a dependent's key to the keys of the things it directly depends on.
	deps map[string][]string
	// dependents maps a dependency's key to the keys of things that directly depend on it.
	dependents map[string][]string
}

// NewResolution creates an empty, mutable Resolution. Populated by the Resolver.
func NewResolution() *Resolution {
	return &Resolution{
		byKey:      map[string]Dep{},
		deps:       map[string][]string{},
		dependents: map[string][]string{},
	}
}

// Add records dep as part of the closure if not already present, returning
// whether it was newly added (so the Resolver can decide whether to recurse
// into it).
func (r *Resolution) Add(dep Dep) bool {
	k := dep.Key()
	if _, ok := r.byKey[k]; ok {
		return false
	}
	r.byKey[k] = dep
	r.order = append(r.order, dep)
	return true
}

// AddEdge records that `from` directly depends on `to`.
func (r *Resolution) AddEdge(from, to Dep) {
	fk, tk := from.Key(), to.Key()
	r.deps[fk] = append(r.deps[fk], tk)
	r.dependents[tk] = append(r.dependents[tk], fk)
}

// TransitiveDependencies returns every resolved Dep in discovery order.
func (r *Resolution) TransitiveDependencies() []Dep {
	out := make([]Dep, len(r.order))
	copy(out, r.order)
	return out
}

// DependenciesOf returns the Deps that `d` directly depends on.
func (r *Resolution) DependenciesOf(d Dep) []Dep {
	var out []Dep
	for _, k := range r.deps[d.Key()] {
		out = append(out, r.byKey[k])
	}
	return out
}

// DependentsOf returns every Dep that directly depends on any member of S.
func (r *Resolution) DependentsOf(set []Dep) []Dep {
	seen := map[string]bool{}
	var out []Dep
	for _, d := range set {
		for _, k := range r.dependents[d.Key()] {
			if !seen[k] {
				seen[k] = true
				out = append(out, r.byKey[k])
			}
		}
	}
	return out
}

// Has reports whether dep (matched by Key) is part of this resolution.
func (r *Resolution) Has(dep Dep) bool {
	_, ok := r.byKey[dep.Key()]
	return ok
}

// Get returns the resolved Dep for the given key, if present.
func (r *Resolution) Get(key string) (Dep, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// DepSet is a small convenience set type over Dep.Key(), used by UpdatePlanner.
type DepSet struct {
	byKey map[string]Dep
}

// NewDepSet builds a DepSet from a slice of Deps.
func NewDepSet(deps []Dep) *DepSet {
	s := &DepSet{byKey: map[string]Dep{}}
	for _, d := range deps {
		s.byKey[d.Key()] = d
	}
	return s
}

func (s *DepSet) Has(d Dep) bool {
	_, ok := s.byKey[d.Key()]
	return ok
}

func (s *DepSet) Slice() []Dep {
	out := make([]Dep, 0, len(s.byKey))
	for _, d := range s.byKey {
		out = append(out, d)
	}
	return out
}

// Minus returns the Deps in s that are not present in other (set difference).
func (s *DepSet) Minus(other *DepSet) []Dep {
	var out []Dep
	for k, d := range s.byKey {
		if _, ok := other.byKey[k]; !ok {
			out = append(out, d)
		}
	}
	return out
}

// Intersect returns the Deps present in both s and other.
func (s *DepSet) Intersect(other *DepSet) []Dep {
	var out []Dep
	for k, d := range s.byKey {
		if _, ok := other.byKey[k]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Union returns the set union of s and other, as a slice.
func (s *DepSet) Union(other *DepSet) []Dep {
	out := make([]Dep, 0, len(s.byKey)+len(other.byKey))
	seen := map[string]bool{}
	for k, d := range s.byKey {
		seen[k] = true
		out = append(out, d)
	}
	for k, d := range other.byKey {
		if !seen[k] {
			out = append(out, d)
		}
	}
	return out
}
