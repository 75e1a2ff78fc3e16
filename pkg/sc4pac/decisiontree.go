package sc4pac

import "sort"

// DecisionTree is the internal structure used for variant refinement. A Node asks for one variant key and branches over the values
// declared for it by the remaining candidate Variants; Empty terminates a
// path once every key relevant to it has been decided.
//
// The tree is deliberately not a flat enumeration of every Variant
// combination: a flat list scales with the product of all keys' value
// counts and loses the ordering information needed to ask the user only the
// questions a given package actually needs, in an order where each answer
// narrows the remaining candidates deterministically.
type DecisionTree struct {
	// Empty is true for a leaf: no further key needs to be decided on this path.
	Empty bool
	// Key is the variant key this node asks about (unset when Empty).
	Key string
	// Branches pairs each declared value of Key with the subtree for variants
	// that chose it, preserving first-appearance order.
	Branches []DecisionBranch
}

// DecisionBranch is one (value, subtree) edge out of a DecisionTree Node.
type DecisionBranch struct {
	Value   string
	Subtree *DecisionTree
}

// BuildDecisionTree constructs a DecisionTree from a package's non-empty
// list of declared Variants.
func BuildDecisionTree(variants []Variant) (*DecisionTree, error) {
	if len(variants) == 0 {
		return nil, ErrNoCommonKeys
	}
	allKeys := map[string]struct{}{}
	for _, v := range variants {
		for k := range v {
			allKeys[k] = struct{}{}
		}
	}
	keysLeft := make([]string, 0, len(allKeys))
	for k := range allKeys {
		keysLeft = append(keysLeft, k)
	}
	sort.Strings(keysLeft)
	return decisionHelper(variants, keysLeft)
}

// decisionHelper implements the recursive construction below:
//
//	helper(V, keysLeft):
//	  if |V|==1 and no remaining unchosen keys -> Empty
//	  else find k in keysLeft such that every v in V defines k
//	    if none -> fail NoCommonKeys
//	    else partition V by v[k] (first-appearance order), recurse on each
//	         partition with keysLeft - {k}
func decisionHelper(variants []Variant, keysLeft []string) (*DecisionTree, error) {
	if len(variants) == 1 && len(relevantKeysLeft(variants, keysLeft)) == 0 {
		return &DecisionTree{Empty: true}, nil
	}

	key, ok := findCommonKey(variants, keysLeft)
	if !ok {
		return nil, ErrNoCommonKeys
	}

	// Partition by v[key], preserving first-appearance order of values.
	order := []string{}
	groups := map[string][]Variant{}
	for _, v := range variants {
		val := v[key]
		if _, seen := groups[val]; !seen {
			order = append(order, val)
		}
		groups[val] = append(groups[val], v)
	}

	remainingKeys := removeKey(keysLeft, key)

	branches := make([]DecisionBranch, 0, len(order))
	for _, val := range order {
		subtree, err := decisionHelper(groups[val], remainingKeys)
		if err != nil {
			return nil, err
		}
		branches = append(branches, DecisionBranch{Value: val, Subtree: subtree})
	}
	return &DecisionTree{Key: key, Branches: branches}, nil
}

// relevantKeysLeft filters keysLeft down to keys that at least one
// remaining variant still defines — a single-variant group with no
// relevant keys left terminates the recursion (matches the |V|==1 base
// case without requiring keysLeft itself to be empty).
func relevantKeysLeft(variants []Variant, keysLeft []string) []string {
	out := []string{}
	for _, k := range keysLeft {
		for _, v := range variants {
			if _, ok := v[k]; ok {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

// findCommonKey returns a key from keysLeft that every variant in V defines,
// preferring keysLeft's order for determinism.
func findCommonKey(variants []Variant, keysLeft []string) (string, bool) {
	for _, k := range keysLeft {
		all := true
		for _, v := range variants {
			if _, ok := v[k]; !ok {
				all = false
				break
			}
		}
		if all {
			return k, true
		}
	}
	return "", false
}

func removeKey(keys []string, remove string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != remove {
			out = append(out, k)
		}
	}
	return out
}

// Resolve walks the tree given a caller's accumulated variant choices
//. At each Node it requires globalVariant[Key] to be set and
// to match one of the node's declared values; otherwise it returns a
// MissingVariantError naming Key and the available alternatives, which the
// driver loop is expected to catch, prompt for, and retry with an updated
// globalVariant.
//
// pkg identifies the package being resolved, used only to populate the
// MissingVariantError.
func (t *DecisionTree) Resolve(pkg BareModule, global Variant) (Variant, error) {
	chosen := Variant{}
	node := t
	for !node.Empty {
		val, ok := global[node.Key]
		var branch *DecisionBranch
		if ok {
			for i := range node.Branches {
				if node.Branches[i].Value == val {
					branch = &node.Branches[i]
					break
				}
			}
		}
		if branch == nil {
			alts := make([]string, len(node.Branches))
			for i, b := range node.Branches {
				alts[i] = b.Value
			}
			return nil, &MissingVariantError{Package: pkg, Key: node.Key, Alternatives: alts}
		}
		chosen[node.Key] = val
		node = branch.Subtree
	}
	return chosen, nil
}

// Leaves returns every concrete Variant reachable by taking one branch at
// each node, in first-appearance order — used to verify the bijection
// property in tests.
func (t *DecisionTree) Leaves() []Variant {
	if t.Empty {
		return []Variant{{}}
	}
	var out []Variant
	for _, b := range t.Branches {
		for _, leaf := range b.Subtree.Leaves() {
			merged := leaf.Clone()
			merged[t.Key] = b.Value
			out = append(out, merged)
		}
	}
	return out
}

// sortedVariantKeyset is a small helper used by callers that need a stable
// iteration order over a Variant's keys outside of FolderTokens.
func sortedVariantKeyset(v Variant) []string {
	keys := v.sortedKeys()
	sort.Strings(keys)
	return keys
}
