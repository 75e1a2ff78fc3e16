package sc4pac

import "testing"

func buildResolution(edges map[Dep][]Dep) *Resolution {
	res := NewResolution()
	for parent, children := range edges {
		res.Add(parent)
		for _, c := range children {
			res.Add(c)
			res.AddEdge(parent, c)
		}
	}
	return res
}

func TestUpdatePlanFreshInstall(t *testing.T) {
	asset := assetDep("roads-zip")
	roads := modDep("memo", "roads", "1.0")
	res := buildResolution(map[Dep][]Dep{roads: {asset}})

	plan := UpdatePlanFromResolution(res, nil)

	want := NewDepSet([]Dep{roads, asset})
	got := NewDepSet(plan.ToInstall)
	if len(got.Slice()) != len(want.Slice()) {
		t.Fatalf("ToInstall = %v, want %v", plan.ToInstall, want.Slice())
	}
	for _, d := range want.Slice() {
		if !got.Has(d) {
			t.Errorf("ToInstall missing %v", d)
		}
	}
	if len(plan.ToRemove) != 0 || len(plan.ToReinstall) != 0 {
		t.Errorf("fresh install should have no removals/reinstalls, got remove=%v reinstall=%v", plan.ToRemove, plan.ToReinstall)
	}
	if plan.IsUpToDate() {
		t.Error("a plan with pending installs must not report up to date")
	}
}

func TestUpdatePlanObsoleteRemoved(t *testing.T) {
	roads := modDep("memo", "roads", "1.0")
	res := NewResolution() // nothing wanted anymore
	installed := []Dep{roads}

	plan := UpdatePlanFromResolution(res, installed)

	if len(plan.ToRemove) != 1 || plan.ToRemove[0].Key() != roads.Key() {
		t.Errorf("ToRemove = %v, want [%v]", plan.ToRemove, roads)
	}
	if len(plan.ToInstall) != 0 {
		t.Errorf("ToInstall = %v, want empty", plan.ToInstall)
	}
}

func TestUpdatePlanUpToDate(t *testing.T) {
	roads := modDep("memo", "roads", "1.0")
	res := NewResolution()
	res.Add(roads)

	plan := UpdatePlanFromResolution(res, []Dep{roads})
	if !plan.IsUpToDate() {
		t.Errorf("expected up to date, got %+v", plan)
	}
}

func TestUpdatePlanReinstallsWhenAssetChanges(t *testing.T) {
	// memo:roads is already installed, but the new resolution needs a
	// different asset for it (simulating a version bump whose asset
	// reference changed): the asset is "missing", so its dependent module
	// must be reinstalled even though the module Dep itself didn't change.
	roads := modDep("memo", "roads", "1.0")
	oldAsset := assetDep("roads-zip-v1")
	newAsset := assetDep("roads-zip-v2")

	res := buildResolution(map[Dep][]Dep{roads: {newAsset}})
	installed := []Dep{roads, oldAsset}

	plan := UpdatePlanFromResolution(res, installed)

	toInstall := NewDepSet(plan.ToInstall)
	if !toInstall.Has(roads) {
		t.Errorf("expected memo:roads to be reinstalled since its asset changed, ToInstall=%v", plan.ToInstall)
	}
	if !toInstall.Has(newAsset) {
		t.Errorf("expected the new asset to be installed, ToInstall=%v", plan.ToInstall)
	}
	toRemove := NewDepSet(plan.ToRemove)
	if !toRemove.Has(roads) {
		t.Errorf("expected memo:roads in ToRemove (it's reinstalled), ToRemove=%v", plan.ToRemove)
	}
	if !toRemove.Has(oldAsset) {
		t.Errorf("expected the old asset to be removed, ToRemove=%v", plan.ToRemove)
	}
}

func TestReverseTransitiveOrderLeavesFirst(t *testing.T) {
	leaf := assetDep("roads-zip")
	root := modDep("memo", "roads", "1.0")
	res := buildResolution(map[Dep][]Dep{root: {leaf}})

	ordered := ReverseTransitiveOrder(res, []Dep{root, leaf})
	if ordered[0].Key() != leaf.Key() {
		t.Errorf("ReverseTransitiveOrder()[0] = %v, want the leaf %v first", ordered[0], leaf)
	}
}
