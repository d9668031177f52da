package octree

import "testing"

func TestOctree_SetGetRoundTrip(t *testing.T) {
	pool := NewNodePool(0)
	o := New(pool)

	c := Coord{X: 10, Y: -20, Z: 0}
	if o.Get(c) {
		t.Fatal("expected an unset coordinate to read back false")
	}
	if !o.Set(c, true) {
		t.Fatal("expected the first Set(true) to report a change")
	}
	if !o.Get(c) {
		t.Error("expected Get to report true after Set(true)")
	}
	if o.Count() != 1 {
		t.Errorf("Count() = %d, want 1", o.Count())
	}
}

func TestOctree_SetRedundantWriteReturnsFalse(t *testing.T) {
	pool := NewNodePool(0)
	o := New(pool)
	c := Coord{X: 1, Y: 1, Z: 1}
	o.Set(c, true)
	if o.Set(c, true) {
		t.Error("expected a redundant Set(true) to report no change")
	}
	o.Set(c, false)
	if o.Set(c, false) {
		t.Error("expected a redundant Set(false) to report no change")
	}
}

func TestOctree_SetOutsideDomainFails(t *testing.T) {
	pool := NewNodePool(0)
	o := New(pool)
	c := Coord{X: maxCoordExcl, Y: 0, Z: 0}
	if o.Set(c, true) {
		t.Error("expected a Set outside the addressable domain to fail")
	}
	if o.Get(c) {
		t.Error("expected Get outside the addressable domain to be false")
	}
}

func TestOctree_ClearDeletedOnUnset(t *testing.T) {
	pool := NewNodePool(0)
	o := New(pool)
	c := Coord{X: -500, Y: 500, Z: 0}
	o.Set(c, true)
	if o.Set(c, false) != true {
		t.Fatal("expected unsetting an occupied coordinate to report a change")
	}
	if o.Count() != 0 {
		t.Errorf("Count() = %d, want 0", o.Count())
	}
	if pool.CurrentNodeCount() != 0 {
		t.Errorf("CurrentNodeCount() = %d, want 0 after the path collapses", pool.CurrentNodeCount())
	}
}

func TestOctree_AllVoxels(t *testing.T) {
	pool := NewNodePool(0)
	o := New(pool)
	coords := []Coord{{1, 1, 1}, {-1, -1, -1}, {100, -100, 50}}
	for _, c := range coords {
		o.Set(c, true)
	}
	got := o.AllVoxels()
	if len(got) != len(coords) {
		t.Fatalf("AllVoxels() returned %d coords, want %d", len(got), len(coords))
	}
	seen := make(map[Coord]bool)
	for _, c := range got {
		seen[c] = true
	}
	for _, c := range coords {
		if !seen[c] {
			t.Errorf("AllVoxels() missing %+v", c)
		}
	}
}

func TestOctree_ForEachEarlyExit(t *testing.T) {
	pool := NewNodePool(0)
	o := New(pool)
	o.Set(Coord{1, 1, 1}, true)
	o.Set(Coord{2, 2, 2}, true)
	o.Set(Coord{3, 3, 3}, true)

	visited := 0
	o.ForEach(func(Coord) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("ForEach visited %d nodes after a false return, want 1", visited)
	}
}

func TestOctree_ClearEmptiesTree(t *testing.T) {
	pool := NewNodePool(0)
	o := New(pool)
	o.Set(Coord{1, 1, 1}, true)
	o.Set(Coord{-1, -1, -1}, true)
	o.Clear()
	if o.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after Clear", o.Count())
	}
	if len(o.AllVoxels()) != 0 {
		t.Error("expected AllVoxels() to be empty after Clear")
	}
	if pool.CurrentNodeCount() != 0 {
		t.Errorf("pool CurrentNodeCount() = %d, want 0 after Clear", pool.CurrentNodeCount())
	}
}

func TestOctree_Resize(t *testing.T) {
	pool := NewNodePool(0)
	o := New(pool)
	o.Set(Coord{1, 1, 1}, true)
	o.Set(Coord{10, 10, 10}, true)

	if !o.Resize(func(Coord) bool { return true }) {
		t.Error("expected Resize to succeed when every coordinate fits")
	}
	if o.Resize(func(c Coord) bool { return c.X < 5 }) {
		t.Error("expected Resize to fail when a stored coordinate does not fit")
	}
	// Resize must not mutate the tree even on failure.
	if o.Count() != 2 {
		t.Errorf("Count() = %d after a failed Resize, want 2 (no mutation)", o.Count())
	}
}

func TestOctree_SharedPoolAcrossTrees(t *testing.T) {
	pool := NewNodePool(0)
	a := New(pool)
	b := New(pool)
	a.Set(Coord{1, 1, 1}, true)
	b.Set(Coord{2, 2, 2}, true)
	if pool.CurrentNodeCount() == 0 {
		t.Fatal("expected both trees' nodes to live in the shared pool")
	}
	if a.Get(Coord{2, 2, 2}) {
		t.Error("a's tree must not see b's voxel despite sharing a pool")
	}
}

func TestOctree_MemoryBytes(t *testing.T) {
	pool := NewNodePool(0)
	o := New(pool)
	if o.MemoryBytes() != 32 {
		t.Errorf("MemoryBytes() = %d, want 32 (root overhead only) for an empty tree", o.MemoryBytes())
	}
	o.Set(Coord{1, 1, 1}, true)
	if o.MemoryBytes() <= 32 {
		t.Error("expected MemoryBytes() to grow once nodes are allocated")
	}
}

// TestOctree_SetSurvivesPoolGrowthDuringRecursion exercises a pool that
// must grow its backing slice partway through a single Set call (a
// tiny initial capacity guarantees Alloc reallocates repeatedly while
// scattered coordinates are still descending the tree). Every placed
// voxel must remain readable and present in AllVoxels afterward.
func TestOctree_SetSurvivesPoolGrowthDuringRecursion(t *testing.T) {
	pool := NewNodePool(1)
	o := New(pool)

	var coords []Coord
	for i := int32(0); i < 60; i++ {
		c := Coord{X: i * 7, Y: -i * 3, Z: i*5 - 100}
		coords = append(coords, c)
		if !o.Set(c, true) {
			t.Fatalf("Set(%v, true) reported no change on first write", c)
		}
	}

	if o.Count() != len(coords) {
		t.Fatalf("Count() = %d, want %d", o.Count(), len(coords))
	}
	for _, c := range coords {
		if !o.Get(c) {
			t.Errorf("Get(%v) = false after Set(true); voxel lost to a pool-growth race", c)
		}
	}
	if got := len(o.AllVoxels()); got != len(coords) {
		t.Errorf("AllVoxels() returned %d entries, want %d", got, len(coords))
	}
}
