package octree

import "testing"

func TestNodePool_AllocGrows(t *testing.T) {
	p := NewNodePool(4)
	a := p.Alloc()
	b := p.Alloc()
	if a == b {
		t.Fatal("two live allocations must not share an index")
	}
	if got := p.CurrentNodeCount(); got != 2 {
		t.Errorf("CurrentNodeCount() = %d, want 2", got)
	}
}

func TestNodePool_FreeReusesSlot(t *testing.T) {
	p := NewNodePool(4)
	a := p.Alloc()
	p.Free(a)
	if got := p.CurrentNodeCount(); got != 0 {
		t.Errorf("CurrentNodeCount() = %d, want 0 after free", got)
	}
	b := p.Alloc()
	if b != a {
		t.Errorf("Alloc() after Free = %d, want reused index %d", b, a)
	}
}

func TestNodePool_FreeZeroIsNoOp(t *testing.T) {
	p := NewNodePool(4)
	p.Free(0)
	if got := p.CurrentNodeCount(); got != 0 {
		t.Errorf("CurrentNodeCount() = %d, want 0", got)
	}
}

func TestNodePool_PeakNodeCount(t *testing.T) {
	p := NewNodePool(4)
	a := p.Alloc()
	b := p.Alloc()
	p.Free(a)
	p.Free(b)
	if got := p.PeakNodeCount(); got != 2 {
		t.Errorf("PeakNodeCount() = %d, want 2", got)
	}
	if got := p.CurrentNodeCount(); got != 0 {
		t.Errorf("CurrentNodeCount() = %d, want 0", got)
	}
}

func TestNodePool_DefaultCapacity(t *testing.T) {
	p := NewNodePool(0)
	if p.Capacity() != 0 {
		t.Errorf("Capacity() = %d, want 0 for a fresh pool", p.Capacity())
	}
}
