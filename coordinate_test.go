package voxforge

import "testing"

func TestIncrement_ToWorld(t *testing.T) {
	i := Increment{X: 150, Y: -25, Z: 0}
	w := i.ToWorld()
	if w.X != 1.5 || w.Y != -0.25 || w.Z != 0 {
		t.Errorf("ToWorld() = %+v", w)
	}
}

func TestWorld_ToIncrement(t *testing.T) {
	w := World{X: 1.504, Y: -0.251, Z: 0.006}
	got := w.ToIncrement()
	want := Increment{X: 150, Y: -25, Z: 1}
	if got != want {
		t.Errorf("ToIncrement() = %+v, want %+v", got, want)
	}
}

func TestWorld_OnIncrementGrid(t *testing.T) {
	cases := []struct {
		w    World
		want bool
	}{
		{World{X: 0.08, Y: 0, Z: 0}, true},
		{World{X: 0.0800001, Y: 0, Z: 0}, true},
		{World{X: 0.085, Y: 0, Z: 0}, false},
	}
	for _, c := range cases {
		if got := c.w.OnIncrementGrid(); got != c.want {
			t.Errorf("OnIncrementGrid(%+v) = %v, want %v", c.w, got, c.want)
		}
	}
}

func TestWorld_AddSub(t *testing.T) {
	a := World{X: 1, Y: 2, Z: 3}
	b := World{X: 0.5, Y: 0.5, Z: 0.5}
	if got, want := a.Add(b), (World{1.5, 2.5, 3.5}); got != want {
		t.Errorf("Add = %+v, want %+v", got, want)
	}
	if got, want := a.Sub(b), (World{0.5, 1.5, 2.5}); got != want {
		t.Errorf("Sub = %+v, want %+v", got, want)
	}
}

func TestIncrement_Add(t *testing.T) {
	a := Increment{X: 1, Y: 2, Z: 3}
	b := Increment{X: 10, Y: 10, Z: 10}
	if got, want := a.Add(b), (Increment{11, 12, 13}); got != want {
		t.Errorf("Add = %+v, want %+v", got, want)
	}
}

func TestAABB_Intersects(t *testing.T) {
	a := AABB{Min: World{0, 0, 0}, Max: World{1, 1, 1}}
	touching := AABB{Min: World{1, 0, 0}, Max: World{2, 1, 1}}
	overlapping := AABB{Min: World{0.5, 0, 0}, Max: World{1.5, 1, 1}}
	separate := AABB{Min: World{2, 0, 0}, Max: World{3, 1, 1}}

	if a.Intersects(touching, 1e-5) {
		t.Error("face-touching boxes should not intersect once shrunk by eps")
	}
	if !a.Intersects(overlapping, 1e-5) {
		t.Error("expected genuinely overlapping boxes to intersect")
	}
	if a.Intersects(separate, 1e-5) {
		t.Error("expected disjoint boxes to not intersect")
	}
}

func TestFace_Normal(t *testing.T) {
	cases := []struct {
		f    Face
		want Increment
	}{
		{FacePosX, Increment{X: 1}},
		{FaceNegX, Increment{X: -1}},
		{FacePosY, Increment{Y: 1}},
		{FaceNegY, Increment{Y: -1}},
		{FacePosZ, Increment{Z: 1}},
		{FaceNegZ, Increment{Z: -1}},
	}
	for _, c := range cases {
		if got := c.f.Normal(); got != c.want {
			t.Errorf("%v.Normal() = %+v, want %+v", c.f, got, c.want)
		}
	}
}
