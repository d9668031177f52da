package voxforge

import "testing"

func TestVoxel_Bounds(t *testing.T) {
	v := Voxel{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res8cm}
	b := v.Bounds()
	if b.Min.Y != 0 {
		t.Errorf("Min.Y = %v, want 0 (bottom-center placement)", b.Min.Y)
	}
	if b.Max.Y != 0.08 {
		t.Errorf("Max.Y = %v, want 0.08", b.Max.Y)
	}
	if b.Min.X != -0.04 || b.Max.X != 0.04 {
		t.Errorf("X bounds = [%v, %v], want [-0.04, 0.04]", b.Min.X, b.Max.X)
	}
}

func TestVoxel_Overlaps_SameCellRule(t *testing.T) {
	a := Voxel{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res1cm}
	b := Voxel{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res512cm}
	if !b.Overlaps(a) {
		t.Error("identical increment position must overlap when the prospective voxel is not smaller")
	}
}

func TestVoxel_Overlaps_DetailWorkException(t *testing.T) {
	small := Voxel{Position: Increment{X: 10, Y: 0, Z: 10}, Resolution: Res1cm}
	big := Voxel{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res32cm}
	if small.Overlaps(big) {
		t.Error("a strictly smaller prospective voxel must never overlap a larger existing one")
	}
}

func TestVoxel_Overlaps_FaceAdjacentDoNotOverlap(t *testing.T) {
	a := Voxel{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res8cm}
	b := Voxel{Position: Increment{X: 8, Y: 0, Z: 0}, Resolution: Res8cm}
	if a.Overlaps(b) {
		t.Error("face-adjacent same-resolution voxels must not overlap")
	}
}

func TestVoxel_Overlaps_TrueOverlap(t *testing.T) {
	a := Voxel{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res32cm}
	b := Voxel{Position: Increment{X: 16, Y: 0, Z: 16}, Resolution: Res32cm}
	if !a.Overlaps(b) {
		t.Error("expected partially overlapping same-resolution voxels to overlap")
	}
}
