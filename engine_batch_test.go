package voxforge

import "testing"

func TestEngine_BatchSet_AllOrNothingOnFailure(t *testing.T) {
	e := newTestEngine()
	e.Set(Increment{X: 200, Y: 0, Z: 0}, Res32cm, true)

	changes := []VoxelChange{
		{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res32cm, Value: true},
		{Position: Increment{X: 200, Y: 16, Z: 16}, Resolution: Res32cm, Value: true}, // overlaps the pre-existing voxel
	}
	result, err := e.BatchSet(changes)
	if result.Success || err == nil {
		t.Fatalf("expected BatchSet to fail atomically, got %+v, %v", result, err)
	}
	if e.Get(Increment{X: 0, Y: 0, Z: 0}, Res32cm) {
		t.Error("expected the first change to not be applied when a later change fails")
	}
}

func TestEngine_BatchSet_ClearThenPlaceInVacatedSpace(t *testing.T) {
	e := newTestEngine()
	e.Set(Increment{X: 0, Y: 0, Z: 0}, Res32cm, true)

	changes := []VoxelChange{
		{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res32cm, Value: false},
		{Position: Increment{X: 16, Y: 16, Z: 16}, Resolution: Res32cm, Value: true},
	}
	result, err := e.BatchSet(changes)
	if !result.Success || err != nil {
		t.Fatalf("BatchSet = %+v, %v, want success", result, err)
	}
	if e.Get(Increment{X: 0, Y: 0, Z: 0}, Res32cm) {
		t.Error("expected the first cell to end up cleared")
	}
	if !e.Get(Increment{X: 16, Y: 16, Z: 16}, Res32cm) {
		t.Error("expected the second cell to end up occupied")
	}
}

func TestEngine_BatchSet_RedundantChangeCountsAsSkipped(t *testing.T) {
	e := newTestEngine()
	e.Set(Increment{X: 0, Y: 0, Z: 0}, Res8cm, true)

	changes := []VoxelChange{
		{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res8cm, Value: true},
		{Position: Increment{X: 8, Y: 0, Z: 0}, Resolution: Res8cm, Value: true},
	}
	result, err := e.BatchSet(changes)
	if !result.Success || err != nil {
		t.Fatalf("BatchSet = %+v, %v", result, err)
	}
	if result.Skipped != 1 || result.Applied != 1 {
		t.Errorf("Skipped=%d Applied=%d, want 1, 1", result.Skipped, result.Applied)
	}
}

func TestEngine_BatchSet_InvalidResolutionFails(t *testing.T) {
	e := newTestEngine()
	changes := []VoxelChange{
		{Position: Increment{}, Resolution: Resolution(resolutionCount), Value: true},
	}
	_, err := e.BatchSet(changes)
	if err == nil {
		t.Fatal("expected an error for an invalid resolution in the batch")
	}
}

func TestVoxelSetCommand_ExecuteUndo(t *testing.T) {
	e := newTestEngine()
	pos := Increment{X: 0, Y: 0, Z: 0}
	cmd := NewVoxelSetCommand(e, pos, Res8cm, true)

	if !cmd.Execute() {
		t.Fatal("expected Execute to succeed")
	}
	if !e.Get(pos, Res8cm) {
		t.Error("expected the voxel to be placed after Execute")
	}
	if !cmd.Undo() {
		t.Fatal("expected Undo to succeed")
	}
	if e.Get(pos, Res8cm) {
		t.Error("expected the voxel to be cleared after Undo")
	}
}

func TestVoxelSetCommand_Name(t *testing.T) {
	e := newTestEngine()
	place := NewVoxelSetCommand(e, Increment{}, Res8cm, true)
	remove := NewVoxelSetCommand(e, Increment{}, Res8cm, false)
	if place.Name() != "Place Voxel" {
		t.Errorf("place.Name() = %q", place.Name())
	}
	if remove.Name() != "Remove Voxel" {
		t.Errorf("remove.Name() = %q", remove.Name())
	}
	if place.Kind() != CommandVoxelEdit {
		t.Errorf("Kind() = %v, want CommandVoxelEdit", place.Kind())
	}
}

func TestBatchSetCommand_ExecuteUndo(t *testing.T) {
	e := newTestEngine()
	changes := []VoxelChange{
		{Position: Increment{X: 0, Y: 0, Z: 0}, Resolution: Res8cm, Value: true},
		{Position: Increment{X: 8, Y: 0, Z: 0}, Resolution: Res8cm, Value: true},
	}
	cmd := NewBatchSetCommand(e, "Fill", changes)
	if !cmd.Execute() {
		t.Fatal("expected Execute to succeed")
	}
	if e.TotalCount() != 2 {
		t.Fatalf("TotalCount() = %d, want 2", e.TotalCount())
	}
	if !cmd.Undo() {
		t.Fatal("expected Undo to succeed")
	}
	if e.TotalCount() != 0 {
		t.Errorf("TotalCount() after Undo = %d, want 0", e.TotalCount())
	}
}

func TestBatchSetCommand_DefaultName(t *testing.T) {
	e := newTestEngine()
	cmd := NewBatchSetCommand(e, "", nil)
	if cmd.Name() != "Batch Edit" {
		t.Errorf("Name() = %q, want default Batch Edit", cmd.Name())
	}
}
