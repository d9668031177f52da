package voxforge

import "testing"

func TestCaptureSnapshot_RoundTripViaRestoreInto(t *testing.T) {
	e := newTestEngine()
	e.Set(Increment{X: 0, Y: 0, Z: 0}, Res8cm, true)
	e.Set(Increment{X: 100, Y: 0, Z: 0}, Res32cm, true)
	e.SetActiveResolution(Res16cm)

	snap := CaptureSnapshot(e, "checkpoint", 12345, []byte("sel"), []byte("cam"), nil)
	if snap.Description != "checkpoint" || snap.Timestamp != 12345 {
		t.Errorf("unexpected metadata: %+v", snap)
	}
	if !snap.HasSelections || !snap.HasCamera || snap.HasRender {
		t.Errorf("unexpected presence flags: sel=%v cam=%v render=%v", snap.HasSelections, snap.HasCamera, snap.HasRender)
	}

	e2 := newTestEngine()
	snap.RestoreInto(e2)
	if e2.ActiveResolution() != Res16cm {
		t.Errorf("ActiveResolution() = %v, want Res16cm", e2.ActiveResolution())
	}
	if !e2.Get(Increment{X: 0, Y: 0, Z: 0}, Res8cm) {
		t.Error("expected the 8cm voxel to survive restore")
	}
	if !e2.Get(Increment{X: 100, Y: 0, Z: 0}, Res32cm) {
		t.Error("expected the 32cm voxel to survive restore")
	}
	if e2.TotalCount() != 2 {
		t.Errorf("TotalCount() = %d, want 2", e2.TotalCount())
	}
}

func TestSnapshot_EncodeDecodeUncompressed(t *testing.T) {
	e := newTestEngine()
	e.Set(Increment{X: 0, Y: 0, Z: 0}, Res8cm, true)
	snap := CaptureSnapshot(e, "d", 99, []byte("abc"), nil, nil)

	encoded := snap.Encode(false)
	decoded, err := DecodeSnapshot(encoded)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if decoded.Description != "d" || decoded.Timestamp != 99 {
		t.Errorf("decoded metadata mismatch: %+v", decoded)
	}
	if string(decoded.Selections) != "abc" {
		t.Errorf("decoded.Selections = %q, want abc", decoded.Selections)
	}
	if len(decoded.Voxels[Res8cm]) != 1 || decoded.Voxels[Res8cm][0] != (Increment{0, 0, 0}) {
		t.Errorf("decoded.Voxels[Res8cm] = %v", decoded.Voxels[Res8cm])
	}
}

func TestSnapshot_EncodeDecodeCompressed(t *testing.T) {
	e := newTestEngine()
	for i := int32(0); i < 20; i++ {
		e.Set(Increment{X: i * 8, Y: 0, Z: 0}, Res8cm, true)
	}
	snap := CaptureSnapshot(e, "many", 1, nil, nil, nil)

	encoded := snap.Encode(true)
	decoded, err := DecodeSnapshot(encoded)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if len(decoded.Voxels[Res8cm]) != 20 {
		t.Errorf("decoded %d voxels, want 20", len(decoded.Voxels[Res8cm]))
	}
}

func TestDecodeSnapshot_BadMagicRejected(t *testing.T) {
	_, err := DecodeSnapshot([]byte("XXXXextragarbage"))
	if err == nil {
		t.Fatal("expected an error for a bad magic")
	}
}

func TestDecodeSnapshot_TruncatedInputRejected(t *testing.T) {
	e := newTestEngine()
	snap := CaptureSnapshot(e, "", 0, nil, nil, nil)
	encoded := snap.Encode(false)
	_, err := DecodeSnapshot(encoded[:len(encoded)-5])
	if err == nil {
		t.Fatal("expected an error decoding a truncated snapshot")
	}
}

func TestSnapshotSource_Capture(t *testing.T) {
	e := newTestEngine()
	e.Set(Increment{X: 0, Y: 0, Z: 0}, Res8cm, true)
	src := NewSnapshotSource(e, nil, nil, nil, nil)
	encoded := src.Capture()
	decoded, err := DecodeSnapshot(encoded)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if len(decoded.Voxels[Res8cm]) != 1 {
		t.Errorf("decoded %d voxels, want 1", len(decoded.Voxels[Res8cm]))
	}
}

func TestHistoryManager_CapturesSnapshotAtInterval(t *testing.T) {
	e := newTestEngine()
	h := NewHistoryManager(nil, nil)
	h.SetSnapshotInterval(2)
	h.SetSnapshotSource(NewSnapshotSource(e, nil, nil, nil, nil))

	h.ExecuteCommand(NewVoxelSetCommand(e, Increment{X: 0, Y: 0, Z: 0}, Res8cm, true))
	if len(h.snapshots) != 0 {
		t.Fatalf("snapshots = %d after 1 command, want 0", len(h.snapshots))
	}
	h.ExecuteCommand(NewVoxelSetCommand(e, Increment{X: 8, Y: 0, Z: 0}, Res8cm, true))
	if len(h.snapshots) != 1 {
		t.Fatalf("snapshots = %d after 2 commands, want 1", len(h.snapshots))
	}
}
