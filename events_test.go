package voxforge

import "testing"

func TestEventBus_DispatchInRegistrationOrder(t *testing.T) {
	b := NewEventBus()
	var order []int
	b.SubscribeVoxelChanged(func(VoxelChanged) { order = append(order, 1) })
	b.SubscribeVoxelChanged(func(VoxelChanged) { order = append(order, 2) })
	b.Dispatch(VoxelChanged{})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestEventBus_OnlyMatchingTypeSubscriberFires(t *testing.T) {
	b := NewEventBus()
	voxelFired := false
	resFired := false
	b.SubscribeVoxelChanged(func(VoxelChanged) { voxelFired = true })
	b.SubscribeResolutionChanged(func(ResolutionChanged) { resFired = true })

	b.Dispatch(VoxelChanged{})
	if !voxelFired || resFired {
		t.Errorf("voxelFired=%v resFired=%v, want true/false", voxelFired, resFired)
	}
}

func TestEventBus_PanicInHandlerPropagatesAfterOthersRun(t *testing.T) {
	b := NewEventBus()
	secondRan := false
	b.SubscribeVoxelChanged(func(VoxelChanged) { panic("boom") })
	b.SubscribeVoxelChanged(func(VoxelChanged) { secondRan = true })

	defer func() {
		r := recover()
		if r == nil {
			t.Error("expected the panic to propagate to the caller")
		}
		if !secondRan {
			t.Error("expected the second handler to still run despite the first panicking")
		}
	}()
	b.Dispatch(VoxelChanged{})
}

func TestEventBus_UnknownEventTypeIsNoOp(t *testing.T) {
	b := NewEventBus()
	b.Dispatch(struct{ X int }{X: 1}) // must not panic despite no subscribers
}
