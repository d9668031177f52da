package voxforge

import "testing"

func TestNopLogger_DiscardsEverything(t *testing.T) {
	l := NewNopLogger()
	l.Debugf("x %d", 1)
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")
	if l.DebugEnabled() {
		t.Error("expected the nop logger to report debug disabled")
	}
	l.SetDebug(true)
	if l.DebugEnabled() {
		t.Error("expected SetDebug on the nop logger to have no effect")
	}
}

func TestDefaultLogger_DebugGatedBySetDebug(t *testing.T) {
	l := NewDefaultLogger("test", false)
	if l.DebugEnabled() {
		t.Error("expected debug to start disabled")
	}
	l.SetDebug(true)
	if !l.DebugEnabled() {
		t.Error("expected SetDebug(true) to enable debug")
	}
	l.Debugf("hello %s", "world")
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("error")
}
