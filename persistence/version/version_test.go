package version

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFileVersion_Less(t *testing.T) {
	cases := []struct {
		a, b FileVersion
		want bool
	}{
		{FileVersion{1, 0, 0, 0}, FileVersion{2, 0, 0, 0}, true},
		{FileVersion{2, 0, 0, 0}, FileVersion{1, 9, 9, 9}, false},
		{FileVersion{1, 2, 0, 0}, FileVersion{1, 3, 0, 0}, true},
		{FileVersion{1, 2, 3, 0}, FileVersion{1, 2, 3, 1}, true},
		{FileVersion{1, 2, 3, 1}, FileVersion{1, 2, 3, 1}, false},
	}
	for _, c := range cases {
		if got := c.a.Less(c.b); got != c.want {
			t.Errorf("%v.Less(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestFileVersion_CompatibleWith(t *testing.T) {
	self := FileVersion{Major: 1, Minor: 3, Patch: 0, Build: 0}

	if !(FileVersion{1, 2, 0, 0}).CompatibleWith(self) {
		t.Error("expected older minor to be compatible")
	}
	if !(FileVersion{1, 3, 0, 0}).CompatibleWith(self) {
		t.Error("expected matching version to be compatible")
	}
	if (FileVersion{1, 4, 0, 0}).CompatibleWith(self) {
		t.Error("expected newer minor to be incompatible")
	}
	if (FileVersion{2, 0, 0, 0}).CompatibleWith(self) {
		t.Error("expected different major to be incompatible")
	}
}

func TestFileVersion_String(t *testing.T) {
	v := FileVersion{Major: 1, Minor: 2, Patch: 3, Build: 4}
	if got, want := v.String(), "1.2.3.4"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRegistry_NoMigrationsRegistered(t *testing.T) {
	r := NewRegistry()
	from := FileVersion{1, 0, 0, 0}
	to := FileVersion{1, 1, 0, 0}

	if r.CanUpgrade(from, to) {
		t.Error("expected no upgrade path in an empty registry")
	}
	if r.CanUpgrade(from, from) == false {
		t.Error("expected a version to trivially upgrade to itself")
	}
}

func TestRegistry_DirectStep(t *testing.T) {
	r := NewRegistry()
	v1 := FileVersion{1, 0, 0, 0}
	v2 := FileVersion{1, 1, 0, 0}

	r.Register(v1, v2, func(src io.Reader, dst io.Writer) error {
		_, err := io.Copy(dst, src)
		return err
	}, "adds a new optional field")

	if !r.CanUpgrade(v1, v2) {
		t.Fatal("expected direct migration step to be reachable")
	}
	warnings := r.UpgradeWarnings(v1, v2)
	if len(warnings) != 1 || warnings[0] != "adds a new optional field" {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	var out bytes.Buffer
	if err := r.UpgradeFile(v1, v2, bytes.NewReader([]byte("payload")), &out); err != nil {
		t.Fatalf("UpgradeFile: %v", err)
	}
	if out.String() != "payload" {
		t.Errorf("UpgradeFile output = %q, want %q", out.String(), "payload")
	}
}

func TestRegistry_MultiStepPath(t *testing.T) {
	r := NewRegistry()
	v1 := FileVersion{1, 0, 0, 0}
	v2 := FileVersion{1, 1, 0, 0}
	v3 := FileVersion{1, 2, 0, 0}

	identity := func(src io.Reader, dst io.Writer) error {
		_, err := io.Copy(dst, src)
		return err
	}
	r.Register(v1, v2, identity)
	r.Register(v2, v3, identity)

	if !r.CanUpgrade(v1, v3) {
		t.Fatal("expected two-step migration path to be found")
	}

	var out bytes.Buffer
	if err := r.UpgradeFile(v1, v3, bytes.NewReader([]byte("data")), &out); err != nil {
		t.Fatalf("UpgradeFile: %v", err)
	}
	if out.String() != "data" {
		t.Errorf("UpgradeFile output = %q, want %q", out.String(), "data")
	}
}

func TestRegistry_UpgradeFile_NoPath(t *testing.T) {
	r := NewRegistry()
	from := FileVersion{1, 0, 0, 0}
	to := FileVersion{1, 5, 0, 0}

	err := r.UpgradeFile(from, to, bytes.NewReader(nil), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected an error for an unregistered upgrade path")
	}
	var pathErr *NoPathError
	if !errors.As(err, &pathErr) {
		t.Errorf("expected *NoPathError, got %T: %v", err, err)
	}
}
