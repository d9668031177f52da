// Package version implements file-format version ordering and a
// migration registry scaffold (spec §4.8).
//
// Grounded on original_source/core/file_io/include/file_io/
// FileVersioning.h's FileVersion/migration-map design, re-expressed as
// a value type with methods plus a plain map keyed on a comparable
// struct (Go maps support struct keys directly; no hash functor is
// needed the way C++'s unordered_map requires one).
package version

import "fmt"

// FileVersion is a totally ordered four-component version.
type FileVersion struct {
	Major, Minor, Patch, Build uint16
}

// Current is this package's current file format version.
var Current = FileVersion{Major: 1, Minor: 0, Patch: 0, Build: 0}

func (v FileVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// Less reports whether v sorts before o, comparing major, minor,
// patch, build in that order (spec §4.8 Comparison).
func (v FileVersion) Less(o FileVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	if v.Patch != o.Patch {
		return v.Patch < o.Patch
	}
	return v.Build < o.Build
}

// Equal reports whether v and o compare equal component-wise.
func (v FileVersion) Equal(o FileVersion) bool { return v == o }

// CompatibleWith reports whether a file at version v can be read by a
// reader whose own version is self (spec: major must match exactly,
// minor must be ≤ self's).
func (v FileVersion) CompatibleWith(self FileVersion) bool {
	return v.Major == self.Major && v.Minor <= self.Minor
}
