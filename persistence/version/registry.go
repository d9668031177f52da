package version

import "io"

// MigrationFunc rewrites a stream from one version's binary layout to
// the next, reading r and writing w. Grounded on FileVersioning.h's
// MigrationFunction (std::function<bool(BinaryReader&, BinaryWriter&)>).
type MigrationFunc func(r io.Reader, w io.Writer) error

type versionPair struct {
	from, to FileVersion
}

// Registry holds single-step migrations keyed by (from, to) version
// pairs, plus per-step warnings and a changelog keyed by version.
//
// The shipped code registers no migrations; the registry scaffolding
// exists for future use (spec §4.8 Current state). The project loader
// does not consult this registry: it refuses files whose major version
// differs from Current.Major unless its load options ignore version
// mismatches.
type Registry struct {
	migrations map[versionPair]MigrationFunc
	warnings   map[versionPair][]string
	changelog  map[FileVersion]string
}

// NewRegistry returns an empty migration registry.
func NewRegistry() *Registry {
	return &Registry{
		migrations: make(map[versionPair]MigrationFunc),
		warnings:   make(map[versionPair][]string),
		changelog:  make(map[FileVersion]string),
	}
}

// Register adds a single-step migration from one version to the
// immediately following one.
func (r *Registry) Register(from, to FileVersion, fn MigrationFunc, warnings ...string) {
	key := versionPair{from, to}
	r.migrations[key] = fn
	if len(warnings) > 0 {
		r.warnings[key] = append([]string(nil), warnings...)
	}
}

// SetChangelog records the human-readable changelog entry for a
// version.
func (r *Registry) SetChangelog(v FileVersion, notes string) {
	r.changelog[v] = notes
}

// Changelog returns the changelog notes for v, if any.
func (r *Registry) Changelog(v FileVersion) (string, bool) {
	notes, ok := r.changelog[v]
	return notes, ok
}

// CanUpgrade reports whether a chain of registered single-step
// migrations connects from to to, via breadth-first search over the
// registered pairs (mirrors FileVersioning.h's findUpgradePath).
func (r *Registry) CanUpgrade(from, to FileVersion) bool {
	path := r.findUpgradePath(from, to)
	return path != nil
}

// UpgradeWarnings returns the concatenated warnings along the upgrade
// path from from to to, or nil if no path exists.
func (r *Registry) UpgradeWarnings(from, to FileVersion) []string {
	path := r.findUpgradePath(from, to)
	if path == nil {
		return nil
	}
	var warnings []string
	for i := 0; i+1 < len(path); i++ {
		warnings = append(warnings, r.warnings[versionPair{path[i], path[i+1]}]...)
	}
	return warnings
}

// UpgradeFile runs the registered migration chain from from to to,
// piping r through each intermediate step into w. Returns an error if
// no migration path is registered.
func (r *Registry) UpgradeFile(from, to FileVersion, src io.Reader, dst io.Writer) error {
	path := r.findUpgradePath(from, to)
	if path == nil {
		return &NoPathError{From: from, To: to}
	}
	if len(path) == 1 {
		_, err := io.Copy(dst, src)
		return err
	}
	cur := src
	var stepErrs []chan error
	for i := 0; i+1 < len(path); i++ {
		fn := r.migrations[versionPair{path[i], path[i+1]}]
		last := i+2 == len(path)
		if last {
			if err := fn(cur, dst); err != nil {
				return err
			}
			break
		}
		pr, pw := io.Pipe()
		errCh := make(chan error, 1)
		go func(fn MigrationFunc, src io.Reader, dst *io.PipeWriter) {
			err := fn(src, dst)
			dst.CloseWithError(err)
			errCh <- err
		}(fn, cur, pw)
		cur = pr
		stepErrs = append(stepErrs, errCh)
	}
	for _, errCh := range stepErrs {
		if err := <-errCh; err != nil {
			return err
		}
	}
	return nil
}

// findUpgradePath performs a breadth-first search over registered
// migration edges and returns the sequence of versions from from to
// to inclusive, or nil if unreachable. from == to returns a
// single-element path.
func (r *Registry) findUpgradePath(from, to FileVersion) []FileVersion {
	if from.Equal(to) {
		return []FileVersion{from}
	}
	type frame struct {
		v    FileVersion
		path []FileVersion
	}
	visited := map[FileVersion]bool{from: true}
	queue := []frame{{from, []FileVersion{from}}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for pair := range r.migrations {
			if pair.from != cur.v || visited[pair.to] {
				continue
			}
			next := append(append([]FileVersion(nil), cur.path...), pair.to)
			if pair.to.Equal(to) {
				return next
			}
			visited[pair.to] = true
			queue = append(queue, frame{pair.to, next})
		}
	}
	return nil
}

// NoPathError reports that no migration chain connects From to To.
type NoPathError struct {
	From, To FileVersion
}

func (e *NoPathError) Error() string {
	return "version: no migration path from " + e.From.String() + " to " + e.To.String()
}
