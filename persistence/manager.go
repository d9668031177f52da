// Package persistence orchestrates saving and loading Project values
// to the chunked container format of spec §4.6, plus backup rotation
// and background auto-save.
//
// Grounded on original_source/core/file_io/src/FileManager.cpp:
// saveProject/loadProject delegate to *Internal variants wrapped with
// backup creation and recent-file bookkeeping; this package keeps that
// save/load split (SaveProject wraps saveProjectInternal-equivalent
// logic with CreateBackup) but drops FileManager's recent-files list,
// which nothing in SPEC_FULL.md's scope consumes.
package persistence

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lukechampine.com/blake3"

	"github.com/voxforge/voxforge"
	"github.com/voxforge/voxforge/persistence/compress"
	"github.com/voxforge/voxforge/persistence/container"
)

const defaultExtension = ".cvef"

// SaveOptions configures SaveProject (spec §4.6 "Save options").
type SaveOptions struct {
	Compress           bool
	CompressionLevel   int
	IncludeHistory     bool
	IncludeCache       bool
	CreateBackup       bool
	ValidateBeforeSave bool
	MaxBackups         int
}

// DefaultSaveOptions compresses at a moderate level and creates a
// backup, matching the teacher's SaveOptions::Default preset shape.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{Compress: true, CompressionLevel: 6, CreateBackup: true, ValidateBeforeSave: true, MaxBackups: 5}
}

// FastSaveOptions skips compression, backups, and validation — used by
// auto-save (spec §5 "Auto-save ... Fast options").
func FastSaveOptions() SaveOptions {
	return SaveOptions{}
}

// CompactSaveOptions compresses at the highest level and excludes
// history/cache sections.
func CompactSaveOptions() SaveOptions {
	return SaveOptions{Compress: true, CompressionLevel: 9, CreateBackup: true, MaxBackups: 5}
}

// LoadOptions configures LoadProject (spec §4.6 "Load options").
type LoadOptions struct {
	LoadHistory           bool
	LoadCache             bool
	ValidateAfterLoad     bool
	UpgradeVersion        bool
	IgnoreVersionMismatch bool
}

// DefaultLoadOptions loads everything present and validates.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{LoadHistory: true, LoadCache: true, ValidateAfterLoad: true}
}

// SafeLoadOptions additionally tolerates a version mismatch rather
// than rejecting the file outright.
func SafeLoadOptions() LoadOptions {
	return LoadOptions{ValidateAfterLoad: true, IgnoreVersionMismatch: true}
}

// Manager orchestrates save/load for a set of projects, including
// backup rotation and (via its AutoSaver) periodic background saves.
type Manager struct {
	log   voxforge.Logger
	clock func() int64 // unix milliseconds; overridable for tests
}

// NewManager constructs a Manager. A nil logger discards all output.
func NewManager(log voxforge.Logger) *Manager {
	return &Manager{log: logOrNop(log), clock: func() int64 { return time.Now().UnixMilli() }}
}

func logOrNop(l voxforge.Logger) voxforge.Logger {
	if l == nil {
		return voxforge.NewNopLogger()
	}
	return l
}

// SaveProject writes project to path using opts, following the
// write-to-temp-then-rename protocol of spec §4.6 "Atomicity" and
// §9 "Scoped resources". On success project.MarkSaved is called.
func (m *Manager) SaveProject(path string, project *voxforge.Project, opts SaveOptions) error {
	return m.saveProject(path, project, opts, true)
}

// SaveProjectSnapshot writes project to path exactly like SaveProject
// but does not clear project's dirty flag — used by AutoSaver, whose
// writes target a sibling autosave path rather than the project's
// canonical save location (spec §5: auto-save is a safety net, not a
// substitute for the user's own save).
func (m *Manager) SaveProjectSnapshot(path string, project *voxforge.Project, opts SaveOptions) error {
	return m.saveProject(path, project, opts, false)
}

func (m *Manager) saveProject(path string, project *voxforge.Project, opts SaveOptions, markSaved bool) error {
	if opts.ValidateBeforeSave && !project.IsValid() {
		return voxforge.NewCoreError(voxforge.ErrInvalidFormat, "project failed pre-save validation")
	}

	if opts.CreateBackup {
		if _, err := os.Stat(path); err == nil {
			maxBackups := opts.MaxBackups
			if maxBackups <= 0 {
				maxBackups = 5
			}
			if err := m.createBackup(path, maxBackups); err != nil {
				m.log.Warnf("backup failed for %s: %v", path, err)
			}
		}
	}

	chunks, err := buildChunks(project, opts)
	if err != nil {
		return voxforge.WrapCoreError(voxforge.ErrWriteError, "build chunks", err)
	}

	payload, checksum := encodeChunks(chunks, opts.Compress)
	header := container.CurrentHeader().WithChunksCompressed(opts.Compress)
	header.FileSize = uint64(container.HeaderSize + len(payload))
	header.Checksum = checksum

	if err := m.writeAtomic(path, header, payload); err != nil {
		return voxforge.WrapCoreError(voxforge.ErrWriteError, "write project file", err)
	}

	if markSaved {
		project.MarkSaved()
	}
	return nil
}

// writeAtomic writes header and a pre-encoded chunk stream to a
// temporary file in the same directory as path, fsyncs it, then
// renames it over path.
func (m *Manager) writeAtomic(path string, header container.Header, chunkStream []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*"+filepath.Ext(path))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if err := writeHeader(tmp, header); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(chunkStream); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func writeHeader(f *os.File, header container.Header) error {
	return container.Write(f, header, nil)
}

// encodeChunks writes chunks' 16-byte-prefixed form to a single
// buffer, individually RLE-compressing each payload when compress is
// true (the container's compression_flags bit applies uniformly to
// every chunk in the file).
func encodeChunks(chunks []container.Chunk, useCompression bool) ([]byte, uint64) {
	out := chunks
	if useCompression {
		rle := compress.NewRLE()
		out = make([]container.Chunk, len(chunks))
		for i, c := range chunks {
			encoded, used := rle.Compress(c.Payload)
			if !used {
				out[i] = container.Chunk{Tag: c.Tag, Payload: c.Payload, Uncompressed: uint32(len(c.Payload))}
				continue
			}
			out[i] = container.Chunk{Tag: c.Tag, Payload: encoded, Uncompressed: uint32(len(c.Payload))}
		}
	}

	var buf bytes.Buffer
	_ = container.WriteChunks(&buf, out) // bytes.Buffer.Write never errors
	stream := buf.Bytes()

	hash := blake3.Sum256(stream)
	checksum := uint64(hash[0]) | uint64(hash[1])<<8 | uint64(hash[2])<<16 | uint64(hash[3])<<24 |
		uint64(hash[4])<<32 | uint64(hash[5])<<40 | uint64(hash[6])<<48 | uint64(hash[7])<<56
	return stream, checksum
}

func buildChunks(project *voxforge.Project, opts SaveOptions) ([]container.Chunk, error) {
	meta := container.Metadata{
		Name:               project.Metadata.Name,
		Description:        project.Metadata.Description,
		Author:             project.Metadata.Author,
		CreatedSeconds:     uint64(project.Metadata.CreatedSeconds),
		ModifiedSeconds:    uint64(project.Metadata.ModifiedSeconds),
		Application:        project.Metadata.Application,
		ApplicationVersion: project.Metadata.ApplicationVersion,
		Custom:             project.Metadata.Custom,
	}

	size := project.Workspace.Size()
	settings := container.Settings{
		Size:              [3]float32{size.X, size.Y, size.Z},
		DefaultResolution: uint8(project.Engine.ActiveResolution()),
	}

	voxelData := container.VoxelData{ActiveResolution: uint8(project.Engine.ActiveResolution())}
	for _, res := range voxforge.AllResolutions {
		voxels := project.Engine.AllVoxels(res)
		coords := make([][3]int32, len(voxels))
		for i, v := range voxels {
			coords[i] = [3]int32{v.Position.X, v.Position.Y, v.Position.Z}
		}
		voxelData.Resolutions = append(voxelData.Resolutions, container.VoxelResolutionData{
			Resolution: uint8(res),
			Coords:     coords,
		})
	}

	chunks := []container.Chunk{
		{Tag: container.TagMeta, Payload: container.EncodeMetadata(meta)},
		{Tag: container.TagSettings, Payload: container.EncodeSettings(settings)},
		{Tag: container.TagVoxel, Payload: container.EncodeVoxelData(voxelData)},
	}

	if project.Camera != nil {
		chunks = append(chunks, container.Chunk{Tag: container.TagCamera, Payload: container.EncodeCameraData(project.Camera)})
	}
	if project.Groups != nil {
		chunks = append(chunks, container.Chunk{Tag: container.TagGroup, Payload: container.EncodeGroupData(project.Groups)})
	}
	if project.CurrentSelection != nil {
		chunks = append(chunks, container.Chunk{Tag: container.TagSelection, Payload: container.EncodeSelectionData(project.CurrentSelection)})
	}
	for key, value := range project.CustomData {
		chunks = append(chunks, container.Chunk{Tag: container.TagCustom, Payload: container.EncodeCustom(container.Custom{Key: key, Value: value})})
	}

	return chunks, nil
}

// LoadProject reads a project file from path with DefaultLoadOptions.
func (m *Manager) LoadProject(path string, log voxforge.Logger) (*voxforge.Project, error) {
	return m.LoadProjectWithOptions(path, DefaultLoadOptions(), log)
}

// LoadProjectWithOptions reads path applying opts (spec §4.6
// Versioning + Load options).
func (m *Manager) LoadProjectWithOptions(path string, opts LoadOptions, log voxforge.Logger) (*voxforge.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, voxforge.WrapCoreError(voxforge.ErrFileNotFound, path, err)
		}
		return nil, voxforge.WrapCoreError(voxforge.ErrAccessDenied, path, err)
	}
	defer f.Close()

	header, err := container.ReadHeader(f)
	if err != nil {
		return nil, voxforge.WrapCoreError(voxforge.ErrInvalidFormat, "read header", err)
	}
	if !header.Compatible(container.CurrentHeader()) && !opts.IgnoreVersionMismatch {
		return nil, voxforge.NewCoreError(voxforge.ErrVersionMismatch, fmt.Sprintf("file version %s incompatible with reader", header))
	}

	chunks, err := container.ReadChunks(f)
	if err != nil {
		return nil, voxforge.WrapCoreError(voxforge.ErrCorruptedData, "read chunks", err)
	}
	if header.ChunksCompressed() {
		chunks = decompressChunks(chunks)
	}

	project, err := buildProject(chunks, log)
	if err != nil {
		return nil, voxforge.WrapCoreError(voxforge.ErrCorruptedData, "decode chunks", err)
	}

	if opts.ValidateAfterLoad && !project.IsValid() {
		return nil, voxforge.NewCoreError(voxforge.ErrCorruptedData, "loaded project failed validation")
	}
	project.MarkSaved()
	return project, nil
}

func decompressChunks(chunks []container.Chunk) []container.Chunk {
	rle := compress.NewRLE()
	out := make([]container.Chunk, len(chunks))
	for i, c := range chunks {
		if c.Uncompressed == uint32(len(c.Payload)) {
			out[i] = c
			continue
		}
		out[i] = container.Chunk{Tag: c.Tag, Payload: rle.Decompress(c.Payload, int(c.Uncompressed)), Uncompressed: c.Uncompressed}
	}
	return out
}

func buildProject(chunks []container.Chunk, log voxforge.Logger) (*voxforge.Project, error) {
	size := voxforge.DefaultWorkspaceSize
	if settChunk, ok := container.Find(chunks, container.TagSettings); ok {
		settings, err := container.DecodeSettings(settChunk.Payload)
		if err != nil {
			return nil, err
		}
		size = voxforge.WorkspaceSize{X: settings.Size[0], Y: settings.Size[1], Z: settings.Size[2]}
	}

	project := voxforge.NewProject("", size, log)

	if metaChunk, ok := container.Find(chunks, container.TagMeta); ok {
		meta, err := container.DecodeMetadata(metaChunk.Payload)
		if err != nil {
			return nil, err
		}
		project.Metadata.Name = meta.Name
		project.Metadata.Description = meta.Description
		project.Metadata.Author = meta.Author
		project.Metadata.CreatedSeconds = int64(meta.CreatedSeconds)
		project.Metadata.ModifiedSeconds = int64(meta.ModifiedSeconds)
		project.Metadata.Application = meta.Application
		project.Metadata.ApplicationVersion = meta.ApplicationVersion
		project.Metadata.Custom = meta.Custom
	}

	if voxeChunk, ok := container.Find(chunks, container.TagVoxel); ok {
		voxelData, err := container.DecodeVoxelData(voxeChunk.Payload)
		if err != nil {
			return nil, err
		}
		project.Engine.SetActiveResolution(voxforge.Resolution(voxelData.ActiveResolution))
		for _, rd := range voxelData.Resolutions {
			res := voxforge.Resolution(rd.Resolution)
			for _, c := range rd.Coords {
				project.Engine.Set(voxforge.Increment{X: c[0], Y: c[1], Z: c[2]}, res, true)
			}
		}
	}

	if cameChunk, ok := container.Find(chunks, container.TagCamera); ok {
		project.Camera = container.DecodeCameraData(cameChunk.Payload)
	}
	if grupChunk, ok := container.Find(chunks, container.TagGroup); ok {
		project.Groups = container.DecodeGroupData(grupChunk.Payload)
	}
	if seleChunk, ok := container.Find(chunks, container.TagSelection); ok {
		project.CurrentSelection = container.DecodeSelectionData(seleChunk.Payload)
	}

	for _, c := range chunks {
		if c.Tag != container.TagCustom {
			continue
		}
		custom, err := container.DecodeCustom(c.Payload)
		if err != nil {
			return nil, err
		}
		project.SetCustomData(custom.Key, custom.Value)
	}

	return project, nil
}
