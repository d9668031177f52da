package voxforge

import (
	"github.com/google/uuid"
)

// ProjectMetadata is the descriptive header carried by every project
// (spec §3.6, grounded on original_source's ProjectMetadata /
// Project::updateMetadata).
type ProjectMetadata struct {
	ID                 uuid.UUID
	Name               string
	Description        string
	Author             string
	CreatedSeconds     int64
	ModifiedSeconds    int64
	Application        string
	ApplicationVersion string
	Custom             map[string]string
}

// NamedSelection pairs a user-assigned name with an opaque selection
// blob (spec §3.6 "named_selections"); the core stores and retrieves
// these but never interprets their bytes.
type NamedSelection struct {
	Name string
	Data []byte
}

// Project is the complete saveable state of an editing session (spec
// §3.6), grounded on original_source/core/file_io/include/file_io/
// Project.h. It owns its Engine and Workspace outright; camera,
// group, and selection state are carried as opaque blobs the core
// persists without interpreting (spec §9 "Cyclic references": the
// project owns its managers, never the reverse).
type Project struct {
	Metadata  ProjectMetadata
	Workspace *Workspace
	Engine    *Engine

	CurrentSelection []byte
	NamedSelections  []NamedSelection

	Camera []byte
	Groups []byte

	CustomData map[string][]byte

	dirty bool
}

// NewProject creates a project named name over a workspace of the
// given size, wired to a fresh engine and event bus (spec §9's
// ProjectFactory::createNewProject, collapsed into a single
// constructor since Go has no separate factory-class idiom for this).
func NewProject(name string, size WorkspaceSize, log Logger) *Project {
	ws := NewWorkspace(size)
	bus := NewEventBus()
	engine := NewEngine(ws, bus, log, 0)
	return &Project{
		Metadata: ProjectMetadata{
			ID:     uuid.New(),
			Name:   name,
			Custom: make(map[string]string),
		},
		Workspace:  ws,
		Engine:     engine,
		CustomData: make(map[string][]byte),
		dirty:      true,
	}
}

// SetName updates the project's display name and marks it dirty.
func (p *Project) SetName(name string) {
	p.Metadata.Name = name
	p.dirty = true
}

// SetDescription updates the project's description and marks it
// dirty.
func (p *Project) SetDescription(description string) {
	p.Metadata.Description = description
	p.dirty = true
}

// SetAuthor updates the project's author field and marks it dirty.
func (p *Project) SetAuthor(author string) {
	p.Metadata.Author = author
	p.dirty = true
}

// SetCustomProperty sets a metadata key/value pair.
func (p *Project) SetCustomProperty(key, value string) {
	if p.Metadata.Custom == nil {
		p.Metadata.Custom = make(map[string]string)
	}
	p.Metadata.Custom[key] = value
	p.dirty = true
}

// CustomProperty returns a metadata key's value, or "" if unset.
func (p *Project) CustomProperty(key string) string {
	return p.Metadata.Custom[key]
}

// SaveCurrentSelection stores a copy of data under name in
// NamedSelections, replacing any existing entry with that name.
func (p *Project) SaveCurrentSelection(name string, data []byte) {
	data = append([]byte(nil), data...)
	for i, s := range p.NamedSelections {
		if s.Name == name {
			p.NamedSelections[i].Data = data
			p.dirty = true
			return
		}
	}
	p.NamedSelections = append(p.NamedSelections, NamedSelection{Name: name, Data: data})
	p.dirty = true
}

// LoadNamedSelection returns the blob saved under name, and whether it
// was found.
func (p *Project) LoadNamedSelection(name string) ([]byte, bool) {
	for _, s := range p.NamedSelections {
		if s.Name == name {
			return s.Data, true
		}
	}
	return nil, false
}

// DeleteNamedSelection removes a saved selection by name, if present.
func (p *Project) DeleteNamedSelection(name string) {
	for i, s := range p.NamedSelections {
		if s.Name == name {
			p.NamedSelections = append(p.NamedSelections[:i], p.NamedSelections[i+1:]...)
			p.dirty = true
			return
		}
	}
}

// NamedSelectionList returns the names of every saved selection, in
// insertion order.
func (p *Project) NamedSelectionList() []string {
	names := make([]string, len(p.NamedSelections))
	for i, s := range p.NamedSelections {
		names[i] = s.Name
	}
	return names
}

// SetCustomData stores an application-defined blob under key.
func (p *Project) SetCustomData(key string, data []byte) {
	if p.CustomData == nil {
		p.CustomData = make(map[string][]byte)
	}
	p.CustomData[key] = data
	p.dirty = true
}

// GetCustomData returns the blob stored under key, and whether it was
// found.
func (p *Project) GetCustomData(key string) ([]byte, bool) {
	data, ok := p.CustomData[key]
	return data, ok
}

// RemoveCustomData deletes the blob stored under key, if any.
func (p *Project) RemoveCustomData(key string) {
	delete(p.CustomData, key)
	p.dirty = true
}

// CustomDataKeys returns every key currently stored.
func (p *Project) CustomDataKeys() []string {
	keys := make([]string, 0, len(p.CustomData))
	for k := range p.CustomData {
		keys = append(keys, k)
	}
	return keys
}

// HasUnsavedChanges reports whether the project has been mutated
// since the last MarkSaved call.
func (p *Project) HasUnsavedChanges() bool {
	return p.dirty
}

// MarkSaved clears the dirty flag; called by the persistence layer
// after a successful save.
func (p *Project) MarkSaved() {
	p.dirty = false
}

// VoxelCount returns the total number of occupied voxels across every
// resolution.
func (p *Project) VoxelCount() int {
	return p.Engine.TotalCount()
}

// Clear resets all voxel data, selections, and custom data, leaving
// metadata and workspace settings untouched (mirrors Project::clear,
// which is narrower than a full reset to a blank project).
func (p *Project) Clear() {
	p.Engine.ClearAll()
	p.CurrentSelection = nil
	p.NamedSelections = nil
	p.CustomData = make(map[string][]byte)
	p.dirty = true
}

// IsValid reports whether the project's workspace size is in range
// and its engine is non-nil; a fuller structural validation lives in
// persistence's load path, which additionally checks chunk checksums.
func (p *Project) IsValid() bool {
	return p.Engine != nil && p.Workspace != nil && ValidSize(p.Workspace.Size())
}
