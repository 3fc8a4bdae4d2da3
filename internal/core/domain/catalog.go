package domain

// FileKind classifies a catalog entry. The set is closed: parser
// selection dispatches over it exactly once per file, with no runtime
// type probing.
type FileKind int

// Recognised file kinds.
const (
	// KindOther is any file outside the allow-list. Not catalogued.
	KindOther FileKind = iota

	// KindDirectory is a traversed directory.
	KindDirectory

	// KindSerializedContainer is the engine's opaque serialized file
	// (.assets, level files, mainData).
	KindSerializedContainer

	// KindResourceBundle is a packed bundle (.unity3d, .bundle).
	KindResourceBundle

	// KindResourceStream is a headerless sidecar payload file (.resS).
	KindResourceStream

	// KindProgramAssembly is a compiled managed assembly (.dll).
	KindProgramAssembly

	// KindBootstrapDescriptor is the engine bootstrap file that carries
	// the runtime version string.
	KindBootstrapDescriptor
)

// String returns a stable label for the kind.
func (k FileKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindSerializedContainer:
		return "serialized_container"
	case KindResourceBundle:
		return "resource_bundle"
	case KindResourceStream:
		return "resource_stream"
	case KindProgramAssembly:
		return "program_assembly"
	case KindBootstrapDescriptor:
		return "bootstrap_descriptor"
	default:
		return "other"
	}
}

// CatalogEntry is one node of the scanned asset tree. Entries are
// created once per scan and never mutated afterwards.
//
// Invariant: LinkedStream is set only on non-directory container or
// bundle entries and points to a KindResourceStream entry sharing the
// base filename (case-insensitively) in the same directory.
type CatalogEntry struct {
	// Path is the absolute filesystem path.
	Path string

	// Name is the display name (base filename).
	Name string

	// IsDir reports whether this entry is a directory.
	IsDir bool

	// Kind is the classified file kind.
	Kind FileKind

	// Size is the file size in bytes. Zero for directories.
	Size int64

	// Children holds ordered child entries for directories.
	Children []*CatalogEntry

	// LinkedStream is the sidecar resource-stream entry, if any.
	LinkedStream *CatalogEntry
}

// Files returns all non-directory entries of the subtree rooted at e,
// in catalog order.
func (e *CatalogEntry) Files() []*CatalogEntry {
	if e == nil {
		return nil
	}
	if !e.IsDir {
		return []*CatalogEntry{e}
	}
	var files []*CatalogEntry
	for _, child := range e.Children {
		files = append(files, child.Files()...)
	}
	return files
}

// RuntimeVersionUnknown is the sentinel returned when no runtime
// version string could be recovered from the bootstrap files.
const RuntimeVersionUnknown = "unknown"
