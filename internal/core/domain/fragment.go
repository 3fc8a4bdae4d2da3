package domain

// Provenance identifies which extraction path produced a fragment.
type Provenance string

// Recognised provenances.
const (
	// ProvenanceContainerText is plain text recovered from a serialized
	// container or bundle payload.
	ProvenanceContainerText Provenance = "container_text"

	// ProvenanceStructuredRecord is text recovered from a length-prefixed
	// string-array record.
	ProvenanceStructuredRecord Provenance = "structured_record"

	// ProvenanceAssemblyLiteral is a string literal mined from a compiled
	// managed assembly.
	ProvenanceAssemblyLiteral Provenance = "assembly_literal"

	// ProvenanceResourceStream is text recovered from a sidecar stream.
	ProvenanceResourceStream Provenance = "resource_stream"

	// ProvenanceRawBinary is the fallback scan over bytes that failed
	// header validation.
	ProvenanceRawBinary Provenance = "raw_binary"
)

// String returns the string representation.
func (p Provenance) String() string {
	return string(p)
}

// ExtractionUnit is a byte buffer handed to the extraction engine,
// produced by a parser from one file (or one chunk of one file).
// Units are ephemeral.
type ExtractionUnit struct {
	// SourceID identifies the originating file path.
	SourceID string

	// Name is a display name for the unit (asset or region name).
	Name string

	// ChunkIndex is the chunk ordinal for streamed sources, -1 otherwise.
	ChunkIndex int

	// Data is the raw payload.
	Data []byte

	// Provenance is the extraction path this unit belongs to.
	Provenance Provenance

	// PossiblyEncrypted marks payloads worth running the encryption
	// heuristics over before string extraction.
	PossiblyEncrypted bool
}

// DecodedTextFragment is one recovered piece of human-readable text.
//
// Invariants, enforced by the extraction engine's validity filter:
// the content length is within the configured bounds, and the content
// is never empty or whitespace-only, never all-digit, and never
// contains a NUL character.
type DecodedTextFragment struct {
	// AssetName is the display name of the asset or unit the text
	// came from.
	AssetName string `json:"assetName"`

	// SourceFile is the path of the originating file.
	SourceFile string `json:"sourceFile"`

	// AssetType is the classified kind label of the source file.
	AssetType string `json:"assetType"`

	// Content is the recovered text.
	Content string `json:"content"`

	// Provenance is the extraction path that produced this fragment.
	Provenance Provenance `json:"provenance"`

	// EncodingLabel names the codec the text was decoded under
	// (e.g. "utf-8", "utf-16le", "shift-jis").
	EncodingLabel string `json:"encodingLabel"`

	// ByteOffset is the offset of the run within its source buffer.
	ByteOffset int `json:"byteOffset"`

	// ByteLength is the byte length of the run within its source buffer.
	ByteLength int `json:"byteLength"`

	// FieldLabel is the structural label for array-derived fragments,
	// empty otherwise.
	FieldLabel string `json:"fieldLabel,omitempty"`

	// Metadata carries extraction-path specific key-value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`
}
