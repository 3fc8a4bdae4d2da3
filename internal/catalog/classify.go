package catalog

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

// Fixed filename tokens of the target engine's data layout.
const (
	bootstrapName   = "globalgamemanagers"
	mainDataName    = "maindata"
	sharedPrefix    = "sharedassets"
	containerExt    = ".assets"
	streamExt       = ".ress"
	assemblyExt     = ".dll"
	bundleExt       = ".bundle"
	unityBundleExt  = ".unity3d"
	streamExtCanon  = ".resS"
	bootstrapAssets = "globalgamemanagers.assets"
)

// excludedDirNames are engine runtime/plugin internals never traversed.
var excludedDirNames = map[string]struct{}{
	"mono":             {},
	"monobleedingedge": {},
	"plugins":          {},
}

// levelPattern matches level-numbered container files with no extension.
var levelPattern = regexp.MustCompile(`^level\d+$`)

// Classify maps a path to a file kind using filename and extension
// logic only. Deterministic; performs no I/O.
func Classify(path string) domain.FileKind {
	name := strings.ToLower(filepath.Base(path))

	switch name {
	case bootstrapName, bootstrapAssets:
		return domain.KindBootstrapDescriptor
	case mainDataName:
		return domain.KindSerializedContainer
	}

	if levelPattern.MatchString(name) {
		return domain.KindSerializedContainer
	}

	switch {
	case strings.HasSuffix(name, streamExt):
		return domain.KindResourceStream
	case strings.HasSuffix(name, containerExt):
		return domain.KindSerializedContainer
	case strings.HasSuffix(name, bundleExt), strings.HasSuffix(name, unityBundleExt):
		return domain.KindResourceBundle
	case strings.HasSuffix(name, assemblyExt):
		return domain.KindProgramAssembly
	case strings.HasPrefix(name, sharedPrefix):
		// Split stream counterparts are covered above; anything else
		// carrying the shared token is a container variant.
		return domain.KindSerializedContainer
	default:
		return domain.KindOther
	}
}

// IsExcludedDir reports whether a directory name is engine internals
// that the scan skips entirely.
func IsExcludedDir(name string) bool {
	_, ok := excludedDirNames[strings.ToLower(name)]
	return ok
}
