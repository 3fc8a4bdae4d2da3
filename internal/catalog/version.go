package catalog

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/storysift/storysift-cli/internal/core/domain"
	"github.com/storysift/storysift-cli/internal/logger"
)

// versionProbeLimit bounds how much of each bootstrap candidate is read.
const versionProbeLimit = 4096

// versionCandidates are tried in order; the first readable file with a
// matching version string wins.
var versionCandidates = []string{
	"globalgamemanagers",
	"data.unity3d",
	"level0",
	"mainData",
}

// versionPattern matches engine runtime versions like 2021.3.16f1.
var versionPattern = regexp.MustCompile(`\d{4}\.\d+\.\d+[a-z]\d+`)

// DetectRuntimeVersion probes the well-known bootstrap files under
// rootPath for the engine runtime version string. Returns
// domain.RuntimeVersionUnknown when nothing matches; all per-candidate
// read failures are swallowed and the next candidate tried.
func DetectRuntimeVersion(rootPath string) string {
	for _, name := range versionCandidates {
		path := filepath.Join(rootPath, name)

		f, err := os.Open(path)
		if err != nil {
			continue
		}

		buf := make([]byte, versionProbeLimit)
		n, err := f.Read(buf)
		f.Close()
		if err != nil && n == 0 {
			continue
		}
		buf = buf[:n]

		// ASCII pass first: the version lives amid binary data, so
		// strip high bytes before matching, then fall back to matching
		// the raw bytes as UTF-8.
		if m := versionPattern.Find(asciiFilter(buf)); m != nil {
			logger.Debug("runtime version %s from %s", m, name)
			return string(m)
		}
		if m := versionPattern.FindString(string(buf)); m != "" {
			logger.Debug("runtime version %s from %s", m, name)
			return m
		}
	}
	return domain.RuntimeVersionUnknown
}

// asciiFilter replaces every non-ASCII byte with a space so the regex
// cannot match across binary garbage.
func asciiFilter(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 0x20 && c <= 0x7E {
			out[i] = c
		} else {
			out[i] = ' '
		}
	}
	return out
}
