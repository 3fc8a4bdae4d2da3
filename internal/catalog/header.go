package catalog

import (
	"bytes"
	"encoding/binary"
)

// bundleSignatures are the accepted magic strings at the start of a
// resource bundle. Matching one accepts the file without deeper parsing.
var bundleSignatures = []string{"UnityFS", "UnityWeb", "UnityRaw"}

// Container format versions at which the header layout grows.
const (
	versionWithEndianness = 9
	versionWithWideFields = 22
)

// HeaderInfo is the decoded serialized-container header. Used only as
// a validity/classification signal; no object table is ever parsed.
type HeaderInfo struct {
	IsValid       bool
	MetadataSize  int64
	FileSize      int64
	FormatVersion uint32
	DataOffset    int64
	IsBigEndian   bool
}

// ValidateContainerHeader decodes the fixed big-endian container
// header. A short buffer yields IsValid=false rather than an error.
func ValidateContainerHeader(b []byte) HeaderInfo {
	var info HeaderInfo

	if len(b) < 16 {
		return info
	}

	info.MetadataSize = int64(binary.BigEndian.Uint32(b[0:4]))
	info.FileSize = int64(binary.BigEndian.Uint32(b[4:8]))
	info.FormatVersion = binary.BigEndian.Uint32(b[8:12])
	info.DataOffset = int64(binary.BigEndian.Uint32(b[12:16]))

	if info.FormatVersion >= versionWithEndianness {
		// One endianness byte plus three reserved bytes.
		if len(b) < 20 {
			return HeaderInfo{}
		}
		info.IsBigEndian = b[16] != 0
	}

	if info.FormatVersion >= versionWithWideFields {
		// The size fields outgrew 32 bits; re-read them as 64-bit,
		// followed by one unknown 64-bit field.
		if len(b) < 52 {
			return HeaderInfo{}
		}
		info.MetadataSize = int64(binary.BigEndian.Uint64(b[20:28]))
		info.FileSize = int64(binary.BigEndian.Uint64(b[28:36]))
		info.DataOffset = int64(binary.BigEndian.Uint64(b[36:44]))
		_ = binary.BigEndian.Uint64(b[44:52]) // reserved
	}

	info.IsValid = info.MetadataSize > 0 && info.FileSize > 0
	return info
}

// IsBundleHeader reports whether the buffer starts with a recognised
// bundle signature. The first 8 bytes are compared after trimming
// trailing NULs.
func IsBundleHeader(b []byte) bool {
	if len(b) < 8 {
		return false
	}
	sig := string(bytes.TrimRight(b[:8], "\x00"))
	for _, s := range bundleSignatures {
		if sig == s {
			return true
		}
	}
	return false
}
