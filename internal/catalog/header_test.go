package catalog

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildHeader assembles a classic (pre-v9) big-endian container header.
func buildHeader(metadataSize, fileSize, version, dataOffset uint32) []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint32(b[0:4], metadataSize)
	binary.BigEndian.PutUint32(b[4:8], fileSize)
	binary.BigEndian.PutUint32(b[8:12], version)
	binary.BigEndian.PutUint32(b[12:16], dataOffset)
	return b
}

func TestValidateContainerHeader(t *testing.T) {
	t.Run("valid classic header", func(t *testing.T) {
		info := ValidateContainerHeader(buildHeader(120, 4096, 5, 128))

		assert.True(t, info.IsValid)
		assert.Equal(t, int64(120), info.MetadataSize)
		assert.Equal(t, int64(4096), info.FileSize)
		assert.Equal(t, uint32(5), info.FormatVersion)
		assert.Equal(t, int64(128), info.DataOffset)
		assert.False(t, info.IsBigEndian)
	})

	t.Run("zero metadata size is invalid", func(t *testing.T) {
		info := ValidateContainerHeader(buildHeader(0, 4096, 5, 128))
		assert.False(t, info.IsValid)
	})

	t.Run("zero file size is invalid", func(t *testing.T) {
		info := ValidateContainerHeader(buildHeader(120, 0, 5, 128))
		assert.False(t, info.IsValid)
	})

	t.Run("short buffer is invalid not an error", func(t *testing.T) {
		info := ValidateContainerHeader([]byte{0x00, 0x01, 0x02})
		assert.False(t, info.IsValid)
	})

	t.Run("empty buffer is invalid", func(t *testing.T) {
		info := ValidateContainerHeader(nil)
		assert.False(t, info.IsValid)
	})

	t.Run("version 9 reads endianness byte", func(t *testing.T) {
		b := append(buildHeader(120, 4096, 9, 128), 1, 0, 0, 0)

		info := ValidateContainerHeader(b)

		assert.True(t, info.IsValid)
		assert.True(t, info.IsBigEndian)
	})

	t.Run("version 9 short of endianness byte is invalid", func(t *testing.T) {
		info := ValidateContainerHeader(buildHeader(120, 4096, 9, 128))
		assert.False(t, info.IsValid)
	})

	t.Run("version 22 re-reads wide fields", func(t *testing.T) {
		b := append(buildHeader(0, 0, 22, 0), 0, 0, 0, 0)
		wide := make([]byte, 32)
		binary.BigEndian.PutUint64(wide[0:8], 500)    // metadata size
		binary.BigEndian.PutUint64(wide[8:16], 90000) // file size
		binary.BigEndian.PutUint64(wide[16:24], 4096) // data offset
		binary.BigEndian.PutUint64(wide[24:32], 0)    // unknown
		b = append(b, wide...)

		info := ValidateContainerHeader(b)

		assert.True(t, info.IsValid)
		assert.Equal(t, int64(500), info.MetadataSize)
		assert.Equal(t, int64(90000), info.FileSize)
		assert.Equal(t, int64(4096), info.DataOffset)
	})

	t.Run("version 22 short of wide fields is invalid", func(t *testing.T) {
		b := append(buildHeader(120, 4096, 22, 128), 0, 0, 0, 0)
		info := ValidateContainerHeader(b)
		assert.False(t, info.IsValid)
	})
}

func TestIsBundleHeader(t *testing.T) {
	t.Run("recognised signatures", func(t *testing.T) {
		assert.True(t, IsBundleHeader([]byte("UnityFS\x00rest of file")))
		assert.True(t, IsBundleHeader([]byte("UnityWeb\x00")))
		assert.True(t, IsBundleHeader([]byte("UnityRaw")))
	})

	t.Run("rejects other content", func(t *testing.T) {
		assert.False(t, IsBundleHeader([]byte("UnityXYZ file")))
		assert.False(t, IsBundleHeader([]byte("PK\x03\x04zip data")))
		assert.False(t, IsBundleHeader([]byte("short")))
		assert.False(t, IsBundleHeader(nil))
	})
}
