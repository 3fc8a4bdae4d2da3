package domain

// EncryptionKind identifies an obfuscation scheme recognised by the
// encryption heuristics.
type EncryptionKind string

// Recognised encryption kinds.
const (
	// EncryptionNone means the buffer looks like plaintext.
	EncryptionNone EncryptionKind = "none"

	// EncryptionXOR is a repeating-key XOR cipher.
	EncryptionXOR EncryptionKind = "xor"

	// EncryptionBase64 is Base64-armoured content.
	EncryptionBase64 EncryptionKind = "base64"

	// EncryptionAES is AES-CBC with a prepended IV.
	EncryptionAES EncryptionKind = "aes"

	// EncryptionUnknown is high-entropy content with no recognised shape.
	EncryptionUnknown EncryptionKind = "unknown"
)

// String returns the string representation.
func (k EncryptionKind) String() string {
	return string(k)
}

// EncryptionVerdict is the result of one Detect call. Ephemeral.
type EncryptionVerdict struct {
	// IsEncrypted reports whether the buffer is believed encrypted.
	IsEncrypted bool

	// Kind is the suspected scheme.
	Kind EncryptionKind

	// Confidence is in [0, 1]. The detector chain accepts the first
	// verdict above 0.7.
	Confidence float64

	// Details carries free-form diagnostics (entropy, period, etc).
	Details string
}
