package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

// Decrypt reverses the given scheme on b. key is optional for XOR
// (a naive single-byte guess is derived) and Base64 (unused), and
// required for AES. Every failure is a returned error wrapping one of
// the domain sentinels; callers fall back to the original bytes.
func Decrypt(b []byte, kind domain.EncryptionKind, key []byte) ([]byte, error) {
	switch kind {
	case domain.EncryptionXOR:
		return DecryptXOR(b, key), nil
	case domain.EncryptionBase64:
		return DecryptBase64(b)
	case domain.EncryptionAES:
		return DecryptAES(b, key)
	default:
		return nil, fmt.Errorf("%w: cannot decrypt kind %q", domain.ErrDecryptFailed, kind)
	}
}

// DecryptXOR applies a repeating-key XOR. Without a supplied key a
// single-byte key is guessed: the most frequent ciphertext byte is
// assumed to encode 0x00 when that byte value is itself zero, else
// 0x20 (space). This recovers only trivial single-byte keys; that is
// the extent of the heuristic.
func DecryptXOR(b, key []byte) []byte {
	if len(key) == 0 {
		key = []byte{guessXORKey(b)}
	}
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c ^ key[i%len(key)]
	}
	return out
}

// guessXORKey derives the naive single-byte key guess.
func guessXORKey(b []byte) byte {
	var hist [256]int
	for _, c := range b {
		hist[c]++
	}
	mostFrequent := 0
	for v := 1; v < 256; v++ {
		if hist[v] > hist[mostFrequent] {
			mostFrequent = v
		}
	}
	if mostFrequent == 0 {
		return 0 // already encodes 0x00
	}
	return byte(mostFrequent) ^ 0x20
}

// DecryptBase64 decodes the buffer as standard Base64 after trimming
// whitespace.
func DecryptBase64(b []byte) ([]byte, error) {
	text := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, string(b))

	out, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecryptFailed, err)
	}
	return out, nil
}

// DecryptAES decrypts AES-CBC input whose first block is the IV.
// Accepts keys of 16, 24 or 32 bytes; longer keys are truncated to 16,
// shorter ones are rejected.
func DecryptAES(b, key []byte) ([]byte, error) {
	switch {
	case len(key) < aesBlockSize:
		return nil, fmt.Errorf("%w: got %d bytes, need 16, 24 or 32", domain.ErrKeyLength, len(key))
	case len(key) == 16 || len(key) == 24 || len(key) == 32:
		// usable as-is
	default:
		key = key[:16]
	}

	if len(b) < aesBlockSize {
		return nil, fmt.Errorf("%w: input shorter than one block", domain.ErrCiphertextLength)
	}
	iv, ciphertext := b[:aesBlockSize], b[aesBlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aesBlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not block-aligned", domain.ErrCiphertextLength, len(ciphertext))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyLength, err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	return stripPKCS7(plain)
}

// stripPKCS7 validates and removes PKCS#7 padding.
func stripPKCS7(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", domain.ErrDecryptFailed)
	}
	pad := int(b[len(b)-1])
	if pad == 0 || pad > aesBlockSize || pad > len(b) {
		return nil, fmt.Errorf("%w: bad padding", domain.ErrDecryptFailed)
	}
	for _, c := range b[len(b)-pad:] {
		if int(c) != pad {
			return nil, fmt.Errorf("%w: bad padding", domain.ErrDecryptFailed)
		}
	}
	return b[:len(b)-pad], nil
}
