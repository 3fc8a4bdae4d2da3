package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

// xorablePlaintext builds a buffer that keeps a strong 16-byte period
// and mid-band entropy, so its XOR-encrypted form trips the repeating
// key heuristic.
func xorablePlaintext(n int) []byte {
	pattern := []byte("abcdefghijklmnop")
	out := make([]byte, n)
	for i := range out {
		if i%8 == 7 {
			out[i] = byte(i)
		} else {
			out[i] = pattern[i%len(pattern)]
		}
	}
	return out
}

func TestDetect(t *testing.T) {
	t.Run("plain prose reports no encryption with full confidence", func(t *testing.T) {
		v := Detect([]byte("The innkeeper waves you over to the fire and pours a mug of cider."))

		assert.False(t, v.IsEncrypted)
		assert.Equal(t, domain.EncryptionNone, v.Kind)
		assert.Equal(t, 1.0, v.Confidence)
	})

	t.Run("repeating key XOR ciphertext is flagged by its detector", func(t *testing.T) {
		key := []byte{0x5A, 0x13, 0xC7, 0x2E}
		ct := DecryptXOR(xorablePlaintext(2048), key) // XOR is symmetric

		v := detectXOR(ct)

		assert.True(t, v.IsEncrypted)
		assert.Equal(t, domain.EncryptionXOR, v.Kind)
		assert.Equal(t, xorHitConfidence, v.Confidence)
	})

	t.Run("an XOR hit sits at the manager cut and is not auto-accepted", func(t *testing.T) {
		// The accept threshold is strictly greater-than, and an XOR hit
		// scores exactly at it. Only manual decryption reaches XOR data.
		ct := DecryptXOR(xorablePlaintext(2048), []byte{0x5A, 0x13, 0xC7, 0x2E})

		v := Detect(ct)

		assert.False(t, v.IsEncrypted)
		assert.Equal(t, domain.EncryptionNone, v.Kind)
	})

	t.Run("long base64 text is flagged", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("dialogue line "), 12))

		v := Detect([]byte(encoded))

		assert.True(t, v.IsEncrypted)
		assert.Equal(t, domain.EncryptionBase64, v.Kind)
		assert.Equal(t, base64HitConfidence, v.Confidence)
	})

	t.Run("base64 detection tolerates interior whitespace", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("scene marker"), 8))
		wrapped := encoded[:20] + "\n" + encoded[20:40] + "\r\n " + encoded[40:]

		v := Detect([]byte(wrapped))

		assert.True(t, v.IsEncrypted)
		assert.Equal(t, domain.EncryptionBase64, v.Kind)
	})

	t.Run("short base64 is not flagged", func(t *testing.T) {
		v := detectBase64([]byte("c2hvcnQ="))

		assert.False(t, v.IsEncrypted)
		assert.Equal(t, base64MissConfidence, v.Confidence)
	})

	t.Run("block aligned low entropy bytes stay below AES confidence", func(t *testing.T) {
		v := detectAES(make([]byte, 48))

		assert.False(t, v.IsEncrypted)
		assert.Equal(t, aesMissConfidence, v.Confidence)
	})

	t.Run("no detector above threshold means no encryption", func(t *testing.T) {
		// Block-aligned but low entropy, too short for base64 shape.
		v := Detect(bytes.Repeat([]byte{0xAB, 0xCD}, 24))

		assert.False(t, v.IsEncrypted)
		assert.Equal(t, domain.EncryptionNone, v.Kind)
		assert.Equal(t, 1.0, v.Confidence)
	})

	t.Run("empty input reports no encryption", func(t *testing.T) {
		v := Detect(nil)

		assert.False(t, v.IsEncrypted)
		assert.Equal(t, domain.EncryptionNone, v.Kind)
	})
}

func TestShannonEntropy(t *testing.T) {
	t.Run("uniform bytes have zero entropy", func(t *testing.T) {
		assert.Equal(t, 0.0, shannonEntropy(bytes.Repeat([]byte{0x42}, 256)))
	})

	t.Run("all byte values once hits eight bits", func(t *testing.T) {
		b := make([]byte, 256)
		for i := range b {
			b[i] = byte(i)
		}
		assert.InDelta(t, 8.0, shannonEntropy(b), 1e-9)
	})
}

func TestDecryptXOR(t *testing.T) {
	t.Run("round trips with an explicit key", func(t *testing.T) {
		plain := []byte("勇者は村を出た。The hero left the village.")
		key := []byte{0x91, 0x07, 0x3C}

		got := DecryptXOR(DecryptXOR(plain, key), key)

		assert.Equal(t, plain, got)
	})

	t.Run("guesses a single byte key from space frequency", func(t *testing.T) {
		plain := []byte("many words separated by many single spaces here and there")
		key := byte(0x7F)
		ct := DecryptXOR(plain, []byte{key})

		got := DecryptXOR(ct, nil)

		assert.Equal(t, plain, got)
	})

	t.Run("zero dominant byte guesses the zero key", func(t *testing.T) {
		b := make([]byte, 64)
		b[0] = 'x'

		got := DecryptXOR(b, nil)

		assert.Equal(t, b, got)
	})
}

func TestDecryptBase64(t *testing.T) {
	t.Run("round trips", func(t *testing.T) {
		plain := []byte("セリフ: ようこそ、旅人よ。")
		encoded := base64.StdEncoding.EncodeToString(plain)

		got, err := DecryptBase64([]byte(encoded))

		require.NoError(t, err)
		assert.Equal(t, plain, got)
	})

	t.Run("strips whitespace before decoding", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("wrapped payload"))
		wrapped := strings.Join([]string{encoded[:8], encoded[8:]}, "\n\t ")

		got, err := DecryptBase64([]byte(wrapped))

		require.NoError(t, err)
		assert.Equal(t, []byte("wrapped payload"), got)
	})

	t.Run("invalid input wraps the decrypt sentinel", func(t *testing.T) {
		_, err := DecryptBase64([]byte("!!not base64!!"))

		assert.ErrorIs(t, err, domain.ErrDecryptFailed)
	})
}

func TestDecryptAES(t *testing.T) {
	encrypt := func(t *testing.T, plain, key, iv []byte) []byte {
		t.Helper()
		block, err := aes.NewCipher(key)
		require.NoError(t, err)

		pad := aes.BlockSize - len(plain)%aes.BlockSize
		padded := append(append([]byte(nil), plain...), bytes.Repeat([]byte{byte(pad)}, pad)...)

		ct := make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
		return append(append([]byte(nil), iv...), ct...)
	}

	key := []byte("0123456789abcdef")
	iv := bytes.Repeat([]byte{0x11}, aes.BlockSize)

	t.Run("round trips CBC with a prepended IV", func(t *testing.T) {
		plain := []byte("The dragon sleeps beneath the old library.")

		got, err := DecryptAES(encrypt(t, plain, key, iv), key)

		require.NoError(t, err)
		assert.Equal(t, plain, got)
	})

	t.Run("overlong key is truncated to sixteen bytes", func(t *testing.T) {
		longKey := append(append([]byte(nil), key...), []byte("extra key material beyond")...)
		plain := []byte("short line")

		got, err := DecryptAES(encrypt(t, plain, key, iv), longKey)

		require.NoError(t, err)
		assert.Equal(t, plain, got)
	})

	t.Run("short key is rejected", func(t *testing.T) {
		_, err := DecryptAES(make([]byte, 32), []byte("ten bytes!"))

		assert.ErrorIs(t, err, domain.ErrKeyLength)
	})

	t.Run("unaligned ciphertext is rejected", func(t *testing.T) {
		_, err := DecryptAES(make([]byte, 40), key)

		assert.ErrorIs(t, err, domain.ErrCiphertextLength)
	})

	t.Run("input shorter than one block is rejected", func(t *testing.T) {
		_, err := DecryptAES(make([]byte, 10), key)

		assert.ErrorIs(t, err, domain.ErrCiphertextLength)
	})

	t.Run("garbage padding is a decrypt failure", func(t *testing.T) {
		// IV plus one block of bytes that will not decrypt to valid padding.
		_, err := DecryptAES(bytes.Repeat([]byte{0xE7}, 32), key)

		assert.ErrorIs(t, err, domain.ErrDecryptFailed)
	})
}
