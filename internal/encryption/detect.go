package encryption

import (
	"fmt"
	"math"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

// Detection thresholds. Fixed: downstream behaviour and tests depend
// on these exact values.
const (
	// acceptConfidence is the manager-level cut: the first detector
	// verdict above it wins.
	acceptConfidence = 0.7

	// xorEntropyLow/High bound the entropy band where XOR of
	// structured plaintext typically lands.
	xorEntropyLow  = 4.0
	xorEntropyHigh = 7.5

	// xorMaxPeriod is the largest candidate key period tested.
	xorMaxPeriod = 16

	// xorProbeLimit is how many leading bytes the period test samples.
	xorProbeLimit = 1024

	// xorRepeatRatio is the share of positions that must repeat for a
	// period to count.
	xorRepeatRatio = 0.30

	// base64MinLength is the minimum trimmed length for the Base64
	// verdict.
	base64MinLength = 20

	// aesMinLength and aesBlockSize gate the AES shape check.
	aesMinLength = 32
	aesBlockSize = 16

	// aesEntropyFloor is the randomness floor for AES ciphertext.
	aesEntropyFloor = 7.5
)

// Detector confidences. AES is capped below the others because
// decryption additionally needs an externally supplied key, so shape
// detection alone cannot be fully trusted.
const (
	xorHitConfidence     = 0.7
	xorMissConfidence    = 0.3
	base64HitConfidence  = 0.85
	base64MissConfidence = 0.2
	aesHitConfidence     = 0.6
	aesMissConfidence    = 0.1
)

// Detect runs the detectors in fixed priority (XOR, Base64, AES) and
// returns the first verdict whose confidence clears the accept cut,
// else a not-encrypted verdict with full confidence.
func Detect(b []byte) domain.EncryptionVerdict {
	for _, detect := range []func([]byte) domain.EncryptionVerdict{
		detectXOR,
		detectBase64,
		detectAES,
	} {
		if v := detect(b); v.Confidence > acceptConfidence {
			return v
		}
	}
	return domain.EncryptionVerdict{
		IsEncrypted: false,
		Kind:        domain.EncryptionNone,
		Confidence:  1.0,
		Details:     "no scheme detected",
	}
}

// shannonEntropy computes the entropy of the byte-value histogram in
// bits per byte.
func shannonEntropy(b []byte) float64 {
	if len(b) == 0 {
		return 0
	}
	var hist [256]int
	for _, c := range b {
		hist[c]++
	}
	total := float64(len(b))
	entropy := 0.0
	for _, n := range hist {
		if n == 0 {
			continue
		}
		p := float64(n) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// detectXOR flags buffers whose entropy sits in the XOR band and whose
// leading bytes repeat at some candidate key period.
func detectXOR(b []byte) domain.EncryptionVerdict {
	entropy := shannonEntropy(b)

	period := repetitivePeriod(b)
	hit := entropy > xorEntropyLow && entropy < xorEntropyHigh && period > 0

	confidence := xorMissConfidence
	if hit {
		confidence = xorHitConfidence
	}
	return domain.EncryptionVerdict{
		IsEncrypted: hit,
		Kind:        domain.EncryptionXOR,
		Confidence:  confidence,
		Details:     fmt.Sprintf("entropy=%.2f period=%d", entropy, period),
	}
}

// repetitivePeriod returns the smallest period in 1..16 at which more
// than 30%% of the sampled leading bytes repeat, or 0 when none does.
func repetitivePeriod(b []byte) int {
	probe := b
	if len(probe) > xorProbeLimit {
		probe = probe[:xorProbeLimit]
	}
	for period := 1; period <= xorMaxPeriod; period++ {
		if len(probe) <= period {
			break
		}
		matches, tested := 0, 0
		for i := period; i < len(probe); i++ {
			tested++
			if probe[i] == probe[i%period] {
				matches++
			}
		}
		if tested > 0 && float64(matches)/float64(tested) > xorRepeatRatio {
			return period
		}
	}
	return 0
}

// detectBase64 flags ASCII buffers shaped like Base64: only alphabet
// characters and whitespace, padded length, and long enough to matter.
func detectBase64(b []byte) domain.EncryptionVerdict {
	stripped := 0
	shaped := len(b) > 0
	for _, c := range b {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '+', c == '/', c == '=':
			stripped++
		case c == ' ', c == '\t', c == '\n', c == '\r':
			// whitespace is ignored
		default:
			shaped = false
		}
		if !shaped {
			break
		}
	}

	hit := shaped && stripped%4 == 0 && stripped > base64MinLength
	confidence := base64MissConfidence
	if hit {
		confidence = base64HitConfidence
	}
	return domain.EncryptionVerdict{
		IsEncrypted: hit,
		Kind:        domain.EncryptionBase64,
		Confidence:  confidence,
		Details:     fmt.Sprintf("alphabet=%v stripped=%d", shaped, stripped),
	}
}

// detectAES flags block-aligned, high-entropy buffers.
func detectAES(b []byte) domain.EncryptionVerdict {
	entropy := shannonEntropy(b)
	hit := len(b) >= aesMinLength && len(b)%aesBlockSize == 0 && entropy > aesEntropyFloor

	confidence := aesMissConfidence
	if hit {
		confidence = aesHitConfidence
	}
	return domain.EncryptionVerdict{
		IsEncrypted: hit,
		Kind:        domain.EncryptionAES,
		Confidence:  confidence,
		Details:     fmt.Sprintf("entropy=%.2f len=%d", entropy, len(b)),
	}
}
