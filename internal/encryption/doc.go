// Package encryption detects and, where feasible, reverses three
// common obfuscation schemes on byte buffers: repeating-key XOR,
// Base64 armouring, and AES-CBC with a prepended IV. The detectors are
// deliberately weak heuristics tuned for game-asset payloads; their
// thresholds and the single-byte XOR key guess are fixed behaviour,
// not candidates for cryptographic improvement. Decryption failure is
// an expected, recoverable outcome: callers fall back to treating the
// original bytes as plaintext candidates.
package encryption
