package domain

import "errors"

// Domain errors represent recoverable and fatal conditions in the
// extraction pipeline. Only ErrInvalidRoot aborts a run; everything
// else is recovered at the file boundary and surfaced in the outcome.
var (
	// ErrInvalidRoot indicates the configured root path is missing or
	// unreadable. This is the only error class that fails a run outright.
	ErrInvalidRoot = errors.New("invalid root path")

	// ErrUnsupportedFormat indicates a file was excluded by classification.
	// Such files are silently skipped, never reported as errors.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDecodeFailed indicates a codec failed on a buffer. The caller
	// tries the next codec; this is never fatal.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrDecryptFailed indicates decryption produced garbage or failed
	// outright. Callers fall back to treating the original bytes as
	// already-plaintext candidates.
	ErrDecryptFailed = errors.New("decrypt failed")

	// ErrKeyLength indicates a decryption key of unusable length.
	ErrKeyLength = errors.New("invalid key length")

	// ErrCiphertextLength indicates ciphertext whose length cannot be
	// valid for the cipher (too short, or not block-aligned).
	ErrCiphertextLength = errors.New("invalid ciphertext length")

	// ErrResourceExhausted indicates memory pressure while processing a
	// file. The orchestrator forces a reclaim pass and continues.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrCancelled indicates the run was stopped cooperatively. A
	// cancelled run finalises with whatever was collected plus a warning.
	ErrCancelled = errors.New("run cancelled")
)
