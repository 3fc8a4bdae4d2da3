// Package extract recovers plausible human-readable text from raw
// bytes. It has no schema for the input: a whole-buffer decode fast
// path handles files that are really text, and independent
// sliding-window scans recover UTF-8, UTF-16 and Shift-JIS runs from
// binary payloads. A separate sub-scan finds length-prefixed string
// array records. All results pass one validity filter and are
// deduplicated before being returned.
package extract
