// Package domain contains the core data model for asset text extraction.
// Types here are plain values with no I/O; they are shared between the
// catalog scanner, the extraction engine, the encryption heuristics and
// the orchestrator.
package domain
