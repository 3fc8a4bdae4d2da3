// Package catalog walks a game data directory, classifies every file
// against a fixed allow-list, links sidecar resource streams to their
// owning containers and detects the engine runtime version. It never
// reads file content beyond the few bytes needed for classification
// signals; recovering text is the extraction engine's job.
package catalog
