// Package services implements the driving port interfaces. The
// extraction service owns the run pipeline: version probe, catalog
// scan, bounded parallel file processing, and outcome finalisation.
package services
