// Package driven defines the interfaces the core depends on: source
// parsers, the configuration store and the run-history store. Adapters
// implement these; the core never imports an adapter.
package driven
