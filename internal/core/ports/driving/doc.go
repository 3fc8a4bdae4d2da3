// Package driving defines the interfaces through which the outside
// world (CLI, other front ends) drives the core.
package driving
