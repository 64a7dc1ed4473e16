// Package registry holds the set of runner types known to a checkgrid
// instance. Modules register their handlers here at startup; the executor
// resolves each workflow step against the registry before dispatching it.
package registry
