package main

import "io"

// EngineConfig holds tunables for opening a database file. None of these
// affect query semantics; they govern diagnostics and resource limits.
type EngineConfig struct {
	MaxTraverseDepth int // guards against cyclic/corrupt page graphs
	Verbose          bool
}

// EngineOption is a functional option for configuring the engine.
type EngineOption func(*EngineConfig)

// WithMaxTraverseDepth bounds the B-tree recursion depth. A well-formed
// database never approaches this; it exists to turn a corrupt page
// cycle into a PageError instead of a stack overflow.
func WithMaxTraverseDepth(n int) EngineOption {
	return func(c *EngineConfig) { c.MaxTraverseDepth = n }
}

// WithVerbose enables debug-level diagnostic logging.
func WithVerbose(v bool) EngineOption {
	return func(c *EngineConfig) { c.Verbose = v }
}

// DefaultEngineConfig returns the default configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		MaxTraverseDepth: 64,
		Verbose:          false,
	}
}

// ResourceManager closes a set of resources in reverse acquisition
// order. The engine uses one to guarantee the file handle (and any
// future auxiliary handles) unwind cleanly regardless of which step
// of Open failed.
type ResourceManager struct {
	resources []io.Closer
}

// NewResourceManager creates an empty resource manager.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{}
}

// Add registers a closeable resource.
func (rm *ResourceManager) Add(resource io.Closer) {
	rm.resources = append(rm.resources, resource)
}

// Close closes all managed resources LIFO, returning the first error
// encountered. Every Close is still attempted after a failure; errors
// after the first are discarded.
func (rm *ResourceManager) Close() error {
	var firstErr error
	for i := len(rm.resources) - 1; i >= 0; i-- {
		if err := rm.resources[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
