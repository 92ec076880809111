package graph

import "sync"

var (
	sharedMu     sync.Mutex
	sharedEngine *Engine
)

// Shared returns the process-wide engine, creating it with opts on first
// use. Options are ignored once the engine exists. Code that needs an engine
// should receive it explicitly; Shared is meant for the program's main
// function.
func Shared(opts ...Option) *Engine {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedEngine == nil {
		sharedEngine = New(opts...)
	}

	return sharedEngine
}

// ShutdownShared closes the process-wide engine. A later call to Shared
// creates a new one.
func ShutdownShared() error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedEngine == nil {
		return nil
	}

	err := sharedEngine.Close()
	sharedEngine = nil

	return err
}
