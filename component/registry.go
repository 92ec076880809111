package component

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

var (
	// ErrUnknownComponent is returned when a description has no registration.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrDuplicateRegistration is returned when a description is already bound
	// to a different factory.
	ErrDuplicateRegistration = errors.New("duplicate component registration")
	// ErrInvalidRegistration is returned for incomplete registrations.
	ErrInvalidRegistration = errors.New("invalid component registration")
)

// Registry maps component descriptions to registrations. Components live
// for the lifetime of the registry; there is no removal.
type Registry struct {
	mu      sync.RWMutex
	entries map[Description]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Description]Registration)}
}

// Register adds reg. Registering an identical registration again is a
// no-op; binding a different factory to a taken description fails with
// ErrDuplicateRegistration.
func (r *Registry) Register(reg Registration) error {
	if reg.Description.IsZero() {
		return fmt.Errorf("%w: zero description", ErrInvalidRegistration)
	}

	if reg.New == nil {
		return fmt.Errorf("%w: %s: nil factory", ErrInvalidRegistration, reg.Description)
	}

	if reg.Params == nil {
		return fmt.Errorf("%w: %s: nil parameter table", ErrInvalidRegistration, reg.Description)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.entries[reg.Description]; exists {
		if sameRegistration(prev, reg) {
			return nil
		}

		return fmt.Errorf("%w: %s (%q)", ErrDuplicateRegistration, reg.Description, prev.Name)
	}

	r.entries[reg.Description] = reg

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(reg Registration) {
	err := r.Register(reg)
	if err != nil {
		panic("component registry: " + err.Error())
	}
}

// Resolve returns the registration bound to desc.
func (r *Registry) Resolve(desc Description) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[desc]
	if !ok {
		return Registration{}, fmt.Errorf("%w: %s", ErrUnknownComponent, desc)
	}

	return reg, nil
}

// Registrations returns all registrations ordered by description.
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	out := make([]Registration, 0, len(r.entries))

	for _, reg := range r.entries {
		out = append(out, reg)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Registration) int {
		return a.Description.Compare(b.Description)
	})

	return out
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// sameRegistration compares factories by code pointer plus Config. Closures
// created from the same function literal share a code pointer, so Config is
// what tells differently configured ones apart.
func sameRegistration(a, b Registration) bool {
	return reflect.ValueOf(a.New).Pointer() == reflect.ValueOf(b.New).Pointer() &&
		sameConfig(a.Config, b.Config) &&
		a.Params == b.Params &&
		a.Name == b.Name &&
		a.Version == b.Version &&
		a.Channels == b.Channels
}

// sameConfig reports whether two configs are equal. Configs that cannot be
// compared are never the same.
func sameConfig(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}

	return a == b
}
