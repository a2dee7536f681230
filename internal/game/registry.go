package game

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages variant registration and lookup.
// It provides a thread-safe way to register and retrieve variants by their command.
type Registry struct {
	variants map[string]Variant
	mu       sync.RWMutex
}

// NewRegistry creates a new variant registry.
func NewRegistry() *Registry {
	return &Registry{
		variants: make(map[string]Variant),
	}
}

// Register adds a variant to the registry.
// If a variant with the same command already exists, it will be replaced.
func (r *Registry) Register(v Variant) error {
	if v == nil {
		return fmt.Errorf("cannot register nil variant")
	}
	if v.Command() == "" {
		return fmt.Errorf("variant command cannot be empty")
	}
	if v.MinPlayers() < 1 {
		return fmt.Errorf("variant %q needs at least one player", v.Command())
	}
	if max := v.MaxPlayers(); max != 0 && max < v.MinPlayers() {
		return fmt.Errorf("variant %q: max players %d below min players %d", v.Command(), max, v.MinPlayers())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[v.Command()] = v
	return nil
}

// Get retrieves a variant by its command.
// Returns the variant and true if found, nil and false otherwise.
func (r *Registry) Get(command string) (Variant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[command]
	return v, ok
}

// List returns all registered variants sorted by command.
// The returned slice is a copy, so modifications won't affect the registry.
func (r *Registry) List() []Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variants := make([]Variant, 0, len(r.variants))
	for _, v := range r.variants {
		variants = append(variants, v)
	}
	sort.Slice(variants, func(i, j int) bool {
		return variants[i].Command() < variants[j].Command()
	})
	return variants
}

// Commands returns all registered variant commands, sorted.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]string, 0, len(r.variants))
	for cmd := range r.variants {
		commands = append(commands, cmd)
	}
	sort.Strings(commands)
	return commands
}

// Count returns the number of registered variants.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.variants)
}

// Unregister removes a variant from the registry by its command.
// Returns true if the variant was found and removed, false otherwise.
func (r *Registry) Unregister(command string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.variants[command]; ok {
		delete(r.variants, command)
		return true
	}
	return false
}
