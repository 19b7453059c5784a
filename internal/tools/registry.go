package tools

import (
	"fmt"
	"sort"
	"sync"

	"kodo/internal/mode"

	"google.golang.org/genai"
)

// Registry manages the collection of available tools and their
// descriptors. Lookups have no side effects.
type Registry struct {
	tools       map[string]Tool
	descriptors map[string]Descriptor
	mu          sync.RWMutex
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:       make(map[string]Tool),
		descriptors: make(map[string]Descriptor),
	}
}

// Register adds a tool and its descriptor to the registry.
func (r *Registry) Register(tool Tool, desc Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if name != desc.Name {
		return fmt.Errorf("descriptor name %q does not match tool %q", desc.Name, name)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	r.descriptors[name] = desc
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// Describe returns the descriptor for a tool.
func (r *Registry) Describe(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.descriptors[name]
	return desc, ok
}

// List returns the descriptors eligible in the given mode, sorted by
// name for stable output.
func (r *Registry) List(m mode.Mode) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]Descriptor, 0, len(r.descriptors))
	for _, desc := range r.descriptors {
		if desc.EligibleIn(m) {
			descs = append(descs, desc)
		}
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].Name < descs[j].Name })
	return descs
}

// Names returns all registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns the function declarations for tools eligible in
// the given mode. Only these are ever offered to the model.
func (r *Registry) Declarations(m mode.Mode) []*genai.FunctionDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.descriptors))
	for name, desc := range r.descriptors {
		if desc.EligibleIn(m) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	declarations := make([]*genai.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		declarations = append(declarations, r.tools[name].Declaration())
	}
	return declarations
}
