package agents

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"
)

var (
	ErrAlreadyRegistered = errors.New("agent already registered")
	ErrUnknownAgent      = errors.New("unknown agent")
)

// Constructor builds a fresh agent instance from raw room metadata.
type Constructor func(metadata map[string]any) (Agent, error)

// Registration ties an agent type name to its constructor and metadata.
type Registration struct {
	Metadata Metadata
	New      Constructor
	// ContextPrototype, when set, is reflected into a JSON schema describing
	// the context payload the agent expects from the frontend.
	ContextPrototype any
	Default          bool

	schema *jsonschema.Schema
}

// Info is the wire-friendly description of one registration.
type Info struct {
	Metadata
	Default       bool               `json:"default"`
	ContextSchema *jsonschema.Schema `json:"context_schema,omitempty"`
}

// Registry maps agent type names to registrations.
type Registry struct {
	mu           sync.RWMutex
	agents       map[string]Registration
	defaultAgent string
}

func NewRegistry() *Registry {
	return &Registry{agents: map[string]Registration{}}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, initialized on first use. No
// single session owns it; registration typically happens once at worker
// startup.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds an agent type under name. Registering a name twice is a
// caller bug reported as ErrAlreadyRegistered, not a panic.
func (r *Registry) Register(name string, registration Registration) error {
	if name == "" {
		return fmt.Errorf("agent name is required")
	}
	if registration.New == nil {
		return fmt.Errorf("agent %q has no constructor", name)
	}

	if registration.ContextPrototype != nil {
		registration.schema = jsonschema.Reflect(registration.ContextPrototype)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}

	r.agents[name] = registration
	if registration.Default {
		r.defaultAgent = name
	}

	logger.Info("registered agent",
		"agent", name,
		"default", registration.Default,
	)
	return nil
}

// Lookup returns the registration for name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, ok := r.agents[name]
	return registration, ok
}

// DefaultAgent returns the registration marked as default, if any.
func (r *Registry) DefaultAgent() (string, Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaultAgent == "" {
		return "", Registration{}, false
	}
	registration, ok := r.agents[r.defaultAgent]
	return r.defaultAgent, registration, ok
}

// Unregister removes name, reporting whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[name]; !ok {
		return false
	}

	delete(r.agents, name)
	if r.defaultAgent == name {
		r.defaultAgent = ""
	}
	return true
}

// Names lists registered agent type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

func (r *Registry) Contains(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Describe returns the wire-friendly description of one registration.
func (r *Registry) Describe(name string) (Info, bool) {
	registration, ok := r.Lookup(name)
	if !ok {
		return Info{}, false
	}

	return Info{
		Metadata:      registration.Metadata,
		Default:       registration.Default,
		ContextSchema: registration.schema,
	}, true
}

// DescribeAll returns descriptions for every registration, ordered by name.
func (r *Registry) DescribeAll() []Info {
	infos := make([]Info, 0, r.Len())
	for _, name := range r.Names() {
		if info, ok := r.Describe(name); ok {
			infos = append(infos, info)
		}
	}
	return infos
}
