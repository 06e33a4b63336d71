package agents

import "fmt"

// Factory creates a fresh, fully configured agent per session so that no
// session-specific context leaks between sessions.
type Factory struct {
	registry *Registry
}

// NewFactory builds a factory over the given registry; nil means the
// process-wide default registry.
func NewFactory(registry *Registry) *Factory {
	if registry == nil {
		registry = Default()
	}
	return &Factory{registry: registry}
}

// Create instantiates the named agent type with the session's raw room
// metadata. An empty name falls back to the registry's default agent.
func (f *Factory) Create(agentType string, metadata map[string]any) (Agent, error) {
	registration, ok := f.lookup(agentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, agentType)
	}

	agent, err := registration.New(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent %q: %w", registration.Metadata.Name, err)
	}

	logger.Info("created agent for session", "agent", agent.Metadata().Name)
	return agent, nil
}

func (f *Factory) lookup(agentType string) (Registration, bool) {
	if agentType == "" {
		_, registration, ok := f.registry.DefaultAgent()
		return registration, ok
	}
	return f.registry.Lookup(agentType)
}
