package agents

import (
	"errors"
	"testing"

	"github.com/speakbright/agent-core/core/session"
)

type stubContext struct {
	Name   string `json:"name"`
	Gender string `json:"genderPreference"`
}

type stubAgent struct {
	metadata Metadata
}

func (a stubAgent) Metadata() Metadata                 { return a.metadata }
func (a stubAgent) Instructions() string               { return "be helpful" }
func (a stubAgent) ClosingInstruction() string         { return "say goodbye" }
func (a stubAgent) Context() Context                   { return nil }
func (a stubAgent) TimingConfig() session.TimingConfig { return session.TimingConfig{} }

func stubRegistration(name string, isDefault bool) Registration {
	return Registration{
		Metadata: Metadata{Name: name, Version: "1.0.0", SupportedLanguages: []string{"en"}},
		New: func(map[string]any) (Agent, error) {
			return stubAgent{metadata: Metadata{Name: name}}, nil
		},
		ContextPrototype: &stubContext{},
		Default:          isDefault,
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("english_tutor", stubRegistration("english_tutor", true)); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	if !registry.Contains("english_tutor") {
		t.Fatalf("expected registry to contain english_tutor")
	}
	if _, ok := registry.Lookup("missing"); ok {
		t.Fatalf("expected lookup miss for unknown agent")
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one registration, got %d", registry.Len())
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("english_tutor", stubRegistration("english_tutor", false)); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	err := registry.Register("english_tutor", stubRegistration("english_tutor", false))
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegistryDefaultAgent(t *testing.T) {
	registry := NewRegistry()
	registry.Register("interview_preparer", stubRegistration("interview_preparer", false))
	registry.Register("english_tutor", stubRegistration("english_tutor", true))

	name, _, ok := registry.DefaultAgent()
	if !ok || name != "english_tutor" {
		t.Fatalf("expected english_tutor as default, got %q (ok=%t)", name, ok)
	}

	registry.Unregister("english_tutor")
	if _, _, ok := registry.DefaultAgent(); ok {
		t.Fatalf("expected no default after unregistering it")
	}
}

func TestRegistryDescribeIncludesContextSchema(t *testing.T) {
	registry := NewRegistry()
	registry.Register("english_tutor", stubRegistration("english_tutor", true))

	info, ok := registry.Describe("english_tutor")
	if !ok {
		t.Fatalf("expected a description")
	}
	if info.ContextSchema == nil {
		t.Fatalf("expected a reflected context schema")
	}
	if !info.Default {
		t.Fatalf("expected default flag in description")
	}
}

func TestFactoryCreatesRegisteredAgents(t *testing.T) {
	registry := NewRegistry()
	registry.Register("english_tutor", stubRegistration("english_tutor", true))
	factory := NewFactory(registry)

	agent, err := factory.Create("english_tutor", nil)
	if err != nil {
		t.Fatalf("failed to create agent: %v", err)
	}
	if agent.Metadata().Name != "english_tutor" {
		t.Fatalf("expected english_tutor, got %q", agent.Metadata().Name)
	}

	if _, err := factory.Create("missing", nil); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestFactoryFallsBackToDefaultAgent(t *testing.T) {
	registry := NewRegistry()
	registry.Register("english_tutor", stubRegistration("english_tutor", true))
	factory := NewFactory(registry)

	agent, err := factory.Create("", nil)
	if err != nil {
		t.Fatalf("failed to create default agent: %v", err)
	}
	if agent.Metadata().Name != "english_tutor" {
		t.Fatalf("expected the default agent, got %q", agent.Metadata().Name)
	}
}

func TestMetadataSupportsLanguage(t *testing.T) {
	metadata := Metadata{SupportedLanguages: []string{"en", "Hi"}}

	if !metadata.SupportsLanguage("EN") {
		t.Fatalf("expected case-insensitive language match")
	}
	if metadata.SupportsLanguage("fr") {
		t.Fatalf("expected miss for unsupported language")
	}
}
