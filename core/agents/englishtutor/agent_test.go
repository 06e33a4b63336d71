package englishtutor

import (
	"strings"
	"testing"
)

func metadataWithContext(context map[string]any) map[string]any {
	return map[string]any{
		"agentType": AgentType,
		"context":   context,
	}
}

func TestNewParsesFrontendContext(t *testing.T) {
	agent, err := New(metadataWithContext(map[string]any{
		"studentName":          "Maya",
		"proficiencyLevel":     "A2",
		"genderPreference":     "female",
		"speakingSpeed":        "slow",
		"interests":            []any{"cricket", "movies"},
		"comfortableLanguage":  "hindi",
		"correctionPreference": "major_only",
	}))
	if err != nil {
		t.Fatalf("failed to create agent: %v", err)
	}

	context := agent.Context()
	if context == nil {
		t.Fatalf("expected a parsed context")
	}
	if context.AgentType() != AgentType {
		t.Fatalf("unexpected agent type %q", context.AgentType())
	}
	if context.GenderPreference() != "female" {
		t.Fatalf("unexpected gender preference %q", context.GenderPreference())
	}
}

func TestNewWithoutContextUsesDefaults(t *testing.T) {
	agent, err := New(map[string]any{"agentType": AgentType})
	if err != nil {
		t.Fatalf("failed to create agent: %v", err)
	}

	if agent.Context() != nil {
		t.Fatalf("expected nil context when metadata carries none")
	}

	instructions := agent.Instructions()
	if !strings.Contains(instructions, "B1") {
		t.Fatalf("default instructions should assume B1 proficiency:\n%s", instructions)
	}
	if !strings.Contains(instructions, "let me finish") {
		t.Fatalf("default instructions should use the let_me_finish correction style:\n%s", instructions)
	}
}

func TestInstructionsReflectContext(t *testing.T) {
	agent, err := New(metadataWithContext(map[string]any{
		"studentName":         "Maya",
		"proficiencyLevel":    "C1",
		"interests":           []any{"cricket", "movies"},
		"comfortableLanguage": "tamil",
		"speakingSpeed":       "very_slow",
	}))
	if err != nil {
		t.Fatalf("failed to create agent: %v", err)
	}

	instructions := agent.Instructions()
	for _, want := range []string{
		"Their name is Maya.",
		"C1 (advanced",
		"warm-up in Tamil",
		"multiple interests: cricket, movies",
		"very slow speaking speed",
	} {
		if !strings.Contains(instructions, want) {
			t.Errorf("instructions missing %q:\n%s", want, instructions)
		}
	}
}

func TestTimingConfigIsValid(t *testing.T) {
	config := TimingConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("timing config failed validation: %v", err)
	}

	terminal, _, ok := config.Terminal()
	if !ok || terminal.Offset != MaxSessionDuration {
		t.Fatalf("expected terminal checkpoint at %d, got %+v (ok=%t)", MaxSessionDuration, terminal, ok)
	}
}
