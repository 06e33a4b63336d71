package agents

import (
	"strings"

	"github.com/speakbright/agent-core/core/session"
)

// Metadata describes one agent type.
type Metadata struct {
	Name               string   `json:"name"`
	Version            string   `json:"version"`
	Description        string   `json:"description"`
	SupportedLanguages []string `json:"supported_languages"`
	Capabilities       []string `json:"capabilities"`
}

// SupportsLanguage reports whether the agent supports the given language
// code, case-insensitively.
func (m Metadata) SupportsLanguage(language string) bool {
	for _, supported := range m.SupportedLanguages {
		if strings.EqualFold(supported, language) {
			return true
		}
	}
	return false
}

// Context carries the per-session personalization data a frontend supplies
// for one agent type.
type Context interface {
	// AgentType names the agent this context targets.
	AgentType() string
	// GenderPreference is used for voice selection; empty means no
	// preference.
	GenderPreference() string
}

// Agent is one conversational agent implementation, created fresh per
// session.
type Agent interface {
	Metadata() Metadata
	// Instructions is the complete system prompt built from the agent's
	// context.
	Instructions() string
	// TimingConfig is the agent's checkpoint schedule.
	TimingConfig() session.TimingConfig
	// ClosingInstruction is the prompt used to generate the goodbye
	// utterance during graceful shutdown.
	ClosingInstruction() string
	// Context returns the context this agent was created with, nil when the
	// session carried none.
	Context() Context
}
