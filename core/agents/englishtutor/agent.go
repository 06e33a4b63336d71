// Package englishtutor implements the conversational English tutor agent:
// a five-minute spoken lesson personalized by the student's proficiency,
// interests, and correction preferences.
package englishtutor

import (
	"github.com/speakbright/agent-core/core/agents"
	"github.com/speakbright/agent-core/core/session"
)

// AgentType is the registry name the frontend uses to request this agent.
const AgentType = "english_tutor"

// Agent is one tutoring session's agent instance, created fresh per session
// with the student's parsed context baked into its instructions.
type Agent struct {
	context      *Context
	instructions string
}

// New builds a tutor agent from raw room metadata.
func New(metadata map[string]any) (agents.Agent, error) {
	context, err := parseContext(metadata)
	if err != nil {
		return nil, err
	}

	if context != nil {
		logger.Info("building tutor session",
			"student", context.StudentName,
			"proficiency", context.ProficiencyLevel,
			"speed", context.SpeakingSpeed,
			"correction", context.CorrectionPreference,
		)
	}

	return &Agent{
		context:      context,
		instructions: buildInstructions(context),
	}, nil
}

func (a *Agent) Metadata() agents.Metadata {
	return agents.Metadata{
		Name:               AgentType,
		Version:            "1.0.0",
		Description:        "AI English tutor for conversational practice",
		SupportedLanguages: []string{"en"},
		Capabilities: []string{
			"conversation_practice",
			"grammar_correction",
			"pronunciation_help",
			"vocabulary_building",
			"fluency_improvement",
		},
	}
}

func (a *Agent) Instructions() string { return a.instructions }

func (a *Agent) TimingConfig() session.TimingConfig { return TimingConfig() }

func (a *Agent) ClosingInstruction() string { return goodbyeInstruction }

// Context returns the parsed student context, nil when the room metadata
// carried none.
func (a *Agent) Context() agents.Context {
	if a.context == nil {
		return nil
	}
	return a.context
}

// Register adds the tutor to the given registry as the default agent. A nil
// registry means the process-wide default.
func Register(registry *agents.Registry) error {
	if registry == nil {
		registry = agents.Default()
	}
	return registry.Register(AgentType, agents.Registration{
		Metadata:         (&Agent{}).Metadata(),
		New:              New,
		ContextPrototype: &Context{},
		Default:          true,
	})
}
