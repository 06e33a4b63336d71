// Package interviewprep implements the mock interview coach agent: a
// fifteen-minute voice interview tailored to the candidate's role, interview
// type, and experience level.
package interviewprep

import (
	"github.com/speakbright/agent-core/core/agents"
	"github.com/speakbright/agent-core/core/session"
)

// AgentType is the registry name the frontend uses to request this agent.
const AgentType = "interview_preparer"

type Agent struct {
	context      *Context
	instructions string
}

// New builds an interviewer agent from raw room metadata.
func New(metadata map[string]any) (agents.Agent, error) {
	context, err := parseContext(metadata)
	if err != nil {
		return nil, err
	}

	if context != nil {
		logger.Info("building interview session",
			"candidate", context.CandidateName,
			"type", context.InterviewType,
			"role", context.JobRole,
			"level", context.ExperienceLevel,
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
		Description:        "AI interview coach for mock interview practice",
		SupportedLanguages: []string{"en"},
		Capabilities: []string{
			"mock_interviews",
			"behavioral_questions",
			"technical_interviews",
			"interview_feedback",
			"answer_coaching",
			"confidence_building",
		},
	}
}

func (a *Agent) Instructions() string { return a.instructions }

func (a *Agent) TimingConfig() session.TimingConfig { return TimingConfig() }

func (a *Agent) ClosingInstruction() string { return goodbyeInstruction }

func (a *Agent) Context() agents.Context {
	if a.context == nil {
		return nil
	}
	return a.context
}

// Register adds the interviewer to the given registry. A nil registry means
// the process-wide default.
func Register(registry *agents.Registry) error {
	if registry == nil {
		registry = agents.Default()
	}
	return registry.Register(AgentType, agents.Registration{
		Metadata:         (&Agent{}).Metadata(),
		New:              New,
		ContextPrototype: &Context{},
	})
}
