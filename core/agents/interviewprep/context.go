package interviewprep

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Context is the interview setup the frontend sends via room metadata.
// CandidateName, InterviewType, JobRole, and ExperienceLevel drive the
// interview plan; the rest refines it.
type Context struct {
	CandidateName   string   `json:"candidateName"`
	InterviewType   string   `json:"interviewType"`
	JobRole         string   `json:"jobRole"`
	ExperienceLevel string   `json:"experienceLevel"`
	FocusAreas      []string `json:"focusAreas,omitempty"`

	Gender           string   `json:"genderPreference,omitempty"`
	TargetIndustry   string   `json:"targetIndustry,omitempty"`
	CompanySize      string   `json:"companySize,omitempty"`
	InterviewFormat  string   `json:"interviewFormat,omitempty"`
	PreparationLevel string   `json:"preparationLevel,omitempty"`
	WeakPoints       []string `json:"weakPoints,omitempty"`
	PracticeGoals    []string `json:"practiceGoals,omitempty"`

	Email    string `json:"email,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
}

func (c *Context) AgentType() string        { return AgentType }
func (c *Context) GenderPreference() string { return c.Gender }

var (
	interviewTypes   = []string{"technical", "behavioral", "hr", "case_study"}
	experienceLevels = []string{"entry", "mid", "senior", "executive"}
)

func parseContext(metadata map[string]any) (*Context, error) {
	raw, ok := metadata["context"]
	if !ok || raw == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode context metadata: %w", err)
	}

	var context Context
	if err := json.Unmarshal(encoded, &context); err != nil {
		return nil, fmt.Errorf("failed to parse interview context: %w", err)
	}

	if context.InterviewType != "" && !slices.Contains(interviewTypes, context.InterviewType) {
		logger.Warn("invalid interview type", "type", context.InterviewType)
	}
	if context.ExperienceLevel != "" && !slices.Contains(experienceLevels, context.ExperienceLevel) {
		logger.Warn("invalid experience level", "level", context.ExperienceLevel)
	}

	return &context, nil
}
