package englishtutor

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Context is the personalization payload the frontend sends for a tutoring
// session, carried in the room metadata's "context" field. Field names match
// the frontend interface.
type Context struct {
	StudentName          string   `json:"studentName,omitempty"`
	ProficiencyLevel     string   `json:"proficiencyLevel,omitempty"`
	Gender               string   `json:"genderPreference,omitempty"`
	SpeakingSpeed        string   `json:"speakingSpeed,omitempty"`
	Interests            []string `json:"interests,omitempty"`
	ComfortableLanguage  string   `json:"comfortableLanguage,omitempty"`
	TutorStyles          []string `json:"tutorStyles,omitempty"`
	CorrectionPreference string   `json:"correctionPreference,omitempty"`
	Email                string   `json:"email,omitempty"`
	Whatsapp             string   `json:"whatsapp,omitempty"`
}

func (c *Context) AgentType() string        { return AgentType }
func (c *Context) GenderPreference() string { return c.Gender }

var (
	proficiencyLevels     = []string{"A1", "A2", "B1", "B2", "C1", "C2"}
	correctionPreferences = []string{"immediate", "let_me_finish", "major_only", "focus_on_fluency"}
	speakingSpeeds        = []string{"very_slow", "slow", "normal", "fast"}
)

// parseContext decodes the "context" field of the raw room metadata. A
// missing context yields nil; unknown enum values are logged but kept, to
// stay lenient with frontend changes.
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
		return nil, fmt.Errorf("failed to parse tutor context: %w", err)
	}

	if context.ProficiencyLevel != "" && !slices.Contains(proficiencyLevels, context.ProficiencyLevel) {
		logger.Warn("invalid proficiency level", "level", context.ProficiencyLevel)
	}
	if context.CorrectionPreference != "" && !slices.Contains(correctionPreferences, context.CorrectionPreference) {
		logger.Warn("invalid correction preference", "preference", context.CorrectionPreference)
	}
	if context.SpeakingSpeed != "" && !slices.Contains(speakingSpeeds, context.SpeakingSpeed) {
		logger.Warn("invalid speaking speed", "speed", context.SpeakingSpeed)
	}

	return &context, nil
}
