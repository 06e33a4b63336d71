package interviewprep

import (
	"fmt"
	"strings"

	"github.com/speakbright/agent-core/core/prompts"
)

var questionGuidelines = map[string]string{
	"technical": `- Ask technical questions appropriate for the role and experience level
- Start with fundamentals, then progress to complex problems
- Include coding/algorithm questions if relevant
- Test system design for senior roles
- Assess problem-solving approach, not just the answer`,
	"behavioral": `- Use STAR method questions (Situation, Task, Action, Result)
- Ask about past experiences and challenges
- Focus on leadership, teamwork, conflict resolution
- Probe for specific examples, not hypotheticals
- Look for growth mindset and learning from failures`,
	"hr": `- Ask about career goals and motivations
- Discuss salary expectations appropriately
- Explore culture fit and work preferences
- Address any resume gaps or transitions
- Assess communication skills and professionalism`,
	"case_study": `- Present a realistic business problem
- Guide through the problem-solving process
- Ask clarifying questions about their approach
- Challenge assumptions respectfully
- Evaluate structured thinking and analysis`,
}

const defaultQuestionGuidelines = "- Ask a mix of behavioral and role-specific questions"

var evaluationCriteria = map[string]string{
	"technical": `- Technical knowledge and depth
- Problem-solving methodology
- Code quality and efficiency
- Communication of technical concepts
- Ability to handle ambiguity`,
	"behavioral": `- Specific examples and detail
- Leadership and initiative
- Team collaboration
- Problem resolution skills
- Learning and adaptability`,
	"manager": `- Leadership experience and style
- Team building and mentoring
- Strategic thinking
- Stakeholder management
- Decision-making process`,
}

const defaultEvaluationCriteria = `- Relevant experience
- Communication clarity
- Problem-solving approach
- Cultural fit
- Growth potential`

const interviewClosing = "The interview lasts 15 minutes. Begin wrapping up around the 13.5 minute mark: " +
	"finish the current question, then move to a short closing exchange. " +
	"Do not start new question areas in the final 90 seconds. " +
	"This ensures a graceful end before the system closes automatically."

const defaultInstructions = `You are an experienced interview coach conducting a mock behavioral interview.

Help the candidate practice their interview skills by:
1. Asking relevant behavioral questions
2. Following up for specific examples
3. Providing constructive feedback
4. Maintaining a professional yet friendly demeanor

Start by introducing yourself and explaining the interview format.`

// buildInstructions assembles the interviewer's system prompt. Without a
// context it falls back to a generic behavioral mock interview.
func buildInstructions(context *Context) string {
	if context == nil {
		return defaultInstructions
	}

	persona := fmt.Sprintf(
		"You are an experienced interviewer conducting a realtime mock %s interview. "+
			"You are professional, attentive, and constructive, creating realistic "+
			"interview pressure while keeping the candidate comfortable enough to perform.",
		strings.ReplaceAll(interviewType(context), "_", " "),
	)

	return prompts.NewBuilder().
		Section(prompts.SectionRole, persona).
		Section(prompts.SectionContext, candidateProfile(context)).
		Section(prompts.SectionInstructions, questionPlan(context)).
		Section(prompts.SectionConstraints, "Evaluate the candidate on:\n"+criteria(context)).
		Section(prompts.SectionClosing, interviewClosing).
		Build(nil)
}

func interviewType(context *Context) string {
	if _, ok := questionGuidelines[context.InterviewType]; ok {
		return context.InterviewType
	}
	return "behavioral"
}

func candidateProfile(context *Context) string {
	profile := fmt.Sprintf(
		"The candidate is %s, interviewing for a %s position at the %s level.",
		orUnknown(context.CandidateName, "the candidate"),
		strings.ReplaceAll(orUnknown(context.JobRole, "general"), "_", " "),
		orUnknown(context.ExperienceLevel, "mid"),
	)
	if len(context.FocusAreas) > 0 {
		profile += fmt.Sprintf(" Focus the interview on: %s.", strings.Join(context.FocusAreas, ", "))
	}
	if context.TargetIndustry != "" {
		profile += fmt.Sprintf(" Target industry: %s.", context.TargetIndustry)
	}
	if context.CompanySize != "" {
		profile += fmt.Sprintf(" Target company size: %s.", context.CompanySize)
	}
	if context.InterviewFormat != "" {
		profile += fmt.Sprintf(" Simulate a %s interview format.", strings.ReplaceAll(context.InterviewFormat, "_", " "))
	}
	if context.PreparationLevel != "" {
		profile += fmt.Sprintf(" Their preparation level is %s; calibrate difficulty accordingly.", context.PreparationLevel)
	}
	if len(context.WeakPoints) > 0 {
		profile += fmt.Sprintf(" They struggle with: %s. Give these areas extra attention.", strings.Join(context.WeakPoints, ", "))
	}
	if len(context.PracticeGoals) > 0 {
		profile += fmt.Sprintf(" Their practice goals: %s.", strings.Join(context.PracticeGoals, ", "))
	}
	return profile
}

func questionPlan(context *Context) string {
	guidelines, ok := questionGuidelines[context.InterviewType]
	if !ok {
		guidelines = defaultQuestionGuidelines
	}
	return "Conduct the interview following these guidelines:\n" + guidelines + "\n" +
		"- Ask one question at a time and let the candidate finish before following up\n" +
		"- After each answer, give one short piece of actionable feedback before moving on"
}

// criteria selects evaluation criteria by interview type, with a manager
// override keyed off the job role.
func criteria(context *Context) string {
	if selected, ok := evaluationCriteria[context.InterviewType]; ok {
		return selected
	}
	if strings.Contains(strings.ToLower(context.JobRole), "manager") {
		return evaluationCriteria["manager"]
	}
	return defaultEvaluationCriteria
}

func orUnknown(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
