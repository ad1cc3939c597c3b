package ai

import "strings"

// Section labels requested from the model, in order
const (
	SectionRecommendation  = "APPLICATION RECOMMENDATION"
	SectionConfidence      = "CONFIDENCE LEVEL"
	SectionMatchAnalysis   = "JOB PROFILE MATCH ANALYSIS"
	SectionTargetRoles     = "TARGET JOB PROFILES"
	SectionExperienceLevel = "EXPERIENCE LEVEL ASSESSMENT"
	SectionTiming          = "TIMING ANALYSIS"
	SectionActionItems     = "RECOMMENDATIONS"
)

// AnalysisSections lists every labeled section the prompt asks for
var AnalysisSections = []string{
	SectionRecommendation,
	SectionConfidence,
	SectionMatchAnalysis,
	SectionTargetRoles,
	SectionExperienceLevel,
	SectionTiming,
	SectionActionItems,
}

// SystemInstruction is sent as the system prompt on every analysis call
const SystemInstruction = `You are an expert career advisor with deep knowledge of job markets, hiring trends, and career development. Provide detailed, actionable, and encouraging feedback.`

const promptIntro = `You are an expert career advisor and job application analyst. Analyze the following job posting and resume to provide comprehensive feedback.`

var sectionInstructions = map[string]string{
	SectionRecommendation: `State clearly whether the candidate should apply: "Yes, apply", "Apply with preparation" or "Not recommended yet". Give the two or three deciding reasons.`,
	SectionConfidence:     `Rate your confidence in the recommendation as High, Medium or Low and explain what drives it.`,
	SectionMatchAnalysis: `- Overall match percentage (0-100%)
- Strong matches: skills and experience that align with the posting
- Gaps: required qualifications missing from the resume
- Transferable skills that partially cover the gaps`,
	SectionTargetRoles: `List 5-7 job titles that fit this candidate's current profile, each with a one-line reason.`,
	SectionExperienceLevel: `- Level the posting targets (entry, mid, senior, lead)
- Level the resume demonstrates
- Whether the candidate is under-qualified, well matched or over-qualified`,
	SectionTiming: `Say whether now is the right moment to apply or whether a short period of preparation would change the outcome, and how long that preparation would take.`,
	SectionActionItems: `Give concrete next steps:
- Resume changes for this specific posting
- Skills to build, with suggested resources
- How to address the gaps in a cover letter or interview`,
}

// BuildAnalysisPrompt embeds the job posting and resume verbatim and asks for
// every section in AnalysisSections.
func BuildAnalysisPrompt(jobPosting, resume string) string {
	var b strings.Builder

	b.WriteString(promptIntro)
	b.WriteString("\n\nJOB POSTING:\n")
	b.WriteString(jobPosting)
	b.WriteString("\n\nUSER RESUME:\n")
	b.WriteString(resume)
	b.WriteString("\n\nProvide your analysis using exactly these markdown sections, in this order:\n")

	for _, section := range AnalysisSections {
		b.WriteString("\n## ")
		b.WriteString(section)
		b.WriteString("\n")
		b.WriteString(sectionInstructions[section])
		b.WriteString("\n")
	}

	b.WriteString("\nBe specific, actionable, and encouraging.")
	return b.String()
}
