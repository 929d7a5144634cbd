package artifact

import (
	"fmt"
	"strings"

	"github.com/nikogura/resume-forge/pkg/pipeline"
)

const (
	comparisonRenderLimit    = 1500
	comparisonJobDescLimit   = 1000
	comparisonResumeCtxLimit = 500
)

func truncateForPrompt(s string, limit int) (out string) {
	if len(s) <= limit {
		return s
	}

	return s[:limit]
}

func renderVersions(candidates []pipeline.Candidate) (out string) {
	var b strings.Builder

	for i, c := range candidates {
		fmt.Fprintf(&b, "=== VERSION %d ===\n%s\n\n", i+1, c.Value.RenderForComparison(comparisonRenderLimit))
	}

	return b.String()
}

func buildResumePrompt(baseResume string, jobDescription string, keywords []string) (prompt string) {
	keywordLine := ""
	if len(keywords) > 0 {
		keywordLine = fmt.Sprintf("\nWeave in these keywords where they are truthful: %s\n", strings.Join(keywords, ", "))
	}

	prompt = fmt.Sprintf(`You are an expert resume writer. Tailor the resume below for the job description while staying strictly truthful to the candidate's real experience.

Rules:
- Do not invent employers, titles, dates, or accomplishments.
- Reorder and rephrase existing content to emphasize what the job asks for.
- Keep the resume's original plain-text structure.
%s
JOB DESCRIPTION:
%s

CURRENT RESUME:
%s

Return only the tailored resume text with no commentary before or after it.`, keywordLine, jobDescription, baseResume)

	return prompt
}

func buildResumeComparisonPrompt(candidates []pipeline.Candidate, jobDescription string) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert resume reviewer. Compare the following tailored resume versions for the same job and pick the strongest one.

JOB DESCRIPTION (excerpt):
%s

%sEvaluate each version for relevance to the job, truthfulness to the original content, clarity, and impact of phrasing.

Respond with a JSON object in exactly this format:
{
  "selected": <0-based index of the best version>,
  "justification": "<one or two sentences explaining the choice>",
  "scores": {"0": {"relevance": 8.5, "clarity": 9.0}, "1": {"relevance": 7.0, "clarity": 8.0}}
}

Note that "selected" is 0-based: VERSION 1 is selected 0, VERSION 2 is selected 1, and so on. Return only the JSON object.`,
		truncateForPrompt(jobDescription, comparisonJobDescLimit), renderVersions(candidates))

	return prompt
}

func buildResumeDataPrompt(resumeJSON string, jobDescription string) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert resume strategist. Analyze the job description and the candidate's structured resume data, then produce customization guidance.

JOB DESCRIPTION:
%s

RESUME DATA:
%s

Respond with a JSON object in exactly this format:
{
  "keywords": ["<terms from the job description the resume should surface>"],
  "bullet_reorder": {"<experience id>": ["<bullet text in recommended order>"]},
  "professional_summary": "<a 2-3 sentence summary rewritten for this job>"
}

Only reference experience entries and bullets that exist in the resume data. Return only the JSON object.`, jobDescription, resumeJSON)

	return prompt
}

func buildResumeDataComparisonPrompt(candidates []pipeline.Candidate, jobDescription string, resumeContext string) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert resume strategist. Compare the following customization plans produced for the same job and either pick the best one or combine the best parts of several.

JOB DESCRIPTION (excerpt):
%s

RESUME CONTEXT (excerpt):
%s

%sRespond with a JSON object in exactly this format:
{
  "action": "select" or "combine",
  "selected": <0-based index of the best version, required when action is "select">,
  "selection": {"keywords": <1-based version number>, "bullet_reorder": <1-based version number>, "professional_summary": <1-based version number>},
  "justification": "<one or two sentences explaining the choice>"
}

When action is "select", "selected" is 0-based: VERSION 1 is selected 0. When action is "combine", each value in "selection" is the 1-based version number to take that field from: VERSION 1 is 1. Return only the JSON object.`,
		truncateForPrompt(jobDescription, comparisonJobDescLimit),
		truncateForPrompt(resumeContext, comparisonResumeCtxLimit),
		renderVersions(candidates))

	return prompt
}

func buildCoverLetterPrompt(req CoverLetterRequest) (prompt string) {
	variantLine := ""
	if req.Variant != "" {
		variantLine = fmt.Sprintf("Style variant: %s.\n", req.Variant)
	}

	prompt = fmt.Sprintf(`You are an expert cover letter writer. Write a cover letter for the %s role at %s, grounded only in the candidate's real background below.

%sJOB DESCRIPTION:
%s

CANDIDATE BACKGROUND:
%s

Respond with a JSON object in exactly this format:
{
  "opening_hook": "<an opening paragraph that grabs attention>",
  "professional_summary": "<a paragraph summarizing relevant experience>",
  "key_achievements": ["<specific achievements matched to the job>"],
  "skills_highlight": ["<skills from the background that the job asks for>"],
  "company_alignment": "<why this candidate fits this company>",
  "closing": "<a brief closing paragraph>"
}

Do not invent experience the background does not support. Return only the JSON object.`,
		req.Role, req.Company, variantLine, req.JobDescription, req.ResumeContext)

	return prompt
}

func buildCoverLetterComparisonPrompt(candidates []pipeline.Candidate, req CoverLetterRequest) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert cover letter reviewer. Compare the following cover letter versions written for the %s role at %s and either pick the best one or combine the best sections of several.

JOB DESCRIPTION (excerpt):
%s

%sRespond with a JSON object in exactly this format:
{
  "action": "select" or "combine",
  "selected": <0-based index of the best version, required when action is "select">,
  "selection": {"opening_hook": <1-based version number>, "professional_summary": <1-based version number>, "key_achievements": <1-based version number>, "skills_highlight": <1-based version number>, "company_alignment": <1-based version number>, "closing": <1-based version number>},
  "justification": "<one or two sentences explaining the choice>"
}

When action is "select", "selected" is 0-based: VERSION 1 is selected 0. When action is "combine", each value in "selection" is the 1-based version number to take that section from. Return only the JSON object.`,
		req.Role, req.Company, truncateForPrompt(req.JobDescription, comparisonJobDescLimit), renderVersions(candidates))

	return prompt
}

func buildInterviewPrompt(req InterviewRequest) (prompt string) {
	variantLine := ""
	if req.Variant != "" {
		variantLine = fmt.Sprintf("Emphasis: %s.\n", req.Variant)
	}

	prompt = fmt.Sprintf(`You are an experienced technical interviewer. Analyze the job description and the candidate's background, then produce likely interview questions with suggested answers drawn from the candidate's real experience.

%sJOB DESCRIPTION:
%s

CANDIDATE BACKGROUND:
%s

Respond with a JSON object in exactly this format:
{
  "job_analysis": {"role_type": "<role category>", "seniority_level": "<junior|mid|senior|staff>", "key_technologies": ["<technologies central to the role>"]},
  "technical_questions": [{"question": "<question>", "answer": "<suggested answer from the candidate's background>", "priority": "high|medium|low"}],
  "behavioral_questions": [{"question": "<question>", "answer": "<suggested answer>", "priority": "high|medium|low"}],
  "system_design_questions": [{"question": "<question>", "answer": "<approach outline>", "priority": "high|medium|low"}],
  "preparation_tips": ["<specific preparation advice for this role>"]
}

Return only the JSON object.`, variantLine, req.JobDescription, req.ResumeContext)

	return prompt
}

func buildInterviewComparisonPrompt(candidates []pipeline.Candidate, req InterviewRequest) (prompt string) {
	prompt = fmt.Sprintf(`You are an experienced technical interviewer. Compare the following interview preparation sets produced for the same job and pick the strongest one.

JOB DESCRIPTION (excerpt):
%s

%sEvaluate each version for how well the questions match the role, how specific and usable the suggested answers are, and overall coverage.

Respond with a JSON object in exactly this format:
{
  "selected": <0-based index of the best version>,
  "justification": "<one or two sentences explaining the choice>"
}

Note that "selected" is 0-based: VERSION 1 is selected 0. Return only the JSON object.`,
		truncateForPrompt(req.JobDescription, comparisonJobDescLimit), renderVersions(candidates))

	return prompt
}
