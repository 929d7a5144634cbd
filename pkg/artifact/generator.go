// Package artifact generates the job application artifacts: tailored resume
// text, structured resume customizations, cover letters, and interview
// preparation sets. Each operation runs the multi-candidate pipeline with an
// artifact-specific prompt, comparison prompt, and deterministic fallback.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/nikogura/resume-forge/pkg/extract"
	"github.com/nikogura/resume-forge/pkg/pipeline"
)

// Options configures a Generator.
type Options struct {
	// CandidateCount is the number of independent generations per artifact.
	// Zero means pipeline.DefaultCandidateCount.
	CandidateCount int

	// DisableJudging forces single-candidate generation with no judge call.
	DisableJudging bool

	// Pipeline is passed through to the underlying orchestrator.
	Pipeline pipeline.Options
}

// Generator produces application artifacts through the candidate pipeline.
type Generator struct {
	orch           *pipeline.Orchestrator
	candidateCount int
	disableJudging bool
}

// NewGenerator returns a Generator backed by the given completion function.
func NewGenerator(complete pipeline.CompletionFunc, opts Options) (g *Generator) {
	g = &Generator{
		orch:           pipeline.NewOrchestrator(complete, opts.Pipeline),
		candidateCount: opts.CandidateCount,
		disableJudging: opts.DisableJudging,
	}

	return g
}

// ClearCache drops all memoized results. Call it when starting a batch for a
// new application so artifacts are regenerated from scratch.
func (g *Generator) ClearCache() {
	g.orch.Cache().Clear()
}

// TailorResume rewrites baseResume for the given job description. On total
// generation failure the base resume is returned unmodified.
func (g *Generator) TailorResume(ctx context.Context, baseResume string, jobDescription string, keywords []string, variant string) (tailored string, res pipeline.Result, err error) {
	req := pipeline.Request{
		Domain:         pipeline.DomainResumeText,
		ContextText:    jobDescription,
		Format:         "text",
		Variant:        variant,
		Prompt:         buildResumePrompt(baseResume, jobDescription, keywords),
		Shape:          extract.PlainText,
		CandidateCount: g.candidateCount,
		DisableJudging: g.disableJudging,
		Fallback:       pipeline.Text(baseResume),
		ComparisonPrompt: func(candidates []pipeline.Candidate) string {
			return buildResumeComparisonPrompt(candidates, jobDescription)
		},
	}

	res, err = g.orch.Run(ctx, req)
	if err != nil {
		return "", res, err
	}

	text, ok := res.Value.(pipeline.Text)
	if !ok {
		return "", res, errors.Errorf("unexpected value type %T for tailored resume", res.Value)
	}

	return string(text), res, nil
}

// CustomizeResumeData analyzes the job description against structured resume
// data and returns customization guidance. The judge may combine fields from
// several candidate plans.
func (g *Generator) CustomizeResumeData(ctx context.Context, resumeJSON string, jobDescription string, variant string) (cust ResumeCustomization, res pipeline.Result, err error) {
	fallback, err := recordFallback(ResumeCustomization{
		Keywords:      []string{},
		BulletReorder: map[string][]string{},
	})
	if err != nil {
		return cust, res, err
	}

	req := pipeline.Request{
		Domain:         pipeline.DomainResumeData,
		ContextText:    jobDescription,
		Format:         "resume_customization",
		Variant:        variant,
		Prompt:         buildResumeDataPrompt(resumeJSON, jobDescription),
		Shape:          extract.JSONObject,
		CandidateCount: g.candidateCount,
		DisableJudging: g.disableJudging,
		Fallback:       fallback,
		ComparisonPrompt: func(candidates []pipeline.Candidate) string {
			return buildResumeDataComparisonPrompt(candidates, jobDescription, resumeJSON)
		},
	}

	res, err = g.orch.Run(ctx, req)
	if err != nil {
		return cust, res, err
	}

	err = decodeRecord(res.Value, &cust)
	if err != nil {
		return cust, res, errors.Wrap(err, "decoding resume customization")
	}

	return cust, res, nil
}

// GenerateCoverLetter produces a sectioned cover letter for the request. The
// judge may combine sections from several candidate letters.
func (g *Generator) GenerateCoverLetter(ctx context.Context, req CoverLetterRequest) (letter CoverLetterSections, res pipeline.Result, err error) {
	fallback, err := recordFallback(fallbackCoverLetter(req))
	if err != nil {
		return letter, res, err
	}

	preq := pipeline.Request{
		Domain:         pipeline.DomainCoverLetter,
		ContextText:    req.JobDescription,
		Format:         "cover_letter",
		Variant:        req.Variant,
		Prompt:         buildCoverLetterPrompt(req),
		Shape:          extract.JSONObject,
		CandidateCount: g.candidateCount,
		DisableJudging: g.disableJudging,
		Fallback:       fallback,
		ComparisonPrompt: func(candidates []pipeline.Candidate) string {
			return buildCoverLetterComparisonPrompt(candidates, req)
		},
	}

	res, err = g.orch.Run(ctx, preq)
	if err != nil {
		return letter, res, err
	}

	err = decodeRecord(res.Value, &letter)
	if err != nil {
		return letter, res, errors.Wrap(err, "decoding cover letter")
	}

	return letter, res, nil
}

// GenerateInterviewQuestions produces an interview preparation set for the
// request. The judge picks a whole set rather than combining across sets,
// since questions and answers within a set depend on each other.
func (g *Generator) GenerateInterviewQuestions(ctx context.Context, req InterviewRequest) (set InterviewQuestionSet, res pipeline.Result, err error) {
	fallback, err := recordFallback(fallbackInterviewSet())
	if err != nil {
		return set, res, err
	}

	preq := pipeline.Request{
		Domain:         pipeline.DomainInterviewQuestions,
		ContextText:    req.JobDescription,
		Format:         "interview_questions",
		Variant:        req.Variant,
		Prompt:         buildInterviewPrompt(req),
		Shape:          extract.JSONObject,
		CandidateCount: g.candidateCount,
		DisableJudging: g.disableJudging,
		Fallback:       fallback,
		ComparisonPrompt: func(candidates []pipeline.Candidate) string {
			return buildInterviewComparisonPrompt(candidates, req)
		},
	}

	res, err = g.orch.Run(ctx, preq)
	if err != nil {
		return set, res, err
	}

	err = decodeRecord(res.Value, &set)
	if err != nil {
		return set, res, errors.Wrap(err, "decoding interview questions")
	}

	return set, res, nil
}

func decodeRecord(v pipeline.Value, out any) (err error) {
	rec, ok := v.(pipeline.Record)
	if !ok {
		return errors.Errorf("unexpected value type %T, expected JSON record", v)
	}

	err = json.Unmarshal([]byte(rec), out)
	if err != nil {
		return errors.Wrap(err, "unmarshaling record")
	}

	return nil
}

func recordFallback(v any) (rec pipeline.Record, err error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "marshaling fallback record")
	}

	return pipeline.Record(raw), nil
}

// fallbackCoverLetter is the deterministic cover letter used when every
// generation attempt fails.
func fallbackCoverLetter(req CoverLetterRequest) (letter CoverLetterSections) {
	letter = CoverLetterSections{
		OpeningHook:         fmt.Sprintf("I am writing to express my strong interest in the %s position at %s.", req.Role, req.Company),
		ProfessionalSummary: "My background and experience align well with the requirements described in the job posting.",
		KeyAchievements:     []string{},
		SkillsHighlight:     []string{},
		Closing:             "Thank you for your time and consideration. I look forward to discussing how I can contribute to your team.",
	}

	return letter
}

// fallbackInterviewSet is the deterministic question set used when every
// generation attempt fails.
func fallbackInterviewSet() (set InterviewQuestionSet) {
	set = InterviewQuestionSet{
		JobAnalysis: JobAnalysis{
			RoleType:        "general",
			KeyTechnologies: []string{},
		},
		TechnicalQuestions: []InterviewQuestion{
			{Question: "Walk me through a technically challenging project you worked on recently.", Priority: "high"},
			{Question: "How do you approach debugging a problem you have never seen before?", Priority: "medium"},
		},
		BehavioralQuestions: []InterviewQuestion{
			{Question: "Tell me about a time you disagreed with a teammate and how you resolved it.", Priority: "high"},
			{Question: "Describe a situation where you had to deliver under a tight deadline.", Priority: "medium"},
		},
		PreparationTips: []string{
			"Review the job description and prepare examples from your experience for each listed requirement.",
			"Prepare questions to ask the interviewer about the team and the role.",
		},
	}

	return set
}
