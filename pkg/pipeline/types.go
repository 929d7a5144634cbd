package pipeline

import (
	"context"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/nikogura/resume-forge/pkg/extract"
)

// Domain identifies the kind of artifact a request generates. It participates
// in the cache key so artifacts of different kinds never collide.
type Domain string

const (
	// DomainResumeText is full-text resume tailoring.
	DomainResumeText Domain = "resume_text"
	// DomainResumeData is structured resume customization.
	DomainResumeData Domain = "resume_data"
	// DomainCoverLetter is cover letter section generation.
	DomainCoverLetter Domain = "cover_letter"
	// DomainInterviewQuestions is interview question set generation.
	DomainInterviewQuestions Domain = "interview_questions"
)

// CompletionFunc requests one completion from the model service. The service
// is treated as unreliable and non-deterministic: it may fail, and repeated
// calls with the same prompt produce different text.
type CompletionFunc func(ctx context.Context, prompt string) (response string, err error)

// Value is the extracted content of one generated candidate.
type Value interface {
	// RenderForComparison returns a bounded rendering of the value suitable
	// for embedding in a judge comparison prompt. A limit <= 0 means
	// unbounded.
	RenderForComparison(limit int) (rendered string)
}

// Text is a plain-text value such as a tailored resume body.
type Text string

// RenderForComparison returns the text, truncated to limit characters.
func (t Text) RenderForComparison(limit int) (rendered string) {
	rendered = string(t)
	if limit > 0 && len(rendered) > limit {
		rendered = rendered[:limit] + "\n... (truncated)"
	}
	return rendered
}

// Record is a structured value held as a raw JSON object.
type Record string

// RenderForComparison returns the JSON, truncated to limit characters.
func (r Record) RenderForComparison(limit int) (rendered string) {
	rendered = string(r)
	if limit > 0 && len(rendered) > limit {
		rendered = rendered[:limit] + "\n... (truncated)"
	}
	return rendered
}

// Field returns the raw JSON of a named top-level field.
func (r Record) Field(name string) (raw string, ok bool) {
	result := gjson.Get(string(r), name)
	if !result.Exists() {
		return raw, ok
	}
	raw = result.Raw
	ok = true
	return raw, ok
}

// WithField returns a copy of the record with the named field set to the
// given raw JSON value.
func (r Record) WithField(name, raw string) (updated Record, err error) {
	var result string
	result, err = sjson.SetRaw(string(r), name, raw)
	if err != nil {
		return updated, err
	}
	updated = Record(result)
	return updated, err
}

// Candidate is one successfully generated and extracted output for a task.
// Candidates live only for the duration of a single pipeline run.
type Candidate struct {
	// Raw is the unprocessed model response.
	Raw string
	// Value is the extracted payload.
	Value Value
}

// Source records which pipeline path produced a result.
type Source string

const (
	// SourceCacheHit means the value came straight from the content cache.
	SourceCacheHit Source = "cache_hit"
	// SourceSingleCandidate means exactly one attempt succeeded so no
	// judging took place.
	SourceSingleCandidate Source = "single_candidate"
	// SourceJudgeSelected means the judge picked one candidate wholesale.
	SourceJudgeSelected Source = "judge_selected"
	// SourceJudgeCombined means the judge assembled fields from several
	// candidates.
	SourceJudgeCombined Source = "judge_combined"
	// SourceJudgeFallbackFirst means judging failed and the first candidate
	// was used.
	SourceJudgeFallbackFirst Source = "judge_fallback_first"
	// SourceAllFailedFallback means every attempt failed and the caller's
	// fallback value was returned. Never cached.
	SourceAllFailedFallback Source = "all_failed_fallback"
)

// Request describes one artifact generation task. Requests are immutable per
// invocation.
type Request struct {
	// Domain tags the kind of artifact being generated.
	Domain Domain
	// ContextText is the free-text task context (typically the job
	// description). A bounded prefix of it feeds the cache key.
	ContextText string
	// Format is the requested output format, part of the cache key.
	Format string
	// Variant names the base document variant, part of the cache key.
	Variant string
	// Prompt is the generation prompt, identical for every attempt.
	Prompt string
	// ComparisonPrompt builds the judge prompt over the successful
	// candidates. Required when judging is enabled.
	ComparisonPrompt func(candidates []Candidate) (prompt string)
	// Shape is the payload shape candidates are extracted as.
	Shape extract.Shape
	// CandidateCount is the number of independent attempts. Defaults to 3.
	// Forced to 1 when DisableJudging is set.
	CandidateCount int
	// DisableJudging turns off multi-candidate generation and judging for
	// this request. The zero value judges.
	DisableJudging bool
	// Fallback is returned when every generation attempt fails.
	Fallback Value
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Value is the final artifact value.
	Value Value
	// Source names the path that produced the value.
	Source Source
	// Justification is the judge's reasoning, when judging ran.
	Justification string
}
