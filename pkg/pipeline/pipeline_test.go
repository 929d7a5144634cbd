package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"

	"github.com/nikogura/resume-forge/pkg/extract"
)

// completionScript fakes the completion service for orchestrator tests. It
// tells generation calls from judge calls by a marker the comparison prompt
// builder embeds.
type completionScript struct {
	mu            sync.Mutex
	genCalls      int
	judgeCalls    int
	genResponses  []string
	genErr        error
	judgeResponse string
	judgeErr      error
}

const judgeMarker = "JUDGE COMPARISON"

func (s *completionScript) complete(ctx context.Context, prompt string) (response string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.Contains(prompt, judgeMarker) {
		s.judgeCalls++
		response = s.judgeResponse
		err = s.judgeErr
		return response, err
	}

	if s.genErr != nil {
		s.genCalls++
		err = s.genErr
		return response, err
	}

	response = s.genResponses[s.genCalls%len(s.genResponses)]
	s.genCalls++
	return response, err
}

func (s *completionScript) totalCalls() (total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total = s.genCalls + s.judgeCalls
	return total
}

func comparisonBuilder(candidates []Candidate) (prompt string) {
	var builder strings.Builder
	builder.WriteString(judgeMarker + "\n")
	for i, candidate := range candidates {
		fmt.Fprintf(&builder, "--- Version %d ---\n%s\n", i+1, candidate.Value.RenderForComparison(1500))
	}
	prompt = builder.String()
	return prompt
}

func coverLetterRequest() (req Request) {
	req = Request{
		Domain:           DomainCoverLetter,
		ContextText:      "Senior platform engineer at Acme Corp",
		Format:           "md",
		Variant:          "default",
		Prompt:           "Write a cover letter",
		ComparisonPrompt: comparisonBuilder,
		Shape:            extract.PlainText,
		CandidateCount:   3,
		Fallback:         Text("base cover letter"),
	}
	return req
}

func TestRunEndToEndJudgeSelected(t *testing.T) {
	// MaxParallel 1 keeps generation responses aligned with attempt slots.
	script := &completionScript{
		genResponses:  []string{"A", "B", "C"},
		judgeResponse: `{"selected": 2, "justification": "C is most specific"}`,
	}
	orchestrator := NewOrchestrator(script.complete, Options{MaxParallel: 1})

	result, err := orchestrator.Run(context.Background(), coverLetterRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Value != Text("C") {
		t.Errorf("Expected candidate C, got %v", result.Value)
	}

	if result.Source != SourceJudgeSelected {
		t.Errorf("Expected judge_selected source, got %s", result.Source)
	}

	if result.Justification != "C is most specific" {
		t.Errorf("Unexpected justification: %q", result.Justification)
	}

	if script.genCalls != 3 || script.judgeCalls != 1 {
		t.Errorf("Expected 3 generation + 1 judge call, got %d + %d", script.genCalls, script.judgeCalls)
	}

	// A second identical request is a pure cache hit.
	before := script.totalCalls()

	second, err := orchestrator.Run(context.Background(), coverLetterRequest())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if second.Value != Text("C") {
		t.Errorf("Expected cached C, got %v", second.Value)
	}

	if second.Source != SourceCacheHit {
		t.Errorf("Expected cache_hit source, got %s", second.Source)
	}

	if script.totalCalls() != before {
		t.Errorf("Expected zero further completion calls, got %d", script.totalCalls()-before)
	}
}

func TestRunCacheIdempotenceWithSingleCandidate(t *testing.T) {
	script := &completionScript{genResponses: []string{"only result"}}
	orchestrator := NewOrchestrator(script.complete, Options{MaxParallel: 1})

	req := coverLetterRequest()
	req.DisableJudging = true

	first, err := orchestrator.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	second, err := orchestrator.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	// Exactly one completion call total across both runs.
	if script.totalCalls() != 1 {
		t.Errorf("Expected exactly 1 completion call total, got %d", script.totalCalls())
	}

	if first.Value != second.Value {
		t.Errorf("Expected equal values, got %v and %v", first.Value, second.Value)
	}

	if second.Source != SourceCacheHit {
		t.Errorf("Expected cache_hit, got %s", second.Source)
	}
}

func TestRunJudgingDisabledForcesSingleAttempt(t *testing.T) {
	script := &completionScript{genResponses: []string{"solo"}}
	orchestrator := NewOrchestrator(script.complete, Options{MaxParallel: 1})

	req := coverLetterRequest()
	req.DisableJudging = true
	req.CandidateCount = 5

	result, err := orchestrator.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if script.genCalls != 1 {
		t.Errorf("Expected judging disabled to force 1 attempt, got %d", script.genCalls)
	}

	if result.Source != SourceSingleCandidate {
		t.Errorf("Expected single_candidate source, got %s", result.Source)
	}
}

func TestRunZeroValueRequestJudges(t *testing.T) {
	// A request that says nothing about judging gets the full
	// multi-candidate judged flow.
	script := &completionScript{
		genResponses:  []string{"A", "B", "C"},
		judgeResponse: `{"selected": 0, "justification": "A works"}`,
	}
	orchestrator := NewOrchestrator(script.complete, Options{MaxParallel: 1})

	req := Request{
		Domain:           DomainResumeText,
		ContextText:      "some role",
		Prompt:           "Tailor the resume",
		ComparisonPrompt: comparisonBuilder,
		Shape:            extract.PlainText,
		Fallback:         Text("base"),
	}

	result, err := orchestrator.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if script.genCalls != DefaultCandidateCount {
		t.Errorf("Expected %d generation attempts by default, got %d", DefaultCandidateCount, script.genCalls)
	}

	if script.judgeCalls != 1 {
		t.Errorf("Expected judging to run by default, got %d judge calls", script.judgeCalls)
	}

	if result.Source != SourceJudgeSelected {
		t.Errorf("Expected judge_selected source, got %s", result.Source)
	}
}

func TestRunJudgeUsesJudgeCompletion(t *testing.T) {
	// Generation and judging can run against different completion services.
	genScript := &completionScript{genResponses: []string{"A", "B", "C"}}

	var judgeCalls int
	var mu sync.Mutex
	judgeComplete := func(ctx context.Context, prompt string) (response string, err error) {
		mu.Lock()
		defer mu.Unlock()
		judgeCalls++
		response = `{"selected": 1, "justification": "B reads best"}`
		return response, err
	}

	orchestrator := NewOrchestrator(genScript.complete, Options{
		MaxParallel:   1,
		JudgeComplete: judgeComplete,
	})

	result, err := orchestrator.Run(context.Background(), coverLetterRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Value != Text("B") {
		t.Errorf("Expected candidate B from the judge service, got %v", result.Value)
	}

	if judgeCalls != 1 {
		t.Errorf("Expected 1 call to the judge completion, got %d", judgeCalls)
	}

	if genScript.judgeCalls != 0 {
		t.Errorf("Expected no judge traffic on the generation completion, got %d", genScript.judgeCalls)
	}

	if genScript.genCalls != 3 {
		t.Errorf("Expected 3 generation calls, got %d", genScript.genCalls)
	}
}

func TestRunSingleSuccessSkipsJudge(t *testing.T) {
	// Two attempts fail, one succeeds: no judge call, result cached.
	var attempt int
	var mu sync.Mutex
	complete := func(ctx context.Context, prompt string) (response string, err error) {
		if strings.Contains(prompt, judgeMarker) {
			t.Error("Judge must not be called with one candidate")
			return response, err
		}
		mu.Lock()
		defer mu.Unlock()
		attempt++
		if attempt != 2 {
			err = errors.New("overloaded")
			return response, err
		}
		response = "the survivor"
		return response, err
	}

	orchestrator := NewOrchestrator(complete, Options{MaxParallel: 1})

	result, err := orchestrator.Run(context.Background(), coverLetterRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Value != Text("the survivor") {
		t.Errorf("Expected surviving candidate, got %v", result.Value)
	}

	if result.Source != SourceSingleCandidate {
		t.Errorf("Expected single_candidate source, got %s", result.Source)
	}

	if orchestrator.Cache().Len() != 1 {
		t.Error("Expected single-candidate result to be cached")
	}
}

func TestRunTotalFailureReturnsFallbackUncached(t *testing.T) {
	script := &completionScript{genErr: errors.New("service down")}
	orchestrator := NewOrchestrator(script.complete, Options{MaxParallel: 1})

	result, err := orchestrator.Run(context.Background(), coverLetterRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Source != SourceAllFailedFallback {
		t.Errorf("Expected all_failed_fallback source, got %s", result.Source)
	}

	if result.Value != Text("base cover letter") {
		t.Errorf("Expected the caller's fallback value, got %v", result.Value)
	}

	if orchestrator.Cache().Len() != 0 {
		t.Error("Fallback results must not be cached")
	}

	// A retry with the same key performs fresh attempts, not a cache hit.
	script.genErr = nil
	script.genResponses = []string{"recovered"}

	retry, err := orchestrator.Run(context.Background(), coverLetterRequest())
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}

	if retry.Source == SourceCacheHit {
		t.Error("Expected fresh generation after a failed run, got cache hit")
	}

	if retry.Value == Text("base cover letter") {
		t.Error("Expected regenerated content, got the fallback")
	}
}

func TestRunJudgeFailureFallsBackToFirstAndCaches(t *testing.T) {
	script := &completionScript{
		genResponses: []string{"A", "B", "C"},
		judgeErr:     errors.New("judge timeout"),
	}
	orchestrator := NewOrchestrator(script.complete, Options{MaxParallel: 1})

	result, err := orchestrator.Run(context.Background(), coverLetterRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Value != Text("A") {
		t.Errorf("Expected first candidate on judge failure, got %v", result.Value)
	}

	if result.Source != SourceJudgeFallbackFirst {
		t.Errorf("Expected judge_fallback_first source, got %s", result.Source)
	}

	if !strings.Contains(result.Justification, "failed") {
		t.Errorf("Expected justification naming the failure, got %q", result.Justification)
	}

	// The fallback-to-first outcome is still a judged result and is cached.
	if orchestrator.Cache().Len() != 1 {
		t.Error("Expected judged fallback result to be cached")
	}
}

func TestRunJudgeCombine(t *testing.T) {
	script := &completionScript{
		genResponses: []string{
			`{"opening_hook": "hook A", "professional_summary": "summary A"}`,
			`{"opening_hook": "hook B", "professional_summary": "summary B"}`,
		},
		judgeResponse: `{"action": "combine", "selection": {"opening_hook": 2, "professional_summary": 1}}`,
	}
	orchestrator := NewOrchestrator(script.complete, Options{MaxParallel: 1})

	req := coverLetterRequest()
	req.Shape = extract.JSONObject
	req.CandidateCount = 2
	req.Fallback = Record("{}")

	result, err := orchestrator.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Source != SourceJudgeCombined {
		t.Fatalf("Expected judge_combined source, got %s", result.Source)
	}

	record, isRecord := result.Value.(Record)
	if !isRecord {
		t.Fatalf("Expected Record result, got %T", result.Value)
	}

	hook, _ := record.Field("opening_hook")
	summary, _ := record.Field("professional_summary")
	if hook != `"hook B"` || summary != `"summary A"` {
		t.Errorf("Expected combined fields {hook B, summary A}, got %s / %s", hook, summary)
	}
}

func TestRunSharedCacheAcrossOrchestrators(t *testing.T) {
	cache := NewCache()

	script := &completionScript{genResponses: []string{"shared result"}}
	first := NewOrchestrator(script.complete, Options{MaxParallel: 1, Cache: cache})

	req := coverLetterRequest()
	req.DisableJudging = true

	if _, err := first.Run(context.Background(), req); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	second := NewOrchestrator(script.complete, Options{MaxParallel: 1, Cache: cache})

	result, err := second.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Source != SourceCacheHit {
		t.Errorf("Expected cache hit through shared cache, got %s", result.Source)
	}
}

func TestRunInvalidRequests(t *testing.T) {
	orchestrator := NewOrchestrator(func(ctx context.Context, prompt string) (string, error) {
		return "", nil
	}, Options{})

	tests := []struct {
		name   string
		mutate func(req *Request)
	}{
		{
			name:   "missing prompt",
			mutate: func(req *Request) { req.Prompt = "" },
		},
		{
			name:   "judging without comparison builder",
			mutate: func(req *Request) { req.ComparisonPrompt = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := coverLetterRequest()
			tt.mutate(&req)

			_, err := orchestrator.Run(context.Background(), req)
			if err == nil {
				t.Error("Expected error for invalid request, got nil")
			}
		})
	}
}
