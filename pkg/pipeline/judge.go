package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nikogura/resume-forge/pkg/extract"
)

// Decision is the parsed judge response. The comparison prompt contract is
// deliberately mixed-index: "selected" is 0-based while the "selection" map
// for combine actions uses 1-based candidate numbers ("version 1" in the
// prompt text). The conversion happens here, in one place.
type Decision struct {
	Selected      *int                          `json:"selected"`
	Action        string                        `json:"action"`
	Justification string                        `json:"justification"`
	Selection     map[string]int                `json:"selection"`
	Scores        map[string]map[string]float64 `json:"scores"`
}

// Verdict is the materialized outcome of one judging pass.
type Verdict struct {
	// Value is the winning (or combined, or fallback) candidate value.
	Value Value
	// Justification is a human-readable explanation of the outcome.
	Justification string
	// Combined reports whether the value was assembled from multiple
	// candidates.
	Combined bool
	// Fallback reports whether judging failed and the first candidate was
	// used.
	Fallback bool
}

// Judge runs a single comparison completion over a candidate set and parses
// the decision. Every failure mode degrades to the first candidate; Decide
// never returns an error and never panics on malformed judge output.
type Judge struct {
	complete CompletionFunc
	timeout  time.Duration
	logger   *slog.Logger
}

// NewJudge creates a judge. timeout applies to the comparison completion
// call.
func NewJudge(complete CompletionFunc, timeout time.Duration, logger *slog.Logger) (judge *Judge) {
	if logger == nil {
		logger = slog.Default()
	}

	judge = &Judge{
		complete: complete,
		timeout:  timeout,
		logger:   logger,
	}
	return judge
}

// Decide compares candidates and returns the winning value. Callers must not
// invoke Decide with zero candidates; the orchestrator handles that case
// before judging. A single candidate is returned immediately without a
// completion call.
func (j *Judge) Decide(ctx context.Context, candidates []Candidate, comparisonPrompt string) (verdict Verdict) {
	if len(candidates) == 0 {
		verdict = Verdict{
			Justification: "No versions to judge.",
			Fallback:      true,
		}
		return verdict
	}

	if len(candidates) == 1 {
		verdict = Verdict{
			Value:         candidates[0].Value,
			Justification: "Only one version available.",
		}
		return verdict
	}

	judgeCtx := ctx
	if j.timeout > 0 {
		var cancel context.CancelFunc
		judgeCtx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	response, callErr := j.complete(judgeCtx, comparisonPrompt)
	if callErr != nil {
		j.logger.Warn("judge completion failed", "error", callErr)
		verdict = j.firstCandidate(candidates, fmt.Sprintf("Judge evaluation failed: %v. Using first version.", callErr))
		return verdict
	}

	payload, extractErr := extract.Extract(response, extract.JSONObject)
	if extractErr != nil {
		j.logger.Warn("judge response contained no decision object", "error", extractErr)
		verdict = j.firstCandidate(candidates, fmt.Sprintf("Judge evaluation failed: %v. Using first version.", extractErr))
		return verdict
	}

	var decision Decision
	if unmarshalErr := json.Unmarshal([]byte(payload), &decision); unmarshalErr != nil {
		j.logger.Warn("judge decision did not decode", "error", unmarshalErr)
		verdict = j.firstCandidate(candidates, fmt.Sprintf("Judge evaluation failed: %v. Using first version.", unmarshalErr))
		return verdict
	}

	if decision.Action == "combine" {
		combined, ok := combineCandidates(candidates, decision.Selection)
		if ok {
			justification := decision.Justification
			if justification == "" {
				justification = "Combined best elements from multiple versions."
			}
			verdict = Verdict{
				Value:         combined,
				Justification: justification,
				Combined:      true,
			}
			return verdict
		}
		// Combine is only defined over record candidates with a non-empty
		// selection; anything else is an undecidable decision.
		verdict = j.firstCandidate(candidates, "Judge unable to decide. Using first version.")
		return verdict
	}

	if decision.Selected != nil {
		idx := *decision.Selected
		if idx >= 0 && idx < len(candidates) {
			justification := decision.Justification
			if justification == "" {
				justification = fmt.Sprintf("Selected version %d.", idx+1)
			}
			verdict = Verdict{
				Value:         candidates[idx].Value,
				Justification: justification,
			}
			return verdict
		}
		j.logger.Warn("judge selected index out of range", "selected", idx, "candidates", len(candidates))
	}

	verdict = j.firstCandidate(candidates, "Judge unable to decide. Using first version.")
	return verdict
}

// firstCandidate is the deterministic fallback for every judge failure mode.
func (j *Judge) firstCandidate(candidates []Candidate, justification string) (verdict Verdict) {
	verdict = Verdict{
		Value:         candidates[0].Value,
		Justification: justification,
		Fallback:      true,
	}
	return verdict
}

// combineCandidates assembles a record by taking each selected field from the
// named candidate. Selection indices are 1-based per the comparison prompt
// contract; an out-of-range index silently drops that field from the
// combined result. Only record candidates can be combined.
func combineCandidates(candidates []Candidate, selection map[string]int) (combined Record, ok bool) {
	if len(selection) == 0 {
		return combined, ok
	}

	records := make([]Record, len(candidates))
	for i, candidate := range candidates {
		record, isRecord := candidate.Value.(Record)
		if !isRecord {
			return combined, ok
		}
		records[i] = record
	}

	// Stable field order keeps combined output deterministic.
	fields := make([]string, 0, len(selection))
	for field := range selection {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	result := Record("{}")
	for _, field := range fields {
		idx := selection[field] - 1
		if idx < 0 || idx >= len(records) {
			continue
		}

		raw, exists := records[idx].Field(field)
		if !exists {
			continue
		}

		updated, setErr := result.WithField(field, raw)
		if setErr != nil {
			continue
		}
		result = updated
	}

	combined = result
	ok = true
	return combined, ok
}
