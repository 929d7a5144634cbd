// Package pipeline implements multi-candidate generation with judged
// selection. For each request it asks the completion service for several
// independent versions of the same artifact, tolerates per-attempt failure,
// has a second "judge" completion pick or combine the best result, memoizes
// the outcome by a content-derived key, and falls back deterministically
// when generation or judging fails.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultCandidateCount is the number of attempts when a request does
	// not specify one.
	DefaultCandidateCount = 3
	// DefaultMaxParallel bounds concurrent generation attempts.
	DefaultMaxParallel = 3
	// DefaultTimeout applies to each completion call.
	DefaultTimeout = 120 * time.Second
)

// Options configures an Orchestrator.
type Options struct {
	// MaxParallel bounds concurrent generation attempts. Defaults to
	// DefaultMaxParallel.
	MaxParallel int
	// Timeout applies to each completion call (attempt or judge). Defaults
	// to DefaultTimeout.
	Timeout time.Duration
	// Logger receives structured pipeline events. Defaults to slog.Default.
	Logger *slog.Logger
	// Cache is the content cache; supply one to share it across
	// orchestrators. Defaults to a fresh cache.
	Cache *Cache
	// JudgeComplete handles the comparison completion, letting judging run
	// against a different model than generation. Defaults to the generation
	// completion function.
	JudgeComplete CompletionFunc
}

// Orchestrator wires cache lookup, candidate generation, and judging into
// the end-to-end flow for one request. The cache is its only shared mutable
// state; Run is safe for concurrent use.
type Orchestrator struct {
	cache     *Cache
	generator *Generator
	judge     *Judge
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator backed by the given completion
// service.
func NewOrchestrator(complete CompletionFunc, opts Options) (orchestrator *Orchestrator) {
	if opts.MaxParallel < 1 {
		opts.MaxParallel = DefaultMaxParallel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cache == nil {
		opts.Cache = NewCache()
	}
	if opts.JudgeComplete == nil {
		opts.JudgeComplete = complete
	}

	orchestrator = &Orchestrator{
		cache:     opts.Cache,
		generator: NewGenerator(complete, opts.MaxParallel, opts.Timeout, opts.Logger),
		judge:     NewJudge(opts.JudgeComplete, opts.Timeout, opts.Logger),
		logger:    opts.Logger,
	}
	return orchestrator
}

// Cache returns the orchestrator's content cache.
func (o *Orchestrator) Cache() (cache *Cache) {
	cache = o.cache
	return cache
}

// Run executes the pipeline for one request: cache lookup, N generation
// attempts, zero/one/many candidate branching, judging, cache store. Run
// absorbs every per-attempt and judge failure; the only failure surfaced to
// the caller as a Result is total generation failure, reported via
// SourceAllFailedFallback with the request's fallback value. An error is
// returned only for a malformed request.
func (o *Orchestrator) Run(ctx context.Context, req Request) (result Result, err error) {
	err = validateRequest(req)
	if err != nil {
		err = errors.Wrap(err, "invalid generation request")
		return result, err
	}

	key := Key(req.ContextText, req.Domain, req.Format, req.Variant)

	// Identical requests after a prior successful run are pure cache hits.
	if cached, hit := o.cache.Get(key); hit {
		o.logger.Debug("content cache hit", "domain", req.Domain, "key", key)
		result = Result{Value: cached, Source: SourceCacheHit}
		return result, err
	}

	count := req.CandidateCount
	if count < 1 {
		count = DefaultCandidateCount
	}
	// Judging a single candidate is pointless, and generating several
	// without a judge is wasteful.
	if req.DisableJudging {
		count = 1
	}

	candidates := o.generator.Generate(ctx, req.Prompt, count, req.Shape)

	if len(candidates) == 0 {
		// Not cached: a transient outage must not poison future identical
		// requests.
		o.logger.Warn("all generation attempts failed", "domain", req.Domain, "attempts", count)
		result = Result{Value: req.Fallback, Source: SourceAllFailedFallback}
		return result, err
	}

	if len(candidates) == 1 {
		o.cache.Put(key, candidates[0].Value)
		result = Result{Value: candidates[0].Value, Source: SourceSingleCandidate}
		return result, err
	}

	verdict := o.judge.Decide(ctx, candidates, req.ComparisonPrompt(candidates))

	source := SourceJudgeSelected
	if verdict.Combined {
		source = SourceJudgeCombined
	}
	if verdict.Fallback {
		source = SourceJudgeFallbackFirst
	}

	o.logger.Debug("judge decided",
		"domain", req.Domain,
		"source", source,
		"justification", verdict.Justification)

	o.cache.Put(key, verdict.Value)

	result = Result{
		Value:         verdict.Value,
		Source:        source,
		Justification: verdict.Justification,
	}
	return result, err
}

// validateRequest checks the parts of a request the pipeline cannot default.
func validateRequest(req Request) (err error) {
	if req.Prompt == "" {
		err = errors.New("prompt is required")
		return err
	}

	if !req.DisableJudging && req.ComparisonPrompt == nil {
		err = errors.New("comparison prompt builder is required when judging is enabled")
		return err
	}

	return err
}
