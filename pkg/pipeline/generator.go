package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikogura/resume-forge/pkg/extract"
)

// Generator issues independent completion attempts for a single prompt.
// Attempts share the same prompt; candidates differ only because the model
// is non-deterministic. A failed attempt is logged and skipped, never fatal
// to the batch.
type Generator struct {
	complete CompletionFunc
	parallel int
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGenerator creates a candidate generator. parallel bounds how many
// attempts run concurrently; timeout applies to each attempt individually.
func NewGenerator(complete CompletionFunc, parallel int, timeout time.Duration, logger *slog.Logger) (generator *Generator) {
	if parallel < 1 {
		parallel = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	generator = &Generator{
		complete: complete,
		parallel: parallel,
		timeout:  timeout,
		logger:   logger,
	}
	return generator
}

// Generate requests up to count completions and returns the successfully
// extracted candidates. The returned slice preserves attempt order - index
// positions reflect which attempt slot succeeded first, not completion
// arrival order - so judge index semantics stay deterministic. Failed
// attempts leave no placeholder.
func (g *Generator) Generate(ctx context.Context, prompt string, count int, shape extract.Shape) (candidates []Candidate) {
	if count < 1 {
		count = 1
	}

	slots := make([]*Candidate, count)

	group := &errgroup.Group{}
	group.SetLimit(g.parallel)

	for i := 0; i < count; i++ {
		i := i
		group.Go(func() (slotErr error) {
			attemptCtx := ctx
			if g.timeout > 0 {
				var cancel context.CancelFunc
				attemptCtx, cancel = context.WithTimeout(ctx, g.timeout)
				defer cancel()
			}

			response, callErr := g.complete(attemptCtx, prompt)
			if callErr != nil {
				g.logger.Warn("generation attempt failed",
					"attempt", i,
					"error", callErr)
				return slotErr
			}

			payload, extractErr := extract.Extract(response, shape)
			if extractErr != nil {
				g.logger.Warn("generation attempt produced no usable payload",
					"attempt", i,
					"error", extractErr)
				return slotErr
			}

			slots[i] = &Candidate{
				Raw:   response,
				Value: makeValue(payload, shape),
			}
			return slotErr
		})
	}

	// Attempts never report errors; failures are absorbed per slot.
	_ = group.Wait()

	for _, slot := range slots {
		if slot != nil {
			candidates = append(candidates, *slot)
		}
	}

	return candidates
}

// makeValue wraps an extracted payload in the value type for its shape.
func makeValue(payload string, shape extract.Shape) (value Value) {
	if shape == extract.JSONObject {
		value = Record(payload)
		return value
	}
	value = Text(payload)
	return value
}
