package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/nikogura/resume-forge/pkg/extract"
)

func TestGenerateCollectsAllSuccesses(t *testing.T) {
	var calls atomic.Int32
	complete := func(ctx context.Context, prompt string) (response string, err error) {
		n := calls.Add(1)
		response = fmt.Sprintf("resume version %d", n)
		return response, err
	}

	generator := NewGenerator(complete, 1, 0, nil)
	candidates := generator.Generate(context.Background(), "tailor this resume", 3, extract.PlainText)

	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(candidates))
	}

	if calls.Load() != 3 {
		t.Errorf("Expected 3 completion calls, got %d", calls.Load())
	}

	// Sequential generation preserves call order as attempt order.
	for i, candidate := range candidates {
		expected := Text(fmt.Sprintf("resume version %d", i+1))
		if candidate.Value != expected {
			t.Errorf("Candidate %d: expected %q, got %q", i, expected, candidate.Value)
		}
	}
}

func TestGenerateSkipsFailedAttempts(t *testing.T) {
	var calls atomic.Int32
	complete := func(ctx context.Context, prompt string) (response string, err error) {
		n := calls.Load()
		calls.Add(1)
		if n == 1 {
			err = errors.New("rate limited")
			return response, err
		}
		response = fmt.Sprintf("version %d", n)
		return response, err
	}

	generator := NewGenerator(complete, 1, 0, nil)
	candidates := generator.Generate(context.Background(), "prompt", 3, extract.PlainText)

	// Attempt 1 failed but attempts 0 and 2 still ran and succeeded.
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}

	if calls.Load() != 3 {
		t.Errorf("Expected all 3 attempts to run, got %d", calls.Load())
	}

	if candidates[0].Value != Text("version 0") || candidates[1].Value != Text("version 2") {
		t.Errorf("Expected attempt order preserved without padding, got %v", candidates)
	}
}

func TestGenerateSkipsExtractionFailures(t *testing.T) {
	var calls atomic.Int32
	complete := func(ctx context.Context, prompt string) (response string, err error) {
		n := calls.Add(1)
		if n == 1 {
			// No JSON payload at all.
			response = "I cannot produce that."
			return response, err
		}
		response = fmt.Sprintf(`{"keywords": ["go"], "attempt": %d}`, n)
		return response, err
	}

	generator := NewGenerator(complete, 1, 0, nil)
	candidates := generator.Generate(context.Background(), "prompt", 3, extract.JSONObject)

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates after one extraction failure, got %d", len(candidates))
	}

	for _, candidate := range candidates {
		if _, isRecord := candidate.Value.(Record); !isRecord {
			t.Errorf("Expected Record value for JSON shape, got %T", candidate.Value)
		}
	}
}

func TestGenerateAllAttemptsFail(t *testing.T) {
	complete := func(ctx context.Context, prompt string) (response string, err error) {
		err = errors.New("service unavailable")
		return response, err
	}

	generator := NewGenerator(complete, 2, 0, nil)
	candidates := generator.Generate(context.Background(), "prompt", 3, extract.PlainText)

	if len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
}

func TestGenerateParallelAttempts(t *testing.T) {
	var calls atomic.Int32
	complete := func(ctx context.Context, prompt string) (response string, err error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		response = "version"
		return response, err
	}

	generator := NewGenerator(complete, 3, 0, nil)

	start := time.Now()
	candidates := generator.Generate(context.Background(), "prompt", 3, extract.PlainText)
	elapsed := time.Since(start)

	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(candidates))
	}

	// Three 10ms attempts at parallelism 3 should finish well under the
	// 30ms a sequential run would take.
	if elapsed > 25*time.Millisecond {
		t.Errorf("Expected parallel execution, took %v", elapsed)
	}
}

func TestGenerateAttemptTimeout(t *testing.T) {
	complete := func(ctx context.Context, prompt string) (response string, err error) {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return response, err
		case <-time.After(time.Second):
			response = "too late"
			return response, err
		}
	}

	generator := NewGenerator(complete, 1, 10*time.Millisecond, nil)
	candidates := generator.Generate(context.Background(), "prompt", 2, extract.PlainText)

	// Timed-out attempts are skipped like any other failure.
	if len(candidates) != 0 {
		t.Errorf("Expected timed-out attempts to yield no candidates, got %d", len(candidates))
	}
}
