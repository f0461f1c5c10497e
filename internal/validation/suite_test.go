package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/MRamiBalles/epicurves/internal/platform/logger"
)

func TestDefaultChecksPass(t *testing.T) {
	s := NewSuite(logger.NewNop())
	results := s.Run(context.Background())
	if len(results) != len(DefaultChecks()) {
		t.Fatalf("Expected %d results, got %d", len(DefaultChecks()), len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("Scenario %s failed: %s (actual %s)", r.ScenarioName, r.Reason, r.Actual)
		}
	}
}

func TestFailingCheckIsReported(t *testing.T) {
	s := NewSuite(logger.NewNop(),
		Check{Name: "ok", Run: func(context.Context) (string, error) { return "fine", nil }},
		Check{Name: "broken", Run: func(context.Context) (string, error) { return "42", errors.New("want 41") }},
	)
	s.Run(context.Background())

	passed, failed := s.Summary()
	if passed != 1 || failed != 1 {
		t.Fatalf("Expected 1 passed and 1 failed, got %d and %d", passed, failed)
	}
	r := s.GetResults()[1]
	if r.ScenarioName != "broken" || r.Passed || r.Reason != "want 41" || r.Actual != "42" {
		t.Errorf("Unexpected result %+v", r)
	}
}

func TestCancelledContextRunsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := NewSuite(logger.NewNop()).Run(ctx); len(got) != 0 {
		t.Errorf("Expected no results, got %d", len(got))
	}
}
