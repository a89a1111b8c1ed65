package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTurn("anchor", "high", 0.99)
	m.ObserveTurn("anchor", "high", 0.99)
	m.ObserveTurn("classifier", "medium", 0.5)
	m.LearningWrite(true)
	m.LearningWrite(false)
	m.LearningWrite(false)
	m.CollaboratorFailure("policy")

	if got := testutil.ToFloat64(m.turns.WithLabelValues("anchor", "high")); got != 2 {
		t.Errorf("expected 2 anchor turns, got %v", got)
	}
	if got := testutil.ToFloat64(m.learningWrites.WithLabelValues("false")); got != 2 {
		t.Errorf("expected 2 failed writes, got %v", got)
	}
	if got := testutil.ToFloat64(m.collaboratorFailures.WithLabelValues("policy")); got != 1 {
		t.Errorf("expected 1 policy failure, got %v", got)
	}
	if got := testutil.CollectAndCount(m.confidence); got != 2 {
		t.Errorf("expected 2 confidence series, got %d", got)
	}
}

func TestNewPanicsOnDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	New(reg)
}
