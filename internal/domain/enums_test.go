package domain_test

import (
	"encoding/json"
	"testing"

	"pcc/internal/domain"
)

func TestTaskStatusCycleCloses(t *testing.T) {
	for _, start := range []domain.TaskStatus{domain.TaskNotStarted, domain.TaskInProgress, domain.TaskCompleted, domain.TaskBlocked} {
		s := start
		for i := 0; i < 4; i++ {
			s = s.Next()
		}
		if s != start {
			t.Fatalf("cycle from %s ended at %s", start, s)
		}
	}
	if got := domain.TaskCompleted.Next(); got != domain.TaskBlocked {
		t.Fatalf("completed.Next() = %s", got)
	}
}

func TestRiskStatusCycleCloses(t *testing.T) {
	for _, start := range []domain.RiskStatus{domain.RiskOpen, domain.RiskMitigated, domain.RiskClosed} {
		s := start
		for i := 0; i < 3; i++ {
			s = s.Next()
		}
		if s != start {
			t.Fatalf("cycle from %s ended at %s", start, s)
		}
	}
}

func TestEnumsRejectUnknownValues(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		into any
	}{
		{"health", `"amber"`, new(domain.HealthStatus)},
		{"task", `"done"`, new(domain.TaskStatus)},
		{"priority", `"urgent"`, new(domain.Priority)},
		{"risk", `"resolved"`, new(domain.RiskStatus)},
		{"empty", `""`, new(domain.TaskStatus)},
	}
	for _, c := range cases {
		if err := json.Unmarshal([]byte(c.raw), c.into); err == nil {
			t.Fatalf("%s: expected error for %s", c.name, c.raw)
		}
	}
	var h domain.HealthStatus
	if err := json.Unmarshal([]byte(`"yellow"`), &h); err != nil || h != domain.HealthYellow {
		t.Fatalf("yellow: %v %s", err, h)
	}
	if h.Label() != "At Risk" {
		t.Fatalf("label %s", h.Label())
	}
}

func TestParseDate(t *testing.T) {
	if _, ok := domain.ParseDate(""); ok {
		t.Fatalf("empty date parsed")
	}
	d, ok := domain.ParseDate("2024-03-05")
	if !ok || d.Day() != 5 {
		t.Fatalf("calendar date: %v %v", d, ok)
	}
	if _, ok := domain.ParseDate("2024-03-05T10:00:00Z"); !ok {
		t.Fatalf("rfc3339 not parsed")
	}
	if _, ok := domain.ParseDate("next week"); ok {
		t.Fatalf("garbage parsed")
	}
}
