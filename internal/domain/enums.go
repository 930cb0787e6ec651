package domain

import "fmt"

// HealthStatus is the RAG indicator shared by projects and metrics.
type HealthStatus string

const (
	HealthGreen  HealthStatus = "green"
	HealthYellow HealthStatus = "yellow"
	HealthRed    HealthStatus = "red"
)

var healthLabels = map[HealthStatus]string{
	HealthGreen:  "On Track",
	HealthYellow: "At Risk",
	HealthRed:    "Off Track",
}

func (h HealthStatus) Valid() bool {
	_, ok := healthLabels[h]
	return ok
}

// Label is the human readable form (On Track, At Risk, Off Track).
func (h HealthStatus) Label() string {
	if l, ok := healthLabels[h]; ok {
		return l
	}
	return string(h)
}

func (h *HealthStatus) UnmarshalText(b []byte) error {
	v := HealthStatus(b)
	if !v.Valid() {
		return fmt.Errorf("invalid health status %q", string(b))
	}
	*h = v
	return nil
}

// TaskStatus is used for both tasks and milestones.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not-started"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskBlocked    TaskStatus = "blocked"
)

var taskCycle = []TaskStatus{TaskNotStarted, TaskInProgress, TaskCompleted, TaskBlocked}

func (s TaskStatus) Valid() bool {
	return indexOf(taskCycle, s) >= 0
}

// Next advances along not-started -> in-progress -> completed -> blocked -> not-started.
// An unknown status restarts the cycle at not-started.
func (s TaskStatus) Next() TaskStatus {
	return taskCycle[(indexOf(taskCycle, s)+1)%len(taskCycle)]
}

func (s *TaskStatus) UnmarshalText(b []byte) error {
	v := TaskStatus(b)
	if !v.Valid() {
		return fmt.Errorf("invalid task status %q", string(b))
	}
	*s = v
	return nil
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func (p *Priority) UnmarshalText(b []byte) error {
	v := Priority(b)
	if !v.Valid() {
		return fmt.Errorf("invalid priority %q", string(b))
	}
	*p = v
	return nil
}

type RiskStatus string

const (
	RiskOpen      RiskStatus = "open"
	RiskMitigated RiskStatus = "mitigated"
	RiskClosed    RiskStatus = "closed"
)

var riskCycle = []RiskStatus{RiskOpen, RiskMitigated, RiskClosed}

func (s RiskStatus) Valid() bool {
	return indexOf(riskCycle, s) >= 0
}

// Next advances along open -> mitigated -> closed -> open.
func (s RiskStatus) Next() RiskStatus {
	return riskCycle[(indexOf(riskCycle, s)+1)%len(riskCycle)]
}

func (s *RiskStatus) UnmarshalText(b []byte) error {
	v := RiskStatus(b)
	if !v.Valid() {
		return fmt.Errorf("invalid risk status %q", string(b))
	}
	*s = v
	return nil
}

// RiskLevel is derived from a risk score; it is never persisted.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// Quadrant is the stakeholder influence/interest bucket.
type Quadrant string

const (
	QuadrantManageClosely Quadrant = "Manage Closely"
	QuadrantKeepSatisfied Quadrant = "Keep Satisfied"
	QuadrantKeepInformed  Quadrant = "Keep Informed"
	QuadrantMonitor       Quadrant = "Monitor"
)

// Quadrants lists every quadrant in display order.
var Quadrants = []Quadrant{QuadrantManageClosely, QuadrantKeepSatisfied, QuadrantKeepInformed, QuadrantMonitor}

func indexOf[T comparable](items []T, v T) int {
	for i, it := range items {
		if it == v {
			return i
		}
	}
	return -1
}
