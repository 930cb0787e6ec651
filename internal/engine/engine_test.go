package engine_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcc/internal/domain"
	"pcc/internal/engine"
)

func newTestEngine() engine.Engine {
	n := 0
	return engine.Engine{
		Now: func() time.Time { return time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func baseProject() domain.Project {
	return domain.Project{
		ID:           "proj-1",
		Name:         "Launch",
		HealthStatus: domain.HealthGreen,
		Milestones: []domain.Milestone{
			{ID: "m1", Name: "Discovery", Status: domain.TaskInProgress, Tasks: []domain.Task{
				{ID: "t1", Title: "Interview users", Status: domain.TaskNotStarted, Priority: domain.PriorityHigh, MilestoneID: "m1"},
			}},
			{ID: "m2", Name: "Build", Status: domain.TaskNotStarted},
		},
		Risks: []domain.Risk{
			{ID: "r1", Title: "Vendor delay", Probability: 3, Impact: 4, Status: domain.RiskOpen},
		},
		Decisions: []domain.Decision{
			{ID: "d0", Title: "Use Go", Date: "2023-12-01"},
		},
	}
}

func TestAddTask(t *testing.T) {
	e := newTestEngine()
	p := baseProject()
	next, err := e.AddTask(p, "m1", engine.TaskInput{Title: "  Draft brief ", Owner: "Ana", DueDate: "2024-02-01", EstimateHours: 4})
	require.NoError(t, err)
	require.Len(t, next.Milestones[0].Tasks, 2)
	added := next.Milestones[0].Tasks[1]
	assert.Equal(t, "id-1", added.ID)
	assert.Equal(t, "Draft brief", added.Title)
	assert.Equal(t, domain.TaskNotStarted, added.Status)
	assert.Equal(t, domain.PriorityMedium, added.Priority)
	assert.Equal(t, "m1", added.MilestoneID)

	// argument untouched
	assert.Len(t, p.Milestones[0].Tasks, 1)
	assert.Equal(t, p.Milestones[1], next.Milestones[1])
	assert.Equal(t, p.Risks, next.Risks)
}

func TestAddTaskPreconditions(t *testing.T) {
	e := newTestEngine()
	p := baseProject()

	_, err := e.AddTask(p, "m1", engine.TaskInput{Title: "   "})
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))

	_, err = e.AddTask(p, "missing", engine.TaskInput{Title: "x"})
	assert.True(t, errors.Is(err, engine.ErrNotFound))

	_, err = e.AddTask(p, "m1", engine.TaskInput{Title: "x", Priority: "urgent"})
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))

	_, err = e.AddTask(p, "m1", engine.TaskInput{Title: "x", DueDate: "tomorrow"})
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))

	_, err = e.AddTask(p, "m1", engine.TaskInput{Title: "x", EstimateHours: -1})
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))
}

func TestCycleTaskStatusClosesAfterFourSteps(t *testing.T) {
	e := newTestEngine()
	for _, start := range []domain.TaskStatus{domain.TaskNotStarted, domain.TaskInProgress, domain.TaskCompleted, domain.TaskBlocked} {
		p := baseProject()
		p.Milestones[0].Tasks[0].Status = start
		cur := p
		var err error
		var seen []domain.TaskStatus
		for i := 0; i < 4; i++ {
			cur, err = e.CycleTaskStatus(cur, "m1", "t1")
			require.NoError(t, err)
			seen = append(seen, cur.Milestones[0].Tasks[0].Status)
		}
		assert.Equal(t, start, seen[3])
		assert.Equal(t, start, p.Milestones[0].Tasks[0].Status, "argument mutated")
	}
	p, err := e.CycleTaskStatus(baseProject(), "m1", "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, p.Milestones[0].Tasks[0].Status)
}

func TestCycleTaskStatusNotFound(t *testing.T) {
	e := newTestEngine()
	p := baseProject()
	got, err := e.CycleTaskStatus(p, "m1", "nope")
	assert.True(t, errors.Is(err, engine.ErrNotFound))
	assert.Equal(t, p, got)
	_, err = e.CycleTaskStatus(p, "nope", "t1")
	assert.True(t, errors.Is(err, engine.ErrNotFound))
}

func TestAddRisk(t *testing.T) {
	e := newTestEngine()
	p := baseProject()
	next, err := e.AddRisk(p, engine.RiskInput{Title: "Budget cut", Probability: 5, Impact: 2, LinkedMilestoneID: "ghost"})
	require.NoError(t, err)
	require.Len(t, next.Risks, 2)
	r := next.Risks[1]
	assert.Equal(t, domain.RiskOpen, r.Status)
	assert.Equal(t, 5, r.Probability)
	assert.Equal(t, "ghost", r.LinkedMilestoneID)
	assert.Len(t, p.Risks, 1)

	next, err = e.AddRisk(p, engine.RiskInput{Title: "Defaults"})
	require.NoError(t, err)
	assert.Equal(t, 3, next.Risks[1].Probability)
	assert.Equal(t, 3, next.Risks[1].Impact)

	for _, bad := range []engine.RiskInput{
		{Title: ""},
		{Title: "x", Probability: 6},
		{Title: "x", Impact: -1},
	} {
		_, err := e.AddRisk(p, bad)
		assert.True(t, errors.Is(err, engine.ErrInvalidInput), "%+v", bad)
	}
}

func TestCycleRiskStatus(t *testing.T) {
	e := newTestEngine()
	p := baseProject()
	cur := p
	want := []domain.RiskStatus{domain.RiskMitigated, domain.RiskClosed, domain.RiskOpen}
	for _, w := range want {
		var err error
		cur, err = e.CycleRiskStatus(cur, "r1")
		require.NoError(t, err)
		assert.Equal(t, w, cur.Risks[0].Status)
	}
	assert.Equal(t, domain.RiskOpen, p.Risks[0].Status)
	_, err := e.CycleRiskStatus(p, "missing")
	assert.True(t, errors.Is(err, engine.ErrNotFound))
}

func TestAddStakeholder(t *testing.T) {
	e := newTestEngine()
	p := baseProject()
	next, err := e.AddStakeholder(p, engine.StakeholderInput{Name: "CFO", Influence: 5})
	require.NoError(t, err)
	require.Len(t, next.Stakeholders, 1)
	assert.Equal(t, 5, next.Stakeholders[0].Influence)
	assert.Equal(t, 3, next.Stakeholders[0].Interest)
	assert.Empty(t, p.Stakeholders)

	_, err = e.AddStakeholder(p, engine.StakeholderInput{Name: " "})
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))
	_, err = e.AddStakeholder(p, engine.StakeholderInput{Name: "x", Interest: 9})
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))
}

func TestAddDecisionPrepends(t *testing.T) {
	e := newTestEngine()
	p := baseProject()
	next, err := e.AddDecision(p, engine.DecisionInput{
		Title:   "Pick vendor",
		Options: "Vendor A\n\n  Vendor B  \n",
		Chosen:  "Vendor C",
	})
	require.NoError(t, err)
	require.Len(t, next.Decisions, len(p.Decisions)+1)
	d := next.Decisions[0]
	assert.Equal(t, "Pick vendor", d.Title)
	assert.Equal(t, []string{"Vendor A", "Vendor B"}, d.Options)
	assert.Equal(t, "Vendor C", d.Chosen)
	assert.Equal(t, "2024-01-01", d.Date)
	assert.Equal(t, "d0", next.Decisions[1].ID)
	assert.Equal(t, "d0", p.Decisions[0].ID)

	again, err := e.AddDecision(next, engine.DecisionInput{Title: "Second"})
	require.NoError(t, err)
	assert.Equal(t, "Second", again.Decisions[0].Title)
	assert.Len(t, again.Decisions, 3)
	assert.Empty(t, again.Decisions[0].Options)

	_, err = e.AddDecision(p, engine.DecisionInput{})
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))
}

func TestSetProjectHealth(t *testing.T) {
	e := newTestEngine()
	p := baseProject()
	next, err := e.SetProjectHealth(p, domain.HealthRed)
	require.NoError(t, err)
	assert.Equal(t, domain.HealthRed, next.HealthStatus)
	assert.Equal(t, domain.HealthGreen, p.HealthStatus)

	_, err = e.SetProjectHealth(p, "amber")
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))
}

func TestParseOptions(t *testing.T) {
	assert.Equal(t, []string{}, engine.ParseOptions(""))
	assert.Equal(t, []string{"a", "b"}, engine.ParseOptions("a\r\n\nb"))
}
