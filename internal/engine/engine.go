package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pcc/internal/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Default applied when a probability, impact, influence or interest is left at zero.
const defaultRating = 3

// Engine applies copy-on-write mutations to project snapshots. The argument
// snapshot is never modified; unchanged branches are shared with the result.
type Engine struct {
	Now   func() time.Time
	NewID func() string
}

func New() Engine {
	return Engine{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

// TaskInput carries user supplied task fields. Status is always not-started on creation.
type TaskInput struct {
	Title         string
	Owner         string
	Priority      domain.Priority
	DueDate       string
	EstimateHours float64
}

func (e Engine) AddTask(p domain.Project, milestoneID string, in TaskInput) (domain.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return p, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return p, fmt.Errorf("%w: priority %q", ErrInvalidInput, in.Priority)
	}
	if in.EstimateHours < 0 {
		return p, fmt.Errorf("%w: estimate must not be negative", ErrInvalidInput)
	}
	if err := checkDate("due date", in.DueDate); err != nil {
		return p, err
	}
	mi := p.FindMilestone(milestoneID)
	if mi < 0 {
		return p, fmt.Errorf("%w: milestone %s", ErrNotFound, milestoneID)
	}
	m := p.Milestones[mi]
	t := domain.Task{
		ID:            e.newID(),
		Title:         title,
		Owner:         strings.TrimSpace(in.Owner),
		Priority:      priority,
		Status:        domain.TaskNotStarted,
		DueDate:       strings.TrimSpace(in.DueDate),
		EstimateHours: in.EstimateHours,
		MilestoneID:   m.ID,
	}
	m.Tasks = appendCopy(m.Tasks, t)
	p.Milestones = replaceAt(p.Milestones, mi, m)
	return p, nil
}

// CycleTaskStatus moves a task one step along not-started -> in-progress -> completed -> blocked.
func (e Engine) CycleTaskStatus(p domain.Project, milestoneID, taskID string) (domain.Project, error) {
	mi := p.FindMilestone(milestoneID)
	if mi < 0 {
		return p, fmt.Errorf("%w: milestone %s", ErrNotFound, milestoneID)
	}
	m := p.Milestones[mi]
	ti := m.FindTask(taskID)
	if ti < 0 {
		return p, fmt.Errorf("%w: task %s in milestone %s", ErrNotFound, taskID, milestoneID)
	}
	t := m.Tasks[ti]
	t.Status = t.Status.Next()
	m.Tasks = replaceAt(m.Tasks, ti, t)
	p.Milestones = replaceAt(p.Milestones, mi, m)
	return p, nil
}

type RiskInput struct {
	Title             string
	Description       string
	Probability       int
	Impact            int
	Owner             string
	MitigationPlan    string
	ReviewDate        string
	LinkedMilestoneID string
}

// AddRisk appends an open risk. Zero probability or impact defaults to 3;
// other values outside 1..5 are rejected. The linked milestone is not checked.
func (e Engine) AddRisk(p domain.Project, in RiskInput) (domain.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return p, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	prob, err := rating("probability", in.Probability)
	if err != nil {
		return p, err
	}
	impact, err := rating("impact", in.Impact)
	if err != nil {
		return p, err
	}
	if err := checkDate("review date", in.ReviewDate); err != nil {
		return p, err
	}
	r := domain.Risk{
		ID:                e.newID(),
		Title:             title,
		Description:       in.Description,
		Probability:       prob,
		Impact:            impact,
		Owner:             strings.TrimSpace(in.Owner),
		MitigationPlan:    in.MitigationPlan,
		Status:            domain.RiskOpen,
		ReviewDate:        strings.TrimSpace(in.ReviewDate),
		LinkedMilestoneID: strings.TrimSpace(in.LinkedMilestoneID),
	}
	p.Risks = appendCopy(p.Risks, r)
	return p, nil
}

// CycleRiskStatus moves a risk along open -> mitigated -> closed -> open.
func (e Engine) CycleRiskStatus(p domain.Project, riskID string) (domain.Project, error) {
	ri := p.FindRisk(riskID)
	if ri < 0 {
		return p, fmt.Errorf("%w: risk %s", ErrNotFound, riskID)
	}
	r := p.Risks[ri]
	r.Status = r.Status.Next()
	p.Risks = replaceAt(p.Risks, ri, r)
	return p, nil
}

type StakeholderInput struct {
	Name                 string
	Role                 string
	Influence            int
	Interest             int
	Expectations         string
	CommunicationCadence string
	Notes                string
}

func (e Engine) AddStakeholder(p domain.Project, in StakeholderInput) (domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return p, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	influence, err := rating("influence", in.Influence)
	if err != nil {
		return p, err
	}
	interest, err := rating("interest", in.Interest)
	if err != nil {
		return p, err
	}
	s := domain.Stakeholder{
		ID:                   e.newID(),
		Name:                 name,
		Role:                 strings.TrimSpace(in.Role),
		Influence:            influence,
		Interest:             interest,
		Expectations:         in.Expectations,
		CommunicationCadence: in.CommunicationCadence,
		Notes:                in.Notes,
	}
	p.Stakeholders = appendCopy(p.Stakeholders, s)
	return p, nil
}

// DecisionInput.Options is the raw newline separated block entered by the user.
type DecisionInput struct {
	Title     string
	Context   string
	Options   string
	Chosen    string
	Rationale string
	Impact    string
	MadeBy    string
}

// AddDecision records a decision dated today and places it first in the log.
func (e Engine) AddDecision(p domain.Project, in DecisionInput) (domain.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return p, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	d := domain.Decision{
		ID:        e.newID(),
		Date:      domain.FormatDate(e.now()),
		Title:     title,
		Context:   in.Context,
		Options:   ParseOptions(in.Options),
		Chosen:    strings.TrimSpace(in.Chosen),
		Rationale: in.Rationale,
		Impact:    in.Impact,
		MadeBy:    strings.TrimSpace(in.MadeBy),
	}
	decisions := make([]domain.Decision, 0, len(p.Decisions)+1)
	decisions = append(decisions, d)
	p.Decisions = append(decisions, p.Decisions...)
	return p, nil
}

func (e Engine) SetProjectHealth(p domain.Project, status domain.HealthStatus) (domain.Project, error) {
	if !status.Valid() {
		return p, fmt.Errorf("%w: health status %q", ErrInvalidInput, status)
	}
	p.HealthStatus = status
	return p, nil
}

// ParseOptions splits a newline separated block, dropping blank lines.
func ParseOptions(block string) []string {
	out := []string{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func rating(field string, v int) (int, error) {
	if v == 0 {
		return defaultRating, nil
	}
	if v < 1 || v > 5 {
		return 0, fmt.Errorf("%w: %s must be between 1 and 5, got %d", ErrInvalidInput, field, v)
	}
	return v, nil
}

func checkDate(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	if _, ok := domain.ParseDate(v); !ok {
		return fmt.Errorf("%w: %s %q is not a date", ErrInvalidInput, field, v)
	}
	return nil
}

// appendCopy returns a new slice so the caller's backing array is never written.
func appendCopy[T any](items []T, v T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, v)
}

func replaceAt[T any](items []T, i int, v T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = v
	return out
}
