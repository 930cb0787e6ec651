// Package views holds the derived computations rendered by the dashboard.
// Every function is pure: inputs are never modified and the current time is passed in.
package views

import (
	"math"
	"sort"
	"time"

	"pcc/internal/domain"
)

// Risk level thresholds on the probability x impact score.
const (
	criticalScore = 15
	highScore     = 8
	mediumScore   = 4
)

// Stakeholder cut point applied to both influence and interest.
const quadrantThreshold = 4

// MilestoneProgress is the rounded percentage of completed tasks, 0 for an empty milestone.
func MilestoneProgress(m domain.Milestone) int {
	total := len(m.Tasks)
	if total == 0 {
		return 0
	}
	done := 0
	for _, t := range m.Tasks {
		if t.Status == domain.TaskCompleted {
			done++
		}
	}
	return roundRatio(100*done, total)
}

// ProjectProgress averages milestone progress; every milestone weighs the same
// regardless of how many tasks it holds.
func ProjectProgress(milestones []domain.Milestone) int {
	if len(milestones) == 0 {
		return 0
	}
	sum := 0
	for _, m := range milestones {
		sum += MilestoneProgress(m)
	}
	return roundRatio(sum, len(milestones))
}

// IsOverdue reports a task past its due date that is not completed. Blocked tasks count.
// Tasks without a parseable due date are never overdue.
func IsOverdue(t domain.Task, now time.Time) bool {
	if t.Status == domain.TaskCompleted {
		return false
	}
	due, ok := domain.ParseDate(t.DueDate)
	if !ok {
		return false
	}
	return due.Before(now)
}

// TimelineElapsed returns how much of [start, end] has passed, clamped to 0..100.
// A zero-length timeline reads 100 once reached. Unparseable bounds read 0.
func TimelineElapsed(start, end string, now time.Time) int {
	s, ok := domain.ParseDate(start)
	if !ok {
		return 0
	}
	e, ok := domain.ParseDate(end)
	if !ok {
		return 0
	}
	if s.Equal(e) {
		if now.Before(s) {
			return 0
		}
		return 100
	}
	if !now.After(s) {
		return 0
	}
	if !now.Before(e) {
		return 100
	}
	ratio := float64(now.Sub(s)) / float64(e.Sub(s))
	return int(math.Floor(100*ratio + 0.5))
}

func RiskScore(r domain.Risk) int {
	return r.Probability * r.Impact
}

// LevelFor maps a score to its fixed severity band.
func LevelFor(score int) domain.RiskLevel {
	switch {
	case score >= criticalScore:
		return domain.RiskLevelCritical
	case score >= highScore:
		return domain.RiskLevelHigh
	case score >= mediumScore:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelLow
	}
}

// TopRisks returns up to n open risks ordered by score, highest first; ties keep input order.
func TopRisks(risks []domain.Risk, n int) []domain.Risk {
	out := make([]domain.Risk, 0, len(risks))
	for _, r := range risks {
		if r.Status == domain.RiskOpen {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return RiskScore(out[i]) > RiskScore(out[j]) })
	return truncate(out, n)
}

// RiskRegister orders every risk for the register table: non-closed first, then by score.
func RiskRegister(risks []domain.Risk) []domain.Risk {
	out := append([]domain.Risk(nil), risks...)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].Status == domain.RiskClosed, out[j].Status == domain.RiskClosed
		if ci != cj {
			return cj
		}
		return RiskScore(out[i]) > RiskScore(out[j])
	})
	return out
}

// UpcomingTasks returns up to n open, not overdue tasks by ascending due date.
// Undated tasks sort after dated ones.
func UpcomingTasks(tasks []domain.Task, n int, now time.Time) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status != domain.TaskCompleted && !IsOverdue(t, now) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, oki := domain.ParseDate(out[i].DueDate)
		dj, okj := domain.ParseDate(out[j].DueDate)
		if oki != okj {
			return oki
		}
		return di.Before(dj)
	})
	return truncate(out, n)
}

// OverdueTasks keeps the input order.
func OverdueTasks(tasks []domain.Task, now time.Time) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if IsOverdue(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// AllTasks flattens tasks in milestone order.
func AllTasks(milestones []domain.Milestone) []domain.Task {
	var out []domain.Task
	for _, m := range milestones {
		out = append(out, m.Tasks...)
	}
	return out
}

// TaskCounts returns completed and total task counts across milestones.
func TaskCounts(milestones []domain.Milestone) (completed, total int) {
	for _, m := range milestones {
		for _, t := range m.Tasks {
			total++
			if t.Status == domain.TaskCompleted {
				completed++
			}
		}
	}
	return completed, total
}

func QuadrantFor(s domain.Stakeholder) domain.Quadrant {
	hi := s.Influence >= quadrantThreshold
	hs := s.Interest >= quadrantThreshold
	switch {
	case hi && hs:
		return domain.QuadrantManageClosely
	case hi:
		return domain.QuadrantKeepSatisfied
	case hs:
		return domain.QuadrantKeepInformed
	default:
		return domain.QuadrantMonitor
	}
}

// StakeholderQuadrants groups stakeholders; all four quadrants are present in the result.
func StakeholderQuadrants(stakeholders []domain.Stakeholder) map[domain.Quadrant][]domain.Stakeholder {
	out := make(map[domain.Quadrant][]domain.Stakeholder, len(domain.Quadrants))
	for _, q := range domain.Quadrants {
		out[q] = []domain.Stakeholder{}
	}
	for _, s := range stakeholders {
		q := QuadrantFor(s)
		out[q] = append(out[q], s)
	}
	return out
}

// Cell is a coordinate of the 5x5 risk matrix.
type Cell struct {
	Probability int
	Impact      int
}

// RiskMatrix buckets non-closed risks by exact coordinate. Empty cells are absent.
func RiskMatrix(risks []domain.Risk) map[Cell][]domain.Risk {
	out := map[Cell][]domain.Risk{}
	for _, r := range risks {
		if r.Status == domain.RiskClosed {
			continue
		}
		c := Cell{Probability: r.Probability, Impact: r.Impact}
		out[c] = append(out[c], r)
	}
	return out
}

// roundRatio rounds num/den half-up for non-negative operands.
func roundRatio(num, den int) int {
	return (2*num + den) / (2 * den)
}

func truncate[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// MatrixCell is one rendered cell of the 5x5 grid.
type MatrixCell struct {
	Probability int              `json:"probability"`
	Impact      int              `json:"impact"`
	Score       int              `json:"score"`
	Level       domain.RiskLevel `json:"level"`
	Risks       []domain.Risk    `json:"risks"`
}

// MatrixGrid lays out all 25 cells row by row, impact 5 down to 1 and
// probability 1 up to 5 within a row.
func MatrixGrid(risks []domain.Risk) []MatrixCell {
	buckets := RiskMatrix(risks)
	cells := make([]MatrixCell, 0, 25)
	for impact := 5; impact >= 1; impact-- {
		for prob := 1; prob <= 5; prob++ {
			rs := buckets[Cell{Probability: prob, Impact: impact}]
			if rs == nil {
				rs = []domain.Risk{}
			}
			score := prob * impact
			cells = append(cells, MatrixCell{Probability: prob, Impact: impact, Score: score, Level: LevelFor(score), Risks: rs})
		}
	}
	return cells
}
