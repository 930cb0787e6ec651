package views

import (
	"time"

	"pcc/internal/domain"
)

// Limits caps the list sections of the dashboard.
type Limits struct {
	Upcoming int
	TopRisks int
}

// DefaultLimits matches the dashboard cards: five upcoming tasks, four top risks.
var DefaultLimits = Limits{Upcoming: 5, TopRisks: 4}

type MilestoneRow struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    domain.TaskStatus `json:"status"`
	Progress  int               `json:"progress"`
	TaskCount int               `json:"taskCount"`
}

type ScoredRisk struct {
	domain.Risk
	Score int              `json:"score"`
	Level domain.RiskLevel `json:"level"`
}

// Dashboard is the aggregate shown on the landing page.
type Dashboard struct {
	ProjectID      string              `json:"projectId"`
	Name           string              `json:"name"`
	Goal           string              `json:"goal"`
	Health         domain.HealthStatus `json:"healthStatus"`
	HealthLabel    string              `json:"healthLabel"`
	StartDate      string              `json:"startDate"`
	EndDate        string              `json:"endDate"`
	Timeline       int                 `json:"timelineElapsed"`
	Progress       int                 `json:"progress"`
	CompletedTasks int                 `json:"completedTasks"`
	TotalTasks     int                 `json:"totalTasks"`
	Metrics        []domain.Metric     `json:"metrics"`
	Milestones     []MilestoneRow      `json:"milestones"`
	TopRisks       []ScoredRisk        `json:"topRisks"`
	Overdue        []domain.Task       `json:"overdueTasks"`
	Upcoming       []domain.Task       `json:"upcomingTasks"`
}

// Score annotates a risk with its score and level.
func Score(r domain.Risk) ScoredRisk {
	s := RiskScore(r)
	return ScoredRisk{Risk: r, Score: s, Level: LevelFor(s)}
}

func BuildDashboard(p domain.Project, now time.Time, limits Limits) Dashboard {
	completed, total := TaskCounts(p.Milestones)
	tasks := AllTasks(p.Milestones)
	d := Dashboard{
		ProjectID:      p.ID,
		Name:           p.Name,
		Goal:           p.Goal,
		Health:         p.HealthStatus,
		HealthLabel:    p.HealthStatus.Label(),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Timeline:       TimelineElapsed(p.StartDate, p.EndDate, now),
		Progress:       ProjectProgress(p.Milestones),
		CompletedTasks: completed,
		TotalTasks:     total,
		Metrics:        append([]domain.Metric{}, p.Metrics...),
		Milestones:     make([]MilestoneRow, 0, len(p.Milestones)),
		TopRisks:       []ScoredRisk{},
		Overdue:        OverdueTasks(tasks, now),
		Upcoming:       UpcomingTasks(tasks, limits.Upcoming, now),
	}
	if d.Overdue == nil {
		d.Overdue = []domain.Task{}
	}
	for _, m := range p.Milestones {
		d.Milestones = append(d.Milestones, MilestoneRow{
			ID:        m.ID,
			Name:      m.Name,
			Status:    m.Status,
			Progress:  MilestoneProgress(m),
			TaskCount: len(m.Tasks),
		})
	}
	for _, r := range TopRisks(p.Risks, limits.TopRisks) {
		d.TopRisks = append(d.TopRisks, Score(r))
	}
	return d
}
