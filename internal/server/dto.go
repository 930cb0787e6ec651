package server

import (
	"strings"

	"pcc/internal/domain"
	"pcc/internal/engine"
	"pcc/internal/views"
)

// Request payloads

type SetHealthRequest struct {
	Status string `json:"status" enum:"green,yellow,red"`
}

type CreateTaskRequest struct {
	Title         string  `json:"title"`
	Owner         string  `json:"owner,omitempty"`
	Priority      string  `json:"priority,omitempty" enum:"low,medium,high,critical"`
	DueDate       string  `json:"dueDate,omitempty" example:"2024-07-01"`
	EstimateHours float64 `json:"estimateHours,omitempty" minimum:"0"`
}

func (r CreateTaskRequest) input() engine.TaskInput {
	return engine.TaskInput{
		Title:         r.Title,
		Owner:         r.Owner,
		Priority:      domain.Priority(r.Priority),
		DueDate:       r.DueDate,
		EstimateHours: r.EstimateHours,
	}
}

type CreateRiskRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	Probability       int    `json:"probability,omitempty" minimum:"0" maximum:"5" doc:"1..5, 0 or omitted defaults to 3"`
	Impact            int    `json:"impact,omitempty" minimum:"0" maximum:"5" doc:"1..5, 0 or omitted defaults to 3"`
	Owner             string `json:"owner,omitempty"`
	MitigationPlan    string `json:"mitigationPlan,omitempty"`
	ReviewDate        string `json:"reviewDate,omitempty" example:"2024-07-01"`
	LinkedMilestoneID string `json:"linkedMilestoneId,omitempty"`
}

func (r CreateRiskRequest) input() engine.RiskInput {
	return engine.RiskInput{
		Title:             r.Title,
		Description:       r.Description,
		Probability:       r.Probability,
		Impact:            r.Impact,
		Owner:             r.Owner,
		MitigationPlan:    r.MitigationPlan,
		ReviewDate:        r.ReviewDate,
		LinkedMilestoneID: r.LinkedMilestoneID,
	}
}

type CreateStakeholderRequest struct {
	Name                 string `json:"name"`
	Role                 string `json:"role,omitempty"`
	Influence            int    `json:"influence,omitempty" minimum:"0" maximum:"5"`
	Interest             int    `json:"interest,omitempty" minimum:"0" maximum:"5"`
	Expectations         string `json:"expectations,omitempty"`
	CommunicationCadence string `json:"communicationCadence,omitempty"`
	Notes                string `json:"notes,omitempty"`
}

func (r CreateStakeholderRequest) input() engine.StakeholderInput {
	return engine.StakeholderInput{
		Name:                 r.Name,
		Role:                 r.Role,
		Influence:            r.Influence,
		Interest:             r.Interest,
		Expectations:         r.Expectations,
		CommunicationCadence: r.CommunicationCadence,
		Notes:                r.Notes,
	}
}

type CreateDecisionRequest struct {
	Title     string   `json:"title"`
	Context   string   `json:"context,omitempty"`
	Options   []string `json:"options,omitempty"`
	Chosen    string   `json:"chosen,omitempty"`
	Rationale string   `json:"rationale,omitempty"`
	Impact    string   `json:"impact,omitempty"`
	MadeBy    string   `json:"madeBy,omitempty"`
}

func (r CreateDecisionRequest) input() engine.DecisionInput {
	return engine.DecisionInput{
		Title:     r.Title,
		Context:   r.Context,
		Options:   strings.Join(r.Options, "\n"),
		Chosen:    r.Chosen,
		Rationale: r.Rationale,
		Impact:    r.Impact,
		MadeBy:    r.MadeBy,
	}
}

// Response payloads

type HealthResponse struct {
	Status domain.HealthStatus `json:"healthStatus"`
	Label  string              `json:"healthLabel"`
}

type MilestoneResponse struct {
	domain.Milestone
	Progress int `json:"progress"`
}

type StakeholderResponse struct {
	domain.Stakeholder
	Quadrant domain.Quadrant `json:"quadrant"`
}

type QuadrantGroup struct {
	Quadrant     domain.Quadrant       `json:"quadrant"`
	Stakeholders []StakeholderResponse `json:"stakeholders"`
}

func milestoneResponse(m domain.Milestone) MilestoneResponse {
	if m.Tasks == nil {
		m.Tasks = []domain.Task{}
	}
	return MilestoneResponse{Milestone: m, Progress: views.MilestoneProgress(m)}
}

func mapMilestones(items []domain.Milestone) []MilestoneResponse {
	out := make([]MilestoneResponse, 0, len(items))
	for _, m := range items {
		out = append(out, milestoneResponse(m))
	}
	return out
}

func mapRisks(items []domain.Risk) []views.ScoredRisk {
	out := make([]views.ScoredRisk, 0, len(items))
	for _, r := range items {
		out = append(out, views.Score(r))
	}
	return out
}

func stakeholderResponse(s domain.Stakeholder) StakeholderResponse {
	return StakeholderResponse{Stakeholder: s, Quadrant: views.QuadrantFor(s)}
}

func mapStakeholders(items []domain.Stakeholder) []StakeholderResponse {
	out := make([]StakeholderResponse, 0, len(items))
	for _, s := range items {
		out = append(out, stakeholderResponse(s))
	}
	return out
}

// quadrantGroups lists every quadrant in display order, empty ones included.
func quadrantGroups(items []domain.Stakeholder) []QuadrantGroup {
	groups := views.StakeholderQuadrants(items)
	out := make([]QuadrantGroup, 0, len(domain.Quadrants))
	for _, q := range domain.Quadrants {
		out = append(out, QuadrantGroup{Quadrant: q, Stakeholders: mapStakeholders(groups[q])})
	}
	return out
}
