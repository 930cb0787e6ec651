package domain

// Project is the whole snapshot persisted by the store.
type Project struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Goal         string        `json:"goal" yaml:"goal"`
	HealthStatus HealthStatus  `json:"healthStatus" yaml:"healthStatus" enum:"green,yellow,red"`
	StartDate    string        `json:"startDate" yaml:"startDate"`
	EndDate      string        `json:"endDate" yaml:"endDate"`
	Metrics      []Metric      `json:"metrics" yaml:"metrics"`
	Milestones   []Milestone   `json:"milestones" yaml:"milestones"`
	Risks        []Risk        `json:"risks" yaml:"risks"`
	Stakeholders []Stakeholder `json:"stakeholders" yaml:"stakeholders"`
	Decisions    []Decision    `json:"decisions" yaml:"decisions"`
}

type Metric struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Target  string       `json:"target" yaml:"target"`
	Current string       `json:"current" yaml:"current"`
	Status  HealthStatus `json:"status" yaml:"status" enum:"green,yellow,red"`
}

// Milestone owns its tasks; every task's MilestoneID equals the milestone ID.
type Milestone struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	StartDate   string     `json:"startDate" yaml:"startDate"`
	EndDate     string     `json:"endDate" yaml:"endDate"`
	Status      TaskStatus `json:"status" yaml:"status" enum:"not-started,in-progress,completed,blocked"`
	Tasks       []Task     `json:"tasks" yaml:"tasks"`
}

type Task struct {
	ID            string     `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Owner         string     `json:"owner" yaml:"owner"`
	Priority      Priority   `json:"priority" yaml:"priority" enum:"low,medium,high,critical"`
	Status        TaskStatus `json:"status" yaml:"status" enum:"not-started,in-progress,completed,blocked"`
	DueDate       string     `json:"dueDate" yaml:"dueDate"`
	EstimateHours float64    `json:"estimateHours" yaml:"estimateHours"`
	MilestoneID   string     `json:"milestoneId" yaml:"milestoneId"`
}

// Risk.LinkedMilestoneID is a lookup-only reference; it is never validated or cascaded.
type Risk struct {
	ID                string     `json:"id" yaml:"id"`
	Title             string     `json:"title" yaml:"title"`
	Description       string     `json:"description" yaml:"description"`
	Probability       int        `json:"probability" yaml:"probability" minimum:"1" maximum:"5"`
	Impact            int        `json:"impact" yaml:"impact" minimum:"1" maximum:"5"`
	Owner             string     `json:"owner" yaml:"owner"`
	MitigationPlan    string     `json:"mitigationPlan" yaml:"mitigationPlan"`
	Status            RiskStatus `json:"status" yaml:"status" enum:"open,mitigated,closed"`
	ReviewDate        string     `json:"reviewDate" yaml:"reviewDate"`
	LinkedMilestoneID string     `json:"linkedMilestoneId,omitempty" yaml:"linkedMilestoneId,omitempty"`
}

type Stakeholder struct {
	ID                   string `json:"id" yaml:"id"`
	Name                 string `json:"name" yaml:"name"`
	Role                 string `json:"role" yaml:"role"`
	Influence            int    `json:"influence" yaml:"influence" minimum:"1" maximum:"5"`
	Interest             int    `json:"interest" yaml:"interest" minimum:"1" maximum:"5"`
	Expectations         string `json:"expectations" yaml:"expectations"`
	CommunicationCadence string `json:"communicationCadence" yaml:"communicationCadence"`
	Notes                string `json:"notes" yaml:"notes"`
}

// Decision.Chosen is free text; it is not required to be one of Options.
type Decision struct {
	ID        string   `json:"id" yaml:"id"`
	Date      string   `json:"date" yaml:"date"`
	Title     string   `json:"title" yaml:"title"`
	Context   string   `json:"context" yaml:"context"`
	Options   []string `json:"options" yaml:"options"`
	Chosen    string   `json:"chosen" yaml:"chosen"`
	Rationale string   `json:"rationale" yaml:"rationale"`
	Impact    string   `json:"impact" yaml:"impact"`
	MadeBy    string   `json:"madeBy" yaml:"madeBy"`
}

// FindMilestone returns the index of the milestone with id, or -1.
func (p Project) FindMilestone(id string) int {
	for i, m := range p.Milestones {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// FindTask returns the index of the task with id inside the milestone, or -1.
func (m Milestone) FindTask(id string) int {
	for i, t := range m.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (p Project) FindRisk(id string) int {
	for i, r := range p.Risks {
		if r.ID == id {
			return i
		}
	}
	return -1
}
