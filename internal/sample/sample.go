// Package sample provides the built-in project used when nothing has been saved yet.
package sample

import "pcc/internal/domain"

// Project returns a fresh copy of the sample project on every call.
func Project() domain.Project {
	return domain.Project{
		ID:           "sample-project",
		Name:         "AI Support Assistant Rollout",
		Goal:         "Deploy an AI assistant that resolves 40% of tier-1 support tickets without human handoff by Q4.",
		HealthStatus: domain.HealthYellow,
		StartDate:    "2025-01-06",
		EndDate:      "2025-12-19",
		Metrics: []domain.Metric{
			{ID: "metric-1", Name: "Deflection Rate", Target: "40%", Current: "22%", Status: domain.HealthYellow},
			{ID: "metric-2", Name: "CSAT", Target: "4.5", Current: "4.6", Status: domain.HealthGreen},
			{ID: "metric-3", Name: "Escalation Accuracy", Target: "95%", Current: "81%", Status: domain.HealthRed},
		},
		Milestones: []domain.Milestone{
			{
				ID:          "ms-discovery",
				Name:        "Discovery & Data Audit",
				Description: "Catalogue ticket categories and assess knowledge base quality.",
				StartDate:   "2025-01-06",
				EndDate:     "2025-02-28",
				Status:      domain.TaskCompleted,
				Tasks: []domain.Task{
					{ID: "task-1", Title: "Export 12 months of tickets", Owner: "Priya", Priority: domain.PriorityHigh, Status: domain.TaskCompleted, DueDate: "2025-01-20", EstimateHours: 8, MilestoneID: "ms-discovery"},
					{ID: "task-2", Title: "Label top 20 intents", Owner: "Marco", Priority: domain.PriorityMedium, Status: domain.TaskCompleted, DueDate: "2025-02-14", EstimateHours: 24, MilestoneID: "ms-discovery"},
				},
			},
			{
				ID:          "ms-pilot",
				Name:        "Pilot Build",
				Description: "Build retrieval pipeline and run a closed pilot with one support pod.",
				StartDate:   "2025-03-03",
				EndDate:     "2025-06-27",
				Status:      domain.TaskInProgress,
				Tasks: []domain.Task{
					{ID: "task-3", Title: "Index knowledge base", Owner: "Jun", Priority: domain.PriorityHigh, Status: domain.TaskCompleted, DueDate: "2025-03-28", EstimateHours: 16, MilestoneID: "ms-pilot"},
					{ID: "task-4", Title: "Design escalation handoff", Owner: "Priya", Priority: domain.PriorityCritical, Status: domain.TaskBlocked, DueDate: "2025-04-25", EstimateHours: 20, MilestoneID: "ms-pilot"},
					{ID: "task-5", Title: "Pilot with Pod B", Owner: "Marco", Priority: domain.PriorityHigh, Status: domain.TaskInProgress, DueDate: "2025-06-13", EstimateHours: 40, MilestoneID: "ms-pilot"},
				},
			},
			{
				ID:          "ms-rollout",
				Name:        "General Rollout",
				Description: "Roll out to all support pods with monitoring and feedback loops.",
				StartDate:   "2025-07-01",
				EndDate:     "2025-12-19",
				Status:      domain.TaskNotStarted,
				Tasks: []domain.Task{
					{ID: "task-6", Title: "Train support leads", Owner: "Ana", Priority: domain.PriorityMedium, Status: domain.TaskNotStarted, DueDate: "2025-08-15", EstimateHours: 12, MilestoneID: "ms-rollout"},
					{ID: "task-7", Title: "Quality dashboard", Owner: "Jun", Priority: domain.PriorityLow, Status: domain.TaskNotStarted, DueDate: "2025-09-30", EstimateHours: 16, MilestoneID: "ms-rollout"},
				},
			},
		},
		Risks: []domain.Risk{
			{ID: "risk-1", Title: "Knowledge base is outdated", Description: "Answers may cite retired policies.", Probability: 4, Impact: 4, Owner: "Marco", MitigationPlan: "Content owners review top 200 articles before pilot.", Status: domain.RiskOpen, ReviewDate: "2025-03-15", LinkedMilestoneID: "ms-pilot"},
			{ID: "risk-2", Title: "Agent pushback", Description: "Support agents fear replacement.", Probability: 3, Impact: 3, Owner: "Ana", MitigationPlan: "Position the assistant as triage; share pilot metrics openly.", Status: domain.RiskOpen, ReviewDate: "2025-04-01"},
			{ID: "risk-3", Title: "PII leakage in prompts", Description: "Customer data could be sent to the model provider.", Probability: 2, Impact: 5, Owner: "Priya", MitigationPlan: "Redaction layer and DPA with provider.", Status: domain.RiskMitigated, ReviewDate: "2025-02-20"},
			{ID: "risk-4", Title: "Latency over SLA", Description: "Responses slower than 3s.", Probability: 2, Impact: 2, Owner: "Jun", MitigationPlan: "Cache frequent answers.", Status: domain.RiskClosed, ReviewDate: "2025-03-01"},
		},
		Stakeholders: []domain.Stakeholder{
			{ID: "sh-1", Name: "Dana Reyes", Role: "VP Customer Support", Influence: 5, Interest: 5, Expectations: "Cost per ticket down 25%", CommunicationCadence: "Weekly", Notes: "Executive sponsor"},
			{ID: "sh-2", Name: "Legal", Role: "Privacy Counsel", Influence: 4, Interest: 2, Expectations: "No PII leaves the tenant", CommunicationCadence: "Monthly"},
			{ID: "sh-3", Name: "Support Pod B", Role: "Pilot team", Influence: 2, Interest: 5, Expectations: "Fewer repetitive tickets", CommunicationCadence: "Daily stand-up"},
			{ID: "sh-4", Name: "Finance", Role: "Budget owner", Influence: 3, Interest: 2, Expectations: "Stay within budget", CommunicationCadence: "Quarterly"},
		},
		Decisions: []domain.Decision{
			{ID: "dec-2", Date: "2025-03-10", Title: "Retrieval over fine-tuning", Context: "Knowledge changes weekly.", Options: []string{"Fine-tune a model", "Retrieval augmented generation"}, Chosen: "Retrieval augmented generation", Rationale: "Content updates without retraining.", Impact: "Index pipeline becomes critical path.", MadeBy: "Dana Reyes"},
			{ID: "dec-1", Date: "2025-01-15", Title: "Pilot with a single pod", Context: "Limited change management capacity.", Options: []string{"All pods", "Single pod"}, Chosen: "Single pod", Rationale: "Contain risk and learn fast.", Impact: "Rollout starts in Q3.", MadeBy: "Dana Reyes"},
		},
	}
}
