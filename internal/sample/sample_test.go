package sample

import (
	"testing"
	"time"

	"pcc/internal/snapshot"
)

func TestProjectIsConsistent(t *testing.T) {
	p := Project()
	if p.ID == "" || len(p.Milestones) == 0 {
		t.Fatalf("sample project is empty")
	}
	for _, m := range p.Milestones {
		for _, task := range m.Tasks {
			if task.MilestoneID != m.ID {
				t.Fatalf("task %s owned by %s points at %s", task.ID, m.ID, task.MilestoneID)
			}
		}
	}
	for _, r := range p.Risks {
		if r.LinkedMilestoneID != "" && p.FindMilestone(r.LinkedMilestoneID) < 0 {
			t.Fatalf("risk %s links unknown milestone %s", r.ID, r.LinkedMilestoneID)
		}
	}
	data, err := snapshot.Encode(p, time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := snapshot.Decode(data); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestProjectReturnsFreshCopies(t *testing.T) {
	a := Project()
	a.Milestones[0].Tasks[0].Title = "changed"
	if Project().Milestones[0].Tasks[0].Title == "changed" {
		t.Fatalf("sample project shares state between calls")
	}
}
