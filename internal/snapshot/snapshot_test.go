package snapshot_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcc/internal/domain"
	"pcc/internal/sample"
	"pcc/internal/snapshot"
)

var savedAt = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestRoundTrip(t *testing.T) {
	p := sample.Project()
	data, err := snapshot.Encode(p, savedAt)
	require.NoError(t, err)

	got, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	again, err := snapshot.Encode(got, savedAt)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestEncodeWritesVersionAndLowercaseEnums(t *testing.T) {
	data, err := snapshot.Encode(sample.Project(), savedAt)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.EqualValues(t, snapshot.CurrentVersion, doc["version"])
	project := doc["project"].(map[string]any)
	assert.Equal(t, "yellow", project["healthStatus"])
	ms := project["milestones"].([]any)[1].(map[string]any)
	assert.Equal(t, "in-progress", ms["status"])
}

func TestDecodeLegacyBareProject(t *testing.T) {
	legacy := `{
		"id": "p1", "name": "Old", "goal": "", "healthStatus": "green",
		"startDate": "2024-01-01", "endDate": "2024-12-31",
		"metrics": [], "risks": [], "stakeholders": [], "decisions": [],
		"milestones": [{"id": "m1", "name": "M", "description": "", "startDate": "", "endDate": "",
			"status": "not-started",
			"tasks": [{"id": "t1", "title": "T", "owner": "", "priority": "low", "status": "blocked",
				"dueDate": "2024-02-01", "estimateHours": 2, "milestoneId": "m1"}]}]
	}`
	p, err := snapshot.Decode([]byte(legacy))
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, domain.TaskBlocked, p.Milestones[0].Tasks[0].Status)
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"garbage":              `not json`,
		"null":                 `null`,
		"array":                `[]`,
		"bad enum":             `{"version":1,"project":{"id":"p","healthStatus":"amber"}}`,
		"missing body":         `{"version":1}`,
		"no id":                `{"version":1,"project":{"healthStatus":"green"}}`,
		"orphan task":          `{"version":1,"project":{"id":"p","healthStatus":"green","milestones":[{"id":"m1","status":"completed","tasks":[{"id":"t","priority":"low","status":"completed","milestoneId":"m2"}]}]}}`,
		"bad version":          `{"version":"one","project":{}}`,
		"no health":            `{"version":1,"project":{"id":"p"}}`,
		"no metric status":     `{"version":1,"project":{"id":"p","healthStatus":"green","metrics":[{"id":"m"}]}}`,
		"no milestone status":  `{"version":1,"project":{"id":"p","healthStatus":"green","milestones":[{"id":"m1"}]}}`,
		"no task status":       `{"version":1,"project":{"id":"p","healthStatus":"green","milestones":[{"id":"m1","status":"completed","tasks":[{"id":"t","priority":"low","milestoneId":"m1"}]}]}}`,
		"no task priority":     `{"version":1,"project":{"id":"p","healthStatus":"green","milestones":[{"id":"m1","status":"completed","tasks":[{"id":"t","status":"blocked","milestoneId":"m1"}]}]}}`,
		"no risk status":       `{"version":1,"project":{"id":"p","healthStatus":"green","risks":[{"id":"r","probability":3,"impact":3}]}}`,
		"probability 9":        `{"version":1,"project":{"id":"p","healthStatus":"green","risks":[{"id":"r","status":"open","probability":9,"impact":3}]}}`,
		"impact 7":             `{"version":1,"project":{"id":"p","healthStatus":"green","risks":[{"id":"r","status":"open","probability":3,"impact":7}]}}`,
		"negative probability": `{"version":1,"project":{"id":"p","healthStatus":"green","risks":[{"id":"r","status":"open","probability":-2,"impact":3}]}}`,
		"influence 42":         `{"version":1,"project":{"id":"p","healthStatus":"green","stakeholders":[{"id":"s","influence":42,"interest":3}]}}`,
		"no interest":          `{"version":1,"project":{"id":"p","healthStatus":"green","stakeholders":[{"id":"s","influence":3}]}}`,
	}
	for name, doc := range cases {
		_, err := snapshot.Decode([]byte(doc))
		assert.True(t, errors.Is(err, snapshot.ErrMalformed), "%s: %v", name, err)
	}
	_, err := snapshot.Decode([]byte(`{"version":99,"project":{"id":"p"}}`))
	assert.True(t, errors.Is(err, snapshot.ErrUnsupportedVersion))
}
