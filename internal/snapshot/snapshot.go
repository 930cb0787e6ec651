// Package snapshot encodes the persisted project document.
//
// The document is a JSON envelope carrying an explicit format version:
//
//	{"version": 1, "savedAt": "2024-01-01T00:00:00Z", "project": {...}}
//
// A document without a version field is the legacy bare project object
// (version 0). Older versions are upgraded step by step through the
// registered migrations before the project is decoded.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pcc/internal/domain"
)

// CurrentVersion is written by Encode.
const CurrentVersion = 1

var (
	ErrMalformed          = errors.New("malformed snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

type Document struct {
	Version int            `json:"version" yaml:"version"`
	SavedAt string         `json:"savedAt,omitempty" yaml:"savedAt,omitempty"`
	Project domain.Project `json:"project" yaml:"project"`
}

// migration upgrades a raw document from version N to N+1.
type migration func(raw map[string]json.RawMessage) (map[string]json.RawMessage, error)

var migrations = map[int]migration{
	0: wrapLegacyProject,
}

func Encode(p domain.Project, savedAt time.Time) ([]byte, error) {
	doc := Document{
		Version: CurrentVersion,
		SavedAt: savedAt.UTC().Format(time.RFC3339),
		Project: p,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and, if needed, migrates a persisted document.
func Decode(data []byte) (domain.Project, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return domain.Project{}, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	version, err := versionOf(raw)
	if err != nil {
		return domain.Project{}, err
	}
	if version > CurrentVersion {
		return domain.Project{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	for version < CurrentVersion {
		m, ok := migrations[version]
		if !ok {
			return domain.Project{}, fmt.Errorf("%w: no migration from %d", ErrUnsupportedVersion, version)
		}
		if raw, err = m(raw); err != nil {
			return domain.Project{}, fmt.Errorf("migrate from %d: %w", version, err)
		}
		version++
	}
	body, ok := raw["project"]
	if !ok {
		return domain.Project{}, fmt.Errorf("%w: missing project", ErrMalformed)
	}
	var p domain.Project
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate(p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func versionOf(raw map[string]json.RawMessage) (int, error) {
	v, ok := raw["version"]
	if !ok {
		return 0, nil
	}
	var version int
	if err := json.Unmarshal(v, &version); err != nil {
		return 0, fmt.Errorf("%w: version: %v", ErrMalformed, err)
	}
	return version, nil
}

func wrapLegacyProject(raw map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	body, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return map[string]json.RawMessage{
		"version": json.RawMessage("1"),
		"project": body,
	}, nil
}

// validate rejects structurally impossible snapshots; cross references stay advisory.
func validate(p domain.Project) error {
	if p.ID == "" {
		return fmt.Errorf("%w: project id is empty", ErrMalformed)
	}
	if !p.HealthStatus.Valid() {
		return fmt.Errorf("%w: project health status %q", ErrMalformed, p.HealthStatus)
	}
	for _, m := range p.Metrics {
		if !m.Status.Valid() {
			return fmt.Errorf("%w: metric %s status %q", ErrMalformed, m.ID, m.Status)
		}
	}
	for _, m := range p.Milestones {
		if !m.Status.Valid() {
			return fmt.Errorf("%w: milestone %s status %q", ErrMalformed, m.ID, m.Status)
		}
		for _, t := range m.Tasks {
			if t.MilestoneID != m.ID {
				return fmt.Errorf("%w: task %s references milestone %s but belongs to %s", ErrMalformed, t.ID, t.MilestoneID, m.ID)
			}
			if !t.Status.Valid() {
				return fmt.Errorf("%w: task %s status %q", ErrMalformed, t.ID, t.Status)
			}
			if !t.Priority.Valid() {
				return fmt.Errorf("%w: task %s priority %q", ErrMalformed, t.ID, t.Priority)
			}
		}
	}
	for _, r := range p.Risks {
		if !r.Status.Valid() {
			return fmt.Errorf("%w: risk %s status %q", ErrMalformed, r.ID, r.Status)
		}
		if err := rating("risk "+r.ID+" probability", r.Probability); err != nil {
			return err
		}
		if err := rating("risk "+r.ID+" impact", r.Impact); err != nil {
			return err
		}
	}
	for _, s := range p.Stakeholders {
		if err := rating("stakeholder "+s.ID+" influence", s.Influence); err != nil {
			return err
		}
		if err := rating("stakeholder "+s.ID+" interest", s.Interest); err != nil {
			return err
		}
	}
	return nil
}

func rating(field string, v int) error {
	if v < 1 || v > 5 {
		return fmt.Errorf("%w: %s %d outside 1..5", ErrMalformed, field, v)
	}
	return nil
}
