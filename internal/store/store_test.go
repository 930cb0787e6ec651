package store_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcc/internal/db"
	"pcc/internal/domain"
	"pcc/internal/engine"
	"pcc/internal/migrate"
	"pcc/internal/repo"
	"pcc/internal/sample"
	"pcc/internal/snapshot"
	"pcc/internal/store"
)

var fixedNow = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T, b store.Backend) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{
		Backend:  b,
		Fallback: sample.Project,
		Logger:   quietLogger(),
		Now:      fixedNow,
	})
	require.NoError(t, err)
	return s
}

func TestOpenFallsBackWhenEmpty(t *testing.T) {
	s := openStore(t, store.NewMemoryBackend(nil))
	assert.Equal(t, sample.Project(), s.Read())
}

func TestOpenFallsBackOnMalformedData(t *testing.T) {
	var logs bytes.Buffer
	s, err := store.Open(context.Background(), store.Options{
		Backend:  store.NewMemoryBackend([]byte("{not json")),
		Fallback: sample.Project,
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)
	assert.Equal(t, "sample-project", s.Read().ID)
	assert.Contains(t, logs.String(), "unreadable")
}

func TestOpenRequiresBackendAndFallback(t *testing.T) {
	_, err := store.Open(context.Background(), store.Options{Fallback: sample.Project})
	assert.Error(t, err)
	_, err = store.Open(context.Background(), store.Options{Backend: store.NewMemoryBackend(nil)})
	assert.Error(t, err)
}

func TestReplacePersistsFullSnapshot(t *testing.T) {
	b := store.NewMemoryBackend(nil)
	s := openStore(t, b)
	e := engine.New()
	next, err := e.SetProjectHealth(s.Read(), domain.HealthRed)
	require.NoError(t, err)
	require.NoError(t, s.Replace(context.Background(), next))
	assert.Equal(t, 1, b.Saves())

	reopened := openStore(t, b)
	assert.Equal(t, domain.HealthRed, reopened.Read().HealthStatus)
	assert.Equal(t, next, reopened.Read())
}

func TestReplaceKeepsSwapWhenPersistFails(t *testing.T) {
	b := store.NewMemoryBackend(nil)
	s := openStore(t, b)
	b.Err = errors.New("disk full")
	p := s.Read()
	p.Name = "Renamed"
	err := s.Replace(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, "Renamed", s.Read().Name)
}

func TestStaleReplaceIsLastWriterWins(t *testing.T) {
	s := openStore(t, store.NewMemoryBackend(nil))
	e := engine.New()
	stale := s.Read()
	first, err := e.AddStakeholder(stale, engine.StakeholderInput{Name: "First"})
	require.NoError(t, err)
	second, err := e.AddStakeholder(stale, engine.StakeholderInput{Name: "Second"})
	require.NoError(t, err)
	require.NoError(t, s.Replace(context.Background(), first))
	require.NoError(t, s.Replace(context.Background(), second))

	names := map[string]bool{}
	for _, sh := range s.Read().Stakeholders {
		names[sh.Name] = true
	}
	assert.False(t, names["First"])
	assert.True(t, names["Second"])
}

func TestUpdateLeavesSnapshotOnError(t *testing.T) {
	b := store.NewMemoryBackend(nil)
	s := openStore(t, b)
	e := engine.New()
	before := s.Read()
	_, err := s.Update(context.Background(), func(p domain.Project) (domain.Project, error) {
		return e.AddTask(p, "no-such-milestone", engine.TaskInput{Title: "x"})
	})
	assert.True(t, errors.Is(err, engine.ErrNotFound))
	assert.Equal(t, before, s.Read())
	assert.Equal(t, 0, b.Saves())

	got, err := s.Update(context.Background(), func(p domain.Project) (domain.Project, error) {
		return e.CycleRiskStatus(p, "risk-1")
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskMitigated, got.Risks[0].Status)
	assert.Equal(t, got, s.Read())
	assert.Equal(t, 1, b.Saves())
}

func TestKVBackendRoundTrip(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, migrate.Migrate(conn))
	b := store.KVBackend{Repo: repo.Repo{DB: conn}, Key: "ai-pcc-project"}

	_, err = b.Load(context.Background())
	assert.True(t, errors.Is(err, store.ErrNoSnapshot))

	s := openStore(t, b)
	p := s.Read()
	p.Goal = "Persisted goal"
	require.NoError(t, s.Replace(context.Background(), p))

	reopened := openStore(t, b)
	assert.Equal(t, p, reopened.Read())
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "project.json")
	b := store.FileBackend{Path: path}
	_, err := b.Load(context.Background())
	assert.True(t, errors.Is(err, store.ErrNoSnapshot))

	s := openStore(t, b)
	require.NoError(t, s.Replace(context.Background(), s.Read()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s.Read(), decoded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}
