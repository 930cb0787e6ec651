// Package store holds the current project snapshot and persists every replacement.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pcc/internal/domain"
	"pcc/internal/snapshot"
)

// Options configures Open. Fallback supplies the project used when nothing
// valid is persisted.
type Options struct {
	Backend  Backend
	Fallback func() domain.Project
	Logger   *slog.Logger
	Now      func() time.Time
}

// Store is the single writer for the project snapshot. Replace and Update are
// serialised; a Replace computed from a stale Read overwrites newer state.
type Store struct {
	mu      sync.RWMutex
	current domain.Project
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// Open loads the persisted snapshot. Missing or unreadable data is not an
// error: the fallback project is used instead and a warning is logged.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Backend == nil {
		return nil, errors.New("store backend is required")
	}
	if opts.Fallback == nil {
		return nil, errors.New("store fallback is required")
	}
	s := &Store{
		backend: opts.Backend,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	p, err := s.load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			s.logger.Info("no saved project, using default")
		} else {
			s.logger.Warn("saved project unreadable, using default", "error", err)
		}
		p = opts.Fallback()
	}
	s.current = p
	return s, nil
}

func (s *Store) load(ctx context.Context) (domain.Project, error) {
	data, err := s.backend.Load(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	return snapshot.Decode(data)
}

// Read returns the current snapshot. Callers must treat it as immutable.
func (s *Store) Read() domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace swaps in p and persists the full snapshot. The swap stands even if
// persisting fails; the error is logged and returned.
func (s *Store) Replace(ctx context.Context, p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(ctx, p)
}

// Update applies fn to the current snapshot and replaces it with the result.
// When fn fails the snapshot is left untouched and fn's error is returned.
func (s *Store) Update(ctx context.Context, fn func(domain.Project) (domain.Project, error)) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.current)
	if err != nil {
		return s.current, err
	}
	return next, s.replaceLocked(ctx, next)
}

func (s *Store) replaceLocked(ctx context.Context, p domain.Project) error {
	s.current = p
	data, err := snapshot.Encode(p, s.now())
	if err != nil {
		s.logger.Error("encode project failed", "error", err)
		return err
	}
	if err := s.backend.Save(ctx, data); err != nil {
		s.logger.Warn("persist project failed", "project_id", p.ID, "error", err)
		return fmt.Errorf("persist project: %w", err)
	}
	s.logger.Debug("project persisted", "project_id", p.ID, "bytes", len(data))
	return nil
}
