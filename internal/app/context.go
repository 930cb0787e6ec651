package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"pcc/internal/config"
	"pcc/internal/db"
	"pcc/internal/domain"
	"pcc/internal/migrate"
	"pcc/internal/repo"
	"pcc/internal/sample"
	"pcc/internal/store"
)

// Workspace is an opened workspace: its config, the project store and the
// resources backing it.
type Workspace struct {
	Dir    string
	Config *config.Config
	Store  *store.Store
	conn   *sql.DB
	kv     repo.Repo
}

// Info describes where and how the project is stored.
type Info struct {
	Driver        string   `json:"driver"`
	SchemaVersion int64    `json:"schemaVersion,omitempty"`
	Keys          []string `json:"keys,omitempty"`
}

// Open resolves the storage backend named by cfg and loads the project store,
// seeding the sample project when nothing has been saved.
func Open(ctx context.Context, workspace string, cfg *config.Config, logger *slog.Logger) (*Workspace, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	dir, err := db.EnsureWorkspace(workspace)
	if err != nil {
		return nil, err
	}
	ws := &Workspace{Dir: workspace, Config: cfg}
	backend, err := ws.backend(dir)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, store.Options{
		Backend:  backend,
		Fallback: sample.Project,
		Logger:   logger.With("driver", cfg.Storage.Driver),
	})
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.Store = s
	return ws, nil
}

func (w *Workspace) backend(stateDir string) (store.Backend, error) {
	switch w.Config.Storage.Driver {
	case config.DriverFile:
		path := w.Config.Storage.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(stateDir, path)
		}
		return store.FileBackend{Path: path}, nil
	case config.DriverSQLite, "":
		conn, err := db.Open(db.Config{Workspace: w.Dir})
		if err != nil {
			return nil, err
		}
		if err := migrate.Migrate(conn); err != nil {
			conn.Close()
			return nil, err
		}
		w.conn = conn
		w.kv = repo.Repo{DB: conn}
		return store.KVBackend{Repo: w.kv, Key: w.Config.Storage.Key}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", w.Config.Storage.Driver)
	}
}

// Info reports the storage driver and, for sqlite, the applied schema
// version and the keys present in the kv table.
func (w *Workspace) Info(ctx context.Context) (Info, error) {
	info := Info{Driver: w.Config.Storage.Driver}
	if w.conn == nil {
		return info, nil
	}
	v, err := migrate.Version(w.conn)
	if err != nil {
		return info, fmt.Errorf("schema version: %w", err)
	}
	info.SchemaVersion = v
	if info.Keys, err = w.kv.Keys(ctx); err != nil {
		return info, fmt.Errorf("list keys: %w", err)
	}
	return info, nil
}

// Reset clears the persisted slot and saves p in its place.
func (w *Workspace) Reset(ctx context.Context, p domain.Project) error {
	if w.conn != nil {
		if err := w.kv.Delete(ctx, w.Config.Storage.Key); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("clear %s: %w", w.Config.Storage.Key, err)
		}
	}
	return w.Store.Replace(ctx, p)
}

// Close releases the database connection, if any.
func (w *Workspace) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}
