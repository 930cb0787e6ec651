package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pcc/internal/repo"
)

// ErrNoSnapshot is returned by a Backend that has nothing persisted yet.
var ErrNoSnapshot = errors.New("no persisted snapshot")

// Backend persists the encoded snapshot document in a single slot.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// MemoryBackend keeps the document in memory; used by tests and ephemeral runs.
type MemoryBackend struct {
	mu    sync.Mutex
	data  []byte
	saves int
	Err   error
}

func NewMemoryBackend(initial []byte) *MemoryBackend {
	return &MemoryBackend{data: initial}
}

func (b *MemoryBackend) Load(context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), b.data...), nil
}

func (b *MemoryBackend) Save(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.data = append([]byte(nil), data...)
	b.saves++
	return nil
}

// Saves reports how many successful writes happened.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

// KVBackend stores the document under one key of the workspace database.
type KVBackend struct {
	Repo repo.Repo
	Key  string
}

func (b KVBackend) Load(ctx context.Context) ([]byte, error) {
	e, err := b.Repo.Get(ctx, b.Key)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", b.Key, err)
	}
	return []byte(e.Value), nil
}

func (b KVBackend) Save(ctx context.Context, data []byte) error {
	if err := b.Repo.Put(ctx, b.Key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", b.Key, err)
	}
	return nil
}

// FileBackend stores the document as a JSON file, replaced atomically on save.
type FileBackend struct {
	Path string
}

func (b FileBackend) Load(context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.Path)
	if os.IsNotExist(err) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b FileBackend) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".pcc-tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.Path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
