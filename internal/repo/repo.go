package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repo is a key-value table on top of the workspace database.
type Repo struct {
	DB  *sql.DB
	Now func() time.Time
}

var ErrNotFound = errors.New("not found")

// Entry is a stored value with its last write time.
type Entry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at" format:"date-time"`
}

func (r Repo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Repo) Get(ctx context.Context, key string) (Entry, error) {
	var e Entry
	err := r.DB.QueryRowContext(ctx, `SELECT key,value,updated_at FROM kv WHERE key=?`, key).Scan(&e.Key, &e.Value, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	return e, err
}

// Put overwrites the value stored under key.
func (r Repo) Put(ctx context.Context, key, value string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO kv(key,value,updated_at) VALUES (?,?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, r.now().UTC().Format(time.RFC3339))
	return err
}

func (r Repo) Delete(ctx context.Context, key string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM kv WHERE key=?`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
