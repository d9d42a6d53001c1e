package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/huitzo/packkit/pkg/huitzo"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}',
	expires_at INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);
`

// Store persists pack records in a single sqlite file. Expiry is lazy: rows
// past their expires_at are filtered on read and purged opportunistically.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ huitzo.StorageService = (*Store)(nil)

// Open creates the database file (and parent directory) if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Save(ctx context.Context, key string, value map[string]any, opts ...huitzo.SaveOption) error {
	if key == "" {
		return errors.New("storage: empty key")
	}

	var o huitzo.SaveOptions
	for _, opt := range opts {
		opt(&o)
	}

	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: encode value: %w", err)
	}
	md := o.Metadata
	if md == nil {
		md = map[string]string{}
	}
	metaJSON, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("storage: encode metadata: %w", err)
	}

	nowMs := s.now().UnixMilli()
	var expires int64
	if o.TTL > 0 {
		expires = nowMs + o.TTL.Milliseconds()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (key, value, metadata, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			metadata = excluded.metadata,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, key, string(valueJSON), string(metaJSON), expires, nowMs)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (map[string]any, error) {
	var (
		valueJSON string
		expires   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM records WHERE key = ?`, key).
		Scan(&valueJSON, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.expired(expires) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key)
		return nil, nil
	}

	var value map[string]any
	if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
		return nil, fmt.Errorf("storage: decode value for %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) List(ctx context.Context, prefix string, limit int) ([]map[string]any, error) {
	records, err := s.Query(ctx, prefix, nil, limit)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		out = append(out, r.Value)
	}
	return out, nil
}

func (s *Store) Query(ctx context.Context, prefix string, metadata map[string]string, limit int) ([]huitzo.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, metadata, expires_at
		FROM records
		WHERE key LIKE ? ESCAPE '\'
		ORDER BY key
	`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []huitzo.Record
	for rows.Next() {
		var (
			key, valueJSON, metaJSON string
			expires                  int64
		)
		if err := rows.Scan(&key, &valueJSON, &metaJSON, &expires); err != nil {
			return nil, err
		}
		if s.expired(expires) {
			continue
		}

		var md map[string]string
		if err := json.Unmarshal([]byte(metaJSON), &md); err != nil {
			return nil, fmt.Errorf("storage: decode metadata for %q: %w", key, err)
		}
		if !matchesMetadata(md, metadata) {
			continue
		}

		var value map[string]any
		if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
			return nil, fmt.Errorf("storage: decode value for %q: %w", key, err)
		}

		out = append(out, huitzo.Record{Key: key, Value: value, Metadata: md})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}

func (s *Store) expired(expiresAt int64) bool {
	return expiresAt > 0 && expiresAt <= s.now().UnixMilli()
}

func matchesMetadata(have map[string]string, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
