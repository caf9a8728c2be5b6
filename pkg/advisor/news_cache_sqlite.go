package advisor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteNewsCache persists headline lists in a local SQLite file so they
// survive restarts.
type SQLiteNewsCache struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// OpenSQLiteNewsCache opens (creating if needed) the cache database at dbPath.
func OpenSQLiteNewsCache(dbPath string, logger *slog.Logger) (*SQLiteNewsCache, error) {
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	cleanPath := filepath.Clean(dbPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}

	if err := initDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	return &SQLiteNewsCache{db: db, path: cleanPath, now: time.Now, logger: logger}, nil
}

// Close releases database resources.
func (c *SQLiteNewsCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DBPath returns the underlying database path.
func (c *SQLiteNewsCache) DBPath() string {
	return c.path
}

func (c *SQLiteNewsCache) Get(ctx context.Context, key string) ([]Headline, bool, error) {
	var payload string
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT payload, expires_at FROM news_cache WHERE cache_key = ?", key,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query news cache %s: %w", key, err)
	}
	if c.now().UnixMilli() >= expiresAt {
		return nil, false, nil
	}

	var items []Headline
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, false, fmt.Errorf("decode cached news %s: %w", key, err)
	}
	return items, true, nil
}

func (c *SQLiteNewsCache) Set(ctx context.Context, key string, items []Headline, ttl time.Duration) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode news %s: %w", key, err)
	}
	now := c.now()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO news_cache (cache_key, payload, expires_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, key, string(payload), now.Add(ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("store news cache %s: %w", key, err)
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM news_cache WHERE expires_at <= ?", now.UnixMilli()); err != nil {
		c.logger.Warn("prune news cache failed", "err", err)
	}
	return nil
}
