package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/geotech-hub/geoaudit/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// DatabaseFile is the file name of the database inside the data directory.
const DatabaseFile = "audit.db"

// Store is a unified SQLite-based storage that provides access to
// the audit store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.geoaudit/data/audit.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".geoaudit", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets history writes run alongside cache reads.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SetClock replaces the time source used for expiry and quota windows.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// ResultCache returns a ResultCache interface backed by this store.
func (s *Store) ResultCache() driven.ResultCache {
	return &resultCache{store: s}
}

// QuotaCounter returns a QuotaCounter interface backed by this store.
func (s *Store) QuotaCounter() driven.QuotaCounter {
	return &quotaCounter{store: s}
}

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Result Cache ====================

// resultCache implements driven.ResultCache.
type resultCache struct {
	store *Store
}

var _ driven.ResultCache = (*resultCache)(nil)

// Get returns the cached result for hash.
func (c *resultCache) Get(ctx context.Context, hash string) (*domain.AuditResult, error) {
	var (
		payload   string
		expiresAt int64
	)
	err := c.store.db.QueryRowContext(ctx,
		"SELECT result, expires_at FROM audit_cache WHERE content_hash = ?", hash,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}

	if c.store.now().UnixNano() >= expiresAt {
		if _, err := c.store.db.ExecContext(ctx, "DELETE FROM audit_cache WHERE content_hash = ?", hash); err != nil {
			return nil, fmt.Errorf("evicting cache entry: %w", err)
		}
		return nil, domain.ErrNotFound
	}

	var result domain.AuditResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("unmarshalling cached result: %w", err)
	}
	return &result, nil
}

// Put stores result under hash until ttl elapses.
func (c *resultCache) Put(ctx context.Context, hash string, result *domain.AuditResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	expiresAt := c.store.now().Add(ttl).UnixNano()

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO audit_cache (content_hash, result, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET result = excluded.result, expires_at = excluded.expires_at
	`, hash, string(payload), expiresAt)
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// ==================== Quota Counter ====================

// quotaCounter implements driven.QuotaCounter.
type quotaCounter struct {
	store *Store
}

var _ driven.QuotaCounter = (*quotaCounter)(nil)

// Count returns the client's count in the live window.
func (q *quotaCounter) Count(ctx context.Context, clientID string) (int, error) {
	var count int
	err := q.store.db.QueryRowContext(ctx,
		"SELECT count FROM audit_quota WHERE client_id = ? AND window_end > ?",
		clientID, q.store.now().UnixNano(),
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying quota: %w", err)
	}
	return count, nil
}

// Increment records one audit, opening a new window when none is live.
func (q *quotaCounter) Increment(ctx context.Context, clientID string, window time.Duration) (int, error) {
	now := q.store.now()

	tx, err := q.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_quota (client_id, count, window_end) VALUES (?, 1, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			count = CASE WHEN window_end > ? THEN count + 1 ELSE 1 END,
			window_end = CASE WHEN window_end > ? THEN window_end ELSE excluded.window_end END
	`, clientID, now.Add(window).UnixNano(), now.UnixNano(), now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("incrementing quota: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT count FROM audit_quota WHERE client_id = ?", clientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("reading quota: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing quota: %w", err)
	}
	return count, nil
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Save stores an audit record.
func (h *historyStore) Save(ctx context.Context, r domain.HistoryRecord) error {
	_, err := h.store.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO audit_history (
			id, client_id, filename, content_hash, work_type, soil_type, volume, depth,
			confidence, risks_count, estimated_total, summary, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.ClientID, r.Filename, r.ContentHash, r.WorkType,
		nullString(r.SoilType), nullFloat(r.Volume), nullFloat(r.Depth),
		r.Confidence, r.RisksCount, nullFloat(r.EstimatedTotal), r.Summary,
		r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving history record: %w", err)
	}
	return nil
}

// List returns a client's newest records first.
func (h *historyStore) List(ctx context.Context, clientID string, limit int) ([]domain.HistoryRecord, error) {
	rows, err := h.store.db.QueryContext(ctx, `
		SELECT id, client_id, filename, content_hash, work_type, soil_type, volume, depth,
			confidence, risks_count, estimated_total, summary, created_at
		FROM audit_history
		WHERE client_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	records := []domain.HistoryRecord{}
	for rows.Next() {
		var (
			r         domain.HistoryRecord
			soilType  sql.NullString
			volume    sql.NullFloat64
			depth     sql.NullFloat64
			total     sql.NullFloat64
			createdAt int64
		)
		if err := rows.Scan(
			&r.ID, &r.ClientID, &r.Filename, &r.ContentHash, &r.WorkType,
			&soilType, &volume, &depth, &r.Confidence, &r.RisksCount, &total,
			&r.Summary, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if soilType.Valid {
			r.SoilType = &soilType.String
		}
		r.Volume = floatPtr(volume)
		r.Depth = floatPtr(depth)
		r.EstimatedTotal = floatPtr(total)
		r.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// ==================== Helpers ====================

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
