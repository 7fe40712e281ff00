package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/pkg/filesystem"
)

// SQLiteStore persists the interaction ledger in a SQLite database. The
// UNIQUE(post_id, username) constraint is the sole deduplication authority;
// no in-process check-then-act is trusted for correctness.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultPath is the ledger location when the configuration leaves it unset.
func DefaultPath() string {
	return filepath.Join(filesystem.UserHomeDir(), ".reachout", "ledger.db")
}

// NewSQLiteStore creates (or opens) the ledger database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger %s: %w", path, err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id TEXT NOT NULL,
		username TEXT NOT NULL,
		comment_id TEXT,
		outcome TEXT NOT NULL DEFAULT 'dm_sent',
		replied INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(post_id, username)
	);`)
	return err
}

// Exists is a pure lookup, no side effect.
func (s *SQLiteStore) Exists(ctx context.Context, postID, username string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM interactions WHERE post_id = ? AND username = ?`, postID, username)
	var one int
	switch err := row.Scan(&one); err {
	case nil:
		return true, nil
	case sql.ErrNoRows:
		return false, nil
	default:
		return false, err
	}
}

// Record inserts the pair and reports whether the insert won. ON CONFLICT DO
// NOTHING makes the second insert for the same pair a silent no-op, so under
// concurrent callers exactly one Record returns true.
func (s *SQLiteStore) Record(ctx context.Context, rec domain.InteractionRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome := rec.Outcome
	if outcome == "" {
		outcome = domain.OutcomeSent
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (post_id, username, comment_id, outcome)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(post_id, username) DO NOTHING
	`, rec.PostID, rec.Username, rec.CommentID, string(outcome))
	if err != nil {
		return false, fmt.Errorf("record interaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkReplied flags that the pair's comment received a public reply.
func (s *SQLiteStore) MarkReplied(ctx context.Context, postID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`UPDATE interactions SET replied = 1 WHERE post_id = ? AND username = ?`, postID, username)
	return err
}

// Stats returns lifetime and today counters.
func (s *SQLiteStore) Stats(ctx context.Context) (domain.LedgerStats, error) {
	var stats domain.LedgerStats
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions`).Scan(&stats.Total); err != nil {
		return stats, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions WHERE DATE(created_at) = DATE('now')`).Scan(&stats.Today); err != nil {
		return stats, err
	}
	return stats, nil
}

// Reset deletes all records, or one post's when postID is non-empty.
func (s *SQLiteStore) Reset(ctx context.Context, postID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		res sql.Result
		err error
	)
	if postID == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM interactions`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM interactions WHERE post_id = ?`, postID)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Records lists recorded interactions, newest first (limit 0 = all).
func (s *SQLiteStore) Records(ctx context.Context, limit int) ([]domain.InteractionRecord, error) {
	query := `SELECT post_id, username, COALESCE(comment_id, ''), outcome, replied, created_at
		FROM interactions ORDER BY datetime(created_at) DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.InteractionRecord
	for rows.Next() {
		var (
			rec     domain.InteractionRecord
			outcome string
			replied int
			created string
		)
		if err := rows.Scan(&rec.PostID, &rec.Username, &rec.CommentID, &outcome, &replied, &created); err != nil {
			return nil, err
		}
		rec.Outcome = domain.Outcome(outcome)
		rec.Replied = replied == 1
		if t, err := time.Parse(time.DateTime, created); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Path exposes the database location for reporting.
func (s *SQLiteStore) Path() string { return s.path }

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
