package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mockboard/iv/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// preventing "database is locked" errors from concurrent requests.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveReport persists a report and its per-question transcript.
func (s *SQLiteStore) SaveReport(ctx context.Context, r *models.Report) error {
	if r.ID == "" {
		r.ID = newULID()
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO reports
		(id, session_id, role, category, difficulty, total_time_minutes,
		 questions_total, questions_attempted, questions_answered,
		 questions_skipped, hints_used, success_rate, summary, overall, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.Info.Role, string(r.Info.Category), string(r.Info.Difficulty),
		r.Info.TotalTimeMinutes, r.Info.QuestionsTotal, r.Info.QuestionsAttempted,
		r.Info.QuestionsAnswered, r.Info.QuestionsSkipped, r.Info.HintsUsed,
		r.Info.SuccessRate, r.Summary, r.Overall, r.GeneratedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	for i, q := range r.Questions {
		_, err = tx.ExecContext(ctx, `INSERT INTO report_questions
			(report_id, position, question, answer, score, verdict, feedback, attempt, answered_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, q.Question, q.Answer, q.Evaluation.Score, string(q.Evaluation.Verdict),
			q.Evaluation.Feedback, q.Attempt, q.Timestamp.UTC())
		if err != nil {
			return fmt.Errorf("insert report question %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetReport returns one report by id.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	return s.getReport(ctx, "id = ?", id)
}

// GetReportBySession returns the report generated for a session.
func (s *SQLiteStore) GetReportBySession(ctx context.Context, sessionID string) (*models.Report, error) {
	return s.getReport(ctx, "session_id = ?", sessionID)
}

func (s *SQLiteStore) getReport(ctx context.Context, where string, arg any) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, session_id, role, category, difficulty,
		total_time_minutes, questions_total, questions_attempted, questions_answered,
		questions_skipped, hints_used, success_rate, summary, overall, generated_at
		FROM reports WHERE `+where, arg)

	r, err := scanReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("report not found")
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT question, answer, score, verdict, feedback, attempt, answered_at
		FROM report_questions WHERE report_id = ? ORDER BY position`, r.ID)
	if err != nil {
		return nil, fmt.Errorf("query report questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec models.AnswerRecord
		var verdict string
		if err := rows.Scan(&rec.Question, &rec.Answer, &rec.Evaluation.Score, &verdict,
			&rec.Evaluation.Feedback, &rec.Attempt, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan report question: %w", err)
		}
		rec.Evaluation.Verdict = models.Verdict(verdict)
		r.Questions = append(r.Questions, rec)
	}
	return r, rows.Err()
}

// ListReports returns reports ordered newest first.
func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]*models.Report, error) {
	query := `SELECT id, session_id, role, category, difficulty,
		total_time_minutes, questions_total, questions_attempted, questions_answered,
		questions_skipped, hints_used, success_rate, summary, overall, generated_at
		FROM reports ORDER BY generated_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// DeleteReport removes a report and its transcript rows.
func (s *SQLiteStore) DeleteReport(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("report not found")
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	var r models.Report
	var category, difficulty string
	err := row.Scan(&r.ID, &r.SessionID, &r.Info.Role, &category, &difficulty,
		&r.Info.TotalTimeMinutes, &r.Info.QuestionsTotal, &r.Info.QuestionsAttempted,
		&r.Info.QuestionsAnswered, &r.Info.QuestionsSkipped, &r.Info.HintsUsed,
		&r.Info.SuccessRate, &r.Summary, &r.Overall, &r.GeneratedAt)
	if err != nil {
		return nil, err
	}
	r.Info.Category = models.Category(category)
	r.Info.Difficulty = models.Difficulty(difficulty)
	return &r, nil
}
