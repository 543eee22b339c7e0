package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/franckalain/lymegrove/internal/database/migrations"
	"github.com/franckalain/lymegrove/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a scan does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DB interface defines the methods our database should implement
type DB interface {
	SaveScan(ctx context.Context, scan *models.Scan) (string, error)
	GetScan(ctx context.Context, id, userID string) (*models.Scan, error)
	ScanExists(ctx context.Context, id string) (bool, error)
	ListScans(ctx context.Context, userID string, limit int) ([]*models.Scan, error)
	CountScans(ctx context.Context, userID string) (int, error)
	DeleteScan(ctx context.Context, id, userID string) error
	SaveFeedback(ctx context.Context, rec *models.FeedbackRecord) error
	Close() error
}

// SQLiteDB implements the DB interface
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection and migrates it
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error setting busy timeout: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating schema: %w", err)
	}
	if err := migrations.CheckStatus(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteDB{db: db}, nil
}

// SaveScan inserts a scan, assigning an id when it has none
func (s *SQLiteDB) SaveScan(ctx context.Context, scan *models.Scan) (string, error) {
	if scan.ID == "" {
		scan.ID = uuid.New().String()
	}
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = time.Now()
	}

	result, err := json.Marshal(scan.Result)
	if err != nil {
		return "", fmt.Errorf("error encoding analysis result: %w", err)
	}

	query := `
		INSERT INTO plant_scans (
			id, user_id, filename, content_type, analysis_result,
			confidence_score, disease_detected, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		scan.ID, scan.UserID, scan.Filename, scan.ContentType, string(result),
		scan.ConfidenceScore, nullString(scan.DiseaseDetected), formatTime(scan.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("error inserting scan: %w", err)
	}
	return scan.ID, nil
}

// GetScan retrieves a scan owned by userID
func (s *SQLiteDB) GetScan(ctx context.Context, id, userID string) (*models.Scan, error) {
	query := `
		SELECT id, user_id, filename, content_type, analysis_result,
			confidence_score, disease_detected, created_at
		FROM plant_scans WHERE id = ? AND user_id = ?
	`
	scan, err := scanRow(s.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return scan, nil
}

// ScanExists reports whether any user owns a scan with id
func (s *SQLiteDB) ScanExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM plant_scans WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking scan: %w", err)
	}
	return n > 0, nil
}

// ListScans returns the user's most recent scans, newest first
func (s *SQLiteDB) ListScans(ctx context.Context, userID string, limit int) ([]*models.Scan, error) {
	query := `
		SELECT id, user_id, filename, content_type, analysis_result,
			confidence_score, disease_detected, created_at
		FROM plant_scans
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing scans: %w", err)
	}
	defer rows.Close()

	scans := []*models.Scan{}
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// CountScans returns how many scans the user owns
func (s *SQLiteDB) CountScans(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM plant_scans WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting scans: %w", err)
	}
	return n, nil
}

// DeleteScan removes a scan owned by userID. Deleting a missing scan is not an error.
func (s *SQLiteDB) DeleteScan(ctx context.Context, id, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM plant_scans WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting scan: %w", err)
	}
	return nil
}

// SaveFeedback inserts a feedback record
func (s *SQLiteDB) SaveFeedback(ctx context.Context, rec *models.FeedbackRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO feedback (
			id, scan_id, is_accurate, feedback_type, user_comments, correct_diagnosis, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.ScanID, rec.IsAccurate, string(rec.FeedbackType),
		nullString(rec.UserComments), nullString(rec.CorrectDiagnosis), formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("error inserting feedback: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*models.Scan, error) {
	var (
		scan      models.Scan
		result    string
		disease   sql.NullString
		createdAt string
	)
	err := row.Scan(
		&scan.ID, &scan.UserID, &scan.Filename, &scan.ContentType, &result,
		&scan.ConfidenceScore, &disease, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	scan.Result = &models.AnalysisResult{}
	if err := json.Unmarshal([]byte(result), scan.Result); err != nil {
		return nil, fmt.Errorf("error decoding analysis result of scan %s: %w", scan.ID, err)
	}
	scan.DiseaseDetected = disease.String

	scan.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("error parsing created_at of scan %s: %w", scan.ID, err)
	}
	return &scan, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
