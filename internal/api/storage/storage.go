package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/speaklab/retell-be/internal/api/domain"
	"github.com/speaklab/retell-be/internal/api/model"
	sqliteclient "github.com/speaklab/retell-be/shared/sqlite"
)

// Storage is the job store. Every operation is a single short-lived statement
// against the connection pool; there is no cross-call transaction state.
type Storage struct {
	db *sqlx.DB
}

func NewStorage(client *sqliteclient.Client) *Storage {
	return &Storage{
		db: client.GetDB(),
	}
}

// CreateJob inserts a new PENDING row. A duplicate (round_id, card_id) pair is
// rejected with domain.ErrDuplicateJob; the existing row is never touched.
func (s *Storage) CreateJob(ctx context.Context, roundID, cardID string) error {
	query := `
		INSERT INTO jobs (round_id, card_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query, roundID, cardID, domain.JobStatusPending, now, now)
	if err != nil {
		if isConstraintViolation(err) {
			return domain.ErrDuplicateJob
		}
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// MarkProcessing unconditionally moves the job to PROCESSING. A missing row is
// a no-op, not an error.
func (s *Storage) MarkProcessing(ctx context.Context, roundID, cardID string) error {
	query := `
		UPDATE jobs
		SET status = ?, updated_at = ?
		WHERE round_id = ? AND card_id = ?
	`

	_, err := s.db.ExecContext(ctx, query, domain.JobStatusProcessing, time.Now().UTC(), roundID, cardID)
	if err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	return nil
}

// CompleteJob stores the result payload and moves the job to COMPLETED.
// A stale error_message from a previous write is left as-is.
func (s *Storage) CompleteJob(ctx context.Context, roundID, cardID string, result []byte) error {
	query := `
		UPDATE jobs
		SET status = ?, result = ?, updated_at = ?
		WHERE round_id = ? AND card_id = ?
	`

	_, err := s.db.ExecContext(ctx, query, domain.JobStatusCompleted, string(result), time.Now().UTC(), roundID, cardID)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// FailJob stores the error message and moves the job to FAILED.
func (s *Storage) FailJob(ctx context.Context, roundID, cardID, errorMessage string) error {
	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, updated_at = ?
		WHERE round_id = ? AND card_id = ?
	`

	_, err := s.db.ExecContext(ctx, query, domain.JobStatusFailed, errorMessage, time.Now().UTC(), roundID, cardID)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}

	return nil
}

// GetJob returns the row for (round_id, card_id) or domain.ErrJobNotFound.
func (s *Storage) GetJob(ctx context.Context, roundID, cardID string) (*model.Job, error) {
	query := `
		SELECT round_id, card_id, status, result, error_message, created_at, updated_at
		FROM jobs
		WHERE round_id = ? AND card_id = ?
	`

	var job model.Job
	err := s.db.GetContext(ctx, &job, query, roundID, cardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// ListCompletedJobs returns all COMPLETED rows for a round. Order is not
// significant to callers.
func (s *Storage) ListCompletedJobs(ctx context.Context, roundID string) ([]model.Job, error) {
	query := `
		SELECT round_id, card_id, status, result, error_message, created_at, updated_at
		FROM jobs
		WHERE round_id = ? AND status = ?
	`

	var jobs []model.Job
	err := s.db.SelectContext(ctx, &jobs, query, roundID, domain.JobStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed jobs: %w", err)
	}

	return jobs, nil
}

// isConstraintViolation reports whether err is a primary-key or unique
// constraint failure from the sqlite driver.
func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT:
		return true
	}
	return false
}
