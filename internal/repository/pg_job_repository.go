package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.StoryJobRepository = (*pgStoryJobRepository)(nil)

const (
	createJobQuery = `
INSERT INTO story_jobs (id, session_id, theme, status, created_at)
VALUES ($1, $2, $3, $4, $5)`

	getJobByIDQuery = `
SELECT id, session_id, theme, status, story_id, error, created_at, completed_at
FROM story_jobs
WHERE id = $1`

	listJobsBySessionIDQuery = `
SELECT id, session_id, theme, status, story_id, error, created_at, completed_at
FROM story_jobs
WHERE session_id = $1
ORDER BY created_at DESC`

	markJobProcessingQuery = `
UPDATE story_jobs SET status = $2 WHERE id = $1`

	markJobCompletedQuery = `
UPDATE story_jobs SET status = $2, story_id = $3, completed_at = $4 WHERE id = $1`

	markJobFailedQuery = `
UPDATE story_jobs SET status = $2, error = $3, completed_at = $4 WHERE id = $1`
)

type pgStoryJobRepository struct {
	logger *zap.Logger
}

// NewPgStoryJobRepository creates a PostgreSQL-backed job repository.
func NewPgStoryJobRepository(logger *zap.Logger) interfaces.StoryJobRepository {
	return &pgStoryJobRepository{
		logger: logger.Named("PgStoryJobRepo"),
	}
}

// Create inserts a new pending job, assigning identity and creation time
// when unset.
func (r *pgStoryJobRepository) Create(ctx context.Context, querier interfaces.DBTX, job *models.StoryJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	_, err := querier.Exec(ctx, createJobQuery,
		job.ID,
		job.SessionID,
		job.Theme,
		job.Status,
		job.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create story job", zap.Error(err), zap.String("sessionID", job.SessionID))
		return fmt.Errorf("failed to create story job: %w", err)
	}
	r.logger.Info("Story job created", zap.String("jobID", job.ID.String()), zap.String("theme", job.Theme))
	return nil
}

// GetByID retrieves a job by its unique ID.
func (r *pgStoryJobRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.StoryJob, error) {
	job := &models.StoryJob{}
	err := querier.QueryRow(ctx, getJobByIDQuery, id).Scan(
		&job.ID,
		&job.SessionID,
		&job.Theme,
		&job.Status,
		&job.StoryID,
		&job.Error,
		&job.CreatedAt,
		&job.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Story job not found", zap.String("jobID", id.String()))
			return nil, models.ErrJobNotFound
		}
		r.logger.Error("Failed to get story job by ID", zap.Error(err), zap.String("jobID", id.String()))
		return nil, fmt.Errorf("failed to get story job %s: %w", id, err)
	}
	return job, nil
}

// ListBySessionID returns every job created by a session, newest first.
func (r *pgStoryJobRepository) ListBySessionID(ctx context.Context, querier interfaces.DBTX, sessionID string) ([]*models.StoryJob, error) {
	var jobs []*models.StoryJob
	if err := pgxscan.Select(ctx, querier, &jobs, listJobsBySessionIDQuery, sessionID); err != nil {
		r.logger.Error("Failed to list story jobs", zap.Error(err), zap.String("sessionID", sessionID))
		return nil, fmt.Errorf("failed to list jobs for session %s: %w", sessionID, err)
	}
	return jobs, nil
}

// MarkProcessing flips a job to the processing state before generation starts.
func (r *pgStoryJobRepository) MarkProcessing(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	return r.updateStatus(ctx, querier, id, markJobProcessingQuery, models.JobStatusProcessing)
}

// MarkCompleted records the successful terminal outcome: the generated story
// identity and the completion timestamp.
func (r *pgStoryJobRepository) MarkCompleted(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, storyID uuid.UUID) error {
	tag, err := querier.Exec(ctx, markJobCompletedQuery, id, models.JobStatusCompleted, storyID, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to mark job completed", zap.Error(err), zap.String("jobID", id.String()))
		return fmt.Errorf("failed to mark job %s completed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrJobNotFound
	}
	r.logger.Info("Story job completed", zap.String("jobID", id.String()), zap.String("storyID", storyID.String()))
	return nil
}

// MarkFailed records the failed terminal outcome: the error message and the
// completion timestamp.
func (r *pgStoryJobRepository) MarkFailed(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, errMsg string) error {
	tag, err := querier.Exec(ctx, markJobFailedQuery, id, models.JobStatusFailed, errMsg, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to mark job failed", zap.Error(err), zap.String("jobID", id.String()))
		return fmt.Errorf("failed to mark job %s failed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrJobNotFound
	}
	r.logger.Warn("Story job failed", zap.String("jobID", id.String()), zap.String("error", errMsg))
	return nil
}

func (r *pgStoryJobRepository) updateStatus(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, query string, status models.JobStatus) error {
	tag, err := querier.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error("Failed to update job status", zap.Error(err), zap.String("jobID", id.String()), zap.String("status", string(status)))
		return fmt.Errorf("failed to update job %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrJobNotFound
	}
	return nil
}
