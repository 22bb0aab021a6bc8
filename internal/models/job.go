package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks the lifecycle of one generation request.
// Matches the ENUM 'job_status' in the database.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// StoryJob records one background generation request. StoryID is set only
// on success, Error only on failure; CompletedAt is set on either terminal
// outcome.
type StoryJob struct {
	ID          uuid.UUID  `json:"job_id" db:"id"`
	SessionID   string     `json:"session_id" db:"session_id"`
	Theme       string     `json:"theme" db:"theme"`
	Status      JobStatus  `json:"status" db:"status"`
	StoryID     *uuid.UUID `json:"story_id,omitempty" db:"story_id"`
	Error       *string    `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
