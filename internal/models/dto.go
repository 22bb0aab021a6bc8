package models

import (
	"time"

	"github.com/google/uuid"
)

// CreateStoryRequest is the body of POST /stories/create.
type CreateStoryRequest struct {
	Theme string `json:"theme" binding:"required"`
}

// StoryJobResponse is the job view returned by the create and job-status
// endpoints.
type StoryJobResponse struct {
	JobID       uuid.UUID  `json:"job_id"`
	Status      JobStatus  `json:"status"`
	Theme       string     `json:"theme"`
	StoryID     *uuid.UUID `json:"story_id,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewStoryJobResponse converts a persisted job into its client view.
func NewStoryJobResponse(job *StoryJob) *StoryJobResponse {
	return &StoryJobResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Theme:       job.Theme,
		StoryID:     job.StoryID,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
}

// CompleteStoryNodeResponse is the client view of one node. Options carry
// resolved node IDs, so a client can walk the tree through AllNodes without
// further requests.
type CompleteStoryNodeResponse struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	IsEnding  bool          `json:"is_ending"`
	IsWinning bool          `json:"is_winning_ending"`
	Options   []StoryOption `json:"options"`
}

// CompleteStoryResponse is the fully resolved story tree keyed by node ID.
type CompleteStoryResponse struct {
	ID        uuid.UUID                                `json:"id"`
	Title     string                                   `json:"title"`
	SessionID string                                   `json:"session_id"`
	CreatedAt time.Time                                `json:"created_at"`
	RootNode  *CompleteStoryNodeResponse               `json:"root_node"`
	AllNodes  map[uuid.UUID]*CompleteStoryNodeResponse `json:"all_nodes"`
}
