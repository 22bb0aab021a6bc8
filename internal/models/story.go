package models

import (
	"time"

	"github.com/google/uuid"
)

// Story is the aggregate root of one generated adventure.
// Created once at the end of a successful generation and never updated.
type Story struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	SessionID string    `json:"session_id" db:"session_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StoryOption is one outgoing edge of a node. NodeID references the
// persisted child node within the same story.
type StoryOption struct {
	Text   string    `json:"text"`
	NodeID uuid.UUID `json:"node_id"`
}

// StoryNode is a single narrative beat. Options is stored as a JSONB
// array; it is empty exactly when IsEnding is true. IsWinning is only
// meaningful on ending nodes.
type StoryNode struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	StoryID   uuid.UUID     `json:"story_id" db:"story_id"`
	Content   string        `json:"content" db:"content"`
	IsRoot    bool          `json:"is_root" db:"is_root"`
	IsEnding  bool          `json:"is_ending" db:"is_ending"`
	IsWinning bool          `json:"is_winning" db:"is_winning"`
	Options   []StoryOption `json:"options" db:"options"`
}
