package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// NopQuerier is a DBTX stand-in for fakes that never touch SQL.
type NopQuerier struct{}

func (NopQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (NopQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (NopQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

var _ interfaces.DBTX = NopQuerier{}

// MemStore is an in-memory implementation of the story and job repositories
// plus the transaction manager. WithTransaction snapshots the whole store
// and restores it when the wrapped function fails, mirroring the rollback
// semantics the real store provides.
type MemStore struct {
	mu      sync.Mutex
	Stories map[uuid.UUID]*models.Story
	Nodes   map[uuid.UUID]*models.StoryNode
	Jobs    map[uuid.UUID]*models.StoryJob

	// FailNodeCreateAt makes the Nth CreateNode call fail (1-based);
	// zero disables the failure.
	FailNodeCreateAt int
	nodeCreates      int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		Stories: make(map[uuid.UUID]*models.Story),
		Nodes:   make(map[uuid.UUID]*models.StoryNode),
		Jobs:    make(map[uuid.UUID]*models.StoryJob),
	}
}

var (
	_ interfaces.StoryRepository    = (*MemStore)(nil)
	_ interfaces.StoryJobRepository = (*MemStore)(nil)
	_ interfaces.TxManager          = (*MemStore)(nil)
)

func (s *MemStore) CreateStory(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now().UTC()
	}
	cp := *story
	s.Stories[story.ID] = &cp
	return nil
}

func (s *MemStore) GetStoryByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	story, ok := s.Stories[id]
	if !ok {
		return nil, models.ErrStoryNotFound
	}
	cp := *story
	return &cp, nil
}

func (s *MemStore) CreateNode(ctx context.Context, querier interfaces.DBTX, node *models.StoryNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeCreates++
	if s.FailNodeCreateAt > 0 && s.nodeCreates == s.FailNodeCreateAt {
		return fmt.Errorf("simulated store failure on node create %d", s.nodeCreates)
	}
	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}
	cp := *node
	cp.Options = append([]models.StoryOption(nil), node.Options...)
	s.Nodes[node.ID] = &cp
	return nil
}

func (s *MemStore) UpdateNodeOptions(ctx context.Context, querier interfaces.DBTX, nodeID uuid.UUID, options []models.StoryOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.Nodes[nodeID]
	if !ok {
		return models.ErrNotFound
	}
	node.Options = append([]models.StoryOption(nil), options...)
	return nil
}

func (s *MemStore) ListNodesByStoryID(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) ([]*models.StoryNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var nodes []*models.StoryNode
	for _, node := range s.Nodes {
		if node.StoryID == storyID {
			cp := *node
			cp.Options = append([]models.StoryOption(nil), node.Options...)
			nodes = append(nodes, &cp)
		}
	}
	return nodes, nil
}

func (s *MemStore) DeleteStory(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Stories[id]; !ok {
		return models.ErrStoryNotFound
	}
	delete(s.Stories, id)
	for nodeID, node := range s.Nodes {
		if node.StoryID == id {
			delete(s.Nodes, nodeID)
		}
	}
	return nil
}

func (s *MemStore) Create(ctx context.Context, querier interfaces.DBTX, job *models.StoryJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	cp := *job
	s.Jobs[job.ID] = &cp
	return nil
}

func (s *MemStore) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.StoryJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.Jobs[id]
	if !ok {
		return nil, models.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *MemStore) ListBySessionID(ctx context.Context, querier interfaces.DBTX, sessionID string) ([]*models.StoryJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []*models.StoryJob
	for _, job := range s.Jobs {
		if job.SessionID == sessionID {
			cp := *job
			jobs = append(jobs, &cp)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (s *MemStore) MarkProcessing(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	return s.updateJob(id, func(job *models.StoryJob) {
		job.Status = models.JobStatusProcessing
	})
}

func (s *MemStore) MarkCompleted(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, storyID uuid.UUID) error {
	return s.updateJob(id, func(job *models.StoryJob) {
		now := time.Now().UTC()
		job.Status = models.JobStatusCompleted
		job.StoryID = &storyID
		job.CompletedAt = &now
	})
}

func (s *MemStore) MarkFailed(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, errMsg string) error {
	return s.updateJob(id, func(job *models.StoryJob) {
		now := time.Now().UTC()
		job.Status = models.JobStatusFailed
		job.Error = &errMsg
		job.CompletedAt = &now
	})
}

func (s *MemStore) updateJob(id uuid.UUID, update func(*models.StoryJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.Jobs[id]
	if !ok {
		return models.ErrJobNotFound
	}
	update(job)
	return nil
}

// WithTransaction emulates transactional rollback by snapshotting story and
// node state before running fn and restoring it on failure.
func (s *MemStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, querier interfaces.DBTX) error) error {
	s.mu.Lock()
	storiesBackup := make(map[uuid.UUID]*models.Story, len(s.Stories))
	for id, story := range s.Stories {
		cp := *story
		storiesBackup[id] = &cp
	}
	nodesBackup := make(map[uuid.UUID]*models.StoryNode, len(s.Nodes))
	for id, node := range s.Nodes {
		cp := *node
		cp.Options = append([]models.StoryOption(nil), node.Options...)
		nodesBackup[id] = &cp
	}
	s.mu.Unlock()

	if err := fn(ctx, NopQuerier{}); err != nil {
		s.mu.Lock()
		s.Stories = storiesBackup
		s.Nodes = nodesBackup
		s.mu.Unlock()
		return err
	}
	return nil
}
