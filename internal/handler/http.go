// Package handler exposes the HTTP API: story creation, completed-story
// retrieval and job status polling. Generation itself runs in the background
// worker; handlers only schedule it and read its results.
package handler

import (
	"errors"
	"net/http"

	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"
	"adventure-server/internal/service"
	"adventure-server/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionCookieName = "session_id"

// Handler holds the dependencies of the HTTP layer.
type Handler struct {
	db        interfaces.DBTX
	storyRepo interfaces.StoryRepository
	jobRepo   interfaces.StoryJobRepository
	assembler *service.TreeAssembler
	runner    *worker.Runner
	logger    *zap.Logger
}

// New creates the HTTP handler.
func New(
	db interfaces.DBTX,
	storyRepo interfaces.StoryRepository,
	jobRepo interfaces.StoryJobRepository,
	assembler *service.TreeAssembler,
	runner *worker.Runner,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		db:        db,
		storyRepo: storyRepo,
		jobRepo:   jobRepo,
		assembler: assembler,
		runner:    runner,
		logger:    logger.Named("HTTPHandler"),
	}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	stories := router.Group("/stories")
	{
		stories.POST("/create", h.createStory)
		stories.GET("/:story_id/complete", h.getCompleteStory)
	}

	jobs := router.Group("/jobs")
	{
		jobs.GET("", h.listSessionJobs)
		jobs.GET("/:job_id", h.getJobStatus)
	}
}

// createStory persists a pending job, schedules background generation and
// returns the job view. The session cookie is issued here when absent.
func (h *Handler) createStory(c *gin.Context) {
	var req models.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "theme is required"})
		return
	}

	sessionID := h.getOrCreateSessionID(c)

	job := &models.StoryJob{
		SessionID: sessionID,
		Theme:     req.Theme,
		Status:    models.JobStatusPending,
	}
	if err := h.jobRepo.Create(c.Request.Context(), h.db, job); err != nil {
		h.logger.Error("Failed to create story job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": models.ErrInternalServer.Error()})
		return
	}

	h.runner.Schedule(job.ID, sessionID, req.Theme)

	c.JSON(http.StatusCreated, models.NewStoryJobResponse(job))
}

// getCompleteStory returns the fully resolved story tree by story ID.
func (h *Handler) getCompleteStory(c *gin.Context) {
	storyID, err := uuid.Parse(c.Param("story_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story id"})
		return
	}

	ctx := c.Request.Context()
	story, err := h.storyRepo.GetStoryByID(ctx, h.db, storyID)
	if err != nil {
		if errors.Is(err, models.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		h.logger.Error("Failed to load story", zap.Error(err), zap.String("storyID", storyID.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": models.ErrInternalServer.Error()})
		return
	}

	complete, err := h.assembler.Assemble(ctx, h.db, story)
	if err != nil {
		// A missing root is an integrity fault of a persisted story, never a
		// client-correctable condition.
		h.logger.Error("Failed to assemble story", zap.Error(err), zap.String("storyID", storyID.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": models.ErrInternalServer.Error()})
		return
	}

	c.JSON(http.StatusOK, complete)
}

// getJobStatus returns the current state of a generation job.
func (h *Handler) getJobStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.jobRepo.GetByID(c.Request.Context(), h.db, jobID)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("Failed to load job", zap.Error(err), zap.String("jobID", jobID.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": models.ErrInternalServer.Error()})
		return
	}

	c.JSON(http.StatusOK, models.NewStoryJobResponse(job))
}

// listSessionJobs returns the jobs created by the caller's session, newest
// first. A request without a session cookie simply gets an empty list.
func (h *Handler) listSessionJobs(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil || sessionID == "" {
		c.JSON(http.StatusOK, []*models.StoryJobResponse{})
		return
	}

	jobs, err := h.jobRepo.ListBySessionID(c.Request.Context(), h.db, sessionID)
	if err != nil {
		h.logger.Error("Failed to list session jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": models.ErrInternalServer.Error()})
		return
	}

	resp := make([]*models.StoryJobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, models.NewStoryJobResponse(job))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil || sessionID == "" {
		sessionID = uuid.NewString()
	}
	c.SetCookie(sessionCookieName, sessionID, 0, "/", "", false, true)
	return sessionID
}
