package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"adventure-server/internal/config"
	"adventure-server/internal/handler"
	"adventure-server/internal/mocks"
	"adventure-server/internal/models"
	"adventure-server/internal/service"
	"adventure-server/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const storyJSON = `{
	"title": "The Lighthouse Keeper",
	"rootNode": {
		"content": "The lamp has gone dark.",
		"isEnding": false,
		"isWinningEnding": false,
		"options": [
			{
				"text": "Climb the stairs",
				"nextNode": {"content": "You relight the lamp.", "isEnding": true, "isWinningEnding": true}
			}
		]
	}
}`

type testEnv struct {
	app    *gin.Engine
	store  *mocks.MemStore
	mockAI *mocks.MockAIClient
	runner *worker.Runner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := mocks.NewMemStore()
	mockAI := mocks.NewMockAIClient(t)
	nopLogger := zap.NewNop()
	cfg := &config.Config{StoryMaxDepth: 3, StoryMaxOptions: 3}

	expander := service.NewTreeExpander(store, nopLogger)
	generator := service.NewStoryGenerator(mockAI, store, expander, cfg, nopLogger)
	assembler := service.NewTreeAssembler(store, nopLogger)
	runner := worker.NewRunner(mocks.NopQuerier{}, store, generator, store, 1, nopLogger)

	app := gin.New()
	h := handler.New(mocks.NopQuerier{}, store, store, assembler, runner, nopLogger)
	h.RegisterRoutes(app)

	return &testEnv{app: app, store: store, mockAI: mockAI, runner: runner}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, req)
	return rec
}

func TestCreateStory(t *testing.T) {
	env := newTestEnv(t)
	env.mockAI.On("GenerateStoryJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(storyJSON, nil).Once()

	body, _ := json.Marshal(models.CreateStoryRequest{Theme: "pirates"})
	req := httptest.NewRequest(http.MethodPost, "/stories/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := env.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.StoryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, uuid.Nil, resp.JobID)
	assert.Equal(t, models.JobStatusPending, resp.Status)

	// A session cookie is issued when the request carries none.
	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.NotEmpty(t, sessionCookie.Value)

	require.NoError(t, env.runner.Shutdown(context.Background()))

	job, err := env.store.GetByID(context.Background(), mocks.NopQuerier{}, resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, sessionCookie.Value, job.SessionID)
}

func TestCreateStory_JobPersistFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	nopLogger := zap.NewNop()

	store := mocks.NewMemStore()
	mockAI := mocks.NewMockAIClient(t)
	mockJobs := mocks.NewMockStoryJobRepository(t)
	cfg := &config.Config{StoryMaxDepth: 3, StoryMaxOptions: 3}

	expander := service.NewTreeExpander(store, nopLogger)
	generator := service.NewStoryGenerator(mockAI, store, expander, cfg, nopLogger)
	assembler := service.NewTreeAssembler(store, nopLogger)
	runner := worker.NewRunner(mocks.NopQuerier{}, store, generator, mockJobs, 1, nopLogger)

	app := gin.New()
	handler.New(mocks.NopQuerier{}, store, mockJobs, assembler, runner, nopLogger).RegisterRoutes(app)

	mockJobs.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("insert failed")).Once()

	body, _ := json.Marshal(models.CreateStoryRequest{Theme: "pirates"})
	req := httptest.NewRequest(http.MethodPost, "/stories/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	mockAI.AssertNotCalled(t, "GenerateStoryJSON", mock.Anything, mock.Anything, mock.Anything)
	mockJobs.AssertExpectations(t)
}

func TestCreateStory_MissingTheme(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/stories/create", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	rec := env.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.mockAI.AssertNotCalled(t, "GenerateStoryJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateStory_ReusesExistingSession(t *testing.T) {
	env := newTestEnv(t)
	env.mockAI.On("GenerateStoryJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(storyJSON, nil).Once()

	body, _ := json.Marshal(models.CreateStoryRequest{Theme: "pirates"})
	req := httptest.NewRequest(http.MethodPost, "/stories/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "existing-session"})

	rec := env.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, env.runner.Shutdown(context.Background()))

	var resp models.StoryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	job, err := env.store.GetByID(context.Background(), mocks.NopQuerier{}, resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, "existing-session", job.SessionID)
}

func TestGetCompleteStory(t *testing.T) {
	env := newTestEnv(t)
	env.mockAI.On("GenerateStoryJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(storyJSON, nil).Once()

	body, _ := json.Marshal(models.CreateStoryRequest{Theme: "pirates"})
	req := httptest.NewRequest(http.MethodPost, "/stories/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, env.runner.Shutdown(context.Background()))

	var jobResp models.StoryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobResp))
	job, err := env.store.GetByID(context.Background(), mocks.NopQuerier{}, jobResp.JobID)
	require.NoError(t, err)
	require.NotNil(t, job.StoryID)

	getReq := httptest.NewRequest(http.MethodGet, "/stories/"+job.StoryID.String()+"/complete", nil)
	getRec := env.do(getReq)
	require.Equal(t, http.StatusOK, getRec.Code)

	var complete models.CompleteStoryResponse
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &complete))
	assert.Equal(t, *job.StoryID, complete.ID)
	assert.Equal(t, "The Lighthouse Keeper", complete.Title)
	require.NotNil(t, complete.RootNode)
	assert.Len(t, complete.AllNodes, 2)
}

func TestGetCompleteStory_NotFound(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/stories/"+uuid.NewString()+"/complete", nil)
	rec := env.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCompleteStory_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/stories/not-a-uuid/complete", nil)
	rec := env.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobStatus(t *testing.T) {
	env := newTestEnv(t)

	job := &models.StoryJob{SessionID: "session-1", Theme: "pirates", Status: models.JobStatusPending}
	require.NoError(t, env.store.Create(context.Background(), mocks.NopQuerier{}, job))

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID.String(), nil)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.StoryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, job.ID, resp.JobID)
	assert.Equal(t, models.JobStatusPending, resp.Status)
}

func TestListSessionJobs(t *testing.T) {
	env := newTestEnv(t)

	for _, theme := range []string{"pirates", "dragons"} {
		job := &models.StoryJob{SessionID: "session-1", Theme: theme, Status: models.JobStatusPending}
		require.NoError(t, env.store.Create(context.Background(), mocks.NopQuerier{}, job))
	}
	other := &models.StoryJob{SessionID: "session-2", Theme: "robots", Status: models.JobStatusPending}
	require.NoError(t, env.store.Create(context.Background(), mocks.NopQuerier{}, other))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-1"})
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []*models.StoryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	for _, job := range resp {
		assert.NotEqual(t, "robots", job.Theme)
	}
}

func TestListSessionJobs_NoSession(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestGetJobStatus_NotFound(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+uuid.NewString(), nil)
	rec := env.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
