package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"github.com/syamcode/thumbnail-generator/internal/usecase"
	"go.uber.org/zap/zaptest"
)

type fakeRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.Job
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{jobs: make(map[uuid.UUID]*entity.Job)}
}

func (r *fakeRepo) Create(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeRepo) Update(_ context.Context, job *entity.Job) error {
	return r.Create(context.Background(), job)
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	return job, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *fakePublisher) PublishRequest(_ context.Context, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeRepo, *fakePublisher) {
	t.Helper()
	repo := newFakeRepo()
	pub := &fakePublisher{}
	logger := zaptest.NewLogger(t)
	submit := usecase.NewSubmitThumbnailUseCase(repo, newFakeCache(), pub, logger, usecase.SubmitThumbnailConfig{
		MaxAttempts: 3,
		DedupTTL:    time.Hour,
	})
	return NewServer(submit, repo, logger, "http://localhost:3000/gifs", t.TempDir()), repo, pub
}

func postJSON(srv *Server, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func TestHandleGenerateThumbnail_Accepts(t *testing.T) {
	srv, repo, pub := newTestServer(t)

	rec := postJSON(srv, "/api/generate-thumbnail", `{"videoURL":"https://example.com/video.mp4"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp struct {
		JobID  string `json:"jobId"`
		State  string `json:"state"`
		Reused bool   `json:"reused"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	id, err := uuid.Parse(resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, "queued", resp.State)
	assert.False(t, resp.Reused)

	job, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/video.mp4", job.SourceURL)
	assert.Len(t, pub.messages, 1)
}

func TestHandleGenerateThumbnail_DeduplicatesRepeatSubmission(t *testing.T) {
	srv, _, pub := newTestServer(t)

	first := postJSON(srv, "/api/generate-thumbnail", `{"videoURL":"https://example.com/video.mp4"}`)
	second := postJSON(srv, "/api/generate-thumbnail", `{"videoURL":"https://example.com/video.mp4"}`)

	require.Equal(t, http.StatusAccepted, first.Code)
	require.Equal(t, http.StatusAccepted, second.Code)

	var a, b struct {
		JobID  string `json:"jobId"`
		Reused bool   `json:"reused"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

	assert.Equal(t, a.JobID, b.JobID)
	assert.True(t, b.Reused)
	assert.Len(t, pub.messages, 1)
}

func TestHandleGenerateThumbnail_RejectsBadInput(t *testing.T) {
	srv, _, _ := newTestServer(t)

	cases := []string{
		`{}`,
		`{"videoURL":""}`,
		`{"videoURL":"not a url"}`,
		`not json`,
	}
	for _, body := range cases {
		rec := postJSON(srv, "/api/generate-thumbnail", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHandleThumbnailStatus(t *testing.T) {
	srv, repo, _ := newTestServer(t)

	completed := entity.NewJob("https://example.com/done.mp4", 3)
	completed.MarkActive()
	completed.MarkCompleted(completed.ID.String() + ".gif")
	require.NoError(t, repo.Create(context.Background(), completed))

	failed := entity.NewJob("https://example.com/broken.mp4", 3)
	failed.Attempt = 3
	failed.MarkFailed("fetch: connection reset")
	require.NoError(t, repo.Create(context.Background(), failed))

	t.Run("completed includes gif url", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/thumbnail-status/"+completed.ID.String(), nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			State string `json:"state"`
			Data  struct {
				GifURL string `json:"gifUrl"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "completed", resp.State)
		assert.Equal(t, "http://localhost:3000/gifs/"+completed.ID.String()+".gif", resp.Data.GifURL)
	})

	t.Run("failed exposes reason", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/thumbnail-status/"+failed.ID.String(), nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			State string `json:"state"`
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "failed", resp.State)
		assert.Equal(t, "fetch: connection reset", resp.Error)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/thumbnail-status/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/thumbnail-status/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
