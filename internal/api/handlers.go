package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"go.uber.org/zap"
)

type generateRequest struct {
	VideoURL string `json:"videoURL" validate:"required,url"`
}

type generateResponse struct {
	JobID  string `json:"jobId"`
	State  string `json:"state"`
	Reused bool   `json:"reused"`
}

type statusResponse struct {
	JobID    string      `json:"jobId"`
	State    string      `json:"state"`
	Progress string      `json:"progress"`
	Attempt  int         `json:"attempt"`
	Data     *statusData `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type statusData struct {
	GifURL string `json:"gifUrl"`
}

// HandleGenerateThumbnail accepts a submission and answers 202 whether the
// job is new or deduplicated; the caller polls status either way.
func (s *Server) HandleGenerateThumbnail(c echo.Context) error {
	ctx := c.Request().Context()

	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "videoURL must be a valid URL")
	}

	job, reused, err := s.submit.Execute(ctx, req.VideoURL)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidURL) {
			return echo.NewHTTPError(http.StatusBadRequest, "videoURL must be a valid URL")
		}
		s.logger.Error("submission failed", zap.String("url", req.VideoURL), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not submit job")
	}

	return c.JSON(http.StatusAccepted, generateResponse{
		JobID:  job.ID.String(),
		State:  string(job.State),
		Reused: reused,
	})
}

// HandleThumbnailStatus reports the current state of a job. Unknown and
// malformed IDs are both a plain 404.
func (s *Server) HandleThumbnailStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "job not found")
	}

	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "job not found")
	}

	resp := statusResponse{
		JobID:    job.ID.String(),
		State:    string(job.State),
		Progress: job.Progress(),
		Attempt:  job.Attempt,
	}
	switch job.State {
	case entity.JobStateCompleted:
		resp.Data = &statusData{GifURL: s.baseURL + "/" + job.ArtifactKey}
	case entity.JobStateFailed:
		resp.Error = job.FailureReason
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
