package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/syamcode/thumbnail-generator/internal/domain/port"
	"github.com/syamcode/thumbnail-generator/internal/usecase"
	"go.uber.org/zap"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Server is the public HTTP surface: submit a URL, poll job status, and
// download finished GIFs.
type Server struct {
	*echo.Echo
	submit  *usecase.SubmitThumbnailUseCase
	repo    port.JobRepository
	logger  *zap.Logger
	baseURL string
}

func NewServer(
	submit *usecase.SubmitThumbnailUseCase,
	repo port.JobRepository,
	logger *zap.Logger,
	baseURL string,
	gifDir string,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("64K"))

	s := &Server{
		Echo:    e,
		submit:  submit,
		repo:    repo,
		logger:  logger,
		baseURL: baseURL,
	}

	e.POST("/api/generate-thumbnail", s.HandleGenerateThumbnail)
	e.GET("/api/thumbnail-status/:jobId", s.HandleThumbnailStatus)
	e.GET("/healthz", s.HandleHealth)
	e.Static("/gifs", gifDir)

	return s
}
