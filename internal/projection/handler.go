package projection

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/groan-lab/groan/internal/core/errors"
	"github.com/groan-lab/groan/internal/core/history"
	"github.com/groan-lab/groan/internal/core/storage"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/groups", s.HandleGroups)

	titles := r.Group("/v1/titles/:title")
	titles.GET("/revisions", s.HandleRevisions)
	titles.GET("/series", s.HandleSeries)
	titles.GET("/average", s.HandleAverage)
}

// HandleGroups handles GET /v1/groups
func (s *Service) HandleGroups(c *gin.Context) {
	c.JSON(http.StatusOK, s.Groups())
}

// HandleRevisions handles GET /v1/titles/:title/revisions
// Optional query parameters: start, end
func (s *Service) HandleRevisions(c *gin.Context) {
	var query WindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		invalidQuery(c, err)
		return
	}

	resp, err := s.Revisions(c.Request.Context(), c.Param("title"), query)
	if err != nil {
		writeError(c, err, "Failed to load revisions")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSeries handles GET /v1/titles/:title/series
func (s *Service) HandleSeries(c *gin.Context) {
	resp, err := s.Series(c.Request.Context(), c.Param("title"))
	if err != nil {
		writeError(c, err, "Failed to load series")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAverage handles GET /v1/titles/:title/average
// Query parameters: start, end (RFC 3339)
func (s *Service) HandleAverage(c *gin.Context) {
	var req AverageQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalidQuery(c, err)
		return
	}
	req.Title = c.Param("title")

	resp, err := s.Average(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to compute average size")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func invalidQuery(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidQueryError,
		Message:   "Invalid query parameters",
		Details:   err.Error(),
	})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error, message string) {
	status, errType := http.StatusInternalServerError, httperr.HttpInternalError
	switch {
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, history.ErrDegenerateRange):
		status, errType = http.StatusBadRequest, httperr.HttpInvalidQueryError
	case errors.Is(err, storage.ErrNotFound):
		status, errType = http.StatusNotFound, httperr.HttpTitleNotFound
	case errors.Is(err, history.ErrEmptyHistory):
		status, errType = http.StatusNotFound, httperr.HttpEmptyHistoryError
	case errors.Is(err, history.ErrEmptyRange):
		status, errType = http.StatusNotFound, httperr.HttpEmptyRangeError
	default:
		slog.Error("[Projection] Request failed", "path", c.Request.URL.Path, "error", err)
	}

	c.JSON(status, httperr.ErrorResponse{
		ErrorType: errType,
		Message:   message,
		Details:   err.Error(),
	})
}
