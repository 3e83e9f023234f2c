package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dataveil/dataveil/fileio"
)

// respondError writes a JSON error body with the given status.
func (s *Server) respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// respondInternal logs the underlying error and returns a generic 500 so
// internals never leak to clients.
func (s *Server) respondInternal(c *gin.Context, msg string, err error) {
	s.logger.Error(msg, "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// respondLoadError maps dataset load failures: an unsupported format is a
// client error, anything else is internal.
func (s *Server) respondLoadError(c *gin.Context, err error) {
	if errors.Is(err, fileio.ErrUnsupportedFormat) {
		s.respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.respondInternal(c, "failed to read dataset", err)
}
