package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/log"
)

func (s *Server) getRun(c *gin.Context) {
	rec, err := s.store.GetRun(c.Request.Context(), api.RunID(c.Param("runID")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) putRun(c *gin.Context) {
	id := api.RunID(c.Param("runID"))

	var rec api.ExecutionRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("invalid run record: %v", err),
			Status: http.StatusBadRequest,
		})
		return
	}
	if rec.ID == "" {
		rec.ID = id
	}
	if rec.ID != id {
		writeError(c, fmt.Errorf("%w: %s", ErrRunMismatch, rec.ID))
		return
	}

	if err := s.store.PutRun(c.Request.Context(), &rec); err != nil {
		writeError(c, err)
		return
	}
	s.publishRun(&rec)

	slog.Debug("Run updated",
		log.RunID(rec.ID),
		log.Status(rec.Status))
	c.JSON(http.StatusOK, api.MessageResponse{Message: "run updated"})
}
