package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/argyll/editor/internal/operation"
	"github.com/kode4food/argyll/editor/internal/store"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/builder"
	"github.com/kode4food/argyll/editor/pkg/log"
)

const (
	flowIDPrefix       = "flow"
	defaultDisplayName = "Untitled"
)

func (s *Server) listFlows(c *gin.Context) {
	ids, err := s.store.ListFlows(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (s *Server) createFlow(c *gin.Context) {
	var req api.CreateFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("invalid request body: %v", err),
			Status: http.StatusBadRequest,
		})
		return
	}
	if req.ID == "" {
		req.ID = builder.NewFlowID(flowIDPrefix)
	}
	if req.DisplayName == "" {
		req.DisplayName = defaultDisplayName
	}

	lock := s.flowLock(req.ID)
	lock.Lock()
	defer lock.Unlock()

	ctx := c.Request.Context()
	_, err := s.store.GetFlow(ctx, req.ID)
	if err == nil {
		writeError(c, fmt.Errorf("%w: %s", ErrFlowExists, req.ID))
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		writeError(c, err)
		return
	}

	v := builder.NewFlow(req.ID).
		WithDisplayName(req.DisplayName).
		WithUpdatedAt(time.Now()).
		Build()
	if err := s.store.PutFlow(ctx, v); err != nil {
		writeError(c, err)
		return
	}

	slog.Info("Flow created",
		log.FlowID(v.FlowID),
		log.VersionID(v.ID))
	c.JSON(http.StatusCreated, api.VersionResponse{Version: v})
}

func (s *Server) getFlow(c *gin.Context) {
	v, err := s.store.GetFlow(c.Request.Context(), api.FlowID(c.Param("flowID")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.VersionResponse{Version: v})
}

func (s *Server) applyOperation(c *gin.Context) {
	flowID := api.FlowID(c.Param("flowID"))

	var msg api.OperationMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("invalid operation: %v", err),
			Status: http.StatusBadRequest,
		})
		return
	}

	lock := s.flowLock(flowID)
	lock.Lock()
	defer lock.Unlock()

	ctx := c.Request.Context()
	v, err := s.store.GetFlow(ctx, flowID)
	if err != nil {
		writeError(c, err)
		return
	}

	typ := msg.Operation.OperationType()
	res, err := operation.Apply(v, msg.Operation)
	if err != nil {
		slog.Debug("Operation rejected",
			log.FlowID(flowID),
			log.Operation(typ),
			log.Error(err))
		writeError(c, err)
		return
	}
	res.UpdatedAt = time.Now()

	if err := s.store.PutFlow(ctx, res); err != nil {
		writeError(c, err)
		return
	}

	slog.Info("Operation applied",
		log.FlowID(flowID),
		log.Operation(typ))
	c.JSON(http.StatusOK, api.VersionResponse{Version: res})
}
