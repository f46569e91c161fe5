package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/argyll/editor/internal/operation"
	"github.com/kode4food/argyll/editor/internal/store"
	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/util"
)

// Server implements the reconciler HTTP API
type Server struct {
	store   store.Store
	runs    topic.Topic[*api.ExecutionRecord]
	runProd topic.Producer[*api.ExecutionRecord]
	flows   map[api.FlowID]*sync.Mutex
	sockets util.Set[*runSocket]
	mu      sync.Mutex
	pubMu   sync.RWMutex
	closed  bool
}

const serviceName = "argyll-editor"

var (
	ErrFlowExists  = errors.New("flow already exists")
	ErrRunMismatch = errors.New("run ID does not match path")
)

// NewServer creates a reconciler backed by st
func NewServer(st store.Store) *Server {
	runs := caravan.NewTopic[*api.ExecutionRecord]()
	return &Server{
		store:   st,
		runs:    runs,
		runProd: runs.NewProducer(),
		flows:   map[api.FlowID]*sync.Mutex{},
		sockets: util.Set[*runSocket]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/v1")
	{
		v1.GET("/flows", s.listFlows)
		v1.POST("/flows", s.createFlow)
		v1.GET("/flows/:flowID", s.getFlow)
		v1.POST("/flows/:flowID/operations", s.applyOperation)

		v1.GET("/runs/:runID", s.getRun)
		v1.PUT("/runs/:runID", s.putRun)
		v1.GET("/runs/:runID/ws", s.handleRunWebSocket)
	}

	return router
}

// Close ends every run stream and stops publishing run updates. Runs
// stored after Close are not streamed
func (s *Server) Close() {
	s.pubMu.Lock()
	if !s.closed {
		s.closed = true
		s.runProd.Close()
	}
	s.pubMu.Unlock()

	s.mu.Lock()
	conns := make([]*runSocket, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: serviceName,
		Status:  "healthy",
	})
}

func (s *Server) flowLock(id api.FlowID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.flows[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.flows[id] = l
	return l
}

func (s *Server) publishRun(rec *api.ExecutionRecord) {
	s.pubMu.RLock()
	defer s.pubMu.RUnlock()
	if s.closed {
		return
	}
	message.Send(s.runProd, rec)
}

func (s *Server) registerSocket(c *runSocket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterSocket(c *runSocket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, operation.ErrReadonly),
		errors.Is(err, ErrFlowExists):
		return http.StatusConflict
	case errors.Is(err, tree.ErrStepNotFound),
		errors.Is(err, operation.ErrInvalidLocation),
		errors.Is(err, operation.ErrDuplicateName),
		errors.Is(err, operation.ErrNotAction),
		errors.Is(err, operation.ErrCategoryMismatch),
		errors.Is(err, operation.ErrOrphanedChildren),
		errors.Is(err, operation.ErrBranchMismatch),
		errors.Is(err, operation.ErrNotRouter),
		errors.Is(err, operation.ErrInvalidBranch),
		errors.Is(err, operation.ErrNoteNotFound),
		errors.Is(err, operation.ErrDuplicateNote),
		errors.Is(err, operation.ErrInvalidNote),
		errors.Is(err, operation.ErrMissingStep),
		errors.Is(err, operation.ErrUnknownOperation),
		errors.Is(err, store.ErrMissingID),
		errors.Is(err, ErrRunMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}
