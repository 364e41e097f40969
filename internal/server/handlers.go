package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"camera-wall-go/internal/layout"
	"camera-wall-go/internal/slots"
	"camera-wall-go/internal/wall"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func abort(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     code,
		Message:   err.Error(),
		Timestamp: time.Now(),
	})
}

// wallError maps controller errors onto HTTP statuses.
func wallError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, slots.ErrSlotOutOfRange):
		abort(c, http.StatusNotFound, "slot_not_found", err)
	case errors.Is(err, slots.ErrNotRetryable):
		abort(c, http.StatusConflict, "slot_not_failed", err)
	case errors.Is(err, layout.ErrInvalidLayout):
		abort(c, http.StatusBadRequest, "invalid_layout", err)
	case errors.Is(err, wall.ErrClosed):
		abort(c, http.StatusServiceUnavailable, "wall_closed", err)
	default:
		abort(c, http.StatusInternalServerError, "internal", err)
	}
}

func slotIndex(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abort(c, http.StatusBadRequest, "bad_slot_index", err)
		return 0, false
	}
	return i, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

func (s *Server) handleGetWall(c *gin.Context) {
	c.JSON(http.StatusOK, s.opts.Wall.Snapshot())
}

func (s *Server) handleWallHealth(c *gin.Context) {
	if s.opts.Health == nil {
		abort(c, http.StatusNotFound, "health_disabled", errors.New("health reporting is disabled"))
		return
	}
	c.JSON(http.StatusOK, s.opts.Health.Sample(c.Request.Context()))
}

type pageRequest struct {
	Delta *int `json:"delta"`
	Page  *int `json:"page"`
}

// handlePage accepts {"delta": n} or {"page": i}, or ?delta=n.
func (s *Server) handlePage(c *gin.Context) {
	var req pageRequest
	if q := c.Query("delta"); q != "" {
		d, err := strconv.Atoi(q)
		if err != nil {
			abort(c, http.StatusBadRequest, "bad_delta", err)
			return
		}
		req.Delta = &d
	} else if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	var moved bool
	var err error
	switch {
	case req.Page != nil:
		moved, err = s.opts.Wall.GoTo(*req.Page)
	case req.Delta != nil:
		moved, err = s.opts.Wall.Advance(*req.Delta)
	default:
		abort(c, http.StatusBadRequest, "bad_request", errors.New("delta or page is required"))
		return
	}
	if err != nil {
		wallError(c, err)
		return
	}
	vm := s.opts.Wall.Snapshot()
	c.JSON(http.StatusOK, gin.H{"moved": moved, "page": vm.Page, "totalPages": vm.TotalPages})
}

func (s *Server) handleRefresh(c *gin.Context) {
	n, err := s.opts.Wall.Refresh()
	if err != nil {
		wallError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"retried": n})
}

func (s *Server) handleRetry(c *gin.Context) {
	i, ok := slotIndex(c)
	if !ok {
		return
	}
	if err := s.opts.Wall.Retry(i); err != nil {
		wallError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleActivate(c *gin.Context) {
	i, ok := slotIndex(c)
	if !ok {
		return
	}
	activated, err := s.opts.Wall.Activate(i)
	if err != nil {
		wallError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activated": activated})
}

func (s *Server) handleViewport(c *gin.Context) {
	var v wall.Viewport
	if err := c.ShouldBindJSON(&v); err != nil {
		abort(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if v.Width < 0 || v.Height < 0 {
		abort(c, http.StatusBadRequest, "bad_viewport", errors.New("viewport dimensions must not be negative"))
		return
	}
	if err := s.opts.Wall.SetViewport(v); err != nil {
		wallError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.opts.Wall.Snapshot().Geometry)
}

type layoutRequest struct {
	Preset string `json:"preset"`
	layout.Spec
}

// handleLayout accepts {"preset": "3x3"} or an explicit spec.
func (s *Server) handleLayout(c *gin.Context) {
	var req layoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	spec := req.Spec
	if req.Preset != "" {
		capacity := s.opts.Capacity
		if capacity <= 0 {
			capacity = slots.Capacity
		}
		p, err := layout.Preset(req.Preset, capacity)
		if err != nil {
			wallError(c, err)
			return
		}
		spec = p
	}
	if err := s.opts.Wall.SetLayout(spec); err != nil {
		wallError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.opts.Wall.Snapshot().Layout)
}
