package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"task-tracker/internal/cache"
	"task-tracker/internal/chart"
	"task-tracker/internal/models"
	"task-tracker/internal/repository"
	"task-tracker/internal/service"
	"task-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
)

const jsonContentType = "application/json; charset=utf-8"

// Tasks serves the task routes.
type Tasks struct {
	svc   *service.Tasks
	cache *cache.Cache // nil when caching is off
	group singleflight.Group
}

// NewTasks returns the task handlers. c may be nil.
func NewTasks(svc *service.Tasks, c *cache.Cache) *Tasks {
	return &Tasks{svc: svc, cache: c}
}

// List returns all tasks as JSON (cache-first as raw bytes).
func (h *Tasks) List(c *gin.Context) {
	h.serveCached(c, cache.TasksKey, func(ctx context.Context) (any, error) {
		return h.svc.List(ctx)
	})
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create validates the body, stores the task and returns 201 with it.
func (h *Tasks) Create(c *gin.Context) {
	var body createRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	task, err := h.svc.Create(c.Request.Context(), body.Title, body.Description)
	if err != nil {
		writeError(c, "CreateTask", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Get returns one task or 404.
func (h *Tasks) Get(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, found, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, "GetTask", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// Complete marks a task done and returns it.
func (h *Tasks) Complete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := h.svc.Complete(c.Request.Context(), id)
	if err != nil {
		writeError(c, "CompleteTask", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteIncomplete removes every incomplete task.
func (h *Tasks) DeleteIncomplete(c *gin.Context) {
	n, err := h.svc.DeleteIncomplete(c.Request.Context())
	if err != nil {
		writeError(c, "DeleteIncomplete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// WeekdayStats returns completions per weekday; ?format=pdf returns a bar chart.
func (h *Tasks) WeekdayStats(c *gin.Context) {
	if c.Query("format") == "pdf" {
		stats, err := h.svc.WeekdayStatistics(c.Request.Context())
		if err != nil {
			writeError(c, "WeekdayStats", err)
			return
		}
		h.servePDF(c, "Completed tasks by weekday", "Weekday", "Completed tasks", chart.FromWeekdays(stats))
		return
	}
	h.serveCached(c, cache.WeekdayStatsKey, func(ctx context.Context) (any, error) {
		return h.svc.WeekdayStatistics(ctx)
	})
}

// CompletionTimes returns the days-to-complete histogram; ?format=pdf returns a bar chart.
func (h *Tasks) CompletionTimes(c *gin.Context) {
	if c.Query("format") == "pdf" {
		hist, err := h.svc.CompletionTimeHistogram(c.Request.Context())
		if err != nil {
			writeError(c, "CompletionTimes", err)
			return
		}
		h.servePDF(c, "Completed tasks by days to complete", "Days to complete", "Completed tasks", chart.FromHistogram(hist))
		return
	}
	h.serveCached(c, cache.CompletionTimesKey, func(ctx context.Context) (any, error) {
		return h.svc.CompletionTimeHistogram(ctx)
	})
}

// serveCached answers from the cache, or loads once per key across concurrent
// misses and writes the result back after responding, unless a mutation
// invalidated the cache while it was loading.
func (h *Tasks) serveCached(c *gin.Context, key string, load func(context.Context) (any, error)) {
	ctx := c.Request.Context()
	if b, ok := h.cache.GetRaw(ctx, key); ok {
		c.Data(http.StatusOK, jsonContentType, b)
		return
	}
	v, err, _ := h.group.Do(key, func() (any, error) {
		gen := h.cache.Generation()
		data, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return loaded{body: b, gen: gen}, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		writeError(c, "Load "+key, err)
		return
	}
	res := v.(loaded)
	c.Data(http.StatusOK, jsonContentType, res.body)
	if h.cache != nil {
		go h.cache.SetRawAsync(key, res.body, res.gen)
	}
}

// loaded is a marshalled response and the cache generation it was read under.
type loaded struct {
	body []byte
	gen  uint64
}

func (h *Tasks) servePDF(c *gin.Context, title, xLabel, yLabel string, bars []chart.Bar) {
	b, err := chart.RenderPDF(title, xLabel, yLabel, bars)
	if err != nil {
		writeError(c, "RenderPDF", err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", b)
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return 0, false
	}
	return id, true
}

// writeError maps service and store errors to HTTP responses.
func writeError(c *gin.Context, op string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, repository.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "Task already completed"})
	default:
		logger.Error(c.Request.Context(), op+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
