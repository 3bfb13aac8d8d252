// Package handler exposes the lead pipeline over HTTP. Batch operations
// run inline by default; with a queue configured the operator can submit
// them async instead.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"outreach_backend/internal/board"
	"outreach_backend/internal/engine"
	"outreach_backend/internal/http/transport"
	"outreach_backend/internal/reconciler"
	"outreach_backend/internal/scheduler"
	"outreach_backend/platform/httpkit"
	"outreach_backend/platform/validator"
)

// Pipeline is the slice of the engine the handler needs.
type Pipeline interface {
	ImportRegion(ctx context.Context, region string) (engine.ImportReport, error)
	SendBatch(ctx context.Context, region string, limit int) (engine.SendReport, error)
	AddLead(ctx context.Context, region string, lead board.Lead) (board.Task, error)
	Stats(ctx context.Context, region string) (board.RegionStats, error)
}

// Reconciling runs one reply reconcile cycle.
type Reconciling interface {
	Reconcile(ctx context.Context) (reconciler.Report, error)
}

// Handler serves the operator API.
type Handler struct {
	pipeline   Pipeline
	reconciler Reconciling
	queue      scheduler.BatchScheduler
	val        *validator.Validator
}

// New creates a handler. queue may be nil; async requests are then
// rejected rather than silently run inline.
func New(pipeline Pipeline, rec Reconciling, queue scheduler.BatchScheduler, val *validator.Validator) *Handler {
	return &Handler{
		pipeline:   pipeline,
		reconciler: rec,
		queue:      queue,
		val:        val,
	}
}

// RegisterRoutes registers the operator API routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.POST("/send", h.Send)
	rg.POST("/leads", h.AddLead)
	rg.GET("/status", h.Status)
	rg.POST("/replies/reconcile", h.ReconcileReplies)
}

// Import runs or enqueues a discovery import for one region.
func (h *Handler) Import(c *gin.Context) {
	var req transport.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	if req.Async {
		if h.queue == nil {
			httpkit.Error(c, http.StatusServiceUnavailable, "Background queue is not configured", nil)
			return
		}
		if err := h.queue.EnqueueImportRegion(c.Request.Context(), scheduler.ImportRegionPayload{Region: req.Region}); err != nil {
			httpkit.HandleError(c, err)
			return
		}
		httpkit.Accepted(c, transport.QueuedResponse{Queued: true, Region: req.Region})
		return
	}

	report, err := h.pipeline.ImportRegion(c.Request.Context(), req.Region)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

// Send runs or enqueues a proposal send batch for one region.
func (h *Handler) Send(c *gin.Context) {
	var req transport.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	if req.Limit == 0 {
		req.Limit = transport.DefaultSendLimit
	}

	if req.Async {
		if h.queue == nil {
			httpkit.Error(c, http.StatusServiceUnavailable, "Background queue is not configured", nil)
			return
		}
		payload := scheduler.SendBatchPayload{Region: req.Region, Limit: req.Limit}
		if err := h.queue.EnqueueSendBatch(c.Request.Context(), payload); err != nil {
			httpkit.HandleError(c, err)
			return
		}
		httpkit.Accepted(c, transport.QueuedResponse{Queued: true, Region: req.Region})
		return
	}

	report, err := h.pipeline.SendBatch(c.Request.Context(), req.Region, req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

// AddLead creates one manual lead.
func (h *Handler) AddLead(c *gin.Context) {
	var req transport.AddLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	task, err := h.pipeline.AddLead(c.Request.Context(), req.Region, board.Lead{
		Name:    req.Name,
		Website: req.Website,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		Email:   req.Email,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.AddLeadResponse{
		TaskID: task.ID,
		Status: string(task.Status),
	})
}

// Status returns one region's list breakdown.
func (h *Handler) Status(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		httpkit.Error(c, http.StatusBadRequest, "region query parameter is required", nil)
		return
	}

	stats, err := h.pipeline.Stats(c.Request.Context(), region)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

// ReconcileReplies runs one reply reconcile cycle inline.
func (h *Handler) ReconcileReplies(c *gin.Context) {
	report, err := h.reconciler.Reconcile(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}
