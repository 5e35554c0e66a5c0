package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	syncapp "github.com/ComunidadDecidida/mayoristas/internal/application/sync"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	supplierinfra "github.com/ComunidadDecidida/mayoristas/internal/infrastructure/supplier"
	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/dto"
)

// SyncHandler handles sync pipeline API endpoints
type SyncHandler struct {
	BaseHandler
	service  *syncapp.Service
	runs     supplier.SyncRunRepository
	limiters map[supplier.Code]*supplierinfra.RateLimiter
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(
	service *syncapp.Service,
	runs supplier.SyncRunRepository,
	limiters map[supplier.Code]*supplierinfra.RateLimiter,
) *SyncHandler {
	return &SyncHandler{service: service, runs: runs, limiters: limiters}
}

// TriggerSyncRequest starts a sync run
type TriggerSyncRequest struct {
	Source    string                    `json:"source" binding:"required,oneof=syscom tecnosinergia all"`
	Selection *CategorySelectionRequest `json:"selection" binding:"omitempty"`
	Filters   *SyncFiltersRequest       `json:"filters" binding:"omitempty"`
}

// SyncFiltersRequest restricts which collected records are written
type SyncFiltersRequest struct {
	OnlyWithStock bool     `json:"only_with_stock"`
	MinStock      int      `json:"min_stock" binding:"omitempty,min=0"`
	MinPrice      *float64 `json:"min_price" binding:"omitempty,min=0"`
	MaxPrice      *float64 `json:"max_price" binding:"omitempty,min=0"`
}

// SyncRunResponse is one run in the history listing
type SyncRunResponse struct {
	ID                string                 `json:"id"`
	Supplier          string                 `json:"supplier"`
	Status            string                 `json:"status"`
	SelectionMode     string                 `json:"selection_mode"`
	ProductsCollected int                    `json:"products_collected"`
	ProductsWithStock int                    `json:"products_with_stock"`
	ProductsSynced    int                    `json:"products_synced"`
	Errors            supplier.SyncErrorList `json:"errors,omitempty"`
	StartedAt         time.Time              `json:"started_at"`
	FinishedAt        *time.Time             `json:"finished_at,omitempty"`
}

func toSyncRunResponse(run *supplier.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:                run.ID.String(),
		Supplier:          run.Supplier.String(),
		Status:            string(run.Status),
		SelectionMode:     string(run.SelectionMode),
		ProductsCollected: run.ProductsCollected,
		ProductsWithStock: run.ProductsWithStock,
		ProductsSynced:    run.ProductsSynced,
		Errors:            run.Errors,
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
	}
}

// Trigger starts a sync run and blocks until it finishes. Overlapping
// runs against the same supplier are rejected by the run lock.
func (h *SyncHandler) Trigger(c *gin.Context) {
	var req TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	request := syncapp.Request{Source: supplier.Source(req.Source)}
	if req.Selection != nil {
		request.Selection = &supplier.CategorySelection{
			Mode: supplier.SelectionMode(req.Selection.Mode),
			IDs:  req.Selection.IDs,
		}
	}
	if req.Filters != nil {
		request.Filters = &supplier.Filters{
			OnlyWithStock: req.Filters.OnlyWithStock,
			MinStock:      req.Filters.MinStock,
			MinPrice:      req.Filters.MinPrice,
			MaxPrice:      req.Filters.MaxPrice,
		}
	}

	summary, err := h.service.RunSync(c.Request.Context(), request)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	h.Success(c, summary)
}

// History returns the run history, newest first
func (h *SyncHandler) History(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	req.Normalize()

	filter := sharedFilter(req)
	if s := c.Query("supplier"); s != "" {
		filter.Filters = map[string]interface{}{"supplier": s}
	}

	page, err := h.runs.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]SyncRunResponse, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, toSyncRunResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, out, page.Total, req.Page, req.PageSize)
}

// GetRun returns one run by ID
func (h *SyncHandler) GetRun(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid run ID")
		return
	}
	run, err := h.runs.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSyncRunResponse(run))
}

// LimiterStats exposes the per-supplier rate limiter state for the
// admin dashboard
func (h *SyncHandler) LimiterStats(c *gin.Context) {
	stats := make(map[string]supplierinfra.Stats, len(h.limiters))
	for code, limiter := range h.limiters {
		stats[code.String()] = limiter.GetStats()
	}
	h.Success(c, stats)
}

// RegisterRoutes registers all sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/runs", h.Trigger)
		sync.GET("/runs", h.History)
		sync.GET("/runs/:id", h.GetRun)
		sync.GET("/limiters", h.LimiterStats)
	}
}
