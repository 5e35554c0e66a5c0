package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/ComunidadDecidida/mayoristas/internal/application/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/dto"
)

// BannerHandler handles storefront banner API endpoints
type BannerHandler struct {
	BaseHandler
	banners *catalogapp.BannerService
}

// NewBannerHandler creates a new BannerHandler
func NewBannerHandler(banners *catalogapp.BannerService) *BannerHandler {
	return &BannerHandler{banners: banners}
}

// BannerRequest creates or updates a banner
type BannerRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	ImageURL string `json:"image_url" binding:"required,url,max=500"`
	LinkURL  string `json:"link_url" binding:"omitempty,url,max=500"`
	Position int    `json:"position" binding:"omitempty,min=0"`
}

// ScheduleBannerRequest sets the display window of a banner
type ScheduleBannerRequest struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// BannerResponse is a banner in API responses
type BannerResponse struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	ImageURL string     `json:"image_url"`
	LinkURL  string     `json:"link_url,omitempty"`
	Position int        `json:"position"`
	IsActive bool       `json:"is_active"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

func toBannerResponse(b *catalog.Banner) BannerResponse {
	return BannerResponse{
		ID:       b.ID.String(),
		Title:    b.Title,
		ImageURL: b.ImageURL,
		LinkURL:  b.LinkURL,
		Position: b.Position,
		IsActive: b.IsActive,
		StartsAt: b.StartsAt,
		EndsAt:   b.EndsAt,
	}
}

// List returns a banner page for the admin panel
func (h *BannerHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	req.Normalize()

	page, err := h.banners.List(c.Request.Context(), sharedFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]BannerResponse, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, toBannerResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, out, page.Total, req.Page, req.PageSize)
}

// ListLive returns the banners currently inside their display window
func (h *BannerHandler) ListLive(c *gin.Context) {
	banners, err := h.banners.ListLive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]BannerResponse, 0, len(banners))
	for i := range banners {
		out = append(out, toBannerResponse(&banners[i]))
	}
	h.Success(c, out)
}

// Create creates a banner
func (h *BannerHandler) Create(c *gin.Context) {
	var req BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	banner, err := h.banners.Create(c.Request.Context(), req.Title, req.ImageURL, req.LinkURL, req.Position)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toBannerResponse(banner))
}

// Update updates a banner
func (h *BannerHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid banner ID")
		return
	}
	var req BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	banner, err := h.banners.Update(c.Request.Context(), id, req.Title, req.ImageURL, req.LinkURL, req.Position)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBannerResponse(banner))
}

// Schedule sets the display window
func (h *BannerHandler) Schedule(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid banner ID")
		return
	}
	var req ScheduleBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	banner, err := h.banners.Schedule(c.Request.Context(), id, req.StartsAt, req.EndsAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBannerResponse(banner))
}

// SetActive toggles a banner
func (h *BannerHandler) SetActive(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid banner ID")
		return
	}
	var req SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	banner, err := h.banners.SetActive(c.Request.Context(), id, *req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBannerResponse(banner))
}

// Delete removes a banner
func (h *BannerHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid banner ID")
		return
	}
	if err := h.banners.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all banner routes
func (h *BannerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	banners := rg.Group("/banners")
	{
		banners.GET("", h.List)
		banners.GET("/live", h.ListLive)
		banners.POST("", h.Create)
		banners.PUT("/:id", h.Update)
		banners.PATCH("/:id/schedule", h.Schedule)
		banners.PATCH("/:id/active", h.SetActive)
		banners.DELETE("/:id", h.Delete)
	}
}
