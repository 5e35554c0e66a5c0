package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderingapp "github.com/ComunidadDecidida/mayoristas/internal/application/ordering"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/ordering"
	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/dto"
)

// OrderHandler handles order API endpoints
type OrderHandler struct {
	BaseHandler
	orders *orderingapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *orderingapp.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrderRequest places a storefront order
type CreateOrderRequest struct {
	CustomerName  string                   `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerEmail string                   `json:"customer_email" binding:"required,email,max=200"`
	Gateway       string                   `json:"gateway" binding:"required,oneof=mercadopago stripe paypal"`
	Items         []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderItemRequest is one requested order line
type CreateOrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateOrderStatusRequest advances an order through its lifecycle
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending paid shipped delivered cancelled"`
}

// ListOrdersRequest holds the order list query parameters
type ListOrdersRequest struct {
	dto.ListRequest
	Status        string `form:"status" binding:"omitempty,oneof=pending paid shipped delivered cancelled"`
	CustomerEmail string `form:"customer_email" binding:"omitempty,email"`
}

// OrderItemResponse is one order line in API responses
type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// OrderResponse is an order in API responses
type OrderResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	Status        string              `json:"status"`
	Gateway       string              `json:"gateway"`
	Subtotal      string              `json:"subtotal"`
	Tax           string              `json:"tax"`
	Total         string              `json:"total"`
	Items         []OrderItemResponse `json:"items"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toOrderResponse(o *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID.String(),
			SKU:       item.SKU,
			Title:     item.Title,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().Amount().StringFixed(2),
		})
	}
	return OrderResponse{
		ID:            o.ID.String(),
		Number:        o.Number,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        string(o.Status),
		Gateway:       string(o.Gateway),
		Subtotal:      o.Subtotal.StringFixed(2),
		Tax:           o.Tax.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Items:         items,
		PaidAt:        o.PaidAt,
		CreatedAt:     o.CreatedAt,
	}
}

// Create places a new order
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	items := make([]orderingapp.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID: "+item.ProductID)
			return
		}
		items = append(items, orderingapp.ItemRequest{ProductID: productID, Quantity: item.Quantity})
	}

	order, err := h.orders.Create(c.Request.Context(), orderingapp.CreateRequest{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Gateway:       ordering.PaymentGateway(req.Gateway),
		Items:         items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toOrderResponse(order))
}

// List returns an order page
func (h *OrderHandler) List(c *gin.Context) {
	var req ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	req.Normalize()

	filter := ordering.OrderFilter{
		Filter:        sharedFilter(req.ListRequest),
		CustomerEmail: req.CustomerEmail,
	}
	if req.Status != "" {
		status := ordering.Status(req.Status)
		filter.Status = &status
	}

	page, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]OrderResponse, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, toOrderResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, out, page.Total, req.Page, req.PageSize)
}

// Get returns one order by ID
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(order))
}

// GetByNumber returns one order by its public number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.orders.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(order))
}

// UpdateStatus advances an order through its lifecycle
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, ordering.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(order))
}

// CountByStatus returns order counts grouped by status
func (h *OrderHandler) CountByStatus(c *gin.Context) {
	counts, err := h.orders.CountByStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/counts", h.CountByStatus)
		orders.GET("/number/:number", h.GetByNumber)
		orders.GET("/:id", h.Get)
		orders.PATCH("/:id/status", h.UpdateStatus)
	}
}
