package handler

import (
	"github.com/erp/pos/internal/domain/cart"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartHandler exposes the current order over HTTP
type CartHandler struct {
	BaseHandler
	cart   *cart.Store
	logger *zap.Logger
}

// NewCartHandler creates a cart handler
func NewCartHandler(cartStore *cart.Store, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cart:   cartStore,
		logger: logger,
	}
}

// RegisterRoutes registers cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	routes := rg.Group("/cart")
	{
		routes.GET("", h.Get)
		routes.PUT("/items/:id", h.UpdateQuantity)
		routes.DELETE("/items/:id", h.RemoveItem)
		routes.DELETE("", h.Clear)
	}
}

// CartView is the cart contents together with the derived totals
type CartView struct {
	Items  []cart.Item `json:"items"`
	Totals cart.Totals `json:"totals"`
}

// UpdateQuantityRequest sets an order line's quantity. The field is a
// pointer so an explicit zero is distinguishable from a missing field;
// zero follows the below-one-removes path.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// Get returns the order lines and totals
// GET /api/v1/cart
func (h *CartHandler) Get(c *gin.Context) {
	items := h.cart.Items()
	if items == nil {
		items = []cart.Item{}
	}
	h.Success(c, CartView{
		Items:  items,
		Totals: h.cart.Totals(),
	})
}

// UpdateQuantity sets the quantity of one order line. A quantity below
// one removes the line.
// PUT /api/v1/cart/items/:id
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	id := c.Param("id")

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quantity := *req.Quantity
	if quantity >= 1 && !h.cart.IsInCart(id) {
		h.NotFound(c, "No order line for product "+id)
		return
	}

	h.cart.UpdateQuantity(c.Request.Context(), id, quantity)
	h.logger.Info("Order line quantity updated",
		zap.String("product_id", id),
		zap.Int("quantity", quantity))
	h.Success(c, CartView{Items: h.cart.Items(), Totals: h.cart.Totals()})
}

// RemoveItem deletes one order line
// DELETE /api/v1/cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id := c.Param("id")
	h.cart.RemoveItem(c.Request.Context(), id)
	h.logger.Info("Order line removed", zap.String("product_id", id))
	h.NoContent(c)
}

// Clear empties the cart
// DELETE /api/v1/cart
func (h *CartHandler) Clear(c *gin.Context) {
	h.cart.Clear(c.Request.Context())
	h.logger.Info("Cart cleared")
	h.NoContent(c)
}
