package handler

import (
	"github.com/erp/pos/internal/application/orderentry"
	"github.com/erp/pos/internal/domain/cart"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScannerHandler exposes the barcode scanner over HTTP
type ScannerHandler struct {
	BaseHandler
	service *orderentry.Service
	logger  *zap.Logger
}

// NewScannerHandler creates a scanner handler
func NewScannerHandler(service *orderentry.Service, logger *zap.Logger) *ScannerHandler {
	return &ScannerHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers scanner routes
func (h *ScannerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	routes := rg.Group("/scanner")
	{
		routes.GET("/devices", h.Devices)
		routes.POST("/open", h.Open)
		routes.POST("/close", h.Close)
		routes.GET("/status", h.Status)
		routes.POST("/scan", h.Scan)
	}
}

// OpenRequest selects the camera for a scanner session. An empty
// device ID picks the rear camera.
type OpenRequest struct {
	DeviceID string `json:"device_id"`
}

// OpenResponse reports the started session
type OpenResponse struct {
	SessionID string `json:"session_id"`
}

// ScanRequest carries a manually keyed barcode
type ScanRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// ScanResponse reports the resolved product and whether a new order
// line was inserted
type ScanResponse struct {
	Item  cart.Item `json:"item"`
	Added bool      `json:"added"`
}

// Devices lists the available cameras
// GET /api/v1/scanner/devices
func (h *ScannerHandler) Devices(c *gin.Context) {
	list, err := h.service.Devices(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Open starts a scanner session, replacing any active one
// POST /api/v1/scanner/open
func (h *ScannerHandler) Open(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	id, err := h.service.OpenScanner(c.Request.Context(), req.DeviceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, OpenResponse{SessionID: id.String()})
}

// Close tears down the active scanner session
// POST /api/v1/scanner/close
func (h *ScannerHandler) Close(c *gin.Context) {
	h.service.CloseScanner()
	h.NoContent(c)
}

// Status reports the scanner session state
// GET /api/v1/scanner/status
func (h *ScannerHandler) Status(c *gin.Context) {
	h.Success(c, h.service.Status())
}

// Scan resolves a manually entered barcode into the cart. It is the
// fallback for labels the camera cannot read.
// POST /api/v1/scanner/scan
func (h *ScannerHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, added, err := h.service.HandleScan(c.Request.Context(), req.Barcode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.logger.Info("Manual barcode entry handled",
		zap.String("barcode", req.Barcode),
		zap.Bool("added", added))
	h.Success(c, ScanResponse{Item: item, Added: added})
}
