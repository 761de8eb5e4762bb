package handler

import (
	"net/http"

	"posledger/internal/service"
	"posledger/pkg/pagination"
	"posledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/api/inventory")
	{
		inventory.GET("", h.ListInventory)
		inventory.GET("/low-stock", h.LowStock)
		inventory.GET("/items/:name", h.GetRecord)
		inventory.POST("/sync", h.Sync)
		inventory.POST("/adjust", h.Adjust)
	}
}

// ListInventory handles retrieving paginated stock records
// @Summary      List inventory
// @Description  Retrieves a paginated list of stock records with their status
// @Tags         inventory
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.PagedData}
// @Router       /api/inventory [get]
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	p := pagination.Parse(c)
	records := h.inventoryService.List(c.Request.Context())
	page, total := pagination.Slice(records, p)
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, page, p.Page, p.Limit, total))
}

// LowStock lists records whose status is low or out of stock
// @Summary      Low stock
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.InventoryRecord}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.inventoryService.LowStock(c.Request.Context())))
}

// GetRecord returns the stock record of one item
// @Summary      Get stock record
// @Tags         inventory
// @Produce      json
// @Param        name  path      string  true  "Item name"
// @Success      200   {object}  response.Response{data=model.InventoryRecord}
// @Failure      404   {object}  response.Response
// @Router       /api/inventory/items/{name} [get]
func (h *InventoryHandler) GetRecord(c *gin.Context) {
	record, err := h.inventoryService.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// Sync rebuilds stock records from the product catalog
// @Summary      Sync inventory
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/inventory/sync [post]
func (h *InventoryHandler) Sync(c *gin.Context) {
	changed := h.inventoryService.SyncFromCatalog(c.Request.Context())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"changed": changed}))
}

// Adjust applies a manual stock correction
// @Summary      Adjust stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AdjustStockRequest  true  "Adjustment"
// @Success      200      {object}  response.Response{data=model.InventoryRecord}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	record, err := h.inventoryService.ManualAdjust(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}
