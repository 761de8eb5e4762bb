package handler

import (
	"net/http"

	"posledger/internal/service"
	"posledger/pkg/pagination"
	"posledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	catalogService service.CatalogService
}

func NewItemHandler(catalogService service.CatalogService) *ItemHandler {
	return &ItemHandler{catalogService: catalogService}
}

func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/api/items")
	{
		items.GET("", h.ListItems)
		items.GET("/:id", h.GetItem)
		items.POST("", h.CreateItem)
		items.PUT("/:id", h.UpdateItem)
		items.DELETE("/:id", h.DeleteItem)
	}
}

// ListItems handles retrieving the paginated catalog
// @Summary      List items
// @Description  Retrieves a paginated list of catalog items in insertion order
// @Tags         items
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Substring of name, barcode or description"
// @Success      200    {object}  response.Response{data=response.PagedData}
// @Router       /api/items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	p := pagination.Parse(c)
	items := h.catalogService.ListItems(c.Request.Context(), c.Query("search"))
	page, total := pagination.Slice(items, p)
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, page, p.Page, p.Limit, total))
}

// GetItem returns a single catalog item
// @Summary      Get item
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response{data=model.Item}
// @Failure      404  {object}  response.Response
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.catalogService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CreateItem adds a catalog item
// @Summary      Create item
// @Description  Creates a product or service; an empty barcode is generated
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateItemRequest  true  "Create Item Payload"
// @Success      201      {object}  response.Response{data=model.Item}
// @Failure      400      {object}  response.Response
// @Router       /api/items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := h.catalogService.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// UpdateItem merges fields into a catalog item
// @Summary      Update item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Item ID"
// @Param        payload  body      service.UpdateItemRequest  true  "Update Item Payload"
// @Success      200      {object}  response.Response{data=model.Item}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/items/{id} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := h.catalogService.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteItem removes a catalog item
// @Summary      Delete item
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Item deleted successfully"}))
}
