package handler

import (
	"net/http"

	"posledger/internal/service"
	"posledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type exchangeRateRequest struct {
	IQDPerUSD decimal.Decimal `json:"iqdPerUsd"`
}

type SettingsHandler struct {
	settingsService service.SettingsService
	storeService    service.StoreService
}

func NewSettingsHandler(settingsService service.SettingsService, storeService service.StoreService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, storeService: storeService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/settings")
	{
		settings.GET("/exchange-rate", h.GetExchangeRate)
		settings.PUT("/exchange-rate", h.SetExchangeRate)
	}

	stores := router.Group("/api/stores")
	{
		stores.GET("", h.ListStores)
		stores.POST("", h.CreateStore)
		stores.DELETE("/:id", h.DeleteStore)
	}
}

// GetExchangeRate returns the IQD per USD rate used for new documents
// @Summary      Get exchange rate
// @Tags         settings
// @Produce      json
// @Success      200  {object}  response.Response{data=exchangeRateRequest}
// @Router       /api/settings/exchange-rate [get]
func (h *SettingsHandler) GetExchangeRate(c *gin.Context) {
	rate := h.settingsService.ExchangeRate(c.Request.Context())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, exchangeRateRequest{IQDPerUSD: rate}))
}

// SetExchangeRate updates the IQD per USD rate
// @Summary      Set exchange rate
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        payload  body      exchangeRateRequest  true  "Rate"
// @Success      200      {object}  response.Response{data=exchangeRateRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/settings/exchange-rate [put]
func (h *SettingsHandler) SetExchangeRate(c *gin.Context) {
	var req exchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.settingsService.SetExchangeRate(c.Request.Context(), req.IQDPerUSD); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// ListStores returns the stores transfers can move stock between
// @Summary      List stores
// @Tags         stores
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Store}
// @Router       /api/stores [get]
func (h *SettingsHandler) ListStores(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.storeService.ListStores(c.Request.Context())))
}

// CreateStore adds a store
// @Summary      Create store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateStoreRequest  true  "Store"
// @Success      201      {object}  response.Response{data=model.Store}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/stores [post]
func (h *SettingsHandler) CreateStore(c *gin.Context) {
	var req service.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	store, err := h.storeService.CreateStore(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, store))
}

// DeleteStore removes a store
// @Summary      Delete store
// @Tags         stores
// @Produce      json
// @Param        id   path      int  true  "Store ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/stores/{id} [delete]
func (h *SettingsHandler) DeleteStore(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.storeService.DeleteStore(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Store deleted successfully"}))
}
