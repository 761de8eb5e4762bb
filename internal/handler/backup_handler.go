package handler

import (
	"net/http"

	"posledger/internal/service"
	"posledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type BackupHandler struct {
	backupService service.BackupService
}

func NewBackupHandler(backupService service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

func (h *BackupHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/backup", h.Export)
	router.POST("/api/backup", h.Import)
	router.DELETE("/api/data", h.ClearAll)
}

// Export returns every stored collection as one bundle
// @Summary      Export backup
// @Tags         backup
// @Produce      json
// @Success      200  {object}  service.Bundle
// @Router       /api/backup [get]
func (h *BackupHandler) Export(c *gin.Context) {
	bundle, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pos-backup-`+bundle.ExportedAt.Format("2006-01-02")+`.json"`)
	c.JSON(http.StatusOK, bundle)
}

// Import replaces the stored collections named in the bundle
// @Summary      Import backup
// @Tags         backup
// @Accept       json
// @Produce      json
// @Param        payload  body      service.Bundle  true  "Backup bundle"
// @Success      200      {object}  response.Response{data=service.ImportResult}
// @Failure      400      {object}  response.Response
// @Router       /api/backup [post]
func (h *BackupHandler) Import(c *gin.Context) {
	var bundle service.Bundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.backupService.Import(c.Request.Context(), bundle)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ClearAll deletes every stored collection
// @Summary      Clear all data
// @Tags         backup
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/data [delete]
func (h *BackupHandler) ClearAll(c *gin.Context) {
	if err := h.backupService.ClearAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "All data cleared"}))
}
