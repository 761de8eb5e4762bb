package handler

import (
	"fmt"

	"posledger/internal/logger"
	"posledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("/inventory.xlsx", h.Inventory)
		reports.GET("/activity.xlsx", h.Activity)
		reports.GET("/customers/:id/statement.xlsx", h.Statement)
	}
}

// Inventory downloads the stock records as a workbook
// @Summary      Inventory workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/reports/inventory.xlsx [get]
func (h *ReportHandler) Inventory(c *gin.Context) {
	f, err := h.reportService.InventoryWorkbook(c.Request.Context())
	h.write(c, "inventory.xlsx", f, err)
}

// Activity downloads the filtered activity log as a workbook
// @Summary      Activity workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        type  query  string  false  "Activity type"
// @Param        from  query  string  false  "Start date"
// @Param        to    query  string  false  "End date"
// @Success      200
// @Router       /api/reports/activity.xlsx [get]
func (h *ReportHandler) Activity(c *gin.Context) {
	filter, ok := parseActivityFilter(c)
	if !ok {
		return
	}
	f, err := h.reportService.ActivityWorkbook(c.Request.Context(), filter)
	h.write(c, "activity.xlsx", f, err)
}

// Statement downloads the ledger of one customer as a workbook
// @Summary      Customer statement workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id  path  int  true  "Customer ID"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /api/reports/customers/{id}/statement.xlsx [get]
func (h *ReportHandler) Statement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	f, err := h.reportService.StatementWorkbook(c.Request.Context(), id)
	h.write(c, fmt.Sprintf("statement-%d.xlsx", id), f, err)
}

func (h *ReportHandler) write(c *gin.Context, filename string, f *excelize.File, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(c.Writer); err != nil {
		logger.Error(c.Request.Context()).Err(err).Str("report", filename).Msg("failed to write workbook")
	}
}
