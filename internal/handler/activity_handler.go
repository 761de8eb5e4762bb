package handler

import (
	"net/http"
	"time"

	"posledger/internal/service"
	"posledger/pkg/pagination"
	"posledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	activity := router.Group("/api/activity")
	{
		activity.GET("", h.ListActivity)
		activity.GET("/summary", h.Summary)
	}
}

// ListActivity handles retrieving the stock movement log
// @Summary      List activity
// @Tags         activity
// @Produce      json
// @Param        type   query     string  false  "sale, return, transfer, adjustment or initial"
// @Param        from   query     string  false  "Start date (YYYY-MM-DD or RFC3339)"
// @Param        to     query     string  false  "End date (YYYY-MM-DD or RFC3339)"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.PagedData}
// @Failure      400    {object}  response.Response
// @Router       /api/activity [get]
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	filter, ok := parseActivityFilter(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	records := h.activityService.List(c.Request.Context(), filter)
	page, total := pagination.Slice(records, p)
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, page, p.Page, p.Limit, total))
}

// Summary aggregates quantities and values per activity type
// @Summary      Activity summary
// @Tags         activity
// @Produce      json
// @Param        from  query     string  false  "Start date"
// @Param        to    query     string  false  "End date"
// @Success      200   {object}  response.Response{data=[]model.ActivitySummary}
// @Router       /api/activity/summary [get]
func (h *ActivityHandler) Summary(c *gin.Context) {
	filter, ok := parseActivityFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.activityService.Summary(c.Request.Context(), filter)))
}

func parseActivityFilter(c *gin.Context) (service.ActivityFilter, bool) {
	filter := service.ActivityFilter{Type: c.Query("type")}
	if v := c.Query("from"); v != "" {
		t, err := parseTime(v, false)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid from date"))
			return filter, false
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseTime(v, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid to date"))
			return filter, false
		}
		filter.To = &t
	}
	return filter, true
}

// parseTime accepts RFC3339 or a bare date. A bare end date covers the whole day.
func parseTime(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
