package handler

import (
	"errors"
	"net/http"
	"strconv"

	"posledger/internal/logger"
	"posledger/internal/service"
	"posledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, ve.Message))
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrRowLimit):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrOutstandingBalance),
		errors.Is(err, service.ErrDuplicate),
		errors.Is(err, service.ErrNavigationBusy):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		logger.Error(c.Request.Context()).Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

// parseID reads a positive integer path parameter, answering 400 when it is not one.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+name))
		return 0, false
	}
	return id, true
}

// parseIndex reads an integer path parameter that may be -1.
func parseIndex(c *gin.Context, name string) (int, bool) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil || i < -1 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+name))
		return 0, false
	}
	return i, true
}
