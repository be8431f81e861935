package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"courier_api/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgInvalidRequest = "Invalid request format"

// statusFor maps a business error kind to its HTTP status.
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindInvalidState, services.KindConflict, services.KindValidation, services.KindInvalidCredential:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as {message}. Unclassified errors are logged and
// reported as 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		c.JSON(statusFor(svcErr.Kind), gin.H{"message": svcErr.Message})
		return
	}

	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	message := err.Error()
	if message == "" {
		message = "Internal Server Error"
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": message})
}

func respondData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
	})
}

func respondList(c *gin.Context, message string, data interface{}, pagination services.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"data":       data,
		"pagination": pagination,
	})
}

// pageRequest reads page and limit from the query string. Anything that is not
// a positive integer falls back to the defaults.
func pageRequest(c *gin.Context) services.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return services.PageRequest{Page: page, Limit: limit}.Normalize()
}

// bindOptionalJSON binds the body into obj, treating an empty body as "{}".
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
