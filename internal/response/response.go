package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hadfi53/rakb-sub004/internal/domain"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Paginated writes a 200 response with items and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Error maps a domain error to its HTTP status code and writes the response.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidation:
			c.JSON(http.StatusBadRequest, gin.H{"error": de.Message})
		case domain.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": de.Message})
		case domain.KindConflict:
			c.JSON(http.StatusConflict, gin.H{"error": de.Message})
		case domain.KindForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": de.Message})
		case domain.KindUnauthorized:
			c.JSON(http.StatusUnauthorized, gin.H{"error": de.Message})
		case domain.KindInvalidState:
			c.JSON(http.StatusConflict, gin.H{"error": de.Message})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": de.Message})
		}
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
