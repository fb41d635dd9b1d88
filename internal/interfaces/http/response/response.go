package response

import (
	"github.com/gin-gonic/gin"
	domainerrors "onec-traders.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Domain sentinels are mapped to their HTTP status.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	})
}
