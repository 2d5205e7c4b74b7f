package middlewares

import (
	"fmt"
	"net/http"

	"booking-system/internal/api/models"
	"booking-system/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery middleware recovers from panics and answers with the error envelope
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.StructuredError(fmt.Errorf("panic: %v", recovered), map[string]interface{}{
			"request_id": c.GetString(ContextRequestID),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		abort(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Internal server error")
	})
}
