package middleware

import (
	"errors"
	"net/http"

	"github.com/mariocromia/centroservice/internal/delivery/http/response"
	"github.com/mariocromia/centroservice/pkg/apperror"
	"github.com/mariocromia/centroservice/pkg/logger"

	"github.com/gin-gonic/gin"
)

// genericInternalMessage is what callers see on any unexpected failure.
// Internals are logged server-side only, never sent to the browser.
const genericInternalMessage = "Erro interno do servidor. Tente novamente ou entre em contato via WhatsApp."

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				if appErr.Err != nil {
					logger.Log.Error("request failed", "status", appErr.Code, "error", appErr.Err)
				}
				response.Error(c, appErr.Code, appErr.Message, nil)
			} else {
				logger.Log.Error("unexpected error", "error", err)
				response.Error(c, http.StatusInternalServerError, genericInternalMessage, nil)
			}
		}
	}
}
