package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AppError is a business error that already knows its HTTP status and client message.
type AppError struct {
	Status  int
	Message string
	Details string
	// Extra fields merged into the JSON body (e.g. upgradeRequired).
	Extra map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// WithExtra attaches additional response fields.
func (e *AppError) WithExtra(key string, value interface{}) *AppError {
	if e.Extra == nil {
		e.Extra = map[string]interface{}{}
	}
	e.Extra[key] = value
	return e
}

func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func BadRequest(message string) *AppError { return NewAppError(http.StatusBadRequest, message) }

func Unauthorized(message string) *AppError { return NewAppError(http.StatusUnauthorized, message) }

func PaymentRequired(message string) *AppError {
	return NewAppError(http.StatusPaymentRequired, message)
}

func Forbidden(message string) *AppError { return NewAppError(http.StatusForbidden, message) }

func NotFound(message string) *AppError { return NewAppError(http.StatusNotFound, message) }

func TooManyRequests(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, message)
}

func Internal(message, details string) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: message, Details: details}
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "Error interno del servidor",
					Details: "Ocurrió un error inesperado. Intenta de nuevo más tarde.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.Int("status", status), zap.String("details", details))
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// RespondError writes err as JSON, using the AppError status when present and 500 otherwise.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if len(appErr.Extra) == 0 {
			JSONError(c, appErr.Status, appErr.Message, appErr.Details)
			return
		}
		body := gin.H{"error": appErr.Message}
		if appErr.Details != "" {
			body["details"] = appErr.Details
		}
		for k, v := range appErr.Extra {
			body[k] = v
		}
		GetLogger().Warn(appErr.Message, zap.Int("status", appErr.Status))
		c.JSON(appErr.Status, body)
		return
	}
	GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Error interno del servidor"})
}
