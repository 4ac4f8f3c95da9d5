// Package response provides uniform JSON responses.
// Payloads are flat objects; failures are always {"error": "..."} so the
// browser client can show the message as-is.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is a plain confirmation.
type MessageBody struct {
	Message string `json:"message"`
}

// Success writes 200 with data as the body.
// Parameters:
//   - c: Gin context
//   - data: any JSON-serializable value
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SuccessWithMessage writes 200 {"message": message}.
func SuccessWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageBody{Message: message})
}

// Error writes an error response.
// Parameters:
//   - c: Gin context
//   - httpCode: HTTP status
//   - message: text shown to the user, never internal detail
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, ErrorBody{Error: message})
}

// BadRequest writes 400.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized writes 401.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound writes 404.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError writes 500.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// AbortWithError writes an error response and stops the handler chain.
func AbortWithError(c *gin.Context, httpCode int, message string) {
	c.AbortWithStatusJSON(httpCode, ErrorBody{Error: message})
}
