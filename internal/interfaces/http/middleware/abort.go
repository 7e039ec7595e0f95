package middleware

import (
	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ErrorCodeKey is the gin context key holding the error code of a failed
// request. Tracing and access logs pick it up after the chain returns.
const ErrorCodeKey = "error_code"

// RespondError writes resp with status and stops the chain
func RespondError(c *gin.Context, status int, resp dto.Response) {
	if resp.Error != nil {
		c.Set(ErrorCodeKey, resp.Error.Code)
	}
	c.AbortWithStatusJSON(status, resp)
}

// AbortWithError answers with the standard error envelope
func AbortWithError(c *gin.Context, status int, code, message string) {
	RespondError(c, status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetErrorCode returns the code recorded by RespondError, if any
func GetErrorCode(c *gin.Context) string {
	return c.GetString(ErrorCodeKey)
}
