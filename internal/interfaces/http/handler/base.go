package handler

import (
	"context"
	"errors"
	"net/http"

	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/albazaar/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with paging meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, page, limit int, hasMore bool) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, page, limit, hasMore))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	middleware.AbortWithError(c, statusCode, code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// BindJSON binds the request body into obj and answers with a validation
// error when it fails. It reports whether the handler may continue.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds query parameters into obj, see BindJSON
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindURI binds path parameters into obj, see BindJSON
func (h *BaseHandler) BindURI(c *gin.Context, obj any) bool {
	if err := c.ShouldBindUri(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Session returns the session bound by the session middleware. Routes are
// always mounted behind it, so a missing session is answered as
// ERR_LOGIN_REQUIRED.
func (h *BaseHandler) Session(c *gin.Context) (*identityapp.ResolvedSession, bool) {
	resolved := middleware.GetSession(c)
	if resolved == nil {
		h.HandleError(c, identity.ErrLoginRequired)
		return nil, false
	}
	return resolved, true
}

// HandleError maps domain, backend and validation errors to the response
// envelope
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, middleware.GetRequestID(c))
		if domainErr.Details != nil {
			resp = resp.WithContext(domainErr.Details)
		}
		middleware.RespondError(c, dto.GetHTTPStatus(code), resp)
		return
	}

	log := logger.GetGinLogger(c)
	switch {
	case errors.Is(err, integration.ErrBackendUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		log.Warn("Store backend unavailable", zap.Error(err))
		h.Error(c, http.StatusBadGateway, dto.ErrCodeBackendUnavailable,
			"The store is temporarily unavailable. Please try again.")
	case errors.Is(err, integration.ErrBackendNotFound):
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Resource not found")
	case errors.Is(err, integration.ErrBackendUnauthorized):
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeSessionExpired, identity.ErrSessionExpired.Message)
	case errors.Is(err, integration.ErrBackendRequestFailed),
		errors.Is(err, integration.ErrBackendInvalidResponse),
		errors.Is(err, integration.ErrBackendRejected):
		log.Warn("Store backend request failed", zap.Error(err))
		h.Error(c, http.StatusBadGateway, dto.ErrCodeBackendFailed,
			"The store could not complete the request. Please try again.")
	default:
		log.Error("Unhandled error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
	}
}
