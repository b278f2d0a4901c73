package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/middleware"
	"github.com/SaicharanT-tech/eventra/pkg/response"
)

// Error codes returned in the envelope
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeCapacityExceeded    = "CAPACITY_EXCEEDED"
	CodeSchedulingConflict  = "SCHEDULING_CONFLICT"
	CodeResourceUnavailable = "RESOURCE_UNAVAILABLE"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicateName       = "DUPLICATE_NAME"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// handleError maps an engine error to its status code and envelope
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(c, CodeValidation, domain.UserMessage(err))
	case errors.Is(err, domain.ErrCapacityExceeded):
		response.BadRequest(c, CodeCapacityExceeded, domain.UserMessage(err))
	case errors.Is(err, domain.ErrSchedulingConflict):
		response.BadRequest(c, CodeSchedulingConflict, domain.UserMessage(err))
	case errors.Is(err, domain.ErrResourceUnavailable):
		response.BadRequest(c, CodeResourceUnavailable, domain.UserMessage(err))
	case errors.Is(err, domain.ErrInvalidTransition):
		response.BadRequest(c, CodeInvalidTransition, domain.UserMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, domain.UserMessage(err))
	case errors.Is(err, domain.ErrDuplicateName):
		response.Error(c, http.StatusConflict, CodeDuplicateName, domain.UserMessage(err))
	case errors.Is(err, domain.ErrStoreUnavailable):
		logger.Get().WithContext(c.Request.Context()).Error("Store unavailable",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		response.Error(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "Service temporarily unavailable")
	default:
		logger.Get().WithContext(c.Request.Context()).Error("Unhandled error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}

// bindError reports a malformed request body
func bindError(c *gin.Context, err error) {
	response.BadRequest(c, CodeValidation, "Invalid request body: "+err.Error())
}

// actorFrom reads the caller resolved by the auth middleware
func actorFrom(c *gin.Context) (domain.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domain.Actor{}, false
	}
	role, _ := middleware.GetRole(c)
	return domain.Actor{ID: userID, Role: domain.Role(role)}, true
}
