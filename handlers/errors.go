package handlers

import (
	"errors"
	"net/http"

	"github.com/faizan/audiobits/registry"
	"github.com/gin-gonic/gin"
)

const (
	nameInvalidArgument = "INVALID_ARGUMENT"
	nameUnauthorized    = "UNAUTHORIZED"
	nameInternal        = "INTERNAL"
)

// handleError maps registry errors to HTTP statuses. Anything that is not a
// registry rejection is reported as an internal error without its detail.
func handleError(c *gin.Context, err error) {
	var regErr *registry.Error
	if !errors.As(err, &regErr) {
		_ = c.Error(err)
		failure(c, http.StatusInternalServerError, ErrorInfo{Name: nameInternal, Message: "internal error"})
		return
	}

	info := ErrorInfo{Code: uint32(regErr.Code), Name: regErr.Code.String(), Message: regErr.Message}
	switch {
	// 404 Not Found
	case errors.Is(err, registry.ErrNotFound):
		failure(c, http.StatusNotFound, info)

	// 409 Conflict
	case errors.Is(err, registry.ErrAlreadyRegistered),
		errors.Is(err, registry.ErrDuplicateFileHash):
		failure(c, http.StatusConflict, info)

	// 403 Forbidden
	case errors.Is(err, registry.ErrNotArtist):
		failure(c, http.StatusForbidden, info)

	// 400 Bad Request
	default:
		failure(c, http.StatusBadRequest, info)
	}
}

func badRequest(c *gin.Context, err error) {
	failure(c, http.StatusBadRequest, ErrorInfo{Name: nameInvalidArgument, Message: err.Error()})
}
