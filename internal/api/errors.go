package api

import (
	"errors"
	"net/http"
	"strconv"

	"ksaphier/trainerapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusForError maps the service error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError aborts with the mapped status. Server faults are logged
// and their message is not exposed.
func respondWithError(c *gin.Context, log *zap.Logger, err error) {
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		if errors.Is(err, service.ErrDanglingReference) {
			abortWithError(c, code, "stored data is inconsistent")
			return
		}
		abortWithError(c, code, "internal server error")
		return
	}
	abortWithError(c, code, err.Error())
}

// parseIDParam reads a positive integer path parameter, aborting with 400 otherwise.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, "invalid "+name+": must be a positive integer")
		return 0, false
	}
	return id, true
}
