package http

import (
	"net/http"

	"postpilot/domain/apperror"
	"postpilot/infrastructure/logger"
)

// statusForError maps structured error kinds to HTTP statuses. Internal
// detail is logged, never leaked to the caller.
func statusForError(err error) (int, string) {
	switch apperror.KindOf(err) {
	case apperror.Unauthenticated:
		return http.StatusUnauthorized, err.Error()
	case apperror.InvalidArgument:
		return http.StatusBadRequest, err.Error()
	case apperror.NotFound:
		return http.StatusNotFound, err.Error()
	case apperror.ArtifactUnavailable:
		return http.StatusUnprocessableEntity, err.Error()
	default:
		logger.GetLogger().WithField("error", err.Error()).Error("internal error")
		return http.StatusInternalServerError, "internal error"
	}
}
