package response

import (
	"errors"
	"net/http"

	"github.com/yungbote/arbor/internal/data/repos"
	"github.com/yungbote/arbor/internal/services"
	"github.com/yungbote/arbor/internal/tree"
)

// MapStatus translates service and storage errors into an HTTP status and a
// stable machine-readable code. Anything unrecognized is a 500.
func MapStatus(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, tree.ErrInvalidPath):
		return http.StatusBadRequest, "invalid_path"
	case errors.Is(err, services.ErrFolderNotFound), errors.Is(err, repos.ErrNotFound):
		return http.StatusNotFound, "folder_not_found"
	case errors.Is(err, tree.ErrCircularReference):
		return http.StatusConflict, "circular_reference"
	case errors.Is(err, repos.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, repos.ErrPreconditionFailed):
		return http.StatusConflict, "precondition_failed"
	case errors.Is(err, repos.ErrRetryable):
		return http.StatusServiceUnavailable, "retry_later"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
