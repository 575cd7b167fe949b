package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog/hlog"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps marker error kinds to HTTP statuses and codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, markers.ErrInvalidCoordinate):
		return http.StatusBadRequest, "invalid_coordinate"
	case errors.Is(err, markers.ErrImageRead):
		return http.StatusBadRequest, "image_unreadable"
	case errors.Is(err, markers.ErrMarkerNotFound):
		return http.StatusNotFound, "marker_not_found"
	case errors.Is(err, markers.ErrNotReady):
		return http.StatusConflict, "not_ready"
	case errors.Is(err, markers.ErrCreateInProgress):
		return http.StatusConflict, "create_in_progress"
	case errors.Is(err, markers.ErrLocationUnavailable):
		return http.StatusServiceUnavailable, "location_unavailable"
	case errors.Is(err, markers.ErrUploadFailed):
		return http.StatusBadGateway, "upload_failed"
	case errors.Is(err, markers.ErrMetadataWriteFailed):
		return http.StatusBadGateway, "metadata_write_failed"
	case errors.Is(err, markers.ErrDeleteFailed):
		return http.StatusBadGateway, "delete_failed"
	case errors.Is(err, markers.ErrListFailed):
		return http.StatusBadGateway, "list_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	writeErrorCode(w, r, status, code, err.Error())
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	reqID := ""
	if id, ok := hlog.IDFromRequest(r); ok {
		reqID = id.String()
	}
	writeJSON(w, status, APIError{Status: status, Code: code, Message: message, RequestID: reqID})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
