package markers

import "errors"

// Error kinds surfaced by the marker use cases. Callers match them with errors.Is.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrListFailed          = errors.New("failed to list markers")

	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrImageRead           = errors.New("failed to read picked image")
	ErrUploadFailed        = errors.New("image upload failed")
	ErrMetadataWriteFailed = errors.New("marker metadata write failed")

	ErrDeleteFailed     = errors.New("marker delete failed")
	ErrBlobDeleteFailed = errors.New("image delete failed")

	ErrNotFound         = errors.New("not found")
	ErrMarkerNotFound   = errors.New("marker not in local mirror")
	ErrNotReady         = errors.New("markers not loaded")
	ErrCreateInProgress = errors.New("marker creation already in progress")
)
