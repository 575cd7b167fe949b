package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/illmade-knight/markermap/pkg/markers"
)

const imageField = "image"

// uploadPicker satisfies markers.MediaPicker with the file attached to a
// create request. A request without a file is a cancelled pick.
type uploadPicker struct {
	r *http.Request
}

func (p uploadPicker) PickImage(ctx context.Context, opts markers.PickOptions) (markers.PickedImage, error) {
	file, header, err := p.r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return markers.CancelledPick(), nil
	}
	if err != nil {
		return markers.PickedImage{}, err
	}
	return markers.PickedImage{
		URI:         header.Filename,
		ContentType: contentTypeOf(header),
		Open: func() (io.ReadCloser, error) {
			return file, nil
		},
	}, nil
}

func contentTypeOf(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return "image/jpeg"
}
