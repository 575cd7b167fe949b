package markers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// LocationProvider yields the device's current position on demand.
type LocationProvider interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (Coordinate, error)
}

// PickOptions mirrors the image picker settings used when attaching a photo.
type PickOptions struct {
	AspectX, AspectY int
	AllowEditing     bool
	Quality          float64
}

// DefaultPickOptions is a 4:3 editable full-quality pick.
var DefaultPickOptions = PickOptions{AspectX: 4, AspectY: 3, AllowEditing: true, Quality: 1}

// PickedImage is the outcome of a pick. A cancelled pick carries no content.
type PickedImage struct {
	Cancelled   bool
	URI         string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// CancelledPick is the result returned when the user backs out of the picker.
func CancelledPick() PickedImage {
	return PickedImage{Cancelled: true}
}

// ReadAll opens the picked image and returns its bytes.
func (p PickedImage) ReadAll() ([]byte, error) {
	if p.Cancelled || p.Open == nil {
		return nil, fmt.Errorf("no image to read for %q", p.URI)
	}
	rc, err := p.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// MediaPicker yields a locally addressable image, or a cancelled result.
type MediaPicker interface {
	PickImage(ctx context.Context, opts PickOptions) (PickedImage, error)
}

// StaticLocationProvider reports a fixed position. It is used when the position
// comes from configuration rather than a device.
type StaticLocationProvider struct {
	Position Coordinate
	Granted  bool
}

func (p StaticLocationProvider) RequestPermission(ctx context.Context) (bool, error) {
	return p.Granted, nil
}

func (p StaticLocationProvider) CurrentPosition(ctx context.Context) (Coordinate, error) {
	if err := p.Position.Validate(); err != nil {
		return Coordinate{}, fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
	}
	return p.Position, nil
}

// FilePicker picks a file from the local filesystem. An empty Path is a cancelled pick.
type FilePicker struct {
	Path string
}

func (p FilePicker) PickImage(ctx context.Context, opts PickOptions) (PickedImage, error) {
	path := strings.TrimSpace(p.Path)
	if path == "" {
		return CancelledPick(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return PickedImage{}, err
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = "image/jpeg"
	}
	return PickedImage{
		URI:         "file://" + path,
		ContentType: ct,
		Open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}
