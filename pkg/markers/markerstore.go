// FILE: markers/store.go

package markers

import (
	"context"
)

// Collection is the remote document store holding marker records.
// Implementations assign the ID on Insert.
type Collection interface {
	Insert(ctx context.Context, rec MarkerRecord) (string, error)
	List(ctx context.Context) ([]Marker, error)
	// Delete returns an error wrapping ErrNotFound when id does not exist.
	Delete(ctx context.Context, id string) error
}

// BlobStore is the remote object store holding marker photos.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// DownloadURL resolves a durable reference for a stored key.
	DownloadURL(ctx context.Context, key string) (string, error)
	// Delete accepts either a key or a URL previously returned by DownloadURL.
	// It returns an error wrapping ErrNotFound when nothing is stored there.
	Delete(ctx context.Context, keyOrURL string) error
}

// EventPublisher announces marker lifecycle changes to other consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// EventType names a lifecycle change.
type EventType string

const (
	EventMarkerCreated EventType = "MARKER_CREATED"
	EventMarkerDeleted EventType = "MARKER_DELETED"
)

// Event is the payload published after a successful create or delete.
type Event struct {
	Type   EventType `json:"type"`
	Marker Marker    `json:"marker"`
}
