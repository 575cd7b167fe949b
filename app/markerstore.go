// Package app provides the central orchestrator for the marker map: it keeps the
// local marker mirror in step with the remote collection and blob store.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog"
)

// Recorder receives counts for the marker use cases.
type Recorder interface {
	LoadCompleted(markerCount int)
	MarkerCreated()
	MarkerDeleted()
	CreateFailed(stage string)
	OrphanedBlob()
	BlobDeleteFailed()
}

type nopRecorder struct{}

func (nopRecorder) LoadCompleted(int)   {}
func (nopRecorder) MarkerCreated()      {}
func (nopRecorder) MarkerDeleted()      {}
func (nopRecorder) CreateFailed(string) {}
func (nopRecorder) OrphanedBlob()       {}
func (nopRecorder) BlobDeleteFailed()   {}

// Dependencies are the collaborators a MarkerStore orchestrates.
// Publisher, Recorder and Clock are optional.
type Dependencies struct {
	Collection markers.Collection
	Blobs      markers.BlobStore
	Location   markers.LocationProvider
	Publisher  markers.EventPublisher
	Recorder   Recorder
	Clock      func() time.Time
}

// MarkerStore owns the local mirror of markers and the selection, and exposes the
// operations the screen invokes. Use cases run one at a time; each awaits its
// remote calls in order.
type MarkerStore struct {
	collection markers.Collection
	blobs      markers.BlobStore
	location   markers.LocationProvider
	publisher  markers.EventPublisher
	recorder   Recorder
	clock      func() time.Time
	logger     zerolog.Logger

	opMu     sync.Mutex
	creating atomic.Bool

	stateMu sync.RWMutex
	state   markers.State
}

// New creates a MarkerStore in the Loading state.
func New(deps Dependencies, logger zerolog.Logger) *MarkerStore {
	s := &MarkerStore{
		collection: deps.Collection,
		blobs:      deps.Blobs,
		location:   deps.Location,
		publisher:  deps.Publisher,
		recorder:   deps.Recorder,
		clock:      deps.Clock,
		logger:     logger.With().Str("component", "marker-store").Logger(),
		state:      markers.Loading{},
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Load resolves the user's position and then fetches the full marker list.
// The store only becomes Ready when both succeed; otherwise it stays Loading
// with the failure recorded as the reason.
func (s *MarkerStore) Load(ctx context.Context) (markers.Ready, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setState(markers.Loading{})
	s.logger.Info().Msg("Loading position and markers")

	granted, err := s.location.RequestPermission(ctx)
	if err != nil {
		return s.failLoad(fmt.Errorf("%w: %w: %w", markers.ErrLocationUnavailable, markers.ErrPermissionDenied, err))
	}
	if !granted {
		return s.failLoad(fmt.Errorf("%w: %w", markers.ErrLocationUnavailable, markers.ErrPermissionDenied))
	}

	position, err := s.location.CurrentPosition(ctx)
	if err != nil {
		return s.failLoad(fmt.Errorf("%w: %w", markers.ErrLocationUnavailable, asKind(markers.ErrPositionUnavailable, err)))
	}

	all, err := s.collection.List(ctx)
	if err != nil {
		return s.failLoad(fmt.Errorf("%w: %w", markers.ErrListFailed, err))
	}

	ready := markers.Ready{Position: position, Markers: cloneMarkers(all)}
	s.setState(ready)
	s.recorder.LoadCompleted(len(all))

	s.logger.Info().
		Float64("latitude", position.Latitude).
		Float64("longitude", position.Longitude).
		Int("marker_count", len(all)).
		Msg("Markers loaded")
	return copyReady(ready), nil
}

func (s *MarkerStore) failLoad(err error) (markers.Ready, error) {
	s.setState(markers.Loading{Reason: err})
	s.logger.Error().Err(err).Msg("Initial load failed")
	return markers.Ready{}, err
}

// CreateMarker runs the long-press flow: pick an image, upload it, resolve its
// download URL, insert the marker document and append it to the mirror.
// A cancelled pick returns created == false and a nil error.
//
// When the upload succeeds but a later step fails the blob is left behind; this
// is logged and counted, never rolled back.
func (s *MarkerStore) CreateMarker(ctx context.Context, at markers.Coordinate, picker markers.MediaPicker) (marker markers.Marker, created bool, err error) {
	if err := at.Validate(); err != nil {
		return markers.Marker{}, false, err
	}
	if !s.creating.CompareAndSwap(false, true) {
		return markers.Marker{}, false, markers.ErrCreateInProgress
	}
	defer s.creating.Store(false)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if _, ok := s.readyState(); !ok {
		return markers.Marker{}, false, markers.ErrNotReady
	}

	logger := s.logger.With().
		Float64("latitude", at.Latitude).
		Float64("longitude", at.Longitude).
		Logger()

	// 1. Pick
	picked, err := picker.PickImage(ctx, markers.DefaultPickOptions)
	if err != nil {
		s.recorder.CreateFailed("pick")
		return markers.Marker{}, false, fmt.Errorf("%w: %w", markers.ErrImageRead, err)
	}
	if picked.Cancelled {
		logger.Info().Msg("Image pick cancelled; no marker created")
		return markers.Marker{}, false, nil
	}

	// 2. Read
	data, err := picked.ReadAll()
	if err != nil {
		s.recorder.CreateFailed("read")
		return markers.Marker{}, false, fmt.Errorf("%w: %w", markers.ErrImageRead, err)
	}

	// 3. Upload
	key := markers.NewBlobKey(s.clock())
	logger = logger.With().Str("blob_key", key).Logger()
	contentType := picked.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if err := s.blobs.Upload(ctx, key, data, contentType); err != nil {
		s.recorder.CreateFailed("upload")
		return markers.Marker{}, false, fmt.Errorf("%w: %w", markers.ErrUploadFailed, err)
	}

	// 4. Resolve the download reference
	imageURL, err := s.blobs.DownloadURL(ctx, key)
	if err != nil {
		s.recorder.CreateFailed("download_url")
		s.reportOrphan(logger, err)
		return markers.Marker{}, false, fmt.Errorf("%w: %w", markers.ErrUploadFailed, err)
	}

	// 5. Insert the document
	rec := markers.MarkerRecord{Latitude: at.Latitude, Longitude: at.Longitude, ImageURL: imageURL}
	id, err := s.collection.Insert(ctx, rec)
	if err != nil {
		s.recorder.CreateFailed("insert")
		s.reportOrphan(logger, err)
		return markers.Marker{}, false, fmt.Errorf("%w: %w", markers.ErrMetadataWriteFailed, err)
	}

	// 6. Mirror
	marker = rec.WithID(id)
	s.stateMu.Lock()
	s.state = appendMarker(s.state, marker)
	s.stateMu.Unlock()

	s.recorder.MarkerCreated()
	s.publish(ctx, markers.Event{Type: markers.EventMarkerCreated, Marker: marker})
	logger.Info().Str("marker_id", id).Msg("Marker created")
	return marker, true, nil
}

func (s *MarkerStore) reportOrphan(logger zerolog.Logger, cause error) {
	s.recorder.OrphanedBlob()
	logger.Warn().Err(cause).Msg("Uploaded image has no marker document; blob is orphaned")
}

// DeleteMarker removes a mirrored marker: first its document, then best-effort
// its image. If the document delete fails nothing changes locally, including the
// selection. Once it succeeds the marker leaves the mirror and the selection is
// cleared, whatever happens to the image.
func (s *MarkerStore) DeleteMarker(ctx context.Context, id string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	ready, ok := s.readyState()
	if !ok {
		return markers.ErrNotReady
	}
	marker, ok := ready.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", markers.ErrMarkerNotFound, id)
	}

	logger := s.logger.With().Str("marker_id", id).Str("image_url", marker.ImageURL).Logger()

	if err := s.collection.Delete(ctx, id); err != nil {
		logger.Error().Err(err).Msg("Marker document delete failed")
		return fmt.Errorf("%w: %w", markers.ErrDeleteFailed, err)
	}

	if err := s.blobs.Delete(ctx, marker.ImageURL); err != nil {
		s.recorder.BlobDeleteFailed()
		logger.Warn().Err(fmt.Errorf("%w: %w", markers.ErrBlobDeleteFailed, err)).Msg("Ignoring image delete failure")
	}

	s.stateMu.Lock()
	s.state = removeMarker(s.state, id)
	s.stateMu.Unlock()

	s.recorder.MarkerDeleted()
	s.publish(ctx, markers.Event{Type: markers.EventMarkerDeleted, Marker: marker})
	logger.Info().Msg("Marker deleted")
	return nil
}

// Refresh re-lists the collection and replaces the mirror, reporting which IDs
// appeared or vanished. The selection survives only if its marker is still listed.
func (s *MarkerStore) Refresh(ctx context.Context) (markers.DiffResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	ready, ok := s.readyState()
	if !ok {
		return markers.DiffResult{}, markers.ErrNotReady
	}

	remote, err := s.collection.List(ctx)
	if err != nil {
		return markers.DiffResult{}, fmt.Errorf("%w: %w", markers.ErrListFailed, err)
	}
	diff := markers.Diff(ready.Markers, remote)

	s.stateMu.Lock()
	next := markers.Ready{Position: ready.Position, Markers: cloneMarkers(remote)}
	if sel, isSelected := s.state.(markers.Selected); isSelected {
		if reselected, found := next.Select(sel.Marker().ID); found {
			s.state = reselected
		} else {
			s.state = next
		}
	} else {
		s.state = next
	}
	s.stateMu.Unlock()

	s.logger.Info().
		Int("added", len(diff.Added)).
		Int("removed", len(diff.Removed)).
		Msg("Markers refreshed")
	return diff, nil
}

// Select marks a mirrored marker as the one being inspected.
func (s *MarkerStore) Select(id string) (markers.Marker, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	ready, ok := readyOf(s.state)
	if !ok {
		return markers.Marker{}, markers.ErrNotReady
	}
	sel, ok := ready.Select(id)
	if !ok {
		return markers.Marker{}, fmt.Errorf("%w: %s", markers.ErrMarkerNotFound, id)
	}
	s.state = sel
	return sel.Marker(), nil
}

// CloseDetail dismisses the detail view. It is a no-op when nothing is selected.
func (s *MarkerStore) CloseDetail() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if sel, ok := s.state.(markers.Selected); ok {
		s.state = sel.Close()
	}
}

// Snapshot returns a copy of the current state that is safe to hand to a renderer.
func (s *MarkerStore) Snapshot() markers.State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	switch st := s.state.(type) {
	case markers.Ready:
		return copyReady(st)
	case markers.Selected:
		sel, _ := copyReady(st.Ready).Select(st.Marker().ID)
		return sel
	default:
		return st
	}
}

// Markers returns a copy of the local mirror, or nil while loading.
func (s *MarkerStore) Markers() []markers.Marker {
	ready, ok := s.readyState()
	if !ok {
		return nil
	}
	return cloneMarkers(ready.Markers)
}

func (s *MarkerStore) publish(ctx context.Context, ev markers.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("event", string(ev.Type)).Str("marker_id", ev.Marker.ID).Msg("Failed to publish marker event")
	}
}

func (s *MarkerStore) setState(st markers.State) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
}

func (s *MarkerStore) readyState() (markers.Ready, bool) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return readyOf(s.state)
}

func readyOf(st markers.State) (markers.Ready, bool) {
	switch v := st.(type) {
	case markers.Ready:
		return v, true
	case markers.Selected:
		return v.Ready, true
	default:
		return markers.Ready{}, false
	}
}

// appendMarker and removeMarker always build a fresh slice so snapshots handed
// out earlier never observe the change.
func appendMarker(st markers.State, m markers.Marker) markers.State {
	switch v := st.(type) {
	case markers.Ready:
		v.Markers = append(cloneMarkers(v.Markers), m)
		return v
	case markers.Selected:
		ready := v.Ready
		ready.Markers = append(cloneMarkers(ready.Markers), m)
		sel, _ := ready.Select(v.Marker().ID)
		return sel
	default:
		return st
	}
}

func removeMarker(st markers.State, id string) markers.State {
	ready, ok := readyOf(st)
	if !ok {
		return st
	}
	kept := make([]markers.Marker, 0, len(ready.Markers))
	for _, m := range ready.Markers {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	ready.Markers = kept
	return ready
}

func copyReady(r markers.Ready) markers.Ready {
	r.Markers = cloneMarkers(r.Markers)
	return r
}

func cloneMarkers(in []markers.Marker) []markers.Marker {
	out := make([]markers.Marker, len(in))
	copy(out, in)
	return out
}

func asKind(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
