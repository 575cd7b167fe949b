package app_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/illmade-knight/markermap/app"
	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Dependencies ---

type mockCollection struct {
	mu          sync.Mutex
	InsertFunc  func(ctx context.Context, rec markers.MarkerRecord) (string, error)
	ListFunc    func(ctx context.Context) ([]markers.Marker, error)
	DeleteFunc  func(ctx context.Context, id string) error
	insertCalls []markers.MarkerRecord
	listCalls   int
	deleteCalls []string
}

func (m *mockCollection) Insert(ctx context.Context, rec markers.MarkerRecord) (string, error) {
	m.mu.Lock()
	m.insertCalls = append(m.insertCalls, rec)
	m.mu.Unlock()
	if m.InsertFunc == nil {
		return "generated-id", nil
	}
	return m.InsertFunc(ctx, rec)
}

func (m *mockCollection) List(ctx context.Context) ([]markers.Marker, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx)
}

func (m *mockCollection) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.deleteCalls = append(m.deleteCalls, id)
	m.mu.Unlock()
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

type mockBlobs struct {
	UploadFunc      func(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURLFunc func(ctx context.Context, key string) (string, error)
	DeleteFunc      func(ctx context.Context, keyOrURL string) error
	uploadCalls     []string
	deleteCalls     []string
}

func (m *mockBlobs) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	m.uploadCalls = append(m.uploadCalls, key)
	if m.UploadFunc == nil {
		return nil
	}
	return m.UploadFunc(ctx, key, data, contentType)
}

func (m *mockBlobs) DownloadURL(ctx context.Context, key string) (string, error) {
	if m.DownloadURLFunc == nil {
		return "https://blobs.test/" + key, nil
	}
	return m.DownloadURLFunc(ctx, key)
}

func (m *mockBlobs) Delete(ctx context.Context, keyOrURL string) error {
	m.deleteCalls = append(m.deleteCalls, keyOrURL)
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, keyOrURL)
}

type mockLocation struct {
	PermissionFunc func(ctx context.Context) (bool, error)
	PositionFunc   func(ctx context.Context) (markers.Coordinate, error)
}

func (m *mockLocation) RequestPermission(ctx context.Context) (bool, error) {
	if m.PermissionFunc == nil {
		return true, nil
	}
	return m.PermissionFunc(ctx)
}

func (m *mockLocation) CurrentPosition(ctx context.Context) (markers.Coordinate, error) {
	if m.PositionFunc == nil {
		return markers.Coordinate{Latitude: 53.35, Longitude: -6.26}, nil
	}
	return m.PositionFunc(ctx)
}

type mockPicker struct {
	PickFunc func(ctx context.Context, opts markers.PickOptions) (markers.PickedImage, error)
	calls    int
}

func (m *mockPicker) PickImage(ctx context.Context, opts markers.PickOptions) (markers.PickedImage, error) {
	m.calls++
	return m.PickFunc(ctx, opts)
}

type mockPublisher struct {
	events []markers.Event
}

func (m *mockPublisher) Publish(ctx context.Context, ev markers.Event) error {
	m.events = append(m.events, ev)
	return nil
}

type countingRecorder struct {
	created, deleted, orphaned, blobDeleteFailures int
	failedStages                                   []string
}

func (r *countingRecorder) LoadCompleted(int) {}
func (r *countingRecorder) MarkerCreated() { r.created++ }
func (r *countingRecorder) MarkerDeleted() { r.deleted++ }
func (r *countingRecorder) CreateFailed(stage string) { r.failedStages = append(r.failedStages, stage) }
func (r *countingRecorder) OrphanedBlob() { r.orphaned++ }
func (r *countingRecorder) BlobDeleteFailed() { r.blobDeleteFailures++ }

func imagePicker(content string) *mockPicker {
	return &mockPicker{
		PickFunc: func(ctx context.Context, opts markers.PickOptions) (markers.PickedImage, error) {
			return markers.PickedImage{
				URI:         "file:///photos/1.jpg",
				ContentType: "image/jpeg",
				Open: func() (io.ReadCloser, error) {
					return io.NopCloser(strings.NewReader(content)), nil
				},
			}, nil
		},
	}
}

func cancelPicker() *mockPicker {
	return &mockPicker{
		PickFunc: func(ctx context.Context, opts markers.PickOptions) (markers.PickedImage, error) {
			return markers.CancelledPick(), nil
		},
	}
}

func seedList(seed ...markers.Marker) func(ctx context.Context) ([]markers.Marker, error) {
	return func(ctx context.Context) ([]markers.Marker, error) {
		return append([]markers.Marker(nil), seed...), nil
	}
}

// --- Test Suite ---

func TestMarkerStore_Load(t *testing.T) {
	ctx := context.Background()
	seed := []markers.Marker{
		{ID: "a", Latitude: 10, Longitude: 20, ImageURL: "u1"},
		{ID: "b", Latitude: -33.9, Longitude: 151.2, ImageURL: "u2"},
	}

	t.Run("ready after position and list", func(t *testing.T) {
		coll := &mockCollection{ListFunc: seedList(seed...)}
		store := app.New(app.Dependencies{Collection: coll, Blobs: &mockBlobs{}, Location: &mockLocation{}}, zerolog.Nop())

		assert.Equal(t, markers.PhaseLoading, store.Snapshot().Phase())

		ready, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, seed, ready.Markers)
		assert.Equal(t, markers.PhaseReady, store.Snapshot().Phase())
		assert.Equal(t, markers.DefaultLatitudeDelta, ready.Region().LatitudeDelta)
		assert.Equal(t, 53.35, ready.Region().Center.Latitude)
	})

	t.Run("loading twice yields the same mirror", func(t *testing.T) {
		coll := &mockCollection{ListFunc: seedList(seed...)}
		store := app.New(app.Dependencies{Collection: coll, Blobs: &mockBlobs{}, Location: &mockLocation{}}, zerolog.Nop())

		_, err := store.Load(ctx)
		require.NoError(t, err)
		first := store.Markers()
		_, err = store.Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, store.Markers())
		assert.Equal(t, 2, coll.listCalls)
	})

	t.Run("permission denied keeps loading and skips the list", func(t *testing.T) {
		coll := &mockCollection{ListFunc: seedList(seed...)}
		loc := &mockLocation{PermissionFunc: func(ctx context.Context) (bool, error) { return false, nil }}
		store := app.New(app.Dependencies{Collection: coll, Blobs: &mockBlobs{}, Location: loc}, zerolog.Nop())

		_, err := store.Load(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, markers.ErrLocationUnavailable)
		assert.ErrorIs(t, err, markers.ErrPermissionDenied)
		assert.Zero(t, coll.listCalls)

		loading, ok := store.Snapshot().(markers.Loading)
		require.True(t, ok)
		assert.ErrorIs(t, loading.Reason, markers.ErrPermissionDenied)
		assert.Nil(t, store.Markers())
	})

	t.Run("position unavailable keeps loading", func(t *testing.T) {
		coll := &mockCollection{}
		loc := &mockLocation{PositionFunc: func(ctx context.Context) (markers.Coordinate, error) {
			return markers.Coordinate{}, errors.New("no fix")
		}}
		store := app.New(app.Dependencies{Collection: coll, Blobs: &mockBlobs{}, Location: loc}, zerolog.Nop())

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, markers.ErrPositionUnavailable)
		assert.ErrorIs(t, err, markers.ErrLocationUnavailable)
		assert.Zero(t, coll.listCalls)
		assert.Equal(t, markers.PhaseLoading, store.Snapshot().Phase())
	})

	t.Run("list failure keeps loading", func(t *testing.T) {
		coll := &mockCollection{ListFunc: func(ctx context.Context) ([]markers.Marker, error) {
			return nil, errors.New("unavailable")
		}}
		store := app.New(app.Dependencies{Collection: coll, Blobs: &mockBlobs{}, Location: &mockLocation{}}, zerolog.Nop())

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, markers.ErrListFailed)
		assert.Equal(t, markers.PhaseLoading, store.Snapshot().Phase())
	})
}

func TestMarkerStore_CreateMarker(t *testing.T) {
	ctx := context.Background()
	at := markers.Coordinate{Latitude: 48.8584, Longitude: 2.2945}

	t.Run("roundtrip through in-memory stores", func(t *testing.T) {
		coll := markers.NewInMemoryCollection()
		blobs := markers.NewInMemoryBlobStore()
		pub := &mockPublisher{}
		rec := &countingRecorder{}
		store := app.New(app.Dependencies{
			Collection: coll,
			Blobs:      blobs,
			Location:   &mockLocation{},
			Publisher:  pub,
			Recorder:   rec,
			Clock:      func() time.Time { return time.UnixMilli(1700000000000) },
		}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)

		m, created, err := store.CreateMarker(ctx, at, imagePicker("jpeg-bytes"))
		require.NoError(t, err)
		require.True(t, created)

		mirror := store.Markers()
		require.Len(t, mirror, 1)
		assert.Equal(t, m, mirror[0])
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, at, m.Coordinate())

		data, err := blobs.Fetch(ctx, m.ImageURL)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)
		require.Len(t, blobs.Keys(), 1)
		assert.True(t, strings.HasPrefix(blobs.Keys()[0], "1700000000000-"))

		remote, err := coll.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, mirror, remote)

		require.Len(t, pub.events, 1)
		assert.Equal(t, markers.EventMarkerCreated, pub.events[0].Type)
		assert.Equal(t, 1, rec.created)
	})

	t.Run("picker uses 4:3 editable full quality", func(t *testing.T) {
		store := app.New(app.Dependencies{Collection: &mockCollection{}, Blobs: &mockBlobs{}, Location: &mockLocation{}}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)

		var seen markers.PickOptions
		picker := &mockPicker{PickFunc: func(ctx context.Context, opts markers.PickOptions) (markers.PickedImage, error) {
			seen = opts
			return markers.CancelledPick(), nil
		}}
		_, _, err = store.CreateMarker(ctx, at, picker)
		require.NoError(t, err)
		assert.Equal(t, markers.DefaultPickOptions, seen)
	})

	t.Run("cancelled pick is a no-op", func(t *testing.T) {
		coll := markers.NewInMemoryCollection()
		coll.Seed(markers.Marker{ID: "a", Latitude: 10, Longitude: 20, ImageURL: "u1"})
		blobs := markers.NewInMemoryBlobStore()
		store := app.New(app.Dependencies{Collection: coll, Blobs: blobs, Location: &mockLocation{}}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)

		beforeLocal := store.Markers()
		beforeRemote, _ := coll.List(ctx)

		m, created, err := store.CreateMarker(ctx, at, cancelPicker())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, markers.Marker{}, m)

		afterRemote, _ := coll.List(ctx)
		assert.Equal(t, beforeLocal, store.Markers())
		assert.Equal(t, beforeRemote, afterRemote)
		assert.Empty(t, blobs.Keys())
	})

	t.Run("invalid coordinates are rejected before any call", func(t *testing.T) {
		invalid := []markers.Coordinate{
			{Latitude: 90.5, Longitude: 0},
			{Latitude: -91, Longitude: 0},
			{Latitude: 0, Longitude: 180.01},
			{Latitude: 0, Longitude: -200},
		}
		for _, c := range invalid {
			coll := &mockCollection{}
			blobs := &mockBlobs{}
			store := app.New(app.Dependencies{Collection: coll, Blobs: blobs, Location: &mockLocation{}}, zerolog.Nop())
			_, err := store.Load(ctx)
			require.NoError(t, err)
			picker := imagePicker("x")

			_, created, err := store.CreateMarker(ctx, c, picker)
			assert.ErrorIs(t, err, markers.ErrInvalidCoordinate)
			assert.False(t, created)
			assert.Zero(t, picker.calls)
			assert.Empty(t, blobs.uploadCalls)
			assert.Empty(t, coll.insertCalls)
		}
	})

	t.Run("not ready before load", func(t *testing.T) {
		picker := imagePicker("x")
		store := app.New(app.Dependencies{Collection: &mockCollection{}, Blobs: &mockBlobs{}, Location: &mockLocation{}}, zerolog.Nop())
		_, _, err := store.CreateMarker(ctx, at, picker)
		assert.ErrorIs(t, err, markers.ErrNotReady)
		assert.Zero(t, picker.calls)
	})

	t.Run("read failure changes nothing", func(t *testing.T) {
		blobs := &mockBlobs{}
		coll := &mockCollection{}
		store := app.New(app.Dependencies{Collection: coll, Blobs: blobs, Location: &mockLocation{}}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)

		picker := &mockPicker{PickFunc: func(ctx context.Context, opts markers.PickOptions) (markers.PickedImage, error) {
			return markers.PickedImage{
				URI:  "file:///gone.jpg",
				Open: func() (io.ReadCloser, error) { return nil, errors.New("file vanished") },
			}, nil
		}}
		_, created, err := store.CreateMarker(ctx, at, picker)
		assert.ErrorIs(t, err, markers.ErrImageRead)
		assert.False(t, created)
		assert.Empty(t, blobs.uploadCalls)
		assert.Empty(t, coll.insertCalls)
		assert.Empty(t, store.Markers())
	})

	t.Run("upload failure", func(t *testing.T) {
		coll := &mockCollection{}
		blobs := &mockBlobs{UploadFunc: func(ctx context.Context, key string, data []byte, contentType string) error {
			return errors.New("quota exceeded")
		}}
		store := app.New(app.Dependencies{Collection: coll, Blobs: blobs, Location: &mockLocation{}}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)

		_, _, err = store.CreateMarker(ctx, at, imagePicker("x"))
		assert.ErrorIs(t, err, markers.ErrUploadFailed)
		assert.Empty(t, coll.insertCalls)
		assert.Empty(t, store.Markers())
	})

	t.Run("metadata failure leaves an orphaned blob", func(t *testing.T) {
		coll := &mockCollection{InsertFunc: func(ctx context.Context, rec markers.MarkerRecord) (string, error) {
			return "", errors.New("permission denied by rules")
		}}
		blobs := markers.NewInMemoryBlobStore()
		rec := &countingRecorder{}
		store := app.New(app.Dependencies{Collection: coll, Blobs: blobs, Location: &mockLocation{}, Recorder: rec}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)

		_, created, err := store.CreateMarker(ctx, at, imagePicker("x"))
		assert.ErrorIs(t, err, markers.ErrMetadataWriteFailed)
		assert.False(t, created)
		assert.Empty(t, store.Markers())
		assert.Len(t, blobs.Keys(), 1, "the uploaded blob is not rolled back")
		assert.Equal(t, 1, rec.orphaned)
		assert.Equal(t, []string{"insert"}, rec.failedStages)
	})

	t.Run("second create while one is in flight is rejected", func(t *testing.T) {
		release := make(chan struct{})
		entered := make(chan struct{})
		blobs := &mockBlobs{UploadFunc: func(ctx context.Context, key string, data []byte, contentType string) error {
			close(entered)
			<-release
			return nil
		}}
		store := app.New(app.Dependencies{Collection: &mockCollection{}, Blobs: blobs, Location: &mockLocation{}}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, _, err := store.CreateMarker(ctx, at, imagePicker("first"))
			done <- err
		}()
		<-entered

		_, _, err = store.CreateMarker(ctx, at, imagePicker("second"))
		assert.ErrorIs(t, err, markers.ErrCreateInProgress)

		close(release)
		require.NoError(t, <-done)
		assert.Len(t, store.Markers(), 1)
	})

	t.Run("create keeps an open selection", func(t *testing.T) {
		coll := &mockCollection{ListFunc: seedList(markers.Marker{ID: "a", Latitude: 1, Longitude: 1, ImageURL: "u1"})}
		store := app.New(app.Dependencies{Collection: coll, Blobs: &mockBlobs{}, Location: &mockLocation{}}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)
		_, err = store.Select("a")
		require.NoError(t, err)

		_, created, err := store.CreateMarker(ctx, at, imagePicker("x"))
		require.NoError(t, err)
		require.True(t, created)

		sel, ok := store.Snapshot().(markers.Selected)
		require.True(t, ok)
		assert.Equal(t, "a", sel.Marker().ID)
		assert.Len(t, sel.Markers, 2)
	})
}

func TestMarkerStore_DeleteMarker(t *testing.T) {
	ctx := context.Background()

	t.Run("select then delete with failing blob delete", func(t *testing.T) {
		coll := &mockCollection{ListFunc: seedList(markers.Marker{ID: "a", Latitude: 10, Longitude: 20, ImageURL: "u1"})}
		blobs := &mockBlobs{DeleteFunc: func(ctx context.Context, keyOrURL string) error {
			return markers.ErrNotFound
		}}
		rec := &countingRecorder{}
		store := app.New(app.Dependencies{Collection: coll, Blobs: blobs, Location: &mockLocation{}, Recorder: rec}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)

		selected, err := store.Select("a")
		require.NoError(t, err)
		assert.Equal(t, "a", selected.ID)
		assert.Equal(t, markers.PhaseSelected, store.Snapshot().Phase())

		err = store.DeleteMarker(ctx, "a")
		require.NoError(t, err)

		assert.Equal(t, []string{"a"}, coll.deleteCalls)
		assert.Equal(t, []string{"u1"}, blobs.deleteCalls)
		assert.Empty(t, store.Markers())
		assert.Equal(t, markers.PhaseReady, store.Snapshot().Phase())
		assert.Equal(t, 1, rec.blobDeleteFailures)
		assert.Equal(t, 1, rec.deleted)
	})

	t.Run("delete removes exactly one", func(t *testing.T) {
		seed := []markers.Marker{
			{ID: "a", ImageURL: "u1"},
			{ID: "b", ImageURL: "u2"},
			{ID: "c", ImageURL: "u3"},
		}
		pub := &mockPublisher{}
		store := app.New(app.Dependencies{
			Collection: &mockCollection{ListFunc: seedList(seed...)},
			Blobs:      &mockBlobs{},
			Location:   &mockLocation{},
			Publisher:  pub,
		}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)
		_, err = store.Select("b")
		require.NoError(t, err)

		require.NoError(t, store.DeleteMarker(ctx, "b"))

		remaining := store.Markers()
		require.Len(t, remaining, 2)
		for _, m := range remaining {
			assert.NotEqual(t, "b", m.ID)
		}
		_, isSelected := store.Snapshot().(markers.Selected)
		assert.False(t, isSelected)
		require.Len(t, pub.events, 1)
		assert.Equal(t, markers.EventMarkerDeleted, pub.events[0].Type)
		assert.Equal(t, "b", pub.events[0].Marker.ID)
	})

	t.Run("document delete failure preserves state", func(t *testing.T) {
		seed := []markers.Marker{{ID: "a", ImageURL: "u1"}, {ID: "b", ImageURL: "u2"}}
		coll := &mockCollection{
			ListFunc:   seedList(seed...),
			DeleteFunc: func(ctx context.Context, id string) error { return errors.New("deadline exceeded") },
		}
		blobs := &mockBlobs{}
		store := app.New(app.Dependencies{Collection: coll, Blobs: blobs, Location: &mockLocation{}}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)
		_, err = store.Select("a")
		require.NoError(t, err)

		err = store.DeleteMarker(ctx, "a")
		assert.ErrorIs(t, err, markers.ErrDeleteFailed)

		assert.Equal(t, seed, store.Markers())
		sel, ok := store.Snapshot().(markers.Selected)
		require.True(t, ok)
		assert.Equal(t, "a", sel.Marker().ID)
		assert.Empty(t, blobs.deleteCalls)
	})

	t.Run("unknown marker", func(t *testing.T) {
		coll := &mockCollection{ListFunc: seedList(markers.Marker{ID: "a", ImageURL: "u1"})}
		store := app.New(app.Dependencies{Collection: coll, Blobs: &mockBlobs{}, Location: &mockLocation{}}, zerolog.Nop())
		_, err := store.Load(ctx)
		require.NoError(t, err)

		err = store.DeleteMarker(ctx, "zzz")
		assert.ErrorIs(t, err, markers.ErrMarkerNotFound)
		assert.Empty(t, coll.deleteCalls)
	})
}

func TestMarkerStore_Selection(t *testing.T) {
	ctx := context.Background()
	coll := &mockCollection{ListFunc: seedList(markers.Marker{ID: "a", ImageURL: "u1"})}
	store := app.New(app.Dependencies{Collection: coll, Blobs: &mockBlobs{}, Location: &mockLocation{}}, zerolog.Nop())

	_, err := store.Select("a")
	assert.ErrorIs(t, err, markers.ErrNotReady)

	_, err = store.Load(ctx)
	require.NoError(t, err)

	_, err = store.Select("missing")
	assert.ErrorIs(t, err, markers.ErrMarkerNotFound)
	assert.Equal(t, markers.PhaseReady, store.Snapshot().Phase())

	_, err = store.Select("a")
	require.NoError(t, err)
	assert.Equal(t, markers.PhaseSelected, store.Snapshot().Phase())

	store.CloseDetail()
	assert.Equal(t, markers.PhaseReady, store.Snapshot().Phase())

	store.CloseDetail()
	assert.Equal(t, markers.PhaseReady, store.Snapshot().Phase())
}

func TestMarkerStore_Refresh(t *testing.T) {
	ctx := context.Background()
	coll := markers.NewInMemoryCollection()
	coll.Seed(markers.Marker{ID: "a", ImageURL: "u1"})
	coll.Seed(markers.Marker{ID: "b", ImageURL: "u2"})
	store := app.New(app.Dependencies{Collection: coll, Blobs: markers.NewInMemoryBlobStore(), Location: &mockLocation{}}, zerolog.Nop())

	_, err := store.Refresh(ctx)
	assert.ErrorIs(t, err, markers.ErrNotReady)

	_, err = store.Load(ctx)
	require.NoError(t, err)
	_, err = store.Select("a")
	require.NoError(t, err)

	diff, err := store.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, diff.Empty())

	// Another session changes the collection behind our back.
	require.NoError(t, coll.Delete(ctx, "a"))
	coll.Seed(markers.Marker{ID: "c", ImageURL: "u3"})

	diff, err = store.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, diff.Added)
	assert.Equal(t, []string{"a"}, diff.Removed)
	assert.Len(t, store.Markers(), 2)
	assert.Equal(t, markers.PhaseReady, store.Snapshot().Phase(), "selection of a vanished marker is dropped")
}

func TestMarkerStore_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	coll := &mockCollection{ListFunc: seedList(markers.Marker{ID: "a", ImageURL: "u1"})}
	store := app.New(app.Dependencies{Collection: coll, Blobs: &mockBlobs{}, Location: &mockLocation{}}, zerolog.Nop())
	_, err := store.Load(ctx)
	require.NoError(t, err)

	snap, ok := store.Snapshot().(markers.Ready)
	require.True(t, ok)
	snap.Markers[0].ID = "mutated"

	assert.Equal(t, "a", store.Markers()[0].ID)
}
