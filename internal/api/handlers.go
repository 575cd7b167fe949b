// Package api exposes the marker map screen over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog/hlog"
)

// MarkerService is the set of screen operations the handlers drive.
type MarkerService interface {
	Load(ctx context.Context) (markers.Ready, error)
	CreateMarker(ctx context.Context, at markers.Coordinate, picker markers.MediaPicker) (markers.Marker, bool, error)
	DeleteMarker(ctx context.Context, id string) error
	Refresh(ctx context.Context) (markers.DiffResult, error)
	Select(id string) (markers.Marker, error)
	CloseDetail()
	Snapshot() markers.State
}

// StateView is the JSON rendering of the screen state.
type StateView struct {
	Phase    markers.Phase    `json:"phase"`
	Error    string           `json:"error,omitempty"`
	Region   *markers.Region  `json:"region,omitempty"`
	Markers  []markers.Marker `json:"markers"`
	Selected *markers.Marker  `json:"selected,omitempty"`
}

func viewOf(st markers.State) StateView {
	view := StateView{Phase: st.Phase(), Markers: []markers.Marker{}}
	switch v := st.(type) {
	case markers.Loading:
		if v.Reason != nil {
			view.Error = v.Reason.Error()
		}
	case markers.Ready:
		region := v.Region()
		view.Region = &region
		view.Markers = append(view.Markers, v.Markers...)
	case markers.Selected:
		region := v.Region()
		view.Region = &region
		view.Markers = append(view.Markers, v.Markers...)
		m := v.Marker()
		view.Selected = &m
	}
	return view
}

// Handlers binds HTTP requests to a MarkerService.
type Handlers struct {
	svc            MarkerService
	maxUploadBytes int64
}

// NewHandlers creates the handler set. maxUploadBytes bounds the multipart body of a create.
func NewHandlers(svc MarkerService, maxUploadBytes int64) *Handlers {
	return &Handlers{svc: svc, maxUploadBytes: maxUploadBytes}
}

// GetState renders the current screen state.
func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(h.svc.Snapshot()))
}

// Load runs the initial load. The state view is returned on failure too so the
// client can keep showing the loading screen with the reason.
func (h *Handlers) Load(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Load(r.Context()); err != nil {
		status, _ := statusFor(err)
		writeJSON(w, status, viewOf(h.svc.Snapshot()))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(h.svc.Snapshot()))
}

// CreateMarker handles a long-press: form fields latitude and longitude plus an
// optional image file. Without a file nothing is created and 204 is returned.
func (h *Handlers) CreateMarker(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && err != http.ErrNotMultipart {
		writeErrorCode(w, r, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid form: %v", err))
		return
	}

	at, err := parseCoordinate(r.FormValue("latitude"), r.FormValue("longitude"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	marker, created, err := h.svc.CreateMarker(r.Context(), at, uploadPicker{r: r})
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Create marker failed")
		writeError(w, r, err)
		return
	}
	if !created {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, marker)
}

// SelectMarker handles a tap on a marker.
func (h *Handlers) SelectMarker(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.svc.Select(id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(h.svc.Snapshot()))
}

// CloseDetail dismisses the detail view.
func (h *Handlers) CloseDetail(w http.ResponseWriter, r *http.Request) {
	h.svc.CloseDetail()
	writeJSON(w, http.StatusOK, viewOf(h.svc.Snapshot()))
}

// DeleteMarker handles the delete action of the detail view.
func (h *Handlers) DeleteMarker(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.DeleteMarker(r.Context(), id); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("marker_id", id).Msg("Delete marker failed")
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(h.svc.Snapshot()))
}

// Refresh re-lists the collection.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	diff, err := h.svc.Refresh(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

func parseCoordinate(latRaw, lonRaw string) (markers.Coordinate, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return markers.Coordinate{}, fmt.Errorf("%w: latitude %q", markers.ErrInvalidCoordinate, latRaw)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if err != nil {
		return markers.Coordinate{}, fmt.Errorf("%w: longitude %q", markers.ErrInvalidCoordinate, lonRaw)
	}
	return markers.Coordinate{Latitude: lat, Longitude: lon}, nil
}
