package markers

// Phase names the screen state.
type Phase string

const (
	PhaseLoading  Phase = "LOADING"
	PhaseReady    Phase = "READY"
	PhaseSelected Phase = "SELECTED"
)

// State is the screen state: Loading, Ready or Selected.
// The set of implementations is closed to this package.
type State interface {
	Phase() Phase
	isState()
}

// Loading is the state before both the position and the marker list are known.
// Reason holds the error that blocked the last load attempt, if any.
type Loading struct {
	Reason error
}

func (Loading) Phase() Phase { return PhaseLoading }
func (Loading) isState()     {}

// Ready holds the user's position and the local mirror.
type Ready struct {
	Position Coordinate
	Markers  []Marker
}

func (Ready) Phase() Phase { return PhaseReady }
func (Ready) isState()     {}

// Region is the initial viewport centered on the user.
func (r Ready) Region() Region { return RegionAround(r.Position) }

// Find returns the mirrored marker with the given ID.
func (r Ready) Find(id string) (Marker, bool) {
	for _, m := range r.Markers {
		if m.ID == id {
			return m, true
		}
	}
	return Marker{}, false
}

// Select builds a Selected state for a marker of this mirror.
// It fails when the ID is not mirrored, so a Selected always points into its mirror.
func (r Ready) Select(id string) (Selected, bool) {
	m, ok := r.Find(id)
	if !ok {
		return Selected{}, false
	}
	return Selected{Ready: r, marker: m}, true
}

// Selected is Ready with one marker open in the detail view.
type Selected struct {
	Ready
	marker Marker
}

func (Selected) Phase() Phase { return PhaseSelected }
func (Selected) isState()     {}

// Marker is the inspected marker.
func (s Selected) Marker() Marker { return s.marker }

// Close drops the selection.
func (s Selected) Close() Ready { return s.Ready }
