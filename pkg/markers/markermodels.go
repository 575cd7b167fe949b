// FILE: markers/models.go

package markers

import (
	"fmt"
	"math"
)

// Default viewport span around the user's position, in degrees.
const (
	DefaultLatitudeDelta  = 0.0922
	DefaultLongitudeDelta = 0.0421
)

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects non-finite values and positions outside the geographic ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) ||
		math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return fmt.Errorf("%w: non-finite value (%v, %v)", ErrInvalidCoordinate, c.Latitude, c.Longitude)
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// Region is the map viewport shown once the screen is ready.
type Region struct {
	Center         Coordinate `json:"center"`
	LatitudeDelta  float64    `json:"latitude_delta"`
	LongitudeDelta float64    `json:"longitude_delta"`
}

// RegionAround centers the default viewport on c.
func RegionAround(c Coordinate) Region {
	return Region{
		Center:         c,
		LatitudeDelta:  DefaultLatitudeDelta,
		LongitudeDelta: DefaultLongitudeDelta,
	}
}

// MarkerRecord is the persisted body of a marker, without the store-assigned ID.
type MarkerRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ImageURL  string  `json:"imageUrl"`
}

// Marker is a user-created pin combining a coordinate and a photo reference.
type Marker struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ImageURL  string  `json:"imageUrl"`
}

// Coordinate returns the marker's position.
func (m Marker) Coordinate() Coordinate {
	return Coordinate{Latitude: m.Latitude, Longitude: m.Longitude}
}

// Record strips the ID.
func (m Marker) Record() MarkerRecord {
	return MarkerRecord{Latitude: m.Latitude, Longitude: m.Longitude, ImageURL: m.ImageURL}
}

// WithID attaches a store-assigned ID to a record.
func (r MarkerRecord) WithID(id string) Marker {
	return Marker{ID: id, Latitude: r.Latitude, Longitude: r.Longitude, ImageURL: r.ImageURL}
}
