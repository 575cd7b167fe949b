// Package firestore provides persistent storage implementations using Google Cloud Firestore.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/illmade-knight/markermap/pkg/markers"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the collection the marker documents live in.
const DefaultCollection = "markers"

// markerDocument is the private struct used for Firestore marshalling. The field
// names match the documents written by the mobile client.
type markerDocument struct {
	Latitude  float64 `firestore:"latitude"`
	Longitude float64 `firestore:"longitude"`
	ImageURL  string  `firestore:"imageUrl"`
}

// MarkersCollection is a concrete implementation of the markers.Collection interface using Firestore.
type MarkersCollection struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

// NewMarkersCollection creates a Firestore-backed marker collection.
// An empty name selects DefaultCollection.
func NewMarkersCollection(client *firestore.Client, name string) *MarkersCollection {
	if name == "" {
		name = DefaultCollection
	}
	return &MarkersCollection{
		client:     client,
		collection: client.Collection(name),
	}
}

func toMarkerDocument(rec markers.MarkerRecord) markerDocument {
	return markerDocument{
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
		ImageURL:  rec.ImageURL,
	}
}

func toMarker(id string, doc markerDocument) markers.Marker {
	return markers.Marker{
		ID:        id,
		Latitude:  doc.Latitude,
		Longitude: doc.Longitude,
		ImageURL:  doc.ImageURL,
	}
}

// Insert adds a new document and returns the ID Firestore generated for it.
func (s *MarkersCollection) Insert(ctx context.Context, rec markers.MarkerRecord) (string, error) {
	ref, _, err := s.collection.Add(ctx, toMarkerDocument(rec))
	if err != nil {
		return "", fmt.Errorf("failed to add marker document: %w", err)
	}
	return ref.ID, nil
}

// List returns every marker document in the collection.
func (s *MarkersCollection) List(ctx context.Context) ([]markers.Marker, error) {
	iter := s.collection.Documents(ctx)
	defer iter.Stop()
	return processMarkerIterator(iter)
}

// Delete removes a marker document. Deleting a missing document is reported as markers.ErrNotFound.
func (s *MarkersCollection) Delete(ctx context.Context, id string) error {
	_, err := s.collection.Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("marker with ID %s: %w", id, markers.ErrNotFound)
		}
		return err
	}
	return nil
}

// processMarkerIterator is a helper to drain results from a Firestore iterator.
func processMarkerIterator(iter *firestore.DocumentIterator) ([]markers.Marker, error) {
	var results []markers.Marker
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var md markerDocument
		if err := doc.DataTo(&md); err != nil {
			return nil, fmt.Errorf("failed to decode marker %s: %w", doc.Ref.ID, err)
		}
		results = append(results, toMarker(doc.Ref.ID, md))
	}
	return results, nil
}
