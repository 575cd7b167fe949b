// FILE: main.go
// This demo walks through the marker map flow against in-memory stores.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/illmade-knight/markermap/app"
	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog"
)

func main() {
	log.Println("--- Starting Marker Map Demo ---")
	ctx := context.Background()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	// 1. Initialize in-memory backends and seed one existing marker
	collection := markers.NewInMemoryCollection()
	blobs := markers.NewInMemoryBlobStore()
	_ = blobs.Upload(ctx, "u1", []byte("existing"), "image/jpeg")
	collection.Seed(markers.Marker{ID: "a", Latitude: 10, Longitude: 20, ImageURL: "mem://u1"})

	store := app.New(app.Dependencies{
		Collection: collection,
		Blobs:      blobs,
		Location: markers.StaticLocationProvider{
			Position: markers.Coordinate{Latitude: 53.3498, Longitude: -6.2603},
			Granted:  true,
		},
	}, logger)

	// 2. Load position and markers
	log.Println("\n--- Loading ---")
	ready, err := store.Load(ctx)
	if err != nil {
		log.Fatalf("load failed: %v", err)
	}
	region := ready.Region()
	log.Printf("✅ Centered on %.4f,%.4f (deltas %.4f/%.4f) with %d marker(s).",
		region.Center.Latitude, region.Center.Longitude, region.LatitudeDelta, region.LongitudeDelta, len(ready.Markers))

	// 3. Long-press to add a photo marker
	log.Println("\n--- Creating a marker ---")
	dir, err := os.MkdirTemp("", "markermap-demo")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)
	photo := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(photo, []byte("new photo"), 0o600); err != nil {
		log.Fatalf("write photo: %v", err)
	}
	created, ok, err := store.CreateMarker(ctx, markers.Coordinate{Latitude: 53.34, Longitude: -6.25}, markers.FilePicker{Path: photo})
	if err != nil || !ok {
		log.Fatalf("create failed: created=%v err=%v", ok, err)
	}
	log.Printf("✅ Created marker %s with image %s", created.ID, created.ImageURL)

	// 4. Tap the seeded marker and delete it
	log.Println("\n--- Selecting and deleting the seeded marker ---")
	selected, err := store.Select("a")
	if err != nil {
		log.Fatalf("select failed: %v", err)
	}
	fmt.Printf(" -> Selected %s at %.1f,%.1f\n", selected.ID, selected.Latitude, selected.Longitude)
	if err := store.DeleteMarker(ctx, "a"); err != nil {
		log.Fatalf("delete failed: %v", err)
	}

	// 5. Show what is left on the map and in storage
	log.Println("\n--- Remaining ---")
	for _, m := range store.Markers() {
		fmt.Printf(" 📍 %s at %.2f,%.2f -> %s\n", m.ID, m.Latitude, m.Longitude, m.ImageURL)
	}
	fmt.Printf(" 🗂  Stored images: %v\n", blobs.Keys())
	fmt.Printf(" 📋 Screen phase: %s\n", store.Snapshot().Phase())

	log.Println("\n--- Demo Finished ---")
}
