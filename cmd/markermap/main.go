package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/storage"
	"github.com/illmade-knight/markermap/app"
	"github.com/illmade-knight/markermap/internal/api"
	"github.com/illmade-knight/markermap/internal/clients"
	"github.com/illmade-knight/markermap/internal/config"
	"github.com/illmade-knight/markermap/internal/events"
	"github.com/illmade-knight/markermap/internal/metrics"
	firestorestorage "github.com/illmade-knight/markermap/internal/storage/firestore"
	gcsstorage "github.com/illmade-knight/markermap/internal/storage/gcs"
	s3storage "github.com/illmade-knight/markermap/internal/storage/s3"
	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := newLogger(cfg.Log)

	var clientOpts []option.ClientOption
	if cfg.GCP.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.GCP.CredentialsFile))
	}

	// 2. Marker collection
	var collection markers.Collection
	if cfg.NeedsFirestore() {
		fsClient, err := firestore.NewClient(ctx, cfg.GCP.ProjectID, clientOpts...)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create Firestore client")
		}
		defer fsClient.Close()
		collection = firestorestorage.NewMarkersCollection(fsClient, cfg.GCP.Collection)
		logger.Info().Str("collection", cfg.GCP.Collection).Msg("Firestore marker collection initialized")
	} else {
		collection = markers.NewInMemoryCollection()
		logger.Warn().Msg("No GCP project configured, markers are kept in memory")
	}

	// 3. Blob store
	var blobs markers.BlobStore
	switch cfg.Blobs.Backend {
	case config.BlobBackendGCS:
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create Cloud Storage client")
		}
		defer gcsClient.Close()
		blobs = gcsstorage.NewImageStore(gcsClient, cfg.Blobs.Bucket, cfg.Blobs.PublicBaseURL, logger)
	case config.BlobBackendS3:
		s3Store, err := s3storage.NewImageStore(s3storage.Config{
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			UseSSL:        cfg.S3.UseSSL,
			Region:        cfg.S3.Region,
			Bucket:        cfg.Blobs.Bucket,
			PublicBaseURL: cfg.Blobs.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create S3 image store")
		}
		if err := s3Store.EnsureBucket(ctx, cfg.S3.Region); err != nil {
			logger.Fatal().Err(err).Msg("Failed to ensure S3 bucket")
		}
		blobs = s3Store
	default:
		blobs = markers.NewInMemoryBlobStore()
		logger.Warn().Msg("Images are kept in memory")
	}
	logger.Info().Str("backend", cfg.Blobs.Backend).Msg("Blob store initialized")

	// 4. Location
	var location markers.LocationProvider
	if cfg.Location.GeolocationURL != "" {
		location = clients.NewGeolocationClient(cfg.Location.GeolocationURL, cfg.Location.Granted, logger)
	} else {
		location = markers.StaticLocationProvider{
			Position: markers.Coordinate{Latitude: cfg.Location.Latitude, Longitude: cfg.Location.Longitude},
			Granted:  cfg.Location.Granted,
		}
	}

	// 5. Event sink
	var publisher markers.EventPublisher
	switch {
	case cfg.Events.PubsubTopic != "":
		psClient, err := pubsub.NewClient(ctx, cfg.GCP.ProjectID, clientOpts...)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create Pub/Sub client")
		}
		defer psClient.Close()
		psPublisher := events.NewPubsubPublisher(psClient, cfg.Events.PubsubTopic, logger)
		defer psPublisher.Stop()
		publisher = psPublisher
	case cfg.Events.WebhookURL != "":
		publisher = clients.NewWebhookClient(cfg.Events.WebhookURL, logger)
	}

	// 6. Orchestrator
	recorder := metrics.NewRecorder()
	store := app.New(app.Dependencies{
		Collection: collection,
		Blobs:      blobs,
		Location:   location,
		Publisher:  publisher,
		Recorder:   recorder,
	}, logger)

	if _, err := store.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial load failed, POST /load to retry")
	}

	// 7. HTTP server
	handlers := api.NewHandlers(store, int64(cfg.Server.MaxUploadBytes))
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           api.NewRouter(handlers, recorder.Handler(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Marker map service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received. Draining connections.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
