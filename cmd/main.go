package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lecture-processor/pkg/api"
	"lecture-processor/pkg/audio"
	"lecture-processor/pkg/config"
	"lecture-processor/pkg/llm"
	"lecture-processor/pkg/models"
	"lecture-processor/pkg/pipeline"
	"lecture-processor/pkg/storage"
	"lecture-processor/pkg/transcribe"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load configuration
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}
	cfg := config.Load()

	// Initialize storage
	memStore := storage.NewMemoryStore()
	diskStore, err := storage.NewDiskStore(cfg.StoragePath)
	if err != nil {
		log.Fatalf("Failed to initialize disk storage: %v", err)
	}
	defer diskStore.Close()

	// External collaborators
	generator := llm.NewClient(cfg.Generation.BaseURL, cfg.Generation.RequestTimeout, cfg.Generation.HealthTimeout)
	recognizer := transcribe.NewClient(cfg.Recognizer.BaseURL, cfg.Recognizer.Language, cfg.Recognizer.VADFilter, cfg.Recognizer.RequestTimeout)
	processor := audio.NewProcessor(cfg.Audio.FFmpegCommand, cfg.Audio.FFprobeCommand, cfg.Audio.TempDir)

	if ok, msg := generator.CheckConnection(context.Background()); !ok {
		log.Printf("Warning: %s", msg)
	} else if ok, msg := generator.CheckModel(context.Background(), cfg.Pipeline.DefaultModel); !ok {
		log.Printf("Warning: %s", msg)
	}

	// Initialize pipeline
	pipelineManager := pipeline.NewManager(cfg.Pipeline, memStore, diskStore, processor, recognizer, generator)
	pipelineManager.SetObserver(func(event models.ProgressEvent) {
		log.Printf("Progress [%s] stage %d/%d: %s", event.LectureID, event.Stage, event.Stages, event.Message)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pipelineManager.Start(ctx); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer pipelineManager.Stop()

	// Initialize API handlers
	handlers := api.NewHandlers(pipelineManager, memStore, cfg)

	// Setup routes
	router := mux.NewRouter()
	router.HandleFunc("/lectures", handlers.UploadHandler).Methods("POST")
	router.HandleFunc("/lectures", handlers.ListLecturesHandler).Methods("GET")
	router.HandleFunc("/lectures/{id}", handlers.GetLectureHandler).Methods("GET")
	router.HandleFunc("/lectures/{id}/export", handlers.ExportHandler).Methods("GET")
	router.HandleFunc("/ws", handlers.WebSocketHandler)

	// Start HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
