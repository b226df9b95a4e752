// Package pipeline drives the four-stage lecture processing run:
// audio normalization, transcription, note generation and action item
// extraction. Runs are strictly sequential; one job is processed at a
// time by design.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"lecture-processor/pkg/config"
	"lecture-processor/pkg/llm"
	"lecture-processor/pkg/models"
	"lecture-processor/pkg/storage"
	"lecture-processor/pkg/transcribe"
)

// Normalizer prepares uploaded audio for the recognizer.
type Normalizer interface {
	ConvertTo16kWAV(ctx context.Context, inputPath string) (string, error)
	ValidateFile(ctx context.Context, path string) (float64, error)
}

// Transcriber converts normalized audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, durationSeconds float64, chunkSeconds int, progress transcribe.ProgressFunc) (string, error)
}

// TextGenerator is the generation-service surface the pipeline needs.
type TextGenerator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (string, error)
	GenerateTitle(ctx context.Context, transcript, model string) (string, error)
	CheckConnection(ctx context.Context) (bool, string)
}

// Observer receives synchronous progress checkpoints. Informational
// only; it cannot affect scheduling.
type Observer func(event models.ProgressEvent)

type Manager struct {
	config      config.PipelineConfig
	memStore    storage.MemoryStore
	diskStore   storage.DiskStore
	normalizer  Normalizer
	transcriber Transcriber
	generator   TextGenerator
	observer    Observer

	jobCh chan *models.LectureJob

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(cfg config.PipelineConfig, memStore storage.MemoryStore, diskStore storage.DiskStore,
	normalizer Normalizer, transcriber Transcriber, generator TextGenerator) *Manager {
	return &Manager{
		config:      cfg,
		memStore:    memStore,
		diskStore:   diskStore,
		normalizer:  normalizer,
		transcriber: transcriber,
		generator:   generator,
		jobCh:       make(chan *models.LectureJob, cfg.QueueSize),
	}
}

// SetObserver installs an optional progress callback. Must be called
// before Start.
func (m *Manager) SetObserver(observer Observer) {
	m.observer = observer
}

func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)
	log.Println("Pipeline Manager: Starting...")

	m.wg.Add(1)
	go m.runWorker()
	return nil
}

func (m *Manager) Stop() {
	log.Println("Pipeline Manager: Stopping...")
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	log.Println("Pipeline Manager: Stopped.")
}

// Submit queues a lecture for processing. The record becomes visible
// in the memory store immediately with pending status.
func (m *Manager) Submit(job *models.LectureJob) error {
	record := models.NewLectureRecord(job)
	if err := m.memStore.StoreLecture(record); err != nil {
		return fmt.Errorf("failed to register lecture: %w", err)
	}

	select {
	case m.jobCh <- job:
		log.Printf("Pipeline Manager: Lecture %s queued.", job.ID)
		return nil
	case <-m.ctx.Done():
		return fmt.Errorf("pipeline is shutting down")
	default:
		return fmt.Errorf("pipeline queue is full")
	}
}

// runWorker processes queued jobs one at a time. Concurrent runs are
// not supported; the single worker is the serialization point.
func (m *Manager) runWorker() {
	defer m.wg.Done()
	log.Println("Pipeline Worker: Running.")

	for {
		select {
		case job := <-m.jobCh:
			log.Printf("Pipeline Worker: Processing lecture %s.", job.ID)
			m.process(m.ctx, job)

		case <-m.ctx.Done():
			log.Println("Pipeline Worker: Shutting down.")
			return
		}
	}
}

func (m *Manager) notify(lectureID string, stage int, message string) {
	if m.observer == nil {
		return
	}
	m.observer(models.ProgressEvent{
		LectureID: lectureID,
		Stage:     stage,
		Stages:    totalStages,
		Message:   message,
	})
}
