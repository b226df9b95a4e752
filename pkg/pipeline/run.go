package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"lecture-processor/pkg/actions"
	"lecture-processor/pkg/audio"
	"lecture-processor/pkg/models"
	"lecture-processor/pkg/notes"
	"lecture-processor/pkg/transcribe"
)

const totalStages = 4

// process runs the full stage sequence for one lecture. Stage 1
// failures abort the run; later stages degrade to warnings so the
// caller always keeps at least a transcript. Temp files registered
// during the run are removed unconditionally.
func (m *Manager) process(ctx context.Context, job *models.LectureJob) {
	record, err := m.memStore.GetLecture(job.ID)
	if err != nil {
		record = models.NewLectureRecord(job)
		m.memStore.StoreLecture(record)
	}

	var tempFiles []string
	defer func() {
		audio.Cleanup(tempFiles...)
	}()
	defer m.persist(record)

	// The generation service must be reachable before any work starts.
	if ok, msg := m.generator.CheckConnection(ctx); !ok {
		m.fail(record, msg)
		return
	}

	// Stage 1: audio normalization.
	record.Status = models.StatusNormalizing
	m.checkpoint(record)
	m.notify(job.ID, 1, "Converting audio to 16kHz mono WAV format...")

	tempFiles = append(tempFiles, job.AudioPath)
	converted, err := m.normalizer.ConvertTo16kWAV(ctx, job.AudioPath)
	if err != nil {
		m.fail(record, err.Error())
		return
	}
	tempFiles = append(tempFiles, converted)

	duration, err := m.normalizer.ValidateFile(ctx, converted)
	if err != nil {
		m.fail(record, fmt.Sprintf("audio validation failed: %v", err))
		return
	}
	record.DurationSeconds = duration
	record.Metadata.Duration = audio.FormatDuration(duration)

	// Stage 2: transcription. A transcriber error is fatal; a failed
	// quality heuristic is only a warning.
	record.Status = models.StatusTranscribing
	m.checkpoint(record)
	m.notify(job.ID, 2, fmt.Sprintf("Transcribing %s of audio...", record.Metadata.Duration))

	transcript, err := m.transcriber.Transcribe(ctx, converted, duration, m.config.ChunkSeconds,
		func(current, total int, message string) {
			m.notify(job.ID, 2, message)
		})
	if err != nil {
		m.fail(record, fmt.Sprintf("transcription failed: %v", err))
		return
	}
	record.Transcript = transcript

	if ok, warning := transcribe.ValidateTranscript(transcript); !ok {
		record.AddWarning(fmt.Sprintf("transcript quality warning: %s", warning))
	}

	// Stage 2b: auto-title when the user left it blank. Never fatal.
	if strings.TrimSpace(record.Metadata.Title) == "" {
		title, err := m.generator.GenerateTitle(ctx, transcript, job.Model)
		if err != nil || title == "" {
			title = "Lecture " + time.Now().Format("2006-01-02 15:04")
		}
		record.Metadata.Title = title
	}

	// Stage 3: structured notes. Failures degrade, the run continues.
	record.Status = models.StatusGeneratingNotes
	m.checkpoint(record)
	m.notify(job.ID, 3, "Creating structured class notes...")

	notesResult, err := notes.Generate(ctx, m.generator, transcript, job.Model, job.Type)
	if err != nil {
		record.AddWarning(fmt.Sprintf("note generation failed: %v", err))
	} else {
		record.NotesMarkdown = notesResult.Markdown
		record.Notes = notesResult.Document
		record.NotesStats = notesResult.Stats
		if notesResult.Warning != "" {
			record.AddWarning(notesResult.Warning)
		}
		log.Printf("Pipeline Worker: %s.", notes.Summary(notesResult.Markdown))
	}

	// Stage 4: action items. Failures degrade, the run completes.
	record.Status = models.StatusExtractingItems
	m.checkpoint(record)
	m.notify(job.ID, 4, "Identifying assignments, readings, exams and other actionable items...")

	actionsResult, err := actions.Extract(ctx, m.generator, transcript, job.Model, record.Metadata.Date)
	if err != nil {
		record.AddWarning(fmt.Sprintf("action extraction failed: %v", err))
	} else {
		record.ActionItems = actionsResult.Items
		record.ActionsMarkdown = actions.FormatMarkdown(actionsResult.Items)
		log.Printf("Pipeline Worker: %s.", actions.Summary(actionsResult.Items))
	}

	record.Status = models.StatusCompleted
	record.ProcessedAt = time.Now()
	log.Printf("Pipeline Worker: Lecture %s completed.", job.ID)
}

// checkpoint publishes the current record snapshot for status polling.
func (m *Manager) checkpoint(record *models.LectureRecord) {
	if err := m.memStore.StoreLecture(record); err != nil {
		log.Printf("Pipeline Worker: failed to checkpoint lecture %s: %v", record.ID, err)
	}
}

func (m *Manager) fail(record *models.LectureRecord, message string) {
	record.Status = models.StatusFailed
	record.Error = message
	record.ProcessedAt = time.Now()
	log.Printf("Pipeline Worker: Lecture %s failed: %s", record.ID, message)
}

// persist writes the final record to both stores. Disk persistence
// failures are logged, never fatal.
func (m *Manager) persist(record *models.LectureRecord) {
	if err := m.memStore.StoreLecture(record); err != nil {
		log.Printf("Pipeline Worker: failed to store lecture %s in memory: %v", record.ID, err)
	}
	if m.diskStore == nil {
		return
	}
	if err := m.diskStore.StoreLecture(record); err != nil {
		log.Printf("Pipeline Worker: failed to store lecture %s on disk: %v", record.ID, err)
	}
}
