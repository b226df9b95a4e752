package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lecture-processor/pkg/config"
	"lecture-processor/pkg/export"
	"lecture-processor/pkg/models"
	"lecture-processor/pkg/pipeline"
	"lecture-processor/pkg/storage"

	"github.com/gorilla/mux"
)

const maxUploadBytes = 512 << 20

type Handlers struct {
	pipeline *pipeline.Manager
	store    storage.MemoryStore
	cfg      *config.Config
}

func NewHandlers(pipeline *pipeline.Manager, store storage.MemoryStore, cfg *config.Config) *Handlers {
	return &Handlers{
		pipeline: pipeline,
		store:    store,
		cfg:      cfg,
	}
}

// UploadHandler accepts a lecture recording plus optional metadata and
// queues it for processing.
func (h *Handlers) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp(h.cfg.Audio.TempDir, "upload_*"+filepath.Ext(header.Filename))
	if err != nil {
		http.Error(w, "Failed to save audio file", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		http.Error(w, "Failed to save audio file", http.StatusInternalServerError)
		return
	}
	tmp.Close()

	model := r.FormValue("model")
	if model == "" {
		model = h.cfg.Pipeline.DefaultModel
	}
	lectureType := r.FormValue("lecture_type")
	if lectureType == "" {
		lectureType = h.cfg.Pipeline.DefaultType
	}

	job := models.NewLectureJob(
		tmp.Name(),
		r.FormValue("title"),
		r.FormValue("course"),
		r.FormValue("date"),
		model,
		lectureType,
	)

	log.Printf("PROCESSING REQUESTED: LectureID=%s, File=%s, Size=%d bytes",
		job.ID, header.Filename, header.Size)

	if err := h.pipeline.Submit(job); err != nil {
		os.Remove(tmp.Name())
		http.Error(w, fmt.Sprintf("Failed to submit lecture: %v", err), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]interface{}{
		"lecture_id": job.ID,
		"status":     "submitted",
		"size":       header.Size,
	})
}

// GetLectureHandler returns the current state of one lecture record.
func (h *Handlers) GetLectureHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lectureID := vars["id"]

	record, err := h.store.GetLecture(lectureID)
	if err != nil {
		if err == storage.ErrLectureNotFound {
			http.Error(w, "lecture not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, record)
}

// ListLecturesHandler returns recent lecture records, newest first.
func (h *Handlers) ListLecturesHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListLectures()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if len(records) > limit {
		records = records[:limit]
	}

	writeJSON(w, map[string]interface{}{
		"lectures": records,
		"count":    len(records),
	})
}

// ExportHandler renders a completed lecture in the requested format:
// text (default), markdown or csv.
func (h *Handlers) ExportHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lectureID := vars["id"]

	record, err := h.store.GetLecture(lectureID)
	if err != nil {
		if err == storage.ErrLectureNotFound {
			http.Error(w, "lecture not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if record.Status != models.StatusCompleted {
		http.Error(w, fmt.Sprintf("lecture is not ready for export (status: %s)", record.Status), http.StatusConflict)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "text":
		serveDownload(w, "lecture_notes.txt", "text/plain; charset=utf-8",
			export.AsText(record, time.Now()))
	case "markdown":
		serveDownload(w, "lecture_notes.md", "text/markdown; charset=utf-8",
			export.AsMarkdown(record, time.Now()))
	case "csv":
		doc, err := export.ActionsCSV(record.ActionItems)
		if err != nil {
			http.Error(w, "Failed to render CSV", http.StatusInternalServerError)
			return
		}
		serveDownload(w, "action_items.csv", "text/csv; charset=utf-8", doc)
	default:
		http.Error(w, fmt.Sprintf("unknown export format %q", format), http.StatusBadRequest)
	}
}

func serveDownload(w http.ResponseWriter, filename, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: failed to encode response: %v", err)
	}
}
