package models

import (
	"time"

	"github.com/google/uuid"
)

// LectureJob is the unit of work submitted to the processing pipeline:
// one uploaded lecture recording plus user-supplied metadata.
type LectureJob struct {
	ID        string    `json:"id"`
	AudioPath string    `json:"audio_path"`
	Title     string    `json:"title"`
	Course    string    `json:"course"`
	Date      string    `json:"date"`
	Model     string    `json:"model"`
	Type      string    `json:"lecture_type"`
	Submitted time.Time `json:"submitted"`
}

// LectureMetadata describes the processed lecture.
type LectureMetadata struct {
	Title    string `json:"title"`
	Date     string `json:"date,omitempty"`
	Course   string `json:"course,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Subtopic is a second-level section of the generated notes.
type Subtopic struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// MainTopic is a top-level section of the generated notes.
type MainTopic struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Subtopics []Subtopic `json:"subtopics"`
}

// NotesDocument is the parsed hierarchy of the notes markdown.
// Built once from the model output, never mutated afterwards.
type NotesDocument struct {
	MainTopics []MainTopic `json:"main_topics"`
}

// NotesStats holds statistics computed by independent scans over the
// raw markdown. They can disagree with the parsed tree on malformed
// input; that is accepted.
type NotesStats struct {
	MainTopicsCount  int `json:"main_topics_count"`
	SubtopicsCount   int `json:"subtopics_count"`
	WordCount        int `json:"word_count"`
	CharacterCount   int `json:"character_count"`
	BulletPointCount int `json:"bullet_points_count"`
	KeyConceptCount  int `json:"key_concepts_count"`
}

// ActionItem is a single extracted actionable task.
type ActionItem struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Context     string `json:"context"`
}

// DueDateNone is the sentinel for an action item without a due date.
const DueDateNone = "Not specified"

// Normalized action item categories.
const (
	CategoryAssignment       = "Assignment"
	CategoryReadingRequired  = "Reading (Required)"
	CategoryReadingSuggested = "Reading (Suggested)"
	CategoryExam             = "Exam"
	CategoryDeadline         = "Deadline"
	CategoryReviewTopic      = "Review Topic"
	CategoryLabPractical     = "Lab/Practical"
	CategoryOther            = "Other"
)

// Normalized priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

type ProcessingStatus string

const (
	StatusPending         ProcessingStatus = "pending"
	StatusNormalizing     ProcessingStatus = "normalizing"
	StatusTranscribing    ProcessingStatus = "transcribing"
	StatusGeneratingNotes ProcessingStatus = "generating_notes"
	StatusExtractingItems ProcessingStatus = "extracting_actions"
	StatusCompleted       ProcessingStatus = "completed"
	StatusFailed          ProcessingStatus = "failed"
)

// LectureRecord accumulates the artifacts of one pipeline run. It is
// created fresh at the start of a run and populated stage by stage.
type LectureRecord struct {
	ID              string           `json:"id"`
	Metadata        LectureMetadata  `json:"metadata"`
	Transcript      string           `json:"transcript,omitempty"`
	NotesMarkdown   string           `json:"notes_markdown,omitempty"`
	Notes           *NotesDocument   `json:"notes,omitempty"`
	NotesStats      NotesStats       `json:"notes_stats,omitempty"`
	ActionItems     []ActionItem     `json:"action_items,omitempty"`
	ActionsMarkdown string           `json:"actions_markdown,omitempty"`
	DurationSeconds float64          `json:"duration_seconds,omitempty"`
	Status          ProcessingStatus `json:"status"`
	Error           string           `json:"error,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
	Submitted       time.Time        `json:"submitted"`
	ProcessedAt     time.Time        `json:"processed_at,omitempty"`
}

// ProgressEvent is delivered to the optional pipeline observer after
// each stage checkpoint. Purely informational.
type ProgressEvent struct {
	LectureID string `json:"lecture_id"`
	Stage     int    `json:"stage"`
	Stages    int    `json:"stages"`
	Message   string `json:"message"`
}

func NewLectureJob(audioPath, title, course, date, model, lectureType string) *LectureJob {
	return &LectureJob{
		ID:        uuid.New().String(),
		AudioPath: audioPath,
		Title:     title,
		Course:    course,
		Date:      date,
		Model:     model,
		Type:      lectureType,
		Submitted: time.Now(),
	}
}

func NewLectureRecord(job *LectureJob) *LectureRecord {
	return &LectureRecord{
		ID: job.ID,
		Metadata: LectureMetadata{
			Title:  job.Title,
			Date:   job.Date,
			Course: job.Course,
		},
		Status:    StatusPending,
		Submitted: job.Submitted,
	}
}

// AddWarning records a non-fatal problem surfaced by a stage.
func (r *LectureRecord) AddWarning(msg string) {
	if msg == "" {
		return
	}
	r.Warnings = append(r.Warnings, msg)
}
