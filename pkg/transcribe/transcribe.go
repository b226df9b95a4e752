// Package transcribe converts normalized audio into text through a
// locally hosted speech recognition server, chunking long recordings
// into fixed time windows.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultChunkSeconds splits long recordings into 30 minute windows.
const DefaultChunkSeconds = 1800

// Chunk is one time window of the recording.
type Chunk struct {
	Start float64
	End   float64
}

// ProgressFunc is invoked after each chunk completes. Informational
// only; it cannot affect scheduling.
type ProgressFunc func(current, total int, message string)

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type transcribeResponse struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Client calls a local faster-whisper HTTP server.
type Client struct {
	baseURL   string
	language  string
	vadFilter bool
	http      *http.Client
}

func NewClient(baseURL, language string, vadFilter bool, timeout time.Duration) *Client {
	if language == "" {
		language = "en"
	}
	if timeout <= 0 {
		timeout = 600 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		language:  language,
		vadFilter: vadFilter,
		http:      &http.Client{Timeout: timeout},
	}
}

// ChunkBoundaries computes the fixed-length windows covering the
// recording. A recording at most one chunk long yields a single
// whole-file window.
func ChunkBoundaries(durationSeconds float64, chunkSeconds int) []Chunk {
	if chunkSeconds <= 0 {
		chunkSeconds = DefaultChunkSeconds
	}

	var chunks []Chunk
	for i := 0; i < int(durationSeconds); i += chunkSeconds {
		end := float64(i + chunkSeconds)
		if end > durationSeconds {
			end = durationSeconds
		}
		chunks = append(chunks, Chunk{Start: float64(i), End: end})
	}
	return chunks
}

// Transcribe converts the audio file to text. Recordings longer than
// chunkSeconds are transcribed window by window and the chunk texts
// joined with single spaces in order.
func (c *Client) Transcribe(ctx context.Context, audioPath string, durationSeconds float64, chunkSeconds int, progress ProgressFunc) (string, error) {
	if chunkSeconds <= 0 {
		chunkSeconds = DefaultChunkSeconds
	}

	if durationSeconds <= float64(chunkSeconds) {
		if progress != nil {
			progress(1, 1, "Transcribing audio...")
		}
		return c.transcribeWindow(ctx, audioPath, nil)
	}

	chunks := ChunkBoundaries(durationSeconds, chunkSeconds)
	texts := make([]string, 0, len(chunks))
	for idx, chunk := range chunks {
		if progress != nil {
			progress(idx+1, len(chunks), fmt.Sprintf("Transcribing chunk %d/%d (%.1fm - %.1fm)...",
				idx+1, len(chunks), chunk.Start/60, chunk.End/60))
		}
		text, err := c.transcribeWindow(ctx, audioPath, &chunk)
		if err != nil {
			return "", err
		}
		texts = append(texts, text)
	}
	return strings.Join(texts, " "), nil
}

func (c *Client) transcribeWindow(ctx context.Context, audioPath string, window *Chunk) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", err
	}
	mw.WriteField("language", c.language)
	mw.WriteField("vad_filter", strconv.FormatBool(c.vadFilter))
	if window != nil {
		mw.WriteField("clip_timestamps", fmt.Sprintf("%g,%g", window.Start, window.End))
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription service error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var tr transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	return JoinSegments(tr.Segments), nil
}

// JoinSegments concatenates segment texts with single spaces, trimmed.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ValidateTranscript applies the quality heuristics: non-empty, at
// least 10 words, and at least 10% unique words.
func ValidateTranscript(transcript string) (bool, string) {
	if strings.TrimSpace(transcript) == "" {
		return false, "transcript is empty, audio may be silent or unclear"
	}

	words := strings.Fields(transcript)
	if len(words) < 10 {
		return false, fmt.Sprintf("transcript is very short (%d words), audio may be unclear", len(words))
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	if float64(len(unique)) < float64(len(words))*0.1 {
		return false, "transcript has excessive repetition, audio quality may be poor"
	}

	return true, ""
}

// TranscriptStats summarizes a transcript.
type TranscriptStats struct {
	WordCount            int     `json:"word_count"`
	CharacterCount       int     `json:"character_count"`
	EstimatedReadingMins float64 `json:"estimated_reading_time_minutes"`
}

// Stats assumes an average reading speed of 200 words per minute.
func Stats(transcript string) TranscriptStats {
	words := len(strings.Fields(transcript))
	return TranscriptStats{
		WordCount:            words,
		CharacterCount:       len(transcript),
		EstimatedReadingMins: float64(words) / 200,
	}
}

// EstimateTime predicts transcription wall time for a recording based
// on rough realtime multipliers per model size.
func EstimateTime(durationSeconds float64, modelSize string) float64 {
	multipliers := map[string]float64{
		"tiny":   0.10,
		"base":   0.13,
		"small":  0.20,
		"medium": 0.40,
		"large":  0.60,
	}
	multiplier, ok := multipliers[modelSize]
	if !ok {
		multiplier = 0.13
	}
	return durationSeconds * multiplier
}
