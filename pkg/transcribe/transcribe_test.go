package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestChunkBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		chunk    int
		want     []Chunk
	}{
		{
			name:     "fits in one chunk",
			duration: 900,
			chunk:    1800,
			want:     []Chunk{{Start: 0, End: 900}},
		},
		{
			name:     "exact multiple",
			duration: 3600,
			chunk:    1800,
			want:     []Chunk{{Start: 0, End: 1800}, {Start: 1800, End: 3600}},
		},
		{
			name:     "partial final chunk",
			duration: 4000,
			chunk:    1800,
			want:     []Chunk{{Start: 0, End: 1800}, {Start: 1800, End: 3600}, {Start: 3600, End: 4000}},
		},
		{
			name:     "zero chunk size uses default",
			duration: 1000,
			chunk:    0,
			want:     []Chunk{{Start: 0, End: 1000}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkBoundaries(tt.duration, tt.chunk)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d chunks, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestJoinSegments(t *testing.T) {
	segments := []Segment{
		{Text: " Hello everyone."},
		{Text: " Today we cover recursion."},
	}
	got := JoinSegments(segments)
	want := "Hello everyone.  Today we cover recursion."
	if got != want {
		t.Errorf("JoinSegments() = %q, want %q", got, want)
	}

	if got := JoinSegments(nil); got != "" {
		t.Errorf("JoinSegments(nil) = %q", got)
	}
}

func TestValidateTranscript(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		ok         bool
	}{
		{"empty", "   ", false},
		{"nine words", "one two three four five six seven eight nine", false},
		{"ten distinct words", "one two three four five six seven eight nine ten", true},
		{"excessive repetition", strings.Repeat("the ", 48) + "quick fox", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateTranscript(tt.transcript)
			if ok != tt.ok {
				t.Errorf("ValidateTranscript() ok = %v, want %v (reason: %s)", ok, tt.ok, reason)
			}
			if !ok && reason == "" {
				t.Error("failed validation must carry a reason")
			}
		})
	}
}

func TestStats(t *testing.T) {
	stats := Stats("one two three four")
	if stats.WordCount != 4 {
		t.Errorf("word count = %d", stats.WordCount)
	}
	if stats.EstimatedReadingMins != 4.0/200 {
		t.Errorf("reading time = %v", stats.EstimatedReadingMins)
	}
}

func TestEstimateTime(t *testing.T) {
	if got := EstimateTime(1000, "tiny"); got != 100 {
		t.Errorf("tiny estimate = %v", got)
	}
	if got := EstimateTime(1000, "unknown"); got != 130 {
		t.Errorf("unknown model estimate = %v, want base fallback", got)
	}
}

func TestTranscribeChunked(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "lecture_16k.wav")
	if err := os.WriteFile(audioPath, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatal(err)
	}

	var clips []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if lang := r.FormValue("language"); lang != "en" {
			t.Errorf("language = %q", lang)
		}
		clips = append(clips, r.FormValue("clip_timestamps"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"language":"en","segments":[{"start":0,"end":1,"text":"chunk text"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "en", true, 5*time.Second)

	var progressCalls int
	text, err := client.Transcribe(context.Background(), audioPath, 2500, 1800,
		func(current, total int, message string) {
			progressCalls++
			if total != 2 {
				t.Errorf("progress total = %d", total)
			}
		})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if text != "chunk text chunk text" {
		t.Errorf("transcript = %q", text)
	}
	if progressCalls != 2 {
		t.Errorf("progress calls = %d", progressCalls)
	}
	wantClips := []string{"0,1800", "1800,2500"}
	if len(clips) != 2 || clips[0] != wantClips[0] || clips[1] != wantClips[1] {
		t.Errorf("clip timestamps = %v, want %v", clips, wantClips)
	}
}

func TestTranscribeWholeFile(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "short_16k.wav")
	if err := os.WriteFile(audioPath, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if clip := r.FormValue("clip_timestamps"); clip != "" {
			t.Errorf("whole-file request carried clip_timestamps %q", clip)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"language":"en","segments":[{"start":0,"end":5,"text":" full text "}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", true, 5*time.Second)
	text, err := client.Transcribe(context.Background(), audioPath, 600, 1800, nil)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "full text" {
		t.Errorf("transcript = %q", text)
	}
}

func TestTranscribeServiceError(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "bad_16k.wav")
	if err := os.WriteFile(audioPath, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "en", false, 5*time.Second)
	_, err := client.Transcribe(context.Background(), audioPath, 60, 1800, nil)
	if err == nil || !strings.Contains(err.Error(), "transcription service error 500") {
		t.Errorf("error = %v", err)
	}
}
