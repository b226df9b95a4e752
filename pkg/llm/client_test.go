package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCheckConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, time.Second)
	ok, msg := client.CheckConnection(context.Background())
	if !ok {
		t.Errorf("CheckConnection() = false, %q", msg)
	}
}

func TestCheckConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close()

	client := NewClient(srv.URL, time.Second, time.Second)
	ok, msg := client.CheckConnection(context.Background())
	if ok {
		t.Fatal("expected failure against closed server")
	}
	if !strings.Contains(msg, "ollama serve") {
		t.Errorf("message %q should tell the user how to start the service", msg)
	}
}

func TestCheckModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"llama3:8b"},{"name":"mistral:latest"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, time.Second)

	if ok, msg := client.CheckModel(context.Background(), "llama3"); !ok {
		t.Errorf("llama3 should match the llama3:8b tag, got %q", msg)
	}
	ok, msg := client.CheckModel(context.Background(), "phi3")
	if ok {
		t.Error("phi3 should not be available")
	}
	if !strings.Contains(msg, "llama3") || !strings.Contains(msg, "mistral") {
		t.Errorf("message %q should list the installed models", msg)
	}
}

func TestGenerate(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"generated text"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, time.Second)
	got, err := client.Generate(context.Background(), GenerateRequest{
		Model:       "llama3",
		Prompt:      "summarize this",
		Temperature: 0.3,
		MaxTokens:   4096,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "generated text" {
		t.Errorf("response = %q", got)
	}

	if payload["model"] != "llama3" {
		t.Errorf("model = %v", payload["model"])
	}
	if payload["stream"] != false {
		t.Errorf("stream = %v, must be disabled", payload["stream"])
	}
	options, ok := payload["options"].(map[string]any)
	if !ok {
		t.Fatalf("options missing from payload: %v", payload)
	}
	if options["temperature"] != 0.3 {
		t.Errorf("temperature = %v", options["temperature"])
	}
	if options["num_predict"] != float64(4096) {
		t.Errorf("num_predict = %v", options["num_predict"])
	}
}

func TestGenerateServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, time.Second)
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	if err == nil || !strings.Contains(err.Error(), "generation service error 404") {
		t.Errorf("error = %v", err)
	}
}

func TestGenerateTitle(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"strips quotes", `"Introduction to Graph Theory"`, "Introduction to Graph Theory"},
		{"trims whitespace", "  Neural Networks  \n", "Neural Networks"},
		{
			"truncates at word boundary",
			strings.Repeat("Longword ", 15),
			strings.TrimSpace(strings.Repeat("Longword ", 11)) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"response": tt.response})
			}))
			defer srv.Close()

			client := NewClient(srv.URL, time.Second, time.Second)
			got, err := client.GenerateTitle(context.Background(), "transcript text", "llama3")
			if err != nil {
				t.Fatalf("GenerateTitle() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateTitleSamplesTranscript(t *testing.T) {
	var promptLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		promptLen = len(payload["prompt"].(string))
		json.NewEncoder(w).Encode(map[string]string{"response": "Some Title"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, time.Second)
	long := strings.Repeat("x", 10000)
	if _, err := client.GenerateTitle(context.Background(), long, "llama3"); err != nil {
		t.Fatal(err)
	}

	overhead := len(TitlePrompt(""))
	if promptLen != overhead+titleSampleChars {
		t.Errorf("prompt length = %d, want template plus %d sampled characters", promptLen, titleSampleChars)
	}
}

func TestPrompts(t *testing.T) {
	if !strings.Contains(NotesPrompt("the transcript", "stem"), "STEM") {
		t.Error("stem type should select the STEM template")
	}
	if !strings.Contains(NotesPrompt("the transcript", "unknown"), "expert academic note-taker") {
		t.Error("unknown type should fall back to the general template")
	}

	withDate := ActionsPrompt("the transcript", "2026-03-10")
	if !strings.Contains(withDate, "LECTURE DATE: 2026-03-10") {
		t.Error("lecture date line missing")
	}
	if dateIdx, tIdx := strings.Index(withDate, "LECTURE DATE"), strings.LastIndex(withDate, "TRANSCRIPT:"); dateIdx > tIdx {
		t.Error("lecture date must precede the transcript")
	}
	if strings.Contains(ActionsPrompt("the transcript", ""), "LECTURE DATE") {
		t.Error("empty date must not produce a date line")
	}
}
