// Package audio normalizes uploaded recordings to the 16kHz mono WAV
// format the speech recognizer requires, using an external ffmpeg
// binary.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// Duration bounds accepted for processing.
	MinDurationSeconds = 5
	MaxDurationHours   = 8

	sampleRate = "16000"
	channels   = "1"
)

// Processor shells out to ffmpeg/ffprobe for conversion and probing.
type Processor struct {
	FFmpeg  string
	FFprobe string
	TempDir string
}

func NewProcessor(ffmpeg, ffprobe, tempDir string) *Processor {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Processor{FFmpeg: ffmpeg, FFprobe: ffprobe, TempDir: tempDir}
}

// ConvertTo16kWAV resamples the input to 16kHz mono WAV and returns
// the path of the converted file, placed next to the temp dir.
func (p *Processor) ConvertTo16kWAV(ctx context.Context, inputPath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(p.TempDir, base+"_16k.wav")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.FFmpeg,
		"-y", "-i", inputPath,
		"-ar", sampleRate, "-ac", channels,
		outputPath,
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("ffmpeg not found, install it first (e.g. apt install ffmpeg or brew install ffmpeg)")
		}
		return "", fmt.Errorf("ffmpeg conversion failed: %s", strings.TrimSpace(stderr.String()))
	}
	return outputPath, nil
}

// Duration probes the audio length in seconds.
func (p *Processor) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return 0, fmt.Errorf("ffprobe not found, install it first (e.g. apt install ffmpeg or brew install ffmpeg)")
		}
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse audio duration: %w", err)
	}
	return seconds, nil
}

// ValidateFile checks that the file exists, is non-empty and its
// duration falls inside the accepted bounds.
func (p *Processor) ValidateFile(ctx context.Context, path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("audio file not found")
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("audio file is empty")
	}

	seconds, err := p.Duration(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("audio validation failed: %w", err)
	}
	if err := ValidateDuration(seconds); err != nil {
		return seconds, err
	}
	return seconds, nil
}

// ValidateDuration enforces the [5s, 8h] processing window.
func ValidateDuration(seconds float64) error {
	if seconds < MinDurationSeconds {
		return fmt.Errorf("audio is too short (%.1fs), minimum %d seconds required", seconds, MinDurationSeconds)
	}
	if seconds > MaxDurationHours*3600 {
		return fmt.Errorf("audio is too long (%.1fh), maximum %d hours", seconds/3600, MaxDurationHours)
	}
	return nil
}

// FormatDuration renders seconds as "1h 2m 5s", "2m 5s" or "45s".
func FormatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// Cleanup removes temporary files. Failures are logged, never fatal.
func Cleanup(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Cleanup: could not remove temp file %s: %v", path, err)
		}
	}
}
