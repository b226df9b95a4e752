package audio

import (
	"strings"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{59.9, "59s"},
		{60, "1m 0s"},
		{125, "2m 5s"},
		{3600, "1h 0m 0s"},
		{3725, "1h 2m 5s"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		wantErr string
	}{
		{"below minimum", 4.9, "too short"},
		{"at minimum", 5, ""},
		{"typical lecture", 3600, ""},
		{"at maximum", 8 * 3600, ""},
		{"above maximum", 8*3600 + 1, "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDuration(tt.seconds)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateDuration(%v) = %v, want nil", tt.seconds, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateDuration(%v) = %v, want %q", tt.seconds, err, tt.wantErr)
			}
		})
	}
}

func TestNewProcessorDefaults(t *testing.T) {
	p := NewProcessor("", "", "")
	if p.FFmpeg != "ffmpeg" || p.FFprobe != "ffprobe" {
		t.Errorf("defaults = %q, %q", p.FFmpeg, p.FFprobe)
	}
	if p.TempDir == "" {
		t.Error("temp dir not defaulted")
	}
}
