package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `
segmenters:
  plain:
    algorithm: whitespace
  boundary:
    algorithm: model
    model: models/boundary.onnx
    pieces: models/boundary.model
    threshold: 0.05

pipelines:
  en-pos:
    description: English part-of-speech tagging
    segmenter: boundary
    model: models/en-pos.onnx
    labels: models/en-pos-labels.yaml
    pieces: models/en.model
    batch_size: 16
    read_ahead: 2
    max_len: 256
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	pc, ok := f.Pipelines["en-pos"]
	if !ok {
		t.Fatal("pipeline en-pos missing")
	}
	if pc.Segmenter != "boundary" || pc.BatchSize != 16 || pc.ReadAhead != 2 || pc.MaxLen != 256 {
		t.Errorf("unexpected pipeline config: %+v", pc)
	}

	sc := f.Segmenters["boundary"]
	if sc.Algorithm != SegmenterModel || sc.Threshold != 0.05 {
		t.Errorf("unexpected segmenter config: %+v", sc)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "no pipelines",
			mutate:  func(c string) string { return strings.Split(c, "pipelines:")[0] },
			wantErr: "no pipelines",
		},
		{
			name:    "unknown segmenter reference",
			mutate:  func(c string) string { return strings.Replace(c, "segmenter: boundary", "segmenter: nope", 1) },
			wantErr: "unknown segmenter",
		},
		{
			name:    "unknown algorithm",
			mutate:  func(c string) string { return strings.Replace(c, "algorithm: whitespace", "algorithm: regex", 1) },
			wantErr: "unknown algorithm",
		},
		{
			name:    "model segmenter without pieces",
			mutate:  func(c string) string { return strings.Replace(c, "    pieces: models/boundary.model\n", "", 1) },
			wantErr: "model and pieces are required",
		},
		{
			name:    "zero batch size",
			mutate:  func(c string) string { return strings.Replace(c, "batch_size: 16", "batch_size: 0", 1) },
			wantErr: "batch_size",
		},
		{
			name:    "zero read ahead",
			mutate:  func(c string) string { return strings.Replace(c, "read_ahead: 2", "read_ahead: 0", 1) },
			wantErr: "read_ahead",
		},
		{
			name:    "negative max len",
			mutate:  func(c string) string { return strings.Replace(c, "max_len: 256", "max_len: -1", 1) },
			wantErr: "max_len",
		},
		{
			name:    "missing labels",
			mutate:  func(c string) string { return strings.Replace(c, "    labels: models/en-pos-labels.yaml\n", "", 1) },
			wantErr: "labels",
		},
		{
			name:    "malformed yaml",
			mutate:  func(c string) string { return c + "\n\t bad indent" },
			wantErr: "parsing config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.mutate(validConfig)))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seqtag.yaml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(f.Pipelines) != 1 {
		t.Errorf("expected 1 pipeline, got %d", len(f.Pipelines))
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", s.Addr)
	}
	if s.ConfigPath != "seqtag.yaml" {
		t.Errorf("expected default config path seqtag.yaml, got %q", s.ConfigPath)
	}
	if s.Sessions != 1 {
		t.Errorf("expected default sessions 1, got %d", s.Sessions)
	}
}

func TestLoadSettings_Environment(t *testing.T) {
	t.Setenv("SEQTAG_ADDR", "127.0.0.1:9090")
	t.Setenv("SEQTAG_WORKERS", "8")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Addr != "127.0.0.1:9090" {
		t.Errorf("expected addr from env, got %q", s.Addr)
	}
	if s.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", s.Workers)
	}
}
