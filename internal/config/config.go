// Package config resolves server settings and pipeline definitions.
//
// Process settings come from the environment; pipeline definitions come
// from a YAML file mapping pipeline names to their segmenter, model, and
// batching parameters. The pipeline core consumes only the resolved
// result, never the file format.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Settings are process-level options, read from the environment.
type Settings struct {
	// Addr is the HTTP listen address.
	Addr string `env:"SEQTAG_ADDR" envDefault:":8080"`

	// ConfigPath locates the pipeline definition file.
	ConfigPath string `env:"SEQTAG_CONFIG" envDefault:"seqtag.yaml"`

	// Workers sizes the shared worker pool. Zero selects NumCPU.
	Workers int `env:"SEQTAG_WORKERS" envDefault:"0"`

	// Sessions is the number of concurrent ONNX sessions per model.
	Sessions int `env:"SEQTAG_SESSIONS" envDefault:"1"`

	// MaxLineBytes caps the length of one input line. Zero selects the
	// reader default.
	MaxLineBytes int `env:"SEQTAG_MAX_LINE_BYTES" envDefault:"0"`
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing environment: %w", err)
	}
	return s, nil
}

// Segmenter algorithms accepted in pipeline definitions.
const (
	SegmenterWhitespace = "whitespace"
	SegmenterModel      = "model"
)

// SegmenterConfig defines a named segmentation strategy.
type SegmenterConfig struct {
	// Algorithm selects the strategy: "whitespace" or "model".
	Algorithm string `yaml:"algorithm"`

	// Model is the boundary-model ONNX file ("model" only).
	Model string `yaml:"model"`

	// Pieces is the SentencePiece vocabulary file ("model" only).
	Pieces string `yaml:"pieces"`

	// Threshold overrides the boundary probability threshold ("model"
	// only; zero keeps the default).
	Threshold float32 `yaml:"threshold"`
}

// PipelineConfig defines one named pipeline.
type PipelineConfig struct {
	// Description is shown by the pipeline listing endpoint.
	Description string `yaml:"description"`

	// Segmenter references a named entry of the segmenters map.
	Segmenter string `yaml:"segmenter"`

	// Model is the tagger's ONNX file.
	Model string `yaml:"model"`

	// Labels is the tagger's YAML label vocabulary.
	Labels string `yaml:"labels"`

	// Pieces is the SentencePiece vocabulary used to encode sentences
	// for the tagger.
	Pieces string `yaml:"pieces"`

	// BatchSize is the number of sentences per inference call.
	BatchSize int `yaml:"batch_size"`

	// ReadAhead is the number of batches accumulated per chunk.
	ReadAhead int `yaml:"read_ahead"`

	// MaxLen drops sentences longer than this many pieces; zero keeps
	// everything.
	MaxLen int `yaml:"max_len"`
}

// File is the pipeline definition file.
type File struct {
	Segmenters map[string]SegmenterConfig `yaml:"segmenters"`
	Pipelines  map[string]PipelineConfig  `yaml:"pipelines"`
}

// Load reads and validates a pipeline definition file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates pipeline definition bytes.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if len(f.Pipelines) == 0 {
		return fmt.Errorf("config defines no pipelines")
	}

	for name, sc := range f.Segmenters {
		switch sc.Algorithm {
		case SegmenterWhitespace:
		case SegmenterModel:
			if sc.Model == "" || sc.Pieces == "" {
				return fmt.Errorf("segmenter %q: model and pieces are required", name)
			}
		default:
			return fmt.Errorf("segmenter %q: unknown algorithm %q", name, sc.Algorithm)
		}
	}

	for name, pc := range f.Pipelines {
		if pc.Segmenter == "" {
			return fmt.Errorf("pipeline %q: segmenter is required", name)
		}
		if _, ok := f.Segmenters[pc.Segmenter]; !ok {
			return fmt.Errorf("pipeline %q: unknown segmenter %q", name, pc.Segmenter)
		}
		if pc.Model == "" || pc.Labels == "" || pc.Pieces == "" {
			return fmt.Errorf("pipeline %q: model, labels, and pieces are required", name)
		}
		if pc.BatchSize < 1 {
			return fmt.Errorf("pipeline %q: batch_size must be >= 1", name)
		}
		if pc.ReadAhead < 1 {
			return fmt.Errorf("pipeline %q: read_ahead must be >= 1", name)
		}
		if pc.MaxLen < 0 {
			return fmt.Errorf("pipeline %q: max_len must be >= 0", name)
		}
	}

	return nil
}
