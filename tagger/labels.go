package tagger

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/go-seqtag/sentence"
)

// Labels is a tagger's output vocabulary: the attribute the labels are
// written to and the label string for each model class index.
type Labels struct {
	// Attribute is the token attribute key labels are stored under.
	// Empty selects sentence.AttrUPOS.
	Attribute string `yaml:"attribute"`

	// Labels maps class index to label string.
	Labels []string `yaml:"labels"`
}

// LoadLabels reads a label vocabulary from a YAML file.
func LoadLabels(path string) (*Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading label file: %w", err)
	}

	var labels Labels
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("parsing label file %s: %w", path, err)
	}
	if len(labels.Labels) == 0 {
		return nil, fmt.Errorf("label file %s defines no labels", path)
	}
	if labels.Attribute == "" {
		labels.Attribute = sentence.AttrUPOS
	}

	return &labels, nil
}

// Len returns the number of labels.
func (l *Labels) Len() int { return len(l.Labels) }
