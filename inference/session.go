// Package inference provides ONNX Runtime sessions for token-level models.
//
// Sessions execute transformer-style models taking input_ids and
// attention_mask tensors and producing per-position logits. Both the
// boundary-detection segmenter and the sequence tagger run through this
// package; they differ only in logit width.
package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ErrSessionClosed indicates use of a closed session.
var ErrSessionClosed = errors.New("inference: session closed")

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initORT initializes the ONNX Runtime environment once per process.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// Logits is the dense [Batch, Seq, Classes] output of one model run.
type Logits struct {
	Data    []float32
	Batch   int
	Seq     int
	Classes int
}

// Row returns the class logits for sequence position pos of batch row b.
func (l *Logits) Row(b, pos int) []float32 {
	off := (b*l.Seq + pos) * l.Classes
	return l.Data[off : off+l.Classes]
}

// Session wraps one ONNX Runtime session. A session runs one inference at
// a time; concurrency comes from pooling sessions, not from sharing one.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// Model input/output names shared by the supported model exports.
var (
	inputNames  = []string{"input_ids", "attention_mask"}
	outputNames = []string{"logits"}
)

// NewSession creates a session from an ONNX model file.
func NewSession(modelPath string) (*Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }()

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, options)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Run executes the model on a padded batch. All rows of inputIDs and
// attentionMask must have identical length.
func (s *Session) Run(ctx context.Context, inputIDs, attentionMask [][]int64) (*Logits, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	batch := len(inputIDs)
	if batch == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	seqLen := len(inputIDs[0])

	flatIDs := make([]int64, 0, batch*seqLen)
	flatMask := make([]int64, 0, batch*seqLen)
	for i := range inputIDs {
		if len(inputIDs[i]) != seqLen || len(attentionMask[i]) != seqLen {
			return nil, fmt.Errorf("ragged batch: row %d", i)
		}
		flatIDs = append(flatIDs, inputIDs[i]...)
		flatMask = append(flatMask, attentionMask[i]...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	shape := ort.NewShape(int64(batch), int64(seqLen))
	idsTensor, err := ort.NewTensor(shape, flatIDs)
	if err != nil {
		return nil, fmt.Errorf("creating input_ids tensor: %w", err)
	}
	defer func() { _ = idsTensor.Destroy() }()

	maskTensor, err := ort.NewTensor(shape, flatMask)
	if err != nil {
		return nil, fmt.Errorf("creating attention_mask tensor: %w", err)
	}
	defer func() { _ = maskTensor.Destroy() }()

	inputs := []ort.Value{idsTensor, maskTensor}
	outputs := []ort.Value{nil}

	if err := s.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}
	if outputs[0] == nil {
		return nil, fmt.Errorf("no output produced")
	}
	defer func() { _ = outputs[0].Destroy() }()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	outShape := tensor.GetShape()
	classes := 1
	if len(outShape) == 3 {
		classes = int(outShape[2])
	}

	logits := &Logits{
		Data:    make([]float32, batch*seqLen*classes),
		Batch:   batch,
		Seq:     seqLen,
		Classes: classes,
	}
	copy(logits.Data, tensor.GetData()[:len(logits.Data)])

	return logits, nil
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
