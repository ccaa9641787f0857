package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLines(t *testing.T) {
	lines, err := Collect[string](context.Background(), Lines(strings.NewReader("one\ntwo\n\nthree"), 0))
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	want := []string{"one", "two", "", "three"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], line)
		}
	}
}

func TestLines_Empty(t *testing.T) {
	lines, err := Collect[string](context.Background(), Lines(strings.NewReader(""), 0))
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no lines, got %d", len(lines))
	}
}

// brokenReader fails after serving its prefix.
type brokenReader struct {
	prefix io.Reader
	err    error
}

func (r *brokenReader) Read(p []byte) (int, error) {
	n, err := r.prefix.Read(p)
	if errors.Is(err, io.EOF) {
		return n, r.err
	}
	return n, err
}

func TestLines_ReadFailure(t *testing.T) {
	readErr := errors.New("connection reset")
	l := Lines(&brokenReader{prefix: strings.NewReader("one\n"), err: readErr}, 0)

	ctx := context.Background()
	if _, err := l.Next(ctx); err != nil {
		t.Fatalf("first line failed: %v", err)
	}

	_, err := l.Next(ctx)
	if !errors.Is(err, ErrRead) {
		t.Errorf("expected ErrRead, got: %v", err)
	}
	if !errors.Is(err, readErr) {
		t.Errorf("expected wrapped cause, got: %v", err)
	}
}

func TestLines_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Lines(strings.NewReader("one\n"), 0).Next(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}
