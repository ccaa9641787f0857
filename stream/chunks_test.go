package stream

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		input    []int
		want     [][]int
	}{
		{"partial final chunk", 3, []int{1, 2, 3, 4, 5}, [][]int{{1, 2, 3}, {4, 5}}},
		{"exact multiple", 3, []int{1, 2, 3, 4, 5, 6}, [][]int{{1, 2, 3}, {4, 5, 6}}},
		{"empty input", 3, nil, nil},
		{"capacity one", 1, []int{1, 2}, [][]int{{1}, {2}}},
		{"capacity below one", 0, []int{1, 2}, [][]int{{1}, {2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Collect[[]int](context.Background(), Chunks[int](Of(tt.input...), tt.capacity))
			if err != nil {
				t.Fatalf("Collect failed: %v", err)
			}
			if len(chunks) != len(tt.want) {
				t.Fatalf("expected %d chunks, got %d", len(tt.want), len(chunks))
			}
			for i, chunk := range chunks {
				if len(chunk) != len(tt.want[i]) {
					t.Fatalf("chunk %d: expected %v, got %v", i, tt.want[i], chunk)
				}
				for j, v := range chunk {
					if v != tt.want[i][j] {
						t.Errorf("chunk %d item %d: expected %d, got %d", i, j, tt.want[i][j], v)
					}
				}
			}
		})
	}
}

func TestChunks_NeverEmitsEmptyChunk(t *testing.T) {
	chunks, err := Collect[[]int](context.Background(), Chunks[int](Of[int](), 4))
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

// failAfter yields n items and then a terminal error.
type failAfter struct {
	n   int
	err error
	i   int
}

func (f *failAfter) Next(_ context.Context) (int, error) {
	if f.i >= f.n {
		return 0, f.err
	}
	f.i++
	return f.i, nil
}

func TestChunks_UpstreamErrorDiscardsBuffer(t *testing.T) {
	wantErr := errors.New("upstream broke")
	c := Chunks[int](&failAfter{n: 2, err: wantErr}, 4)

	_, err := c.Next(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected upstream error, got: %v", err)
	}

	// The two buffered items must not surface afterwards.
	if len(c.buf) != 0 {
		t.Errorf("expected buffer discarded, found %d items", len(c.buf))
	}
}

func TestCollect_EOF(t *testing.T) {
	items, err := Collect(context.Background(), Of(1, 2, 3))
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}

	// Of is exhausted: another pull reports io.EOF.
	_, err = Of[int]().Next(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got: %v", err)
	}
}
