package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestChunkRange(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		chunkSize int
		want      [][2]int
	}{
		{name: "empty", total: 0, chunkSize: 10, want: nil},
		{name: "exact", total: 4, chunkSize: 2, want: [][2]int{{0, 2}, {2, 4}}},
		{name: "remainder", total: 5, chunkSize: 2, want: [][2]int{{0, 2}, {2, 4}, {4, 5}}},
		{name: "zero chunk size", total: 3, chunkSize: 0, want: [][2]int{{0, 3}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got [][2]int
			err := ChunkRange(tc.total, tc.chunkSize, func(start, end int) error {
				got = append(got, [2]int{start, end})
				return nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestChunkRangeStopsOnError(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := ChunkRange(10, 3, func(start, end int) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDedupe(t *testing.T) {
	if got := Dedupe([]int64{3, 1, 3, 0, 2, 1}); !reflect.DeepEqual(got, []int64{3, 1, 2}) {
		t.Fatalf("got %v", got)
	}
	if got := Dedupe([]string{"a", "", "b", "a"}); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("got %v", got)
	}
	if got := Dedupe[string](nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
