package stream

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestFromSlice_Collect(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 3}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFromSlice_Empty(t *testing.T) {
	p := FromSlice([]int{})
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestFrom_Iterator(t *testing.T) {
	iter := &sliceIter[string]{items: []string{"a", "b"}}
	p := From[string](iter)
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestFromChannel(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "lecture.mp4"
	ch <- "notes.txt"
	ch <- "talk.mov"
	close(ch)

	got, err := Collect(context.Background(), FromChannel(ch))
	if err != nil {
		t.Fatal(err)
	}
	if !strSliceEqual(got, []string{"lecture.mp4", "notes.txt", "talk.mov"}) {
		t.Errorf("got %v", got)
	}
}

func TestFromChannel_Cancelled(t *testing.T) {
	ch := make(chan int)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Collect(ctx, FromChannel(ch))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestMap(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	doubled := Map(p, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	got, err := Collect(context.Background(), doubled)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 4, 6}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMap_Error(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	failing := Map(p, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("boom")
		}
		return n, nil
	})
	got, err := Collect(context.Background(), failing)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected boom error, got %v", err)
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("expected values before the error, got %v", got)
	}
}

func TestMap_TypeConversion(t *testing.T) {
	p := FromSlice([]string{"/in/a.mp4", "/in/b.mov"})
	bases := Map(p, func(_ context.Context, path string) (string, error) {
		return filepath.Base(path), nil
	})
	got, err := Collect(context.Background(), bases)
	if err != nil {
		t.Fatal(err)
	}
	if !strSliceEqual(got, []string{"a.mp4", "b.mov"}) {
		t.Errorf("got %v", got)
	}
}

func TestFilter(t *testing.T) {
	p := FromSlice([]int{1, 2, 3, 4, 5, 6})
	evens := Filter(p, func(n int) bool { return n%2 == 0 })
	got, err := Collect(context.Background(), evens)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 4, 6}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilter_None(t *testing.T) {
	p := FromSlice([]int{1, 3, 5})
	evens := Filter(p, func(n int) bool { return n%2 == 0 })
	got, err := Collect(context.Background(), evens)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestTap(t *testing.T) {
	var tapped []int
	p := FromSlice([]int{1, 2, 3})
	observed := Tap(p, func(_ context.Context, n int) error {
		tapped = append(tapped, n)
		return nil
	})
	got, err := Collect(context.Background(), observed)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2, 3}) {
		t.Errorf("values should pass through unchanged, got %v", got)
	}
	if !intSliceEqual(tapped, []int{1, 2, 3}) {
		t.Errorf("tap should see all values, got %v", tapped)
	}
}

func TestTap_Error(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	failing := Tap(p, func(_ context.Context, n int) error {
		if n == 2 {
			return errors.New("tap failed")
		}
		return nil
	})
	_, err := Collect(context.Background(), failing)
	if err == nil || !strings.Contains(err.Error(), "tap failed") {
		t.Errorf("expected tap error, got %v", err)
	}
}

func TestParallel(t *testing.T) {
	p := FromSlice([]int{1, 2, 3, 4, 5})
	doubled := Parallel(p, 3, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	got, err := Collect(context.Background(), doubled)
	if err != nil {
		t.Fatal(err)
	}
	sort.Ints(got) // order not guaranteed
	want := []int{2, 4, 6, 8, 10}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParallel_BoundsConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	p := FromSlice([]int{1, 2, 3, 4, 5, 6})
	out := Parallel(p, 2, func(_ context.Context, n int) (int, error) {
		cur := active.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return n, nil
	})
	got, err := Collect(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 6 {
		t.Errorf("expected 6 values, got %d", len(got))
	}
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent workers, got %d", peak.Load())
	}
}

func TestParallel_Error(t *testing.T) {
	p := FromSlice([]int{1, 2, 3, 4, 5})
	failing := Parallel(p, 2, func(_ context.Context, n int) (int, error) {
		if n == 3 {
			return 0, errors.New("worker failed")
		}
		return n, nil
	})
	_, err := Collect(context.Background(), failing)
	if err == nil {
		t.Fatal("expected error from parallel worker")
	}
}

func TestDrain_Run(t *testing.T) {
	var collected []int
	p := FromSlice([]int{1, 2, 3})
	r := Drain(p, func(_ context.Context, n int) error {
		collected = append(collected, n)
		return nil
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(collected, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", collected)
	}
}

func TestDrain_SinkError(t *testing.T) {
	r := Drain(FromSlice([]int{1, 2}), func(_ context.Context, _ int) error {
		return errors.New("sink failed")
	})
	if err := r.Run(context.Background()); err == nil {
		t.Fatal("expected sink error")
	}
}

func TestChained_Pipeline(t *testing.T) {
	var tapped []string
	p := FromSlice([]string{"a.mp4", "b.txt", "c.mov", "d.mkv", "e.srt"})
	videos := Filter(p, func(s string) bool {
		ext := filepath.Ext(s)
		return ext == ".mp4" || ext == ".mov" || ext == ".mkv"
	})
	upper := Map(videos, func(_ context.Context, s string) (string, error) { return strings.ToUpper(s), nil })
	observed := Tap(upper, func(_ context.Context, s string) error {
		tapped = append(tapped, s)
		return nil
	})
	got, err := Collect(context.Background(), observed)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A.MP4", "C.MOV", "D.MKV"}
	if !strSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if !strSliceEqual(tapped, want) {
		t.Errorf("tapped %v, want %v", tapped, want)
	}
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
