package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "lecture.mp4", "lecture.mp4"},
		{"spaces and symbols", "my lecture (1).mp4", "my_lecture__1_.mp4"},
		{"unicode", "café.mov", "caf_.mov"},
		{"traversal", "../../etc/passwd.mp4", "____etc_passwd.mp4"},
		{"windows traversal", `..\..\boot.ini`, "____boot.ini"},
		{"dot dot only", "..", "_"},
		{"empty", "", fallbackName},
		{"hidden file", ".env", "env"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeFilename(tc.input, DefaultMaxNameLength)
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSanitizeFilenameNoTraversalSegments(t *testing.T) {
	inputs := []string{"../../etc/passwd.mp4", "a/../../b.mp4", `..\\x`, "....//....//x", "./.././..", "/abs/path.mov"}
	for _, in := range inputs {
		got := SanitizeFilename(in, DefaultMaxNameLength)
		if strings.ContainsAny(got, `/\`) {
			t.Errorf("%q: expected no separators, got %q", in, got)
		}
		for _, seg := range strings.Split(got, "/") {
			if seg == ".." || seg == "." {
				t.Errorf("%q: expected no dot segments, got %q", in, got)
			}
		}
		if strings.Contains(got, "..") {
			t.Errorf("%q: expected no dot runs, got %q", in, got)
		}
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 150) + ".mp4"
	got := SanitizeFilename(long, 100)
	if len(got) != 100 {
		t.Fatalf("expected 100 chars, got %d", len(got))
	}
	if !strings.HasSuffix(got, ".mp4") {
		t.Errorf("expected extension kept, got %q", got)
	}

	noExt := strings.Repeat("b", 120)
	if got := SanitizeFilename(noExt, 100); len(got) != 100 {
		t.Errorf("expected 100 chars, got %d", len(got))
	}
}

func newManager(t *testing.T, keep string) *Manager {
	t.Helper()
	m, err := NewManager(Config{RootDir: t.TempDir(), KeepClipsDir: keep})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestAcquireCreatesIsolatedDirs(t *testing.T) {
	m := newManager(t, "")
	a, err := m.Acquire(context.Background(), "talk.mp4")
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Acquire(context.Background(), "talk.mp4")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Release()
	defer b.Release()

	if a.Dir() == b.Dir() {
		t.Error("expected distinct directories per acquire")
	}
	if filepath.Dir(a.Dir()) != m.Root() {
		t.Errorf("expected workspace under root, got %q", a.Dir())
	}
	if m.Active() != 2 {
		t.Errorf("expected 2 active workspaces, got %d", m.Active())
	}
}

func TestDerivedPaths(t *testing.T) {
	m := newManager(t, "")
	h, err := m.Acquire(context.Background(), "../../etc/passwd.mp4")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	if got := filepath.Base(h.SourcePath()); got != "____etc_passwd.mp4" {
		t.Errorf("expected sanitized source, got %q", got)
	}
	if got := filepath.Base(h.AudioPath()); got != "____etc_passwd.wav" {
		t.Errorf("expected wav sidecar, got %q", got)
	}
	if got := filepath.Base(h.ClipPath(0, 5)); got != "____etc_passwd_clip_0-5.mp4" {
		t.Errorf("expected clip name, got %q", got)
	}
	for _, p := range h.Paths() {
		if filepath.Dir(p) != h.Dir() {
			t.Errorf("expected %q inside %q", p, h.Dir())
		}
	}
	if len(h.Paths()) != 3 {
		t.Errorf("expected 3 tracked paths, got %d", len(h.Paths()))
	}
	h.SourcePath()
	if len(h.Paths()) != 3 {
		t.Error("expected deriving the same path twice to track it once")
	}
}

func TestAudioPathDiffersFromWavSource(t *testing.T) {
	m := newManager(t, "")
	tests := []struct {
		upload string
		audio  string
	}{
		{"lecture.wav", "lecture.audio.wav"},
		{"LECTURE.WAV", "LECTURE.audio.wav"},
		{"lecture.mp3", "lecture.wav"},
	}
	for _, tc := range tests {
		t.Run(tc.upload, func(t *testing.T) {
			h, err := m.Acquire(context.Background(), tc.upload)
			if err != nil {
				t.Fatal(err)
			}
			defer h.Release()

			if h.AudioPath() == h.SourcePath() {
				t.Fatalf("expected distinct paths, both are %q", h.SourcePath())
			}
			if got := filepath.Base(h.AudioPath()); got != tc.audio {
				t.Errorf("expected %q, got %q", tc.audio, got)
			}
		})
	}
}

func TestReleaseRemovesTrackedPaths(t *testing.T) {
	m := newManager(t, "")
	h, err := m.Acquire(context.Background(), "lecture.mp4")
	if err != nil {
		t.Fatal(err)
	}

	src, err := h.WriteSource(strings.NewReader("video bytes"))
	if err != nil {
		t.Fatal(err)
	}
	audio := h.AudioPath()
	if err := os.WriteFile(audio, []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	_ = h.ClipPath(0, 5) // never written; must be ignored

	h.Release()

	for _, p := range []string{src, audio, h.Dir()} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %q removed, stat err = %v", p, err)
		}
	}
	if m.Active() != 0 {
		t.Errorf("expected 0 active workspaces, got %d", m.Active())
	}
}

func TestReleaseRunsOnce(t *testing.T) {
	m := newManager(t, "")
	h, err := m.Acquire(context.Background(), "x.mp4")
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Release()
		}()
	}
	wg.Wait()
	if m.Active() != 0 {
		t.Errorf("expected active count to drop once, got %d", m.Active())
	}
}

func TestReleaseSurvivesPermissionErrors(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	m := newManager(t, "")
	h, err := m.Acquire(context.Background(), "x.mp4")
	if err != nil {
		t.Fatal(err)
	}
	audio := h.AudioPath()
	if err := os.WriteFile(audio, []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(h.Dir(), 0o500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(h.Dir(), 0o750)

	h.Release()

	if m.Active() != 0 {
		t.Errorf("expected workspace counted as released, got %d active", m.Active())
	}
	if _, err := os.Stat(audio); err != nil {
		t.Errorf("expected undeletable file left in place, stat err = %v", err)
	}
}

func TestDeriveSanitizes(t *testing.T) {
	m := newManager(t, "")
	h, err := m.Acquire(context.Background(), "x.mp4")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	p := h.Derive("../escape.txt")
	if filepath.Dir(p) != h.Dir() {
		t.Errorf("expected %q inside %q", p, h.Dir())
	}
	if got := filepath.Base(p); got != "__escape.txt" {
		t.Errorf("expected %q, got %q", "__escape.txt", got)
	}
}

func TestPersistCopiesClips(t *testing.T) {
	keep := t.TempDir()
	m := newManager(t, keep)
	h, err := m.Acquire(context.Background(), "talk.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if !h.KeepsClips() {
		t.Error("expected handle to keep clips")
	}
	clip := h.ClipPath(0, 5)
	if err := os.WriteFile(clip, []byte("clip"), 0o644); err != nil {
		t.Fatal(err)
	}
	kept, err := h.Persist(clip)
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	h.Release()

	if filepath.Dir(kept) != keep {
		t.Errorf("expected copy in %q, got %q", keep, kept)
	}
	if data, err := os.ReadFile(kept); err != nil || string(data) != "clip" {
		t.Errorf("expected persisted clip to survive release, got %q, %v", data, err)
	}
}

func TestPersistWithoutKeepDir(t *testing.T) {
	m := newManager(t, "")
	h, err := m.Acquire(context.Background(), "talk.mp4")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()
	if h.KeepsClips() {
		t.Error("expected no keep-clips directory")
	}
	clip := h.ClipPath(0, 5)
	if got, err := h.Persist(clip); err != nil || got != clip {
		t.Errorf("expected path unchanged, got %q, %v", got, err)
	}
}

func TestCheckWritable(t *testing.T) {
	m := newManager(t, "")
	if err := m.CheckWritable(context.Background()); err != nil {
		t.Fatalf("expected writable root, got %v", err)
	}
	entries, err := os.ReadDir(m.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected scratch file removed, found %d entries", len(entries))
	}

	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		return
	}
	if err := os.Chmod(m.Root(), 0o500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(m.Root(), 0o750)
	if err := m.CheckWritable(context.Background()); err == nil {
		t.Error("expected read-only root to fail")
	}
}
