package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(150 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not run after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
	if d := NewDebouncer(-time.Second); d.Duration() != DefaultDebounceDuration {
		t.Errorf("negative duration should fall back to default, got %v", d.Duration())
	}
}

func writeInput(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitChanged(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Changed():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	writeInput(t, path, "Location,HealthyLifeExpectancy,LifeExpectancy,RetirementAge\n")

	var changes atomic.Int32
	w, err := New(path,
		WithDebounceDuration(50*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	writeInput(t, path, "Location,HealthyLifeExpectancy,LifeExpectancy,RetirementAge\nJapan,74.1,84.5,65\n")

	if !waitChanged(t, w, 3*time.Second) {
		t.Fatal("timeout waiting for change notification")
	}
	if changes.Load() == 0 {
		t.Error("OnChange should run before Changed fires")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	writeInput(t, path, "initial")

	w, err := New(path, WithDebounceDuration(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if w.IsPolling() {
		t.Skip("fsnotify unavailable")
	}

	writeInput(t, filepath.Join(dir, "lifespan.svg"), "<svg/>")
	if waitChanged(t, w, 300*time.Millisecond) {
		t.Error("writes to other files in the directory should be ignored")
	}
}

func TestWatcher_PollingFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	writeInput(t, path, "initial")

	w, err := New(path,
		WithDebounceDuration(20*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected polling mode")
	}

	time.Sleep(20 * time.Millisecond)
	writeInput(t, path, "modified via polling")

	if !waitChanged(t, w, 2*time.Second) {
		t.Error("expected change to be detected via polling")
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv(ForcePollEnv, "yes")
	path := filepath.Join(t.TempDir(), "data.csv")
	writeInput(t, path, "initial")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Errorf("%s should force polling", ForcePollEnv)
	}
}

func TestWatcher_FileRemovedWhilePolling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	writeInput(t, path, "initial")

	errCh := make(chan error, 4)
	w, err := New(path,
		WithPollInterval(30*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrFileRemoved) {
			t.Errorf("error = %v, want ErrFileRemoved", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for removal error")
	}
}

func TestWatcher_MissingFileCreatedLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.csv")

	w, err := New(path,
		WithDebounceDuration(20*time.Millisecond),
		WithPollInterval(30*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start on a missing file: %v", err)
	}
	defer w.Stop()

	writeInput(t, path, "now here")
	if !waitChanged(t, w, 2*time.Second) {
		t.Error("creating the file should count as a change")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	writeInput(t, path, "initial")

	w, err := New(path, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("should not be started before Start")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(w.Start(), ErrAlreadyStarted) {
		t.Error("second Start should fail")
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("should be stopped after Stop")
	}
	w.Stop()

	if err := w.Start(); err != nil {
		t.Errorf("restart after Stop: %v", err)
	}
	w.Stop()
}

func TestWatcher_Path(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, ".", "data.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if w.Path() != filepath.Join(dir, "data.csv") {
		t.Errorf("Path() = %s", w.Path())
	}
	if !filepath.IsAbs(w.Path()) {
		t.Error("Path should be absolute")
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{" TRUE ", true},
		{"on", true},
		{"y", true},
		{"0", false},
		{"false", false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		t.Setenv("LIFESPAN_TEST_ENVBOOL", tt.value)
		if got := envBool("LIFESPAN_TEST_ENVBOOL"); got != tt.want {
			t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
