package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chart.Variant != "full" {
		t.Errorf("expected default variant 'full', got %q", cfg.Chart.Variant)
	}
	if cfg.Table != "records" {
		t.Errorf("expected default table 'records', got %q", cfg.Table)
	}
	if len(cfg.Outputs) != 1 || cfg.Outputs[0] != "lifespan.svg" {
		t.Errorf("expected default output lifespan.svg, got %v", cfg.Outputs)
	}
	if cfg.Watch.Debounce != 300*time.Millisecond {
		t.Errorf("expected debounce 300ms, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Chart.Variant != "full" {
		t.Errorf("expected default config, got variant %q", cfg.Chart.Variant)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
input: ~/data/life.csv
outputs:
  - out/chart.svg
  - ~/charts/chart.png
chart:
  variant: compact
  sort: true
  palette:
    retirement: "#ff8800"
watch:
  debounce: 500ms
  force_poll: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "data/life.csv"); cfg.Input != want {
		t.Errorf("expected expanded input %q, got %q", want, cfg.Input)
	}
	if len(cfg.Outputs) != 2 || cfg.Outputs[0] != "out/chart.svg" {
		t.Fatalf("unexpected outputs %v", cfg.Outputs)
	}
	if want := filepath.Join(home, "charts/chart.png"); cfg.Outputs[1] != want {
		t.Errorf("expected expanded output %q, got %q", want, cfg.Outputs[1])
	}
	if cfg.Chart.Variant != "compact" || !cfg.Chart.Sort {
		t.Errorf("chart section not applied: %+v", cfg.Chart)
	}
	if cfg.Table != "records" {
		t.Errorf("unset table should keep default, got %q", cfg.Table)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond || !cfg.Watch.ForcePoll {
		t.Errorf("watch section not applied: %+v", cfg.Watch)
	}
	if cfg.Watch.PollInterval != 2*time.Second {
		t.Errorf("unset poll interval should keep default, got %v", cfg.Watch.PollInterval)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFrom_UnknownVariant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("chart:\n  variant: poster\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestLoadFrom_Hooks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `hooks:
  pre-export:
    - command: ./fetch.sh
      timeout: 5
  post-export:
    - name: publish
      command: cp $LIFESPAN_OUTPUT /tmp/
      on_error: fail
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if len(cfg.Hooks.PreExport) != 1 || cfg.Hooks.PreExport[0].Timeout != 5*time.Second {
		t.Errorf("pre-export = %+v", cfg.Hooks.PreExport)
	}
	if len(cfg.Hooks.PostExport) != 1 || cfg.Hooks.PostExport[0].Name != "publish" {
		t.Errorf("post-export = %+v", cfg.Hooks.PostExport)
	}

	bad := "hooks:\n  post-export:\n    - command: x\n      on_error: maybe\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for unknown on_error policy")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Input = "/data/life.csv"
	cfg.Outputs = []string{"/tmp/a.svg", "/tmp/a.html"}
	cfg.Chart.Variant = "compact"
	cfg.Watch.Debounce = time.Second

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}

	if loaded.Input != cfg.Input {
		t.Errorf("expected input %q, got %q", cfg.Input, loaded.Input)
	}
	if len(loaded.Outputs) != 2 || loaded.Outputs[1] != "/tmp/a.html" {
		t.Errorf("unexpected outputs %v", loaded.Outputs)
	}
	if loaded.Chart.Variant != "compact" {
		t.Errorf("expected 'compact', got %q", loaded.Chart.Variant)
	}
	if loaded.Watch.Debounce != time.Second {
		t.Errorf("expected 1s debounce, got %v", loaded.Watch.Debounce)
	}
}

func TestLayout_AppliesOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chart.Variant = "compact"
	cfg.Chart.Height = 1200
	cfg.Chart.Palette.Healthy = "#00ff00"

	l, err := cfg.Layout()
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if l.Width != 800 || l.Height != 1200 {
		t.Errorf("expected 800x1200, got %gx%g", l.Width, l.Height)
	}
	if l.Palette.Healthy != "#00ff00" {
		t.Errorf("healthy color override lost: %q", l.Palette.Healthy)
	}
	if l.Palette.Life != "#001449" {
		t.Errorf("life color should keep default, got %q", l.Palette.Life)
	}
}

func TestLayout_RejectsTinyCanvas(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chart.Width = 100

	if _, err := cfg.Layout(); err == nil {
		t.Error("expected error for canvas narrower than margins")
	}
}

func TestApplyOutputs(t *testing.T) {
	cfg := DefaultConfig()

	cfg.ApplyOutputs(nil)
	if len(cfg.Outputs) != 1 {
		t.Fatalf("empty list should keep outputs, got %v", cfg.Outputs)
	}

	cfg.ApplyOutputs([]string{"a.svg, b.png", " ", "c.html"})
	want := []string{"a.svg", "b.png", "c.html"}
	if len(cfg.Outputs) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Outputs)
	}
	for i := range want {
		if cfg.Outputs[i] != want[i] {
			t.Errorf("output %d = %q, want %q", i, cfg.Outputs[i], want[i])
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
		{"", ""},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if got, want := ConfigDir(), filepath.Join(dir, "lifespan"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got, want := ConfigPath(), filepath.Join(dir, "lifespan", "config.yaml"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
