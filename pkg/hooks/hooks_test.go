package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

func TestHookUnmarshal_Timeouts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Duration
	}{
		{"duration", "command: x\ntimeout: 45s\n", 45 * time.Second},
		{"minutes", "command: x\ntimeout: 2m\n", 2 * time.Minute},
		{"bare seconds", "command: x\ntimeout: 10\n", 10 * time.Second},
		{"absent", "command: x\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Hook
			if err := yaml.Unmarshal([]byte(tt.in), &h); err != nil {
				t.Fatal(err)
			}
			if h.Timeout != tt.want {
				t.Errorf("timeout = %v, want %v", h.Timeout, tt.want)
			}
		})
	}

	var h Hook
	if err := yaml.Unmarshal([]byte("command: x\ntimeout: soon\n"), &h); err == nil {
		t.Error("unparseable timeout should fail")
	}
}

func TestHookMarshal_ReadsBack(t *testing.T) {
	in := Phases{PostExport: []Hook{{Name: "publish", Command: "echo hi", Timeout: 90 * time.Second}}}
	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "timeout: 1m30s") {
		t.Errorf("yaml = %s", data)
	}
	var out Phases
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.PostExport) != 1 || out.PostExport[0].Timeout != 90*time.Second {
		t.Errorf("read back %+v", out)
	}
}

func TestNormalize(t *testing.T) {
	p := Phases{
		PreExport:  []Hook{{Command: "true"}, {Command: "  "}},
		PostExport: []Hook{{Command: "true", OnError: OnErrorFail, Timeout: time.Second}},
	}
	got, warnings := p.Normalize()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "pre-export hook 2") {
		t.Errorf("warnings = %v", warnings)
	}
	if len(got.PreExport) != 1 {
		t.Fatalf("pre = %+v", got.PreExport)
	}
	pre := got.PreExport[0]
	if pre.Name != "pre-export-1" || pre.Timeout != DefaultTimeout || pre.OnError != OnErrorFail {
		t.Errorf("pre defaults = %+v", pre)
	}
	post := got.PostExport[0]
	if post.OnError != OnErrorFail || post.Timeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", post)
	}

	_, warnings = Phases{PostExport: []Hook{{Command: "true"}}}.Normalize()
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	got, _ = Phases{PostExport: []Hook{{Command: "true"}}}.Normalize()
	if got.PostExport[0].OnError != OnErrorContinue {
		t.Errorf("post-export should default to continue, got %q", got.PostExport[0].OnError)
	}
}

func TestValidate(t *testing.T) {
	if err := (Phases{PreExport: []Hook{{Command: "x", OnError: "ignore"}}}).Validate(); err == nil {
		t.Error("unknown on_error should fail")
	}
	if err := (Phases{PostExport: []Hook{{Command: "x", Timeout: -time.Second}}}).Validate(); err == nil {
		t.Error("negative timeout should fail")
	}
	if err := (Phases{PreExport: []Hook{{Command: "x", OnError: OnErrorContinue}}}).Validate(); err != nil {
		t.Errorf("valid hooks rejected: %v", err)
	}
	if !(Phases{}).Empty() {
		t.Error("zero Phases should be empty")
	}
}

func TestExportContext_ToEnv(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env := ExportContext{Input: "data.csv", Outputs: []string{"a.svg", "b.png"}, RecordCount: 4, Timestamp: ts}.ToEnv()
	want := []string{
		"LIFESPAN_INPUT=data.csv",
		"LIFESPAN_OUTPUT=a.svg",
		"LIFESPAN_OUTPUTS=a.svg,b.png",
		"LIFESPAN_RECORD_COUNT=4",
		"LIFESPAN_TIMESTAMP=2024-03-01T12:00:00Z",
	}
	if strings.Join(env, "\n") != strings.Join(want, "\n") {
		t.Errorf("env = %v", env)
	}

	if env := (ExportContext{}).ToEnv(); env[1] != "LIFESPAN_OUTPUT=" {
		t.Errorf("no outputs: %v", env)
	}
}

func normalized(t *testing.T, p Phases) Phases {
	t.Helper()
	p, _ = p.Normalize()
	return p
}

func TestExecutor_PreExportStopsAtFailure(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	p := normalized(t, Phases{PreExport: []Hook{
		{Name: "boom", Command: "echo bad >&2; exit 3"},
		{Name: "after", Command: "touch " + marker},
	}})

	e := NewExecutor(p, ExportContext{})
	err := e.RunPreExport(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(marker); !os.IsNotExist(statErr) {
		t.Error("hooks after a failing pre-export hook must not run")
	}
	results := e.Results()
	if len(results) != 1 || results[0].Success || results[0].Stderr != "bad" {
		t.Errorf("results = %+v", results)
	}
	if !e.Failed() {
		t.Error("Failed should be true")
	}
}

func TestExecutor_PreExportContinue(t *testing.T) {
	p := normalized(t, Phases{PreExport: []Hook{
		{Command: "exit 1", OnError: OnErrorContinue},
		{Command: "echo ok"},
	}})
	e := NewExecutor(p, ExportContext{})
	if err := e.RunPreExport(context.Background()); err != nil {
		t.Fatal(err)
	}
	results := e.Results()
	if len(results) != 2 || results[1].Stdout != "ok" {
		t.Errorf("results = %+v", results)
	}
}

func TestExecutor_PostExportRunsAll(t *testing.T) {
	p := normalized(t, Phases{PostExport: []Hook{
		{Name: "soft", Command: "exit 1"},
		{Name: "hard", Command: "exit 2", OnError: OnErrorFail},
		{Name: "last", Command: "true"},
	}})
	e := NewExecutor(p, ExportContext{})
	err := e.RunPostExport(context.Background())
	if err == nil || !strings.Contains(err.Error(), "hard") || strings.Contains(err.Error(), "soft") {
		t.Errorf("err = %v", err)
	}
	if n := len(e.Results()); n != 3 {
		t.Errorf("ran %d hooks, want 3", n)
	}
	if s := e.Summary(); !strings.Contains(s, "1 succeeded, 2 failed") {
		t.Errorf("summary = %q", s)
	}
}

func TestExecutor_Environment(t *testing.T) {
	t.Setenv("LIFESPAN_TEST_BASE", "base")
	p := normalized(t, Phases{PostExport: []Hook{{
		Command: `echo "$LIFESPAN_OUTPUT $LIFESPAN_RECORD_COUNT $DEST"`,
		Env:     map[string]string{"DEST": "${LIFESPAN_TEST_BASE}/${LIFESPAN_INPUT}"},
	}}})
	e := NewExecutor(p, ExportContext{Input: "data.csv", Outputs: []string{"chart.svg"}, RecordCount: 7})
	if err := e.RunPostExport(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := e.Results()[0].Stdout; got != "chart.svg 7 base/data.csv" {
		t.Errorf("stdout = %q", got)
	}
}

func TestExecutor_HookEnvSeesOnlyBaseEnvironment(t *testing.T) {
	t.Setenv("LIFESPAN_TEST_A", "base")
	env := map[string]string{
		"LIFESPAN_TEST_A": "override",
		"LIFESPAN_TEST_B": "from-${LIFESPAN_TEST_A}",
	}
	p := normalized(t, Phases{PostExport: []Hook{{Command: `echo "$LIFESPAN_TEST_A $LIFESPAN_TEST_B"`, Env: env}}})
	for i := 0; i < 20; i++ {
		e := NewExecutor(p, ExportContext{})
		if err := e.RunPostExport(context.Background()); err != nil {
			t.Fatal(err)
		}
		if got := e.Results()[0].Stdout; got != "override from-base" {
			t.Fatalf("run %d: stdout = %q", i, got)
		}
	}
}

func TestExecutor_Timeout(t *testing.T) {
	p := normalized(t, Phases{PreExport: []Hook{{Name: "slow", Command: "sleep 5", Timeout: 100 * time.Millisecond}}})
	e := NewExecutor(p, ExportContext{})

	start := time.Now()
	err := e.RunPreExport(context.Background())
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdefgh", 6, "abc..."},
		{"aé€€€", 7, "aé..."}, // a(1) é(2) would split the first €
		{"€€€€", 3, "€"},
		{"€€€€", 2, ""},
		{"ab€€", 2, "ab"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) || len(got) > tt.n {
			t.Errorf("truncate(%q, %d) = %q is invalid or too long", tt.in, tt.n, got)
		}
	}
}

func TestSummary(t *testing.T) {
	if s := NewExecutor(Phases{}, ExportContext{}).Summary(); s != "" {
		t.Errorf("summary with no runs = %q", s)
	}

	long := strings.Repeat("x", 300)
	p := normalized(t, Phases{PostExport: []Hook{{Name: "noisy", Command: "printf '" + long + "' >&2; exit 1"}}})
	e := NewExecutor(p, ExportContext{})
	_ = e.RunPostExport(context.Background())
	s := e.Summary()
	if !strings.HasPrefix(s, "Hooks: 0 succeeded, 1 failed") || !strings.Contains(s, "noisy") {
		t.Errorf("summary = %q", s)
	}
	if !strings.Contains(s, strings.Repeat("x", 197)+"...") || strings.Contains(s, strings.Repeat("x", 198)) {
		t.Error("long stderr should be truncated to 200 characters")
	}
}
