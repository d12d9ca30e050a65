package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/lifespan/pkg/model"
)

// AssertRecordCount verifies the expected number of records.
func AssertRecordCount(t *testing.T, ds model.Dataset, expected int) {
	t.Helper()
	if ds.Len() != expected {
		t.Errorf("expected %d records, got %d", expected, ds.Len())
	}
}

// AssertLocations verifies the dataset order.
func AssertLocations(t *testing.T, ds model.Dataset, expected ...string) {
	t.Helper()
	got := ds.Locations()
	if len(got) != len(expected) {
		t.Fatalf("expected locations %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("location %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

// AssertClose fails when a and b differ by more than 1e-6.
func AssertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// WriteFile writes content into dir/name and returns the path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
