// Package testutil provides shared helpers for tests that need real rate feeds.
package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/iwvelando/tuition-calculator/internal/ingest"
	"github.com/iwvelando/tuition-calculator/internal/rates"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FixtureDir returns the absolute path of the fixture feed directory.
func FixtureDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "test", "data")
}

// LoadFixtures loads the fixture feeds into a new store and returns it with
// the loader that filled it.
func LoadFixtures(t testing.TB) (*rates.Store, *ingest.Loader) {
	t.Helper()
	store := rates.NewStore()
	loader := ingest.NewLoader(zap.NewNop(), ingest.DirSource{Dir: FixtureDir()}, store, time.Second)
	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("failed to load fixture feeds: %v", err)
	}
	return store, loader
}

// AssertAmount fails the test when got does not equal the decimal in want.
func AssertAmount(t testing.TB, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
