package qcatalog_test

import (
	"path/filepath"
	"testing"

	"github.com/updownquark/qonfig/qcatalog"
	"github.com/updownquark/qonfig/qschema"
)

func openTestCache(t *testing.T) *qcatalog.Cache {
	t.Helper()
	c, err := qcatalog.Open(filepath.Join(t.TempDir(), "catalog.sqlite"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLookupMissReturnsFalse(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.Lookup("demo", qschema.Version{Major: 1, Minor: 0})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if ok {
		t.Fatal("expected no entry for an empty cache")
	}
}

func TestPutThenLookupRoundTrips(t *testing.T) {
	c := openTestCache(t)
	version := qschema.Version{Major: 1, Minor: 0}
	summary := qcatalog.Summary{ElementNames: []string{"item", "root"}, AddOnNames: []string{"named"}}
	hash := qcatalog.HashSource([]byte("<qonfig-def .../>"))

	if err := c.Put("demo", version, hash, summary); err != nil {
		t.Fatalf("put: %v", err)
	}

	entry, ok, err := c.Lookup("demo", version)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected an entry after Put")
	}
	if entry.SourceHash != hash {
		t.Errorf("expected hash %q, got %q", hash, entry.SourceHash)
	}
	if len(entry.Summary.ElementNames) != 2 || entry.Summary.ElementNames[0] != "item" {
		t.Errorf("unexpected element names: %+v", entry.Summary.ElementNames)
	}
}

func TestNeedsRebuildDetectsSourceChange(t *testing.T) {
	c := openTestCache(t)
	version := qschema.Version{Major: 1, Minor: 0}
	summary := qcatalog.Summary{ElementNames: []string{"item"}}

	needs, err := c.NeedsRebuild("demo", version, qcatalog.HashSource([]byte("v1")))
	if err != nil {
		t.Fatalf("needs rebuild (miss): %v", err)
	}
	if !needs {
		t.Fatal("expected a rebuild when nothing is cached yet")
	}

	if err := c.Put("demo", version, qcatalog.HashSource([]byte("v1")), summary); err != nil {
		t.Fatalf("put: %v", err)
	}

	needs, err = c.NeedsRebuild("demo", version, qcatalog.HashSource([]byte("v1")))
	if err != nil {
		t.Fatalf("needs rebuild (unchanged): %v", err)
	}
	if needs {
		t.Fatal("expected no rebuild when source hash is unchanged")
	}

	needs, err = c.NeedsRebuild("demo", version, qcatalog.HashSource([]byte("v2")))
	if err != nil {
		t.Fatalf("needs rebuild (changed): %v", err)
	}
	if !needs {
		t.Fatal("expected a rebuild when source hash changed")
	}
}

func TestPutOverwritesSameNameVersion(t *testing.T) {
	c := openTestCache(t)
	version := qschema.Version{Major: 1, Minor: 0}

	if err := c.Put("demo", version, "h1", qcatalog.Summary{ElementNames: []string{"a"}}); err != nil {
		t.Fatalf("put 1: %v", err)
	}
	if err := c.Put("demo", version, "h2", qcatalog.Summary{ElementNames: []string{"a", "b"}}); err != nil {
		t.Fatalf("put 2: %v", err)
	}

	entry, ok, err := c.Lookup("demo", version)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected an entry")
	}
	if entry.SourceHash != "h2" || len(entry.Summary.ElementNames) != 2 {
		t.Fatalf("expected overwritten entry with hash h2, got %+v", entry)
	}
}

func TestDescribeFormatsEntry(t *testing.T) {
	c := openTestCache(t)
	version := qschema.Version{Major: 1, Minor: 0}
	if err := c.Put("demo", version, "h1", qcatalog.Summary{ElementNames: []string{"a"}, AddOnNames: []string{"b"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	entry, ok, err := c.Lookup("demo", version)
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if got := qcatalog.Describe(entry); got == "" {
		t.Fatal("expected a non-empty description")
	}
}
