package photosite

import (
	"path/filepath"
	"testing"
)

func setupDecisionStore(t *testing.T) (*DecisionStore, string, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.sqlite3")

	s, err := OpenDecisionStore(path)
	if err != nil {
		t.Fatalf("failed to open decision store: %v", err)
	}
	return s, path, func() { s.Close() }
}

func TestImageDateUndecided(t *testing.T) {
	s, _, cleanup := setupDecisionStore(t)
	defer cleanup()

	_, ok, err := s.ImageDate(42)
	if err != nil {
		t.Fatalf("ImageDate failed: %v", err)
	}
	if ok {
		t.Error("undecided image should have no date override")
	}
}

func TestImageDateRoundTrip(t *testing.T) {
	s, _, cleanup := setupDecisionStore(t)
	defer cleanup()

	if err := s.SetImageDate(42, "2021-05-04"); err != nil {
		t.Fatalf("SetImageDate failed: %v", err)
	}
	date, ok, err := s.ImageDate(42)
	if err != nil {
		t.Fatalf("ImageDate failed: %v", err)
	}
	if !ok {
		t.Fatal("override should exist after SetImageDate")
	}
	if date != "2021-05-04" {
		t.Errorf("date = %q, want %q", date, "2021-05-04")
	}

	// A second write replaces the first.
	if err := s.SetImageDate(42, "2022-01-01"); err != nil {
		t.Fatalf("SetImageDate failed: %v", err)
	}
	date, _, _ = s.ImageDate(42)
	if date != "2022-01-01" {
		t.Errorf("date after overwrite = %q, want %q", date, "2022-01-01")
	}
}

func TestTagDecisionRoundTrip(t *testing.T) {
	s, _, cleanup := setupDecisionStore(t)
	defer cleanup()

	_, ok, err := s.TagDecision("birds")
	if err != nil {
		t.Fatalf("TagDecision failed: %v", err)
	}
	if ok {
		t.Error("undecided tag should report ok=false")
	}

	if err := s.PutTagDecision("birds", true); err != nil {
		t.Fatalf("PutTagDecision failed: %v", err)
	}
	allowed, ok, err := s.TagDecision("birds")
	if err != nil {
		t.Fatalf("TagDecision failed: %v", err)
	}
	if !ok || !allowed {
		t.Errorf("TagDecision = (%v, %v), want (true, true)", allowed, ok)
	}

	if err := s.PutTagDecision("people", false); err != nil {
		t.Fatalf("PutTagDecision failed: %v", err)
	}
	allowed, ok, _ = s.TagDecision("people")
	if !ok || allowed {
		t.Errorf("TagDecision = (%v, %v), want (false, true)", allowed, ok)
	}
}

func TestDecisionsSurviveReopen(t *testing.T) {
	s, path, _ := setupDecisionStore(t)
	if err := s.PutTagDecision("birds", true); err != nil {
		t.Fatalf("PutTagDecision failed: %v", err)
	}
	if err := s.SetImageDate(7, "2020-02-02"); err != nil {
		t.Fatalf("SetImageDate failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err := OpenDecisionStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	allowed, ok, err := s.TagDecision("birds")
	if err != nil || !ok || !allowed {
		t.Errorf("TagDecision after reopen = (%v, %v, %v), want (true, true, nil)", allowed, ok, err)
	}
	date, ok, err := s.ImageDate(7)
	if err != nil || !ok || date != "2020-02-02" {
		t.Errorf("ImageDate after reopen = (%q, %v, %v), want (%q, true, nil)", date, ok, err, "2020-02-02")
	}
}
