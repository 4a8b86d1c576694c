package history

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStartAndFinishRoundTrip(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Start("Core", "Build")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a non-empty UUID")
	}

	rec, err := s.LatestFor("Core", "Build")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Status != StatusRunning {
		t.Fatalf("expected a running record, got %+v", rec)
	}

	if err := s.Finish(id, StatusSuccess); err != nil {
		t.Fatal(err)
	}

	rec, err = s.LatestFor("Core", "Build")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success", rec.Status)
	}
	if rec.EndTime.IsZero() {
		t.Fatal("expected EndTime to be set after Finish")
	}
}

func TestLatestForUnknownReturnsNil(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.LatestFor("App", "Test")
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Fatalf("expected nil for an unknown target/job, got %+v", rec)
	}
}

func TestLatestForTracksMostRecentInvocation(t *testing.T) {
	s := openTestStore(t)

	id1, err := s.Start("Core", "Build")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(id1, StatusFailed); err != nil {
		t.Fatal(err)
	}

	id2, err := s.Start("Core", "Build")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(id2, StatusSuccess); err != nil {
		t.Fatal(err)
	}

	rec, err := s.LatestFor("Core", "Build")
	if err != nil {
		t.Fatal(err)
	}
	if rec.UUID != id2 {
		t.Fatalf("UUID = %s, want latest %s", rec.UUID, id2)
	}
	if rec.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success", rec.Status)
	}
}

func TestFinishUnknownIDErrors(t *testing.T) {
	s := openTestStore(t)
	if err := s.Finish("not-a-real-id", StatusSuccess); err == nil {
		t.Fatal("expected an error finishing an unknown invocation id")
	}
}
