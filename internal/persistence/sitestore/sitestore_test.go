package sitestore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFreshStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.state")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Cursor() != 0 || s.Len() != 0 {
		t.Fatalf("fresh state cursor=%d len=%d", s.Cursor(), s.Len())
	}
	if got := s.NextIndex(); got != 0 {
		t.Fatalf("first index = %d", got)
	}
	if got := s.NextIndex(); got != 1 {
		t.Fatalf("second index = %d", got)
	}
}

func TestPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.state")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.NextIndex()
	_ = s.NextIndex()
	sites := []Site{
		{BuildID: "b-1", Origin: [3]int{0, -60, 0}, Min: [3]int{0, -60, 0}, Max: [3]int{14, -52, 14}},
		{BuildID: "b-2", Origin: [3]int{22, -60, 0}, Min: [3]int{22, -60, 0}, Max: [3]int{32, -53, 8}, CompletedUnix: 1756100000},
	}
	for _, site := range sites {
		if err := s.AddSite(site); err != nil {
			t.Fatalf("add site: %v", err)
		}
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if r.Cursor() != 2 {
		t.Fatalf("cursor = %d", r.Cursor())
	}
	got := r.Sites()
	if len(got) != 2 {
		t.Fatalf("sites = %d", len(got))
	}
	if got[0].BuildID != "b-1" || got[0].Max != [3]int{14, -52, 14} {
		t.Fatalf("site 0 = %+v", got[0])
	}
	if got[1].CompletedUnix != 1756100000 {
		t.Fatalf("site 1 = %+v", got[1])
	}
	if got[0].CompletedUnix == 0 {
		t.Fatal("completion time not stamped")
	}
	if r.NextIndex() != 2 {
		t.Fatal("cursor did not resume")
	}
}

func TestNoTempFileLeftBehind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.state")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.AddSite(Site{BuildID: "b-1"}); err != nil {
		t.Fatalf("add site: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("state file missing: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestCorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.state")
	if err := os.WriteFile(path, []byte("not a zstd frame"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("corrupt file accepted")
	}
}

func TestSaveExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.state")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.NextIndex()
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if r.Cursor() != 1 {
		t.Fatalf("cursor = %d", r.Cursor())
	}
}
