package oplog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	entries := []Entry{
		{BuildID: "b-1", Seq: 0, Cmd: "/fill 0 -60 0 4 -57 4 oak_planks", Resp: "Successfully filled 100 blocks", Blocks: 100},
		{BuildID: "b-1", Seq: 1, Cmd: "/setblock 2 -59 0 oak_door[facing=south,half=lower]", Blocks: 1},
		{BuildID: "b-2", Seq: 0, Cmd: "setblock 0 -60 0 air"},
	}
	for _, e := range entries {
		if err := w.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := Files(dir, "")
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v", files)
	}
	name := filepath.Base(files[0])
	if !strings.HasPrefix(name, "ops-") || !strings.HasSuffix(name, ".jsonl.zst") {
		t.Fatalf("file name = %s", name)
	}

	var got []Entry
	if err := ReadFile(files[0], func(e Entry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("entries = %d", len(got))
	}
	for i, e := range got {
		if e.BuildID != entries[i].BuildID || e.Seq != entries[i].Seq || e.Cmd != entries[i].Cmd {
			t.Fatalf("entry %d = %+v", i, e)
		}
		if e.TS == 0 {
			t.Fatalf("entry %d missing timestamp", i)
		}
	}
	if got[0].Resp != entries[0].Resp || got[0].Blocks != 100 {
		t.Fatalf("entry 0 = %+v", got[0])
	}
}

func TestReadFileStopsOnCallbackError(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	_ = w.Append(Entry{BuildID: "b-1", Seq: 0, Cmd: "say one"})
	_ = w.Append(Entry{BuildID: "b-1", Seq: 1, Cmd: "say two"})
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	files, err := Files(dir, "")
	if err != nil || len(files) != 1 {
		t.Fatalf("files = %v, %v", files, err)
	}

	stop := errors.New("enough")
	seen := 0
	err = ReadFile(files[0], func(Entry) error {
		seen++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v", err)
	}
	if seen != 1 {
		t.Fatalf("seen = %d", seen)
	}
}

func TestFilesGlob(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	_ = w.Append(Entry{BuildID: "b-1", Cmd: "say hi"})
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("stray file: %v", err)
	}

	for _, pattern := range []string{"", "ops-*.jsonl.zst", "**/ops-*.jsonl.zst"} {
		files, err := Files(dir, pattern)
		if err != nil {
			t.Fatalf("files %q: %v", pattern, err)
		}
		if len(files) != 1 || strings.HasSuffix(files[0], "notes.txt") {
			t.Fatalf("files %q = %v", pattern, files)
		}
	}

	files, err := Files(dir, "ops-1999*.jsonl.zst")
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("stale pattern matched %v", files)
	}
}

func TestPathForHour(t *testing.T) {
	w := NewWriter("/var/lib/mason/oplog")
	got := w.pathForHour("20260825-14")
	want := filepath.Join("/var/lib/mason/oplog", "ops-20260825-14.jsonl.zst")
	if got != want {
		t.Fatalf("path = %s", got)
	}
}
