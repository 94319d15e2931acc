// Package oplog appends every executed operation to compressed JSONL
// files, one line per command, rotated hourly. The log is the durable
// record of what was actually sent to the server; replay reads it back.
package oplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"
)

const (
	filePrefix = "ops"
	hourFormat = "20060102-15"
)

// Entry is one executed operation.
type Entry struct {
	TS      int64  `json:"ts"`
	BuildID string `json:"build_id"`
	Seq     int    `json:"seq"`
	Cmd     string `json:"cmd"`
	Resp    string `json:"resp,omitempty"`
	Blocks  int64  `json:"blocks,omitempty"`
}

// Writer appends entries to the current hour's file, rotating on the
// hour boundary. Safe for concurrent use.
type Writer struct {
	dir string

	mu       sync.Mutex
	curHour  string
	f        *os.File
	enc      *zstd.Encoder
	w        *bufio.Writer
	onRotate func(closedPath string)
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// SetRotateHook registers fn to receive each finished file's path when
// the hour rolls over. Set it before the first Append.
func (w *Writer) SetRotateHook(fn func(closedPath string)) {
	w.mu.Lock()
	w.onRotate = fn
	w.mu.Unlock()
}

// Append writes one entry, stamping TS when unset.
func (w *Writer) Append(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if e.TS == 0 {
		e.TS = time.Now().UTC().Unix()
	}
	hour := time.Now().UTC().Format(hourFormat)
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) rotateLocked(hour string) error {
	var prev string
	if w.curHour != "" {
		prev = w.pathForHour(w.curHour)
	}
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	if prev != "" && w.onRotate != nil {
		w.onRotate(prev)
	}
	return nil
}

func (w *Writer) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", filePrefix, hour))
}

// Files returns rotated log files under dir matching pattern, sorted.
// An empty pattern selects every rotated file, recursively.
func Files(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "**/" + filePrefix + "-*.jsonl.zst"
	}
	rel, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	out := make([]string, 0, len(rel))
	for _, r := range rel {
		out = append(out, filepath.Join(dir, r))
	}
	sort.Strings(out)
	return out, nil
}

// ReadFile streams entries from one rotated file in append order. The
// callback's error stops the scan and is returned.
func ReadFile(path string, fn func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
