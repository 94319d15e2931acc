// Package archive writes one self-contained artifact per completed
// build: the history record plus every rendered operation, zstd
// compressed, laid out by day. The mirror uploads these files, so a
// wiped data dir can be reconstructed from the bucket alone.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"mason.gg/internal/persistence/builddb"
)

// Doc is the archived document.
type Doc struct {
	Build      Record   `json:"build"`
	Operations []string `json:"operations"`
}

// Record mirrors the history row with stable wire names.
type Record struct {
	ID          string     `json:"id"`
	RequestedAt time.Time  `json:"requested_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Source      string     `json:"source"`
	Description string     `json:"description,omitempty"`
	Template    string     `json:"template,omitempty"`
	Origin      [3]int     `json:"origin"`
	Ops         int        `json:"ops"`
	Blocks      int64      `json:"blocks"`
	Status      string     `json:"status"`
}

// WriteBuild writes root/YYYYMMDD/build_<id>.json.zst and returns its
// path. The file lands via temp-file + rename so the mirror never
// uploads a half-written archive.
func WriteBuild(root string, b builddb.Build, cmds []string) (string, error) {
	day := b.RequestedAt.UTC().Format("20060102")
	dir := filepath.Join(root, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("archive dir: %w", err)
	}

	doc := Doc{Build: fromBuild(b), Operations: cmds}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("archive encode: %w", err)
	}

	path := filepath.Join(dir, "build_"+b.ID+".json.zst")
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("archive create: %w", err)
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("archive compress: %w", err)
	}
	if _, err := zw.Write(raw); err == nil {
		err = zw.Close()
	} else {
		zw.Close()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("archive write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("archive rename: %w", err)
	}
	return path, nil
}

// ReadFile decodes one archived build.
func ReadFile(path string) (*Doc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	zr, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	dec, err := zr.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	var doc Doc
	if err := json.Unmarshal(dec, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &doc, nil
}

func fromBuild(b builddb.Build) Record {
	return Record{
		ID:          b.ID,
		RequestedAt: b.RequestedAt,
		CompletedAt: b.CompletedAt,
		Source:      b.Source,
		Description: b.Description,
		Template:    b.Template,
		Origin:      b.Origin,
		Ops:         b.Ops,
		Blocks:      b.Blocks,
		Status:      b.Status,
	}
}
