// Package sitestore persists the position allocator cursor and the
// registry of completed build sites in one small state file, so the
// daemon does not stack new builds on old ones after a restart.
package sitestore

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	SavedAt string `json:"saved_at"`
}

// Site is one completed build's footprint in world coordinates.
type Site struct {
	BuildID       string
	Origin        [3]int
	Min           [3]int
	Max           [3]int
	CompletedUnix int64
}

// StateV1 is the persisted document: a JSON header line for quick
// inspection, then the gob body.
type StateV1 struct {
	Header Header
	Cursor int
	Sites  []Site
}

// Store serializes access to the state and writes it back after every
// completed build. The cursor only advances in memory until a site is
// recorded, so an interrupted build reallocates the same spot.
type Store struct {
	path string

	mu    sync.Mutex
	state StateV1
}

// Open loads the state file, starting fresh when it does not exist.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty site store path")
	}
	st, err := readState(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, state: st}, nil
}

// NextIndex hands out the next allocation slot.
func (s *Store) NextIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.state.Cursor
	s.state.Cursor++
	return n
}

// AddSite records a completed site and persists the whole state.
func (s *Store) AddSite(site Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if site.CompletedUnix == 0 {
		site.CompletedUnix = time.Now().UTC().Unix()
	}
	s.state.Sites = append(s.state.Sites, site)
	return s.saveLocked()
}

// Sites returns a copy of the registry.
func (s *Store) Sites() []Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Site(nil), s.state.Sites...)
}

// Len reports the number of recorded sites.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Sites)
}

// Cursor reports the allocator position without advancing it.
func (s *Store) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cursor
}

// Save persists the current state, for shutdown paths.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	s.state.Header = Header{
		Version: 1,
		SavedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	return writeState(s.path, s.state)
}

func writeState(path string, st StateV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	write := func() error {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		bw := bufio.NewWriterSize(enc, 64*1024)

		hb, _ := json.Marshal(st.Header)
		if _, err := bw.Write(hb); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		if err := gob.NewEncoder(bw).Encode(&st); err != nil {
			return fmt.Errorf("gob encode: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return err
		}
		return enc.Close()
	}

	if err := write(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func readState(path string) (StateV1, error) {
	var st StateV1
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return st, fmt.Errorf("open %s: %w", path, err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Header line is for humans; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return st, fmt.Errorf("read %s header: %w", path, err)
	}
	if err := gob.NewDecoder(br).Decode(&st); err != nil {
		return st, fmt.Errorf("gob decode %s: %w", path, err)
	}
	return st, nil
}
