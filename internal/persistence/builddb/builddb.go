// Package builddb keeps build history in a local SQLite database. Writes
// go through a single writer goroutine fed by a bounded channel so the
// build loop never blocks on disk; reads are plain synchronous queries.
package builddb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Build statuses as stored in the builds table.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Build is one history row.
type Build struct {
	ID          string
	RequestedAt time.Time
	CompletedAt *time.Time
	Source      string
	Description string
	Template    string
	Origin      [3]int
	Ops         int
	Blocks      int64
	Status      string
	Error       string
}

// Stats reports writer queue health.
type Stats struct {
	Enqueued uint64
	Dropped  uint64
	Queued   int
}

type reqKind int

const (
	reqStart reqKind = iota + 1
	reqOps
	reqFinish
)

type req struct {
	kind   reqKind
	build  Build
	opsFor string
	ops    []string
	finish finishRow
}

type finishRow struct {
	ID          string
	CompletedAt time.Time
	Status      string
	Blocks      int64
	Error       string
}

type Store struct {
	db     *sql.DB
	retain int

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed   atomic.Bool
	enqueued atomic.Uint64
	dropped  atomic.Uint64
}

// Open opens (creating if needed) the history database at path. retain
// bounds how many builds survive the post-finish sweep; queueDepth
// bounds the writer channel.
func Open(path string, retain, queueDepth int) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if retain <= 0 {
		retain = 200
	}
	if queueDepth <= 0 {
		queueDepth = 256
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:     db,
		retain: retain,
		ch:     make(chan req, queueDepth),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL keeps readers off the writer's back for append-style load.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			requested_at TEXT NOT NULL,
			completed_at TEXT,
			source TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			template TEXT NOT NULL DEFAULT '',
			origin_x INTEGER NOT NULL,
			origin_y INTEGER NOT NULL,
			origin_z INTEGER NOT NULL,
			ops INTEGER NOT NULL,
			blocks INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_builds_requested ON builds(requested_at);`,
		`CREATE TABLE IF NOT EXISTS build_ops (
			build_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			cmd TEXT NOT NULL,
			PRIMARY KEY (build_id, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains the writer queue and closes the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordStart inserts the accepted build with StatusRunning.
func (s *Store) RecordStart(b Build) {
	if b.Status == "" {
		b.Status = StatusRunning
	}
	s.enqueue(req{kind: reqStart, build: b})
}

// RecordOps stores the rendered command list for a build.
func (s *Store) RecordOps(buildID string, cmds []string) {
	if buildID == "" || len(cmds) == 0 {
		return
	}
	s.enqueue(req{kind: reqOps, opsFor: buildID, ops: append([]string(nil), cmds...)})
}

// RecordFinish marks the build finished and triggers the retention sweep.
func (s *Store) RecordFinish(id, status string, blocks int64, errMsg string) {
	if id == "" {
		return
	}
	s.enqueue(req{kind: reqFinish, finish: finishRow{
		ID:          id,
		CompletedAt: time.Now().UTC(),
		Status:      status,
		Blocks:      blocks,
		Error:       errMsg,
	}})
}

func (s *Store) enqueue(r req) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
		s.enqueued.Add(1)
	default:
		// History is best-effort; the op log keeps the full record.
		s.dropped.Add(1)
	}
}

// QueueStats reports writer queue counters.
func (s *Store) QueueStats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		Enqueued: s.enqueued.Load(),
		Dropped:  s.dropped.Load(),
		Queued:   len(s.ch),
	}
}

func (s *Store) loop() {
	insertBuild, _ := s.db.Prepare(`INSERT OR REPLACE INTO builds
		(id,requested_at,source,description,template,origin_x,origin_y,origin_z,ops,status)
		VALUES(?,?,?,?,?,?,?,?,?,?)`)
	insertOp, _ := s.db.Prepare(`INSERT OR REPLACE INTO build_ops(build_id,seq,cmd) VALUES(?,?,?)`)
	finishBuild, _ := s.db.Prepare(`UPDATE builds SET completed_at=?,status=?,blocks=?,error=? WHERE id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertBuild, insertOp, finishBuild} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	ctx := context.Background()
	for r := range s.ch {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		ok := true
		switch r.kind {
		case reqStart:
			b := r.build
			if insertBuild != nil {
				_, err = tx.Stmt(insertBuild).Exec(
					b.ID,
					b.RequestedAt.UTC().Format(time.RFC3339Nano),
					b.Source,
					b.Description,
					b.Template,
					b.Origin[0], b.Origin[1], b.Origin[2],
					b.Ops,
					b.Status,
				)
				ok = err == nil
			}

		case reqOps:
			if insertOp != nil {
				st := tx.Stmt(insertOp)
				for i, cmd := range r.ops {
					if _, err = st.Exec(r.opsFor, i, cmd); err != nil {
						ok = false
						break
					}
				}
			}

		case reqFinish:
			f := r.finish
			if finishBuild != nil {
				_, err = tx.Stmt(finishBuild).Exec(
					f.CompletedAt.Format(time.RFC3339Nano),
					f.Status,
					f.Blocks,
					f.Error,
					f.ID,
				)
				ok = err == nil
			}
			if ok {
				ok = s.sweepLocked(tx) == nil
			}
		}
		if ok {
			_ = tx.Commit()
		} else {
			_ = tx.Rollback()
		}
	}
}

// sweepLocked trims builds beyond the retention window, oldest first,
// together with their recorded ops.
func (s *Store) sweepLocked(tx *sql.Tx) error {
	victims := `SELECT id FROM builds ORDER BY requested_at DESC LIMIT -1 OFFSET ?`
	if _, err := tx.Exec(`DELETE FROM build_ops WHERE build_id IN (`+victims+`)`, s.retain); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM builds WHERE id IN (`+victims+`)`, s.retain); err != nil {
		return err
	}
	return nil
}

const buildCols = `id,requested_at,completed_at,source,description,template,origin_x,origin_y,origin_z,ops,blocks,status,error`

// RecentBuilds returns up to limit builds, newest first.
func (s *Store) RecentBuilds(ctx context.Context, limit int) ([]Build, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+buildCols+` FROM builds ORDER BY requested_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BuildByID returns the build, or nil when unknown.
func (s *Store) BuildByID(ctx context.Context, id string) (*Build, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+buildCols+` FROM builds WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	b, err := scanBuild(rows)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// OpsForBuild returns the rendered commands for a build in emission order.
func (s *Store) OpsForBuild(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cmd FROM build_ops WHERE build_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var cmd string
		if err := rows.Scan(&cmd); err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, rows.Err()
}

func scanBuild(rows *sql.Rows) (Build, error) {
	var (
		b         Build
		requested string
		completed sql.NullString
	)
	err := rows.Scan(
		&b.ID, &requested, &completed,
		&b.Source, &b.Description, &b.Template,
		&b.Origin[0], &b.Origin[1], &b.Origin[2],
		&b.Ops, &b.Blocks, &b.Status, &b.Error,
	)
	if err != nil {
		return Build{}, err
	}
	if b.RequestedAt, err = time.Parse(time.RFC3339Nano, requested); err != nil {
		return Build{}, fmt.Errorf("requested_at for %s: %w", b.ID, err)
	}
	if completed.Valid && completed.String != "" {
		t, err := time.Parse(time.RFC3339Nano, completed.String)
		if err != nil {
			return Build{}, fmt.Errorf("completed_at for %s: %w", b.ID, err)
		}
		b.CompletedAt = &t
	}
	return b, nil
}
