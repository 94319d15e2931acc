// Package service orchestrates builds end to end: it resolves the
// blueprint source, allocates a build site, compiles and validates,
// then executes the operations over the remote console while
// streaming progress and recording history.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mason.gg/internal/analyzer"
	"mason.gg/internal/api"
	"mason.gg/internal/blueprint"
	"mason.gg/internal/catalog"
	"mason.gg/internal/compile"
	"mason.gg/internal/config"
	"mason.gg/internal/ops"
	"mason.gg/internal/persistence/archive"
	"mason.gg/internal/persistence/builddb"
	"mason.gg/internal/persistence/objstore"
	"mason.gg/internal/persistence/oplog"
	"mason.gg/internal/persistence/sitestore"
	"mason.gg/internal/template"
	"mason.gg/internal/transport/rcon"
	"mason.gg/internal/transport/stream"
)

// Source kinds recorded in build history.
const (
	sourceBlueprint   = "blueprint"
	sourceTemplate    = "template"
	sourceVoxel       = "voxel"
	sourceDescription = "description"
)

// Deps are the collaborators the service drives. Exec, Analyzer and
// Mirror may be nil; the rest are required. The caller owns every
// collaborator's lifecycle.
type Deps struct {
	Exec     rcon.Executor
	Hub      *stream.Hub
	History  *builddb.Store
	OpLog    *oplog.Writer
	Sites    *sitestore.Store
	Analyzer *analyzer.Client
	Mirror   *objstore.Mirror
	Logger   *log.Logger
}

// Stats reports executor queue health and lifetime build counts.
type Stats struct {
	QueueDepth    int
	QueueCapacity int
	QueuedTotal   uint64
	RejectedTotal uint64
	DoneTotal     uint64
	FailedTotal   uint64
}

// buildJob is one planned build waiting on the executor queue.
type buildJob struct {
	id        string
	source    string
	name      string // template or voxel name when one was used
	desc      string
	siteIdx   int // allocation ordinal, -1 for explicit positions
	origin    blueprint.Vec3i
	min       blueprint.Vec3i
	max       blueprint.Vec3i
	cmds      []string
	blocks    int64
	requested time.Time

	// frontier strip held by this job until it queues or is rejected
	reserved   bool
	frontierLo int
	frontierHi int
}

// Service owns the serial build executor. Builds queue on a bounded
// channel; the console link is not pipelined, so one runs at a time.
type Service struct {
	cfg      config.Config
	logger   *log.Logger
	exec     rcon.Executor
	hub      *stream.Hub
	history  *builddb.Store
	opLog    *oplog.Writer
	sites    *sitestore.Store
	analyzer *analyzer.Client
	mirror   *objstore.Mirror

	runCtx context.Context
	stop   context.CancelFunc
	queue  chan *buildJob
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool

	// frontier is the next free X strip. It resets to the recorded
	// sites on restart, so interrupted builds reallocate their spot.
	mu       sync.Mutex
	frontier int

	queuedTotal   atomic.Uint64
	rejectedTotal atomic.Uint64
	doneTotal     atomic.Uint64
	failedTotal   atomic.Uint64
}

func New(cfg config.Config, d Deps) (*Service, error) {
	if d.Hub == nil || d.History == nil || d.OpLog == nil || d.Sites == nil {
		return nil, fmt.Errorf("service: hub, history, oplog and sites are required")
	}
	cfg.Normalize()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		cfg:      cfg,
		logger:   d.Logger,
		exec:     d.Exec,
		hub:      d.Hub,
		history:  d.History,
		opLog:    d.OpLog,
		sites:    d.Sites,
		analyzer: d.Analyzer,
		mirror:   d.Mirror,
		runCtx:   ctx,
		stop:     cancel,
		queue:    make(chan *buildJob, cfg.Build.QueueDepth),
	}
	s.frontier = cfg.Build.OriginX
	for _, site := range d.Sites.Sites() {
		if end := site.Max[0] + 1 + cfg.Build.Spacing; end > s.frontier {
			s.frontier = end
		}
	}
	s.wg.Add(1)
	go s.runner()
	return s, nil
}

// Close stops accepting builds, interrupts the one in flight and waits
// for the runner to drain.
func (s *Service) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.stop()
		close(s.queue)
		s.wg.Wait()
	})
}

func (s *Service) Stats() Stats {
	return Stats{
		QueueDepth:    len(s.queue),
		QueueCapacity: cap(s.queue),
		QueuedTotal:   s.queuedTotal.Load(),
		RejectedTotal: s.rejectedTotal.Load(),
		DoneTotal:     s.doneTotal.Load(),
		FailedTotal:   s.failedTotal.Load(),
	}
}

// Build plans a request and queues it for execution. The response
// reports the resolved origin and operation count; progress streams
// over the watch socket and the final record lands in history.
func (s *Service) Build(ctx context.Context, req api.BuildRequest) (api.BuildAccepted, error) {
	if s.closed.Load() {
		return api.BuildAccepted{}, api.Errorf(api.ErrInternal, "service is shutting down")
	}
	if !req.DryRun && s.exec == nil {
		return api.BuildAccepted{}, api.Errorf(api.ErrRconUnavailable, "remote console is not connected")
	}
	job, err := s.plan(ctx, req)
	if err != nil {
		return api.BuildAccepted{}, err
	}
	acc := api.BuildAccepted{BuildID: job.id, Status: "queued", Origin: job.origin, Ops: len(job.cmds)}
	if req.DryRun {
		acc.Status = "dry_run"
		return acc, nil
	}
	select {
	case s.queue <- job:
	default:
		s.releaseSite(job)
		s.rejectedTotal.Add(1)
		return api.BuildAccepted{}, api.Errorf(api.ErrRateLimit, "build queue is full")
	}
	s.queuedTotal.Add(1)
	job.requested = time.Now().UTC()
	s.history.RecordStart(builddb.Build{
		ID:          job.id,
		RequestedAt: job.requested,
		Source:      job.source,
		Description: job.desc,
		Template:    job.name,
		Origin:      job.origin.ToArray(),
		Ops:         len(job.cmds),
	})
	s.history.RecordOps(job.id, job.cmds)
	s.printf("build queued id=%s source=%s site=%d origin=%d,%d,%d ops=%d",
		job.id, job.source, job.siteIdx, job.origin.X, job.origin.Y, job.origin.Z, len(job.cmds))
	return acc, nil
}

// Compile resolves and compiles a request without touching the world:
// no site is allocated, nothing queues and nothing is recorded.
func (s *Service) Compile(ctx context.Context, req api.CompileRequest) (api.CompileResponse, error) {
	groundY := s.cfg.Build.OriginY
	if req.Position != nil {
		groundY = req.Position.Y
	}
	r, err := s.resolveCompile(req, groundY)
	if err != nil {
		return api.CompileResponse{}, err
	}
	bp := r.bp
	if template.NormalizeRotation(req.Rotation) != 0 {
		bp = template.Rotate(bp, req.Rotation)
	}
	list := compile.CompileWith(bp, compile.Options{IncludeUnordered: req.IncludeUnordered})
	if len(list) == 0 {
		return api.CompileResponse{}, api.Errorf(api.ErrCompile, "blueprint produced no operations")
	}
	if r.source != sourceBlueprint && req.Position != nil {
		min, _ := opsBounds(list)
		shiftOps(list, blueprint.Vec3i{
			X: req.Position.X - min.X,
			Y: groundY - bp.Structure.Ground(),
			Z: req.Position.Z - min.Z,
		})
	}
	return api.CompileResponse{
		Operations:    ops.RenderAll(list),
		Count:         len(list),
		Blocks:        int64(ops.TotalVolume(list)),
		Violations:    ops.Validate(list, knownBlock),
		PaletteDigest: catalog.Default().Digest(),
	}, nil
}

// ValidateCommands audits rendered command text without executing it.
func (s *Service) ValidateCommands(cmds []string) api.ValidateResponse {
	return api.ValidateResponse{
		Checked:    len(cmds),
		Violations: ops.ValidateCommands(cmds, knownBlock),
	}
}

// Templates lists the built-in parametric templates and fixed voxel
// blueprints.
func (s *Service) Templates() api.TemplatesResponse {
	resp := api.TemplatesResponse{PaletteDigest: catalog.Default().Digest()}
	for _, t := range template.All() {
		resp.Templates = append(resp.Templates, api.TemplateInfo{
			Name:        t.Name,
			Description: t.Description,
			Defaults:    fromOptions(t.Defaults()),
		})
	}
	for _, v := range template.Voxels() {
		g := v.Grid()
		resp.Voxels = append(resp.Voxels, api.VoxelInfo{
			Name:        v.Name,
			Description: v.Description,
			Width:       g.W,
			Height:      g.H,
			Depth:       g.D,
		})
	}
	return resp
}

// BuildDetail returns one build's record with its rendered operations.
func (s *Service) BuildDetail(ctx context.Context, id string) (api.BuildDetail, error) {
	b, err := s.history.BuildByID(ctx, id)
	if err != nil {
		return api.BuildDetail{}, api.Errorf(api.ErrInternal, "history: %v", err)
	}
	if b == nil {
		return api.BuildDetail{}, api.Errorf(api.ErrNotFound, "no build %s", id)
	}
	cmds, err := s.history.OpsForBuild(ctx, id)
	if err != nil {
		return api.BuildDetail{}, api.Errorf(api.ErrInternal, "history: %v", err)
	}
	return api.BuildDetail{BuildRecord: toRecord(*b), Operations: cmds}, nil
}

// Builds lists recent builds, newest first.
func (s *Service) Builds(ctx context.Context, limit int) (api.BuildsResponse, error) {
	list, err := s.history.RecentBuilds(ctx, limit)
	if err != nil {
		return api.BuildsResponse{}, api.Errorf(api.ErrInternal, "history: %v", err)
	}
	resp := api.BuildsResponse{Builds: make([]api.BuildRecord, 0, len(list))}
	for _, b := range list {
		resp.Builds = append(resp.Builds, toRecord(b))
	}
	return resp, nil
}

// resolved is a blueprint plus where it came from.
type resolved struct {
	bp     *blueprint.Blueprint
	source string
	name   string
	desc   string
}

// plan turns a request into an executable job: resolve, rotate,
// compile, validate, then place the operations at their site.
func (s *Service) plan(ctx context.Context, req api.BuildRequest) (*buildJob, error) {
	groundY := s.cfg.Build.OriginY
	if req.Position != nil {
		groundY = req.Position.Y
	}
	r, err := s.resolveBuild(ctx, req, groundY)
	if err != nil {
		return nil, err
	}
	bp := r.bp
	if template.NormalizeRotation(req.Rotation) != 0 {
		bp = template.Rotate(bp, req.Rotation)
	}
	list := compile.CompileWith(bp, compile.Options{})
	if len(list) == 0 {
		return nil, api.Errorf(api.ErrCompile, "blueprint produced no operations")
	}
	if max := s.cfg.Build.MaxOps; len(list) > max {
		return nil, api.Errorf(api.ErrValidation, "%d operations exceed the limit of %d", len(list), max)
	}
	if viol := ops.Validate(list, knownBlock); len(viol) > 0 {
		return nil, api.Errorf(api.ErrValidation, "%d violations, first: %s", len(viol), viol[0])
	}

	job := &buildJob{
		id:      uuid.NewString(),
		source:  r.source,
		name:    r.name,
		desc:    r.desc,
		siteIdx: -1,
	}
	min, max := opsBounds(list)
	var delta blueprint.Vec3i
	switch {
	case r.source == sourceBlueprint:
		// inline documents carry absolute coordinates
	case req.Position != nil:
		delta = blueprint.Vec3i{
			X: req.Position.X - min.X,
			Y: groundY - bp.Structure.Ground(),
			Z: req.Position.Z - min.Z,
		}
	default:
		lo, hi, idx := s.reserveSite(max.X-min.X+1, req.DryRun)
		job.reserved, job.frontierLo, job.frontierHi, job.siteIdx = !req.DryRun, lo, hi, idx
		delta = blueprint.Vec3i{
			X: lo - min.X,
			Y: groundY - bp.Structure.Ground(),
			Z: s.cfg.Build.OriginZ - min.Z,
		}
	}
	if delta != (blueprint.Vec3i{}) {
		shiftOps(list, delta)
		min, max = vadd(min, delta), vadd(max, delta)
	}
	job.origin = blueprint.Vec3i{X: min.X, Y: bp.Structure.Ground() + delta.Y, Z: min.Z}
	job.min, job.max = min, max
	job.cmds = ops.RenderAll(list)
	job.blocks = int64(ops.TotalVolume(list))
	return job, nil
}

func (s *Service) resolveBuild(ctx context.Context, req api.BuildRequest, groundY int) (resolved, error) {
	switch {
	case len(req.Blueprint) > 0:
		return decodeInline(req.Blueprint)
	case req.Template != "":
		return s.fromTemplate(req.Template, req.Options, groundY)
	case req.Voxel != "":
		return s.fromVoxel(req.Voxel, groundY)
	case strings.TrimSpace(req.Description) != "":
		return s.fromDescription(ctx, req.Description, req.Options, groundY)
	default:
		return resolved{}, api.Errorf(api.ErrBadRequest, "request needs a blueprint, template, voxel or description")
	}
}

func (s *Service) resolveCompile(req api.CompileRequest, groundY int) (resolved, error) {
	switch {
	case len(req.Blueprint) > 0:
		return decodeInline(req.Blueprint)
	case req.Template != "":
		return s.fromTemplate(req.Template, req.Options, groundY)
	case req.Voxel != "":
		return s.fromVoxel(req.Voxel, groundY)
	default:
		return resolved{}, api.Errorf(api.ErrBadRequest, "request needs a blueprint, template or voxel")
	}
}

func decodeInline(raw []byte) (resolved, error) {
	bp, err := blueprint.Decode(raw)
	if err != nil {
		return resolved{}, api.Errorf(api.ErrSchema, "%v", err)
	}
	return resolved{bp: bp, source: sourceBlueprint, desc: bp.Structure.Description}, nil
}

func (s *Service) fromTemplate(name string, opts *api.TemplateOptions, groundY int) (resolved, error) {
	t := template.Get(name)
	if t == nil {
		return resolved{}, api.Errorf(api.ErrUnknownTemplate, "unknown template %q", name)
	}
	bp := t.Build(blueprint.Vec3i{Y: groundY}, toOptions(opts))
	return resolved{bp: bp, source: sourceTemplate, name: t.Name, desc: bp.Structure.Description}, nil
}

func (s *Service) fromVoxel(name string, groundY int) (resolved, error) {
	v := template.GetVoxel(name)
	if v == nil {
		return resolved{}, api.Errorf(api.ErrUnknownTemplate, "unknown voxel blueprint %q", name)
	}
	return resolved{
		bp:     v.Blueprint(blueprint.Vec3i{Y: groundY}),
		source: sourceVoxel,
		name:   v.Name,
		desc:   v.Description,
	}, nil
}

// fromDescription asks the analyzer endpoint for a blueprint, falling
// back to the built-in matchers when it is unconfigured or failing.
// The parametric templates win over the fixed voxels there, since a
// generic description should get the parameterizable building.
func (s *Service) fromDescription(ctx context.Context, desc string, opts *api.TemplateOptions, groundY int) (resolved, error) {
	if s.analyzer.Available() {
		bp, err := s.analyzer.Describe(ctx, desc)
		if err == nil {
			return resolved{bp: bp, source: sourceDescription, desc: desc}, nil
		}
		s.printf("analyzer failed, falling back to templates: %v", err)
	}
	if t := template.Match(desc); t != nil {
		bp := t.Build(blueprint.Vec3i{Y: groundY}, toOptions(opts))
		return resolved{bp: bp, source: sourceDescription, name: t.Name, desc: desc}, nil
	}
	if v := template.MatchVoxel(desc); v != nil {
		return resolved{bp: v.Blueprint(blueprint.Vec3i{Y: groundY}), source: sourceDescription, name: v.Name, desc: desc}, nil
	}
	return resolved{}, api.Errorf(api.ErrUnknownTemplate, "no template matches %q", desc)
}

// reserveSite claims the next strip of X wide enough for the build
// plus the configured gap. Dry runs peek without moving the frontier.
// The claim lives in memory until the completed site is recorded.
func (s *Service) reserveSite(width int, dry bool) (lo, hi, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lo = s.frontier
	hi = lo + width + s.cfg.Build.Spacing
	idx = s.sites.Cursor()
	if !dry {
		s.frontier = hi
		s.sites.NextIndex()
	}
	return lo, hi, idx
}

// releaseSite rolls a rejected job's claim back when no later build
// has claimed past it.
func (s *Service) releaseSite(job *buildJob) {
	if !job.reserved {
		return
	}
	s.mu.Lock()
	if s.frontier == job.frontierHi {
		s.frontier = job.frontierLo
	}
	s.mu.Unlock()
	job.reserved = false
}

func (s *Service) runner() {
	defer s.wg.Done()
	for job := range s.queue {
		s.execute(job)
	}
}

// execute runs one build over the console. A failure finishes the
// build as failed; operations already applied stay in the world.
func (s *Service) execute(job *buildJob) {
	start := time.Now()
	origin := job.origin.ToArray()
	s.hub.Publish(stream.Event{
		Type:        stream.EventBuildStarted,
		BuildID:     job.id,
		Total:       len(job.cmds),
		Description: job.desc,
		Origin:      &origin,
	})

	every := s.cfg.Build.ProgressEvery
	var blocks int64
	for i, cmd := range job.cmds {
		resp, err := s.exec.Execute(s.runCtx, cmd)
		if err != nil {
			s.finishFailed(job, i, blocks, err)
			return
		}
		n := rcon.BlocksIn(cmd)
		blocks += n
		if err := s.opLog.Append(oplog.Entry{BuildID: job.id, Seq: i, Cmd: cmd, Resp: resp, Blocks: n}); err != nil {
			s.printf("oplog append id=%s seq=%d: %v", job.id, i, err)
		}
		if done := i + 1; done%every == 0 || done == len(job.cmds) {
			s.hub.Publish(stream.Event{
				Type:    stream.EventOpApplied,
				BuildID: job.id,
				Seq:     done,
				Total:   len(job.cmds),
				Blocks:  blocks,
				Cmd:     cmd,
			})
		}
	}

	s.history.RecordFinish(job.id, builddb.StatusDone, blocks, "")
	if err := s.sites.AddSite(sitestore.Site{
		BuildID: job.id,
		Origin:  job.origin.ToArray(),
		Min:     job.min.ToArray(),
		Max:     job.max.ToArray(),
	}); err != nil {
		s.printf("site store save id=%s: %v", job.id, err)
	}
	completed := time.Now().UTC()
	path, err := archive.WriteBuild(s.cfg.Archive.Dir, builddb.Build{
		ID:          job.id,
		RequestedAt: job.requested,
		CompletedAt: &completed,
		Source:      job.source,
		Description: job.desc,
		Template:    job.name,
		Origin:      job.origin.ToArray(),
		Ops:         len(job.cmds),
		Blocks:      blocks,
		Status:      builddb.StatusDone,
	}, job.cmds)
	if err != nil {
		s.printf("archive id=%s: %v", job.id, err)
	} else {
		s.mirror.Enqueue(path)
	}
	s.doneTotal.Add(1)
	s.hub.Publish(stream.Event{
		Type:    stream.EventBuildCompleted,
		BuildID: job.id,
		Seq:     len(job.cmds),
		Total:   len(job.cmds),
		Blocks:  blocks,
		Status:  builddb.StatusDone,
	})
	s.printf("build done id=%s ops=%d blocks=%d elapsed=%s",
		job.id, len(job.cmds), blocks, time.Since(start).Round(time.Millisecond))
}

func (s *Service) finishFailed(job *buildJob, applied int, blocks int64, err error) {
	code := api.ErrRconUnavailable
	msg := err.Error()
	if s.runCtx.Err() != nil {
		code = api.ErrInternal
		msg = "interrupted by shutdown"
	}
	s.history.RecordFinish(job.id, builddb.StatusFailed, blocks, msg)
	s.failedTotal.Add(1)
	s.hub.Publish(stream.Event{
		Type:    stream.EventBuildFailed,
		BuildID: job.id,
		Seq:     applied,
		Total:   len(job.cmds),
		Blocks:  blocks,
		Status:  builddb.StatusFailed,
		Code:    code,
		Error:   msg,
	})
	s.printf("build failed id=%s applied=%d/%d err=%v", job.id, applied, len(job.cmds), err)
}

func (s *Service) printf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func knownBlock(block string) bool { return catalog.Default().Has(block) }

func toOptions(o *api.TemplateOptions) template.Options {
	if o == nil {
		return template.Options{}
	}
	return template.Options{
		Width:       o.Width,
		Depth:       o.Depth,
		Height:      o.Height,
		Wood:        o.Wood,
		Roof:        o.Roof,
		SkipGarden:  o.SkipGarden,
		SkipChimney: o.SkipChimney,
	}
}

func fromOptions(o template.Options) api.TemplateOptions {
	return api.TemplateOptions{
		Width:       o.Width,
		Depth:       o.Depth,
		Height:      o.Height,
		Wood:        o.Wood,
		Roof:        o.Roof,
		SkipGarden:  o.SkipGarden,
		SkipChimney: o.SkipChimney,
	}
}

func toRecord(b builddb.Build) api.BuildRecord {
	origin := blueprint.Vec3i{X: b.Origin[0], Y: b.Origin[1], Z: b.Origin[2]}
	return api.BuildRecord{
		ID:          b.ID,
		RequestedAt: b.RequestedAt,
		CompletedAt: b.CompletedAt,
		Source:      b.Source,
		Description: b.Description,
		Template:    b.Template,
		Origin:      &origin,
		Ops:         b.Ops,
		Blocks:      b.Blocks,
		Status:      b.Status,
		Error:       b.Error,
	}
}

// opsBounds is the bounding box over every coordinate the list
// touches. The list must be non-empty.
func opsBounds(list []ops.Op) (min, max blueprint.Vec3i) {
	min, max = list[0].From, list[0].From
	grow := func(v blueprint.Vec3i) {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	for _, o := range list {
		grow(o.From)
		if o.Kind == ops.KindFill {
			grow(o.To)
		}
	}
	return min, max
}

func shiftOps(list []ops.Op, d blueprint.Vec3i) {
	for i := range list {
		list[i].From = vadd(list[i].From, d)
		if list[i].Kind == ops.KindFill {
			list[i].To = vadd(list[i].To, d)
		}
	}
}

func vadd(v, d blueprint.Vec3i) blueprint.Vec3i {
	return blueprint.Vec3i{X: v.X + d.X, Y: v.Y + d.Y, Z: v.Z + d.Z}
}
