package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mason.gg/internal/analyzer"
	"mason.gg/internal/catalog"
	"mason.gg/internal/config"
	"mason.gg/internal/mcp"
	"mason.gg/internal/persistence/builddb"
	"mason.gg/internal/persistence/objstore"
	"mason.gg/internal/persistence/oplog"
	"mason.gg/internal/persistence/sitestore"
	"mason.gg/internal/service"
	"mason.gg/internal/transport/rcon"
	"mason.gg/internal/transport/stream"
)

func main() {
	var (
		configPath = flag.String("config", "configs/masond.yaml", "config file path")
		listen     = flag.String("listen", "", "http listen address (overrides config)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[masond] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("config not found (%s); using defaults", *configPath)
			cfg, err = config.Load("")
		}
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
	}
	if strings.TrimSpace(*listen) != "" {
		cfg.Listen = strings.TrimSpace(*listen)
	}
	_ = os.MkdirAll(cfg.DataDir, 0o755)

	history, err := builddb.Open(cfg.History.Path, cfg.History.Retain, cfg.History.QueueDepth)
	if err != nil {
		logger.Fatalf("open history: %v", err)
	}
	defer history.Close()

	sites, err := sitestore.Open(cfg.Sites.Path)
	if err != nil {
		logger.Fatalf("open site registry: %v", err)
	}
	logger.Printf("site registry: %d completed, cursor=%d", sites.Len(), sites.Cursor())

	hub := stream.NewHub(logger)
	defer hub.Close()

	// Mirror before the op log so the final rotation on shutdown still
	// has somewhere to enqueue.
	var mirror *objstore.Mirror
	if cfg.Mirror.Enabled() {
		client, err := objstore.New(cfg.Mirror.Endpoint, cfg.Mirror.Bucket, cfg.Mirror.Region,
			cfg.Mirror.AccessKey, cfg.Mirror.SecretKey)
		if err != nil {
			logger.Fatalf("init mirror: %v", err)
		}
		mirror = objstore.NewMirror(client, cfg.DataDir, cfg.Mirror.Prefix,
			cfg.Mirror.Workers, cfg.Mirror.Queue, logger)
		defer mirror.Close()
		if n := mirror.Sweep(".jsonl.zst", ".json.zst"); n > 0 {
			logger.Printf("mirror sweep: enqueued %d leftover files", n)
		}
	}

	opLog := oplog.NewWriter(cfg.OpLog.Dir)
	defer opLog.Close()
	if mirror != nil {
		opLog.SetRotateHook(mirror.Enqueue)
	}

	var console *rcon.Client
	if cfg.RCON.Addr != "" {
		console, err = rcon.Dial(cfg.RCON.Addr, cfg.RCON.Password, cfg.RCON.OpsPerSecond,
			time.Duration(cfg.RCON.DialTimeoutS)*time.Second, logger)
		if err != nil {
			logger.Printf("rcon unavailable at %s: %v (builds refused until restart)", cfg.RCON.Addr, err)
			console = nil
		} else {
			defer console.Close()
		}
	}

	an := analyzer.New(analyzer.Config{
		Endpoint:      cfg.Analyzer.Endpoint,
		APIKey:        cfg.Analyzer.APIKey,
		Timeout:       time.Duration(cfg.Analyzer.TimeoutS) * time.Second,
		MaxRetries:    cfg.Analyzer.MaxRetries,
		Width:         cfg.Analyzer.Width,
		Depth:         cfg.Analyzer.Depth,
		PaletteDigest: catalog.Default().Digest(),
	}, logger)

	deps := service.Deps{
		Hub:      hub,
		History:  history,
		OpLog:    opLog,
		Sites:    sites,
		Analyzer: an,
		Mirror:   mirror,
		Logger:   logger,
	}
	if console != nil {
		deps.Exec = console
	}
	svc, err := service.New(cfg, deps)
	if err != nil {
		logger.Fatalf("service: %v", err)
	}
	defer svc.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.MCP.Listen != "" {
		mcpSrv, err := mcp.NewServer(mcp.Config{Builder: svc, Secret: cfg.MCP.Secret})
		if err != nil {
			logger.Fatalf("mcp: %v", err)
		}
		mcpHTTP := &http.Server{
			Addr:              cfg.MCP.Listen,
			Handler:           mcpSrv.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Printf("mcp listening on %s", cfg.MCP.Listen)
			if err := mcpHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("mcp server: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel2()
			_ = mcpHTTP.Shutdown(ctx2)
		}()
	}

	mux := http.NewServeMux()
	svc.Register(mux)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		bs := svc.Stats()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP mason_builds_total Builds by terminal outcome.\n")
		fmt.Fprintf(rw, "# TYPE mason_builds_total counter\n")
		fmt.Fprintf(rw, "mason_builds_total{outcome=%q} %d\n", "done", bs.DoneTotal)
		fmt.Fprintf(rw, "mason_builds_total{outcome=%q} %d\n", "failed", bs.FailedTotal)

		fmt.Fprintf(rw, "# HELP mason_builds_queued_total Builds accepted onto the executor queue.\n")
		fmt.Fprintf(rw, "# TYPE mason_builds_queued_total counter\n")
		fmt.Fprintf(rw, "mason_builds_queued_total %d\n", bs.QueuedTotal)

		fmt.Fprintf(rw, "# HELP mason_builds_rejected_total Builds rejected because the queue was full.\n")
		fmt.Fprintf(rw, "# TYPE mason_builds_rejected_total counter\n")
		fmt.Fprintf(rw, "mason_builds_rejected_total %d\n", bs.RejectedTotal)

		fmt.Fprintf(rw, "# HELP mason_build_queue_depth Executor queue backlog.\n")
		fmt.Fprintf(rw, "# TYPE mason_build_queue_depth gauge\n")
		fmt.Fprintf(rw, "mason_build_queue_depth %d\n", bs.QueueDepth)
		fmt.Fprintf(rw, "# HELP mason_build_queue_capacity Executor queue capacity.\n")
		fmt.Fprintf(rw, "# TYPE mason_build_queue_capacity gauge\n")
		fmt.Fprintf(rw, "mason_build_queue_capacity %d\n", bs.QueueCapacity)

		hs := hub.Stats()
		fmt.Fprintf(rw, "# HELP mason_watchers Connected progress watchers.\n")
		fmt.Fprintf(rw, "# TYPE mason_watchers gauge\n")
		fmt.Fprintf(rw, "mason_watchers %d\n", hs.Subscribers)
		fmt.Fprintf(rw, "# HELP mason_events_published_total Progress events published.\n")
		fmt.Fprintf(rw, "# TYPE mason_events_published_total counter\n")
		fmt.Fprintf(rw, "mason_events_published_total %d\n", hs.PublishedTotal)
		fmt.Fprintf(rw, "# HELP mason_events_dropped_total Watchers dropped for falling behind.\n")
		fmt.Fprintf(rw, "# TYPE mason_events_dropped_total counter\n")
		fmt.Fprintf(rw, "mason_events_dropped_total %d\n", hs.DroppedTotal)

		qs := history.QueueStats()
		fmt.Fprintf(rw, "# HELP mason_history_writes_total History writes enqueued.\n")
		fmt.Fprintf(rw, "# TYPE mason_history_writes_total counter\n")
		fmt.Fprintf(rw, "mason_history_writes_total %d\n", qs.Enqueued)
		fmt.Fprintf(rw, "# HELP mason_history_dropped_total History writes dropped on saturation.\n")
		fmt.Fprintf(rw, "# TYPE mason_history_dropped_total counter\n")
		fmt.Fprintf(rw, "mason_history_dropped_total %d\n", qs.Dropped)
		fmt.Fprintf(rw, "# HELP mason_history_queue_depth History writer backlog.\n")
		fmt.Fprintf(rw, "# TYPE mason_history_queue_depth gauge\n")
		fmt.Fprintf(rw, "mason_history_queue_depth %d\n", qs.Queued)

		fmt.Fprintf(rw, "# HELP mason_sites Completed build sites in the registry.\n")
		fmt.Fprintf(rw, "# TYPE mason_sites gauge\n")
		fmt.Fprintf(rw, "mason_sites %d\n", sites.Len())
		fmt.Fprintf(rw, "# HELP mason_site_cursor Next site allocation ordinal.\n")
		fmt.Fprintf(rw, "# TYPE mason_site_cursor gauge\n")
		fmt.Fprintf(rw, "mason_site_cursor %d\n", sites.Cursor())

		writeConsoleMetrics(rw, console)
		writeMirrorMetrics(rw, mirror)
	})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func writeConsoleMetrics(rw http.ResponseWriter, console *rcon.Client) {
	if console == nil {
		return
	}
	s := console.Stats()
	fmt.Fprintf(rw, "# HELP mason_console_sent_total Commands sent over the remote console.\n")
	fmt.Fprintf(rw, "# TYPE mason_console_sent_total counter\n")
	fmt.Fprintf(rw, "mason_console_sent_total %d\n", s.SentTotal)

	fmt.Fprintf(rw, "# HELP mason_console_failed_total Commands the remote console refused.\n")
	fmt.Fprintf(rw, "# TYPE mason_console_failed_total counter\n")
	fmt.Fprintf(rw, "mason_console_failed_total %d\n", s.FailedTotal)

	fmt.Fprintf(rw, "# HELP mason_console_blocks_total Estimated blocks placed.\n")
	fmt.Fprintf(rw, "# TYPE mason_console_blocks_total counter\n")
	fmt.Fprintf(rw, "mason_console_blocks_total %d\n", s.BlocksTotal)
}

func writeMirrorMetrics(rw http.ResponseWriter, mirror *objstore.Mirror) {
	if mirror == nil {
		return
	}
	s := mirror.Stats()
	fmt.Fprintf(rw, "# HELP mason_mirror_queue_depth Current mirror queue depth.\n")
	fmt.Fprintf(rw, "# TYPE mason_mirror_queue_depth gauge\n")
	fmt.Fprintf(rw, "mason_mirror_queue_depth %d\n", s.QueueDepth)

	fmt.Fprintf(rw, "# HELP mason_mirror_queue_capacity Mirror queue capacity.\n")
	fmt.Fprintf(rw, "# TYPE mason_mirror_queue_capacity gauge\n")
	fmt.Fprintf(rw, "mason_mirror_queue_capacity %d\n", s.QueueCapacity)

	fmt.Fprintf(rw, "# HELP mason_mirror_enqueued_total Total mirror enqueue attempts.\n")
	fmt.Fprintf(rw, "# TYPE mason_mirror_enqueued_total counter\n")
	fmt.Fprintf(rw, "mason_mirror_enqueued_total %d\n", s.EnqueuedTotal)

	fmt.Fprintf(rw, "# HELP mason_mirror_queue_saturated_total Enqueue attempts that found the queue full.\n")
	fmt.Fprintf(rw, "# TYPE mason_mirror_queue_saturated_total counter\n")
	fmt.Fprintf(rw, "mason_mirror_queue_saturated_total %d\n", s.QueueSaturatedTotal)

	fmt.Fprintf(rw, "# HELP mason_mirror_dropped_total Files dropped because the queue stayed full.\n")
	fmt.Fprintf(rw, "# TYPE mason_mirror_dropped_total counter\n")
	fmt.Fprintf(rw, "mason_mirror_dropped_total %d\n", s.DroppedTotal)

	fmt.Fprintf(rw, "# HELP mason_mirror_upload_success_total Successful mirror uploads.\n")
	fmt.Fprintf(rw, "# TYPE mason_mirror_upload_success_total counter\n")
	fmt.Fprintf(rw, "mason_mirror_upload_success_total %d\n", s.UploadSuccessTotal)

	fmt.Fprintf(rw, "# HELP mason_mirror_upload_fail_total Mirror uploads failed after retry.\n")
	fmt.Fprintf(rw, "# TYPE mason_mirror_upload_fail_total counter\n")
	fmt.Fprintf(rw, "mason_mirror_upload_fail_total %d\n", s.UploadFailTotal)

	fmt.Fprintf(rw, "# HELP mason_mirror_last_success_unix Unix time of the last successful upload.\n")
	fmt.Fprintf(rw, "# TYPE mason_mirror_last_success_unix gauge\n")
	fmt.Fprintf(rw, "mason_mirror_last_success_unix %d\n", s.LastSuccessUnix)

	fmt.Fprintf(rw, "# HELP mason_mirror_last_error_unix Unix time of the last failed upload.\n")
	fmt.Fprintf(rw, "# TYPE mason_mirror_last_error_unix gauge\n")
	fmt.Fprintf(rw, "mason_mirror_last_error_unix %d\n", s.LastErrorUnix)
}
