package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"mason.gg/internal/blueprint"
	"mason.gg/internal/catalog"
	"mason.gg/internal/compile"
	"mason.gg/internal/nbt"
	"mason.gg/internal/ops"
	"mason.gg/internal/persistence/builddb"
	"mason.gg/internal/persistence/oplog"
	"mason.gg/internal/template"
	"mason.gg/internal/transport/rcon"
	"mason.gg/internal/transport/stream"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "compile":
			compileCmd(os.Args[2:])
			return
		case "validate":
			validateCmd(os.Args[2:])
			return
		case "templates":
			templatesCmd(os.Args[2:])
			return
		case "voxel":
			voxelCmd(os.Args[2:])
			return
		case "send":
			sendCmd(os.Args[2:])
			return
		case "history":
			historyCmd(os.Args[2:])
			return
		case "replay":
			replayCmd(os.Args[2:])
			return
		case "watch":
			watchCmd(os.Args[2:])
			return
		case "mine":
			mineCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: masonctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands: compile validate templates voxel send history replay watch mine")
	os.Exit(2)
}

func compileCmd(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	blueprintPath := fs.String("blueprint", "", "blueprint json path (- for stdin)")
	templateName := fs.String("template", "", "built-in template name")
	voxelName := fs.String("voxel", "", "built-in voxel blueprint name")
	pos := fs.String("pos", "", "origin x,y,z (default 0,-60,0)")
	rotation := fs.Int("rotation", 0, "clockwise quarter turns (degrees accepted)")
	width := fs.Int("width", 0, "template width override")
	depth := fs.Int("depth", 0, "template depth override")
	height := fs.Int("height", 0, "template wall height override")
	wood := fs.String("wood", "", "template wood material override")
	roof := fs.String("roof", "", "template roof material override")
	skipGarden := fs.Bool("skip_garden", false, "omit the garden pass")
	skipChimney := fs.Bool("skip_chimney", false, "omit the chimney pass")
	unordered := fs.Bool("unordered", false, "append elements missing from the build order")
	check := fs.Bool("check", false, "audit against the block palette and fail on violations")
	_ = fs.Parse(args)

	origin := parseOrigin(*pos)
	opts := template.Options{
		Width: *width, Depth: *depth, Height: *height,
		Wood: *wood, Roof: *roof,
		SkipGarden: *skipGarden, SkipChimney: *skipChimney,
	}
	bp := resolveSource(*blueprintPath, *templateName, *voxelName, origin, opts)
	if template.NormalizeRotation(*rotation) != 0 {
		bp = template.Rotate(bp, *rotation)
	}

	list := compile.CompileWith(bp, compile.Options{IncludeUnordered: *unordered})
	if len(list) == 0 {
		fmt.Fprintln(os.Stderr, "blueprint produced no operations")
		os.Exit(1)
	}
	if *check {
		viol := ops.Validate(list, knownBlock)
		for _, v := range viol {
			fmt.Fprintln(os.Stderr, v.String())
		}
		if len(viol) > 0 {
			os.Exit(1)
		}
	}
	for _, cmd := range ops.RenderAll(list) {
		fmt.Println(cmd)
	}
	fmt.Fprintf(os.Stderr, "%d operations, %d blocks\n", len(list), ops.TotalVolume(list))
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	file := fs.String("file", "-", "commands file, one per line (- for stdin)")
	_ = fs.Parse(args)

	cmds := readLines(*file)
	if len(cmds) == 0 {
		fmt.Fprintln(os.Stderr, "no commands to check")
		os.Exit(2)
	}
	viol := ops.ValidateCommands(cmds, knownBlock)
	for _, v := range viol {
		fmt.Println(v.String())
	}
	fmt.Fprintf(os.Stderr, "checked %d commands: %d violations\n", len(cmds), len(viol))
	if len(viol) > 0 {
		os.Exit(1)
	}
}

func templatesCmd(args []string) {
	fs := flag.NewFlagSet("templates", flag.ExitOnError)
	emit := fs.String("emit", "", "emit the named template as blueprint json")
	pos := fs.String("pos", "", "origin x,y,z for -emit (default 0,-60,0)")
	_ = fs.Parse(args)

	if *emit != "" {
		t := template.Get(*emit)
		if t == nil {
			fmt.Fprintf(os.Stderr, "unknown template %q\n", *emit)
			os.Exit(2)
		}
		emitJSON(t.Build(parseOrigin(*pos), template.Options{}))
		return
	}
	for _, t := range template.All() {
		d := t.Defaults()
		fmt.Printf("%-16s %2dx%2dx%2d  %s\n", t.Name, d.Width, d.Depth, d.Height, t.Description)
	}
}

func voxelCmd(args []string) {
	fs := flag.NewFlagSet("voxel", flag.ExitOnError)
	emit := fs.String("emit", "", "emit the named voxel blueprint as json")
	pos := fs.String("pos", "", "origin x,y,z for -emit (default 0,-60,0)")
	_ = fs.Parse(args)

	if *emit != "" {
		v := template.GetVoxel(*emit)
		if v == nil {
			fmt.Fprintf(os.Stderr, "unknown voxel blueprint %q\n", *emit)
			os.Exit(2)
		}
		emitJSON(v.Blueprint(parseOrigin(*pos)))
		return
	}
	for _, v := range template.Voxels() {
		g := v.Grid()
		fmt.Printf("%-16s %2dx%2dx%2d  %s\n", v.Name, g.W, g.D, g.H, v.Description)
	}
}

func sendCmd(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:25575", "rcon address")
	password := fs.String("password", "", "rcon password (or MASON_RCON_PASSWORD)")
	rate := fs.Int("rate", 20, "commands per second")
	file := fs.String("file", "", "commands file, one per line (- for stdin)")
	blueprintPath := fs.String("blueprint", "", "blueprint json path to compile and send")
	templateName := fs.String("template", "", "built-in template name to compile and send")
	voxelName := fs.String("voxel", "", "built-in voxel blueprint to compile and send")
	pos := fs.String("pos", "", "origin x,y,z (default 0,-60,0)")
	_ = fs.Parse(args)

	var cmds []string
	if *file != "" {
		cmds = readLines(*file)
	} else {
		bp := resolveSource(*blueprintPath, *templateName, *voxelName, parseOrigin(*pos), template.Options{})
		cmds = ops.RenderAll(compile.Compile(bp))
	}
	if len(cmds) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to send")
		os.Exit(2)
	}

	if *password == "" {
		*password = os.Getenv("MASON_RCON_PASSWORD")
	}
	client, err := rcon.Dial(*addr, *password, *rate, 5*time.Second, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rcon:", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx := context.Background()
	for i, cmd := range cmds {
		resp, err := client.Execute(ctx, cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "op %d: %v\n", i, err)
			os.Exit(1)
		}
		if resp != "" {
			fmt.Println(resp)
		}
	}
	fmt.Fprintf(os.Stderr, "sent %d commands\n", len(cmds))
}

func historyCmd(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	db := fs.String("db", "data/mason.db", "history database path")
	limit := fs.Int("limit", 20, "most recent builds to list")
	id := fs.String("id", "", "show one build with its operations")
	_ = fs.Parse(args)

	if _, err := os.Stat(*db); err != nil {
		fmt.Fprintf(os.Stderr, "no history at %s\n", *db)
		os.Exit(1)
	}
	store, err := builddb.Open(*db, 200, 16)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open history:", err)
		os.Exit(1)
	}
	defer store.Close()
	ctx := context.Background()

	if *id != "" {
		b, err := store.BuildByID(ctx, *id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		if b == nil {
			fmt.Fprintf(os.Stderr, "no build %s\n", *id)
			os.Exit(1)
		}
		fmt.Printf("id:        %s\n", b.ID)
		fmt.Printf("status:    %s\n", b.Status)
		fmt.Printf("source:    %s\n", b.Source)
		if b.Template != "" {
			fmt.Printf("template:  %s\n", b.Template)
		}
		if b.Description != "" {
			fmt.Printf("desc:      %s\n", b.Description)
		}
		fmt.Printf("origin:    %d,%d,%d\n", b.Origin[0], b.Origin[1], b.Origin[2])
		fmt.Printf("ops:       %d\n", b.Ops)
		fmt.Printf("blocks:    %d\n", b.Blocks)
		fmt.Printf("requested: %s\n", b.RequestedAt.Format(time.RFC3339))
		if b.CompletedAt != nil {
			fmt.Printf("completed: %s\n", b.CompletedAt.Format(time.RFC3339))
		}
		if b.Error != "" {
			fmt.Printf("error:     %s\n", b.Error)
		}
		cmds, err := store.OpsForBuild(ctx, *id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query ops:", err)
			os.Exit(1)
		}
		for _, c := range cmds {
			fmt.Println(c)
		}
		return
	}

	list, err := store.RecentBuilds(ctx, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, b := range list {
		what := b.Template
		if what == "" {
			what = b.Description
		}
		fmt.Printf("%s  %-7s %-12s %5d ops %9d blocks  %s  %s\n",
			b.RequestedAt.Format(time.RFC3339), b.Status, b.Source, b.Ops, b.Blocks, b.ID, what)
	}
}

func replayCmd(args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	dir := fs.String("dir", "data/oplog", "op log directory")
	pattern := fs.String("glob", "", "file selection glob (default **/ops-*.jsonl.zst)")
	buildID := fs.String("build", "", "only entries for this build id")
	send := fs.Bool("send", false, "re-send through rcon instead of printing")
	addr := fs.String("addr", "127.0.0.1:25575", "rcon address (with -send)")
	password := fs.String("password", "", "rcon password (or MASON_RCON_PASSWORD)")
	rate := fs.Int("rate", 20, "commands per second (with -send)")
	_ = fs.Parse(args)

	files, err := oplog.Files(*dir, *pattern)
	if err != nil {
		fmt.Fprintln(os.Stderr, "select files:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no op log files match")
		os.Exit(1)
	}

	var exec *rcon.Client
	if *send {
		if *password == "" {
			*password = os.Getenv("MASON_RCON_PASSWORD")
		}
		exec, err = rcon.Dial(*addr, *password, *rate, 5*time.Second, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rcon:", err)
			os.Exit(1)
		}
		defer exec.Close()
	}

	ctx := context.Background()
	count := 0
	for _, path := range files {
		err := oplog.ReadFile(path, func(e oplog.Entry) error {
			if *buildID != "" && e.BuildID != *buildID {
				return nil
			}
			count++
			if exec != nil {
				_, err := exec.Execute(ctx, e.Cmd)
				return err
			}
			fmt.Println(e.Cmd)
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
			os.Exit(1)
		}
	}
	fmt.Fprintf(os.Stderr, "replayed %d operations from %d files\n", count, len(files))
}

func watchCmd(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:8775", "masond address")
	_ = fs.Parse(args)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+*addr+"/v1/watch", nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}
	defer conn.Close()

	for {
		var ev stream.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			fmt.Fprintln(os.Stderr, "stream:", err)
			os.Exit(1)
		}
		printEvent(ev)
	}
}

func printEvent(ev stream.Event) {
	switch ev.Type {
	case stream.EventBuildStarted:
		at := ""
		if ev.Origin != nil {
			at = fmt.Sprintf(" at %d,%d,%d", ev.Origin[0], ev.Origin[1], ev.Origin[2])
		}
		fmt.Printf("%s started: %d ops%s  %s\n", ev.BuildID, ev.Total, at, ev.Description)
	case stream.EventOpApplied:
		fmt.Printf("%s %d/%d blocks=%d\n", ev.BuildID, ev.Seq, ev.Total, ev.Blocks)
	case stream.EventBuildCompleted:
		fmt.Printf("%s completed: %d blocks\n", ev.BuildID, ev.Blocks)
	case stream.EventBuildFailed:
		fmt.Printf("%s failed at %d/%d: %s %s\n", ev.BuildID, ev.Seq, ev.Total, ev.Code, ev.Error)
	default:
		fmt.Printf("%s %s\n", ev.BuildID, ev.Type)
	}
}

func mineCmd(args []string) {
	fs := flag.NewFlagSet("mine", flag.ExitOnError)
	file := fs.String("nbt", "", "saved structure file (required)")
	desc := fs.String("description", "", "blueprint description")
	pos := fs.String("pos", "", "origin x,y,z (default 0,-60,0)")
	_ = fs.Parse(args)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -nbt")
		os.Exit(2)
	}
	st, err := nbt.ReadFile(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read structure:", err)
		os.Exit(1)
	}
	g, err := st.Grid()
	if err != nil {
		fmt.Fprintln(os.Stderr, "grid:", err)
		os.Exit(1)
	}

	if *desc == "" {
		base := strings.TrimSuffix(filepath.Base(*file), filepath.Ext(*file))
		*desc = "mined from " + base
		if st.Author != "" {
			*desc += " by " + st.Author
		}
	}
	origin := parseOrigin(*pos)
	bp := &blueprint.Blueprint{
		Structure: blueprint.Structure{
			Width:       g.W,
			Depth:       g.D,
			Height:      g.H,
			GroundLevel: blueprint.GroundAt(origin.Y),
			Description: *desc,
		},
		Elements: g.Elements(origin),
		IsVoxel:  true,
	}
	emitJSON(bp)
	fmt.Fprintf(os.Stderr, "%d blocks in %dx%dx%d\n", len(bp.Elements), g.W, g.H, g.D)
}

func resolveSource(path, templateName, voxelName string, origin blueprint.Vec3i, opts template.Options) *blueprint.Blueprint {
	switch {
	case path != "":
		data := readInput(path)
		bp, err := blueprint.Decode(data)
		if err != nil {
			fmt.Fprintln(os.Stderr, "blueprint:", err)
			os.Exit(1)
		}
		return bp
	case templateName != "":
		t := template.Get(templateName)
		if t == nil {
			fmt.Fprintf(os.Stderr, "unknown template %q\n", templateName)
			os.Exit(2)
		}
		return t.Build(origin, opts)
	case voxelName != "":
		v := template.GetVoxel(voxelName)
		if v == nil {
			fmt.Fprintf(os.Stderr, "unknown voxel blueprint %q\n", voxelName)
			os.Exit(2)
		}
		return v.Blueprint(origin)
	}
	fmt.Fprintln(os.Stderr, "missing -blueprint, -template or -voxel")
	os.Exit(2)
	return nil
}

func parseOrigin(s string) blueprint.Vec3i {
	if strings.TrimSpace(s) == "" {
		return blueprint.Vec3i{Y: -60}
	}
	v, err := parseVec3(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad -pos:", err)
		os.Exit(2)
	}
	return blueprint.Vec3i{X: v[0], Y: v[1], Z: v[2]}
}

func parseVec3(s string) ([3]int, error) {
	var v [3]int
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected x,y,z")
	}
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return v, err
		}
		v[i] = n
	}
	return v, nil
}

func readInput(path string) []byte {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read stdin:", err)
			os.Exit(1)
		}
		return data
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	return data
}

func readLines(path string) []string {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "scan:", err)
		os.Exit(1)
	}
	return out
}

func emitJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
	os.Stdout.Write(b)
	fmt.Println()
}

func knownBlock(block string) bool { return catalog.Default().Has(block) }
