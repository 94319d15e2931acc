package compile

import (
	"reflect"
	"testing"

	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

func vec(x, y, z int) *blueprint.Vec3i { return &blueprint.Vec3i{X: x, Y: y, Z: z} }
func dim(w, h, d int) *blueprint.Dims  { return &blueprint.Dims{W: w, H: h, D: d} }

func TestCompile_WallRegion(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type: "wall", Material: "oak_planks",
			Pos: vec(10, -60, 10), Dims: dim(3, 4, 1),
		}},
		BuildOrder: []string{"wall"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{"/fill 10 -60 10 12 -57 10 oak_planks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Compile() = %v, want %v", got, want)
	}
}

func TestCompile_DoorTwoParts(t *testing.T) {
	bp := &blueprint.Blueprint{
		Structure: blueprint.Structure{GroundLevel: blueprint.GroundAt(-60)},
		Elements: []blueprint.Element{{
			Type: "door", Material: "oak_door",
			Pos: vec(13, -59, 10), Orientation: blueprint.South,
		}},
		BuildOrder: []string{"door"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/setblock 13 -59 10 oak_door[facing=south,half=lower]",
		"/setblock 13 -58 10 oak_door[facing=south,half=upper]",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Compile() = %v, want %v", got, want)
	}
}

func TestCompile_BuildOrderGroups(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{
			{Type: "wall", Pos: vec(0, 0, 0), Dims: dim(1, 1, 1)},
			{Type: "floor", Pos: vec(0, 0, 1), Dims: dim(1, 1, 1)},
			{Type: "wall", Pos: vec(0, 0, 2), Dims: dim(1, 1, 1)},
			{Type: "floor", Pos: vec(0, 0, 3), Dims: dim(1, 1, 1)},
		},
		BuildOrder: []string{"floor", "wall"},
	}
	var tags []string
	var zs []int
	for _, op := range Compile(bp) {
		tags = append(tags, op.Tag)
		zs = append(zs, op.From.Z)
	}
	wantTags := []string{"floor", "floor", "wall", "wall"}
	if !reflect.DeepEqual(tags, wantTags) {
		t.Fatalf("tags = %v, want %v", tags, wantTags)
	}
	// within a group, source order is preserved
	wantZs := []int{1, 3, 0, 2}
	if !reflect.DeepEqual(zs, wantZs) {
		t.Fatalf("zs = %v, want %v", zs, wantZs)
	}
}

func TestCompile_DropsTypesAbsentFromOrder(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{
			{Type: "wall", Pos: vec(0, 0, 0), Dims: dim(2, 2, 1)},
			{Type: "torch", Pos: vec(1, 1, 1)},
		},
		BuildOrder: []string{"wall"},
	}
	got := Compile(bp)
	if len(got) != 1 {
		t.Fatalf("got %d operations, want 1 (torch dropped)", len(got))
	}
	if got[0].Tag != "wall" {
		t.Fatalf("tag = %q, want wall", got[0].Tag)
	}
}

func TestCompileWith_IncludeUnordered(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{
			{Type: "torch", Pos: vec(1, 1, 1)},
			{Type: "wall", Pos: vec(0, 0, 0), Dims: dim(2, 2, 1)},
			{Type: "lantern", Pos: vec(2, 2, 2)},
		},
		BuildOrder: []string{"wall"},
	}
	var tags []string
	for _, op := range CompileWith(bp, Options{IncludeUnordered: true}) {
		tags = append(tags, op.Tag)
	}
	// listed groups first, then residual types in first-appearance order
	want := []string{"wall", "torch", "lantern"}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
}

func TestCompile_UnknownTagIsNoOp(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements:   []blueprint.Element{{Type: "gazebo", Pos: vec(0, 0, 0)}},
		BuildOrder: []string{"gazebo"},
	}
	if got := Compile(bp); len(got) != 0 {
		t.Fatalf("got %d operations, want 0", len(got))
	}
}

func TestCompile_SkipsElementsWithoutPosition(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{
			{Type: "wall", Dims: dim(3, 3, 3)},
			{Type: "wall", Pos: vec(0, 0, 0), Dims: dim(1, 1, 1)},
		},
		BuildOrder: []string{"wall"},
	}
	if got := Compile(bp); len(got) != 1 {
		t.Fatalf("got %d operations, want 1", len(got))
	}
}

func TestCompile_MultiPaneWindow(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type:     "window",
			Material: "glass_pane",
			Panes: []blueprint.Vec3i{
				{X: 1, Y: -58, Z: 0}, {X: 3, Y: -58, Z: 0}, {X: 5, Y: -58, Z: 0},
			},
		}},
		BuildOrder: []string{"window"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/setblock 1 -58 0 glass_pane",
		"/setblock 3 -58 0 glass_pane",
		"/setblock 5 -58 0 glass_pane",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Compile() = %v, want %v", got, want)
	}
}

func TestCompile_DuplicateOrderEntryEmitsAgain(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements:   []blueprint.Element{{Type: "wall", Pos: vec(0, 0, 0), Dims: dim(1, 1, 1)}},
		BuildOrder: []string{"wall", "wall"},
	}
	if got := Compile(bp); len(got) != 2 {
		t.Fatalf("got %d operations, want 2", len(got))
	}
}

func TestCompile_Deterministic(t *testing.T) {
	bp := &blueprint.Blueprint{
		Structure: blueprint.Structure{GroundLevel: blueprint.GroundAt(-60)},
		Elements: []blueprint.Element{
			{Type: "floor", Material: "stone", Pos: vec(0, -60, 0), Dims: dim(9, 1, 9)},
			{Type: "wall", Material: "oak_planks", Pos: vec(0, -59, 0), Dims: dim(9, 4, 1)},
			{Type: "door", Material: "oak_door", Pos: vec(4, -57, 0)},
			{Type: "stairs", Material: "stone_brick_stairs", Pos: vec(2, -59, 2), Dims: dim(5, 10, 5)},
		},
		BuildOrder: []string{"floor", "wall", "door", "stairs"},
	}
	a, b := Compile(bp), Compile(bp)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two compilations differ")
	}
}

func TestCompile_NilBlueprint(t *testing.T) {
	if got := Compile(nil); got != nil {
		t.Fatalf("Compile(nil) = %v, want nil", got)
	}
}
