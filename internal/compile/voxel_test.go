package compile

import (
	"reflect"
	"testing"

	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

func TestCompileVoxel_ExactPlacement(t *testing.T) {
	bp := &blueprint.Blueprint{
		IsVoxel: true,
		Elements: []blueprint.Element{
			{Type: "block", Material: "stone", Pos: vec(0, -60, 0)},
			{Type: "block", Material: "", Pos: vec(1, -60, 0)}, // empty cell
			{Type: "block", Material: "air", Pos: vec(2, -60, 0)},
			{Type: "block", Material: "oak_door", Pos: vec(3, -60, 0)},
			{Type: "block", Material: "stone_brick_slab", Pos: vec(4, -60, 0)},
			{Type: "block", Material: "oak_stairs", Pos: vec(5, -60, 0)},
		},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"setblock 0 -60 0 stone",
		"setblock 2 -60 0 air",
		"setblock 3 -60 0 oak_door[half=lower]",
		"setblock 4 -60 0 stone_brick_slab[type=bottom]",
		"setblock 5 -60 0 oak_stairs[facing=north]",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("voxel ops = %v, want %v", got, want)
	}
}

func TestCompileVoxel_BypassesDispatchAndRepair(t *testing.T) {
	// a voxel door element never becomes a two-part door and never
	// triggers accessibility stairs, whatever the ground level says
	bp := &blueprint.Blueprint{
		IsVoxel:   true,
		Structure: blueprint.Structure{GroundLevel: blueprint.GroundAt(-60)},
		Elements: []blueprint.Element{
			{Type: "door", Material: "oak_door", Pos: vec(0, -50, 0)},
		},
		BuildOrder: []string{"wall"}, // ignored in voxel mode
	}
	got := Compile(bp)
	if len(got) != 1 {
		t.Fatalf("got %d operations, want 1", len(got))
	}
	if s := got[0].Render(); s != "setblock 0 -50 0 oak_door[half=lower]" {
		t.Fatalf("rendered %q", s)
	}
}

func TestCompileVoxel_SkipsMissingPosition(t *testing.T) {
	bp := &blueprint.Blueprint{
		IsVoxel:  true,
		Elements: []blueprint.Element{{Type: "block", Material: "stone"}},
	}
	if got := Compile(bp); len(got) != 0 {
		t.Fatalf("got %d operations, want 0", len(got))
	}
}
