package compile

import (
	"reflect"
	"testing"

	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

func compileDoor(t *testing.T, ground int, pos *blueprint.Vec3i, facing string) []ops.Op {
	t.Helper()
	bp := &blueprint.Blueprint{
		Structure: blueprint.Structure{GroundLevel: blueprint.GroundAt(ground)},
		Elements: []blueprint.Element{{
			Type: "door", Material: "oak_door", Pos: pos, Orientation: facing,
		}},
		BuildOrder: []string{"door"},
	}
	return Compile(bp)
}

func TestRepairAccess_ElevatedDoor(t *testing.T) {
	got := compileDoor(t, -60, vec(5, -57, 10), blueprint.South)
	want := []string{
		"/setblock 5 -57 10 oak_door[facing=south,half=lower]",
		"/setblock 5 -56 10 oak_door[facing=south,half=upper]",
		"/setblock 5 -59 9 oak_stairs[facing=south]",
		"/setblock 5 -58 10 oak_stairs[facing=south]",
	}
	if !reflect.DeepEqual(ops.RenderAll(got), want) {
		t.Fatalf("compiled = %v, want %v", ops.RenderAll(got), want)
	}
	for _, op := range got[2:] {
		if op.Tag != "stairs" {
			t.Fatalf("repair op tagged %q, want stairs", op.Tag)
		}
	}
}

func TestRepairAccess_StepCountMatchesElevation(t *testing.T) {
	for k := 1; k <= 6; k++ {
		got := compileDoor(t, -60, vec(0, -59+k, 0), blueprint.North)
		stairs := got[2:]
		if len(stairs) != k {
			t.Fatalf("k=%d: %d stairs, want %d", k, len(stairs), k)
		}
		for i, op := range stairs {
			if wantY := -59 + i; op.From.Y != wantY {
				t.Fatalf("k=%d step %d: y=%d, want %d", k, i, op.From.Y, wantY)
			}
			// approach comes from the south side for a north-facing door
			if wantZ := 0 + (k - 1 - i); op.From.Z != wantZ {
				t.Fatalf("k=%d step %d: z=%d, want %d", k, i, op.From.Z, wantZ)
			}
		}
	}
}

func TestRepairAccess_GroundDoorUntouched(t *testing.T) {
	got := compileDoor(t, -60, vec(5, -59, 10), blueprint.South)
	if len(got) != 2 {
		t.Fatalf("got %d operations, want 2 (no repair)", len(got))
	}
}

func TestRepairAccess_SunkenDoorUntouched(t *testing.T) {
	got := compileDoor(t, -60, vec(5, -61, 10), blueprint.South)
	if len(got) != 2 {
		t.Fatalf("got %d operations, want 2 (no repair)", len(got))
	}
}

func TestRepairAccess_EastFacingDoor(t *testing.T) {
	got := compileDoor(t, -60, vec(8, -58, 4), blueprint.East)
	if len(got) != 3 {
		t.Fatalf("got %d operations, want 3", len(got))
	}
	if s := got[2].Render(); s != "/setblock 8 -59 4 oak_stairs[facing=east]" {
		t.Fatalf("repair op = %q", s)
	}
}

func TestRepairAccess_DefaultGround(t *testing.T) {
	// no ground_level in the header: the superflat default applies
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type: "door", Material: "oak_door", Pos: vec(0, -58, 0), Orientation: blueprint.South,
		}},
		BuildOrder: []string{"door"},
	}
	got := Compile(bp)
	if len(got) != 3 {
		t.Fatalf("got %d operations, want 3 (one repair stair)", len(got))
	}
}
