package compile

import (
	"reflect"
	"testing"

	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

func compileStairs(t *testing.T, pos *blueprint.Vec3i, d *blueprint.Dims) []ops.Op {
	t.Helper()
	bp := &blueprint.Blueprint{
		Elements:   []blueprint.Element{{Type: "stairs", Material: "oak_stairs", Pos: pos, Dims: d}},
		BuildOrder: []string{"stairs"},
	}
	return Compile(bp)
}

func TestStraightStairs_ClampsToDepth(t *testing.T) {
	got := compileStairs(t, vec(0, 0, 0), dim(1, 4, 2))
	want := []string{
		"/setblock 0 0 0 oak_stairs[facing=north]",
		"/setblock 0 1 1 oak_stairs[facing=north]",
		"/setblock 0 2 1 oak_stairs[facing=north]",
		"/setblock 0 3 1 oak_stairs[facing=north]",
	}
	if !reflect.DeepEqual(ops.RenderAll(got), want) {
		t.Fatalf("straight run = %v, want %v", ops.RenderAll(got), want)
	}
}

func TestStairs_PointWithoutDims(t *testing.T) {
	got := compileStairs(t, vec(3, -59, 7), nil)
	if len(got) != 1 {
		t.Fatalf("got %d operations, want 1", len(got))
	}
	if s := got[0].Render(); s != "/setblock 3 -59 7 oak_stairs[facing=north]" {
		t.Fatalf("rendered %q", s)
	}
}

// Spiral runs must stay strictly inside the inner rectangle of the
// footprint for every size and height.
func TestSpiralStairs_BoundInvariant(t *testing.T) {
	const x0, y0, z0 = 7, -60, -3
	for w := 3; w <= 11; w++ {
		for d := 3; d <= 11; d++ {
			for _, h := range []int{5, 9, 17, 30} {
				got := compileStairs(t, vec(x0, y0, z0), dim(w, h, d))
				if len(got) != h {
					t.Fatalf("w=%d d=%d h=%d: %d operations, want %d", w, d, h, len(got), h)
				}
				minX, maxX := x0+1, x0+w-2
				minZ, maxZ := z0+1, z0+d-2
				for i, op := range got {
					x, y, z := op.From.X, op.From.Y, op.From.Z
					if y != y0+i {
						t.Fatalf("w=%d d=%d h=%d step %d: y=%d, want %d", w, d, h, i, y, y0+i)
					}
					if x < minX || x > maxX || z < minZ || z > maxZ {
						t.Fatalf("w=%d d=%d h=%d step %d: (%d,%d) outside [%d,%d]x[%d,%d]",
							w, d, h, i, x, z, minX, maxX, minZ, maxZ)
					}
				}
			}
		}
	}
}

func TestSpiralStairs_MinimumFootprintPinsCenter(t *testing.T) {
	got := compileStairs(t, vec(0, 0, 0), dim(3, 8, 3))
	for i, op := range got {
		if op.From.X != 1 || op.From.Z != 1 {
			t.Fatalf("step %d at (%d,%d), want (1,1)", i, op.From.X, op.From.Z)
		}
	}
}

func TestSpiralStairs_FirstLegLooksBack(t *testing.T) {
	got := compileStairs(t, vec(0, 0, 0), dim(7, 10, 7))
	if len(got) == 0 {
		t.Fatal("no operations")
	}
	st := got[0].States
	if len(st) != 1 || st[0].Key != "facing" || st[0].Value != blueprint.North {
		t.Fatalf("first step states = %v, want facing=north", st)
	}
}
