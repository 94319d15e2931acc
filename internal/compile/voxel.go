package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

// compileVoxel translates a hand-authored grid cell-per-element: no
// dispatch, no repair, exact placement only. Empty materials skip, air
// clears, and doors/slabs/stairs pick up the minimal state their block
// needs to sit right. Voxel placements render without the leading slash.
func compileVoxel(elems []blueprint.Element) []ops.Op {
	out := make([]ops.Op, 0, len(elems))
	for i := range elems {
		e := &elems[i]
		if e.Pos == nil || e.Material == "" {
			continue
		}
		op := voxelOp(*e.Pos, e.Material)
		op.Tag = e.Type
		out = append(out, op)
	}
	return out
}

func voxelOp(at blueprint.Vec3i, m string) ops.Op {
	var op ops.Op
	switch {
	case m == "air":
		op = ops.Set(at, "air")
	case blueprint.IsDoor(m):
		op = ops.Set(at, m, ops.Half("lower"))
	case blueprint.IsSlab(m):
		op = ops.Set(at, m, ops.BlockType("bottom"))
	case blueprint.IsStairs(m):
		op = ops.Set(at, m, ops.Facing(blueprint.North))
	default:
		op = ops.Set(at, m)
	}
	op.Bare = true
	return op
}
