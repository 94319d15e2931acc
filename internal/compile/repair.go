package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

// repairAccess appends approach stairs for every door sitting above the
// walkable plane. Steps rise from ground_level+1 to one below the door;
// step i (counted from the bottom) sits height-1-i blocks back along the
// axis opposite the door's facing, so the climb lands on the threshold.
func repairAccess(ctx *Context, res *Result) {
	expected := ctx.Ground + 1
	for _, d := range ctx.doors {
		if d.pos.Y <= expected {
			continue
		}
		h := d.pos.Y - expected
		dx, dz := dirDelta(blueprint.Opposite(d.facing))
		for i := 0; i < h; i++ {
			back := h - 1 - i
			op := ops.Set(blueprint.Vec3i{
				X: d.pos.X + dx*back,
				Y: expected + i,
				Z: d.pos.Z + dz*back,
			}, "oak_stairs", ops.Facing(d.facing))
			op.Tag = "stairs"
			res.Ops = append(res.Ops, op)
		}
	}
}
