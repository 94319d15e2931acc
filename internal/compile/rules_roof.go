package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

// Stair-material roofs lay one oriented course: slope north/south runs
// the row along X, east/west along Z, and each stair faces opposite the
// slope so the steps climb toward the ridge. Anything else is a solid
// fill.
func ruleRoof(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "oak_planks")
	if !blueprint.IsStairs(m) {
		em.region(pos, dims, m)
		return
	}
	slope := e.Orientation
	if slope == "" {
		slope = blueprint.North
	}
	facing := blueprint.Opposite(slope)
	switch slope {
	case blueprint.North, blueprint.South:
		for i := 0; i < dims.W; i++ {
			em.set(blueprint.Vec3i{X: pos.X + i, Y: pos.Y, Z: pos.Z}, m, ops.Facing(facing))
		}
	default:
		for i := 0; i < dims.D; i++ {
			em.set(blueprint.Vec3i{X: pos.X, Y: pos.Y, Z: pos.Z + i}, m, ops.Facing(facing))
		}
	}
}

// Chimneys cap their flue with a campfire so the stack smokes.
func ruleChimney(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, dims, mat(e, "cobblestone"))
	cx, cz := centerOf(pos, dims)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y + dims.H, Z: cz}, "campfire")
}

// Domes approximate a hemisphere with a full drum and an inset cap.
func ruleDome(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "stone_bricks")
	if dims.H <= 1 || dims.W < 3 || dims.D < 3 {
		em.region(pos, dims, m)
		return
	}
	em.region(pos, blueprint.Dims{W: dims.W, H: dims.H - 1, D: dims.D}, m)
	cap := blueprint.Vec3i{X: pos.X + 1, Y: pos.Y + dims.H - 1, Z: pos.Z + 1}
	em.region(cap, blueprint.Dims{W: dims.W - 2, H: 1, D: dims.D - 2}, m)
}

// Spires taper to a single tip block at the top center.
func ruleSpire(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "stone_bricks")
	if dims.H <= 1 {
		em.region(pos, dims, m)
		return
	}
	em.region(pos, blueprint.Dims{W: dims.W, H: dims.H - 1, D: dims.D}, m)
	cx, cz := centerOf(pos, dims)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y + dims.H - 1, Z: cz}, m)
}

// Awnings stretch a canopy over two posts at the outer corners.
func ruleAwning(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, mat(e, "white_wool"))
	post := blueprint.Dims{W: 1, H: 2, D: 1}
	em.region(blueprint.Vec3i{X: pos.X, Y: pos.Y - 2, Z: pos.Z + dims.D - 1}, post, "oak_fence")
	em.region(blueprint.Vec3i{X: pos.X + dims.W - 1, Y: pos.Y - 2, Z: pos.Z + dims.D - 1}, post, "oak_fence")
}

// railEdge is the one-block-wide strip of a deck's side facing dir.
func railEdge(pos blueprint.Vec3i, dims blueprint.Dims, dir string) (blueprint.Vec3i, blueprint.Dims) {
	switch dir {
	case blueprint.North:
		return pos, blueprint.Dims{W: dims.W, H: 1, D: 1}
	case blueprint.South:
		return blueprint.Vec3i{X: pos.X, Y: pos.Y, Z: pos.Z + dims.D - 1}, blueprint.Dims{W: dims.W, H: 1, D: 1}
	case blueprint.East:
		return blueprint.Vec3i{X: pos.X + dims.W - 1, Y: pos.Y, Z: pos.Z}, blueprint.Dims{W: 1, H: 1, D: dims.D}
	default:
		return pos, blueprint.Dims{W: 1, H: 1, D: dims.D}
	}
}

// Balconies rail every deck edge except the wall side.
func ruleBalcony(e *blueprint.Element, ctx *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, mat(e, "oak_planks"))
	interior := facingOf(e, ctx)
	railBase := blueprint.Vec3i{X: pos.X, Y: pos.Y + 1, Z: pos.Z}
	for _, dir := range []string{blueprint.North, blueprint.South, blueprint.East, blueprint.West} {
		if dir == interior {
			continue // the wall side needs no rail
		}
		rp, rd := railEdge(railBase, dims, dir)
		em.region(rp, rd, "oak_fence")
	}
}

// postFor picks a post block matching the deck's wood family. Crimson and
// warped have stems instead of logs.
func postFor(deck string) string {
	f := blueprint.FamilyOf(deck)
	switch {
	case f == "crimson" || f == "warped":
		return f + "_stem"
	case isWoodFamily(f):
		return blueprint.Log(f)
	}
	return "oak_log"
}

// Porches stand a post at each end of the edge facing away from the
// building.
func rulePorch(e *blueprint.Element, ctx *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	deck := mat(e, "oak_planks")
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, deck)
	front := blueprint.Opposite(facingOf(e, ctx))
	fp, fd := railEdge(blueprint.Vec3i{X: pos.X, Y: pos.Y + 1, Z: pos.Z}, dims, front)
	post := blueprint.Dims{W: 1, H: 2, D: 1}
	em.region(fp, post, postFor(deck))
	em.region(blueprint.Vec3i{X: fp.X + fd.W - 1, Y: fp.Y, Z: fp.Z + fd.D - 1}, post, postFor(deck))
}
