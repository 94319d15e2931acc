package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

// Gardens lay a grass bed with a single flower at the center.
func ruleGarden(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, mat(e, "grass_block"))
	cx, cz := centerOf(pos, dims)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y + 1, Z: cz}, "poppy")
}

// Fences fill lines directly and leave wide footprints as a perimeter.
func ruleFence(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "oak_fence")
	if dims.W < 3 || dims.D < 3 {
		em.region(pos, dims, m)
		return
	}
	layer := blueprint.Dims{W: dims.W, H: dims.H, D: dims.D}
	em.region(pos, layer, m)
	inner := blueprint.Vec3i{X: pos.X + 1, Y: pos.Y, Z: pos.Z + 1}
	em.region(inner, blueprint.Dims{W: dims.W - 2, H: dims.H, D: dims.D - 2}, "air")
}

// Flowers always stand on their own ground block one layer below.
func ruleFlower(e *blueprint.Element, _ *Context, em emitter) {
	pos := *e.Pos
	em.set(blueprint.Vec3i{X: pos.X, Y: pos.Y - 1, Z: pos.Z}, "grass_block")
	em.set(pos, mat(e, "poppy"))
}

// Crops grow on a tilled layer below the crop layer.
func ruleCrops(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, "farmland")
	above := blueprint.Vec3i{X: pos.X, Y: pos.Y + 1, Z: pos.Z}
	em.region(above, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, mat(e, "wheat"))
}

// Farms add the irrigation cell crops need at the plot center.
func ruleFarm(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, "farmland")
	cx, cz := centerOf(pos, dims)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y, Z: cz}, "water")
	above := blueprint.Vec3i{X: pos.X, Y: pos.Y + 1, Z: pos.Z}
	em.region(above, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, mat(e, "wheat"))
}

// leavesFor picks a canopy block matching the trunk's wood family.
func leavesFor(trunk string) string {
	switch f := blueprint.FamilyOf(trunk); f {
	case "":
		return "oak_leaves"
	case "crimson", "warped":
		return "shroomlight"
	default:
		return f + "_leaves"
	}
}

// Trees stand a trunk with a 3x2x3 canopy around the top.
func ruleTree(e *blueprint.Element, _ *Context, em emitter) {
	pos := *e.Pos
	trunk := mat(e, "oak_log")
	h := 4
	if e.Dims != nil && e.Dims.H > 2 {
		h = e.Dims.H
	}
	em.region(pos, blueprint.Dims{W: 1, H: h, D: 1}, trunk)
	canopy := blueprint.Vec3i{X: pos.X - 1, Y: pos.Y + h - 1, Z: pos.Z - 1}
	em.region(canopy, blueprint.Dims{W: 3, H: 2, D: 3}, leavesFor(trunk))
}

// Pens ring a fence with a gate on the interior-facing side.
func rulePen(e *blueprint.Element, ctx *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "oak_fence")
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, m)
	if dims.W >= 3 && dims.D >= 3 {
		inner := blueprint.Vec3i{X: pos.X + 1, Y: pos.Y, Z: pos.Z + 1}
		em.region(inner, blueprint.Dims{W: dims.W - 2, H: 1, D: dims.D - 2}, "air")
	}
	facing := facingOf(e, ctx)
	gp, _ := railEdge(pos, dims, facing)
	cx, cz := centerOf(gp, edgeDims(dims, facing))
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y, Z: cz}, "oak_fence_gate", ops.Facing(facing))
}

// edgeDims is the extent of a one-block-wide strip along the dir side.
func edgeDims(dims blueprint.Dims, dir string) blueprint.Dims {
	if dir == blueprint.North || dir == blueprint.South {
		return blueprint.Dims{W: dims.W, H: 1, D: 1}
	}
	return blueprint.Dims{W: 1, H: 1, D: dims.D}
}

// Stables shell in planks, open a doorway, and keep a hay bale inside.
func ruleStable(e *blueprint.Element, ctx *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.regionMod(pos, dims, mat(e, "oak_planks"), "hollow")
	facing := facingOf(e, ctx)
	doorAt := wallCenter(pos, dims, facing)
	em.region(blueprint.Vec3i{X: doorAt.X, Y: pos.Y + 1, Z: doorAt.Z}, blueprint.Dims{W: 1, H: 2, D: 1}, "air")
	if dims.W >= 3 && dims.D >= 3 {
		em.set(blueprint.Vec3i{X: pos.X + 1, Y: pos.Y + 1, Z: pos.Z + 1}, "hay_block")
	}
}
