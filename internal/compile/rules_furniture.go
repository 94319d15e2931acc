package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

// Beds are two-part: the foot at the element position, the head one
// block along the facing, both sharing it.
func ruleBed(e *blueprint.Element, ctx *Context, em emitter) {
	pos := *e.Pos
	m := mat(e, "red_bed")
	facing := facingOf(e, ctx)
	dx, dz := dirDelta(facing)
	em.set(pos, m, ops.Facing(facing), ops.Part("foot"))
	em.set(blueprint.Vec3i{X: pos.X + dx, Y: pos.Y, Z: pos.Z + dz}, m, ops.Facing(facing), ops.Part("head"))
}

// Tables are a fence leg under a pressure-plate top.
func ruleTable(e *blueprint.Element, _ *Context, em emitter) {
	pos := *e.Pos
	leg := mat(e, "oak_fence")
	top := "oak_pressure_plate"
	if f := blueprint.FamilyOf(leg); isWoodFamily(f) {
		top = blueprint.PressurePlate(f)
	}
	em.set(pos, leg)
	em.set(blueprint.Vec3i{X: pos.X, Y: pos.Y + 1, Z: pos.Z}, top)
}

// Chairs are a single stair block turned toward the room.
func ruleChair(e *blueprint.Element, ctx *Context, em emitter) {
	em.set(*e.Pos, mat(e, "oak_stairs"), ops.Facing(facingOf(e, ctx)))
}

// Fireplaces back a hearth wall behind a campfire.
func ruleFireplace(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, blueprint.Dims{W: dims.W, H: dims.H, D: 1}, mat(e, "cobblestone"))
	cx := pos.X + dims.W/2
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y, Z: pos.Z + 1}, "campfire")
}
