package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

func ruleDoor(e *blueprint.Element, ctx *Context, em emitter) {
	emitDoor(em, ctx, *e.Pos, mat(e, "oak_door"), facingOf(e, ctx))
}

// emitDoor places the two-part door and records it for the accessibility
// pass. Tower entrances reuse this.
func emitDoor(em emitter, ctx *Context, at blueprint.Vec3i, block, facing string) {
	em.set(at, block, ops.Facing(facing), ops.Half("lower"))
	em.set(blueprint.Vec3i{X: at.X, Y: at.Y + 1, Z: at.Z}, block, ops.Facing(facing), ops.Half("upper"))
	ctx.registerDoor(at, facing)
}

func ruleWindow(e *blueprint.Element, _ *Context, em emitter) {
	m := mat(e, "glass_pane")
	if len(e.Panes) > 0 {
		for _, p := range e.Panes {
			em.set(p, m)
		}
		return
	}
	em.set(*e.Pos, m)
}

// Gates clear their opening and hang a fence gate at the base center.
func ruleGate(e *blueprint.Element, ctx *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	facing := facingOf(e, ctx)
	if dims.W*dims.H*dims.D > 1 {
		em.region(pos, dims, "air")
	}
	cx, cz := centerOf(pos, dims)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y, Z: cz}, mat(e, "oak_fence_gate"), ops.Facing(facing))
}

// Arches stand two jambs under a full-width lintel.
func ruleArch(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "stone_bricks")
	if dims.H > 1 {
		jamb := blueprint.Dims{W: 1, H: dims.H - 1, D: dims.D}
		em.region(pos, jamb, m)
		em.region(blueprint.Vec3i{X: pos.X + dims.W - 1, Y: pos.Y, Z: pos.Z}, jamb, m)
	}
	lintel := blueprint.Dims{W: dims.W, H: 1, D: dims.D}
	em.region(blueprint.Vec3i{X: pos.X, Y: pos.Y + dims.H - 1, Z: pos.Z}, lintel, m)
}

// Ladders climb one rung at a time so every rung carries its wall
// attachment.
func ruleLadder(e *blueprint.Element, ctx *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "ladder")
	facing := facingOf(e, ctx)
	for i := 0; i < dims.H; i++ {
		em.set(blueprint.Vec3i{X: pos.X, Y: pos.Y + i, Z: pos.Z}, m, ops.Facing(facing))
	}
}

// Arrow slits punch a narrow channel through the wall.
func ruleArrowSlit(e *blueprint.Element, _ *Context, em emitter) {
	em.region(*e.Pos, dimsOrUnit(e), mat(e, "air"))
}
