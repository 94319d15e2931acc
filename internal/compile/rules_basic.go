package compile

import "mason.gg/internal/blueprint"

// Floors fill like walls but also register into the context so the
// structure's walkable levels stay known to later passes.
func ruleFloor(e *blueprint.Element, ctx *Context, em emitter) {
	em.region(*e.Pos, dimsOrUnit(e), mat(e, "oak_planks"))
	ctx.registerFloor(*e)
}
