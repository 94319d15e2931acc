package compile

import "mason.gg/internal/blueprint"

// Ponds fill with water, stone over the surface layer, then reopen the
// water inside so a one-block rim remains.
func rulePond(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, dims, mat(e, "water"))
	if dims.W < 3 || dims.D < 3 {
		return
	}
	top := blueprint.Vec3i{X: pos.X, Y: pos.Y + dims.H - 1, Z: pos.Z}
	em.region(top, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, "cobblestone")
	inner := blueprint.Vec3i{X: pos.X + 1, Y: pos.Y + dims.H - 1, Z: pos.Z + 1}
	em.region(inner, blueprint.Dims{W: dims.W - 2, H: 1, D: dims.D - 2}, mat(e, "water"))
}

// Fountains raise a center column with water spilling from the top into
// a rimmed basin.
func ruleFountain(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	if dims.W < 3 || dims.D < 3 {
		em.set(pos, "water")
		return
	}
	m := mat(e, "stone_bricks")
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, m)
	basin := blueprint.Vec3i{X: pos.X + 1, Y: pos.Y, Z: pos.Z + 1}
	em.region(basin, blueprint.Dims{W: dims.W - 2, H: 1, D: dims.D - 2}, "water")
	cx, cz := centerOf(pos, dims)
	em.region(blueprint.Vec3i{X: cx, Y: pos.Y, Z: cz}, blueprint.Dims{W: 1, H: dims.H, D: 1}, m)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y + dims.H, Z: cz}, "water")
}

// Wells dig a rimmed shaft with water at the bottom and hang a slab roof
// on two fence posts.
func ruleWell(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "cobblestone")
	if dims.W < 3 || dims.D < 3 {
		em.region(pos, dims, m)
		return
	}
	em.region(pos, blueprint.Dims{W: dims.W, H: 2, D: dims.D}, m)
	shaft := blueprint.Vec3i{X: pos.X + 1, Y: pos.Y, Z: pos.Z + 1}
	em.region(shaft, blueprint.Dims{W: dims.W - 2, H: 2, D: dims.D - 2}, "air")
	em.region(shaft, blueprint.Dims{W: dims.W - 2, H: 1, D: dims.D - 2}, "water")
	post := blueprint.Dims{W: 1, H: 2, D: 1}
	em.region(blueprint.Vec3i{X: pos.X, Y: pos.Y + 2, Z: pos.Z}, post, "oak_fence")
	em.region(blueprint.Vec3i{X: pos.X + dims.W - 1, Y: pos.Y + 2, Z: pos.Z + dims.D - 1}, post, "oak_fence")
	em.region(blueprint.Vec3i{X: pos.X, Y: pos.Y + 4, Z: pos.Z}, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, "oak_slab")
}

// Docks plank a deck and sink two log pilings under the far edge.
func ruleDock(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	deck := mat(e, "oak_planks")
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, deck)
	piling := blueprint.Dims{W: 1, H: 2, D: 1}
	em.region(blueprint.Vec3i{X: pos.X, Y: pos.Y - 2, Z: pos.Z + dims.D - 1}, piling, postFor(deck))
	em.region(blueprint.Vec3i{X: pos.X + dims.W - 1, Y: pos.Y - 2, Z: pos.Z + dims.D - 1}, piling, postFor(deck))
}
