package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/mathx"
	"mason.gg/internal/ops"
)

// Market stalls raise four corner posts under a wool canopy with a
// counter along the front.
func ruleMarketStall(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	post := blueprint.Dims{W: 1, H: 3, D: 1}
	for _, c := range [][2]int{{0, 0}, {dims.W - 1, 0}, {0, dims.D - 1}, {dims.W - 1, dims.D - 1}} {
		em.region(blueprint.Vec3i{X: pos.X + c[0], Y: pos.Y, Z: pos.Z + c[1]}, post, "oak_fence")
	}
	canopy := blueprint.Vec3i{X: pos.X, Y: pos.Y + 3, Z: pos.Z}
	em.region(canopy, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, mat(e, "white_wool"))
	if dims.D > 1 {
		counter := blueprint.Vec3i{X: pos.X, Y: pos.Y + 1, Z: pos.Z + dims.D - 1}
		em.region(counter, blueprint.Dims{W: dims.W, H: 1, D: 1}, "oak_slab")
	}
}

// railFor picks a rail block matching the deck's wood family.
func railFor(deck string) string {
	if f := blueprint.FamilyOf(deck); isWoodFamily(f) {
		return blueprint.Fence(f)
	}
	return "oak_fence"
}

// Bridges deck the span and rail both long edges. The long axis runs
// along Z for north/south, along X for east/west; an unset orientation
// follows the larger dimension.
func ruleBridge(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	deck := mat(e, "oak_planks")
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, deck)

	alongZ := dims.D >= dims.W
	switch e.Orientation {
	case blueprint.North, blueprint.South:
		alongZ = true
	case blueprint.East, blueprint.West:
		alongZ = false
	}
	rail := railFor(deck)
	railY := pos.Y + 1
	if alongZ {
		side := blueprint.Dims{W: 1, H: 1, D: dims.D}
		em.region(blueprint.Vec3i{X: pos.X, Y: railY, Z: pos.Z}, side, rail)
		em.region(blueprint.Vec3i{X: pos.X + dims.W - 1, Y: railY, Z: pos.Z}, side, rail)
	} else {
		side := blueprint.Dims{W: dims.W, H: 1, D: 1}
		em.region(blueprint.Vec3i{X: pos.X, Y: railY, Z: pos.Z}, side, rail)
		em.region(blueprint.Vec3i{X: pos.X, Y: railY, Z: pos.Z + dims.D - 1}, side, rail)
	}
}

// Towers shell hollow, cut a two-high doorway on the wall facing the
// structure's interior, and hang a door in the opening.
func ruleTower(e *blueprint.Element, ctx *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.regionMod(pos, dims, mat(e, "stone_bricks"), "hollow")
	facing := facingOf(e, ctx)
	at := wallCenter(pos, dims, facing)
	at.Y = pos.Y + 1
	em.region(at, blueprint.Dims{W: 1, H: 2, D: 1}, "air")
	emitDoor(em, ctx, at, "oak_door", facing)
}

// Chains interpolate point placements between the two endpoints.
func ruleChain(e *blueprint.Element, _ *Context, em emitter) {
	pos := *e.Pos
	m := mat(e, "chain")
	if e.End == nil {
		em.set(pos, m)
		return
	}
	end := *e.End
	dx, dy, dz := end.X-pos.X, end.Y-pos.Y, end.Z-pos.Z
	steps := mathx.MaxInt(
		mathx.MaxInt(mathx.AbsInt(dx), mathx.AbsInt(dy)),
		mathx.MaxInt(mathx.AbsInt(dz), 1),
	)
	for i := 0; i <= steps; i++ {
		em.set(blueprint.Vec3i{
			X: pos.X + dx*i/steps,
			Y: pos.Y + dy*i/steps,
			Z: pos.Z + dz*i/steps,
		}, m)
	}
}

// Battlements top the parapet with merlons every other block along the
// long axis.
func ruleBattlement(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "stone_bricks")
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, m)
	if dims.W >= dims.D {
		for i := 0; i < dims.W; i += 2 {
			em.set(blueprint.Vec3i{X: pos.X + i, Y: pos.Y + 1, Z: pos.Z}, m)
		}
	} else {
		for i := 0; i < dims.D; i += 2 {
			em.set(blueprint.Vec3i{X: pos.X, Y: pos.Y + 1, Z: pos.Z + i}, m)
		}
	}
}

// Thrones seat a stair on a quartz dais.
func ruleThrone(e *blueprint.Element, ctx *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, "quartz_block")
	cx, cz := centerOf(pos, dims)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y + 1, Z: cz}, mat(e, "quartz_stairs"), ops.Facing(facingOf(e, ctx)))
}

// Altars center an enchanting table on a raised base.
func ruleAltar(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, mat(e, "stone_bricks"))
	cx, cz := centerOf(pos, dims)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y + 1, Z: cz}, "enchanting_table")
}

// Statues stack a body column and head on a pedestal.
func ruleStatue(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "stone")
	em.region(pos, blueprint.Dims{W: dims.W, H: 1, D: dims.D}, "stone_bricks")
	cx, cz := centerOf(pos, dims)
	body := mathx.MaxInt(dims.H-2, 1)
	em.region(blueprint.Vec3i{X: cx, Y: pos.Y + 1, Z: cz}, blueprint.Dims{W: 1, H: body, D: 1}, m)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y + 1 + body, Z: cz}, m)
}

// Obelisks cap their shaft with a quartz point.
func ruleObelisk(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "smooth_stone")
	if dims.H <= 1 {
		em.region(pos, dims, m)
		return
	}
	em.region(pos, blueprint.Dims{W: dims.W, H: dims.H - 1, D: dims.D}, m)
	cx, cz := centerOf(pos, dims)
	em.set(blueprint.Vec3i{X: cx, Y: pos.Y + dims.H - 1, Z: cz}, "quartz_block")
}

// Pyramids step inward one block per course until the sides meet.
func rulePyramid(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	m := mat(e, "sandstone")
	for k := 0; k < dims.H; k++ {
		w, d := dims.W-2*k, dims.D-2*k
		if w < 1 || d < 1 {
			break
		}
		layer := blueprint.Vec3i{X: pos.X + k, Y: pos.Y + k, Z: pos.Z + k}
		em.region(layer, blueprint.Dims{W: w, H: 1, D: d}, m)
	}
}

// Windmills hang a wool cross off the tower's north face near the top.
func ruleWindmill(e *blueprint.Element, _ *Context, em emitter) {
	pos, dims := *e.Pos, dimsOrUnit(e)
	em.regionMod(pos, dims, mat(e, "cobblestone"), "hollow")
	if dims.H < 4 {
		return
	}
	cx := pos.X + dims.W/2
	hubY := pos.Y + dims.H - 2
	bz := pos.Z - 1
	em.region(blueprint.Vec3i{X: cx, Y: hubY - 2, Z: bz}, blueprint.Dims{W: 1, H: 5, D: 1}, "white_wool")
	em.region(blueprint.Vec3i{X: cx - 2, Y: hubY, Z: bz}, blueprint.Dims{W: 5, H: 1, D: 1}, "white_wool")
}
