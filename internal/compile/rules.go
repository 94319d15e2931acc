package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

// ruleFunc turns one element into operations. Rules run with a non-nil
// position (the dispatcher filters) except window, which may carry a
// pane list instead.
type ruleFunc func(e *blueprint.Element, ctx *Context, em emitter)

// rules is the closed dispatch set. A tag outside this map is a no-op,
// which keeps forward-compatible blueprints harmless.
var rules = map[string]ruleFunc{
	// structural regions
	"wall":       regionRule("stone"),
	"floor":      ruleFloor,
	"platform":   regionRule("oak_planks"),
	"slab":       regionRule("oak_slab"),
	"beam":       regionRule("oak_log"),
	"support":    regionRule("oak_log"),
	"column":     regionRule("stone_bricks"),
	"pillar":     regionRule("stone_bricks"),
	"carpet":     regionRule("red_carpet"),
	"path":       regionRule("dirt_path"),
	"hay":        regionRule("hay_block"),
	"railing":    regionRule("oak_fence"),
	"portcullis": regionRule("iron_bars"),
	"bookshelf":  regionRule("bookshelf"),
	"decoration": pointRule("lantern"),

	// openings
	"door":       ruleDoor,
	"window":     ruleWindow,
	"gate":       ruleGate,
	"arch":       ruleArch,
	"trapdoor":   facingPointRule("oak_trapdoor"),
	"ladder":     ruleLadder,
	"arrow_slit": ruleArrowSlit,

	// roofline
	"roof":    ruleRoof,
	"chimney": ruleChimney,
	"dome":    ruleDome,
	"spire":   ruleSpire,
	"awning":  ruleAwning,
	"balcony": ruleBalcony,
	"porch":   rulePorch,

	// water features
	"water":    regionRule("water"),
	"moat":     regionRule("water"),
	"pond":     rulePond,
	"fountain": ruleFountain,
	"well":     ruleWell,
	"dock":     ruleDock,

	// grounds
	"garden": ruleGarden,
	"fence":  ruleFence,
	"flower": ruleFlower,
	"crops":  ruleCrops,
	"farm":   ruleFarm,
	"tree":   ruleTree,
	"pen":    rulePen,
	"stable": ruleStable,

	// furnishing
	"torch":          pointRule("torch"),
	"lamp":           pointRule("glowstone"),
	"lantern":        pointRule("lantern"),
	"bed":            ruleBed,
	"chest":          facingPointRule("chest"),
	"barrel":         pointRule("barrel"),
	"crafting_table": pointRule("crafting_table"),
	"furnace":        facingPointRule("furnace"),
	"anvil":          facingPointRule("anvil"),
	"table":          ruleTable,
	"chair":          ruleChair,
	"fireplace":      ruleFireplace,
	"bell":           pointRule("bell"),
	"sign":           pointRule("oak_sign"),
	"banner":         pointRule("red_banner"),

	// town and castle works
	"market_stall": ruleMarketStall,
	"bridge":       ruleBridge,
	"tower":        ruleTower,
	"chain":        ruleChain,
	"battlement":   ruleBattlement,
	"throne":       ruleThrone,
	"altar":        ruleAltar,
	"statue":       ruleStatue,
	"obelisk":      ruleObelisk,
	"pyramid":      rulePyramid,
	"windmill":     ruleWindmill,

	"stairs": ruleStairs,
}

// mat returns the element material or the rule's structural default.
func mat(e *blueprint.Element, def string) string {
	if e.Material != "" {
		return e.Material
	}
	return def
}

// dimsOrUnit treats a missing dimensions field as a single cell.
func dimsOrUnit(e *blueprint.Element) blueprint.Dims {
	if e.Dims != nil {
		return *e.Dims
	}
	return blueprint.Dims{W: 1, H: 1, D: 1}
}

// facingOf prefers the declared orientation and falls back to the
// interior-facing resolver.
func facingOf(e *blueprint.Element, ctx *Context) string {
	if e.Orientation != "" {
		return e.Orientation
	}
	return ctx.Bounds.InteriorFacing(e.Pos.X, e.Pos.Z)
}

// centerOf is the horizontal midpoint cell of an element's extent.
func centerOf(pos blueprint.Vec3i, dims blueprint.Dims) (cx, cz int) {
	return pos.X + dims.W/2, pos.Z + dims.D/2
}

// wallCenter is the middle cell of the footprint's wall on the dir side,
// at base height.
func wallCenter(pos blueprint.Vec3i, dims blueprint.Dims, dir string) blueprint.Vec3i {
	cx, cz := centerOf(pos, dims)
	switch dir {
	case blueprint.North:
		return blueprint.Vec3i{X: cx, Y: pos.Y, Z: pos.Z}
	case blueprint.South:
		return blueprint.Vec3i{X: cx, Y: pos.Y, Z: pos.Z + dims.D - 1}
	case blueprint.East:
		return blueprint.Vec3i{X: pos.X + dims.W - 1, Y: pos.Y, Z: cz}
	default:
		return blueprint.Vec3i{X: pos.X, Y: pos.Y, Z: cz}
	}
}

func isWoodFamily(f string) bool {
	for _, w := range blueprint.WoodSpecies {
		if w == f {
			return true
		}
	}
	return false
}

func regionRule(def string) ruleFunc {
	return func(e *blueprint.Element, _ *Context, em emitter) {
		em.region(*e.Pos, dimsOrUnit(e), mat(e, def))
	}
}

func pointRule(def string) ruleFunc {
	return func(e *blueprint.Element, _ *Context, em emitter) {
		em.set(*e.Pos, mat(e, def))
	}
}

func facingPointRule(def string) ruleFunc {
	return func(e *blueprint.Element, ctx *Context, em emitter) {
		em.set(*e.Pos, mat(e, def), ops.Facing(facingOf(e, ctx)))
	}
}
