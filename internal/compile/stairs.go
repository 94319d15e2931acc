package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/mathx"
	"mason.gg/internal/ops"
)

// ruleStairs picks a generator by height: short runs go straight, tall
// ones spiral inside the footprint.
func ruleStairs(e *blueprint.Element, _ *Context, em emitter) {
	pos := *e.Pos
	m := mat(e, "oak_stairs")
	if e.Dims == nil {
		em.set(pos, m, ops.Facing(blueprint.North))
		return
	}
	if e.Dims.H <= 4 {
		straightStairs(em, pos, *e.Dims, m)
		return
	}
	spiralStairs(em, pos, *e.Dims, m)
}

// straightStairs steps forward one block per level, clamping travel to
// the footprint depth.
func straightStairs(em emitter, pos blueprint.Vec3i, dims blueprint.Dims, m string) {
	for i := 0; i < dims.H; i++ {
		at := blueprint.Vec3i{
			X: pos.X,
			Y: pos.Y + i,
			Z: pos.Z + mathx.MinInt(i, dims.D-1),
		}
		em.set(at, m, ops.Facing(blueprint.North))
	}
}

// spiralLegs cycle south, east, north, west; each stair looks back the
// way it came.
var spiralLegs = []struct {
	dx, dz int
	facing string
}{
	{0, 1, blueprint.North},
	{1, 0, blueprint.West},
	{0, -1, blueprint.South},
	{-1, 0, blueprint.East},
}

// spiralStairs climbs one block per step around the inner rectangle
// [x+1, x+w-2] x [z+1, z+d-2], never touching the footprint shell. The
// cursor switches legs when the current leg runs out of side length or
// the next cell would leave the rectangle; the clamp after every move
// keeps even degenerate 3x3 footprints pinned inside.
func spiralStairs(em emitter, pos blueprint.Vec3i, dims blueprint.Dims, m string) {
	minX, maxX := pos.X+1, pos.X+dims.W-2
	minZ, maxZ := pos.Z+1, pos.Z+dims.D-2
	side := mathx.MinInt(dims.W, dims.D) - 2
	if side < 1 {
		side = 1
	}

	cx, cz := pos.X+1, pos.Z+1
	legIdx, taken := 0, 0
	for i := 0; i < dims.H; i++ {
		leg := spiralLegs[legIdx]
		em.set(blueprint.Vec3i{X: cx, Y: pos.Y + i, Z: cz}, m, ops.Facing(leg.facing))

		nx, nz := cx+leg.dx, cz+leg.dz
		taken++
		if taken >= side-1 || nx < minX || nx > maxX || nz < minZ || nz > maxZ {
			legIdx = (legIdx + 1) % 4
			taken = 0
			leg = spiralLegs[legIdx]
			nx, nz = cx+leg.dx, cz+leg.dz
		}
		cx = mathx.ClampInt(nx, minX, maxX)
		cz = mathx.ClampInt(nz, minZ, maxZ)
	}
}
