package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/mathx"
)

// Bounds is the horizontal footprint of a blueprint, covering the full
// extent of every element that carries both a position and dimensions.
type Bounds struct {
	MinX, MaxX int
	MinZ, MaxZ int

	ok bool
}

func boundsOf(elems []blueprint.Element) Bounds {
	var b Bounds
	for i := range elems {
		e := &elems[i]
		if e.Pos == nil || e.Dims == nil {
			continue
		}
		maxX := e.Pos.X + e.Dims.W - 1
		maxZ := e.Pos.Z + e.Dims.D - 1
		if !b.ok {
			b = Bounds{MinX: e.Pos.X, MaxX: maxX, MinZ: e.Pos.Z, MaxZ: maxZ, ok: true}
			continue
		}
		b.MinX = mathx.MinInt(b.MinX, e.Pos.X)
		b.MaxX = mathx.MaxInt(b.MaxX, maxX)
		b.MinZ = mathx.MinInt(b.MinZ, e.Pos.Z)
		b.MaxZ = mathx.MaxInt(b.MaxZ, maxZ)
	}
	return b
}

func (b Bounds) CenterX() int { return mathx.FloorDiv(b.MinX+b.MaxX, 2) }
func (b Bounds) CenterZ() int { return mathx.FloorDiv(b.MinZ+b.MaxZ, 2) }

// InteriorFacing resolves the cardinal direction from (x,z) toward the
// footprint center. The dominant axis wins; ties fall to the Z axis, and
// an empty footprint defaults to south.
func (b Bounds) InteriorFacing(x, z int) string {
	if !b.ok {
		return blueprint.South
	}
	dx := b.CenterX() - x
	dz := b.CenterZ() - z
	if mathx.AbsInt(dx) > mathx.AbsInt(dz) {
		if dx > 0 {
			return blueprint.East
		}
		return blueprint.West
	}
	if dz > 0 {
		return blueprint.South
	}
	return blueprint.North
}

// dirDelta maps a cardinal direction to its horizontal unit step.
func dirDelta(dir string) (dx, dz int) {
	switch dir {
	case blueprint.North:
		return 0, -1
	case blueprint.South:
		return 0, 1
	case blueprint.East:
		return 1, 0
	case blueprint.West:
		return -1, 0
	}
	return 0, 0
}
