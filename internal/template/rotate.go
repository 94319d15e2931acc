package template

import "mason.gg/internal/blueprint"

// NormalizeRotation converts a rotation value into a quarter-turn count
// in [0,3]. It accepts quarter turns directly or degree multiples of 90.
func NormalizeRotation(r int) int {
	if r%90 == 0 && (r > 3 || r < -3) {
		r = r / 90
	}
	r %= 4
	if r < 0 {
		r += 4
	}
	return r
}

// rotateDir turns a cardinal one quarter turn clockwise viewed from
// above: north -> east -> south -> west. Non-cardinals pass through.
func rotateDir(dir string) string {
	switch dir {
	case blueprint.North:
		return blueprint.East
	case blueprint.East:
		return blueprint.South
	case blueprint.South:
		return blueprint.West
	case blueprint.West:
		return blueprint.North
	default:
		return dir
	}
}

// footprint is the horizontal bounding box over every coordinate a
// blueprint mentions, including region extents, panes and endpoints.
type footprint struct {
	minX, maxX, minZ, maxZ int
	ok                     bool
}

func (f *footprint) grow(x, z int) {
	if !f.ok {
		f.minX, f.maxX, f.minZ, f.maxZ = x, x, z, z
		f.ok = true
		return
	}
	if x < f.minX {
		f.minX = x
	}
	if x > f.maxX {
		f.maxX = x
	}
	if z < f.minZ {
		f.minZ = z
	}
	if z > f.maxZ {
		f.maxZ = z
	}
}

func footprintOf(els []blueprint.Element) footprint {
	var f footprint
	for i := range els {
		e := &els[i]
		if e.Pos != nil {
			f.grow(e.Pos.X, e.Pos.Z)
			if e.Dims != nil {
				f.grow(e.Pos.X+e.Dims.W-1, e.Pos.Z+e.Dims.D-1)
			}
		}
		for _, p := range e.Panes {
			f.grow(p.X, p.Z)
		}
		if e.End != nil {
			f.grow(e.End.X, e.End.Z)
		}
	}
	return f
}

// Rotate returns a copy of the blueprint turned clockwise by rot
// (quarter turns or degrees) within its own footprint: the minimum
// corner stays anchored while the extents swap. Positions, region
// dimensions, pane lists, endpoints and orientations all rotate.
func Rotate(bp *blueprint.Blueprint, rot int) *blueprint.Blueprint {
	out := clone(bp)
	for n := NormalizeRotation(rot); n > 0; n-- {
		rotateQuarter(out)
	}
	return out
}

func rotateQuarter(bp *blueprint.Blueprint) {
	bp.Structure.Width, bp.Structure.Depth = bp.Structure.Depth, bp.Structure.Width
	f := footprintOf(bp.Elements)
	if !f.ok {
		return
	}
	pt := func(v *blueprint.Vec3i) {
		v.X, v.Z = f.minX+(f.maxZ-v.Z), f.minZ+(v.X-f.minX)
	}
	for i := range bp.Elements {
		e := &bp.Elements[i]
		if e.Pos != nil {
			if e.Dims != nil {
				// the far-Z corner becomes the new minimum corner
				nx := f.minX + (f.maxZ - (e.Pos.Z + e.Dims.D - 1))
				nz := f.minZ + (e.Pos.X - f.minX)
				e.Pos.X, e.Pos.Z = nx, nz
				e.Dims.W, e.Dims.D = e.Dims.D, e.Dims.W
			} else {
				pt(e.Pos)
			}
		}
		for j := range e.Panes {
			pt(&e.Panes[j])
		}
		if e.End != nil {
			pt(e.End)
		}
		e.Orientation = rotateDir(e.Orientation)
	}
}

func clone(bp *blueprint.Blueprint) *blueprint.Blueprint {
	out := &blueprint.Blueprint{
		Structure:  bp.Structure,
		Elements:   make([]blueprint.Element, len(bp.Elements)),
		BuildOrder: append([]string(nil), bp.BuildOrder...),
		IsVoxel:    bp.IsVoxel,
	}
	if bp.Structure.GroundLevel != nil {
		g := *bp.Structure.GroundLevel
		out.Structure.GroundLevel = &g
	}
	for i, e := range bp.Elements {
		if e.Pos != nil {
			p := *e.Pos
			e.Pos = &p
		}
		if e.Dims != nil {
			d := *e.Dims
			e.Dims = &d
		}
		if e.End != nil {
			p := *e.End
			e.End = &p
		}
		if len(e.Panes) > 0 {
			e.Panes = append([]blueprint.Vec3i(nil), e.Panes...)
		}
		out.Elements[i] = e
	}
	return out
}
