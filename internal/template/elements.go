package template

import "mason.gg/internal/blueprint"

// Element literal helpers. The builders assemble long element lists;
// these keep each entry on one line.

func region(typ, material string, x, y, z, w, h, d int) blueprint.Element {
	return blueprint.Element{
		Type:     typ,
		Material: material,
		Pos:      &blueprint.Vec3i{X: x, Y: y, Z: z},
		Dims:     &blueprint.Dims{W: w, H: h, D: d},
	}
}

func regionFacing(typ, material, dir string, x, y, z, w, h, d int) blueprint.Element {
	e := region(typ, material, x, y, z, w, h, d)
	e.Orientation = dir
	return e
}

func point(typ, material string, x, y, z int) blueprint.Element {
	return blueprint.Element{
		Type:     typ,
		Material: material,
		Pos:      &blueprint.Vec3i{X: x, Y: y, Z: z},
	}
}

func pointFacing(typ, material, dir string, x, y, z int) blueprint.Element {
	e := point(typ, material, x, y, z)
	e.Orientation = dir
	return e
}

// window builds a multi-pane window covering a w x h panel in the X
// plane at depth z.
func window(material string, x, y, z, w, h int) blueprint.Element {
	cells := make([]blueprint.Vec3i, 0, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			cells = append(cells, blueprint.Vec3i{X: x + i, Y: y + j, Z: z})
		}
	}
	return blueprint.Element{Type: "window", Material: material, Panes: cells}
}

// strippedPost is the stripped-log framing block for a wood species.
// Crimson and warped grow stems instead of logs.
func strippedPost(wood string) string {
	if wood == "crimson" || wood == "warped" {
		return "stripped_" + wood + "_stem"
	}
	return blueprint.StrippedLog(wood)
}
