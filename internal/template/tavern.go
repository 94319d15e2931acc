package template

import (
	"fmt"

	"mason.gg/internal/blueprint"
)

var tavernTemplate = &Template{
	Name:        "tavern",
	Description: "Two-story tavern, stone below and jettied timber above",
	aliases:     []string{"tavern", "inn", "pub"},
	defaults:    Options{Width: 13, Depth: 11, Height: 7, Wood: "spruce", Roof: "dark_oak"},
	build:       buildTavern,
	order: []string{
		"floor", "wall", "column", "beam", "window", "door", "platform",
		"table", "roof", "chimney", "sign", "lantern",
	},
	header: func(o Options) blueprint.Structure {
		return blueprint.Structure{
			Width:       o.Width + 4,
			Depth:       o.Depth + 6,
			Height:      o.Height + 6,
			Description: fmt.Sprintf("A medieval tavern with a stone ground floor and half-timbered %s upper floor", o.Wood),
		}
	},
}

// The ground floor is stone with a double door; the jettied upper floor
// overhangs it by one block on every side.
func buildTavern(origin blueprint.Vec3i, o Options) []blueprint.Element {
	w, d, h := o.Width, o.Depth, o.Height
	x, y, z := origin.X, origin.Y, origin.Z

	planks := blueprint.Planks(o.Wood)
	post := strippedPost(o.Wood)
	stairs := blueprint.Stairs(o.Roof)
	slab := blueprint.Slab(o.Roof)
	fence := blueprint.Fence(o.Wood)
	door := blueprint.Door(o.Wood)

	const floorH = 4
	doorX := x + w/2
	secondY := y + floorH
	secondH := h - floorH - 1
	roofY := secondY + secondH + 1
	peakZ := z + d/2

	var els []blueprint.Element

	// ground floor: cobble rim, plank interior
	els = append(els,
		region("floor", "cobblestone", x, y, z, w, 1, d),
		region("floor", planks, x+1, y, z+1, w-2, 1, d-2),
	)

	// stone walls, front split around the double doorway
	els = append(els,
		region("wall", "cobblestone", x, y+1, z, doorX-x, floorH-1, 1),
		region("wall", "cobblestone", doorX+2, y+1, z, x+w-doorX-2, floorH-1, 1),
		region("wall", "cobblestone", x, y+1, z+d-1, w, floorH-1, 1),
		region("wall", "cobblestone", x, y+1, z+1, 1, floorH-1, d-2),
		region("wall", "cobblestone", x+w-1, y+1, z+1, 1, floorH-1, d-2),
	)
	for _, wx := range []int{x + 2, x + w - 4} {
		els = append(els, window("glass_pane", wx, y+2, z, 2, 2))
	}
	els = append(els,
		pointFacing("door", door, blueprint.South, doorX, y+1, z),
		pointFacing("door", door, blueprint.South, doorX+1, y+1, z),
	)

	// jettied second floor with its frame posts
	els = append(els, region("floor", planks, x-1, secondY, z-1, w+2, 1, d+2))
	for _, c := range [][2]int{{x - 1, z - 1}, {x + w, z - 1}, {x - 1, z + d}, {x + w, z + d}} {
		els = append(els, region("column", post, c[0], secondY+1, c[1], 1, secondH, 1))
	}
	els = append(els,
		region("wall", "white_terracotta", x, secondY+1, z-1, w, secondH, 1),
		region("wall", "white_terracotta", x, secondY+1, z+d, w, secondH, 1),
		region("wall", "white_terracotta", x-1, secondY+1, z, 1, secondH, d),
		region("wall", "white_terracotta", x+w, secondY+1, z, 1, secondH, d),
	)
	for _, wx := range []int{x, x + w - 2} {
		els = append(els, window("glass_pane", wx, secondY+1, z-1, 2, 2))
	}
	els = append(els,
		region("beam", post, x-1, roofY, z-1, w+2, 1, 1),
		region("beam", post, x-1, roofY, z+d, w+2, 1, 1),
	)

	// steep roof over the overhang: five courses per slope, slab ridge
	for layer := 0; layer < 5; layer++ {
		els = append(els,
			regionFacing("roof", stairs, blueprint.North, x-2, roofY+layer, z-2+layer, w+4, 1, 1),
			regionFacing("roof", stairs, blueprint.South, x-2, roofY+layer, z+d+1-layer, w+4, 1, 1),
		)
	}
	els = append(els, region("roof", slab, x-2, roofY+5, peakZ-1, w+4, 1, 3))

	els = append(els, region("chimney", "cobblestone", x+w-2, y+1, z+d-2, 1, h+5, 1))

	// outdoor seating by the entrance
	els = append(els,
		region("platform", "cobblestone", x-3, y, z-3, 5, 1, 3),
		point("table", fence, x-2, y+1, z-2),
	)

	els = append(els,
		point("sign", blueprint.Sign(o.Wood), doorX, secondY, z-1),
		point("lantern", "lantern", doorX-1, y+3, z-1),
		point("lantern", "lantern", doorX+2, y+3, z-1),
	)
	return els
}
