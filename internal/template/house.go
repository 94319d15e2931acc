package template

import (
	"fmt"

	"mason.gg/internal/blueprint"
)

var medievalHouseTemplate = &Template{
	Name:        "medieval_house",
	Description: "Half-timbered house on a raised stone plinth",
	aliases:     []string{"medieval house", "half-timbered house", "house"},
	defaults:    Options{Width: 11, Depth: 9, Height: 6, Wood: "dark_oak", Roof: "spruce"},
	build:       buildMedievalHouse,
	order: []string{
		"floor", "column", "beam", "wall", "window", "door", "platform",
		"roof", "chimney", "lantern", "decoration",
	},
	header: func(o Options) blueprint.Structure {
		return blueprint.Structure{
			Width:       o.Width + 2,
			Depth:       o.Depth + 4,
			Height:      o.Height + 5,
			Description: fmt.Sprintf("A medieval half-timbered house with a %s frame and %s roof", o.Wood, o.Roof),
		}
	},
}

func buildMedievalHouse(origin blueprint.Vec3i, o Options) []blueprint.Element {
	w, d, h := o.Width, o.Depth, o.Height
	x, y, z := origin.X, origin.Y, origin.Z

	planks := blueprint.Planks(o.Wood)
	post := strippedPost(o.Wood)
	stairs := blueprint.Stairs(o.Roof)
	slab := blueprint.Slab(o.Roof)
	fence := blueprint.Fence(o.Wood)
	door := blueprint.Door(o.Wood)

	wallH := h - 2
	doorX := x + w/2
	window1X := x + 2
	window2X := x + w - 3
	sideWindowZ := z + d/2

	var els []blueprint.Element

	// stone plinth raises the floor one block above grade
	els = append(els,
		region("floor", "stone_bricks", x-1, y, z-1, w+2, 1, d+2),
		region("floor", "stone_bricks", x, y+1, z, w, 1, d),
		region("floor", planks, x+1, y+1, z+1, w-2, 1, d-2),
	)

	// timber frame: corner posts, mid-wall posts, beam course
	for _, c := range [][2]int{{x, z}, {x + w - 1, z}, {x, z + d - 1}, {x + w - 1, z + d - 1}, {doorX, z}, {doorX, z + d - 1}} {
		els = append(els, region("column", post, c[0], y+2, c[1], 1, h-1, 1))
	}
	els = append(els,
		region("beam", post, x, y+h, z, w, 1, 1),
		region("beam", post, x, y+h, z+d-1, w, 1, 1),
		region("beam", post, x, y+h, z+1, 1, 1, d-2),
		region("beam", post, x+w-1, y+h, z+1, 1, 1, d-2),
	)

	// front wall: plaster between the posts and the two window openings
	els = append(els, region("wall", "white_terracotta", x+1, y+2, z, 1, wallH, 1))
	if n := doorX - window1X - 2; n > 0 {
		els = append(els, region("wall", "white_terracotta", window1X+2, y+2, z, n, wallH, 1))
	}
	if n := window2X - doorX - 1; n > 0 {
		els = append(els, region("wall", "white_terracotta", doorX+1, y+2, z, n, wallH, 1))
	}
	els = append(els,
		region("wall", "white_terracotta", doorX, y+4, z, 1, wallH-2, 1),
		region("wall", "white_terracotta", window1X, y+4, z, 2, wallH-2, 1),
		region("wall", "white_terracotta", window2X, y+4, z, 2, wallH-2, 1),
		region("wall", "white_terracotta", window1X, y+2, z, 2, 1, 1),
		region("wall", "white_terracotta", window2X, y+2, z, 2, 1, 1),
	)

	// back wall, solid
	els = append(els, region("wall", "white_terracotta", x+1, y+2, z+d-1, w-2, wallH, 1))

	// side walls with a single-pane opening
	for _, sx := range []int{x, x + w - 1} {
		if n := sideWindowZ - z - 1; n > 0 {
			els = append(els, region("wall", "white_terracotta", sx, y+2, z+1, 1, wallH, n))
		}
		if n := z + d - sideWindowZ - 2; n > 0 {
			els = append(els, region("wall", "white_terracotta", sx, y+2, sideWindowZ+1, 1, wallH, n))
		}
		els = append(els,
			region("wall", "white_terracotta", sx, y+2, sideWindowZ, 1, 1, 1),
			region("wall", "white_terracotta", sx, y+4, sideWindowZ, 1, wallH-2, 1),
			point("window", "glass_pane", sx, y+3, sideWindowZ),
		)
	}

	els = append(els,
		window("glass_pane", window1X, y+3, z, 2, 1),
		window("glass_pane", window2X, y+3, z, 2, 1),
		pointFacing("door", door, blueprint.South, doorX, y+2, z),
	)

	// porch: stone landing, fence pillars, stair awning
	els = append(els,
		region("platform", "stone_bricks", doorX-1, y+1, z-2, 3, 1, 2),
		region("column", fence, doorX-1, y+2, z-2, 1, 2, 1),
		region("column", fence, doorX+1, y+2, z-2, 1, 2, 1),
		regionFacing("roof", stairs, blueprint.North, doorX-2, y+4, z-2, 5, 1, 1),
	)

	// peaked roof: four stair courses per slope, slab ridge
	roofY := y + h + 1
	for layer := 0; layer < 4; layer++ {
		els = append(els,
			regionFacing("roof", stairs, blueprint.North, x-1, roofY+layer, z-1+layer, w+2, 1, 1),
			regionFacing("roof", stairs, blueprint.South, x-1, roofY+layer, z+d-layer, w+2, 1, 1),
		)
	}
	els = append(els, region("roof", slab, x-1, roofY+4, sideWindowZ-1, w+2, 1, 3))

	els = append(els, region("chimney", "stone_bricks", x+w-2, y+2, z+d-2, 1, h+4, 1))

	els = append(els,
		point("lantern", "lantern", doorX, y+3, z-2),
		point("decoration", "barrel", x-1, y+1, z+1),
		point("decoration", "flower_pot", doorX-2, y+1, z-1),
	)
	return els
}
