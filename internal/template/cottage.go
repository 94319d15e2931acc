package template

import (
	"fmt"

	"mason.gg/internal/blueprint"
)

var cottageTemplate = &Template{
	Name:        "cottage",
	Description: "Cozy half-timbered cottage with a peaked roof, porch and garden",
	aliases:     []string{"cottage", "cozy cottage", "cabin"},
	defaults:    Options{Width: 9, Depth: 7, Height: 5, Wood: "oak", Roof: "spruce"},
	build:       buildCottage,
	order: []string{
		"floor", "column", "beam", "wall", "window", "door", "porch",
		"roof", "chimney", "fence", "path", "flower", "lantern", "decoration",
	},
	header: func(o Options) blueprint.Structure {
		s := blueprint.Structure{
			Width:       o.Width + 2,
			Depth:       o.Depth + 2,
			Height:      o.Height + 4,
			Description: fmt.Sprintf("A cozy %s cottage with a peaked %s roof", o.Wood, o.Roof),
		}
		if !o.SkipGarden {
			s.Width = o.Width + 6
			s.Depth = o.Depth + 8
		}
		return s
	},
}

func buildCottage(origin blueprint.Vec3i, o Options) []blueprint.Element {
	w, d, h := o.Width, o.Depth, o.Height
	x, y, z := origin.X, origin.Y, origin.Z

	planks := blueprint.Planks(o.Wood)
	post := strippedPost(o.Wood)
	stairs := blueprint.Stairs(o.Roof)
	slab := blueprint.Slab(o.Roof)
	fence := blueprint.Fence(o.Wood)
	shutter := blueprint.Trapdoor(o.Roof)
	door := blueprint.Door(o.Wood)

	wallH := h - 2 // beam course takes the top
	doorX := x + w/2
	windowZ := z + d/2

	var els []blueprint.Element

	// foundation slab one block proud of the walls, wood floor inside
	els = append(els,
		region("floor", "cobblestone", x-1, y, z-1, w+2, 1, d+2),
		region("floor", planks, x, y, z, w, 1, d),
	)

	// corner posts and the beam course they carry
	for _, c := range [][2]int{{x, z}, {x + w - 1, z}, {x, z + d - 1}, {x + w - 1, z + d - 1}} {
		els = append(els, region("column", post, c[0], y+1, c[1], 1, h-1, 1))
	}
	els = append(els,
		region("beam", post, x, y+h-1, z, w, 1, 1),
		region("beam", post, x, y+h-1, z+d-1, w, 1, 1),
		region("beam", post, x, y+h-1, z+1, 1, 1, d-2),
		region("beam", post, x+w-1, y+h-1, z+1, 1, 1, d-2),
	)

	// front wall, split around the doorway
	if n := doorX - x - 1; n > 0 {
		els = append(els, region("wall", "white_concrete", x+1, y+1, z, n, wallH, 1))
	}
	if n := x + w - doorX - 2; n > 0 {
		els = append(els, region("wall", "white_concrete", doorX+1, y+1, z, n, wallH, 1))
	}
	if wallH > 2 {
		els = append(els, region("wall", "white_concrete", doorX, y+3, z, 1, wallH-2, 1))
	}

	// back wall, solid between the posts
	els = append(els, region("wall", "white_concrete", x+1, y+1, z+d-1, w-2, wallH, 1))

	// side walls with a three-wide window bay: pane in the middle,
	// shutters in the flanking cells
	for _, sx := range []int{x, x + w - 1} {
		if n := windowZ - z - 2; n > 0 {
			els = append(els, region("wall", "white_concrete", sx, y+1, z+1, 1, wallH, n))
		}
		if n := z + d - windowZ - 2; n > 0 {
			els = append(els, region("wall", "white_concrete", sx, y+1, windowZ+1, 1, wallH, n))
		}
		els = append(els, region("wall", "white_concrete", sx, y+1, windowZ-1, 1, 1, 3))
		if wallH > 2 {
			els = append(els, region("wall", "white_concrete", sx, y+3, windowZ-1, 1, wallH-2, 3))
		}
		els = append(els,
			point("window", "glass_pane", sx, y+2, windowZ),
			point("decoration", shutter, sx, y+2, windowZ-1),
			point("decoration", shutter, sx, y+2, windowZ+1),
		)
	}

	els = append(els,
		pointFacing("door", door, blueprint.South, doorX, y+1, z),
		region("porch", planks, doorX-1, y, z-2, 3, 1, 2),
	)

	// peaked roof: three stair courses per slope, slab ridge
	roofY := y + h
	for layer := 0; layer < 3; layer++ {
		els = append(els,
			regionFacing("roof", stairs, blueprint.North, x-1, roofY+layer, z-1+layer, w+2, 1, 1),
			regionFacing("roof", stairs, blueprint.South, x-1, roofY+layer, z+d-layer, w+2, 1, 1),
		)
	}
	els = append(els, region("roof", slab, x-1, roofY+3, windowZ-1, w+2, 1, 3))

	if !o.SkipChimney {
		els = append(els, region("chimney", "cobblestone", x+w-2, roofY, z+d-2, 1, 4, 1))
	}

	if !o.SkipGarden {
		els = append(els, region("path", "gravel", doorX, y, z-5, 1, 1, 3))
		flowers := []string{"poppy", "dandelion", "azure_bluet", "cornflower", "oxeye_daisy"}
		for i := 0; i < 3; i++ {
			els = append(els,
				point("flower", flowers[i], doorX-2, y+1, z-5+i),
				point("flower", flowers[(i+2)%len(flowers)], doorX+2, y+1, z-5+i),
			)
		}
		els = append(els,
			region("fence", fence, doorX-3, y+1, z-6, 7, 1, 1),
			region("fence", fence, doorX-3, y+1, z-5, 1, 1, 4),
			region("fence", fence, doorX+3, y+1, z-5, 1, 1, 4),
		)
	}

	els = append(els,
		point("lantern", "lantern", doorX+1, y+2, z-1),
		point("decoration", "barrel", x+w, y+1, z+1),
	)
	return els
}
