package template

import (
	"fmt"
	"strings"
	"sync"

	"mason.gg/internal/blueprint"
	"mason.gg/internal/encoding"
)

// VoxelBlueprint is a fixed, hand-authored structure stored as one
// character-keyed grid per Y layer, bottom to top. Rows run north to
// south, columns west to east. The '.' code is the untouched cell;
// everything else, air included, is placed.
type VoxelBlueprint struct {
	Name        string
	Description string

	aliases  []string
	keywords []string
	palette  map[byte]string
	layers   [][]string

	once sync.Once
	grid *encoding.Grid
}

// Grid decodes the layer rows into a dense voxel grid. Malformed
// fixture data panics; the fixtures are package constants.
func (v *VoxelBlueprint) Grid() *encoding.Grid {
	v.once.Do(func() {
		d := len(v.layers[0])
		w := len(v.layers[0][0])
		g := encoding.NewGrid(w, len(v.layers), d)
		for y, layer := range v.layers {
			if len(layer) != d {
				panic(fmt.Sprintf("template: voxel %s layer %d: %d rows, want %d", v.Name, y, len(layer), d))
			}
			for z, row := range layer {
				if len(row) != w {
					panic(fmt.Sprintf("template: voxel %s layer %d row %d: %d cells, want %d", v.Name, y, z, len(row), w))
				}
				for x := 0; x < w; x++ {
					name, ok := v.palette[row[x]]
					if !ok {
						panic(fmt.Sprintf("template: voxel %s layer %d row %d: unknown code %q", v.Name, y, z, row[x]))
					}
					if name != "" {
						g.Set(x, y, z, name)
					}
				}
			}
		}
		v.grid = g
	})
	return v.grid
}

// Blueprint stamps the grid at origin as an element-per-block voxel
// blueprint.
func (v *VoxelBlueprint) Blueprint(origin blueprint.Vec3i) *blueprint.Blueprint {
	g := v.Grid()
	return &blueprint.Blueprint{
		Structure: blueprint.Structure{
			Width:       g.W,
			Depth:       g.D,
			Height:      g.H,
			GroundLevel: blueprint.GroundAt(origin.Y),
			Description: v.Description,
		},
		Elements:   g.Elements(origin),
		BuildOrder: []string{"block"},
		IsVoxel:    true,
	}
}

var voxels = []*VoxelBlueprint{cozyCottageVoxel, medievalTavernVoxel}

// Voxels returns the fixed voxel blueprints.
func Voxels() []*VoxelBlueprint {
	return append([]*VoxelBlueprint(nil), voxels...)
}

// GetVoxel returns the voxel blueprint with the given name, or nil.
func GetVoxel(name string) *VoxelBlueprint {
	for _, v := range voxels {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// MatchVoxel picks the voxel blueprint a free-text description asks
// for, alias substrings first and keywords second. Returns nil when
// nothing matches.
func MatchVoxel(desc string) *VoxelBlueprint {
	desc = strings.ToLower(desc)
	for _, v := range voxels {
		for _, alias := range v.aliases {
			if strings.Contains(desc, alias) {
				return v
			}
		}
	}
	for _, v := range voxels {
		for _, word := range v.keywords {
			if strings.Contains(desc, word) {
				return v
			}
		}
	}
	return nil
}

// cozyCottageVoxel is a 9x9 cottage: timber-cornered concrete walls,
// a window on each face and a peaked stair roof.
var cozyCottageVoxel = &VoxelBlueprint{
	Name:        "cozy_cottage",
	Description: "A cozy cottage with peaked roof, door, and windows",
	aliases:     []string{"cottage", "cozy cottage", "oak cottage", "cabin"},
	keywords:    []string{"cottage", "cozy", "cabin", "hut"},
	palette: map[byte]string{
		'.': "",
		'a': "air",
		'c': "cobblestone",
		'p': "oak_planks",
		'l': "stripped_oak_log",
		'w': "white_concrete",
		'd': "oak_door",
		'g': "glass_pane",
		's': "spruce_stairs",
		'k': "spruce_planks",
		'b': "spruce_slab",
	},
	layers: [][]string{
		{ // foundation
			".ccccccc.",
			"ccccccccc",
			"ccpppppcc",
			"ccpppppcc",
			"ccpppppcc",
			"ccpppppcc",
			"ccpppppcc",
			"ccccccccc",
			".ccccccc.",
		},
		{ // walls, door at the north face
			".........",
			".lwwdwwl.",
			".waaaaaw.",
			".waaaaaw.",
			".gaaaaag.",
			".waaaaaw.",
			".waaaaaw.",
			".lwwwwwl.",
			".........",
		},
		{ // walls, door upper half
			".........",
			".lwwdwwl.",
			".waaaaaw.",
			".waaaaaw.",
			".gaaaaag.",
			".waaaaaw.",
			".waaaaaw.",
			".lwwwwwl.",
			".........",
		},
		{ // walls with window band
			".........",
			".lwgwgwl.",
			".waaaaaw.",
			".gaaaaag.",
			".waaaaaw.",
			".gaaaaag.",
			".waaaaaw.",
			".lwgwgwl.",
			".........",
		},
		{ // wall plate and attic floor
			".........",
			".lllllll.",
			".lpppppl.",
			".lpppppl.",
			".lpppppl.",
			".lpppppl.",
			".lpppppl.",
			".lllllll.",
			".........",
		},
		{ // roof eaves
			"sssssssss",
			"skkkkkkks",
			".saaaaas.",
			".saaaaas.",
			".saaaaas.",
			".saaaaas.",
			".saaaaas.",
			"skkkkkkks",
			"sssssssss",
		},
		{ // roof mid course
			".........",
			".sssssss.",
			".skkkkks.",
			"..saaas..",
			"..saaas..",
			"..saaas..",
			".skkkkks.",
			".sssssss.",
			".........",
		},
		{ // ridge
			".........",
			".........",
			"..sssss..",
			"..sbbbs..",
			"...bbb...",
			"..sbbbs..",
			"..sssss..",
			".........",
			".........",
		},
	},
}

// medievalTavernVoxel is an 11x11 two-story tavern: stone ground floor,
// jettied half-timbered upper floor, steep peaked roof.
var medievalTavernVoxel = &VoxelBlueprint{
	Name:        "medieval_tavern",
	Description: "A two-story medieval tavern with stone base and half-timbered upper floor",
	aliases:     []string{"tavern", "medieval tavern", "inn", "pub"},
	keywords:    []string{"tavern", "inn", "pub", "bar"},
	palette: map[byte]string{
		'.': "",
		'a': "air",
		'c': "cobblestone",
		'b': "stone_bricks",
		'p': "oak_planks",
		'd': "oak_door",
		'g': "glass_pane",
		'w': "white_terracotta",
		'l': "stripped_dark_oak_log",
		'k': "dark_oak_planks",
		's': "dark_oak_stairs",
		'h': "dark_oak_slab",
	},
	layers: [][]string{
		{ // foundation
			"ccccccccccc",
			"cbbbbbbbbbc",
			"cbpppppppbc",
			"cbpppppppbc",
			"cbpppppppbc",
			"cbpppppppbc",
			"cbpppppppbc",
			"cbpppppppbc",
			"cbpppppppbc",
			"cbbbbbbbbbc",
			"ccccccccccc",
		},
		{ // ground floor, double door north
			"...........",
			".bbbddbbbb.",
			".baaaaaaab.",
			".baaaaaaab.",
			".gaaaaaaag.",
			".baaaaaaab.",
			".gaaaaaaag.",
			".baaaaaaab.",
			".baaaaaaab.",
			".bbbbbbbbb.",
			"...........",
		},
		{ // ground floor upper, window band
			"...........",
			".bgbddbgbb.",
			".baaaaaaab.",
			".gaaaaaaag.",
			".baaaaaaab.",
			".gaaaaaaag.",
			".baaaaaaab.",
			".gaaaaaaag.",
			".baaaaaaab.",
			".bgbgbgbgb.",
			"...........",
		},
		{ // ground floor ceiling
			"...........",
			".bbbbbbbbb.",
			".bpppppppb.",
			".bpppppppb.",
			".bpppppppb.",
			".bpppppppb.",
			".bpppppppb.",
			".bpppppppb.",
			".bpppppppb.",
			".bbbbbbbbb.",
			"...........",
		},
		{ // jettied second floor
			"...........",
			"lwwwwwwwwwl",
			"waaaaaaaaaw",
			"waaaaaaaaaw",
			"waaaaaaaaaw",
			"waaaaaaaaaw",
			"waaaaaaaaaw",
			"waaaaaaaaaw",
			"waaaaaaaaaw",
			"lwwwwwwwwwl",
			"...........",
		},
		{ // second floor window band
			"...........",
			"lwgwgwgwgwl",
			"waaaaaaaaaw",
			"gaaaaaaaaag",
			"waaaaaaaaaw",
			"gaaaaaaaaag",
			"waaaaaaaaaw",
			"gaaaaaaaaag",
			"waaaaaaaaaw",
			"lwgwgwgwgwl",
			"...........",
		},
		{ // wall plate and attic floor
			"...........",
			"lllllllllll",
			"lpppppppppl",
			"lpppppppppl",
			"lpppppppppl",
			"lpppppppppl",
			"lpppppppppl",
			"lpppppppppl",
			"lpppppppppl",
			"lllllllllll",
			"...........",
		},
		{ // roof eaves
			"sssssssssss",
			"skkkkkkkkks",
			".saaaaaaas.",
			".saaaaaaas.",
			".saaaaaaas.",
			".saaaaaaas.",
			".saaaaaaas.",
			".saaaaaaas.",
			".saaaaaaas.",
			"skkkkkkkkks",
			"sssssssssss",
		},
		{ // roof mid course
			"...........",
			".sssssssss.",
			".skkkkkkks.",
			"..saaaaas..",
			"..saaaaas..",
			"..saaaaas..",
			"..saaaaas..",
			"..saaaaas..",
			".skkkkkkks.",
			".sssssssss.",
			"...........",
		},
		{ // ridge
			"...........",
			"...........",
			"..sssssss..",
			"..shhhhhs..",
			"...hhhhh...",
			"...hhhhh...",
			"...hhhhh...",
			"..shhhhhs..",
			"..sssssss..",
			"...........",
			"...........",
		},
	},
}
