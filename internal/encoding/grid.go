package encoding

import (
	"fmt"

	"mason.gg/internal/blueprint"
)

// Grid is a dense block-name voxel volume. Cells index into Palette;
// palette id 0 is conventionally the empty cell (""), which the voxel
// compile path skips. Cell order is x fastest, then z, then y.
type Grid struct {
	W, H, D int
	Palette []string
	Cells   []uint16
}

// DecodeGrid expands an RLE string into a grid and checks it fills the
// declared volume exactly.
func DecodeGrid(w, h, d int, palette []string, rle string) (*Grid, error) {
	cells, err := DecodeRLE(rle)
	if err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	if want := w * h * d; len(cells) != want {
		return nil, fmt.Errorf("decode grid: %d cells, want %d", len(cells), want)
	}
	for _, id := range cells {
		if int(id) >= len(palette) {
			return nil, fmt.Errorf("decode grid: palette id %d out of range", id)
		}
	}
	return &Grid{W: w, H: h, D: d, Palette: palette, Cells: cells}, nil
}

// Encode packs the grid cells back into an RLE string.
func (g *Grid) Encode() string { return EncodeRLE(g.Cells) }

func (g *Grid) index(x, y, z int) int { return (y*g.D+z)*g.W + x }

// At returns the block name at the cell, or "" outside the volume.
func (g *Grid) At(x, y, z int) string {
	if x < 0 || x >= g.W || y < 0 || y >= g.H || z < 0 || z >= g.D {
		return ""
	}
	return g.Palette[g.Cells[g.index(x, y, z)]]
}

// Set writes a block name into the cell, growing the palette on first
// use of a name. Out-of-range cells are ignored.
func (g *Grid) Set(x, y, z int, block string) {
	if x < 0 || x >= g.W || y < 0 || y >= g.H || z < 0 || z >= g.D {
		return
	}
	g.Cells[g.index(x, y, z)] = g.paletteID(block)
}

func (g *Grid) paletteID(block string) uint16 {
	for i, name := range g.Palette {
		if name == block {
			return uint16(i)
		}
	}
	g.Palette = append(g.Palette, block)
	return uint16(len(g.Palette) - 1)
}

// NewGrid allocates an empty grid with palette id 0 reserved for the
// empty cell.
func NewGrid(w, h, d int) *Grid {
	return &Grid{
		W: w, H: h, D: d,
		Palette: []string{""},
		Cells:   make([]uint16, w*h*d),
	}
}

// Elements flattens the grid into voxel blueprint elements at origin,
// one per non-empty cell, in cell order.
func (g *Grid) Elements(origin blueprint.Vec3i) []blueprint.Element {
	out := make([]blueprint.Element, 0, len(g.Cells))
	for y := 0; y < g.H; y++ {
		for z := 0; z < g.D; z++ {
			for x := 0; x < g.W; x++ {
				name := g.Palette[g.Cells[g.index(x, y, z)]]
				if name == "" {
					continue
				}
				out = append(out, blueprint.Element{
					Type:     "block",
					Material: name,
					Pos: &blueprint.Vec3i{
						X: origin.X + x,
						Y: origin.Y + y,
						Z: origin.Z + z,
					},
				})
			}
		}
	}
	return out
}
