package encoding

import (
	"testing"

	"mason.gg/internal/blueprint"
)

func TestRLE_RoundTrip(t *testing.T) {
	in := make([]uint16, 0, 200)
	in = append(in, 1, 1, 1, 2, 2, 3)
	for i := 0; i < 50; i++ {
		in = append(in, 7)
	}
	in = append(in, 9, 10, 10, 10)

	enc := EncodeRLE(in)
	out, err := DecodeRLE(enc)
	if err != nil {
		t.Fatalf("DecodeRLE: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, out[i], in[i])
		}
	}
}

func TestDecodeGrid_VolumeMismatch(t *testing.T) {
	rle := EncodeRLE(make([]uint16, 7))
	if _, err := DecodeGrid(2, 2, 2, []string{""}, rle); err == nil {
		t.Fatal("DecodeGrid accepted a short cell run")
	}
}

func TestDecodeGrid_PaletteRange(t *testing.T) {
	rle := EncodeRLE([]uint16{0, 3, 0, 0})
	if _, err := DecodeGrid(2, 1, 2, []string{"", "stone"}, rle); err == nil {
		t.Fatal("DecodeGrid accepted an out-of-range palette id")
	}
}

func TestGrid_SetAtRoundTrip(t *testing.T) {
	g := NewGrid(3, 2, 3)
	g.Set(1, 0, 1, "stone")
	g.Set(1, 1, 1, "torch")
	g.Set(9, 9, 9, "ignored")

	if got := g.At(1, 0, 1); got != "stone" {
		t.Fatalf("At(1,0,1) = %q, want stone", got)
	}
	if got := g.At(0, 0, 0); got != "" {
		t.Fatalf("At(0,0,0) = %q, want empty", got)
	}
	if got := g.At(9, 9, 9); got != "" {
		t.Fatalf("At out of range = %q, want empty", got)
	}

	dec, err := DecodeGrid(3, 2, 3, g.Palette, g.Encode())
	if err != nil {
		t.Fatalf("DecodeGrid: %v", err)
	}
	if got := dec.At(1, 1, 1); got != "torch" {
		t.Fatalf("decoded At(1,1,1) = %q, want torch", got)
	}
}

func TestGrid_ElementsSkipEmpty(t *testing.T) {
	g := NewGrid(2, 1, 1)
	g.Set(1, 0, 0, "stone")

	elems := g.Elements(blueprint.Vec3i{X: 10, Y: -60, Z: 5})
	if len(elems) != 1 {
		t.Fatalf("got %d elements, want 1", len(elems))
	}
	e := elems[0]
	if e.Material != "stone" || e.Pos == nil || e.Pos.X != 11 || e.Pos.Y != -60 || e.Pos.Z != 5 {
		t.Fatalf("element = %+v", e)
	}
}
