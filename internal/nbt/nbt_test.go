package nbt

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// testWriter builds raw NBT bytes for fixtures.
type testWriter struct{ buf bytes.Buffer }

func (w *testWriter) u8(b byte)      { w.buf.WriteByte(b) }
func (w *testWriter) i32(v int32)    { binary.Write(&w.buf, binary.BigEndian, v) }
func (w *testWriter) i64(v int64)    { binary.Write(&w.buf, binary.BigEndian, v) }
func (w *testWriter) str(s string)   { binary.Write(&w.buf, binary.BigEndian, uint16(len(s))); w.buf.WriteString(s) }
func (w *testWriter) tag(t byte, name string) {
	w.u8(t)
	w.str(name)
}

func structureFixture(t *testing.T) []byte {
	t.Helper()
	var w testWriter

	w.tag(tagCompound, "")

	w.tag(tagInt, "DataVersion")
	w.i32(3953)

	w.tag(tagList, "size")
	w.u8(tagInt)
	w.i32(3)
	w.i32(3) // width
	w.i32(2) // height
	w.i32(2) // depth

	w.tag(tagList, "palette")
	w.u8(tagCompound)
	w.i32(3)
	// state 0: air
	w.tag(tagString, "Name")
	w.str("minecraft:air")
	w.u8(tagEnd)
	// state 1: stone
	w.tag(tagString, "Name")
	w.str("minecraft:stone")
	w.u8(tagEnd)
	// state 2: stairs with properties
	w.tag(tagString, "Name")
	w.str("minecraft:oak_stairs")
	w.tag(tagCompound, "Properties")
	w.tag(tagString, "facing")
	w.str("north")
	w.tag(tagString, "half")
	w.str("bottom")
	w.u8(tagEnd)
	w.u8(tagEnd)

	w.tag(tagList, "blocks")
	w.u8(tagCompound)
	w.i32(3)
	// stone at origin
	w.tag(tagList, "pos")
	w.u8(tagInt)
	w.i32(3)
	w.i32(0)
	w.i32(0)
	w.i32(0)
	w.tag(tagInt, "state")
	w.i32(1)
	w.u8(tagEnd)
	// air next to it
	w.tag(tagList, "pos")
	w.u8(tagInt)
	w.i32(3)
	w.i32(1)
	w.i32(0)
	w.i32(0)
	w.tag(tagInt, "state")
	w.i32(0)
	w.u8(tagEnd)
	// stairs in the far corner
	w.tag(tagList, "pos")
	w.u8(tagInt)
	w.i32(3)
	w.i32(2)
	w.i32(1)
	w.i32(1)
	w.tag(tagInt, "state")
	w.i32(2)
	w.u8(tagEnd)

	w.tag(tagString, "author")
	w.str("alex")

	// a tag kind the reader only skips
	w.tag(tagLongArray, "entities_digest")
	w.i32(2)
	w.i64(7)
	w.i64(-7)

	w.u8(tagEnd)

	var out bytes.Buffer
	gz := gzip.NewWriter(&out)
	if _, err := gz.Write(w.buf.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return out.Bytes()
}

func TestRead(t *testing.T) {
	s, err := Read(bytes.NewReader(structureFixture(t)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if s.Size != [3]int{3, 2, 2} {
		t.Fatalf("size = %v", s.Size)
	}
	if len(s.Palette) != 3 {
		t.Fatalf("palette len = %d", len(s.Palette))
	}
	if s.Palette[2].Name != "minecraft:oak_stairs" {
		t.Fatalf("palette[2] = %q", s.Palette[2].Name)
	}
	if got := s.Palette[2].Properties["facing"]; got != "north" {
		t.Fatalf("stairs facing = %q", got)
	}
	if len(s.Blocks) != 3 {
		t.Fatalf("blocks len = %d", len(s.Blocks))
	}
	if s.Author != "alex" {
		t.Fatalf("author = %q", s.Author)
	}
}

func TestGrid(t *testing.T) {
	s, err := Read(bytes.NewReader(structureFixture(t)))
	if err != nil {
		t.Fatal(err)
	}
	g, err := s.Grid()
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if g.W != 3 || g.H != 2 || g.D != 2 {
		t.Fatalf("grid dims = %dx%dx%d", g.W, g.H, g.D)
	}
	if got := g.At(0, 0, 0); got != "stone" {
		t.Fatalf("cell (0,0,0) = %q", got)
	}
	if got := g.At(1, 0, 0); got != "" {
		t.Fatalf("air cell kept: %q", got)
	}
	if got := g.At(2, 1, 1); got != "oak_stairs" {
		t.Fatalf("cell (2,1,1) = %q", got)
	}
}

func TestGridRejectsBadState(t *testing.T) {
	s := &Structure{
		Size:    [3]int{1, 1, 1},
		Palette: []PaletteEntry{{Name: "minecraft:stone"}},
		Blocks:  []Block{{Pos: [3]int{0, 0, 0}, State: 4}},
	}
	if _, err := s.Grid(); err == nil {
		t.Fatalf("expected palette range error")
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	if _, err := Read(strings.NewReader("not a structure")); err == nil {
		t.Fatalf("expected gzip error")
	}
}

func TestTrimNamespace(t *testing.T) {
	cases := map[string]string{
		"minecraft:oak_planks": "oak_planks",
		"oak_planks":           "oak_planks",
		"mod:weird:block":      "weird:block",
	}
	for in, want := range cases {
		if got := TrimNamespace(in); got != want {
			t.Errorf("TrimNamespace(%q) = %q, want %q", in, got, want)
		}
	}
}
