// Package nbt reads gzip-compressed saved-structure files. Only the
// shape the structure format uses is understood: a root compound with
// size, palette and block records. Everything else in the tree is
// decoded and dropped.
package nbt

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"mason.gg/internal/encoding"
)

// Structure is one parsed saved-structure file.
type Structure struct {
	Size    [3]int // width, height, depth
	Palette []PaletteEntry
	Blocks  []Block
	Author  string
}

// PaletteEntry is one block state: name plus its property map.
type PaletteEntry struct {
	Name       string
	Properties map[string]string
}

// Block places one palette state at a position.
type Block struct {
	Pos   [3]int
	State int
}

const (
	tagEnd byte = iota
	tagByte
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagByteArray
	tagString
	tagList
	tagCompound
	tagIntArray
	tagLongArray
)

const (
	maxDepth = 16
	maxList  = 1 << 21
	maxCells = 1 << 22
)

// ReadFile parses a structure file from disk.
func ReadFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read parses a gzip-compressed structure stream.
func Read(r io.Reader) (*Structure, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("nbt: %w", err)
	}
	defer gz.Close()

	d := &decoder{r: bufio.NewReader(gz)}
	typ, err := d.byte()
	if err != nil {
		return nil, fmt.Errorf("nbt: %w", err)
	}
	if typ != tagCompound {
		return nil, fmt.Errorf("nbt: root tag is %d, want compound", typ)
	}
	if _, err := d.string(); err != nil {
		return nil, fmt.Errorf("nbt: root name: %w", err)
	}
	v, err := d.payload(typ, 0)
	if err != nil {
		return nil, fmt.Errorf("nbt: %w", err)
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("nbt: root payload is not a compound")
	}
	return structureFrom(root)
}

type decoder struct {
	r *bufio.Reader
}

func (d *decoder) byte() (byte, error) {
	return d.r.ReadByte()
}

func (d *decoder) read(buf []byte) error {
	_, err := io.ReadFull(d.r, buf)
	return err
}

func (d *decoder) int16() (int16, error) {
	var b [2]byte
	if err := d.read(b[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b[:])), nil
}

func (d *decoder) int32() (int32, error) {
	var b [4]byte
	if err := d.read(b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

func (d *decoder) int64() (int64, error) {
	var b [8]byte
	if err := d.read(b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func (d *decoder) string() (string, error) {
	n, err := d.int16()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", errors.New("negative string length")
	}
	buf := make([]byte, n)
	if err := d.read(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *decoder) payload(typ byte, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errors.New("nesting too deep")
	}
	switch typ {
	case tagByte:
		b, err := d.byte()
		return int64(int8(b)), err
	case tagShort:
		v, err := d.int16()
		return int64(v), err
	case tagInt:
		v, err := d.int32()
		return int64(v), err
	case tagLong:
		return d.int64()
	case tagFloat:
		v, err := d.int32()
		return float64(math.Float32frombits(uint32(v))), err
	case tagDouble:
		v, err := d.int64()
		return math.Float64frombits(uint64(v)), err
	case tagByteArray:
		n, err := d.int32()
		if err != nil {
			return nil, err
		}
		if n < 0 || n > maxList {
			return nil, fmt.Errorf("byte array length %d", n)
		}
		buf := make([]byte, n)
		if err := d.read(buf); err != nil {
			return nil, err
		}
		return buf, nil
	case tagString:
		return d.string()
	case tagList:
		et, err := d.byte()
		if err != nil {
			return nil, err
		}
		n, err := d.int32()
		if err != nil {
			return nil, err
		}
		if n < 0 || n > maxList {
			return nil, fmt.Errorf("list length %d", n)
		}
		out := make([]any, 0, minInt(int(n), 4096))
		for i := int32(0); i < n; i++ {
			v, err := d.payload(et, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case tagCompound:
		m := make(map[string]any)
		for {
			t, err := d.byte()
			if err != nil {
				return nil, err
			}
			if t == tagEnd {
				return m, nil
			}
			name, err := d.string()
			if err != nil {
				return nil, err
			}
			v, err := d.payload(t, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			m[name] = v
		}
	case tagIntArray:
		n, err := d.int32()
		if err != nil {
			return nil, err
		}
		if n < 0 || n > maxList {
			return nil, fmt.Errorf("int array length %d", n)
		}
		out := make([]int64, n)
		for i := range out {
			v, err := d.int32()
			if err != nil {
				return nil, err
			}
			out[i] = int64(v)
		}
		return out, nil
	case tagLongArray:
		n, err := d.int32()
		if err != nil {
			return nil, err
		}
		if n < 0 || n > maxList {
			return nil, fmt.Errorf("long array length %d", n)
		}
		out := make([]int64, n)
		for i := range out {
			v, err := d.int64()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown tag %d", typ)
}

func structureFrom(root map[string]any) (*Structure, error) {
	s := &Structure{}

	size, ok := intTriple(root["size"])
	if !ok {
		return nil, errors.New("nbt: missing or malformed size")
	}
	s.Size = size

	pal, _ := root["palette"].([]any)
	for i, e := range pal {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("nbt: palette entry %d is not a compound", i)
		}
		name, _ := m["Name"].(string)
		entry := PaletteEntry{Name: name}
		if props, ok := m["Properties"].(map[string]any); ok {
			entry.Properties = make(map[string]string, len(props))
			for k, v := range props {
				if sv, ok := v.(string); ok {
					entry.Properties[k] = sv
				}
			}
		}
		s.Palette = append(s.Palette, entry)
	}

	blocks, _ := root["blocks"].([]any)
	for i, e := range blocks {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("nbt: block entry %d is not a compound", i)
		}
		pos, ok := intTriple(m["pos"])
		if !ok {
			continue
		}
		state, _ := m["state"].(int64)
		s.Blocks = append(s.Blocks, Block{Pos: pos, State: int(state)})
	}

	if a, ok := root["author"].(string); ok {
		s.Author = a
	}
	return s, nil
}

func intTriple(v any) ([3]int, bool) {
	list, ok := v.([]any)
	if !ok || len(list) < 3 {
		return [3]int{}, false
	}
	var out [3]int
	for i := 0; i < 3; i++ {
		n, ok := list[i].(int64)
		if !ok {
			return [3]int{}, false
		}
		out[i] = int(n)
	}
	return out, true
}

// Grid rasterizes the structure into a voxel grid: namespace prefixes
// stripped, air and structure voids left as empty cells.
func (s *Structure) Grid() (*encoding.Grid, error) {
	w, h, d := s.Size[0], s.Size[1], s.Size[2]
	if w <= 0 || h <= 0 || d <= 0 {
		return nil, fmt.Errorf("nbt: bad structure size %v", s.Size)
	}
	if w*h*d > maxCells {
		return nil, fmt.Errorf("nbt: structure volume %d over limit", w*h*d)
	}
	g := encoding.NewGrid(w, h, d)
	for _, b := range s.Blocks {
		if b.State < 0 || b.State >= len(s.Palette) {
			return nil, fmt.Errorf("nbt: block state %d outside palette", b.State)
		}
		name := TrimNamespace(s.Palette[b.State].Name)
		switch name {
		case "", "air", "cave_air", "structure_void":
			continue
		}
		x, y, z := b.Pos[0], b.Pos[1], b.Pos[2]
		if x < 0 || x >= w || y < 0 || y >= h || z < 0 || z >= d {
			return nil, fmt.Errorf("nbt: block at %v outside %v", b.Pos, s.Size)
		}
		g.Set(x, y, z, name)
	}
	return g, nil
}

// TrimNamespace drops a "minecraft:" style prefix from a block id.
func TrimNamespace(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
