// Package ops defines the compiled output unit: a region fill or a point
// placement, its wire-format rendering, and the post-hoc validator.
package ops

import (
	"fmt"
	"strings"

	"mason.gg/internal/blueprint"
)

type Kind uint8

const (
	KindFill Kind = iota
	KindSet
)

// State is one bracketed block-state attribute. Order is preserved as
// declared; rendering never reorders.
type State struct {
	Key   string
	Value string
}

func Facing(dir string) State  { return State{"facing", dir} }
func Half(v string) State      { return State{"half", v} }
func BlockType(v string) State { return State{"type", v} }
func Part(v string) State      { return State{"part", v} }

// Op is one world-editing operation. To, Modifier apply to fills only;
// States applies to points only. Bare points render without the leading
// slash (voxel-grid mode). Tag records the source element type for grouping
// and progress reporting and is never rendered.
type Op struct {
	Kind     Kind
	From     blueprint.Vec3i
	To       blueprint.Vec3i
	Block    string
	States   []State
	Modifier string
	Bare     bool
	Tag      string
}

// Fill spans the region between two opposite corners.
func Fill(from, to blueprint.Vec3i, block string) Op {
	return Op{Kind: KindFill, From: from, To: to, Block: block}
}

// FillMod is Fill with a trailing modifier token ("hollow", "outline",
// "replace <filter>").
func FillMod(from, to blueprint.Vec3i, block, modifier string) Op {
	return Op{Kind: KindFill, From: from, To: to, Block: block, Modifier: modifier}
}

// Set places a single block, optionally with state attributes.
func Set(at blueprint.Vec3i, block string, states ...State) Op {
	return Op{Kind: KindSet, From: at, Block: block, States: states}
}

// Region converts a (position, dimensions) pair into the two opposite
// corners of its fill: the far corner is position + dimensions - (1,1,1).
func Region(pos blueprint.Vec3i, dims blueprint.Dims) (from, to blueprint.Vec3i) {
	return pos, blueprint.Vec3i{
		X: pos.X + dims.W - 1,
		Y: pos.Y + dims.H - 1,
		Z: pos.Z + dims.D - 1,
	}
}

// Render produces the wire-format command text.
func (o Op) Render() string {
	switch o.Kind {
	case KindFill:
		s := fmt.Sprintf("/fill %d %d %d %d %d %d %s",
			o.From.X, o.From.Y, o.From.Z, o.To.X, o.To.Y, o.To.Z, o.Block)
		if o.Modifier != "" {
			s += " " + o.Modifier
		}
		return s
	default:
		var b strings.Builder
		if !o.Bare {
			b.WriteByte('/')
		}
		fmt.Fprintf(&b, "setblock %d %d %d %s", o.From.X, o.From.Y, o.From.Z, o.Block)
		if len(o.States) > 0 {
			b.WriteByte('[')
			for i, st := range o.States {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(st.Key)
				b.WriteByte('=')
				b.WriteString(st.Value)
			}
			b.WriteByte(']')
		}
		return b.String()
	}
}

// Volume is the number of blocks the operation writes.
func (o Op) Volume() int {
	if o.Kind != KindFill {
		return 1
	}
	dx := o.To.X - o.From.X
	if dx < 0 {
		dx = -dx
	}
	dy := o.To.Y - o.From.Y
	if dy < 0 {
		dy = -dy
	}
	dz := o.To.Z - o.From.Z
	if dz < 0 {
		dz = -dz
	}
	return (dx + 1) * (dy + 1) * (dz + 1)
}

// RenderAll renders every operation in order.
func RenderAll(list []Op) []string {
	out := make([]string, len(list))
	for i, o := range list {
		out[i] = o.Render()
	}
	return out
}

// TotalVolume sums Volume over the list.
func TotalVolume(list []Op) int {
	n := 0
	for _, o := range list {
		n += o.Volume()
	}
	return n
}
