// Package blueprint defines the declarative building description consumed by
// the compiler: a structure header, a bag of typed spatial elements, and the
// build order that sequences their emission.
package blueprint

import (
	"encoding/json"
	"fmt"
)

// Cardinal directions used by orientation-sensitive elements.
const (
	North = "north"
	South = "south"
	East  = "east"
	West  = "west"
)

// Opposite returns the reverse cardinal direction, or dir unchanged when it
// is not a cardinal.
func Opposite(dir string) string {
	switch dir {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return dir
	}
}

// Vec3i is an absolute block coordinate. It marshals as [x, y, z].
type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func (v Vec3i) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToArray())
}

func (v *Vec3i) UnmarshalJSON(b []byte) error {
	var a [3]int
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	v.X, v.Y, v.Z = a[0], a[1], a[2]
	return nil
}

// Dims is an element extent (width, height, depth). It marshals as [w, h, d].
type Dims struct {
	W int
	H int
	D int
}

func (d Dims) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{d.W, d.H, d.D})
}

func (d *Dims) UnmarshalJSON(b []byte) error {
	var a [3]int
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	d.W, d.H, d.D = a[0], a[1], a[2]
	return nil
}

// Element is one declarative unit of a blueprint. Pos is nil for malformed
// elements (skipped by the compiler) and for multi-pane windows, which carry
// their coordinates in Panes instead.
type Element struct {
	Type           string
	Material       string
	Pos            *Vec3i
	Panes          []Vec3i
	Dims           *Dims
	Orientation    string
	End            *Vec3i
	AccessibleFrom string
}

type elementJSON struct {
	Type           string          `json:"type"`
	Material       string          `json:"material,omitempty"`
	Position       json.RawMessage `json:"position,omitempty"`
	Dimensions     *Dims           `json:"dimensions,omitempty"`
	Orientation    string          `json:"orientation,omitempty"`
	EndPosition    *Vec3i          `json:"end_position,omitempty"`
	AccessibleFrom string          `json:"accessible_from,omitempty"`
}

func (e *Element) UnmarshalJSON(b []byte) error {
	var aux elementJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.Type = aux.Type
	e.Material = aux.Material
	e.Dims = aux.Dimensions
	e.Orientation = aux.Orientation
	e.End = aux.EndPosition
	e.AccessibleFrom = aux.AccessibleFrom
	e.Pos = nil
	e.Panes = nil

	if len(aux.Position) == 0 {
		return nil
	}
	// position is either a single [x,y,z] or, for multi-pane windows, a list
	// of them.
	var one Vec3i
	if err := json.Unmarshal(aux.Position, &one); err == nil {
		e.Pos = &one
		return nil
	}
	var many []Vec3i
	if err := json.Unmarshal(aux.Position, &many); err != nil {
		return fmt.Errorf("element position: %w", err)
	}
	e.Panes = many
	return nil
}

func (e Element) MarshalJSON() ([]byte, error) {
	aux := elementJSON{
		Type:           e.Type,
		Material:       e.Material,
		Dimensions:     e.Dims,
		Orientation:    e.Orientation,
		EndPosition:    e.End,
		AccessibleFrom: e.AccessibleFrom,
	}
	switch {
	case e.Pos != nil:
		raw, err := json.Marshal(e.Pos)
		if err != nil {
			return nil, err
		}
		aux.Position = raw
	case len(e.Panes) > 0:
		raw, err := json.Marshal(e.Panes)
		if err != nil {
			return nil, err
		}
		aux.Position = raw
	}
	return json.Marshal(aux)
}

// DefaultGroundLevel is the floor plane of a superflat world.
const DefaultGroundLevel = -60

// Structure is the blueprint header: footprint metadata and the ground
// reference level.
type Structure struct {
	Width       int    `json:"width,omitempty"`
	Depth       int    `json:"depth,omitempty"`
	Height      int    `json:"height,omitempty"`
	GroundLevel *int   `json:"ground_level,omitempty"`
	Description string `json:"description,omitempty"`
}

// Ground returns the ground reference level, defaulting when unset.
func (s Structure) Ground() int {
	if s.GroundLevel == nil {
		return DefaultGroundLevel
	}
	return *s.GroundLevel
}

// GroundAt is a convenience for building Structure literals.
func GroundAt(y int) *int { return &y }

// Blueprint is the compiler's input. Element order is not emission order;
// BuildOrder groups emission by type tag, and a tag absent from BuildOrder is
// not emitted at all.
type Blueprint struct {
	Structure  Structure `json:"structure"`
	Elements   []Element `json:"elements"`
	BuildOrder []string  `json:"build_order,omitempty"`
	IsVoxel    bool      `json:"is_voxel,omitempty"`
}
