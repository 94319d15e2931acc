// Package template holds the built-in blueprint authors: parametric
// builders for a few well-known building kinds, fixed voxel grids for the
// showcase structures, a free-text matcher that picks one from a
// description, and yaw rotation of finished blueprints.
package template

import (
	"strings"

	"mason.gg/internal/blueprint"
)

// Options tunes a parametric builder. Zero values take the template's
// own defaults.
type Options struct {
	Width  int
	Depth  int
	Height int

	// Wood is the species used for framing, floors and doors.
	Wood string
	// Roof is the material family substituted into roof stairs and slabs.
	Roof string

	// SkipGarden and SkipChimney drop the cottage extras.
	SkipGarden  bool
	SkipChimney bool
}

// withDefaults fills unset fields from the template defaults.
func (o Options) withDefaults(def Options) Options {
	if o.Width == 0 {
		o.Width = def.Width
	}
	if o.Depth == 0 {
		o.Depth = def.Depth
	}
	if o.Height == 0 {
		o.Height = def.Height
	}
	if o.Wood == "" {
		o.Wood = def.Wood
	}
	if o.Roof == "" {
		o.Roof = def.Roof
	}
	return o
}

// Template is one parametric building author.
type Template struct {
	Name        string
	Description string

	// aliases are matched as substrings of a lowercased description,
	// most specific template first.
	aliases []string
	// keywords back the fuzzy fallback pass.
	keywords []string

	defaults Options
	build    func(origin blueprint.Vec3i, o Options) []blueprint.Element
	order    []string
	header   func(o Options) blueprint.Structure
}

// Build produces a complete blueprint anchored at origin.
func (t *Template) Build(origin blueprint.Vec3i, o Options) *blueprint.Blueprint {
	o = o.withDefaults(t.defaults)
	s := t.header(o)
	s.GroundLevel = blueprint.GroundAt(origin.Y)
	return &blueprint.Blueprint{
		Structure:  s,
		Elements:   t.build(origin, o),
		BuildOrder: append([]string(nil), t.order...),
	}
}

// Defaults returns the template's default options.
func (t *Template) Defaults() Options { return t.defaults }

// library lists the parametric templates in matching order.
var library = []*Template{cottageTemplate, medievalHouseTemplate, tavernTemplate}

// All returns the parametric templates.
func All() []*Template {
	return append([]*Template(nil), library...)
}

// Get returns the template with the given name, or nil.
func Get(name string) *Template {
	for _, t := range library {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// keywordFallback orders the fuzzy pass independently of the library:
// the generic "house" words come last so they do not shadow the others.
var keywordFallback = []struct {
	words []string
	t     *Template
}{
	{[]string{"cottage", "cozy", "cabin", "hut"}, cottageTemplate},
	{[]string{"tavern", "inn", "pub", "bar"}, tavernTemplate},
	{[]string{"house", "home", "medieval"}, medievalHouseTemplate},
}

// Match picks the template a free-text description asks for: exact alias
// substrings first, then a keyword fallback. Returns nil when nothing
// matches.
func Match(desc string) *Template {
	desc = strings.ToLower(desc)
	for _, t := range library {
		for _, alias := range t.aliases {
			if strings.Contains(desc, alias) {
				return t
			}
		}
	}
	for _, fb := range keywordFallback {
		for _, word := range fb.words {
			if strings.Contains(desc, word) {
				return fb.t
			}
		}
	}
	return nil
}
