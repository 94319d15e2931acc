package template

import (
	"reflect"
	"testing"

	"mason.gg/internal/blueprint"
	"mason.gg/internal/catalog"
	"mason.gg/internal/compile"
	"mason.gg/internal/encoding"
	"mason.gg/internal/ops"
)

func TestVoxelFixturesDecode(t *testing.T) {
	cases := []struct {
		name    string
		w, h, d int
	}{
		{"cozy_cottage", 9, 8, 9},
		{"medieval_tavern", 11, 10, 11},
	}
	for _, tc := range cases {
		v := GetVoxel(tc.name)
		if v == nil {
			t.Fatalf("GetVoxel(%s) = nil", tc.name)
		}
		g := v.Grid()
		if g.W != tc.w || g.H != tc.h || g.D != tc.d {
			t.Errorf("%s grid = %dx%dx%d, want %dx%dx%d",
				tc.name, g.W, g.H, g.D, tc.w, tc.h, tc.d)
		}
	}

	g := GetVoxel("cozy_cottage").Grid()
	if got := g.At(4, 1, 1); got != "oak_door" {
		t.Errorf("cottage door cell = %q, want oak_door", got)
	}
	if got := g.At(2, 1, 2); got != "air" {
		t.Errorf("cottage interior cell = %q, want air", got)
	}
	if got := g.At(0, 0, 0); got != "" {
		t.Errorf("cottage foundation corner = %q, want untouched", got)
	}
}

func TestVoxelBlueprintCompiles(t *testing.T) {
	origin := blueprint.Vec3i{X: 10, Y: -60, Z: 5}
	for _, v := range Voxels() {
		bp := v.Blueprint(origin)
		if !bp.IsVoxel {
			t.Fatalf("%s blueprint not marked voxel", v.Name)
		}
		if bp.Structure.Ground() != -60 {
			t.Fatalf("%s ground = %d, want -60", v.Name, bp.Structure.Ground())
		}
		list := compile.Compile(bp)
		if len(list) != len(bp.Elements) {
			t.Fatalf("%s compiled %d ops from %d cells", v.Name, len(list), len(bp.Elements))
		}
		for _, op := range list {
			if !op.Bare {
				t.Fatalf("%s emitted slashed op %q", v.Name, op.Render())
			}
		}
		if vs := ops.Validate(list, catalog.Default().Has); len(vs) != 0 {
			t.Fatalf("%s emitted invalid operations: %+v", v.Name, vs)
		}
	}

	list := compile.Compile(GetVoxel("cozy_cottage").Blueprint(origin))
	wantRenders := []string{
		"setblock 14 -59 6 oak_door[half=lower]",
		"setblock 12 -59 7 air",
	}
	for _, want := range wantRenders {
		if !containsRender(list, want) {
			t.Errorf("cottage voxel missing %q", want)
		}
	}
}

func TestVoxelGridRoundTripsRLE(t *testing.T) {
	for _, v := range Voxels() {
		g := v.Grid()
		decoded, err := encoding.DecodeGrid(g.W, g.H, g.D, g.Palette, g.Encode())
		if err != nil {
			t.Fatalf("%s: decode after encode: %v", v.Name, err)
		}
		if !reflect.DeepEqual(decoded.Cells, g.Cells) {
			t.Fatalf("%s: grid changed across encode/decode", v.Name)
		}
	}
}

func TestMatchVoxel(t *testing.T) {
	cases := []struct {
		desc string
		want string
	}{
		{"an oak cottage on the hill", "cozy_cottage"},
		{"something cozy to live in", "cozy_cottage"},
		{"the old pub on the corner", "medieval_tavern"},
		{"a barkeep needs a bar", "medieval_tavern"},
		{"obsidian fortress", ""},
	}
	for _, tc := range cases {
		got := MatchVoxel(tc.desc)
		switch {
		case tc.want == "" && got != nil:
			t.Errorf("MatchVoxel(%q) = %s, want no match", tc.desc, got.Name)
		case tc.want != "" && got == nil:
			t.Errorf("MatchVoxel(%q) = no match, want %s", tc.desc, tc.want)
		case got != nil && got.Name != tc.want:
			t.Errorf("MatchVoxel(%q) = %s, want %s", tc.desc, got.Name, tc.want)
		}
	}
}
