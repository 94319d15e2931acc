package template

import (
	"testing"

	"mason.gg/internal/blueprint"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		desc string
		want string // template name, "" for no match
	}{
		{"a cozy cottage in a clearing", "cottage"},
		{"build me a CABIN by the lake", "cottage"},
		{"small hut for a fisherman", "cottage"},
		{"a half-timbered house", "medieval_house"},
		{"my new home", "medieval_house"},
		{"medieval castle keep", "medieval_house"},
		{"the prancing pony inn", "tavern"},
		{"village pub with rooms", "tavern"},
		{"wizard tower", ""},
	}
	for _, tc := range cases {
		got := Match(tc.desc)
		switch {
		case tc.want == "" && got != nil:
			t.Errorf("Match(%q) = %s, want no match", tc.desc, got.Name)
		case tc.want != "" && got == nil:
			t.Errorf("Match(%q) = no match, want %s", tc.desc, tc.want)
		case got != nil && got.Name != tc.want:
			t.Errorf("Match(%q) = %s, want %s", tc.desc, got.Name, tc.want)
		}
	}
}

func TestGet(t *testing.T) {
	if got := Get("medieval_house"); got == nil || got.Name != "medieval_house" {
		t.Fatalf("Get(medieval_house) = %v", got)
	}
	if got := Get("castle"); got != nil {
		t.Fatalf("Get(castle) = %s, want nil", got.Name)
	}
	if len(All()) != 3 {
		t.Fatalf("All() returned %d templates, want 3", len(All()))
	}
}

func TestBuildAppliesDefaults(t *testing.T) {
	origin := blueprint.Vec3i{X: 0, Y: -60, Z: 0}

	bp := cottageTemplate.Build(origin, Options{})
	if bp.Structure.Width != 15 || bp.Structure.Depth != 15 || bp.Structure.Height != 9 {
		t.Fatalf("cottage header = %dx%dx%d, want 15x15x9",
			bp.Structure.Width, bp.Structure.Depth, bp.Structure.Height)
	}
	if bp.Structure.Ground() != -60 {
		t.Fatalf("ground level = %d, want -60", bp.Structure.Ground())
	}

	bare := cottageTemplate.Build(origin, Options{SkipGarden: true})
	if bare.Structure.Width != 11 || bare.Structure.Depth != 9 {
		t.Fatalf("gardenless cottage header = %dx%d, want 11x9",
			bare.Structure.Width, bare.Structure.Depth)
	}
	if len(bare.Elements) >= len(bp.Elements) {
		t.Fatalf("gardenless cottage has %d elements, full has %d",
			len(bare.Elements), len(bp.Elements))
	}
}

func TestBuildCopiesOrder(t *testing.T) {
	origin := blueprint.Vec3i{X: 0, Y: -60, Z: 0}
	bp := tavernTemplate.Build(origin, Options{})
	bp.BuildOrder[0] = "mangled"
	again := tavernTemplate.Build(origin, Options{})
	if again.BuildOrder[0] != "floor" {
		t.Fatalf("build order leaked mutation: %v", again.BuildOrder)
	}
}
