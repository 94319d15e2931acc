package compile

import (
	"reflect"
	"testing"

	"mason.gg/internal/blueprint"
	"mason.gg/internal/catalog"
	"mason.gg/internal/ops"
)

// The dispatch set is closed: every tag the blueprint contract names
// must have a rule.
func TestRules_CoverClosedTagSet(t *testing.T) {
	tags := []string{
		"wall", "floor", "platform", "slab", "beam", "support", "column",
		"pillar", "carpet", "path", "hay", "railing", "portcullis",
		"bookshelf", "decoration",
		"door", "window", "gate", "arch", "trapdoor", "ladder", "arrow_slit",
		"roof", "chimney", "dome", "spire", "awning", "balcony", "porch",
		"water", "moat", "pond", "fountain", "well", "dock",
		"garden", "fence", "flower", "crops", "farm", "tree", "pen", "stable",
		"torch", "lamp", "lantern", "bed", "chest", "barrel",
		"crafting_table", "furnace", "anvil", "table", "chair", "fireplace",
		"bell", "sign", "banner",
		"market_stall", "bridge", "tower", "chain", "battlement", "throne",
		"altar", "statue", "obelisk", "pyramid", "windmill",
		"stairs",
	}
	for _, tag := range tags {
		if rules[tag] == nil {
			t.Errorf("no rule for %q", tag)
		}
	}
	if len(rules) != len(tags) {
		t.Errorf("registry has %d rules, contract names %d", len(rules), len(tags))
	}
}

// Every rule must emit operations whose blocks pass the validator with
// the default catalog, including each rule's structural defaults.
func TestRules_DefaultsPassValidator(t *testing.T) {
	cat := catalog.Default()
	for tag := range rules {
		e := blueprint.Element{Type: tag, Pos: vec(0, 64, 0), Dims: dim(5, 5, 5)}
		if tag == "chain" {
			e.End = &blueprint.Vec3i{X: 4, Y: 69, Z: 4}
		}
		bp := &blueprint.Blueprint{
			Structure:  blueprint.Structure{GroundLevel: blueprint.GroundAt(63)},
			Elements:   []blueprint.Element{e},
			BuildOrder: []string{tag},
		}
		got := Compile(bp)
		if len(got) == 0 {
			t.Errorf("%s: no operations", tag)
			continue
		}
		if vs := ops.Validate(got, cat.Has); len(vs) != 0 {
			t.Errorf("%s: validator flagged %v", tag, vs)
		}
	}
}

func TestRuleFlower_GroundBlockBelow(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements:   []blueprint.Element{{Type: "flower", Material: "dandelion", Pos: vec(3, 5, 3)}},
		BuildOrder: []string{"flower"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/setblock 3 4 3 grass_block",
		"/setblock 3 5 3 dandelion",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("flower = %v, want %v", got, want)
	}
}

func TestRuleChimney_SmokeSourceAboveStack(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type: "chimney", Material: "cobblestone", Pos: vec(2, 10, 2), Dims: dim(1, 4, 1),
		}},
		BuildOrder: []string{"chimney"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/fill 2 10 2 2 13 2 cobblestone",
		"/setblock 2 14 2 campfire",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("chimney = %v, want %v", got, want)
	}
}

func TestRuleTree_TrunkAndCanopy(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements:   []blueprint.Element{{Type: "tree", Material: "spruce_log", Pos: vec(0, 0, 0)}},
		BuildOrder: []string{"tree"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/fill 0 0 0 0 3 0 spruce_log",
		"/fill -1 3 -1 1 4 1 spruce_leaves",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
}

func TestRuleBed_TwoParts(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type: "bed", Material: "blue_bed", Pos: vec(1, 0, 1), Orientation: blueprint.East,
		}},
		BuildOrder: []string{"bed"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/setblock 1 0 1 blue_bed[facing=east,part=foot]",
		"/setblock 2 0 1 blue_bed[facing=east,part=head]",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("bed = %v, want %v", got, want)
	}
}

func TestRuleTower_InteriorDoorway(t *testing.T) {
	bp := &blueprint.Blueprint{
		Structure: blueprint.Structure{GroundLevel: blueprint.GroundAt(-60)},
		Elements: []blueprint.Element{{
			Type: "tower", Material: "stone_bricks", Pos: vec(0, -60, 0), Dims: dim(5, 8, 5),
		}},
		BuildOrder: []string{"tower"},
	}
	got := ops.RenderAll(Compile(bp))
	// bounds center is the tower itself, so the resolver's Z-axis tie
	// puts the door on the south wall
	want := []string{
		"/fill 0 -60 0 4 -53 4 stone_bricks hollow",
		"/fill 2 -59 4 2 -58 4 air",
		"/setblock 2 -59 4 oak_door[facing=south,half=lower]",
		"/setblock 2 -58 4 oak_door[facing=south,half=upper]",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tower = %v, want %v", got, want)
	}
}

func TestRuleGate_ClearsOpening(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type: "gate", Material: "spruce_fence_gate", Pos: vec(4, 0, 9),
			Dims: dim(3, 3, 1), Orientation: blueprint.North,
		}},
		BuildOrder: []string{"gate"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/fill 4 0 9 6 2 9 air",
		"/setblock 5 0 9 spruce_fence_gate[facing=north]",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("gate = %v, want %v", got, want)
	}
}

func TestRuleBridge_RailsFlankDeck(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type: "bridge", Material: "spruce_planks", Pos: vec(4, 0, 0), Dims: dim(3, 1, 8),
		}},
		BuildOrder: []string{"bridge"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/fill 4 0 0 6 0 7 spruce_planks",
		"/fill 4 1 0 4 1 7 spruce_fence",
		"/fill 6 1 0 6 1 7 spruce_fence",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("bridge = %v, want %v", got, want)
	}
}

func TestRulePyramid_SteppedLayers(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type: "pyramid", Material: "sandstone", Pos: vec(0, 0, 0), Dims: dim(5, 4, 5),
		}},
		BuildOrder: []string{"pyramid"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/fill 0 0 0 4 0 4 sandstone",
		"/fill 1 1 1 3 1 3 sandstone",
		"/fill 2 2 2 2 2 2 sandstone",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pyramid = %v, want %v", got, want)
	}
}

func TestRuleRoof_StairRowFacesOppositeSlope(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type: "roof", Material: "oak_stairs", Pos: vec(0, 10, 0),
			Dims: dim(4, 1, 1), Orientation: blueprint.South,
		}},
		BuildOrder: []string{"roof"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{
		"/setblock 0 10 0 oak_stairs[facing=north]",
		"/setblock 1 10 0 oak_stairs[facing=north]",
		"/setblock 2 10 0 oak_stairs[facing=north]",
		"/setblock 3 10 0 oak_stairs[facing=north]",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("roof = %v, want %v", got, want)
	}
}

func TestRuleRoof_SolidMaterialFills(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements: []blueprint.Element{{
			Type: "roof", Material: "spruce_planks", Pos: vec(0, 10, 0), Dims: dim(4, 1, 6),
		}},
		BuildOrder: []string{"roof"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{"/fill 0 10 0 3 10 5 spruce_planks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("roof = %v, want %v", got, want)
	}
}

func TestRuleWindow_SinglePane(t *testing.T) {
	bp := &blueprint.Blueprint{
		Elements:   []blueprint.Element{{Type: "window", Pos: vec(2, -58, 0)}},
		BuildOrder: []string{"window"},
	}
	got := ops.RenderAll(Compile(bp))
	want := []string{"/setblock 2 -58 0 glass_pane"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("window = %v, want %v", got, want)
	}
}
