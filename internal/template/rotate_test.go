package template

import (
	"reflect"
	"testing"

	"mason.gg/internal/blueprint"
)

func TestNormalizeRotation(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0}, {1, 1}, {2, 2}, {3, 3},
		{4, 0}, {5, 1}, {-1, 3},
		{90, 1}, {180, 2}, {270, 3}, {360, 0}, {450, 1}, {-90, 3},
	}
	for _, tc := range cases {
		if got := NormalizeRotation(tc.in); got != tc.want {
			t.Errorf("NormalizeRotation(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	ground := -60
	bp := &blueprint.Blueprint{
		Structure: blueprint.Structure{Width: 4, Depth: 2, Height: 3, GroundLevel: &ground},
		Elements: []blueprint.Element{
			{
				Type:        "wall",
				Material:    "stone",
				Pos:         &blueprint.Vec3i{X: 0, Y: 5, Z: 0},
				Dims:        &blueprint.Dims{W: 4, H: 2, D: 1},
				Orientation: blueprint.North,
			},
			{
				Type: "torch",
				Pos:  &blueprint.Vec3i{X: 3, Y: 6, Z: 1},
			},
		},
	}

	r := Rotate(bp, 1)

	if r.Structure.Width != 2 || r.Structure.Depth != 4 {
		t.Errorf("structure = %dx%d, want 2x4", r.Structure.Width, r.Structure.Depth)
	}
	wall := r.Elements[0]
	if *wall.Pos != (blueprint.Vec3i{X: 1, Y: 5, Z: 0}) {
		t.Errorf("wall pos = %+v, want (1,5,0)", *wall.Pos)
	}
	if *wall.Dims != (blueprint.Dims{W: 1, H: 2, D: 4}) {
		t.Errorf("wall dims = %+v, want (1,2,4)", *wall.Dims)
	}
	if wall.Orientation != blueprint.East {
		t.Errorf("wall orientation = %q, want east", wall.Orientation)
	}
	torch := r.Elements[1]
	if *torch.Pos != (blueprint.Vec3i{X: 0, Y: 6, Z: 3}) {
		t.Errorf("torch pos = %+v, want (0,6,3)", *torch.Pos)
	}

	// the input must not move
	if *bp.Elements[0].Pos != (blueprint.Vec3i{X: 0, Y: 5, Z: 0}) {
		t.Errorf("rotation mutated its input: %+v", *bp.Elements[0].Pos)
	}
}

func TestRotateDegreesMatchQuarters(t *testing.T) {
	origin := blueprint.Vec3i{X: 3, Y: -60, Z: 7}
	bp := cottageTemplate.Build(origin, Options{})
	if !reflect.DeepEqual(Rotate(bp, 90), Rotate(bp, 1)) {
		t.Fatalf("Rotate(90) differs from Rotate(1)")
	}
	if !reflect.DeepEqual(Rotate(bp, -90), Rotate(bp, 3)) {
		t.Fatalf("Rotate(-90) differs from Rotate(3)")
	}
}

func TestRotateFullTurnIsIdentity(t *testing.T) {
	origin := blueprint.Vec3i{X: 0, Y: -60, Z: 0}
	bp := cottageTemplate.Build(origin, Options{})

	r := bp
	for i := 0; i < 4; i++ {
		r = Rotate(r, 1)
	}
	if !reflect.DeepEqual(r, bp) {
		t.Fatalf("four quarter turns did not restore the blueprint")
	}

	if !reflect.DeepEqual(Rotate(bp, 0), bp) {
		t.Fatalf("zero rotation changed the blueprint")
	}
}
