package blueprint

import "strings"

// Wood species and stone bases the template library substitutes into
// material slots.
var (
	WoodSpecies = []string{
		"oak", "spruce", "birch", "jungle", "acacia",
		"dark_oak", "mangrove", "cherry", "crimson", "warped",
	}
	StoneBases = []string{
		"stone", "cobblestone", "stone_brick", "mossy_cobblestone",
		"andesite", "diorite", "granite", "deepslate_brick", "blackstone",
		"sandstone", "red_sandstone",
	}
	DyeColors = []string{
		"white", "orange", "magenta", "light_blue", "yellow", "lime",
		"pink", "gray", "light_gray", "cyan", "purple", "blue",
		"brown", "green", "red", "black",
	}
)

// Wood-family block products.
func Planks(wood string) string      { return wood + "_planks" }
func Log(wood string) string         { return wood + "_log" }
func StrippedLog(wood string) string { return "stripped_" + wood + "_log" }
func Stairs(base string) string      { return base + "_stairs" }
func Slab(base string) string        { return base + "_slab" }
func Fence(wood string) string       { return wood + "_fence" }
func FenceGate(wood string) string   { return wood + "_fence_gate" }
func Door(wood string) string        { return wood + "_door" }
func Trapdoor(wood string) string    { return wood + "_trapdoor" }
func Sign(wood string) string        { return wood + "_sign" }
func PressurePlate(wood string) string {
	return wood + "_pressure_plate"
}

// materialSuffixes maps a block-name suffix back to the family base, longest
// suffix first so "_fence_gate" wins over "_fence".
var materialSuffixes = []string{
	"_pressure_plate", "_fence_gate", "_trapdoor", "_planks", "_stairs",
	"_fence", "_slab", "_door", "_sign", "_log", "_wood", "_leaves",
}

// FamilyOf extracts the wood/stone family from a block identifier:
// "oak_planks" -> "oak", "stripped_spruce_log" -> "spruce",
// "stone_brick_stairs" -> "stone_brick". Returns "" when the identifier does
// not carry a recognizable family product suffix.
func FamilyOf(block string) string {
	b := strings.TrimPrefix(block, "stripped_")
	for _, suf := range materialSuffixes {
		if rest := strings.TrimSuffix(b, suf); rest != b && rest != "" {
			return rest
		}
	}
	return ""
}

// IsStairs reports whether the block identifier belongs to the stair family.
func IsStairs(block string) bool { return strings.HasSuffix(block, "_stairs") }

// IsSlab reports whether the block identifier belongs to the slab family.
func IsSlab(block string) bool { return strings.HasSuffix(block, "_slab") }

// IsDoor reports whether the block identifier belongs to the door family.
func IsDoor(block string) bool { return strings.HasSuffix(block, "_door") }
