// Package catalog holds the block allow-list the operation validator checks
// emitted commands against, with a stable palette ordering and a digest for
// cache-busting in API responses.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"mason.gg/internal/blueprint"
)

// Air is the clear-block sentinel. It is always palette id 0.
const Air = "air"

type Catalog struct {
	Palette []string
	Index   map[string]uint16
	digest  string
}

// stoneBlock maps a stone base to the block identifier of the full block:
// brick-family bases pluralize ("stone_brick" -> "stone_bricks").
func stoneBlock(base string) string {
	if strings.HasSuffix(base, "_brick") {
		return base + "s"
	}
	return base
}

// standaloneBlocks are identifiers with no family derivation: terrain,
// lighting, furniture, crops and flora the element rules emit.
var standaloneBlocks = []string{
	// terrain and ground
	"dirt", "coarse_dirt", "grass_block", "dirt_path", "farmland", "gravel", "sand",
	"clay", "mud", "snow_block", "podzol", "moss_block",
	// fluids
	"water", "lava",
	// glass and light
	"glass", "glass_pane", "tinted_glass", "glowstone", "sea_lantern",
	"shroomlight", "torch", "wall_torch", "soul_torch", "lantern",
	"soul_lantern", "end_rod",
	// metal and stone extras
	"iron_bars", "iron_door", "iron_trapdoor", "chain", "anvil",
	"smooth_stone", "bricks", "brick_stairs", "brick_slab",
	"chiseled_stone_bricks", "cracked_stone_bricks", "mossy_stone_bricks",
	"polished_andesite", "polished_diorite", "polished_granite",
	"quartz_block", "smooth_quartz", "quartz_stairs", "quartz_slab",
	"obsidian", "bedrock", "netherrack", "soul_sand", "magma_block",
	// stations and furniture
	"crafting_table", "furnace", "blast_furnace", "smoker", "chest",
	"trapped_chest", "barrel", "bookshelf", "lectern", "cartography_table",
	"smithing_table", "fletching_table", "loom", "composter", "cauldron",
	"brewing_stand", "enchanting_table", "bell", "ladder", "scaffolding",
	"campfire", "soul_campfire", "flower_pot", "jukebox", "note_block",
	// fungus stems (crimson/warped have no logs)
	"crimson_stem", "warped_stem", "stripped_crimson_stem",
	"stripped_warped_stem",
	// crops and flora
	"hay_block", "wheat", "carrots", "potatoes", "beetroots", "melon",
	"pumpkin", "carved_pumpkin", "jack_o_lantern", "melon_stem",
	"pumpkin_stem", "sweet_berry_bush", "sugar_cane", "bamboo", "cactus",
	"lily_pad", "vine", "short_grass", "tall_grass", "fern", "large_fern",
	"dead_bush", "brown_mushroom", "red_mushroom", "mushroom_stem",
	// flowers
	"poppy", "dandelion", "cornflower", "azure_bluet", "oxeye_daisy",
	"allium", "blue_orchid", "lily_of_the_valley", "red_tulip",
	"orange_tulip", "white_tulip", "pink_tulip", "lilac", "peony",
	"rose_bush", "sunflower", "wither_rose",
}

func build() *Catalog {
	set := map[string]struct{}{}
	add := func(ids ...string) {
		for _, id := range ids {
			if id != "" {
				set[id] = struct{}{}
			}
		}
	}

	for _, wood := range blueprint.WoodSpecies {
		add(
			blueprint.Planks(wood),
			blueprint.Stairs(wood),
			blueprint.Slab(wood),
			blueprint.Fence(wood),
			blueprint.FenceGate(wood),
			blueprint.Door(wood),
			blueprint.Trapdoor(wood),
			blueprint.Sign(wood),
			blueprint.PressurePlate(wood),
			wood+"_button",
		)
		if wood == "crimson" || wood == "warped" {
			continue // stems are standalone, leaves do not exist
		}
		add(blueprint.Log(wood), blueprint.StrippedLog(wood), wood+"_leaves", wood+"_sapling")
	}

	for _, base := range blueprint.StoneBases {
		add(
			stoneBlock(base),
			blueprint.Stairs(base),
			blueprint.Slab(base),
			base+"_wall",
		)
	}

	for _, color := range blueprint.DyeColors {
		add(
			color+"_wool",
			color+"_concrete",
			color+"_terracotta",
			color+"_carpet",
			color+"_stained_glass",
			color+"_stained_glass_pane",
			color+"_bed",
			color+"_banner",
		)
	}
	add("terracotta")

	add(standaloneBlocks...)

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Air is the clear sentinel and always palette id 0.
	ids = append([]string{Air}, ids...)

	c := &Catalog{
		Palette: ids,
		Index:   make(map[string]uint16, len(ids)),
	}
	for i, id := range ids {
		c.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	c.digest = sha256Hex(palJSON)
	return c
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the process-wide catalog, built on first use.
func Default() *Catalog {
	defaultOnce.Do(func() { defaultCat = build() })
	return defaultCat
}

// Has reports whether the bare block identifier (no state suffix) is known.
func (c *Catalog) Has(block string) bool {
	_, ok := c.Index[block]
	return ok
}

// Digest is the sha256 of the canonical palette JSON.
func (c *Catalog) Digest() string { return c.digest }

func (c *Catalog) Len() int { return len(c.Palette) }

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
