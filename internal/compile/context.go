// Package compile turns a decoded blueprint into an ordered list of
// world-edit operations. Each element type dispatches to a rule that
// decomposes it into region fills and block placements; doors recorded
// during dispatch get an accessibility pass afterwards so elevated
// entrances grow approach stairs.
package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

// Context carries cross-element state for one compilation: the footprint
// bounds used by the orientation resolver, the ground level, and the door
// sites collected for the accessibility pass.
type Context struct {
	Bounds Bounds
	Ground int

	doors  []doorSite
	floors []blueprint.Element
}

type doorSite struct {
	pos    blueprint.Vec3i
	facing string
}

func (c *Context) registerDoor(pos blueprint.Vec3i, facing string) {
	c.doors = append(c.doors, doorSite{pos: pos, facing: facing})
}

func (c *Context) registerFloor(e blueprint.Element) {
	c.floors = append(c.floors, e)
}

// Result accumulates operations in emission order.
type Result struct {
	Ops []ops.Op
}

// emitter binds a Result to the element type currently being compiled so
// every emitted op carries its originating tag.
type emitter struct {
	res *Result
	tag string
}

func (em emitter) push(op ops.Op) {
	op.Tag = em.tag
	em.res.Ops = append(em.res.Ops, op)
}

func (em emitter) fill(from, to blueprint.Vec3i, block string) {
	em.push(ops.Fill(from, to, block))
}

func (em emitter) fillMod(from, to blueprint.Vec3i, block, modifier string) {
	em.push(ops.FillMod(from, to, block, modifier))
}

// region fills the cuboid spanned by pos and dims.
func (em emitter) region(pos blueprint.Vec3i, dims blueprint.Dims, block string) {
	from, to := ops.Region(pos, dims)
	em.fill(from, to, block)
}

func (em emitter) regionMod(pos blueprint.Vec3i, dims blueprint.Dims, block, modifier string) {
	from, to := ops.Region(pos, dims)
	em.fillMod(from, to, block, modifier)
}

func (em emitter) set(at blueprint.Vec3i, block string, states ...ops.State) {
	em.push(ops.Set(at, block, states...))
}
