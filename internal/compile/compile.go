package compile

import (
	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

// Options adjusts dispatch behavior.
type Options struct {
	// IncludeUnordered appends a residual group for every element type
	// missing from build_order, in first-appearance order. The default
	// drops those elements, matching the opt-in emission contract of
	// build_order.
	IncludeUnordered bool
}

// Compile lowers a blueprint to an ordered operation sequence with
// default options.
func Compile(bp *blueprint.Blueprint) []ops.Op {
	return CompileWith(bp, Options{})
}

// CompileWith lowers a blueprint to an ordered operation sequence.
//
// Voxel blueprints bypass dispatch and translate element-per-block.
// Structural blueprints emit one group per build_order entry: all
// elements of that type, in their original relative order, before the
// next entry's group. Types with no registered rule and elements with
// no usable position are skipped. Doors registered during dispatch get
// an accessibility pass appended at the end.
func CompileWith(bp *blueprint.Blueprint, opts Options) []ops.Op {
	if bp == nil {
		return nil
	}
	if bp.IsVoxel {
		return compileVoxel(bp.Elements)
	}

	ctx := &Context{
		Bounds: boundsOf(bp.Elements),
		Ground: bp.Structure.Ground(),
	}
	res := &Result{}

	order := bp.BuildOrder
	if opts.IncludeUnordered {
		order = withResidual(order, bp.Elements)
	}
	for _, tag := range order {
		rule := rules[tag]
		if rule == nil {
			continue
		}
		for i := range bp.Elements {
			e := &bp.Elements[i]
			if e.Type != tag {
				continue
			}
			if e.Pos == nil && len(e.Panes) == 0 {
				continue
			}
			if e.Pos == nil && e.Type != "window" {
				// pane lists only stand in for a position on windows
				continue
			}
			rule(e, ctx, emitter{res: res, tag: tag})
		}
	}

	repairAccess(ctx, res)
	return res.Ops
}

// withResidual extends order with every element type it does not name,
// in first-appearance order.
func withResidual(order []string, elems []blueprint.Element) []string {
	seen := make(map[string]bool, len(order))
	for _, t := range order {
		seen[t] = true
	}
	out := append([]string(nil), order...)
	for i := range elems {
		if t := elems[i].Type; !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
