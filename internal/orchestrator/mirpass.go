package orchestrator

import (
	"github.com/tsubalang/tsubac/internal/mir"
	"github.com/tsubalang/tsubac/internal/targetir"
)

// normalizeBodies threads every function body reachable from items through
// internal/mir's Lower/Emit round trip before final assembly (spec §2's
// "MIR round-trip" pipeline stage): a basic-block graph is built from the
// body and immediately re-flattened, so emission always goes through the
// same deterministic path regardless of how host lowering originally
// built the statement list. Per internal/mir's own contract, a
// structured-control-flow body is unchanged by this round trip except for
// the elision of a trailing empty block.
func normalizeBodies(items []targetir.Item) {
	for _, it := range items {
		switch v := it.(type) {
		case *targetir.FnItem:
			if v.Body != nil {
				v.Body = mir.Emit(mir.Lower(v.Body))
			}
		case *targetir.ImplItem:
			for _, m := range v.Methods {
				if m.Body != nil {
					m.Body = mir.Emit(mir.Lower(m.Body))
				}
			}
		case *targetir.TraitItem:
			for _, m := range v.Methods {
				if m.Body != nil {
					m.Body = mir.Emit(mir.Lower(m.Body))
				}
			}
		case *targetir.ModItem:
			normalizeBodies(v.Items)
		}
	}
}
