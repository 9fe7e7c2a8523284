package mir

import "github.com/tsubalang/tsubac/internal/targetir"

// Emit walks a Graph from its entry block, following each terminator's Next
// continuation, and rebuilds a flat statement slice suitable for the
// writer. Every statement it appends is the exact node Lower captured, so
// on a structured-control-flow round trip Emit(Lower(body)) deep-equals
// body (the trailing empty block elided by Lower is, correctly, not
// reintroduced) — and every span Lower saw survives untouched, since Emit
// never constructs a replacement node.
//
// A block that has already been visited is not walked again — a Graph
// built by hand rather than by Lower could contain a cycle, and revisiting
// it would never terminate.
func Emit(g *Graph) []targetir.Stmt {
	visited := make(map[BlockID]bool, len(g.Blocks))
	return emitBlock(g, g.Entry, visited)
}

func emitBlock(g *Graph, id BlockID, visited map[BlockID]bool) []targetir.Stmt {
	if visited[id] || int(id) < 0 || int(id) >= len(g.Blocks) {
		return nil
	}
	visited[id] = true

	b := g.Blocks[id]
	out := make([]targetir.Stmt, 0, len(b.Stmts)+1)
	out = append(out, b.Stmts...)

	switch t := b.Terminator.(type) {
	case *EndTerm:
		// nothing further
	case *GotoTerm:
		out = append(out, emitBlock(g, t.Target, visited)...)
	case *ReturnTerm:
		out = append(out, t.Stmt)
	case *IfTerm:
		out = append(out, t.Stmt)
		if t.Next != nil {
			out = append(out, emitBlock(g, *t.Next, visited)...)
		}
	case *WhileTerm:
		out = append(out, t.Stmt)
		if t.Next != nil {
			out = append(out, emitBlock(g, *t.Next, visited)...)
		}
	case *MatchTerm:
		out = append(out, t.Stmt)
		if t.Next != nil {
			out = append(out, emitBlock(g, *t.Next, visited)...)
		}
	case *BlockTerm:
		out = append(out, t.Stmt)
		if t.Next != nil {
			out = append(out, emitBlock(g, *t.Next, visited)...)
		}
	}
	return out
}
