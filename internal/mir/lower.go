package mir

import "github.com/tsubalang/tsubac/internal/targetir"

// Lower splits a flat function body into a chain of basic blocks. Plain
// statements (let, assignment and other expression statements, break,
// continue, raw escapes) accumulate into the current block; a return,
// if, while, match, or nested block statement closes the current block
// with a terminator that carries the original statement inline and opens
// a fresh block for whatever follows it.
//
// A trailing block left with no statements and no terminator-inducing
// statement (i.e. an End with nothing in it) is dropped, and any
// terminator whose Next pointed at it has that Next cleared — the block
// graph never carries a dead stub block.
func Lower(body []targetir.Stmt) *Graph {
	g := &Graph{Entry: 0}
	cur := g.newBlock()

	for _, s := range body {
		switch v := s.(type) {
		case *targetir.ReturnStmt:
			cur.Terminator = &ReturnTerm{Stmt: v}
			cur = g.newBlock()
		case *targetir.IfStmt:
			next := g.newBlock()
			cur.Terminator = &IfTerm{Stmt: v, Next: &next.ID}
			cur = next
		case *targetir.WhileStmt:
			next := g.newBlock()
			cur.Terminator = &WhileTerm{Stmt: v, Next: &next.ID}
			cur = next
		case *targetir.MatchStmt:
			next := g.newBlock()
			cur.Terminator = &MatchTerm{Stmt: v, Next: &next.ID}
			cur = next
		case *targetir.BlockStmt:
			next := g.newBlock()
			cur.Terminator = &BlockTerm{Stmt: v, Next: &next.ID}
			cur = next
		default:
			cur.Stmts = append(cur.Stmts, s)
		}
	}

	if cur.Terminator == nil {
		cur.Terminator = &EndTerm{}
	}

	g.dropTrailingEmptyBlock()
	return g
}

func (g *Graph) newBlock() *Block {
	b := &Block{ID: BlockID(len(g.Blocks))}
	g.Blocks = append(g.Blocks, b)
	return b
}

// dropTrailingEmptyBlock elides a final block that holds no statements and
// no meaningful terminator (just the implicit End every walk ends on),
// clearing any predecessor Next that pointed at it. The entry block is
// never dropped, even when the body is empty.
func (g *Graph) dropTrailingEmptyBlock() {
	if len(g.Blocks) < 2 {
		return
	}
	last := g.Blocks[len(g.Blocks)-1]
	if len(last.Stmts) != 0 {
		return
	}
	if _, ok := last.Terminator.(*EndTerm); !ok {
		return
	}
	g.Blocks = g.Blocks[:len(g.Blocks)-1]
	for _, b := range g.Blocks {
		if n := b.Terminator.next(); n != nil && *n == last.ID {
			clearNext(b.Terminator)
		}
	}
}

func clearNext(t Terminator) {
	switch v := t.(type) {
	case *IfTerm:
		v.Next = nil
	case *WhileTerm:
		v.Next = nil
	case *MatchTerm:
		v.Next = nil
	case *BlockTerm:
		v.Next = nil
	}
}
