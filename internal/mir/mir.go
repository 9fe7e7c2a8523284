// Package mir turns a lowered function body into a basic-block graph and
// back again. It sits between internal/lower and internal/orchestrator: the
// orchestrator threads every function body through Lower then Emit before
// handing it to internal/writer, so that emission always walks a
// deterministic block graph instead of a raw, arbitrarily-nested statement
// tree.
//
// There is no optimisation pass here and no analysis beyond block
// splitting — this package exists for determinism and source-mapping, not
// for transforming behaviour. A structured-control-flow body that goes in
// comes back out unchanged: Emit(Lower(body)) deep-equals body, modulo the
// trailing empty block described below.
package mir

import "github.com/tsubalang/tsubac/internal/targetir"

// BlockID names a block within a Graph. The entry block is always 0.
type BlockID int

// Block is one basic block: a flat run of non-branching statements followed
// by a terminator that says where control goes next.
type Block struct {
	ID         BlockID
	Stmts      []targetir.Stmt
	Terminator Terminator
}

// Graph is a lowered function body.
type Graph struct {
	Entry  BlockID
	Blocks []*Block
}

// Terminator is the last word of a Block: one of EndTerm, GotoTerm,
// ReturnTerm, IfTerm, WhileTerm, MatchTerm, or BlockTerm.
type Terminator interface {
	terminatorNode()
	next() *BlockID
}

// EndTerm closes a block with no successor — the function body ends here.
type EndTerm struct{}

func (*EndTerm) terminatorNode() {}
func (*EndTerm) next() *BlockID  { return nil }

// GotoTerm jumps unconditionally to Target. Lower never emits one itself
// (every branch it builds carries its own inline body plus a Next
// continuation) but it is part of the block vocabulary a hand-built or
// future-extended Graph may use.
type GotoTerm struct{ Target BlockID }

func (*GotoTerm) terminatorNode()    {}
func (t *GotoTerm) next() *BlockID   { return &t.Target }

// ReturnTerm ends the enclosing function. Stmt is the original return
// statement, reused verbatim so its span and value expression survive
// untouched.
type ReturnTerm struct{ Stmt *targetir.ReturnStmt }

func (*ReturnTerm) terminatorNode() {}
func (*ReturnTerm) next() *BlockID  { return nil }

// IfTerm carries the original if-statement's condition and branch bodies
// inline (they are not themselves split into blocks) plus the block that
// resumes after the if, if any.
type IfTerm struct {
	Stmt *targetir.IfStmt
	Next *BlockID
}

func (*IfTerm) terminatorNode()   {}
func (t *IfTerm) next() *BlockID { return t.Next }

// WhileTerm carries the original while-statement inline plus the block
// that resumes after the loop, if any.
type WhileTerm struct {
	Stmt *targetir.WhileStmt
	Next *BlockID
}

func (*WhileTerm) terminatorNode() {}
func (t *WhileTerm) next() *BlockID { return t.Next }

// MatchTerm carries the original match-statement inline plus the block
// that resumes after it, if any.
type MatchTerm struct {
	Stmt *targetir.MatchStmt
	Next *BlockID
}

func (*MatchTerm) terminatorNode() {}
func (t *MatchTerm) next() *BlockID { return t.Next }

// BlockTerm carries an explicit nested `{ ... }` block statement inline
// plus the block that resumes after it, if any.
type BlockTerm struct {
	Stmt *targetir.BlockStmt
	Next *BlockID
}

func (*BlockTerm) terminatorNode() {}
func (t *BlockTerm) next() *BlockID { return t.Next }
