package mir

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsubalang/tsubac/internal/targetir"
)

func TestLowerFlatBodyStaysInOneBlock(t *testing.T) {
	body := []targetir.Stmt{
		&targetir.LetStmt{Name: "x"},
		&targetir.ExprStmt{X: &targetir.IntLit{Value: 1}},
	}
	g := Lower(body)
	require.Len(t, g.Blocks, 1)
	require.Equal(t, BlockID(0), g.Entry)
	require.IsType(t, &EndTerm{}, g.Blocks[0].Terminator)
	require.Len(t, g.Blocks[0].Stmts, 2)
}

func TestLowerTrailingReturnElidesEmptyBlock(t *testing.T) {
	ret := &targetir.ReturnStmt{Value: &targetir.IntLit{Value: 1}}
	body := []targetir.Stmt{
		&targetir.LetStmt{Name: "x"},
		ret,
	}
	g := Lower(body)
	// the block opened after the return has nothing in it and is dropped
	require.Len(t, g.Blocks, 1)
	term, ok := g.Blocks[0].Terminator.(*ReturnTerm)
	require.True(t, ok)
	require.Same(t, ret, term.Stmt)
}

func TestLowerIfOpensContinuationBlock(t *testing.T) {
	ifStmt := &targetir.IfStmt{
		Cond: &targetir.Ident{Name: "c"},
		Then: []targetir.Stmt{&targetir.ExprStmt{X: &targetir.IntLit{Value: 1}}},
	}
	after := &targetir.ExprStmt{X: &targetir.IntLit{Value: 2}}
	body := []targetir.Stmt{ifStmt, after}
	g := Lower(body)
	require.Len(t, g.Blocks, 2)
	term, ok := g.Blocks[0].Terminator.(*IfTerm)
	require.True(t, ok)
	require.Same(t, ifStmt, term.Stmt)
	require.NotNil(t, term.Next)
	require.Equal(t, BlockID(1), *term.Next)
	require.Equal(t, []targetir.Stmt{after}, g.Blocks[1].Stmts)
}

func TestLowerEmptyBodyKeepsSingleEntryBlock(t *testing.T) {
	g := Lower(nil)
	require.Len(t, g.Blocks, 1)
	require.IsType(t, &EndTerm{}, g.Blocks[0].Terminator)
}

func TestRoundTripFlatBody(t *testing.T) {
	body := []targetir.Stmt{
		&targetir.LetStmt{Name: "x", Value: &targetir.IntLit{Value: 1}},
		&targetir.ExprStmt{X: &targetir.Ident{Name: "x"}},
		&targetir.ReturnStmt{Value: &targetir.Ident{Name: "x"}},
	}
	out := Emit(Lower(body))
	require.Equal(t, body, out)
}

func TestRoundTripWithIfElse(t *testing.T) {
	body := []targetir.Stmt{
		&targetir.LetStmt{Name: "x", Value: &targetir.IntLit{Value: 1}},
		&targetir.IfStmt{
			Cond: &targetir.Ident{Name: "x"},
			Then: []targetir.Stmt{&targetir.ReturnStmt{Value: &targetir.IntLit{Value: 1}}},
			Else: []targetir.Stmt{&targetir.ReturnStmt{Value: &targetir.IntLit{Value: 0}}},
		},
		&targetir.ReturnStmt{Value: &targetir.IntLit{Value: 2}},
	}
	out := Emit(Lower(body))
	require.Equal(t, body, out)
}

func TestRoundTripWithWhileAndMatch(t *testing.T) {
	body := []targetir.Stmt{
		&targetir.WhileStmt{
			Cond: &targetir.Ident{Name: "running"},
			Body: []targetir.Stmt{&targetir.ExprStmt{X: &targetir.Ident{Name: "tick"}}},
		},
		&targetir.MatchStmt{
			Scrutinee: &targetir.Ident{Name: "e"},
			Arms: []targetir.MatchArm{
				{Pattern: "Event::Tick { .. }", Body: []targetir.Stmt{&targetir.ExprStmt{X: &targetir.IntLit{Value: 1}}}},
			},
		},
	}
	out := Emit(Lower(body))
	require.Equal(t, body, out)
}

func TestRoundTripWithNestedBlockStmt(t *testing.T) {
	body := []targetir.Stmt{
		&targetir.BlockStmt{Stmts: []targetir.Stmt{&targetir.LetStmt{Name: "y"}}},
		&targetir.ExprStmt{X: &targetir.Ident{Name: "y"}},
	}
	out := Emit(Lower(body))
	require.Equal(t, body, out)
}

func TestEmitCycleTerminates(t *testing.T) {
	g := &Graph{Entry: 0, Blocks: []*Block{
		{ID: 0, Terminator: &GotoTerm{Target: 1}},
		{ID: 1, Terminator: &GotoTerm{Target: 0}},
	}}
	require.NotPanics(t, func() {
		out := Emit(g)
		require.Empty(t, out)
	})
}
