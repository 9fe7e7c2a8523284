package module

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsubalang/tsubac/internal/errors"
)

func TestAddAssignsIdentFromBasename(t *testing.T) {
	ix := NewIndex()
	e, err := ix.Add("src/UserAccount.ts")
	require.NoError(t, err)
	require.Equal(t, "useraccount", e.Ident)
	require.Equal(t, "src/UserAccount.ts", e.File)
}

func TestAddIsIdempotentForSameFile(t *testing.T) {
	ix := NewIndex()
	a, err := ix.Add("src/foo.ts")
	require.NoError(t, err)
	b, err := ix.Add("src/foo.ts")
	require.NoError(t, err)
	require.Same(t, a, b)
}

func TestAddRejectsIdentCollision(t *testing.T) {
	ix := NewIndex()
	_, err := ix.Add("src/a/util.ts")
	require.NoError(t, err)

	_, err = ix.Add("src/b/util.ts")
	require.Error(t, err)

	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.FniModuleIdentCollision, ce.Code)
}

func TestEntriesAreSortedByFile(t *testing.T) {
	ix := NewIndex()
	_, _ = ix.Add("src/z.ts")
	_, _ = ix.Add("src/a.ts")
	_, _ = ix.Add("src/m.ts")

	entries := ix.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, "src/a.ts", entries[0].File)
	require.Equal(t, "src/m.ts", entries[1].File)
	require.Equal(t, "src/z.ts", entries[2].File)
}

func TestIdentFromPathHandlesLeadingDigitAndSpecialChars(t *testing.T) {
	require.Equal(t, "_2fast", identFromPath("src/2fast.ts"))
	require.Equal(t, "my_module", identFromPath("src/my-module.ts"))
}
