package sourcemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsubalang/tsubac/internal/span"
)

func TestCommentRoundTripsThroughParse(t *testing.T) {
	at := span.New("a/b.ts", 10, 20)
	text := Comment(at) + "\nlet x = 1;\n" + Comment(span.New("a/b.ts", 25, 30)) + "\nlet y = 2;\n"

	m, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, m.Entries, 2)
	require.Equal(t, 2, m.Entries[0].TargetLine)
	require.Equal(t, 1, m.Entries[0].TargetColumn)
	require.Equal(t, "a/b.ts", m.Entries[0].SourceFile)
	require.Equal(t, 10, m.Entries[0].SourceStart)
	require.Equal(t, 20, m.Entries[0].SourceEnd)
	require.Equal(t, 4, m.Entries[1].TargetLine)
}

func TestParseIgnoresOrdinaryLines(t *testing.T) {
	m, err := Parse("fn main() {\n    let x = 1;\n}\n")
	require.NoError(t, err)
	require.Empty(t, m.Entries)
}

func TestLookupReturnsLargestTargetLineBelowOrEqual(t *testing.T) {
	m := &Map{Entries: []Entry{
		{TargetLine: 2, SourceFile: "a.ts", SourceStart: 0, SourceEnd: 1},
		{TargetLine: 5, SourceFile: "a.ts", SourceStart: 2, SourceEnd: 3},
	}}

	_, found := m.Lookup(1)
	require.False(t, found)

	e, found := m.Lookup(3)
	require.True(t, found)
	require.Equal(t, 2, e.TargetLine)

	e, found = m.Lookup(100)
	require.True(t, found)
	require.Equal(t, 5, e.TargetLine)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := &Map{Schema: 1, Kind: kindTargetSourceMap, Entries: []Entry{
		{TargetLine: 2, TargetColumn: 1, SourceFile: "a.ts", SourceStart: 0, SourceEnd: 5},
	}}
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, m.Entries, loaded.Entries)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"schema": 1`)
}
