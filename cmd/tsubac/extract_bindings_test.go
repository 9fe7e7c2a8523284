package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newExtractBindingsTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: extractBindingsCmd.Use}
	cmd.Flags().String("out", "bindings", "")
	cmd.Flags().String("crate-name", "", "")
	cmd.Flags().String("crate-version", "", "")
	cmd.Flags().String("crate-path", "", "")
	cmd.Flags().Bool("verbose", false, "")
	return cmd
}

func TestRunExtractBindingsWritesFacadeAndManifest(t *testing.T) {
	nativeDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(nativeDir, "geometry.rs"), []byte(`
pub fn add(a: i64, b: i64) -> i64 {
    a + b
}

pub struct Point {
    x: i64,
}
`), 0o644))

	out := filepath.Join(t.TempDir(), "out")
	cmd := newExtractBindingsTestCmd()
	require.NoError(t, cmd.Flags().Set("out", out))
	require.NoError(t, cmd.Flags().Set("crate-name", "geometry_native"))
	require.NoError(t, cmd.Flags().Set("crate-version", "1.0.0"))

	require.NoError(t, runExtractBindings(cmd, []string{nativeDir}))

	facade, err := os.ReadFile(filepath.Join(out, "geometry.tsu"))
	require.NoError(t, err)
	require.Contains(t, string(facade), "Point")

	manifest, err := os.ReadFile(filepath.Join(out, "tsubac-bindings.json"))
	require.NoError(t, err)
	require.Contains(t, string(manifest), "geometry_native")

	_, err = os.ReadFile(filepath.Join(out, "skipped-report.json"))
	require.NoError(t, err)
}

func TestRunExtractBindingsRejectsBothVersionAndPath(t *testing.T) {
	cmd := newExtractBindingsTestCmd()
	require.NoError(t, cmd.Flags().Set("crate-name", "x"))
	require.NoError(t, cmd.Flags().Set("crate-version", "1.0.0"))
	require.NoError(t, cmd.Flags().Set("crate-path", "../x"))

	err := runExtractBindings(cmd, []string{t.TempDir()})
	require.Error(t, err)
}
