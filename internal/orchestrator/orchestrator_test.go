package orchestrator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRunMinimalEntry(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.tsu", `export function main(): void { return; }`)

	result, err := Run(Config{EntryFile: entry})
	require.NoError(t, err)
	require.Contains(t, result.MainText, "fn main() {")
	require.Contains(t, result.MainText, "return;")
	require.NotNil(t, result.SourceMap)
	require.Empty(t, result.Kernels)
	require.Empty(t, result.ExternalCrates)
}

func TestRunRejectsEmptyEntryFile(t *testing.T) {
	_, err := Run(Config{})
	require.Error(t, err)
}

func TestRunFollowsRelativeImportAndWrapsModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "helper.tsu", `export function helper(): i32 { return 1; }`)
	entry := writeFile(t, dir, "main.tsu", `
import { helper } from "./helper";
export function main(): void {
	let x: i32 = helper();
	return;
}
`)

	result, err := Run(Config{EntryFile: entry})
	require.NoError(t, err)
	require.Contains(t, result.MainText, "mod helper {")
	require.Contains(t, result.MainText, "use crate::helper::helper;")
	// main is always appended last, after every non-entry module block.
	require.True(t, strings.LastIndex(result.MainText, "fn main()") > strings.Index(result.MainText, "mod helper {"))
}

func TestRunRejectsKernelsWithoutRuntime(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.tsu", `
const Add = kernel({name: "add"} as const, (a: global_ptr<f32>) => {
	return;
});
export function main(): void { return; }
`)

	_, err := Run(Config{EntryFile: entry, RuntimeKind: RuntimeNone})
	require.Error(t, err)
}

func TestRunEmitsSpanComments(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.tsu", `export function main(): void { return; }`)

	result, err := Run(Config{EntryFile: entry})
	require.NoError(t, err)
	require.Contains(t, result.MainText, "tsubac-span:")
	require.NotEmpty(t, result.SourceMap.Entries)
}
