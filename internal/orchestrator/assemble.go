package orchestrator

import (
	"github.com/tsubalang/tsubac/internal/lower"
	"github.com/tsubalang/tsubac/internal/targetir"
)

// flatten concatenates one file's lowered item groups in the fixed order
// lower.FileItems documents: use, then alias, then trait, then
// struct/enum/impl, then helper function.
func flatten(fi *lower.FileItems) []targetir.Item {
	items := make([]targetir.Item, 0, len(fi.Uses)+len(fi.Aliases)+len(fi.Traits)+len(fi.Structs)+len(fi.Functions))
	items = append(items, fi.Uses...)
	items = append(items, fi.Aliases...)
	items = append(items, fi.Traits...)
	items = append(items, fi.Structs...)
	items = append(items, fi.Functions...)
	return items
}

// extractMain pulls the FnItem named "main" out of items, if present,
// returning the remaining items and the extracted function (nil if items
// carries no such function). lower.Collect validates up front that
// exactly one `main` exists across the whole compile, so callers only
// need to keep scanning file-by-file until this returns non-nil.
func extractMain(items []targetir.Item) ([]targetir.Item, *targetir.FnItem) {
	for i, it := range items {
		if fn, ok := it.(*targetir.FnItem); ok && fn.Name == "main" {
			rest := make([]targetir.Item, 0, len(items)-1)
			rest = append(rest, items[:i]...)
			rest = append(rest, items[i+1:]...)
			return rest, fn
		}
	}
	return items, nil
}
