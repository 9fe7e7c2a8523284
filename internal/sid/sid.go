// Package sid computes stable identifiers used to name synthesized target
// items — most importantly the anonymous structs host lowering generates
// for object-literal types, which need a name that is the same across
// re-compiles of the same source tree regardless of where that tree is
// checked out (see SPEC_FULL.md §8, relocation invariance).
package sid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tsubalang/tsubac/internal/span"
)

// SID is a short stable identifier derived from a source location and a
// disambiguating kind/path, rendered as a lowercase hex string.
type SID string

// New computes a stable ID over a normalized span and a node kind/child
// path. Only the span's already-relocation-invariant file name (forward
// slashes, project-relative, no symlink or working-directory resolution)
// enters the hash, so the result does not depend on where the project is
// checked out or which machine compiled it.
func New(at span.Span, kind string, childPath []int) SID {
	parts := make([]string, 0, 4+len(childPath))
	parts = append(parts, at.File, fmt.Sprintf("%d", at.Start), fmt.Sprintf("%d", at.End), kind)
	for _, idx := range childPath {
		parts = append(parts, fmt.Sprintf("%d", idx))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return SID(hex.EncodeToString(sum[:])[:16])
}

// AnonName derives the `Anon_<hash>` struct name spec §4.6/§9 requires for
// an object literal's synthesized target type.
func AnonName(at span.Span, childPath []int) string {
	return "Anon_" + string(New(at, "object-literal", childPath))
}
