// Package module builds the user module index: the assignment of a target
// module identifier to every source file the compile touches, and the
// collision check Add performs as each file is registered, before any
// `mod ident;` declaration is emitted (spec §4.6).
//
// The source language has no `module` declaration of its own — unlike the
// teacher's AILANG, where this package resolved `module`/`import` paths
// against a standard library and search-path set. Here every source file
// in the user's project becomes exactly one target module, named after
// its basename; the only failure mode is two files whose basenames
// collide once normalized into a valid target identifier.
package module

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/span"
)

// Entry describes one source file's place in the module index.
type Entry struct {
	// File is the project-relative, forward-slash normalized source path.
	File string
	// Ident is the target module identifier derived from File's basename.
	Ident string
}

// Index assigns stable module identifiers to source files and rejects
// collisions. It is safe for concurrent use; in the orchestrator, file
// discovery registers every file before kernel extraction and host
// lowering read the index.
type Index struct {
	mu      sync.Mutex
	byFile  map[string]*Entry
	byIdent map[string]*Entry
}

// NewIndex creates an empty module index.
func NewIndex() *Index {
	return &Index{
		byFile:  make(map[string]*Entry),
		byIdent: make(map[string]*Entry),
	}
}

// Add registers a source file and returns its module identifier. Calling
// Add twice with the same file returns the identifier already assigned.
// Two distinct files that normalize to the same identifier raise
// FniModuleIdentCollision.
func (ix *Index) Add(file string) (*Entry, error) {
	file = span.NormalizeFile(file)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if e, ok := ix.byFile[file]; ok {
		return e, nil
	}

	ident := identFromPath(file)
	if existing, ok := ix.byIdent[ident]; ok {
		return nil, errors.New(
			errors.FniModuleIdentCollision,
			"files \""+existing.File+"\" and \""+file+"\" both normalize to module identifier \""+ident+"\"",
			nil,
		).WithData("identifier", ident).WithData("first", existing.File).WithData("second", file)
	}

	e := &Entry{File: file, Ident: ident}
	ix.byFile[file] = e
	ix.byIdent[ident] = e
	return e, nil
}

// Lookup returns the entry for an already-registered file.
func (ix *Index) Lookup(file string) (*Entry, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	e, ok := ix.byFile[span.NormalizeFile(file)]
	return e, ok
}

// Entries returns every registered entry, ordered by file name so that
// emitted `mod ident;` declarations are stable across runs regardless of
// the order files were discovered and registered in.
func (ix *Index) Entries() []*Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]*Entry, 0, len(ix.byFile))
	for _, e := range ix.byFile {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

// identFromPath derives a target module identifier from a source file's
// basename: strip the extension, lowercase, and replace every byte that
// is not a lowercase ASCII letter, digit, or underscore with an
// underscore. A leading digit is prefixed with an underscore since the
// target language (like Rust) forbids identifiers starting with a digit.
func identFromPath(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(base)

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	ident := b.String()
	if ident == "" {
		return "_"
	}
	if ident[0] >= '0' && ident[0] <= '9' {
		return "_" + ident
	}
	return ident
}
