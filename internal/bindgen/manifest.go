// Package bindgen implements the binding extractor (SPEC_FULL.md §4.9,
// spec §6): given a native (target-language) package, it produces a
// declarations-only facade package the rest of the compile can import
// against, plus a bindings manifest recording what was extracted and a
// skipped-report recording what the lenient parser gave up on.
//
// The manifest's Load/Save/Validate/digest shape is carried over almost
// line for line from the teacher's example manifest (internal/manifest);
// only the JSON schema itself changes, from AILANG's example-status table
// to the crate/module/binding shape this spec defines.
package bindgen

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tsubalang/tsubac/internal/schema"
)

// CrateInfo describes the native package a bindings manifest was extracted
// from. Exactly one of Version or Path is set: a registry dependency
// pins Version, a local/path dependency pins Path.
type CrateInfo struct {
	Name     string   `json:"name"`
	Package  string   `json:"package,omitempty"`
	Version  string   `json:"version,omitempty"`
	Path     string   `json:"path,omitempty"`
	Features []string `json:"features,omitempty"`
}

// FunctionBinding is one extracted free function or associated function
// signature, in enough detail for the import resolver and host lowering
// to type-check a call against it. Params/Returns are already rewritten
// into source-language type syntax (§4.4's table plus the native-specific
// shortcuts §4.9 names), not left in native crate syntax. ParamNames holds
// the native signature's own parameter names (positional, same length as
// Params) purely for rendering a readable facade; nothing downstream of
// the facade keys on them.
type FunctionBinding struct {
	Name       string   `json:"name"`
	Generics   []string `json:"generics,omitempty"`
	Params     []string `json:"params"`
	ParamNames []string `json:"paramNames,omitempty"`
	Returns    string   `json:"returns"`
}

// Field is one `pub` struct field, source-typed the same way
// FunctionBinding's params are.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Variant is one enum variant. Non-unit variants lose their payload on
// extraction (reported to the skipped-report under kind "enum") and survive
// only as a payload-less member, per §4.9.
type Variant struct {
	Name string `json:"name"`
}

// Method is one impl- or trait-attached function. Kind distinguishes how
// the facade and the import resolver should treat it: "constructor" (impl
// `new`/`new_`, or a struct's public fields when no explicit constructor
// method exists) produces the class's constructor; "instance" requires a
// receiver argument at the call site; "static" does not. Trait methods are
// "instance" when they take a self receiver and "static" otherwise.
// Params excludes the receiver; ParamNames is the receiver-excluded native
// parameter names, kept for facade rendering only (see FunctionBinding).
type Method struct {
	Name       string   `json:"name"`
	Generics   []string `json:"generics,omitempty"`
	Params     []string `json:"params"`
	ParamNames []string `json:"paramNames,omitempty"`
	Returns    string   `json:"returns"`
	Kind       string   `json:"kind"` // "constructor" | "instance" | "static"
}

// TypeBinding is one extracted struct/enum/trait declaration: name, generic
// arity, and — per §4.9 — its public fields (structs), variants (enums), and
// attached methods (impl blocks for structs, declared methods for traits),
// so the facade can render a full declaration instead of an opaque stub.
type TypeBinding struct {
	Name     string    `json:"name"`
	Generics []string  `json:"generics,omitempty"`
	Kind     string    `json:"kind"` // "struct" | "enum" | "trait"
	Fields   []Field   `json:"fields,omitempty"`   // struct only
	Variants []Variant `json:"variants,omitempty"` // enum only
	Methods  []Method  `json:"methods,omitempty"`  // struct (via impl) or trait
}

// ValueBinding is one extracted `pub const`, source-typed the same way
// FunctionBinding's params are.
type ValueBinding struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ModuleBindings is everything extracted from one native source module.
type ModuleBindings struct {
	Functions []FunctionBinding `json:"functions,omitempty"`
	Values    []ValueBinding    `json:"values,omitempty"`
	Types     []TypeBinding     `json:"types,omitempty"`
}

// SkippedEntry records one declaration (or part of one) the extractor
// declined to bind, per spec §9 Open Question 2 and §4.9: rather than
// failing the whole extraction run, anything the lenient parser can't
// confidently sign is demoted here. Kind is one of:
//
//   - "reexport" — a `pub use` statement that could not be resolved against
//     this run's extracted symbol table
//   - "macro" — a `macro_rules!` definition
//   - "unparsed" — a malformed or unrecognized top-level item
//   - "type" — a declaration shape this extractor does not bind the body of
//     (currently: tuple struct fields)
//   - "generic" — a lifetime or const-generic parameter, which has no
//     facade representation
//   - "enum" — a non-unit enum variant, whose payload is dropped
//   - "trait" — a trait feature this extractor does not represent (currently:
//     supertrait bounds)
//   - "trait-method" — a trait method this extractor rejects or cannot parse
//     (optional parameters, or a malformed signature)
//   - "impl" — an impl block (or one of its methods) that could not be
//     attached to a bound type
//   - "param" — a single parameter, field, return, or const type that has no
//     source-syntax equivalent (raw pointers, `dyn Trait`, `impl Trait`)
type SkippedEntry struct {
	Module string `json:"module"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// Manifest is the bindings manifest written to disk alongside the
// generated facade package (spec §6). Its integer `schema` field is
// schema.BindingsV1, defined in internal/schema.
type Manifest struct {
	Schema  int                        `json:"schema"`
	Kind    string                     `json:"kind"` // always "crate"
	Digest  string                     `json:"digest"`
	Crate   CrateInfo                  `json:"crate"`
	Modules map[string]*ModuleBindings `json:"modules"`
}

// New creates an empty manifest for the given crate.
func New(crate CrateInfo) *Manifest {
	return &Manifest{
		Schema:  schema.BindingsV1,
		Kind:    "crate",
		Crate:   crate,
		Modules: make(map[string]*ModuleBindings),
	}
}

// Module returns (creating if absent) the ModuleBindings for a module path.
func (m *Manifest) Module(path string) *ModuleBindings {
	mb, ok := m.Modules[path]
	if !ok {
		mb = &ModuleBindings{}
		m.Modules[path] = mb
	}
	return mb
}

// Load reads and validates a bindings manifest from disk.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bindings manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse bindings manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("bindings manifest validation failed: %w", err)
	}
	return &m, nil
}

// Save recomputes the digest and writes the manifest as deterministic,
// indented JSON.
func (m *Manifest) Save(path string) error {
	m.UpdateDigest()

	data, err := schema.MarshalDeterministic(m)
	if err != nil {
		return fmt.Errorf("marshal bindings manifest: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	return os.WriteFile(path, append(buf.Bytes(), '\n'), 0o644)
}

// Validate checks schema compatibility, the closed "crate" kind, and that
// the crate identifies a dependency exactly one way.
func (m *Manifest) Validate() error {
	if m.Schema != schema.BindingsV1 {
		return fmt.Errorf("unsupported bindings schema: %d (expected %d)", m.Schema, schema.BindingsV1)
	}
	if m.Kind != "crate" {
		return fmt.Errorf("unsupported bindings kind: %q", m.Kind)
	}
	if m.Crate.Name == "" {
		return fmt.Errorf("crate.name is required")
	}
	if m.Crate.Version != "" && m.Crate.Path != "" {
		return fmt.Errorf("crate %q has both version and path set", m.Crate.Name)
	}
	if m.Crate.Version == "" && m.Crate.Path == "" {
		return fmt.Errorf("crate %q has neither version nor path set", m.Crate.Name)
	}
	if m.Digest != "" {
		want := m.computeDigest()
		if m.Digest != want {
			return fmt.Errorf("digest mismatch: got %s, want %s", m.Digest, want)
		}
	}
	return nil
}

// UpdateDigest recomputes and stores the manifest's content digest.
func (m *Manifest) UpdateDigest() {
	m.Digest = m.computeDigest()
}

// computeDigest hashes the sorted module names and their signatures, so
// the digest is a function of content, not of the map iteration order
// that produced it.
func (m *Manifest) computeDigest() string {
	names := make([]string, 0, len(m.Modules))
	for name := range m.Modules {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	fmt.Fprintf(h, "%s:%s\n", m.Crate.Name, m.Crate.Version+m.Crate.Path)
	for _, name := range names {
		mb := m.Modules[name]
		fmt.Fprintf(h, "module:%s\n", name)
		for _, fn := range mb.Functions {
			fmt.Fprintf(h, "  fn:%s(%v)->%s\n", fn.Name, fn.Params, fn.Returns)
		}
		for _, v := range mb.Values {
			fmt.Fprintf(h, "  const:%s:%s\n", v.Name, v.Type)
		}
		for _, ty := range mb.Types {
			fmt.Fprintf(h, "  type:%s:%s fields=%v variants=%v\n", ty.Kind, ty.Name, ty.Fields, ty.Variants)
			for _, m := range ty.Methods {
				fmt.Fprintf(h, "    method:%s:%s(%v)->%s\n", m.Kind, m.Name, m.Params, m.Returns)
			}
		}
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))[:16]
}
