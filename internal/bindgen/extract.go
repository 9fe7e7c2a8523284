package bindgen

import (
	"fmt"
	"sort"
	"strings"
)

// pendingReexport is a `pub use path::symbol [as name];` statement captured
// during a single module's extraction but not yet resolved: resolving it
// requires the full crate's module map, which only ExtractCrate has.
type pendingReexport struct {
	Module string // the re-exporting module
	Path   string // the `path::symbol` text as written, minus the `pub use`
	As     string // local rename, empty if none
}

// ExtractModule performs a lenient scan of one native source file's public
// surface: free functions and consts, struct/enum/trait declarations with
// their fields/variants/methods, and impl blocks attaching methods to the
// struct or enum they target. It recognizes the item shapes spec §4.9 names
// and demotes everything else it can't confidently bind to a SkippedEntry
// instead of failing the whole run.
//
// `pub use` re-exports and `pub mod name;` submodule declarations cannot be
// resolved from a single file in isolation — re-exports need the full
// crate's extracted symbol table, and submodules need the filesystem to
// find their source file. Both are instead returned to the caller
// (ExtractCrate) as reexports and submodules respectively; a file extracted
// on its own (e.g. via a direct ExtractModule call with no crate walk) will
// see its re-exports fall through to the unresolved-reexport branch and its
// submodule names simply not followed.
//
// This is intentionally not a full parser for the target language: the
// native crate is already-compiled, trusted code, and the extractor only
// needs enough of its public signatures to let the rest of the toolchain
// type-check calls into it.
func ExtractModule(modulePath, source string) (mb *ModuleBindings, skipped []SkippedEntry, submodules []string, reexports []pendingReexport) {
	mb = &ModuleBindings{}

	typesByName := map[string]*TypeBinding{}
	var typeOrder []*TypeBinding
	var implItems []string

	for _, it := range splitItems(stripComments(source)) {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}

		if strings.HasPrefix(it, "impl") && (strings.HasPrefix(it, "impl ") || strings.HasPrefix(it, "impl<")) {
			implItems = append(implItems, it)
			continue
		}
		if strings.HasPrefix(it, "macro_rules!") {
			skipped = append(skipped, SkippedEntry{Module: modulePath, Kind: "macro", Reason: "macro definitions are not bound"})
			continue
		}
		if !strings.HasPrefix(it, "pub ") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(it, "pub "))

		switch {
		case strings.HasPrefix(rest, "fn ") || strings.HasPrefix(rest, "async fn ") || strings.HasPrefix(rest, "const fn "):
			sig, ok := parseSignature(rest)
			if !ok {
				skipped = append(skipped, SkippedEntry{Module: modulePath, Kind: "unparsed", Reason: "malformed function signature"})
				continue
			}
			skipped = append(skipped, sig.skipped(modulePath, sig.Name)...)
			mb.Functions = append(mb.Functions, FunctionBinding{
				Name: sig.Name, Generics: sig.Generics, Params: sig.Params, ParamNames: sig.ParamNames, Returns: sig.Returns,
			})

		case strings.HasPrefix(rest, "struct "):
			ty, sk := extractStruct(modulePath, strings.TrimPrefix(rest, "struct "))
			skipped = append(skipped, sk...)
			typesByName[ty.Name] = ty
			typeOrder = append(typeOrder, ty)

		case strings.HasPrefix(rest, "enum "):
			ty, sk := extractEnum(modulePath, strings.TrimPrefix(rest, "enum "))
			skipped = append(skipped, sk...)
			typesByName[ty.Name] = ty
			typeOrder = append(typeOrder, ty)

		case strings.HasPrefix(rest, "trait "):
			ty, sk := extractTrait(modulePath, strings.TrimPrefix(rest, "trait "))
			skipped = append(skipped, sk...)
			typesByName[ty.Name] = ty
			typeOrder = append(typeOrder, ty)

		case strings.HasPrefix(rest, "use "):
			path := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(rest, "use "), ";"))
			alias := ""
			if idx := strings.LastIndex(path, " as "); idx >= 0 {
				alias = strings.TrimSpace(path[idx+len(" as "):])
				path = strings.TrimSpace(path[:idx])
			}
			reexports = append(reexports, pendingReexport{Module: modulePath, Path: path, As: alias})

		case strings.HasPrefix(rest, "mod "):
			name := strings.TrimSpace(strings.TrimPrefix(rest, "mod "))
			if strings.HasSuffix(name, ";") {
				submodules = append(submodules, strings.TrimSuffix(name, ";"))
			} else {
				skipped = append(skipped, SkippedEntry{
					Module: modulePath, Kind: "unparsed",
					Reason: "inline `pub mod { ... }` bodies are not traversed, only `pub mod name;` file declarations",
				})
			}

		case strings.HasPrefix(rest, "const "):
			v, ok := parseConstSignature(rest)
			if !ok {
				skipped = append(skipped, SkippedEntry{Module: modulePath, Kind: "unparsed", Reason: "malformed const declaration"})
				continue
			}
			if !v.resolved {
				skipped = append(skipped, SkippedEntry{Module: modulePath, Name: v.Name, Kind: "param", Reason: fmt.Sprintf("const %q has a type not representable in source syntax", v.Name)})
			}
			mb.Values = append(mb.Values, ValueBinding{Name: v.Name, Type: v.Type})
		}
	}

	for _, it := range implItems {
		skipped = append(skipped, extractImpl(modulePath, it, typesByName)...)
	}

	for _, ty := range typeOrder {
		mb.Types = append(mb.Types, *ty)
	}
	sortModuleBindings(mb)

	return mb, skipped, submodules, reexports
}

func sortModuleBindings(mb *ModuleBindings) {
	sort.Slice(mb.Functions, func(i, j int) bool { return mb.Functions[i].Name < mb.Functions[j].Name })
	sort.Slice(mb.Values, func(i, j int) bool { return mb.Values[i].Name < mb.Values[j].Name })
	sort.Slice(mb.Types, func(i, j int) bool {
		if mb.Types[i].Kind != mb.Types[j].Kind {
			return mb.Types[i].Kind < mb.Types[j].Kind
		}
		return mb.Types[i].Name < mb.Types[j].Name
	})
}

// extractStruct parses a struct's generics and, for a brace-bodied struct,
// its `pub` fields. Tuple structs report their fields as skipped (kind
// "type"): positional-only fields have no name to bind a facade property to.
func extractStruct(modulePath, rest string) (*TypeBinding, []SkippedEntry) {
	head, bodyPart := parseDeclHead(rest)
	ty := &TypeBinding{Name: head.Name, Generics: head.Generics, Kind: "struct"}
	skipped := head.skipped(modulePath, head.Name)

	switch {
	case strings.HasPrefix(bodyPart, "{") && strings.HasSuffix(bodyPart, "}"):
		inner := bodyPart[1 : len(bodyPart)-1]
		for _, f := range splitTopLevel(inner, ',') {
			f = strings.TrimSpace(f)
			if f == "" || !strings.HasPrefix(f, "pub ") {
				continue
			}
			f = strings.TrimSpace(strings.TrimPrefix(f, "pub "))
			colon := strings.Index(f, ":")
			if colon < 0 {
				continue
			}
			name := strings.TrimSpace(f[:colon])
			typ, ok := lowerNativeType(strings.TrimSpace(f[colon+1:]))
			if !ok {
				skipped = append(skipped, SkippedEntry{Module: modulePath, Name: name, Kind: "param", Reason: fmt.Sprintf("field %q has a type not representable in source syntax", name)})
			}
			ty.Fields = append(ty.Fields, Field{Name: name, Type: typ})
		}
	case strings.HasPrefix(bodyPart, "("):
		skipped = append(skipped, SkippedEntry{Module: modulePath, Name: head.Name, Kind: "type", Reason: "tuple struct fields are not extracted"})
	}
	return ty, skipped
}

// extractEnum parses an enum's generics and variants. Unit variants lower
// to payload-less members directly; non-unit variants also lower to a
// payload-less member (per §4.9) but are additionally reported skipped
// under kind "enum" since their payload is dropped.
func extractEnum(modulePath, rest string) (*TypeBinding, []SkippedEntry) {
	head, bodyPart := parseDeclHead(rest)
	ty := &TypeBinding{Name: head.Name, Generics: head.Generics, Kind: "enum"}
	skipped := head.skipped(modulePath, head.Name)

	if strings.HasPrefix(bodyPart, "{") && strings.HasSuffix(bodyPart, "}") {
		inner := bodyPart[1 : len(bodyPart)-1]
		for _, v := range splitTopLevel(inner, ',') {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			name := v
			payload := false
			if p := strings.IndexAny(v, "({"); p >= 0 {
				name = strings.TrimSpace(v[:p])
				payload = true
			}
			ty.Variants = append(ty.Variants, Variant{Name: name})
			if payload {
				skipped = append(skipped, SkippedEntry{Module: modulePath, Name: name, Kind: "enum", Reason: "non-unit variant payload is not extracted"})
			}
		}
	}
	return ty, skipped
}

// extractTrait parses a trait's generics, drops any supertrait bound clause
// (reported under kind "trait"), and parses its declared methods. A method
// with an optional (defaulted) parameter is rejected outright per §4.9.
func extractTrait(modulePath, rest string) (*TypeBinding, []SkippedEntry) {
	rest, hadBounds := stripSupertraitBounds(rest)
	head, bodyPart := parseDeclHead(rest)
	ty := &TypeBinding{Name: head.Name, Generics: head.Generics, Kind: "trait"}
	skipped := head.skipped(modulePath, head.Name)
	if hadBounds {
		skipped = append(skipped, SkippedEntry{Module: modulePath, Name: head.Name, Kind: "trait", Reason: "supertrait bounds are not represented in the facade"})
	}

	if !(strings.HasPrefix(bodyPart, "{") && strings.HasSuffix(bodyPart, "}")) {
		return ty, skipped
	}
	inner := bodyPart[1 : len(bodyPart)-1]
	for _, chunk := range splitItems(inner) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		plain := strings.TrimPrefix(chunk, "pub ")
		if !(strings.HasPrefix(plain, "fn ") || strings.HasPrefix(plain, "async fn ")) {
			continue // associated consts/types inside traits are not bound
		}
		sig, ok := parseSignature(plain)
		if !ok {
			skipped = append(skipped, SkippedEntry{Module: modulePath, Name: head.Name, Kind: "trait-method", Reason: "malformed trait method signature"})
			continue
		}
		if sig.HasDefault {
			skipped = append(skipped, SkippedEntry{Module: modulePath, Name: sig.Name, Kind: "trait-method", Reason: "optional parameters are not supported on trait methods"})
			continue
		}
		skipped = append(skipped, sig.skipped(modulePath, sig.Name)...)
		kind := "static"
		if sig.SelfKind != "" {
			kind = "instance"
		}
		ty.Methods = append(ty.Methods, Method{Name: sig.Name, Generics: sig.Generics, Params: sig.Params, ParamNames: sig.ParamNames, Returns: sig.Returns, Kind: kind})
	}
	return ty, skipped
}

// extractImpl parses `impl [Trait for] Type { ... }`, attaching each `pub`
// method to the already-extracted TypeBinding named Type. An impl for a
// type this module never declared `pub` is reported skipped (kind "impl")
// since there is no facade declaration to attach its methods to.
func extractImpl(modulePath, it string, typesByName map[string]*TypeBinding) []SkippedEntry {
	rest := strings.TrimSpace(strings.TrimPrefix(it, "impl"))
	if strings.HasPrefix(rest, "<") {
		if end := matchAngle(rest); end >= 0 {
			rest = strings.TrimSpace(rest[end+1:])
		}
	}
	bodyStart := strings.Index(rest, "{")
	if bodyStart < 0 || !strings.HasSuffix(rest, "}") {
		return nil
	}
	header := strings.TrimSpace(rest[:bodyStart])
	inner := rest[bodyStart+1 : len(rest)-1]

	target := header
	if idx := strings.Index(header, " for "); idx >= 0 {
		target = strings.TrimSpace(header[idx+len(" for "):])
	}
	if g := strings.Index(target, "<"); g >= 0 {
		target = strings.TrimSpace(target[:g])
	}

	ty, ok := typesByName[target]
	if !ok {
		return []SkippedEntry{{
			Module: modulePath, Name: target, Kind: "impl",
			Reason: fmt.Sprintf("impl block for %q has no matching pub struct/enum in this module", target),
		}}
	}

	var skipped []SkippedEntry
	for _, chunk := range splitItems(inner) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" || !strings.HasPrefix(chunk, "pub ") {
			continue
		}
		plain := strings.TrimPrefix(chunk, "pub ")
		if !(strings.HasPrefix(plain, "fn ") || strings.HasPrefix(plain, "async fn ") || strings.HasPrefix(plain, "const fn ")) {
			continue
		}
		sig, ok := parseSignature(plain)
		if !ok {
			skipped = append(skipped, SkippedEntry{Module: modulePath, Name: target, Kind: "impl", Reason: "malformed method signature in impl block"})
			continue
		}
		skipped = append(skipped, sig.skipped(modulePath, sig.Name)...)
		kind := "static"
		switch {
		case sig.SelfKind != "":
			kind = "instance"
		case sig.Name == "new" || strings.HasPrefix(sig.Name, "new_"):
			kind = "constructor"
		}
		ty.Methods = append(ty.Methods, Method{Name: sig.Name, Generics: sig.Generics, Params: sig.Params, ParamNames: sig.ParamNames, Returns: sig.Returns, Kind: kind})
	}
	return skipped
}

// signature is the shared parse result for a free function, impl method, or
// trait method — the three forms that share `fn name<G>(params) -> R` shape
// but differ in what, if anything, is attached as a receiver.
type signature struct {
	Name          string
	Generics      []string
	Params        []string
	ParamNames    []string
	Returns       string
	SelfKind      string // "", "ref", "mutref", "owned"
	HasDefault    bool
	paramIssues   []string
	genericIssues []string
}

func (s signature) skipped(modulePath, ownerName string) []SkippedEntry {
	var out []SkippedEntry
	for _, g := range s.genericIssues {
		out = append(out, SkippedEntry{Module: modulePath, Name: ownerName, Kind: "generic", Reason: fmt.Sprintf("lifetime/const-generic parameter %q is not bound", g)})
	}
	for _, p := range s.paramIssues {
		out = append(out, SkippedEntry{Module: modulePath, Name: ownerName, Kind: "param", Reason: fmt.Sprintf("parameter type %q is not representable in source syntax", p)})
	}
	return out
}

// parseSignature extracts a function-like item's name, generic parameters,
// receiver (if any), parameter type list, and return type from
// `fn name<G>(p: T, ...) -> R` (or `async fn`/`const fn`), up to the first
// `{` or `;`. Parameter and return types are rewritten to source syntax via
// lowerNativeType.
func parseSignature(rest string) (signature, bool) {
	rest = strings.TrimPrefix(rest, "async ")
	rest = strings.TrimPrefix(rest, "const ")
	rest = strings.TrimPrefix(rest, "fn ")

	if end := strings.IndexAny(rest, "{;"); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimSpace(rest)

	open := strings.Index(rest, "(")
	if open < 0 {
		return signature{}, false
	}
	nameGen := strings.TrimSpace(rest[:open])
	name := nameGen
	var generics, genericIssues []string
	if g := strings.Index(nameGen, "<"); g >= 0 {
		name = strings.TrimSpace(nameGen[:g])
		inner := strings.TrimSuffix(nameGen[g+1:], ">")
		for _, p := range splitTopLevel(inner, ',') {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if strings.HasPrefix(p, "'") || strings.HasPrefix(p, "const ") {
				genericIssues = append(genericIssues, p)
				continue
			}
			if c := strings.IndexAny(p, ":="); c >= 0 {
				p = strings.TrimSpace(p[:c])
			}
			generics = append(generics, p)
		}
	}

	body := rest[open+1:]
	close := matchParen(body)
	if close < 0 {
		return signature{}, false
	}
	rawParams := splitTopLevel(body[:close], ',')
	tail := strings.TrimSpace(body[close+1:])

	returns := "void"
	var returnIssue bool
	if strings.HasPrefix(tail, "->") {
		r, ok := lowerNativeType(strings.TrimSpace(strings.TrimPrefix(tail, "->")))
		returns = r
		returnIssue = !ok
	}

	selfKind, rawParams := takeReceiver(rawParams)

	var params, paramNames []string
	var paramIssues []string
	var hasDefault bool
	for i, p := range rawParams {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "=") {
			hasDefault = true
		}
		raw := p
		paramName := fmt.Sprintf("p%d", i)
		if colon := strings.Index(p, ":"); colon >= 0 {
			paramName = strings.TrimSpace(p[:colon])
			raw = strings.TrimSpace(p[colon+1:])
		}
		typ, ok := lowerNativeType(raw)
		if !ok {
			paramIssues = append(paramIssues, raw)
		}
		params = append(params, typ)
		paramNames = append(paramNames, paramName)
	}
	if returnIssue {
		paramIssues = append(paramIssues, "-> "+strings.TrimSpace(strings.TrimPrefix(tail, "->")))
	}

	return signature{
		Name: name, Generics: generics, Params: params, ParamNames: paramNames, Returns: returns,
		SelfKind: selfKind, HasDefault: hasDefault,
		paramIssues: paramIssues, genericIssues: genericIssues,
	}, name != ""
}

// takeReceiver splits a Rust-style `&self`/`&mut self`/`self` receiver off
// the front of a raw (not yet type-extracted) parameter list.
func takeReceiver(rawParams []string) (selfKind string, rest []string) {
	if len(rawParams) == 0 {
		return "", rawParams
	}
	switch strings.TrimSpace(rawParams[0]) {
	case "&self":
		return "ref", rawParams[1:]
	case "&mut self":
		return "mutref", rawParams[1:]
	case "self":
		return "owned", rawParams[1:]
	default:
		return "", rawParams
	}
}

type constValue struct {
	Name     string
	Type     string
	resolved bool
}

// parseConstSignature extracts `const NAME: TYPE = ...;`'s name and type.
func parseConstSignature(rest string) (constValue, bool) {
	rest = strings.TrimPrefix(rest, "const ")
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return constValue{}, false
	}
	name := strings.TrimSpace(rest[:colon])
	tail := rest[colon+1:]
	end := strings.IndexAny(tail, "=;")
	if end < 0 {
		end = len(tail)
	}
	typ, ok := lowerNativeType(strings.TrimSpace(tail[:end]))
	return constValue{Name: name, Type: typ, resolved: ok}, name != ""
}

// declHead is a parsed `Name<G1, G2, ...>` declaration header, shared by
// struct/enum/trait extraction.
type declHead struct {
	Name          string
	Generics      []string
	genericIssues []string
}

func (h declHead) skipped(modulePath, ownerName string) []SkippedEntry {
	var out []SkippedEntry
	for _, g := range h.genericIssues {
		out = append(out, SkippedEntry{Module: modulePath, Name: ownerName, Kind: "generic", Reason: fmt.Sprintf("lifetime/const-generic parameter %q is not bound", g)})
	}
	return out
}

// parseDeclHead splits `Name<G, ...> <rest>` into its header (name plus
// bound generics; lifetime/const-generic params are reported separately)
// and the unparsed remainder starting at the body delimiter (`{`, `(`, or
// `;`), which the caller interprets according to what kind of declaration
// this is.
func parseDeclHead(s string) (declHead, string) {
	end := strings.IndexAny(s, "{(;")
	if end < 0 {
		end = len(s)
	}
	head := strings.TrimSpace(s[:end])
	rest := strings.TrimSpace(s[end:])

	name := head
	var generics, genericIssues []string
	if g := strings.Index(head, "<"); g >= 0 {
		name = strings.TrimSpace(head[:g])
		inner := strings.TrimSuffix(strings.TrimSpace(head[g+1:]), ">")
		for _, p := range splitTopLevel(inner, ',') {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if strings.HasPrefix(p, "'") || strings.HasPrefix(p, "const ") {
				genericIssues = append(genericIssues, p)
				continue
			}
			if c := strings.IndexAny(p, ":="); c >= 0 {
				p = strings.TrimSpace(p[:c])
			}
			generics = append(generics, p)
		}
	}
	return declHead{Name: name, Generics: generics, genericIssues: genericIssues}, rest
}

// stripSupertraitBounds removes a `: Bound + Bound` supertrait clause
// between a trait's name/generics and its body, which this facade-oriented
// extractor does not represent in the declaration it emits.
func stripSupertraitBounds(rest string) (string, bool) {
	depth := 0
	for i, r := range rest {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case '{', '(', ';':
			return rest, false
		case ':':
			if depth == 0 {
				tail := rest[i:]
				end := strings.IndexAny(tail, "{(;")
				if end < 0 {
					return rest, false
				}
				return rest[:i] + tail[end:], true
			}
		}
	}
	return rest, false
}

// matchParen returns the index of the ')' matching the '(' implicitly
// already consumed at the start of s, accounting for nested parens.
func matchParen(s string) int {
	depth := 1
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchAngle returns the index of the '>' matching the '<' at the start of
// s, accounting for nesting.
func matchAngle(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// angle-bracket, paren, or brace groups (so `Vec<A, B>` is one parameter,
// not two, and an enum variant's `{ x: T, y: U }` payload is one variant).
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '<', '(', '{':
			depth++
		case '>', ')', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// splitItems splits a source body into top-level declaration chunks: each
// chunk ends either at a top-level `;` or at the `}` that returns brace
// depth to zero. Parens are not tracked for splitting since every
// paren-delimited construct this extractor cares about (parameter lists,
// tuple-struct fields) is itself closed before the item's own terminator.
func splitItems(src string) []string {
	var items []string
	depth := 0
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				items = append(items, strings.TrimSpace(src[start:i+1]))
				start = i + 1
			}
		case ';':
			if depth == 0 {
				items = append(items, strings.TrimSpace(src[start:i+1]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(src[start:]); rest != "" {
		items = append(items, rest)
	}
	return items
}

// stripComments removes `//` and `/* */` comments and `#[...]` attributes,
// leaving string literal contents untouched so brace/paren counts inside a
// string don't get miscounted as nesting depth.
func stripComments(src string) string {
	var b strings.Builder
	i := 0
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "//"):
			if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
				b.WriteByte('\n')
				i += j + 1
			} else {
				i = len(src)
			}
		case strings.HasPrefix(src[i:], "/*"):
			if j := strings.Index(src[i+2:], "*/"); j >= 0 {
				i += j + 4
			} else {
				i = len(src)
			}
		case src[i] == '#' && i+1 < len(src) && src[i+1] == '[':
			depth := 0
			j := i
			for j < len(src) {
				switch src[j] {
				case '[':
					depth++
				case ']':
					depth--
					if depth == 0 {
						j++
						goto doneAttr
					}
				}
				j++
			}
		doneAttr:
			i = j
		case src[i] == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(src) {
				j++
			}
			b.WriteString(src[i:min(j, len(src))])
			i = j
		default:
			b.WriteByte(src[i])
			i++
		}
	}
	return b.String()
}

// splitGenericHead splits `Name<A, B>` into its bare name and top-level
// argument texts; a non-generic name returns no arguments.
func splitGenericHead(t string) (name string, args []string) {
	g := strings.Index(t, "<")
	if g < 0 || !strings.HasSuffix(t, ">") {
		return t, nil
	}
	name = strings.TrimSpace(t[:g])
	inner := t[g+1 : len(t)-1]
	for _, p := range splitTopLevel(inner, ',') {
		p = strings.TrimSpace(p)
		if p != "" {
			args = append(args, p)
		}
	}
	return name, args
}

// lowerNativeType rewrites one native (Rust-shaped) type's text into source
// syntax, through the same table internal/typelower uses for the forward
// direction (primitives pass through; Str/String, Option/Result/Vec/HashMap
// map by name) plus the native-specific shortcuts §4.9 calls out: `Vec<T>`
// collapses to the source array shorthand `T[]`, `&'a [mut] T` becomes
// `refLt`/`mutrefLt` (or `ref`/`mutref` with no lifetime), and `Self` passes
// through unchanged. Forms this extractor has no source-syntax equivalent
// for (raw pointers, `dyn Trait`, `impl Trait`) are returned as their raw
// native text with ok=false so the caller can report them skipped (kind
// "param") rather than silently emit nonsense source syntax.
func lowerNativeType(t string) (string, bool) {
	t = strings.TrimSpace(t)

	switch {
	case strings.HasPrefix(t, "*const ") || strings.HasPrefix(t, "*mut "):
		return t, false
	case strings.HasPrefix(t, "dyn "):
		return t, false
	case strings.HasPrefix(t, "impl "):
		return t, false
	case strings.HasPrefix(t, "&"):
		return lowerNativeRef(t)
	case t == "()":
		return "void", true
	case t == "Self":
		return "Self", true
	}

	name, args := splitGenericHead(t)
	switch name {
	case "str":
		return "Str", true
	case "String", "std::string::String":
		return "String", true
	case "Vec":
		if len(args) == 1 {
			elem, ok := lowerNativeType(args[0])
			return elem + "[]", ok
		}
	case "Option":
		if len(args) == 1 {
			elem, ok := lowerNativeType(args[0])
			return fmt.Sprintf("Option<%s>", elem), ok
		}
	case "Result":
		if len(args) == 2 {
			ok1, o1 := lowerNativeType(args[0])
			err1, o2 := lowerNativeType(args[1])
			return fmt.Sprintf("Result<%s, %s>", ok1, err1), o1 && o2
		}
	case "HashMap", "std::collections::HashMap":
		if len(args) == 2 {
			k, o1 := lowerNativeType(args[0])
			v, o2 := lowerNativeType(args[1])
			return fmt.Sprintf("HashMap<%s, %s>", k, v), o1 && o2
		}
	}

	if primitives[name] {
		return name, true
	}
	if len(args) == 0 {
		return name, true
	}
	mapped := make([]string, len(args))
	ok := true
	for i, a := range args {
		m, o := lowerNativeType(a)
		mapped[i] = m
		if !o {
			ok = false
		}
	}
	return fmt.Sprintf("%s<%s>", name, strings.Join(mapped, ", ")), ok
}

func lowerNativeRef(t string) (string, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(t, "&"))
	lifetime := ""
	if strings.HasPrefix(rest, "'") {
		end := strings.IndexByte(rest, ' ')
		if end < 0 {
			end = len(rest)
		}
		lifetime = strings.TrimPrefix(rest[:end], "'")
		rest = strings.TrimSpace(rest[end:])
	}
	mut := false
	if strings.HasPrefix(rest, "mut ") {
		mut = true
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "mut "))
	}
	elem, ok := lowerNativeType(rest)
	sigil := "ref"
	if mut {
		sigil = "mutref"
	}
	if lifetime != "" {
		return fmt.Sprintf("%sLt<'%s, %s>", sigil, lifetime, elem), ok
	}
	return fmt.Sprintf("%s<%s>", sigil, elem), ok
}

// primitives are the source type names that pass through unchanged; shared
// with internal/typelower's forward table (same names both directions).
var primitives = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true, "bool": true,
}
