// Package sourcemap emits the span-carrying comment grammar internal/writer
// prefixes onto generated statements and, given the final target text,
// recovers it into a queryable map (spec §4.2, §6). The map file itself is
// the same deterministic-JSON-plus-schema-tag shape as the bindings
// manifest in internal/bindgen, grounded on the same
// Load/Save/MarshalDeterministic pattern.
package sourcemap

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tsubalang/tsubac/internal/schema"
	"github.com/tsubalang/tsubac/internal/span"
)

// CommentPrefix is the fixed tag every emitted span comment carries:
// `// <prefix>-span: <file>:<start>:<end>`.
const CommentPrefix = "tsubac"

var commentRE = regexp.MustCompile(`^\s*//\s*` + regexp.QuoteMeta(CommentPrefix) + `-span:\s*(.+):(\d+):(\d+)\s*$`)

// Comment renders the span comment text (without a trailing newline) that
// internal/writer emits immediately before the statement locating at.
func Comment(at span.Span) string {
	return fmt.Sprintf("// %s-span: %s:%d:%d", CommentPrefix, at.File, at.Start, at.End)
}

// Entry is one resolved target-line -> source-span mapping.
type Entry struct {
	TargetLine   int    `json:"targetLine"`
	TargetColumn int    `json:"targetColumn"`
	SourceFile   string `json:"sourceFile"`
	SourceStart  int    `json:"sourceStart"`
	SourceEnd    int    `json:"sourceEnd"`
}

// Map is the parsed, queryable source map for one emitted target file.
type Map struct {
	Schema  int     `json:"schema"`
	Kind    string  `json:"kind"`
	Entries []Entry `json:"entries"`
}

const kindTargetSourceMap = "target-source-map"

// Parse scans target text line by line and returns an ordered Map: every
// span comment locates the statement immediately following it, so the
// entry's TargetLine is the comment's own line plus one, TargetColumn is
// always 1 (spec §4.2).
func Parse(targetText string) (*Map, error) {
	m := &Map{Schema: schema.SourceMapV1, Kind: kindTargetSourceMap}
	scanner := bufio.NewScanner(strings.NewReader(targetText))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		match := commentRE.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		start, err := strconv.Atoi(match[2])
		if err != nil {
			return nil, fmt.Errorf("sourcemap: malformed span comment at line %d: %w", line, err)
		}
		end, err := strconv.Atoi(match[3])
		if err != nil {
			return nil, fmt.Errorf("sourcemap: malformed span comment at line %d: %w", line, err)
		}
		m.Entries = append(m.Entries, Entry{
			TargetLine:   line + 1,
			TargetColumn: 1,
			SourceFile:   span.NormalizeFile(match[1]),
			SourceStart:  start,
			SourceEnd:    end,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sourcemap: scan target text: %w", err)
	}
	sort.Slice(m.Entries, func(i, j int) bool { return m.Entries[i].TargetLine < m.Entries[j].TargetLine })
	return m, nil
}

// Lookup returns the entry with the largest TargetLine <= queried line, and
// whether one was found (false if line precedes every recorded entry).
func (m *Map) Lookup(line int) (Entry, bool) {
	best := -1
	for i, e := range m.Entries {
		if e.TargetLine <= line {
			best = i
		} else {
			break
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return m.Entries[best], true
}

// Save writes the map as deterministic, schema-tagged JSON.
func (m *Map) Save(path string) error {
	raw, err := schema.MarshalDeterministic(m)
	if err != nil {
		return fmt.Errorf("sourcemap: marshal: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("sourcemap: indent: %w", err)
	}
	pretty.WriteByte('\n')
	return os.WriteFile(path, pretty.Bytes(), 0o644)
}

// Load reads a map file written by Save.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sourcemap: read %s: %w", path, err)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("sourcemap: parse %s: %w", path, err)
	}
	if m.Schema != schema.SourceMapV1 {
		return nil, fmt.Errorf("sourcemap: %s: unsupported schema %d", path, m.Schema)
	}
	return &m, nil
}
