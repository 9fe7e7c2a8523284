package bindgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tsubalang/tsubac/internal/schema"
)

// Report is the binding-generation skipped-report (spec §6): every
// declaration the lenient extractor demoted rather than bound, grouped so
// a human reviewing a failed or partial extraction can see at a glance
// what the facade is missing and why.
type Report struct {
	Schema  int            `json:"schema"`
	Crate   string         `json:"crate"`
	Skipped []SkippedEntry `json:"skipped"`
}

// NewReport collects skipped entries under one crate name, sorted for
// deterministic output.
func NewReport(crate string, skipped []SkippedEntry) *Report {
	out := append([]SkippedEntry(nil), skipped...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return &Report{Schema: schema.BindingsReportV1, Crate: crate, Skipped: out}
}

// Save writes the report as deterministic, indented JSON.
func (r *Report) Save(path string) error {
	data, err := schema.MarshalDeterministic(r)
	if err != nil {
		return fmt.Errorf("marshal skipped report: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	return os.WriteFile(path, append(buf.Bytes(), '\n'), 0o644)
}
