// Package rules holds the declarative award requirement schema and the
// evaluator that checks an operator's log against it.
//
// Two historical document shapes exist in the awards table. The legacy form
// is a bare JSON array of filter predicates; the structured form is an object
// with basic constraints, filters, scoring logic, targets, deduplication and
// thresholds. ParseDocument converts either shape into one internal Schema so
// the evaluator only ever sees the structured representation.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"hamawards/internal/adif"
	"hamawards/internal/common"
)

// Logic selects how surviving records turn into a score.
type Logic string

const (
	LogicCollection Logic = "collection" // count distinct targets
	LogicPoints     Logic = "points"     // sum per-mode weights
)

// Dedup is the rule-scoped deduplication policy, applied to the filtered
// candidate set before scoring. Independent of ingest-time deduplication.
type Dedup string

const (
	DedupNone         Dedup = "none"
	DedupCall         Dedup = "call"
	DedupCallBand     Dedup = "call_band"
	DedupCallBandMode Dedup = "call_band_mode"
)

// Filter is one predicate over a record field. All filters are ANDed.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// UnmarshalJSON tolerates numeric filter values, which legacy documents
// stored as JSON numbers rather than strings.
func (f *Filter) UnmarshalJSON(b []byte) error {
	var raw struct {
		Field    string          `json:"field"`
		Operator string          `json:"operator"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	f.Field = raw.Field
	f.Operator = raw.Operator
	if len(raw.Value) == 0 || bytes.Equal(raw.Value, []byte("null")) {
		f.Value = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Value, &s); err == nil {
		f.Value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.Value, &n); err != nil {
		return fmt.Errorf("filter value: %w", err)
	}
	f.Value = n.String()
	return nil
}

// Basic holds the date window and the QSL requirement. Absent bounds leave
// the window open on that side.
type Basic struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	QSLRequired bool   `json:"qslRequired"`
}

// Targets describes what a collection award collects. List is an optional
// comma-separated allow-list for the plain target types.
type Targets struct {
	Type string `json:"type"`
	List string `json:"list"`
}

// Scoring holds per-mode-class weights, meaningful under points logic only.
type Scoring struct {
	CW    float64 `json:"cw"`
	Phone float64 `json:"phone"`
	Data  float64 `json:"data"`
}

// Threshold is one achievement level. Levels are resolved in ascending
// Value order; the achieved level is the highest one the score reaches.
type Threshold struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Schema is the internal, normalized award requirement definition.
type Schema struct {
	Basic         Basic       `json:"basic"`
	Filters       []Filter    `json:"filters"`
	Logic         Logic       `json:"logic"`
	Targets       Targets     `json:"targets"`
	Scoring       Scoring     `json:"scoring"`
	Deduplication Dedup       `json:"deduplication"`
	Thresholds    []Threshold `json:"thresholds"`
}

// schemaDoc mirrors the stored structured document. Pointer fields let us
// tell "absent" from "zero" when applying defaults.
type schemaDoc struct {
	V2            bool        `json:"v2"`
	Basic         Basic       `json:"basic"`
	Filters       []Filter    `json:"filters"`
	Logic         string      `json:"logic"`
	Targets       Targets     `json:"targets"`
	Scoring       *Scoring    `json:"scoring"`
	Deduplication string      `json:"deduplication"`
	Thresholds    []Threshold `json:"thresholds"`
}

var targetTypes = map[string]struct{}{
	"any": {},
	"callsign": {}, "dxcc": {}, "grid": {}, "iota": {}, "state": {},
	"any_dxcc": {}, "any_grid": {}, "any_iota": {}, "any_state": {},
}

// ParseDocument decodes a stored rules document, accepting both the legacy
// flat filter array and the structured form. Structural problems are
// reported as common.ErrInvalidRules so callers can distinguish a
// misconfigured award from an ineligible operator.
func ParseDocument(doc []byte) (*Schema, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return legacySchema(nil), nil
	}

	if trimmed[0] == '[' {
		var filters []Filter
		if err := json.Unmarshal(trimmed, &filters); err != nil {
			return nil, fmt.Errorf("%w: legacy filter array: %v", common.ErrInvalidRules, err)
		}
		return legacySchema(filters), nil
	}

	var d schemaDoc
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidRules, err)
	}

	s := &Schema{
		Basic:      d.Basic,
		Filters:    d.Filters,
		Logic:      Logic(d.Logic),
		Targets:    d.Targets,
		Thresholds: d.Thresholds,
	}
	s.Basic.StartDate = adif.CanonicalDate(s.Basic.StartDate)
	s.Basic.EndDate = adif.CanonicalDate(s.Basic.EndDate)

	switch s.Logic {
	case LogicCollection, LogicPoints:
	case "":
		return nil, fmt.Errorf("%w: missing logic mode", common.ErrInvalidRules)
	default:
		return nil, fmt.Errorf("%w: unknown logic %q", common.ErrInvalidRules, d.Logic)
	}

	if s.Targets.Type == "" {
		s.Targets.Type = "any"
	}
	if _, ok := targetTypes[s.Targets.Type]; !ok {
		return nil, fmt.Errorf("%w: unknown target type %q", common.ErrInvalidRules, s.Targets.Type)
	}

	if d.Scoring != nil {
		s.Scoring = *d.Scoring
	} else {
		s.Scoring = Scoring{CW: 1, Phone: 1, Data: 1}
	}

	switch Dedup(d.Deduplication) {
	case DedupNone, DedupCall, DedupCallBand, DedupCallBandMode:
		s.Deduplication = Dedup(d.Deduplication)
	case "":
		s.Deduplication = DedupNone
	default:
		// "qso" was the old name for the full-slot policy.
		if d.Deduplication == "qso" {
			s.Deduplication = DedupCallBandMode
		} else {
			return nil, fmt.Errorf("%w: unknown deduplication %q", common.ErrInvalidRules, d.Deduplication)
		}
	}

	if len(s.Thresholds) == 0 {
		s.Thresholds = defaultThresholds()
	}
	sort.SliceStable(s.Thresholds, func(i, j int) bool {
		return s.Thresholds[i].Value < s.Thresholds[j].Value
	})

	return s, nil
}

// legacySchema wraps a bare filter array in the structured shape: collection
// logic over any QSO with a single one-contact level.
func legacySchema(filters []Filter) *Schema {
	return &Schema{
		Filters:       filters,
		Logic:         LogicCollection,
		Targets:       Targets{Type: "any"},
		Scoring:       Scoring{CW: 1, Phone: 1, Data: 1},
		Deduplication: DedupNone,
		Thresholds:    defaultThresholds(),
	}
}

func defaultThresholds() []Threshold {
	return []Threshold{{Name: "Award", Value: 1}}
}

// allowList splits the comma-separated target allow-list into trimmed,
// uppercased entries. Empty when no list is configured.
func (t Targets) allowList() []string {
	if strings.TrimSpace(t.List) == "" {
		return nil
	}
	var out []string
	for _, e := range strings.Split(t.List, ",") {
		if e = strings.ToUpper(strings.TrimSpace(e)); e != "" {
			out = append(out, e)
		}
	}
	return out
}
