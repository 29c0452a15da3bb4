package rules

import (
	"sort"
	"strconv"
	"strings"

	"hamawards/internal/adif"
)

// TargetMatch pairs an achieved target key with the record that satisfied it.
type TargetMatch struct {
	Key    string      `json:"key"`
	Record adif.Record `json:"record"`
}

// Breakdown explains a collection verdict: which targets were reached and,
// when an allow-list is configured, which entries are still missing.
type Breakdown struct {
	Achieved []TargetMatch `json:"achieved"`
	Missing  []string      `json:"missing,omitempty"`
}

// Verdict is the transient result of evaluating a schema against one
// operator's record set. ClaimedLevels is populated by the caller from the
// issuance ledger, not computed here.
type Verdict struct {
	Score         float64     `json:"score"`
	Thresholds    []Threshold `json:"required_for_each_level"`
	AchievedLevel *Threshold  `json:"achieved_level"`
	Eligible      bool        `json:"eligible"`
	MatchedCount  int         `json:"matched_count"`
	Breakdown     *Breakdown  `json:"breakdown,omitempty"`
	ClaimedLevels []string    `json:"claimed_levels"`
}

// Evaluate runs the schema against the record set and produces a verdict.
// It is a pure function of its inputs: for a fixed schema and record order
// the result is identical across calls. Malformed data the schema tolerates
// (absent thresholds, unmapped modes) degrades gracefully; structural schema
// problems are rejected earlier, in ParseDocument.
func Evaluate(s *Schema, records []adif.Record, includeBreakdown bool) *Verdict {
	survivors := filterRecords(s, records)

	type unit struct {
		key string // target key, empty under the "any" target
		rec adif.Record
	}

	allow := s.Targets.allowList()
	allowSet := make(map[string]struct{}, len(allow))
	for _, e := range allow {
		allowSet[e] = struct{}{}
	}

	var units []unit
	for _, r := range survivors {
		key, ok := targetKey(s.Targets, r, allowSet)
		if !ok {
			continue
		}
		units = append(units, unit{key: key, rec: r})
	}

	// Rule-scoped deduplication keeps the first-seen record per collapse key,
	// so the breakdown always shows the earliest stored contact.
	if s.Deduplication != DedupNone {
		seen := make(map[string]struct{}, len(units))
		kept := units[:0]
		for _, u := range units {
			ck := collapseKey(s.Deduplication, u.rec)
			if _, dup := seen[ck]; dup {
				continue
			}
			seen[ck] = struct{}{}
			kept = append(kept, u)
		}
		units = kept
	}

	v := &Verdict{
		Thresholds:    s.Thresholds,
		MatchedCount:  len(units),
		ClaimedLevels: []string{},
	}

	switch s.Logic {
	case LogicPoints:
		for _, u := range units {
			switch adif.ClassifyMode(u.rec.Mode) {
			case adif.ClassCW:
				v.Score += s.Scoring.CW
			case adif.ClassPhone:
				v.Score += s.Scoring.Phone
			case adif.ClassDigi:
				v.Score += s.Scoring.Data
			}
		}
	default: // collection
		if s.Targets.Type == "any" {
			v.Score = float64(len(units))
		} else {
			distinct := make(map[string]adif.Record, len(units))
			for _, u := range units {
				if u.key == "" {
					continue
				}
				if _, ok := distinct[u.key]; !ok {
					distinct[u.key] = u.rec
				}
			}
			v.Score = float64(len(distinct))
			if includeBreakdown {
				v.Breakdown = buildBreakdown(distinct, allow)
			}
		}
	}

	v.AchievedLevel = resolveLevel(s.Thresholds, v.Score)
	v.Eligible = v.AchievedLevel != nil
	return v
}

// filterRecords applies the date window, the QSL requirement and every
// predicate filter, in schema order. A record passes an empty filter list
// vacuously.
func filterRecords(s *Schema, records []adif.Record) []adif.Record {
	var out []adif.Record
	for _, r := range records {
		if s.Basic.StartDate != "" && r.Date < s.Basic.StartDate {
			continue
		}
		if s.Basic.EndDate != "" && r.Date > s.Basic.EndDate {
			continue
		}
		if s.Basic.QSLRequired && !r.QSL {
			continue
		}
		if !matchesAll(s.Filters, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesAll(filters []Filter, r adif.Record) bool {
	for _, f := range filters {
		if !matches(f, r) {
			return false
		}
	}
	return true
}

// matches applies one predicate. gt compares numerically when both sides
// parse as numbers, lexicographically otherwise; contains is a case-sensitive
// substring test. Unknown operators never match.
func matches(f Filter, r adif.Record) bool {
	got := r.Lookup(f.Field)
	switch f.Operator {
	case "eq":
		return got == f.Value
	case "neq":
		return got != f.Value
	case "gt":
		a, errA := strconv.ParseFloat(got, 64)
		b, errB := strconv.ParseFloat(f.Value, 64)
		if errA == nil && errB == nil {
			return a > b
		}
		return got > f.Value
	case "contains":
		return strings.Contains(got, f.Value)
	}
	return false
}

// targetKey resolves the record's target key for the schema's target type.
// The second return is false when the record is excluded outright (allow-list
// miss). Plain target types honor the allow-list; any_* variants count
// distinct values without one.
func targetKey(t Targets, r adif.Record, allow map[string]struct{}) (string, bool) {
	var key string
	switch t.Type {
	case "any":
		return "", true
	case "callsign":
		key = r.Call
	case "dxcc", "any_dxcc":
		key = r.DXCC
	case "grid", "any_grid":
		key = r.Grid
	case "iota", "any_iota":
		key = r.IOTA
	case "state", "any_state":
		key = r.State
	}
	key = strings.ToUpper(strings.TrimSpace(key))
	if len(allow) > 0 && !strings.HasPrefix(t.Type, "any") {
		if _, ok := allow[key]; !ok {
			return "", false
		}
	}
	return key, true
}

func collapseKey(d Dedup, r adif.Record) string {
	switch d {
	case DedupCall:
		return r.Call
	case DedupCallBand:
		return r.Call + "|" + r.Band
	case DedupCallBandMode:
		return r.Call + "|" + r.Band + "|" + r.Mode
	}
	return r.DedupKey()
}

// buildBreakdown lists achieved targets in lexicographic order, plus the
// allow-list entries with no matching record.
func buildBreakdown(distinct map[string]adif.Record, allow []string) *Breakdown {
	b := &Breakdown{Achieved: []TargetMatch{}}
	keys := make([]string, 0, len(distinct))
	for k := range distinct {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.Achieved = append(b.Achieved, TargetMatch{Key: k, Record: distinct[k]})
	}
	for _, e := range allow {
		if _, ok := distinct[e]; !ok {
			b.Missing = append(b.Missing, e)
		}
	}
	return b
}

// resolveLevel returns the highest threshold the score reaches, assuming
// thresholds are sorted ascending by required value.
func resolveLevel(ts []Threshold, score float64) *Threshold {
	var achieved *Threshold
	for i := range ts {
		if score >= ts[i].Value {
			achieved = &ts[i]
		}
	}
	return achieved
}
