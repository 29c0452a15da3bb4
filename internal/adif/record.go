package adif

import "strings"

// ModeClass groups the many ADIF operating modes into the three classes
// award scoring distinguishes.
type ModeClass string

const (
	ClassCW    ModeClass = "cw"
	ClassPhone ModeClass = "phone"
	ClassDigi  ModeClass = "data"
)

var phoneModes = map[string]struct{}{
	"SSB": {}, "AM": {}, "FM": {}, "USB": {}, "LSB": {},
}

// ClassifyMode maps a raw mode string to its class: CW is CW, the analog
// voice modes are phone, everything else counts as digital.
func ClassifyMode(mode string) ModeClass {
	m := strings.ToUpper(strings.TrimSpace(mode))
	if m == "CW" {
		return ClassCW
	}
	if _, ok := phoneModes[m]; ok {
		return ClassPhone
	}
	return ClassDigi
}

// Record is one normalized contact. Typed fields carry canonical forms of
// the tags the award engine cares about; Fields preserves every tag exactly
// as parsed so rule filters can reference anything the log contained.
type Record struct {
	Call    string
	Band    string
	Mode    string
	Date    string // YYYYMMDD
	Time    string
	DXCC    string
	Country string
	Grid    string
	IOTA    string
	State   string
	QSL     bool
	Fields  Fields
}

// Normalize builds a Record from raw fields. It never fails: missing tags
// become empty strings and the raw field map is always non-nil.
func Normalize(f Fields) Record {
	if f == nil {
		f = Fields{}
	}
	return Record{
		Call:    strings.ToUpper(f["call"]),
		Band:    strings.ToUpper(f["band"]),
		Mode:    strings.ToUpper(f["mode"]),
		Date:    CanonicalDate(f["qso_date"]),
		Time:    f["time_on"],
		DXCC:    f["dxcc"],
		Country: f["country"],
		Grid:    strings.ToUpper(f["gridsquare"]),
		IOTA:    strings.ToUpper(f["iota"]),
		State:   strings.ToUpper(f["state"]),
		QSL:     qslConfirmed(f),
		Fields:  f,
	}
}

// qslConfirmed reports whether any of the confirmation tags marks the
// contact as confirmed (card received or verified).
func qslConfirmed(f Fields) bool {
	for _, tag := range []string{"qsl_rcvd", "lotw_qsl_rcvd", "eqsl_qsl_rcvd"} {
		switch strings.ToUpper(f[tag]) {
		case "Y", "V":
			return true
		}
	}
	return false
}

// CanonicalDate strips separators from a date string so both ADIF dates
// (20240101) and ISO dates (2024-01-01) compare as the same 8-digit form.
func CanonicalDate(s string) string {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "-/.") {
		var b strings.Builder
		for _, r := range s {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
	return s
}

// DedupKey is the natural ingest uniqueness key within one operator's log:
// call, band, mode, date and time. Storage enforces the same tuple with a
// unique index; this form is used for in-batch bookkeeping.
func (r Record) DedupKey() string {
	return strings.Join([]string{r.Call, r.Band, r.Mode, r.Date, r.Time}, "|")
}

// Lookup resolves a rule filter field name: typed canonical fields first,
// then the raw tag map. Explicit two-tier lookup, no reflection.
func (r Record) Lookup(field string) string {
	switch strings.ToLower(field) {
	case "call", "callsign":
		return r.Call
	case "band":
		return r.Band
	case "mode":
		return r.Mode
	case "qso_date", "date":
		return r.Date
	case "time_on":
		return r.Time
	case "dxcc":
		return r.DXCC
	case "country":
		return r.Country
	case "gridsquare", "grid":
		return r.Grid
	case "iota":
		return r.IOTA
	case "state":
		return r.State
	}
	return r.Fields[strings.ToLower(field)]
}
