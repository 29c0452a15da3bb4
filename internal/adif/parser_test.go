package adif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleRecord(t *testing.T) {
	input := "<eoh><call:4>BA1A<band:3>20M<mode:3>FT8<qso_date:8>20240101<eor>"

	records := Parse(input)

	require.Len(t, records, 1)
	assert.Equal(t, Fields{
		"call":     "BA1A",
		"band":     "20M",
		"mode":     "FT8",
		"qso_date": "20240101",
	}, records[0])
}

func TestParse_HeaderIsIgnored(t *testing.T) {
	input := "Generated by some logger\n<adif_ver:5>3.1.4\n<programid:4>test\n<EOH>\n" +
		"<call:4>JA1X<band:3>40M<eor>"

	records := Parse(input)

	require.Len(t, records, 1)
	assert.Equal(t, "JA1X", records[0]["call"])
	// Header tags must not leak into the record.
	assert.NotContains(t, records[0], "adif_ver")
	assert.NotContains(t, records[0], "programid")
}

func TestParse_NoHeaderTerminator(t *testing.T) {
	records := Parse("<call:4>BA1A<band:3>20M<eor>")
	assert.Empty(t, records)
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("<eoh>"))
}

func TestParse_MarkersAreCaseInsensitive(t *testing.T) {
	input := "<EoH><call:4>BA1A<EOR><call:4>JA1X<eor>"

	records := Parse(input)

	require.Len(t, records, 2)
	assert.Equal(t, "BA1A", records[0]["call"])
	assert.Equal(t, "JA1X", records[1]["call"])
}

func TestParse_RecordWithoutCallDiscarded(t *testing.T) {
	input := "<eoh><band:3>20M<mode:2>CW<eor><call:4>BA1A<eor>"

	records := Parse(input)

	require.Len(t, records, 1)
	assert.Equal(t, "BA1A", records[0]["call"])
}

func TestParse_LastRecordWithoutEOR(t *testing.T) {
	input := "<eoh><call:4>BA1A<eor><call:4>JA1X<band:3>15M"

	records := Parse(input)

	require.Len(t, records, 2)
	assert.Equal(t, "JA1X", records[1]["call"])
	assert.Equal(t, "15M", records[1]["band"])
}

func TestParse_TagWithTypeMarker(t *testing.T) {
	input := "<eoh><call:4:S>BA1A<qso_date:8:D>20240101<eor>"

	records := Parse(input)

	require.Len(t, records, 1)
	assert.Equal(t, "BA1A", records[0]["call"])
	assert.Equal(t, "20240101", records[0]["qso_date"])
}

func TestParse_MalformedTagsSkipped(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing length", "<eoh><call>garbage<call:4>BA1A<eor>"},
		{"non-numeric length", "<eoh><band:xx>20M<call:4>BA1A<eor>"},
		{"truncated payload", "<eoh><call:4>BA1A<comment:999>short<eor>"},
		{"unclosed tag", "<eoh><call:4>BA1A<band:3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records := Parse(tc.input)
			require.Len(t, records, 1)
			assert.Equal(t, "BA1A", records[0]["call"])
		})
	}
}

func TestParse_ExactLengthPayload(t *testing.T) {
	// Declared length wins over the distance to the next '<'.
	input := "<eoh><call:4>BA1AX trailing junk<band:3>20M<eor>"

	records := Parse(input)

	require.Len(t, records, 1)
	assert.Equal(t, "BA1A", records[0]["call"])
	assert.Equal(t, "20M", records[0]["band"])
}

func TestParse_ValuesTrimmed(t *testing.T) {
	input := "<eoh><call:6>BA1A  <name:5> Ivan<eor>"

	records := Parse(input)

	require.Len(t, records, 1)
	assert.Equal(t, "BA1A", records[0]["call"])
	assert.Equal(t, "Ivan", records[0]["name"])
}

func TestParse_FieldsNeverCrossRecordBoundary(t *testing.T) {
	// band belongs to the second record only.
	input := "<eoh><call:4>BA1A<eor><call:4>JA1X<band:3>20M<eor>"

	records := Parse(input)

	require.Len(t, records, 2)
	assert.NotContains(t, records[0], "band")
	assert.Equal(t, "20M", records[1]["band"])
}

func TestParse_AllRecordsHaveCall(t *testing.T) {
	input := "<eoh><call:4>BA1A<eor><mode:2>CW<eor><call:4>JA1X<eor><band:3>20M<eor>"

	for _, r := range Parse(input) {
		assert.NotEmpty(t, r["call"])
	}
}
