// Package adif parses the Amateur Data Interchange Format and normalizes
// parsed records into the typed form the rest of the server works with.
//
// ADIF is a tagged text format: a header terminated by <eoh>, followed by
// records of <field:length>value pairs terminated by <eor>. Real-world logs
// are messy, so the parser is deliberately forgiving: malformed tags are
// skipped, unparseable records are dropped, and no input ever causes an
// error to escape to the caller.
package adif

import (
	"strconv"
	"strings"
)

// Fields is a raw ADIF record: lowercased tag names mapped to trimmed values.
type Fields map[string]string

const (
	headerEnd = "<eoh>"
	recordEnd = "<eor>"
)

// Parse splits the input into raw records. Content before the (case-insensitive)
// end-of-header marker is ignored; if the marker is absent, no records are
// returned. Records that lack a call field are discarded.
func Parse(input string) []Fields {
	lower := strings.ToLower(input)

	idx := strings.Index(lower, headerEnd)
	if idx < 0 {
		return nil
	}
	body := input[idx+len(headerEnd):]
	lowerBody := lower[idx+len(headerEnd):]

	var records []Fields
	for {
		var chunk string
		end := strings.Index(lowerBody, recordEnd)
		if end < 0 {
			chunk = body
		} else {
			chunk = body[:end]
			body = body[end+len(recordEnd):]
			lowerBody = lowerBody[end+len(recordEnd):]
		}

		if f := parseRecord(chunk); f["call"] != "" {
			records = append(records, f)
		}
		if end < 0 {
			return records
		}
	}
}

// parseRecord scans one record chunk for <name:length[:type]> tags and reads
// exactly length characters of payload after each closing '>'. Tags with a
// missing or non-numeric length, and tags whose payload is truncated, are
// skipped; the scan resumes after their closing '>'.
func parseRecord(chunk string) Fields {
	fields := Fields{}
	for {
		open := strings.IndexByte(chunk, '<')
		if open < 0 {
			return fields
		}
		chunk = chunk[open+1:]
		end := strings.IndexByte(chunk, '>')
		if end < 0 {
			return fields
		}
		tag := chunk[:end]
		chunk = chunk[end+1:]

		name, length, ok := splitTag(tag)
		if !ok {
			continue
		}
		if length > len(chunk) {
			continue
		}
		value := chunk[:length]
		chunk = chunk[length:]
		fields[strings.ToLower(name)] = strings.TrimSpace(value)
	}
}

// splitTag parses "name:length" or "name:length:type". The type marker is
// accepted and ignored.
func splitTag(tag string) (name string, length int, ok bool) {
	parts := strings.SplitN(tag, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return "", 0, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return parts[0], n, true
}
