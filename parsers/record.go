package parsers

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultDelimiter is the field separator used when none is configured.
const DefaultDelimiter = ','

// ErrMalformedLine marks a line whose values could not be mapped onto the header.
var ErrMalformedLine = errors.New("parsers: malformed line")

// Record represents a single delimited row as a map of field name to coerced value.
// Values are int64, float64 or string.
type Record map[string]any

// String renders the record with sorted keys, e.g. {MAKE=NISSAN, YEAR=2021}.
func (r Record) String() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return FormatRecord(r, keys)
}

// LineError reports a data line that degraded to an empty record.
type LineError struct {
	Line int // 1-based, the header is line 1
	Err  error
}

func (e *LineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("parsers: line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ParseHeader splits the header line into field names. No quote masking and no trimming
// is applied, so a quoted header name containing the delimiter is split in two.
func ParseHeader(line string, delimiter byte) []string {
	return strings.Split(line, string([]byte{delimiter}))
}

// ParseLine turns one data line into a Record keyed by header.
// Missing trailing values become "", surplus values are ignored, and a duplicate
// header name keeps the value of its last occurrence.
func ParseLine(line string, delimiter byte, header []string) Record {
	values := strings.Split(MaskQuotedDelimiters(line, delimiter), string([]byte{delimiter}))

	record := make(Record, len(header))
	for i, name := range header {
		raw := ""
		if i < len(values) {
			raw = values[i]
		}
		raw = strings.TrimSpace(raw)
		record[name] = ParseValue(RestoreDelimiters(raw, delimiter))
	}
	return record
}

// ParseLineSafe runs parse on a line and converts any panic into a *LineError.
// On failure the returned record is empty, never nil.
func ParseLineSafe(lineNum int, line string, delimiter byte, header []string, parse LineParser) (record Record, err error) {
	if parse == nil {
		parse = ParseLine
	}
	defer func() {
		if r := recover(); r != nil {
			record = Record{}
			err = &LineError{Line: lineNum, Err: fmt.Errorf("%w: %v", ErrMalformedLine, r)}
		}
	}()
	return parse(line, delimiter, header), nil
}

// LineParser is the signature shared by ParseLine and its substitutes.
type LineParser func(line string, delimiter byte, header []string) Record

// ParseValue coerces a trimmed raw value into int64, float64 or string, in that order.
// Only whole-string matches count; anything else is returned unchanged. A decimal
// outside the float64 range, such as 1e400, also stays a string.
func ParseValue(value string) any {
	if value == "" {
		return ""
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if isDecimal(value) {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

// isDecimal rejects the forms strconv.ParseFloat accepts beyond plain decimal notation:
// hex floats, Inf, NaN and underscores.
func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.', c == '+', c == '-', c == 'e', c == 'E':
		default:
			return false
		}
	}
	return true
}
