package parsers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatRecord renders a record as {name1=value1, name2=value2} following the order of
// fields. A repeated field name is rendered once, at its first position.
func FormatRecord(record Record, fields []string) string {
	var b strings.Builder
	b.WriteByte('{')
	seen := make(map[string]bool, len(fields))
	for _, name := range fields {
		if seen[name] {
			continue
		}
		seen[name] = true
		value, ok := record[name]
		if !ok {
			continue
		}
		if b.Len() > 1 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(FormatValue(value))
	}
	b.WriteByte('}')
	return b.String()
}

// FormatValue renders a coerced value. Floats always carry a fractional part
// (175 is rendered as 175.0) so they stay distinguishable from integers.
func FormatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
