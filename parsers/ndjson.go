package parsers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// ParseNDJSON reads NDJSON (newline-delimited JSON) from io.Reader and streams records via channel.
// Each line should be a valid JSON object. Numbers come back as int64 when written without
// a fraction or exponent and as float64 otherwise, so records written by WriteNDJSON keep
// their value types.
// Returns two channels: one for records, one for errors
// Caller must consume both channels to avoid goroutine leak
func ParseNDJSON(reader io.Reader) (<-chan Record, <-chan error) {
	records := make(chan Record, 100) // Buffered for better throughput
	errors := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errors)

		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

		for scanner.Scan() {
			line := scanner.Bytes()

			// Skip empty lines
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			var raw map[string]any
			dec := json.NewDecoder(bytes.NewReader(line))
			dec.UseNumber()
			if err := dec.Decode(&raw); err != nil {
				// Send error but continue processing
				errors <- err
				continue
			}

			record := make(Record, len(raw))
			for k, v := range raw {
				record[k] = fromJSON(v)
			}
			records <- record
		}

		// Check for scanner errors (e.g., line too long)
		if err := scanner.Err(); err != nil {
			errors <- err
		}
	}()

	return records, errors
}

func fromJSON(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return s
}

// WriteNDJSON writes the record as one JSON object line with keys in fields order.
// Floats always carry a fraction or exponent so ParseNDJSON reads them back as float64.
func WriteNDJSON(w io.Writer, record Record, fields []string) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
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
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		switch v := value.(type) {
		case int64:
			buf.WriteString(strconv.FormatInt(v, 10))
		case float64:
			buf.WriteString(formatFloat(v))
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return err
			}
			buf.Write(encoded)
		}
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}
