// Package parsers provides the delimited-text record parser and streaming helpers.
//
// A data line is parsed in two steps. MaskQuotedDelimiters protects delimiters that sit
// inside a "double" or 'single' quoted span, then ParseLine splits the line, trims each
// value, restores the protected delimiters and coerces the value to int64, float64 or
// string. Quotes are kept in the value; only whitespace is trimmed.
//
// ParseDelimited streams a whole file: the first line is the header, the remaining lines
// are read sequentially and parsed on a pool of workers. Like every streaming parser in
// this package it returns a records channel and an errors channel.
//
// Callers must consume both channels to avoid goroutine leaks.
//
// Example usage:
//
//	file, _ := os.Open("cars.csv")
//	defer file.Close()
//	header, records, errors := parsers.ParseDelimited(ctx, file, parsers.DefaultStreamOptions())
//
//	go func() {
//	    for err := range errors {
//	        log.Printf("CSV error: %v", err)
//	    }
//	}()
//
//	for record := range records {
//	    fmt.Println(parsers.FormatRecord(record, header))
//	}
//
// Records are emitted in input order when StreamOptions.Ordered is set. Without it the
// order across lines is whatever order the workers finish in.
//
// ParseNDJSON and WriteNDJSON store and reload records without losing the distinction
// between integer and float values.
package parsers
