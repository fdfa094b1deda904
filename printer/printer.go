// Package printer opens a delimited file, parses it and writes one rendered record per line.
package printer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"csv-stream-printer/parsers"
)

// Kind classifies the failures a Printer reports to the user.
type Kind int

const (
	KindUnknown Kind = iota
	KindEmptyPath
	KindCannotOpen
)

// User-facing messages, one per Kind.
const (
	MsgEmptyPath  = "the file path you have supplied is empty, please supply a correct file path"
	MsgCannotOpen = "it seems that the file does not exist at the specified file path, please check the file and/or the file path"
	MsgUnknown    = "an unknown error has occurred, please contact your system administrator"
)

// Error is returned by Print. Its message depends only on Kind; the cause is kept in Err.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyPath:
		return MsgEmptyPath
	case KindCannotOpen:
		return MsgCannotOpen
	default:
		return MsgUnknown
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown when err is not a *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// Printer prints the records of a single file.
type Printer struct {
	path string
	opts parsers.StreamOptions
}

// Option customizes a Printer.
type Option func(*Printer)

// WithDelimiter sets the field delimiter.
func WithDelimiter(d byte) Option {
	return func(p *Printer) { p.opts.Delimiter = d }
}

// WithWorkers sets how many lines are parsed concurrently.
func WithWorkers(n int) Option {
	return func(p *Printer) { p.opts.Workers = n }
}

// WithOrdered chooses between input order (true) and completion order (false).
func WithOrdered(ordered bool) Option {
	return func(p *Printer) { p.opts.Ordered = ordered }
}

// WithLogger redirects per-line anomaly logs.
func WithLogger(l *log.Logger) Option {
	return func(p *Printer) { p.opts.Logger = l }
}

// New creates a Printer for path. The path is only checked when Print runs.
func New(path string, options ...Option) *Printer {
	p := &Printer{path: path, opts: parsers.DefaultStreamOptions()}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Path returns the file path the printer was built with.
func (p *Printer) Path() string { return p.path }

// Print writes every record of the file to out as {name=value, ...}, one per line.
// Degraded lines are logged and printed as {}. The file is closed before Print returns,
// including when ctx is cancelled part way through.
func (p *Printer) Print(ctx context.Context, out io.Writer) error {
	if p.path == "" {
		return &Error{Kind: KindEmptyPath}
	}

	file, err := os.Open(p.path)
	if err != nil {
		return &Error{Kind: KindCannotOpen, Err: err}
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Error closing %s: %v", p.path, err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	header, records, errs := parsers.ParseDelimited(ctx, bufio.NewReader(file), p.opts)
	if header == nil {
		// The header could not be read, e.g. the path is a directory. An empty file
		// closes both channels without an error.
		for err := range errs {
			if err != nil {
				return &Error{Kind: KindCannotOpen, Err: fmt.Errorf("read header of %s: %w", p.path, err)}
			}
		}
		return nil
	}

	// Line anomalies are already logged by the parser; only a read failure aborts.
	readErr := make(chan error, 1)
	go func() {
		var first error
		for err := range errs {
			var lineErr *parsers.LineError
			if first == nil && !errors.As(err, &lineErr) {
				first = err
			}
		}
		readErr <- first
	}()

	w := bufio.NewWriter(out)
	var writeErr error
	for record := range records {
		if writeErr != nil {
			continue
		}
		if _, err := fmt.Fprintln(w, parsers.FormatRecord(record, header)); err != nil {
			writeErr = err
			cancel()
		}
	}
	if writeErr == nil {
		writeErr = w.Flush()
	}

	if err := <-readErr; err != nil {
		return &Error{Kind: KindUnknown, Err: fmt.Errorf("read %s: %w", p.path, err)}
	}
	if writeErr != nil {
		return &Error{Kind: KindUnknown, Err: fmt.Errorf("write records: %w", writeErr)}
	}
	return ctx.Err()
}
