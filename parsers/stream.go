package parsers

import (
	"bufio"
	"context"
	"io"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MaxLineSize is the longest line the scanner accepts (1MB).
const MaxLineSize = 1024 * 1024

// StreamOptions configures ParseDelimited.
type StreamOptions struct {
	// Delimiter separates fields. Zero means DefaultDelimiter.
	Delimiter byte
	// Workers is the number of goroutines parsing lines. Zero or less means runtime.NumCPU().
	Workers int
	// Ordered emits records in input order. When false, records are emitted as soon as
	// a worker finishes them and their order across lines is not guaranteed.
	Ordered bool
	// Logger receives per-line anomaly reports. Nil means log.Default().
	Logger *log.Logger

	parse LineParser
}

// DefaultStreamOptions returns comma-delimited, order-preserving options with one worker per CPU.
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		Delimiter: DefaultDelimiter,
		Workers:   runtime.NumCPU(),
		Ordered:   true,
	}
}

func (o StreamOptions) withDefaults() StreamOptions {
	if o.Delimiter == 0 {
		o.Delimiter = DefaultDelimiter
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.parse == nil {
		o.parse = ParseLine
	}
	return o
}

type rawLine struct {
	num  int
	text string
}

type parsedLine struct {
	num    int
	record Record
	err    error
}

// ParseDelimited reads the header line synchronously, then parses the remaining lines on
// a pool of workers and streams the records via channel.
// Returns the header plus two channels: one for records, one for non-fatal errors
// (*LineError for degraded lines, and any read error that ends the stream).
// Caller must consume both channels to avoid goroutine leak. Cancelling ctx abandons
// the stream; both channels are then closed.
//
// An empty input or a header with no data lines yields no records and no error.
func ParseDelimited(ctx context.Context, reader io.Reader, opts StreamOptions) ([]string, <-chan Record, <-chan error) {
	opts = opts.withDefaults()
	records := make(chan Record, 100) // Buffered for better throughput
	errors := make(chan error, 10)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			errors <- err
		}
		close(records)
		close(errors)
		return nil, records, errors
	}
	header := ParseHeader(scanner.Text(), opts.Delimiter)

	go func() {
		defer close(records)
		defer close(errors)

		lines := make(chan rawLine, opts.Workers*4)
		results := make(chan parsedLine, opts.Workers*4)

		g, gctx := errgroup.WithContext(ctx)

		// Reading stays sequential, one line at a time
		g.Go(func() error {
			defer close(lines)
			num := 1
			for scanner.Scan() {
				num++
				select {
				case lines <- rawLine{num: num, text: scanner.Text()}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return scanner.Err()
		})

		var workers errgroup.Group
		for i := 0; i < opts.Workers; i++ {
			workers.Go(func() error {
				for l := range lines {
					record, err := ParseLineSafe(l.num, l.text, opts.Delimiter, header, opts.parse)
					select {
					case results <- parsedLine{num: l.num, record: record, err: err}:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
				return nil
			})
		}
		g.Go(func() error {
			defer close(results)
			return workers.Wait()
		})

		emit := func(p parsedLine) bool {
			if p.err != nil {
				opts.Logger.Printf("Error parsing line %d: %v", p.num, p.err)
				select {
				case errors <- p.err:
				case <-gctx.Done():
					return false
				}
			}
			select {
			case records <- p.record:
				return true
			case <-gctx.Done():
				return false
			}
		}

		pending := make(map[int]parsedLine)
		next := 2
	loop:
		for p := range results {
			if !opts.Ordered {
				if !emit(p) {
					break
				}
				continue
			}
			pending[p.num] = p
			for {
				q, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if !emit(q) {
					break loop
				}
			}
		}

		if err := g.Wait(); err != nil && ctx.Err() == nil {
			errors <- err
		}
	}()

	return header, records, errors
}
