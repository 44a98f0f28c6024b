// Package codec reads and writes the 02packages.details.txt text format: a
// block of "Field: value" header lines, a blank line, then one
// whitespace-separated record per line.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/frederic-klein/pkgdetails/internal/index"
	"github.com/frederic-klein/pkgdetails/internal/version"
)

const maxLineSize = 1 << 20

var headerRe = regexp.MustCompile(`^\s*([^:\s][^:]*?)\s*:\s*(.*?)\s*$`)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger that receives malformed-line warnings.
// If nil, a discard logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithIndexOptions sets the options used to construct the decoded index.
// Header fields read from the stream override opts.Header.
func WithIndexOptions(opts index.Options) Option {
	return func(p *Parser) {
		p.opts = opts
	}
}

// Result is a decoded index plus the recoverable problems found on the way.
// Warnings are format irregularities; Rejected holds the records the store
// refused, each wrapped with its line number.
type Result struct {
	Index    *index.PackageIndex
	Warnings []*index.MalformedLineError
	Rejected []error
}

// Err joins the rejected records, or returns nil.
func (r *Result) Err() error {
	return errors.Join(r.Rejected...)
}

// Parser reads an index from an uncompressed stream.
type Parser struct {
	r      io.Reader
	opts   index.Options
	logger *slog.Logger
}

// NewParser creates a new index parser.
func NewParser(r io.Reader, opts ...Option) *Parser {
	p := &Parser{r: r, opts: index.DefaultOptions()}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Decode parses an index from r.
func Decode(r io.Reader, opts ...Option) (*Result, error) {
	return NewParser(r, opts...).Parse()
}

// Parse reads the header block and the records. Header lines without a
// delimiter and records with the wrong number of fields are reported as
// warnings. A record the store rejects is skipped and collected in
// Result.Rejected; only read errors abort the parse.
func (p *Parser) Parse() (*Result, error) {
	res := &Result{}
	header := make(map[string]string)
	lineNo := 0
	inHeader := true

	scanner := bufio.NewScanner(p.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		// Header runs until the first blank line
		if inHeader {
			if strings.TrimSpace(line) == "" {
				inHeader = false
				res.Index = p.build(header)
				continue
			}
			m := headerRe.FindStringSubmatch(line)
			if m == nil {
				p.warn(res, lineNo, line, "header line has no field delimiter")
				continue
			}
			header[index.InternalName(m[1])] = m[2]
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		// Parse: Module::Name \t version \t A/AU/AUTHOR/Dist.tar.gz
		values := strings.Fields(line)
		columns := res.Index.Columns()
		if len(values) != len(columns) {
			p.warn(res, lineNo, line, fmt.Sprintf("expected %d fields, found %d", len(columns), len(values)))
		}

		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if i >= len(values) {
				break
			}
			// undef is how absent values are written; only the key is literal
			if i > 0 && values[i] == version.Undef {
				continue
			}
			fields[col] = values[i]
		}

		if err := res.Index.Add(fields); err != nil {
			res.Rejected = append(res.Rejected, fmt.Errorf("line %d: %w", lineNo, err))
			p.logger.Warn("rejected index record", "line", lineNo, "err", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	// A stream that ends inside the header still yields an (empty) index
	if res.Index == nil {
		res.Index = p.build(header)
	}
	return res, nil
}

func (p *Parser) build(header map[string]string) *index.PackageIndex {
	opts := p.opts
	merged := make(map[string]string, len(opts.Header)+len(header))
	for k, v := range opts.Header {
		merged[k] = v
	}
	for k, v := range header {
		merged[k] = v
	}
	opts.Header = merged
	return index.New(opts)
}

func (p *Parser) warn(res *Result, lineNo int, line, reason string) {
	e := &index.MalformedLineError{Line: lineNo, Text: line, Reason: reason}
	res.Warnings = append(res.Warnings, e)
	p.logger.Warn("malformed index line", "line", lineNo, "reason", reason)
}
