// Package reconcile checks a package index for internal consistency and
// against the archive files actually present in a CPAN-style corpus.
package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/pkgdetails/internal/index"
)

// Corpus is the set of archive files an index is checked against. Record
// paths are resolved relative to Root, usually $CPAN/authors/id.
type Corpus struct {
	Root  string
	Paths []string
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger for check progress. If nil, a discard logger
// is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// Checker runs the consistency checks. It holds no state between runs.
type Checker struct {
	logger *slog.Logger
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Check runs every check and returns all failures joined, or nil. corpus may
// be nil to skip the corpus checks.
func Check(idx *index.PackageIndex, corpus *Corpus) error {
	return New().Run(idx, corpus).Err()
}

// Report is the outcome of one run.
type Report struct {
	HeaderCount int      `yaml:"header_count"`
	RecordCount int      `yaml:"record_count"`
	CorpusSize  int      `yaml:"corpus_size,omitempty"`
	Missing     []string `yaml:"missing,omitempty"`
	Unindexed   []string `yaml:"unindexed,omitempty"`
	Unparsable  []string `yaml:"unparsable,omitempty"`
	Errors      []string `yaml:"errors,omitempty"`

	errs []error
}

// Err joins the failures of the run.
func (r *Report) Err() error {
	return errors.Join(r.errs...)
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return len(r.errs) == 0
}

// YAML renders the report.
func (r *Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

func (r *Report) fail(err error) {
	r.errs = append(r.errs, err)
	r.Errors = append(r.Errors, err.Error())
}

// Run performs all checks and collects every failure.
func (c *Checker) Run(idx *index.PackageIndex, corpus *Corpus) *Report {
	records := idx.UniqueSorted()
	r := &Report{RecordCount: len(records)}

	c.checkCount(idx, r)

	if corpus == nil {
		return r
	}
	r.CorpusSize = len(corpus.Paths)

	expected := make(map[string]bool, len(records))
	for _, rec := range records {
		expected[filepath.Clean(filepath.Join(corpus.Root, filepath.FromSlash(rec.Path)))] = true
	}
	present := make(map[string]bool, len(corpus.Paths))
	for _, p := range corpus.Paths {
		present[filepath.Clean(p)] = true
	}

	// every record's archive must exist
	for _, rec := range records {
		p := filepath.Join(corpus.Root, filepath.FromSlash(rec.Path))
		if !present[filepath.Clean(p)] {
			r.Missing = append(r.Missing, p)
		}
	}
	if len(r.Missing) > 0 {
		r.fail(&MissingArchivesError{Paths: r.Missing})
	}

	// every newest archive must be indexed
	reduced, unparsable := reduce(corpus.Paths)
	r.Unparsable = unparsable
	c.logger.Debug("reduced corpus", "paths", len(corpus.Paths), "newest", len(reduced), "unparsable", len(unparsable))
	for _, p := range reduced {
		if !expected[filepath.Clean(p)] {
			r.Unindexed = append(r.Unindexed, p)
		}
	}
	if len(r.Unindexed) > 0 {
		r.fail(&UnindexedArchivesError{Paths: r.Unindexed})
	}

	c.logger.Debug("checked corpus", "missing", len(r.Missing), "unindexed", len(r.Unindexed))
	return r
}

func (c *Checker) checkCount(idx *index.PackageIndex, r *Report) {
	raw, err := idx.Get(index.FieldLineCount)
	if err != nil {
		r.fail(fmt.Errorf("header has no Line-Count: %w", err))
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(fmt.Errorf("line count %q is not an integer: %w", raw, err))
		return
	}
	r.HeaderCount = n
	c.logger.Debug("checked line count", "header", n, "records", r.RecordCount)

	if n != r.RecordCount {
		r.fail(&CountMismatchError{Header: n, Records: r.RecordCount})
	}
	if n == 0 {
		r.fail(ErrEmptyIndex)
	}
}
