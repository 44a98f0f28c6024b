package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyIndex indicates the header declares zero records.
var ErrEmptyIndex = errors.New("index header declares zero lines")

// CountMismatchError indicates Line-Count disagrees with the records.
type CountMismatchError struct {
	Header  int
	Records int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("header line count %d does not match %d records", e.Header, e.Records)
}

// MissingArchivesError lists indexed paths that are absent from the corpus.
type MissingArchivesError struct {
	Paths []string
}

func (e *MissingArchivesError) Error() string {
	return fmt.Sprintf("%d indexed archives missing from corpus: %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

// UnindexedArchivesError lists newest corpus archives that no record points
// at.
type UnindexedArchivesError struct {
	Paths []string
}

func (e *UnindexedArchivesError) Error() string {
	return fmt.Sprintf("%d corpus archives not in index: %s", len(e.Paths), strings.Join(e.Paths, ", "))
}
