package index

import "fmt"

// MissingRequiredFieldError is returned by Add when the primary key column
// is absent or empty.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// DuplicateKeyError is returned by Add in only-once mode when the package is
// already present, whatever its version.
type DuplicateKeyError struct {
	Package  string
	Existing string
	Version  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("package %s already present at version %s, cannot add version %s",
		e.Package, e.Existing, e.Version)
}

// AlphaVersionError is returned by Add when developer releases are
// disallowed and the version contains an underscore.
type AlphaVersionError struct {
	Package string
	Version string
}

func (e *AlphaVersionError) Error() string {
	return fmt.Sprintf("package %s: developer version %s is not allowed", e.Package, e.Version)
}

// MalformedLineError describes a header or record line that could not be
// parsed cleanly. Decoding reports it and carries on.
type MalformedLineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// UnknownHeaderFieldError is returned by Header.Get for a field that is not
// set.
type UnknownHeaderFieldError struct {
	Field string
}

func (e *UnknownHeaderFieldError) Error() string {
	return fmt.Sprintf("unknown header field %q", e.Field)
}
