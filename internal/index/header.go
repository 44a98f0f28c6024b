package index

import (
	"fmt"
	"sort"
	"strings"
)

// Internal names of the well-known header fields.
const (
	FieldFile         = "file"
	FieldURL          = "url"
	FieldDescription  = "description"
	FieldColumns      = "columns"
	FieldIntendedFor  = "intended_for"
	FieldWrittenBy    = "written_by"
	FieldLastUpdated  = "last_updated"
	FieldLineCount    = "line_count"
	LastUpdatedLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// Header is the metadata block at the top of an index file. It refers back
// to the store only to compute Line-Count.
type Header struct {
	fields map[string]string
	store  *Store
}

// NewHeader creates an empty header bound to store.
func NewHeader(store *Store) *Header {
	return &Header{
		fields: make(map[string]string),
		store:  store,
	}
}

// Set stores value under field. External names ("Intended-For", "URL") are
// accepted and normalized.
func (h *Header) Set(field, value string) {
	h.fields[InternalName(field)] = value
}

// Get returns the value of field as it was set or decoded. An unset
// line_count is unknown like any other field; LineCount computes it.
func (h *Header) Get(field string) (string, error) {
	name := InternalName(field)
	if v, ok := h.fields[name]; ok {
		return v, nil
	}
	return "", &UnknownHeaderFieldError{Field: name}
}

// LineCount returns the number of unique records in the bound store.
func (h *Header) LineCount() int {
	if h.store == nil {
		return 0
	}
	return len(h.store.UniqueSorted())
}

// Delete removes field from the header.
func (h *Header) Delete(field string) {
	delete(h.fields, InternalName(field))
}

// Has reports whether field is set.
func (h *Header) Has(field string) bool {
	_, ok := h.fields[InternalName(field)]
	return ok
}

// ColumnsAsList splits the columns field: "package name, version, path".
func (h *Header) ColumnsAsList() []string {
	raw := h.fields[FieldColumns]
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			columns = append(columns, p)
		}
	}
	return columns
}

// Fields returns the internal names of the rendered fields in render order,
// ending with line_count.
func (h *Header) Fields() []string {
	names := make([]string, 0, len(h.fields)+1)
	for name := range h.fields {
		if strings.HasPrefix(name, "_") || name == FieldLineCount {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return ExternalName(names[i]) < ExternalName(names[j])
	})
	return append(names, FieldLineCount)
}

// Render produces the header block, one "External-Name: value" line per
// field, followed by the computed Line-Count and a blank line.
func (h *Header) Render() string {
	var b strings.Builder
	fields := h.Fields()
	for _, name := range fields[:len(fields)-1] {
		fmt.Fprintf(&b, "%s: %s\n", ExternalName(name), h.fields[name])
	}

	fmt.Fprintf(&b, "%s: %d\n\n", ExternalName(FieldLineCount), h.LineCount())
	return b.String()
}

// ExternalName converts an internal field name to its rendered form:
// intended_for -> Intended-For, url -> URL.
func ExternalName(field string) string {
	if field == FieldURL {
		return "URL"
	}
	b := []byte(strings.ReplaceAll(field, "_", "-"))
	for i := range b {
		if (i == 0 || b[i-1] == '-') && b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

// InternalName converts a rendered field name to its internal form:
// Intended-For -> intended_for, URL -> url.
func InternalName(field string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(field)), "-", "_")
}
