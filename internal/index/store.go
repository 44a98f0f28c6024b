package index

import (
	"slices"
	"sort"
	"strings"

	"github.com/frederic-klein/pkgdetails/internal/dist"
	"github.com/frederic-klein/pkgdetails/internal/version"
)

const (
	defaultKeyColumn     = "package name"
	defaultVersionColumn = "version"
	defaultPathColumn    = "path"
)

// Policy controls what Store.Add accepts.
type Policy struct {
	// OnlyOnce rejects a second record for a package that already has any
	// version in the store.
	OnlyOnce bool
	// DisallowAlpha rejects developer versions such as 1.23_01.
	DisallowAlpha bool
}

type entry struct {
	rec Record
	seq int
}

// Store holds the records of an index keyed by package name, then version.
// It is not safe for concurrent use.
type Store struct {
	columns []string
	policy  Policy

	entries map[string]map[string]entry
	seq     int
	count   int

	sorted []Record
	valid  bool
	builds int
}

// NewStore creates an empty store for the given column list. The first
// column is the primary key; the second and third hold version and path.
func NewStore(columns []string, policy Policy) *Store {
	if len(columns) == 0 {
		columns = []string{defaultKeyColumn, defaultVersionColumn, defaultPathColumn}
	}
	return &Store{
		columns: slices.Clone(columns),
		policy:  policy,
		entries: make(map[string]map[string]entry),
	}
}

// Columns returns the declared column names.
func (s *Store) Columns() []string {
	return slices.Clone(s.columns)
}

// Policy returns the policy the store was created with.
func (s *Store) Policy() Policy {
	return s.policy
}

func (s *Store) column(i int, fallback string) string {
	if i < len(s.columns) {
		return s.columns[i]
	}
	return fallback
}

// Add inserts a record built from fields, keyed by column name. The package
// name may be given under its declared column name or its identifier form.
// A missing or empty version becomes "undef". Keys that name no declared
// column are ignored.
func (s *Store) Add(fields map[string]string) error {
	keyCol := s.column(0, defaultKeyColumn)
	name := lookup(fields, keyCol)
	if name == "" {
		name = lookup(fields, "package_name")
	}
	if name == "" {
		return &MissingRequiredFieldError{Field: keyCol}
	}

	ver := version.New(lookup(fields, s.column(1, defaultVersionColumn)))
	if s.policy.DisallowAlpha && version.IsAlpha(ver.String()) {
		return &AlphaVersionError{Package: name, Version: ver.String()}
	}

	versions := s.entries[name]
	if s.policy.OnlyOnce && len(versions) > 0 {
		return &DuplicateKeyError{
			Package:  name,
			Existing: s.newest(versions).rec.Version.String(),
			Version:  ver.String(),
		}
	}

	rec := Record{
		PackageName: name,
		Version:     ver,
		Path:        lookup(fields, s.column(2, defaultPathColumn)),
		Extra:       s.extra(fields),
	}

	if versions == nil {
		versions = make(map[string]entry)
		s.entries[name] = versions
	}
	if old, ok := versions[ver.String()]; ok {
		versions[ver.String()] = entry{rec: rec, seq: old.seq}
	} else {
		s.seq++
		s.count++
		versions[ver.String()] = entry{rec: rec, seq: s.seq}
	}

	s.valid = false
	return nil
}

// extra collects the declared columns beyond the first three. Keys that name
// no declared column are dropped, since the encoder could not write them.
func (s *Store) extra(fields map[string]string) []Field {
	var extra []Field
	for i, col := range s.columns {
		if i >= 3 {
			extra = append(extra, Field{Name: col, Value: lookup(fields, col)})
		}
	}
	return extra
}

func lookup(fields map[string]string, column string) string {
	if v, ok := fields[column]; ok {
		return v
	}
	return fields[Identifier(column)]
}

// AlreadyPresent reports whether any version of name is stored.
func (s *Store) AlreadyPresent(name string) bool {
	return len(s.entries[name]) > 0
}

// Count returns the number of stored (name, version) pairs, not
// deduplicated.
func (s *Store) Count() int {
	return s.count
}

// newest picks the highest version; equal versions keep the earliest insert.
func (s *Store) newest(versions map[string]entry) entry {
	var best entry
	first := true
	for _, e := range versions {
		if first {
			best, first = e, false
			continue
		}
		switch c := e.rec.Version.Compare(best.rec.Version); {
		case c > 0, c == 0 && e.seq < best.seq:
			best = e
		}
	}
	return best
}

// UniqueSorted returns one record per package, the one with the highest
// version, ordered by package name. The result is cached until the next Add.
func (s *Store) UniqueSorted() []Record {
	if !s.valid {
		names := make([]string, 0, len(s.entries))
		for name := range s.entries {
			names = append(names, name)
		}
		sort.Strings(names)

		sorted := make([]Record, 0, len(names))
		for _, name := range names {
			sorted = append(sorted, s.newest(s.entries[name]).rec)
		}
		s.sorted = sorted
		s.valid = true
		s.builds++
	}
	return slices.Clone(s.sorted)
}

// AsText renders the unique sorted records, one tab-separated line each, with
// values in the order of columns. Absent or empty values render as "undef".
func (s *Store) AsText(columns []string) string {
	var b strings.Builder
	for _, rec := range s.UniqueSorted() {
		b.WriteString(s.Line(rec, columns))
		b.WriteByte('\n')
	}
	return b.String()
}

// Line renders rec as one tab-separated record line without the trailing
// newline. Empty values are written as "undef".
func (s *Store) Line(rec Record, columns []string) string {
	vals := make([]string, len(columns))
	for i, col := range columns {
		v := s.Value(rec, col)
		if v == "" {
			v = version.Undef
		}
		vals[i] = v
	}
	return strings.Join(vals, "\t")
}

// Value returns the value of column for rec. The primary key column always
// resolves to the record's package name.
func (s *Store) Value(rec Record, column string) string {
	switch Identifier(column) {
	case Identifier(s.column(0, defaultKeyColumn)), "package_name":
		return rec.PackageName
	case Identifier(s.column(1, defaultVersionColumn)):
		if rec.Version.IsUndef() {
			return ""
		}
		return rec.Version.String()
	case Identifier(s.column(2, defaultPathColumn)):
		return rec.Path
	}
	v, _ := rec.ExtraValue(column)
	return v
}

// ByPackage returns every stored version of name, newest first.
func (s *Store) ByPackage(name string) []Record {
	return sortedEntries(s.entries[name])
}

// ByPath returns the records whose path equals pathname.
func (s *Store) ByPath(pathname string) []Record {
	return s.filter(func(r Record) bool { return r.Path == pathname })
}

// ByVersion returns the records whose version compares equal to v.
func (s *Store) ByVersion(v string) []Record {
	tok := version.New(v)
	return s.filter(func(r Record) bool { return r.Version.Compare(tok) == 0 })
}

// ByDistribution returns the records whose path belongs to the distribution
// named distName, e.g. "libwww-perl".
func (s *Store) ByDistribution(distName string) []Record {
	return s.filter(func(r Record) bool {
		info, ok := dist.Parse(r.Path)
		return ok && info.Name == distName
	})
}

// filter walks every stored record, by package name then newest version.
func (s *Store) filter(keep func(Record) bool) []Record {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Record
	for _, name := range names {
		for _, r := range sortedEntries(s.entries[name]) {
			if keep(r) {
				out = append(out, r)
			}
		}
	}
	return out
}

func sortedEntries(versions map[string]entry) []Record {
	list := make([]entry, 0, len(versions))
	for _, e := range versions {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].rec.Version.Compare(list[j].rec.Version); c != 0 {
			return c > 0
		}
		return list[i].seq < list[j].seq
	})

	out := make([]Record, len(list))
	for i, e := range list {
		out[i] = e.rec
	}
	return out
}
