// Package index models a CPAN package index (02packages.details.txt): a
// metadata header plus one record per package name.
package index

import "time"

const (
	DefaultFile        = "02packages.details.txt"
	DefaultURL         = "http://www.example.com/MyCPAN/modules/02packages.details.txt"
	DefaultDescription = "Package names found in directory $CPAN/authors/id/"
	DefaultColumns     = "package name, version, path"
	DefaultIntendedFor = "Automated fetch routines, namespace documentation."
	DefaultWrittenBy   = "pkgdetails"
)

// Options configures a new PackageIndex.
type Options struct {
	// Header overrides the default header fields. Keys may use internal or
	// external names.
	Header map[string]string
	// Policy is the duplicate and developer-version policy of the store.
	Policy Policy
	// Now supplies Last-Updated. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns options for an index in only-once mode.
func DefaultOptions() Options {
	return Options{
		Policy: Policy{OnlyOnce: true},
		Now:    time.Now,
	}
}

// DefaultHeader returns the default header fields stamped with now.
func DefaultHeader(now time.Time) map[string]string {
	return map[string]string{
		FieldFile:        DefaultFile,
		FieldURL:         DefaultURL,
		FieldDescription: DefaultDescription,
		FieldColumns:     DefaultColumns,
		FieldIntendedFor: DefaultIntendedFor,
		FieldWrittenBy:   DefaultWrittenBy,
		FieldLastUpdated: now.UTC().Format(LastUpdatedLayout),
	}
}

// PackageIndex owns one header and one store.
type PackageIndex struct {
	header *Header
	store  *Store
}

// New creates an empty index with the default header merged with
// opts.Header.
func New(opts Options) *PackageIndex {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	idx := &PackageIndex{}
	idx.header = NewHeader(nil)
	for k, v := range DefaultHeader(opts.Now()) {
		idx.header.Set(k, v)
	}
	for k, v := range opts.Header {
		idx.header.Set(k, v)
	}
	idx.ReplaceStore(NewStore(idx.header.ColumnsAsList(), opts.Policy))
	return idx
}

// Header returns the index header.
func (idx *PackageIndex) Header() *Header {
	return idx.header
}

// Store returns the record store.
func (idx *PackageIndex) Store() *Store {
	return idx.store
}

// ReplaceStore swaps in s and rebinds the header to it.
func (idx *PackageIndex) ReplaceStore(s *Store) {
	idx.store = s
	idx.header.store = s
}

// Set sets a header field. Changing the columns of an empty index rebuilds
// its store with the new column list.
func (idx *PackageIndex) Set(field, value string) {
	idx.header.Set(field, value)
	if InternalName(field) == FieldColumns && idx.store.Count() == 0 {
		idx.ReplaceStore(NewStore(idx.header.ColumnsAsList(), idx.store.Policy()))
	}
}

// Get returns a header field.
func (idx *PackageIndex) Get(field string) (string, error) {
	return idx.header.Get(field)
}

// Add adds a record to the store.
func (idx *PackageIndex) Add(fields map[string]string) error {
	return idx.store.Add(fields)
}

// AlreadyPresent reports whether the package has any stored version.
func (idx *PackageIndex) AlreadyPresent(name string) bool {
	return idx.store.AlreadyPresent(name)
}

// Count returns the number of stored (name, version) pairs.
func (idx *PackageIndex) Count() int {
	return idx.store.Count()
}

// UniqueSorted returns the newest record per package, ordered by name.
func (idx *PackageIndex) UniqueSorted() []Record {
	return idx.store.UniqueSorted()
}

// Lookup finds the newest record for a package.
func (idx *PackageIndex) Lookup(name string) (Record, bool) {
	recs := idx.store.ByPackage(name)
	if len(recs) == 0 {
		return Record{}, false
	}
	return recs[0], true
}

// ByPackage returns every version of a package, newest first.
func (idx *PackageIndex) ByPackage(name string) []Record {
	return idx.store.ByPackage(name)
}

// ByPath returns the records stored under pathname.
func (idx *PackageIndex) ByPath(pathname string) []Record {
	return idx.store.ByPath(pathname)
}

// ByVersion returns the records whose version equals v.
func (idx *PackageIndex) ByVersion(v string) []Record {
	return idx.store.ByVersion(v)
}

// ByDistribution returns the records shipped in the named distribution.
func (idx *PackageIndex) ByDistribution(name string) []Record {
	return idx.store.ByDistribution(name)
}

// Columns returns the declared columns, falling back to the store's when
// the header declares none.
func (idx *PackageIndex) Columns() []string {
	if cols := idx.header.ColumnsAsList(); len(cols) > 0 {
		return cols
	}
	return idx.store.Columns()
}

// String renders the whole index: header block then records.
func (idx *PackageIndex) String() string {
	return idx.header.Render() + idx.store.AsText(idx.Columns())
}
