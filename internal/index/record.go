package index

import (
	"strings"

	"github.com/frederic-klein/pkgdetails/internal/version"
)

// Field is one extra column value of a record.
type Field struct {
	Name  string
	Value string
}

// Record is one line of the index: Module::Name \t version \t A/AU/AUTHOR/Dist.tar.gz
// Records are values; the store replaces them rather than mutating them.
type Record struct {
	PackageName string
	Version     version.Token
	Path        string
	Extra       []Field // columns beyond the first three, in declared order
}

// ExtraValue returns the value of an extra column, matching the column name
// in either its declared or identifier form.
func (r Record) ExtraValue(column string) (string, bool) {
	id := Identifier(column)
	for _, f := range r.Extra {
		if Identifier(f.Name) == id {
			return f.Value, true
		}
	}
	return "", false
}

// Identifier converts a column name to its identifier form:
// "package name" -> "package_name".
func Identifier(column string) string {
	column = strings.ToLower(strings.TrimSpace(column))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(column)
}
