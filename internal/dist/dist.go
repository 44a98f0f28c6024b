package dist

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Suffixes lists the archive extensions recognised on CPAN, longest first so
// that ".tar.gz" wins over ".gz".
var Suffixes = []string{
	".tar.bz2",
	".tar.gz",
	".tar.xz",
	".tar.Z",
	".tbz",
	".tgz",
	".zip",
}

// Info describes a distribution archive as derived from its filename.
type Info struct {
	Filename  string // e.g., "Module-Name-1.23.tar.gz"
	Dist      string // e.g., "Module-Name-1.23"
	Name      string // e.g., "Module-Name"
	Version   string // e.g., "1.23"
	Extension string // e.g., ".tar.gz"
}

// Name and version are split at the last dash followed by a digit, or by
// "v" and a digit: Foo-Bar-1.23, Foo-v1.2.3, Foo-1.23-TRIAL.
var nameVersionRe = regexp.MustCompile(`^(.+?)-(v?\d[^-]*(?:-TRIAL\d*)?)$`)

// Parse extracts the distribution name and version from an archive path.
// It accepts slash- and OS-separated paths. ok is false when the filename has
// no known archive suffix or no recognisable version.
func Parse(pathname string) (info Info, ok bool) {
	base := path.Base(filepath.ToSlash(pathname))
	info.Filename = base

	ext := Extension(base)
	if ext == "" {
		return info, false
	}
	info.Extension = ext
	info.Dist = strings.TrimSuffix(base, ext)

	m := nameVersionRe.FindStringSubmatch(info.Dist)
	if m == nil {
		return info, false
	}
	info.Name = m[1]
	info.Version = m[2]
	return info, true
}

// Extension returns the archive suffix of filename, or "" if it has none.
func Extension(filename string) string {
	for _, s := range Suffixes {
		if strings.HasSuffix(filename, s) && len(filename) > len(s) {
			return s
		}
	}
	return ""
}

// IsArchive reports whether filename carries a known archive suffix.
func IsArchive(filename string) bool {
	return Extension(filename) != ""
}

// NameFromPath returns the distribution name with version, or the base
// filename with any archive suffix removed when it cannot be parsed.
// A/AU/AUTHOR/Dist-Name-1.23.tar.gz -> Dist-Name-1.23
func NameFromPath(pathname string) string {
	info, _ := Parse(pathname)
	if info.Dist != "" {
		return info.Dist
	}
	return info.Filename
}
