package reconcile

import (
	"github.com/frederic-klein/pkgdetails/internal/dist"
	"github.com/frederic-klein/pkgdetails/internal/version"
)

// Reduce keeps only the newest archive of each distribution name, in input
// order. Paths whose filename cannot be parsed are always kept.
func Reduce(paths []string) []string {
	kept, _ := reduce(paths)
	return kept
}

// reduce also returns the paths that were passed through unparsed.
func reduce(paths []string) (kept, unparsable []string) {
	type candidate struct {
		pos     int
		version version.Token
	}
	newest := make(map[string]candidate)
	keep := make([]bool, len(paths))

	for i, p := range paths {
		info, ok := dist.Parse(p)
		if !ok {
			keep[i] = true
			unparsable = append(unparsable, p)
			continue
		}

		tok := version.New(info.Version)
		best, seen := newest[info.Name]
		if !seen {
			newest[info.Name] = candidate{pos: i, version: tok}
			continue
		}
		// ties keep the first path seen
		if tok.Compare(best.version) > 0 {
			newest[info.Name] = candidate{pos: i, version: tok}
		}
	}

	for _, c := range newest {
		keep[c.pos] = true
	}
	for i, p := range paths {
		if keep[i] {
			kept = append(kept, p)
		}
	}
	return kept, unparsable
}
