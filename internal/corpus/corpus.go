// Package corpus lists the distribution archives under a CPAN-style
// directory tree such as $CPAN/authors/id.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/frederic-klein/pkgdetails/internal/dist"
)

const defaultWorkers = 4

// Lister walks a corpus root.
type Lister struct {
	workers int
}

// NewLister creates a lister that walks up to workers top-level
// directories in parallel.
func NewLister(workers int) *Lister {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Lister{workers: workers}
}

// List returns the sorted paths of every archive file under root. Paths are
// root-joined, so they can be matched against records resolved against the
// same root.
func List(ctx context.Context, root string) ([]string, error) {
	return NewLister(defaultWorkers).List(ctx, root)
}

// List walks root and returns the archives it contains.
func (l *Lister) List(ctx context.Context, root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading corpus root: %w", err)
	}

	var (
		mu    sync.Mutex
		paths []string
	)
	add := func(found []string) {
		mu.Lock()
		paths = append(paths, found...)
		mu.Unlock()
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.workers)

	for _, e := range entries {
		p := filepath.Join(root, e.Name())
		if !e.IsDir() {
			if dist.IsArchive(e.Name()) {
				add([]string{p})
			}
			continue
		}
		eg.Go(func() error {
			found, err := walk(ctx, p)
			if err != nil {
				return err
			}
			add(found)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func walk(ctx context.Context, dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", p, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && dist.IsArchive(d.Name()) {
			found = append(found, p)
		}
		return nil
	})
	return found, err
}
