package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"F/FO/FOO/Foo-1.23.tgz",
		"F/FO/FOO/Foo-1.22.tgz",
		"F/FO/FOO/CHECKSUMS",
		"B/BA/BAR/Bar-2.34.tar.gz",
		"B/BA/BAR/Bar-2.34.meta",
		"Top-1.0.zip",
		"README",
	)

	paths, err := NewLister(2).List(context.Background(), root)
	require.NoError(t, err)

	j := func(p string) string { return filepath.Join(root, filepath.FromSlash(p)) }
	assert.Equal(t, []string{
		j("B/BA/BAR/Bar-2.34.tar.gz"),
		j("F/FO/FOO/Foo-1.22.tgz"),
		j("F/FO/FOO/Foo-1.23.tgz"),
		j("Top-1.0.zip"),
	}, paths)
}

func TestList_MissingRoot(t *testing.T) {
	_, err := List(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestList_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "A/AU/AUTHOR/Foo-1.0.tgz")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := List(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestList_Empty(t *testing.T) {
	paths, err := List(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)
}
