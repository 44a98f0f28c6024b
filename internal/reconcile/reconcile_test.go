package reconcile

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/pkgdetails/internal/codec"
	"github.com/frederic-klein/pkgdetails/internal/index"
)

func newIndex(t *testing.T, paths ...string) *index.PackageIndex {
	t.Helper()
	idx := index.New(index.Options{
		Policy: index.Policy{OnlyOnce: true},
		Now:    func() time.Time { return time.Unix(0, 0) },
	})
	for _, p := range paths {
		name := strings.SplitN(filepath.Base(p), "-", 2)[0]
		require.NoError(t, idx.Add(map[string]string{"package name": name, "version": "1", "path": p}))
	}
	idx.Set(index.FieldLineCount, strconv.Itoa(len(idx.UniqueSorted())))
	return idx
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "newest per name",
			paths: []string{"Foo-1.23.tgz", "Foo-1.22.tgz", "Bar-2.34.tgz"},
			want:  []string{"Foo-1.23.tgz", "Bar-2.34.tgz"},
		},
		{
			name:  "dotted and decimal",
			paths: []string{"A/AU/AUTHOR/Baz-3.007004.tar.gz", "A/AU/AUTHOR/Baz-3.18.0.tar.gz"},
			want:  []string{"A/AU/AUTHOR/Baz-3.18.0.tar.gz"},
		},
		{
			name:  "unparsable kept",
			paths: []string{"README", "Foo-Bar.tar.gz", "Foo-1.0.tgz", "Foo-0.9.tgz"},
			want:  []string{"README", "Foo-Bar.tar.gz", "Foo-1.0.tgz"},
		},
		{
			name:  "equal versions keep first",
			paths: []string{"X/Foo-1.0.tgz", "Y/Foo-1.0.tar.gz"},
			want:  []string{"X/Foo-1.0.tgz"},
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.paths))
		})
	}
}

func TestCheck_UnindexedArchives(t *testing.T) {
	corpus := &Corpus{Paths: []string{"Foo-1.23.tgz", "Foo-1.22.tgz", "Bar-2.34.tgz"}}

	full := newIndex(t, "Foo-1.23.tgz", "Bar-2.34.tgz")
	assert.NoError(t, Check(full, corpus))

	partial := newIndex(t, "Foo-1.23.tgz")
	err := Check(partial, corpus)
	var unindexed *UnindexedArchivesError
	require.ErrorAs(t, err, &unindexed)
	assert.Equal(t, []string{"Bar-2.34.tgz"}, unindexed.Paths)

	var missing *MissingArchivesError
	assert.False(t, errors.As(err, &missing), "no archive should be reported missing")
}

func TestCheck_MissingArchives(t *testing.T) {
	root := filepath.Join("cpan", "authors", "id")
	idx := newIndex(t, "F/FO/FOO/Foo-1.0.tgz", "B/BA/BAR/Bar-1.0.tgz", "Q/QU/QUX/Qux-1.0.tgz")
	corpus := &Corpus{
		Root:  root,
		Paths: []string{filepath.Join(root, "F", "FO", "FOO", "Foo-1.0.tgz")},
	}

	err := Check(idx, corpus)
	var missing *MissingArchivesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{
		filepath.Join(root, "B", "BA", "BAR", "Bar-1.0.tgz"),
		filepath.Join(root, "Q", "QU", "QUX", "Qux-1.0.tgz"),
	}, missing.Paths, "every missing archive is reported, not just the first")
}

func TestCheck_CountMismatch(t *testing.T) {
	input := "Line-Count: 5\n\n" +
		"A\t1\tA-1.tgz\nB\t1\tB-1.tgz\nC\t1\tC-1.tgz\nD\t1\tD-1.tgz\n"
	res, err := codec.Decode(strings.NewReader(input))
	require.NoError(t, err)

	err = Check(res.Index, nil)
	var mismatch *CountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 5, mismatch.Header)
	assert.Equal(t, 4, mismatch.Records)
}

func TestCheck_Empty(t *testing.T) {
	res, err := codec.Decode(strings.NewReader("Line-Count: 0\n\n"))
	require.NoError(t, err)

	err = Check(res.Index, nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)

	var mismatch *CountMismatchError
	assert.False(t, errors.As(err, &mismatch))

	assert.ErrorIs(t, Check(newIndex(t), nil), ErrEmptyIndex)
}

func TestCheck_MissingLineCount(t *testing.T) {
	input := "File: 02packages.details.txt\nColumns: package name, version, path\n\n" +
		"A\t1\tA-1.tgz\nB\t1\tB-1.tgz\n"
	res, err := codec.Decode(strings.NewReader(input))
	require.NoError(t, err)

	err = Check(res.Index, nil)
	var unknown *index.UnknownHeaderFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, index.FieldLineCount, unknown.Field)

	report := New().Run(res.Index, nil)
	assert.False(t, report.OK())
	assert.Equal(t, 2, report.RecordCount)
	assert.Zero(t, report.HeaderCount)
}

func TestCheck_BadLineCount(t *testing.T) {
	res, err := codec.Decode(strings.NewReader("Line-Count: many\n\nA\t1\tA-1.tgz\n"))
	require.NoError(t, err)

	err = Check(res.Index, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"many"`)
}

func TestRun_ReportsEverything(t *testing.T) {
	input := "Line-Count: 3\n\n" +
		"Foo\t1.23\tFoo-1.23.tgz\n" +
		"Gone\t1.0\tGone-1.0.tgz\n"
	res, err := codec.Decode(strings.NewReader(input))
	require.NoError(t, err)

	corpus := &Corpus{Paths: []string{"Foo-1.23.tgz", "Foo-1.22.tgz", "Bar-2.34.tgz", "CHECKSUMS"}}
	report := New().Run(res.Index, corpus)

	assert.False(t, report.OK())
	assert.Equal(t, 3, report.HeaderCount)
	assert.Equal(t, 2, report.RecordCount)
	assert.Equal(t, []string{"Gone-1.0.tgz"}, report.Missing)
	assert.Equal(t, []string{"Bar-2.34.tgz", "CHECKSUMS"}, report.Unindexed)
	assert.Equal(t, []string{"CHECKSUMS"}, report.Unparsable)
	assert.Len(t, report.Errors, 3)

	err = report.Err()
	var (
		mismatch  *CountMismatchError
		missing   *MissingArchivesError
		unindexed *UnindexedArchivesError
	)
	assert.ErrorAs(t, err, &mismatch)
	assert.ErrorAs(t, err, &missing)
	assert.ErrorAs(t, err, &unindexed)

	out, err := report.YAML()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, 3, decoded["header_count"])
	assert.Contains(t, string(out), "Gone-1.0.tgz")
}

func TestRun_Passes(t *testing.T) {
	idx := newIndex(t, "Foo-1.0.tgz")
	report := New().Run(idx, &Corpus{Paths: []string{"./Foo-1.0.tgz"}})
	assert.True(t, report.OK(), "errors: %v", report.Errors)
	assert.NoError(t, report.Err())
}
