package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/frederic-klein/pkgdetails/internal/index"
)

func TestEmitter_Emit(t *testing.T) {
	tests := []struct {
		name    string
		records []map[string]string
		want    string
	}{
		{
			name: "empty",
			want: "Columns: package name, version, path\n" +
				"File: 02packages.details.txt\n" +
				"Line-Count: 0\n\n",
		},
		{
			name: "single record",
			records: []map[string]string{
				{"package name": "Foo", "version": "1.23", "path": "F/Foo-1.23.tgz"},
			},
			want: "Columns: package name, version, path\n" +
				"File: 02packages.details.txt\n" +
				"Line-Count: 1\n\n" +
				"Foo\t1.23\tF/Foo-1.23.tgz\n",
		},
		{
			name: "sorted with undef",
			records: []map[string]string{
				{"package name": "Moo", "version": "2.0", "path": "H/HA/HAARG/Moo-2.0.tar.gz"},
				{"package name": "JSON", "path": "M/MA/MAKAMAKA/JSON-2.0.tar.gz"},
			},
			want: "Columns: package name, version, path\n" +
				"File: 02packages.details.txt\n" +
				"Line-Count: 2\n\n" +
				"JSON\tundef\tM/MA/MAKAMAKA/JSON-2.0.tar.gz\n" +
				"Moo\t2.0\tH/HA/HAARG/Moo-2.0.tar.gz\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := minimalIndex(t)
			for _, r := range tt.records {
				if err := idx.Add(r); err != nil {
					t.Fatalf("Add() error = %v", err)
				}
			}

			var buf bytes.Buffer
			if err := NewEmitter(&buf).Emit(idx); err != nil {
				t.Fatalf("Emit() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Emit() =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

// minimalIndex strips the default header down to File and Columns so the
// expected output stays short.
func minimalIndex(t *testing.T) *index.PackageIndex {
	t.Helper()
	idx := index.New(index.Options{Policy: index.Policy{OnlyOnce: true}, Now: fixedClock})
	for _, f := range idx.Header().Fields() {
		if f != index.FieldFile && f != index.FieldColumns {
			idx.Header().Delete(f)
		}
	}
	return idx
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEmitter_WriteError(t *testing.T) {
	idx := index.New(index.Options{Now: fixedClock})
	if err := Encode(failingWriter{}, idx); err == nil {
		t.Error("Encode() error = nil, want write error")
	}
}
