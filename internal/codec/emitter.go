package codec

import (
	"bytes"
	"io"

	"github.com/frederic-klein/pkgdetails/internal/index"
)

// Emitter writes an index in 02packages.details.txt format.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates a new index emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the rendered header immediately followed by the records.
func (e *Emitter) Emit(idx *index.PackageIndex) error {
	if _, err := io.WriteString(e.w, idx.Header().Render()); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, idx.Store().AsText(idx.Columns()))
	return err
}

// Encode writes idx to w.
func Encode(w io.Writer, idx *index.PackageIndex) error {
	return NewEmitter(w).Emit(idx)
}

// Marshal returns the encoded form of idx.
func Marshal(idx *index.PackageIndex) []byte {
	var buf bytes.Buffer
	_ = Encode(&buf, idx)
	return buf.Bytes()
}
