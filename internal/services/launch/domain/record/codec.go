package record

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
)

// HeaderSize is the discriminator plus version byte.
const HeaderSize = 9

// ErrInvalidData indicates bytes that do not decode to the expected record.
var ErrInvalidData = errors.New("invalid account data")

// Discriminator returns the 8-byte type tag for a record kind.
func Discriminator(kind address.Kind) [8]byte {
	sum := sha256.Sum256([]byte("record:" + string(kind)))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// Writer appends fixed-width fields after a record header.
type Writer struct {
	buf []byte
}

// NewWriter starts a record body for kind at the given layout version.
func NewWriter(kind address.Kind, version byte, size int) *Writer {
	disc := Discriminator(kind)
	buf := make([]byte, 0, HeaderSize+size)
	buf = append(buf, disc[:]...)
	buf = append(buf, version)
	return &Writer{buf: buf}
}

func (w *Writer) U64(v uint64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

func (w *Writer) I64(v int64) *Writer {
	return w.U64(uint64(v))
}

func (w *Writer) Key(k address.Key) *Writer {
	w.buf = append(w.buf, k[:]...)
	return w
}

func (w *Writer) Bool(v bool) *Writer {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
	return w
}

// Bytes returns the encoded record.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader consumes fixed-width fields. The first failure sticks; callers check
// Err once after reading every field.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader validates the header and the exact body size for kind.
func NewReader(kind address.Kind, version byte, size int, raw []byte) (*Reader, error) {
	if len(raw) != HeaderSize+size {
		return nil, fmt.Errorf("%w: %s length %d, want %d", ErrInvalidData, kind, len(raw), HeaderSize+size)
	}
	disc := Discriminator(kind)
	if [8]byte(raw[:8]) != disc {
		return nil, fmt.Errorf("%w: %s discriminator mismatch", ErrInvalidData, kind)
	}
	if raw[8] != version {
		return nil, fmt.Errorf("%w: %s version %d, want %d", ErrInvalidData, kind, raw[8], version)
	}
	return &Reader{buf: raw, off: HeaderSize}, nil
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: short read", ErrInvalidData)
		return nil
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out
}

func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) I64() int64 {
	return int64(r.U64())
}

func (r *Reader) Key() address.Key {
	var k address.Key
	if b := r.take(address.Size); b != nil {
		copy(k[:], b)
	}
	return k
}

func (r *Reader) Bool() bool {
	b := r.take(1)
	if b == nil {
		return false
	}
	switch b[0] {
	case 0:
		return false
	case 1:
		return true
	default:
		r.err = fmt.Errorf("%w: bool byte %d", ErrInvalidData, b[0])
		return false
	}
}

// Err returns the first decode failure.
func (r *Reader) Err() error {
	return r.err
}
