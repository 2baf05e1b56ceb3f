package record

import "fmt"

// View holds a record body that is either trusted (parsed and validated) or
// untrusted raw bytes read from a venue that may not own it.
type View[T any] struct {
	raw     []byte
	value   T
	trusted bool
}

// Untrusted wraps raw bytes without interpreting them.
func Untrusted[T any](raw []byte) View[T] {
	return View[T]{raw: append([]byte(nil), raw...)}
}

// Trusted wraps an already validated value.
func Trusted[T any](value T) View[T] {
	return View[T]{value: value, trusted: true}
}

// Value returns the parsed record and whether it has been promoted.
func (v View[T]) Value() (T, bool) {
	return v.value, v.trusted
}

// Raw returns the bytes an untrusted view was built from.
func (v View[T]) Raw() []byte {
	return v.raw
}

// Promote parses and validates an untrusted view. Both steps must pass.
func Promote[T any](v View[T], parse func([]byte) (T, error), validate func(T) error) (View[T], error) {
	if v.trusted {
		return v, nil
	}
	value, err := parse(v.raw)
	if err != nil {
		return View[T]{}, err
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return View[T]{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
	}
	return Trusted(value), nil
}
