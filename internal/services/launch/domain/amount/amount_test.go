package amount

import (
	"errors"
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	got, err := Add(2, 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got != 5 {
		t.Fatalf("add = %d, want 5", got)
	}
	if _, err := Add(math.MaxUint64, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("add overflow error = %v, want %v", err, ErrOverflow)
	}
}

func TestSub(t *testing.T) {
	got, err := Sub(5, 3)
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if got != 2 {
		t.Fatalf("sub = %d, want 2", got)
	}
	if _, err := Sub(3, 5); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("sub underflow error = %v, want %v", err, ErrUnderflow)
	}
}

func TestSaturatingSub(t *testing.T) {
	if got := SaturatingSub(10, 4); got != 6 {
		t.Fatalf("saturating sub = %d, want 6", got)
	}
	if got := SaturatingSub(4, 10); got != 0 {
		t.Fatalf("saturating sub = %d, want 0", got)
	}
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name    string
		a, b, d uint64
		want    uint64
		wantErr error
	}{
		{name: "simple", a: 300, b: 1000, d: 1000, want: 300},
		{name: "floors", a: 1, b: 2, d: 3, want: 0},
		{name: "zero divisor", a: 10, b: 10, d: 0, want: 0},
		{name: "wide intermediate", a: math.MaxUint64, b: 10000, d: 15000, want: math.MaxUint64 / 3 * 2},
		{name: "quotient overflow", a: math.MaxUint64, b: 2, d: 1, wantErr: ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulDiv(tt.a, tt.b, tt.d)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("MulDiv = %d, want %d", got, tt.want)
			}
		})
	}
}
