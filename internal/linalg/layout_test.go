package linalg

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBackendLayoutRoundTrip(t *testing.T) {
	m := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})

	col := ToBackendLayout(m)
	want := []float64{1, 4, 2, 5, 3, 6}
	for i := range want {
		if col[i] != want[i] {
			t.Fatalf("column-major = %v, want %v", col, want)
		}
	}

	back, err := FromBackendLayout(2, 3, col)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(m) {
		t.Errorf("round trip = %v, want %v", back, m)
	}
}

func TestFromBackendLayoutRejectsBadLength(t *testing.T) {
	if _, err := FromBackendLayout(2, 2, []float64{1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestGonumInterop(t *testing.T) {
	m := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	d := m.Dense()
	if r, c := d.Dims(); r != 3 || c != 2 {
		t.Fatalf("dense dims %dx%d", r, c)
	}
	if d.At(2, 1) != 6 {
		t.Errorf("dense (2,1) = %v", d.At(2, 1))
	}

	var prod mat.Dense
	prod.Mul(d.T(), d)
	got := FromDense(&prod)
	want, _ := m.T().Mul(m)
	if !got.Equal(want) {
		t.Errorf("gonum product %v, linalg product %v", got, want)
	}

	if New(0, 0).Dense() != nil {
		t.Error("empty matrix should convert to nil")
	}
}
