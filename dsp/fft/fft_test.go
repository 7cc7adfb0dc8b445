/*
NAME
  fft_test.go

DESCRIPTION
  fft_test.go validates the real-input FFT against an impulse
  self-check, a literal reference vector, and the conjugate-symmetry
  property it relies on, plus the error surface for mismatched and
  invalid lengths.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fft

import (
	"errors"
	"math"
	"testing"

	"github.com/ausocean/speechfeat/core"
)

func TestImpulseSelfCheck(t *testing.T) {
	const m = 16
	k, err := New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	real := make([]float64, m)
	imag := make([]float64, m)
	real[0] = 1

	if err := k.FFTR(real, imag); err != nil {
		t.Fatalf("FFTR: %v", err)
	}
	for i := range real {
		if math.Abs(real[i]-1) > 1e-9 {
			t.Errorf("real[%d] = %v, want 1", i, real[i])
		}
		if math.Abs(imag[i]) > 1e-9 {
			t.Errorf("imag[%d] = %v, want 0", i, imag[i])
		}
	}
}

func TestReferenceVector(t *testing.T) {
	const m = 16
	k, err := New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	real := make([]float64, m)
	imag := make([]float64, m)
	for i := 0; i < 10; i++ {
		real[i] = float64(i)
	}

	if err := k.FFTR(real, imag); err != nil {
		t.Fatalf("FFTR: %v", err)
	}

	want := []float64{45, -25.452, 10.364}
	for i, w := range want {
		if math.Abs(real[i]-w) > 1e-3 {
			t.Errorf("real[%d] = %v, want %v", i, real[i], w)
		}
	}
}

func TestConjugateSymmetry(t *testing.T) {
	const m = 32
	k, err := New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	real := make([]float64, m)
	imag := make([]float64, m)
	for i := range real {
		real[i] = math.Sin(float64(i)) * float64(i%5-2)
	}

	if err := k.FFTR(real, imag); err != nil {
		t.Fatalf("FFTR: %v", err)
	}

	for i := 1; i < m; i++ {
		if math.Abs(real[i]-real[m-i]) > 1e-9 {
			t.Errorf("real[%d]=%v != real[%d]=%v", i, real[i], m-i, real[m-i])
		}
		if math.Abs(imag[i]+imag[m-i]) > 1e-9 {
			t.Errorf("imag[%d]=%v != -imag[%d]=%v", i, imag[i], m-i, -imag[m-i])
		}
	}
}

func TestErrorSurface(t *testing.T) {
	k, err := New(64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := New(0); !errors.Is(err, core.ErrInvalidSize) {
		t.Errorf("New(0) error = %v, want %v", err, core.ErrInvalidSize)
	}
	if _, err := New(17); !errors.Is(err, core.ErrInvalidSize) {
		t.Errorf("New(17) error = %v, want %v", err, core.ErrInvalidSize)
	}

	if err := k.FFTR(make([]float64, 8), make([]float64, 9)); !errors.Is(err, core.ErrDataSizeMismatch) {
		t.Errorf("mismatched lengths error = %v, want %v", err, core.ErrDataSizeMismatch)
	}
	if err := k.FFTR(make([]float64, 6), make([]float64, 6)); !errors.Is(err, core.ErrInvalidSize) {
		t.Errorf("non-power-of-two error = %v, want %v", err, core.ErrInvalidSize)
	}
	if err := k.FFTR(make([]float64, 128), make([]float64, 128)); !errors.Is(err, core.ErrInvalidSize) {
		t.Errorf("over-max length error = %v, want %v", err, core.ErrInvalidSize)
	}
}
