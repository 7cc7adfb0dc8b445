/*
NAME
  dct_test.go

DESCRIPTION
  dct_test.go validates the DCT-II kernel against the literal reference
  values and checks the error surface for mismatched input length.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dct

import (
	"errors"
	"math"
	"testing"

	"github.com/ausocean/speechfeat/core"
)

func TestReferenceVector(t *testing.T) {
	const n = 16
	k, err := New(n)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		data[i] = float64(i)
	}

	if err := k.Apply(data); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if math.Abs(data[0]-30) > 1e-4 {
		t.Errorf("output[0] = %v, want 30", data[0])
	}
	if math.Abs(data[1]-(-18.3115)) > 1e-4 {
		t.Errorf("output[1] = %v, want -18.3115", data[1])
	}
}

func TestErrorSurface(t *testing.T) {
	if _, err := New(0); !errors.Is(err, core.ErrInvalidSize) {
		t.Errorf("New(0) error = %v, want %v", err, core.ErrInvalidSize)
	}

	k, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := k.Apply(make([]float64, 10)); !errors.Is(err, core.ErrInvalidSize) {
		t.Errorf("Apply wrong length error = %v, want %v", err, core.ErrInvalidSize)
	}
}
