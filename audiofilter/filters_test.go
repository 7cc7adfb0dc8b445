/*
NAME
  filters_test.go

DESCRIPTION
  filters_test.go exercises FIR filter construction, the amplifier's
  clipping behavior, and the ReadSamples adapter that lets a Filter sit
  upstream of a frame.Maker.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package audiofilter

import (
	"errors"
	"testing"

	"github.com/ausocean/speechfeat/core"
)

func TestNewLowPass(t *testing.T) {
	format := BufferFormat{SampleRate: 16000, Channels: 1}
	f, err := NewLowPass(Spec{Cutoff: [2]float64{2000}, Taps: 32}, format)
	if err != nil {
		t.Fatalf("NewLowPass: %v", err)
	}
	if len(f.coeffs) != 33 {
		t.Fatalf("len(coeffs) = %d, want 33", len(f.coeffs))
	}
}

func TestNewLowPassOutOfBounds(t *testing.T) {
	format := BufferFormat{SampleRate: 16000, Channels: 1}
	_, err := NewLowPass(Spec{Cutoff: [2]float64{9000}, Taps: 32}, format)
	if !errors.Is(err, core.ErrInvalidSize) {
		t.Fatalf("error = %v, want %v", err, core.ErrInvalidSize)
	}
}

func TestAmplifierClips(t *testing.T) {
	f := NewAmplifier(4)
	in := []float32{0.1, -0.1, 0.5, -0.5}
	out, err := f.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []float32{0.4, -0.4, 1, -1}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestBandPassConvolutionLength(t *testing.T) {
	format := BufferFormat{SampleRate: 16000, Channels: 1}
	f, err := NewBandPass(Spec{Cutoff: [2]float64{500, 3000}, Taps: 16}, format)
	if err != nil {
		t.Fatalf("NewBandPass: %v", err)
	}
	frame := make([]float32, 64)
	out, err := f.Apply(frame)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := len(frame) + len(f.coeffs) - 1
	if len(out) != want {
		t.Fatalf("len(out) = %d, want %d", len(out), want)
	}
}

// constSource yields a fixed number of unit-amplitude samples then ends.
type constSource struct {
	remaining int
}

func (s *constSource) ReadSamples(dst []float32) (int, error) {
	n := len(dst)
	if n > s.remaining {
		n = s.remaining
	}
	for i := 0; i < n; i++ {
		dst[i] = 1
	}
	s.remaining -= n
	return n, nil
}

func TestReadAdapter(t *testing.T) {
	f := NewAmplifier(0.5).WithSource(&constSource{remaining: 100})
	dst := make([]float32, 10)
	n, err := f.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if n != 10 {
		t.Fatalf("n = %d, want 10", n)
	}
	for i, v := range dst {
		if v != 0.5 {
			t.Errorf("dst[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestReadWithoutSource(t *testing.T) {
	f := NewAmplifier(1)
	_, err := f.ReadSamples(make([]float32, 4))
	if !errors.Is(err, core.ErrBadState) {
		t.Fatalf("error = %v, want %v", err, core.ErrBadState)
	}
}
