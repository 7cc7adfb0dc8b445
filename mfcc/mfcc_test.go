/*
NAME
  mfcc_test.go

DESCRIPTION
  mfcc_test.go exercises MfccMaker's feature-vector shape and output
  dispatch, dither determinism, and the error surface, driven over a
  synthetic frame source rather than a full WAVE/FrameMaker chain.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mfcc

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/speechfeat/core"
)

// toneSource emits a fixed number of frames of a synthetic tone, then
// clean end of stream. It implements core.FrameSource[float32].
type toneSource struct {
	frameLen  int
	remaining int
}

func (s *toneSource) ReadFrame(dst []float32) (bool, error) {
	if s.remaining == 0 {
		return false, nil
	}
	for i := range dst {
		dst[i] = float32(0.5 * math.Sin(2*math.Pi*float64(i)/float64(len(dst))*7))
	}
	s.remaining--
	return true, nil
}

func testOpts() MelOpts {
	o := DefaultMelOpts()
	o.FrameLength = 256
	o.Dither = 0
	o.RemoveDCOffset = false
	o.OutputC0 = true
	return o
}

func TestReadFrameShapeMFCC(t *testing.T) {
	opts := testOpts()
	m, err := New(&toneSource{frameLen: opts.FrameLength, remaining: 3}, opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dst := make([]float32, opts.FeatLength())
	want := opts.MfccOrder + 2 // +C0 +energy
	if len(dst) != want {
		t.Fatalf("FeatLength() = %d, want %d", len(dst), want)
	}

	var frames int
	for {
		ok, err := m.ReadFrame(dst)
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if !ok {
			break
		}
		frames++
		for i, v := range dst {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("dst[%d] = %v, not finite", i, v)
			}
		}
	}
	if frames != 3 {
		t.Fatalf("frames = %d, want 3", frames)
	}
}

func TestReadFrameShapeMelEnergy(t *testing.T) {
	opts := testOpts()
	opts.OutputType = MelEnergy
	opts.OutputC0 = false
	m, err := New(&toneSource{frameLen: opts.FrameLength, remaining: 1}, opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dst := make([]float32, opts.FeatLength())
	ok, err := m.ReadFrame(dst)
	if err != nil || !ok {
		t.Fatalf("ReadFrame: ok=%v err=%v", ok, err)
	}
	want := opts.FilterbankNumBins + 1 // +energy
	if len(dst) != want {
		t.Fatalf("FeatLength() = %d, want %d", len(dst), want)
	}
}

func TestDitherDeterminism(t *testing.T) {
	opts := testOpts()
	opts.Dither = 1.0

	run := func() []float32 {
		m, err := New(&toneSource{frameLen: opts.FrameLength, remaining: 1}, opts, nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		dst := make([]float32, opts.FeatLength())
		if ok, err := m.ReadFrame(dst); err != nil || !ok {
			t.Fatalf("ReadFrame: ok=%v err=%v", ok, err)
		}
		return dst
	}

	a, b := run(), run()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("dither is not reproducible across runs (-first +second):\n%s", diff)
	}
}

func TestIncorrectFrameSize(t *testing.T) {
	opts := testOpts()
	m, err := New(&toneSource{frameLen: opts.FrameLength, remaining: 1}, opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = m.ReadFrame(make([]float32, 1))
	if !errors.Is(err, core.ErrIncorrectFrameSize) {
		t.Fatalf("error = %v, want %v", err, core.ErrIncorrectFrameSize)
	}
}

func TestInvalidOpts(t *testing.T) {
	opts := testOpts()
	opts.MfccOrder = opts.FilterbankNumBins // order must be < num bins.
	if _, err := New(&toneSource{frameLen: opts.FrameLength, remaining: 1}, opts, nil); !errors.Is(err, core.ErrInvalidSize) {
		t.Fatalf("error = %v, want %v", err, core.ErrInvalidSize)
	}
}

func TestBadStateSticky(t *testing.T) {
	opts := testOpts()
	m, err := New(&toneSource{frameLen: opts.FrameLength, remaining: 1}, opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.ReadFrame(make([]float32, 1)); !errors.Is(err, core.ErrIncorrectFrameSize) {
		t.Fatalf("first call error = %v, want %v", err, core.ErrIncorrectFrameSize)
	}
	dst := make([]float32, opts.FeatLength())
	if _, err := m.ReadFrame(dst); !errors.Is(err, core.ErrBadState) {
		t.Fatalf("second call error = %v, want %v", err, core.ErrBadState)
	}
}
