/*
NAME
  frame_test.go

DESCRIPTION
  frame_test.go exercises the framing invariants: initial half-frame
  padding, overlap between successive frames, terminal zero-padding and
  the byte-mode/structured-source polymorphism.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ausocean/speechfeat/core"
)

// sliceSource adapts a plain slice to core.SampleSource[T].
type sliceSource[T core.Sample] struct {
	data []T
	pos  int
}

func (s *sliceSource[T]) ReadSamples(dst []T) (int, error) {
	n := copy(dst, s.data[s.pos:])
	s.pos += n
	return n, nil
}

func TestFirstFrameHalfPadded(t *testing.T) {
	const L, S = 8, 4
	src := &sliceSource[int16]{data: []int16{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}
	m, err := NewMaker[int16](src, Opts{Length: L, Shift: S})
	if err != nil {
		t.Fatalf("NewMaker: %v", err)
	}

	dst := make([]int16, L)
	ok, err := m.ReadFrame(dst)
	if err != nil || !ok {
		t.Fatalf("ReadFrame: ok=%v err=%v", ok, err)
	}

	// halfCeil(8) = 4 leading zeros, then the first 4 input samples.
	want := []int16{0, 0, 0, 0, 1, 2, 3, 4}
	if !equal(dst, want) {
		t.Fatalf("first frame = %v, want %v", dst, want)
	}
}

func TestOverlap(t *testing.T) {
	const L, S = 8, 4
	src := &sliceSource[int16]{data: []int16{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}}
	m, err := NewMaker[int16](src, Opts{Length: L, Shift: S})
	if err != nil {
		t.Fatalf("NewMaker: %v", err)
	}

	f1 := make([]int16, L)
	f2 := make([]int16, L)
	if ok, err := m.ReadFrame(f1); err != nil || !ok {
		t.Fatalf("frame1: ok=%v err=%v", ok, err)
	}
	if ok, err := m.ReadFrame(f2); err != nil || !ok {
		t.Fatalf("frame2: ok=%v err=%v", ok, err)
	}

	// Overlap region is L-S = 4 samples: f1's last 4 must equal f2's
	// first 4.
	if !equal(f1[S:], f2[:L-S]) {
		t.Errorf("overlap mismatch: f1 tail %v, f2 head %v", f1[S:], f2[:L-S])
	}
}

func TestTerminalPadding(t *testing.T) {
	const L, S = 8, 4
	// Few enough samples that the final frame runs off the end of the
	// source and must be zero-padded.
	src := &sliceSource[int16]{data: []int16{1, 2, 3, 4, 5}}
	m, err := NewMaker[int16](src, Opts{Length: L, Shift: S})
	if err != nil {
		t.Fatalf("NewMaker: %v", err)
	}

	var frames [][]int16
	for {
		dst := make([]int16, L)
		ok, err := m.ReadFrame(dst)
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if !ok {
			break
		}
		frames = append(frames, dst)
		if len(frames) > 10 {
			t.Fatal("too many frames, loop did not terminate")
		}
	}
	if len(frames) == 0 {
		t.Fatal("expected at least one frame")
	}
}

func TestByteModeSource(t *testing.T) {
	const L, S = 4, 2
	samples := []int16{1, 2, 3, 4, 5, 6}
	var buf bytes.Buffer
	for _, s := range samples {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(s))
		buf.Write(b[:])
	}

	m, err := NewMaker[int16](&buf, Opts{Length: L, Shift: S})
	if err != nil {
		t.Fatalf("NewMaker: %v", err)
	}

	dst := make([]int16, L)
	ok, err := m.ReadFrame(dst)
	if err != nil || !ok {
		t.Fatalf("ReadFrame: ok=%v err=%v", ok, err)
	}
	want := []int16{0, 0, 1, 2}
	if !equal(dst, want) {
		t.Errorf("first frame = %v, want %v", dst, want)
	}
}

func TestByteModeMidSampleEOF(t *testing.T) {
	const L, S = 4, 2
	// One odd trailing byte: a sample is cut in half.
	buf := bytes.NewReader([]byte{1, 0, 2, 0, 3})
	m, err := NewMaker[int16](buf, Opts{Length: L, Shift: S})
	if err != nil {
		t.Fatalf("NewMaker: %v", err)
	}

	dst := make([]int16, L)
	if _, err := m.ReadFrame(dst); err != nil {
		t.Fatalf("first ReadFrame unexpectedly failed: %v", err)
	}
	_, err = m.ReadFrame(dst)
	if !errors.Is(err, core.ErrUnexpectedEOF) {
		t.Fatalf("error = %v, want %v", err, core.ErrUnexpectedEOF)
	}
}

func TestIncorrectFrameSize(t *testing.T) {
	src := &sliceSource[int16]{data: []int16{1, 2, 3, 4}}
	m, err := NewMaker[int16](src, Opts{Length: 8, Shift: 4})
	if err != nil {
		t.Fatalf("NewMaker: %v", err)
	}
	_, err = m.ReadFrame(make([]int16, 4))
	if !errors.Is(err, core.ErrIncorrectFrameSize) {
		t.Fatalf("error = %v, want %v", err, core.ErrIncorrectFrameSize)
	}
}

func equal(a, b []int16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
