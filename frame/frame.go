/*
NAME
  frame.go

DESCRIPTION
  frame.go implements Maker, which turns a pulled sample stream into
  fixed-length overlapping frames with Kaldi-style initial half-frame
  zero padding, ready for per-frame DSP.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame converts a sample stream into equal-length overlapping
// frames. A ring buffer of capacity equal to the frame length holds the
// sliding window; the read cursor advances by the shift each call while
// the write cursor only ever advances forward, so successive frames
// share L-S samples with their predecessor.
package frame

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/speechfeat/core"
)

// Opts configures a Maker: Length is the frame length L in samples,
// Shift is the hop size S between successive frames.
type Opts struct {
	Length int
	Shift  int
}

func (o Opts) validate() error {
	if o.Length <= 0 || o.Shift <= 0 {
		return errors.Wrapf(core.ErrInvalidSize, "frame length %d and shift %d must be positive", o.Length, o.Shift)
	}
	if o.Shift > o.Length {
		return errors.Wrapf(core.ErrInvalidSize, "shift %d exceeds frame length %d", o.Shift, o.Length)
	}
	return nil
}

type state int

const (
	stateRunning state = iota
	stateTerminal // one more frame to emit, already zero-padded.
	stateDone
	stateBad
)

// Maker pulls samples from an upstream source and emits fixed-length
// overlapping frames via ReadFrame. A Maker is single-use and not safe
// for concurrent use.
type Maker[T core.Sample] struct {
	opts Opts

	sampled core.SampleSource[T]
	byteSrc io.Reader // used when the upstream only exposes bytes.

	ring  []T
	write int // next ring index to be written.
	read  int // ring index the current frame starts at.

	first bool
	state state

	sampleBuf []T      // scratch for the structured-source read path.
	byteBuf   []byte   // scratch for the byte-mode read path, sizeof(T) per sample.
}

// NewMaker constructs a Maker reading from src, which must implement
// core.SampleSource[T] or be a plain io.Reader of raw little-endian
// T-typed samples.
func NewMaker[T core.Sample](src any, opts Opts) (*Maker[T], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	m := &Maker[T]{
		opts:  opts,
		ring:  make([]T, opts.Length),
		first: true,
	}

	switch s := src.(type) {
	case core.SampleSource[T]:
		m.sampled = s
	case io.Reader:
		m.byteSrc = s
		m.byteBuf = make([]byte, opts.Length*sampleSize[T]())
	default:
		return nil, errors.Wrap(core.ErrBadState, "frame: source implements neither SampleSource nor io.Reader")
	}

	initial := halfCeil(opts.Length)
	// The ring starts entirely zeroed (Go's zero value), so the initial
	// half-frame of padding is already in place; only the write cursor
	// needs to move past it.
	m.write = initial % opts.Length
	m.sampleBuf = make([]T, opts.Length)

	return m, nil
}

// halfCeil returns ceil(n/2).
func halfCeil(n int) int { return (n + 1) / 2 }

func sampleSize[T core.Sample]() int {
	var zero T
	switch any(zero).(type) {
	case int16:
		return 2
	case float32:
		return 4
	default:
		panic("frame: unsupported sample type")
	}
}

// ReadFrame fills dst (which must have length Opts.Length) with the
// next frame and returns true, or returns false with a nil error on
// clean end of stream.
func (m *Maker[T]) ReadFrame(dst []T) (bool, error) {
	if m.state == stateBad {
		return false, core.ErrBadState
	}
	if len(dst) != m.opts.Length {
		return false, m.fail(errors.Wrapf(core.ErrIncorrectFrameSize, "dst length %d, want %d", len(dst), m.opts.Length))
	}
	if m.state == stateDone {
		return false, nil
	}

	need := m.opts.Shift
	if m.first {
		need = halfCeil(m.opts.Length)
	}

	got, err := m.pull(need)
	if err != nil {
		return false, m.fail(err)
	}
	if got == 0 {
		m.state = stateDone
		return false, nil
	}
	if got < need {
		m.zeroPad(got, need-got)
		m.state = stateTerminal
	}

	for i := 0; i < m.opts.Length; i++ {
		dst[i] = m.ring[(m.read+i)%m.opts.Length]
	}
	m.read = (m.read + m.opts.Shift) % m.opts.Length
	m.first = false

	if m.state == stateTerminal {
		m.state = stateDone
	}
	return true, nil
}

// fail transitions the Maker to the sticky bad state and returns err
// unchanged.
func (m *Maker[T]) fail(err error) error {
	m.state = stateBad
	return err
}

// pull reads up to need samples from the upstream source into the ring
// at the write cursor, wrapping, and returns the number actually
// obtained. A clean end of stream with zero samples obtained yields
// (0, nil); any other shortfall is left for the caller to zero-pad.
func (m *Maker[T]) pull(need int) (int, error) {
	buf := m.sampleBuf[:need]

	var got int
	var err error
	if m.sampled != nil {
		got, err = m.sampled.ReadSamples(buf)
	} else {
		got, err = m.pullBytes(buf)
	}
	if err != nil {
		return 0, err
	}

	for i := 0; i < got; i++ {
		m.ring[m.write] = buf[i]
		m.write = (m.write + 1) % m.opts.Length
	}
	return got, nil
}

// pullBytes reinterprets the byte-mode source as a stream of raw
// little-endian T samples, failing UnexpectedEOF on a source that ends
// mid-sample.
func (m *Maker[T]) pullBytes(dst []T) (int, error) {
	size := sampleSize[T]()
	want := len(dst) * size
	n, err := io.ReadFull(m.byteSrc, m.byteBuf[:want])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, errors.Wrap(err, "frame: reading byte-mode source")
	}

	full := n / size
	if err != nil && n%size != 0 {
		return 0, errors.Wrap(core.ErrUnexpectedEOF, "frame: byte-mode source ended mid-sample")
	}

	decode := decoderFor[T]()
	for i := 0; i < full; i++ {
		dst[i] = decode(m.byteBuf[i*size : (i+1)*size])
	}
	return full, nil
}

// decoderFor returns the little-endian raw-byte decoder for T.
func decoderFor[T core.Sample]() func([]byte) T {
	var zero T
	switch any(zero).(type) {
	case int16:
		return func(b []byte) T { return any(int16(binary.LittleEndian.Uint16(b))).(T) }
	case float32:
		return func(b []byte) T {
			return any(math.Float32frombits(binary.LittleEndian.Uint32(b))).(T)
		}
	default:
		panic("frame: unsupported sample type")
	}
}

// zeroPad fills the count positions following the already-written got
// samples with zero, advancing the write cursor over them.
func (m *Maker[T]) zeroPad(got, count int) {
	var zero T
	for i := 0; i < count; i++ {
		m.ring[m.write] = zero
		m.write = (m.write + 1) % m.opts.Length
	}
}
