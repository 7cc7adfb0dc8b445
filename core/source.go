/*
DESCRIPTION
  source.go defines the pull-based capabilities that stages compose over:
  a structured sample/frame reader, and the plain byte-stream fallback.
  A constructor type-switches on its source once, per the composition
  rule in the design notes, rather than branching on every read.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package core

// Sample is the set of parametric sample types a stage can produce or
// consume: signed 16-bit PCM, or 32-bit float in [-1, 1).
type Sample interface {
	~int16 | ~float32
}

// SampleSource is the structured pull capability: read up to len(dst)
// samples of T, returning the number written. A return of 0 with a nil
// error signals clean end of stream; any other error is fatal.
type SampleSource[T Sample] interface {
	ReadSamples(dst []T) (int, error)
}

// FrameSource is the structured pull capability exposed by a frame
// producer (e.g. FrameMaker, MfccMaker): read one fixed-length frame of
// T into dst, reporting false (with a nil error) on clean end of stream.
type FrameSource[T any] interface {
	ReadFrame(dst []T) (bool, error)
}

const (
	// MaxInt32 is the canonical intermediate sample representation's
	// maximum magnitude, used throughout wave's decode arithmetic.
	MaxInt32 = 1<<31 - 1
	// MinInt32 is the canonical intermediate sample representation's
	// minimum value.
	MinInt32 = -1 << 31
)
