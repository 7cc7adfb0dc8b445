/*
DESCRIPTION
  errors.go defines the error taxonomy shared by the wave, frame, dsp and
  mfcc packages. Every stage in the feature-extraction pipeline raises one
  of these sentinels, wrapped with call-site context via pkg/errors, so
  that callers can classify a failure with errors.Is regardless of which
  stage produced it.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package core provides shared error kinds, the pull-source interfaces
// used for stage-to-stage composition, and small numeric helpers common
// to the wave, frame, dsp and mfcc packages.
package core

import "errors"

// Error kinds. These are not Go error types but sentinel values; wrap them
// with pkg/errors.Wrap/Wrapf to add call-site context while keeping
// errors.Is matching against the sentinel.
var (
	// ErrBadHeader indicates a structurally invalid WAVE header.
	ErrBadHeader = errors.New("bad header")

	// ErrUnsupportedFormat indicates a format code, or a bits-per-sample
	// and format combination, that this package does not decode.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnsupportedSampleType indicates a requested output sample type
	// that is not one of the supported parametric types.
	ErrUnsupportedSampleType = errors.New("unsupported sample type")

	// ErrUnexpectedEOF indicates a short read inside a region whose
	// length was declared up front (a chunk, a sample, a frame).
	ErrUnexpectedEOF = errors.New("unexpected eof")

	// ErrDataSizeMismatch indicates two buffers that a kernel requires to
	// be the same length are not.
	ErrDataSizeMismatch = errors.New("data size mismatch")

	// ErrInvalidSize indicates a length that is not a power of two, not
	// positive, or exceeds a kernel's configured maximum.
	ErrInvalidSize = errors.New("invalid size")

	// ErrIncorrectFrameSize indicates a destination slice whose length
	// does not match the configured frame or feature length.
	ErrIncorrectFrameSize = errors.New("incorrect frame size")

	// ErrBufferTooShort indicates a caller-supplied buffer that cannot
	// hold one unit of output (a frame, a feature vector).
	ErrBufferTooShort = errors.New("buffer too short")

	// ErrBadState is returned by every method of a stage that has
	// previously failed fatally; the state is sticky for the object's
	// remaining lifetime.
	ErrBadState = errors.New("bad state")
)
