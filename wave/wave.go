/*
NAME
  wave.go

DESCRIPTION
  wave.go implements a streaming RIFF/WAVE decoder: chunk-based header
  parsing followed by sample-at-a-time decoding across the PCM, IEEE
  float and G.711 companded sub-formats, including the Extensible
  format's sub-format indirection.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package wave provides a streaming decoder for RIFF/WAVE audio: header
// parsing across arbitrary chunk orderings and sample decoding across
// the PCM, IEEE-float, A-law and µ-law sub-formats (including the
// Extensible format's sub-format indirection) into a canonical signed
// 32-bit intermediate, converted on demand to int16 or float32 output.
package wave

import (
	"encoding/binary"
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/speechfeat/core"
)

// Format is a WAVE format code, as found in the "fmt " chunk's
// wFormatTag field (or, for Extensible, in the sub-format GUID's first
// two bytes).
type Format uint16

// Supported WAVE format codes.
const (
	FormatPCM        Format = 1
	FormatIEEEFloat  Format = 3
	FormatALaw       Format = 6
	FormatULaw       Format = 7
	FormatExtensible Format = 0xFFFE
)

// Chunk and header size constants.
const (
	riffHeaderSize = 12 // "RIFF" + u32 size + "WAVE".
	chunkHeadSize  = 8  // 4-byte ID + u32 LE size.
	fmtMinSize     = 16
	fmtMaxSize     = 40
	fmtScratchSize = 40
)

// Header describes the format of a WAVE file's sample data, as parsed
// from its "fmt " chunk.
type Header struct {
	Format             Format
	NumChannels        uint16
	SampleRate         uint32
	ByteRate           uint32
	BlockAlign         uint16
	BitsPerSample      uint16
	ExtensionSize      uint16
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          Format
}

// effectiveFormat returns the format that governs sample decoding: the
// sub-format for Extensible headers, or Format otherwise.
func (h Header) effectiveFormat() Format {
	if h.Format == FormatExtensible {
		return h.SubFormat
	}
	return h.Format
}

// validate checks the invariants the decoder depends on: a supported
// bits-per-sample for the effective format.
func (h Header) validate() error {
	switch h.effectiveFormat() {
	case FormatPCM:
		switch h.BitsPerSample {
		case 8, 16, 24, 32:
			return nil
		}
	case FormatIEEEFloat:
		if h.BitsPerSample == 32 {
			return nil
		}
	case FormatALaw, FormatULaw:
		if h.BitsPerSample == 8 {
			return nil
		}
	default:
		return errors.Wrapf(core.ErrUnsupportedFormat, "format code 0x%x", uint16(h.effectiveFormat()))
	}
	return errors.Wrapf(core.ErrUnsupportedFormat, "%d bits per sample for format 0x%x", h.BitsPerSample, uint16(h.effectiveFormat()))
}

// readerState tracks the WaveReader's position in its lifecycle:
// fresh -> headerOK -> draining -> eof, with a sticky bad state
// absorbing any error.
type readerState int

const (
	stateFresh readerState = iota
	stateHeaderOK
	stateDraining
	stateEOF
	stateBad
)

// Reader decodes samples of type T from a RIFF/WAVE byte stream. The
// header is parsed lazily on the first call to ReadSamples or Header.
// A Reader is single-use and not safe for concurrent use.
type Reader[T core.Sample] struct {
	src   io.Reader
	log   logging.Logger
	state readerState
	hdr   Header

	remaining     uint32 // data bytes not yet consumed.
	bytesPerCycle int    // bytes per sample in the data chunk.
	pad           bool   // true if the data chunk size is odd (RIFF padding).

	scratch [fmtScratchSize]byte
	sample  [4]byte // per-sample decode scratch, widest at 4 bytes.
}

// NewReader returns a Reader that will parse its header and decode
// samples from src on first use.
func NewReader[T core.Sample](src io.Reader) *Reader[T] {
	return &Reader[T]{src: src}
}

// SetLogger attaches a logger that header-parse failures and format
// decisions are reported to at Debug level. A Reader with no logger set
// logs nothing; this is safe to leave unset for library use.
func (r *Reader[T]) SetLogger(l logging.Logger) { r.log = l }

// debug reports msg at Debug level if a logger has been attached.
func (r *Reader[T]) debug(msg string, args ...interface{}) {
	if r.log != nil {
		r.log.Debug(msg, args...)
	}
}

// Header forces the WAVE header to be parsed (if not parsed already)
// and returns a copy of it.
func (r *Reader[T]) Header() (Header, error) {
	if err := r.ensureHeader(); err != nil {
		return Header{}, err
	}
	return r.hdr, nil
}

// ReadSamples fills dst with decoded samples and returns the number
// written. It returns 0, nil only on clean end of the data chunk.
func (r *Reader[T]) ReadSamples(dst []T) (int, error) {
	if r.state == stateBad {
		return 0, core.ErrBadState
	}

	if err := r.ensureHeader(); err != nil {
		return 0, r.fail(err)
	}

	if r.state == stateEOF {
		return 0, nil
	}

	if r.remaining == 0 {
		r.state = stateEOF
		return 0, nil
	}
	if r.remaining < uint32(r.bytesPerCycle) {
		return 0, r.fail(errors.Wrap(core.ErrUnexpectedEOF, "partial trailing sample in data chunk"))
	}

	max := int(r.remaining) / r.bytesPerCycle
	n := len(dst)
	if n > max {
		n = max
	}

	decode := decoderFor[T](r.hdr)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r.src, r.sample[:r.bytesPerCycle]); err != nil {
			return i, r.fail(errors.Wrap(core.ErrUnexpectedEOF, "reading sample bytes"))
		}
		dst[i] = decode(r.sample[:r.bytesPerCycle])
	}
	r.remaining -= uint32(n * r.bytesPerCycle)
	r.state = stateDraining

	if r.remaining == 0 && r.pad {
		// RIFF chunks are padded to an even length; consume the pad
		// byte so a subsequent (non-existent) chunk read wouldn't be
		// attempted, and so the reader cleanly reports EOF next call.
		var b [1]byte
		io.ReadFull(r.src, b[:]) //nolint:errcheck // best effort; absent pad byte is not fatal.
	}
	return n, nil
}

// fail transitions the Reader to the sticky bad state and returns err
// unchanged, for convenient `return 0, r.fail(err)` call sites.
func (r *Reader[T]) fail(err error) error {
	r.state = stateBad
	r.debug("wave reader failed", "error", err)
	return err
}

// ensureHeader parses the header exactly once.
func (r *Reader[T]) ensureHeader() error {
	if r.state != stateFresh {
		return nil
	}

	if err := r.parseRIFF(); err != nil {
		return r.fail(err)
	}

	var sawFmt bool
	for {
		id, size, err := r.readChunkHead()
		if err != nil {
			return r.fail(err)
		}

		switch id {
		case "fmt ":
			if size < fmtMinSize || size > fmtMaxSize {
				return r.fail(errors.Wrapf(core.ErrBadHeader, "fmt chunk size %d out of range", size))
			}
			if err := r.readFmtChunk(size); err != nil {
				return r.fail(err)
			}
			sawFmt = true

		case "data":
			if !sawFmt {
				return r.fail(errors.Wrap(core.ErrBadHeader, "data chunk before fmt chunk"))
			}
			if err := r.hdr.validate(); err != nil {
				return r.fail(err)
			}
			r.remaining = size
			r.pad = size%2 == 1
			r.bytesPerCycle = int(r.hdr.BitsPerSample) / 8
			r.state = stateHeaderOK
			r.debug("wave header parsed", "format", uint16(r.hdr.effectiveFormat()), "bitsPerSample", r.hdr.BitsPerSample, "sampleRate", r.hdr.SampleRate, "dataBytes", size)
			return nil

		default:
			if err := skip(r.src, size); err != nil {
				return r.fail(errors.Wrap(core.ErrUnexpectedEOF, "skipping unknown chunk"))
			}
			if size%2 == 1 {
				if err := skip(r.src, 1); err != nil {
					return r.fail(errors.Wrap(core.ErrUnexpectedEOF, "skipping chunk pad byte"))
				}
			}
		}
	}
}

// parseRIFF reads and validates the 12-byte RIFF/WAVE preamble.
func (r *Reader[T]) parseRIFF() error {
	var hdr [riffHeaderSize]byte
	if _, err := io.ReadFull(r.src, hdr[:]); err != nil {
		return errors.Wrap(core.ErrUnexpectedEOF, "reading RIFF preamble")
	}
	if string(hdr[0:4]) != "RIFF" {
		return errors.Wrap(core.ErrBadHeader, "missing RIFF tag")
	}
	if string(hdr[8:12]) != "WAVE" {
		return errors.Wrap(core.ErrBadHeader, "missing WAVE tag")
	}
	return nil
}

// readChunkHead reads an 8-byte (id, size) chunk header.
func (r *Reader[T]) readChunkHead() (string, uint32, error) {
	var hdr [chunkHeadSize]byte
	if _, err := io.ReadFull(r.src, hdr[:]); err != nil {
		return "", 0, errors.Wrap(core.ErrUnexpectedEOF, "reading chunk header")
	}
	return string(hdr[0:4]), binary.LittleEndian.Uint32(hdr[4:8]), nil
}

// readFmtChunk reads a "fmt " chunk of the given size into the Reader's
// scratch buffer and unmarshals its fields.
func (r *Reader[T]) readFmtChunk(size uint32) error {
	buf := r.scratch[:fmtScratchSize]
	for i := range buf {
		buf[i] = 0
	}
	if _, err := io.ReadFull(r.src, buf[:size]); err != nil {
		return errors.Wrap(core.ErrUnexpectedEOF, "reading fmt chunk")
	}
	if size%2 == 1 {
		if err := skip(r.src, 1); err != nil {
			return errors.Wrap(core.ErrUnexpectedEOF, "skipping fmt chunk pad byte")
		}
	}

	le := binary.LittleEndian
	h := &r.hdr
	h.Format = Format(le.Uint16(buf[0:2]))
	h.NumChannels = le.Uint16(buf[2:4])
	h.SampleRate = le.Uint32(buf[4:8])
	h.ByteRate = le.Uint32(buf[8:12])
	h.BlockAlign = le.Uint16(buf[12:14])
	h.BitsPerSample = le.Uint16(buf[14:16])

	if size >= 18 {
		h.ExtensionSize = le.Uint16(buf[16:18])
	}
	if h.Format == FormatExtensible && size >= 40 && h.ExtensionSize >= 22 {
		h.ValidBitsPerSample = le.Uint16(buf[18:20])
		h.ChannelMask = le.Uint32(buf[20:24])
		h.SubFormat = Format(le.Uint16(buf[24:26]))
	}
	return nil
}

// skip reads and discards exactly n bytes from r, failing if it hits
// EOF first.
func skip(r io.Reader, n uint32) error {
	_, err := io.CopyN(io.Discard, r, int64(n))
	return err
}
