/*
NAME
  decode.go

DESCRIPTION
  decode.go implements sample decoding: the per-format raw byte decoders
  that produce the canonical signed 32-bit intermediate described in the
  data model, and the canonical-to-output conversions for the supported
  parametric sample types.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package wave

import (
	"encoding/binary"
	"math"

	"github.com/ausocean/speechfeat/core"
)

// decoderFor returns a closure decoding one raw sample's bytes into T,
// composing the format-specific canonical decode with the
// canonical-to-T conversion. It is resolved once per ReadSamples call,
// not on every sample.
func decoderFor[T core.Sample](hdr Header) func([]byte) T {
	raw := rawDecoderFor(hdr)
	convert := converterFor[T]()
	return func(b []byte) T { return convert(raw(b)) }
}

// rawDecoderFor selects the canonical-intermediate decoder for the
// header's effective format and bit depth. hdr is assumed to have
// already passed Header.validate.
func rawDecoderFor(hdr Header) func([]byte) int32 {
	switch hdr.effectiveFormat() {
	case FormatPCM:
		switch hdr.BitsPerSample {
		case 8:
			return decodePCM8
		case 16:
			return decodePCM16LE
		case 24:
			return decodePCM24LE
		case 32:
			return decodePCM32LE
		}
	case FormatIEEEFloat:
		return decodeFloat32LE
	case FormatALaw:
		return decodeALaw
	case FormatULaw:
		return decodeULaw
	}
	panic("wave: unreachable, unvalidated header reached sample decode")
}

// decodePCM8 decodes an unsigned 8-bit PCM sample, centering it at 0.
func decodePCM8(b []byte) int32 {
	return int32(uint32(b[0])<<24 ^ 0x80000000)
}

// decodePCM16LE decodes a signed little-endian 16-bit PCM sample.
func decodePCM16LE(b []byte) int32 {
	return int32(int16(binary.LittleEndian.Uint16(b))) << 16
}

// decodePCM24LE decodes a signed little-endian 24-bit PCM sample.
func decodePCM24LE(b []byte) int32 {
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&0x800000 != 0 {
		v |= ^int32(0xFFFFFF)
	}
	return v << 8
}

// decodePCM32LE decodes a signed little-endian 32-bit PCM sample,
// already in the canonical representation.
func decodePCM32LE(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// decodeFloat32LE decodes a little-endian IEEE-754 binary32 sample by
// scaling into the canonical signed 32-bit range, rounding away from
// zero and clamping.
func decodeFloat32LE(b []byte) int32 {
	f := math.Float32frombits(binary.LittleEndian.Uint32(b))
	scaled := float64(f) * (1 + float64(core.MaxInt32))
	if scaled >= 0 {
		scaled += 0.5
	} else {
		scaled -= 0.5
	}
	switch {
	case scaled > float64(core.MaxInt32):
		return core.MaxInt32
	case scaled < float64(core.MinInt32):
		return core.MinInt32
	default:
		return int32(scaled)
	}
}

// decodeALaw decodes an A-law companded 8-bit sample via G.711 table
// lookup, then widens to the canonical representation.
func decodeALaw(b []byte) int32 {
	return int32(alawTable[b[0]]) << 16
}

// decodeULaw decodes a µ-law companded 8-bit sample via G.711 table
// lookup, then widens to the canonical representation.
func decodeULaw(b []byte) int32 {
	return int32(ulawTable[b[0]]) << 16
}

// converterFor returns the canonical-to-T conversion for the requested
// parametric sample type.
func converterFor[T core.Sample]() func(int32) T {
	var zero T
	switch any(zero).(type) {
	case int16:
		return func(v int32) T { return any(toInt16(v)).(T) }
	case float32:
		return func(v int32) T { return any(toFloat32(v)).(T) }
	default:
		panic("wave: unsupported sample type")
	}
}

// toInt16 right-shifts the canonical sample by 16 bits and clamps it to
// ±32767.
func toInt16(v int32) int16 {
	s := v >> 16
	switch {
	case s > 32767:
		return 32767
	case s < -32767:
		return -32767
	default:
		return int16(s)
	}
}

// toFloat32 scales the canonical sample into [-1, 1).
func toFloat32(v int32) float32 {
	return float32(float64(v) / (1 + float64(core.MaxInt32)))
}
