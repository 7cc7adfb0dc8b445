/*
NAME
  glaw.go

DESCRIPTION
  glaw.go provides the fixed 256-entry A-law and µ-law decode tables
  required by ITU-T G.711, generated once at package init time from the
  standard bit-manipulation expansion rather than transcribed by hand.

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

// alawTable and ulawTable map an encoded G.711 byte to its decoded
// signed 16-bit linear PCM sample. Built once at init from the
// canonical expansion formulas so the 256 entries can't drift from a
// hand-transcribed table.
var (
	alawTable [256]int16
	ulawTable [256]int16
)

func init() {
	for i := 0; i < 256; i++ {
		alawTable[i] = alawToLinear(byte(i))
		ulawTable[i] = ulawToLinear(byte(i))
	}
}

// alawToLinear expands one A-law encoded byte to a signed 16-bit linear
// sample per the ITU-T G.711 inverse companding formula.
func alawToLinear(a byte) int16 {
	a ^= 0x55
	sign := a & 0x80
	exponent := (a & 0x70) >> 4
	mantissa := int32(a & 0x0f)

	t := mantissa << 4
	switch exponent {
	case 0:
		t += 8
	case 1:
		t += 0x108
	default:
		t += 0x108
		t <<= exponent - 1
	}
	if sign == 0 {
		t = -t
	}
	return int16(t)
}

// ulawToLinear expands one µ-law encoded byte to a signed 16-bit linear
// sample per the ITU-T G.711 inverse companding formula.
func ulawToLinear(u byte) int16 {
	const bias = 0x84
	u = ^u
	sign := u & 0x80
	exponent := (u >> 4) & 0x07
	mantissa := int32(u & 0x0f)

	sample := ((mantissa << 3) + bias) << exponent
	sample -= bias
	if sign != 0 {
		sample = -sample
	}
	return int16(sample)
}
