/*
NAME
  fft.go

DESCRIPTION
  fft.go implements a real-input FFT derived from an N/2-point complex
  FFT via conjugate symmetry, and the underlying iterative radix-2
  decimation-in-frequency complex FFT, both driven by a single
  precomputed sine table shared across calls.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package fft provides the real-input FFT used by the Mel filterbank
// stage: a single shared sine table sized for a maximum transform
// length, a real-input transform that recovers the full spectrum of a
// real sequence from an N/2-point complex FFT by conjugate symmetry,
// and the complex FFT itself.
package fft

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/speechfeat/core"
)

// Kernel holds the sine table shared across fftr/fft calls for
// transform lengths up to the configured maximum.
type Kernel struct {
	max int
	sin []float64
}

// New builds a Kernel supporting real and complex transforms up to
// maxLength, which must be a power of two.
func New(maxLength int) (*Kernel, error) {
	if maxLength <= 0 || !isPow2(maxLength) {
		return nil, errors.Wrapf(core.ErrInvalidSize, "fft max length %d is not a positive power of two", maxLength)
	}

	size := maxLength - maxLength/4 + 1
	sin := make([]float64, size)
	for i := range sin {
		sin[i] = math.Sin(2 * math.Pi * float64(i) / float64(maxLength))
	}
	sin[0] = 0
	return &Kernel{max: maxLength, sin: sin}, nil
}

func (k *Kernel) sinAt(i int) float64 { return k.sin[i] }
func (k *Kernel) cosAt(i int) float64 { return k.sin[i+k.max/4] }

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }

// FFTR performs a real-input FFT of length m (a power of two, m <= the
// Kernel's maximum). The imaginary input is ignored. On return real and
// imag hold the full m-point spectrum.
func (k *Kernel) FFTR(real, imag []float64) error {
	m := len(real)
	if len(imag) != m {
		return errors.Wrap(core.ErrDataSizeMismatch, "fftr: real and imag lengths differ")
	}
	if m == 0 || !isPow2(m) || m > k.max {
		return errors.Wrapf(core.ErrInvalidSize, "fftr: length %d invalid for max %d", m, k.max)
	}
	if m == 1 {
		imag[0] = 0
		return nil
	}

	half := m / 2

	// Even/odd deinterleave into the first half of each array; the
	// original imag contents are discarded per contract.
	for i := 0; i < m; i++ {
		if i%2 == 0 {
			real[i/2] = real[i]
		} else {
			imag[(i-1)/2] = real[i]
		}
	}

	if err := k.FFT(real[:half], imag[:half]); err != nil {
		return errors.Wrap(err, "fftr: inner complex fft")
	}

	step := k.max / m
	for i := 1; i < half; i++ {
		s := k.sinAt(i * step)
		c := k.cosAt(i * step)

		ti := imag[half-i] + imag[i]
		tr := real[half-i] - real[i]

		real[half+i] = 0.5 * (real[half-i] + real[i] - c*ti - s*tr)
		imag[half+i] = 0.5 * (imag[i] - imag[half-i] + s*ti - c*tr)
	}

	r0, i0 := real[0], imag[0]
	real[half] = r0 - i0
	imag[half] = 0
	real[0] = r0 + i0
	imag[0] = 0

	for i := 1; i < half; i++ {
		real[i] = real[m-i]
		imag[i] = -imag[m-i]
	}
	return nil
}

// FFT performs an in-place complex FFT of length n (a power of two, n
// <= the Kernel's maximum): an iterative radix-2 decimation-in-frequency
// butterfly pass followed by a bit-reversal permutation to restore
// natural output order.
func (k *Kernel) FFT(real, imag []float64) error {
	n := len(real)
	if len(imag) != n {
		return errors.Wrap(core.ErrDataSizeMismatch, "fft: real and imag lengths differ")
	}
	if n == 0 || !isPow2(n) || n > k.max {
		return errors.Wrapf(core.ErrInvalidSize, "fft: length %d invalid for max %d", n, k.max)
	}
	if n == 1 {
		return nil
	}

	for blockSize := n; blockSize >= 2; blockSize /= 2 {
		half := blockSize / 2
		twiddleStep := k.max / blockSize

		for start := 0; start < n; start += blockSize {
			for j := 0; j < half; j++ {
				idx := j * twiddleStep
				c := k.cosAt(idx)
				s := k.sinAt(idx)

				i0 := start + j
				i1 := start + j + half

				tr, ti := real[i0], imag[i0]
				dr, di := tr-real[i1], ti-imag[i1]

				real[i0] = tr + real[i1]
				imag[i0] = ti + imag[i1]
				real[i1] = dr*c + di*s
				imag[i1] = di*c - dr*s
			}
		}
	}

	bits := 0
	for 1<<bits < n {
		bits++
	}
	for i := 0; i < n; i++ {
		j := bitReverse(i, bits)
		if i < j {
			real[i], real[j] = real[j], real[i]
			imag[i], imag[j] = imag[j], imag[i]
		}
	}
	return nil
}

func bitReverse(x, bits int) int {
	r := 0
	for i := 0; i < bits; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}
