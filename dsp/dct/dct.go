/*
NAME
  dct.go

DESCRIPTION
  dct.go implements the DCT-II used by the cepstral stage via a
  symmetric 2N-point extension fed through a dense DFT matrix, following
  up with the twiddle multiplication that recovers the DCT coefficients
  from the underlying complex DFT.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dct provides the DCT-II kernel used to turn log Mel
// filterbank energies into cepstral coefficients. The transform is
// expressed as a symmetric extension of the input fed through a dense
// 2N-point DFT matrix (gonum.org/v1/gonum/mat), rather than a
// dedicated fast DCT algorithm; see the design notes for why.
package dct

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/speechfeat/core"
)

// Kernel holds the precomputed twiddle factors and dense DFT matrices
// for a fixed input size N.
type Kernel struct {
	n int

	wReal []float64
	wImag []float64

	cosM *mat.Dense
	sinM *mat.Dense
}

// New builds a Kernel for an N-point DCT-II.
func New(n int) (*Kernel, error) {
	if n <= 0 {
		return nil, errors.Wrapf(core.ErrInvalidSize, "dct size %d must be positive", n)
	}

	size := 2 * n
	wReal := make([]float64, n)
	wImag := make([]float64, n)
	norm := math.Sqrt(float64(size))
	for k := 0; k < n; k++ {
		angle := float64(k) * math.Pi / float64(size)
		wReal[k] = math.Cos(angle) / norm
		wImag[k] = -math.Sin(angle) / norm
	}
	wReal[0] /= math.Sqrt2
	wImag[0] /= math.Sqrt2

	cosM := mat.NewDense(size, size, nil)
	sinM := mat.NewDense(size, size, nil)
	for kk := 0; kk < size; kk++ {
		for nn := 0; nn < size; nn++ {
			theta := 2 * math.Pi * float64(kk) * float64(nn) / float64(size)
			cosM.Set(kk, nn, math.Cos(theta))
			sinM.Set(kk, nn, math.Sin(theta))
		}
	}

	return &Kernel{n: n, wReal: wReal, wImag: wImag, cosM: cosM, sinM: sinM}, nil
}

// Apply transforms data (length 2N, a complex sequence laid out as N
// real values followed by N imaginary values) in place into its DCT-II
// coefficients, similarly laid out.
//
// The symmetric-extension workspace is allocated afresh on each call;
// the Kernel's twiddles and DFT matrices are only read.
func (k *Kernel) Apply(data []float64) error {
	n := k.n
	size := 2 * n
	if len(data) != size {
		return errors.Wrapf(core.ErrInvalidSize, "dct: data length %d, want %d", len(data), size)
	}

	localReal := make([]float64, size)
	localImag := make([]float64, size)
	for i := 0; i < n; i++ {
		localReal[i] = data[i]
		localImag[i] = data[i+n]
		localReal[i+n] = data[n-1-i]
		localImag[i+n] = data[size-1-i]
	}

	lr := mat.NewVecDense(size, localReal)
	li := mat.NewVecDense(size, localImag)

	var cr, sl, ci, sr mat.VecDense
	cr.MulVec(k.cosM, lr)
	sl.MulVec(k.sinM, li)
	ci.MulVec(k.cosM, li)
	sr.MulVec(k.sinM, lr)

	for kk := 0; kk < n; kk++ {
		tr := cr.AtVec(kk) + sl.AtVec(kk)
		ti := ci.AtVec(kk) - sr.AtVec(kk)
		data[kk] = tr*k.wReal[kk] - ti*k.wImag[kk]
		data[kk+n] = tr*k.wImag[kk] + ti*k.wReal[kk]
	}
	return nil
}
