/*
NAME
  window.go

DESCRIPTION
  window.go implements the analysis window functions available to
  MfccMaker: Hanning, Hamming, Povey, Rectangular and Blackman.

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

import "math"

// Window selects the analysis window applied to a frame before the FFT.
type Window int

const (
	Hanning Window = iota
	Hamming
	Povey
	Rectangular
	Blackman
)

// buildWindow returns the length-l window coefficients for w.
// blackmanCoeff is only used when w == Blackman.
func buildWindow(w Window, l int, blackmanCoeff float64) []float64 {
	win := make([]float64, l)
	if l == 1 {
		win[0] = 1
		return win
	}
	a := 2 * math.Pi / float64(l-1)

	switch w {
	case Hanning:
		for i := range win {
			win[i] = 0.5 - 0.5*math.Cos(a*float64(i))
		}
	case Hamming:
		for i := range win {
			win[i] = 0.54 - 0.46*math.Cos(a*float64(i))
		}
	case Povey:
		for i := range win {
			win[i] = math.Pow(0.5-0.5*math.Cos(a*float64(i)), 0.85)
		}
	case Rectangular:
		for i := range win {
			win[i] = 1.0
		}
	case Blackman:
		b := blackmanCoeff
		for i := range win {
			x := a * float64(i)
			win[i] = b - 0.5*math.Cos(x) + (0.5-b)*math.Cos(2*x)
		}
	default:
		for i := range win {
			win[i] = 1.0
		}
	}
	return win
}
