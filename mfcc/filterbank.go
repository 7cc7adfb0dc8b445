/*
NAME
  filterbank.go

DESCRIPTION
  filterbank.go builds the Mel filterbank's bin/weight tables, mapping
  each FFT bin to the Mel channel(s) it contributes to, and applies
  them to a magnitude spectrum to produce log Mel-filterbank energies.

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

// filterBank holds, for each FFT bin in [0, N/2], the index bin[k] of
// the upper of the two adjacent Mel channels it splits its energy
// between (the lower one is bin[k]-1) and the fraction weight[k]
// assigned to that lower channel. bin[k] == numBins or bin[k]-1 < 0
// means that side of the split falls outside the filterbank and is
// dropped.
type filterBank struct {
	numBins int
	bin     []int
	weight  []float64
}

// hzToMel and melToHz use the common natural-log Mel scale (the same
// one HTK and Kaldi's triangular filterbanks are built on).
func hzToMel(f float64) float64 { return 1127 * math.Log(1+f/700) }
func melToHz(m float64) float64 { return 700 * (math.Exp(m/1127) - 1) }

// newFilterBank builds a filterBank spanning 0 Hz to the Nyquist
// frequency for an FFT of length fftLen over numBins triangular Mel
// channels.
func newFilterBank(sampleRate, fftLen, numBins int) *filterBank {
	half := fftLen / 2

	melLow := hzToMel(0)
	melHigh := hzToMel(float64(sampleRate) / 2)

	// numBins+2 boundary points define numBins triangular filters:
	// filter j has left edge centers[j], peak centers[j+1], right edge
	// centers[j+2].
	centers := make([]float64, numBins+2)
	for i := range centers {
		centers[i] = melToHz(melLow + float64(i)*(melHigh-melLow)/float64(numBins+1))
	}

	fb := &filterBank{
		numBins: numBins,
		bin:     make([]int, half+1),
		weight:  make([]float64, half+1),
	}

	for k := 1; k <= half; k++ {
		freq := float64(k) * float64(sampleRate) / float64(fftLen)

		i := 0
		for ; i <= numBins; i++ {
			upper := centers[i+1]
			if i == numBins {
				if freq >= centers[i] && freq <= upper {
					break
				}
			} else if freq >= centers[i] && freq < upper {
				break
			}
		}
		if i > numBins {
			i = numBins
		}

		fb.bin[k] = i
		fb.weight[k] = (centers[i+1] - freq) / (centers[i+1] - centers[i])
	}
	return fb
}

// apply sums spectrum (length N/2+1, index 0 unused) into numBins
// log-energy channels, clamping each channel to floor before taking
// the log.
func (fb *filterBank) apply(spectrum []float64, floor float64, dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for k := 1; k < len(spectrum); k++ {
		lower := fb.bin[k] - 1
		upper := fb.bin[k]
		w := fb.weight[k]
		e := spectrum[k]

		if lower >= 0 && lower < fb.numBins {
			dst[lower] += w * e
		}
		if upper >= 0 && upper < fb.numBins {
			dst[upper] += (1 - w) * e
		}
	}
	for i := range dst {
		if dst[i] < floor {
			dst[i] = floor
		}
		dst[i] = math.Log(dst[i])
	}
}
