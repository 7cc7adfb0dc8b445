/*
NAME
  filters.go

DESCRIPTION
  filters.go implements an optional frequency-selective FIR pre-filter
  (lowpass/highpass/bandpass/bandstop) or amplifier, applied to a
  decoded float32 sample stream ahead of framing. FIR coefficient
  generation and fast convolution follow the teacher package's design.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package audiofilter provides an optional pre-framing stage: a
// windowed-sinc FIR filter (lowpass/highpass/bandpass/bandstop) or a
// plain amplifier, applied to a float32 sample stream before it reaches
// a frame.Maker.
package audiofilter

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/pkg/errors"

	"github.com/ausocean/speechfeat/core"
)

// Kind identifies the shape of a frequency-selective filter.
type Kind int

const (
	LowPass Kind = iota
	HighPass
	BandPass
	BandStop
	Amplify
)

// defaultTaps is the Taps value used when a Spec leaves Taps unset. A
// lowpass or highpass filter built from Taps has Taps+1 coefficients.
const defaultTaps = 255

// readChunk is the initial capacity, in samples, of the scratch buffer
// Filter.ReadSamples reads its upstream source into; the buffer grows
// to len(dst) when a caller asks for more.
const readChunk = 1024

// Spec configures a Filter. Cutoff holds one or two cutoff frequencies
// in Hz depending on Kind (LowPass/HighPass use Cutoff[0] only;
// BandPass/BandStop use both, as lower/upper edges). No constructor
// reads AmplifyFactor: NewAmplifier takes its gain as an argument.
type Spec struct {
	Kind          Kind
	Cutoff        [2]float64
	Taps          int
	AmplifyFactor float64
}

// BufferFormat describes the stream a Filter will operate on.
type BufferFormat struct {
	SampleRate uint
	Channels   uint
}

// Filter is a FIR frequency-selective filter or an amplifier. It
// implements core.SampleSource[float32] via ReadSamples, so it can sit
// directly between a wave.Reader and a frame.Maker.
type Filter struct {
	coeffs  []float64
	amplify float64
	isAmp   bool

	src     core.SampleSource[float32]
	scratch []float32
}

// NewLowPass builds a lowpass FIR filter with cutoff spec.Cutoff[0].
func NewLowPass(spec Spec, format BufferFormat) (*Filter, error) {
	coeffs, err := loHiCoeffs(spec.Cutoff[0], taps(spec), format, [2]float64{0, spec.Cutoff[0]})
	if err != nil {
		return nil, err
	}
	return &Filter{coeffs: coeffs}, nil
}

// NewHighPass builds a highpass FIR filter with cutoff spec.Cutoff[0].
func NewHighPass(spec Spec, format BufferFormat) (*Filter, error) {
	coeffs, err := loHiCoeffs(spec.Cutoff[0], taps(spec), format, [2]float64{spec.Cutoff[0], 0})
	if err != nil {
		return nil, err
	}
	return &Filter{coeffs: coeffs}, nil
}

// NewBandPass builds a bandpass FIR filter spanning [Cutoff[0], Cutoff[1]].
func NewBandPass(spec Spec, format BufferFormat) (*Filter, error) {
	spec.Kind = BandPass
	lo, hi, err := band(spec, format)
	if err != nil {
		return nil, err
	}
	coeffs, err := fastConvolve(hi, lo)
	if err != nil {
		return nil, errors.Wrap(err, "audiofilter: bandpass convolution")
	}
	return &Filter{coeffs: coeffs}, nil
}

// NewBandStop builds a bandstop FIR filter rejecting [Cutoff[0], Cutoff[1]].
func NewBandStop(spec Spec, format BufferFormat) (*Filter, error) {
	spec.Kind = BandStop
	lo, hi, err := band(spec, format)
	if err != nil {
		return nil, err
	}
	size := taps(spec) + 1
	coeffs := make([]float64, size)
	for i := range lo {
		coeffs[i] = lo[i] + hi[i]
	}
	return &Filter{coeffs: coeffs}, nil
}

// NewAmplifier builds a per-sample scalar gain filter, with hard
// clipping to [-1, 1] on Apply.
func NewAmplifier(factor float64) *Filter {
	return &Filter{isAmp: true, amplify: math.Abs(factor)}
}

// WithSource attaches an upstream sample source so the Filter can act
// as a frame.Maker-compatible core.SampleSource[float32] via ReadSamples.
func (f *Filter) WithSource(src core.SampleSource[float32]) *Filter {
	f.src = src
	f.scratch = make([]float32, readChunk)
	return f
}

func taps(spec Spec) int {
	if spec.Taps > 0 {
		return spec.Taps
	}
	return defaultTaps
}

// loHiCoeffs generates windowed-sinc FIR coefficients for a lowpass
// (cutoff = {0, fc}) or highpass (cutoff = {fc, 0}) filter, following
// the teacher's newLoHiFilter design.
func loHiCoeffs(fc float64, n int, format BufferFormat, cutoff [2]float64) ([]float64, error) {
	if fc <= 0 || fc >= float64(format.SampleRate)/2 {
		return nil, errors.Wrap(core.ErrInvalidSize, "audiofilter: cutoff frequency out of bounds")
	}
	if n <= 0 {
		return nil, errors.Wrap(core.ErrInvalidSize, "audiofilter: filter length must be positive")
	}

	var fd, factor1, factor2 float64
	switch {
	case cutoff[0] == 0: // lowpass.
		fd = cutoff[1] / float64(format.SampleRate)
		factor1 = 1
		factor2 = 2 * fd
	case cutoff[1] == 0: // highpass.
		fd = cutoff[0] / float64(format.SampleRate)
		factor1 = -1
		factor2 = 1 - 2*fd
	default:
		return nil, errors.Wrap(core.ErrInvalidSize, "audiofilter: loHiCoeffs requires a lowpass or highpass cutoff pair")
	}

	size := n + 1
	coeffs := make([]float64, size)
	b := 2 * math.Pi * fd
	winData := window.FlatTop(size)
	for i := 0; i < n/2; i++ {
		c := float64(i) - float64(n)/2
		y := math.Sin(c*b) / (math.Pi * c)
		coeffs[i] = factor1 * y * winData[i]
		coeffs[size-1-i] = coeffs[i]
	}
	coeffs[n/2] = factor2 * winData[n/2]
	return coeffs, nil
}

// band builds the highpass/lowpass coefficient pairs a bandpass or
// bandstop filter is composed from.
func band(spec Spec, format BufferFormat) (lo, hi []float64, err error) {
	lower, upper := spec.Cutoff[0], spec.Cutoff[1]
	if lower <= 0 || lower >= float64(format.SampleRate)/2 || upper <= 0 || upper >= float64(format.SampleRate)/2 {
		return nil, nil, errors.Wrap(core.ErrInvalidSize, "audiofilter: cutoff frequencies out of bounds")
	}
	n := taps(spec)

	if spec.Kind == BandStop {
		lower, upper = upper, lower
	}
	hi, err = loHiCoeffs(lower, n, format, [2]float64{lower, 0})
	if err != nil {
		return nil, nil, errors.Wrap(err, "audiofilter: highpass component")
	}
	lo, err = loHiCoeffs(upper, n, format, [2]float64{0, upper})
	if err != nil {
		return nil, nil, errors.Wrap(err, "audiofilter: lowpass component")
	}
	return lo, hi, nil
}

// Apply convolves frame with the filter's FIR coefficients (or, for an
// amplifier, scales and clips each sample) and returns the result. For
// a FIR filter the result has length len(frame)+len(coefficients)-1
// (the full linear convolution); callers composing a fixed-size stream
// trim it to the input length themselves.
func (f *Filter) Apply(frame []float32) ([]float32, error) {
	if f.isAmp {
		out := make([]float32, len(frame))
		for i, s := range frame {
			v := float64(s) * f.amplify
			switch {
			case v > 1:
				v = 1
			case v < -1:
				v = -1
			}
			out[i] = float32(v)
		}
		return out, nil
	}

	x := make([]float64, len(frame))
	for i, s := range frame {
		x[i] = float64(s)
	}
	y, err := fastConvolve(x, f.coeffs)
	if err != nil {
		return nil, errors.Wrap(err, "audiofilter: apply")
	}
	out := make([]float32, len(y))
	for i, v := range y {
		out[i] = float32(v)
	}
	return out, nil
}

// ReadSamples implements core.SampleSource[float32]: it pulls up to
// len(dst) samples from the upstream source, filters the chunk and
// copies the (trimmed) result into dst.
func (f *Filter) ReadSamples(dst []float32) (int, error) {
	if f.src == nil {
		return 0, errors.Wrap(core.ErrBadState, "audiofilter: Read called without a source (use WithSource)")
	}
	if len(dst) > len(f.scratch) {
		f.scratch = make([]float32, len(dst))
	}
	n, err := f.src.ReadSamples(f.scratch[:len(dst)])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	filtered, err := f.Apply(f.scratch[:n])
	if err != nil {
		return 0, err
	}
	return copy(dst, filtered[:n]), nil
}

// fastConvolve computes the linear convolution of x and h in
// O(n log n) via zero-padded FFT multiplication.
func fastConvolve(x, h []float64) ([]float64, error) {
	if len(x) == 0 || len(h) == 0 {
		return nil, errors.Wrap(core.ErrInvalidSize, "audiofilter: convolution requires non-empty inputs")
	}

	convLen := len(x) + len(h) - 1
	padLen := 1
	for padLen < convLen {
		padLen *= 2
	}

	xp := make([]float64, padLen)
	hp := make([]float64, padLen)
	copy(xp, x)
	copy(hp, h)

	xFFT, hFFT := fft.FFTReal(xp), fft.FFTReal(hp)
	yFFT := make([]complex128, padLen)
	for i := range xFFT {
		yFFT[i] = xFFT[i] * hFFT[i]
	}

	iy := fft.IFFT(yFFT)
	y := make([]float64, convLen)
	for i := range y {
		y[i] = real(iy[i])
	}
	return y, nil
}
