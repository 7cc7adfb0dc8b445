/*
NAME
  mfcc.go

DESCRIPTION
  mfcc.go implements MfccMaker, which drives the per-frame pipeline of
  dither, DC removal, pre-emphasis, windowing, FFT magnitude spectrum,
  Mel filterbank, DCT and liftering into Mel-filterbank or MFCC feature
  vectors.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mfcc turns overlapping sample frames into Mel-filterbank
// energy or MFCC feature vectors.
package mfcc

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ausocean/speechfeat/core"
	"github.com/ausocean/speechfeat/dsp/dct"
	"github.com/ausocean/speechfeat/dsp/fft"
)

// OutputType selects whether ReadFrame emits log Mel-filterbank
// energies or cepstral coefficients.
type OutputType int

const (
	MelEnergy OutputType = iota
	MFCC
)

// MelOpts configures an MfccMaker.
type MelOpts struct {
	FrameLength       int
	SampleRate        int
	RemoveDCOffset    bool
	Dither            float64
	PreemphCoeff      float64
	LifteringCoeff    float64
	BlackmanCoeff     float64
	Window            Window
	FilterbankFloor   float64
	FilterbankNumBins int
	MfccOrder         int
	OutputType        OutputType
	OutputEnergy      bool
	OutputC0          bool
}

// DefaultMelOpts returns the field defaults from the data model: a
// 256-sample frame at 16 kHz, Povey windowing, 20-channel filterbank
// and 12th-order MFCC output with energy but no C0.
func DefaultMelOpts() MelOpts {
	return MelOpts{
		FrameLength:       256,
		SampleRate:        16000,
		RemoveDCOffset:    true,
		Dither:            1.0,
		PreemphCoeff:      0.97,
		LifteringCoeff:    22.0,
		BlackmanCoeff:     0.42,
		Window:            Povey,
		FilterbankFloor:   1.0,
		FilterbankNumBins: 20,
		MfccOrder:         12,
		OutputType:        MFCC,
		OutputEnergy:      true,
		OutputC0:          false,
	}
}

func (o MelOpts) validate() error {
	if o.FrameLength <= 0 {
		return errors.Wrap(core.ErrInvalidSize, "mfcc: frame length must be positive")
	}
	if o.SampleRate <= 0 {
		return errors.Wrap(core.ErrInvalidSize, "mfcc: sample rate must be positive")
	}
	if o.FilterbankNumBins <= 0 {
		return errors.Wrap(core.ErrInvalidSize, "mfcc: filterbank_num_bins must be positive")
	}
	if o.OutputType == MFCC && (o.MfccOrder <= 0 || o.MfccOrder >= o.FilterbankNumBins) {
		return errors.Wrap(core.ErrInvalidSize, "mfcc: mfcc_order must be positive and less than filterbank_num_bins")
	}
	if o.FilterbankFloor <= 0 {
		return errors.Wrap(core.ErrInvalidSize, "mfcc: filterbank_floor must be positive")
	}
	return nil
}

// FeatLength is the number of float32 values one ReadFrame call emits
// for these options.
func (o MelOpts) FeatLength() int {
	n := o.FilterbankNumBins
	if o.OutputType == MFCC {
		n = o.MfccOrder
	}
	if o.OutputC0 {
		n++
	}
	if o.OutputEnergy {
		n++
	}
	return n
}

// fftFrameLength derives the FFT length from the frame length: double
// it if already a power of two, otherwise round up to the next one.
// Preserved verbatim per the open question in the design notes, for
// compatibility with the reference fixtures this over-pads against.
func fftFrameLength(l int) int {
	if l&(l-1) == 0 {
		return 2 * l
	}
	n := 1
	for n < l {
		n *= 2
	}
	return n
}

type mfccState int

const (
	mfccRunning mfccState = iota
	mfccDone
	mfccBad
)

// MfccMaker pulls fixed-length sample frames from an upstream source
// and emits feature vectors. A MfccMaker is single-use and not safe
// for concurrent use: its FFT/DCT workspaces and PRNG are owned mutable
// state.
type MfccMaker struct {
	opts MelOpts
	log  logging.Logger

	frameSrc core.FrameSource[float32]
	byteSrc  io.Reader

	fftLen int
	fftK   *fft.Kernel
	dctK   *dct.Kernel
	fb     *filterBank
	window []float64

	rng  *rand.Rand
	dist distuv.Normal

	frameSample []float32
	x           []float64
	real, imag  []float64
	spectrum    []float64
	logBins     []float64
	dctBuf      []float64
	out         []float32

	state mfccState
}

// New constructs an MfccMaker reading frames from src, which must
// implement core.FrameSource[float32] (typically a *frame.Maker) or be
// a plain io.Reader of concatenated little-endian float32 frames of
// length opts.FrameLength. log may be nil, in which case construction
// and per-frame failures are not reported anywhere.
func New(src any, opts MelOpts, log logging.Logger) (*MfccMaker, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	fftLen := fftFrameLength(opts.FrameLength)
	fftK, err := fft.New(fftLen)
	if err != nil {
		return nil, errors.Wrap(err, "mfcc: building fft kernel")
	}

	var dctK *dct.Kernel
	var dctBuf []float64
	if opts.OutputType == MFCC {
		dctK, err = dct.New(opts.FilterbankNumBins)
		if err != nil {
			return nil, errors.Wrap(err, "mfcc: building dct kernel")
		}
		dctBuf = make([]float64, 2*opts.FilterbankNumBins)
	}

	m := &MfccMaker{
		opts:        opts,
		log:         log,
		fftLen:      fftLen,
		fftK:        fftK,
		dctK:        dctK,
		fb:          newFilterBank(opts.SampleRate, fftLen, opts.FilterbankNumBins),
		window:      buildWindow(opts.Window, opts.FrameLength, opts.BlackmanCoeff),
		rng:         rand.New(rand.NewSource(0)),
		frameSample: make([]float32, opts.FrameLength),
		x:           make([]float64, opts.FrameLength),
		real:        make([]float64, fftLen),
		imag:        make([]float64, fftLen),
		spectrum:    make([]float64, fftLen/2+1),
		logBins:     make([]float64, opts.FilterbankNumBins),
		dctBuf:      dctBuf,
		out:         make([]float32, opts.FeatLength()),
	}
	m.dist = distuv.Normal{Mu: 0, Sigma: opts.Dither, Src: m.rng}

	switch s := src.(type) {
	case core.FrameSource[float32]:
		m.frameSrc = s
	case io.Reader:
		m.byteSrc = s
	default:
		return nil, errors.Wrap(core.ErrBadState, "mfcc: source implements neither FrameSource[float32] nor io.Reader")
	}

	if m.log != nil {
		m.log.Info("mfcc maker constructed", "frameLength", opts.FrameLength, "fftLength", fftLen, "outputType", int(opts.OutputType), "featLength", opts.FeatLength())
	}
	return m, nil
}

func (m *MfccMaker) fail(err error) error {
	m.state = mfccBad
	if m.log != nil {
		m.log.Debug("mfcc maker failed", "error", err)
	}
	return err
}

// ReadFrame fills dst (length opts.FeatLength()) with the next feature
// vector, returning false with a nil error on clean end of stream.
func (m *MfccMaker) ReadFrame(dst []float32) (bool, error) {
	if m.state == mfccBad {
		return false, core.ErrBadState
	}
	if len(dst) != m.opts.FeatLength() {
		return false, m.fail(errors.Wrapf(core.ErrIncorrectFrameSize, "dst length %d, want %d", len(dst), m.opts.FeatLength()))
	}
	if m.state == mfccDone {
		return false, nil
	}

	got, terminal, err := m.acquireFrame()
	if err != nil {
		return false, m.fail(err)
	}
	if got == 0 {
		m.state = mfccDone
		return false, nil
	}

	if m.opts.Dither != 0 {
		for i := range m.x {
			m.x[i] += m.dist.Rand()
		}
	}

	if m.opts.RemoveDCOffset {
		mean := stat.Mean(m.x, nil)
		for i := range m.x {
			m.x[i] -= mean
		}
	}

	var logEnergy float64
	if m.opts.OutputEnergy {
		energy := 0.0
		for _, v := range m.x {
			energy += v * v
		}
		if energy > 0 {
			logEnergy = math.Log(energy)
		} else {
			logEnergy = -1.0e10
		}
	}

	if m.opts.PreemphCoeff != 0 {
		for i := len(m.x) - 1; i >= 1; i-- {
			m.x[i] -= m.opts.PreemphCoeff * m.x[i-1]
		}
		m.x[0] -= m.opts.PreemphCoeff * m.x[0]
	}

	for i := range m.x {
		m.x[i] *= m.window[i]
	}

	for i := range m.real {
		m.real[i] = 0
		m.imag[i] = 0
	}
	copy(m.real[:len(m.x)], m.x)
	if err := m.fftK.FFTR(m.real, m.imag); err != nil {
		return false, m.fail(errors.Wrap(err, "mfcc: fftr"))
	}

	half := m.fftLen / 2
	for k := 1; k <= half; k++ {
		m.spectrum[k] = math.Sqrt(m.real[k]*m.real[k] + m.imag[k]*m.imag[k])
	}

	m.fb.apply(m.spectrum, m.opts.FilterbankFloor, m.logBins)

	var c0 float64
	if m.opts.OutputC0 {
		sum := 0.0
		for _, v := range m.logBins {
			sum += v
		}
		c0 = math.Sqrt(2/float64(m.opts.FilterbankNumBins)) * sum
	}

	idx := 0
	switch m.opts.OutputType {
	case MelEnergy:
		for _, v := range m.logBins {
			dst[idx] = float32(v)
			idx++
		}
	case MFCC:
		copy(m.dctBuf[:m.opts.FilterbankNumBins], m.logBins)
		for i := m.opts.FilterbankNumBins; i < len(m.dctBuf); i++ {
			m.dctBuf[i] = 0
		}
		if err := m.dctK.Apply(m.dctBuf); err != nil {
			return false, m.fail(errors.Wrap(err, "mfcc: dct"))
		}
		if m.opts.LifteringCoeff != 0 {
			for i := 0; i <= m.opts.MfccOrder; i++ {
				m.dctBuf[i] *= 1 + m.opts.LifteringCoeff/2*math.Sin(math.Pi*float64(i)/m.opts.LifteringCoeff)
			}
		}
		for i := 1; i <= m.opts.MfccOrder; i++ {
			dst[idx] = float32(m.dctBuf[i])
			idx++
		}
	}
	if m.opts.OutputC0 {
		dst[idx] = float32(c0)
		idx++
	}
	if m.opts.OutputEnergy {
		dst[idx] = float32(logEnergy)
		idx++
	}

	if terminal {
		m.state = mfccDone
	}
	return true, nil
}

// Read emits one frame's little-endian float32 bytes per call,
// returning 0 on clean end of stream.
func (m *MfccMaker) Read(dst []byte) (int, error) {
	need := m.opts.FeatLength() * 4
	if len(dst) < need {
		return 0, errors.Wrapf(core.ErrBufferTooShort, "mfcc: dst has %d bytes, need %d", len(dst), need)
	}

	ok, err := m.ReadFrame(m.out)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	for i, v := range m.out {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
	return need, nil
}

// acquireFrame pulls opts.FrameLength samples into m.x, zero-padding a
// short final read. It returns the number of real (non-padded) samples
// obtained and whether this is the terminal frame.
func (m *MfccMaker) acquireFrame() (int, bool, error) {
	var got int
	var err error

	if m.frameSrc != nil {
		ok, ferr := m.frameSrc.ReadFrame(m.frameSample)
		if ferr != nil {
			return 0, false, ferr
		}
		if !ok {
			return 0, false, nil
		}
		got = len(m.frameSample)
	} else {
		got, err = m.pullBytesFrame(m.frameSample)
		if err != nil {
			return 0, false, err
		}
		if got == 0 {
			return 0, false, nil
		}
	}

	for i := range m.x {
		if i < got {
			m.x[i] = float64(m.frameSample[i])
		} else {
			m.x[i] = 0
		}
	}
	return got, got < len(m.frameSample), nil
}

// pullBytesFrame reinterprets the byte-mode source as a stream of raw
// little-endian float32 frames, failing UnexpectedEOF on a source that
// ends mid-sample.
func (m *MfccMaker) pullBytesFrame(dst []float32) (int, error) {
	buf := make([]byte, len(dst)*4)
	n, err := io.ReadFull(m.byteSrc, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, errors.Wrap(err, "mfcc: reading byte-mode source")
	}
	full := n / 4
	if err != nil && n%4 != 0 {
		return 0, errors.Wrap(core.ErrUnexpectedEOF, "mfcc: byte-mode source ended mid-sample")
	}
	for i := 0; i < full; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	return full, nil
}
