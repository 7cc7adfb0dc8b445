/*
NAME
  mfcc

DESCRIPTION
  mfcc reads either a RIFF/WAVE byte stream or a raw stream of
  concatenated little-endian float32 frames from stdin and writes MFCC
  (or Mel-filterbank energy) feature vectors to stdout as concatenated
  little-endian float32 values, output_c0 on by default.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command mfcc drives the full feature-extraction pipeline over stdin,
// writing feature vectors to stdout.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/speechfeat/frame"
	"github.com/ausocean/speechfeat/mfcc"
	"github.com/ausocean/speechfeat/wave"
)

func main() {
	length := flag.Int("length", 256, "frame length L, in samples")
	shift := flag.Int("shift", 100, "frame shift S, in samples")
	sampleRate := flag.Int("samplerate", 16000, "sample rate in Hz, used for the Mel filterbank and assumed for raw-frame input")
	bins := flag.Int("bins", 20, "number of Mel filterbank channels")
	order := flag.Int("order", 12, "MFCC order")
	dither := flag.Float64("dither", 1.0, "dither standard deviation; 0 disables dither")
	preemph := flag.Float64("preemph", 0.97, "pre-emphasis coefficient; 0 disables pre-emphasis")
	lifter := flag.Float64("lifter", 22.0, "liftering coefficient; 0 disables liftering")
	removeDC := flag.Bool("dc", true, "remove the per-frame DC offset before windowing")
	energy := flag.Bool("energy", true, "append log-energy to each feature vector")
	c0 := flag.Bool("c0", true, "append C0 to each feature vector")
	melEnergy := flag.Bool("mel", false, "emit log Mel-filterbank energies instead of MFCCs")
	logPath := flag.String("logfile", "", "optional path to write diagnostic logs to, in addition to stderr")
	flag.Parse()

	log := newLogger(*logPath)

	opts := mfcc.MelOpts{
		FrameLength:       *length,
		SampleRate:        *sampleRate,
		RemoveDCOffset:    *removeDC,
		Dither:            *dither,
		PreemphCoeff:      *preemph,
		LifteringCoeff:    *lifter,
		BlackmanCoeff:     0.42,
		Window:            mfcc.Povey,
		FilterbankFloor:   1.0,
		FilterbankNumBins: *bins,
		MfccOrder:         *order,
		OutputType:        mfcc.MFCC,
		OutputEnergy:      *energy,
		OutputC0:          *c0,
	}
	if *melEnergy {
		opts.OutputType = mfcc.MelEnergy
	}

	if err := run(os.Stdin, os.Stdout, frame.Opts{Length: *length, Shift: *shift}, opts, log); err != nil {
		fmt.Fprintln(os.Stderr, "mfcc:", err)
		os.Exit(1)
	}
}

func newLogger(path string) logging.Logger {
	w := io.Writer(os.Stderr)
	if path != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{Filename: path, MaxSize: 50, MaxBackups: 3, MaxAge: 28})
	}
	return logging.New(logging.Info, w, false)
}

// isWave peeks at br to see whether it starts with a RIFF tag, without
// consuming any bytes.
func isWave(br *bufio.Reader) (bool, error) {
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return false, err
	}
	return string(head) == "RIFF", nil
}

func run(r io.Reader, w io.Writer, fopts frame.Opts, opts mfcc.MelOpts, log logging.Logger) error {
	br := bufio.NewReader(r)

	wav, err := isWave(br)
	if err != nil {
		return err
	}

	var maker *mfcc.MfccMaker
	if wav {
		wr := wave.NewReader[float32](br)
		wr.SetLogger(log)
		fm, err := frame.NewMaker[float32](wr, fopts)
		if err != nil {
			return err
		}
		maker, err = mfcc.New(fm, opts, log)
		if err != nil {
			return err
		}
	} else {
		maker, err = mfcc.New(br, opts, log)
		if err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	dst := make([]float32, opts.FeatLength())
	var b [4]byte
	for {
		ok, err := maker.ReadFrame(dst)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		for _, v := range dst {
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
			if _, err := bw.Write(b[:]); err != nil {
				return err
			}
		}
	}
}
