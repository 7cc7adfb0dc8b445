/*
NAME
  fftr

DESCRIPTION
  fftr reads one frame of little-endian float32 samples from stdin and
  writes its real-input FFT to stdout as the frame-length real values
  followed by the frame-length imaginary values, both float32 LE.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command fftr applies the real-input FFT to one frame of float32 LE
// samples read from stdin, writing real and imaginary output to stdout.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ausocean/speechfeat/dsp/fft"
)

func main() {
	length := flag.Int("length", 256, "frame length, a power of two")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, *length); err != nil {
		fmt.Fprintln(os.Stderr, "fftr:", err)
		os.Exit(1)
	}
}

func run(r io.Reader, w io.Writer, length int) error {
	k, err := fft.New(length)
	if err != nil {
		return err
	}

	real := make([]float64, length)
	imag := make([]float64, length)

	br := bufio.NewReader(r)
	var b [4]byte
	for i := range real {
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return err
		}
		real[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[:])))
	}

	if err := k.FFTR(real, imag); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()
	for _, v := range real {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v)))
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	for _, v := range imag {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v)))
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}
