/*
NAME
  wav2raw

DESCRIPTION
  wav2raw reads a RIFF/WAVE byte stream from stdin and writes decoded
  samples to stdout as little-endian float32 (or, with -i16, signed
  16-bit) values, one per input sample.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command wav2raw decodes a WAVE file on stdin into raw little-endian
// samples on stdout.
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

	"github.com/ausocean/speechfeat/wave"
)

func main() {
	i16 := flag.Bool("i16", false, "emit signed 16-bit samples instead of float32")
	logPath := flag.String("logfile", "", "optional path to write diagnostic logs to, in addition to stderr")
	flag.Parse()

	log := newLogger(*logPath)

	var err error
	if *i16 {
		err = runInt16(os.Stdin, os.Stdout, log)
	} else {
		err = runFloat32(os.Stdin, os.Stdout, log)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "wav2raw:", err)
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

const readChunk = 4096

func runFloat32(r io.Reader, w io.Writer, log logging.Logger) error {
	rdr := wave.NewReader[float32](bufio.NewReader(r))
	rdr.SetLogger(log)

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	buf := make([]float32, readChunk)
	var b [4]byte
	for {
		n, err := rdr.ReadSamples(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(buf[i]))
			if _, err := bw.Write(b[:]); err != nil {
				return err
			}
		}
	}
}

func runInt16(r io.Reader, w io.Writer, log logging.Logger) error {
	rdr := wave.NewReader[int16](bufio.NewReader(r))
	rdr.SetLogger(log)

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	buf := make([]int16, readChunk)
	var b [2]byte
	for {
		n, err := rdr.ReadSamples(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint16(b[:], uint16(buf[i]))
			if _, err := bw.Write(b[:]); err != nil {
				return err
			}
		}
	}
}
