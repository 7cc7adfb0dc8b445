/*
NAME
  frame

DESCRIPTION
  frame reads concatenated little-endian float32 samples from stdin and
  writes fixed-length overlapping frames (also concatenated float32 LE)
  to stdout.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command frame turns a raw float32 LE sample stream on stdin into
// overlapping frames on stdout.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/ausocean/speechfeat/frame"
)

func main() {
	length := flag.Int("length", 256, "frame length L, in samples")
	shift := flag.Int("shift", 100, "frame shift S, in samples")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, frame.Opts{Length: *length, Shift: *shift}); err != nil {
		fmt.Fprintln(os.Stderr, "frame:", err)
		os.Exit(1)
	}
}

func run(r *os.File, w *os.File, opts frame.Opts) error {
	maker, err := frame.NewMaker[float32](bufio.NewReader(r), opts)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	dst := make([]float32, opts.Length)
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
