// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// s2tcpack encodes images to the S3TC (DXT1, DXT3, DXT5) lossy texture
// formats.
package main

import (
	"bufio"
	"flag"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/nigeltao/s2tc/internal/nie"
	"github.com/nigeltao/s2tc/lib/dds"
	"github.com/nigeltao/s2tc/lib/s2tc"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	colorDistFlag = flag.String("colordist", "", "color distance metric")
	compressFlag  = flag.String("compress", "none", "whole-file compression")
	ditherFlag    = flag.String("dither", "", "dither mode")
	formatFlag    = flag.String("format", "dxt1-rgb", "block format")
	mipmapsFlag   = flag.Bool("mipmaps", false, "whether to add a mipmap chain")
	outputFlag    = flag.String("output", "dds", "output format")
	randomFlag    = flag.Int("random", -1, "random endpoint candidates per block")
	refineFlag    = flag.String("refine", "", "refinement mode")
	seedFlag      = flag.Uint64("seed", 0, "seed for the random candidates")
	verboseFlag   = flag.Bool("v", false, "whether to log debug messages")
)

const usageStr = `s2tcpack encodes images to the S3TC (DXT) texture formats.

Usage: s2tcpack [flags] [path]

The path to the input image file is optional. If omitted, stdin is read.
The input can be BMP, GIF, JPEG, PNG, TIFF or WEBP. The output is written
to stdout.

Flags:

    -format=dxt1-rgb (default), dxt1-rgba, dxt3 or dxt5
    -dither=floydsteinberg (default), simple or none
    -colordist=wavg (default), avg, rgb, yuv, srgb, srgb_mixed or normalmap
    -refine=always (default), never or loop
    -random=N adds N random endpoint candidates per block. 0 means an
     exhaustive search without random candidates. -1 (default) means the
     fast heuristic.
    -seed=S seeds the random candidates.
    -mipmaps adds a mipmap chain (DDS output only).
    -output=dds (default), raw, png, nie-bn4 or nie-bn8. The png and nie
     outputs are the dithered image before block compression.
    -compress=none (default), zlib or zstd wraps the whole output.
    -v logs debug messages to stderr.

The S2TC_DITHER_MODE, S2TC_COLORDIST_MODE, S2TC_REFINE_COLORS and
S2TC_RANDOM_COLORS environment variables are also honored. Flags take
precedence.
`

var ErrBadOutputFlag = errors.New("main: bad -output flag")

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	inFile := os.Stdin
	switch flag.NArg() {
	case 0:
		// No-op.
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		inFile = f
	default:
		return errors.New("too many filenames; the maximum is one")
	}

	format, err := s2tc.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}
	options, err := makeOptions(logger)
	if err != nil {
		return err
	}

	src, srcFormat, err := image.Decode(bufio.NewReader(inFile))
	if err != nil {
		return errors.Wrap(err, "decoding input")
	}
	logger.Debug("decoded input", "format", srcFormat, "bounds", src.Bounds())

	return withCompression(os.Stdout, func(w io.Writer) error {
		return encode(w, src, format, options)
	})
}

// makeOptions applies the environment variables and then the flags that were
// set explicitly.
func makeOptions(logger *slog.Logger) (*s2tc.EncodeOptions, error) {
	o := s2tc.OptionsFromEnv(os.LookupEnv, logger)

	var err error
	flag.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "colordist":
			o.ColorDist, err = s2tc.ParseColorDistMode(*colorDistFlag)
		case "dither":
			o.Dither, err = s2tc.ParseDitherMode(*ditherFlag)
		case "refine":
			o.Refine, err = s2tc.ParseRefinementMode(*refineFlag)
		case "random":
			o.RandomColors = max(0, *randomFlag)
			o.Exhaustive = *randomFlag == 0
		}
	})
	if err != nil {
		return nil, err
	}

	if o.RandomColors > 0 {
		o.Rand = rand.New(rand.NewPCG(*seedFlag, *seedFlag^0x9E37_79B9_7F4A_7C15))
	}
	return o, nil
}

func encode(w io.Writer, src image.Image, format s2tc.Format, options *s2tc.EncodeOptions) error {
	switch *outputFlag {
	case "dds":
		return dds.Encode(w, src, &dds.EncodeOptions{
			Format:  format,
			Mipmaps: *mipmapsFlag,
			Codec:   options,
		})

	case "raw":
		return s2tc.Encode(w, src, format, options)

	case "png", "nie-bn4", "nie-bn8":
		preview, err := s2tc.Quantize(src, format, options)
		if err != nil {
			return err
		}
		if *outputFlag == "png" {
			return png.Encode(w, preview)
		}
		encodeNIE := nie.EncodeBN4
		if *outputFlag == "nie-bn8" {
			encodeNIE = nie.EncodeBN8
		}
		buf, err := encodeNIE(preview)
		if err != nil {
			return err
		}
		_, err = w.Write(buf)
		return err
	}
	return ErrBadOutputFlag
}

// withCompression calls fn with a writer that compresses to w, according to
// the -compress flag.
func withCompression(w io.Writer, fn func(w io.Writer) error) error {
	bw := bufio.NewWriter(w)

	var cw io.WriteCloser
	switch *compressFlag {
	case "", "none":
		if err := fn(bw); err != nil {
			return err
		}
		return bw.Flush()
	case "zlib":
		cw = zlib.NewWriter(bw)
	case "zstd":
		zw, err := zstd.NewWriter(bw)
		if err != nil {
			return err
		}
		cw = zw
	default:
		return errors.Errorf("main: bad -compress flag %q", *compressFlag)
	}

	if err := fn(cw); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	return bw.Flush()
}
