// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s2tc

import (
	"image"
	"io"

	"github.com/pkg/errors"
)

func (o *EncodeOptions) validate() error {
	if o == nil {
		return nil
	}
	if int(o.Dither) >= len(ditherModeNames) {
		return errors.Wrapf(ErrBadArgument, "dither mode %d", o.Dither)
	}
	if o.ColorDist.distFunc() == nil {
		return errors.Wrapf(ErrBadArgument, "color dist mode %d", o.ColorDist)
	}
	if int(o.Refine) >= len(refinementModeNames) {
		return errors.Wrapf(ErrBadArgument, "refinement mode %d", o.Refine)
	}
	if o.RandomColors > MaxRandomColors {
		return errors.Wrapf(ErrBadArgument, "random colors %d", o.RandomColors)
	}
	return nil
}

func optionsDither(o *EncodeOptions) DitherMode {
	if o == nil {
		return DitherFloydSteinberg
	}
	return o.Dither
}

// Compress encodes a width×height image held in src to the block format f,
// writing the blocks to dst in row-major block order.
//
// src holds srcComps (3 for RGB, 4 for RGBA) bytes per pixel and
// srcRowStride bytes per row. dstRowStride is the distance in bytes between
// the starts of consecutive rows of blocks. Either stride may be zero, which
// means tightly packed. Padding bytes at the end of each dst row of blocks
// are left untouched.
//
// A width or height that is not a multiple of 4 produces partial blocks at
// the right and bottom edges. They are still written in full but only the
// pixels inside the image are read.
//
// If f is not supported, the error is logged and ErrUnsupportedFormat is
// returned without writing to dst.
//
// options may be nil, which means to use the default configuration.
func Compress(dst []byte, src []byte, width int, height int, srcComps int, srcRowStride int,
	f Format, dstRowStride int, options *EncodeOptions) error {

	logger := options.logger()
	if !f.Valid() {
		logger.Error("s2tc: bad destination format", "format", uint8(f))
		return errors.Wrapf(ErrUnsupportedFormat, "format %d", uint8(f))
	}
	if err := options.validate(); err != nil {
		return err
	}

	if (width < 0) || (height < 0) || ((srcComps != 3) && (srcComps != 4)) {
		return ErrBadArgument
	} else if (width > MaxDimension) || (height > MaxDimension) {
		return ErrImageIsTooLarge
	} else if (width == 0) || (height == 0) {
		return nil
	}

	if srcRowStride == 0 {
		srcRowStride = width * srcComps
	} else if srcRowStride < (width * srcComps) {
		return errors.Wrapf(ErrBadArgument, "source row stride %d", srcRowStride)
	}
	if len(src) < (((height - 1) * srcRowStride) + (width * srcComps)) {
		return errors.Wrap(ErrBufferTooSmall, "source")
	}

	rowSize := f.RowSize(width)
	if dstRowStride == 0 {
		dstRowStride = rowSize
	} else if dstRowStride < rowSize {
		return errors.Wrapf(ErrBadArgument, "destination row stride %d", dstRowStride)
	}
	blockRows := (height + 3) / 4
	if len(dst) < (((blockRows - 1) * dstRowStride) + rowSize) {
		return errors.Wrap(ErrBufferTooSmall, "destination")
	}

	quantized := make([]byte, 4*width*height)
	q := quantizer{
		dst:       quantized,
		src:       src,
		width:     width,
		height:    height,
		srcComps:  srcComps,
		srcStride: srcRowStride,
		alphaBits: f.AlphaBits(),
	}
	q.run(optionsDither(options))

	e := newBlockEncoder(f, options)
	logger.Debug("s2tc: compressing",
		"width", width,
		"height", height,
		"format", f,
		"fast", e.fast,
		"refine", e.refine,
	)

	bytesPerBlock := f.BytesPerBlock()
	rowDiff := dstRowStride - rowSize
	v := blockView{stride: 4 * width}
	j := 0
	for blockY := 0; blockY < height; blockY += 4 {
		v.h = min(4, height-blockY)
		for blockX := 0; blockX < width; blockX += 4 {
			v.w = min(4, width-blockX)
			v.pix = quantized[(blockY*v.stride)+(4*blockX):]
			e.encode(dst[j:j+bytesPerBlock], &v)
			j += bytesPerBlock
		}
		j += rowDiff
	}
	return nil
}

// Encode writes src to dst in the S3TC format f: the compressed blocks in
// row-major order, with no header and no padding.
//
// options may be nil, which means to use the default configuration.
func Encode(dst io.Writer, src image.Image, f Format, options *EncodeOptions) error {
	if (dst == nil) || (src == nil) {
		return ErrBadArgument
	}
	buf, err := Append(nil, src, f, options)
	if err != nil {
		return err
	}
	_, err = dst.Write(buf)
	return err
}

// Append appends src, compressed to the S3TC format f, to buf and returns the
// extended buffer.
//
// options may be nil, which means to use the default configuration.
func Append(buf []byte, src image.Image, f Format, options *EncodeOptions) ([]byte, error) {
	if src == nil {
		return buf, ErrBadArgument
	}
	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if (bW > MaxDimension) || (bH > MaxDimension) {
		return buf, ErrImageIsTooLarge
	}

	if !f.Valid() {
		// Compress logs and reports the bad format.
		return buf, Compress(nil, nil, 0, 0, 4, 0, f, 0, options)
	}
	n := f.CompressedSize(bW, bH)
	if n == 0 {
		return buf, nil
	}
	start := len(buf)
	buf = append(buf, make([]byte, n)...)

	pix, stride := extractRGBA(src)
	if err := Compress(buf[start:], pix, bW, bH, 4, stride, f, 0, options); err != nil {
		return buf[:start], err
	}
	return buf, nil
}
