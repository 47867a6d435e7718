// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package nie implements the NIE (Naive) image file format.
//
// It is an incomplete implementation (and hence an internal package), only
// providing what's needed by the github.com/nigeltao/s2tc module: writing
// the dithered previews produced by s2tc.Quantize.
//
// NIE is specified at
// https://github.com/google/wuffs/blob/main/doc/spec/nie-spec.md
package nie

import (
	"image"

	"github.com/pkg/errors"
)

var ErrImageIsTooLarge = errors.New("nie: image is too large")

// EncodeBN4 encodes m as a NIE file in BGRA order, non-premultiplied alpha, 4
// bytes per pixel.
func EncodeBN4(m *image.NRGBA) ([]byte, error) {
	return encode(m, '4')
}

// EncodeBN8 encodes m as a NIE file in BGRA order, non-premultiplied alpha, 8
// bytes per pixel. Each 8 bit channel is widened to 16 bits by replication.
func EncodeBN8(m *image.NRGBA) ([]byte, error) {
	return encode(m, '8')
}

func encode(m *image.NRGBA, depth byte) (ret []byte, retErr error) {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	if (w > 0x7FFF_FFFF) || (h > 0x7FFF_FFFF) {
		return nil, ErrImageIsTooLarge
	}

	bytesPerPixel := 4
	if depth == '8' {
		bytesPerPixel = 8
	}
	ret = make([]byte, 0, 16+(bytesPerPixel*w*h))
	ret = append(ret, 0x6E, 0xC3, 0xAF, 0x45, 0xFF, 'b', 'n', depth)
	ret = appendU32LE(ret, uint32(w))
	ret = appendU32LE(ret, uint32(h))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y):]
		for x := range w {
			p := row[4*x : (4*x)+4]
			if depth == '8' {
				ret = append(ret,
					p[2], p[2],
					p[1], p[1],
					p[0], p[0],
					p[3], p[3],
				)
			} else {
				ret = append(ret, p[2], p[1], p[0], p[3])
			}
		}
	}
	return ret, nil
}

func appendU32LE(b []byte, u uint32) []byte {
	return append(b,
		uint8(u>>0),
		uint8(u>>8),
		uint8(u>>16),
		uint8(u>>24),
	)
}
