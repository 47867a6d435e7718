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

	"github.com/pkg/errors"
)

// quantizer reduces a source image to 5:6:5 color plus alphaBits of alpha.
//
// The output holds 4 bytes per pixel, tightly packed (the row stride is
// 4*width). Each byte holds the quantized value, not rescaled: R and B are
// in [0, 31], G is in [0, 63] and A is in [0, (1<<alphaBits)-1].
type quantizer struct {
	dst       []byte
	src       []byte
	width     int
	height    int
	srcComps  int
	srcStride int
	alphaBits int
}

func (q *quantizer) run(mode DitherMode) {
	switch mode {
	case DitherNone:
		q.truncate()
	case DitherSimple:
		q.diffuseSimple()
	default:
		q.diffuseFloydSteinberg()
	}
	if q.srcComps != 4 {
		maxAlpha := uint8((1 << q.alphaBits) - 1)
		for i := 3; i < len(q.dst); i += 4 {
			q.dst[i] = maxAlpha
		}
	}
}

func (q *quantizer) truncate() {
	alphaShift := uint(8 - q.alphaBits)
	for y := range q.height {
		s := q.src[y*q.srcStride:]
		d := q.dst[y*4*q.width:]
		for x := range q.width {
			p := s[x*q.srcComps:]
			d[(4*x)+0] = p[0] >> 3
			d[(4*x)+1] = p[1] >> 2
			d[(4*x)+2] = p[2] >> 3
			if q.srcComps == 4 {
				d[(4*x)+3] = p[3] >> alphaShift
			}
		}
	}
}

// diffuse quantizes src plus the carried error to 8-shift bits. The new
// carried error is measured against the value a decoder would reconstruct,
// not against the truncated value.
func diffuse(carry *int, src uint8, shift uint) uint8 {
	maxVal := (1 << (8 - shift)) - 1
	s := int(src) + *carry
	ret := max(0, min(s>>shift, maxVal))
	decoded := (ret << shift) | (ret >> (8 - (2 * shift)))
	*carry = s - decoded
	return uint8(ret)
}

func diffuse1(carry *int, src uint8) uint8 {
	s := int(src) + *carry
	if s >= 128 {
		*carry = s - 255
		return 1
	}
	*carry = s
	return 0
}

func (q *quantizer) diffuseSimple() {
	carryR, carryG, carryB, carryA := 0, 0, 0, 0
	for y := range q.height {
		s := q.src[y*q.srcStride:]
		d := q.dst[y*4*q.width:]
		for x := range q.width {
			p := s[x*q.srcComps:]
			d[(4*x)+0] = diffuse(&carryR, p[0], 3)
			d[(4*x)+1] = diffuse(&carryG, p[1], 2)
			d[(4*x)+2] = diffuse(&carryB, p[2], 3)
		}
	}
	if q.srcComps != 4 {
		return
	}
	for y := range q.height {
		s := q.src[y*q.srcStride:]
		d := q.dst[y*4*q.width:]
		for x := range q.width {
			a := s[(x*q.srcComps)+3]
			switch q.alphaBits {
			case 1:
				d[(4*x)+3] = diffuse1(&carryA, a)
			case 8:
				d[(4*x)+3] = a
			default:
				d[(4*x)+3] = diffuse(&carryA, a, uint(8-q.alphaBits))
			}
		}
	}
}

// floyd quantizes one sample with Floyd-Steinberg error diffusion, working
// in 12 bits of precision. Rows are scanned left to right only, not in
// serpentine order. thisRow[1] and downRow[1] are the entries for the
// current pixel. thisRow[0] and downRow[0] are its left neighbors.
//
// The 7, 3, 5 and 1 sixteenths are computed successively from the remaining
// error so that their sum is exactly the error.
func floyd(thisRow []int, downRow []int, src uint8, bits int) uint8 {
	maxVal := (1 << bits) - 1
	s := ((int(src) << 4) | (int(src) >> 4)) + thisRow[1]
	ret := 0
	if bits == 1 {
		if s >= 2048 {
			ret = 1
		}
	} else {
		ret = max(0, min(s>>(12-bits), maxVal))
	}
	err := s - ((ret * 4095) / maxVal)
	e7 := ((err * 7) + 8) / 16
	err -= e7
	e3 := ((err * 3) + 4) / 9
	err -= e3
	e5 := ((err * 5) + 3) / 6
	err -= e5
	thisRow[2] += e7
	downRow[0] += e3
	downRow[1] += e5
	downRow[2] += err
	return uint8(ret)
}

func (q *quantizer) diffuseFloydSteinberg() {
	// Each channel has two rows of width+2 error accumulators, including a
	// guard entry on each side.
	pw := q.width + 2
	errs := make([]int, 8*pw)
	rows := func(c int, y int) (thisRow []int, downRow []int) {
		base := 2 * c * pw
		if (y & 1) == 0 {
			return errs[base : base+pw], errs[base+pw : base+(2*pw)]
		}
		return errs[base+pw : base+(2*pw)], errs[base : base+pw]
	}

	colorBits := [3]int{5, 6, 5}
	numChannels := 3
	if (q.srcComps == 4) && (q.alphaBits != 8) {
		numChannels = 4
	}

	for y := range q.height {
		s := q.src[y*q.srcStride:]
		d := q.dst[y*4*q.width:]
		for c := range numChannels {
			thisRow, downRow := rows(c, y)
			clear(downRow)
			bits := q.alphaBits
			if c < 3 {
				bits = colorBits[c]
			}
			for x := range q.width {
				d[(4*x)+c] = floyd(thisRow[x:], downRow[x:], s[(x*q.srcComps)+c], bits)
			}
		}
		if (q.srcComps == 4) && (q.alphaBits == 8) {
			for x := range q.width {
				d[(4*x)+3] = s[(x*q.srcComps)+3]
			}
		}
	}
}

// expandQuantized rescales a quantized 4-bytes-per-pixel buffer, in place,
// back to 8 bits per channel, the way a decoder would.
func expandQuantized(pix []byte, alphaBits int) {
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b, a := pix[i+0], pix[i+1], pix[i+2], pix[i+3]
		pix[i+0] = (r << 3) | (r >> 2)
		pix[i+1] = (g << 2) | (g >> 4)
		pix[i+2] = (b << 3) | (b >> 2)
		switch alphaBits {
		case 1:
			pix[i+3] = 0xFF * (a & 1)
		case 4:
			pix[i+3] = 0x11 * (a & 15)
		}
	}
}

// Quantize returns src as it looks after being reduced to the precision that
// f stores, including the dithering selected by options. No block
// compression is applied, so this is a preview of the dithering only.
//
// options may be nil, which means to use the default configuration.
func Quantize(src image.Image, f Format, options *EncodeOptions) (*image.NRGBA, error) {
	if src == nil {
		return nil, ErrBadArgument
	}
	if !f.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format %d", uint8(f))
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	b := src.Bounds()
	if (b.Dx() > MaxDimension) || (b.Dy() > MaxDimension) {
		return nil, ErrImageIsTooLarge
	}
	pix, stride := extractRGBA(src)

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	q := quantizer{
		dst:       dst.Pix,
		src:       pix,
		width:     b.Dx(),
		height:    b.Dy(),
		srcComps:  4,
		srcStride: stride,
		alphaBits: f.AlphaBits(),
	}
	q.run(optionsDither(options))
	expandQuantized(dst.Pix, q.alphaBits)
	return dst, nil
}
