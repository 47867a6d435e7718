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
)

// extractRGBA returns src's pixels as non-premultiplied RGBA, 4 bytes per
// pixel, along with the row stride in bytes. The top-left pixel of src's
// bounds is at offset 0.
//
// An *image.NRGBA is returned without copying. Other image types are
// converted.
func extractRGBA(src image.Image) (pix []byte, stride int) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (w <= 0) || (h <= 0) {
		return nil, 0
	}

	if srcNRGBA, ok := src.(*image.NRGBA); ok {
		i := srcNRGBA.PixOffset(b.Min.X, b.Min.Y)
		return srcNRGBA.Pix[i:], srcNRGBA.Stride
	}

	stride = 4 * w
	pix = make([]byte, stride*h)

	if srcRGBA, ok := src.(*image.RGBA); ok {
		for y := range h {
			s := srcRGBA.Pix[srcRGBA.PixOffset(b.Min.X, b.Min.Y+y):]
			d := pix[y*stride:]
			for x := range w {
				r, g, bb, a := s[(4*x)+0], s[(4*x)+1], s[(4*x)+2], s[(4*x)+3]
				if (a != 0x00) && (a != 0xFF) {
					r = uint8((uint32(r) * 0xFF) / uint32(a))
					g = uint8((uint32(g) * 0xFF) / uint32(a))
					bb = uint8((uint32(bb) * 0xFF) / uint32(a))
				}
				d[(4*x)+0] = r
				d[(4*x)+1] = g
				d[(4*x)+2] = bb
				d[(4*x)+3] = a
			}
		}

	} else if srcNRGBA64, ok := src.(*image.NRGBA64); ok {
		for y := range h {
			d := pix[y*stride:]
			for x := range w {
				c := srcNRGBA64.NRGBA64At(b.Min.X+x, b.Min.Y+y)
				d[(4*x)+0] = uint8(c.R >> 8)
				d[(4*x)+1] = uint8(c.G >> 8)
				d[(4*x)+2] = uint8(c.B >> 8)
				d[(4*x)+3] = uint8(c.A >> 8)
			}
		}

	} else if srcRGBA64, ok := src.(image.RGBA64Image); ok {
		for y := range h {
			d := pix[y*stride:]
			for x := range w {
				c := srcRGBA64.RGBA64At(b.Min.X+x, b.Min.Y+y)
				if (c.A != 0x0000) && (c.A != 0xFFFF) {
					c.R = uint16((uint32(c.R) * 0xFFFF) / uint32(c.A))
					c.G = uint16((uint32(c.G) * 0xFFFF) / uint32(c.A))
					c.B = uint16((uint32(c.B) * 0xFFFF) / uint32(c.A))
				}
				d[(4*x)+0] = uint8(c.R >> 8)
				d[(4*x)+1] = uint8(c.G >> 8)
				d[(4*x)+2] = uint8(c.B >> 8)
				d[(4*x)+3] = uint8(c.A >> 8)
			}
		}

	} else {
		for y := range h {
			d := pix[y*stride:]
			for x := range w {
				r, g, bb, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
				if (a != 0x0000) && (a != 0xFFFF) {
					r = (r * 0xFFFF) / a
					g = (g * 0xFFFF) / a
					bb = (bb * 0xFFFF) / a
				}
				d[(4*x)+0] = uint8(r >> 8)
				d[(4*x)+1] = uint8(g >> 8)
				d[(4*x)+2] = uint8(bb >> 8)
				d[(4*x)+3] = uint8(a >> 8)
			}
		}
	}

	return pix, stride
}
