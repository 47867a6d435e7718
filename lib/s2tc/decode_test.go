// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s2tc

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// dxtBlock is a parsed S3TC block. Fields that the format does not have are
// zero.
type dxtBlock struct {
	c0, c1       uint16
	colorIndexes uint32

	a0, a1       uint8
	alphaIndexes uint64 // 3 bits per pixel for DXT5, 4 bits per pixel for DXT3.
}

func parseBlock(f Format, b []byte) (ret dxtBlock) {
	if f.BytesPerBlock() == 16 {
		if f == FormatDXT5RGBA {
			ret.a0, ret.a1 = b[0], b[1]
			for i := 5; i >= 0; i-- {
				ret.alphaIndexes = (ret.alphaIndexes << 8) | uint64(b[2+i])
			}
		} else {
			ret.alphaIndexes = binary.LittleEndian.Uint64(b[0:8])
		}
		b = b[8:]
	}
	ret.c0 = binary.LittleEndian.Uint16(b[0:])
	ret.c1 = binary.LittleEndian.Uint16(b[2:])
	ret.colorIndexes = binary.LittleEndian.Uint32(b[4:])
	return ret
}

func (b *dxtBlock) colorIndex(i int) int {
	return int(b.colorIndexes>>(2*i)) & 3
}

func (b *dxtBlock) alphaIndex(i int) int {
	return int(b.alphaIndexes>>(3*i)) & 7
}

func unpack565(c uint16) color.NRGBA {
	r, g, b := uint8(c>>11), uint8(c>>5)&63, uint8(c)&31
	return color.NRGBA{(r << 3) | (r >> 2), (g << 2) | (g >> 4), (b << 3) | (b >> 2), 0xFF}
}

func mix(a uint8, b uint8, wa int, wb int) uint8 {
	return uint8(((int(a) * wa) + (int(b) * wb)) / (wa + wb))
}

// decodeBlock decodes one block as a conforming S3TC decoder would,
// including the interpolated ramp entries that the encoder never selects.
func decodeBlock(f Format, src []byte) (ret [16]color.NRGBA) {
	b := parseBlock(f, src)

	p0, p1 := unpack565(b.c0), unpack565(b.c1)
	palette := [4]color.NRGBA{p0, p1}
	if f.IsDXT1() && (b.c0 <= b.c1) {
		palette[2] = color.NRGBA{mix(p0.R, p1.R, 1, 1), mix(p0.G, p1.G, 1, 1), mix(p0.B, p1.B, 1, 1), 0xFF}
		palette[3] = color.NRGBA{}
	} else {
		palette[2] = color.NRGBA{mix(p0.R, p1.R, 2, 1), mix(p0.G, p1.G, 2, 1), mix(p0.B, p1.B, 2, 1), 0xFF}
		palette[3] = color.NRGBA{mix(p0.R, p1.R, 1, 2), mix(p0.G, p1.G, 1, 2), mix(p0.B, p1.B, 1, 2), 0xFF}
	}
	for i := range 16 {
		ret[i] = palette[b.colorIndex(i)]
	}

	switch f {
	case FormatDXT3RGBA:
		for i := range 16 {
			ret[i].A = 0x11 * uint8((b.alphaIndexes>>(4*i))&15)
		}
	case FormatDXT5RGBA:
		alphas := [8]uint8{b.a0, b.a1}
		if b.a0 > b.a1 {
			for j := 1; j < 7; j++ {
				alphas[1+j] = mix(b.a0, b.a1, 7-j, j)
			}
		} else {
			for j := 1; j < 5; j++ {
				alphas[1+j] = mix(b.a0, b.a1, 5-j, j)
			}
			alphas[6], alphas[7] = 0x00, 0xFF
		}
		for i := range 16 {
			ret[i].A = alphas[b.alphaIndex(i)]
		}
	}
	return ret
}

// decodeImage decodes tightly packed blocks to a width×height image.
func decodeImage(f Format, src []byte, width int, height int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	rowSize := f.RowSize(width)
	bpb := f.BytesPerBlock()
	for by := 0; by < height; by += 4 {
		for bx := 0; bx < width; bx += 4 {
			j := ((by / 4) * rowSize) + ((bx / 4) * bpb)
			pixels := decodeBlock(f, src[j:j+bpb])
			for i, p := range pixels {
				x, y := bx+(i&3), by+(i>>2)
				if (x < width) && (y < height) {
					m.SetNRGBA(x, y, p)
				}
			}
		}
	}
	return m
}

// meanAbsError returns the mean absolute difference per channel between two
// images of the same size.
func meanAbsError(a *image.NRGBA, b *image.NRGBA) float64 {
	sum := 0
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		sum += max(d, -d)
	}
	return float64(sum) / float64(len(a.Pix))
}

// makeGlyphImage draws the two digits of s over a radial gradient and a
// linear gradient, in the same way as the original PNG test images.
func makeGlyphImage(tt *testing.T, s string, size int) *image.NRGBA {
	tt.Helper()
	f, err := opentype.Parse(goitalic.TTF)
	if err != nil {
		tt.Fatalf("opentype.Parse: %v", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size) * 200 / 256,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		tt.Fatalf("opentype.NewFace: %v", err)
	}
	defer face.Close()

	r := image.Rect(0, 0, size, size)
	scale := func(v int) int { return (v * size) / 256 }

	digit0 := image.NewAlpha(r)
	(&font.Drawer{
		Dst:  digit0,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(scale(4), scale(224)),
	}).DrawString(s[0:1])
	for i := range digit0.Pix {
		digit0.Pix[i] ^= 0xFF
	}

	digit1 := image.NewAlpha(r)
	(&font.Drawer{
		Dst:  digit1,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(scale(4+112), scale(224-48)),
	}).DrawString(s[1:2])

	circ := image.NewNRGBA(r)
	cx, cy := scale(30), scale(50)
	for y := range size {
		for x := range size {
			dx, dy := x-cx, y-cy
			distance := int64(math.Sqrt(float64((dx*dx)+(dy*dy))) * 256 / float64(size))
			v := 0xFF - uint8(max(0x00, min(0xFF, distance)))
			circ.SetNRGBA(x, y, color.NRGBA{v, v / 3, 0, v})
		}
	}

	grad := image.NewNRGBA(r)
	for y := range size {
		for x := range size {
			grad.SetNRGBA(x, y, color.NRGBA{0x00, uint8((x * 255) / (size - 1)), uint8((y * 255) / (size - 1)), 0xFF})
		}
	}

	m := image.NewNRGBA(r)
	draw.DrawMask(m, r, circ, image.Point{}, digit0, image.Point{}, draw.Over)
	draw.DrawMask(m, r, grad, image.Point{}, digit1, image.Point{}, draw.Over)
	return m
}
