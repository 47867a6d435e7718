// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s2tc

import (
	"math/rand/v2"
)

// blockView is a window of up to 4×4 pixels into a quantized image, holding
// 4 bytes per pixel. Only the top-left w×h pixels are valid.
type blockView struct {
	pix    []byte
	stride int
	w, h   int
}

func (v *blockView) at(x int, y int) []byte {
	i := (y * v.stride) + (4 * x)
	return v.pix[i : i+4 : i+4]
}

// blockEncoder holds the per-image strategy and per-block scratch space.
// Everything that depends on the options is resolved once, by
// newBlockEncoder, not per block.
type blockEncoder struct {
	format       Format
	dist         colorDistFunc
	linear       bool
	fast         bool
	refine       RefinementMode
	transparency bool

	numRandom int
	rng       *rand.Rand

	colors []color565
	alphas []uint8
	dists  []int
}

func newBlockEncoder(f Format, o *EncodeOptions) *blockEncoder {
	e := &blockEncoder{
		format:       f,
		dist:         colorDistWAvg,
		fast:         true,
		transparency: f.IsDXT1(),
	}
	if o != nil {
		e.dist = o.ColorDist.distFunc()
		e.linear = o.ColorDist.averagesLinearLight()
		e.fast = o.ColorDist.supportsFast() && !o.Exhaustive && (o.RandomColors <= 0)
		e.refine = o.Refine
		e.numRandom = max(0, o.RandomColors)
		e.rng = o.Rand
	}
	if (e.numRandom > 0) && (e.rng == nil) {
		e.rng = rand.New(rand.NewPCG(0x5332_5443, 0x4458_5431))
	}

	m := 16 + e.numRandom
	e.colors = make([]color565, m)
	e.alphas = make([]uint8, m)
	e.dists = make([]int, (m+2)*16)
	return e
}

// encode writes one block to dst, which must hold BytesPerBlock bytes.
func (e *blockEncoder) encode(dst []byte, v *blockView) {
	c, ca := e.colors, e.alphas
	if e.fast {
		e.pickFast(v)
	} else {
		e.pickSearch(v)
	}

	e.separateColors(&c[0], &c[1])
	if e.format == FormatDXT5RGBA {
		separateAlphas(&ca[0], &ca[1])
	}

	switch e.format {
	case FormatDXT1RGB, FormatDXT1RGBA:
		colorIndexes := e.refineColors(v, &c[0], &c[1])
		putColorBlock(dst[0:8], c[0], c[1], colorIndexes)

	case FormatDXT3RGBA:
		colorIndexes := e.refineColors(v, &c[0], &c[1])
		putU64LE(dst[0:8], explicitAlphas(v))
		putColorBlock(dst[8:16], c[0], c[1], colorIndexes)

	case FormatDXT5RGBA:
		colorIndexes := e.refineColors(v, &c[0], &c[1])
		alphaIndexes := e.refineAlphas(v, &ca[0], &ca[1])
		dst[0] = ca[0]
		dst[1] = ca[1]
		putU48LE(dst[2:8], alphaIndexes)
		putColorBlock(dst[8:16], c[0], c[1], colorIndexes)
	}
}

// pickFast sets c[0] and c[1] to the block's colors nearest to and farthest
// from black. For DXT5, ca[0] and ca[1] become the extreme non-opaque alpha
// values. DXT1 ignores fully transparent pixels.
func (e *blockEncoder) pickFast(v *blockView) {
	c, ca := e.colors, e.alphas

	// Placeholders, in case every pixel is skipped.
	c[0], c[1] = maxColor565, minColor565
	dMin, dMax := int(^uint(0)>>1), 0
	if e.format == FormatDXT5RGBA {
		ca[0] = v.at(0, 0)[3]
		ca[1] = ca[0]
	}

	for x := range v.w {
		for y := range v.h {
			p := v.at(x, y)
			a := p[3]
			if e.transparency && (a == 0) {
				continue
			}

			col := color565{p[0], p[1], p[2]}
			d := e.dist(col, minColor565)
			if d > dMax {
				dMax, c[1] = d, col
			}
			if d < dMin {
				dMin, c[0] = d, col
			}

			if (e.format == FormatDXT5RGBA) && (a != 0xFF) {
				ca[1] = max(ca[1], a)
				ca[0] = min(ca[0], a)
			}
		}
	}
}

// pickSearch gathers the block's colors (and alphas), optionally adds random
// candidates and runs the brute force pair search.
func (e *blockEncoder) pickSearch(v *blockView) {
	c, ca := e.colors, e.alphas

	n := 0
	for x := range v.w {
		for y := range v.h {
			p := v.at(x, y)
			if e.transparency && (p[3] == 0) {
				continue
			}
			c[n] = color565{p[0], p[1], p[2]}
			ca[n] = p[3]
			n++
		}
	}
	if n == 0 {
		c[0], ca[0] = minColor565, 0
		n = 1
	}
	m := n

	if e.numRandom > 0 {
		m += e.addRandomCandidates(n)
	} else if n == 1 {
		c[1], ca[1] = c[0], ca[0]
		n, m = 2, 2
	}

	reduceInPlace(c, n, m, e.dist, e.dists)
	if e.format == FormatDXT5RGBA {
		reduceInPlace2FixPoints(ca, n, m, alphaDist, 0x00, 0xFF, e.dists)
	}
}

// addRandomCandidates appends numRandom candidates, drawn uniformly from the
// per-channel bounding box of the first n colors (and alphas), and returns
// how many it added.
func (e *blockEncoder) addRandomCandidates(n int) int {
	c, ca := e.colors, e.alphas
	lo, hi := c[0], c[0]
	loA, hiA := ca[0], ca[0]
	for _, col := range c[1:n] {
		lo.r, hi.r = min(lo.r, col.r), max(hi.r, col.r)
		lo.g, hi.g = min(lo.g, col.g), max(hi.g, col.g)
		lo.b, hi.b = min(lo.b, col.b), max(hi.b, col.b)
	}
	for _, a := range ca[1:n] {
		loA, hiA = min(loA, a), max(hiA, a)
	}

	for i := n; i < n+e.numRandom; i++ {
		c[i] = color565{
			lo.r + uint8(e.rng.IntN(int(hi.r-lo.r)+1)),
			lo.g + uint8(e.rng.IntN(int(hi.g-lo.g)+1)),
			lo.b + uint8(e.rng.IntN(int(hi.b-lo.b)+1)),
		}
		if e.format == FormatDXT5RGBA {
			ca[i] = loA + uint8(e.rng.IntN(int(hiA-loA)+1))
		}
	}
	return e.numRandom
}

// explicitAlphas packs the DXT3 4-bit alpha plane. Invalid pixels are zero.
func explicitAlphas(v *blockView) (ret uint64) {
	for x := range v.w {
		for y := range v.h {
			i := (4 * y) + x
			ret |= uint64(v.at(x, y)[3]&15) << (4 * i)
		}
	}
	return ret
}

// putColorBlock writes the 8 byte DXT1 color block: two little-endian 5:6:5
// endpoints followed by sixteen 2-bit indexes, first pixel in the low bits.
func putColorBlock(dst []byte, c0 color565, c1 color565, indexes uint32) {
	dst = dst[:8]
	p0, p1 := c0.pack(), c1.pack()
	dst[0] = uint8(p0 >> 0)
	dst[1] = uint8(p0 >> 8)
	dst[2] = uint8(p1 >> 0)
	dst[3] = uint8(p1 >> 8)
	dst[4] = uint8(indexes >> 0)
	dst[5] = uint8(indexes >> 8)
	dst[6] = uint8(indexes >> 16)
	dst[7] = uint8(indexes >> 24)
}

func putU48LE(dst []byte, x uint64) {
	dst = dst[:6]
	dst[0] = uint8(x >> 0)
	dst[1] = uint8(x >> 8)
	dst[2] = uint8(x >> 16)
	dst[3] = uint8(x >> 24)
	dst[4] = uint8(x >> 32)
	dst[5] = uint8(x >> 40)
}

func putU64LE(dst []byte, x uint64) {
	dst = dst[:8]
	dst[0] = uint8(x >> 0)
	dst[1] = uint8(x >> 8)
	dst[2] = uint8(x >> 16)
	dst[3] = uint8(x >> 24)
	dst[4] = uint8(x >> 32)
	dst[5] = uint8(x >> 40)
	dst[6] = uint8(x >> 48)
	dst[7] = uint8(x >> 56)
}
