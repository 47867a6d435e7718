// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s2tc

import (
	"math"
)

// color565 is a quantized color: R in [0, 31], G in [0, 63], B in [0, 31].
type color565 struct {
	r, g, b uint8
}

var (
	minColor565 = color565{0, 0, 0}
	maxColor565 = color565{31, 63, 31}
)

// less orders colors by R, then G, then B. This matches the numerical order
// of the packed 16-bit value.
func (c color565) less(d color565) bool {
	if c.r != d.r {
		return c.r < d.r
	}
	if c.g != d.g {
		return c.g < d.g
	}
	return c.b < d.b
}

// next returns the color whose packed value is one higher, wrapping from
// the maximum to black.
func (c color565) next() color565 {
	switch {
	case c.b < 31:
		c.b++
	case c.g < 63:
		c.b, c.g = 0, c.g+1
	case c.r < 31:
		c.b, c.g, c.r = 0, 0, c.r+1
	default:
		c = minColor565
	}
	return c
}

// prev returns the color whose packed value is one lower, wrapping from
// black to the maximum.
func (c color565) prev() color565 {
	switch {
	case c.b > 0:
		c.b--
	case c.g > 0:
		c.b, c.g = 31, c.g-1
	case c.r > 0:
		c.b, c.g, c.r = 31, 63, c.r-1
	default:
		c = maxColor565
	}
	return c
}

func (c color565) pack() uint16 {
	return (uint16(c.r) << 11) | (uint16(c.g) << 5) | uint16(c.b)
}

// colorDistFunc returns a non-negative distance. Values are only comparable
// between calls to the same function.
type colorDistFunc func(a color565, b color565) int

// shrr is a right shift, rounded.
func shrr(a int, n uint) int {
	return (a + (1 << (n - 1))) >> n
}

func colorDistAvg(a color565, b color565) int {
	dr := int(a.r) - int(b.r)
	dg := int(a.g) - int(b.g)
	db := int(a.b) - int(b.b)
	return ((dr * dr) << 2) + (dg * dg) + ((db * db) << 2)
}

// colorDistWAvg weights R:G:B as 4:16:1 after scaling R and B to G's range.
func colorDistWAvg(a color565, b color565) int {
	dr := int(a.r) - int(b.r)
	dg := int(a.g) - int(b.g)
	db := int(a.b) - int(b.b)
	return ((dr * dr) << 2) + ((dg * dg) << 2) + (db * db)
}

func colorDistYUV(a color565, b color565) int {
	dr := int(a.r) - int(b.r)
	dg := int(a.g) - int(b.g)
	db := int(a.b) - int(b.b)
	y := (dr * 30 * 2) + (dg * 59) + (db * 11 * 2)
	u := (dr * 202) - y
	v := (db * 202) - y
	return ((y * y) << 1) + shrr(u*u, 3) + shrr(v*v, 4)
}

func colorDistRGB(a color565, b color565) int {
	dr := int(a.r) - int(b.r)
	dg := int(a.g) - int(b.g)
	db := int(a.b) - int(b.b)
	y := (dr * 21 * 2) + (dg * 72) + (db * 7 * 2)
	u := (dr * 202) - y
	v := (db * 202) - y
	return ((y * y) << 1) + shrr(u*u, 3) + shrr(v*v, 4)
}

// colorDistSRGB treats each channel as the square root of linear light.
func colorDistSRGB(a color565, b color565) int {
	dr := (int(a.r) * int(a.r)) - (int(b.r) * int(b.r))
	dg := (int(a.g) * int(a.g)) - (int(b.g) * int(b.g))
	db := (int(a.b) * int(a.b)) - (int(b.b) * int(b.b))
	y := (dr * 21 * 2 * 2) + (dg * 72) + (db * 7 * 2 * 2)
	u := (dr * 409) - y
	v := (db * 409) - y
	sy := shrr(y, 3) * shrr(y, 4)
	su := shrr(u, 3) * shrr(u, 4)
	sv := shrr(v, 3) * shrr(v, 4)
	return shrr(sy, 4) + shrr(su, 8) + shrr(sv, 9)
}

// srgbLuma returns the square root of c's linear luminance, in [0, 3815].
func srgbLuma(c color565) int {
	r := int(c.r) * int(c.r)
	g := int(c.g) * int(c.g)
	b := int(c.b) * int(c.b)
	y := 37 * ((r * 21 * 2 * 2) + (g * 72) + (b * 7 * 2 * 2))
	return int(float32(math.Sqrt(float64(y))) + 0.5)
}

func colorDistSRGBMixed(a color565, b color565) int {
	ay := srgbLuma(a)
	by := srgbLuma(b)
	au := (int(a.r) * 191) - ay
	av := (int(a.b) * 191) - ay
	bu := (int(b.r) * 191) - by
	bv := (int(b.b) * 191) - by
	y := ay - by
	u := au - bu
	v := av - bv
	return ((y * y) << 3) + shrr(u*u, 1) + shrr(v*v, 2)
}

// colorDistNormalMap maps both colors to vectors in [-1, +1]³, normalizes
// them and returns their squared distance, scaled by 100000.
func colorDistNormalMap(a color565, b color565) int {
	ca := normalize3(
		(float32(a.r)/31)*2-1,
		(float32(a.g)/63)*2-1,
		(float32(a.b)/31)*2-1,
	)
	cb := normalize3(
		(float32(b.r)/31)*2-1,
		(float32(b.g)/63)*2-1,
		(float32(b.b)/31)*2-1,
	)
	d0 := cb[0] - ca[0]
	d1 := cb[1] - ca[1]
	d2 := cb[2] - ca[2]
	return int(100000 * ((d0 * d0) + (d1 * d1) + (d2 * d2)))
}

func normalize3(x float32, y float32, z float32) [3]float32 {
	if n := (x * x) + (y * y) + (z * z); n > 0 {
		n = 1 / float32(math.Sqrt(float64(n)))
		x, y, z = x*n, y*n, z*n
	}
	return [3]float32{x, y, z}
}

func alphaDist(a uint8, b uint8) int {
	d := int(a) - int(b)
	return d * d
}

var colorDistFuncs = [...]colorDistFunc{
	ColorDistWAvg:      colorDistWAvg,
	ColorDistRGB:       colorDistRGB,
	ColorDistYUV:       colorDistYUV,
	ColorDistSRGB:      colorDistSRGB,
	ColorDistSRGBMixed: colorDistSRGBMixed,
	ColorDistAvg:       colorDistAvg,
	ColorDistNormalMap: colorDistNormalMap,
}

// distFunc returns the metric for m, or nil if m is out of range.
func (m ColorDistMode) distFunc() colorDistFunc {
	if int(m) < len(colorDistFuncs) {
		return colorDistFuncs[m]
	}
	return nil
}

// supportsFast is whether the darkest/brightest heuristic is meaningful for
// the metric. Distance from black says nothing about a normal's direction.
func (m ColorDistMode) supportsFast() bool {
	return m != ColorDistNormalMap
}

// averagesLinearLight is whether refinement averages squared channel values.
func (m ColorDistMode) averagesLinearLight() bool {
	return (m == ColorDistSRGB) || (m == ColorDistSRGBMixed)
}
