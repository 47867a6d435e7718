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

// Index values with a fixed meaning.
const (
	dxt1IndexTransparent = 3
	dxt5IndexAlpha0      = 6
	dxt5IndexAlpha255    = 7
)

// colorSums accumulates, per endpoint, the pixels classified to it.
type colorSums struct {
	n   [2]int
	sum [2][3]int
}

func (s *colorSums) add(l int, c color565, linear bool) {
	s.n[l]++
	if linear {
		s.sum[l][0] += int(c.r) * int(c.r)
		s.sum[l][1] += int(c.g) * int(c.g)
		s.sum[l][2] += int(c.b) * int(c.b)
	} else {
		s.sum[l][0] += int(c.r)
		s.sum[l][1] += int(c.g)
		s.sum[l][2] += int(c.b)
	}
}

// evaluate replaces each endpoint that had pixels classified to it by the
// rounded average of those pixels. It returns false if no pixel was
// classified at all.
func (s *colorSums) evaluate(c0 *color565, c1 *color565, linear bool) bool {
	if (s.n[0] == 0) && (s.n[1] == 0) {
		return false
	}
	if s.n[0] > 0 {
		*c0 = s.average(0, linear)
	}
	if s.n[1] > 0 {
		*c1 = s.average(1, linear)
	}
	return true
}

func (s *colorSums) average(l int, linear bool) (ret color565) {
	n := s.n[l]
	avg := [3]int{}
	for c := range 3 {
		avg[c] = ((s.sum[l][c] << 1) + n) / (n << 1)
		if linear {
			avg[c] = int(float32(math.Sqrt(float64(avg[c]))) + 0.5)
		}
	}
	return color565{uint8(avg[0] & 31), uint8(avg[1] & 63), uint8(avg[2] & 31)}
}

type alphaSums struct {
	n   [2]int
	sum [2]int
}

func (s *alphaSums) add(l int, a uint8) {
	s.n[l]++
	s.sum[l] += int(a)
}

func (s *alphaSums) evaluate(a0 *uint8, a1 *uint8) bool {
	if (s.n[0] == 0) && (s.n[1] == 0) {
		return false
	}
	if n := s.n[0]; n > 0 {
		*a0 = uint8(((s.sum[0] << 1) + n) / (n << 1))
	}
	if n := s.n[1]; n > 0 {
		*a1 = uint8(((s.sum[1] << 1) + n) / (n << 1))
	}
	return true
}

// classifyColors assigns each valid pixel to the nearer of c0 and c1, or to
// the transparent index. It returns the 2-bit indexes and the total distance.
// sums may be nil.
func (e *blockEncoder) classifyColors(v *blockView, c0 color565, c1 color565, sums *colorSums) (indexes uint32, score int) {
	for x := range v.w {
		for y := range v.h {
			i := (4 * y) + x
			p := v.at(x, y)
			if e.transparency && (p[3] == 0) {
				indexes |= dxt1IndexTransparent << (2 * i)
				continue
			}

			c := color565{p[0], p[1], p[2]}
			best, bestDist := 0, e.dist(c, c0)
			if d := e.dist(c, c1); d < bestDist {
				best, bestDist = 1, d
			}
			if sums != nil {
				sums.add(best, c, e.linear)
			}
			indexes |= uint32(best) << (2 * i)
			score += bestDist
		}
	}
	return indexes, score
}

// classifyAlphas is like classifyColors, for DXT5 alpha. A pixel snaps to
// the literal 0 or 255 index whenever that is no worse than the nearer
// endpoint. Such pixels do not contribute to sums.
func (e *blockEncoder) classifyAlphas(v *blockView, a0 uint8, a1 uint8, sums *alphaSums) (indexes uint64, score int) {
	for x := range v.w {
		for y := range v.h {
			i := (4 * y) + x
			a := v.at(x, y)[3]

			best, bestDist := 0, alphaDist(a, a0)
			if d := alphaDist(a, a1); d < bestDist {
				best, bestDist = 1, d
			}
			if d := alphaDist(a, 0x00); d <= bestDist {
				indexes |= dxt5IndexAlpha0 << (3 * i)
				score += d
				continue
			}
			if d := alphaDist(a, 0xFF); d <= bestDist {
				indexes |= dxt5IndexAlpha255 << (3 * i)
				score += d
				continue
			}
			if sums != nil {
				sums.add(best, a)
			}
			indexes |= uint64(best) << (3 * i)
			score += bestDist
		}
	}
	return indexes, score
}

// refineColors assigns color indexes for the block and, depending on the
// refinement mode, moves c0 and c1 towards the pixels assigned to them. On
// return, c0 != c1 and the pair is in the order the format requires.
func (e *blockEncoder) refineColors(v *blockView, c0 *color565, c1 *color565) (indexes uint32) {
	switch e.refine {
	case RefineNever:
		if e.colorsOutOfOrder(*c0, *c1) {
			*c0, *c1 = *c1, *c0
		}
		indexes, _ = e.classifyColors(v, *c0, *c1, nil)
		return indexes

	case RefineLoop:
		next0, next1 := *c0, *c1
		bestScore := math.MaxInt
		for {
			sums := colorSums{}
			nextIndexes, score := e.classifyColors(v, next0, next1, &sums)
			if score >= bestScore {
				break
			}
			indexes, bestScore = nextIndexes, score
			*c0, *c1 = next0, next1
			if !sums.evaluate(&next0, &next1, e.linear) {
				break
			}
		}
		if e.separateColors(c0, c1) {
			indexes = mergeColorIndexes(indexes)
		}

	default:
		sums := colorSums{}
		e.classifyColors(v, *c0, *c1, &sums)
		sums.evaluate(c0, c1, e.linear)
		e.separateColors(c0, c1)
		indexes, _ = e.classifyColors(v, *c0, *c1, nil)
	}

	if e.colorsOutOfOrder(*c0, *c1) {
		*c0, *c1 = *c1, *c0
		indexes = swapColorIndexes(indexes)
	}
	return indexes
}

// refineAlphas is the DXT5 alpha counterpart of refineColors. On return,
// a0 < a1.
func (e *blockEncoder) refineAlphas(v *blockView, a0 *uint8, a1 *uint8) (indexes uint64) {
	switch e.refine {
	case RefineNever:
		if *a1 < *a0 {
			*a0, *a1 = *a1, *a0
		}
		indexes, _ = e.classifyAlphas(v, *a0, *a1, nil)
		return indexes

	case RefineLoop:
		next0, next1 := *a0, *a1
		bestScore := math.MaxInt
		for {
			sums := alphaSums{}
			nextIndexes, score := e.classifyAlphas(v, next0, next1, &sums)
			if score >= bestScore {
				break
			}
			indexes, bestScore = nextIndexes, score
			*a0, *a1 = next0, next1
			if !sums.evaluate(&next0, &next1) {
				break
			}
		}
		if separateAlphas(a0, a1) {
			indexes = mergeAlphaIndexes(indexes)
		}

	default:
		sums := alphaSums{}
		e.classifyAlphas(v, *a0, *a1, &sums)
		sums.evaluate(a0, a1)
		separateAlphas(a0, a1)
		indexes, _ = e.classifyAlphas(v, *a0, *a1, nil)
	}

	if *a1 < *a0 {
		*a0, *a1 = *a1, *a0
		indexes = swapAlphaIndexes(indexes)
	}
	return indexes
}

// colorsOutOfOrder is whether c0 and c1 must be swapped. DXT1 blocks use
// c0 < c1, which selects the mode with a transparent index. DXT3 and DXT5
// blocks use c0 > c1, the four-color mode.
func (e *blockEncoder) colorsOutOfOrder(c0 color565, c1 color565) bool {
	if e.transparency {
		return c1.less(c0)
	}
	return c0.less(c1)
}

// separateColors makes c1 differ from c0 by moving it one step, in packed
// 5:6:5 order, in the direction that the format's endpoint order wants: up
// for DXT1, down for DXT3 and DXT5. At the edge of the gamut it moves the
// other way and the later reordering swaps the pair. It returns whether c1
// changed.
func (e *blockEncoder) separateColors(c0 *color565, c1 *color565) bool {
	if *c0 != *c1 {
		return false
	}
	if e.transparency {
		if *c0 == maxColor565 {
			*c1 = c1.prev()
		} else {
			*c1 = c1.next()
		}
	} else {
		if *c0 == minColor565 {
			*c1 = c1.next()
		} else {
			*c1 = c1.prev()
		}
	}
	return true
}

func separateAlphas(a0 *uint8, a1 *uint8) bool {
	if *a0 != *a1 {
		return false
	}
	if *a0 == 0xFF {
		*a1--
	} else {
		*a1++
	}
	return true
}

// mergeColorIndexes moves pixels from endpoint 1 to endpoint 0. It is used
// after separateColors nudged endpoint 1 away from a shared value.
func mergeColorIndexes(indexes uint32) uint32 {
	// A 2-bit field equal to 1 has its low bit set and its high bit clear.
	ones := indexes &^ (indexes >> 1) & 0x5555_5555
	return indexes &^ ones
}

// swapColorIndexes exchanges indexes 0 and 1, leaving 2 and 3 alone.
func swapColorIndexes(indexes uint32) uint32 {
	highClear := ^(indexes >> 1) & 0x5555_5555
	return indexes ^ highClear
}

func mergeAlphaIndexes(indexes uint64) uint64 {
	for i := range 16 {
		shift := 3 * i
		if ((indexes >> shift) & 7) == 1 {
			indexes &^= 7 << shift
		}
	}
	return indexes
}

// swapAlphaIndexes exchanges indexes 0 and 1 and mirrors the interpolated
// indexes 2 to 5. The literal 0 and 255 indexes are left alone.
func swapAlphaIndexes(indexes uint64) uint64 {
	ret := uint64(0)
	for i := range 16 {
		shift := 3 * i
		idx := (indexes >> shift) & 7
		switch idx {
		case 0:
			idx = 1
		case 1:
			idx = 0
		case dxt5IndexAlpha0, dxt5IndexAlpha255:
		default:
			idx = 7 - idx
		}
		ret |= idx << shift
	}
	return ret
}
