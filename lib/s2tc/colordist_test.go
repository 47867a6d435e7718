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
	"testing"
)

func randomColor565(rng *rand.Rand) color565 {
	return color565{uint8(rng.IntN(32)), uint8(rng.IntN(64)), uint8(rng.IntN(32))}
}

func TestColorDist(tt *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	for _, m := range allColorDistModes {
		dist := m.distFunc()
		if dist == nil {
			tt.Fatalf("%v: nil distFunc", m)
		}
		// Rounding in the SRGB metric's fixed point arithmetic is not
		// symmetric around zero.
		symmetric := m != ColorDistSRGB

		for range 1000 {
			a, b := randomColor565(rng), randomColor565(rng)
			if d := dist(a, a); d != 0 {
				tt.Errorf("%v: dist(%v, %v): got %d, want 0", m, a, a, d)
			}
			dab, dba := dist(a, b), dist(b, a)
			if dab < 0 {
				tt.Errorf("%v: dist(%v, %v): got %d, want >= 0", m, a, b, dab)
			}
			if symmetric && (dab != dba) {
				tt.Errorf("%v: dist(%v, %v) = %d but dist(%v, %v) = %d", m, a, b, dab, b, a, dba)
			}
		}

		if d := dist(minColor565, maxColor565); d <= 0 {
			tt.Errorf("%v: dist(black, white): got %d, want > 0", m, d)
		}
	}

	if d := ColorDistMode(7).distFunc(); d != nil {
		tt.Errorf("ColorDistMode(7).distFunc: got non-nil")
	}
}

func TestColorDistKnownValues(tt *testing.T) {
	red := color565{31, 0, 0}
	blue := color565{0, 0, 31}
	testCases := []struct {
		dist colorDistFunc
		a, b color565
		want int
	}{
		{colorDistAvg, red, minColor565, 3844},
		{colorDistAvg, blue, minColor565, 3844},
		{colorDistAvg, red, blue, 7688},
		{colorDistWAvg, red, minColor565, 3844},
		{colorDistWAvg, blue, minColor565, 961},
		{colorDistWAvg, color565{0, 1, 0}, minColor565, 4},
	}
	for _, tc := range testCases {
		if got := tc.dist(tc.a, tc.b); got != tc.want {
			tt.Errorf("dist(%v, %v): got %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestColor565Order(tt *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	for range 1000 {
		a, b := randomColor565(rng), randomColor565(rng)
		if got, want := a.less(b), a.pack() < b.pack(); got != want {
			tt.Errorf("%v.less(%v): got %t, want %t", a, b, got, want)
		}
		if a.next().prev() != a {
			tt.Errorf("%v.next().prev() != itself", a)
		}
		if (a != maxColor565) && (a.next().pack() != a.pack()+1) {
			tt.Errorf("%v.next(): got %#04x", a, a.next().pack())
		}
		if (a != minColor565) && (a.prev().pack() != a.pack()-1) {
			tt.Errorf("%v.prev(): got %#04x", a, a.prev().pack())
		}
	}

	if got := maxColor565.next(); got != minColor565 {
		tt.Errorf("max.next(): got %v", got)
	}
	if got := minColor565.prev(); got != maxColor565 {
		tt.Errorf("min.prev(): got %v", got)
	}
	if got := maxColor565.pack(); got != 0xFFFF {
		tt.Errorf("max.pack(): got %#04x", got)
	}
}

func TestShrr(tt *testing.T) {
	testCases := []struct {
		a    int
		n    uint
		want int
	}{
		{0, 3, 0},
		{3, 3, 0},
		{4, 3, 1},
		{11, 3, 1},
		{12, 3, 2},
		{-4, 3, 0},
		{-5, 3, -1},
	}
	for _, tc := range testCases {
		if got := shrr(tc.a, tc.n); got != tc.want {
			tt.Errorf("shrr(%d, %d): got %d, want %d", tc.a, tc.n, got, tc.want)
		}
	}
}
