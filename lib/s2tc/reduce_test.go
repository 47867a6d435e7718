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

func TestReduceInPlace(tt *testing.T) {
	testCases := []struct {
		values []uint8
		n      int
		want0  uint8
		want1  uint8
	}{
		// (0, 200) and (10, 200) tie, so the earlier pair wins.
		{[]uint8{0, 10, 200}, 3, 0, 200},
		{[]uint8{50, 52, 100, 101, 99}, 5, 50, 100},
		{[]uint8{7, 7}, 2, 7, 7},
		// Synthetic candidates do not count towards the sum but can win.
		{[]uint8{10, 30, 20, 0}, 2, 10, 30},
		{[]uint8{10, 12, 11, 90}, 2, 10, 12},
	}

	for i, tc := range testCases {
		c := append([]uint8(nil), tc.values...)
		dists := make([]int, len(c)*tc.n)
		reduceInPlace(c, tc.n, len(c), alphaDist, dists)
		if (c[0] != tc.want0) || (c[1] != tc.want1) {
			tt.Errorf("tc=%d: got (%d, %d), want (%d, %d)", i, c[0], c[1], tc.want0, tc.want1)
		}
	}
}

func TestReduceInPlace2FixPoints(tt *testing.T) {
	c := []uint8{0, 255, 100, 120}
	dists := make([]int, (len(c)+2)*len(c))
	reduceInPlace2FixPoints(c, 4, 4, alphaDist, 0x00, 0xFF, dists)
	if (c[0] != 100) || (c[1] != 120) {
		tt.Errorf("got (%d, %d), want (100, 120)", c[0], c[1])
	}
}

// TestReduceIsOptimal compares the search against a direct evaluation of
// every pair.
func TestReduceIsOptimal(tt *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	for trial := range 200 {
		n := 1 + rng.IntN(16)
		m := max(2, n+rng.IntN(5))
		c := make([]color565, m)
		for i := range c {
			c[i] = randomColor565(rng)
		}
		orig := append([]color565(nil), c...)

		sum := func(p color565, q color565) int {
			s := 0
			for _, x := range orig[:n] {
				s += min(colorDistYUV(x, p), colorDistYUV(x, q))
			}
			return s
		}
		best := -1
		for i := range m {
			for j := i + 1; j < m; j++ {
				if s := sum(orig[i], orig[j]); (best < 0) || (s < best) {
					best = s
				}
			}
		}

		reduceInPlace(c, n, m, colorDistYUV, make([]int, m*n))
		if got := sum(c[0], c[1]); got != best {
			tt.Errorf("trial=%d: got sum %d, want %d", trial, got, best)
		}
	}
}
