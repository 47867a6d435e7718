// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s2tc

// reduceInPlace picks, from the m candidates in c, the pair that minimizes
// the sum over the first n candidates of the distance to the nearer of the
// pair. The winning pair is written to c[0] and c[1]. Ties keep the earliest
// pair in (i, j) order.
//
// The first n candidates are the block's actual values. The remaining m-n
// are synthetic and do not count towards the sum. It requires 2 <= m and
// 1 <= n <= m. dists is scratch space and needs room for m*n entries.
func reduceInPlace[T any](c []T, n int, m int, dist func(a T, b T) int, dists []int) {
	d := dists[:m*n]
	fillDistances(d, c, n, m, dist)

	bestSum, bestI, bestJ := -1, 0, 1
	for i := range m {
		di := d[i*n : (i+1)*n]
		for j := i + 1; j < m; j++ {
			dj := d[j*n : (j+1)*n]
			sum := 0
			for k := range n {
				sum += min(di[k], dj[k])
			}
			if (bestSum < 0) || (sum < bestSum) {
				bestSum, bestI, bestJ = sum, i, j
			}
		}
	}
	c[0], c[1] = c[bestI], c[bestJ]
}

// reduceInPlace2FixPoints is like reduceInPlace but every value may also
// snap to one of two fixed points, fix0 and fix1, which are not themselves
// candidates. dists needs room for (m+2)*n entries.
func reduceInPlace2FixPoints[T any](c []T, n int, m int, dist func(a T, b T) int, fix0 T, fix1 T, dists []int) {
	d := dists[:(m+2)*n]
	fillDistances(d, c, n, m, dist)
	f0 := d[(m+0)*n : (m+1)*n]
	f1 := d[(m+1)*n : (m+2)*n]
	for k := range n {
		f0[k] = dist(fix0, c[k])
		f1[k] = dist(fix1, c[k])
	}

	bestSum, bestI, bestJ := -1, 0, 1
	for i := range m {
		di := d[i*n : (i+1)*n]
		for j := i + 1; j < m; j++ {
			dj := d[j*n : (j+1)*n]
			sum := 0
			for k := range n {
				sum += min(di[k], dj[k], f0[k], f1[k])
			}
			if (bestSum < 0) || (sum < bestSum) {
				bestSum, bestI, bestJ = sum, i, j
			}
		}
	}
	c[0], c[1] = c[bestI], c[bestJ]
}

// fillDistances sets d[i*n+k] to dist(c[i], c[k]) for i < m and k < n. The
// n×n square is symmetric, so only half of it is computed.
func fillDistances[T any](d []int, c []T, n int, m int, dist func(a T, b T) int) {
	for i := range n {
		d[(i*n)+i] = 0
		for j := i + 1; j < n; j++ {
			x := dist(c[i], c[j])
			d[(i*n)+j] = x
			d[(j*n)+i] = x
		}
	}
	for i := n; i < m; i++ {
		for k := range n {
			d[(i*n)+k] = dist(c[i], c[k])
		}
	}
}
