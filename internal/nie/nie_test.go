// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package nie

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestEncode(tt *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	m.SetNRGBA(0, 0, color.NRGBA{0x01, 0x02, 0x03, 0x04})
	m.SetNRGBA(1, 0, color.NRGBA{0xF1, 0xF2, 0xF3, 0xF4})

	header := func(depth byte) []byte {
		return []byte{
			0x6E, 0xC3, 0xAF, 0x45, 0xFF, 'b', 'n', depth,
			0x02, 0x00, 0x00, 0x00,
			0x01, 0x00, 0x00, 0x00,
		}
	}

	testCases := []struct {
		name   string
		encode func(*image.NRGBA) ([]byte, error)
		want   []byte
	}{{
		name:   "bn4",
		encode: EncodeBN4,
		want: append(header('4'),
			0x03, 0x02, 0x01, 0x04,
			0xF3, 0xF2, 0xF1, 0xF4,
		),
	}, {
		name:   "bn8",
		encode: EncodeBN8,
		want: append(header('8'),
			0x03, 0x03, 0x02, 0x02, 0x01, 0x01, 0x04, 0x04,
			0xF3, 0xF3, 0xF2, 0xF2, 0xF1, 0xF1, 0xF4, 0xF4,
		),
	}}

	for _, tc := range testCases {
		got, err := tc.encode(m)
		if err != nil {
			tt.Errorf("%s: %v", tc.name, err)
		} else if !bytes.Equal(got, tc.want) {
			tt.Errorf("%s:\ngot  % 02x\nwant % 02x", tc.name, got, tc.want)
		}
	}

	// A sub-image starts at its own bounds' top-left corner.
	sub := m.SubImage(image.Rect(1, 0, 2, 1)).(*image.NRGBA)
	got, err := EncodeBN4(sub)
	if err != nil {
		tt.Fatalf("sub: %v", err)
	}
	if want := []byte{0xF3, 0xF2, 0xF1, 0xF4}; !bytes.Equal(got[16:], want) {
		tt.Errorf("sub: got % 02x, want % 02x", got[16:], want)
	}
}
