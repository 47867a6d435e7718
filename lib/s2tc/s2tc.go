// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package s2tc implements an encoder for the S3TC (S3 Texture Compression)
// block formats DXT1, DXT3 and DXT5, also known as BC1, BC2 and BC3.
//
// The encoder follows the S2TC approach: every block is encoded using only
// its two endpoint colors (and, for DXT1 and DXT5, the transparent and
// 0/255 alpha escape codes), never the interpolated ramp entries. The
// output is nonetheless valid S3TC data, readable by any conforming
// decoder.
//
// The image is first quantized (and optionally dithered) to the 5:6:5 color
// and 1, 4 or 8 bit alpha precision that the format stores. Each 4×4 block
// then picks two endpoints, either by a cheap darkest/brightest heuristic or
// by a brute force search over candidate pairs, and refines them.
//
// S3TC is specified at
// https://registry.khronos.org/DataFormat/specs/1.3/dataformat.1.3.html#S3TC
package s2tc

import (
	"image/color"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrBadArgument       = errors.New("s2tc: bad argument")
	ErrBufferTooSmall    = errors.New("s2tc: buffer too small")
	ErrImageIsTooLarge   = errors.New("s2tc: image is too large")
	ErrUnsupportedFormat = errors.New("s2tc: unsupported format")
)

// MaxDimension is the largest accepted image width or height.
const MaxDimension = 1 << 16

// Format gives the destination block format.
//
// The zero value is not a valid Format.
type Format uint8

const (
	FormatInvalid = Format(0)

	FormatDXT1RGB  = Format(1)
	FormatDXT1RGBA = Format(2)
	FormatDXT3RGBA = Format(3)
	FormatDXT5RGBA = Format(4)
)

// Valid returns whether f is one of the supported formats.
func (f Format) Valid() bool {
	return (FormatDXT1RGB <= f) && (f <= FormatDXT5RGBA)
}

// IsDXT1 returns whether f is one of the two DXT1 variants. Both are encoded
// identically: fully transparent pixels use the transparent index.
func (f Format) IsDXT1() bool {
	return (f == FormatDXT1RGB) || (f == FormatDXT1RGBA)
}

// AlphaBits returns the alpha precision that the Format stores: 1 for DXT1, 4
// for DXT3 (explicit alpha) and 8 for DXT5 (interpolated alpha).
func (f Format) AlphaBits() int {
	switch f {
	case FormatDXT1RGB, FormatDXT1RGBA:
		return 1
	case FormatDXT3RGBA:
		return 4
	case FormatDXT5RGBA:
		return 8
	}
	return 0
}

// BytesPerBlock returns the Format-dependent number of bytes used to encode
// each 4×4 pixel block.
func (f Format) BytesPerBlock() int {
	switch f {
	case FormatDXT1RGB, FormatDXT1RGBA:
		return 8
	case FormatDXT3RGBA, FormatDXT5RGBA:
		return 16
	}
	return 0
}

// RowSize returns the number of bytes in one row of blocks for an image of
// the given width, with no padding.
func (f Format) RowSize(width int) int {
	return ((width + 3) / 4) * f.BytesPerBlock()
}

// CompressedSize returns the number of bytes needed to hold a tightly packed
// width×height image. Partial blocks at the right and bottom edges count as
// whole blocks.
func (f Format) CompressedSize(width int, height int) int {
	if (width <= 0) || (height <= 0) {
		return 0
	}
	return ((height + 3) / 4) * f.RowSize(width)
}

// ColorModel returns the Go standard library's color model that best matches
// the Format.
func (f Format) ColorModel() color.Model {
	switch f {
	case FormatDXT1RGB:
		return color.RGBAModel
	case FormatDXT1RGBA, FormatDXT3RGBA, FormatDXT5RGBA:
		return color.NRGBAModel
	}
	return nil
}

// OpenGLInternalFormat returns the OpenGL internalFormat enum value for f,
// suitable for passing to the glCompressedTexImage2D function.
func (f Format) OpenGLInternalFormat() uint32 {
	switch f {
	case FormatDXT1RGB:
		return 0x83F0 // GL_COMPRESSED_RGB_S3TC_DXT1_EXT
	case FormatDXT1RGBA:
		return 0x83F1 // GL_COMPRESSED_RGBA_S3TC_DXT1_EXT
	case FormatDXT3RGBA:
		return 0x83F2 // GL_COMPRESSED_RGBA_S3TC_DXT3_EXT
	case FormatDXT5RGBA:
		return 0x83F3 // GL_COMPRESSED_RGBA_S3TC_DXT5_EXT
	}
	return 0
}

// FormatFromOpenGL is the inverse of Format.OpenGLInternalFormat. It returns
// FormatInvalid for an unknown enum value.
func FormatFromOpenGL(internalFormat uint32) Format {
	switch internalFormat {
	case 0x83F0:
		return FormatDXT1RGB
	case 0x83F1:
		return FormatDXT1RGBA
	case 0x83F2:
		return FormatDXT3RGBA
	case 0x83F3:
		return FormatDXT5RGBA
	}
	return FormatInvalid
}

var formatNames = [...]string{
	FormatInvalid:  "invalid",
	FormatDXT1RGB:  "dxt1-rgb",
	FormatDXT1RGBA: "dxt1-rgba",
	FormatDXT3RGBA: "dxt3",
	FormatDXT5RGBA: "dxt5",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return formatNames[FormatInvalid]
}

// ParseFormat parses a case-insensitive format name such as "dxt1-rgb",
// "dxt1-rgba", "dxt3" or "dxt5". The "bc1", "bc2" and "bc3" aliases are also
// accepted, with "bc1" meaning DXT1 with alpha.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "dxt1-rgb", "dxt1", "dxt1rgb":
		return FormatDXT1RGB, nil
	case "dxt1-rgba", "dxt1rgba", "bc1":
		return FormatDXT1RGBA, nil
	case "dxt3", "dxt3-rgba", "bc2":
		return FormatDXT3RGBA, nil
	case "dxt5", "dxt5-rgba", "bc3":
		return FormatDXT5RGBA, nil
	}
	return FormatInvalid, errors.Wrapf(ErrBadArgument, "unknown format %q", s)
}
