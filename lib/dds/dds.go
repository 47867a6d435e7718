// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dds implements writing the DDS (DirectDraw Surface) container
// format for S3TC textures, with an optional mipmap chain.
//
// Only the header is ever read back (see DecodeHeader). Decoding the pixel
// data is out of scope.
package dds

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/disintegration/gift"
	"github.com/pkg/errors"

	"github.com/nigeltao/s2tc/lib/s2tc"
)

// Magic is the byte string prefix of every DDS image file.
const Magic = "DDS "

const headerSize = 124

var (
	ErrBadArgument     = errors.New("dds: bad argument")
	ErrNotADDSFile     = errors.New("dds: not a DDS file")
	ErrImageIsTooLarge = errors.New("dds: image is too large")
	ErrUnsupportedDDS  = errors.New("dds: unsupported DDS file")
)

const (
	flagCaps        = 0x0000_0001
	flagHeight      = 0x0000_0002
	flagWidth       = 0x0000_0004
	flagPixelFormat = 0x0000_1000
	flagMipMapCount = 0x0002_0000
	flagLinearSize  = 0x0008_0000

	pixelFormatAlphaPixels = 0x0000_0001
	pixelFormatFourCC      = 0x0000_0004

	capsComplex = 0x0000_0008
	capsTexture = 0x0000_1000
	capsMipMap  = 0x0040_0000
)

// fourCC returns the pixel format code for f, or 0 if f is not supported.
func fourCC(f s2tc.Format) uint32 {
	switch f {
	case s2tc.FormatDXT1RGB, s2tc.FormatDXT1RGBA:
		return 0x3154_5844 // "DXT1"
	case s2tc.FormatDXT3RGBA:
		return 0x3354_5844 // "DXT3"
	case s2tc.FormatDXT5RGBA:
		return 0x3554_5844 // "DXT5"
	}
	return 0
}

// Header is the subset of a DDS header that this package understands.
type Header struct {
	Format      s2tc.Format
	Width       int
	Height      int
	MipMapCount int
}

// DecodeHeader reads a DDS header from r. It only accepts the DXT1, DXT3 and
// DXT5 pixel formats.
func DecodeHeader(r io.Reader) (Header, error) {
	buf := [4 + headerSize]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	} else if (string(buf[:4]) != Magic) ||
		(binary.LittleEndian.Uint32(buf[4:]) != headerSize) {
		return Header{}, ErrNotADDSFile
	}
	h := buf[4:]

	flags := binary.LittleEndian.Uint32(h[4:])
	ret := Header{
		Height:      int(binary.LittleEndian.Uint32(h[8:])),
		Width:       int(binary.LittleEndian.Uint32(h[12:])),
		MipMapCount: 1,
	}
	if (flags & flagMipMapCount) != 0 {
		ret.MipMapCount = max(1, int(binary.LittleEndian.Uint32(h[24:])))
	}

	pf := h[72:104]
	pfFlags := binary.LittleEndian.Uint32(pf[4:])
	if (pfFlags & pixelFormatFourCC) == 0 {
		return Header{}, ErrUnsupportedDDS
	}
	switch binary.LittleEndian.Uint32(pf[8:]) {
	case fourCC(s2tc.FormatDXT1RGB):
		ret.Format = s2tc.FormatDXT1RGB
		if (pfFlags & pixelFormatAlphaPixels) != 0 {
			ret.Format = s2tc.FormatDXT1RGBA
		}
	case fourCC(s2tc.FormatDXT3RGBA):
		ret.Format = s2tc.FormatDXT3RGBA
	case fourCC(s2tc.FormatDXT5RGBA):
		ret.Format = s2tc.FormatDXT5RGBA
	default:
		return Header{}, ErrUnsupportedDDS
	}
	return ret, nil
}

// DecodeConfig reads a DDS image configuration from r.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := DecodeHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: h.Format.ColorModel(),
		Width:      h.Width,
		Height:     h.Height,
	}, nil
}

// EncodeOptions are optional arguments to Encode. The zero value is valid and
// means to use the default configuration.
type EncodeOptions struct {
	// If zero, the default is to use s2tc.FormatDXT1RGB.
	Format s2tc.Format

	// Mipmaps is whether to append successively halved images down to 1×1.
	Mipmaps bool

	// Resampling is the filter used to produce mipmap levels. If nil, the
	// default is gift.BoxResampling.
	Resampling gift.Resampling

	// Codec configures the block encoder. It may be nil.
	Codec *s2tc.EncodeOptions
}

// MipMapCount returns the number of levels in a full mipmap chain for a
// width×height image, including the base level.
func MipMapCount(width int, height int) int {
	n := 1
	for (width > 1) || (height > 1) {
		width, height = max(1, width/2), max(1, height/2)
		n++
	}
	return n
}

// Encode writes src to w in the DDS format.
//
// options may be nil, which means to use the default configuration.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	if (w == nil) || (src == nil) {
		return ErrBadArgument
	}
	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if (bW <= 0) || (bH <= 0) {
		return ErrBadArgument
	} else if (bW > s2tc.MaxDimension) || (bH > s2tc.MaxDimension) {
		return ErrImageIsTooLarge
	}

	o := EncodeOptions{}
	if options != nil {
		o = *options
	}
	if o.Format == s2tc.FormatInvalid {
		o.Format = s2tc.FormatDXT1RGB
	}
	if fourCC(o.Format) == 0 {
		return errors.Wrapf(s2tc.ErrUnsupportedFormat, "dds: format %v", o.Format)
	}
	if o.Resampling == nil {
		o.Resampling = gift.BoxResampling
	}
	levels := 1
	if o.Mipmaps {
		levels = MipMapCount(bW, bH)
	}

	// The base level is encoded before anything is written, so that bad
	// codec options leave w untouched.
	buf, err := s2tc.Append(nil, src, o.Format, o.Codec)
	if err != nil {
		return errors.Wrap(err, "dds: mipmap level 0")
	}
	if err := writeHeader(w, o.Format, bW, bH, levels); err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}

	level := src
	for i := 1; i < levels; i++ {
		lb := level.Bounds()
		g := gift.New(gift.Resize(max(1, lb.Dx()/2), max(1, lb.Dy()/2), o.Resampling))
		next := image.NewNRGBA(g.Bounds(lb))
		g.Draw(next, level)
		level = next

		buf, err = s2tc.Append(buf[:0], level, o.Format, o.Codec)
		if err != nil {
			return errors.Wrapf(err, "dds: mipmap level %d", i)
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, f s2tc.Format, width int, height int, levels int) error {
	buf := [4 + headerSize]byte{}
	copy(buf[:4], Magic)
	h := buf[4:]

	flags := uint32(flagCaps | flagHeight | flagWidth | flagPixelFormat | flagLinearSize)
	caps := uint32(capsTexture)
	if levels > 1 {
		flags |= flagMipMapCount
		caps |= capsComplex | capsMipMap
	}

	binary.LittleEndian.PutUint32(h[0:], headerSize)
	binary.LittleEndian.PutUint32(h[4:], flags)
	binary.LittleEndian.PutUint32(h[8:], uint32(height))
	binary.LittleEndian.PutUint32(h[12:], uint32(width))
	binary.LittleEndian.PutUint32(h[16:], uint32(f.CompressedSize(width, height)))
	binary.LittleEndian.PutUint32(h[24:], uint32(levels))

	pf := h[72:104]
	pfFlags := uint32(pixelFormatFourCC)
	if f != s2tc.FormatDXT1RGB {
		pfFlags |= pixelFormatAlphaPixels
	}
	binary.LittleEndian.PutUint32(pf[0:], 32)
	binary.LittleEndian.PutUint32(pf[4:], pfFlags)
	binary.LittleEndian.PutUint32(pf[8:], fourCC(f))

	binary.LittleEndian.PutUint32(h[104:], caps)

	_, err := w.Write(buf[:])
	return err
}
