// Copyright 2025 The S2tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s2tc

import (
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DitherMode selects how the image is reduced to the format's precision.
type DitherMode uint8

const (
	DitherFloydSteinberg = DitherMode(0)
	DitherNone           = DitherMode(1)
	DitherSimple         = DitherMode(2)
)

// ColorDistMode selects the color distance metric used to pick and refine
// endpoints.
type ColorDistMode uint8

const (
	ColorDistWAvg      = ColorDistMode(0)
	ColorDistRGB       = ColorDistMode(1)
	ColorDistYUV       = ColorDistMode(2)
	ColorDistSRGB      = ColorDistMode(3)
	ColorDistSRGBMixed = ColorDistMode(4)
	ColorDistAvg       = ColorDistMode(5)
	ColorDistNormalMap = ColorDistMode(6)
)

// RefinementMode selects how endpoints are refined after the initial pick.
type RefinementMode uint8

const (
	// RefineAlways averages the pixels assigned to each endpoint once.
	RefineAlways = RefinementMode(0)
	// RefineNever keeps the initial endpoints.
	RefineNever = RefinementMode(1)
	// RefineLoop keeps averaging for as long as the block's total distance
	// strictly decreases.
	RefineLoop = RefinementMode(2)
)

var ditherModeNames = [...]string{
	DitherFloydSteinberg: "FLOYDSTEINBERG",
	DitherNone:           "NONE",
	DitherSimple:         "SIMPLE",
}

var colorDistModeNames = [...]string{
	ColorDistWAvg:      "WAVG",
	ColorDistRGB:       "RGB",
	ColorDistYUV:       "YUV",
	ColorDistSRGB:      "SRGB",
	ColorDistSRGBMixed: "SRGB_MIXED",
	ColorDistAvg:       "AVG",
	ColorDistNormalMap: "NORMALMAP",
}

var refinementModeNames = [...]string{
	RefineAlways: "ALWAYS",
	RefineNever:  "NEVER",
	RefineLoop:   "LOOP",
}

func (m DitherMode) String() string {
	if int(m) < len(ditherModeNames) {
		return ditherModeNames[m]
	}
	return "DitherMode(" + strconv.Itoa(int(m)) + ")"
}

func (m ColorDistMode) String() string {
	if int(m) < len(colorDistModeNames) {
		return colorDistModeNames[m]
	}
	return "ColorDistMode(" + strconv.Itoa(int(m)) + ")"
}

func (m RefinementMode) String() string {
	if int(m) < len(refinementModeNames) {
		return refinementModeNames[m]
	}
	return "RefinementMode(" + strconv.Itoa(int(m)) + ")"
}

func lookupName(names []string, s string) (int, bool) {
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return i, true
		}
	}
	return 0, false
}

// ParseDitherMode parses "NONE", "SIMPLE" or "FLOYDSTEINBERG", ignoring case.
func ParseDitherMode(s string) (DitherMode, error) {
	if i, ok := lookupName(ditherModeNames[:], s); ok {
		return DitherMode(i), nil
	}
	return 0, errors.Wrapf(ErrBadArgument, "invalid dither mode %q", s)
}

// ParseColorDistMode parses "RGB", "YUV", "SRGB", "SRGB_MIXED", "AVG", "WAVG"
// or "NORMALMAP", ignoring case.
func ParseColorDistMode(s string) (ColorDistMode, error) {
	if i, ok := lookupName(colorDistModeNames[:], s); ok {
		return ColorDistMode(i), nil
	}
	return 0, errors.Wrapf(ErrBadArgument, "invalid color dist mode %q", s)
}

// ParseRefinementMode parses "NEVER", "ALWAYS" or "LOOP", ignoring case.
func ParseRefinementMode(s string) (RefinementMode, error) {
	if i, ok := lookupName(refinementModeNames[:], s); ok {
		return RefinementMode(i), nil
	}
	return 0, errors.Wrapf(ErrBadArgument, "invalid refinement mode %q", s)
}

// EncodeOptions are optional arguments to Compress, Encode and Quantize. The
// zero value is valid and means to use the default configuration:
// Floyd-Steinberg dithering, the WAVG metric, RefineAlways and the fast
// darkest/brightest endpoint heuristic.
type EncodeOptions struct {
	Dither    DitherMode
	ColorDist ColorDistMode
	Refine    RefinementMode

	// RandomColors is the number of synthetic endpoint candidates sampled
	// per block from the bounding box of the block's colors. A positive
	// value implies the exhaustive search. It must be at most
	// MaxRandomColors.
	RandomColors int

	// Exhaustive forces the brute force endpoint pair search even when no
	// random candidates are requested. It is implied by ColorDistNormalMap.
	Exhaustive bool

	// Rand is the random source for RandomColors. If nil, each call uses
	// its own generator with a fixed seed, so that output is reproducible.
	Rand *rand.Rand

	// Logger receives diagnostics. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (o *EncodeOptions) logger() *slog.Logger {
	if (o != nil) && (o.Logger != nil) {
		return o.Logger
	}
	return slog.Default()
}

// MaxRandomColors is the largest accepted EncodeOptions.RandomColors. The
// pair search is quadratic in the number of candidates per block.
const MaxRandomColors = 256

// Environment variables read by OptionsFromEnv.
const (
	EnvDitherMode    = "S2TC_DITHER_MODE"
	EnvColorDistMode = "S2TC_COLORDIST_MODE"
	EnvRandomColors  = "S2TC_RANDOM_COLORS"
	EnvRefineColors  = "S2TC_REFINE_COLORS"
)

// OptionsFromEnv builds EncodeOptions from the S2TC_* tuning variables, as
// returned by lookup (typically os.LookupEnv). Invalid values are logged as
// warnings and the default is kept.
//
// S2TC_RANDOM_COLORS follows the historical convention: a negative value is
// the default, zero selects the exhaustive search and a positive value up to
// MaxRandomColors sets RandomColors.
func OptionsFromEnv(lookup func(key string) (string, bool), logger *slog.Logger) *EncodeOptions {
	o := &EncodeOptions{Logger: logger}
	if logger == nil {
		logger = slog.Default()
	}

	if v, ok := lookup(EnvDitherMode); ok {
		if m, err := ParseDitherMode(v); err == nil {
			o.Dither = m
		} else {
			logger.Warn("s2tc: ignoring environment variable", "key", EnvDitherMode, "err", err)
		}
	}

	if v, ok := lookup(EnvColorDistMode); ok {
		if m, err := ParseColorDistMode(v); err == nil {
			o.ColorDist = m
		} else {
			logger.Warn("s2tc: ignoring environment variable", "key", EnvColorDistMode, "err", err)
		}
	}

	if v, ok := lookup(EnvRandomColors); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil {
			logger.Warn("s2tc: ignoring environment variable", "key", EnvRandomColors, "err", err)
		} else if n > MaxRandomColors {
			logger.Warn("s2tc: ignoring environment variable", "key", EnvRandomColors, "value", n, "max", MaxRandomColors)
		} else if n == 0 {
			o.Exhaustive = true
		} else if n > 0 {
			o.RandomColors = n
		}
	}

	if v, ok := lookup(EnvRefineColors); ok {
		if m, err := ParseRefinementMode(v); err == nil {
			o.Refine = m
		} else {
			logger.Warn("s2tc: ignoring environment variable", "key", EnvRefineColors, "err", err)
		}
	}

	return o
}
