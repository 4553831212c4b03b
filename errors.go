// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import "errors"

// Sentinel errors for BSP operations. Use errors.Is in callers.
var (
	// ErrBadMagic means the file does not start with the VBSP tag.
	ErrBadMagic = errors.New("invalid BSP file: bad magic tag")
	// ErrUnsupportedVersion means the top-level format version is not supported.
	ErrUnsupportedVersion = errors.New("unsupported BSP version")
	// ErrNotLoaded means a typed view or raw lump was accessed before a successful load.
	ErrNotLoaded = errors.New("BSP not loaded")
	// ErrMalformedLump means a lump payload does not divide into its record size.
	ErrMalformedLump = errors.New("malformed lump data")
	// ErrStringUnterminated means a texture name had no terminator within 128 bytes.
	ErrStringUnterminated = errors.New("unterminated string in texture table")
	// ErrTexNameTooLong means a texture or model name leaves no room for its terminator.
	ErrTexNameTooLong = errors.New("name exceeds 128 byte limit")
	// ErrTexDataIndex means a texinfo or texture reference is out of range.
	ErrTexDataIndex = errors.New("texture reference out of range")
	// ErrOverlayFaceCount means an overlay declares more than 64 faces.
	ErrOverlayFaceCount = errors.New("overlay face count exceeds 64")
	// ErrOverlayRenderOrder means an overlay render order is outside 0..2.
	ErrOverlayRenderOrder = errors.New("overlay render order out of range")
	// ErrPropVersion means a static prop lump version is outside 4..11.
	ErrPropVersion = errors.New("unsupported static prop version")
	// ErrNoGameLump means an expected game lump is missing.
	ErrNoGameLump = errors.New("game lump not present")
	// ErrEntBraces means entity text braces are unbalanced or nested.
	ErrEntBraces = errors.New("unbalanced entity braces")
	// ErrEntOutsideBrackets means a keyvalue line appeared outside any entity.
	ErrEntOutsideBrackets = errors.New("keyvalue outside entity brackets")
	// ErrNoWorldspawn means the first entity is missing or not worldspawn.
	ErrNoWorldspawn = errors.New("no worldspawn entity")
	// ErrEntLine means an entity keyvalue line could not be split.
	ErrEntLine = errors.New("malformed entity keyvalue line")
	// ErrPakfileNotMemory means a pakfile set on the container is not memory-backed.
	ErrPakfileNotMemory = errors.New("pakfile must be memory-backed")
	// ErrPakEntryNotFound means the pakfile entry is not present.
	ErrPakEntryNotFound = errors.New("pakfile entry not found")
	// ErrPakPathOutsideRoot means a pakfile entry path escapes the extraction root.
	ErrPakPathOutsideRoot = errors.New("pakfile entry path escapes destination root")
	// ErrSizeOverflow means a computed offset or count exceeds its wire field width.
	ErrSizeOverflow = errors.New("size exceeds wire field range")
	// ErrDeferredUnfulfilled means a reserved placeholder was never fulfilled.
	ErrDeferredUnfulfilled = errors.New("deferred write not fulfilled")
	// ErrDeferredKey means a deferred-write key is unknown or already used.
	ErrDeferredKey = errors.New("invalid deferred write key")
	// ErrDeferredWidth means a fulfilled value does not match the reserved width.
	ErrDeferredWidth = errors.New("deferred value width mismatch")
)
