// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import "fmt"

// BSP is one open map file: the 64 lump slots, the game-lump sub-directory
// and the lazy typed views over the structured lumps. One BSP owns all of
// its decoded state exclusively; instances share nothing.
type BSP struct {
	// path is the file this BSP was read from, used as the default save
	// destination.
	path string

	// version is the top-level format version from the header.
	version int32
	// mapRevision is the map's revision counter.
	mapRevision int32

	// lumps are the fixed directory slots in slot order.
	lumps [lumpCount]Lump
	// gameLumps keeps sub-directory entries in read/insertion order; the
	// order is locked at save time.
	gameLumps []*GameLump

	// loaded reports whether a read completed; typed access before that
	// is a caller error.
	loaded bool

	textures parsedLump[[]string]
	texInfos parsedLump[[]*TexInfo]
	pakfile  parsedLump[*Pakfile]
	cubemaps parsedLump[[]*Cubemap]
	overlays parsedLump[[]*Overlay]
	ents     parsedLump[*Entities]

	// flushFuncs rebuilds raw lump bytes from materialized views, keyed by
	// primary slot for the save-time rebuild walk.
	flushFuncs map[LumpID]func(*BSP) error
}

// newBSP returns an empty container with all typed views wired up.
func newBSP() *BSP {
	b := &BSP{}
	for id := LumpID(0); id < lumpCount; id++ {
		b.lumps[id].ID = id
	}

	b.textures = parsedLump[[]string]{
		lump:   LumpTexDataStrData,
		clear:  []LumpID{LumpTexDataStrData, LumpTexDataStrTab},
		decode: (*BSP).decodeTextures,
		encode: (*BSP).encodeTextures,
	}
	b.texInfos = parsedLump[[]*TexInfo]{
		lump:   LumpTexInfo,
		clear:  []LumpID{LumpTexInfo, LumpTexData},
		decode: (*BSP).decodeTexInfos,
		encode: (*BSP).encodeTexInfos,
	}
	b.pakfile = parsedLump[*Pakfile]{
		lump:   LumpPakfile,
		clear:  []LumpID{LumpPakfile},
		decode: (*BSP).decodePakfile,
		encode: (*BSP).encodePakfile,
		check:  (*BSP).checkPakfile,
	}
	b.cubemaps = parsedLump[[]*Cubemap]{
		lump:   LumpCubemaps,
		clear:  []LumpID{LumpCubemaps},
		decode: (*BSP).decodeCubemaps,
		encode: (*BSP).encodeCubemaps,
	}
	b.overlays = parsedLump[[]*Overlay]{
		lump:   LumpOverlays,
		clear:  []LumpID{LumpOverlays},
		decode: (*BSP).decodeOverlays,
		encode: (*BSP).encodeOverlays,
	}
	b.ents = parsedLump[*Entities]{
		lump:   LumpEntities,
		clear:  []LumpID{LumpEntities},
		decode: (*BSP).decodeEntities,
		encode: (*BSP).encodeEntities,
	}

	b.flushFuncs = map[LumpID]func(*BSP) error{
		LumpTexDataStrData: func(b *BSP) error { return b.textures.flush(b) },
		LumpTexInfo:        func(b *BSP) error { return b.texInfos.flush(b) },
		LumpPakfile:        func(b *BSP) error { return b.pakfile.flush(b) },
		LumpCubemaps:       func(b *BSP) error { return b.cubemaps.flush(b) },
		LumpOverlays:       func(b *BSP) error { return b.overlays.flush(b) },
		LumpEntities:       func(b *BSP) error { return b.ents.flush(b) },
	}

	return b
}

// Version returns the top-level format version.
func (b *BSP) Version() int32 {
	return b.version
}

// MapRevision returns the map revision counter.
func (b *BSP) MapRevision() int32 {
	return b.mapRevision
}

// SetMapRevision updates the map revision counter.
func (b *BSP) SetMapRevision(rev int32) {
	b.mapRevision = rev
}

// Lump returns the header metadata for one slot.
func (b *BSP) Lump(id LumpID) (Lump, error) {
	if !b.loaded {
		return Lump{}, ErrNotLoaded
	}

	return b.lumps[id], nil
}

// LumpData returns the raw bytes of one slot. Slots consumed by a typed
// view return empty once the view has been materialized.
func (b *BSP) LumpData(id LumpID) ([]byte, error) {
	if !b.loaded {
		return nil, ErrNotLoaded
	}

	return b.lumps[id].Data, nil
}

// SetLumpData replaces the raw bytes of one slot.
func (b *BSP) SetLumpData(id LumpID, data []byte) error {
	if !b.loaded {
		return ErrNotLoaded
	}

	b.lumps[id].Data = data

	return nil
}

// GameLump returns the game lump with the given in-memory identifier.
func (b *BSP) GameLump(id GameLumpID) (*GameLump, error) {
	if !b.loaded {
		return nil, ErrNotLoaded
	}

	for _, gl := range b.gameLumps {
		if gl.ID == id {
			return gl, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoGameLump, id)
}

// GameLumps returns all game lumps in their locked iteration order.
func (b *BSP) GameLumps() ([]*GameLump, error) {
	if !b.loaded {
		return nil, ErrNotLoaded
	}

	out := make([]*GameLump, len(b.gameLumps))
	copy(out, b.gameLumps)

	return out, nil
}

// SetGameLump replaces the named game lump's payload, or appends a new
// entry preserving insertion order.
func (b *BSP) SetGameLump(lump *GameLump) error {
	if !b.loaded {
		return ErrNotLoaded
	}

	for i, gl := range b.gameLumps {
		if gl.ID == lump.ID {
			b.gameLumps[i] = lump
			return nil
		}
	}

	b.gameLumps = append(b.gameLumps, lump)

	return nil
}

// Textures returns the texture name table, decoding it on first access.
func (b *BSP) Textures() ([]string, error) {
	return b.textures.get(b)
}

// SetTextures replaces the texture name table.
func (b *BSP) SetTextures(names []string) error {
	return b.textures.set(b, names)
}

// TexInfos returns the texinfo entries, decoding texinfo and texdata on
// first access. Entries share TexData pointers.
func (b *BSP) TexInfos() ([]*TexInfo, error) {
	return b.texInfos.get(b)
}

// SetTexInfos replaces the texinfo entries.
func (b *BSP) SetTexInfos(infos []*TexInfo) error {
	return b.texInfos.set(b, infos)
}

// Pak returns the embedded pakfile archive, opening it on first access.
func (b *BSP) Pak() (*Pakfile, error) {
	return b.pakfile.get(b)
}

// SetPak replaces the embedded pakfile. Archives not backed by an
// in-memory buffer are rejected.
func (b *BSP) SetPak(p *Pakfile) error {
	return b.pakfile.set(b, p)
}

// Cubemaps returns the cubemap list, decoding it on first access.
func (b *BSP) Cubemaps() ([]*Cubemap, error) {
	return b.cubemaps.get(b)
}

// SetCubemaps replaces the cubemap list.
func (b *BSP) SetCubemaps(cubemaps []*Cubemap) error {
	return b.cubemaps.set(b, cubemaps)
}

// Overlays returns the overlay list, decoding it on first access.
func (b *BSP) Overlays() ([]*Overlay, error) {
	return b.overlays.get(b)
}

// SetOverlays replaces the overlay list.
func (b *BSP) SetOverlays(overlays []*Overlay) error {
	return b.overlays.set(b, overlays)
}

// Ents returns the decoded entity lump, parsing it on first access.
func (b *BSP) Ents() (*Entities, error) {
	return b.ents.get(b)
}

// SetEnts replaces the entity lump.
func (b *BSP) SetEnts(ents *Entities) error {
	return b.ents.set(b, ents)
}
