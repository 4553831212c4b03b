// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// decodeTextures reads the texture name table. The string-table lump is an
// array of int32 offsets into the string-data lump, a block of
// NUL-terminated ASCII names capped at 128 bytes each.
func (b *BSP) decodeTextures(data []byte) ([]string, error) {
	table := b.lumps[LumpTexDataStrTab].Data
	if len(table)%4 != 0 {
		return nil, fmt.Errorf("%w: texture string table is %d bytes", ErrMalformedLump, len(table))
	}

	names := make([]string, 0, len(table)/4)
	for i := 0; i < len(table); i += 4 {
		off := int(int32(binary.LittleEndian.Uint32(table[i : i+4])))
		if off < 0 || off >= len(data) {
			return nil, fmt.Errorf("%w: string offset %d", ErrTexDataIndex, off)
		}

		// Strings are limited to 128 bytes; scan only that far for the
		// terminator.
		end := off + maxNameLen
		if end > len(data) {
			end = len(data)
		}

		nul := bytes.IndexByte(data[off:end], 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: at offset %d", ErrStringUnterminated, off)
		}

		names = append(names, string(data[off:off+nul]))
	}

	return names, nil
}

// encodeTextures rebuilds the string-data blob and the offset table.
// Identical names converge to one stored copy: the growing blob is scanned
// for an existing NUL-terminated occurrence before a new one is appended.
func (b *BSP) encodeTextures(names []string) ([]byte, error) {
	table := make([]byte, 0, 4*len(names))
	var data []byte

	for _, name := range names {
		if len(name) >= maxNameLen {
			return nil, fmt.Errorf("%w: %q", ErrTexNameTooLong, name)
		}

		needle := append([]byte(name), 0)
		ind := bytes.Index(data, needle)
		if ind < 0 {
			ind = len(data)
			data = append(data, needle...)
		}

		table = binary.LittleEndian.AppendUint32(table, uint32(ind))
	}

	b.lumps[LumpTexDataStrTab].Data = table

	return data, nil
}

// appendTexture adds a name to the materialized texture view and returns
// its index. Used by the texinfo encoder for newly introduced materials.
func (b *BSP) appendTexture(name string) int32 {
	ind := int32(len(b.textures.value))
	b.textures.value = append(b.textures.value, name)

	return ind
}
