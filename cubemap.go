// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"encoding/binary"
	"fmt"
)

// cubemapSize is one cubemap record: three origin ints and a size code.
const cubemapSize = 16

// decodeCubemaps reads the cubemap lump.
func (b *BSP) decodeCubemaps(data []byte) ([]*Cubemap, error) {
	if len(data)%cubemapSize != 0 {
		return nil, fmt.Errorf("%w: cubemap lump is %d bytes", ErrMalformedLump, len(data))
	}

	cubemaps := make([]*Cubemap, 0, len(data)/cubemapSize)
	for off := 0; off < len(data); off += cubemapSize {
		rec := data[off : off+cubemapSize]
		cubemaps = append(cubemaps, &Cubemap{
			Origin: Vec(
				float32(int32(binary.LittleEndian.Uint32(rec[0:4]))),
				float32(int32(binary.LittleEndian.Uint32(rec[4:8]))),
				float32(int32(binary.LittleEndian.Uint32(rec[8:12]))),
			),
			Size: int32(binary.LittleEndian.Uint32(rec[12:16])),
		})
	}

	return cubemaps, nil
}

// encodeCubemaps writes the cubemap lump, snapping origins to integers.
func (b *BSP) encodeCubemaps(cubemaps []*Cubemap) ([]byte, error) {
	out := make([]byte, 0, cubemapSize*len(cubemaps))
	for _, cube := range cubemaps {
		x, y, z := cube.Origin.Rounded()
		out = binary.LittleEndian.AppendUint32(out, uint32(x))
		out = binary.LittleEndian.AppendUint32(out, uint32(y))
		out = binary.LittleEndian.AppendUint32(out, uint32(z))
		out = binary.LittleEndian.AppendUint32(out, uint32(cube.Size))
	}

	return out, nil
}
