// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

const (
	// texDataSize is one texdata record: reflectivity, name index,
	// width/height and the unused view width/height.
	texDataSize = 32
	// texInfoSize is one texinfo record: 16 floats, flags, texdata index.
	texInfoSize = 72
)

// decodeTexInfos reads the texinfo lump, cross-referencing the separately
// packed texdata lump. Entries sharing one texdata record come out sharing
// one *TexData.
func (b *BSP) decodeTexInfos(data []byte) ([]*TexInfo, error) {
	textures, err := b.textures.get(b)
	if err != nil {
		return nil, err
	}

	tdRaw := b.lumps[LumpTexData].Data
	if len(tdRaw)%texDataSize != 0 {
		return nil, fmt.Errorf("%w: texdata lump is %d bytes", ErrMalformedLump, len(tdRaw))
	}

	texData := make([]*TexData, 0, len(tdRaw)/texDataSize)
	for off := 0; off < len(tdRaw); off += texDataSize {
		rec := tdRaw[off : off+texDataSize]

		nameInd := int32(binary.LittleEndian.Uint32(rec[12:16]))
		if nameInd < 0 || int(nameInd) >= len(textures) {
			return nil, fmt.Errorf("%w: texdata name index %d", ErrTexDataIndex, nameInd)
		}

		// The trailing view width/height duplicate width/height and are
		// not kept.
		texData = append(texData, &TexData{
			Mat:          textures[nameInd],
			Reflectivity: readVec3(rec[0:12]),
			Width:        int32(binary.LittleEndian.Uint32(rec[16:20])),
			Height:       int32(binary.LittleEndian.Uint32(rec[20:24])),
		})
	}

	if len(data)%texInfoSize != 0 {
		return nil, fmt.Errorf("%w: texinfo lump is %d bytes", ErrMalformedLump, len(data))
	}

	infos := make([]*TexInfo, 0, len(data)/texInfoSize)
	for off := 0; off < len(data); off += texInfoSize {
		rec := data[off : off+texInfoSize]

		dataInd := int32(binary.LittleEndian.Uint32(rec[68:72]))
		if dataInd < 0 || int(dataInd) >= len(texData) {
			return nil, fmt.Errorf("%w: texinfo texdata index %d", ErrTexDataIndex, dataInd)
		}

		infos = append(infos, &TexInfo{
			SOffset:         readVec3(rec[0:12]),
			SShift:          readFloat32(rec[12:16]),
			TOffset:         readVec3(rec[16:28]),
			TShift:          readFloat32(rec[28:32]),
			LightmapSOffset: readVec3(rec[32:44]),
			LightmapSShift:  readFloat32(rec[44:48]),
			LightmapTOffset: readVec3(rec[48:60]),
			LightmapTShift:  readFloat32(rec[60:64]),
			Flags:           SurfFlags(binary.LittleEndian.Uint32(rec[64:68])),
			Data:            texData[dataInd],
		})
	}

	return infos, nil
}

// encodeTexInfos rebuilds the texinfo and texdata lumps. Two append-only
// indices scope the deduplication to this encode call: one keyed by full
// texdata value equality, one keyed by case-folded material name. Newly
// introduced materials are appended to the texture name view, which is
// rebuilt later in the same save.
func (b *BSP) encodeTexInfos(infos []*TexInfo) ([]byte, error) {
	textures, err := b.textures.get(b)
	if err != nil {
		return nil, err
	}

	textureInd := make(map[string]int32, len(textures))
	for i, name := range textures {
		textureInd[strings.ToLower(name)] = int32(i)
	}

	texDataInd := make(map[TexData]int32)
	var texDataRaw []byte

	out := make([]byte, 0, texInfoSize*len(infos))
	for _, info := range infos {
		td := *info.Data

		ind, ok := texDataInd[td]
		if !ok {
			ind = int32(len(texDataInd))
			texDataInd[td] = ind

			nameInd, ok := textureInd[strings.ToLower(td.Mat)]
			if !ok {
				if len(td.Mat) >= maxNameLen {
					return nil, fmt.Errorf("%w: %q", ErrTexNameTooLong, td.Mat)
				}

				nameInd = b.appendTexture(td.Mat)
				textureInd[strings.ToLower(td.Mat)] = nameInd
			}

			texDataRaw = appendVec3(texDataRaw, td.Reflectivity)
			texDataRaw = binary.LittleEndian.AppendUint32(texDataRaw, uint32(nameInd))
			texDataRaw = binary.LittleEndian.AppendUint32(texDataRaw, uint32(td.Width))
			texDataRaw = binary.LittleEndian.AppendUint32(texDataRaw, uint32(td.Height))
			texDataRaw = binary.LittleEndian.AppendUint32(texDataRaw, uint32(td.Width))
			texDataRaw = binary.LittleEndian.AppendUint32(texDataRaw, uint32(td.Height))
		}

		out = appendVec3(out, info.SOffset)
		out = appendFloat32(out, info.SShift)
		out = appendVec3(out, info.TOffset)
		out = appendFloat32(out, info.TShift)
		out = appendVec3(out, info.LightmapSOffset)
		out = appendFloat32(out, info.LightmapSShift)
		out = appendVec3(out, info.LightmapTOffset)
		out = appendFloat32(out, info.LightmapTShift)
		out = binary.LittleEndian.AppendUint32(out, uint32(info.Flags))
		out = binary.LittleEndian.AppendUint32(out, uint32(ind))
	}

	b.lumps[LumpTexData].Data = texDataRaw

	return out, nil
}

// readFloat32 reads one little-endian float32.
func readFloat32(data []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data))
}

// readVec3 reads three little-endian float32 components.
func readVec3(data []byte) Vec3 {
	return Vec3{
		X: readFloat32(data[0:4]),
		Y: readFloat32(data[4:8]),
		Z: readFloat32(data[8:12]),
	}
}

// appendFloat32 appends one little-endian float32.
func appendFloat32(data []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
}

// appendVec3 appends three little-endian float32 components.
func appendVec3(data []byte, v Vec3) []byte {
	data = appendFloat32(data, v.X)
	data = appendFloat32(data, v.Y)
	return appendFloat32(data, v.Z)
}
