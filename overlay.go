// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"encoding/binary"
	"fmt"
)

const (
	// overlaySize is one overlay record: id, texinfo ref, packed
	// face-count/render-order, 64 face slots, UV bounds, 4 handles,
	// origin and normal.
	overlaySize = 352
	// overlayFaceCountMask extracts the face count from the packed
	// count-and-render-order field; the bits above it hold the order.
	overlayFaceCountMask = 1<<14 - 1
)

// decodeOverlays reads the overlay lump. The fixed 64-slot face array is
// truncated to the declared count.
func (b *BSP) decodeOverlays(data []byte) ([]*Overlay, error) {
	if len(data)%overlaySize != 0 {
		return nil, fmt.Errorf("%w: overlay lump is %d bytes", ErrMalformedLump, len(data))
	}

	texInfos, err := b.texInfos.get(b)
	if err != nil {
		return nil, err
	}

	overlays := make([]*Overlay, 0, len(data)/overlaySize)
	for off := 0; off < len(data); off += overlaySize {
		rec := data[off : off+overlaySize]

		texInd := int16(binary.LittleEndian.Uint16(rec[4:6]))
		if texInd < 0 || int(texInd) >= len(texInfos) {
			return nil, fmt.Errorf("%w: overlay texinfo index %d", ErrTexDataIndex, texInd)
		}

		faceAndOrder := binary.LittleEndian.Uint16(rec[6:8])
		faceCount := int(faceAndOrder & overlayFaceCountMask)
		if faceCount > overlayFaceCap {
			return nil, fmt.Errorf("%w: %d", ErrOverlayFaceCount, faceCount)
		}

		faces := make([]int32, faceCount)
		for i := range faces {
			faces[i] = int32(binary.LittleEndian.Uint32(rec[8+4*i:]))
		}

		overlays = append(overlays, &Overlay{
			ID:          int32(binary.LittleEndian.Uint32(rec[0:4])),
			Texture:     texInfos[texInd],
			Faces:       faces,
			RenderOrder: uint8(faceAndOrder >> 14),
			UMin:        readFloat32(rec[264:268]),
			UMax:        readFloat32(rec[268:272]),
			VMin:        readFloat32(rec[272:276]),
			VMax:        readFloat32(rec[276:280]),
			UV1:         readVec3(rec[280:292]),
			UV2:         readVec3(rec[292:304]),
			UV3:         readVec3(rec[304:316]),
			UV4:         readVec3(rec[316:328]),
			Origin:      readVec3(rec[328:340]),
			Normal:      readVec3(rec[340:352]),
		})
	}

	return overlays, nil
}

// encodeOverlays writes the overlay lump. Overlays referencing texinfo
// entries not present in the texinfo view get them appended there; the
// texinfo lump is rebuilt after overlays in the same save.
func (b *BSP) encodeOverlays(overlays []*Overlay) ([]byte, error) {
	texInfos, err := b.texInfos.get(b)
	if err != nil {
		return nil, err
	}

	texInd := make(map[*TexInfo]int32, len(texInfos))
	for i, info := range texInfos {
		texInd[info] = int32(i)
	}

	out := make([]byte, 0, overlaySize*len(overlays))
	for _, over := range overlays {
		if len(over.Faces) > overlayFaceCap {
			return nil, fmt.Errorf("%w: %d", ErrOverlayFaceCount, len(over.Faces))
		}
		if over.RenderOrder > 2 {
			return nil, fmt.Errorf("%w: %d", ErrOverlayRenderOrder, over.RenderOrder)
		}

		ind, ok := texInd[over.Texture]
		if !ok {
			ind = int32(len(b.texInfos.value))
			b.texInfos.value = append(b.texInfos.value, over.Texture)
			texInd[over.Texture] = ind
		}

		rec := make([]byte, overlaySize)
		binary.LittleEndian.PutUint32(rec[0:4], uint32(over.ID))
		binary.LittleEndian.PutUint16(rec[4:6], uint16(ind))
		faceAndOrder := uint16(len(over.Faces)) | uint16(over.RenderOrder)<<14
		binary.LittleEndian.PutUint16(rec[6:8], faceAndOrder)
		for i, face := range over.Faces {
			binary.LittleEndian.PutUint32(rec[8+4*i:], uint32(face))
		}

		packOverlayFloats(rec, over)
		out = append(out, rec...)
	}

	return out, nil
}

// packOverlayFloats fills the float tail of one overlay record.
func packOverlayFloats(rec []byte, over *Overlay) {
	tail := rec[264:264:overlaySize]
	tail = appendFloat32(tail, over.UMin)
	tail = appendFloat32(tail, over.UMax)
	tail = appendFloat32(tail, over.VMin)
	tail = appendFloat32(tail, over.VMax)
	tail = appendVec3(tail, over.UV1)
	tail = appendVec3(tail, over.UV2)
	tail = appendVec3(tail, over.UV3)
	tail = appendVec3(tail, over.UV4)
	tail = appendVec3(tail, over.Origin)
	_ = appendVec3(tail, over.Normal)
}
