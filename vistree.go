// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"encoding/binary"
	"fmt"
)

const (
	planeSize = 20
	nodeSize  = 32
	leafSize  = 32
	// oldLeafPad is the ambient light sample block appended to each leaf
	// record in format versions up to oldLeafVersion.
	oldLeafPad = 26
)

// VisTree parses the plane, node and leaf lumps into a linked visibility
// tree and returns its root. The raw lumps are left in place, so the call
// can be repeated and does not interact with the lazy lump views.
func (b *BSP) VisTree() (*VisTree, error) {
	planes, err := b.visPlanes()
	if err != nil {
		return nil, err
	}

	leafs, err := b.visLeafs()
	if err != nil {
		return nil, err
	}

	data := b.lumps[LumpNodes].Data
	if len(data) == 0 || len(data)%nodeSize != 0 {
		return nil, fmt.Errorf("%w: node lump is %d bytes", ErrMalformedLump, len(data))
	}

	count := len(data) / nodeSize
	nodes := make([]*VisTree, count)
	children := make([][2]int32, count)

	for i := 0; i < count; i++ {
		rec := data[i*nodeSize:]

		planeInd := int32(binary.LittleEndian.Uint32(rec))
		if planeInd < 0 || int(planeInd) >= len(planes) {
			return nil, fmt.Errorf("%w: node %d plane %d of %d", ErrMalformedLump, i, planeInd, len(planes))
		}

		children[i] = [2]int32{
			int32(binary.LittleEndian.Uint32(rec[4:])),
			int32(binary.LittleEndian.Uint32(rec[8:])),
		}

		nodes[i] = &VisTree{
			PlaneNorm: planes[planeInd].norm,
			PlaneDist: planes[planeInd].dist,
			Mins:      readVec3i16(rec[12:]),
			Maxs:      readVec3i16(rec[18:]),
		}
	}

	// Link only after every node and leaf exists, since children can
	// reference nodes in either direction.
	for i, node := range nodes {
		neg, err := visChildAt(nodes, leafs, children[i][0])
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}

		pos, err := visChildAt(nodes, leafs, children[i][1])
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}

		node.ChildNeg = neg
		node.ChildPos = pos
	}

	return nodes[0], nil
}

// visChildAt resolves a sign-encoded child index. Negative values select
// leaves, offset by one so that leaf zero is representable.
func visChildAt(nodes []*VisTree, leafs []*VisLeaf, ind int32) (VisChild, error) {
	if ind < 0 {
		leafInd := -1 - ind
		if int(leafInd) >= len(leafs) {
			return nil, fmt.Errorf("%w: leaf child %d of %d", ErrMalformedLump, leafInd, len(leafs))
		}

		return leafs[leafInd], nil
	}

	if int(ind) >= len(nodes) {
		return nil, fmt.Errorf("%w: node child %d of %d", ErrMalformedLump, ind, len(nodes))
	}

	return nodes[ind], nil
}

type visPlane struct {
	norm Vec3
	dist float32
}

func (b *BSP) visPlanes() ([]visPlane, error) {
	data := b.lumps[LumpPlanes].Data
	if len(data)%planeSize != 0 {
		return nil, fmt.Errorf("%w: plane lump is %d bytes", ErrMalformedLump, len(data))
	}

	planes := make([]visPlane, 0, len(data)/planeSize)
	for off := 0; off < len(data); off += planeSize {
		planes = append(planes, visPlane{
			norm: readVec3(data[off:]),
			dist: readFloat32(data[off+12:]),
		})
	}

	return planes, nil
}

func (b *BSP) visLeafs() ([]*VisLeaf, error) {
	stride := leafSize
	if b.version <= oldLeafVersion {
		stride += oldLeafPad
	}

	data := b.lumps[LumpLeafs].Data
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("%w: leaf lump is %d bytes", ErrMalformedLump, len(data))
	}

	leafs := make([]*VisLeaf, 0, len(data)/stride)
	for off := 0; off < len(data); off += stride {
		rec := data[off:]

		// Contents (4 bytes) and cluster (2 bytes) are skipped; the area
		// and flag bits share one int16.
		areaAndFlags := int16(binary.LittleEndian.Uint16(rec[6:]))

		leafs = append(leafs, &VisLeaf{
			ID:         int32(len(leafs)),
			Area:       int32(areaAndFlags >> 7),
			Flags:      int32(areaAndFlags & 0x7F),
			Mins:       readVec3i16(rec[8:]),
			Maxs:       readVec3i16(rec[14:]),
			FirstFace:  binary.LittleEndian.Uint16(rec[20:]),
			FaceCount:  binary.LittleEndian.Uint16(rec[22:]),
			FirstBrush: binary.LittleEndian.Uint16(rec[24:]),
			BrushCount: binary.LittleEndian.Uint16(rec[26:]),
			WaterID:    int16(binary.LittleEndian.Uint16(rec[28:])),
		})
	}

	return leafs, nil
}

// readVec3i16 widens three packed int16 coordinates into a vector.
func readVec3i16(b []byte) Vec3 {
	return Vec3{
		X: float32(int16(binary.LittleEndian.Uint16(b))),
		Y: float32(int16(binary.LittleEndian.Uint16(b[2:]))),
		Z: float32(int16(binary.LittleEndian.Uint16(b[4:]))),
	}
}
