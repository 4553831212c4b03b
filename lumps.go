// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

// LumpID identifies one fixed directory slot in a BSP file.
// Values are the slot order in the header directory. Several indexes were
// reused between format eras, so some constants alias the same value.
type LumpID int32

// BSP lump directory slots.
const (
	LumpEntities       LumpID = 0
	LumpPlanes         LumpID = 1
	LumpTexData        LumpID = 2
	LumpVertexes       LumpID = 3
	LumpVisibility     LumpID = 4
	LumpNodes          LumpID = 5
	LumpTexInfo        LumpID = 6
	LumpFaces          LumpID = 7
	LumpLighting       LumpID = 8
	LumpOcclusion      LumpID = 9
	LumpLeafs          LumpID = 10
	LumpFaceIDs        LumpID = 11
	LumpEdges          LumpID = 12
	LumpSurfEdges      LumpID = 13
	LumpModels         LumpID = 14
	LumpWorldLights    LumpID = 15
	LumpLeafFaces      LumpID = 16
	LumpLeafBrushes    LumpID = 17
	LumpBrushes        LumpID = 18
	LumpBrushSides     LumpID = 19
	LumpAreas          LumpID = 20
	LumpAreaPortals    LumpID = 21
	LumpPortals        LumpID = 22
	LumpUnused0        LumpID = 22
	LumpPropCollision  LumpID = 22
	LumpClusters       LumpID = 23
	LumpUnused1        LumpID = 23
	LumpPropHulls      LumpID = 23
	LumpPortalVerts    LumpID = 24
	LumpUnused2        LumpID = 24
	LumpPropHullVerts  LumpID = 24
	LumpClusterPortals LumpID = 25
	LumpUnused3        LumpID = 25
	LumpPropTris       LumpID = 25
	LumpDispInfo       LumpID = 26
	LumpOriginalFaces  LumpID = 27
	LumpPhysDisp       LumpID = 28
	LumpPhysCollide    LumpID = 29
	LumpVertNormals    LumpID = 30
	LumpVertNormalIdx  LumpID = 31
	LumpDispLightmapAl LumpID = 32
	LumpDispVerts      LumpID = 33
	LumpDispLightmapSP LumpID = 34
	LumpGame           LumpID = 35
	LumpLeafWaterData  LumpID = 36
	LumpPrimitives     LumpID = 37
	LumpPrimVerts      LumpID = 38
	LumpPrimIndices    LumpID = 39
	LumpPakfile        LumpID = 40
	LumpClipPortalVert LumpID = 41
	LumpCubemaps       LumpID = 42
	LumpTexDataStrData LumpID = 43
	LumpTexDataStrTab  LumpID = 44
	LumpOverlays       LumpID = 45
	LumpLeafMinDist    LumpID = 46
	LumpFaceMacroTex   LumpID = 47
	LumpDispTris       LumpID = 48
	LumpPropBlob       LumpID = 49
	LumpPhysCollideSrf LumpID = 49
	LumpWaterOverlays  LumpID = 50

	LumpLeafAmbientIdxHDR LumpID = 51
	LumpLeafAmbientIdx    LumpID = 52

	LumpLightmapPages     LumpID = 51
	LumpLightmapPageInfos LumpID = 52

	LumpLightingHDR        LumpID = 53
	LumpWorldLightsHDR     LumpID = 54
	LumpLeafAmbientHDR     LumpID = 55
	LumpLeafAmbient        LumpID = 56
	LumpXZipPakfile        LumpID = 57
	LumpFacesHDR           LumpID = 58
	LumpMapFlags           LumpID = 59
	LumpOverlayFades       LumpID = 60
	LumpOverlaySysLevels   LumpID = 61
	LumpPhysLevel          LumpID = 62
	LumpDispMultiblend     LumpID = 63
)

// lumpCount is the fixed number of directory slots in a BSP header.
const lumpCount = 64

// lumpWriteOrder is the payload emit order. The pakfile is forced last so
// the whole file stays openable by generic zip tools from the trailing
// central directory.
var lumpWriteOrder = buildLumpWriteOrder()

// buildLumpWriteOrder returns slot order with the pakfile slot moved last.
func buildLumpWriteOrder() []LumpID {
	order := make([]LumpID, 0, lumpCount)
	for id := LumpID(0); id < lumpCount; id++ {
		if id == LumpPakfile {
			continue
		}

		order = append(order, id)
	}

	return append(order, LumpPakfile)
}

// lumpRebuildOrder is the view flush order at save time. Lumps whose encode
// appends entries to another view must run before that view is encoded:
// overlays may add texinfo entries, texinfo adds texdata and texture names.
var lumpRebuildOrder = []LumpID{
	LumpPakfile,
	LumpEntities,
	LumpCubemaps,
	LumpOverlays,
	LumpTexInfo,
	LumpTexDataStrData,
}
