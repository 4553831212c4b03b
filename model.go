// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import "fmt"

// Internal binary layout and format limits.
const (
	bspMagic = "VBSP" // all BSP files start with this tag
	// minVersion is the oldest top-level version this package reads.
	minVersion = 17
	// oldLeafVersion marks files whose leaf records carry 26 extra
	// bytes of per-leaf ambient light data.
	oldLeafVersion = 19
	// maxNameLen caps texture and model names; the on-disk forms leave
	// no room for a terminator at this length.
	maxNameLen = 128
	// overlayFaceCap is the fixed face slot count in one overlay record.
	overlayFaceCap = 64
)

// SurfFlags are the SURF_ bitflags carried by texinfo entries.
type SurfFlags uint32

// Surface attribute flags.
const (
	SurfNone        SurfFlags = 0
	SurfLight       SurfFlags = 0x1    // face has lighting info
	SurfSkybox2D    SurfFlags = 0x2    // nodraw, render 2D skybox when visible
	SurfSkybox3D    SurfFlags = 0x4    // nodraw, render 2D and 3D skybox
	SurfWaterWarp   SurfFlags = 0x8    // turbulent water warp
	SurfTranslucent SurfFlags = 0x10   // translucent material
	SurfNoPortal    SurfFlags = 0x20   // portal blocking material
	SurfTrigger     SurfFlags = 0x40   // trigger surface (console only)
	SurfNoDraw      SurfFlags = 0x80   // texture is not drawn
	SurfHint        SurfFlags = 0x100  // hint brush
	SurfSkip        SurfFlags = 0x200  // skip brush, removed from map
	SurfNoLight     SurfFlags = 0x400  // no lighting calculated
	SurfBumpLight   SurfFlags = 0x800  // three lightmaps for bumpmapping
	SurfNoShadows   SurfFlags = 0x1000 // receives no shadows
	SurfNoDecals    SurfFlags = 0x2000 // rejects decals
	SurfNoSubdivide SurfFlags = 0x4000 // face must not be split
	SurfHitbox      SurfFlags = 0x8000 // part of a hitbox
)

// StaticPropFlags is the combined static prop flag bitset. The low byte is
// the primary on-disk flag byte; bits above it come from the secondary
// flag dword present from sprp version 10.
type StaticPropFlags uint32

// Static prop flags.
const (
	PropNone               StaticPropFlags = 0
	PropDoesFade           StaticPropFlags = 0x01 // fade distances are set
	PropHasLightingOrigin  StaticPropFlags = 0x02 // info_lighting entity used
	PropDisableDraw        StaticPropFlags = 0x04
	PropIgnoreNormals      StaticPropFlags = 0x08
	PropNoShadow           StaticPropFlags = 0x10
	PropScreenSpaceFade    StaticPropFlags = 0x20
	PropNoPerVertexLight   StaticPropFlags = 0x40
	PropNoSelfShadowing    StaticPropFlags = 0x80
	PropNoFlashlight       StaticPropFlags = 0x100 // secondary section
	PropBouncedLighting    StaticPropFlags = 0x400 // secondary section
)

// Primary returns the original single flag byte.
func (f StaticPropFlags) Primary() uint8 {
	return uint8(f & 0xFF)
}

// Secondary returns the bits stored in the v10+ secondary flag dword.
func (f StaticPropFlags) Secondary() uint32 {
	return uint32(f >> 8)
}

// Lump is one fixed directory slot: small header metadata plus the raw
// payload bytes. Once the slot is decoded by a typed view the raw bytes are
// cleared; raw and decoded forms never coexist.
type Lump struct {
	// ID is the directory slot this lump occupies.
	ID LumpID `json:"id" yaml:"id"`
	// Version is the per-lump sub-format version from the directory.
	Version int32 `json:"version" yaml:"version"`
	// Ident is the 4-byte opaque directory tag.
	Ident [4]byte `json:"ident" yaml:"ident"`
	// Data is the raw payload. Empty after the slot has been decoded.
	Data []byte `json:"-" yaml:"-"`
}

// GameLumpID is the in-memory 4-byte game lump identifier. On disk the
// bytes are stored reversed; the flip happens only at the I/O boundary.
type GameLumpID [4]byte

// GameLumpStaticProps identifies the static prop game lump ("sprp").
var GameLumpStaticProps = GameLumpID{'s', 'p', 'r', 'p'}

// String returns the identifier as text.
func (id GameLumpID) String() string {
	return string(id[:])
}

// reversed returns the on-disk byte order of the identifier.
func (id GameLumpID) reversed() [4]byte {
	return [4]byte{id[3], id[2], id[1], id[0]}
}

// GameLump is one entry of the game-specific sub-directory inside the game
// lump slot. Payloads stay raw; codecs like the static prop reader decode
// them on demand.
type GameLump struct {
	// ID is the in-memory (un-reversed) identifier.
	ID GameLumpID `json:"id" yaml:"id"`
	// Flags is the 16-bit flag field.
	Flags uint16 `json:"flags" yaml:"flags"`
	// Version is the sub-format version controlling the payload layout.
	Version uint16 `json:"version" yaml:"version"`
	// Data is the raw payload bytes.
	Data []byte `json:"-" yaml:"-"`
}

// TexData is deduplicated texture metadata shared by many texinfo entries.
// Equal values collapse to one stored instance at encode time.
type TexData struct {
	// Mat is the material name, case-preserving ASCII under 128 bytes.
	Mat string `json:"material" yaml:"material"`
	// Reflectivity is the material's RGB reflectivity.
	Reflectivity Vec3 `json:"reflectivity" yaml:"reflectivity"`
	// Width and Height are the texture dimensions.
	Width  int32 `json:"width" yaml:"width"`
	Height int32 `json:"height" yaml:"height"`
}

// TexInfo is texture placement info for one surface: projection vectors and
// shifts for texture and lightmap UVs, surface flags, and a reference to
// shared TexData.
type TexInfo struct {
	SOffset Vec3
	SShift  float32
	TOffset Vec3
	TShift  float32

	LightmapSOffset Vec3
	LightmapSShift  float32
	LightmapTOffset Vec3
	LightmapTShift  float32

	Flags SurfFlags

	// Data is the shared texture metadata. Many TexInfo entries may point
	// at one TexData.
	Data *TexData
}

// Mat returns the referenced material name.
func (t *TexInfo) Mat() string {
	return t.Data.Mat
}

// Cubemap is an env_cubemap sample point. The origin is integer-snapped on
// disk; Size is a power-of-two code with zero meaning the default 32px.
type Cubemap struct {
	Origin Vec3  `json:"origin" yaml:"origin"`
	Size   int32 `json:"size" yaml:"size"`
}

// Resolution returns the actual cubemap image size in pixels.
func (c *Cubemap) Resolution() int32 {
	if c.Size == 0 {
		return 32
	}

	return 1 << (c.Size - 1)
}

// Overlay is a decal-style overlay projected onto up to 64 faces.
type Overlay struct {
	ID     int32
	Origin Vec3
	Normal Vec3
	// Texture is the owning texinfo entry. New entries are appended to the
	// texinfo view when the overlay lump is rebuilt.
	Texture *TexInfo
	// Faces are the indexes of faces the overlay maps onto, at most 64.
	Faces []int32
	// RenderOrder ranks overlapping overlays and must be 0, 1 or 2.
	RenderOrder uint8

	UMin, UMax float32
	VMin, VMax float32

	// UV1..UV4 are the four corner handles.
	UV1, UV2, UV3, UV4 Vec3
}

// StaticProp is a placed decorative model instance. Which fields exist on
// the wire depends on the sprp game lump version (4..11); in memory all
// versions share this shape, with inapplicable fields holding defaults.
type StaticProp struct {
	// Model is the prop model path.
	Model string
	// Origin and Angles place the prop in the world.
	Origin Vec3
	Angles Angle
	// Scaling is the uniform scale factor, version 11+ only.
	Scaling float32
	// VisLeafs are the visibility leaf indexes the prop touches.
	VisLeafs []uint16
	// Solidity is the collision mode code.
	Solidity uint8
	// Flags combines the primary flag byte and v10+ secondary bits.
	Flags StaticPropFlags
	// Skin selects the model skin.
	Skin int32
	// MinFade and MaxFade are the fade distances.
	MinFade float32
	MaxFade float32
	// LightingOrigin is the point lighting is sampled from.
	LightingOrigin Vec3
	// FadeScale is the distance fade scale, version 5+.
	FadeScale float32
	// MinDXLevel and MaxDXLevel are the DirectX level bounds used only by
	// versions 6 and 7.
	MinDXLevel uint16
	MaxDXLevel uint16
	// CPU/GPU level bounds, version 8+ replacement for the DX levels.
	MinCPULevel uint8
	MaxCPULevel uint8
	MinGPULevel uint8
	MaxGPULevel uint8
	// Tint is the RGB render color, version 7+. Opaque white otherwise.
	Tint Vec3
	// RenderFX is the render effect byte, version 7+.
	RenderFX uint8
	// DisableOnXbox disables the prop on legacy hardware, versions 9-10.
	DisableOnXbox bool
}

// String implements fmt.Stringer for debug output.
func (p *StaticProp) String() string {
	return fmt.Sprintf("<Prop %q#%d @ %v>", p.Model, p.Skin, p.Origin)
}

// VisLeaf is a leaf of the visibility tree. Bounds are defined implicitly
// by the parent node planes; the stored box is a conservative copy.
type VisLeaf struct {
	// ID is the leaf's index in the flat leaf array.
	ID int32
	// Area is the map area the leaf belongs to.
	Area int32
	// Flags are the leaf flag bits packed beside the area on disk.
	Flags int32

	Mins Vec3
	Maxs Vec3

	FirstFace  uint16
	FaceCount  uint16
	FirstBrush uint16
	BrushCount uint16

	// WaterID indexes leaf water data, -1 when not in water.
	WaterID int16
}

// VisChild is one side of a visibility tree node: either a further VisTree
// node or a VisLeaf.
type VisChild interface {
	visChild()
}

func (*VisTree) visChild() {}
func (*VisLeaf) visChild() {}

// VisTree is a node of the visibility tree: a splitting plane with a child
// tree or leaf on either side. Each node exclusively owns its children.
type VisTree struct {
	PlaneNorm Vec3
	PlaneDist float32

	Mins Vec3
	Maxs Vec3

	// ChildNeg and ChildPos are set during linking, after all nodes and
	// leaves have been materialized.
	ChildNeg VisChild
	ChildPos VisChild
}
