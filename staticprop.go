// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// propMinVersion and propMaxVersion bound the supported sprp format
	// range. Anything outside is a hard decode failure.
	propMinVersion = 4
	propMaxVersion = 11
	// propModelSlot is the fixed width of one model dictionary entry,
	// NUL-padded ASCII.
	propModelSlot = 128
)

// StaticProps decodes the static prop game lump. The record layout is a
// strict function of the lump's version; see SetStaticProps for the
// matching encoder.
func (b *BSP) StaticProps() ([]*StaticProp, error) {
	gl, err := b.GameLump(GameLumpStaticProps)
	if err != nil {
		return nil, err
	}

	version := int(gl.Version)
	if version < propMinVersion || version > propMaxVersion {
		return nil, fmt.Errorf("%w: %d", ErrPropVersion, version)
	}

	c := &propCursor{data: gl.Data}

	models := readPropModelDict(c)

	leafCount := c.i32()
	leafs := make([]uint16, 0, max(leafCount, 0))
	for i := int32(0); i < leafCount; i++ {
		leafs = append(leafs, c.u16())
	}

	propCount := c.i32()
	if c.err != nil {
		return nil, fmt.Errorf("static props: %w", c.err)
	}

	props := make([]*StaticProp, 0, max(propCount, 0))
	for i := int32(0); i < propCount; i++ {
		prop, err := readStaticProp(c, version, models, leafs)
		if err != nil {
			return nil, fmt.Errorf("static prop %d: %w", i, err)
		}

		props = append(props, prop)
	}

	if c.err != nil {
		return nil, fmt.Errorf("static props: %w", c.err)
	}

	return props, nil
}

// StaticPropModels returns the model dictionary without decoding full prop
// records.
func (b *BSP) StaticPropModels() ([]string, error) {
	gl, err := b.GameLump(GameLumpStaticProps)
	if err != nil {
		return nil, err
	}

	c := &propCursor{data: gl.Data}
	models := readPropModelDict(c)
	if c.err != nil {
		return nil, fmt.Errorf("static prop models: %w", c.err)
	}

	return models, nil
}

// readPropModelDict reads the fixed-slot model name table.
func readPropModelDict(c *propCursor) []string {
	count := c.i32()
	models := make([]string, 0, max(count, 0))
	for i := int32(0); i < count; i++ {
		slot := c.take(propModelSlot)
		models = append(models, string(bytes.TrimRight(slot, "\x00")))
	}

	return models
}

// readStaticProp reads one record, branching purely on the lump version.
func readStaticProp(c *propCursor, version int, models []string, leafs []uint16) (*StaticProp, error) {
	prop := &StaticProp{
		Origin: c.vec3(),
		Angles: Angle{Pitch: c.f32(), Yaw: c.f32(), Roll: c.f32()},
	}

	modelInd := c.u16()

	firstLeaf := c.u16()
	leafCount := c.u16()
	prop.Solidity = c.u8()
	flags := StaticPropFlags(c.u8())
	prop.Skin = c.i32()
	prop.MinFade = c.f32()
	prop.MaxFade = c.f32()
	prop.LightingOrigin = c.vec3()

	if c.err != nil {
		return nil, c.err
	}

	if int(modelInd) >= len(models) {
		return nil, fmt.Errorf("%w: model index %d of %d", ErrMalformedLump, modelInd, len(models))
	}
	prop.Model = models[modelInd]

	end := int(firstLeaf) + int(leafCount)
	if end > len(leafs) {
		return nil, fmt.Errorf("%w: leaf range %d+%d of %d", ErrMalformedLump, firstLeaf, leafCount, len(leafs))
	}
	prop.VisLeafs = append([]uint16(nil), leafs[firstLeaf:end]...)

	if version >= 5 {
		prop.FadeScale = c.f32()
	} else {
		prop.FadeScale = 1
	}

	if version == 6 || version == 7 {
		prop.MinDXLevel = c.u16()
		prop.MaxDXLevel = c.u16()
	}

	if version >= 8 {
		prop.MinCPULevel = c.u8()
		prop.MaxCPULevel = c.u8()
		prop.MinGPULevel = c.u8()
		prop.MaxGPULevel = c.u8()
	}

	if version >= 7 {
		prop.Tint = Vec(float32(c.u8()), float32(c.u8()), float32(c.u8()))
		prop.RenderFX = c.u8()
	} else {
		prop.Tint = Vec(255, 255, 255)
		prop.RenderFX = 255
	}

	if version >= 11 {
		// Reserved dword, always zero in shipped files.
		_ = c.i32()
	}

	if version >= 10 {
		flags |= StaticPropFlags(c.u32()) << 8
	}
	prop.Flags = flags

	prop.Scaling = 1
	if version >= 11 {
		prop.Scaling = c.f32()
	} else if version >= 9 {
		prop.DisableOnXbox = c.u8() != 0
		c.take(3) // bool padded to a dword
	}

	return prop, c.err
}

// SetStaticProps re-encodes the static prop game lump in place, using the
// lump's existing version. The flat leaf array is rebuilt: each prop gets
// its own contiguous slice, and the model dictionary is deduplicated in
// first-appearance order.
func (b *BSP) SetStaticProps(props []*StaticProp) error {
	gl, err := b.GameLump(GameLumpStaticProps)
	if err != nil {
		return err
	}

	version := int(gl.Version)
	if version < propMinVersion || version > propMaxVersion {
		return fmt.Errorf("%w: %d", ErrPropVersion, version)
	}

	var leafArray []uint16
	leafOffsets := make([]int, len(props))

	models := make([]string, 0, 16)
	modelInd := make(map[string]uint16, 16)

	for i, prop := range props {
		leafOffsets[i] = len(leafArray)
		leafArray = append(leafArray, prop.VisLeafs...)

		if _, ok := modelInd[prop.Model]; !ok {
			if len(prop.Model) >= propModelSlot {
				return fmt.Errorf("%w: model %q", ErrTexNameTooLong, prop.Model)
			}
			if len(models) > math.MaxUint16 {
				return fmt.Errorf("%w: %d models", ErrSizeOverflow, len(models))
			}

			modelInd[prop.Model] = uint16(len(models))
			models = append(models, prop.Model)
		}
	}

	if len(leafArray) > math.MaxUint16 {
		return fmt.Errorf("%w: %d leaf entries", ErrSizeOverflow, len(leafArray))
	}

	var out []byte
	out = binary.LittleEndian.AppendUint32(out, uint32(len(models)))
	for _, name := range models {
		slot := make([]byte, propModelSlot)
		copy(slot, name)
		out = append(out, slot...)
	}

	out = binary.LittleEndian.AppendUint32(out, uint32(len(leafArray)))
	for _, leaf := range leafArray {
		out = binary.LittleEndian.AppendUint16(out, leaf)
	}

	out = binary.LittleEndian.AppendUint32(out, uint32(len(props)))
	for i, prop := range props {
		out = appendStaticProp(out, version, prop, uint16(leafOffsets[i]), modelInd[prop.Model])
	}

	gl.Data = out

	return nil
}

// appendStaticProp writes one record, mirroring readStaticProp's version
// branches in the same conditional order.
func appendStaticProp(out []byte, version int, prop *StaticProp, leafOff, modelInd uint16) []byte {
	out = appendVec3(out, prop.Origin)
	out = appendFloat32(out, prop.Angles.Pitch)
	out = appendFloat32(out, prop.Angles.Yaw)
	out = appendFloat32(out, prop.Angles.Roll)
	out = binary.LittleEndian.AppendUint16(out, modelInd)

	out = binary.LittleEndian.AppendUint16(out, leafOff)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(prop.VisLeafs)))
	out = append(out, prop.Solidity, prop.Flags.Primary())
	out = binary.LittleEndian.AppendUint32(out, uint32(prop.Skin))
	out = appendFloat32(out, prop.MinFade)
	out = appendFloat32(out, prop.MaxFade)
	out = appendVec3(out, prop.LightingOrigin)

	if version >= 5 {
		out = appendFloat32(out, prop.FadeScale)
	}

	if version == 6 || version == 7 {
		out = binary.LittleEndian.AppendUint16(out, prop.MinDXLevel)
		out = binary.LittleEndian.AppendUint16(out, prop.MaxDXLevel)
	}

	if version >= 8 {
		out = append(out, prop.MinCPULevel, prop.MaxCPULevel, prop.MinGPULevel, prop.MaxGPULevel)
	}

	if version >= 7 {
		out = append(out, uint8(prop.Tint.X), uint8(prop.Tint.Y), uint8(prop.Tint.Z), prop.RenderFX)
	}

	if version >= 11 {
		out = binary.LittleEndian.AppendUint32(out, 0)
	}

	if version >= 10 {
		out = binary.LittleEndian.AppendUint32(out, prop.Flags.Secondary())
	}

	if version >= 11 {
		out = appendFloat32(out, prop.Scaling)
	} else if version >= 9 {
		var disable uint8
		if prop.DisableOnXbox {
			disable = 1
		}

		out = append(out, disable, 0, 0, 0)
	}

	return out
}

// propCursor walks a prop lump with a sticky error, so record readers can
// chain field reads and check once.
type propCursor struct {
	data []byte
	off  int
	err  error
}

// take consumes n bytes, returning nil once the cursor has failed.
func (c *propCursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if c.off+n > len(c.data) {
		c.err = fmt.Errorf("%w: %w", ErrMalformedLump, io.ErrUnexpectedEOF)
		return nil
	}

	out := c.data[c.off : c.off+n]
	c.off += n

	return out
}

func (c *propCursor) u8() uint8 {
	if b := c.take(1); b != nil {
		return b[0]
	}

	return 0
}

func (c *propCursor) u16() uint16 {
	if b := c.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}

	return 0
}

func (c *propCursor) u32() uint32 {
	if b := c.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}

	return 0
}

func (c *propCursor) i32() int32 {
	return int32(c.u32())
}

func (c *propCursor) f32() float32 {
	return math.Float32frombits(c.u32())
}

func (c *propCursor) vec3() Vec3 {
	return Vec3{X: c.f32(), Y: c.f32(), Z: c.f32()}
}
