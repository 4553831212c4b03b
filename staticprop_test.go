// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"
)

// withPropLump installs an empty sprp game lump of the given version.
func withPropLump(t *testing.T, version uint16) *BSP {
	t.Helper()

	b := newTestBSP(21)
	if err := b.SetGameLump(&GameLump{ID: GameLumpStaticProps, Version: version}); err != nil {
		t.Fatalf("set game lump: %v", err)
	}

	return b
}

func TestStaticPropsRoundTripAllVersions(t *testing.T) {
	t.Parallel()

	for version := uint16(propMinVersion); version <= propMaxVersion; version++ {
		t.Run(fmt.Sprintf("v%d", version), func(t *testing.T) {
			t.Parallel()

			b := withPropLump(t, version)

			props := []*StaticProp{
				{
					Model:          "models/props_c17/chair.mdl",
					Origin:         Vec(12, -40, 6.5),
					Angles:         Angle{Pitch: 0, Yaw: 90, Roll: 0},
					Scaling:        1,
					VisLeafs:       []uint16{4, 5, 9},
					Solidity:       6,
					Flags:          PropNoShadow,
					Skin:           2,
					MinFade:        400,
					MaxFade:        800,
					LightingOrigin: Vec(12, -40, 20),
					FadeScale:      1,
					Tint:           Vec(255, 255, 255),
					RenderFX:       255,
				},
				{
					Model:          "models/props_c17/lamp.mdl",
					Origin:         Vec(0, 0, 128),
					Scaling:        1,
					VisLeafs:       []uint16{1},
					FadeScale:      1,
					Tint:           Vec(255, 255, 255),
					RenderFX:       255,
					LightingOrigin: Vec(0, 0, 130),
				},
				{
					// Same model again: the dictionary must not grow.
					Model:     "models/props_c17/chair.mdl",
					Origin:    Vec(100, 100, 0),
					Scaling:   1,
					VisLeafs:  []uint16{7, 8},
					FadeScale: 1,
					Tint:      Vec(255, 255, 255),
					RenderFX:  255,
				},
			}

			// Version-gated fields only survive where the wire format
			// carries them.
			if version == 6 || version == 7 {
				props[0].MinDXLevel = 70
				props[0].MaxDXLevel = 95
			}
			if version >= 8 {
				props[0].MinCPULevel = 1
				props[0].MaxCPULevel = 3
				props[0].MinGPULevel = 2
				props[0].MaxGPULevel = 3
			}
			if version >= 7 {
				props[0].Tint = Vec(200, 150, 100)
				props[0].RenderFX = 7
			}
			if version >= 10 {
				props[0].Flags |= PropBouncedLighting
			}
			if version >= 11 {
				props[0].Scaling = 2.5
			} else if version == 9 || version == 10 {
				props[0].DisableOnXbox = true
			}
			if version >= 5 {
				props[0].FadeScale = 0.75
			}

			if err := b.SetStaticProps(props); err != nil {
				t.Fatalf("set static props: %v", err)
			}

			re, err := b.StaticProps()
			if err != nil {
				t.Fatalf("static props: %v", err)
			}
			if len(re) != len(props) {
				t.Fatalf("count = %d, want %d", len(re), len(props))
			}

			for i, want := range props {
				got := re[i]
				if got.Model != want.Model {
					t.Fatalf("prop %d model = %q, want %q", i, got.Model, want.Model)
				}
				if got.Origin != want.Origin || got.Angles != want.Angles {
					t.Fatalf("prop %d placement = %v %v", i, got.Origin, got.Angles)
				}
				if len(got.VisLeafs) != len(want.VisLeafs) {
					t.Fatalf("prop %d leafs = %v, want %v", i, got.VisLeafs, want.VisLeafs)
				}
				for j := range want.VisLeafs {
					if got.VisLeafs[j] != want.VisLeafs[j] {
						t.Fatalf("prop %d leafs = %v, want %v", i, got.VisLeafs, want.VisLeafs)
					}
				}
				if got.Solidity != want.Solidity || got.Skin != want.Skin {
					t.Fatalf("prop %d = %+v", i, got)
				}
				if got.Flags != want.Flags {
					t.Fatalf("prop %d flags = %#x, want %#x", i, got.Flags, want.Flags)
				}
				if got.MinFade != want.MinFade || got.MaxFade != want.MaxFade {
					t.Fatalf("prop %d fades = %v %v", i, got.MinFade, got.MaxFade)
				}
				if got.LightingOrigin != want.LightingOrigin {
					t.Fatalf("prop %d lighting origin = %v", i, got.LightingOrigin)
				}
				if got.FadeScale != want.FadeScale {
					t.Fatalf("prop %d fade scale = %v, want %v", i, got.FadeScale, want.FadeScale)
				}
				if got.MinDXLevel != want.MinDXLevel || got.MaxDXLevel != want.MaxDXLevel {
					t.Fatalf("prop %d dx levels = %d %d", i, got.MinDXLevel, got.MaxDXLevel)
				}
				if got.MinCPULevel != want.MinCPULevel || got.MaxGPULevel != want.MaxGPULevel {
					t.Fatalf("prop %d hw levels = %+v", i, got)
				}
				if got.Tint != want.Tint || got.RenderFX != want.RenderFX {
					t.Fatalf("prop %d tint = %v fx %d", i, got.Tint, got.RenderFX)
				}
				if got.Scaling != want.Scaling {
					t.Fatalf("prop %d scaling = %v, want %v", i, got.Scaling, want.Scaling)
				}
				if got.DisableOnXbox != want.DisableOnXbox {
					t.Fatalf("prop %d disableOnXbox = %v", i, got.DisableOnXbox)
				}
			}
		})
	}
}

func TestStaticPropsModelDictionary(t *testing.T) {
	t.Parallel()

	b := withPropLump(t, 6)

	props := []*StaticProp{
		{Model: "models/b.mdl", Scaling: 1, FadeScale: 1, Tint: Vec(255, 255, 255), RenderFX: 255},
		{Model: "models/a.mdl", Scaling: 1, FadeScale: 1, Tint: Vec(255, 255, 255), RenderFX: 255},
		{Model: "models/b.mdl", Scaling: 1, FadeScale: 1, Tint: Vec(255, 255, 255), RenderFX: 255},
	}
	if err := b.SetStaticProps(props); err != nil {
		t.Fatalf("set static props: %v", err)
	}

	// First-appearance order, duplicates collapsed.
	models, err := b.StaticPropModels()
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if len(models) != 2 || models[0] != "models/b.mdl" || models[1] != "models/a.mdl" {
		t.Fatalf("models = %v", models)
	}
}

func TestStaticPropsRawFixture(t *testing.T) {
	t.Parallel()

	// Hand-built version 4 lump: one model, two leafs, one prop.
	var data []byte
	data = binary.LittleEndian.AppendUint32(data, 1)
	slot := make([]byte, propModelSlot)
	copy(slot, "models/test.mdl")
	data = append(data, slot...)

	data = binary.LittleEndian.AppendUint32(data, 2)
	data = binary.LittleEndian.AppendUint16(data, 11)
	data = binary.LittleEndian.AppendUint16(data, 12)

	// One record: origin, angles, model index, leaf span, solidity and
	// flags, skin, fades, lighting origin.
	data = binary.LittleEndian.AppendUint32(data, 1)
	data = appendVec3(data, Vec(1, 2, 3))
	data = appendFloat32(data, 10)
	data = appendFloat32(data, 20)
	data = appendFloat32(data, 30)
	data = binary.LittleEndian.AppendUint16(data, 0)
	data = binary.LittleEndian.AppendUint16(data, 0)
	data = binary.LittleEndian.AppendUint16(data, 2)
	data = append(data, 6, uint8(PropNoShadow))
	data = binary.LittleEndian.AppendUint32(data, 1)
	data = appendFloat32(data, 100)
	data = appendFloat32(data, 200)
	data = appendVec3(data, Vec(1, 2, 10))

	b := newTestBSP(21)
	if err := b.SetGameLump(&GameLump{ID: GameLumpStaticProps, Version: 4, Data: data}); err != nil {
		t.Fatalf("set game lump: %v", err)
	}

	props, err := b.StaticProps()
	if err != nil {
		t.Fatalf("static props: %v", err)
	}
	if len(props) != 1 {
		t.Fatalf("count = %d", len(props))
	}

	prop := props[0]
	if prop.Model != "models/test.mdl" {
		t.Fatalf("model = %q", prop.Model)
	}
	if prop.Origin != Vec(1, 2, 3) || prop.Angles != (Angle{Pitch: 10, Yaw: 20, Roll: 30}) {
		t.Fatalf("placement = %v %v", prop.Origin, prop.Angles)
	}
	if len(prop.VisLeafs) != 2 || prop.VisLeafs[0] != 11 || prop.VisLeafs[1] != 12 {
		t.Fatalf("leafs = %v", prop.VisLeafs)
	}
	if prop.Flags != PropNoShadow || prop.Skin != 1 {
		t.Fatalf("prop = %+v", prop)
	}

	// Fields below version 4's wire format hold their defaults.
	if prop.FadeScale != 1 || prop.Scaling != 1 || prop.RenderFX != 255 || prop.Tint != Vec(255, 255, 255) {
		t.Fatalf("defaults = %+v", prop)
	}

	// Nothing here deduplicates, so re-encoding reproduces the exact
	// original bytes.
	if err := b.SetStaticProps(props); err != nil {
		t.Fatalf("set static props: %v", err)
	}
	gl, err := b.GameLump(GameLumpStaticProps)
	if err != nil {
		t.Fatalf("game lump: %v", err)
	}
	if !bytes.Equal(gl.Data, data) {
		t.Fatalf("re-encode diverged:\n%v\n%v", gl.Data, data)
	}
}

func TestStaticPropsVersionBounds(t *testing.T) {
	t.Parallel()

	for _, version := range []uint16{3, 12} {
		b := withPropLump(t, version)
		if _, err := b.StaticProps(); !errors.Is(err, ErrPropVersion) {
			t.Fatalf("v%d err = %v, want ErrPropVersion", version, err)
		}
		if err := b.SetStaticProps(nil); !errors.Is(err, ErrPropVersion) {
			t.Fatalf("v%d set err = %v, want ErrPropVersion", version, err)
		}
	}

	b := newTestBSP(21)
	if _, err := b.StaticProps(); !errors.Is(err, ErrNoGameLump) {
		t.Fatalf("err = %v, want ErrNoGameLump", err)
	}
}

func TestStaticPropsTruncatedLump(t *testing.T) {
	t.Parallel()

	b := newTestBSP(21)
	data := binary.LittleEndian.AppendUint32(nil, 3) // claims 3 models, has none
	if err := b.SetGameLump(&GameLump{ID: GameLumpStaticProps, Version: 4, Data: data}); err != nil {
		t.Fatalf("set game lump: %v", err)
	}

	if _, err := b.StaticProps(); !errors.Is(err, ErrMalformedLump) {
		t.Fatalf("err = %v, want ErrMalformedLump", err)
	}
}

func TestStaticPropsOversizedModelName(t *testing.T) {
	t.Parallel()

	b := withPropLump(t, 6)

	long := make([]byte, propModelSlot)
	for i := range long {
		long[i] = 'm'
	}

	err := b.SetStaticProps([]*StaticProp{{Model: string(long)}})
	if !errors.Is(err, ErrTexNameTooLong) {
		t.Fatalf("err = %v, want ErrTexNameTooLong", err)
	}
}
