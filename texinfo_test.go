// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// rawTexData packs one on-disk texdata record.
func rawTexData(reflect Vec3, nameInd, width, height int32) []byte {
	rec := appendVec3(nil, reflect)
	rec = binary.LittleEndian.AppendUint32(rec, uint32(nameInd))
	rec = binary.LittleEndian.AppendUint32(rec, uint32(width))
	rec = binary.LittleEndian.AppendUint32(rec, uint32(height))
	rec = binary.LittleEndian.AppendUint32(rec, uint32(width))
	rec = binary.LittleEndian.AppendUint32(rec, uint32(height))

	return rec
}

// rawTexInfo packs one on-disk texinfo record with zero projections.
func rawTexInfo(flags SurfFlags, dataInd int32) []byte {
	rec := make([]byte, texInfoSize)
	binary.LittleEndian.PutUint32(rec[64:68], uint32(flags))
	binary.LittleEndian.PutUint32(rec[68:72], uint32(dataInd))

	return rec
}

func TestTexInfosDecodeSharesTexData(t *testing.T) {
	t.Parallel()

	b := newTestBSP(21)
	setRawTextures(b, "brick/wall01", "metal/door02")

	b.lumps[LumpTexData].Data = append(
		rawTexData(Vec(0.2, 0.2, 0.2), 0, 512, 512),
		rawTexData(Vec(0.5, 0.4, 0.3), 1, 256, 128)...,
	)
	var ti []byte
	ti = append(ti, rawTexInfo(SurfNone, 0)...)
	ti = append(ti, rawTexInfo(SurfNoDraw, 1)...)
	ti = append(ti, rawTexInfo(SurfLight, 0)...)
	b.lumps[LumpTexInfo].Data = ti

	infos, err := b.TexInfos()
	if err != nil {
		t.Fatalf("texinfos: %v", err)
	}

	if len(infos) != 3 {
		t.Fatalf("count = %d, want 3", len(infos))
	}
	if infos[0].Mat() != "brick/wall01" || infos[1].Mat() != "metal/door02" {
		t.Fatalf("materials = %q, %q", infos[0].Mat(), infos[1].Mat())
	}
	if infos[0].Data != infos[2].Data {
		t.Fatal("entries referencing one texdata record do not share it")
	}
	if infos[1].Data.Width != 256 || infos[1].Data.Height != 128 {
		t.Fatalf("texdata = %+v", infos[1].Data)
	}
}

func TestTexInfosEncodeDeduplicates(t *testing.T) {
	t.Parallel()

	b := newTestBSP(21)

	shared := &TexData{Mat: "brick/wall01", Reflectivity: Vec(0.2, 0.2, 0.2), Width: 512, Height: 512}
	// A distinct value equal to shared must also collapse to one record.
	equal := &TexData{Mat: "brick/wall01", Reflectivity: Vec(0.2, 0.2, 0.2), Width: 512, Height: 512}
	other := &TexData{Mat: "metal/door02", Reflectivity: Vec(0.5, 0.4, 0.3), Width: 256, Height: 128}

	if err := b.SetTexInfos([]*TexInfo{
		{Data: shared},
		{Data: equal, Flags: SurfNoDraw},
		{Data: other},
	}); err != nil {
		t.Fatalf("set texinfos: %v", err)
	}

	out, err := b.encodeTexInfos(b.texInfos.value)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if len(out) != 3*texInfoSize {
		t.Fatalf("texinfo lump is %d bytes", len(out))
	}
	if got := len(b.lumps[LumpTexData].Data); got != 2*texDataSize {
		t.Fatalf("texdata lump is %d bytes, want %d", got, 2*texDataSize)
	}

	// First and second records point at the same deduplicated texdata.
	first := binary.LittleEndian.Uint32(out[68:72])
	second := binary.LittleEndian.Uint32(out[texInfoSize+68 : texInfoSize+72])
	if first != second {
		t.Fatalf("equal texdata stored twice: indexes %d and %d", first, second)
	}

	names := b.textures.value
	if len(names) != 2 || names[0] != "brick/wall01" || names[1] != "metal/door02" {
		t.Fatalf("texture view = %v", names)
	}

	// A second encode with nothing changed must not grow the name table
	// or the texdata array.
	again, err := b.encodeTexInfos(b.texInfos.value)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(out, again) {
		t.Fatal("re-encode diverged")
	}
	if len(b.textures.value) != 2 {
		t.Fatalf("texture view grew to %v", b.textures.value)
	}
	if got := len(b.lumps[LumpTexData].Data); got != 2*texDataSize {
		t.Fatalf("texdata lump grew to %d bytes", got)
	}
}

func TestTexInfosEncodeReusesExistingNames(t *testing.T) {
	t.Parallel()

	b := newTestBSP(21)
	if err := b.SetTextures([]string{"BRICK/WALL01"}); err != nil {
		t.Fatalf("set textures: %v", err)
	}

	// Lookup is case-folded: the lowercase material maps onto the stored
	// uppercase name instead of appending a new one.
	if err := b.SetTexInfos([]*TexInfo{
		{Data: &TexData{Mat: "brick/wall01", Width: 64, Height: 64}},
	}); err != nil {
		t.Fatalf("set texinfos: %v", err)
	}

	if _, err := b.encodeTexInfos(b.texInfos.value); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if len(b.textures.value) != 1 {
		t.Fatalf("texture view = %v", b.textures.value)
	}

	nameInd := binary.LittleEndian.Uint32(b.lumps[LumpTexData].Data[12:16])
	if nameInd != 0 {
		t.Fatalf("name index = %d, want 0", nameInd)
	}
}

func TestTexInfosRoundTrip(t *testing.T) {
	t.Parallel()

	b := newTestBSP(21)
	if err := b.SetTextures(nil); err != nil {
		t.Fatalf("set textures: %v", err)
	}

	orig := &TexInfo{
		SOffset:         Vec(1, 0, 0),
		SShift:          16,
		TOffset:         Vec(0, -1, 0),
		TShift:          -8,
		LightmapSOffset: Vec(0.25, 0, 0),
		LightmapTOffset: Vec(0, 0.25, 0),
		Flags:           SurfBumpLight | SurfLight,
		Data:            &TexData{Mat: "de/test01", Reflectivity: Vec(0.1, 0.2, 0.3), Width: 1024, Height: 512},
	}
	if err := b.SetTexInfos([]*TexInfo{orig}); err != nil {
		t.Fatalf("set texinfos: %v", err)
	}

	path := t.TempDir() + "/map.bsp"
	b.lumps[LumpEntities].Data = []byte(worldspawnText)
	if err := b.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	re, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	infos, err := re.TexInfos()
	if err != nil {
		t.Fatalf("texinfos: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("count = %d", len(infos))
	}

	got := infos[0]
	if got.SOffset != orig.SOffset || got.SShift != orig.SShift ||
		got.TOffset != orig.TOffset || got.TShift != orig.TShift ||
		got.LightmapSOffset != orig.LightmapSOffset ||
		got.LightmapTOffset != orig.LightmapTOffset ||
		got.Flags != orig.Flags {
		t.Fatalf("texinfo = %+v, want %+v", got, orig)
	}
	if *got.Data != *orig.Data {
		t.Fatalf("texdata = %+v, want %+v", got.Data, orig.Data)
	}
}

func TestTexInfosBadIndexes(t *testing.T) {
	t.Parallel()

	b := newTestBSP(21)
	setRawTextures(b, "a")
	b.lumps[LumpTexData].Data = rawTexData(Vec3{}, 5, 1, 1)
	b.lumps[LumpTexInfo].Data = rawTexInfo(SurfNone, 0)

	if _, err := b.TexInfos(); !errors.Is(err, ErrTexDataIndex) {
		t.Fatalf("err = %v, want ErrTexDataIndex", err)
	}

	b = newTestBSP(21)
	setRawTextures(b, "a")
	b.lumps[LumpTexData].Data = rawTexData(Vec3{}, 0, 1, 1)
	b.lumps[LumpTexInfo].Data = rawTexInfo(SurfNone, 7)

	if _, err := b.TexInfos(); !errors.Is(err, ErrTexDataIndex) {
		t.Fatalf("err = %v, want ErrTexDataIndex", err)
	}
}
