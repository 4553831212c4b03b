// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import "testing"

func TestCubemapsRoundTrip(t *testing.T) {
	t.Parallel()

	b := newTestBSP(21)
	if err := b.SetCubemaps([]*Cubemap{
		{Origin: Vec(128, -256, 64), Size: 0},
		{Origin: Vec(12.6, -3.4, 0), Size: 7},
	}); err != nil {
		t.Fatalf("set cubemaps: %v", err)
	}

	out, err := b.encodeCubemaps(b.cubemaps.value)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	re, err := b.decodeCubemaps(out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(re) != 2 {
		t.Fatalf("count = %d", len(re))
	}
	if re[0].Origin != Vec(128, -256, 64) || re[0].Size != 0 {
		t.Fatalf("cubemap = %+v", re[0])
	}

	// Fractional origins snap to the nearest integer on encode.
	if re[1].Origin != Vec(13, -3, 0) {
		t.Fatalf("origin = %v, want rounded", re[1].Origin)
	}
}

func TestCubemapResolution(t *testing.T) {
	t.Parallel()

	cases := []struct {
		size int32
		want int32
	}{
		{0, 32},
		{1, 1},
		{6, 32},
		{8, 128},
	}

	for _, tc := range cases {
		c := &Cubemap{Size: tc.size}
		if got := c.Resolution(); got != tc.want {
			t.Fatalf("Resolution(%d) = %d, want %d", tc.size, got, tc.want)
		}
	}
}
