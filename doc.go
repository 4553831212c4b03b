// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

// Package bsp reads and writes Source engine BSP map files.
//
// A map file is a versioned container: a fixed directory of 64 lumps, a
// game lump holding its own sub-directory, and an embedded zip archive
// (the pakfile) of loose resources. Open parses the directory and copies
// every lump payload into memory, so the file handle is released before
// Open returns:
//
//	m, err := bsp.Open("de_example.bsp")
//	if err != nil {
//	    return err
//	}
//
// Typed lump views decode on first access and are cached. Reading the
// entities, textures, texture info, cubemaps, overlays or pakfile never
// touches lumps you do not ask for:
//
//	ents, err := m.Ents()
//	if err != nil {
//	    return err
//	}
//	ents.World.Set("skyname", "sky_day01_01")
//
//	props, err := m.StaticProps()
//	if err != nil {
//	    return err
//	}
//	for _, prop := range props {
//	    fmt.Println(prop.Model, prop.Origin)
//	}
//
// Texture info records share TexData material entries by pointer. Giving
// two surfaces the same material means pointing them at the same TexData;
// Save deduplicates names and material records on encode.
//
// The pakfile is an ordinary zip archive held in memory:
//
//	pak, err := m.Pak()
//	if err != nil {
//	    return err
//	}
//	if err := pak.WriteFile("materials/override.vmt", vmt); err != nil {
//	    return err
//	}
//
// Save re-encodes only the views that were materialized, writes to a
// temporary file in the destination directory and renames it into place.
// The pakfile lump is always placed last in the file, which keeps the
// saved map openable as a plain zip:
//
//	if err := m.Save(""); err != nil {
//	    return err
//	}
//
// A BSP value is not safe for concurrent use. Parse independent files on
// separate goroutines instead.
package bsp
