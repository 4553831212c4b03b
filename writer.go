// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Save rebuilds every materialized typed view, then writes the whole file.
// The write goes to a fresh temp file which atomically replaces the
// destination on full success, so a failed save never corrupts the
// original. An empty path saves over the file the BSP was read from.
func (b *BSP) Save(path string) error {
	if !b.loaded {
		return ErrNotLoaded
	}

	if path == "" {
		path = b.path
	}
	if path == "" {
		return fmt.Errorf("save BSP: no destination path")
	}

	// Re-encode accessed views back into raw lump bytes. Views never
	// touched keep their original bytes. The order matters: encodes may
	// append entries to views flushed later.
	for _, id := range lumpRebuildOrder {
		if err := b.flushFuncs[id](b); err != nil {
			return fmt.Errorf("rebuild lump %d: %w", id, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".bsp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := b.writeTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("replace destination: %w", err)
	}

	b.path = path

	return nil
}

// writeTo streams the full file layout: header, deferred lump directory,
// map revision, then payloads in write order with the game-lump
// sub-directory constructed inline.
func (b *BSP) writeTo(w io.WriteSeeker) error {
	// Iteration order of the sub-directory is locked here.
	gameLumps := make([]*GameLump, len(b.gameLumps))
	copy(gameLumps, b.gameLumps)

	dw := NewDeferredWriter(w)

	var header [headerSize]byte
	copy(header[0:4], bspMagic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(b.version))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	// Directory entries: offset and length are not known yet, reserve
	// them; version and ident are written literally.
	var tail [8]byte
	for id := LumpID(0); id < lumpCount; id++ {
		if err := dw.Reserve(lumpKey(id), 8); err != nil {
			return err
		}

		binary.LittleEndian.PutUint32(tail[0:4], uint32(b.lumps[id].Version))
		copy(tail[4:8], b.lumps[id].Ident[:])
		if _, err := w.Write(tail[:]); err != nil {
			return fmt.Errorf("write directory entry %d: %w", id, err)
		}
	}

	var revision [4]byte
	binary.LittleEndian.PutUint32(revision[:], uint32(b.mapRevision))
	if _, err := w.Write(revision[:]); err != nil {
		return fmt.Errorf("write map revision: %w", err)
	}

	for _, id := range lumpWriteOrder {
		if id == LumpGame {
			if err := b.writeGameLumps(w, dw, gameLumps); err != nil {
				return err
			}

			continue
		}

		pos, err := tell(w)
		if err != nil {
			return err
		}

		data := b.lumps[id].Data
		if err := dw.FulfilUint32(lumpKey(id), uint32(pos), uint32(len(data))); err != nil {
			return err
		}

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write lump %d: %w", id, err)
		}
	}

	if err := dw.Flush(); err != nil {
		return fmt.Errorf("patch deferred writes: %w", err)
	}

	return nil
}

// writeGameLumps emits the sub-directory and its payloads. Payload offsets
// are reserved while the directory is streamed, then fulfilled as each
// payload lands.
func (b *BSP) writeGameLumps(w io.WriteSeeker, dw *DeferredWriter, gameLumps []*GameLump) error {
	start, err := tell(w)
	if err != nil {
		return err
	}

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(gameLumps)))
	if _, err := w.Write(count[:]); err != nil {
		return fmt.Errorf("write game lump count: %w", err)
	}

	var entry [8]byte
	for _, gl := range gameLumps {
		diskID := gl.ID.reversed()
		copy(entry[0:4], diskID[:])
		binary.LittleEndian.PutUint16(entry[4:6], gl.Flags)
		binary.LittleEndian.PutUint16(entry[6:8], gl.Version)
		if _, err := w.Write(entry[:]); err != nil {
			return fmt.Errorf("write game lump entry %s: %w", gl.ID, err)
		}

		if err := dw.Reserve(gameLumpKey(gl.ID), 4); err != nil {
			return err
		}

		var length [4]byte
		binary.LittleEndian.PutUint32(length[:], uint32(len(gl.Data)))
		if _, err := w.Write(length[:]); err != nil {
			return fmt.Errorf("write game lump length %s: %w", gl.ID, err)
		}
	}

	for _, gl := range gameLumps {
		pos, err := tell(w)
		if err != nil {
			return err
		}

		if err := dw.FulfilUint32(gameLumpKey(gl.ID), uint32(pos)); err != nil {
			return err
		}

		if _, err := w.Write(gl.Data); err != nil {
			return fmt.Errorf("write game lump payload %s: %w", gl.ID, err)
		}
	}

	end, err := tell(w)
	if err != nil {
		return err
	}

	return dw.FulfilUint32(lumpKey(LumpGame), uint32(start), uint32(end-start))
}

// lumpKey is the deferred-write key for one directory slot.
func lumpKey(id LumpID) string {
	return fmt.Sprintf("lump:%d", id)
}

// gameLumpKey is the deferred-write key for one game lump offset.
func gameLumpKey(id GameLumpID) string {
	return "gamelump:" + id.String()
}

// tell returns the current stream position.
func tell(w io.WriteSeeker) (int64, error) {
	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("query stream position: %w", err)
	}

	return pos, nil
}
