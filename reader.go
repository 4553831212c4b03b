// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	// headerSize is magic + version before the lump directory.
	headerSize = 8
	// dirEntrySize is one lump directory entry: offset, length, version, ident.
	dirEntrySize = 16
	// gameLumpEntrySize is one game-lump sub-directory entry.
	gameLumpEntrySize = 16
)

// Open reads a BSP file by path. The whole file is lifted into memory and
// the handle is closed before Open returns; structured lumps stay raw until
// their typed views are first accessed.
func Open(path string) (*BSP, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open BSP: %w", err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat BSP: %w", err)
	}

	b, err := Parse(f, fi.Size())
	if err != nil {
		return nil, err
	}

	b.path = path

	return b, nil
}

// Parse reads a BSP from a random-access source of known size.
func Parse(ra io.ReaderAt, size int64) (*BSP, error) {
	b := newBSP()
	if err := b.parse(ra, size); err != nil {
		return nil, err
	}

	b.loaded = true

	return b, nil
}

// parse reads the header, the lump directory, every slot's payload and the
// game-lump sub-directory.
func (b *BSP) parse(ra io.ReaderAt, size int64) error {
	var header [headerSize]byte
	if _, err := ra.ReadAt(header[:], 0); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: short header", ErrBadMagic)
		}

		return fmt.Errorf("read header: %w", err)
	}

	if !bytes.Equal(header[0:4], []byte(bspMagic)) {
		return ErrBadMagic
	}

	b.version = int32(binary.LittleEndian.Uint32(header[4:8]))
	if b.version < minVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, b.version)
	}

	dir := make([]byte, lumpCount*dirEntrySize)
	if _, err := ra.ReadAt(dir, headerSize); err != nil {
		return fmt.Errorf("read lump directory: %w", err)
	}

	type span struct {
		offset int32
		length int32
	}
	spans := make([]span, lumpCount)

	for id := LumpID(0); id < lumpCount; id++ {
		entry := dir[int(id)*dirEntrySize:]
		spans[id] = span{
			offset: int32(binary.LittleEndian.Uint32(entry[0:4])),
			length: int32(binary.LittleEndian.Uint32(entry[4:8])),
		}
		b.lumps[id].Version = int32(binary.LittleEndian.Uint32(entry[8:12]))
		copy(b.lumps[id].Ident[:], entry[12:16])
	}

	var revision [4]byte
	if _, err := ra.ReadAt(revision[:], headerSize+lumpCount*dirEntrySize); err != nil {
		return fmt.Errorf("read map revision: %w", err)
	}
	b.mapRevision = int32(binary.LittleEndian.Uint32(revision[:]))

	for id := LumpID(0); id < lumpCount; id++ {
		data, err := readSpan(ra, size, spans[id].offset, spans[id].length)
		if err != nil {
			return fmt.Errorf("lump %d: %w", id, err)
		}

		b.lumps[id].Data = data
	}

	if err := b.parseGameLumps(ra, size); err != nil {
		return err
	}

	return nil
}

// parseGameLumps lifts the sub-directory out of the game lump slot. Entry
// payloads are copied raw; only the byte ranges are parsed here. The slot's
// own raw data is no longer valid afterwards and is cleared.
func (b *BSP) parseGameLumps(ra io.ReaderAt, size int64) error {
	data := b.lumps[LumpGame].Data
	if len(data) == 0 {
		return nil
	}
	if len(data) < 4 {
		return fmt.Errorf("%w: game lump directory too short", ErrMalformedLump)
	}

	count := int32(binary.LittleEndian.Uint32(data[0:4]))
	if count < 0 || 4+int(count)*gameLumpEntrySize > len(data) {
		return fmt.Errorf("%w: game lump count %d", ErrMalformedLump, count)
	}

	b.gameLumps = make([]*GameLump, 0, count)
	for i := int32(0); i < count; i++ {
		entry := data[4+int(i)*gameLumpEntrySize:]

		// The identifier is stored byte-reversed on disk.
		var diskID [4]byte
		copy(diskID[:], entry[0:4])
		id := GameLumpID{diskID[3], diskID[2], diskID[1], diskID[0]}

		flags := binary.LittleEndian.Uint16(entry[4:6])
		version := binary.LittleEndian.Uint16(entry[6:8])
		fileOff := int32(binary.LittleEndian.Uint32(entry[8:12]))
		fileLen := int32(binary.LittleEndian.Uint32(entry[12:16]))

		payload, err := readSpan(ra, size, fileOff, fileLen)
		if err != nil {
			return fmt.Errorf("game lump %s: %w", id, err)
		}

		b.gameLumps = append(b.gameLumps, &GameLump{
			ID:      id,
			Flags:   flags,
			Version: version,
			Data:    payload,
		})
	}

	b.lumps[LumpGame].Data = nil

	return nil
}

// readSpan copies one declared byte range out of the source.
func readSpan(ra io.ReaderAt, size int64, offset, length int32) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if offset < 0 || length < 0 || int64(offset)+int64(length) > size {
		return nil, fmt.Errorf("%w: range %d+%d outside file of %d bytes",
			ErrMalformedLump, offset, length, size)
	}

	data := make([]byte, length)
	if _, err := ra.ReadAt(data, int64(offset)); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	return data, nil
}
