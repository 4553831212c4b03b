// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

// parsedLump is a lazy typed view over one primary lump slot plus the
// dependent slots consumed by the same decode. The first get decodes the
// raw bytes, caches the result, and clears the raw form of every covered
// slot; a set validates, clears the raw form, and stores the value. A slot
// therefore holds either raw bytes or a decoded value, never both.
type parsedLump[T any] struct {
	// lump is the primary slot; clear lists every slot whose raw bytes are
	// consumed (primary included).
	lump  LumpID
	clear []LumpID

	// decode builds the typed value from the primary slot's raw bytes.
	// encode rebuilds the primary slot's bytes and may store dependent
	// slot bytes into the container directly.
	decode func(b *BSP, data []byte) (T, error)
	encode func(b *BSP, value T) ([]byte, error)
	// check optionally rejects a value before set stores it.
	check func(b *BSP, value T) error

	value  T
	loaded bool
}

// get returns the cached value, decoding and clearing raw bytes on first use.
func (p *parsedLump[T]) get(b *BSP) (T, error) {
	if p.loaded {
		return p.value, nil
	}

	var zero T
	if !b.loaded {
		return zero, ErrNotLoaded
	}

	value, err := p.decode(b, b.lumps[p.lump].Data)
	if err != nil {
		return zero, err
	}

	p.value = value
	p.loaded = true
	for _, id := range p.clear {
		b.lumps[id].Data = nil
	}

	return value, nil
}

// set validates and stores a new value, discarding any raw bytes.
func (p *parsedLump[T]) set(b *BSP, value T) error {
	if !b.loaded {
		return ErrNotLoaded
	}

	if p.check != nil {
		if err := p.check(b, value); err != nil {
			return err
		}
	}

	for _, id := range p.clear {
		b.lumps[id].Data = nil
	}

	p.value = value
	p.loaded = true

	return nil
}

// flush re-encodes a materialized value back into the container and drops
// the cached form. Untouched views keep their original raw bytes.
func (p *parsedLump[T]) flush(b *BSP) error {
	if !p.loaded {
		return nil
	}

	data, err := p.encode(b, p.value)
	if err != nil {
		return err
	}

	b.lumps[p.lump].Data = data

	var zero T
	p.value = zero
	p.loaded = false

	return nil
}
