// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DeferredWriter lets a caller reserve fixed-width placeholders in a
// stream, keep writing, and fill the real values in later. Flush patches
// every reservation in one backward seek-and-write pass, in registration
// order, and fails if any reservation was left unfulfilled.
type DeferredWriter struct {
	w     io.WriteSeeker
	order []string
	slots map[string]*deferredSlot
}

// deferredSlot is one reserved placeholder.
type deferredSlot struct {
	pos   int64
	width int
	data  []byte
}

// NewDeferredWriter wraps a seekable stream for placeholder writes.
func NewDeferredWriter(w io.WriteSeeker) *DeferredWriter {
	return &DeferredWriter{
		w:     w,
		slots: make(map[string]*deferredSlot, 8),
	}
}

// Reserve writes width zero bytes at the current position and tags them
// with key for later fulfilment.
func (d *DeferredWriter) Reserve(key string, width int) error {
	if _, exists := d.slots[key]; exists {
		return fmt.Errorf("%w: %q already reserved", ErrDeferredKey, key)
	}

	pos, err := d.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("reserve %q: %w", key, err)
	}

	if _, err := d.w.Write(make([]byte, width)); err != nil {
		return fmt.Errorf("reserve %q: %w", key, err)
	}

	d.order = append(d.order, key)
	d.slots[key] = &deferredSlot{pos: pos, width: width}

	return nil
}

// Fulfil records the bytes to backpatch at key's reserved position.
func (d *DeferredWriter) Fulfil(key string, data []byte) error {
	slot, ok := d.slots[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrDeferredKey, key)
	}
	if len(data) != slot.width {
		return fmt.Errorf("%w: %q got %d bytes, reserved %d",
			ErrDeferredWidth, key, len(data), slot.width)
	}

	slot.data = data

	return nil
}

// FulfilAt is Fulfil with an explicit patch position, for values whose
// insertion point differs from the reservation point.
func (d *DeferredWriter) FulfilAt(key string, pos int64, data []byte) error {
	if err := d.Fulfil(key, data); err != nil {
		return err
	}

	d.slots[key].pos = pos

	return nil
}

// FulfilUint32 packs the given values little-endian and records them for
// key. The packed width must match the reservation.
func (d *DeferredWriter) FulfilUint32(key string, values ...uint32) error {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], v)
	}

	return d.Fulfil(key, data)
}

// Flush seeks back to every reservation in registration order and writes
// its fulfilled value, then restores the stream position to the end.
func (d *DeferredWriter) Flush() error {
	for _, key := range d.order {
		slot := d.slots[key]
		if slot.data == nil {
			return fmt.Errorf("%w: %q", ErrDeferredUnfulfilled, key)
		}

		if _, err := d.w.Seek(slot.pos, io.SeekStart); err != nil {
			return fmt.Errorf("patch %q: %w", key, err)
		}

		if _, err := d.w.Write(slot.data); err != nil {
			return fmt.Errorf("patch %q: %w", key, err)
		}
	}

	if _, err := d.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek back to end: %w", err)
	}

	return nil
}
