// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/woozymasta/pathrules"
)

// pakEntry is one archived file held fully in memory. The original zip
// compression method is preserved across a rewrite.
type pakEntry struct {
	name   string
	data   []byte
	method uint16
}

// Pakfile is the embedded resource archive of a map. Archives returned by
// Pak or NewPakfile keep every entry in memory and can be edited and
// written back; archives opened from an external reader with OpenPakfile
// are read only.
type Pakfile struct {
	entries []*pakEntry
	index   map[string]int

	// external is set for archives streamed from an io.ReaderAt. Those
	// cannot be re-encoded into a map file.
	external *zip.Reader
}

// NewPakfile returns an empty memory-backed archive.
func NewPakfile() *Pakfile {
	return &Pakfile{index: make(map[string]int)}
}

// OpenPakfile wraps an existing zip source without copying its contents
// into memory. The result is read only and is rejected by SetPak.
func OpenPakfile(ra io.ReaderAt, size int64) (*Pakfile, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open pakfile: %w", err)
	}

	return &Pakfile{external: zr}, nil
}

// decodePakfile materializes the pakfile lump. An empty lump is a valid
// empty archive.
func (b *BSP) decodePakfile(data []byte) (*Pakfile, error) {
	p := NewPakfile()
	if len(data) == 0 {
		return p, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: pakfile: %w", ErrMalformedLump, err)
	}

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: pakfile entry %s: %w", ErrMalformedLump, zf.Name, err)
		}

		content, err := io.ReadAll(rc)
		closeErr := rc.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, fmt.Errorf("%w: pakfile entry %s: %w", ErrMalformedLump, zf.Name, err)
		}

		p.put(&pakEntry{name: zf.Name, data: content, method: zf.Method})
	}

	return p, nil
}

// encodePakfile finalizes the archive back to zip bytes.
func (b *BSP) encodePakfile(p *Pakfile) ([]byte, error) {
	if p == nil {
		p = NewPakfile()
	}

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	for _, entry := range p.entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   entry.name,
			Method: entry.method,
		})
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("pakfile entry %s: %w", entry.name, err)
		}

		if _, err := w.Write(entry.data); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("pakfile entry %s: %w", entry.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize pakfile: %w", err)
	}

	return buf.Bytes(), nil
}

// checkPakfile rejects archives that cannot be rewritten into the lump.
func (b *BSP) checkPakfile(p *Pakfile) error {
	if p == nil || p.external != nil {
		return ErrPakfileNotMemory
	}

	return nil
}

// put inserts or replaces an entry, keeping first-seen order.
func (p *Pakfile) put(entry *pakEntry) {
	if i, ok := p.index[entry.name]; ok {
		p.entries[i] = entry
		return
	}

	p.index[entry.name] = len(p.entries)
	p.entries = append(p.entries, entry)
}

// Files lists entry names in archive order.
func (p *Pakfile) Files() []string {
	if p.external != nil {
		names := make([]string, 0, len(p.external.File))
		for _, zf := range p.external.File {
			if zf.FileInfo().IsDir() {
				continue
			}

			names = append(names, zf.Name)
		}

		return names
	}

	names := make([]string, 0, len(p.entries))
	for _, entry := range p.entries {
		names = append(names, entry.name)
	}

	return names
}

// ReadFile returns the contents of one entry. Lookup falls back to a
// case-insensitive scan, matching how the engine resolves pak paths.
func (p *Pakfile) ReadFile(name string) ([]byte, error) {
	if p.external != nil {
		return p.readExternal(name)
	}

	if i, ok := p.index[name]; ok {
		return append([]byte(nil), p.entries[i].data...), nil
	}

	for _, entry := range p.entries {
		if strings.EqualFold(entry.name, name) {
			return append([]byte(nil), entry.data...), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrPakEntryNotFound, name)
}

func (p *Pakfile) readExternal(name string) ([]byte, error) {
	for _, zf := range p.external.File {
		if !strings.EqualFold(zf.Name, name) || zf.FileInfo().IsDir() {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("pakfile entry %s: %w", name, err)
		}

		content, err := io.ReadAll(rc)
		closeErr := rc.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, fmt.Errorf("pakfile entry %s: %w", name, err)
		}

		return content, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrPakEntryNotFound, name)
}

// WriteFile stores an entry, replacing any existing one with the same
// name. New entries are written uncompressed so the engine can seek them.
func (p *Pakfile) WriteFile(name string, data []byte) error {
	if p.external != nil {
		return ErrPakfileNotMemory
	}

	p.put(&pakEntry{name: name, data: append([]byte(nil), data...), method: zip.Store})

	return nil
}

// Remove deletes an entry by exact name.
func (p *Pakfile) Remove(name string) error {
	if p.external != nil {
		return ErrPakfileNotMemory
	}

	i, ok := p.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPakEntryNotFound, name)
	}

	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	delete(p.index, name)
	for j := i; j < len(p.entries); j++ {
		p.index[p.entries[j].name] = j
	}

	return nil
}

// Match returns entry names selected by the compiled rule set, in archive
// order.
func (p *Pakfile) Match(rules []pathrules.Rule, opts pathrules.MatcherOptions) ([]string, error) {
	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("compile pak rules: %w", err)
	}

	var out []string
	for _, name := range p.Files() {
		if matcher.Included(normalizePakPath(name), false) {
			out = append(out, name)
		}
	}

	return out, nil
}

// Extract writes the named entries under dstDir, creating parent
// directories as needed. Names with absolute or traversal components are
// rejected before anything is written. A nil names slice extracts every
// entry.
func (p *Pakfile) Extract(dstDir string, names []string) error {
	if names == nil {
		names = p.Files()
	}

	dstRoot, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	type item struct {
		name string
		rel  string
	}

	items := make([]item, 0, len(names))
	for _, name := range names {
		rel, err := safePakRelPath(name)
		if err != nil {
			return err
		}

		items = append(items, item{name: name, rel: rel})
	}

	if err := os.MkdirAll(dstRoot, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, it := range items {
		content, err := p.ReadFile(it.name)
		if err != nil {
			return err
		}

		outPath := filepath.Join(dstRoot, it.rel)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", filepath.Dir(outPath), err)
		}

		if err := os.WriteFile(outPath, content, 0o640); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
	}

	return nil
}

// normalizePakPath lowercases and forward-slashes a pak path for rule
// matching.
func normalizePakPath(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, `\`, `/`))
}

// safePakRelPath converts an entry name into a relative filesystem path,
// rejecting anything that would escape the extraction root.
func safePakRelPath(name string) (string, error) {
	raw := strings.TrimSpace(name)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: %q", ErrPakPathOutsideRoot, name)
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", fmt.Errorf("%w: %q", ErrPakPathOutsideRoot, name)
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if len(raw) >= 2 && raw[1] == ':' {
		return "", fmt.Errorf("%w: %q", ErrPakPathOutsideRoot, name)
	}

	parts := strings.Split(raw, `/`)
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: %q", ErrPakPathOutsideRoot, name)
		default:
			clean = append(clean, part)
		}
	}
	if len(clean) == 0 {
		return "", fmt.Errorf("%w: %q", ErrPakPathOutsideRoot, name)
	}

	return filepath.FromSlash(strings.Join(clean, `/`)), nil
}
