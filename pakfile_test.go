// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/woozymasta/pathrules"
)

func TestPakfileEditRoundTrip(t *testing.T) {
	t.Parallel()

	b := newTestBSP(21)

	pak, err := b.Pak()
	if err != nil {
		t.Fatalf("pak: %v", err)
	}
	if len(pak.Files()) != 0 {
		t.Fatalf("empty lump decoded to entries: %v", pak.Files())
	}

	if err := pak.WriteFile("materials/a.vmt", []byte("aaa")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := pak.WriteFile("sound/b.wav", []byte("bbb")); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, err := b.encodePakfile(pak)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	re, err := b.decodePakfile(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	files := re.Files()
	if len(files) != 2 || files[0] != "materials/a.vmt" || files[1] != "sound/b.wav" {
		t.Fatalf("files = %v", files)
	}

	content, err := re.ReadFile("materials/a.vmt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(content, []byte("aaa")) {
		t.Fatalf("content = %q", content)
	}

	// Engine-style case-insensitive lookup.
	if _, err := re.ReadFile("SOUND/B.WAV"); err != nil {
		t.Fatalf("case-insensitive read: %v", err)
	}

	if _, err := re.ReadFile("missing.txt"); !errors.Is(err, ErrPakEntryNotFound) {
		t.Fatalf("err = %v, want ErrPakEntryNotFound", err)
	}
}

func TestPakfileWriteReplacesAndRemoves(t *testing.T) {
	t.Parallel()

	pak := NewPakfile()
	if err := pak.WriteFile("a.txt", []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := pak.WriteFile("b.txt", []byte("two")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := pak.WriteFile("a.txt", []byte("three")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	if got := pak.Files(); len(got) != 2 {
		t.Fatalf("files = %v", got)
	}
	content, err := pak.ReadFile("a.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(content) != "three" {
		t.Fatalf("content = %q", content)
	}

	if err := pak.Remove("a.txt"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := pak.Remove("a.txt"); !errors.Is(err, ErrPakEntryNotFound) {
		t.Fatalf("err = %v, want ErrPakEntryNotFound", err)
	}

	if got := pak.Files(); len(got) != 1 || got[0] != "b.txt" {
		t.Fatalf("files = %v", got)
	}
}

func TestPakfileKeepsCompressionMethod(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "scripts/x.txt", Method: zip.Deflate})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := w.Write(bytes.Repeat([]byte("compress me "), 50)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b := newTestBSP(21)
	pak, err := b.decodePakfile(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	raw, err := b.encodePakfile(pak)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if zr.File[0].Method != zip.Deflate {
		t.Fatalf("method = %d, want deflate", zr.File[0].Method)
	}
}

func TestSetPakRejectsExternalArchive(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("x"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ext, err := OpenPakfile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open pakfile: %v", err)
	}

	b := newTestBSP(21)
	if err := b.SetPak(ext); !errors.Is(err, ErrPakfileNotMemory) {
		t.Fatalf("err = %v, want ErrPakfileNotMemory", err)
	}
	if err := ext.WriteFile("y", nil); !errors.Is(err, ErrPakfileNotMemory) {
		t.Fatalf("write err = %v, want ErrPakfileNotMemory", err)
	}

	if err := b.SetPak(NewPakfile()); err != nil {
		t.Fatalf("set memory pak: %v", err)
	}
}

func TestPakfileMatch(t *testing.T) {
	t.Parallel()

	pak := NewPakfile()
	for _, name := range []string{
		"materials/walls/brick.vmt",
		"materials/walls/brick.vtf",
		"sound/ambient/wind.wav",
		"Materials/Floor/TILE.vmt",
	} {
		if err := pak.WriteFile(name, []byte("x")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	matched, err := pak.Match([]pathrules.Rule{
		{Action: pathrules.ActionInclude, Pattern: "materials/**/*.vmt"},
	}, pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		t.Fatalf("match: %v", err)
	}

	if len(matched) != 2 || matched[0] != "materials/walls/brick.vmt" || matched[1] != "Materials/Floor/TILE.vmt" {
		t.Fatalf("matched = %v", matched)
	}
}

func TestPakfileExtract(t *testing.T) {
	t.Parallel()

	pak := NewPakfile()
	if err := pak.WriteFile("materials/sub/a.vmt", []byte("alpha")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := pak.WriteFile("root.txt", []byte("beta")); err != nil {
		t.Fatalf("write: %v", err)
	}

	dst := t.TempDir()
	if err := pak.Extract(dst, nil); err != nil {
		t.Fatalf("extract: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dst, "materials", "sub", "a.vmt"))
	if err != nil {
		t.Fatalf("read extracted: %v", err)
	}
	if string(content) != "alpha" {
		t.Fatalf("content = %q", content)
	}

	if _, err := os.Stat(filepath.Join(dst, "root.txt")); err != nil {
		t.Fatalf("stat extracted: %v", err)
	}
}

func TestPakfileExtractRejectsTraversal(t *testing.T) {
	t.Parallel()

	pak := NewPakfile()
	if err := pak.WriteFile("../escape.txt", []byte("nope")); err != nil {
		t.Fatalf("write: %v", err)
	}

	dst := t.TempDir()
	if err := pak.Extract(dst, nil); !errors.Is(err, ErrPakPathOutsideRoot) {
		t.Fatalf("err = %v, want ErrPakPathOutsideRoot", err)
	}

	// Nothing may be written before validation finishes.
	entries, err := os.ReadDir(dst)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("files written despite rejection: %v", entries)
	}

	for _, name := range []string{"/abs.txt", `C:/win.txt`, "..", ""} {
		if err := pak.Extract(dst, []string{name}); !errors.Is(err, ErrPakPathOutsideRoot) {
			t.Fatalf("%q err = %v, want ErrPakPathOutsideRoot", name, err)
		}
	}
}
