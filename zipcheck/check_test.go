// Copyright 2026 xultaeculcis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package zipcheck

import (
	"archive/zip"
	"bytes"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	kzip "github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

type fixtureEntry struct {
	name    string
	content string
}

var lightFrames = []fixtureEntry{
	{name: "M31_Light_HA_120s_001.fits", content: "hydrogen alpha frame data, hydrogen alpha frame data"},
	{name: "M31_Light_OIII_120s_001.fits", content: "oxygen three frame data, oxygen three frame data"},
}

func writeZip(t *testing.T, path string, method uint16, entries []fixtureEntry) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: method})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeZstdZip(t *testing.T, path string, entries []fixtureEntry) {
	t.Helper()
	var buf bytes.Buffer
	w := kzip.NewWriter(&buf)
	w.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	for _, e := range entries {
		fw, err := w.CreateHeader(&kzip.FileHeader{Name: e.name, Method: zstd.ZipMethodWinZip})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeRawZip stores content under a compression method no reader knows.
func writeRawZip(t *testing.T, path string, method uint16, e fixtureEntry) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.CreateRaw(&zip.FileHeader{
		Name:               e.name,
		Method:             method,
		CRC32:              crc32.ChecksumIEEE([]byte(e.content)),
		CompressedSize64:   uint64(len(e.content)),
		UncompressedSize64: uint64(len(e.content)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(e.content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// flipEntryByte corrupts the first data byte of the named stored entry.
func flipEntryByte(t *testing.T, path, name string) {
	t.Helper()
	rc, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	var offset int64 = -1
	for _, f := range rc.File {
		if f.Name == name {
			if offset, err = f.DataOffset(); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := rc.Close(); err != nil {
		t.Fatal(err)
	}
	if offset < 0 {
		t.Fatalf("entry %s not found", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[offset] ^= 0xff
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCheckValidArchive(t *testing.T) {
	for _, method := range []uint16{zip.Store, zip.Deflate} {
		path := filepath.Join(t.TempDir(), "M31_scope1_120_a.zip")
		writeZip(t, path, method, lightFrames)
		if err := CheckFast(path); err != nil {
			t.Errorf("method %d: CheckFast: %v", method, err)
		}
		if err := CheckFull(path); err != nil {
			t.Errorf("method %d: CheckFull: %v", method, err)
		}
	}
}

func TestCheckCorruptedEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "M31_scope1_120_a.zip")
	writeZip(t, path, zip.Store, lightFrames)
	flipEntryByte(t, path, lightFrames[1].name)

	if err := CheckFast(path); err != nil {
		t.Fatalf("fast check reads metadata only, got %v", err)
	}

	err := CheckFull(path)
	var corrupted *CorruptedEntryError
	if !errors.As(err, &corrupted) {
		t.Fatalf("expected CorruptedEntryError, got %v", err)
	}
	if corrupted.Entry != lightFrames[1].name {
		t.Fatalf("wrong entry reported: %q", corrupted.Entry)
	}
	if corrupted.Path != path {
		t.Fatalf("wrong path reported: %q", corrupted.Path)
	}
	if !errors.Is(err, zip.ErrChecksum) {
		t.Fatalf("expected checksum error, got %v", err)
	}
	if !IsValidationError(err) {
		t.Fatal("expected a validation error")
	}
}

func TestCheckBadArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	if err := os.WriteFile(path, []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, mode := range []Mode{ModeFast, ModeFull} {
		err := Check(path, mode)
		var bad *BadArchiveError
		if !errors.As(err, &bad) {
			t.Fatalf("%s: expected BadArchiveError, got %v", mode, err)
		}
		if bad.Path != path {
			t.Fatalf("%s: wrong path %q", mode, bad.Path)
		}
	}
}

func TestCheckMissingFile(t *testing.T) {
	err := CheckFast(filepath.Join(t.TempDir(), "missing.zip"))
	var unknown *UnknownError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}

func TestCheckZstdFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zstd.zip")
	writeZstdZip(t, path, lightFrames)

	res := openArchive(path)
	if res.kind != unsupportedCompression {
		t.Fatalf("expected unsupported compression, got kind %d (%v)", res.kind, res.err)
	}
	if res.method != zstd.ZipMethodWinZip || res.entry != lightFrames[0].name {
		t.Fatalf("unexpected method %d entry %q", res.method, res.entry)
	}

	if err := CheckFast(path); err != nil {
		t.Fatalf("CheckFast: %v", err)
	}
	if err := CheckFull(path); err != nil {
		t.Fatalf("CheckFull: %v", err)
	}
	names, err := EntryNames(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[1] != lightFrames[1].name {
		t.Fatalf("EntryNames()=%v", names)
	}
}

// copyTestdata copies a fixture archive into a temporary directory.
func copyTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// corruptEntryMiddle flips a byte halfway through the compressed data of
// the named entry, past any per-entry coder header.
func corruptEntryMiddle(t *testing.T, path, name string) {
	t.Helper()
	rc, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	var offset int64 = -1
	for _, f := range rc.File {
		if f.Name == name {
			if offset, err = f.DataOffset(); err != nil {
				t.Fatal(err)
			}
			offset += int64(f.CompressedSize64 / 2)
		}
	}
	if err := rc.Close(); err != nil {
		t.Fatal(err)
	}
	if offset < 0 {
		t.Fatalf("entry %s not found", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[offset] ^= 0x55
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCheckLegacyMethods(t *testing.T) {
	for _, tc := range []struct {
		fixture string
		method  uint16
	}{
		{fixture: "bzip2.zip", method: methodBzip2},
		{fixture: "lzma.zip", method: methodLZMA},
	} {
		t.Run(tc.fixture, func(t *testing.T) {
			path := copyTestdata(t, tc.fixture)

			res := openArchive(path)
			if res.kind != unsupportedCompression || res.method != tc.method {
				t.Fatalf("expected unsupported method %d, got kind %d method %d (%v)", tc.method, res.kind, res.method, res.err)
			}
			if err := CheckFast(path); err != nil {
				t.Fatalf("CheckFast: %v", err)
			}
			if err := CheckFull(path); err != nil {
				t.Fatalf("CheckFull: %v", err)
			}

			corruptEntryMiddle(t, path, "M31_Light_OIII_120s_001.fits")
			if err := CheckFast(path); err != nil {
				t.Fatalf("CheckFast after corruption: %v", err)
			}
			err := CheckFull(path)
			var corrupted *CorruptedEntryError
			if !errors.As(err, &corrupted) {
				t.Fatalf("expected CorruptedEntryError, got %v", err)
			}
			if corrupted.Entry != "M31_Light_OIII_120s_001.fits" {
				t.Fatalf("unexpected entry %q", corrupted.Entry)
			}
		})
	}
}

func TestCheckLZMABadProperties(t *testing.T) {
	path := copyTestdata(t, "lzma.zip")
	rc, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	offset, err := rc.File[0].DataOffset()
	if closeErr := rc.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// properties length field following the encoder version
	data[offset+2] = 9
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	err = CheckFull(path)
	var corrupted *CorruptedEntryError
	if !errors.As(err, &corrupted) {
		t.Fatalf("expected CorruptedEntryError, got %v", err)
	}
	if !errors.Is(err, kzip.ErrFormat) {
		t.Fatalf("expected ErrFormat cause, got %v", err)
	}
}

func TestCheckUndecodableMethod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aes.zip")
	writeRawZip(t, path, 99, lightFrames[0])

	if err := CheckFast(path); err != nil {
		t.Fatalf("CheckFast: %v", err)
	}
	err := CheckFull(path)
	var unknown *UnknownError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownError, got %v", err)
	}
	if !errors.Is(err, kzip.ErrAlgorithm) {
		t.Fatalf("expected ErrAlgorithm cause, got %v", err)
	}
}

func TestFindArchives(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.zip", "a.ZIP", "sub/c.zip", "notes.txt", "sub/d.zip.part"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := FindArchives(dir)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		filepath.Join(dir, "a.ZIP"),
		filepath.Join(dir, "b.zip"),
		filepath.Join(dir, "sub", "c.zip"),
	}
	if len(paths) != len(expected) {
		t.Fatalf("FindArchives()=%v", paths)
	}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Fatalf("FindArchives()[%d]=%q want %q", i, paths[i], expected[i])
		}
	}
}
