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

package paranoid

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadAll(t *testing.T) {
	path := writeTestFile(t, "a.zip", "hello world")
	file, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if file.Len() != 11 {
		t.Fatalf("Len()=%d", file.Len())
	}
	data, err := file.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Fatalf("ReadAll()=%q", data)
	}
}

func TestReadAllModified(t *testing.T) {
	path := writeTestFile(t, "a.zip", "hello world")
	file, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("hello world, again"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = file.ReadAll()
	var mismatch *FingerprintMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected fingerprint mismatch, got %v", err)
	}
}

func TestCacheEntry(t *testing.T) {
	path := writeTestFile(t, "a.zip", "content")
	file, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	value := file.WrapCacheEntry([]byte("payload"))
	if got := file.UnwrapCacheEntry(file.CacheKey(), value); !bytes.Equal(got, []byte("payload")) {
		t.Fatalf("UnwrapCacheEntry()=%q", got)
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	touched, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := touched.UnwrapCacheEntry(touched.CacheKey(), value); got != nil {
		t.Fatalf("expected stale entry to be rejected, got %q", got)
	}
	if got := file.UnwrapCacheEntry([]byte("other"), value); got != nil {
		t.Fatalf("expected key mismatch to be rejected, got %q", got)
	}
}

func TestRenameNoReplace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.zip")
	dst := filepath.Join(dir, "dst.zip")
	if err := os.WriteFile(src, []byte("src"), 0o644); err != nil {
		t.Fatal(err)
	}
	file, err := NewFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := file.RenameNoReplace(dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "src" {
		t.Fatalf("dst content %q", data)
	}
}

func TestRenameNoReplaceExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.zip")
	dst := filepath.Join(dir, "dst.zip")
	if err := os.WriteFile(src, []byte("src"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("dst"), 0o644); err != nil {
		t.Fatal(err)
	}
	file, err := NewFile(src)
	if err != nil {
		t.Fatal(err)
	}
	err = file.RenameNoReplace(dst)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "dst" {
		t.Fatalf("destination was overwritten: %q", data)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source lost: %v", err)
	}
}

func TestFileRenameNoReplaceModified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.zip")
	if err := os.WriteFile(src, []byte("src"), 0o644); err != nil {
		t.Fatal(err)
	}
	file, err := NewFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("changed content"), 0o644); err != nil {
		t.Fatal(err)
	}
	err = file.RenameNoReplace(filepath.Join(dir, "dst.zip"))
	var mismatch *FingerprintMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected fingerprint mismatch, got %v", err)
	}
}
