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
	"errors"
	"io"

	kzip "github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

type openKind int

const (
	opened openKind = iota
	badArchive
	unsupportedCompression
	openFailed
)

// openResult is the outcome of opening an archive with the standard reader.
// reader is only set for opened; method and entry only for
// unsupportedCompression.
type openResult struct {
	kind   openKind
	reader *zip.ReadCloser
	method uint16
	entry  string
	err    error
}

func openArchive(path string) openResult {
	rc, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) || errors.Is(err, io.ErrUnexpectedEOF) {
			return openResult{kind: badArchive, err: err}
		}
		return openResult{kind: openFailed, err: err}
	}
	for _, f := range rc.File {
		if !standardMethod(f.Method) {
			_ = rc.Close()
			return openResult{kind: unsupportedCompression, method: f.Method, entry: f.Name}
		}
	}
	return openResult{kind: opened, reader: rc}
}

func standardMethod(method uint16) bool {
	return method == zip.Store || method == zip.Deflate
}

// openFallback opens the archive with a reader that also understands zstd
// and bzip2 entries. LZMA entries are decoded by fallbackEntries.
func openFallback(path string) (*kzip.ReadCloser, error) {
	rc, err := kzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	rc.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	rc.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())
	rc.RegisterDecompressor(methodBzip2, bzip2Decompressor)
	return rc, nil
}

type entry struct {
	name string
	open func() (io.ReadCloser, error)
}

func standardEntries(files []*zip.File) []entry {
	entries := make([]entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, entry{name: f.Name, open: f.Open})
	}
	return entries
}

func fallbackEntries(files []*kzip.File) []entry {
	entries := make([]entry, 0, len(files))
	for _, f := range files {
		e := entry{name: f.Name, open: f.Open}
		if f.Method == methodLZMA {
			e.open = func() (io.ReadCloser, error) {
				return openLZMA(f)
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// EntryNames lists the names in the archive's central directory.
func EntryNames(path string) ([]string, error) {
	res := openArchive(path)
	switch res.kind {
	case opened:
		defer res.reader.Close()
		names := make([]string, 0, len(res.reader.File))
		for _, f := range res.reader.File {
			names = append(names, f.Name)
		}
		return names, nil
	case unsupportedCompression:
		rc, err := openFallback(path)
		if err != nil {
			return nil, &UnknownError{Path: path, Err: err}
		}
		defer rc.Close()
		names := make([]string, 0, len(rc.File))
		for _, f := range rc.File {
			names = append(names, f.Name)
		}
		return names, nil
	case badArchive:
		return nil, &BadArchiveError{Path: path, Err: res.err}
	default:
		return nil, &UnknownError{Path: path, Err: res.err}
	}
}
