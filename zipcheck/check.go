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
	"fmt"
	"io"

	kzip "github.com/klauspost/compress/zip"
)

type Mode int

const (
	// ModeFast only reads the central directory.
	ModeFast Mode = iota
	// ModeFull decompresses every entry and verifies its CRC-32.
	ModeFull
)

func (m Mode) String() string {
	switch m {
	case ModeFast:
		return "fast"
	case ModeFull:
		return "full"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Check runs the check selected by mode.
func Check(path string, mode Mode) error {
	if mode == ModeFull {
		return CheckFull(path)
	}
	return CheckFast(path)
}

// CheckFast verifies that the archive opens and its entry table can be
// enumerated. Entry data is not read.
func CheckFast(path string) error {
	res := openArchive(path)
	switch res.kind {
	case opened:
		defer res.reader.Close()
		return nil
	case unsupportedCompression:
		rc, err := openFallback(path)
		if err != nil {
			return &UnknownError{Path: path, Err: err}
		}
		return rc.Close()
	case badArchive:
		return &BadArchiveError{Path: path, Err: res.err}
	default:
		return &UnknownError{Path: path, Err: res.err}
	}
}

// CheckFull reads every entry to the end, which makes the reader verify the
// stored CRC-32. It stops at the first bad entry.
func CheckFull(path string) error {
	res := openArchive(path)
	switch res.kind {
	case opened:
		defer res.reader.Close()
		return testEntries(path, standardEntries(res.reader.File))
	case unsupportedCompression:
		rc, err := openFallback(path)
		if err != nil {
			return &UnknownError{Path: path, Err: err}
		}
		defer rc.Close()
		return testEntries(path, fallbackEntries(rc.File))
	case badArchive:
		return &BadArchiveError{Path: path, Err: res.err}
	default:
		return &UnknownError{Path: path, Err: res.err}
	}
}

func testEntries(path string, entries []entry) error {
	for _, e := range entries {
		if err := testEntry(path, e); err != nil {
			return err
		}
	}
	return nil
}

func testEntry(path string, e entry) error {
	r, err := e.open()
	if err != nil {
		if errors.Is(err, zip.ErrAlgorithm) || errors.Is(err, kzip.ErrAlgorithm) {
			return &UnknownError{Path: path, Err: fmt.Errorf("entry %q: %w", e.name, err)}
		}
		return &CorruptedEntryError{Path: path, Entry: e.name, Err: err}
	}
	_, err = io.Copy(io.Discard, r)
	if closeErr := r.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &CorruptedEntryError{Path: path, Entry: e.name, Err: err}
	}
	return nil
}
