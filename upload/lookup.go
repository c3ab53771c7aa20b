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

package upload

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/retailnext/writefile"
)

// PathSet holds slash-separated paths relative to the upload source.
type PathSet map[string]struct{}

func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

func (s PathSet) Add(p string) {
	s[p] = struct{}{}
}

func (s PathSet) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// Difference returns the members of s missing from other.
func (s PathSet) Difference(other PathSet) PathSet {
	d := make(PathSet)
	for p := range s {
		if !other.Has(p) {
			d.Add(p)
		}
	}
	return d
}

func (s PathSet) Sorted() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// OutsideSourceError is returned for lookup entries that do not resolve to a
// path inside the source directory.
type OutsideSourceError struct {
	Line int
	Path string
}

func (e *OutsideSourceError) Error() string {
	return fmt.Sprintf("lookup line %d: %s is outside the source directory", e.Line, e.Path)
}

// relativeTo converts p, absolute or relative to sourceDir, into a clean
// slash-separated path inside sourceDir.
func relativeTo(sourceDir, p string) (string, bool) {
	native := filepath.FromSlash(p)
	if filepath.IsAbs(native) {
		rel, err := filepath.Rel(sourceDir, native)
		if err != nil {
			return "", false
		}
		native = rel
	}
	rel := path.Clean(filepath.ToSlash(native))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", false
	}
	return rel, true
}

// ReadLookupFile parses one path per line. Blank lines are skipped.
func ReadLookupFile(lookupFile, sourceDir string) (PathSet, error) {
	f, err := os.Open(lookupFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set := make(PathSet)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		rel, ok := relativeTo(sourceDir, text)
		if !ok {
			return nil, &OutsideSourceError{Line: line, Path: text}
		}
		set.Add(rel)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// WriteLookupFile atomically replaces lookupFile with the absolute,
// slash-separated form of every path in set, sorted.
func WriteLookupFile(lookupFile, sourceDir string, set PathSet) error {
	dir := filepath.Dir(lookupFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	target := writefile.Config{
		Directory:     dir,
		DirectoryMode: 0755,
		FileMode:      0644,
	}
	return target.WriteFile(filepath.Base(lookupFile), func(file *os.File) error {
		w := bufio.NewWriter(file)
		for _, rel := range set.Sorted() {
			abs := filepath.ToSlash(filepath.Join(sourceDir, filepath.FromSlash(rel)))
			if _, err := w.WriteString(abs + "\n"); err != nil {
				return err
			}
		}
		return w.Flush()
	})
}

// WalkSource lists every regular file below sourceDir.
func WalkSource(sourceDir string) (PathSet, error) {
	set := make(PathSet)
	err := filepath.WalkDir(sourceDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, ok := relativeTo(sourceDir, p)
		if !ok {
			return errors.New("walked outside source directory: " + p)
		}
		set.Add(rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}
