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

// Package dirs creates a directory tree from a list of names.
package dirs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xultaeculcis/astrotools/batch"
	"go.uber.org/zap"
)

type Options struct {
	NamesFile string
	TargetDir string
}

type InvalidNameError struct {
	Line int
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("line %d: %q is not a relative name inside the target directory", e.Line, e.Name)
}

type Name struct {
	Line  int
	Value string
}

// ReadNames returns the non-blank lines of namesFile with surrounding
// whitespace removed.
func ReadNames(namesFile string) ([]Name, error) {
	f, err := os.Open(namesFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var names []Name
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		value := strings.TrimSpace(scanner.Text())
		if value == "" {
			continue
		}
		names = append(names, Name{Line: line, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func resolve(targetDir string, name Name) (string, error) {
	if filepath.IsAbs(name.Value) {
		return "", &InvalidNameError{Line: name.Line, Name: name.Value}
	}
	rel := filepath.Clean(filepath.FromSlash(name.Value))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &InvalidNameError{Line: name.Line, Name: name.Value}
	}
	return filepath.Join(targetDir, rel), nil
}

// DoCreate creates TargetDir and one directory per name below it. Existing
// directories are left alone. Invalid names and mkdir failures are collected
// and returned together after every other name has been processed.
func DoCreate(lgr *zap.SugaredLogger, opts Options, progress batch.Progress) (int, error) {
	names, err := ReadNames(opts.NamesFile)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(opts.TargetDir, 0o755); err != nil {
		return 0, err
	}
	lgr.Infow("create_dirs_start", "names", len(names), "target_dir", opts.TargetDir)

	if progress != nil {
		progress.Start(len(names))
		defer progress.Finish()
	}

	created := 0
	failed := make(batch.FileErrors)
	for _, name := range names {
		result := batch.Result{Path: name.Value}
		var path string
		path, result.Err = resolve(opts.TargetDir, name)
		if result.Err == nil {
			result.Err = os.MkdirAll(path, 0o755)
		}
		if result.Err != nil {
			lgr.Errorw("create_dir_error", "name", name.Value, "line", name.Line, "err", result.Err)
			failed[name.Value] = result.Err
		} else {
			created++
		}
		if progress != nil {
			progress.Advance(result)
		}
	}

	lgr.Infow("create_dirs_done", "created", created, "failed", len(failed))
	return created, failed.Err()
}
