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

// Package rename gives telescope archives names derived from the channels
// found inside them.
package rename

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xultaeculcis/astrotools/batch"
	"github.com/xultaeculcis/astrotools/metrics"
	"github.com/xultaeculcis/astrotools/paranoid"
	"github.com/xultaeculcis/astrotools/zipcheck"
	"go.uber.org/zap"
)

// NamingPatternMismatch is returned for archives whose name is not
// target_telescope_frames_suffix.
type NamingPatternMismatch struct {
	Path string
	Stem string
}

func (e *NamingPatternMismatch) Error() string {
	return fmt.Sprintf("file name does not match target_telescope_frames_suffix: %s", e.Path)
}

// BaseName builds target_telescope_channels_frames from an archive stem.
func BaseName(path, channels string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fields := strings.Split(stem, "_")
	if len(fields) != 4 {
		return "", &NamingPatternMismatch{Path: path, Stem: stem}
	}
	target, telescope, frames := fields[0], fields[1], fields[2]
	return fmt.Sprintf("%s_%s_%s_%s", target, telescope, channels, frames), nil
}

type Move struct {
	From string
	To   string

	file paranoid.File
}

type Plan struct {
	Moves  []Move
	Errors batch.FileErrors
}

type group struct {
	base  string
	files []paranoid.File
}

// MakePlan inspects archives in the given order and assigns each a new name
// in its own directory. Archives sharing a base name, wherever they are, get
// -1, -2, ... in that order. Archives that cannot be read or named are recorded in Errors.
func MakePlan(lgr *zap.SugaredLogger, paths []string) Plan {
	plan := Plan{Errors: make(batch.FileErrors)}
	var groups []*group
	byBase := make(map[string]*group)

	for _, path := range paths {
		file, err := paranoid.NewFile(path)
		if err != nil {
			lgr.Errorw("rename_stat_error", "path", path, "err", err)
			plan.Errors[path] = err
			continue
		}
		names, err := zipcheck.EntryNames(path)
		if err != nil {
			lgr.Errorw("rename_open_error", "path", path, "err", err)
			plan.Errors[path] = err
			continue
		}
		base, err := BaseName(path, ChannelCombination(names))
		if err != nil {
			lgr.Errorw("rename_pattern_mismatch", "path", path, "err", err)
			plan.Errors[path] = err
			continue
		}
		g, ok := byBase[base]
		if !ok {
			g = &group{base: base}
			byBase[base] = g
			groups = append(groups, g)
		}
		g.files = append(g.files, file)
	}

	for _, g := range groups {
		for i, file := range g.files {
			name := g.base + ".zip"
			if len(g.files) > 1 {
				name = fmt.Sprintf("%s-%d.zip", g.base, i+1)
			}
			plan.Moves = append(plan.Moves, Move{
				From: file.Name(),
				To:   filepath.Join(filepath.Dir(file.Name()), name),
				file: file,
			})
		}
	}
	return plan
}

type Options struct {
	DataDir string
	DryRun  bool
}

type Outcome struct {
	Renamed []Move
	Errors  batch.FileErrors
}

// DoRename renames every archive under opts.DataDir. It never overwrites an
// existing file; a failed rename is recorded and the others continue.
func DoRename(ctx context.Context, lgr *zap.SugaredLogger, opts Options) (Outcome, error) {
	paths, err := zipcheck.FindArchives(opts.DataDir)
	if err != nil {
		return Outcome{}, err
	}
	lgr.Infow("found_archives", "count", len(paths), "directory", opts.DataDir)

	plan := MakePlan(lgr, paths)
	outcome := Outcome{Errors: plan.Errors}

	for _, move := range plan.Moves {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		if move.From == move.To {
			lgr.Debugw("rename_unchanged", "path", move.From)
			continue
		}
		if opts.DryRun {
			lgr.Infow("rename_planned", "from", filepath.Base(move.From), "to", filepath.Base(move.To), "dir", filepath.Dir(move.From))
			outcome.Renamed = append(outcome.Renamed, move)
			continue
		}
		if err := renameArchive(move); err != nil {
			metrics.Rename.RenameErrors.Inc()
			lgr.Errorw("rename_error", "from", move.From, "to", move.To, "err", err)
			outcome.Errors[move.From] = err
			continue
		}
		metrics.Rename.RenamedFiles.Inc()
		lgr.Infow("renamed", "from", filepath.Base(move.From), "to", filepath.Base(move.To), "dir", filepath.Dir(move.From))
		outcome.Renamed = append(outcome.Renamed, move)
	}

	lgr.Infow("rename_done", "renamed", len(outcome.Renamed), "errors", len(outcome.Errors), "dry_run", opts.DryRun)
	return outcome, outcome.Errors.Err()
}

func renameArchive(move Move) error {
	err := move.file.RenameNoReplace(move.To)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("refusing to overwrite %s: %w", move.To, err)
	}
	return err
}
