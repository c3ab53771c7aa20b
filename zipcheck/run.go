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
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xultaeculcis/astrotools/batch"
	"github.com/xultaeculcis/astrotools/cache"
	"github.com/xultaeculcis/astrotools/metrics"
	"github.com/xultaeculcis/astrotools/paranoid"
	"github.com/xultaeculcis/astrotools/progress"
	"github.com/xultaeculcis/astrotools/report"
	"go.uber.org/zap"
)

const DefaultWorkers = 2

type Options struct {
	Directory  string
	Mode       Mode
	Workers    int
	CacheFile  string
	// TrustCache lets a full check skip archives recorded as verified by an
	// earlier full check. Full checks look for bit rot, which leaves size
	// and mtime alone, so they re-read every archive unless this is set.
	TrustCache bool
	ReportFile string
	RunID      string
}

type Summary struct {
	Checked   int
	Bytes     int64
	Elapsed   time.Duration
	Corrupted batch.FileErrors
}

// FindArchives walks root and returns every file with a .zip extension,
// matched case-insensitively, in lexicographic order.
func FindArchives(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ".zip") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

type Checker struct {
	lgr        *zap.SugaredLogger
	mode       Mode
	cache      *VerifiedCache
	trustCache bool
}

// NewChecker returns a Checker. cache may be nil. Passing archives are
// always recorded in cache; a full check only consults it when trustCache
// is set.
func NewChecker(lgr *zap.SugaredLogger, mode Mode, cache *VerifiedCache, trustCache bool) *Checker {
	return &Checker{
		lgr:        lgr,
		mode:       mode,
		cache:      cache,
		trustCache: trustCache,
	}
}

// Check validates one archive. It has the shape of a batch.Op.
func (c *Checker) Check(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	mode := c.mode.String()
	file, err := paranoid.NewFile(path)
	if err != nil {
		return 0, &UnknownError{Path: path, Err: err}
	}
	if c.mode == ModeFast || c.trustCache {
		if at, ok := c.cache.Verified(file, c.mode); ok {
			metrics.Archive.CachedFiles.Inc()
			c.lgr.Debugw("check_cached", "path", path, "verified_at", at.String())
			return file.Len(), nil
		}
	}

	metrics.Archive.CheckedFiles.WithLabelValues(mode).Inc()
	if err := Check(path, c.mode); err != nil {
		metrics.Archive.CorruptedFiles.WithLabelValues(mode).Inc()
		c.lgr.Errorw("check_failed", "path", path, "mode", mode, "err", err)
		return 0, err
	}
	if err := file.Check(); err != nil {
		return 0, &UnknownError{Path: path, Err: err}
	}
	metrics.Archive.CheckedBytes.WithLabelValues(mode).Add(float64(file.Len()))
	if err := c.cache.MarkVerified(file, c.mode); err != nil {
		c.lgr.Warnw("check_cache_put_error", "path", path, "err", err)
	}
	c.lgr.Infow("check_ok", "path", path, "mode", mode)
	return file.Len(), nil
}

// DoCheck validates every archive under opts.Directory and logs a summary of
// the corrupted ones. The returned Summary is valid even when err is not nil.
func DoCheck(ctx context.Context, lgr *zap.SugaredLogger, opts Options) (Summary, error) {
	started := time.Now()
	var summary Summary

	paths, err := FindArchives(opts.Directory)
	if err != nil {
		return summary, err
	}
	lgr.Infow("found_archives", "count", len(paths), "directory", opts.Directory, "mode", opts.Mode.String())

	var verified *VerifiedCache
	if opts.CacheFile != "" {
		storage, err := cache.Open(lgr, opts.CacheFile, cache.Options{})
		if err != nil {
			return summary, err
		}
		defer func() {
			if closeErr := storage.Close(); closeErr != nil {
				lgr.Warnw("cache_close_error", "err", closeErr)
			}
		}()
		verified = NewVerifiedCache(storage)
	}

	checker := NewChecker(lgr, opts.Mode, verified, opts.TrustCache)
	results := batch.Run(ctx, lgr, paths, opts.Workers, checker.Check, progress.New(lgr, "checking zip files"))

	summary.Checked = results.Len()
	summary.Bytes = results.TotalBytes()
	summary.Elapsed = time.Since(started)
	summary.Corrupted = corrupted(results)
	logSummary(lgr, summary)

	if opts.ReportFile != "" {
		r := report.FromResults(opts.RunID, "zip check", started, results)
		if err := report.Write(opts.ReportFile, r); err != nil {
			return summary, err
		}
		lgr.Infow("report_written", "path", opts.ReportFile)
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, summary.Corrupted.Err()
}

// corrupted drops items that never ran because the run was interrupted.
func corrupted(results batch.Results) batch.FileErrors {
	failed := results.Failed()
	for path, err := range failed {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			delete(failed, path)
		}
	}
	return failed
}

func logSummary(lgr *zap.SugaredLogger, summary Summary) {
	if len(summary.Corrupted) == 0 {
		lgr.Infow("no_corrupted_archives", "checked", summary.Checked, "elapsed", summary.Elapsed)
		return
	}
	for _, path := range summary.Corrupted.Paths() {
		lgr.Infow("corrupted_archive", "path", path)
	}
	lgr.Infow("corrupted_archives_total", "count", len(summary.Corrupted), "checked", summary.Checked, "elapsed", summary.Elapsed)
}
