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

// Package upload copies a local directory tree to a blob store, skipping
// files whose object already exists under the target prefix.
package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/xultaeculcis/astrotools/batch"
	"github.com/xultaeculcis/astrotools/bucket"
	"github.com/xultaeculcis/astrotools/bucket/keystore"
	"github.com/xultaeculcis/astrotools/metrics"
	"github.com/xultaeculcis/astrotools/paranoid"
	"github.com/xultaeculcis/astrotools/progress"
	"github.com/xultaeculcis/astrotools/report"
	"go.uber.org/zap"
)

const (
	DefaultWorkers    = 4
	DefaultLookupFile = "file_lookup.txt"
)

const mebibyte = 1024 * 1024

type Options struct {
	SourceDir  string
	Container  string
	Prefix     string
	LookupFile string
	Workers    int
	DryRun     bool
	ReportFile string
	RunID      string
}

type Summary struct {
	Candidates int
	Remote     int
	Pending    []string
	Uploaded   int
	Bytes      int64
	Elapsed    time.Duration
	Failed     batch.FileErrors
}

func (s Summary) BytesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Bytes) / s.Elapsed.Seconds()
}

func (s Summary) MegabytesPerSecond() float64 {
	return s.BytesPerSecond() / mebibyte
}

type Uploader struct {
	lgr       *zap.SugaredLogger
	client    bucket.Client
	keyStore  keystore.KeyStore
	sourceDir string
	opts      Options
}

func NewUploader(lgr *zap.SugaredLogger, client bucket.Client, opts Options) (*Uploader, error) {
	sourceDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, err
	}
	if opts.LookupFile == "" {
		opts.LookupFile = DefaultLookupFile
	}
	return &Uploader{
		lgr:       lgr,
		client:    client,
		keyStore:  keystore.NewKeyStore(opts.Prefix),
		sourceDir: sourceDir,
		opts:      opts,
	}, nil
}

// Run enumerates, diffs against the remote listing and uploads what is
// missing. Per-file failures are returned in Summary.Failed, not as err.
// Summary.Elapsed covers the transfers only.
func (u *Uploader) Run(ctx context.Context) (Summary, error) {
	runStarted := time.Now()
	var summary Summary

	candidates, err := u.enumerate()
	if err != nil {
		return summary, err
	}
	summary.Candidates = len(candidates)
	if len(candidates) == 0 {
		u.lgr.Warnw("no_files_to_upload", "source_dir", u.sourceDir)
		return summary, nil
	}
	u.lgr.Infow("files_before_dedup", "count", len(candidates))

	remote, err := u.listRemote(ctx)
	if err != nil {
		return summary, err
	}
	summary.Remote = len(remote)
	pending := candidates.Difference(remote)
	metrics.Bucket.SkippedFiles.Add(float64(len(candidates) - len(pending)))
	summary.Pending = pending.Sorted()
	if len(summary.Pending) == 0 {
		u.lgr.Infow("all_files_already_uploaded", "prefix", u.keyStore.Prefix)
		return summary, nil
	}
	u.lgr.Infow("files_after_dedup", "count", len(summary.Pending))

	if u.opts.DryRun {
		for _, rel := range summary.Pending {
			u.lgr.Infow("upload_planned", "key", u.keyStore.ObjectKey(rel))
		}
		return summary, nil
	}

	paths := make([]string, len(summary.Pending))
	for i, rel := range summary.Pending {
		paths[i] = filepath.Join(u.sourceDir, filepath.FromSlash(rel))
	}
	started := time.Now()
	results := batch.Run(ctx, u.lgr, paths, u.opts.Workers, u.uploadFile, progress.New(u.lgr, "uploading"))

	summary.Uploaded = len(results.Succeeded())
	summary.Bytes = results.TotalBytes()
	summary.Elapsed = time.Since(started)
	summary.Failed = results.Failed()
	u.lgr.Infow("upload_summary",
		"uploaded_files", summary.Uploaded,
		"failed_files", len(summary.Failed),
		"uploaded_mb", float64(summary.Bytes)/mebibyte,
		"elapsed_seconds", summary.Elapsed.Seconds(),
		"throughput_mb_per_second", summary.MegabytesPerSecond(),
	)
	if len(summary.Failed) > 0 {
		u.lgr.Errorw("upload_failures", "files", summary.Failed)
	}

	if u.opts.ReportFile != "" {
		if err := report.Write(u.opts.ReportFile, report.FromResults(u.opts.RunID, "blob upload", runStarted, results)); err != nil {
			return summary, err
		}
		u.lgr.Infow("report_written", "path", u.opts.ReportFile)
	}
	return summary, nil
}

func (u *Uploader) enumerate() (PathSet, error) {
	lookupFile := u.opts.LookupFile
	if _, err := os.Stat(lookupFile); err == nil {
		set, err := ReadLookupFile(lookupFile, u.sourceDir)
		if err != nil {
			return nil, err
		}
		u.lgr.Infow("lookup_file_loaded", "path", lookupFile, "count", len(set))
		return set, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	set, err := WalkSource(u.sourceDir)
	if err != nil {
		return nil, err
	}
	if err := WriteLookupFile(lookupFile, u.sourceDir, set); err != nil {
		return nil, err
	}
	u.lgr.Infow("lookup_file_written", "path", lookupFile, "count", len(set))
	return set, nil
}

func (u *Uploader) listRemote(ctx context.Context) (PathSet, error) {
	prefix := u.keyStore.ListPrefix()
	u.lgr.Infow("listing_remote_objects", "container", u.opts.Container, "prefix", prefix)
	names, err := u.client.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	remote := make(PathSet, len(names))
	for _, name := range names {
		if rel, ok := u.keyStore.RelativePath(name); ok {
			remote.Add(rel)
		}
	}
	return remote, nil
}

func (u *Uploader) uploadFile(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rel, ok := relativeTo(u.sourceDir, path)
	if !ok {
		return 0, &OutsideSourceError{Path: path}
	}
	key := u.keyStore.ObjectKey(rel)

	file, err := paranoid.NewFile(path)
	if err != nil {
		metrics.Bucket.UploadErrors.Inc()
		return 0, err
	}
	data, err := file.ReadAll()
	if err != nil {
		metrics.Bucket.UploadErrors.Inc()
		return 0, err
	}
	if err := u.client.PutObject(ctx, key, data); err != nil {
		metrics.Bucket.UploadErrors.Inc()
		u.lgr.Warnw("upload_error", "key", key, "err", err)
		return 0, err
	}
	metrics.Bucket.UploadedFiles.Inc()
	metrics.Bucket.UploadedBytes.Add(float64(len(data)))
	u.lgr.Debugw("upload_done", "key", key, "bytes", len(data))
	return int64(len(data)), nil
}

// DoUpload runs an upload and turns per-file failures into an error.
func DoUpload(ctx context.Context, lgr *zap.SugaredLogger, client bucket.Client, opts Options) (Summary, error) {
	u, err := NewUploader(lgr, client, opts)
	if err != nil {
		return Summary{}, err
	}
	summary, err := u.Run(ctx)
	if err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, summary.Failed.Err()
}
