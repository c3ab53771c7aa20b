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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/alecthomas/kingpin/v2"
	"github.com/google/uuid"
	"github.com/xultaeculcis/astrotools/bucket"
	"github.com/xultaeculcis/astrotools/bucket/aws"
	"github.com/xultaeculcis/astrotools/bucket/azure"
	"github.com/xultaeculcis/astrotools/bucket/config"
	"github.com/xultaeculcis/astrotools/dirs"
	"github.com/xultaeculcis/astrotools/logging"
	"github.com/xultaeculcis/astrotools/metrics"
	"github.com/xultaeculcis/astrotools/progress"
	"github.com/xultaeculcis/astrotools/rename"
	"github.com/xultaeculcis/astrotools/settings"
	"github.com/xultaeculcis/astrotools/upload"
	"github.com/xultaeculcis/astrotools/zipcheck"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const defaultZipCheckLogFile = "zip-check.log"

func setupLogger(logFile string) (*zap.Logger, func()) {
	logger, closeLog, err := logging.New(term.IsTerminal(int(os.Stdin.Fd())), logFile)
	if err != nil {
		panic(err)
	}
	return logger, closeLog
}

func setupInterruptContext(lgr *zap.SugaredLogger) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		select {
		case sig := <-c:
			lgr.Infow("shutting_down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	onExit := func() {
		signal.Stop(c)
		cancel()
	}
	return ctx, onExit
}

func setupProfile() func() {
	if pprofFile == nil || *pprofFile == "" {
		return func() {
		}
	}
	f, err := os.Create(*pprofFile)
	if err != nil {
		panic(err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		panic(err)
	}
	return func() {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			panic(err)
		}
	}
}

var (
	pprofFile = kingpin.Flag("pprof.cpu.file", "Enable cpu profiling to this file.").String()

	metricsListenAddress = kingpin.Flag("web.listen-address", "Address on which to expose metrics.").String()
	metricsPath          = kingpin.Flag("web.telemetry-path", "Path under which to expose metrics.").Default("/metrics").String()

	logFile      = kingpin.Flag("log_file", "Append every log event to this file. zip check defaults to ./"+defaultZipCheckLogFile+".").String()
	settingsFile = kingpin.Flag("settings-file", "YAML file with blob store settings.").Envar("ASTRO_TOOLS_SETTINGS_FILE").ExistingFile()

	dirCmd             = kingpin.Command("dir", "Directory utilities.")
	dirCreateCmd       = dirCmd.Command("create", "Create one directory per name in a names file.")
	dirCreateNamesFile = dirCreateCmd.Flag("names_fp", "File with one directory name per line.").Required().ExistingFile()
	dirCreateTargetDir = dirCreateCmd.Flag("target_dir", "Directory to create the new directories in.").Required().ExistingDir()

	zipCmd = kingpin.Command("zip", "Zip archive utilities.")

	zipRenameCmd     = zipCmd.Command("rename", "Rename archives after the channels they contain.")
	zipRenameDataDir = zipRenameCmd.Flag("data_dir", "Directory to search for zip archives.").Required().ExistingDir()
	zipRenameDryRun  = zipRenameCmd.Flag("dry_run", "Log the planned renames without touching any file.").Bool()

	zipCheckCmd        = zipCmd.Command("check", "Validate zip archives.")
	zipCheckDirectory  = zipCheckCmd.Flag("directory", "Directory to search for zip archives.").Default(".").ExistingDir()
	zipCheckFast       = zipCheckCmd.Flag("fast", "Only read the central directory of each archive.").Bool()
	zipCheckFull       = zipCheckCmd.Flag("full", "Decompress every entry and verify its CRC-32.").Bool()
	zipCheckWorkers    = zipCheckCmd.Flag("workers", "Number of archives checked concurrently.").Default(fmt.Sprint(zipcheck.DefaultWorkers)).Int()
	zipCheckCacheFile  = zipCheckCmd.Flag("cache_file", "Remember verified archives in this file and skip unchanged ones on later fast runs.").String()
	zipCheckTrustCache = zipCheckCmd.Flag("trust_cache", "Let --full skip archives an earlier full check verified. Bit rot in those archives goes unnoticed.").Bool()
	zipCheckReportFile = zipCheckCmd.Flag("report", "Write a JSON report of the run to this file.").String()

	blobCmd              = kingpin.Command("blob", "Blob store utilities.")
	blobSettings         = settings.Bind(blobCmd)
	blobUploadCmd        = blobCmd.Command("upload", "Upload files that are not in the container yet.")
	blobUploadSourceDir  = blobUploadCmd.Flag("source_dir", "Directory with the files to upload.").Default(".").ExistingDir()
	blobUploadPrefix     = blobUploadCmd.Flag("prefix", "Key prefix of the uploaded objects.").Required().String()
	blobUploadLookupFile = blobUploadCmd.Flag("lookup_file", "File listing the paths to upload. Created from the source directory when missing.").Default(upload.DefaultLookupFile).String()
	blobUploadContainer  = blobUploadCmd.Flag("container", "Container (bucket) name.").Default(config.DefaultContainer).String()
	blobUploadWorkers    = blobUploadCmd.Flag("workers", "Number of concurrent uploads.").Default(fmt.Sprint(upload.DefaultWorkers)).Int()
	blobUploadDryRun     = blobUploadCmd.Flag("dry_run", "Log the pending uploads without sending anything.").Bool()
	blobUploadReportFile = blobUploadCmd.Flag("report", "Write a JSON report of the run to this file.").String()
)

func parseOptions() string {
	kingpin.UsageTemplate(kingpin.CompactUsageTemplate)
	if err := settings.LoadDotEnv(settings.DefaultDotEnvFile); err != nil {
		kingpin.Fatalf("loading %s: %v", settings.DefaultDotEnvFile, err)
	}
	cmd := kingpin.Parse()

	if cmd == zipCheckCmd.FullCommand() {
		if *zipCheckFast && *zipCheckFull {
			kingpin.Fatalf("--fast and --full are mutually exclusive")
		}
		if *logFile == "" {
			*logFile = defaultZipCheckLogFile
		}
	}
	return cmd
}

func zipCheckMode(lgr *zap.SugaredLogger) zipcheck.Mode {
	switch {
	case *zipCheckFull:
		return zipcheck.ModeFull
	case *zipCheckFast:
		return zipcheck.ModeFast
	default:
		lgr.Warnw("no_check_mode", "msg", "neither --fast nor --full given, running a fast check")
		return zipcheck.ModeFast
	}
}

func newBucketClient(ctx context.Context, lgr *zap.SugaredLogger, cfg *config.Config) (bucket.Client, error) {
	switch {
	case cfg.IsAzure():
		return azure.NewAzureClient(lgr, cfg)
	case cfg.IsAWS():
		return aws.NewAWSClient(ctx, lgr, cfg)
	default:
		return nil, fmt.Errorf("unknown blob store provider %q", cfg.Provider)
	}
}

func exitOnError(lgr *zap.SugaredLogger, event string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	lgr.Fatalw(event, "err", err)
}

func main() {
	cmd := parseOptions()

	logger, closeLog := setupLogger(*logFile)
	defer closeLog()
	runID := uuid.New().String()
	lgr := logger.Sugar().With("run_id", runID)
	lgr.Debugw("starting", "cmd", cmd)

	ctx, onExit := setupInterruptContext(lgr)
	defer onExit()

	stopProfile := setupProfile()
	defer stopProfile()

	metrics.SetupPrometheus(lgr, metricsListenAddress, metricsPath)

	switch cmd {
	case dirCreateCmd.FullCommand():
		opts := dirs.Options{
			NamesFile: *dirCreateNamesFile,
			TargetDir: *dirCreateTargetDir,
		}
		_, err := dirs.DoCreate(lgr, opts, progress.New(lgr, "creating directories"))
		exitOnError(lgr, "create_dirs_error", err)
	case zipRenameCmd.FullCommand():
		opts := rename.Options{
			DataDir: *zipRenameDataDir,
			DryRun:  *zipRenameDryRun,
		}
		_, err := rename.DoRename(ctx, lgr, opts)
		exitOnError(lgr, "rename_error", err)
	case zipCheckCmd.FullCommand():
		opts := zipcheck.Options{
			Directory:  *zipCheckDirectory,
			Mode:       zipCheckMode(lgr),
			Workers:    *zipCheckWorkers,
			CacheFile:  *zipCheckCacheFile,
			TrustCache: *zipCheckTrustCache,
			ReportFile: *zipCheckReportFile,
			RunID:      runID,
		}
		_, err := zipcheck.DoCheck(ctx, lgr, opts)
		exitOnError(lgr, "zip_check_error", err)
	case blobUploadCmd.FullCommand():
		s, err := settings.Load(*settingsFile, *blobSettings)
		exitOnError(lgr, "settings_error", err)
		exitOnError(lgr, "configuration_error", s.RequireBlob())
		lgr.Debugw("settings_loaded", "environment", s.Environment, "provider", s.Blob.Provider)

		client, err := newBucketClient(ctx, lgr, s.BucketConfig(*blobUploadContainer))
		exitOnError(lgr, "bucket_client_error", err)
		opts := upload.Options{
			SourceDir:  *blobUploadSourceDir,
			Container:  *blobUploadContainer,
			Prefix:     *blobUploadPrefix,
			LookupFile: *blobUploadLookupFile,
			Workers:    *blobUploadWorkers,
			DryRun:     *blobUploadDryRun,
			ReportFile: *blobUploadReportFile,
			RunID:      runID,
		}
		_, err = upload.DoUpload(ctx, lgr, client, opts)
		if bucket.IsContainerNotFound(err) {
			lgr.Fatalw("container_not_found", "container", *blobUploadContainer, "err", err)
		}
		exitOnError(lgr, "upload_error", err)
	default:
		lgr.Fatalw("unhandled_command", "cmd", cmd)
	}
}
