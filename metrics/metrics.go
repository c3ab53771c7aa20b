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

package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "astrotools"

type cache struct {
	getHitsVec       *prometheus.CounterVec
	getMissesVec     *prometheus.CounterVec
	getPromotionsVec *prometheus.CounterVec
	putsVec          *prometheus.CounterVec
}

type bucket struct {
	SkippedFiles  prometheus.Counter
	UploadedBytes prometheus.Counter
	UploadedFiles prometheus.Counter
	UploadErrors  prometheus.Counter
}

type archive struct {
	CheckedFiles   *prometheus.CounterVec
	CheckedBytes   *prometheus.CounterVec
	CorruptedFiles *prometheus.CounterVec
	CachedFiles    prometheus.Counter
}

type rename struct {
	RenamedFiles prometheus.Counter
	RenameErrors prometheus.Counter
}

type batch struct {
	Items       *prometheus.CounterVec
	ItemSeconds prometheus.Histogram
}

type CacheCounters struct {
	Hits       prometheus.Counter
	Misses     prometheus.Counter
	Promotions prometheus.Counter
	Puts       prometheus.Counter
}

func NewCacheCounters(name string) *CacheCounters {
	return &CacheCounters{
		Hits:       Cache.getHitsVec.WithLabelValues(name),
		Misses:     Cache.getMissesVec.WithLabelValues(name),
		Promotions: Cache.getPromotionsVec.WithLabelValues(name),
		Puts:       Cache.putsVec.WithLabelValues(name),
	}
}

var (
	Bucket = bucket{
		SkippedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bucket",
			Name:      "skipped_files_total",
			Help:      "Number of files not uploaded due to them already existing in the bucket.",
		}),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bucket",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded to the bucket.",
		}),
		UploadedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bucket",
			Name:      "upload_files_total",
			Help:      "Number of files uploaded to the bucket.",
		}),
		UploadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bucket",
			Name:      "upload_errors_total",
			Help:      "Number of failed file uploads.",
		}),
	}

	Archive = archive{
		CheckedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "checked_files_total",
			Help:      "Number of zip archives checked.",
		}, []string{"mode"}),
		CheckedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "checked_bytes_total",
			Help:      "Total size of zip archives checked.",
		}, []string{"mode"}),
		CorruptedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "corrupted_files_total",
			Help:      "Number of zip archives that failed a check.",
		}, []string{"mode"}),
		CachedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "cached_files_total",
			Help:      "Number of zip archives skipped because an unchanged copy was already verified.",
		}),
	}

	Rename = rename{
		RenamedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rename",
			Name:      "renamed_files_total",
			Help:      "Number of archives renamed.",
		}),
		RenameErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rename",
			Name:      "errors_total",
			Help:      "Number of archives that could not be renamed.",
		}),
	}

	Batch = batch{
		Items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "items_total",
			Help:      "Number of batch items processed, by outcome.",
		}, []string{"outcome"}),
		ItemSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "item_seconds",
			Help:      "Time spent processing a single batch item.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	Cache = cache{
		getHitsVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "get_hits_total",
			Help:      "Number of cache gets that were hits.",
		}, []string{"cache"}),
		getMissesVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "get_misses_total",
			Help:      "Number of cache gets that were misses.",
		}, []string{"cache"}),
		getPromotionsVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "promotions_total",
			Help:      "Number of cache gets that promoted a value from the previous generation.",
		}, []string{"cache"}),
		putsVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "puts_total",
			Help:      "Number of cache put requests.",
		}, []string{"cache"}),
	}
)

// SetupPrometheus serves the default registry in the background. An empty
// listen address disables it.
func SetupPrometheus(lgr *zap.SugaredLogger, metricsListenAddress, metricsPath *string) {
	if metricsListenAddress == nil || *metricsListenAddress == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle(*metricsPath, promhttp.Handler())
	go func() {
		err := http.ListenAndServe(*metricsListenAddress, mux)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Errorw("metrics_listen_error", "err", err)
		}
	}()
	lgr.Infow("metrics_listening", "addr", *metricsListenAddress, "path", *metricsPath)
}

func init() {
	prometheus.MustRegister(Cache.getHitsVec)
	prometheus.MustRegister(Cache.getMissesVec)
	prometheus.MustRegister(Cache.getPromotionsVec)
	prometheus.MustRegister(Cache.putsVec)

	prometheus.MustRegister(Bucket.SkippedFiles)
	prometheus.MustRegister(Bucket.UploadedBytes)
	prometheus.MustRegister(Bucket.UploadedFiles)
	prometheus.MustRegister(Bucket.UploadErrors)

	prometheus.MustRegister(Archive.CheckedFiles)
	prometheus.MustRegister(Archive.CheckedBytes)
	prometheus.MustRegister(Archive.CorruptedFiles)
	prometheus.MustRegister(Archive.CachedFiles)

	prometheus.MustRegister(Rename.RenamedFiles)
	prometheus.MustRegister(Rename.RenameErrors)

	prometheus.MustRegister(Batch.Items)
	prometheus.MustRegister(Batch.ItemSeconds)
}
