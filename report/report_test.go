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

package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/mailru/easyjson"
	"github.com/xultaeculcis/astrotools/batch"
	"github.com/xultaeculcis/astrotools/unixtime"
)

func TestFromResults(t *testing.T) {
	started := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	results := batch.Results{
		{Path: "/data/b.zip", Err: errors.New("bad zip file")},
		{Path: "/data/a.zip", Bytes: 100},
		{Path: "/data/c.zip", Bytes: 50},
		{Path: "/data/d.zip", Err: context.Canceled},
	}
	r := FromResults("run-1", "zip check", started, results)
	r.FinishedAt = 0

	expected := &Report{
		RunID:       "run-1",
		Command:     "zip check",
		StartedAt:   unixtime.FromTime(started),
		Total:       4,
		Succeeded:   2,
		Interrupted: 1,
		Bytes:       150,
		Failures: []Failure{
			{Path: "/data/b.zip", Error: "bad zip file"},
		},
	}
	if diff := deep.Equal(r, expected); diff != nil {
		t.Fatal(diff)
	}
}

func TestWriteDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "upload.json")
	r := &Report{
		RunID:      "run-2",
		Command:    "blob upload",
		StartedAt:  unixtime.FromTime(time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)),
		FinishedAt: unixtime.FromTime(time.Date(2026, 5, 1, 21, 5, 0, 0, time.UTC)),
		Total:      2,
		Succeeded:  1,
		Bytes:      42,
		Failures:   []Failure{{Path: "p/b.fits", Error: "bucket put \"p/b.fits\": timeout"}},
	}
	if err := Write(path, r); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"started_at":"2026-05-01T21:00:00Z"`) {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var got Report
	if err := easyjson.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(&got, r); diff != nil {
		t.Fatal(diff)
	}
}
