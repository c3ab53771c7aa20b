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

// Package report writes a JSON summary of a batch run.
package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
	"github.com/retailnext/writefile"
	"github.com/xultaeculcis/astrotools/batch"
	"github.com/xultaeculcis/astrotools/unixtime"
)

type Failure struct {
	Path  string
	Error string
}

type Report struct {
	RunID       string
	Command     string
	StartedAt   unixtime.Seconds
	FinishedAt  unixtime.Seconds
	Total       int
	Succeeded   int
	Interrupted int
	Bytes       int64
	Failures    []Failure
}

// FromResults builds a report. Failures are sorted by path; items that never
// ran because the run was interrupted are counted but not listed.
func FromResults(runID, command string, started time.Time, results batch.Results) *Report {
	r := &Report{
		RunID:      runID,
		Command:    command,
		StartedAt:  unixtime.FromTime(started),
		FinishedAt: unixtime.Now(),
		Total:      results.Len(),
		Succeeded:  len(results.Succeeded()),
		Bytes:      results.TotalBytes(),
	}
	failed := results.Failed()
	for _, path := range failed.Paths() {
		err := failed[path]
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.Interrupted++
			continue
		}
		r.Failures = append(r.Failures, Failure{Path: filepath.ToSlash(path), Error: err.Error()})
	}
	return r
}

// Write atomically replaces path with the JSON form of r.
func Write(path string, r *Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	target := writefile.Config{
		Directory:     dir,
		DirectoryMode: 0755,
		FileMode:      0644,
	}
	return target.WriteFile(filepath.Base(path), func(file *os.File) error {
		_, err := easyjson.MarshalToWriter(r, file)
		return err
	})
}

func (f Failure) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"path":`)
	w.String(f.Path)
	w.RawString(`,"error":`)
	w.String(f.Error)
	w.RawByte('}')
}

func (f *Failure) UnmarshalEasyJSON(in *jlexer.Lexer) {
	if in.IsNull() {
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "path":
			f.Path = in.String()
		case "error":
			f.Error = in.String()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
}

func (r *Report) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"run_id":`)
	w.String(r.RunID)
	w.RawString(`,"command":`)
	w.String(r.Command)
	w.RawString(`,"started_at":`)
	r.StartedAt.MarshalEasyJSON(w)
	w.RawString(`,"finished_at":`)
	r.FinishedAt.MarshalEasyJSON(w)
	w.RawString(`,"total":`)
	w.Int(r.Total)
	w.RawString(`,"succeeded":`)
	w.Int(r.Succeeded)
	w.RawString(`,"interrupted":`)
	w.Int(r.Interrupted)
	w.RawString(`,"bytes":`)
	w.Int64(r.Bytes)
	w.RawString(`,"failures":[`)
	for i, f := range r.Failures {
		if i > 0 {
			w.RawByte(',')
		}
		f.MarshalEasyJSON(w)
	}
	w.RawString(`]}`)
}

func (r *Report) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "run_id":
			r.RunID = in.String()
		case "command":
			r.Command = in.String()
		case "started_at":
			r.StartedAt.UnmarshalEasyJSON(in)
		case "finished_at":
			r.FinishedAt.UnmarshalEasyJSON(in)
		case "total":
			r.Total = in.Int()
		case "succeeded":
			r.Succeeded = in.Int()
		case "interrupted":
			r.Interrupted = in.Int()
		case "bytes":
			r.Bytes = in.Int64()
		case "failures":
			r.Failures = r.Failures[:0]
			in.Delim('[')
			for !in.IsDelim(']') {
				var f Failure
				f.UnmarshalEasyJSON(in)
				r.Failures = append(r.Failures, f)
				in.WantComma()
			}
			in.Delim(']')
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}
