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

package batch

import (
	"fmt"
	"sort"

	"go.uber.org/zap/zapcore"
)

type Results []Result

func (r Results) Len() int {
	return len(r)
}

// TotalBytes sums the bytes of successful items.
func (r Results) TotalBytes() int64 {
	var total int64
	for _, result := range r {
		if result.Err == nil {
			total += result.Bytes
		}
	}
	return total
}

func (r Results) ByPath() map[string]error {
	m := make(map[string]error, len(r))
	for _, result := range r {
		m[result.Path] = result.Err
	}
	return m
}

// Failed returns the failed items, or nil if every item succeeded.
func (r Results) Failed() FileErrors {
	var failed FileErrors
	for _, result := range r {
		if result.Err == nil {
			continue
		}
		if failed == nil {
			failed = make(FileErrors)
		}
		failed[result.Path] = result.Err
	}
	return failed
}

func (r Results) Succeeded() []string {
	var paths []string
	for _, result := range r {
		if result.Err == nil {
			paths = append(paths, result.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

type FileErrors map[string]error

func (e FileErrors) Error() string {
	return fmt.Sprintf("%d files failed", len(e))
}

func (e FileErrors) Paths() []string {
	paths := make([]string, 0, len(e))
	for path := range e {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Err returns e as an error, or nil when empty.
func (e FileErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e FileErrors) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for path, err := range e {
		enc.AddString(path, err.Error())
	}
	return nil
}
