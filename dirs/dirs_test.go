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

package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
	"github.com/xultaeculcis/astrotools/batch"
	"go.uber.org/zap"
)

type countingProgress struct {
	Total    int
	Advanced []string
	Finished bool
}

func (p *countingProgress) Start(total int) { p.Total = total }
func (p *countingProgress) Advance(result batch.Result) {
	p.Advanced = append(p.Advanced, result.Path)
}
func (p *countingProgress) Finish() { p.Finished = true }

func writeNames(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "names.txt")
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestReadNames(t *testing.T) {
	file := writeNames(t, "M31\n\n  NGC 7000 \r\nIC1396\n")
	names, err := ReadNames(file)
	if err != nil {
		t.Fatal(err)
	}
	expected := []Name{
		{Line: 1, Value: "M31"},
		{Line: 3, Value: "NGC 7000"},
		{Line: 4, Value: "IC1396"},
	}
	if diff := deep.Equal(names, expected); diff != nil {
		t.Fatal(diff)
	}
}

func TestDoCreate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "targets", "2026")
	file := writeNames(t, "M31\nM42/lights\nM31\n")
	progress := &countingProgress{}

	created, err := DoCreate(zap.NewNop().Sugar(), Options{NamesFile: file, TargetDir: target}, progress)
	if err != nil {
		t.Fatal(err)
	}
	if created != 3 {
		t.Fatalf("expected 3 created, got %d", created)
	}
	for _, dir := range []string{"M31", filepath.Join("M42", "lights")} {
		info, err := os.Stat(filepath.Join(target, dir))
		if err != nil {
			t.Fatal(err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
	expected := &countingProgress{Total: 3, Advanced: []string{"M31", "M42/lights", "M31"}, Finished: true}
	if diff := deep.Equal(progress, expected); diff != nil {
		t.Fatal(diff)
	}
}

func TestDoCreateRejectsEscapingNames(t *testing.T) {
	target := t.TempDir()
	file := writeNames(t, "../outside\n/abs\nok\n..\n")

	created, err := DoCreate(zap.NewNop().Sugar(), Options{NamesFile: file, TargetDir: target}, nil)
	if created != 1 {
		t.Fatalf("expected 1 created, got %d", created)
	}
	var failed batch.FileErrors
	if !errors.As(err, &failed) {
		t.Fatalf("expected FileErrors, got %v", err)
	}
	if diff := deep.Equal(failed.Paths(), []string{"..", "../outside", "/abs"}); diff != nil {
		t.Fatal(diff)
	}
	var invalid *InvalidNameError
	if !errors.As(failed["/abs"], &invalid) || invalid.Line != 2 {
		t.Fatalf("unexpected error for /abs: %v", failed["/abs"])
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(target), "outside")); !os.IsNotExist(err) {
		t.Fatalf("escaping directory was created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "ok")); err != nil {
		t.Fatal(err)
	}
}

func TestDoCreateMissingNamesFile(t *testing.T) {
	_, err := DoCreate(zap.NewNop().Sugar(), Options{NamesFile: filepath.Join(t.TempDir(), "missing"), TargetDir: t.TempDir()}, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
