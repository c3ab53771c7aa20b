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

package paranoid

import (
	"io"
	"os"
)

func NewFileFromInfo(name string, info os.FileInfo) File {
	file := File{
		name: name,
	}
	file.fingerprint.fromInfo(info)
	return file
}

func NewFile(name string) (File, error) {
	info, err := os.Stat(name)
	if err != nil {
		return File{}, err
	}
	return NewFileFromInfo(name, info), nil
}

// File is a path paired with the fingerprint it had when it was first seen.
// Operations on a File refuse to proceed if the fingerprint changed since.
type File struct {
	name        string
	fingerprint fingerprint
}

func (f File) Name() string {
	return f.name
}

func (f File) Len() int64 {
	return f.fingerprint.size
}

func (f File) Check() error {
	info, err := os.Stat(f.name)
	if err != nil {
		return err
	}
	return f.check(info)
}

func (f File) CheckFile(file *os.File) error {
	info, err := file.Stat()
	if err != nil {
		return err
	}
	return f.check(info)
}

func (f File) check(info os.FileInfo) error {
	var current fingerprint
	current.fromInfo(info)
	if f.fingerprint != current {
		return &FingerprintMismatch{
			name:     f.name,
			expected: f.fingerprint,
			actual:   current,
		}
	}
	return nil
}

func (f File) Open() (*os.File, error) {
	file, err := os.Open(f.name)
	if err != nil {
		return nil, err
	}
	err = f.CheckFile(file)
	if err != nil {
		if closeErr := file.Close(); closeErr != nil {
			panic(closeErr)
		}
		return nil, err
	}
	return file, nil
}

// ReadAll returns the whole content of the file. The fingerprint is checked
// on open and again after reading so a file that grew or was rewritten
// mid-read is reported instead of returned.
func (f File) ReadAll() ([]byte, error) {
	file, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			panic(closeErr)
		}
	}()

	data := make([]byte, 0, f.Len())
	buf := make([]byte, 32*1024)
	for {
		n, readErr := file.Read(buf)
		data = append(data, buf[:n]...)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}
	if err := f.CheckFile(file); err != nil {
		return nil, err
	}
	if int64(len(data)) != f.Len() {
		return nil, &FingerprintMismatch{
			name:     f.name,
			expected: f.fingerprint,
			actual:   fingerprint{identity: f.fingerprint.identity, size: int64(len(data)), mtime: f.fingerprint.mtime},
		}
	}
	return data, nil
}
