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
	"errors"
	"fmt"
)

// BadArchiveError means the file is not a readable zip archive at all.
type BadArchiveError struct {
	Path string
	Err  error
}

func (e *BadArchiveError) Error() string {
	return fmt.Sprintf("bad zip file: %s: %v", e.Path, e.Err)
}

func (e *BadArchiveError) Unwrap() error {
	return e.Err
}

// CorruptedEntryError names the first entry whose data failed to decompress
// or did not match its checksum.
type CorruptedEntryError struct {
	Path  string
	Entry string
	Err   error
}

func (e *CorruptedEntryError) Error() string {
	return fmt.Sprintf("corrupted entry %q in %s: %v", e.Entry, e.Path, e.Err)
}

func (e *CorruptedEntryError) Unwrap() error {
	return e.Err
}

// UnknownError wraps anything else that went wrong while checking.
type UnknownError struct {
	Path string
	Err  error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("error checking %s: %v", e.Path, e.Err)
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var badArchive *BadArchiveError
	var corrupted *CorruptedEntryError
	var unknown *UnknownError
	return errors.As(err, &badArchive) || errors.As(err, &corrupted) || errors.As(err, &unknown)
}
