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

package bucket

import (
	"context"
	"errors"
	"fmt"
)

// Client is the subset of a blob store the uploader needs.
type Client interface {
	// ListObjects returns the names of all objects starting with prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	// PutObject stores data under name in a single request.
	PutObject(ctx context.Context, name string, data []byte) error
}

// TransferError is a failed call to the blob store. Code carries the
// provider's error code when there is one; MissingContainer is set by the
// provider when the code means the container does not exist.
type TransferError struct {
	Op               string
	Key              string
	Code             string
	MissingContainer bool
	Err              error
}

func (e *TransferError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("bucket %s %q: %s: %v", e.Op, e.Key, e.Code, e.Err)
	}
	return fmt.Sprintf("bucket %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// IsContainerNotFound reports whether err comes from a call against a
// container that does not exist.
func IsContainerNotFound(err error) bool {
	var te *TransferError
	return errors.As(err, &te) && te.MissingContainer
}
