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

package keystore

import (
	"bytes"
	"path"
	"strings"
)

// KeyStore maps paths relative to an upload source onto object names below
// a prefix.
type KeyStore struct {
	Prefix string
}

func NewKeyStore(prefix string) KeyStore {
	return KeyStore{Prefix: strings.Trim(prefix, "/")}
}

func (c *KeyStore) keyWithPrefix(key string) string {
	if c.Prefix == "" {
		return key
	}
	var buffer bytes.Buffer
	buffer.WriteString(c.Prefix)
	buffer.WriteString("/")
	buffer.WriteString(key)
	return buffer.String()
}

// ObjectKey returns the object name for a slash-separated relative path.
func (c *KeyStore) ObjectKey(relativePath string) string {
	return c.keyWithPrefix(path.Clean(strings.TrimPrefix(relativePath, "/")))
}

// ListPrefix matches every object under Prefix and nothing under a sibling
// prefix sharing its leading characters.
func (c *KeyStore) ListPrefix() string {
	return c.keyWithPrefix("")
}

// RelativePath reverses ObjectKey. ok is false for names outside Prefix.
func (c *KeyStore) RelativePath(key string) (string, bool) {
	prefix := c.ListPrefix()
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(key, prefix)
	if rel == "" {
		return "", false
	}
	return rel, true
}
