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

	"github.com/xultaeculcis/astrotools/cache"
	"github.com/xultaeculcis/astrotools/paranoid"
	"github.com/xultaeculcis/astrotools/unixtime"
)

const cacheName = "verified_archives"

var errNotVerified = errors.New("not verified")

// VerifiedCache remembers archives that passed a check, keyed by file
// identity and invalidated by any change in size or mtime.
type VerifiedCache struct {
	c *cache.Cache
}

func NewVerifiedCache(storage *cache.Storage) *VerifiedCache {
	return &VerifiedCache{c: storage.Cache(cacheName)}
}

// Verified reports whether the file, unchanged, already passed a check at
// least as strict as mode, and when that check ran.
func (v *VerifiedCache) Verified(file paranoid.File, mode Mode) (unixtime.Seconds, bool) {
	var at unixtime.Seconds
	if v == nil {
		return at, false
	}
	key := file.CacheKey()
	err := v.c.Get(key, func(value []byte) error {
		payload := file.UnwrapCacheEntry(key, value)
		if len(payload) < 1 {
			return errNotVerified
		}
		if Mode(payload[0]) < mode {
			return errNotVerified
		}
		return at.UnmarshalBinary(payload[1:])
	})
	return at, err == nil
}

func (v *VerifiedCache) MarkVerified(file paranoid.File, mode Mode) error {
	if v == nil {
		return nil
	}
	at, err := unixtime.Now().MarshalBinary()
	if err != nil {
		return err
	}
	payload := append([]byte{byte(mode)}, at...)
	return v.c.Put(file.CacheKey(), file.WrapCacheEntry(payload))
}
