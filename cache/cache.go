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

package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"time"

	"github.com/xultaeculcis/astrotools/metrics"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var NotFound = errors.New("not found")

// DefaultGeneration is how long entries live before they must be read again
// to survive the next rotation.
const DefaultGeneration = 30 * 24 * time.Hour

type Options struct {
	Mode       os.FileMode
	Generation time.Duration
	Timeout    time.Duration
}

// Storage is a bbolt file holding named caches. Entries are grouped in
// time-based generations; a read from the previous generation promotes the
// entry into the current one and older generations are dropped on write.
type Storage struct {
	lgr        *zap.SugaredLogger
	db         *bbolt.DB
	generation int64
	now        func() time.Time
}

func Open(lgr *zap.SugaredLogger, path string, opts Options) (*Storage, error) {
	if opts.Mode == 0 {
		opts.Mode = 0o644
	}
	if opts.Generation <= 0 {
		opts.Generation = DefaultGeneration
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	db, err := bbolt.Open(path, opts.Mode, &bbolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, err
	}
	lgr.Debugw("cache_opened", "path", path)
	return &Storage{
		lgr:        lgr,
		db:         db,
		generation: int64(opts.Generation / time.Second),
		now:        time.Now,
	}, nil
}

func (s *Storage) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

type Cache struct {
	storage  *Storage
	name     []byte
	counters *metrics.CacheCounters
}

func (s *Storage) Cache(name string) *Cache {
	return &Cache{
		storage:  s,
		name:     []byte(name),
		counters: metrics.NewCacheCounters(name),
	}
}

type WithValueFunc func(value []byte) error

// Get calls f with the stored value. The value is only valid inside f.
// An entry found in the previous generation is promoted unless f fails.
func (c *Cache) Get(key []byte, f WithValueFunc) error {
	var valueToPromote []byte
	viewErr := c.storage.db.View(func(tx *bbolt.Tx) error {
		current, previous := c.storage.generations()
		if value := lookup(tx, current, c.name, key); value != nil {
			return f(value)
		}
		if value := lookup(tx, previous, c.name, key); value != nil {
			valueToPromote = make([]byte, len(value))
			copy(valueToPromote, value)
			return f(value)
		}
		return NotFound
	})
	if viewErr != nil {
		c.counters.Misses.Inc()
		return viewErr
	}
	c.counters.Hits.Inc()
	if valueToPromote == nil {
		return nil
	}
	c.counters.Promotions.Inc()
	return c.put(key, valueToPromote)
}

func lookup(tx *bbolt.Tx, generation, name, key []byte) []byte {
	top := tx.Bucket(generation)
	if top == nil {
		return nil
	}
	bucket := top.Bucket(name)
	if bucket == nil {
		return nil
	}
	return bucket.Get(key)
}

func (c *Cache) Put(key, value []byte) error {
	c.counters.Puts.Inc()
	return c.put(key, value)
}

func (c *Cache) put(key, value []byte) error {
	lgr := c.storage.lgr
	return c.storage.db.Update(func(tx *bbolt.Tx) error {
		current, previous := c.storage.generations()
		top := tx.Bucket(current)
		if top == nil {
			var stale [][]byte
			err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
				if !bytes.Equal(name, current) && !bytes.Equal(name, previous) {
					stale = append(stale, append([]byte(nil), name...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, name := range stale {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
				lgr.Debugw("cache_generation_removed", "generation", name)
			}
			top, err = tx.CreateBucket(current)
			if err != nil {
				return err
			}
			lgr.Debugw("cache_generation_created", "generation", current)
		}

		bucket, err := top.CreateBucketIfNotExists(c.name)
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

func (s *Storage) generations() ([]byte, []byte) {
	now := s.now().Unix()
	currentTs := (now / s.generation) * s.generation
	previousTs := currentTs - s.generation

	current := make([]byte, 8)
	binary.BigEndian.PutUint64(current, uint64(currentTs))

	previous := make([]byte, 8)
	binary.BigEndian.PutUint64(previous, uint64(previousTs))
	return current, previous
}
