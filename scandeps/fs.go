// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"fmt"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"
)

// filesystem caches scan results by content.
// It is shared for all scans of a ScanDeps, so generated or vendored
// copies of the same source are scanned once.
type filesystem struct {
	s     singleflight.Group
	cache *lru.Cache[cacheKey, *scanResult]
}

type cacheKey struct {
	digest  xxh3.Uint128
	lang    string
	library string
}

func newCacheKey(buf []byte, lang, library string) cacheKey {
	return cacheKey{
		digest:  xxh3.Hash128(buf),
		lang:    lang,
		library: library,
	}
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%016x%016x/%s/%s", k.digest.Hi, k.digest.Lo, k.lang, k.library)
}

type scanResult struct {
	rec Record
	err error
}

func newFilesystem(size int) (*filesystem, error) {
	cache, err := lru.New[cacheKey, *scanResult](size)
	if err != nil {
		return nil, err
	}
	return &filesystem{cache: cache}, nil
}

// extract returns the record for key, calling scan if it is not cached.
// Records are shared between callers and must not be modified, except
// for Filename of the returned copy.
func (fsys *filesystem) extract(key cacheKey, scan func() (Record, error)) (Record, error) {
	if sr, ok := fsys.cache.Get(key); ok {
		log.Debugf("cache hit %s", key)
		return sr.rec, sr.err
	}
	v, _, _ := fsys.s.Do(key.String(), func() (any, error) {
		if sr, ok := fsys.cache.Get(key); ok {
			return sr, nil
		}
		rec, err := scan()
		sr := &scanResult{rec: rec, err: err}
		fsys.cache.Add(key, sr)
		return sr, nil
	})
	sr := v.(*scanResult)
	return sr.rec, sr.err
}
