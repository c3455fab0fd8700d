// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/hdldeps/runtimex"
	"go.chromium.org/infra/build/hdldeps/sync/semaphore"
)

// ErrMalformed is reported for a statement that can not be interpreted,
// e.g. a use clause with an empty name. It is a per-file error.
var ErrMalformed = errors.New("malformed statement")

// scanFunc extracts facts of a source in one language.
type scanFunc func(fname, library string, buf []byte, opts Options) (Record, error)

var scanners = map[string]scanFunc{
	LangVHDL: VHDLScan,
}

var extractSema = semaphore.New("hdlscan", runtimex.Parallelism())

// ScanDeps extracts dependency facts from HDL sources.
// It is safe for concurrent use.
type ScanDeps struct {
	opts Options
	fs   *filesystem
}

// New creates new ScanDeps.
func New(opts Options) (*ScanDeps, error) {
	opts = opts.withDefaults()
	err := opts.Validate()
	if err != nil {
		return nil, err
	}
	fsys, err := newFilesystem(opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &ScanDeps{
		opts: opts,
		fs:   fsys,
	}, nil
}

// Options returns options used by s.
func (s *ScanDeps) Options() Options {
	return s.opts
}

// Source is a source file to scan.
type Source struct {
	// Path is the path of the file relative to Request.Root.
	Path string `json:"path"`

	// Library is the initial destination library of the file.
	// "" means the default library.
	Library string `json:"library,omitempty"`
}

// Request is a request to scan deps.
type Request struct {
	// Root is the directory Sources are relative to.
	Root string

	// Sources are source files.
	Sources []Source
}

// Scan scans req.Sources concurrently.
// Results are in the same order as req.Sources. A file that can't be read
// or has a malformed statement has its error in Result.Err; it doesn't
// stop other files. Scan returns an error only if ctx is done.
func (s *ScanDeps) Scan(ctx context.Context, req Request) ([]Result, error) {
	started := time.Now()
	results := make([]Result, len(req.Sources))
	eg, ctx := errgroup.WithContext(ctx)
	for i, src := range req.Sources {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return extractSema.Do(ctx, func(ctx context.Context) error {
				results[i] = s.scanFile(req.Root, src)
				return nil
			})
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}
	nerr := 0
	for _, r := range results {
		if r.Err != nil {
			nerr++
		}
	}
	log.Infof("scanned %d files (%d errors) in %s", len(results), nerr, time.Since(started))
	log.Debugf("%s: capacity=%d requests=%d", extractSema.Name(), extractSema.Capacity(), extractSema.NumRequests())
	return results, nil
}

func (s *ScanDeps) scanFile(root string, src Source) Result {
	fname := filepath.ToSlash(src.Path)
	lang := s.opts.Lang(fname)
	scan, ok := scanners[lang]
	if !ok {
		return Result{
			Record: Record{Filename: fname},
			Err:    fmt.Errorf("%s: no scanner for %q", fname, filepath.Ext(fname)),
		}
	}
	buf, release, err := loadFile(filepath.Join(root, src.Path))
	if err != nil {
		return Result{
			Record: Record{Filename: fname},
			Err:    fmt.Errorf("%s: %w", fname, err),
		}
	}
	defer func() {
		err := release()
		if err != nil {
			log.Warnf("release %s: %v", fname, err)
		}
	}()
	key := newCacheKey(buf, lang, src.Library)
	rec, err := s.fs.extract(key, func() (Record, error) {
		return scan(fname, src.Library, buf, s.opts)
	})
	rec.Filename = fname
	if err != nil {
		log.Warnf("scan %s: %v", fname, err)
		return Result{Record: rec, Err: fmt.Errorf("%s: %w", fname, err)}
	}
	return Result{Record: rec}
}
