// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// LibraryMarker is the name of the file that marks a library directory.
// Sources in the directory or its subdirectories are compiled into the
// library, unless a nearer marker exists.
//
// The file may be empty, in which case the library is named after the
// directory, or contain JSON like
//
//	{"name": "mylib"}
const LibraryMarker = ".hdldeps_library"

type libraryMarker struct {
	Name string `json:"name"`
}

// fsview is a view of source tree per walk.
// It remembers the library of each visited directory.
type fsview struct {
	root string

	mu   sync.Mutex
	libs map[string]string // slash dir relative to root -> library
}

func newFSView(root string) *fsview {
	return &fsview{
		root: root,
		libs: make(map[string]string),
	}
}

// library returns the library of dir, relative to root in slash form.
// It returns "" if no marker is found up to root.
func (fv *fsview) library(dir string) (string, error) {
	dir = path.Clean(dir)
	fv.mu.Lock()
	lib, ok := fv.libs[dir]
	fv.mu.Unlock()
	if ok {
		return lib, nil
	}
	lib, found, err := fv.readMarker(dir)
	if err != nil {
		return "", err
	}
	if !found && dir != "." {
		lib, err = fv.library(path.Dir(dir))
		if err != nil {
			return "", err
		}
	}
	fv.mu.Lock()
	fv.libs[dir] = lib
	fv.mu.Unlock()
	return lib, nil
}

func (fv *fsview) readMarker(dir string) (string, bool, error) {
	fname := filepath.Join(fv.root, filepath.FromSlash(dir), LibraryMarker)
	buf, err := os.ReadFile(fname)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var m libraryMarker
	if len(strings.TrimSpace(string(buf))) > 0 {
		err = json.Unmarshal(buf, &m)
		if err != nil {
			return "", false, fmt.Errorf("%s: %w", fname, err)
		}
	}
	name := m.Name
	if name == "" {
		base := dir
		if base == "." {
			base = filepath.Base(fv.root)
		}
		name = path.Base(base)
	}
	if !isIdent(name) {
		return "", false, fmt.Errorf("%s: bad library name %q", fname, name)
	}
	log.Debugf("library %s: %s", dir, name)
	return strings.ToLower(name), true, nil
}

// Walk returns sources under root that opts knows the language of, in
// lexical order. Hidden directories are skipped. Each source gets the
// library of its nearest LibraryMarker.
func Walk(ctx context.Context, root string, opts Options) ([]Source, error) {
	opts = opts.withDefaults()
	fv := newFSView(root)
	var srcs []Source
	err := filepath.WalkDir(root, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		if d.IsDir() {
			if fname != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || opts.Lang(fname) == "" {
			return nil
		}
		rel, err := filepath.Rel(root, fname)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		lib, err := fv.library(path.Dir(rel))
		if err != nil {
			return err
		}
		srcs = append(srcs, Source{
			Path:    rel,
			Library: lib,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("walk %s: %d sources", root, len(srcs))
	return srcs, nil
}

// Sources returns sources for paths relative to root, with the library
// of their nearest LibraryMarker.
func Sources(root string, paths []string) ([]Source, error) {
	fv := newFSView(root)
	srcs := make([]Source, 0, len(paths))
	for _, p := range paths {
		p = path.Clean(filepath.ToSlash(p))
		lib, err := fv.library(path.Dir(p))
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, Source{Path: p, Library: lib})
	}
	return srcs, nil
}
