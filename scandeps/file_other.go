// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !unix

package scandeps

import (
	"fmt"
	"os"
)

// loadFile reads fname into memory.
func loadFile(fname string) (buf []byte, release func() error, err error) {
	st, err := os.Stat(fname)
	if err != nil {
		return nil, nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("not a regular file: %s", st.Mode())
	}
	buf, err = os.ReadFile(fname)
	if err != nil {
		return nil, nil, err
	}
	return buf, func() error { return nil }, nil
}
