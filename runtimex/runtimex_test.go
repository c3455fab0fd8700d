// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimex

import (
	"runtime"
	"testing"
)

func TestParallelism(t *testing.T) {
	if n := NumCPU(); n < 1 {
		t.Errorf("NumCPU()=%d; want >= 1", n)
	}
	old := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(old)
	if n := Parallelism(); n != 1 {
		t.Errorf("Parallelism() with GOMAXPROCS=1 = %d; want 1", n)
	}
}
