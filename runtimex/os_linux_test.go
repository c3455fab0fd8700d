// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build linux

package runtimex

import "testing"

func TestGetproccount(t *testing.T) {
	n := getproccount()
	if n < 1 {
		t.Fatalf("getproccount()=%d; want >= 1", n)
	}
	if NumCPU() != n {
		t.Errorf("NumCPU()=%d; want %d", NumCPU(), n)
	}
}
