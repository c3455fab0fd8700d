// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runtimex provides the number of CPUs usable for parallel scans.
package runtimex

import "runtime"

var ncpu int

func init() {
	ncpu = getproccount()
	if ncpu == 0 {
		ncpu = runtime.NumCPU()
	}
}

// NumCPU returns the number of logical CPUs usable by the current process.
// On Linux it is the size of the affinity mask. On Windows it counts all
// processor groups, where runtime.NumCPU() counts only one (up to 64).
func NumCPU() int {
	return ncpu
}

// Parallelism returns the number of goroutines that may run CPU bound
// work at once. It is NumCPU capped by GOMAXPROCS, and at least 1.
func Parallelism() int {
	return max(1, min(ncpu, runtime.GOMAXPROCS(0)))
}
