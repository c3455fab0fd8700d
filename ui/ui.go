// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui provides progress reporting for long operations.
package ui

import (
	"os"
	"time"

	"golang.org/x/term"
)

// DurationThreshold is the duration below which a finished spinner
// on a terminal is erased rather than reported.
const DurationThreshold = 1 * time.Second

// Spinner reports progress of a long operation.
type Spinner interface {
	// Start starts the spinner with the specified formatted string.
	Start(format string, args ...any)
	// Stop stops the spinner, outputting an error if provided.
	Stop(err error)
	// Done finishes the spinner with message.
	Done(format string, args ...any)
}

// IsTerminal reports whether stderr is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// NewSpinner returns a spinner animated on stderr if it is a terminal.
// Otherwise, the spinner reports to the log.
// stdout is left for command output.
func NewSpinner() Spinner {
	if IsTerminal() {
		return &termSpinner{w: os.Stderr, tick: 1 * time.Second}
	}
	return &logSpinner{}
}
