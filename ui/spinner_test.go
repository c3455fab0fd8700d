// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTermSpinner(t *testing.T) {
	for _, tc := range []struct {
		name   string
		finish func(Spinner)
		want   []string
	}{
		{
			name:   "stop short",
			finish: func(s Spinner) { s.Stop(nil) },
			want:   []string{"scanning 3 files... ", "\r\033[K"},
		},
		{
			name:   "stop error",
			finish: func(s Spinner) { s.Stop(errors.New("bad")) },
			want:   []string{"scanning 3 files failed bad\n"},
		},
		{
			name:   "done",
			finish: func(s Spinner) { s.Done("%d problems", 2) },
			want:   []string{"scanning 3 files 2 problems\n"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf syncBuffer
			s := &termSpinner{w: &buf, tick: time.Millisecond}
			s.Start("scanning %d files", 3)
			time.Sleep(5 * time.Millisecond)
			tc.finish(s)
			got := buf.String()
			for _, want := range tc.want {
				if !strings.Contains(got, want) {
					t.Errorf("output=%q; want to contain %q", got, want)
				}
			}
		})
	}
}
