// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bytes"
	"encoding/json"

	"go.chromium.org/infra/build/hdldeps/query"
)

// Attribute keys used in needs and provides.
const (
	KeyLibrary      = "lib"
	KeyPackage      = "pkg"
	KeyEntity       = "ent"
	KeyArchitecture = "arch"
)

// Record is the dependency facts of a source file.
type Record struct {
	// Filename is the source filename, relative to the scan root.
	Filename string

	// Needs are queries that must be satisfied by provides of some file.
	Needs []query.Query

	// Provides are design units the file offers.
	Provides []query.Attrs
}

type recordJSON struct {
	Filename string        `json:"filename"`
	Needs    []string      `json:"needs"`
	Provides []query.Attrs `json:"provides"`
}

func (r Record) toJSON() recordJSON {
	v := recordJSON{
		Filename: r.Filename,
		Needs:    make([]string, 0, len(r.Needs)),
		Provides: r.Provides,
	}
	if v.Provides == nil {
		v.Provides = []query.Attrs{}
	}
	for _, q := range r.Needs {
		v.Needs = append(v.Needs, q.String())
	}
	return v
}

// MarshalJSON renders needs in query syntax.
func (r Record) MarshalJSON() ([]byte, error) {
	return marshalJSON(r.toJSON())
}

// Result is an outcome of a file in a scan.
type Result struct {
	Record
	// Err is set when the file could not be scanned.
	// Record holds facts found before the error.
	Err error
}

type resultJSON struct {
	Error string `json:"error,omitempty"`
	recordJSON
}

// MarshalJSON adds "error" to the record.
func (r Result) MarshalJSON() ([]byte, error) {
	v := resultJSON{recordJSON: r.Record.toJSON()}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return marshalJSON(v)
}

// marshalJSON is json.Marshal without HTML escaping, so that '&' in
// queries stays readable.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
