// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps provides a lexical dependency scanner for VHDL.
// It doesn't parse VHDL. It finds the following statements with
// regular expressions
//
//	library ieee, mylib;
//	use mylib.pkg.all;
//	u0: entity mylib.foo(rtl) port map (...);
//	u1: foo port map (...);
//	package foo is
//	entity foo is
//	architecture rtl of foo is
//
// and reports, per file, what the file needs as queries and what
// design units it provides as attributes with the keys
// "lib", "pkg", "ent" and "arch".
//
// Comments are ignored, except the pragmas
//
//	-- pragma library mylib
//	-- hdldeps_library mylib
//	-- pragma translate_off
//	-- pragma translate_on
//
// The library pragma changes the destination library of following
// provides. translate_off/translate_on are honored in Synthesis mode only.
//
// The destination library of a file is the library of the nearest
// LibraryMarker directory, or the default library.
//
// Resolve checks the needs of records against the provides of others.
package scandeps
