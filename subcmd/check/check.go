// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package check is check subcommand to find unresolved dependencies.
package check

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/hdldeps/scandeps"
	"go.chromium.org/infra/build/hdldeps/subcmd/scan"
	"go.chromium.org/infra/build/hdldeps/toolsupport/makeutil"
	"go.chromium.org/infra/build/hdldeps/ui"
)

const usage = `check dependencies of HDL sources

 $ hdldeps check -C <dir> [-external ieee,std] [-depfile deps.d] [<files>...]

It scans sources as scan subcommand does, and reports needs that are
not provided by any source, or provided by more than one source.
Needs only on -external libraries are not checked.
It exits with non-zero status if any problem is found.
With -depfile, it also writes, for each source, the sources providing
its needs as make rules. An existing depfile with the same rules is
left untouched.
`

// Cmd returns the Command for the `check` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "check [-C <dir>] [<files>...]",
		ShortDesc: "check dependencies of HDL sources",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	dir            string
	mode           scandeps.Mode
	defaultLibrary string
	external       string
	depfile        string
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "source root directory")
	c.Flags.Var(&c.mode, "mode", "compilation mode. simulation or synthesis")
	c.Flags.StringVar(&c.defaultLibrary, "default_library", "", "library of sources outside library directories")
	c.Flags.StringVar(&c.external, "external", strings.Join(scandeps.DefaultExternal, ","), "comma separated libraries provided by tools")
	c.Flags.StringVar(&c.depfile, "depfile", "", "write make style deps of sources to the file")
}

// errProblems is returned when check found problems.
var errProblems = errors.New("dependency problems found")

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	opts, err := scan.Options(&c.Flags, c.dir, c.mode, c.defaultLibrary)
	if err != nil {
		return err
	}
	spin := ui.NewSpinner()
	spin.Start("scanning %s", c.dir)
	results, err := scan.Scan(ctx, c.dir, opts, args)
	if err != nil {
		spin.Stop(err)
		return err
	}
	spin.Done("%d files", len(results))
	nerr := 0
	records := make([]scandeps.Record, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%v\n", r.Err)
			nerr++
		}
		records = append(records, r.Record)
	}
	ropts := scandeps.ResolveOptions{
		External: splitExternal(c.external),
	}
	if c.depfile != "" {
		err = writeDepfile(c.depfile, scandeps.Deps(records, ropts))
		if err != nil {
			return err
		}
	}
	diags := scandeps.Resolve(records, ropts)
	for _, d := range diags {
		fmt.Println(d)
	}
	log.Infof("%d files: %d errors, %d problems", len(results), nerr, len(diags))
	if nerr > 0 || len(diags) > 0 {
		return fmt.Errorf("%w: %d errors, %d problems", errProblems, nerr, len(diags))
	}
	return nil
}

func writeDepfile(fname string, deps []scandeps.Dep) error {
	rules := make([]makeutil.Rule, 0, len(deps))
	for _, d := range deps {
		rules = append(rules, makeutil.Rule{
			Target: d.Filename,
			Inputs: d.Inputs,
		})
	}
	old, err := os.ReadFile(fname)
	if err == nil && slices.EqualFunc(makeutil.ParseRules(old), rules, equalRule) {
		// keep mtime, so make doesn't rebuild for an unchanged graph.
		log.Debugf("depfile %s unchanged", fname)
		return nil
	}
	var buf bytes.Buffer
	err = makeutil.WriteDeps(&buf, rules)
	if err != nil {
		return err
	}
	return os.WriteFile(fname, buf.Bytes(), 0644)
}

func equalRule(a, b makeutil.Rule) bool {
	return a.Target == b.Target && slices.Equal(a.Inputs, b.Inputs)
}

func splitExternal(s string) []string {
	var libs []string
	for _, lib := range strings.Split(s, ",") {
		lib = strings.ToLower(strings.TrimSpace(lib))
		if lib == "" {
			continue
		}
		libs = append(libs, lib)
	}
	return libs
}
