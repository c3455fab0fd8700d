// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scan is scan subcommand to extract dependency facts of HDL sources.
package scan

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/hdldeps/scandeps"
	"go.chromium.org/infra/build/hdldeps/ui"
)

const usage = `extract dependency facts of HDL sources

 $ hdldeps scan -C <dir> [-mode synthesis] [-o records.json.zst] [<files>...]

If no files are given, it scans all sources under <dir>.
Options are read from <dir>/.hdldeps_config, and flags override them.
Output is JSON. If -o ends with .zst, it is compressed with zstd.
`

// Cmd returns the Command for the `scan` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "scan [-C <dir>] [<files>...]",
		ShortDesc: "extract dependency facts of HDL sources",
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
	output         string
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "source root directory")
	c.Flags.Var(&c.mode, "mode", "compilation mode. simulation or synthesis")
	c.Flags.StringVar(&c.defaultLibrary, "default_library", "", "library of sources outside library directories")
	c.Flags.StringVar(&c.output, "o", "-", "output filename. - for stdout")
}

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

// Output is the output of scan.
type Output struct {
	ScanID  string            `json:"scan_id"`
	Root    string            `json:"root"`
	Options scandeps.Options  `json:"options"`
	Started time.Time         `json:"started"`
	Results []scandeps.Result `json:"results"`
}

func (c *run) run(ctx context.Context, args []string) error {
	opts, err := Options(&c.Flags, c.dir, c.mode, c.defaultLibrary)
	if err != nil {
		return err
	}
	out := Output{
		ScanID:  uuid.New().String(),
		Root:    c.dir,
		Options: opts,
		Started: time.Now(),
	}
	log.Infof("scan %s in %s mode=%s", out.ScanID, c.dir, opts.Mode)
	spin := ui.NewSpinner()
	spin.Start("scanning %s", c.dir)
	out.Results, err = Scan(ctx, c.dir, opts, args)
	if err != nil {
		spin.Stop(err)
		return err
	}
	spin.Done("%d files", len(out.Results))
	return c.write(out)
}

func (c *run) write(out Output) (err error) {
	var w io.Writer = os.Stdout
	if c.output != "-" {
		f, cerr := os.Create(c.output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			cerr := f.Close()
			if err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if strings.HasSuffix(c.output, ".zst") {
		zw, zerr := zstd.NewWriter(w)
		if zerr != nil {
			return zerr
		}
		defer func() {
			cerr := zw.Close()
			if err == nil {
				err = cerr
			}
		}()
		w = zw
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	return enc.Encode(out)
}

// Options returns options for dir, overridden by mode and defaultLibrary
// if they are set in flags.
func Options(flags *flag.FlagSet, dir string, mode scandeps.Mode, defaultLibrary string) (scandeps.Options, error) {
	opts, err := scandeps.LoadConfig(dir)
	if err != nil {
		return opts, err
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			opts.Mode = mode
		case "default_library":
			opts.DefaultLibrary = defaultLibrary
		}
	})
	return opts, opts.Validate()
}

// Scan scans files in dir, or all sources under dir if files is empty.
func Scan(ctx context.Context, dir string, opts scandeps.Options, files []string) ([]scandeps.Result, error) {
	s, err := scandeps.New(opts)
	if err != nil {
		return nil, err
	}
	var srcs []scandeps.Source
	if len(files) == 0 {
		srcs, err = scandeps.Walk(ctx, dir, opts)
		if err != nil {
			return nil, err
		}
	} else {
		srcs, err = scandeps.Sources(dir, files)
		if err != nil {
			return nil, err
		}
	}
	return s.Scan(ctx, scandeps.Request{
		Root:    dir,
		Sources: srcs,
	})
}
