// Command qonfigc compiles a toolkit declaration source and reports any
// diagnostics produced along the way. It is a thin CLI wrapper around
// qxml.CompileToolkit, qref's bundled promise vocabulary, and an
// optional qcatalog cache that records a summary and source hash of each
// successful compile. The source is always recompiled; the cache is not
// consulted to skip work.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/updownquark/qonfig/qcatalog"
	"github.com/updownquark/qonfig/qref"
	"github.com/updownquark/qonfig/qschema"
	"github.com/updownquark/qonfig/qxml"
)

// depFlag collects repeated -dep alias=path flags, the stdlib idiom for
// a flag usable more than once on one command line.
type depFlag struct{ items []string }

func (d *depFlag) String() string   { return strings.Join(d.items, ",") }
func (d *depFlag) Set(v string) error { d.items = append(d.items, v); return nil }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("qonfigc", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a .qonfigc.toml project file (default: ./.qonfigc.toml if present)")
	cachePath := fs.String("cache", "", "path to a qcatalog sqlite cache; records a summary of each successful compile")
	color := fs.String("color", "auto", "colorize diagnostics: auto, always, never")
	var deps depFlag
	fs.Var(&deps, "dep", "a dependency toolkit as alias=path; repeatable")
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: qonfigc [flags] <toolkit-declaration-file>")
		return 2
	}
	sourcePath := fs.Arg(0)

	cfg, err := loadProjectConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "qonfigc: %v\n", err)
		return 2
	}
	if *cachePath == "" {
		*cachePath = cfg.Cache
	}

	useColor := shouldColorize(*color, stdout)

	depToolkits, err := compileDependencies(deps.items)
	if err != nil {
		fmt.Fprintf(stderr, "qonfigc: %v\n", err)
		return 1
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(stderr, "qonfigc: %v\n", err)
		return 1
	}

	var cache *qcatalog.Cache
	if *cachePath != "" {
		cache, err = qcatalog.Open(*cachePath)
		if err != nil {
			fmt.Fprintf(stderr, "qonfigc: opening cache: %v\n", err)
			return 1
		}
		defer cache.Close()
	}

	tk, err := compileSource(data, sourcePath, depToolkits)
	if err != nil {
		printDiagnostics(stderr, err, useColor)
		return 1
	}

	fmt.Fprintf(stdout, "%s: ok (%d elements, %d add-ons)\n", tk.String(), len(tk.Elements()), len(tk.AddOns()))

	if cache != nil {
		hash := qcatalog.HashSource(data)
		summary := qcatalog.SummaryFromToolkit(tk)
		if err := cache.Put(tk.Name, tk.Version, hash, summary); err != nil {
			fmt.Fprintf(stderr, "qonfigc: updating cache: %v\n", err)
			return 1
		}
	}

	return 0
}

func compileSource(data []byte, path string, deps map[string]*qschema.Toolkit) (*qschema.Toolkit, error) {
	root, err := qxml.ParseString(string(data), path)
	if err != nil {
		return nil, err
	}
	return qxml.CompileToolkit(root, qxml.CompileOptions{
		Dependencies: deps,
		PromiseAddOn: qref.PromiseAddOn(),
	})
}

// compileDependencies compiles each alias=path entry as a standalone
// toolkit (no further -dep entries of its own), the scope this CLI
// entry point supports; a toolkit graph more than one level deep is a
// job for a build tool driving qxml.CompileToolkit directly.
func compileDependencies(entries []string) (map[string]*qschema.Toolkit, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]*qschema.Toolkit, len(entries))
	for _, e := range entries {
		alias, path, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("-dep %q: expected alias=path", e)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("-dep %s: %w", alias, err)
		}
		tk, err := compileSource(data, path, nil)
		if err != nil {
			return nil, fmt.Errorf("-dep %s: %w", alias, err)
		}
		out[alias] = tk
	}
	return out, nil
}

func shouldColorize(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// printDiagnostics prints one line per diagnostic carried by err: every
// fatal diagnostic from a *qschema.BuildError, or err itself for a
// structural *qxml.CompileError (or anything else qxml/qschema return).
func printDiagnostics(w *os.File, err error, color bool) {
	buildErr, ok := err.(*qschema.BuildError)
	if !ok {
		fmt.Fprintln(w, colorize(err.Error(), ansiRed, color))
		return
	}
	for _, d := range buildErr.Diagnostics {
		c := ansiRed
		if d.Severity == qschema.SeverityWarning {
			c = ansiYellow
		}
		fmt.Fprintln(w, colorize(d.Error(), c, color))
	}
}

func colorize(s, code string, enabled bool) string {
	if !enabled {
		return s
	}
	return code + s + ansiReset
}
