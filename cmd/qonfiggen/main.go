// Command qonfiggen compiles a toolkit declaration source and renders
// its element-defs as generated Go structs and (optionally) a JSON
// Schema document, driving qcodegen the way qonfigc drives qxml for
// diagnostics-only compilation.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/updownquark/qonfig/qcodegen"
	"github.com/updownquark/qonfig/qref"
	"github.com/updownquark/qonfig/qschema"
	"github.com/updownquark/qonfig/qxml"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("qonfiggen", flag.ContinueOnError)
	outGo := fs.String("out", "", "output path for generated Go source (default: stdout)")
	outSchema := fs.String("schema", "", "optional output path for a generated JSON Schema document")
	pkg := fs.String("package", "", "package name for generated Go source (default: qonfigmodel)")
	skipAbstract := fs.Bool("skip-abstract", true, "exclude abstract element-defs from the output")
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: qonfiggen [flags] <toolkit-declaration-file>")
		return 2
	}
	sourcePath := fs.Arg(0)

	start := time.Now()

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(stderr, "qonfiggen: %v\n", err)
		return 1
	}
	root, err := qxml.ParseString(string(data), sourcePath)
	if err != nil {
		fmt.Fprintf(stderr, "qonfiggen: %v\n", err)
		return 1
	}
	tk, err := qxml.CompileToolkit(root, qxml.CompileOptions{PromiseAddOn: qref.PromiseAddOn()})
	if err != nil {
		fmt.Fprintf(stderr, "qonfiggen: %v\n", err)
		return 1
	}

	cfg := qcodegen.DefaultConfig()
	cfg.SkipAbstract = *skipAbstract
	if *pkg != "" {
		cfg.PackageName = *pkg
	}

	goOut, n, err := renderGo(tk, cfg, *outGo, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "qonfiggen: %v\n", err)
		return 1
	}

	if *outSchema != "" {
		if err := writeJSONSchema(tk, *outSchema, *skipAbstract); err != nil {
			fmt.Fprintf(stderr, "qonfiggen: %v\n", err)
			return 1
		}
	}

	if goOut != "" {
		fmt.Fprintf(stderr, "qonfiggen: wrote %s (%s) in %s\n", goOut, humanize.Bytes(uint64(n)), time.Since(start).Round(time.Millisecond))
	}
	return 0
}

// renderGo writes the generated Go source to outPath, or to stdout when
// outPath is empty, returning the path actually written (empty for
// stdout) and the byte count rendered.
func renderGo(tk *qschema.Toolkit, cfg qcodegen.RenderConfig, outPath string, stdout *os.File) (string, int, error) {
	if outPath == "" {
		var buf []byte
		w := &byteCounter{}
		if err := qcodegen.Render(w, tk, cfg); err != nil {
			return "", 0, err
		}
		buf = w.Bytes()
		if _, err := stdout.Write(buf); err != nil {
			return "", 0, err
		}
		return "", len(buf), nil
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()
	w := &byteCounter{}
	if err := qcodegen.Render(w, tk, cfg); err != nil {
		return "", 0, err
	}
	if _, err := f.Write(w.Bytes()); err != nil {
		return "", 0, fmt.Errorf("write %s: %w", outPath, err)
	}
	return outPath, w.n, nil
}

func writeJSONSchema(tk *qschema.Toolkit, outPath string, skipAbstract bool) error {
	schema := qcodegen.RenderJSONSchema(tk, qcodegen.JSONSchemaConfig{SkipAbstract: skipAbstract})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil && filepath.Dir(outPath) != "." {
		return fmt.Errorf("create %s: %w", filepath.Dir(outPath), err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

// byteCounter is an io.Writer that buffers everything written to it and
// tracks the total byte count, so the CLI can report a generated file's
// size without a second pass over it.
type byteCounter struct {
	buf []byte
	n   int
}

func (b *byteCounter) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	b.n += len(p)
	return len(p), nil
}

func (b *byteCounter) Bytes() []byte { return b.buf }
