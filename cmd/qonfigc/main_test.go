package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const demoSource = `<qonfig-def name="demo" version="1.0">
	<value-types>
		<string name="name-type"/>
	</value-types>
	<elements>
		<element-def name="item">
			<attribute name="n" type="name-type" specify="required"/>
		</element-def>
	</elements>
</qonfig-def>`

const brokenSource = `<qonfig-def name="demo" version="1.0">
	<elements>
		<element-def name="item">
			<attribute name="n" type="no-such-type" specify="required"/>
		</element-def>
	</elements>
</qonfig-def>`

func captureOutput(t *testing.T, fn func(stdout, stderr *os.File) int) (int, string, string) {
	t.Helper()
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}

	code := fn(outW, errW)
	outW.Close()
	errW.Close()

	outData, _ := io.ReadAll(outR)
	errData, _ := io.ReadAll(errR)
	return code, string(outData), string(errData)
}

func writeSource(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.qonfig")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestRunCompilesValidSource(t *testing.T) {
	path := writeSource(t, demoSource)
	code, out, errOut := captureOutput(t, func(stdout, stderr *os.File) int {
		return run([]string{"-color=never", path}, stdout, stderr)
	})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut)
	}
	if !strings.Contains(out, "demo@1.0") {
		t.Errorf("expected output to mention demo@1.0, got %q", out)
	}
}

func TestRunReportsDiagnosticsOnError(t *testing.T) {
	path := writeSource(t, brokenSource)
	code, _, errOut := captureOutput(t, func(stdout, stderr *os.File) int {
		return run([]string{"-color=never", path}, stdout, stderr)
	})
	if code == 0 {
		t.Fatal("expected a non-zero exit for an unresolvable value type")
	}
	if !strings.Contains(errOut, "no-such-type") {
		t.Errorf("expected diagnostic to mention the bad type name, got %q", errOut)
	}
}

func TestRunPopulatesCache(t *testing.T) {
	path := writeSource(t, demoSource)
	cachePath := filepath.Join(t.TempDir(), "cache.sqlite")
	code, _, errOut := captureOutput(t, func(stdout, stderr *os.File) int {
		return run([]string{"-color=never", "-cache=" + cachePath, path}, stdout, stderr)
	})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Errorf("expected a cache file to be created: %v", err)
	}
}
