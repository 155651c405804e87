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

func TestRunRendersGoToStdout(t *testing.T) {
	path := writeSource(t, demoSource)
	code, out, errOut := captureOutput(t, func(stdout, stderr *os.File) int {
		return run([]string{path}, stdout, stderr)
	})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut)
	}
	if !strings.Contains(out, "type Item struct") {
		t.Errorf("expected generated Go source on stdout, got %q", out)
	}
}

func TestRunWritesGoAndSchemaFiles(t *testing.T) {
	path := writeSource(t, demoSource)
	dir := t.TempDir()
	goOut := filepath.Join(dir, "model.go")
	schemaOut := filepath.Join(dir, "model.schema.json")

	code, _, errOut := captureOutput(t, func(stdout, stderr *os.File) int {
		return run([]string{"-out=" + goOut, "-schema=" + schemaOut, path}, stdout, stderr)
	})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut)
	}

	goData, err := os.ReadFile(goOut)
	if err != nil {
		t.Fatalf("read generated Go file: %v", err)
	}
	if !strings.Contains(string(goData), "type Item struct") {
		t.Errorf("expected generated struct in %s, got %q", goOut, goData)
	}

	schemaData, err := os.ReadFile(schemaOut)
	if err != nil {
		t.Fatalf("read generated schema file: %v", err)
	}
	if !strings.Contains(string(schemaData), `"Item"`) {
		t.Errorf("expected an Item $defs entry in %s, got %q", schemaOut, schemaData)
	}
}
