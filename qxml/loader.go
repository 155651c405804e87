package qxml

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/updownquark/qonfig/qdoc"
)

// FileLoader resolves a promise's ref attribute against files under
// BaseDir, implementing qpromise.Loader. File/URL resolution is an
// external-collaborator concern the core parser never performs itself;
// this is the thin, concrete implementation qxml (the other declared
// external collaborator, the XML lexer/DOM adapter) supplies for the
// common on-disk case, grounded on tqlgen/parser.go's
// ParseSchemaFile (os.ReadFile + ParseString).
type FileLoader struct {
	BaseDir string
}

var _ interface {
	Load(ref string) (qdoc.Node, error)
} = FileLoader{}

// Load reads ref as a path relative to BaseDir (an absolute ref is used
// as-is) and parses it as an XML document.
func (l FileLoader) Load(ref string) (qdoc.Node, error) {
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, ref)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", ref, err)
	}
	root, err := ParseString(string(data), path)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	return root, nil
}
