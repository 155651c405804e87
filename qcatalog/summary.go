package qcatalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

	"github.com/updownquark/qonfig/qschema"
)

// Summary is the lightweight, serializable shape a *qschema.Toolkit
// reduces to for caching: enough to tell a caller what it declares,
// never enough to reconstruct it.
type Summary struct {
	ElementNames []string `msgpack:"elements"`
	AddOnNames   []string `msgpack:"addOns"`
}

// SummaryFromToolkit extracts a Summary from a closed toolkit.
func SummaryFromToolkit(tk *qschema.Toolkit) Summary {
	elements := tk.Elements()
	addOns := tk.AddOns()
	s := Summary{
		ElementNames: make([]string, len(elements)),
		AddOnNames:   make([]string, len(addOns)),
	}
	for i, e := range elements {
		s.ElementNames[i] = e.DefName()
	}
	for i, a := range addOns {
		s.AddOnNames[i] = a.DefName()
	}
	return s
}

// HashSource returns a stable hex digest of a declaration source's raw
// bytes, stored with each cache row and compared by NeedsRebuild. crypto/sha256
// is stdlib; no pack example wires in a third-party hashing library for
// plain content-addressing, so there is no ecosystem concern to prefer
// here.
func HashSource(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Describe renders a one-line, human-readable summary of entry:
// element/add-on counts, how long ago it was compiled, and the exact
// compile timestamp.
func Describe(entry *Entry) string {
	return fmt.Sprintf(
		"%s@%s: %d elements, %d add-ons, compiled %s (%s)",
		entry.Name, entry.Version,
		len(entry.Summary.ElementNames), len(entry.Summary.AddOnNames),
		humanize.Time(entry.CompiledAt),
		strftime.Format("%Y-%m-%d %H:%M:%S", entry.CompiledAt),
	)
}

// DescribeFileSize renders a byte count (e.g. the catalog database's
// size) in human-readable form.
func DescribeFileSize(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}
