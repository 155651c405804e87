// Package qcatalog persists a summary of every toolkit this process has
// compiled, keyed by (name, version) with each row's source hash stored
// alongside, so a caller can skip
// recompiling a dependency toolkit whose declaration source has not
// changed since the last run. It never stores a reconstructable
// *qschema.Toolkit (value types can close over arbitrary Go behavior,
// e.g. qvalue.Custom, and are not in general serializable) — only the
// lightweight summary a caller uses to decide whether a rebuild is
// needed, grounded on the teacher's own sqlite-backed persistence
// surface.
package qcatalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"github.com/updownquark/qonfig/qschema"
)

// Cache is a sqlite-backed store of compiled-toolkit summaries. A zero
// Cache is not usable; construct one with Open.
type Cache struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS toolkits (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	major       INTEGER NOT NULL,
	minor       INTEGER NOT NULL,
	source_hash TEXT NOT NULL,
	summary     BLOB NOT NULL,
	compiled_at INTEGER NOT NULL,
	UNIQUE(name, major, minor)
);
`

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Entry is one cached toolkit summary, as read back from the catalog.
type Entry struct {
	ID         uuid.UUID
	Name       string
	Version    qschema.Version
	SourceHash string
	Summary    Summary
	CompiledAt time.Time
}

// Put records or replaces the cached summary for name@version, storing
// sourceHash with the row (replacing any earlier row for name@version)
// so a later NeedsRebuild can detect a changed declaration source even
// at the same declared version.
func (c *Cache) Put(name string, version qschema.Version, sourceHash string, summary Summary) error {
	blob, err := msgpack.Marshal(&summary)
	if err != nil {
		return fmt.Errorf("encode summary for %s@%s: %w", name, version, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO toolkits (id, name, major, minor, source_hash, summary, compiled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name, major, minor) DO UPDATE SET
		   source_hash = excluded.source_hash,
		   summary = excluded.summary,
		   compiled_at = excluded.compiled_at`,
		uuid.NewString(), name, version.Major, version.Minor, sourceHash, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store summary for %s@%s: %w", name, version, err)
	}
	return nil
}

// Lookup returns the cached entry for name@version, if any.
func (c *Cache) Lookup(name string, version qschema.Version) (*Entry, bool, error) {
	row := c.db.QueryRow(
		`SELECT id, source_hash, summary, compiled_at FROM toolkits WHERE name = ? AND major = ? AND minor = ?`,
		name, version.Major, version.Minor,
	)
	var idText, sourceHash string
	var blob []byte
	var compiledAt int64
	switch err := row.Scan(&idText, &sourceHash, &blob, &compiledAt); err {
	case sql.ErrNoRows:
		return nil, false, nil
	case nil:
		// fall through
	default:
		return nil, false, fmt.Errorf("lookup %s@%s: %w", name, version, err)
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s@%s: malformed id %q: %w", name, version, idText, err)
	}
	var summary Summary
	if err := msgpack.Unmarshal(blob, &summary); err != nil {
		return nil, false, fmt.Errorf("decode summary for %s@%s: %w", name, version, err)
	}
	return &Entry{
		ID:         id,
		Name:       name,
		Version:    version,
		SourceHash: sourceHash,
		Summary:    summary,
		CompiledAt: time.Unix(compiledAt, 0),
	}, true, nil
}

// NeedsRebuild reports whether name@version must be recompiled: either
// nothing is cached for it, or the cached entry's source hash no longer
// matches sourceHash.
func (c *Cache) NeedsRebuild(name string, version qschema.Version, sourceHash string) (bool, error) {
	entry, ok, err := c.Lookup(name, version)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	return entry.SourceHash != sourceHash, nil
}
