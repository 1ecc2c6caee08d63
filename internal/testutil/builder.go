package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// Builder accumulates font rows and inserts them on Build.
type Builder struct {
	t     *testing.T
	db    *sql.DB
	fonts []fontData
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sql.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithFont adds a font. Rank defaults to the order fonts are added.
func (b *Builder) WithFont(family string, opts ...FontOption) *Builder {
	font := defaultFont(family, len(b.fonts))
	for _, opt := range opts {
		opt(&font)
	}
	b.fonts = append(b.fonts, font)
	return b
}

// Build inserts all accumulated rows.
func (b *Builder) Build() {
	b.t.Helper()
	for _, f := range b.fonts {
		_, err := b.db.Exec(
			`INSERT INTO fonts (family, category, variants, subsets, rank) VALUES (?, ?, ?, ?, ?)`,
			f.family, f.category, joinList(f.variants), joinList(f.subsets), f.rank,
		)
		require.NoError(b.t, err, "insert font %q", f.family)
	}
}
